package archive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/config"
	"github.com/Small-Bodies-Node/cs-harvester/types"
)

const testLabel = `<?xml version="1.0"?>
<Product_Observational>
  <Identification_Area>
    <logical_identifier>urn:nasa:pds:gbo.ast.catalina.survey:data_calibrated:g96_20220131_2b_n27011_01_0001.arch</logical_identifier>
    <version_id>1.0</version_id>
    <product_class>Product_Observational</product_class>
  </Identification_Area>
</Product_Observational>`

func testClient(prefix string) *Client {
	return NewClient(config.Archive{
		Prefix:         prefix,
		Retries:        3,
		TimeoutSeconds: 5,
	})
}

func TestFetchLabel(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Write([]byte(testLabel)) //nolint:errcheck
	}))
	defer server.Close()

	c := testClient(server.URL + "/")
	label, err := c.FetchLabel(context.Background(), "gbo.ast.catalina.survey/data_calibrated/label.xml")
	require.NoError(t, err)

	lidvid, err := label.LIDVID()
	require.NoError(t, err)
	require.Equal(t, "g96_20220131_2b_n27011_01_0001.arch", lidvid.ProductID())
	require.True(t, strings.HasPrefix(agent, "CATCH-SIS Harvester/"))
}

func TestFetchLabelRetries(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(testLabel)) //nolint:errcheck
	}))
	defer server.Close()

	c := testClient(server.URL + "/")
	_, err := c.FetchLabel(context.Background(), "label.xml")
	require.NoError(t, err)
	require.Equal(t, 2, requests)
}

func TestFetchLabelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := testClient(server.URL + "/")
	_, err := c.FetchLabel(context.Background(), "missing.xml")
	require.ErrorIs(t, err, types.ErrFetchFailed)
}

func TestSyncFileList(t *testing.T) {
	content := []byte("file one\nfile two\n")
	modified := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", modified.Format(http.TimeFormat))
		if r.Method == http.MethodHead {
			return
		}
		w.Write(content) //nolint:errcheck
	}))
	defer server.Close()

	dir := t.TempDir()
	local := filepath.Join(dir, "file-list.txt.gz")
	c := testClient(server.URL + "/")

	// no local copy: download
	got, err := c.SyncFileList(context.Background(), server.URL+"/list", local)
	require.NoError(t, err)
	require.Equal(t, local, got)

	data, err := os.ReadFile(local)
	require.NoError(t, err)
	require.Equal(t, content, data)

	// a timestamped backup is kept
	matches, err := filepath.Glob(filepath.Join(dir, "file-list-*.txt.gz"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	// local copy newer than remote: no re-download
	require.NoError(t, os.WriteFile(local, []byte("local"), 0644))
	_, err = c.SyncFileList(context.Background(), server.URL+"/list", local)
	require.NoError(t, err)

	data, err = os.ReadFile(local)
	require.NoError(t, err)
	require.Equal(t, []byte("local"), data)

	// stale local copy: re-download
	stale := modified.Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(local, stale, stale))
	_, err = c.SyncFileList(context.Background(), server.URL+"/list", local)
	require.NoError(t, err)

	data, err = os.ReadFile(local)
	require.NoError(t, err)
	require.Equal(t, content, data)
}
