package css

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFileList(t *testing.T, lines []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "file-list.txt.gz")
	file, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(file)
	_, err = gz.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, file.Close())

	return path
}

func TestScanFileList(t *testing.T) {
	listfile := writeFileList(t, []string{
		"/archive/pds4/surveys/gbo.ast.catalina.survey/data_calibrated/G96/2022/22Jan31/g96_20220131_2b_n27011_01_0001.arch.xml",
		"/archive/pds4/surveys/gbo.ast.catalina.survey/data_calibrated/G96/2022/22Jan31/g96_20220131_2b_n27011_01_0001.arch.fz",
		"/archive/pds4/surveys/gbo.ast.catalina.survey/data_raw/G96/2022/22Jan31/g96_20220131_2b_n27011_01_0001.xml",
		"/archive/pds4/surveys/gbo.ast.catalina.survey/data_calibrated/collection_data_calibrated.xml",
		"/archive/pds4/surveys/gbo.ast.catalina.survey/data_calibrated/703/2022/22Feb01/703_20220201_2b_n24019_01_0002.arch.xml",
	})

	counts := scanCounts{}
	var paths []string
	err := scanFileList(listfile, &counts, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, 5, counts.lines)
	require.Equal(t, 2, counts.calibrated)
	require.Equal(t, []string{
		"gbo.ast.catalina.survey/data_calibrated/G96/2022/22Jan31/g96_20220131_2b_n27011_01_0001.arch.xml",
		"gbo.ast.catalina.survey/data_calibrated/703/2022/22Feb01/703_20220201_2b_n24019_01_0002.arch.xml",
	}, paths)
}

func TestScanFileListNotGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file-list.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text\n"), 0644))

	counts := scanCounts{}
	err := scanFileList(path, &counts, func(string) error { return nil })
	require.Error(t, err)
}

func TestTrackingDB(t *testing.T) {
	tracking, err := OpenTrackingDB(filepath.Join(t.TempDir(), "harvest-css.db"))
	require.NoError(t, err)
	defer tracking.Close() //nolint:errcheck

	path := "gbo.ast.catalina.survey/data_calibrated/G96/2022/22Jan31/g96_20220131_2b_n27011_01_0001.arch.xml"

	processed, err := tracking.Processed(path)
	require.NoError(t, err)
	require.False(t, processed)

	require.NoError(t, tracking.Record(path, "2023-03-01 06:30:15.000000", "added"))

	processed, err = tracking.Processed(path)
	require.NoError(t, err)
	require.True(t, processed)

	// duplicate paths are rejected by the unique index
	require.Error(t, tracking.Record(path, "2023-03-01 06:31:00.000000", "added"))
}
