package atlas

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/config"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/repo"
	"github.com/Small-Bodies-Node/cs-harvester/types"
)

func writeCollection(t *testing.T, dir, version string) {
	t.Helper()

	label := `<?xml version="1.0"?>
<Product_Collection>
  <Identification_Area>
    <logical_identifier>urn:nasa:pds:gbo.ast.atlas.survey:59613</logical_identifier>
    <version_id>` + version + `</version_id>
    <product_class>Product_Collection</product_class>
  </Identification_Area>
</Product_Collection>`

	name := filepath.Join(dir, "collection_59613_v"+version+".xml")
	require.NoError(t, os.WriteFile(name, []byte(label), 0644))
}

func TestFindCollection(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "sutherland", "59613")
	require.NoError(t, os.MkdirAll(dir, 0755))

	writeCollection(t, dir, "1.0")
	writeCollection(t, dir, "2.0")
	writeCollection(t, dir, "1.5")

	collection, collectionDir, err := FindCollection(root, "sutherland/59613", 59613)
	require.NoError(t, err)
	require.Equal(t, dir, collectionDir)
	require.Equal(t, "2.0", collection.Identification.VersionID)
}

func TestFindCollectionNone(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "sutherland", "59613")
	require.NoError(t, os.MkdirAll(dir, 0755))

	_, _, err := FindCollection(root, "sutherland/59613", 59613)
	require.ErrorIs(t, err, types.ErrNoCollectionsFound)
}

func testValidationDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "atlas-pds.sqlite3")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	_, err = db.Exec(`CREATE TABLE nn (
		nn INTEGER,
		location TEXT,
		current_status TEXT,
		recorded_at FLOAT
	)`)
	require.NoError(t, err)

	for _, row := range []struct {
		nn         int
		location   string
		status     string
		recordedAt float64
	}{
		{59610, "01/59610", "validated", 1643500000},
		{59613, "01/59613", "validated", 1643846400},
		{59614, "01/59614", "processing", 1643900000},
		{59615, "01/59615", "validated", 1643990000},
	} {
		_, err = db.Exec("INSERT INTO nn VALUES (?,?,?,?)",
			row.nn, row.location, row.status, row.recordedAt)
		require.NoError(t, err)
	}

	return path
}

func TestValidatedCollections(t *testing.T) {
	db, err := OpenValidationDatabase(testValidationDB(t))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	since := time.Unix(1643600000, 0)
	before := time.Unix(1644000000, 0)

	collections, err := ValidatedCollections(db, since, before)
	require.NoError(t, err)
	require.Len(t, collections, 2)

	// ordered by validation time
	require.Equal(t, 59613, collections[0].NightNumber)
	require.Equal(t, "01/59613", collections[0].Location)
	require.Equal(t, time.Unix(1643846400, 0).UTC(), collections[0].RecordedAt)
	require.Equal(t, 59615, collections[1].NightNumber)
}

func TestValidatedCollectionsEmptyWindow(t *testing.T) {
	db, err := OpenValidationDatabase(testValidationDB(t))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	collections, err := ValidatedCollections(db, time.Unix(0, 0), time.Unix(1, 0))
	require.NoError(t, err)
	require.Empty(t, collections)
}

func TestRunBadTarget(t *testing.T) {
	r, err := repo.NewRepo(t.TempDir())
	require.NoError(t, err)

	err = Run(context.Background(), r, config.DefaultHarvester(), Options{Target: "elsewhere"})
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}
