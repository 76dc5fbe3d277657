package atlas

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Small-Bodies-Node/cs-harvester/types"
)

// ValidatedCollection is a row from the ATLAS-PDS processing database.
type ValidatedCollection struct {
	NightNumber int
	Location    string
	RecordedAt  time.Time
}

// OpenValidationDatabase opens the ATLAS-PDS processing database read-only.
func OpenValidationDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		log.Errorf("Could not connect to database %s", path)
		return nil, types.Wrap(types.ErrOpenDatabaseFailed, err)
	}

	if err := db.Ping(); err != nil {
		db.Close() //nolint:errcheck
		log.Errorf("Could not connect to database %s", path)
		return nil, types.Wrap(types.ErrOpenDatabaseFailed, err)
	}

	return db, nil
}

// ValidatedCollections returns collections validated between since and
// before.  The rows are ordered by validation time so that if a fatal error
// occurs the next run might be able to recover.
func ValidatedCollections(db *sql.DB, since, before time.Time) ([]ValidatedCollection, error) {
	rows, err := db.Query(`
SELECT nn, location, recorded_at FROM nn
WHERE current_status = 'validated'
  AND recorded_at > ? AND recorded_at < ?
ORDER BY recorded_at
`, since.Unix(), before.Unix())
	if err != nil {
		return nil, types.Wrap(types.ErrQueryDatabaseFailed, err)
	}
	defer rows.Close() //nolint:errcheck

	var collections []ValidatedCollection
	for rows.Next() {
		var c ValidatedCollection
		var recordedAt float64
		if err := rows.Scan(&c.NightNumber, &c.Location, &recordedAt); err != nil {
			return nil, types.Wrap(types.ErrQueryDatabaseFailed, err)
		}
		c.RecordedAt = time.Unix(int64(recordedAt), 0).UTC()
		collections = append(collections, c)
	}

	return collections, rows.Err()
}
