package css

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Small-Bodies-Node/cs-harvester/types"
)

var trackingSetup = []string{
	`CREATE TABLE IF NOT EXISTS labels (
		path TEXT,
		date TEXT,
		status TEXT
	)`,
	"CREATE UNIQUE INDEX IF NOT EXISTS path_index ON labels (path)",
	"CREATE INDEX IF NOT EXISTS date_index ON labels (date)",
	"CREATE INDEX IF NOT EXISTS status_index ON labels (status)",
}

// TrackingDB records which archive labels have been processed.
type TrackingDB struct {
	db *sql.DB
}

func OpenTrackingDB(path string) (*TrackingDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, types.Wrap(types.ErrOpenDatabaseFailed, err)
	}

	for _, statement := range trackingSetup {
		if _, err := db.Exec(statement); err != nil {
			db.Close() //nolint:errcheck
			return nil, types.Wrap(types.ErrOpenDatabaseFailed, err)
		}
	}

	return &TrackingDB{db: db}, nil
}

func (t *TrackingDB) Close() error {
	return t.db.Close()
}

// Processed reports whether a label path has already been handled.
func (t *TrackingDB) Processed(path string) (bool, error) {
	var one int
	err := t.db.QueryRow("SELECT TRUE FROM labels WHERE path = ?", path).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, types.Wrap(types.ErrQueryDatabaseFailed, err)
	}
	return true, nil
}

// Record stores the processing status of a label path.
func (t *TrackingDB) Record(path, date, status string) error {
	_, err := t.db.Exec("INSERT INTO labels VALUES (?,?,?)", path, date, status)
	if err != nil {
		return types.Wrap(types.ErrQueryDatabaseFailed, err)
	}
	return nil
}
