package catch

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/config"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/observation"
	"github.com/Small-Bodies-Node/cs-harvester/types"
)

var log = logging.Logger("catch")

// Client talks to the CATCH metadata index.  Only the ingestion contract the
// harvesters rely on is implemented here: observation insert/update, source
// statistics, and index management around bulk loads.
type Client struct {
	pool      *pgxpool.Pool
	batchSize int
}

const schema = `
CREATE TABLE IF NOT EXISTS observation (
	observation_id BIGSERIAL PRIMARY KEY,
	source TEXT NOT NULL,
	product_id TEXT NOT NULL UNIQUE,
	mjd_start DOUBLE PRECISION NOT NULL,
	mjd_stop DOUBLE PRECISION NOT NULL,
	exposure DOUBLE PRECISION,
	filter TEXT,
	maglimit DOUBLE PRECISION,
	fov TEXT NOT NULL,
	field_id TEXT,
	diff BOOLEAN NOT NULL DEFAULT FALSE,
	source_id BIGINT,
	seeing DOUBLE PRECISION,
	airmass DOUBLE PRECISION,
	sb_mag DOUBLE PRECISION,
	image_type TEXT,
	zpapprox DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS observation_source_idx ON observation (source);
CREATE TABLE IF NOT EXISTS statistics (
	source TEXT PRIMARY KEY,
	count BIGINT NOT NULL,
	mjd_start DOUBLE PRECISION,
	mjd_stop DOUBLE PRECISION,
	updated TIMESTAMPTZ NOT NULL
);
`

func Connect(ctx context.Context, cfg config.Catch) (*Client, error) {
	pool, err := pgxpool.New(ctx, cfg.Database)
	if err != nil {
		return nil, types.Wrap(types.ErrOpenDatabaseFailed, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, types.Wrap(types.ErrOpenDatabaseFailed, err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, types.Wrap(types.ErrOpenDatabaseFailed, err)
	}

	return &Client{pool: pool, batchSize: cfg.BatchSize}, nil
}

func (c *Client) Close() {
	c.pool.Close()
}

func (c *Client) BatchSize() int {
	return c.batchSize
}

const insertObservation = `
INSERT INTO observation (
	source, product_id, mjd_start, mjd_stop, exposure, filter, maglimit, fov,
	field_id, diff, source_id, seeing, airmass, sb_mag, image_type, zpapprox
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (product_id) DO NOTHING
`

const upsertObservation = `
INSERT INTO observation (
	source, product_id, mjd_start, mjd_stop, exposure, filter, maglimit, fov,
	field_id, diff, source_id, seeing, airmass, sb_mag, image_type, zpapprox
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (product_id) DO UPDATE SET
	source = EXCLUDED.source,
	mjd_start = EXCLUDED.mjd_start,
	mjd_stop = EXCLUDED.mjd_stop,
	exposure = EXCLUDED.exposure,
	filter = EXCLUDED.filter,
	maglimit = EXCLUDED.maglimit,
	fov = EXCLUDED.fov,
	field_id = EXCLUDED.field_id,
	diff = EXCLUDED.diff,
	source_id = EXCLUDED.source_id,
	seeing = EXCLUDED.seeing,
	airmass = EXCLUDED.airmass,
	sb_mag = EXCLUDED.sb_mag,
	image_type = EXCLUDED.image_type,
	zpapprox = EXCLUDED.zpapprox
`

func observationArgs(obs *observation.Observation) []interface{} {
	var fieldID *string
	if obs.FieldID != "" {
		fieldID = &obs.FieldID
	}
	var sourceID *int64
	if obs.SourceID != 0 {
		sourceID = &obs.SourceID
	}
	var imageType *string
	if obs.ImageType != "" {
		imageType = &obs.ImageType
	}

	return []interface{}{
		obs.Source, obs.ProductID, obs.MJDStart, obs.MJDStop, obs.Exposure,
		obs.Filter, obs.Maglimit, obs.FOVString(), fieldID, obs.Diff,
		sourceID, obs.Seeing, obs.Airmass, obs.SBMag, imageType, obs.ZPApprox,
	}
}

func (c *Client) submit(ctx context.Context, sql string, observations []*observation.Observation) (int64, int64, error) {
	batch := &pgx.Batch{}
	for _, obs := range observations {
		batch.Queue(sql, observationArgs(obs)...)
	}

	results := c.pool.SendBatch(ctx, batch)
	defer results.Close() //nolint:errcheck

	var added, duplicates int64
	for range observations {
		tag, err := results.Exec()
		if err != nil {
			return added, duplicates, types.Wrap(types.ErrAddObservationsFailed, err)
		}
		if tag.RowsAffected() > 0 {
			added++
		} else {
			duplicates++
		}
	}

	return added, duplicates, nil
}

// AddObservations inserts observations, skipping product IDs already in the
// index.  Returns added and duplicate counts.
func (c *Client) AddObservations(ctx context.Context, observations []*observation.Observation) (int64, int64, error) {
	return c.submit(ctx, insertObservation, observations)
}

// UpdateObservations upserts observations by product ID.
func (c *Client) UpdateObservations(ctx context.Context, observations []*observation.Observation) (int64, int64, error) {
	return c.submit(ctx, upsertObservation, observations)
}

// UpdateStatistics refreshes the summary row for a source.
func (c *Client) UpdateStatistics(ctx context.Context, source string) error {
	_, err := c.pool.Exec(ctx, `
INSERT INTO statistics (source, count, mjd_start, mjd_stop, updated)
SELECT $1, COUNT(*), MIN(mjd_start), MAX(mjd_stop), now()
FROM observation WHERE source = $1
ON CONFLICT (source) DO UPDATE SET
	count = EXCLUDED.count,
	mjd_start = EXCLUDED.mjd_start,
	mjd_stop = EXCLUDED.mjd_stop,
	updated = EXCLUDED.updated
`, source)
	if err != nil {
		return types.Wrap(types.ErrQueryDatabaseFailed, err)
	}

	log.Debugf("updated statistics for %s", source)
	return nil
}

// DropSpatialIndex removes the FOV index ahead of a bulk load.  The index
// here stands in for the sbsearch spatial term index.
func (c *Client) DropSpatialIndex(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, "DROP INDEX IF EXISTS observation_fov_idx")
	if err != nil {
		return types.Wrap(types.ErrQueryDatabaseFailed, err)
	}
	return nil
}

func (c *Client) CreateSpatialIndex(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS observation_fov_idx ON observation (fov)")
	if err != nil {
		return types.Wrap(types.ErrQueryDatabaseFailed, err)
	}
	return nil
}
