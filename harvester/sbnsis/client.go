package sbnsis

import (
	"context"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/config"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/pds4"
	"github.com/Small-Bodies-Node/cs-harvester/types"
)

var log = logging.Logger("sbnsis")

// Client talks to the SBN Survey Image Service database.  Only label
// registration is implemented here.
type Client struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS image (
	image_id BIGSERIAL PRIMARY KEY,
	lid TEXT NOT NULL UNIQUE,
	label_path TEXT NOT NULL,
	image_path TEXT,
	created TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func Connect(ctx context.Context, cfg config.SBNSIS) (*Client, error) {
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

	return &Client{pool: pool}, nil
}

func (c *Client) Close() {
	c.pool.Close()
}

// AddLabel registers a label with the image service.  Returns false when the
// LID is already registered.
func (c *Client) AddLabel(ctx context.Context, labelPath string, label *pds4.Label) (bool, error) {
	lidvid, err := label.LIDVID()
	if err != nil {
		return false, err
	}

	imagePath := strings.TrimSuffix(labelPath, ".xml") + ".fits"

	tag, err := c.pool.Exec(ctx, `
INSERT INTO image (lid, label_path, image_path)
VALUES ($1, $2, $3)
ON CONFLICT (lid) DO NOTHING
`, lidvid.LID(), labelPath, imagePath)
	if err != nil {
		return false, types.Wrap(types.ErrAddObservationsFailed, err)
	}

	added := tag.RowsAffected() > 0
	if added {
		log.Debugf("registered %s", lidvid.LID())
	}
	return added, nil
}
