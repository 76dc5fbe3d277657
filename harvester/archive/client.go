package archive

import (
	"context"
	"io"
	"net/http"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/sony/gobreaker"

	"github.com/Small-Bodies-Node/cs-harvester/build"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/config"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/pds4"
	"github.com/Small-Bodies-Node/cs-harvester/types"
)

var log = logging.Logger("archive")

// UserAgent identifies the harvester to the archive servers.
var UserAgent = "CATCH-SIS Harvester/" + build.BuildVersion

// Client fetches labels and file lists from the PSI survey archives.
// Requests run through a circuit breaker so a down archive fails fast
// instead of timing out label by label.
type Client struct {
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	prefix  string
	retries int
}

func NewClient(cfg config.Archive) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "psi-archive",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Client{
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		cb:      cb,
		prefix:  cfg.Prefix,
		retries: cfg.Retries,
	}
}

func (c *Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close() //nolint:errcheck
			return nil, types.Wrapf(types.ErrFetchFailed, "%s: %s", url, resp.Status)
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return resp.(*http.Response), nil
}

// FetchLabel downloads and parses a label, retrying transient failures with
// a delay between attempts.
func (c *Client) FetchLabel(ctx context.Context, path string) (*pds4.Label, error) {
	url := c.prefix + path

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			// retry, but not too soon
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.do(ctx, http.MethodGet, url)
		if err != nil {
			log.Error(err.Error())
			lastErr = err
			continue
		}

		label, err := pds4.ReadLabel(resp.Body)
		resp.Body.Close() //nolint:errcheck
		if err != nil {
			lastErr = err
			continue
		}

		return label, nil
	}

	return nil, types.Wrap(types.ErrFetchFailed, lastErr)
}

// LastModified returns the Last-Modified time of a URL.
func (c *Client) LastModified(ctx context.Context, url string) (time.Time, error) {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close() //nolint:errcheck

	value := resp.Header.Get("Last-Modified")
	if value == "" {
		return time.Time{}, types.Wrapf(types.ErrFetchFailed, "%s: no Last-Modified header", url)
	}

	return http.ParseTime(value)
}

// Download streams a URL to a local file.
func (c *Client) Download(ctx context.Context, url, dest string) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck

	file, err := createFile(dest)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(file, resp.Body)
	if err != nil {
		file.Close() //nolint:errcheck
		return n, types.Wrap(types.ErrFetchFailed, err)
	}

	return n, file.Close()
}
