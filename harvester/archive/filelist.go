package archive

import (
	"context"
	"fmt"
	"os"
	"strings"
)

func createFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
}

// SyncFileList checks for a new archive file list and downloads it when the
// remote copy is newer than the local one.  Returns the local file name.
func (c *Client) SyncFileList(ctx context.Context, url, local string) (string, error) {
	sync := false

	stat, err := os.Stat(local)
	if os.IsNotExist(err) {
		sync = true
	} else if err != nil {
		return "", err
	} else {
		log.Infof("Previous file list downloaded %s", stat.ModTime().UTC().Format("2006-01-02 15:04"))

		remote, err := c.LastModified(ctx, url)
		if err != nil {
			log.Warnf("could not check the online file list: %v", err)
		} else {
			log.Infof("Online file list dated %s", remote.UTC().Format("2006-01-02 15:04"))
			if stat.ModTime().Before(remote) {
				sync = true
				log.Info("New file list available.")
			}
		}
	}

	if !sync {
		return local, nil
	}

	size, err := c.Download(ctx, url, local)
	if err != nil {
		return "", err
	}
	log.Info("Downloaded file list.")

	stat, err = os.Stat(local)
	if err != nil {
		return "", err
	}
	log.Infof("  Size: %.2f MiB", float64(size)/1048576)
	log.Infof("  Last modified: %s", stat.ModTime().UTC().Format("2006-01-02 15:04:05"))

	// keep a timestamped copy of each downloaded list
	timestamp := stat.ModTime().UTC().Format("20060102T1504")
	backup := strings.Replace(local, ".txt.gz", fmt.Sprintf("-%s.txt.gz", timestamp), 1)
	data, err := os.ReadFile(local)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(backup, data, 0644); err != nil {
		return "", err
	}

	return local, nil
}
