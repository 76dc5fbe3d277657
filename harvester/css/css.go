// Package css harvests Catalina Sky Survey metadata from PSI.
//
// CSS data are continuously archived.  A file list generated at PSI is
// examined for new calibrated data labels, which are downloaded for metadata
// harvesting.
package css

import (
	"bufio"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/archive"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/catch"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/config"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/harvestlog"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/observation"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/pds4"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/progress"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/repo"
)

var log = logging.Logger("css")

const Source = "css"

// archiveBundle anchors archive paths within file-list lines.
const archiveBundle = "gbo.ast.catalina.survey"

var calibratedLabel = regexp.MustCompile(`data_calibrated/.*\.xml$`)

type Options struct {
	// tracking database file; empty for the repo default
	DBFile string
	// use this file list instead of syncing from the archive
	FileList string
	DryRun   bool
}

type scanCounts struct {
	lines      int
	calibrated int
	new        int
}

func Run(ctx context.Context, r *repo.Repo, cfg *config.Harvester, opts Options) error {
	hlog, err := harvestlog.Open(r.HarvestLogPath(cfg), opts.DryRun)
	if err != nil {
		return err
	}

	client := archive.NewClient(cfg.Archive)

	listfile := opts.FileList
	if listfile == "" {
		listfile, err = client.SyncFileList(ctx, cfg.Archive.FileListURL, r.FileListPath())
		if err != nil {
			return err
		}
	} else {
		log.Info("Checking user-specified file list.")
	}

	stat, err := os.Stat(listfile)
	if err != nil {
		return err
	}
	timestamp := pds4.FormatISO(stat.ModTime().UTC())

	dbFile := opts.DBFile
	if dbFile == "" {
		dbFile = filepath.Join(r.DatabasesDir(), "harvest-css.db")
	}
	tracking, err := OpenTrackingDB(dbFile)
	if err != nil {
		return err
	}
	defer tracking.Close() //nolint:errcheck

	entry := &harvestlog.Entry{
		Target:     "catch",
		Start:      pds4.FormatISO(time.Now().UTC()),
		End:        harvestlog.EndProcessing,
		Source:     Source,
		TimeOfLast: timestamp,
	}
	hlog.Append(entry)
	if err := hlog.Write(); err != nil {
		return err
	}

	var batcher *catch.Batcher
	if !opts.DryRun {
		catchClient, err := catch.Connect(ctx, cfg.Catch)
		if err != nil {
			return err
		}
		defer catchClient.Close()
		batcher = catch.NewBatcher(catchClient, false)
	}

	counts := scanCounts{}
	errored := 0
	tri := progress.NewTriangle(log, 2)

	err = scanFileList(listfile, &counts, func(path string) error {
		processed, err := tracking.Processed(path)
		if err != nil {
			return err
		}
		if processed {
			return nil
		}
		counts.new++

		label, err := client.FetchLabel(ctx, path)
		if err != nil {
			return err
		}

		tri.Update()

		msg := "added"
		obs, err := observation.Process(label)
		if err != nil {
			errored++
			msg = err.Error()
		}

		log.Debugf("%s: %s", path, msg)

		if opts.DryRun {
			return nil
		}

		if err := tracking.Record(path, pds4.FormatISO(time.Now().UTC()), msg); err != nil {
			return err
		}
		if obs != nil {
			return batcher.Add(ctx, obs)
		}
		return nil
	})
	if err != nil {
		log.Errorf("A fatal error occurred processing labels: %v", err)
		entry.End = "failed"
		if werr := hlog.Write(); werr != nil {
			return werr
		}
		return err
	}
	tri.Done()

	log.Info("Processed:")
	log.Infof("  %d lines", counts.lines)
	log.Infof("  %d calibrated data labels", counts.calibrated)
	log.Infof("  %d new files", counts.new)

	if !opts.DryRun {
		if err := batcher.Flush(ctx); err != nil {
			entry.End = "failed"
			if werr := hlog.Write(); werr != nil {
				return werr
			}
			return err
		}
	}

	if errored > 0 {
		log.Errorf("Failed processing %d files", errored)
	}

	entry.Files = int(tri.Count())
	if batcher != nil {
		entry.Added = int(batcher.Added)
		entry.Duplicates = int(batcher.Duplicates)
	}
	entry.Errors = errored
	entry.End = pds4.FormatISO(time.Now().UTC())
	if err := hlog.Write(); err != nil {
		return err
	}

	if !opts.DryRun {
		log.Info("Updating survey statistics.")
		for _, source := range observation.CatalinaSources {
			if err := batcher.Client().UpdateStatistics(ctx, source); err != nil {
				return err
			}
		}
	}

	return nil
}

// scanFileList streams the gzipped archive file list, calling fn with the
// archive-relative path of each calibrated data label.
func scanFileList(listfile string, counts *scanCounts, fn func(path string) error) error {
	file, err := os.Open(listfile)
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck

	gz, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer gz.Close() //nolint:errcheck

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		counts.lines++
		line := strings.TrimSpace(scanner.Text())

		if !calibratedLabel.MatchString(line) || strings.Contains(line, "collection") {
			continue
		}
		counts.calibrated++

		idx := strings.Index(line, archiveBundle)
		if idx < 0 {
			continue
		}

		if err := fn(line[idx:]); err != nil {
			return err
		}
	}

	return scanner.Err()
}
