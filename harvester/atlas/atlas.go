// Package atlas harvests ATLAS metadata.
//
//   - ATLAS data are continuously archived.
//   - The ATLAS-PDS processing database tracks validated collections, their
//     locations, and the time they were validated.
//   - Check this database to identify new collections to harvest.
//   - Track harvest runs in the harvest log.
//   - For CATCH we want labels with LIDs ending in .fits; for the image
//     service .fits and .diff.
package atlas

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	logging "github.com/ipfs/go-log/v2"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/catch"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/config"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/harvestlog"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/observation"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/pds4"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/progress"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/repo"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/sbnsis"
	"github.com/Small-Bodies-Node/cs-harvester/types"
)

var log = logging.Logger("atlas")

const Source = "atlas"

const (
	TargetCatch  = "catch"
	TargetSBNSIS = "sbnsis"
)

type Options struct {
	Target       string
	DatabaseFile string

	// window selection; zero values mean "since the last ingested
	// collection" and "until now"
	Since     time.Time
	Before    time.Time
	PastHours int

	List        bool
	OnlyProcess string
	DryRun      bool
}

func Run(ctx context.Context, r *repo.Repo, cfg *config.Harvester, opts Options) error {
	if opts.Target != TargetCatch && opts.Target != TargetSBNSIS {
		return types.Wrapf(types.ErrInvalidConfig, "unknown harvest target %q", opts.Target)
	}

	hlog, err := harvestlog.Open(r.HarvestLogPath(cfg), opts.DryRun)
	if err != nil {
		return err
	}

	db, err := OpenValidationDatabase(opts.DatabaseFile)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	entry := &harvestlog.Entry{
		Target: opts.Target,
		Start:  pds4.FormatISO(now),
		End:    harvestlog.EndProcessing,
		Source: Source,
	}
	hlog.Append(entry)

	since := opts.Since
	if since.IsZero() {
		since = hlog.TimeOfLast(opts.Target, Source)
	}
	before := opts.Before
	if before.IsZero() {
		before = now
	}

	if opts.PastHours > 0 {
		since = now.Add(-time.Duration(opts.PastHours) * time.Hour)
		log.Infof("Checking for collections validated in the past %d hr (since %s)",
			opts.PastHours, pds4.FormatISO(since))
	} else {
		log.Infof("Checking for collections validated between %s and %s",
			pds4.FormatISO(since), pds4.FormatISO(before))
	}

	results, err := ValidatedCollections(db, since, before)
	db.Close() //nolint:errcheck
	if err != nil {
		return err
	}

	if len(results) == 0 {
		entry.End = pds4.FormatISO(time.Now().UTC())
		if err := hlog.Write(); err != nil {
			return err
		}
		log.Info("No new data collections found")
		log.Info("Finished")
		return nil
	}

	if opts.List {
		log.Infof("Listing %d collections to process", len(results))
		for _, row := range results {
			collection, _, err := FindCollection(cfg.ATLAS.DataRoot, row.Location, row.NightNumber)
			if err != nil {
				return err
			}
			lidvid, err := collection.LIDVID()
			if err != nil {
				return err
			}
			color.Cyan(lidvid.String())
		}
		log.Info("Finished")
		return nil
	}

	// write the processing state to the log before touching the database
	if err := hlog.Write(); err != nil {
		return err
	}

	var catchClient *catch.Client
	var sisClient *sbnsis.Client
	if !opts.DryRun {
		switch opts.Target {
		case TargetCatch:
			catchClient, err = catch.Connect(ctx, cfg.Catch)
			if err != nil {
				return err
			}
			defer catchClient.Close()
		case TargetSBNSIS:
			sisClient, err = sbnsis.Connect(ctx, cfg.SBNSIS)
			if err != nil {
				return err
			}
			defer sisClient.Close()
		}
	}

	for i, row := range results {
		collection, collectionDir, err := FindCollection(cfg.ATLAS.DataRoot, row.Location, row.NightNumber)
		if err != nil {
			return err
		}
		lidvid, err := collection.LIDVID()
		if err != nil {
			return err
		}

		if opts.OnlyProcess != "" && lidvid.LID() != opts.OnlyProcess {
			continue
		}

		log.Infof("%d collections to process.", len(results)-i)

		timestamp := pds4.FormatISO(row.RecordedAt)
		if opts.Target == TargetCatch {
			err = processCollectionForCatch(ctx, catchClient, collection, collectionDir, timestamp, entry, hlog, opts.DryRun)
		} else {
			err = processCollectionForSBNSIS(ctx, sisClient, collection, collectionDir, timestamp, entry, hlog, opts.DryRun)
		}
		if err != nil {
			return err
		}
	}

	log.Info("Processing complete.")
	log.Infof("%d files processed", entry.Files)
	log.Infof("%d files added", entry.Added)
	log.Infof("%d files already in the database", entry.Duplicates)
	log.Infof("%d files errored", entry.Errors)

	entry.End = pds4.FormatISO(time.Now().UTC())
	if err := hlog.Write(); err != nil {
		return err
	}

	log.Info("Finished")
	return nil
}

// FindCollection searches the staging volume for the night's collection
// labels and returns the highest versioned one and its directory.
func FindCollection(dataRoot, location string, nightNumber int) (*pds4.Label, string, error) {
	dir := filepath.Join(dataRoot, location)
	files, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("collection_%d*.xml", nightNumber)))
	if err != nil {
		return nil, "", err
	}

	collection, err := latestCollection(files)
	if err != nil {
		return nil, "", err
	}
	return collection, dir, nil
}

// latestCollection returns the highest versioned collection label among
// files.
func latestCollection(files []string) (*pds4.Label, error) {
	var latest *pds4.Label
	var maxVersion pds4.Version

	for _, path := range files {
		label, err := pds4.ReadLabelFile(path)
		if err != nil {
			return nil, err
		}

		version, err := label.CollectionVersion()
		if err != nil {
			continue
		}

		if latest == nil || version.Compare(maxVersion) > 0 {
			latest = label
			maxVersion = version
		}
	}

	if latest == nil {
		return nil, types.ErrNoCollectionsFound
	}
	return latest, nil
}

// collectionInventory reads the inventory of image products named by a
// collection label.
func collectionInventory(collection *pds4.Label, collectionDir string) ([]pds4.LIDVID, error) {
	name, ok := collection.InventoryFileName()
	if !ok {
		return nil, types.Wrapf(types.ErrBadLabel, "collection label names no inventory file")
	}
	return pds4.ReadInventoryFile(filepath.Join(collectionDir, name))
}

func processCollectionForCatch(
	ctx context.Context,
	client *catch.Client,
	collection *pds4.Label,
	collectionDir string,
	timestamp string,
	entry *harvestlog.Entry,
	hlog *harvestlog.Log,
	dryRun bool,
) error {
	lidvid, err := collection.LIDVID()
	if err != nil {
		return err
	}

	dataDirectory := filepath.Join(collectionDir, "data")
	log.Debugf("Inspecting directory %s for image products", dataDirectory)
	log.Infof("%s, %s", lidvid, dataDirectory)

	inventory, err := collectionInventory(collection, collectionDir)
	if err != nil {
		return err
	}

	var candidates []string
	for _, member := range inventory {
		if strings.HasSuffix(member.LID(), ".fits") {
			candidates = append(candidates, member.String())
		}
	}

	files, err := filepath.Glob(filepath.Join(dataDirectory, "*fits.xml"))
	if err != nil {
		return err
	}

	var observations []*observation.Observation
	errored := 0
	tri := progress.NewTriangle(log, 2)
	err = pds4.LabelsFromInventory(candidates, files, true, func(path string, label *pds4.Label) error {
		tri.Update()
		obs, err := observation.Process(label)
		if err != nil {
			log.Errorf("%s: %s", err, path)
			errored++
			return nil
		}
		observations = append(observations, obs)
		return nil
	})
	if err != nil {
		log.Error(err.Error())
		return err
	}
	tri.Done()

	var added, duplicates int64
	if !dryRun {
		added, duplicates, err = client.AddObservations(ctx, observations)
		if err != nil {
			log.Error(err.Error())
			entry.End = "failed"
			if werr := hlog.Write(); werr != nil {
				return werr
			}
			return err
		}

		log.Info("Updating survey statistics.")
		for _, source := range observation.ATLASSources {
			if err := client.UpdateStatistics(ctx, source); err != nil {
				return err
			}
		}
	}

	log.Infof("%d files processed", tri.Count())
	log.Infof("%d files added", added)
	log.Infof("%d files already in the database", duplicates)
	log.Infof("%d files errored", errored)

	entry.Files += int(tri.Count())
	entry.Added += int(added)
	entry.Duplicates += int(duplicates)
	entry.Errors += errored
	if timestamp > entry.TimeOfLast {
		entry.TimeOfLast = timestamp
	}
	return hlog.Write()
}

func processCollectionForSBNSIS(
	ctx context.Context,
	client *sbnsis.Client,
	collection *pds4.Label,
	collectionDir string,
	timestamp string,
	entry *harvestlog.Entry,
	hlog *harvestlog.Log,
	dryRun bool,
) error {
	lidvid, err := collection.LIDVID()
	if err != nil {
		return err
	}

	dataDirectory := filepath.Join(collectionDir, "data")
	log.Debugf("Inspecting directory %s for image products", dataDirectory)
	log.Infof("%s, %s", lidvid, dataDirectory)

	inventory, err := collectionInventory(collection, collectionDir)
	if err != nil {
		return err
	}

	var candidates []string
	for _, member := range inventory {
		if strings.HasSuffix(member.LID(), ".fits") || strings.HasSuffix(member.LID(), ".diff") {
			candidates = append(candidates, member.String())
		}
	}

	fitsFiles, err := filepath.Glob(filepath.Join(dataDirectory, "*fits.xml"))
	if err != nil {
		return err
	}
	diffFiles, err := filepath.Glob(filepath.Join(dataDirectory, "*diff.xml"))
	if err != nil {
		return err
	}
	files := append(fitsFiles, diffFiles...)

	added := 0
	duplicates := 0
	errored := 0
	tri := progress.NewTriangle(log, 2)
	err = pds4.LabelsFromInventory(candidates, files, true, func(path string, label *pds4.Label) error {
		tri.Update()
		if dryRun {
			return nil
		}
		ok, err := client.AddLabel(ctx, path, label)
		if err != nil {
			log.Errorf("%s: %s", err, path)
			errored++
			return nil
		}
		if ok {
			added++
		} else {
			duplicates++
		}
		return nil
	})
	if err != nil {
		log.Error(err.Error())
		return err
	}
	tri.Done()

	log.Infof("%d files processed", tri.Count())
	log.Infof("%d files added", added)
	log.Infof("%d files already in the database", duplicates)
	log.Infof("%d files errored", errored)

	entry.Files += int(tri.Count())
	entry.Added += added
	entry.Duplicates += duplicates
	entry.Errors += errored
	if timestamp > entry.TimeOfLast {
		entry.TimeOfLast = timestamp
	}
	return hlog.Write()
}
