// Package spacewatch harvests Spacewatch metadata from a local mirror of the
// PSI archive.
//
// Label file names are derived from the LIDs in the collection inventory:
//
//	urn:nasa:pds:gbo.ast.spacewatch.survey:data:sw_0993_09.01_2003_03_23_09_18_47.001.fits
//	-> gbo.ast.spacewatch.survey/data/2003/03/23/sw_0993_09.01_2003_03_23_09_18_47.001.xml
package spacewatch

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/catch"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/config"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/harvestlog"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/observation"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/pds4"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/progress"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/repo"
	"github.com/Small-Bodies-Node/cs-harvester/types"
)

var log = logging.Logger("spacewatch")

const Source = "spacewatch"

type Options struct {
	// path to the collection label of a local archive mirror
	CollectionPath string
	// only process data products with this version ID
	VID string
	// update the database with label metadata (potentially very slow)
	Update bool
	DryRun bool
}

func Run(ctx context.Context, r *repo.Repo, cfg *config.Harvester, opts Options) error {
	hlog, err := harvestlog.Open(r.HarvestLogPath(cfg), opts.DryRun)
	if err != nil {
		return err
	}

	collection, err := pds4.ReadLabelFile(opts.CollectionPath)
	if err != nil {
		return err
	}

	lidvid, err := collection.LIDVID()
	if err != nil {
		return err
	}
	log.Infof("Processing collection %s", lidvid)
	if opts.VID != "" {
		log.Infof("Only processing labels with version ID == %s", opts.VID)
	}

	basePath := filepath.Dir(opts.CollectionPath)

	inventoryName, ok := collection.InventoryFileName()
	if !ok {
		return types.Wrapf(types.ErrBadLabel, "collection label names no inventory file")
	}
	members, err := pds4.ReadInventoryFile(filepath.Join(basePath, inventoryName))
	if err != nil {
		return err
	}

	var inventory []string
	var files []string
	seen := map[string]struct{}{}
	for _, member := range members {
		if opts.VID != "" && member.VID() != opts.VID {
			continue
		}
		inventory = append(inventory, member.String())

		path, err := labelPath(basePath, member)
		if err != nil {
			return err
		}
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	entry := &harvestlog.Entry{
		Target: "catch",
		Start:  pds4.FormatISO(time.Now().UTC()),
		End:    harvestlog.EndProcessing,
		Source: Source,
	}
	hlog.Append(entry)
	if err := hlog.Write(); err != nil {
		return err
	}

	var batcher *catch.Batcher
	if !opts.DryRun {
		client, err := catch.Connect(ctx, cfg.Catch)
		if err != nil {
			return err
		}
		defer client.Close()
		batcher = catch.NewBatcher(client, opts.Update)
	}

	failed := 0
	tri := progress.NewTriangle(log, 2)
	err = pds4.LabelsFromInventory(inventory, files, false, func(path string, label *pds4.Label) error {
		tri.Update()

		obs, err := observation.Process(label)
		if err != nil {
			failed++
			log.Debugf("%s: %s", path, err)
			return nil
		}

		msg := "adding"
		if opts.Update {
			msg = "updating"
		}
		log.Debugf("%s: %s", msg, path)

		if opts.DryRun {
			return nil
		}
		return batcher.Add(ctx, obs)
	})
	if err != nil {
		log.Errorf("A fatal error occurred saving data to the database: %v", err)
		entry.End = "failed"
		if werr := hlog.Write(); werr != nil {
			return werr
		}
		return err
	}

	if !opts.DryRun {
		if err := batcher.Flush(ctx); err != nil {
			entry.End = "failed"
			if werr := hlog.Write(); werr != nil {
				return werr
			}
			return err
		}
	}

	log.Infof("%d files processed.", tri.Count())

	if failed > 0 {
		log.Warnf("Failed processing %d files", failed)
	}

	entry.Files = int(tri.Count())
	if batcher != nil {
		entry.Added = int(batcher.Added)
		entry.Duplicates = int(batcher.Duplicates)
	}
	entry.Errors = failed
	entry.End = pds4.FormatISO(time.Now().UTC())
	if err := hlog.Write(); err != nil {
		return err
	}

	if !opts.DryRun {
		log.Info("Updating survey statistics.")
		if err := batcher.Client().UpdateStatistics(ctx, observation.SourceSpacewatch); err != nil {
			return err
		}
		log.Info("Consider database vacuum.")
	}

	return nil
}

// labelPath derives the label file name for an inventory member,
// e.g. data products are filed by date: data/2003/03/23/sw_....xml.
func labelPath(basePath string, member pds4.LIDVID) (string, error) {
	productID := member.ProductID()
	parts := strings.Split(productID, "_")
	if len(parts) < 7 {
		return "", types.Wrapf(types.ErrInvalidLID, "unexpected Spacewatch product ID %q", productID)
	}
	y, m, d := parts[3], parts[4], parts[5]

	name := strings.TrimSuffix(productID, ".fits") + ".xml"
	return filepath.Join(basePath, "gbo.ast.spacewatch.survey", "data", y, m, d, name), nil
}
