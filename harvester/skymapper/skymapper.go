// Package skymapper bulk loads SkyMapper DR4 metadata into CATCH from the
// published image (exposure) and CCD tables.
package skymapper

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/catch"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/config"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/observation"
	"github.com/Small-Bodies-Node/cs-harvester/harvester/progress"
	"github.com/Small-Bodies-Node/cs-harvester/types"
)

var log = logging.Logger("skymapper")

type Options struct {
	ImageTable string
	CCDTables  []string
	// no-operation mode: process the tables without touching the database
	NoOp bool
}

var coverageNumber = regexp.MustCompile(`[0-9e\.+-]+`)

// CoverageToFOV converts a CCD-table coverage string (corner coordinates in
// radians) to RA and Dec corner arrays in degrees.
func CoverageToFOV(coverage string) (ra, dec []float64, err error) {
	matches := coverageNumber.FindAllString(strings.ReplaceAll(coverage, " ", ""), -1)
	if len(matches) != 8 {
		return nil, nil, types.Wrapf(types.ErrBadLabel, "coverage string has %d values", len(matches))
	}

	for i := 0; i < 8; i += 2 {
		r, err := strconv.ParseFloat(matches[i], 64)
		if err != nil {
			return nil, nil, types.Wrap(types.ErrBadLabel, err)
		}
		d, err := strconv.ParseFloat(matches[i+1], 64)
		if err != nil {
			return nil, nil, types.Wrap(types.ErrBadLabel, err)
		}
		ra = append(ra, r*180/math.Pi)
		dec = append(dec, d*180/math.Pi)
	}

	return ra, dec, nil
}

// openTable opens a CSV table, transparently decompressing gzipped files.
func openTable(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	magic := make([]byte, 2)
	_, err = io.ReadFull(file, magic)
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close() //nolint:errcheck
		return nil, err
	}

	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close() //nolint:errcheck
			return nil, err
		}
		return &gzipTable{gz: gz, file: file}, nil
	}

	return file, nil
}

type gzipTable struct {
	gz   *gzip.Reader
	file *os.File
}

func (t *gzipTable) Read(p []byte) (int, error) {
	return t.gz.Read(p)
}

func (t *gzipTable) Close() error {
	t.gz.Close()       //nolint:errcheck
	return t.file.Close()
}

// eachRow reads a headered CSV table and calls fn with one column→value map
// per row.
func eachRow(path string, fn func(row map[string]string) error) error {
	rc, err := openTable(path)
	if err != nil {
		return err
	}
	defer rc.Close() //nolint:errcheck

	reader := csv.NewReader(rc)
	header, err := reader.Read()
	if err != nil {
		return err
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}

func Run(ctx context.Context, cfg *config.Harvester, opts Options) error {
	// read the image (exposure) table, keyed by image_id
	images := map[string]map[string]string{}
	err := eachRow(opts.ImageTable, func(row map[string]string) error {
		images[row["image_id"]] = row
		return nil
	})
	if err != nil {
		return err
	}

	var client *catch.Client
	var batcher *catch.Batcher
	if opts.NoOp {
		log.Info("No-operation mode; not adding files to the database or computing spatial indices.")
	} else {
		client, err = catch.Connect(ctx, cfg.Catch)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.DropSpatialIndex(ctx); err != nil {
			return err
		}
		batcher = catch.NewBatcher(client, false)
	}

	count := 0
	for _, table := range opts.CCDTables {
		tri := progress.NewTriangle(log, 2)
		err := eachRow(table, func(row map[string]string) error {
			obs, err := ccdObservation(row, images[row["image_id"]])
			if err != nil {
				return err
			}

			tri.Update()
			count++
			if opts.NoOp {
				return nil
			}
			return batcher.Add(ctx, obs)
		})
		if err != nil {
			return err
		}
		tri.Done()
	}

	if !opts.NoOp {
		if err := batcher.Flush(ctx); err != nil {
			return err
		}
		if err := client.CreateSpatialIndex(ctx); err != nil {
			return err
		}
		if err := client.UpdateStatistics(ctx, observation.SourceSkyMapperDR4); err != nil {
			return err
		}
	}

	log.Infof("Processed %d images.", count)
	return nil
}

// ccdObservation builds a SkyMapper DR4 observation from a CCD-table row and
// its image-table row.
func ccdObservation(ccd, image map[string]string) (*observation.Observation, error) {
	if image == nil {
		return nil, types.Wrapf(types.ErrBadLabel, "no image table row for image_id %q", ccd["image_id"])
	}

	mjd, err := strconv.ParseFloat(ccd["mjd_obs"], 64)
	if err != nil {
		return nil, types.Wrapf(types.ErrBadLabel, "mjd_obs %q", ccd["mjd_obs"])
	}
	expTime, err := strconv.ParseFloat(image["exp_time"], 64)
	if err != nil {
		return nil, types.Wrapf(types.ErrBadLabel, "exp_time %q", image["exp_time"])
	}

	sourceID, err := strconv.ParseInt(strings.ReplaceAll(ccd["image"], "-", ""), 10, 64)
	if err != nil {
		return nil, types.Wrapf(types.ErrBadLabel, "image %q", ccd["image"])
	}

	obs := &observation.Observation{
		Source:    observation.SourceSkyMapperDR4,
		ProductID: ccd["image"],
		SourceID:  sourceID,
		MJDStart:  mjd,
		MJDStop:   mjd + expTime/86400,
		Exposure:  expTime,
		Filter:    ccd["filter"],
		FieldID:   image["field_id"],
		ImageType: image["image_type"],
	}

	obs.Seeing = optionalFloat(ccd["fwhm_ccd"])
	obs.Airmass = optionalFloat(image["airmass"])
	obs.SBMag = optionalFloat(ccd["sb_mag"])
	obs.ZPApprox = optionalFloat(image["zpapprox"])

	ra, dec, err := CoverageToFOV(ccd["coverage"])
	if err != nil {
		return nil, err
	}
	if err := obs.SetFOV(ra, dec); err != nil {
		return nil, err
	}

	return obs, nil
}

func optionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
