package observation

import (
	"strings"

	"github.com/Small-Bodies-Node/cs-harvester/harvester/pds4"
	"github.com/Small-Bodies-Node/cs-harvester/types"
)

// Process extracts common metadata from a PDS4 label.  The bundle determines
// the survey source, e.g. ATLAS product IDs carry a telescope code in their
// first two characters.
func Process(label *pds4.Label) (*Observation, error) {
	lidvid, err := label.LIDVID()
	if err != nil {
		return nil, err
	}

	obs := &Observation{ProductID: lidvid.LID()}

	source, err := sourceFor(lidvid)
	if err != nil {
		return nil, err
	}
	obs.Source = source

	start, err := label.StartTime()
	if err != nil {
		return nil, err
	}
	stop, err := label.StopTime()
	if err != nil {
		return nil, err
	}
	obs.MJDStart = pds4.MJD(start)
	obs.MJDStop = pds4.MJD(stop)

	if exposure, ok := label.ExposureDuration(); ok {
		obs.Exposure = exposure
	}
	if filter, ok := label.FilterName(); ok {
		obs.Filter = filter
	}

	ra, dec, err := label.Corners()
	if err != nil {
		return nil, err
	}
	if err := obs.SetFOV(ra, dec); err != nil {
		return nil, err
	}

	// TODO: account for maglimit types other than N_Sigma_Limit
	if maglimit, ok := label.Maglimit(); ok {
		obs.Maglimit = &maglimit
	}

	if strings.HasPrefix(obs.Source, "atlas_") {
		processATLAS(label, lidvid, obs)
	}

	return obs, nil
}

func sourceFor(lidvid pds4.LIDVID) (string, error) {
	switch lidvid.Bundle() {
	case "gbo.ast.atlas.survey":
		// example LID: urn:nasa:pds:gbo.ast.atlas.survey:59613:01a59613o0586o.fits
		productID := lidvid.ProductID()
		if len(productID) < 2 {
			return "", types.Wrapf(types.ErrUnknownTelescope, "%q", productID)
		}
		source, ok := atlasTelescopes[productID[:2]]
		if !ok {
			return "", types.Wrapf(types.ErrUnknownTelescope, "%q", productID[:2])
		}
		return source, nil

	case "gbo.ast.catalina.survey":
		productID := lidvid.ProductID()
		if len(productID) < 3 {
			return "", types.Wrapf(types.ErrUnknownTelescope, "%q", productID)
		}
		source, ok := cssTelescopes[strings.ToUpper(productID[:3])]
		if !ok {
			return "", types.Wrapf(types.ErrUnknownTelescope, "%q", productID[:3])
		}
		return source, nil

	case "gbo.ast.spacewatch.survey":
		return SourceSpacewatch, nil
	}

	return "", types.Wrapf(types.ErrBadLabel, "unsupported bundle %q", lidvid.Bundle())
}

func processATLAS(label *pds4.Label, lidvid pds4.LIDVID, obs *Observation) {
	if survey := label.Survey(); survey != nil {
		obs.FieldID = survey.FieldID
	}

	// is there a diff image?  replace the trailing "fits" with "diff"
	lid := lidvid.LID()
	if len(lid) < 4 {
		return
	}
	expected := lid[:len(lid)-4] + "diff"
	for _, derived := range label.DerivedLIDs() {
		if derived == expected {
			obs.Diff = true
			break
		}
	}
}
