package observation

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/Small-Bodies-Node/cs-harvester/types"
)

// Observation is the metadata for one survey image, as submitted to the
// CATCH index.  Survey-specific columns are nil/zero when not applicable.
type Observation struct {
	Source    string
	ProductID string
	MJDStart  float64
	MJDStop   float64
	Exposure  float64
	Filter    string
	Maglimit  *float64

	// ATLAS
	FieldID string
	Diff    bool

	// SkyMapper DR4
	SourceID  int64
	Seeing    *float64
	Airmass   *float64
	SBMag     *float64
	ImageType string
	ZPApprox  *float64

	fov orb.Ring
}

// SetFOV sets the field of view from four corner coordinates (deg).
func (obs *Observation) SetFOV(ra, dec []float64) error {
	if len(ra) != 4 || len(dec) != 4 {
		return types.Wrapf(types.ErrBadLabel, "expected 4 FOV corners, got %d", len(ra))
	}

	ring := make(orb.Ring, 0, 5)
	for i := range ra {
		ring = append(ring, orb.Point{ra[i], dec[i]})
	}
	ring = append(ring, ring[0])

	obs.fov = ring
	return nil
}

func (obs *Observation) FOV() orb.Ring {
	return obs.fov
}

// FOVString serializes the field of view as "ra1:dec1,ra2:dec2,...",
// corner order top left, top right, bottom right, bottom left.
func (obs *Observation) FOVString() string {
	if len(obs.fov) < 4 {
		return ""
	}

	pairs := make([]string, 4)
	for i, point := range obs.fov[:4] {
		pairs[i] = fmt.Sprintf("%.6f:%.6f", point[0], point[1])
	}
	return strings.Join(pairs, ",")
}
