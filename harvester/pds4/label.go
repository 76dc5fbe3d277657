package pds4

import (
	"encoding/xml"
	"io"
	"os"
	"time"

	"github.com/Small-Bodies-Node/cs-harvester/types"
)

// Label models the subset of a PDS4 label that the harvesters read.
// Namespace prefixes (img:, survey:) are matched by local element name.
type Label struct {
	XMLName        xml.Name
	Identification IdentificationArea `xml:"Identification_Area"`
	Observation    ObservationArea    `xml:"Observation_Area"`
	ReferenceList  ReferenceList      `xml:"Reference_List"`
	InventoryArea  *FileAreaInventory `xml:"File_Area_Inventory"`
}

type FileAreaInventory struct {
	FileName string `xml:"File>file_name"`
}

type IdentificationArea struct {
	LogicalIdentifier string `xml:"logical_identifier"`
	VersionID         string `xml:"version_id"`
	ProductClass      string `xml:"product_class"`
}

type ObservationArea struct {
	TimeCoordinates TimeCoordinates `xml:"Time_Coordinates"`
	DisciplineArea  DisciplineArea  `xml:"Discipline_Area"`
}

type TimeCoordinates struct {
	StartDateTime string `xml:"start_date_time"`
	StopDateTime  string `xml:"stop_date_time"`
}

type DisciplineArea struct {
	Img    *Img    `xml:"Img"`
	Survey *Survey `xml:"Survey"`
}

type Img struct {
	Exposure      *Exposure      `xml:"Exposure"`
	OpticalFilter *OpticalFilter `xml:"Optical_Filter"`
}

type Exposure struct {
	ExposureDuration float64 `xml:"exposure_duration"`
}

type OpticalFilter struct {
	FilterName string `xml:"filter_name"`
}

type Survey struct {
	FieldID            string              `xml:"field_id"`
	ImageCorners       []CornerPosition    `xml:"Image_Corners>Corner_Position"`
	LimitingMagnitudes *LimitingMagnitudes `xml:"Limiting_Magnitudes"`
}

type CornerPosition struct {
	CornerIdentification string     `xml:"corner_identification"`
	Coordinate           Coordinate `xml:"Coordinate"`
}

type Coordinate struct {
	RightAscension float64 `xml:"right_ascension"`
	Declination    float64 `xml:"declination"`
}

type LimitingMagnitudes struct {
	NSigmaLimit *NSigmaLimit `xml:"N_Sigma_Limit"`
}

type NSigmaLimit struct {
	LimitingMagnitude float64 `xml:"limiting_magnitude"`
}

type ReferenceList struct {
	InternalReferences []InternalReference `xml:"Internal_Reference"`
}

type InternalReference struct {
	LIDReference  string `xml:"lid_reference"`
	ReferenceType string `xml:"reference_type"`
}

func ReadLabel(r io.Reader) (*Label, error) {
	var label Label
	if err := xml.NewDecoder(r).Decode(&label); err != nil {
		return nil, types.Wrap(types.ErrBadLabel, err)
	}

	return &label, nil
}

func ReadLabelFile(path string) (*Label, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, types.Wrap(types.ErrBadLabel, err)
	}
	defer file.Close() //nolint:errcheck

	return ReadLabel(file)
}

func (l *Label) LIDVID() (LIDVID, error) {
	return NewLIDVID(l.Identification.LogicalIdentifier, l.Identification.VersionID)
}

func (l *Label) IsCollection() bool {
	return l.Identification.ProductClass == "Product_Collection"
}

// CollectionVersion returns the version of a collection label.
func (l *Label) CollectionVersion() (Version, error) {
	if !l.IsCollection() {
		return nil, types.ErrNotCollection
	}

	return ParseVersion(l.Identification.VersionID)
}

func (l *Label) StartTime() (time.Time, error) {
	return ParseDateTime(l.Observation.TimeCoordinates.StartDateTime)
}

func (l *Label) StopTime() (time.Time, error) {
	return ParseDateTime(l.Observation.TimeCoordinates.StopDateTime)
}

func (l *Label) ExposureDuration() (float64, bool) {
	img := l.Observation.DisciplineArea.Img
	if img == nil || img.Exposure == nil {
		return 0, false
	}
	return img.Exposure.ExposureDuration, true
}

func (l *Label) FilterName() (string, bool) {
	img := l.Observation.DisciplineArea.Img
	if img == nil || img.OpticalFilter == nil {
		return "", false
	}
	return img.OpticalFilter.FilterName, true
}

func (l *Label) Survey() *Survey {
	return l.Observation.DisciplineArea.Survey
}

// cornerOrder is the order the FOV corners are stored in.
var cornerOrder = []string{"Top Left", "Top Right", "Bottom Right", "Bottom Left"}

// Corners returns the image corner coordinates in storage order.
func (l *Label) Corners() (ra []float64, dec []float64, err error) {
	survey := l.Survey()
	if survey == nil {
		return nil, nil, types.Wrapf(types.ErrBadLabel, "missing Survey area")
	}

	for _, name := range cornerOrder {
		found := false
		for _, corner := range survey.ImageCorners {
			if corner.CornerIdentification == name {
				ra = append(ra, corner.Coordinate.RightAscension)
				dec = append(dec, corner.Coordinate.Declination)
				found = true
				break
			}
		}
		if !found {
			return nil, nil, types.Wrapf(types.ErrBadLabel, "missing image corner %q", name)
		}
	}

	return ra, dec, nil
}

// Maglimit returns the n-sigma limiting magnitude, if present.
func (l *Label) Maglimit() (float64, bool) {
	survey := l.Survey()
	if survey == nil || survey.LimitingMagnitudes == nil || survey.LimitingMagnitudes.NSigmaLimit == nil {
		return 0, false
	}
	return survey.LimitingMagnitudes.NSigmaLimit.LimitingMagnitude, true
}

// InventoryFileName returns the collection inventory file name, if present.
func (l *Label) InventoryFileName() (string, bool) {
	if l.InventoryArea == nil || l.InventoryArea.FileName == "" {
		return "", false
	}
	return l.InventoryArea.FileName, true
}

// DerivedLIDs returns the lid_references of data_to_derived_product entries.
func (l *Label) DerivedLIDs() []string {
	var lids []string
	for _, ref := range l.ReferenceList.InternalReferences {
		if ref.ReferenceType == "data_to_derived_product" {
			lids = append(lids, ref.LIDReference)
		}
	}
	return lids
}
