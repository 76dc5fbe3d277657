package pds4

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Small-Bodies-Node/cs-harvester/types"
)

const observationalLabel = `<?xml version="1.0" encoding="UTF-8"?>
<Product_Observational xmlns="http://pds.nasa.gov/pds4/pds/v1"
    xmlns:img="http://pds.nasa.gov/pds4/img/v1"
    xmlns:survey="http://pds.nasa.gov/pds4/survey/v1">
  <Identification_Area>
    <logical_identifier>urn:nasa:pds:gbo.ast.atlas.survey:59613:01a59613o0586o.fits</logical_identifier>
    <version_id>1.0</version_id>
    <product_class>Product_Observational</product_class>
  </Identification_Area>
  <Observation_Area>
    <Time_Coordinates>
      <start_date_time>2022-02-03T10:30:00Z</start_date_time>
      <stop_date_time>2022-02-03T10:30:30Z</stop_date_time>
    </Time_Coordinates>
    <Discipline_Area>
      <img:Img>
        <img:Exposure>
          <img:exposure_duration unit="s">30.0</img:exposure_duration>
        </img:Exposure>
        <img:Optical_Filter>
          <img:filter_name>orange</img:filter_name>
        </img:Optical_Filter>
      </img:Img>
      <survey:Survey>
        <survey:field_id>SV040N28</survey:field_id>
        <survey:Image_Corners>
          <survey:Corner_Position>
            <survey:corner_identification>Top Left</survey:corner_identification>
            <survey:Coordinate>
              <survey:right_ascension>38.0</survey:right_ascension>
              <survey:declination>29.0</survey:declination>
            </survey:Coordinate>
          </survey:Corner_Position>
          <survey:Corner_Position>
            <survey:corner_identification>Bottom Left</survey:corner_identification>
            <survey:Coordinate>
              <survey:right_ascension>38.0</survey:right_ascension>
              <survey:declination>27.0</survey:declination>
            </survey:Coordinate>
          </survey:Corner_Position>
          <survey:Corner_Position>
            <survey:corner_identification>Top Right</survey:corner_identification>
            <survey:Coordinate>
              <survey:right_ascension>42.0</survey:right_ascension>
              <survey:declination>29.0</survey:declination>
            </survey:Coordinate>
          </survey:Corner_Position>
          <survey:Corner_Position>
            <survey:corner_identification>Bottom Right</survey:corner_identification>
            <survey:Coordinate>
              <survey:right_ascension>42.0</survey:right_ascension>
              <survey:declination>27.0</survey:declination>
            </survey:Coordinate>
          </survey:Corner_Position>
        </survey:Image_Corners>
        <survey:Limiting_Magnitudes>
          <survey:N_Sigma_Limit>
            <survey:limiting_magnitude>19.5</survey:limiting_magnitude>
          </survey:N_Sigma_Limit>
        </survey:Limiting_Magnitudes>
      </survey:Survey>
    </Discipline_Area>
  </Observation_Area>
  <Reference_List>
    <Internal_Reference>
      <lid_reference>urn:nasa:pds:gbo.ast.atlas.survey:59613:01a59613o0586o.diff</lid_reference>
      <reference_type>data_to_derived_product</reference_type>
    </Internal_Reference>
    <Internal_Reference>
      <lid_reference>urn:nasa:pds:gbo.ast.atlas.survey:document:collection</lid_reference>
      <reference_type>data_to_document</reference_type>
    </Internal_Reference>
  </Reference_List>
</Product_Observational>`

const collectionLabel = `<?xml version="1.0" encoding="UTF-8"?>
<Product_Collection xmlns="http://pds.nasa.gov/pds4/pds/v1">
  <Identification_Area>
    <logical_identifier>urn:nasa:pds:gbo.ast.atlas.survey:59613</logical_identifier>
    <version_id>2.0</version_id>
    <product_class>Product_Collection</product_class>
  </Identification_Area>
  <File_Area_Inventory>
    <File>
      <file_name>collection_59613_inventory.csv</file_name>
    </File>
  </File_Area_Inventory>
</Product_Collection>`

func TestReadLabel(t *testing.T) {
	label, err := ReadLabel(strings.NewReader(observationalLabel))
	require.NoError(t, err)

	lidvid, err := label.LIDVID()
	require.NoError(t, err)
	require.Equal(t, "urn:nasa:pds:gbo.ast.atlas.survey:59613:01a59613o0586o.fits::1.0", lidvid.String())
	require.False(t, label.IsCollection())

	start, err := label.StartTime()
	require.NoError(t, err)
	stop, err := label.StopTime()
	require.NoError(t, err)
	require.Equal(t, 30.0, stop.Sub(start).Seconds())

	exposure, ok := label.ExposureDuration()
	require.True(t, ok)
	require.Equal(t, 30.0, exposure)

	filter, ok := label.FilterName()
	require.True(t, ok)
	require.Equal(t, "orange", filter)

	maglimit, ok := label.Maglimit()
	require.True(t, ok)
	require.Equal(t, 19.5, maglimit)
}

func TestLabelCorners(t *testing.T) {
	label, err := ReadLabel(strings.NewReader(observationalLabel))
	require.NoError(t, err)

	ra, dec, err := label.Corners()
	require.NoError(t, err)
	require.Equal(t, []float64{38, 42, 42, 38}, ra)
	require.Equal(t, []float64{29, 29, 27, 27}, dec)
}

func TestLabelDerivedLIDs(t *testing.T) {
	label, err := ReadLabel(strings.NewReader(observationalLabel))
	require.NoError(t, err)

	require.Equal(t,
		[]string{"urn:nasa:pds:gbo.ast.atlas.survey:59613:01a59613o0586o.diff"},
		label.DerivedLIDs())
}

func TestCollectionLabel(t *testing.T) {
	label, err := ReadLabel(strings.NewReader(collectionLabel))
	require.NoError(t, err)
	require.True(t, label.IsCollection())

	v, err := label.CollectionVersion()
	require.NoError(t, err)
	require.Equal(t, Version{2, 0}, v)

	name, ok := label.InventoryFileName()
	require.True(t, ok)
	require.Equal(t, "collection_59613_inventory.csv", name)
}

func TestCollectionVersionNotCollection(t *testing.T) {
	label, err := ReadLabel(strings.NewReader(observationalLabel))
	require.NoError(t, err)

	_, err = label.CollectionVersion()
	require.ErrorIs(t, err, types.ErrNotCollection)
}

func TestReadLabelBadXML(t *testing.T) {
	_, err := ReadLabel(strings.NewReader("<unterminated"))
	require.ErrorIs(t, err, types.ErrBadLabel)
}
