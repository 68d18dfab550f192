package plan

import (
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlanJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"id": "kitchen", "kind": "room", "height": 2.7},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[0, 0], [4, 0], [4, 3], [0, 3], [0, 0]]]
      }
    },
    {
      "type": "Feature",
      "properties": {"kind": "opening"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[4, 1], [4.2, 1], [4.2, 2], [4, 2], [4, 1]]]
      }
    },
    {
      "type": "Feature",
      "properties": {"id": "ignored", "kind": "room"},
      "geometry": {"type": "Point", "coordinates": [1, 1]}
    }
  ]
}`

func TestParsePlan(t *testing.T) {
	elements, err := ParsePlan([]byte(samplePlanJSON))
	require.NoError(t, err)
	require.Len(t, elements, 2, "point features are skipped")

	kitchen := elements[0]
	assert.Equal(t, "kitchen", kitchen.ID)
	assert.Equal(t, KindRoom, kitchen.Kind)
	assert.Equal(t, 2.7, kitchen.Height)
	assert.Len(t, kitchen.Outer, 4, "closing vertex is stripped")
	assert.Equal(t, Point{X: 0, Y: 0}, kitchen.Outer[0])

	opening := elements[1]
	assert.Equal(t, KindOpening, opening.Kind)
	assert.NotEmpty(t, opening.ID, "missing id gets a generated UUID")
}

func TestParsePlanWithHole(t *testing.T) {
	data := `{
	  "type": "FeatureCollection",
	  "features": [{
	    "type": "Feature",
	    "properties": {"id": "hall", "kind": "room"},
	    "geometry": {
	      "type": "Polygon",
	      "coordinates": [
	        [[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]],
	        [[4, 4], [6, 4], [6, 6], [4, 6], [4, 4]]
	      ]
	    }
	  }]
	}`

	elements, err := ParsePlan([]byte(data))
	require.NoError(t, err)
	require.Len(t, elements, 1)
	require.Len(t, elements[0].Inner, 1)
	assert.Len(t, elements[0].Inner[0], 4)
}

func TestParsePlanMultiPolygon(t *testing.T) {
	data := `{
	  "type": "FeatureCollection",
	  "features": [{
	    "type": "Feature",
	    "properties": {"id": "wing", "kind": "area"},
	    "geometry": {
	      "type": "MultiPolygon",
	      "coordinates": [
	        [[[0, 0], [2, 0], [2, 2], [0, 2], [0, 0]]],
	        [[[5, 0], [7, 0], [7, 2], [5, 2], [5, 0]]]
	      ]
	    }
	  }]
	}`

	elements, err := ParsePlan([]byte(data))
	require.NoError(t, err)
	require.Len(t, elements, 2)
	assert.Equal(t, "wing_0", elements[0].ID)
	assert.Equal(t, "wing_1", elements[1].ID)
	assert.Equal(t, KindArea, elements[0].Kind)
}

func TestParsePlanUnknownKindDefaultsToRoom(t *testing.T) {
	data := `{
	  "type": "FeatureCollection",
	  "features": [{
	    "type": "Feature",
	    "properties": {"id": "x", "kind": "garage"},
	    "geometry": {
	      "type": "Polygon",
	      "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]
	    }
	  }]
	}`

	elements, err := ParsePlan([]byte(data))
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, KindRoom, elements[0].Kind)
}

func TestParsePlanInvalidJSON(t *testing.T) {
	_, err := ParsePlan([]byte("{not json"))
	assert.Error(t, err)
}

func TestExportPlan(t *testing.T) {
	elements := []Element{
		{ID: "kitchen", Kind: KindRoom, Outer: squareAt(0, 0, 4), Height: 2.7},
		{ID: "door", Kind: KindOpening, Outer: squareAt(4, 1, 0.2)},
	}

	data, err := ExportPlan(elements, NewCalculator(0))
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	f := fc.Features[0]
	assert.Equal(t, "kitchen", f.Properties["id"])
	assert.Equal(t, "room", f.Properties["kind"])
	assert.Equal(t, 2.7, f.Properties["height"])
	assert.Equal(t, 16.0, f.Properties["area"])
	assert.Equal(t, 16.0, f.Properties["perimeter"])
}

func TestExportPlanRoundTrip(t *testing.T) {
	original := []Element{
		{ID: "a", Kind: KindRoom, Outer: squareAt(0, 0, 4)},
	}

	data, err := ExportPlan(original, nil)
	require.NoError(t, err)

	parsed, err := ParsePlan(data)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, original[0].ID, parsed[0].ID)
	assert.Equal(t, original[0].Outer, parsed[0].Outer)
}
