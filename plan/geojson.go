package plan

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// kindFromString maps a feature's "kind" property to an ElementKind.
// Unknown values default to room.
func kindFromString(s string) ElementKind {
	switch s {
	case string(KindRoom):
		return KindRoom
	case string(KindArea):
		return KindArea
	case string(KindOpening):
		return KindOpening
	case string(KindShaft):
		return KindShaft
	}
	return KindRoom
}

// ParsePlan decodes a GeoJSON FeatureCollection into plan elements.
// Polygon features become one element each; MultiPolygon features become
// one element per polygon, suffixed "_0", "_1", and so on. Features of
// other geometry types are skipped. Elements without an "id" property get
// a generated UUID.
func ParsePlan(data []byte) ([]Element, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing plan GeoJSON: %w", err)
	}

	var elements []Element
	for _, f := range fc.Features {
		kind := kindFromString(fmt.Sprint(f.Properties["kind"]))
		id := ""
		if v, ok := f.Properties["id"].(string); ok {
			id = v
		}
		height := 0.0
		if v, ok := f.Properties["height"].(float64); ok {
			height = v
		}

		switch geom := f.Geometry.(type) {
		case orb.Polygon:
			el := elementFromPolygon(geom, id, kind, height)
			if el != nil {
				elements = append(elements, *el)
			}
		case orb.MultiPolygon:
			base := id
			if base == "" {
				base = uuid.NewString()
			}
			for i, poly := range geom {
				el := elementFromPolygon(poly, fmt.Sprintf("%s_%d", base, i), kind, height)
				if el != nil {
					elements = append(elements, *el)
				}
			}
		}
	}
	return elements, nil
}

func elementFromPolygon(poly orb.Polygon, id string, kind ElementKind, height float64) *Element {
	if len(poly) == 0 {
		return nil
	}
	outer := ringFromOrb(poly[0])
	if len(outer) < 3 {
		return nil
	}
	if id == "" {
		id = uuid.NewString()
	}
	el := &Element{ID: id, Kind: kind, Outer: outer, Height: height}
	for _, r := range poly[1:] {
		inner := ringFromOrb(r)
		if len(inner) >= 3 {
			el.Inner = append(el.Inner, inner)
		}
	}
	return el
}

// ExportPlan encodes elements as a GeoJSON FeatureCollection. Each feature
// carries the element's id, kind, and height, plus computed area and
// perimeter properties when a calculator is supplied.
func ExportPlan(elements []Element, calc *Calculator) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for i := range elements {
		el := &elements[i]
		poly := orbPolygon(el)
		if poly == nil {
			continue
		}

		f := geojson.NewFeature(poly)
		f.Properties["id"] = el.ID
		f.Properties["kind"] = string(el.Kind)
		if el.Height > 0 {
			f.Properties["height"] = el.Height
		}
		if calc != nil {
			props := calc.Properties(el.Outer, el.Height)
			f.Properties["area"] = props.Area
			f.Properties["perimeter"] = props.Perimeter
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding plan GeoJSON: %w", err)
	}
	return data, nil
}
