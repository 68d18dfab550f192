// Package plan implements the geometry and spatial-query engine for
// building floorplans: polygon primitives, a grid-based spatial index, a
// geometry validator, an adjacency/metrics calculator, and an interactive
// snapping system. All coordinates are planar and in meters.
package plan

// Point represents a 2D coordinate in world space (meters).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Ring is an ordered sequence of points describing one closed polygon
// boundary (outer contour or hole). Both open rings and rings that repeat
// the first point at the end are accepted everywhere; the kernel treats
// them identically.
type Ring []Point

// ElementKind identifies the architectural role of an element.
type ElementKind string

const (
	KindRoom    ElementKind = "room"
	KindArea    ElementKind = "area"
	KindOpening ElementKind = "opening"
	KindShaft   ElementKind = "shaft"
)

// Element is a building element as supplied by the caller: an identifier,
// a kind, one outer ring, optional holes, and an optional height in meters
// (0 means unknown). The engine never mutates an element's rings.
type Element struct {
	ID     string      `json:"id"`
	Kind   ElementKind `json:"kind"`
	Outer  Ring        `json:"outer"`
	Inner  []Ring      `json:"inner,omitempty"`
	Height float64     `json:"height,omitempty"`
}

// Bounds is an axis-aligned bounding rectangle, always normalized
// (MinX <= MaxX, MinY <= MaxY). Functions returning Bounds pair it with an
// ok bool; a Bounds is never constructed from an empty point set.
type Bounds struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Intersects reports whether the two rectangles overlap (touching edges
// count as overlapping).
func (b Bounds) Intersects(o Bounds) bool {
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX &&
		b.MinY <= o.MaxY && b.MaxY >= o.MinY
}

// Union returns the smallest rectangle containing both.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		MinX: minf(b.MinX, o.MinX),
		MinY: minf(b.MinY, o.MinY),
		MaxX: maxf(b.MaxX, o.MaxX),
		MaxY: maxf(b.MaxY, o.MaxY),
	}
}

// ValidationResult is the outcome of validating a single ring. Structural
// errors set IsValid to false; warnings and recommendations are advisory
// and never block the caller. The metrics map carries computed values such
// as area, perimeter, orientation, and complexity.
type ValidationResult struct {
	IsValid         bool               `json:"isValid"`
	Errors          []string           `json:"errors"`
	Warnings        []string           `json:"warnings"`
	Recommendations []string           `json:"recommendations"`
	Metrics         map[string]float64 `json:"metrics"`
}

// GeometricProperties is the full set of per-element metrics computed by
// the Calculator. Numeric fields are quantized to coordinate precision
// (centimeters).
type GeometricProperties struct {
	Area             float64 `json:"area"`      // m², absolute value
	Perimeter        float64 `json:"perimeter"` // m
	Centroid         Point   `json:"centroid"`
	Bounds           Bounds  `json:"bounds"`
	Clockwise        bool    `json:"clockwise"`
	SelfIntersecting bool    `json:"selfIntersecting"`
	Complexity       float64 `json:"complexity"`       // isoperimetric ratio in [0,1]
	Volume           float64 `json:"volume,omitempty"` // m³, 0 when area is degenerate
	Height           float64 `json:"height,omitempty"` // m, 0 unless explicitly supplied
}

// AdjacencyKind classifies an inferred spatial relationship.
type AdjacencyKind string

const (
	AdjacencyDirect   AdjacencyKind = "direct"   // shared boundary
	AdjacencyIndirect AdjacencyKind = "indirect" // proximity only
)

// AdjacencyRelationship describes an inferred relationship between two
// elements. SharedBoundary is a heuristic estimate, not an exact overlap
// length (see Calculator.Adjacency).
type AdjacencyRelationship struct {
	Element1ID       string        `json:"element1Id"`
	Element2ID       string        `json:"element2Id"`
	Kind             AdjacencyKind `json:"kind"`
	SharedBoundary   float64       `json:"sharedBoundary"`   // m
	CentroidDistance float64       `json:"centroidDistance"` // m
	ContactPoints    []Point       `json:"contactPoints"`
	Confidence       float64       `json:"confidence"` // [0,1]
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
