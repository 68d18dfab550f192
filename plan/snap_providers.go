package plan

import (
	"fmt"
	"math"
	"sync"
)

type snapVertex struct {
	point     Point
	elementID string
	kind      string
	index     int
}

type snapEdge struct {
	a, b      Point
	elementID string
	kind      string
	index     int
}

// GeometryProvider offers vertex, edge, midpoint, and intersection snap
// targets derived from plan elements. The element list is pulled lazily
// from the source callback and cached until Invalidate is called.
type GeometryProvider struct {
	mu       sync.Mutex
	source   func() []Element
	vertices []snapVertex
	edges    []snapEdge
	valid    bool
}

// NewGeometryProvider creates a provider backed by the given element
// source. The callback is invoked outside the provider's lock.
func NewGeometryProvider(source func() []Element) *GeometryProvider {
	return &GeometryProvider{source: source}
}

func (gp *GeometryProvider) ID() string { return "geometry" }

// Invalidate drops the cached vertex and edge tables. Call it after any
// element geometry changes.
func (gp *GeometryProvider) Invalidate() {
	gp.mu.Lock()
	gp.valid = false
	gp.vertices = nil
	gp.edges = nil
	gp.mu.Unlock()
}

func (gp *GeometryProvider) ensureCache() ([]snapVertex, []snapEdge) {
	gp.mu.Lock()
	if gp.valid {
		vertices, edges := gp.vertices, gp.edges
		gp.mu.Unlock()
		return vertices, edges
	}
	gp.mu.Unlock()

	var elements []Element
	if gp.source != nil {
		elements = gp.source()
	}

	var vertices []snapVertex
	var edges []snapEdge
	for _, el := range elements {
		vertices, edges = appendRing(vertices, edges, el.Outer, el.ID, string(el.Kind))
		for i, inner := range el.Inner {
			id := fmt.Sprintf("%s_inner_%d", el.ID, i)
			vertices, edges = appendRing(vertices, edges, inner, id, string(el.Kind))
		}
	}

	gp.mu.Lock()
	gp.vertices = vertices
	gp.edges = edges
	gp.valid = true
	gp.mu.Unlock()
	return vertices, edges
}

func appendRing(vertices []snapVertex, edges []snapEdge, ring Ring, id, kind string) ([]snapVertex, []snapEdge) {
	pts := openRing(ring)
	if len(pts) < 2 {
		return vertices, edges
	}
	for i, p := range pts {
		vertices = append(vertices, snapVertex{point: p, elementID: id, kind: kind, index: i})
	}
	for i := range pts {
		j := (i + 1) % len(pts)
		edges = append(edges, snapEdge{a: pts[i], b: pts[j], elementID: id, kind: kind, index: i})
	}
	return vertices, edges
}

// Candidates returns geometric snap targets within tolerance of (x, y).
func (gp *GeometryProvider) Candidates(x, y, tolerancePx float64, types map[SnapType]bool, transform CoordinateTransform) []SnapCandidate {
	vertices, edges := gp.ensureCache()

	worldTol := tolerancePx
	if transform != nil {
		if s := transform.Scale(); s > 0 {
			worldTol = tolerancePx / s
		}
	}
	query := Point{X: x, Y: y}

	var out []SnapCandidate
	if types[SnapVertex] {
		for _, v := range vertices {
			d := Distance(query, v.point)
			if d <= worldTol {
				out = append(out, SnapCandidate{
					Point:       v.point,
					Type:        SnapVertex,
					Distance:    d,
					Priority:    DefaultPriority(SnapVertex),
					ElementID:   v.elementID,
					ElementType: v.kind,
					VertexIndex: v.index,
					EdgeIndex:   -1,
				})
			}
		}
	}

	if types[SnapEdge] || types[SnapMidpoint] {
		for _, e := range edges {
			if types[SnapEdge] {
				proj := closestPointOnSegment(query, e.a, e.b)
				d := Distance(query, proj)
				if d <= worldTol {
					out = append(out, SnapCandidate{
						Point:       proj,
						Type:        SnapEdge,
						Distance:    d,
						Priority:    DefaultPriority(SnapEdge),
						ElementID:   e.elementID,
						ElementType: e.kind,
						VertexIndex: -1,
						EdgeIndex:   e.index,
					})
				}
			}
			if types[SnapMidpoint] {
				mid := Point{X: (e.a.X + e.b.X) / 2, Y: (e.a.Y + e.b.Y) / 2}
				d := Distance(query, mid)
				if d <= worldTol {
					out = append(out, SnapCandidate{
						Point:       mid,
						Type:        SnapMidpoint,
						Distance:    d,
						Priority:    DefaultPriority(SnapMidpoint),
						ElementID:   e.elementID,
						ElementType: e.kind,
						VertexIndex: -1,
						EdgeIndex:   e.index,
					})
				}
			}
		}
	}

	if types[SnapIntersection] {
		out = append(out, gp.intersections(query, worldTol, edges)...)
	}

	return out
}

// intersections finds crossing points between edges of different elements
// near the query point. Same-element pairs are skipped since their
// crossings are either shared vertices or validation errors.
func (gp *GeometryProvider) intersections(query Point, worldTol float64, edges []snapEdge) []SnapCandidate {
	var out []SnapCandidate
	for i := 0; i < len(edges); i++ {
		for j := i + 1; j < len(edges); j++ {
			if edges[i].elementID == edges[j].elementID {
				continue
			}
			pt, ok := SegmentIntersection(edges[i].a, edges[i].b, edges[j].a, edges[j].b)
			if !ok {
				continue
			}
			d := Distance(query, pt)
			if d <= worldTol {
				out = append(out, SnapCandidate{
					Point:       pt,
					Type:        SnapIntersection,
					Distance:    d,
					Priority:    DefaultPriority(SnapIntersection),
					ElementID:   edges[i].elementID,
					ElementType: edges[i].kind,
					VertexIndex: -1,
					EdgeIndex:   edges[i].index,
				})
			}
		}
	}
	return out
}

// GridProvider snaps to a regular grid anchored at an origin.
type GridProvider struct {
	mu     sync.Mutex
	size   float64
	origin Point
}

// NewGridProvider creates a grid provider. Non-positive sizes fall back
// to a 1-unit grid.
func NewGridProvider(size float64, origin Point) *GridProvider {
	if size <= 0 {
		size = 1
	}
	return &GridProvider{size: size, origin: origin}
}

func (gp *GridProvider) ID() string { return "grid" }

// SetSize updates the grid spacing. Non-positive values are ignored.
func (gp *GridProvider) SetSize(size float64) {
	if size <= 0 {
		return
	}
	gp.mu.Lock()
	gp.size = size
	gp.mu.Unlock()
}

// Candidates returns the nearest grid node when it lies within tolerance.
func (gp *GridProvider) Candidates(x, y, tolerancePx float64, types map[SnapType]bool, transform CoordinateTransform) []SnapCandidate {
	if !types[SnapGrid] {
		return nil
	}

	gp.mu.Lock()
	size, origin := gp.size, gp.origin
	gp.mu.Unlock()

	worldTol := tolerancePx
	if transform != nil {
		if s := transform.Scale(); s > 0 {
			worldTol = tolerancePx / s
		}
	}

	node := Point{
		X: origin.X + math.Round((x-origin.X)/size)*size,
		Y: origin.Y + math.Round((y-origin.Y)/size)*size,
	}
	d := Distance(Point{X: x, Y: y}, node)
	if d > worldTol {
		return nil
	}
	return []SnapCandidate{{
		Point:       node,
		Type:        SnapGrid,
		Distance:    d,
		Priority:    DefaultPriority(SnapGrid),
		VertexIndex: -1,
		EdgeIndex:   -1,
	}}
}
