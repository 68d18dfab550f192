package plan

import (
	"hash/fnv"
	"math"
	"sync"
)

// DefaultElementHeight is assumed for volume computation when an element
// carries no explicit height.
const DefaultElementHeight = 3.0

// Calculator computes per-element metrics and pairwise adjacency. Property
// results are cached by ring content and height; the cache is never
// invalidated automatically — callers must ClearCache after editing
// geometry. Safe for concurrent use.
type Calculator struct {
	mu            sync.Mutex
	defaultHeight float64
	cache         map[uint64]GeometricProperties
}

// NewCalculator creates a calculator. Non-positive default heights fall
// back to DefaultElementHeight.
func NewCalculator(defaultHeight float64) *Calculator {
	if defaultHeight <= 0 {
		defaultHeight = DefaultElementHeight
	}
	return &Calculator{
		defaultHeight: defaultHeight,
		cache:         make(map[uint64]GeometricProperties),
	}
}

// propertiesKey hashes the raw coordinate bits plus the height so that
// identical inputs share a cache entry without string allocation.
func propertiesKey(ring Ring, height float64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	write := func(v float64) {
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf[:])
	}
	for _, p := range ring {
		write(p.X)
		write(p.Y)
	}
	write(height)
	return h.Sum64()
}

// Properties computes all geometric metrics for a ring. A height of 0
// means unknown: volume uses the calculator's default height and the
// Height field stays 0. The self-intersection flag is a sampled probe for
// speed; use Validator.Validate for an exhaustive check.
func (c *Calculator) Properties(ring Ring, height float64) GeometricProperties {
	key := propertiesKey(ring, height)

	c.mu.Lock()
	if props, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return props
	}
	c.mu.Unlock()

	pts := openRing(ring)

	signedArea := Area(pts)
	area := math.Abs(signedArea)
	perimeter := Perimeter(pts)
	centroid, _ := Centroid(pts)
	bounds, _ := BoundsOf(pts)

	// Probe roughly every n/10th segment pair rather than all pairs.
	probeStep := 1
	if n := len(pts); n > 10 {
		probeStep = n / 10
	}

	elementHeight := height
	if elementHeight <= 0 {
		elementHeight = c.defaultHeight
	}
	volume := 0.0
	if area > 0 {
		volume = area * elementHeight
	}
	reportedHeight := 0.0
	if height > 0 {
		reportedHeight = round2(elementHeight)
	}

	props := GeometricProperties{
		Area:      round2(area),
		Perimeter: round2(perimeter),
		Centroid:  Point{X: round2(centroid.X), Y: round2(centroid.Y)},
		Bounds: Bounds{
			MinX: round2(bounds.MinX), MinY: round2(bounds.MinY),
			MaxX: round2(bounds.MaxX), MaxY: round2(bounds.MaxY),
		},
		Clockwise:        signedArea < 0,
		SelfIntersecting: selfIntersects(pts, probeStep),
		Complexity:       round2(complexityFactor(area, perimeter)),
		Volume:           round2(volume),
		Height:           reportedHeight,
	}

	c.mu.Lock()
	c.cache[key] = props
	c.mu.Unlock()

	return props
}

// ClearCache drops all cached property results. Call after any geometry
// edit; the calculator has no change-notification mechanism of its own.
func (c *Calculator) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[uint64]GeometricProperties)
}

// CacheLen returns the number of cached property entries.
func (c *Calculator) CacheLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Adjacency infers the spatial relationship between two rings. The caller
// fills in the element IDs on the returned value.
//
// The shared-boundary length is a heuristic: segment pairs whose midpoints
// lie within tolerance contribute the average of the two segment lengths.
// It can both over- and under-count in concave or near-parallel
// configurations; the intended precision of the source behavior is
// ambiguous, so the heuristic is kept as-is.
//
// Classification: DIRECT when the shared boundary exceeds the tolerance
// (confidence scales with how far above it lies); otherwise INDIRECT when
// the centroid distance is within twice the tolerance (confidence decays
// linearly with distance); otherwise nil.
func (c *Calculator) Adjacency(a, b Ring, tolerance float64) *AdjacencyRelationship {
	if tolerance <= 0 {
		tolerance = 0.1
	}

	ca, okA := Centroid(a)
	cb, okB := Centroid(b)
	if !okA || !okB {
		return nil
	}
	dist := Distance(ca, cb)

	ptsA := openRing(a)
	ptsB := openRing(b)
	shared := sharedBoundaryLength(ptsA, ptsB, tolerance)

	var kind AdjacencyKind
	var confidence float64
	switch {
	case shared > tolerance:
		kind = AdjacencyDirect
		confidence = math.Min(1, shared/tolerance)
	case dist <= 2*tolerance:
		kind = AdjacencyIndirect
		confidence = math.Max(0.1, 1-dist/(2*tolerance))
	default:
		return nil
	}

	return &AdjacencyRelationship{
		Kind:             kind,
		SharedBoundary:   round2(shared),
		CentroidDistance: round2(dist),
		ContactPoints:    contactPoints(ptsA, ptsB, tolerance),
		Confidence:       round2(confidence),
	}
}

// sharedBoundaryLength accumulates the averaged length of segment pairs
// whose midpoints lie within tolerance of each other.
func sharedBoundaryLength(a, b Ring, tolerance float64) float64 {
	shared := 0.0
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		a1, a2 := a[i], a[(i+1)%na]
		midA := Point{X: (a1.X + a2.X) / 2, Y: (a1.Y + a2.Y) / 2}
		for j := 0; j < nb; j++ {
			b1, b2 := b[j], b[(j+1)%nb]
			midB := Point{X: (b1.X + b2.X) / 2, Y: (b1.Y + b2.Y) / 2}
			if Distance(midA, midB) <= tolerance {
				shared += (Distance(a1, a2) + Distance(b1, b2)) / 2
			}
		}
	}
	return shared
}

// contactPoints records the midpoints of vertex pairs that lie within
// tolerance of each other, capped at 10 entries.
func contactPoints(a, b Ring, tolerance float64) []Point {
	const maxContacts = 10
	var out []Point
	for _, pa := range a {
		for _, pb := range b {
			if Distance(pa, pb) <= tolerance {
				out = append(out, Point{
					X: round2((pa.X + pb.X) / 2),
					Y: round2((pa.Y + pb.Y) / 2),
				})
				if len(out) == maxContacts {
					return out
				}
			}
		}
	}
	return out
}
