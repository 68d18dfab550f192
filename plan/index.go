package plan

import (
	"math"
	"sync"
)

// DefaultIndexGridSize is the cell size (meters) used when none is given.
// It should be tuned to typical element size: too small registers each
// element in many cells, too large produces many false broad-phase
// candidates.
const DefaultIndexGridSize = 10.0

type gridCell struct {
	X, Y int
}

// SpatialIndex is a uniform-grid index over element bounding boxes. It
// stores only element IDs and cached bounds, never the geometry itself;
// callers must Remove/Insert an element whenever its geometry changes.
// Safe for concurrent use.
type SpatialIndex struct {
	mu       sync.Mutex
	gridSize float64
	cells    map[gridCell]map[string]struct{}
	bounds   map[string]Bounds
}

// NewSpatialIndex creates an index with the given grid cell size in
// meters. Non-positive sizes fall back to DefaultIndexGridSize.
func NewSpatialIndex(gridSize float64) *SpatialIndex {
	if gridSize <= 0 {
		gridSize = DefaultIndexGridSize
	}
	return &SpatialIndex{
		gridSize: gridSize,
		cells:    make(map[gridCell]map[string]struct{}),
		bounds:   make(map[string]Bounds),
	}
}

// GridSize returns the configured cell size.
func (ix *SpatialIndex) GridSize() float64 { return ix.gridSize }

func (ix *SpatialIndex) cellAt(x, y float64) gridCell {
	return gridCell{
		X: int(math.Floor(x / ix.gridSize)),
		Y: int(math.Floor(y / ix.gridSize)),
	}
}

func (ix *SpatialIndex) cellsFor(b Bounds) []gridCell {
	lo := ix.cellAt(b.MinX, b.MinY)
	hi := ix.cellAt(b.MaxX, b.MaxY)
	cells := make([]gridCell, 0, (hi.X-lo.X+1)*(hi.Y-lo.Y+1))
	for cx := lo.X; cx <= hi.X; cx++ {
		for cy := lo.Y; cy <= hi.Y; cy++ {
			cells = append(cells, gridCell{X: cx, Y: cy})
		}
	}
	return cells
}

// Insert registers the element's bounding box under every grid cell the
// box overlaps. Re-inserting an existing ID replaces its prior entry.
// Returns false when the ring yields no valid bounds (empty or entirely
// non-finite), in which case the index is unchanged.
func (ix *SpatialIndex) Insert(id string, ring Ring) bool {
	b, ok := BoundsOf(ring)
	if !ok {
		return false
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(id)
	ix.bounds[id] = b
	for _, cell := range ix.cellsFor(b) {
		bucket := ix.cells[cell]
		if bucket == nil {
			bucket = make(map[string]struct{})
			ix.cells[cell] = bucket
		}
		bucket[id] = struct{}{}
	}
	return true
}

// Remove deletes the element from every cell it was registered in and
// drops its cached bounds. Unknown IDs are a no-op.
func (ix *SpatialIndex) Remove(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(id)
}

func (ix *SpatialIndex) removeLocked(id string) {
	b, ok := ix.bounds[id]
	if !ok {
		return
	}
	for _, cell := range ix.cellsFor(b) {
		if bucket, ok := ix.cells[cell]; ok {
			delete(bucket, id)
			if len(bucket) == 0 {
				delete(ix.cells, cell)
			}
		}
	}
	delete(ix.bounds, id)
}

// Query returns the IDs of all elements whose stored bounding box
// intersects the query rectangle. The broad phase collects candidates
// from overlapped cells; the narrow phase filters out false positives
// from coarse bucketing.
func (ix *SpatialIndex) Query(min, max Point) map[string]bool {
	q := Bounds{
		MinX: minf(min.X, max.X),
		MinY: minf(min.Y, max.Y),
		MaxX: maxf(min.X, max.X),
		MaxY: maxf(min.Y, max.Y),
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	result := make(map[string]bool)
	for _, cell := range ix.cellsFor(q) {
		for id := range ix.cells[cell] {
			if result[id] {
				continue
			}
			if ix.bounds[id].Intersects(q) {
				result[id] = true
			}
		}
	}
	return result
}

// QueryPoint returns elements near (x, y): it queries a square of
// half-width radius centered on the point. A radius of 0 degenerates to
// an exact point probe.
func (ix *SpatialIndex) QueryPoint(x, y, radius float64) map[string]bool {
	if radius < 0 {
		radius = 0
	}
	return ix.Query(
		Point{X: x - radius, Y: y - radius},
		Point{X: x + radius, Y: y + radius},
	)
}

// ElementBounds returns the cached bounding box for an indexed element.
func (ix *SpatialIndex) ElementBounds(id string) (Bounds, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	b, ok := ix.bounds[id]
	return b, ok
}

// Len returns the number of indexed elements.
func (ix *SpatialIndex) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.bounds)
}
