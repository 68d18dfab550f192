package plan

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Processor ties the engine together: it owns the element set, keeps the
// spatial index in sync, validates geometry on write, and serves property
// and adjacency queries. Safe for concurrent use.
type Processor struct {
	mu       sync.Mutex
	elements map[string]Element

	index     *SpatialIndex
	calc      *Calculator
	validator *Validator
	snap      *SnapSystem
	geometry  *GeometryProvider

	tolerance float64
}

// NewProcessor builds a processor from configuration. A nil config uses
// DefaultConfig.
func NewProcessor(config *Config) *Processor {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Processor{
		elements:  make(map[string]Element),
		index:     NewSpatialIndex(config.Geometry.IndexGridSize),
		calc:      NewCalculator(config.Geometry.DefaultHeight),
		validator: config.Validator(),
		tolerance: config.Geometry.Tolerance,
	}

	snapSettings := config.SnapSettings()
	p.snap = NewSnapSystem(&snapSettings)
	p.geometry = NewGeometryProvider(p.Elements)
	p.snap.AddProvider(p.geometry)
	p.snap.AddProvider(NewGridProvider(snapSettings.GridSize, Point{}))

	return p
}

// Snap exposes the processor's snap system.
func (p *Processor) Snap() *SnapSystem { return p.snap }

// Calculator exposes the processor's property calculator.
func (p *Processor) Calculator() *Calculator { return p.calc }

// Validator exposes the processor's geometry validator.
func (p *Processor) Validator() *Validator { return p.validator }

// AddElement validates and stores an element. An empty ID gets a
// generated UUID; the assigned ID is returned. Validation errors reject
// the element, warnings are logged and accepted.
func (p *Processor) AddElement(el Element) (string, error) {
	result := p.validator.Validate(el.Outer, el.Kind)
	if !result.IsValid {
		return "", fmt.Errorf("invalid %s geometry: %v", el.Kind, result.Errors)
	}
	for _, w := range result.Warnings {
		log.Printf("element %s: %s", el.ID, w)
	}

	if el.ID == "" {
		el.ID = uuid.NewString()
	}

	p.mu.Lock()
	if _, exists := p.elements[el.ID]; exists {
		p.mu.Unlock()
		return "", fmt.Errorf("element %s already exists", el.ID)
	}
	p.elements[el.ID] = el
	p.mu.Unlock()

	p.index.Insert(el.ID, el.Outer)
	p.geometry.Invalidate()
	return el.ID, nil
}

// UpdateElement replaces an existing element's geometry and reindexes it.
func (p *Processor) UpdateElement(el Element) error {
	if el.ID == "" {
		return fmt.Errorf("element ID is required")
	}
	result := p.validator.Validate(el.Outer, el.Kind)
	if !result.IsValid {
		return fmt.Errorf("invalid %s geometry: %v", el.Kind, result.Errors)
	}

	p.mu.Lock()
	if _, exists := p.elements[el.ID]; !exists {
		p.mu.Unlock()
		return fmt.Errorf("element %s not found", el.ID)
	}
	p.elements[el.ID] = el
	p.mu.Unlock()

	p.index.Insert(el.ID, el.Outer)
	p.geometry.Invalidate()
	return nil
}

// RemoveElement deletes an element and its index entry.
func (p *Processor) RemoveElement(id string) error {
	p.mu.Lock()
	if _, exists := p.elements[id]; !exists {
		p.mu.Unlock()
		return fmt.Errorf("element %s not found", id)
	}
	delete(p.elements, id)
	p.mu.Unlock()

	p.index.Remove(id)
	p.geometry.Invalidate()
	return nil
}

// Element returns an element by ID.
func (p *Processor) Element(id string) (Element, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el, ok := p.elements[id]
	return el, ok
}

// Elements returns all elements sorted by ID.
func (p *Processor) Elements() []Element {
	p.mu.Lock()
	out := make([]Element, 0, len(p.elements))
	for _, el := range p.elements {
		out = append(out, el)
	}
	p.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Properties computes the geometric properties of an element's outer
// ring.
func (p *Processor) Properties(id string) (GeometricProperties, error) {
	el, ok := p.Element(id)
	if !ok {
		return GeometricProperties{}, fmt.Errorf("element %s not found", id)
	}
	return p.calc.Properties(el.Outer, el.Height), nil
}

// Validate re-runs validation for a stored element.
func (p *Processor) Validate(id string) (ValidationResult, error) {
	el, ok := p.Element(id)
	if !ok {
		return ValidationResult{}, fmt.Errorf("element %s not found", id)
	}
	return p.validator.Validate(el.Outer, el.Kind), nil
}

// QueryRegion returns the IDs of elements whose bounds intersect the
// rectangle, sorted.
func (p *Processor) QueryRegion(min, max Point) []string {
	hits := p.index.Query(min, max)
	ids := make([]string, 0, len(hits))
	for id := range hits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Adjacencies detects adjacency relationships between an element and its
// spatial neighbors. Candidate pairs come from an index query over the
// element's bounds grown by the tolerance.
func (p *Processor) Adjacencies(id string) ([]AdjacencyRelationship, error) {
	el, ok := p.Element(id)
	if !ok {
		return nil, fmt.Errorf("element %s not found", id)
	}
	bounds, ok := p.index.ElementBounds(id)
	if !ok {
		return nil, fmt.Errorf("element %s not indexed", id)
	}

	grow := p.tolerance * 10
	hits := p.index.Query(
		Point{X: bounds.MinX - grow, Y: bounds.MinY - grow},
		Point{X: bounds.MaxX + grow, Y: bounds.MaxY + grow},
	)

	var ids []string
	for other := range hits {
		if other != id {
			ids = append(ids, other)
		}
	}
	sort.Strings(ids)

	var out []AdjacencyRelationship
	for _, other := range ids {
		neighbor, ok := p.Element(other)
		if !ok {
			continue
		}
		rel := p.calc.Adjacency(el.Outer, neighbor.Outer, p.tolerance)
		if rel == nil {
			continue
		}
		rel.Element1ID = el.ID
		rel.Element2ID = neighbor.ID
		out = append(out, *rel)
	}
	return out, nil
}

// AllAdjacencies runs the pairwise adjacency sweep over the whole plan.
// Each related pair appears once, with Element1ID < Element2ID.
func (p *Processor) AllAdjacencies() []AdjacencyRelationship {
	var out []AdjacencyRelationship
	for _, el := range p.Elements() {
		rels, err := p.Adjacencies(el.ID)
		if err != nil {
			continue
		}
		for _, rel := range rels {
			if rel.Element1ID < rel.Element2ID {
				out = append(out, rel)
			}
		}
	}
	return out
}

// BuildingStatistics aggregates plan-wide metrics.
type BuildingStatistics struct {
	Counts          map[ElementKind]int `json:"counts"`
	TotalArea       float64             `json:"totalArea"`   // m²
	TotalVolume     float64             `json:"totalVolume"` // m³
	AverageRoomArea float64             `json:"averageRoomArea"`
	MeanComplexity  float64             `json:"meanComplexity"`
	Bounds          Bounds              `json:"bounds"`
}

// Statistics computes aggregate metrics over every element.
func (p *Processor) Statistics() BuildingStatistics {
	stats := BuildingStatistics{Counts: make(map[ElementKind]int)}

	var roomArea, complexity float64
	n := 0
	haveBounds := false
	for _, el := range p.Elements() {
		props := p.calc.Properties(el.Outer, el.Height)
		stats.Counts[el.Kind]++
		stats.TotalArea += props.Area
		stats.TotalVolume += props.Volume
		complexity += props.Complexity
		n++
		if el.Kind == KindRoom {
			roomArea += props.Area
		}
		if !haveBounds {
			stats.Bounds = props.Bounds
			haveBounds = true
		} else {
			stats.Bounds = stats.Bounds.Union(props.Bounds)
		}
	}

	if rooms := stats.Counts[KindRoom]; rooms > 0 {
		stats.AverageRoomArea = round2(roomArea / float64(rooms))
	}
	if n > 0 {
		stats.MeanComplexity = round2(complexity / float64(n))
	}
	stats.TotalArea = round2(stats.TotalArea)
	stats.TotalVolume = round2(stats.TotalVolume)
	return stats
}

// OptimizeElements decimates every element's rings at the given tolerance
// and reindexes the survivors. Elements whose simplified outer ring no
// longer validates keep their original geometry. Returns the number of
// vertices removed across the plan.
func (p *Processor) OptimizeElements(tolerance float64) int {
	if tolerance <= 0 {
		return 0
	}

	removed := 0
	for _, el := range p.Elements() {
		before := len(openRing(el.Outer))
		if before <= 4 {
			continue
		}
		outer := DecimateRing(el.Outer, tolerance)
		if len(outer) >= before {
			continue
		}
		if res := p.validator.Validate(outer, el.Kind); !res.IsValid {
			continue
		}

		el.Outer = outer
		for i, inner := range el.Inner {
			el.Inner[i] = DecimateRing(inner, tolerance)
		}

		p.mu.Lock()
		p.elements[el.ID] = el
		p.mu.Unlock()
		p.index.Insert(el.ID, el.Outer)
		removed += before - len(outer)
	}

	if removed > 0 {
		p.calc.ClearCache()
		p.geometry.Invalidate()
	}
	return removed
}

// LoadGeoJSON parses a GeoJSON document and adds its elements. Returns
// the IDs added; elements failing validation are skipped with a log line.
func (p *Processor) LoadGeoJSON(data []byte) ([]string, error) {
	elements, err := ParsePlan(data)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, el := range elements {
		id, err := p.AddElement(el)
		if err != nil {
			log.Printf("skipping element %s: %v", el.ID, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ExportGeoJSON encodes the current plan as GeoJSON with computed
// properties.
func (p *Processor) ExportGeoJSON() ([]byte, error) {
	return ExportPlan(p.Elements(), p.calc)
}

// Stats summarizes processor state for diagnostics.
type ProcessorStats struct {
	Elements  int
	Indexed   int
	CacheSize int
	SnapStats SnapStats
}

// Stats returns current counters.
func (p *Processor) Stats() ProcessorStats {
	p.mu.Lock()
	n := len(p.elements)
	p.mu.Unlock()

	return ProcessorStats{
		Elements:  n,
		Indexed:   p.index.Len(),
		CacheSize: p.calc.CacheLen(),
		SnapStats: p.snap.Stats(),
	}
}
