package plan

import (
	"math"
	"strings"
	"sync"
)

// SnapType identifies a kind of snap target.
type SnapType string

const (
	SnapNone          SnapType = "none"
	SnapVertex        SnapType = "vertex"
	SnapEdge          SnapType = "edge"
	SnapMidpoint      SnapType = "midpoint"
	SnapIntersection  SnapType = "intersection"
	SnapPerpendicular SnapType = "perpendicular"
	SnapCenter        SnapType = "center"
	SnapGrid          SnapType = "grid"
	SnapOrtho         SnapType = "ortho"
)

// DefaultPriority returns the fixed arbitration priority for a snap type:
// vertex > intersection > midpoint > edge > perpendicular > center > grid
// > ortho. Higher wins.
func DefaultPriority(t SnapType) int {
	switch t {
	case SnapVertex:
		return 100
	case SnapIntersection:
		return 90
	case SnapMidpoint:
		return 80
	case SnapEdge:
		return 70
	case SnapPerpendicular:
		return 60
	case SnapCenter:
		return 50
	case SnapGrid:
		return 30
	case SnapOrtho:
		return 20
	}
	return 0
}

// SnapCandidate is a provisional snap target offered by a provider.
// Candidates are transient: produced and consumed within one Snap call.
type SnapCandidate struct {
	Point       Point
	Type        SnapType
	Distance    float64 // world units from the query point
	Priority    int
	ElementID   string
	ElementType string
	VertexIndex int // -1 when not applicable
	EdgeIndex   int // -1 when not applicable
}

// SnapPoint is the single winning candidate returned to the caller.
type SnapPoint struct {
	Point       Point    `json:"point"`
	Type        SnapType `json:"type"`
	Distance    float64  `json:"distance"`
	ElementID   string   `json:"elementId,omitempty"`
	ElementType string   `json:"elementType,omitempty"`
}

// CoordinateTransform is the caller-supplied bidirectional viewport
// transform. Scale (screen units per world unit) converts pixel
// tolerances into world units.
type CoordinateTransform interface {
	WorldToScreen(x, y float64) (float64, float64)
	ScreenToWorld(sx, sy float64) (float64, float64)
	Scale() float64
}

// SnapProvider supplies snap candidates near a query point. Providers are
// called without any SnapSystem lock held.
type SnapProvider interface {
	// ID uniquely identifies the provider within a SnapSystem.
	ID() string

	// Candidates returns targets near (x, y). The tolerance is the search
	// radius in pixels; implementations convert it to world units via the
	// transform (which may be nil, in which case the tolerance is already
	// in world units).
	Candidates(x, y, tolerancePx float64, types map[SnapType]bool, transform CoordinateTransform) []SnapCandidate
}

// SnapSettings holds all tunable snapping behavior. Tolerances are in
// pixels; grid size and origin are in world units; ortho angles are in
// degrees.
type SnapSettings struct {
	SnapEnabled  bool
	OrthoEnabled bool
	GridEnabled  bool

	VertexTolerance       float64
	EdgeTolerance         float64
	GridTolerance         float64
	IntersectionTolerance float64

	GridSize   float64
	GridOrigin Point

	// Priorities overrides DefaultPriority per type; absent types use the
	// default table.
	Priorities map[SnapType]int

	// EnabledTypes is the set of geometry snap types in use. Grid and
	// ortho are governed by their own flags, not this set.
	EnabledTypes map[SnapType]bool

	OrthoAngles    []float64
	OrthoTolerance float64 // degrees
}

// DefaultSnapSettings mirrors the interactive-editor defaults: snapping
// on, ortho and grid off, the standard tolerance table, and 45-degree
// ortho steps.
func DefaultSnapSettings() SnapSettings {
	return SnapSettings{
		SnapEnabled:           true,
		VertexTolerance:       10,
		EdgeTolerance:         8,
		GridTolerance:         5,
		IntersectionTolerance: 12,
		GridSize:              1,
		EnabledTypes: map[SnapType]bool{
			SnapVertex:       true,
			SnapEdge:         true,
			SnapMidpoint:     true,
			SnapIntersection: true,
			SnapGrid:         true,
		},
		OrthoAngles:    []float64{0, 45, 90, 135},
		OrthoTolerance: 5,
	}
}

// TypeEnabled reports whether a snap type participates in queries, taking
// the global flags into account.
func (s *SnapSettings) TypeEnabled(t SnapType) bool {
	if !s.SnapEnabled {
		return false
	}
	switch t {
	case SnapGrid:
		return s.GridEnabled
	case SnapOrtho:
		return s.OrthoEnabled
	default:
		return s.EnabledTypes[t]
	}
}

// Tolerance returns the pixel tolerance for a snap type. Ortho has no
// distance tolerance (it is a post-processing constraint).
func (s *SnapSettings) Tolerance(t SnapType) float64 {
	switch t {
	case SnapVertex, SnapCenter:
		return s.VertexTolerance
	case SnapEdge, SnapMidpoint, SnapPerpendicular:
		return s.EdgeTolerance
	case SnapIntersection:
		return s.IntersectionTolerance
	case SnapGrid:
		return s.GridTolerance
	case SnapOrtho:
		return math.Inf(1)
	}
	return 10
}

// Priority returns the arbitration priority for a snap type.
func (s *SnapSettings) Priority(t SnapType) int {
	if p, ok := s.Priorities[t]; ok {
		return p
	}
	return DefaultPriority(t)
}

// SnapStats counts snap activity for diagnostics.
type SnapStats struct {
	TotalQueries int
	Snapped      int
	CacheHits    int
}

// SnapSystem arbitrates candidates from registered providers and applies
// the orthogonal constraint. It holds its lock only around settings and
// cache access, never across a provider call. Safe for concurrent use.
type SnapSystem struct {
	mu        sync.Mutex
	settings  SnapSettings
	providers []SnapProvider

	haveLast   bool
	lastInput  Point
	lastResult Point

	stats SnapStats
}

// NewSnapSystem creates a snap system. A nil settings pointer uses
// DefaultSnapSettings.
func NewSnapSystem(settings *SnapSettings) *SnapSystem {
	s := DefaultSnapSettings()
	if settings != nil {
		s = *settings
	}
	if s.EnabledTypes == nil {
		s.EnabledTypes = DefaultSnapSettings().EnabledTypes
	}
	if len(s.OrthoAngles) == 0 {
		s.OrthoAngles = []float64{0, 45, 90, 135}
	}
	return &SnapSystem{settings: s}
}

// AddProvider registers a provider. A provider with the same ID replaces
// the existing one.
func (ss *SnapSystem) AddProvider(p SnapProvider) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for i, existing := range ss.providers {
		if existing.ID() == p.ID() {
			ss.providers[i] = p
			return
		}
	}
	ss.providers = append(ss.providers, p)
}

// RemoveProvider unregisters the provider with the given ID.
func (ss *SnapSystem) RemoveProvider(id string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for i, p := range ss.providers {
		if p.ID() == id {
			ss.providers = append(ss.providers[:i], ss.providers[i+1:]...)
			return
		}
	}
}

// Settings returns a copy of the current settings.
func (ss *SnapSystem) Settings() SnapSettings {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.settings
}

// Snap resolves a query point to its snapped position. The transform
// converts pixel tolerances to world units; reference, when non-nil,
// anchors the orthogonal constraint. The result is quantized to
// coordinate precision and cached, so a repeated query at numerically the
// same location short-circuits.
func (ss *SnapSystem) Snap(pt Point, transform CoordinateTransform, reference *Point) Point {
	ss.mu.Lock()
	ss.stats.TotalQueries++
	if ss.haveLast &&
		math.Abs(ss.lastInput.X-pt.X) < 1e-3 &&
		math.Abs(ss.lastInput.Y-pt.Y) < 1e-3 {
		ss.stats.CacheHits++
		result := ss.lastResult
		ss.mu.Unlock()
		return result
	}
	settings := ss.settings
	providers := make([]SnapProvider, len(ss.providers))
	copy(providers, ss.providers)
	ss.mu.Unlock()

	result := pt
	snapped := false
	if settings.SnapEnabled {
		if best := selectBest(collectCandidates(pt, &settings, providers, transform), &settings, transform); best != nil {
			result = best.Point
			snapped = true
		}
	}

	result = applyOrtho(result, reference, &settings)
	result = Point{X: round2(result.X), Y: round2(result.Y)}

	ss.mu.Lock()
	if snapped {
		ss.stats.Snapped++
	}
	ss.haveLast = true
	ss.lastInput = pt
	ss.lastResult = result
	ss.mu.Unlock()

	return result
}

// Peek returns the winning snap candidate for a query point without
// applying the orthogonal constraint or touching the cache. Useful for
// showing snap hints during editing. Returns nil when nothing qualifies.
func (ss *SnapSystem) Peek(pt Point, transform CoordinateTransform) *SnapPoint {
	ss.mu.Lock()
	settings := ss.settings
	providers := make([]SnapProvider, len(ss.providers))
	copy(providers, ss.providers)
	ss.mu.Unlock()

	if !settings.SnapEnabled {
		return nil
	}
	return selectBest(collectCandidates(pt, &settings, providers, transform), &settings, transform)
}

func collectCandidates(pt Point, settings *SnapSettings, providers []SnapProvider, transform CoordinateTransform) []SnapCandidate {
	enabled := make(map[SnapType]bool)
	for _, t := range []SnapType{
		SnapVertex, SnapEdge, SnapMidpoint, SnapIntersection,
		SnapPerpendicular, SnapCenter, SnapGrid, SnapOrtho,
	} {
		if settings.TypeEnabled(t) {
			enabled[t] = true
		}
	}

	searchTol := math.Max(settings.VertexTolerance, settings.EdgeTolerance)
	var all []SnapCandidate
	for _, p := range providers {
		all = append(all, p.Candidates(pt.X, pt.Y, searchTol, enabled, transform)...)
	}
	return all
}

// selectBest filters candidates by their kind-specific pixel tolerance and
// picks the winner by (highest priority, then smallest distance).
func selectBest(candidates []SnapCandidate, settings *SnapSettings, transform CoordinateTransform) *SnapPoint {
	scale := 1.0
	if transform != nil {
		if s := transform.Scale(); s > 0 {
			scale = s
		}
	}

	var best *SnapCandidate
	for i := range candidates {
		c := &candidates[i]
		if c.Distance*scale > settings.Tolerance(c.Type) {
			continue
		}
		priority := settings.Priority(c.Type)
		if best == nil ||
			priority > settings.Priority(best.Type) ||
			(priority == settings.Priority(best.Type) && c.Distance < best.Distance) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	return &SnapPoint{
		Point:       best.Point,
		Type:        best.Type,
		Distance:    best.Distance,
		ElementID:   best.ElementID,
		ElementType: best.ElementType,
	}
}

// applyOrtho projects the point onto the nearest allowed angle from the
// reference when orthogonal mode is active and the angular deviation is
// within tolerance. The projected point keeps its distance from the
// reference.
func applyOrtho(pt Point, reference *Point, settings *SnapSettings) Point {
	if !settings.OrthoEnabled || reference == nil {
		return pt
	}

	dx := pt.X - reference.X
	dy := pt.Y - reference.Y
	if math.Abs(dx) < 1e-3 && math.Abs(dy) < 1e-3 {
		return pt
	}

	angle := math.Atan2(dy, dx) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}

	bestAngle := 0.0
	bestDiff := math.Inf(1)
	for _, a := range settings.OrthoAngles {
		diff := math.Min(
			math.Abs(angle-a),
			math.Min(math.Abs(angle-a+360), math.Abs(angle-a-360)),
		)
		if diff < bestDiff {
			bestDiff = diff
			bestAngle = a
		}
	}

	if bestDiff > settings.OrthoTolerance {
		return pt
	}

	dist := math.Hypot(dx, dy)
	rad := bestAngle * math.Pi / 180
	return Point{
		X: reference.X + dist*math.Cos(rad),
		Y: reference.Y + dist*math.Sin(rad),
	}
}

// ToggleSnap flips the global snap flag and clears the result cache.
func (ss *SnapSystem) ToggleSnap() bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.settings.SnapEnabled = !ss.settings.SnapEnabled
	ss.clearCacheLocked()
	return ss.settings.SnapEnabled
}

// ToggleOrtho flips the orthogonal-constraint flag and clears the cache.
func (ss *SnapSystem) ToggleOrtho() bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.settings.OrthoEnabled = !ss.settings.OrthoEnabled
	ss.clearCacheLocked()
	return ss.settings.OrthoEnabled
}

// ToggleGrid flips grid snapping and clears the cache.
func (ss *SnapSystem) ToggleGrid() bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.settings.GridEnabled = !ss.settings.GridEnabled
	ss.clearCacheLocked()
	return ss.settings.GridEnabled
}

// SetGridSize updates the grid spacing in settings and in any registered
// grid providers, then clears the cache.
func (ss *SnapSystem) SetGridSize(size float64) {
	if size <= 0 {
		return
	}
	ss.mu.Lock()
	ss.settings.GridSize = size
	providers := make([]SnapProvider, len(ss.providers))
	copy(providers, ss.providers)
	ss.clearCacheLocked()
	ss.mu.Unlock()

	for _, p := range providers {
		if gp, ok := p.(*GridProvider); ok {
			gp.SetSize(size)
		}
	}
}

// StatusText summarizes the active constraint modes for a status bar.
func (ss *SnapSystem) StatusText() string {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	var parts []string
	if ss.settings.SnapEnabled {
		parts = append(parts, "SNAP")
	}
	if ss.settings.OrthoEnabled {
		parts = append(parts, "ORTHO")
	}
	if ss.settings.GridEnabled {
		parts = append(parts, "GRID")
	}
	if len(parts) == 0 {
		return "No constraints"
	}
	return strings.Join(parts, " | ")
}

// Stats returns a copy of the activity counters.
func (ss *SnapSystem) Stats() SnapStats {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.stats
}

func (ss *SnapSystem) clearCacheLocked() {
	ss.haveLast = false
}
