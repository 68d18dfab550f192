package plan

import (
	"fmt"
	"math"
)

// DefaultValidatorTolerance is the distance tolerance (meters) below which
// an edge is reported as degenerate.
const DefaultValidatorTolerance = 0.01

// defaultMinAreas holds the per-kind minimum area thresholds in m².
// Falling below a threshold is advisory, not fatal.
func defaultMinAreas() map[ElementKind]float64 {
	return map[ElementKind]float64{
		KindRoom:    0.5,
		KindArea:    1.0,
		KindOpening: 0.01,
		KindShaft:   0.1,
	}
}

// Validator checks a single ring for structural and numerical soundness.
// Structural problems (too few points, non-finite coordinates,
// self-intersection) invalidate the ring; everything else is advisory.
type Validator struct {
	// Tolerance is the degenerate-segment distance threshold in meters.
	Tolerance float64

	// MinAreas are per-kind minimum area thresholds in m². Kinds absent
	// from the map use 0.1.
	MinAreas map[ElementKind]float64
}

// NewValidator creates a validator with the given degenerate-segment
// tolerance (meters). Non-positive tolerances fall back to the default.
func NewValidator(tolerance float64) *Validator {
	if tolerance <= 0 {
		tolerance = DefaultValidatorTolerance
	}
	return &Validator{
		Tolerance: tolerance,
		MinAreas:  defaultMinAreas(),
	}
}

func (v *Validator) minArea(kind ElementKind) float64 {
	if a, ok := v.MinAreas[kind]; ok {
		return a
	}
	return 0.1
}

// Validate runs the full check sequence on a ring. Structural checks run
// first and short-circuit the rest on failure; geometric checks then fill
// the metrics map and may add warnings and recommendations.
func (v *Validator) Validate(ring Ring, kind ElementKind) ValidationResult {
	result := ValidationResult{
		IsValid:         true,
		Errors:          []string{},
		Warnings:        []string{},
		Recommendations: []string{},
		Metrics:         map[string]float64{},
	}

	pts := openRing(ring)
	if len(pts) < 3 {
		result.IsValid = false
		result.Errors = append(result.Errors, "not enough points to form a polygon")
		return result
	}
	for i, p := range pts {
		if !finitePoint(p) {
			result.IsValid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("non-finite coordinates at point %d: (%v, %v)", i, p.X, p.Y))
		}
	}
	if !result.IsValid {
		return result
	}

	signedArea := Area(pts)
	area := math.Abs(signedArea)
	result.Metrics["area_m2"] = area

	if area < v.minArea(kind) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("area %.3f m² is below the recommended minimum %.2f m² for %s",
				area, v.minArea(kind), kind))
	}

	if selfIntersects(pts, 1) {
		result.IsValid = false
		result.Errors = append(result.Errors, "polygon self-intersection detected")
	}

	clockwise := signedArea < 0
	result.Metrics["is_clockwise"] = boolMetric(clockwise)
	if clockwise {
		result.Recommendations = append(result.Recommendations,
			"outer contours should wind counter-clockwise; consider reversing the point order")
	}

	perimeter := Perimeter(pts)
	result.Metrics["perimeter_m"] = perimeter

	complexity := complexityFactor(area, perimeter)
	result.Metrics["complexity_factor"] = complexity
	if complexity < 0.3 {
		result.Warnings = append(result.Warnings,
			"highly irregular geometry may affect performance")
	}

	for _, i := range v.degenerateSegments(pts) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("degenerate segment at index %d (shorter than %.3f m)", i, v.Tolerance))
	}

	return result
}

// selfIntersects scans segment pairs for intersections, skipping adjacent
// pairs and the pair sharing the closing vertex. A step of 1 is
// exhaustive; larger steps sample the pairs for a cheaper probe.
func selfIntersects(pts Ring, step int) bool {
	n := len(pts)
	if n < 4 {
		return false
	}
	if step < 1 {
		step = 1
	}
	for i := 0; i < n; i += step {
		for j := i + 2; j < n; j += step {
			if i == 0 && j == n-1 {
				continue
			}
			if _, ok := SegmentIntersection(
				pts[i], pts[(i+1)%n],
				pts[j], pts[(j+1)%n],
			); ok {
				return true
			}
		}
	}
	return false
}

// complexityFactor is the isoperimetric ratio area / (perimeter² / 4π),
// clamped to [0,1]. Values near 1 indicate compact shapes; long thin or
// irregular contours score low.
func complexityFactor(area, perimeter float64) float64 {
	if area <= 0 || perimeter <= 0 {
		return 0
	}
	circleArea := perimeter * perimeter / (4 * math.Pi)
	if circleArea <= 0 {
		return 0
	}
	return math.Min(1, math.Max(0, area/circleArea))
}

// degenerateSegments returns the indices of edges shorter than the
// tolerance.
func (v *Validator) degenerateSegments(pts Ring) []int {
	var out []int
	n := len(pts)
	for i := 0; i < n; i++ {
		if Distance(pts[i], pts[(i+1)%n]) < v.Tolerance {
			out = append(out, i)
		}
	}
	return out
}

func boolMetric(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
