package plan

import (
	"math"
	"strings"
	"testing"
)

func TestValidateAcceptsSquareRoom(t *testing.T) {
	v := NewValidator(0.01)
	result := v.Validate(squareAt(0, 0, 4), KindRoom)

	if !result.IsValid {
		t.Fatalf("Validate() invalid: %v", result.Errors)
	}
	if len(result.Errors) != 0 || len(result.Warnings) != 0 || len(result.Recommendations) != 0 {
		t.Errorf("unexpected findings: %+v", result)
	}
	if !almostEqual(result.Metrics["area_m2"], 16) {
		t.Errorf("area_m2 = %v, want 16", result.Metrics["area_m2"])
	}
	if result.Metrics["is_clockwise"] != 0 {
		t.Errorf("is_clockwise = %v, want 0", result.Metrics["is_clockwise"])
	}
	if !almostEqual(result.Metrics["perimeter_m"], 16) {
		t.Errorf("perimeter_m = %v, want 16", result.Metrics["perimeter_m"])
	}
}

func TestValidateStructuralErrors(t *testing.T) {
	v := NewValidator(0.01)

	tests := []struct {
		name    string
		ring    Ring
		errPart string
	}{
		{
			name:    "too few points",
			ring:    Ring{{X: 0, Y: 0}, {X: 1, Y: 1}},
			errPart: "not enough points",
		},
		{
			name: "non-finite coordinate",
			ring: Ring{
				{X: 0, Y: 0}, {X: 1, Y: 0}, {X: math.NaN(), Y: 1}, {X: 0, Y: 1},
			},
			errPart: "non-finite",
		},
		{
			name: "self-intersecting bowtie",
			ring: Ring{
				{X: 0, Y: 0}, {X: 4, Y: 4}, {X: 4, Y: 0}, {X: 0, Y: 4},
			},
			errPart: "self-intersection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.ring, KindRoom)
			if result.IsValid {
				t.Fatal("Validate() = valid, want invalid")
			}
			found := false
			for _, e := range result.Errors {
				if strings.Contains(e, tt.errPart) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", result.Errors, tt.errPart)
			}
		})
	}
}

func TestValidateClockwiseRecommendation(t *testing.T) {
	v := NewValidator(0.01)
	cw := Ring{{X: 0, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 0}}

	result := v.Validate(cw, KindRoom)
	if !result.IsValid {
		t.Fatalf("Validate() invalid: %v", result.Errors)
	}
	if result.Metrics["is_clockwise"] != 1 {
		t.Errorf("is_clockwise = %v, want 1", result.Metrics["is_clockwise"])
	}
	if len(result.Recommendations) != 1 ||
		!strings.Contains(result.Recommendations[0], "counter-clockwise") {
		t.Errorf("Recommendations = %v, want winding hint", result.Recommendations)
	}
}

func TestValidateMinAreaWarning(t *testing.T) {
	v := NewValidator(0.01)

	tests := []struct {
		name     string
		ring     Ring
		kind     ElementKind
		wantWarn bool
	}{
		{"tiny room", squareAt(0, 0, 0.4), KindRoom, true},
		{"adequate room", squareAt(0, 0, 1), KindRoom, false},
		{"tiny opening is fine", squareAt(0, 0, 0.15), KindOpening, false},
		{"small area", squareAt(0, 0, 0.9), KindArea, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.ring, tt.kind)
			if !result.IsValid {
				t.Fatalf("Validate() invalid: %v", result.Errors)
			}
			warned := false
			for _, w := range result.Warnings {
				if strings.Contains(w, "below the recommended minimum") {
					warned = true
				}
			}
			if warned != tt.wantWarn {
				t.Errorf("min-area warning = %v, want %v (warnings: %v)",
					warned, tt.wantWarn, result.Warnings)
			}
		})
	}
}

func TestValidateComplexityWarning(t *testing.T) {
	v := NewValidator(0.01)

	// A 10m x 0.06m sliver: area clears the room threshold but the
	// isoperimetric ratio is far below 0.3.
	sliver := Ring{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 0.06}, {X: 0, Y: 0.06},
	}
	result := v.Validate(sliver, KindRoom)
	if !result.IsValid {
		t.Fatalf("Validate() invalid: %v", result.Errors)
	}
	if result.Metrics["complexity_factor"] >= 0.3 {
		t.Fatalf("complexity_factor = %v, want < 0.3", result.Metrics["complexity_factor"])
	}

	warned := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "irregular") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("Warnings = %v, want irregular-geometry warning", result.Warnings)
	}
}

func TestValidateDegenerateSegment(t *testing.T) {
	v := NewValidator(0.01)
	ring := Ring{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 0.005}, {X: 4, Y: 4}, {X: 0, Y: 4},
	}

	result := v.Validate(ring, KindRoom)
	if !result.IsValid {
		t.Fatalf("Validate() invalid: %v", result.Errors)
	}

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "degenerate segment at index 1") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want degenerate segment at index 1", result.Warnings)
	}
}

func TestValidateAcceptsClosedRing(t *testing.T) {
	v := NewValidator(0.01)
	closed := Ring{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}, {X: 0, Y: 0},
	}

	result := v.Validate(closed, KindRoom)
	if !result.IsValid {
		t.Fatalf("Validate(closed ring) invalid: %v", result.Errors)
	}
	if !almostEqual(result.Metrics["area_m2"], 16) {
		t.Errorf("area_m2 = %v, want 16", result.Metrics["area_m2"])
	}
}

func TestComplexityFactor(t *testing.T) {
	tests := []struct {
		name      string
		area      float64
		perimeter float64
		want      float64
	}{
		{"circle-like is 1", math.Pi, 2 * math.Pi, 1},
		{"zero area", 0, 10, 0},
		{"zero perimeter", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := complexityFactor(tt.area, tt.perimeter); !almostEqual(got, tt.want) {
				t.Errorf("complexityFactor(%v, %v) = %v, want %v",
					tt.area, tt.perimeter, got, tt.want)
			}
		})
	}
}
