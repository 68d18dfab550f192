package plan

import "math"

const (
	// floatTolerance guards denominators in intersection and projection math.
	floatTolerance = 1e-10

	// minPolygonArea is the area (1 mm²) below which a ring is treated as
	// degenerate and the centroid falls back to the vertex mean.
	minPolygonArea = 1e-6

	// coordPrecision is the number of decimal places results are quantized
	// to. Two places (centimeters) is sufficient for architectural data and
	// keeps repeated computations byte-stable.
	coordPrecision = 2
)

// round2 quantizes a value to coordinate precision.
func round2(v float64) float64 {
	p := math.Pow10(coordPrecision)
	return math.Round(v*p) / p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finitePoint(p Point) bool {
	return finite(p.X) && finite(p.Y)
}

// openRing strips an exact duplicate closing vertex so that open and
// closed representations of the same ring behave identically.
func openRing(ring Ring) Ring {
	if len(ring) >= 2 && ring[0] == ring[len(ring)-1] {
		return ring[:len(ring)-1]
	}
	return ring
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Area computes the signed polygon area via the shoelace formula. Positive
// area means counter-clockwise winding. Returns 0 for rings with fewer
// than 3 distinct points or any non-finite coordinate.
func Area(ring Ring) float64 {
	pts := openRing(ring)
	if len(pts) < 3 {
		return 0
	}
	for _, p := range pts {
		if !finitePoint(p) {
			return 0
		}
	}

	area := 0.0
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += pts[i].X * pts[j].Y
		area -= pts[j].X * pts[i].Y
	}
	return area / 2
}

// Perimeter returns the sum of consecutive edge lengths, wrapping the last
// vertex back to the first.
func Perimeter(ring Ring) float64 {
	pts := openRing(ring)
	if len(pts) < 2 {
		return 0
	}
	per := 0.0
	n := len(pts)
	for i := 0; i < n; i++ {
		per += Distance(pts[i], pts[(i+1)%n])
	}
	return per
}

// Centroid computes the polygon centroid via the moment integral divided
// by 6·area. Degenerate rings (|area| below minPolygonArea) fall back to
// the arithmetic mean of the vertices. Returns ok=false for rings with
// fewer than 3 points or any non-finite coordinate.
func Centroid(ring Ring) (Point, bool) {
	pts := openRing(ring)
	if len(pts) < 3 {
		return Point{}, false
	}
	for _, p := range pts {
		if !finitePoint(p) {
			return Point{}, false
		}
	}

	area := Area(pts)
	if math.Abs(area) < minPolygonArea {
		return vertexMean(pts), true
	}

	var cx, cy float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
		cx += (pts[i].X + pts[j].X) * cross
		cy += (pts[i].Y + pts[j].Y) * cross
	}

	factor := 6 * area
	if math.Abs(factor) < floatTolerance {
		return vertexMean(pts), true
	}
	return Point{X: round2(cx / factor), Y: round2(cy / factor)}, true
}

func vertexMean(pts Ring) Point {
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return Point{X: round2(sx / n), Y: round2(sy / n)}
}

// BoundsOf computes the bounding rectangle of the finite points in the
// slice. Non-finite points are skipped silently; ok=false when no valid
// points remain.
func BoundsOf(points []Point) (Bounds, bool) {
	first := true
	var b Bounds
	for _, p := range points {
		if !finitePoint(p) {
			continue
		}
		if first {
			b = Bounds{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
			first = false
			continue
		}
		b.MinX = minf(b.MinX, p.X)
		b.MinY = minf(b.MinY, p.Y)
		b.MaxX = maxf(b.MaxX, p.X)
		b.MaxY = maxf(b.MaxY, p.Y)
	}
	if first {
		return Bounds{}, false
	}
	return b, true
}

// PointInPolygon reports whether p lies inside the ring using the even-odd
// ray-casting test. Horizontal edges are guarded against division by zero
// by the yi != yj check inherent in the crossing condition.
func PointInPolygon(p Point, ring Ring) bool {
	pts := openRing(ring)
	if len(pts) < 3 || !finitePoint(p) {
		return false
	}

	inside := false
	n := len(pts)
	j := n - 1
	for i := 0; i < n; i++ {
		yi, yj := pts[i].Y, pts[j].Y
		if (yi > p.Y) != (yj > p.Y) {
			xi, xj := pts[i].X, pts[j].X
			if p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// SegmentIntersection solves the 2x2 linear system for the intersection
// of segments a1-a2 and b1-b2. Returns ok=false when the segments are
// parallel (determinant below tolerance) or the intersection parameters
// fall outside [0,1] on either segment.
func SegmentIntersection(a1, a2, b1, b2 Point) (Point, bool) {
	denom := (a1.X-a2.X)*(b1.Y-b2.Y) - (a1.Y-a2.Y)*(b1.X-b2.X)
	if math.Abs(denom) < floatTolerance {
		return Point{}, false
	}

	t := ((a1.X-b1.X)*(b1.Y-b2.Y) - (a1.Y-b1.Y)*(b1.X-b2.X)) / denom
	u := -((a1.X-a2.X)*(a1.Y-b1.Y) - (a1.Y-a2.Y)*(a1.X-b1.X)) / denom

	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}
	return Point{
		X: round2(a1.X + t*(a2.X-a1.X)),
		Y: round2(a1.Y + t*(a2.Y-a1.Y)),
	}, true
}

// PointSegmentDistance returns the shortest distance from p to the segment
// s1-s2, degenerating to point-point distance when the segment has zero
// length.
func PointSegmentDistance(p, s1, s2 Point) float64 {
	dx := s2.X - s1.X
	dy := s2.Y - s1.Y
	if math.Abs(dx) < floatTolerance && math.Abs(dy) < floatTolerance {
		return Distance(p, s1)
	}

	t := ((p.X-s1.X)*dx + (p.Y-s1.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))

	return Distance(p, Point{X: s1.X + t*dx, Y: s1.Y + t*dy})
}

// closestPointOnSegment projects p onto s1-s2 with the projection
// parameter clamped to the segment.
func closestPointOnSegment(p, s1, s2 Point) Point {
	dx := s2.X - s1.X
	dy := s2.Y - s1.Y
	if math.Abs(dx) < floatTolerance && math.Abs(dy) < floatTolerance {
		return s1
	}
	t := ((p.X-s1.X)*dx + (p.Y-s1.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))
	return Point{X: s1.X + t*dx, Y: s1.Y + t*dy}
}

// SimplifyPolyline applies Douglas-Peucker to an open polyline: the point
// of maximum perpendicular deviation from the chord between the endpoints
// splits the line recursively; deviations within epsilon collapse to the
// chord endpoints.
func SimplifyPolyline(points []Point, epsilon float64) []Point {
	if len(points) <= 2 {
		out := make([]Point, len(points))
		copy(out, points)
		return out
	}
	return douglasPeucker(points, epsilon)
}

// Simplify applies Douglas-Peucker to a ring. The ring is closed before
// simplification if it is not already; the result is returned closed.
func Simplify(ring Ring, epsilon float64) Ring {
	if len(ring) <= 2 {
		out := make(Ring, len(ring))
		copy(out, ring)
		return out
	}

	closed := ring
	if ring[0] != ring[len(ring)-1] {
		closed = make(Ring, 0, len(ring)+1)
		closed = append(closed, ring...)
		closed = append(closed, ring[0])
	}

	simplified := Ring(douglasPeucker(closed, epsilon))
	if simplified[0] != simplified[len(simplified)-1] {
		simplified = append(simplified, simplified[0])
	}
	return simplified
}

func douglasPeucker(points []Point, epsilon float64) []Point {
	if len(points) <= 2 {
		out := make([]Point, len(points))
		copy(out, points)
		return out
	}

	maxDist := 0.0
	maxIdx := 0
	first := points[0]
	last := points[len(points)-1]
	for i := 1; i < len(points)-1; i++ {
		d := PointSegmentDistance(points[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist > epsilon {
		left := douglasPeucker(points[:maxIdx+1], epsilon)
		right := douglasPeucker(points[maxIdx:], epsilon)
		return append(left[:len(left)-1], right...)
	}
	return []Point{first, last}
}
