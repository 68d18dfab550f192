package plan

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// orbRing converts a Ring to a closed orb.Ring. Returns nil when the ring
// has fewer than 3 distinct vertices.
func orbRing(ring Ring) orb.Ring {
	pts := openRing(ring)
	if len(pts) < 3 {
		return nil
	}
	r := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		r = append(r, orb.Point{p.X, p.Y})
	}
	r = append(r, r[0])
	return r
}

// orbPolygon converts an element's outer and inner rings to an orb.Polygon.
func orbPolygon(el *Element) orb.Polygon {
	outer := orbRing(el.Outer)
	if outer == nil {
		return nil
	}
	poly := orb.Polygon{outer}
	for _, inner := range el.Inner {
		if r := orbRing(inner); r != nil {
			poly = append(poly, r)
		}
	}
	return poly
}

// ringFromOrb converts an orb.Ring back to an open Ring.
func ringFromOrb(r orb.Ring) Ring {
	ring := make(Ring, 0, len(r))
	for _, p := range r {
		ring = append(ring, Point{X: p[0], Y: p[1]})
	}
	return openRing(ring)
}

// DecimateRing reduces a ring's vertex count with Douglas-Peucker at the
// given tolerance. Rings that would collapse below a triangle are returned
// unchanged.
func DecimateRing(ring Ring, tolerance float64) Ring {
	r := orbRing(ring)
	if r == nil || tolerance <= 0 {
		return ring
	}

	reduced := simplify.DouglasPeucker(tolerance).Simplify(r.Clone())
	out, ok := reduced.(orb.Ring)
	if !ok {
		return ring
	}

	open := ringFromOrb(out)
	if len(open) < 3 {
		return ring
	}
	return open
}
