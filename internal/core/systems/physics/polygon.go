package physics

import "math"

// Polygon is a convex polygon given by its vertices in winding order.
type Polygon []Vec2

// OrientedRect returns the rectangle of half extents (halfW, halfH) centred on
// centre and rotated by angle. The long axis (halfW) points along angle.
func OrientedRect(centre Vec2, halfW, halfH, angle float64) Polygon {
	corners := [4]Vec2{
		{X: -halfW, Y: halfH},
		{X: -halfW, Y: -halfH},
		{X: halfW, Y: -halfH},
		{X: halfW, Y: halfH},
	}
	poly := make(Polygon, len(corners))
	for i, c := range corners {
		poly[i] = c.Rotate(angle).Add(centre)
	}
	return poly
}

// Bounds returns the axis-aligned box around p.
func (p Polygon) Bounds() AABB {
	var b AABB
	for _, v := range p {
		b = b.Extend(v)
	}
	return b
}

func (p Polygon) project(axis Vec2) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range p {
		d := v.Dot(axis)
		lo = min(lo, d)
		hi = max(hi, d)
	}
	return lo, hi
}

func (p Polygon) separatedBy(other Polygon) bool {
	for i := range p {
		edge := p[(i+1)%len(p)].Sub(p[i])
		axis := edge.Perp()
		aLo, aHi := p.project(axis)
		bLo, bHi := other.project(axis)
		if aHi < bLo || bHi < aLo {
			return true
		}
	}
	return false
}

// Overlaps reports whether two convex polygons intersect, using the separating
// axis test over the edge normals of both.
func Overlaps(a, b Polygon) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	if !a.Bounds().Overlaps(b.Bounds()) {
		return false
	}
	return !a.separatedBy(b) && !b.separatedBy(a)
}
