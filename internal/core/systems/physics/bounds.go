package physics

// AABB is an axis-aligned bounding box. The zero value is empty.
type AABB struct {
	Min, Max Vec2
	valid    bool
}

// Extend grows the box to include p.
func (b AABB) Extend(p Vec2) AABB {
	if !b.valid {
		return AABB{Min: p, Max: p, valid: true}
	}
	b.Min = Vec2{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y)}
	b.Max = Vec2{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y)}
	return b
}

// Empty reports whether no point has been added yet.
func (b AABB) Empty() bool { return !b.valid }

func (b AABB) Centre() Vec2 { return b.Min.Add(b.Max).Scale(0.5) }

func (b AABB) Size() Vec2 { return b.Max.Sub(b.Min) }

// Translate shifts the box by d.
func (b AABB) Translate(d Vec2) AABB {
	if !b.valid {
		return b
	}
	b.Min = b.Min.Add(d)
	b.Max = b.Max.Add(d)
	return b
}

// Overlaps reports whether two boxes intersect, touching edges included.
func (b AABB) Overlaps(o AABB) bool {
	if !b.valid || !o.valid {
		return false
	}
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y
}
