package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0, NormalizeAngle(2*math.Pi), eps)
	assert.InDelta(t, -math.Pi, NormalizeAngle(math.Pi), eps)
	assert.InDelta(t, -math.Pi/2, NormalizeAngle(3*math.Pi/2), eps)
	assert.InDelta(t, math.Pi/4, NormalizeAngle(math.Pi/4-4*math.Pi), eps)
}

func TestVectorOps(t *testing.T) {
	v := V(3, 4)
	assert.InDelta(t, 5, v.Len(), eps)
	assert.Equal(t, V(-4, 3), v.Perp())
	assert.True(t, V(1, 0).Rotate(math.Pi/2).ApproxEqual(V(0, 1), eps))
	assert.True(t, FromAngle(math.Pi).ApproxEqual(V(-1, 0), eps))
	assert.Equal(t, V(1, -2), V(1.5, -1.5).Floor())
}

func TestAABBExtend(t *testing.T) {
	var b AABB
	assert.True(t, b.Empty())
	b = b.Extend(V(5, 5)).Extend(V(-1, 10)).Extend(V(2, -3))
	assert.Equal(t, V(-1, -3), b.Min)
	assert.Equal(t, V(5, 10), b.Max)
	assert.Equal(t, V(2, 3.5), b.Centre())
}

func TestOrientedRectOverlap(t *testing.T) {
	a := OrientedRect(V(0, 0), 12, 6, 0)
	b := OrientedRect(V(20, 0), 12, 6, 0)
	c := OrientedRect(V(30, 0), 12, 6, 0)
	assert.True(t, Overlaps(a, b))
	assert.False(t, Overlaps(a, c))
}

func TestOverlapsRotated(t *testing.T) {
	// The boxes' AABBs intersect but a separating axis exists along the diagonal.
	a := OrientedRect(V(0, 0), 10, 1, math.Pi/4)
	b := OrientedRect(V(6, -6), 10, 1, math.Pi/4)
	assert.True(t, a.Bounds().Overlaps(b.Bounds()))
	assert.False(t, Overlaps(a, b))

	crossing := OrientedRect(V(0, 0), 10, 1, -math.Pi/4)
	assert.True(t, Overlaps(a, crossing))
}

func TestOverlapsDegenerate(t *testing.T) {
	assert.False(t, Overlaps(Polygon{V(0, 0), V(1, 1)}, OrientedRect(V(0, 0), 1, 1, 0)))
}
