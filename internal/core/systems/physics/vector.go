package physics

import "math"

// Vec2 is a point or direction on the track plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// FromAngle returns the unit vector pointing along angle (radians).
func FromAngle(angle float64) Vec2 {
	return Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}

func (v Vec2) Add(o Vec2) Vec2           { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2           { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2      { return Vec2{X: v.X * s, Y: v.Y * s} }
func (v Vec2) Dot(o Vec2) float64        { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64              { return math.Hypot(v.X, v.Y) }
func (v Vec2) Floor() Vec2               { return Vec2{X: math.Floor(v.X), Y: math.Floor(v.Y)} }
func (v Vec2) DistanceTo(o Vec2) float64 { return Distance2(v.X, v.Y, o.X, o.Y) }

// Perp returns v rotated a quarter turn anticlockwise.
func (v Vec2) Perp() Vec2 { return Vec2{X: -v.Y, Y: v.X} }

// Rotate returns v rotated by angle radians about the origin.
func (v Vec2) Rotate(angle float64) Vec2 {
	s, c := math.Sincos(angle)
	return Vec2{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

// ApproxEqual reports whether both components differ by at most eps.
func (v Vec2) ApproxEqual(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Distance2 computes Euclidean distance between two 2D points.
func Distance2(x1, y1, x2, y2 float64) float64 { return math.Hypot(x2-x1, y2-y1) }

// NormalizeAngle folds angle into [-π, π).
func NormalizeAngle(angle float64) float64 {
	for angle < -math.Pi {
		angle += 2 * math.Pi
	}
	for angle >= math.Pi {
		angle -= 2 * math.Pi
	}
	return angle
}
