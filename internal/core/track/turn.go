package track

import (
	"math"

	"github.com/zeusync/laneracer/internal/core/systems/physics"
)

var _ Piece = (*Turn)(nil)

// Turn is a circular arc. Lanes on the inside of the turn are shorter than
// lane 0 and lanes on the outside are longer, so every distance query is
// converted to an angle using the lane-adjusted radius.
type Turn struct {
	base
	centre      physics.Vec2
	startAngle  float64
	endAngle    float64
	sweep       float64
	radius      float64
	isClockwise bool
}

// NewTurn returns an arc of the given radius that leaves pos heading along
// startAngle and arrives heading along endAngle. The direction of the turn is
// the sign of the normalized heading change.
func NewTurn(layer int, pos physics.Vec2, startAngle, endAngle, radius float64) *Turn {
	delta := physics.NormalizeAngle(endAngle - startAngle)
	t := &Turn{
		base:        base{layer: layer, startPos: pos},
		startAngle:  physics.NormalizeAngle(startAngle),
		endAngle:    physics.NormalizeAngle(endAngle),
		sweep:       math.Abs(delta),
		radius:      radius,
		isClockwise: delta < 0,
	}
	// The centre sits a radius away from the entry point, on the inside of the turn.
	t.centre = pos.Add(physics.FromAngle(startAngle + t.side()*math.Pi/2).Scale(radius))
	t.endPos = t.centre.Add(physics.FromAngle(endAngle - t.side()*math.Pi/2).Scale(radius))
	return t
}

// side is +1 for anticlockwise turns and -1 for clockwise ones.
func (t *Turn) side() float64 {
	if t.isClockwise {
		return -1
	}
	return 1
}

// laneRadius is the radius of the circle traced by lane.
func (t *Turn) laneRadius(lane float64) float64 {
	return t.radius + t.side()*lane
}

func (t *Turn) Kind() Kind            { return KindTurn }
func (t *Turn) Centre() physics.Vec2  { return t.centre }
func (t *Turn) Radius() float64       { return t.radius }
func (t *Turn) Sweep() float64        { return t.sweep }
func (t *Turn) IsClockwise() bool     { return t.isClockwise }
func (t *Turn) AngleAtStart() float64 { return t.startAngle }
func (t *Turn) AngleAtEnd() float64   { return t.endAngle }

func (t *Turn) Length(lane float64) float64 {
	return t.sweep * t.laneRadius(lane)
}

func (t *Turn) AngleAt(length, lane float64) float64 {
	swept := length / t.laneRadius(lane)
	return physics.NormalizeAngle(t.startAngle + t.side()*swept)
}

func (t *Turn) PositionAt(length, lane float64) physics.Vec2 {
	angle := t.AngleAt(length, lane) - t.side()*math.Pi/2
	return t.centre.Add(physics.FromAngle(angle).Scale(t.laneRadius(lane)))
}

func (t *Turn) translate(d physics.Vec2) {
	t.base.translate(d)
	t.centre = t.centre.Add(d)
}
