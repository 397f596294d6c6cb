package track

import "github.com/zeusync/laneracer/internal/core/systems/physics"

var _ Piece = (*Straight)(nil)

// Straight is a line segment with a fixed heading. Its length does not depend
// on the lane.
type Straight struct {
	base
	angle  float64
	length float64
}

// NewStraight returns a straight of the given length starting at pos and
// heading along angle.
func NewStraight(layer int, pos physics.Vec2, angle, length float64) *Straight {
	s := &Straight{
		base:   base{layer: layer, startPos: pos},
		angle:  angle,
		length: length,
	}
	s.endPos = pos.Add(physics.FromAngle(angle).Scale(length))
	return s
}

func (s *Straight) Kind() Kind                           { return KindStraight }
func (s *Straight) Length(float64) float64               { return s.length }
func (s *Straight) AngleAtStart() float64                { return s.angle }
func (s *Straight) AngleAtEnd() float64                  { return s.angle }
func (s *Straight) AngleAt(_ float64, _ float64) float64 { return s.angle }

func (s *Straight) PositionAt(length, lane float64) physics.Vec2 {
	dir := physics.FromAngle(s.angle)
	return s.startPos.Add(dir.Scale(length)).Sub(dir.Perp().Scale(lane))
}
