package track

import "github.com/zeusync/laneracer/internal/core/systems/physics"

// Kind tags the concrete shape of a Piece.
type Kind uint8

const (
	KindStraight Kind = iota
	KindTurn
)

func (k Kind) String() string {
	switch k {
	case KindStraight:
		return "straight"
	case KindTurn:
		return "turn"
	default:
		return "unknown"
	}
}

// Piece is one segment of a track. Distances are measured along the lane,
// lanes are signed lateral offsets from the piece's reference line (positive
// lanes lie to the right of the direction of travel).
//
// Pieces are immutable once a Builder has produced a Track.
type Piece interface {
	Kind() Kind
	Layer() int

	// Length is the path length of the piece along lane.
	Length(lane float64) float64

	AngleAtStart() float64
	AngleAtEnd() float64
	// AngleAt is the heading after travelling length along lane.
	AngleAt(length, lane float64) float64
	// PositionAt is the world position after travelling length along lane.
	PositionAt(length, lane float64) physics.Vec2

	// PositionAtStart and PositionAtEnd are the lane 0 end points.
	PositionAtStart() physics.Vec2
	PositionAtEnd() physics.Vec2

	// translate moves the piece by d. Only the builder calls it, once, when
	// centring the finished track.
	translate(d physics.Vec2)
}

// LanePositionAtStart is the start of p offset onto lane.
func LanePositionAtStart(p Piece, lane float64) physics.Vec2 {
	return p.PositionAt(0, lane)
}

// LanePositionAtEnd is the end of p offset onto lane.
func LanePositionAtEnd(p Piece, lane float64) physics.Vec2 {
	return p.PositionAt(p.Length(lane), lane)
}

type base struct {
	layer    int
	startPos physics.Vec2
	endPos   physics.Vec2
}

func (b *base) Layer() int                    { return b.layer }
func (b *base) PositionAtStart() physics.Vec2 { return b.startPos }
func (b *base) PositionAtEnd() physics.Vec2   { return b.endPos }

func (b *base) translate(d physics.Vec2) {
	b.startPos = b.startPos.Add(d)
	b.endPos = b.endPos.Add(d)
}
