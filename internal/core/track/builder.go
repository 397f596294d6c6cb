package track

import (
	"fmt"

	"github.com/zeusync/laneracer/internal/core/systems/physics"
)

const (
	// TrackWidth is the full width of the tarmac, centred on lane 0.
	TrackWidth = 72.0
	// QuadsPerPiece is how finely each piece's edges are sampled when measuring
	// the extent of the track.
	QuadsPerPiece = 6
	// NumLayers is the number of elevation tiers a track can use.
	NumLayers = 5
	// MinPieces is the shortest loop the collision adjacency test supports.
	MinPieces = 3
)

// Builder assembles a Track piece by piece, following a cursor that starts at
// the builder's origin and moves to the end of each appended piece.
//
// The first error encountered is kept and returned by Build; later calls are
// no-ops, so calls can be chained freely.
type Builder struct {
	pos     physics.Vec2
	heading float64
	layer   int

	pieces   []Piece
	perLayer [NumLayers]int

	built bool
	err   error
}

// NewBuilder returns a builder whose cursor starts at the origin heading along +x.
func NewBuilder() *Builder {
	return NewBuilderAt(physics.Vec2{}, 0)
}

// NewBuilderAt returns a builder whose cursor starts at pos heading along heading.
func NewBuilderAt(pos physics.Vec2, heading float64) *Builder {
	return &Builder{pos: pos, heading: heading}
}

func (b *Builder) usable() bool {
	if b.built && b.err == nil {
		b.err = ErrBuilt
	}
	return b.err == nil
}

func (b *Builder) append(p Piece) {
	b.pieces = append(b.pieces, p)
	b.perLayer[b.layer]++
	b.pos = p.PositionAtEnd()
}

// AddStraight appends a straight of the given length.
func (b *Builder) AddStraight(length float64) *Builder {
	if !b.usable() {
		return b
	}
	if length <= 0 {
		b.err = fmt.Errorf("%w: straight length %v", ErrInvalidPiece, length)
		return b
	}
	b.append(NewStraight(b.layer, b.pos, b.heading, length))
	return b
}

// AddTurn appends an arc that changes the heading by delta radians (positive
// turns left) around a circle of the given radius.
func (b *Builder) AddTurn(delta, radius float64) *Builder {
	if !b.usable() {
		return b
	}
	if radius <= TrackWidth/2 {
		b.err = fmt.Errorf("%w: turn radius %v must exceed half the track width", ErrInvalidPiece, radius)
		return b
	}
	if delta == 0 {
		b.err = fmt.Errorf("%w: turn with zero sweep", ErrInvalidPiece)
		return b
	}
	b.append(NewTurn(b.layer, b.pos, b.heading, b.heading+delta, radius))
	b.heading += delta
	return b
}

// Up raises the layer of subsequent pieces, up to NumLayers-1.
func (b *Builder) Up() *Builder {
	if b.layer < NumLayers-1 {
		b.layer++
	}
	return b
}

// Down lowers the layer of subsequent pieces, down to 0.
func (b *Builder) Down() *Builder {
	if b.layer > 0 {
		b.layer--
	}
	return b
}

// Layer is the layer the next piece will be placed on.
func (b *Builder) Layer() int { return b.layer }

// Build finishes the track and recentres it so that the middle of its
// bounding box lies near the origin. The builder cannot be used afterwards.
func (b *Builder) Build() (*Track, error) {
	if !b.usable() {
		return nil, b.err
	}
	b.built = true
	if len(b.pieces) == 0 {
		b.err = ErrEmptyProgram
		return nil, b.err
	}
	if len(b.pieces) < MinPieces {
		b.err = fmt.Errorf("%w: %d < %d", ErrTooFewPieces, len(b.pieces), MinPieces)
		return nil, b.err
	}

	bounds := measure(b.pieces)
	offset := bounds.Centre().Floor().Scale(-1)
	for _, p := range b.pieces {
		p.translate(offset)
	}

	return &Track{
		pieces:   b.pieces,
		perLayer: b.perLayer,
		bounds:   bounds.Translate(offset),
	}, nil
}

// measure samples both edges of every piece and returns their bounding box.
func measure(pieces []Piece) physics.AABB {
	var bounds physics.AABB
	edges := [2]float64{-TrackWidth / 2, TrackWidth / 2}
	for _, p := range pieces {
		for _, edge := range edges {
			step := p.Length(edge) / QuadsPerPiece
			for i := 0; i <= QuadsPerPiece; i++ {
				bounds = bounds.Extend(p.PositionAt(step*float64(i), edge))
			}
		}
	}
	return bounds
}
