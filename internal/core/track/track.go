package track

import "github.com/zeusync/laneracer/internal/core/systems/physics"

// Track is a finished, closed sequence of pieces. Index arithmetic wraps, so
// the piece after the last one is piece 0.
//
// A Track is read-only and may be shared by every car in a race.
type Track struct {
	pieces   []Piece
	perLayer [NumLayers]int
	bounds   physics.AABB
}

// Len is the number of pieces.
func (t *Track) Len() int { return len(t.pieces) }

// Piece returns piece i. i must be in [0, Len()).
func (t *Track) Piece(i int) Piece { return t.pieces[i] }

// Pieces returns the pieces in order. Callers must not modify the slice.
func (t *Track) Pieces() []Piece { return t.pieces }

// Next is the index of the piece after i.
func (t *Track) Next(i int) int { return (i + 1) % len(t.pieces) }

// Prev is the index of the piece before i.
func (t *Track) Prev(i int) int { return (i - 1 + len(t.pieces)) % len(t.pieces) }

// Adjacent reports whether pieces i and j are the same piece or neighbours,
// including across the seam between the last piece and piece 0.
func (t *Track) Adjacent(i, j int) bool {
	return i == j || t.Next(i) == j || t.Next(j) == i
}

// PiecesOnLayer counts the pieces placed on layer.
func (t *Track) PiecesOnLayer(layer int) int {
	if layer < 0 || layer >= NumLayers {
		return 0
	}
	return t.perLayer[layer]
}

// Length is the total length of the loop along lane.
func (t *Track) Length(lane float64) float64 {
	var total float64
	for _, p := range t.pieces {
		total += p.Length(lane)
	}
	return total
}

// Bounds is the extent of the track's edges after centring.
func (t *Track) Bounds() physics.AABB { return t.bounds }
