package track

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// Track program symbols.
const (
	SymSmallStraight = 's'
	SymLargeStraight = 'S'
	SymSmallLeft     = 'l'
	SymSmallRight    = 'r'
	SymLargeLeft     = 'L'
	SymLargeRight    = 'R'
	SymUp            = '+'
	SymDown          = '-'
)

// Dimensions are the piece sizes a track program is built from.
type Dimensions struct {
	SmallStraight float64 `yaml:"small_straight"`
	LargeStraight float64 `yaml:"large_straight"`
	SmallRadius   float64 `yaml:"small_radius"`
	LargeRadius   float64 `yaml:"large_radius"`
	TurnStep      float64 `yaml:"turn_step"`
}

// DefaultDimensions are the sizes every built-in level is authored against.
func DefaultDimensions() Dimensions {
	return Dimensions{
		SmallStraight: 120,
		LargeStraight: 192,
		SmallRadius:   120,
		LargeRadius:   192,
		TurnStep:      math.Pi / 4,
	}
}

// Generate builds a track from a program in the default dimensions.
func Generate(program string) (*Track, error) {
	return DefaultDimensions().Generate(program)
}

// Generate interprets program left to right, one piece or layer change per
// symbol, and builds the result. An unknown symbol aborts generation with a
// *SymbolError and no track is returned.
func (d Dimensions) Generate(program string) (*Track, error) {
	b := NewBuilder()
	for offset, sym := range program {
		switch sym {
		case SymSmallStraight:
			b.AddStraight(d.SmallStraight)
		case SymLargeStraight:
			b.AddStraight(d.LargeStraight)
		case SymSmallLeft:
			b.AddTurn(d.TurnStep, d.SmallRadius)
		case SymSmallRight:
			b.AddTurn(-d.TurnStep, d.SmallRadius)
		case SymLargeLeft:
			b.AddTurn(d.TurnStep, d.LargeRadius)
		case SymLargeRight:
			b.AddTurn(-d.TurnStep, d.LargeRadius)
		case SymUp:
			b.Up()
		case SymDown:
			b.Down()
		default:
			return nil, &SymbolError{Symbol: sym, Offset: offset}
		}
	}
	return b.Build()
}

// Validate checks that program would generate a track.
func (d Dimensions) Validate(program string) error {
	_, err := d.Generate(program)
	return err
}

// PieceCount is the number of pieces program describes, ignoring layer
// changes and unknown symbols.
func PieceCount(program string) int {
	n := 0
	for _, sym := range program {
		switch sym {
		case SymSmallStraight, SymLargeStraight, SymSmallLeft, SymSmallRight, SymLargeLeft, SymLargeRight:
			n++
		}
	}
	return n
}

// Fingerprint is a stable hash of a track program, used to derive per-level
// random seeds.
func Fingerprint(program string) uint64 {
	return xxhash.Sum64String(program)
}
