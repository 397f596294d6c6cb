package track

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSymbol = errors.New("unknown track symbol")
	ErrEmptyProgram  = errors.New("track program produces no pieces")
	ErrTooFewPieces  = errors.New("track has too few pieces")
	ErrInvalidPiece  = errors.New("invalid track piece")
	ErrBuilt         = errors.New("track builder already built")
)

// SymbolError reports an unknown character in a track program.
type SymbolError struct {
	Symbol rune
	Offset int
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%v %q at offset %d", ErrUnknownSymbol, e.Symbol, e.Offset)
}

func (e *SymbolError) Unwrap() error { return ErrUnknownSymbol }
