package tetris

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand"
	"unicode"
)

func init() {
	precomputeSlices()
}

// Piece represents a tetrimino or empty piece.
type Piece uint8

// Possible pieces.
const (
	EmptyPiece Piece = iota
	T
	L
	J
	S
	Z
	O
	I
)

// NonemptyPieces is an ordered array of non-empty pieces.
var NonemptyPieces = [7]Piece{T, L, J, S, Z, O, I}

// ErrUnknownPiece is returned when a rune or string does not name a piece.
var ErrUnknownPiece = errors.New("unknown piece")

func (p Piece) String() string {
	switch p {
	case EmptyPiece:
		return "Ɛ"
	case T:
		return "T"
	case L:
		return "L"
	case J:
		return "J"
	case S:
		return "S"
	case Z:
		return "Z"
	case O:
		return "O"
	case I:
		return "I"
	}
	panic("Unknown piece")
}

// PieceFromRune returns the piece named by r, ignoring case, or EmptyPiece.
func PieceFromRune(r rune) Piece {
	switch unicode.ToUpper(r) {
	case 'T':
		return T
	case 'L':
		return L
	case 'J':
		return J
	case 'S':
		return S
	case 'Z':
		return Z
	case 'O':
		return O
	case 'I':
		return I
	}
	return EmptyPiece
}

// ParsePiece returns the piece named by a one letter string.
func ParsePiece(s string) (Piece, error) {
	r := []rune(s)
	if len(r) != 1 {
		return EmptyPiece, fmt.Errorf("%w: %q", ErrUnknownPiece, s)
	}
	p := PieceFromRune(r[0])
	if p == EmptyPiece {
		return EmptyPiece, fmt.Errorf("%w: %q", ErrUnknownPiece, s)
	}
	return p, nil
}

// MarshalText implements encoding.TextMarshaler.
func (p Piece) MarshalText() ([]byte, error) {
	if p == EmptyPiece || p > I {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPiece, uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Piece) UnmarshalText(text []byte) error {
	parsed, err := ParsePiece(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// RandPieces turns a slice of random pieces using a 7 bag randomizer.
func RandPieces(length int) []Piece {
	pieces := make([]Piece, 0, length+6)
	for len(pieces) < length {
		for _, i := range rand.Perm(7) {
			pieces = append(pieces, Piece(i+1))
		}
	}
	return pieces[:length]
}

// PieceSet represents a set of pieces.
// Duplicates and EmptyPieces are not recorded.
type PieceSet uint8

// AllPieces is the PieceSet containing every non-empty piece.
const AllPieces PieceSet = 0xFE

// NewPieceSet creates a new PieceSet from the specified Pieces.
func NewPieceSet(pieces ...Piece) PieceSet {
	var ps PieceSet
	for _, p := range pieces {
		ps |= 1 << p
	}
	// Zero out the EmptyPiece.
	ps &^= 1 << EmptyPiece
	return ps
}

// ParsePieceSet parses a string of piece letters such as "TIO".
func ParsePieceSet(s string) (PieceSet, error) {
	var ps PieceSet
	for _, r := range s {
		p := PieceFromRune(r)
		if p == EmptyPiece {
			return 0, fmt.Errorf("%w: %q in %q", ErrUnknownPiece, r, s)
		}
		ps = ps.Add(p)
	}
	return ps, nil
}

// Add returns a PieceSet with a certain Piece added.
func (ps PieceSet) Add(p Piece) PieceSet {
	return (ps | (1 << p)) &^ (1 << EmptyPiece)
}

// Contains returns whether the PieceSet contains the piece.
func (ps PieceSet) Contains(p Piece) bool {
	return ps&(1<<p) != 0
}

// Len returns the number of items in the PieceSet.
func (ps PieceSet) Len() int {
	return bits.OnesCount8(uint8(ps))
}

// Precompute the slices for each PieceSet.
var toSlices [256][]Piece

func precomputeSlices() {
	for i := 0; i <= 255; i++ {
		ps := PieceSet(i)
		toSlices[i] = ps.toSlice()
	}
}

// toSlice is the non-precomputed version of ToSlice.
func (ps PieceSet) toSlice() []Piece {
	if ps.Len() == 0 {
		return nil
	}
	slice := make([]Piece, 0, ps.Len())
	for _, piece := range NonemptyPieces {
		if ps.Contains(piece) {
			slice = append(slice, piece)
		}
	}
	return slice
}

// ToSlice returns a slice of all Pieces represented by this set in
// NonemptyPieces order. This slice should not be modified.
func (ps PieceSet) ToSlice() []Piece {
	return toSlices[int(ps)]
}

func (ps PieceSet) String() string {
	return fmt.Sprint(ps.ToSlice())
}
