// Package srs implements the Super Rotation System: piece shapes, collision
// against the walls and floor of an empty board, and wall kicks.
//
// Coordinates grow rightward in x and downward in y. A piece's position is
// the top left corner of its bounding box, so rows above the visible field
// are negative.
package srs

import (
	"fmt"

	"tetris"
)

// Point is a cell offset or a kick offset.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Spawn reference position shared by every piece. All cells start in the
// vanish zone just above the visible field.
const (
	SpawnCol = 3
	SpawnRow = -2
)

// shapes[piece][rotation] holds the 4 occupied cells of every orientation.
// Index 0 is the EmptyPiece and has no cells.
var shapes = [8][tetris.NumRotations][4]Point{
	tetris.T: {
		{{1, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {2, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {1, 2}},
		{{1, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	tetris.L: {
		{{2, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {1, 2}, {2, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {0, 2}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
	tetris.J: {
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {2, 2}},
		{{1, 0}, {1, 1}, {0, 2}, {1, 2}},
	},
	tetris.S: {
		{{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		{{1, 0}, {1, 1}, {2, 1}, {2, 2}},
		{{1, 1}, {2, 1}, {0, 2}, {1, 2}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	tetris.Z: {
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{2, 0}, {1, 1}, {2, 1}, {1, 2}},
		{{0, 1}, {1, 1}, {1, 2}, {2, 2}},
		{{1, 0}, {0, 1}, {1, 1}, {0, 2}},
	},
	// O sits in the middle of a 4 wide box and never changes.
	tetris.O: {
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
		{{1, 0}, {2, 0}, {1, 1}, {2, 1}},
	},
	tetris.I: {
		{{0, 1}, {1, 1}, {2, 1}, {3, 1}},
		{{2, 0}, {2, 1}, {2, 2}, {2, 3}},
		{{0, 2}, {1, 2}, {2, 2}, {3, 2}},
		{{1, 0}, {1, 1}, {1, 2}, {1, 3}},
	},
}

// mustValid panics for values outside the closed piece and rotation enums.
func mustValid(p tetris.Piece, r tetris.Rotation) {
	if p == tetris.EmptyPiece || p > tetris.I {
		panic(fmt.Sprintf("srs: invalid piece %d", uint8(p)))
	}
	if !r.Valid() {
		panic(fmt.Sprintf("srs: invalid rotation %d", uint8(r)))
	}
}

// Cells returns the cells occupied by the piece in a rotation relative to its
// position. Cells panics for the EmptyPiece or an invalid rotation.
func Cells(p tetris.Piece, r tetris.Rotation) [4]Point {
	mustValid(p, r)
	return shapes[p][r]
}

// Spawn returns the column and row a piece spawns at.
func Spawn(p tetris.Piece) (col, row int) {
	mustValid(p, tetris.Spawn)
	return SpawnCol, SpawnRow
}

// Congruent returns whether two rotations of a piece have the same shape at
// the same position. This only holds for distinct rotations of the O piece.
func Congruent(p tetris.Piece, a, b tetris.Rotation) bool {
	return a == b || p == tetris.O
}

// ColumnRange returns the smallest and largest column at which a rotation of
// the piece fits on a board of the given width.
func ColumnRange(p tetris.Piece, r tetris.Rotation, width int) (first, last int) {
	cells := Cells(p, r)
	minX, maxX := cells[0].X, cells[0].X
	for _, c := range cells[1:] {
		if c.X < minX {
			minX = c.X
		}
		if c.X > maxX {
			maxX = c.X
		}
	}
	return -minX, width - 1 - maxX
}
