package srs

import (
	"fmt"

	"tetris"
)

// Board is an empty rectangular playfield. Only its walls and floor are
// obstacles; rows above row 0 form the vanish zone and are unbounded.
type Board struct {
	Width  int
	Height int
}

// Standard is the 10 wide, 20 tall guideline playfield.
var Standard = Board{Width: 10, Height: 20}

// State is the position and orientation of an active piece. States are plain
// values and are never shared by reference.
type State struct {
	Piece    tetris.Piece
	Rotation tetris.Rotation
	Col      int
	Row      int
}

func (s State) String() string {
	return fmt.Sprintf("%v%v@(%d,%d)", s.Piece, s.Rotation, s.Col, s.Row)
}

// SpawnState returns the state of a newly spawned piece.
func (b Board) SpawnState(p tetris.Piece) State {
	col, row := Spawn(p)
	return State{Piece: p, Rotation: tetris.Spawn, Col: col, Row: row}
}

// IsLegal returns whether every cell of the piece lies inside the walls and
// above the floor.
func (b Board) IsLegal(p tetris.Piece, r tetris.Rotation, col, row int) bool {
	for _, c := range Cells(p, r) {
		x, y := col+c.X, row+c.Y
		if x < 0 || x >= b.Width || y >= b.Height {
			return false
		}
	}
	return true
}

// Legal returns whether a state is legal on the board.
func (b Board) Legal(s State) bool {
	return b.IsLegal(s.Piece, s.Rotation, s.Col, s.Row)
}

// MoveBy returns the state shifted by (dx, dy) or false if that is illegal.
func (b Board) MoveBy(s State, dx, dy int) (State, bool) {
	s.Col += dx
	s.Row += dy
	if !b.Legal(s) {
		return State{}, false
	}
	return s, true
}

// MoveToWall shifts the state one column at a time in the direction of dir
// (-1 or 1) and returns the last legal state.
func (b Board) MoveToWall(s State, dir int) State {
	for {
		next, ok := b.MoveBy(s, dir, 0)
		if !ok {
			return s
		}
		s = next
	}
}

// DropToFloor returns the state after a hard drop.
func (b Board) DropToFloor(s State) State {
	for {
		next, ok := b.MoveBy(s, 0, 1)
		if !ok {
			return s
		}
		s = next
	}
}
