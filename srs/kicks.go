package srs

import (
	"fmt"

	"tetris"
)

// KickTable holds the ordered kick offsets to try for a rotation, indexed by
// [from][to]. A nil entry means the transition has no kicks defined.
type KickTable [tetris.NumRotations][tetris.NumRotations][]Point

// yUp flips offsets written with y growing upward, the notation kick tables
// are usually published in, into board coordinates.
func yUp(offsets ...Point) []Point {
	flipped := make([]Point, len(offsets))
	for i, o := range offsets {
		flipped[i] = Point{X: o.X, Y: -o.Y}
	}
	return flipped
}

var (
	jlstzCW0  = yUp(Point{0, 0}, Point{-1, 0}, Point{-1, 1}, Point{0, -2}, Point{-1, -2})
	jlstzToR0 = yUp(Point{0, 0}, Point{1, 0}, Point{1, -1}, Point{0, 2}, Point{1, 2})
	jlstzToL  = yUp(Point{0, 0}, Point{1, 0}, Point{1, 1}, Point{0, -2}, Point{1, -2})
	jlstzFrL  = yUp(Point{0, 0}, Point{-1, 0}, Point{-1, -1}, Point{0, 2}, Point{-1, 2})

	i0R = yUp(Point{0, 0}, Point{-2, 0}, Point{1, 0}, Point{-2, -1}, Point{1, 2})
	iR0 = yUp(Point{0, 0}, Point{2, 0}, Point{-1, 0}, Point{2, 1}, Point{-1, -2})
	iR2 = yUp(Point{0, 0}, Point{-1, 0}, Point{2, 0}, Point{-1, 2}, Point{2, -1})
	i2R = yUp(Point{0, 0}, Point{1, 0}, Point{-2, 0}, Point{1, -2}, Point{-2, 1})
)

// JLSTZKicks is the guideline quarter turn table shared by J, L, S, T and Z.
var JLSTZKicks = KickTable{
	tetris.Spawn: {
		tetris.Right: jlstzCW0,
		tetris.Left:  jlstzToL,
	},
	tetris.Right: {
		tetris.Spawn:   jlstzToR0,
		tetris.Reverse: jlstzToR0,
	},
	tetris.Reverse: {
		tetris.Right: jlstzCW0,
		tetris.Left:  jlstzToL,
	},
	tetris.Left: {
		tetris.Reverse: jlstzFrL,
		tetris.Spawn:   jlstzFrL,
	},
}

// IKicks is the guideline quarter turn table of the I piece.
var IKicks = KickTable{
	tetris.Spawn: {
		tetris.Right: i0R,
		tetris.Left:  iR2,
	},
	tetris.Right: {
		tetris.Spawn:   iR0,
		tetris.Reverse: iR2,
	},
	tetris.Reverse: {
		tetris.Right: i2R,
		tetris.Left:  iR0,
	},
	tetris.Left: {
		tetris.Reverse: i0R,
		tetris.Spawn:   i2R,
	},
}

// JLSTZ180Kicks is the half turn table shared by J, L, S, T and Z.
var JLSTZ180Kicks = KickTable{
	tetris.Spawn: {
		tetris.Reverse: yUp(Point{0, 0}, Point{0, 1}, Point{1, 1}, Point{-1, 1}, Point{1, 0}, Point{-1, 0}),
	},
	tetris.Reverse: {
		tetris.Spawn: yUp(Point{0, 0}, Point{0, -1}, Point{-1, -1}, Point{1, -1}, Point{-1, 0}, Point{1, 0}),
	},
	tetris.Right: {
		tetris.Left: yUp(Point{0, 0}, Point{1, 0}, Point{1, 2}, Point{1, 1}, Point{0, 2}, Point{0, 1}),
	},
	tetris.Left: {
		tetris.Right: yUp(Point{0, 0}, Point{-1, 0}, Point{-1, 2}, Point{-1, 1}, Point{0, 2}, Point{0, 1}),
	},
}

// I180Kicks is the half turn table of the I piece.
var I180Kicks = KickTable{
	tetris.Spawn: {
		tetris.Reverse: yUp(Point{0, 0}, Point{0, 1}),
	},
	tetris.Reverse: {
		tetris.Spawn: yUp(Point{0, 0}, Point{0, -1}),
	},
	tetris.Right: {
		tetris.Left: yUp(Point{0, 0}, Point{1, 0}),
	},
	tetris.Left: {
		tetris.Right: yUp(Point{0, 0}, Point{-1, 0}),
	},
}

// Rotator resolves rotations with wall kicks.
type Rotator struct {
	// Allow180 enables half turns. Without it a half turn has no kicks and
	// always fails.
	Allow180 bool
}

// Kicks returns the ordered offsets tried when rotating the piece between two
// rotations, or false if the transition is not a single action.
// Kicks panics when a quarter turn has no entry since that is a table bug.
func (rt Rotator) Kicks(p tetris.Piece, from, to tetris.Rotation) ([]Point, bool) {
	mustValid(p, from)
	mustValid(p, to)
	var table *KickTable
	switch from.Steps(to) {
	case 1, 3:
		table = &JLSTZKicks
		if p == tetris.I {
			table = &IKicks
		}
	case 2:
		if !rt.Allow180 {
			return nil, false
		}
		table = &JLSTZ180Kicks
		if p == tetris.I {
			table = &I180Kicks
		}
	default:
		return nil, false
	}
	kicks := table[from][to]
	if kicks == nil {
		if from.Steps(to) != 2 {
			panic(fmt.Sprintf("srs: no kicks for %v %v->%v", p, from, to))
		}
		return nil, false
	}
	return kicks, true
}

// Rotate turns the piece to the target rotation using the first kick that
// gives a legal state. It returns false when no kick fits, or when the
// rotation is not a single action.
func (rt Rotator) Rotate(b Board, s State, to tetris.Rotation) (State, bool) {
	if s.Piece == tetris.O {
		mustValid(s.Piece, to)
		if s.Rotation == to || (to == s.Rotation.Flip() && !rt.Allow180) {
			return State{}, false
		}
		s.Rotation = to
		return s, true
	}
	kicks, ok := rt.Kicks(s.Piece, s.Rotation, to)
	if !ok {
		return State{}, false
	}
	for _, k := range kicks {
		next := State{Piece: s.Piece, Rotation: to, Col: s.Col + k.X, Row: s.Row + k.Y}
		if b.Legal(next) {
			return next, true
		}
	}
	return State{}, false
}
