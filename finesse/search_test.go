package finesse

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tetris"
	"tetris/srs"
)

const (
	L   = tetris.MoveLeft
	R   = tetris.MoveRight
	LL  = tetris.DASLeft
	RR  = tetris.DASRight
	CW  = tetris.RotateCW
	CCW = tetris.RotateCCW
	F   = tetris.Rotate180
	SD  = tetris.SoftDrop
	HD  = tetris.HardDrop
)

func seqs(actions ...[]tetris.Action) []tetris.Sequence {
	var all []tetris.Sequence
	for _, a := range actions {
		all = append(all, tetris.MustSequence(a...))
	}
	return all
}

func TestSearch(t *testing.T) {
	tests := []struct {
		desc     string
		piece    tetris.Piece
		col      int
		rot      tetris.Rotation
		allow180 bool
		want     []tetris.Sequence
	}{
		{
			desc:  "Spawn position",
			piece: tetris.T, col: 3, rot: tetris.Spawn,
			want: seqs([]tetris.Action{HD}),
		},
		{
			desc:  "Single tap",
			piece: tetris.T, col: 4, rot: tetris.Spawn,
			want: seqs([]tetris.Action{R, HD}),
		},
		{
			desc:  "I to right wall",
			piece: tetris.I, col: 6, rot: tetris.Spawn,
			want: seqs([]tetris.Action{RR, HD}),
		},
		{
			desc:  "I to left wall",
			piece: tetris.I, col: 0, rot: tetris.Spawn,
			want: seqs([]tetris.Action{LL, HD}),
		},
		{
			desc:  "Two taps tie with DAS and tap back",
			piece: tetris.T, col: 1, rot: tetris.Spawn,
			want: seqs(
				[]tetris.Action{L, L, HD},
				[]tetris.Action{LL, R, HD},
			),
		},
		{
			desc:  "Two taps right",
			piece: tetris.T, col: 5, rot: tetris.Spawn,
			want: seqs([]tetris.Action{R, R, HD}),
		},
		{
			desc:  "DAS and tap back",
			piece: tetris.T, col: 6, rot: tetris.Spawn,
			want: seqs([]tetris.Action{RR, L, HD}),
		},
		{
			desc:  "Single rotation",
			piece: tetris.T, col: 3, rot: tetris.Right,
			want: seqs([]tetris.Action{CW, HD}),
		},
		{
			desc:  "Reverse without half turns",
			piece: tetris.T, col: 3, rot: tetris.Reverse,
			want: seqs(
				[]tetris.Action{CW, CW, HD},
				[]tetris.Action{CCW, CCW, HD},
			),
		},
		{
			desc:  "Reverse with half turns",
			piece: tetris.T, col: 3, rot: tetris.Reverse, allow180: true,
			want: seqs([]tetris.Action{F, HD}),
		},
		{
			desc:  "Half turn and tap in either order",
			piece: tetris.J, col: 4, rot: tetris.Reverse, allow180: true,
			want: seqs(
				[]tetris.Action{R, F, HD},
				[]tetris.Action{F, R, HD},
			),
		},
		{
			desc:  "Rotate before DAS to reach column -1",
			piece: tetris.T, col: -1, rot: tetris.Right,
			want: seqs([]tetris.Action{CW, LL, HD}),
		},
		{
			desc:  "Rotate and DAS in either order",
			piece: tetris.T, col: 0, rot: tetris.Left,
			want: seqs(
				[]tetris.Action{LL, CCW, HD},
				[]tetris.Action{CCW, LL, HD},
			),
		},
		{
			desc:  "T left against right wall",
			piece: tetris.T, col: 8, rot: tetris.Left,
			want: seqs([]tetris.Action{CCW, RR, HD}),
		},
		{
			desc:  "Vertical I against left wall",
			piece: tetris.I, col: -2, rot: tetris.Right,
			want: seqs([]tetris.Action{CW, LL, HD}),
		},
		{
			desc:  "Vertical I against right wall",
			piece: tetris.I, col: 8, rot: tetris.Left,
			want: seqs([]tetris.Action{CCW, RR, HD}),
		},
		{
			desc:  "O ignores target rotation",
			piece: tetris.O, col: 3, rot: tetris.Right,
			want: seqs([]tetris.Action{HD}),
		},
		{
			desc:  "T past right wall",
			piece: tetris.T, col: 8, rot: tetris.Spawn,
			want: nil,
		},
		{
			desc:  "I past right wall",
			piece: tetris.I, col: 7, rot: tetris.Spawn,
			want: nil,
		},
		{
			desc:  "Far left of every footprint",
			piece: tetris.I, col: -3, rot: tetris.Right,
			want: nil,
		},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			rt := srs.Rotator{Allow180: test.allow180}
			got := Search(srs.Standard, rt, test.piece, test.col, test.rot)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Search(%v, %d, %v) mismatch(-want +got):\n%s", test.piece, test.col, test.rot, diff)
			}
		})
	}
}

// replay applies the actions before the hard drop and reports whether every
// one of them was possible.
func replay(b srs.Board, rt srs.Rotator, p tetris.Piece, actions []tetris.Action) ([]srs.State, bool) {
	s := b.SpawnState(p)
	states := []srs.State{s}
	for _, a := range actions {
		next, ok := step(b, rt, s, a)
		if !ok {
			return nil, false
		}
		s = next
		states = append(states, s)
	}
	return states, true
}

func TestSearchProperties(t *testing.T) {
	for _, allow180 := range []bool{false, true} {
		rt := srs.Rotator{Allow180: allow180}
		for _, p := range tetris.NonemptyPieces {
			for _, r := range tetris.Rotations {
				first, last := srs.ColumnRange(p, r, srs.Standard.Width)
				for col := -3; col <= srs.Standard.Width; col++ {
					name := fmt.Sprintf("180=%t/%v%v@%d", allow180, p, r, col)
					got := Search(srs.Standard, rt, p, col, r)

					if inRange := col >= first && col <= last; inRange != (len(got) > 0) {
						t.Errorf("%s: got %d sequences, in range %t", name, len(got), inRange)
						continue
					}
					if diff := cmp.Diff(got, Search(srs.Standard, rt, p, col, r)); diff != "" {
						t.Errorf("%s: repeated search differs(-first +second):\n%s", name, diff)
					}
					for i, seq := range got {
						if i > 0 && !got[i-1].Less(seq) {
							t.Errorf("%s: %v not before %v", name, got[i-1], seq)
						}
						if seq.Len() != got[0].Len() {
							t.Errorf("%s: %v length differs from %v", name, seq, got[0])
						}
						actions := seq.Slice()
						if actions[len(actions)-1] != tetris.HardDrop {
							t.Errorf("%s: %v does not end with a hard drop", name, seq)
						}
						moves := actions[:len(actions)-1]
						for _, a := range moves {
							if a == tetris.HardDrop {
								t.Errorf("%s: %v has a hard drop before the end", name, seq)
							}
							if a == tetris.Rotate180 && !allow180 {
								t.Errorf("%s: %v uses a disabled half turn", name, seq)
							}
						}
						states, ok := replay(srs.Standard, rt, p, moves)
						if !ok {
							t.Errorf("%s: %v cannot be replayed", name, seq)
							continue
						}
						for idx, s := range states {
							onTarget := s.Col == col && srs.Congruent(p, s.Rotation, r)
							if idx == len(states)-1 && !onTarget {
								t.Errorf("%s: %v ends at %v", name, seq, s)
							}
							if idx < len(states)-1 && onTarget {
								t.Errorf("%s: %v reaches the target after %d inputs", name, seq, idx)
							}
						}
					}
				}
			}
		}
	}
}

func TestSearchOSymmetry(t *testing.T) {
	var rt srs.Rotator
	for col := -1; col <= 7; col++ {
		want := Search(srs.Standard, rt, tetris.O, col, tetris.Spawn)
		for _, r := range tetris.Rotations {
			got := Search(srs.Standard, rt, tetris.O, col, r)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("O%v@%d mismatch with spawn(-want +got):\n%s", r, col, diff)
			}
		}
	}
}

// bruteForce finds the shortest action sequences to every (rotation, column)
// by trying every sequence of up to depth inputs.
func bruteForce(b srs.Board, rt srs.Rotator, p tetris.Piece, depth int) map[[2]int][]tetris.Sequence {
	best := make(map[[2]int][]tetris.Sequence)
	var walk func(s srs.State, path []tetris.Action)
	walk = func(s srs.State, path []tetris.Action) {
		for _, r := range tetris.Rotations {
			if !srs.Congruent(p, s.Rotation, r) {
				continue
			}
			key := [2]int{int(r), s.Col}
			seq := tetris.MustSequence(append(append([]tetris.Action(nil), path...), tetris.HardDrop)...)
			switch cur := best[key]; {
			case len(cur) == 0 || seq.Len() < cur[0].Len():
				best[key] = []tetris.Sequence{seq}
			case seq.Len() == cur[0].Len():
				best[key] = append(cur, seq)
			}
		}
		if len(path) == depth {
			return
		}
		for _, a := range tetris.SearchActions {
			next, ok := s, true
			switch a {
			case tetris.MoveLeft, tetris.MoveRight:
				next, ok = b.MoveBy(s, a.Direction(), 0)
			case tetris.DASLeft, tetris.DASRight:
				next = b.MoveToWall(s, a.Direction())
			default:
				to, _ := s.Rotation.Turn(a)
				next, ok = rt.Rotate(b, s, to)
			}
			if ok {
				walk(next, append(path, a))
			}
		}
	}
	walk(b.SpawnState(p), nil)
	return best
}

func TestSearchBruteForce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping exhaustive comparison in short mode")
	}
	const depth = 5
	for _, allow180 := range []bool{false, true} {
		rt := srs.Rotator{Allow180: allow180}
		for _, p := range tetris.NonemptyPieces {
			p := p
			t.Run(fmt.Sprintf("%v/180=%t", p, allow180), func(t *testing.T) {
				t.Parallel()
				best := bruteForce(srs.Standard, rt, p, depth)
				for _, r := range tetris.Rotations {
					for col := -3; col <= srs.Standard.Width; col++ {
						got := Search(srs.Standard, rt, p, col, r)
						want, found := best[[2]int{int(r), col}]
						if !found {
							if len(got) > 0 && got[0].Len() <= depth+1 {
								t.Errorf("%v@%d: search found %v, exhaustive search found nothing", r, col, got)
							}
							continue
						}
						sortSequences(want)
						if diff := cmp.Diff(want, got); diff != "" {
							t.Errorf("%v@%d mismatch(-exhaustive +search):\n%s", r, col, diff)
						}
					}
				}
			})
		}
	}
}

func sortSequences(seqs []tetris.Sequence) {
	for i := 1; i < len(seqs); i++ {
		for j := i; j > 0 && seqs[j].Less(seqs[j-1]); j-- {
			seqs[j], seqs[j-1] = seqs[j-1], seqs[j]
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	rt := srs.Rotator{Allow180: true}
	for i := 0; i < b.N; i++ {
		Search(srs.Standard, rt, tetris.T, 1, tetris.Left)
	}
}
