// Package finesse computes the shortest input sequences that place a piece
// at a target column and rotation, and grades a player's inputs against them.
package finesse

import (
	"fmt"
	"sort"

	"github.com/kamstrup/intmap"

	"tetris"
	"tetris/srs"
)

// node is a state reachable from spawn along with every action that reaches
// it at the minimal distance.
type node struct {
	state srs.State
	dist  int
	preds []edge
}

// edge is an incoming action from the node at index from.
type edge struct {
	from   int
	action tetris.Action
}

// nodeKey identifies a (rotation, column) pair. Rows do not change legality
// away from the floor so they are not part of the key.
func nodeKey(r tetris.Rotation, col int) int {
	return col*tetris.NumRotations + int(r)
}

// step returns the state reached by a single action, or false when the action
// is not possible or would not change the state.
func step(b srs.Board, rt srs.Rotator, s srs.State, a tetris.Action) (srs.State, bool) {
	switch {
	case a.IsTap():
		return b.MoveBy(s, a.Direction(), 0)
	case a.Direction() != 0:
		next := b.MoveToWall(s, a.Direction())
		return next, next != s
	case a.IsRotation():
		to, _ := s.Rotation.Turn(a)
		return rt.Rotate(b, s, to)
	}
	return srs.State{}, false
}

// Search returns every shortest sequence of inputs that takes the piece from
// spawn to the target column and rotation followed by a hard drop. The result
// is sorted with tetris.Sequence.Less. It is empty when the target is never
// legal on the board.
//
// Search panics for the EmptyPiece, an invalid rotation, or a board so wide
// that a shortest sequence does not fit in a tetris.Sequence.
func Search(b srs.Board, rt srs.Rotator, p tetris.Piece, col int, r tetris.Rotation) []tetris.Sequence {
	if first, last := srs.ColumnRange(p, r, b.Width); col < first || col > last {
		return nil
	}

	start := b.SpawnState(p)
	if !b.Legal(start) {
		return nil
	}
	nodes := []node{{state: start}}
	index := intmap.New[int, int](64)
	index.Put(nodeKey(start.Rotation, start.Col), 0)

	isGoal := func(s srs.State) bool {
		return s.Col == col && srs.Congruent(p, s.Rotation, r)
	}
	goalDist := -1
	var goals []int

	// Nodes are appended in visiting order so the slice doubles as the queue.
	for idx := 0; idx < len(nodes); idx++ {
		cur := nodes[idx]
		if goalDist >= 0 && cur.dist > goalDist {
			break
		}
		if isGoal(cur.state) {
			goalDist = cur.dist
			goals = append(goals, idx)
			// Nothing past a goal can be on a shortest path to a goal.
			continue
		}
		for _, a := range tetris.SearchActions {
			next, ok := step(b, rt, cur.state, a)
			if !ok {
				continue
			}
			key := nodeKey(next.Rotation, next.Col)
			if seen, ok := index.Get(key); ok {
				if nodes[seen].dist == cur.dist+1 {
					nodes[seen].preds = append(nodes[seen].preds, edge{from: idx, action: a})
				}
				continue
			}
			index.Put(key, len(nodes))
			nodes = append(nodes, node{
				state: next,
				dist:  cur.dist + 1,
				preds: []edge{{from: idx, action: a}},
			})
		}
	}

	var seqs []tetris.Sequence
	for _, g := range goals {
		for _, path := range paths(nodes, g) {
			seq, err := tetris.NewSequence(path)
			if err == nil && seq.Len() == tetris.MaxSequenceLen {
				err = tetris.ErrSequenceTooLong
			}
			if err != nil {
				panic(fmt.Sprintf("finesse: %v %v at column %d: %v", p, r, col, err))
			}
			seqs = append(seqs, seq.Append(tetris.HardDrop))
		}
	}
	sort.Slice(seqs, func(i, j int) bool {
		return seqs[i].Less(seqs[j])
	})
	return seqs
}

// paths returns every action path from the spawn node to nodes[idx] by
// walking predecessors backward. Each returned slice is freshly allocated.
func paths(nodes []node, idx int) [][]tetris.Action {
	n := nodes[idx]
	if len(n.preds) == 0 {
		return [][]tetris.Action{make([]tetris.Action, 0, n.dist+1)}
	}
	var all [][]tetris.Action
	for _, e := range n.preds {
		for _, prefix := range paths(nodes, e.from) {
			path := make([]tetris.Action, len(prefix), n.dist+1)
			copy(path, prefix)
			all = append(all, append(path, e.action))
		}
	}
	return all
}
