package finesse

import (
	"errors"
	"fmt"

	"tetris"
	"tetris/srs"
)

// ErrActionAfterLock is returned by Simulate for inputs after a hard drop.
var ErrActionAfterLock = errors.New("action after hard drop")

// Simulate replays actions from spawn and returns where the piece locks.
// Impossible moves are ignored like a game would. Soft drops and holds do
// not move the piece. A trace without a hard drop locks where it ends, as if
// gravity finished the piece.
func (e *Engine) Simulate(p tetris.Piece, actions []tetris.Action) (srs.State, error) {
	if err := (Target{Piece: p}).Validate(); err != nil {
		return srs.State{}, err
	}
	s := e.board.SpawnState(p)
	for idx, a := range actions {
		switch {
		case a == tetris.HardDrop:
			if idx != len(actions)-1 {
				return srs.State{}, fmt.Errorf("%w: %v at index %d", ErrActionAfterLock, actions[idx+1], idx+1)
			}
		case a.Direction() != 0, a.IsRotation():
			if next, ok := step(e.board, e.rotator, s, a); ok {
				s = next
			}
		case a == tetris.SoftDrop, a == tetris.Hold:
		default:
			return srs.State{}, fmt.Errorf("%w: %d", tetris.ErrUnknownAction, uint8(a))
		}
	}
	return e.board.DropToFloor(s), nil
}
