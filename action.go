package tetris

import (
	"errors"
	"fmt"
	"strings"
)

// Action represents something the user can do by pressing a key.
type Action uint8

// All possible actions.
const (
	NoAction Action = iota
	Hold
	MoveLeft
	MoveRight
	// DASLeft and DASRight move the piece to the wall in a single input.
	DASLeft
	DASRight
	RotateCW
	RotateCCW
	Rotate180
	SoftDrop
	HardDrop

	// actionLimit is used to iterate through all actions.
	actionLimit
)

// ErrUnknownAction is returned when a string does not name an Action.
var ErrUnknownAction = errors.New("unknown action")

// SearchActions are the actions that can move a piece before it is dropped,
// in the order the finesse search expands them.
var SearchActions = [7]Action{MoveLeft, MoveRight, DASLeft, DASRight, RotateCW, RotateCCW, Rotate180}

func (a Action) String() string {
	switch a {
	case NoAction:
		return "No_Action"
	case Hold:
		return "Swap_Hold"
	case MoveLeft:
		return "Move_Left"
	case MoveRight:
		return "Move_Right"
	case DASLeft:
		return "DAS_Left"
	case DASRight:
		return "DAS_Right"
	case RotateCW:
		return "Rotate_CW"
	case RotateCCW:
		return "Rotate_CCW"
	case Rotate180:
		return "Rotate_180"
	case SoftDrop:
		return "Soft_Drop"
	case HardDrop:
		return "Hard_Drop"
	}
	return "Unknown"
}

// Mirror returns the equivalent action if the field is reflected across the y
// axis.
func (a Action) Mirror() Action {
	switch a {
	case MoveLeft:
		return MoveRight
	case MoveRight:
		return MoveLeft
	case DASLeft:
		return DASRight
	case DASRight:
		return DASLeft
	case RotateCW:
		return RotateCCW
	case RotateCCW:
		return RotateCW
	}
	return a
}

// IsTap returns whether the action is a single column shift.
func (a Action) IsTap() bool {
	return a == MoveLeft || a == MoveRight
}

// IsRotation returns whether the action turns the piece.
func (a Action) IsRotation() bool {
	return a == RotateCW || a == RotateCCW || a == Rotate180
}

// Direction returns -1 for leftward actions, 1 for rightward actions and 0
// otherwise.
func (a Action) Direction() int {
	switch a {
	case MoveLeft, DASLeft:
		return -1
	case MoveRight, DASRight:
		return 1
	}
	return 0
}

// Short aliases accepted by ParseAction in addition to String().
var actionAliases = map[string]Action{
	"hold":     Hold,
	"l":        MoveLeft,
	"left":     MoveLeft,
	"r":        MoveRight,
	"right":    MoveRight,
	"ll":       DASLeft,
	"dasleft":  DASLeft,
	"rr":       DASRight,
	"dasright": DASRight,
	"cw":       RotateCW,
	"ccw":      RotateCCW,
	"180":      Rotate180,
	"sd":       SoftDrop,
	"softdrop": SoftDrop,
	"hd":       HardDrop,
	"harddrop": HardDrop,
}

// ParseAction returns the Action named by s. Both the String() form and a
// few short aliases ("l", "rr", "cw", "hd", ...) are accepted, ignoring
// case.
func ParseAction(s string) (Action, error) {
	for a := NoAction + 1; a < actionLimit; a++ {
		if strings.EqualFold(s, a.String()) {
			return a, nil
		}
	}
	if a, ok := actionAliases[strings.ToLower(s)]; ok {
		return a, nil
	}
	return NoAction, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	if a >= actionLimit {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
