package tetris

import (
	"errors"
	"fmt"
	"strings"
)

// Rotation is the orientation of a piece. Rotations form a cycle in clockwise
// order.
type Rotation uint8

// Possible rotations, in clockwise order.
const (
	Spawn Rotation = iota
	Right
	Reverse
	Left

	// NumRotations is the number of rotation states.
	NumRotations = 4
)

// ErrUnknownRotation is returned when a string does not name a Rotation.
var ErrUnknownRotation = errors.New("unknown rotation")

// Rotations lists every rotation in clockwise order starting from Spawn.
var Rotations = [NumRotations]Rotation{Spawn, Right, Reverse, Left}

// CW returns the rotation after a clockwise quarter turn.
func (r Rotation) CW() Rotation {
	return (r + 1) % NumRotations
}

// CCW returns the rotation after a counter-clockwise quarter turn.
func (r Rotation) CCW() Rotation {
	return (r + NumRotations - 1) % NumRotations
}

// Flip returns the rotation after a half turn.
func (r Rotation) Flip() Rotation {
	return (r + 2) % NumRotations
}

// Steps returns the number of clockwise quarter turns needed to get from r
// to other.
func (r Rotation) Steps(other Rotation) int {
	return int((other + NumRotations - r) % NumRotations)
}

// Valid returns whether r is one of the four rotation states.
func (r Rotation) Valid() bool {
	return r < NumRotations
}

// Turn returns the rotation reached by a rotate action, or false if the
// action does not rotate.
func (r Rotation) Turn(a Action) (Rotation, bool) {
	switch a {
	case RotateCW:
		return r.CW(), true
	case RotateCCW:
		return r.CCW(), true
	case Rotate180:
		return r.Flip(), true
	}
	return r, false
}

func (r Rotation) String() string {
	switch r {
	case Spawn:
		return "0"
	case Right:
		return "R"
	case Reverse:
		return "2"
	case Left:
		return "L"
	}
	return "Unknown"
}

// ParseRotation parses the String() form of a rotation. The names "spawn",
// "right", "reverse" and "left" are accepted too.
func ParseRotation(s string) (Rotation, error) {
	switch strings.ToLower(s) {
	case "0", "spawn":
		return Spawn, nil
	case "r", "right", "cw":
		return Right, nil
	case "2", "reverse", "180":
		return Reverse, nil
	case "l", "left", "ccw":
		return Left, nil
	}
	return Spawn, fmt.Errorf("%w: %q", ErrUnknownRotation, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Rotation) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRotation, uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rotation) UnmarshalText(text []byte) error {
	parsed, err := ParseRotation(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
