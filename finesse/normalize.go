package finesse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tetris"
)

// EventKind distinguishes raw input events.
type EventKind uint8

// Raw input event kinds.
const (
	KeyDown EventKind = iota
	KeyUp
	// Tick is gravity or timer bookkeeping with no player intent.
	Tick
)

// ErrUnknownEventKind is returned when a string does not name an EventKind.
var ErrUnknownEventKind = errors.New("unknown event kind")

func (k EventKind) String() string {
	switch k {
	case KeyDown:
		return "down"
	case KeyUp:
		return "up"
	case Tick:
		return "tick"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k EventKind) MarshalText() ([]byte, error) {
	if k > Tick {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEventKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EventKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "down", "keydown":
		*k = KeyDown
	case "up", "keyup":
		*k = KeyUp
	case "tick":
		*k = Tick
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventKind, text)
	}
	return nil
}

// InputEvent is a raw event recorded while a piece was active. Time is
// measured from any fixed point, usually the piece spawning.
type InputEvent struct {
	Kind   EventKind
	Action tetris.Action
	Time   time.Duration
}

type jsonInputEvent struct {
	Kind   EventKind     `json:"kind"`
	Action tetris.Action `json:"action"`
	TimeMS float64       `json:"time_ms"`
}

// MarshalJSON encodes the event with its time in milliseconds.
func (e InputEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonInputEvent{
		Kind:   e.Kind,
		Action: e.Action,
		TimeMS: float64(e.Time) / float64(time.Millisecond),
	})
}

// UnmarshalJSON decodes an event written by MarshalJSON. A missing kind
// means KeyDown.
func (e *InputEvent) UnmarshalJSON(b []byte) error {
	var j jsonInputEvent
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	*e = InputEvent{
		Kind:   j.Kind,
		Action: j.Action,
		Time:   time.Duration(j.TimeMS * float64(time.Millisecond)),
	}
	return nil
}

// Normalizer reduces raw input events to the actions that matter for finesse.
type Normalizer struct {
	// Window is the largest gap between a tap and an opposite tap that
	// cancels both. Zero disables cancellation.
	Window time.Duration
}

type stamped struct {
	action tetris.Action
	time   time.Duration
}

// Normalize returns the finesse actions of the events in their original
// order.
//
// Only key presses are kept, and holds are ignored. Repeated soft drops
// collapse into one. A tap directly followed by an opposite tap within
// Window removes both, and removals can cascade: left, left, right, right
// in quick succession leaves nothing. Nothing other than taps is ever
// cancelled.
func (n Normalizer) Normalize(events []InputEvent) []tetris.Action {
	var stack []stamped
	for _, e := range events {
		if e.Kind != KeyDown {
			continue
		}
		a := e.Action
		if a == tetris.NoAction || a == tetris.Hold || a > tetris.HardDrop {
			continue
		}
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			if a == tetris.SoftDrop && top.action == tetris.SoftDrop {
				continue
			}
			if n.cancels(top, stamped{a, e.Time}) {
				stack = stack[:len(stack)-1]
				continue
			}
		}
		stack = append(stack, stamped{a, e.Time})
	}

	actions := make([]tetris.Action, len(stack))
	for i, s := range stack {
		actions[i] = s.action
	}
	return actions
}

func (n Normalizer) cancels(prev, next stamped) bool {
	if n.Window <= 0 || !prev.action.IsTap() || next.action != prev.action.Mirror() {
		return false
	}
	dt := next.time - prev.time
	if dt < 0 {
		dt = -dt
	}
	return dt <= n.Window
}
