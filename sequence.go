package tetris

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
)

// MaxSequenceLen is the maximum number of actions a Sequence can hold.
const MaxSequenceLen = 16

// ErrSequenceTooLong is returned when more than MaxSequenceLen actions are
// packed into a Sequence.
var ErrSequenceTooLong = errors.New("sequence too long")

// Sequence represents a sequence of MaxSequenceLen or fewer actions.
// Sequence is an immutable value and can be used as a map key.
type Sequence uint64

// NewSequence returns a Sequence or an error if the slice is too long or
// contains NoAction.
func NewSequence(actions []Action) (Sequence, error) {
	if len(actions) > MaxSequenceLen {
		return 0, fmt.Errorf("%w: %d actions, max %d", ErrSequenceTooLong, len(actions), MaxSequenceLen)
	}
	var seq uint64
	for idx, a := range actions {
		if a == NoAction || a >= actionLimit {
			return 0, fmt.Errorf("sequence cannot contain %v at index %d", a, idx)
		}
		seq |= uint64(a) << (uint(idx) << 2)
	}
	return Sequence(seq), nil
}

// MustSequence returns a new Sequence and panics if NewSequence fails.
func MustSequence(actions ...Action) Sequence {
	seq, err := NewSequence(actions)
	if err != nil {
		panic(fmt.Sprintf("NewSequence failed: %v", err))
	}
	return seq
}

// Slice converts a Sequence into a []Action.
func (seq Sequence) Slice() []Action {
	if seq == 0 {
		return nil
	}
	n := seq.Len()
	slice := make([]Action, n)
	for idx := 0; idx < n; idx++ {
		slice[idx] = seq.AtIndex(idx)
	}
	return slice
}

// AtIndex returns what action is at the index of the Sequence or NoAction.
func (seq Sequence) AtIndex(idx int) Action {
	if idx < 0 || idx >= MaxSequenceLen {
		return NoAction
	}
	shift := uint(idx) << 2
	return Action((seq >> shift) & 15)
}

// Len returns the number of actions in the Sequence.
func (seq Sequence) Len() int {
	return (bits.Len64(uint64(seq)) + 3) >> 2
}

// Append returns a Sequence with the action added to the end.
// Append panics if the Sequence is full.
func (seq Sequence) Append(a Action) Sequence {
	n := seq.Len()
	if n >= MaxSequenceLen {
		panic("Append on a full Sequence")
	}
	if a == NoAction || a >= actionLimit {
		panic(fmt.Sprintf("cannot append %v to a Sequence", a))
	}
	return seq | Sequence(a)<<(uint(n)<<2)
}

// Last returns the final action of the Sequence or NoAction if it is empty.
func (seq Sequence) Last() Action {
	return seq.AtIndex(seq.Len() - 1)
}

// Less orders Sequences by length and then by action value, which is the
// canonical order of an optimal set.
func (seq Sequence) Less(other Sequence) bool {
	if n, m := seq.Len(), other.Len(); n != m {
		return n < m
	}
	for idx := 0; idx < seq.Len(); idx++ {
		if a, b := seq.AtIndex(idx), other.AtIndex(idx); a != b {
			return a < b
		}
	}
	return false
}

func (seq Sequence) String() string {
	return fmt.Sprintf("%v", seq.Slice())
}

// MarshalJSON encodes the Sequence as an array of action names.
func (seq Sequence) MarshalJSON() ([]byte, error) {
	actions := seq.Slice()
	if actions == nil {
		actions = []Action{}
	}
	return json.Marshal(actions)
}

// UnmarshalJSON decodes an array of action names.
func (seq *Sequence) UnmarshalJSON(b []byte) error {
	var actions []Action
	if err := json.Unmarshal(b, &actions); err != nil {
		return err
	}
	s, err := NewSequence(actions)
	if err != nil {
		return err
	}
	*seq = s
	return nil
}
