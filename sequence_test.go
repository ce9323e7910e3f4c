package tetris

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewSequence(t *testing.T) {
	tests := []struct {
		desc    string
		actions []Action
	}{
		{
			desc:    "Single hard drop",
			actions: []Action{HardDrop},
		},
		{
			desc:    "Rotate then DAS",
			actions: []Action{RotateCW, DASLeft, HardDrop},
		},
		{
			desc: "Full sequence",
			actions: []Action{
				MoveLeft, MoveRight, MoveLeft, MoveRight,
				MoveLeft, MoveRight, MoveLeft, MoveRight,
				RotateCW, RotateCCW, RotateCW, RotateCCW,
				SoftDrop, Hold, Rotate180, HardDrop,
			},
		},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			seq, err := NewSequence(test.actions)
			if err != nil {
				t.Fatalf("NewSequence failed: %v", err)
			}
			if diff := cmp.Diff(test.actions, seq.Slice()); diff != "" {
				t.Errorf("Slice() mismatch(-want +got):\n%s", diff)
			}
			if got := seq.Len(); got != len(test.actions) {
				t.Errorf("Len() got %d, want %d", got, len(test.actions))
			}
			if got, want := seq.Last(), test.actions[len(test.actions)-1]; got != want {
				t.Errorf("Last() got %v, want %v", got, want)
			}
		})
	}
}

func TestNewSequenceErrors(t *testing.T) {
	tooLong := make([]Action, MaxSequenceLen+1)
	for i := range tooLong {
		tooLong[i] = MoveLeft
	}
	if _, err := NewSequence(tooLong); !errors.Is(err, ErrSequenceTooLong) {
		t.Errorf("NewSequence(%d actions) got err=%v, want ErrSequenceTooLong", len(tooLong), err)
	}
	if _, err := NewSequence([]Action{MoveLeft, NoAction, HardDrop}); err == nil {
		t.Errorf("NewSequence with NoAction succeeded, want error")
	}
}

func TestSequenceAppend(t *testing.T) {
	var seq Sequence
	want := []Action{DASRight, MoveLeft, HardDrop}
	for _, a := range want {
		seq = seq.Append(a)
	}
	if seq != MustSequence(want...) {
		t.Errorf("Append got %v, want %v", seq, want)
	}
	if got := Sequence(0).Len(); got != 0 {
		t.Errorf("empty Len() got %d, want 0", got)
	}
	if got := Sequence(0).Last(); got != NoAction {
		t.Errorf("empty Last() got %v, want NoAction", got)
	}
}

func TestSequenceLess(t *testing.T) {
	tests := []struct {
		desc string
		a, b Sequence
		want bool
	}{
		{
			desc: "Shorter first",
			a:    MustSequence(HardDrop),
			b:    MustSequence(MoveLeft, HardDrop),
			want: true,
		},
		{
			desc: "Same length ordered by action",
			a:    MustSequence(MoveLeft, MoveLeft, HardDrop),
			b:    MustSequence(DASLeft, MoveRight, HardDrop),
			want: true,
		},
		{
			desc: "Equal",
			a:    MustSequence(RotateCW, HardDrop),
			b:    MustSequence(RotateCW, HardDrop),
			want: false,
		},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			if got := test.a.Less(test.b); got != test.want {
				t.Errorf("%v.Less(%v) got %t, want %t", test.a, test.b, got, test.want)
			}
		})
	}
}

func TestSequenceJSON(t *testing.T) {
	seq := MustSequence(RotateCCW, DASRight, HardDrop)
	b, err := json.Marshal(seq)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if got, want := string(b), `["Rotate_CCW","DAS_Right","Hard_Drop"]`; got != want {
		t.Errorf("json.Marshal got %s, want %s", got, want)
	}

	var got Sequence
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	if got != seq {
		t.Errorf("json round trip got %v, want %v", got, seq)
	}
}
