package finesse

import (
	"errors"
	"fmt"

	"tetris"
	"tetris/srs"
)

// ErrInvalidTarget is returned by Target.Validate.
var ErrInvalidTarget = errors.New("invalid target")

// Target is the placement a player was asked to make.
type Target struct {
	Piece    tetris.Piece    `json:"piece"`
	Column   int             `json:"column"`
	Rotation tetris.Rotation `json:"rotation"`
}

func (t Target) String() string {
	return fmt.Sprintf("%v%v@%d", t.Piece, t.Rotation, t.Column)
}

// Validate returns an error if the piece or rotation are not real values.
// An unreachable column is not an error.
func (t Target) Validate() error {
	if t.Piece == tetris.EmptyPiece || t.Piece > tetris.I {
		return fmt.Errorf("%w: piece %d", ErrInvalidTarget, uint8(t.Piece))
	}
	if !t.Rotation.Valid() {
		return fmt.Errorf("%w: rotation %d", ErrInvalidTarget, uint8(t.Rotation))
	}
	return nil
}

// VerdictKind is the overall result of grading.
type VerdictKind string

// Verdict kinds.
const (
	KindOptimal VerdictKind = "optimal"
	KindFaulty  VerdictKind = "faulty"
)

// FaultKind names a problem found while grading.
type FaultKind string

// Fault kinds.
const (
	// WrongTarget means the piece locked somewhere other than the target.
	WrongTarget FaultKind = "wrong_target"
	// InfeasibleTarget means no input sequence reaches the target.
	InfeasibleTarget FaultKind = "infeasible_target"
	// ExtraInput means the trace is longer than the optimal sequences.
	ExtraInput FaultKind = "extra_input"
	// SuboptimalPath means the trace took a path no optimal sequence takes,
	// such as locking without a hard drop.
	SuboptimalPath FaultKind = "suboptimal_path"
)

// Fault is a single problem with a trace.
type Fault struct {
	Kind FaultKind `json:"kind"`
	// Count is the number of extra inputs for ExtraInput.
	Count int `json:"count,omitempty"`
}

// Verdict is the result of grading one piece.
type Verdict struct {
	Kind    VerdictKind       `json:"kind"`
	Player  []tetris.Action   `json:"player"`
	Optimal []tetris.Sequence `json:"optimal"`
	Faults  []Fault           `json:"faults,omitempty"`
	// Exact is whether the trace is one of the optimal sequences.
	Exact bool `json:"exact"`
	// Divergence is the index of the first input that no optimal sequence
	// shares, or -1 if the trace follows an optimal sequence throughout.
	Divergence int `json:"divergence"`
}

// HasFault returns whether the verdict contains a fault of the kind.
func (v Verdict) HasFault(kind FaultKind) bool {
	for _, f := range v.Faults {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// Grade compares a normalized trace with the optimal sequences for the
// target and the state the piece actually locked in.
//
// Traces are compared by length: any trace as short as the optimal sequences
// that locks on target is optimal, whatever its inputs.
func Grade(trace []tetris.Action, optimal []tetris.Sequence, locked srs.State, target Target) Verdict {
	v := Verdict{
		Player:     make([]tetris.Action, len(trace)),
		Optimal:    make([]tetris.Sequence, len(optimal)),
		Divergence: -1,
	}
	copy(v.Player, trace)
	copy(v.Optimal, optimal)

	members := make([][]tetris.Action, len(optimal))
	for i, seq := range optimal {
		members[i] = seq.Slice()
	}
	set := tetris.NewSequenceSet(members...)
	v.Exact = set.Contains(trace)
	if n := set.CommonPrefix(trace); n < len(trace) {
		v.Divergence = n
	}

	if !onTarget(locked, target) {
		v.Faults = append(v.Faults, Fault{Kind: WrongTarget})
	}
	if len(optimal) == 0 {
		v.Faults = append(v.Faults, Fault{Kind: InfeasibleTarget})
	}
	if len(v.Faults) == 0 {
		minLen := optimal[0].Len()
		for _, seq := range optimal[1:] {
			if seq.Len() < minLen {
				minLen = seq.Len()
			}
		}
		switch diff := len(trace) - minLen; {
		case diff > 0:
			v.Faults = append(v.Faults, Fault{Kind: ExtraInput, Count: diff})
			if len(trace) == 0 || trace[len(trace)-1] != tetris.HardDrop {
				v.Faults = append(v.Faults, Fault{Kind: SuboptimalPath})
			}
		case diff < 0:
			v.Faults = append(v.Faults, Fault{Kind: SuboptimalPath})
		}
	}

	v.Kind = KindOptimal
	if len(v.Faults) > 0 {
		v.Kind = KindFaulty
	}
	return v
}

// onTarget returns whether the locked state matches the target. Congruent
// rotations of the O piece all match.
func onTarget(locked srs.State, target Target) bool {
	return locked.Piece == target.Piece &&
		locked.Col == target.Column &&
		locked.Rotation.Valid() && target.Rotation.Valid() &&
		srs.Congruent(target.Piece, locked.Rotation, target.Rotation)
}
