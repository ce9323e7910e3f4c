package finesse

import (
	"bytes"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"tetris"
)

func TestNewEngineValidation(t *testing.T) {
	tests := []struct {
		desc    string
		modify  func(*Config)
		wantErr bool
	}{
		{desc: "Default", modify: func(*Config) {}},
		{desc: "Narrow", modify: func(c *Config) { c.Width = 3 }, wantErr: true},
		{desc: "No room to spawn I", modify: func(c *Config) { c.Width = 6 }, wantErr: true},
		{desc: "Narrowest", modify: func(c *Config) { c.Width = MinWidth }},
		{desc: "Too wide", modify: func(c *Config) { c.Width = MaxWidth + 1 }, wantErr: true},
		{desc: "Short", modify: func(c *Config) { c.Height = 4 }, wantErr: true},
		{desc: "Negative window", modify: func(c *Config) { c.CancelWindow = -time.Millisecond }, wantErr: true},
		{desc: "No window", modify: func(c *Config) { c.CancelWindow = 0 }},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			cfg := DefaultConfig()
			test.modify(&cfg)
			_, err := NewEngine(cfg)
			if (err != nil) != test.wantErr {
				t.Fatalf("NewEngine got err=%v, want error %t", err, test.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewEngine error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func newTestEngine(t *testing.T, rotate180 bool) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Rotate180 = rotate180
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func TestEngineOptimal(t *testing.T) {
	e := newTestEngine(t, false)
	want := seqs(
		[]tetris.Action{CW, CW, HD},
		[]tetris.Action{CCW, CCW, HD},
	)
	got := e.Optimal(tetris.T, 3, tetris.Reverse)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Optimal mismatch(-want +got):\n%s", diff)
	}

	// Callers own the result.
	got[0] = tetris.MustSequence(HD)
	if diff := cmp.Diff(want, e.Optimal(tetris.T, 3, tetris.Reverse)); diff != "" {
		t.Errorf("cached Optimal was modified(-want +got):\n%s", diff)
	}

	if got := e.Optimal(tetris.T, 8, tetris.Spawn); len(got) != 0 {
		t.Errorf("Optimal(T, 8, 0) got %v, want none", got)
	}
	if got := e.MinLength(tetris.T, 8, tetris.Spawn); got != -1 {
		t.Errorf("MinLength(T, 8, 0) got %d, want -1", got)
	}
	if got := e.MinLength(tetris.I, 6, tetris.Spawn); got != 2 {
		t.Errorf("MinLength(I, 6, 0) got %d, want 2", got)
	}
}

func TestEngineNarrowestBoardSpawns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = MinWidth
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	for _, p := range tetris.NonemptyPieces {
		want := seqs([]tetris.Action{HD})
		if diff := cmp.Diff(want, e.Optimal(p, 3, tetris.Spawn)); diff != "" {
			t.Errorf("Optimal(%v, 3, 0) on width %d mismatch(-want +got):\n%s", p, MinWidth, diff)
		}
	}
}

func TestEngineHugeColumn(t *testing.T) {
	tests := []struct {
		desc string
		col  int
	}{
		{desc: "Aliases column 4", col: 1<<61 + 4},
		{desc: "Largest int", col: math.MaxInt},
		{desc: "Smallest int", col: math.MinInt},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			e := newTestEngine(t, false)
			if got := e.Optimal(tetris.T, test.col, tetris.Spawn); len(got) != 0 {
				t.Errorf("Optimal(T, %d, 0) got %v, want none", test.col, got)
			}
			want := seqs([]tetris.Action{R, HD})
			if diff := cmp.Diff(want, e.Optimal(tetris.T, 4, tetris.Spawn)); diff != "" {
				t.Errorf("Optimal(T, 4, 0) after column %d mismatch(-want +got):\n%s", test.col, diff)
			}
		})
	}
}

func TestEngineLogsSearches(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	e.Optimal(tetris.S, 0, tetris.Spawn)
	e.Optimal(tetris.S, 0, tetris.Spawn)
	if got := bytes.Count(buf.Bytes(), []byte("computed optimal sequences")); got != 1 {
		t.Errorf("logged %d searches, want 1 (second lookup should be cached):\n%s", got, buf.String())
	}
}

func TestEngineConcurrent(t *testing.T) {
	e := newTestEngine(t, true)
	want := Search(e.Board(), e.rotator, tetris.L, 1, tetris.Left)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if diff := cmp.Diff(want, e.Optimal(tetris.L, 1, tetris.Left)); diff != "" {
					t.Errorf("Optimal mismatch(-want +got):\n%s", diff)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestEngineGradeRoundTrip(t *testing.T) {
	for _, rotate180 := range []bool{false, true} {
		e := newTestEngine(t, rotate180)
		for _, p := range tetris.NonemptyPieces {
			for _, r := range tetris.Rotations {
				for col := -2; col < e.Board().Width; col++ {
					target := Target{Piece: p, Column: col, Rotation: r}
					optimal := e.Optimal(p, col, r)
					locked := lockedAt(p, col, r)
					if len(optimal) == 0 {
						v := e.Grade([]tetris.Action{HD}, locked, target)
						if !v.HasFault(InfeasibleTarget) {
							t.Errorf("%v: got %+v, want infeasible_target", target, v)
						}
						continue
					}
					for _, seq := range optimal {
						v := e.Grade(seq.Slice(), locked, target)
						if v.Kind != KindOptimal || !v.Exact {
							t.Errorf("%v: grading %v got %+v, want exact optimal", target, seq, v)
						}

						for _, extra := range withExtraInput(seq) {
							v = e.Grade(extra, locked, target)
							if v.Kind != KindFaulty || !v.HasFault(ExtraInput) {
								t.Errorf("%v: grading %v got %+v, want extra_input", target, extra, v)
							}
						}
					}
				}
			}
		}
	}
}

// withExtraInput returns traces that add one input to an optimal sequence
// and cannot be cancelled by a Normalizer.
func withExtraInput(seq tetris.Sequence) [][]tetris.Action {
	actions := seq.Slice()
	body := actions[:len(actions)-1]
	var traces [][]tetris.Action
	for _, a := range []tetris.Action{SD, CW, CCW, F, LL, RR} {
		trace := append(append([]tetris.Action{}, body...), a, HD)
		traces = append(traces, trace)
	}
	// A tap after the hard drop.
	for _, a := range []tetris.Action{L, R} {
		traces = append(traces, append(append([]tetris.Action{}, actions...), a))
	}
	return traces
}

func TestEngineGradeExtraInputCount(t *testing.T) {
	e := newTestEngine(t, true)
	target := Target{Piece: tetris.J, Column: 0, Rotation: tetris.Right}
	locked := lockedAt(tetris.J, 0, tetris.Right)
	for _, seq := range e.Optimal(target.Piece, target.Column, target.Rotation) {
		for _, extra := range withExtraInput(seq) {
			v := e.Grade(extra, locked, target)
			found := false
			for _, f := range v.Faults {
				if f.Kind == ExtraInput {
					found = true
					if f.Count != 1 {
						t.Errorf("grading %v got extra_input count %d, want 1", extra, f.Count)
					}
				}
			}
			if !found {
				t.Errorf("grading %v got %+v, want extra_input", extra, v)
			}
			wantPath := extra[len(extra)-1] != HD
			if got := v.HasFault(SuboptimalPath); got != wantPath {
				t.Errorf("grading %v got suboptimal_path %t, want %t", extra, got, wantPath)
			}
		}
	}
}

func TestEngineGradeInvalidTarget(t *testing.T) {
	e := newTestEngine(t, false)
	target := Target{Piece: tetris.EmptyPiece, Column: 4, Rotation: tetris.Spawn}
	v := e.Grade([]tetris.Action{HD}, lockedAt(tetris.T, 4, tetris.Spawn), target)
	want := []Fault{{Kind: WrongTarget}, {Kind: InfeasibleTarget}}
	if diff := cmp.Diff(want, v.Faults); diff != "" {
		t.Errorf("Grade faults mismatch(-want +got):\n%s", diff)
	}
}

func TestEngineGradeInputs(t *testing.T) {
	e := newTestEngine(t, false)
	target := Target{Piece: tetris.T, Column: 4, Rotation: tetris.Spawn}
	events := []InputEvent{
		down(L, 0), down(R, 10), // Fumbled and corrected within the window.
		down(R, 100), up(R, 120),
		down(HD, 300),
	}
	v := e.GradeInputs(events, lockedAt(tetris.T, 4, tetris.Spawn), target)
	want := Verdict{
		Kind:       KindOptimal,
		Player:     []tetris.Action{R, HD},
		Optimal:    seqs([]tetris.Action{R, HD}),
		Exact:      true,
		Divergence: -1,
	}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("GradeInputs mismatch(-want +got):\n%s", diff)
	}
}

func BenchmarkEngineOptimal(b *testing.B) {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		b.Fatalf("NewEngine failed: %v", err)
	}
	for i := 0; i < b.N; i++ {
		e.Optimal(tetris.J, i%8, tetris.Rotation(i%4))
	}
}
