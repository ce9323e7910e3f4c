package finesse

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kamstrup/intmap"
	"github.com/rs/zerolog"

	"tetris"
	"tetris/srs"
)

// Board size limits accepted by NewEngine. Every piece spawns at column
// srs.SpawnCol, and the I piece needs four columns from there. Wider boards
// can need more inputs than a tetris.Sequence holds.
const (
	MinWidth  = srs.SpawnCol + 4
	MaxWidth  = 24
	MinHeight = 5
)

// DefaultCancelWindow is how close in time two opposite taps must be to
// cancel each other out.
const DefaultCancelWindow = 50 * time.Millisecond

// ErrInvalidConfig is returned by NewEngine for unusable settings.
var ErrInvalidConfig = errors.New("invalid engine config")

// Config holds the rules an Engine computes finesse under.
type Config struct {
	Width  int
	Height int
	// Rotate180 enables the Rotate180 action.
	Rotate180 bool
	// CancelWindow is the Normalizer window used by GradeInputs. Zero turns
	// tap cancellation off.
	CancelWindow time.Duration
	Logger       zerolog.Logger
}

// DefaultConfig returns a 10x20 board without half turns.
func DefaultConfig() Config {
	return Config{
		Width:        srs.Standard.Width,
		Height:       srs.Standard.Height,
		CancelWindow: DefaultCancelWindow,
		Logger:       zerolog.Nop(),
	}
}

// Validate returns an error wrapping ErrInvalidConfig if the config cannot be
// used.
func (c Config) Validate() error {
	if c.Width < MinWidth || c.Width > MaxWidth {
		return fmt.Errorf("%w: width %d must be between %d and %d", ErrInvalidConfig, c.Width, MinWidth, MaxWidth)
	}
	if c.Height < MinHeight {
		return fmt.Errorf("%w: height %d must be at least %d", ErrInvalidConfig, c.Height, MinHeight)
	}
	if c.CancelWindow < 0 {
		return fmt.Errorf("%w: negative cancel window %v", ErrInvalidConfig, c.CancelWindow)
	}
	return nil
}

// Engine computes optimal sequences and grades traces. Results are cached so
// repeated lookups are cheap.
//
// Engine is safe for concurrent use.
type Engine struct {
	cfg        Config
	board      srs.Board
	rotator    srs.Rotator
	normalizer Normalizer
	log        zerolog.Logger

	mu    sync.Mutex
	cache *intmap.Map[int, []tetris.Sequence]
}

// NewEngine creates an Engine or returns an error if the config is invalid.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:        cfg,
		board:      srs.Board{Width: cfg.Width, Height: cfg.Height},
		rotator:    srs.Rotator{Allow180: cfg.Rotate180},
		normalizer: Normalizer{Window: cfg.CancelWindow},
		log:        cfg.Logger.With().Str("component", "finesse").Logger(),
		cache:      intmap.New[int, []tetris.Sequence](7 * tetris.NumRotations * cfg.Width),
	}, nil
}

// Config returns the config the Engine was created with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Board returns the board searched on.
func (e *Engine) Board() srs.Board {
	return e.board
}

// cacheKey packs a placement whose column is within srs.ColumnRange.
func cacheKey(p tetris.Piece, col int, r tetris.Rotation) int {
	return (col*tetris.NumRotations+int(r))*8 + int(p)
}

// Optimal returns every shortest input sequence that places the piece at the
// column and rotation. The result is empty when the placement does not exist.
// The returned slice belongs to the caller.
//
// Optimal panics for the EmptyPiece or an invalid rotation.
func (e *Engine) Optimal(p tetris.Piece, col int, r tetris.Rotation) []tetris.Sequence {
	// Columns off the board never reach the cache, which keeps cacheKey
	// from overflowing into another placement's key.
	if first, last := srs.ColumnRange(p, r, e.board.Width); col < first || col > last {
		return nil
	}
	key := cacheKey(p, col, r)
	e.mu.Lock()
	seqs, ok := e.cache.Get(key)
	e.mu.Unlock()

	if !ok {
		seqs = Search(e.board, e.rotator, p, col, r)
		e.log.Debug().
			Stringer("piece", p).
			Int("column", col).
			Stringer("rotation", r).
			Int("sequences", len(seqs)).
			Msg("computed optimal sequences")
		e.mu.Lock()
		e.cache.Put(key, seqs)
		e.mu.Unlock()
	}

	if seqs == nil {
		return nil
	}
	cpy := make([]tetris.Sequence, len(seqs))
	copy(cpy, seqs)
	return cpy
}

// MinLength returns the number of inputs in the shortest sequence for the
// placement, or -1 if it does not exist.
func (e *Engine) MinLength(p tetris.Piece, col int, r tetris.Rotation) int {
	seqs := e.Optimal(p, col, r)
	if len(seqs) == 0 {
		return -1
	}
	return seqs[0].Len()
}

// Grade compares a normalized trace against the optimal sequences for the
// target. An invalid target has no optimal sequences.
func (e *Engine) Grade(trace []tetris.Action, locked srs.State, target Target) Verdict {
	var optimal []tetris.Sequence
	if target.Validate() == nil {
		optimal = e.Optimal(target.Piece, target.Column, target.Rotation)
	}
	v := Grade(trace, optimal, locked, target)
	e.log.Debug().
		Stringer("target", target).
		Str("kind", string(v.Kind)).
		Int("faults", len(v.Faults)).
		Msg("graded trace")
	return v
}

// GradeInputs normalizes raw input events with the configured cancel window
// and grades the result.
func (e *Engine) GradeInputs(events []InputEvent, locked srs.State, target Target) Verdict {
	return e.Grade(e.normalizer.Normalize(events), locked, target)
}
