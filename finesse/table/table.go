// Package table precomputes the optimal sequences of every placement and
// stores them as a gzip compressed gob file or in SQLite.
package table

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"sort"

	"tetris"
	"tetris/finesse"
	"tetris/srs"
)

// Table maps every reachable placement to its optimal sequences.
//
// Table is safe for concurrent reads.
type Table struct {
	Width     int
	Height    int
	Rotate180 bool

	entries map[finesse.Target][]tetris.Sequence
}

// Entry is one placement with its optimal sequences.
type Entry struct {
	Target    finesse.Target    `json:"target"`
	Sequences []tetris.Sequence `json:"sequences"`
}

// Generate computes a Table of every reachable (piece, rotation, column) for
// the pieces using the engine.
func Generate(e *finesse.Engine, pieces tetris.PieceSet) *Table {
	cfg := e.Config()
	t := &Table{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Rotate180: cfg.Rotate180,
		entries:   make(map[finesse.Target][]tetris.Sequence),
	}
	for _, p := range pieces.ToSlice() {
		for _, r := range tetris.Rotations {
			first, last := srs.ColumnRange(p, r, cfg.Width)
			for col := first; col <= last; col++ {
				if seqs := e.Optimal(p, col, r); len(seqs) > 0 {
					t.entries[finesse.Target{Piece: p, Column: col, Rotation: r}] = seqs
				}
			}
		}
	}
	return t
}

// Len returns the number of placements in the Table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns a copy of the optimal sequences for the target or false if
// the Table has no such placement.
func (t *Table) Lookup(target finesse.Target) ([]tetris.Sequence, bool) {
	seqs, ok := t.entries[target]
	if !ok {
		return nil, false
	}
	cpy := make([]tetris.Sequence, len(seqs))
	copy(cpy, seqs)
	return cpy, true
}

// Entries returns every placement ordered by piece, rotation and column.
func (t *Table) Entries() []Entry {
	all := make([]Entry, 0, len(t.entries))
	for target, seqs := range t.entries {
		cpy := make([]tetris.Sequence, len(seqs))
		copy(cpy, seqs)
		all = append(all, Entry{Target: target, Sequences: cpy})
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i].Target, all[j].Target
		if a.Piece != b.Piece {
			return a.Piece < b.Piece
		}
		if a.Rotation != b.Rotation {
			return a.Rotation < b.Rotation
		}
		return a.Column < b.Column
	})
	return all
}

// gobEntry keeps the encoding independent of how the enums marshal text.
type gobEntry struct {
	Piece     uint8
	Rotation  uint8
	Column    int
	Sequences []uint64
}

// GobEncode returns a Gob encoding of a Table.
func (t *Table) GobEncode() ([]byte, error) {
	buf := new(bytes.Buffer)
	encoder := gob.NewEncoder(buf)
	header := [3]int{t.Width, t.Height, 0}
	if t.Rotate180 {
		header[2] = 1
	}
	if err := encoder.Encode(&header); err != nil {
		return nil, fmt.Errorf("encoder.Encode(header): %w", err)
	}
	entries := t.Entries()
	encoded := make([]gobEntry, len(entries))
	for i, e := range entries {
		encoded[i] = gobEntry{
			Piece:     uint8(e.Target.Piece),
			Rotation:  uint8(e.Target.Rotation),
			Column:    e.Target.Column,
			Sequences: make([]uint64, len(e.Sequences)),
		}
		for j, seq := range e.Sequences {
			encoded[i].Sequences[j] = uint64(seq)
		}
	}
	if err := encoder.Encode(&encoded); err != nil {
		return nil, fmt.Errorf("encoder.Encode(entries): %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode decodes a Gob encoding into a Table.
func (t *Table) GobDecode(b []byte) error {
	decoder := gob.NewDecoder(bytes.NewReader(b))
	var header [3]int
	if err := decoder.Decode(&header); err != nil {
		return fmt.Errorf("decoder.Decode(header): %w", err)
	}
	var encoded []gobEntry
	if err := decoder.Decode(&encoded); err != nil {
		return fmt.Errorf("decoder.Decode(entries): %w", err)
	}

	entries := make(map[finesse.Target][]tetris.Sequence, len(encoded))
	for _, e := range encoded {
		target := finesse.Target{
			Piece:    tetris.Piece(e.Piece),
			Column:   e.Column,
			Rotation: tetris.Rotation(e.Rotation),
		}
		if err := target.Validate(); err != nil {
			return err
		}
		seqs := make([]tetris.Sequence, len(e.Sequences))
		for i, s := range e.Sequences {
			seqs[i] = tetris.Sequence(s)
			if seqs[i].Last() != tetris.HardDrop {
				return fmt.Errorf("%v: sequence %v does not end in a hard drop", target, seqs[i])
			}
		}
		entries[target] = seqs
	}
	t.Width, t.Height, t.Rotate180 = header[0], header[1], header[2] == 1
	t.entries = entries
	return nil
}

// Write writes the gzip compressed Gob encoding of the Table.
func (t *Table) Write(w io.Writer) error {
	b, err := t.GobEncode()
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(w)
	if _, err := gz.Write(b); err != nil {
		return fmt.Errorf("gzip write: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("gzip close: %w", err)
	}
	return nil
}

// Read reads a Table written by Write.
func Read(r io.Reader) (*Table, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip.NewReader: %w", err)
	}
	defer gz.Close()

	b, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("read gzip contents: %w", err)
	}
	t := &Table{}
	if err := t.GobDecode(b); err != nil {
		return nil, fmt.Errorf("GobDecode: %w", err)
	}
	return t, nil
}

// WriteFile writes the Table to a file, usually named *.gob.gz.
func WriteFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create: %w", err)
	}
	if err := t.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a Table written by WriteFile.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()
	return Read(f)
}
