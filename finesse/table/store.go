package table

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"tetris"
	"tetris/finesse"
)

// ErrNotFound is returned when the store has no such placement or no table.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS finesse_meta (
	id        INTEGER PRIMARY KEY CHECK (id = 1),
	width     INTEGER NOT NULL,
	height    INTEGER NOT NULL,
	rotate180 INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS finesse_sequences (
	piece    TEXT    NOT NULL,
	rotation TEXT    NOT NULL,
	col      INTEGER NOT NULL,
	idx      INTEGER NOT NULL,
	length   INTEGER NOT NULL,
	actions  TEXT    NOT NULL,
	PRIMARY KEY (piece, rotation, col, idx)
);`

// Store keeps a Table in a SQLite database so other tools can query it.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and creates if missing) a SQLite database file.
func OpenStore(dsn string) (*Store, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored table with t.
func (s *Store) Save(ctx context.Context, t *Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := saveTx(ctx, tx, t); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Info().Int("placements", t.Len()).Msg("saved finesse table")
	return nil
}

func saveTx(ctx context.Context, tx *sql.Tx, t *Table) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM finesse_sequences; DELETE FROM finesse_meta;`); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO finesse_meta(id, width, height, rotate180) VALUES (1, ?, ?, ?)`,
		t.Width, t.Height, t.Rotate180,
	); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO finesse_sequences(piece, rotation, col, idx, length, actions)
        VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range t.Entries() {
		for idx, seq := range e.Sequences {
			actions, err := json.Marshal(seq)
			if err != nil {
				return fmt.Errorf("marshal %v: %w", seq, err)
			}
			if _, err := stmt.ExecContext(ctx,
				e.Target.Piece.String(), e.Target.Rotation.String(), e.Target.Column,
				idx, seq.Len(), string(actions),
			); err != nil {
				return fmt.Errorf("insert %v: %w", e.Target, err)
			}
		}
	}
	return nil
}

// Load reads the stored table.
func (s *Store) Load(ctx context.Context) (*Table, error) {
	t := &Table{entries: make(map[finesse.Target][]tetris.Sequence)}
	err := s.db.QueryRowContext(ctx,
		`SELECT width, height, rotate180 FROM finesse_meta WHERE id = 1`,
	).Scan(&t.Width, &t.Height, &t.Rotate180)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT piece, rotation, col, actions
        FROM finesse_sequences
        ORDER BY piece, rotation, col, idx`)
	if err != nil {
		return nil, fmt.Errorf("query sequences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		target, seq, err := scanSequence(rows)
		if err != nil {
			return nil, err
		}
		t.entries[target] = append(t.entries[target], seq)
	}
	return t, rows.Err()
}

// Lookup returns the stored sequences of a single placement.
func (s *Store) Lookup(ctx context.Context, target finesse.Target) ([]tetris.Sequence, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT piece, rotation, col, actions
        FROM finesse_sequences
        WHERE piece = ? AND rotation = ? AND col = ?
        ORDER BY idx`,
		target.Piece.String(), target.Rotation.String(), target.Column,
	)
	if err != nil {
		return nil, fmt.Errorf("query sequences: %w", err)
	}
	defer rows.Close()

	var out []tetris.Sequence
	for rows.Next() {
		_, seq, err := scanSequence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, target)
	}
	return out, nil
}

func scanSequence(rows *sql.Rows) (finesse.Target, tetris.Sequence, error) {
	var (
		piece, rotation, actions string
		target                   finesse.Target
		seq                      tetris.Sequence
	)
	if err := rows.Scan(&piece, &rotation, &target.Column, &actions); err != nil {
		return target, 0, err
	}
	var err error
	if target.Piece, err = tetris.ParsePiece(piece); err != nil {
		return target, 0, err
	}
	if target.Rotation, err = tetris.ParseRotation(rotation); err != nil {
		return target, 0, err
	}
	if err := json.Unmarshal([]byte(actions), &seq); err != nil {
		return target, 0, fmt.Errorf("unmarshal %q: %w", actions, err)
	}
	return target, seq, nil
}
