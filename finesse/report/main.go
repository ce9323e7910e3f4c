// This package prints the finesse length of every placement as a table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"tetris"
	"tetris/finesse"
	"tetris/finesse/config"
	"tetris/finesse/table"
)

var (
	tableFile = flag.String("table", "", "Read placements from this gzip gob table instead of computing them")
	fromDB    = flag.Bool("sqlite", false, "Read placements from the SQLite database at FINESSE_DB_PATH")
	rotate180 = flag.Bool("rotate180", false, "Allow half turns even if FINESSE_ROTATE_180 is unset")
	verbose   = flag.Bool("verbose", false, "Also list the optimal sequences of every placement")
	target    = flag.String("target", "", `Only list the sequences of one placement, given as "<piece> <column> <rotation>"`)
)

/* Sample Output

Board = 10x20, 180 = false
           -2   -1   0   1   2   3   4   5   6   7   8   Avg
T 0                  2   3   3   1   2   3   3   2       2.44
T R             3    3   4   4   2   3   4   4   3       3.22
...
*/
func main() {
	flag.Parse()

	if *target != "" {
		if err := printTarget(*target); err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
		return
	}

	tbl, err := loadTable()
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Board = %dx%d, 180 = %t\n", tbl.Width, tbl.Height, tbl.Rotate180)

	const minCol, padding = -2, 3
	maxCol := tbl.Width - 1
	w := tabwriter.NewWriter(os.Stdout, 0, 0, padding, ' ', 0)

	title := ""
	for col := minCol; col <= maxCol; col++ {
		title += fmt.Sprintf("\t%d", col)
	}
	fmt.Fprintln(w, title+"\tAvg")

	var total, count int
	for _, p := range tetris.NonemptyPieces {
		for _, r := range tetris.Rotations {
			row := fmt.Sprintf("%v %v", p, r)
			var rowTotal, rowCount int
			for col := minCol; col <= maxCol; col++ {
				seqs, ok := tbl.Lookup(finesse.Target{Piece: p, Column: col, Rotation: r})
				if !ok {
					row += "\t"
					continue
				}
				// Hard drops are not counted.
				n := seqs[0].Len() - 1
				row += fmt.Sprintf("\t%d", n)
				rowTotal += n
				rowCount++
			}
			if rowCount > 0 {
				row += fmt.Sprintf("\t%.2f", float64(rowTotal)/float64(rowCount))
			}
			total += rowTotal
			count += rowCount
			fmt.Fprintln(w, row)
		}
	}
	w.Flush()
	if count > 0 {
		fmt.Printf("\n%d placements, %.2f inputs on average before the hard drop\n", count, float64(total)/float64(count))
	}

	if !*verbose {
		return
	}
	for _, e := range tbl.Entries() {
		var b strings.Builder
		for i, seq := range e.Sequences {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(seq.String())
		}
		fmt.Printf("%v: %s\n", e.Target, b.String())
	}
}

func loadTable() (*table.Table, error) {
	if *tableFile != "" {
		tbl, err := table.ReadFile(*tableFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read table at %q: %w", *tableFile, err)
		}
		return tbl, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *fromDB {
		store, err := table.OpenStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(context.Background())
	}
	if *rotate180 {
		cfg.Engine.Rotate180 = true
	}
	engine, err := finesse.NewEngine(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("NewEngine failed: %w", err)
	}
	return table.Generate(engine, tetris.AllPieces), nil
}

// printTarget lists the optimal sequences of a single placement. With
// -sqlite only that placement is read from the database.
func printTarget(s string) error {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return fmt.Errorf("target %q: want <piece> <column> <rotation>", s)
	}
	var t finesse.Target
	var err error
	if t.Piece, err = tetris.ParsePiece(fields[0]); err != nil {
		return err
	}
	if t.Column, err = strconv.Atoi(fields[1]); err != nil {
		return fmt.Errorf("column %q: %w", fields[1], err)
	}
	if t.Rotation, err = tetris.ParseRotation(fields[2]); err != nil {
		return err
	}

	var seqs []tetris.Sequence
	if *fromDB {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := table.OpenStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		seqs, err = store.Lookup(context.Background(), t)
		if err != nil && !errors.Is(err, table.ErrNotFound) {
			return err
		}
	} else {
		tbl, err := loadTable()
		if err != nil {
			return err
		}
		seqs, _ = tbl.Lookup(t)
	}

	if len(seqs) == 0 {
		fmt.Printf("%v: unreachable\n", t)
		return nil
	}
	fmt.Printf("%v: %d inputs\n", t, seqs[0].Len())
	for _, seq := range seqs {
		fmt.Printf("  %v\n", seq)
	}
	return nil
}
