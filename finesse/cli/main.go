// This package grades finesse typed into the terminal.
//
// Without flags every line is "<piece> <column> <rotation> <actions...>",
// for example "T 1 0 l l hd". With -drill the program picks random targets
// and only the actions are typed.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"tetris"
	"tetris/finesse"
	"tetris/finesse/config"
	"tetris/srs"
)

var (
	drill     = flag.Int("drill", 0, "Number of random targets to drill. 0 reads targets from each line.")
	rotate180 = flag.Bool("rotate180", false, "Allow half turns even if FINESSE_ROTATE_180 is unset")
	noColor   = flag.Bool("no_color", false, "Disable colored output")
)

var (
	good = color.New(color.FgGreen, color.Bold)
	bad  = color.New(color.FgRed, color.Bold)
	note = color.New(color.FgYellow)
	hint = color.New(color.FgCyan)
)

func main() {
	flag.Parse()
	if *noColor {
		color.NoColor = true
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}
	if *rotate180 {
		cfg.Engine.Rotate180 = true
	}
	engine, err := finesse.NewEngine(cfg.Engine)
	if err != nil {
		fmt.Printf("NewEngine failed: %v\n", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)
	if *drill > 0 {
		runDrill(engine, reader, *drill)
		return
	}
	runFree(engine, reader)
}

// runFree grades a target and trace per line until EOF or "q".
func runFree(engine *finesse.Engine, reader *bufio.Reader) {
	for {
		fmt.Printf("<piece> <column> <rotation> <actions...> (q to quit): ")
		text, err := reader.ReadString('\n')
		if strings.HasPrefix(strings.TrimSpace(text), "q") {
			fmt.Println("goodbye!")
			return
		}
		if fields := strings.Fields(text); len(fields) > 0 {
			target, actions, perr := parseLine(fields)
			if perr != nil {
				fmt.Println(perr)
			} else {
				grade(engine, target, actions)
			}
		}
		if err != nil {
			return
		}
	}
}

func parseLine(fields []string) (finesse.Target, []tetris.Action, error) {
	var target finesse.Target
	if len(fields) < 3 {
		return target, nil, errors.New("expected at least a piece, a column and a rotation")
	}
	var err error
	if target.Piece, err = tetris.ParsePiece(fields[0]); err != nil {
		return target, nil, err
	}
	if target.Column, err = strconv.Atoi(fields[1]); err != nil {
		return target, nil, fmt.Errorf("column %q: %w", fields[1], err)
	}
	if target.Rotation, err = tetris.ParseRotation(fields[2]); err != nil {
		return target, nil, err
	}
	actions, err := parseActions(fields[3:])
	return target, actions, err
}

func parseActions(fields []string) ([]tetris.Action, error) {
	actions := make([]tetris.Action, 0, len(fields))
	for _, f := range fields {
		a, err := tetris.ParseAction(f)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// runDrill asks for n random placements.
func runDrill(engine *finesse.Engine, reader *bufio.Reader, n int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var optimal int
	for idx, p := range tetris.RandPieces(n) {
		r := tetris.Rotations[rng.Intn(tetris.NumRotations)]
		first, last := srs.ColumnRange(p, r, engine.Board().Width)
		target := finesse.Target{Piece: p, Column: first + rng.Intn(last-first+1), Rotation: r}

		for {
			fmt.Printf("[%d/%d] place %s (q to quit): ", idx+1, n, hint.Sprint(target))
			text, err := reader.ReadString('\n')
			if err != nil || strings.HasPrefix(strings.TrimSpace(text), "q") {
				fmt.Printf("%d of %d optimal. goodbye!\n", optimal, idx)
				return
			}
			actions, err := parseActions(strings.Fields(text))
			if err != nil {
				fmt.Println(err)
				continue
			}
			if grade(engine, target, actions) {
				optimal++
			}
			break
		}
	}
	fmt.Printf("%d of %d optimal\n", optimal, n)
}

// grade prints the verdict for a trace and returns whether it was optimal.
func grade(engine *finesse.Engine, target finesse.Target, actions []tetris.Action) bool {
	locked, err := engine.Simulate(target.Piece, actions)
	if err != nil {
		fmt.Println(err)
		return false
	}
	v := engine.Grade(actions, locked, target)
	if v.Kind == finesse.KindOptimal {
		good.Print("OPTIMAL")
	} else {
		bad.Print("FAULTY")
	}
	fmt.Printf(" %v locked at column %d rotation %v\n", v.Player, locked.Col, locked.Rotation)
	for _, f := range v.Faults {
		if f.Count > 0 {
			note.Printf("  %s (+%d)\n", f.Kind, f.Count)
		} else {
			note.Printf("  %s\n", f.Kind)
		}
	}
	if v.Divergence >= 0 && v.Divergence < len(v.Player) {
		note.Printf("  first wrong input: #%d %v\n", v.Divergence+1, v.Player[v.Divergence])
	}
	for _, seq := range v.Optimal {
		hint.Printf("  %v\n", seq)
	}
	return v.Kind == finesse.KindOptimal
}
