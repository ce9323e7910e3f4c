// This package generates the finesse lookup table and saves it to a gzip gob
// file and, optionally, a SQLite database.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"tetris"
	"tetris/finesse"
	"tetris/finesse/config"
	"tetris/finesse/table"
)

var (
	outFile   = flag.String("out", "", "Path to write the gzip gob table to. Defaults to FINESSE_TABLE_PATH.")
	saveDB    = flag.Bool("sqlite", false, "Also save the table to the SQLite database at FINESSE_DB_PATH")
	pieces    = flag.String("pieces", "TLJSZOI", "The pieces to generate sequences for")
	rotate180 = flag.Bool("rotate180", false, "Allow half turns even if FINESSE_ROTATE_180 is unset")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *rotate180 {
		cfg.Engine.Rotate180 = true
	}
	if *outFile == "" {
		*outFile = cfg.TablePath
	}
	set, err := tetris.ParsePieceSet(*pieces)
	if err != nil {
		log.Fatal().Err(err).Str("pieces", *pieces).Msg("bad pieces")
	}

	engine, err := finesse.NewEngine(cfg.Engine)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create engine")
	}

	start := time.Now()
	tbl := table.Generate(engine, set)
	log.Info().
		Int("placements", tbl.Len()).
		Stringer("pieces", set).
		Bool("rotate180", cfg.Engine.Rotate180).
		Dur("elapsed", time.Since(start)).
		Msg("generated table")

	if err := table.WriteFile(*outFile, tbl); err != nil {
		log.Fatal().Err(err).Str("path", *outFile).Msg("failed to write table")
	}
	log.Info().Str("path", *outFile).Msg("wrote table")

	if !*saveDB {
		return
	}
	store, err := table.OpenStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open store")
	}
	defer store.Close()
	if err := store.Save(context.Background(), tbl); err != nil {
		log.Fatal().Err(err).Msg("failed to save table")
	}
}
