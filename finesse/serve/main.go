// This package serves the finesse engine over HTTP.
package main

import (
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"tetris"
	"tetris/finesse"
	"tetris/finesse/config"
	"tetris/finesse/server"
	"tetris/finesse/table"
)

var warm = flag.Bool("warm", true, "Compute every placement before accepting requests")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	engine, err := finesse.NewEngine(cfg.Engine)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create engine")
	}

	if *warm {
		start := time.Now()
		tbl := table.Generate(engine, tetris.AllPieces)
		log.Info().Int("placements", tbl.Len()).Dur("elapsed", time.Since(start)).Msg("warmed cache")
	}

	srv := server.New(engine, log.Logger)
	log.Info().
		Str("port", cfg.Port).
		Int("width", cfg.Engine.Width).
		Int("height", cfg.Engine.Height).
		Bool("rotate180", cfg.Engine.Rotate180).
		Msg("starting finesse server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
