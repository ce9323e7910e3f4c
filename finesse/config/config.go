// Package config reads the settings shared by the finesse commands from the
// environment, optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tetris/finesse"
)

// Environment variables read by FromEnv.
const (
	EnvRotate180    = "FINESSE_ROTATE_180"
	EnvCancelWindow = "FINESSE_CANCEL_WINDOW"
	EnvBoardWidth   = "FINESSE_BOARD_WIDTH"
	EnvBoardHeight  = "FINESSE_BOARD_HEIGHT"
	EnvTablePath    = "FINESSE_TABLE_PATH"
	EnvDBPath       = "FINESSE_DB_PATH"
	EnvLogLevel     = "LOG_LEVEL"
	EnvPort         = "PORT"
)

// Config holds everything the commands need.
type Config struct {
	Engine    finesse.Config
	TablePath string
	DBPath    string
	LogLevel  zerolog.Level
	Port      string
}

// Load reads .env if present and then the environment. The global zerolog
// level is set from LOG_LEVEL.
func Load() (Config, error) {
	_ = godotenv.Load()
	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)
	cfg.Engine.Logger = log.Logger
	return cfg, nil
}

// FromEnv builds a Config from environment variables, using defaults for the
// ones that are unset. The engine config is validated.
func FromEnv() (Config, error) {
	cfg := Config{
		Engine:    finesse.DefaultConfig(),
		TablePath: getEnv(EnvTablePath, "finesse.gob.gz"),
		DBPath:    getEnv(EnvDBPath, "./data/finesse.db"),
		Port:      getEnv(EnvPort, "5180"),
	}

	var err error
	if cfg.LogLevel, err = zerolog.ParseLevel(getEnv(EnvLogLevel, "info")); err != nil {
		return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	if v := os.Getenv(EnvRotate180); v != "" {
		if cfg.Engine.Rotate180, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvRotate180, err)
		}
	}
	if v := os.Getenv(EnvCancelWindow); v != "" {
		if cfg.Engine.CancelWindow, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvCancelWindow, err)
		}
	}
	if cfg.Engine.Width, err = getInt(EnvBoardWidth, cfg.Engine.Width); err != nil {
		return Config{}, err
	}
	if cfg.Engine.Height, err = getInt(EnvBoardHeight, cfg.Engine.Height); err != nil {
		return Config{}, err
	}
	if err := cfg.Engine.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}
