// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server runtime settings.
type Config struct {
	// Port the HTTP server listens on.
	Port int

	// DBPath is the SQLite database path. Empty selects the in-memory
	// store (no persistence across restarts).
	DBPath string

	// StubDir is where paystub PDFs are written.
	StubDir string

	// LogLevel is the minimum slog level (debug, info, warn, error).
	LogLevel slog.Level

	// PeriodDays is the pay period span in days.
	PeriodDays int
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present; real environment
// variables win over .env entries.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:       8080,
		DBPath:     "",
		StubDir:    "./data/stubs",
		LogLevel:   slog.LevelInfo,
		PeriodDays: 14,
	}

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return cfg, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = p
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("STUB_DIR"); v != "" {
		cfg.StubDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
		cfg.LogLevel = lvl
	}
	if v := os.Getenv("PERIOD_DAYS"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid PERIOD_DAYS %q", v)
		}
		cfg.PeriodDays = d
	}
	return cfg, nil
}
