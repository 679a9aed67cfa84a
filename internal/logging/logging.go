// Package logging sets up the process-wide structured logger. Grounded on
// fenrir's use of github.com/rs/zerolog throughout internal/net and
// internal/worker.go.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing human-readable output in dev mode
// and structured JSON otherwise, matching the level given.
func New(level string, pretty bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var out zerolog.ConsoleWriter
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
		return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
