// Package logging configures the process-wide zerolog setup.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the root logger. Format "pretty" gives a console writer
// for local development; anything else emits JSON lines.
func New(level, format string) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(level))

	var logger zerolog.Logger
	if format == "pretty" {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	// Packages that log through zerolog's global logger pick up the
	// same configuration.
	log.Logger = logger
	return logger
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
