// Package logger provides a configured zerolog instance.
package logger

import (
	"io"
	"os"

	"github.com/devicenanny/notifier/internal/config"
	"github.com/rs/zerolog"
)

// NewLogger creates a new configured instance of zerolog.Logger.
// It reads the log level from the config and adds default fields like service name and caller.
func NewLogger(cfg *config.Config) (*zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Logger.Level)
	if err != nil || cfg.Logger.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.Logger.JSON {
		out = os.Stderr
	}

	logger := zerolog.New(out).With().
		Timestamp().
		Str("service", "device-nanny-notifier").
		Caller().
		Logger().
		Level(level)

	return &logger, nil
}
