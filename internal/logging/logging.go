// Package logging builds the zerolog loggers used across grainstats.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// ParseLevel maps a config level name to a zerolog level.
// An empty name means info.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "quiet", "disabled":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q (expected debug|info|warn|error|quiet)", name)
	}
}

// New returns a timestamped logger writing JSON to w.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewConsole returns a logger for stderr, human readable when stderr is a
// terminal and JSON otherwise.
func NewConsole(level zerolog.Level) zerolog.Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return New(zerolog.ConsoleWriter{Out: os.Stderr}, level)
	}
	return New(os.Stderr, level)
}

// Component tags a logger with the component emitting the events.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
