// Package logging builds the slog loggers used across sparcsched.
//
// Scheduler packages never construct loggers themselves; they take one
// injected through options. Only the CLI calls New.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the level, format and destination of a logger.
type Options struct {
	// Level is debug, info, warn or error. Empty or unknown means info.
	Level string

	// Format is "text" (human-readable) or "json" (structured).
	Format string

	// Verbose forces debug so per-decision records are emitted.
	Verbose bool

	// Writer defaults to stderr; stdout is reserved for schedules and
	// JSON results.
	Writer io.Writer
}

// New creates a logger from o.
func New(o Options) *slog.Logger {
	w := o.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: o.level()}

	var handler slog.Handler
	switch strings.ToLower(o.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func (o Options) level() slog.Level {
	if o.Verbose {
		return slog.LevelDebug
	}
	return ParseLevel(o.Level)
}

// ParseLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
