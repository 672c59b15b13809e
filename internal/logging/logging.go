// Package logging builds the structured logger used across taskdeck.
// It wraps log/slog with a JSON handler: debug runs log to stderr, normal
// runs append to a log file in the config directory.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Log levels accepted in configuration.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Options configures New.
type Options struct {
	// Debug sends DEBUG and above to Stderr, ignoring Path and Level.
	Debug bool

	// Stderr receives debug output.
	Stderr io.Writer

	// Path is the log file. Empty disables file logging.
	Path string

	// Level is the minimum level written to Path.
	Level string
}

// New returns a logger and a close function for its backing file.
// The close function is never nil.
func New(opts Options) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }

	if opts.Debug {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
		return slog.New(h), noop, nil
	}

	if opts.Path == "" {
		return Discard(), noop, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
		return nil, noop, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open log file: %w", err)
	}

	h := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})
	return slog.New(h), f.Close, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts a string log level to slog.Level.
// Defaults to INFO if the level string is not recognized.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
