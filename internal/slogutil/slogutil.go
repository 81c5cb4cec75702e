package slogutil

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// LevelSilent is above every standard level.
const LevelSilent = slog.Level(100)

// NewLogger creates a new slog.Logger with the xnav line format.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewDiscardLogger creates a logger that discards all output.
func NewDiscardLogger() *slog.Logger {
	return slog.New(NewHandler(io.Discard, &slog.HandlerOptions{Level: LevelSilent}))
}

// LevelFromString converts a string to a slog.Level.
// Supports: debug, info, warn, error, off (case-insensitive).
// Returns slog.LevelWarn for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	case "off", "none", "silent":
		return LevelSilent
	default:
		return slog.LevelWarn
	}
}

// LevelFromVerbosity converts CLI verbosity flags to a slog.Level.
// ok=false means no flag was given and the config level should apply.
// - quiet: silent
// - -v: info
// - -vv and more: debug
func LevelFromVerbosity(verbosity int, quiet bool) (level slog.Level, ok bool) {
	switch {
	case quiet:
		return LevelSilent, true
	case verbosity == 1:
		return slog.LevelInfo, true
	case verbosity >= 2:
		return slog.LevelDebug, true
	default:
		return slog.LevelWarn, false
	}
}

// TeeHandler writes logs to multiple handlers.
type TeeHandler struct {
	handlers []slog.Handler
}

// NewTeeHandler creates a handler that writes to all provided handlers.
func NewTeeHandler(handlers ...slog.Handler) *TeeHandler {
	return &TeeHandler{handlers: handlers}
}

// Enabled returns true if any handler is enabled for the level.
func (t *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle writes the record to every enabled handler and returns the first error.
func (t *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WithAttrs returns a new TeeHandler with attributes added to all handlers.
func (t *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &TeeHandler{handlers: next}
}

// WithGroup returns a new TeeHandler with the group added to all handlers.
func (t *TeeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return &TeeHandler{handlers: next}
}
