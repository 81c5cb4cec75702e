package slogutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"xnav/internal/config"
)

// Setup builds the logger for one CLI invocation.
// Console output always goes to stderr (stdout carries paths for the shell).
// When cfg.File is set, records are also appended there, rotated when
// cfg.MaxSize is set. The returned closer is never nil.
//
// Precedence for the level: CLI flags > logging.level > warn
func Setup(cfg config.LoggingConfig, verbosity int, quiet bool, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level, fromFlags := LevelFromVerbosity(verbosity, quiet)
	if !fromFlags && cfg.Level != "" {
		level = LevelFromString(cfg.Level)
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	console := NewHandler(stderr, &slog.HandlerOptions{Level: level})

	if cfg.File == "" {
		return slog.New(console), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return slog.New(console), nopCloser{}, err
	}

	// The file follows logging.level only; -v/-q affect the console.
	fileLevel := slog.LevelDebug
	if cfg.Level != "" {
		fileLevel = LevelFromString(cfg.Level)
	}

	var w io.WriteCloser
	if size := ParseSize(cfg.MaxSize); size > 0 {
		rf, err := OpenRotatingFile(cfg.File, size, cfg.MaxBackups)
		if err != nil {
			return slog.New(console), nopCloser{}, err
		}
		w = rf
	} else {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return slog.New(console), nopCloser{}, err
		}
		w = f
	}

	file := NewHandler(w, &slog.HandlerOptions{Level: fileLevel})
	return slog.New(NewTeeHandler(console, file)), w, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
