// Package history is the visit history: recording visits with capacity
// eviction, enumerating entries, and managing bookmarks.
package history

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"time"

	"xnav/internal/config"
	"xnav/internal/errors"
	"xnav/internal/maintenance"
	"xnav/internal/paths"
	"xnav/internal/storage"
)

// Outcome is the result of RecordVisit.
type Outcome int

const (
	// Recorded means the visit was stored
	Recorded Outcome = iota
	// Ignored means an ignore pattern matched and nothing was written
	Ignored
)

func (o Outcome) String() string {
	switch o {
	case Recorded:
		return "recorded"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Store is the history facade used by commands.
type Store struct {
	db     *storage.DB
	cfg    *config.Config
	policy *config.Policy
	maint  *maintenance.Maintainer
	logger *slog.Logger
	now    func() time.Time
	cwd    string
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkingDir sets the directory relative paths resolve against.
// Defaults to the process working directory.
func WithWorkingDir(dir string) Option {
	return func(s *Store) {
		s.cwd = dir
	}
}

// New creates a Store. A nil cfg means defaults; a nil policy ignores nothing.
func New(db *storage.DB, cfg *config.Config, policy *config.Policy, opts ...Option) *Store {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Store{
		db:     db,
		cfg:    cfg,
		policy: policy,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.maint = maintenance.New(db, cfg, policy,
		maintenance.WithClock(s.now),
		maintenance.WithLogger(s.logger),
	)
	return s
}

// Maintenance returns the maintainer sharing this store's database and clock.
func (s *Store) Maintenance() *maintenance.Maintainer {
	return s.maint
}

// DB returns the underlying database.
func (s *Store) DB() *storage.DB {
	return s.db
}

// Config returns the active configuration.
func (s *Store) Config() *config.Config {
	return s.cfg
}

// Policy returns the active ignore policy.
func (s *Store) Policy() *config.Policy {
	return s.policy
}

// RecordVisit canonicalises path and counts a visit to it. Ignored paths are
// reported as Ignored without touching the database. The upsert and any
// eviction it triggers commit in one transaction.
func (s *Store) RecordVisit(ctx context.Context, path string) (Outcome, error) {
	if strings.TrimSpace(path) == "" {
		return Ignored, errors.New(errors.InvalidArgument, "path is empty", nil)
	}
	canonical, err := paths.Canonicalize(path, s.cwd)
	if err != nil {
		return Ignored, errors.New(errors.InvalidArgument, "cannot resolve path "+path, err)
	}
	if pattern, ok := s.policy.MatchingPattern(canonical); ok {
		s.logger.Debug("Visit ignored", "path", canonical, "pattern", pattern)
		return Ignored, nil
	}

	now := s.now()
	err = s.db.WithTx(ctx, func(tx *storage.Tx) error {
		inserted, err := tx.RecordVisit(ctx, canonical, now)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		_, err = s.maint.EvictIfOverCapacity(ctx, tx, now)
		return err
	})
	if err != nil {
		return Recorded, errors.Persistence("failed to record visit", err)
	}
	s.logger.Debug("Visit recorded", "path", canonical)
	return Recorded, nil
}

// AllEntries returns a lazy, restartable sequence over every entry.
func (s *Store) AllEntries(ctx context.Context) iter.Seq2[storage.Entry, error] {
	return func(yield func(storage.Entry, error) bool) {
		for e, err := range s.db.Entries(ctx) {
			if err != nil {
				yield(storage.Entry{}, errors.Persistence("failed to read history", err))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// FindEntry returns the entry for the canonical form of path, or nil.
func (s *Store) FindEntry(ctx context.Context, path string) (*storage.Entry, error) {
	canonical, err := paths.Canonicalize(path, s.cwd)
	if err != nil {
		return nil, errors.New(errors.InvalidArgument, "cannot resolve path "+path, err)
	}
	e, err := s.db.FindEntry(ctx, canonical)
	if err != nil {
		return nil, errors.Persistence("failed to read history", err)
	}
	return e, nil
}
