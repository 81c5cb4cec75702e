// Package maintenance keeps the history bounded and tidy: capacity
// eviction, removal of stale or newly ignored entries, and statistics.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"xnav/internal/config"
	"xnav/internal/errors"
	"xnav/internal/paths"
	"xnav/internal/ranking"
	"xnav/internal/storage"
)

// Maintainer runs maintenance operations against one database.
type Maintainer struct {
	db     *storage.DB
	cfg    *config.Config
	policy *config.Policy
	logger *slog.Logger
	exists func(string) bool
	now    func() time.Time
}

// Option configures a Maintainer
type Option func(*Maintainer)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Maintainer) {
		m.now = now
	}
}

// WithExistsFunc replaces the filesystem check used by PlanClean
func WithExistsFunc(fn func(string) bool) Option {
	return func(m *Maintainer) {
		m.exists = fn
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(m *Maintainer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a Maintainer. A nil cfg means defaults.
func New(db *storage.DB, cfg *config.Config, policy *config.Policy, opts ...Option) *Maintainer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	m := &Maintainer{
		db:     db,
		cfg:    cfg,
		policy: policy,
		logger: slog.New(slog.DiscardHandler),
		exists: paths.Exists,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EvictIfOverCapacity deletes the lowest ranked entries until at most
// max_entries remain. It runs inside the caller's transaction so the
// triggering insert and the eviction commit together.
func (m *Maintainer) EvictIfOverCapacity(ctx context.Context, tx *storage.Tx, now time.Time) (int, error) {
	count, err := tx.CountEntries(ctx)
	if err != nil {
		return 0, err
	}
	excess := count - m.cfg.MaxEntries
	if m.cfg.MaxEntries <= 0 || excess <= 0 {
		return 0, nil
	}

	// Collect first: deleting while the cursor is open is not safe.
	entries, err := tx.ListEntries(ctx)
	if err != nil {
		return 0, err
	}
	scored := scoreAll(entries, now, m.cfg.UpdateThresholdHours)
	ranking.SortForEviction(scored)

	victims := make([]string, 0, excess)
	for _, s := range scored[:excess] {
		victims = append(victims, s.Path)
	}
	removed, err := tx.DeleteEntries(ctx, victims)
	if err != nil {
		return removed, err
	}
	m.logger.Debug("Evicted entries over capacity",
		"removed", removed,
		"max_entries", m.cfg.MaxEntries,
	)
	return removed, nil
}

func scoreAll(entries []storage.Entry, now time.Time, thresholdHours float64) []ranking.Scored {
	scorer := ranking.Scorer{Now: now, ThresholdHours: thresholdHours}
	out := make([]ranking.Scored, 0, len(entries))
	for _, e := range entries {
		out = append(out, scorer.Rank(e.Path, e.Visits, e.LastAccessed, e.FirstSeen))
	}
	return out
}

// persistenceErr wraps storage failures, leaving coded errors alone.
func persistenceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*errors.XnavError); ok {
		return err
	}
	return errors.Persistence(op, err)
}
