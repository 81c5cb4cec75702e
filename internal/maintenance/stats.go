package maintenance

import (
	"context"
	"time"

	"xnav/internal/ranking"
	"xnav/internal/storage"
)

// DefaultStatsLimit is the top-N used when none is given
const DefaultStatsLimit = 10

// Snapshot is a read-only view of the history.
type Snapshot struct {
	TotalEntries int              `json:"total_entries"`
	TotalVisits  int64            `json:"total_visits"`
	Bookmarks    int              `json:"bookmarks"`
	Top          []ranking.Scored `json:"top"`
	Recent       []storage.Entry  `json:"recent"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// Stats gathers totals, the n best ranked entries and the n most recently
// visited ones. A non-positive n means DefaultStatsLimit.
func (m *Maintainer) Stats(ctx context.Context, n int) (*Snapshot, error) {
	if n <= 0 {
		n = DefaultStatsLimit
	}
	now := m.now()

	total, err := m.db.CountEntries(ctx)
	if err != nil {
		return nil, persistenceErr("failed to count entries", err)
	}
	visits, err := m.db.TotalVisits(ctx)
	if err != nil {
		return nil, persistenceErr("failed to sum visits", err)
	}
	entries, err := m.db.ListEntries(ctx)
	if err != nil {
		return nil, persistenceErr("failed to read history", err)
	}
	recent, err := m.db.RecentEntries(ctx, n)
	if err != nil {
		return nil, persistenceErr("failed to read recent entries", err)
	}
	bookmarks, err := m.db.ListBookmarks(ctx)
	if err != nil {
		return nil, persistenceErr("failed to read bookmarks", err)
	}

	top := scoreAll(entries, now, m.cfg.UpdateThresholdHours)
	ranking.SortByRank(top)
	if len(top) > n {
		top = top[:n]
	}

	return &Snapshot{
		TotalEntries: total,
		TotalVisits:  visits,
		Bookmarks:    len(bookmarks),
		Top:          top,
		Recent:       recent,
		GeneratedAt:  now,
	}, nil
}
