package transfer

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"xnav/internal/config"
	"xnav/internal/errors"
	"xnav/internal/maintenance"
	"xnav/internal/storage"
)

// ImportResult counts what an import wrote.
type ImportResult struct {
	Entries   int `json:"entries"`
	Bookmarks int `json:"bookmarks"`
	Ignored   int `json:"ignored"`
	Evicted   int `json:"evicted"`
}

// Importer writes snapshots into a database.
type Importer struct {
	db     *storage.DB
	policy *config.Policy
	maint  *maintenance.Maintainer
	logger *slog.Logger
	now    func() time.Time
}

// NewImporter creates an Importer. Entries matching policy are skipped and
// maint enforces the capacity limit after the import.
func NewImporter(db *storage.DB, policy *config.Policy, maint *maintenance.Maintainer, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Importer{db: db, policy: policy, maint: maint, logger: logger, now: time.Now}
}

// Import writes snap in one transaction. Paths are cleaned first and entries
// naming the same directory are folded together. With merge, entries are
// folded into existing rows (visits summed, latest access, earliest
// first_seen) and bookmarks overwrite by name. Without merge, existing entries
// and bookmarks are replaced.
func (im *Importer) Import(ctx context.Context, snap *Snapshot, merge bool) (*ImportResult, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	entries := foldEntries(snap.Entries)

	var res ImportResult
	err := im.db.WithTx(ctx, func(tx *storage.Tx) error {
		res = ImportResult{}
		if !merge {
			if err := tx.ClearEntries(ctx); err != nil {
				return err
			}
			if err := tx.ClearBookmarks(ctx); err != nil {
				return err
			}
		}
		for _, e := range entries {
			if im.policy.IsIgnored(e.Path) {
				res.Ignored++
				continue
			}
			if err := tx.PutEntry(ctx, storage.Entry(e)); err != nil {
				return err
			}
			res.Entries++
		}
		for _, b := range snap.Bookmarks {
			b.Path = filepath.Clean(b.Path)
			if err := tx.PutBookmark(ctx, storage.Bookmark(b)); err != nil {
				return err
			}
			res.Bookmarks++
		}
		if im.maint != nil {
			n, err := im.maint.EvictIfOverCapacity(ctx, tx, im.now())
			if err != nil {
				return err
			}
			res.Evicted = n
		}
		return nil
	})
	if err != nil {
		return nil, errors.Persistence("failed to import snapshot", err)
	}

	im.logger.Info("Imported snapshot",
		"id", snap.ID,
		"entries", res.Entries,
		"bookmarks", res.Bookmarks,
		"ignored", res.Ignored,
		"merge", merge,
	)
	return &res, nil
}

// ImportBookmarks upserts bookmarks by name in one transaction.
func (im *Importer) ImportBookmarks(ctx context.Context, bookmarks []BookmarkRecord) (int, error) {
	for i, b := range bookmarks {
		if b.Name == "" || b.Path == "" {
			return 0, errors.Newf(errors.InvalidArgument, "bookmark %d: name and path are required", i)
		}
	}
	now := im.now()
	err := im.db.WithTx(ctx, func(tx *storage.Tx) error {
		for _, b := range bookmarks {
			if b.CreatedAt.IsZero() {
				b.CreatedAt = now
			}
			b.Path = filepath.Clean(b.Path)
			if err := tx.PutBookmark(ctx, storage.Bookmark(b)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.Persistence("failed to import bookmarks", err)
	}
	return len(bookmarks), nil
}

// foldEntries cleans every path and merges records that name the same
// directory, keeping first-occurrence order.
func foldEntries(records []EntryRecord) []EntryRecord {
	out := make([]EntryRecord, 0, len(records))
	index := make(map[string]int, len(records))
	for _, e := range records {
		e.Path = filepath.Clean(e.Path)
		i, ok := index[e.Path]
		if !ok {
			index[e.Path] = len(out)
			out = append(out, e)
			continue
		}
		m := &out[i]
		m.Visits += e.Visits
		if e.LastAccessed.After(m.LastAccessed) {
			m.LastAccessed = e.LastAccessed
		}
		if e.FirstSeen.Before(m.FirstSeen) {
			m.FirstSeen = e.FirstSeen
		}
	}
	return out
}
