package storage

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"time"
)

// Entry is one remembered directory.
type Entry struct {
	Path         string    `json:"path"`
	Visits       int64     `json:"visits"`
	LastAccessed time.Time `json:"last_accessed"`
	FirstSeen    time.Time `json:"first_seen"`
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries holds the read operations shared by DB and Tx.
type queries struct {
	q querier
}

// Tx is a write transaction. It is only valid inside the WithTx callback.
type Tx struct {
	queries
	tx *sql.Tx
}

const entryColumns = "path, visits, last_accessed, first_seen"

func scanEntry(row interface{ Scan(...any) error }) (Entry, error) {
	var (
		e                   Entry
		lastNano, firstNano int64
	)
	if err := row.Scan(&e.Path, &e.Visits, &lastNano, &firstNano); err != nil {
		return Entry{}, err
	}
	e.LastAccessed = time.Unix(0, lastNano).UTC()
	e.FirstSeen = time.Unix(0, firstNano).UTC()
	return e, nil
}

// FindEntry returns the entry for path, or nil when there is none.
func (r queries) FindEntry(ctx context.Context, path string) (*Entry, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM dirs WHERE path = ?", path)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}
	return &e, nil
}

// CountEntries returns the number of stored entries.
func (r queries) CountEntries(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM dirs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// TotalVisits returns the sum of visit counts.
func (r queries) TotalVisits(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, "SELECT COALESCE(SUM(visits), 0) FROM dirs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to sum visits: %w", err)
	}
	return n, nil
}

// Entries returns a lazy sequence over all entries in no particular order.
// Each range opens a fresh cursor, so the sequence can be iterated again.
// Iteration stops at the first error, which is yielded with a zero Entry.
func (r queries) Entries(ctx context.Context) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		rows, err := r.q.QueryContext(ctx, "SELECT "+entryColumns+" FROM dirs")
		if err != nil {
			yield(Entry{}, fmt.Errorf("failed to list entries: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				yield(Entry{}, fmt.Errorf("failed to scan entry: %w", err))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Entry{}, fmt.Errorf("failed to list entries: %w", err))
		}
	}
}

// ListEntries collects Entries into a slice.
func (r queries) ListEntries(ctx context.Context) ([]Entry, error) {
	var out []Entry
	for e, err := range r.Entries(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// RecentEntries returns up to limit entries, most recently accessed first.
func (r queries) RecentEntries(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM dirs ORDER BY last_accessed DESC, path ASC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecordVisit increments the visit count of path, or inserts it with one
// visit. last_accessed never moves backwards. It reports whether a new row
// was inserted.
func (t *Tx) RecordVisit(ctx context.Context, path string, now time.Time) (inserted bool, err error) {
	nano := now.UnixNano()
	var visits int64
	err = t.tx.QueryRowContext(ctx, `
		INSERT INTO dirs (path, visits, last_accessed, first_seen) VALUES (?, 1, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			visits = visits + 1,
			last_accessed = MAX(last_accessed, excluded.last_accessed)
		RETURNING visits
	`, path, nano, nano).Scan(&visits)
	if err != nil {
		return false, fmt.Errorf("failed to record visit: %w", err)
	}
	return visits == 1, nil
}

// PutEntry writes e as-is, or merges it into an existing row: visits are
// summed, last_accessed takes the later time and first_seen the earlier.
func (t *Tx) PutEntry(ctx context.Context, e Entry) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO dirs (path, visits, last_accessed, first_seen) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			visits = visits + excluded.visits,
			last_accessed = MAX(last_accessed, excluded.last_accessed),
			first_seen = MIN(first_seen, excluded.first_seen)
	`, e.Path, e.Visits, e.LastAccessed.UnixNano(), e.FirstSeen.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to put entry: %w", err)
	}
	return nil
}

// DeleteEntry removes path and reports whether a row was removed.
func (t *Tx) DeleteEntry(ctx context.Context, path string) (bool, error) {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM dirs WHERE path = ?", path)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteEntries removes every listed path and returns how many rows went.
func (t *Tx) DeleteEntries(ctx context.Context, paths []string) (int, error) {
	removed := 0
	for _, p := range paths {
		ok, err := t.DeleteEntry(ctx, p)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// ClearEntries deletes every entry.
func (t *Tx) ClearEntries(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM dirs"); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	return nil
}
