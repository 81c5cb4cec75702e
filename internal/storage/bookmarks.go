package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Bookmark is a named shortcut to a directory. The path need not exist.
type Bookmark struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// FindBookmark returns the bookmark called name, or nil when there is none.
func (r queries) FindBookmark(ctx context.Context, name string) (*Bookmark, error) {
	var (
		b    Bookmark
		nano int64
	)
	err := r.q.QueryRowContext(ctx,
		"SELECT name, path, created_at FROM bookmarks WHERE name = ?", name,
	).Scan(&b.Name, &b.Path, &nano)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find bookmark: %w", err)
	}
	b.CreatedAt = time.Unix(0, nano).UTC()
	return &b, nil
}

// ListBookmarks returns all bookmarks ordered by name.
func (r queries) ListBookmarks(ctx context.Context) ([]Bookmark, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT name, path, created_at FROM bookmarks ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	var out []Bookmark
	for rows.Next() {
		var (
			b    Bookmark
			nano int64
		)
		if err := rows.Scan(&b.Name, &b.Path, &nano); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		b.CreatedAt = time.Unix(0, nano).UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

// PutBookmark creates the bookmark or overwrites the path of an existing one.
func (t *Tx) PutBookmark(ctx context.Context, b Bookmark) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO bookmarks (name, path, created_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET path = excluded.path, created_at = excluded.created_at
	`, b.Name, b.Path, b.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to put bookmark: %w", err)
	}
	return nil
}

// DeleteBookmark removes the bookmark and reports whether it existed.
func (t *Tx) DeleteBookmark(ctx context.Context, name string) (bool, error) {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM bookmarks WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearBookmarks deletes every bookmark.
func (t *Tx) ClearBookmarks(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM bookmarks"); err != nil {
		return fmt.Errorf("failed to clear bookmarks: %w", err)
	}
	return nil
}
