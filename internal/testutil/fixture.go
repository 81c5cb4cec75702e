// Package testutil provides helpers shared by package tests: temporary
// directory trees, throwaway history databases and golden files.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"xnav/internal/storage"
)

// Tree creates dirs under a fresh temporary root and returns the root with
// symlinks resolved, so it compares equal to canonicalised paths.
func Tree(t *testing.T, dirs ...string) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatalf("Failed to create %s: %v", d, err)
		}
	}
	return root
}

// OpenDB opens a history database in a temporary directory and closes it
// when the test ends.
func OpenDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "xnav.db"), nil)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Seed writes entries into db in one transaction.
func Seed(t *testing.T, db *storage.DB, entries ...storage.Entry) {
	t.Helper()

	ctx := context.Background()
	err := db.WithTx(ctx, func(tx *storage.Tx) error {
		for _, e := range entries {
			if err := tx.PutEntry(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to seed entries: %v", err)
	}
}

// Visited builds an entry last visited ago before now and first seen at the
// same time.
func Visited(path string, visits int64, now time.Time, ago time.Duration) storage.Entry {
	at := now.Add(-ago)
	return storage.Entry{Path: path, Visits: visits, LastAccessed: at, FirstSeen: at}
}

// Isolate points HOME and the xnav data and config directories at a
// temporary directory. It returns that directory.
func Isolate(t *testing.T) string {
	t.Helper()

	home := Tree(t)
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XNAV_DATA_DIR", filepath.Join(home, "data"))
	t.Setenv("XNAV_CONFIG_DIR", filepath.Join(home, "config"))
	return home
}
