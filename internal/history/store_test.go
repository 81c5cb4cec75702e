package history

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"xnav/internal/config"
	"xnav/internal/errors"
	"xnav/internal/storage"
)

var t0 = time.Date(2026, 7, 1, 8, 30, 0, 0, time.UTC)

// fakeClock advances by one second on each reading.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func setupStore(t *testing.T, cfg *config.Config) (*Store, string) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	db, err := storage.Open(filepath.Join(root, "data", "xnav.db"), nil)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	clock := &fakeClock{now: t0}
	s := New(db, cfg, config.MustCompile(cfg.IgnoredPatterns),
		WithClock(clock.Now),
		WithWorkingDir(root),
	)
	return s, root
}

func mkdirs(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		if err := os.MkdirAll(filepath.Join(root, r), 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRecordVisitInsertsThenIncrements(t *testing.T) {
	ctx := context.Background()
	s, root := setupStore(t, nil)
	mkdirs(t, root, "work")
	dir := filepath.Join(root, "work")

	for i := 0; i < 3; i++ {
		outcome, err := s.RecordVisit(ctx, dir)
		if err != nil {
			t.Fatalf("RecordVisit failed: %v", err)
		}
		if outcome != Recorded {
			t.Fatalf("outcome = %v, want recorded", outcome)
		}
	}

	e, err := s.FindEntry(ctx, dir)
	if err != nil || e == nil {
		t.Fatalf("FindEntry = %v, %v", e, err)
	}
	if e.Visits != 3 {
		t.Errorf("visits = %d, want 3", e.Visits)
	}
	if !e.FirstSeen.Before(e.LastAccessed) {
		t.Errorf("first_seen %v should precede last_accessed %v", e.FirstSeen, e.LastAccessed)
	}
}

func TestRecordVisitCanonicalises(t *testing.T) {
	ctx := context.Background()
	s, root := setupStore(t, nil)
	mkdirs(t, root, "a/b")
	if err := os.Symlink(filepath.Join(root, "a", "b"), filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	for _, p := range []string{"a/b", "a/./b/", filepath.Join(root, "a", "x", "..", "b"), "link"} {
		if _, err := s.RecordVisit(ctx, p); err != nil {
			t.Fatalf("RecordVisit(%q) failed: %v", p, err)
		}
	}

	e, _ := s.FindEntry(ctx, filepath.Join(root, "a", "b"))
	if e == nil || e.Visits != 4 {
		t.Fatalf("all spellings should land on one entry, got %+v", e)
	}
	if n, _ := s.DB().CountEntries(ctx); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
}

func TestRecordVisitIgnored(t *testing.T) {
	ctx := context.Background()
	s, root := setupStore(t, nil)
	mkdirs(t, root, "app/node_modules/pkg")

	for _, rel := range []string{"app/node_modules", "app/node_modules/pkg"} {
		outcome, err := s.RecordVisit(ctx, rel)
		if err != nil {
			t.Fatalf("RecordVisit(%q) failed: %v", rel, err)
		}
		if outcome != Ignored {
			t.Errorf("RecordVisit(%q) = %v, want ignored", rel, outcome)
		}
	}
	if n, _ := s.DB().CountEntries(ctx); n != 0 {
		t.Errorf("ignored visits wrote %d entries", n)
	}
}

func TestRecordVisitEmptyPath(t *testing.T) {
	s, _ := setupStore(t, nil)
	_, err := s.RecordVisit(context.Background(), "  ")
	if !errors.HasCode(err, errors.InvalidArgument) {
		t.Errorf("error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestRecordVisitEvictsAtCapacity(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.MaxEntries = 3
	s, root := setupStore(t, cfg)

	mkdirs(t, root, "hot", "warm", "cold", "new")
	for i := 0; i < 5; i++ {
		s.RecordVisit(ctx, "hot")
	}
	for i := 0; i < 3; i++ {
		s.RecordVisit(ctx, "warm")
	}
	s.RecordVisit(ctx, "cold")

	// visiting an existing entry at capacity evicts nothing
	s.RecordVisit(ctx, "warm")
	if n, _ := s.DB().CountEntries(ctx); n != 3 {
		t.Fatalf("entries = %d, want 3", n)
	}

	if _, err := s.RecordVisit(ctx, "new"); err != nil {
		t.Fatalf("RecordVisit failed: %v", err)
	}
	if n, _ := s.DB().CountEntries(ctx); n != 3 {
		t.Errorf("entries = %d, want 3 after eviction", n)
	}
	// cold and new both have one visit; cold was first seen earlier
	if e, _ := s.FindEntry(ctx, "cold"); e != nil {
		t.Error("cold should have been evicted")
	}
	if e, _ := s.FindEntry(ctx, "new"); e == nil {
		t.Error("the just-visited entry should survive")
	}
}

func TestAllEntriesRestartable(t *testing.T) {
	ctx := context.Background()
	s, root := setupStore(t, nil)
	mkdirs(t, root, "one", "two")
	s.RecordVisit(ctx, "one")
	s.RecordVisit(ctx, "two")

	seq := s.AllEntries(ctx)
	for pass := 0; pass < 2; pass++ {
		n := 0
		for _, err := range seq {
			if err != nil {
				t.Fatalf("pass %d: %v", pass, err)
			}
			n++
		}
		if n != 2 {
			t.Errorf("pass %d saw %d entries, want 2", pass, n)
		}
	}
}

func TestConcurrentRecordVisit(t *testing.T) {
	ctx := context.Background()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	mkdirs(t, root, "shared")
	dbPath := filepath.Join(root, "xnav.db")

	const workers, visits = 4, 5
	var wg sync.WaitGroup
	errs := make(chan error, workers*visits)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			db, err := storage.Open(dbPath, nil)
			if err != nil {
				errs <- err
				return
			}
			defer db.Close()
			s := New(db, nil, nil, WithWorkingDir(root))
			for i := 0; i < visits; i++ {
				if _, err := s.RecordVisit(ctx, "shared"); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent visit failed: %v", err)
	}

	db, err := storage.Open(dbPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	e, _ := db.FindEntry(ctx, filepath.Join(root, "shared"))
	if e == nil || e.Visits != workers*visits {
		t.Errorf("entry = %+v, want %d visits", e, workers*visits)
	}
}
