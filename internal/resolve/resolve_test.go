package resolve

import (
	"context"
	stderrors "errors"
	"fmt"
	"iter"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"xnav/internal/config"
	"xnav/internal/errors"
	"xnav/internal/storage"
)

var now = time.Date(2026, 9, 14, 18, 0, 0, 0, time.UTC)

// memSource is an in-memory Source that counts how often the history is read.
type memSource struct {
	entries   []storage.Entry
	bookmarks map[string]string
	scans     int
}

func (m *memSource) FindBookmark(_ context.Context, name string) (*storage.Bookmark, error) {
	p, ok := m.bookmarks[name]
	if !ok {
		return nil, nil
	}
	return &storage.Bookmark{Name: name, Path: p}, nil
}

func (m *memSource) AllEntries(context.Context) iter.Seq2[storage.Entry, error] {
	return func(yield func(storage.Entry, error) bool) {
		m.scans++
		for _, e := range m.entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}

type failingSource struct{ memSource }

func (f *failingSource) AllEntries(context.Context) iter.Seq2[storage.Entry, error] {
	return func(yield func(storage.Entry, error) bool) {
		yield(storage.Entry{}, errors.Persistence("failed to read history", stderrors.New("disk I/O error")))
	}
}

// fakeFS treats only the listed paths as existing directories.
func fakeFS(dirs ...string) Option {
	set := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		set[d] = true
	}
	check := func(p string) bool { return set[p] }
	return WithFilesystem(check, check)
}

func newResolver(src Source, cfg *config.Config, opts ...Option) *Resolver {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return New(src, cfg, config.MustCompile(cfg.IgnoredPatterns), opts...)
}

func visited(path string, visits int64, ago time.Duration) storage.Entry {
	return storage.Entry{Path: path, Visits: visits, LastAccessed: now.Add(-ago), FirstSeen: now.Add(-ago)}
}

func TestEmptyQuery(t *testing.T) {
	r := newResolver(&memSource{}, nil)
	for _, q := range []string{"", "   "} {
		if _, err := r.Resolve(context.Background(), q, "/"); !stderrors.Is(err, ErrEmptyQuery) {
			t.Errorf("Resolve(%q) error = %v, want ErrEmptyQuery", q, err)
		}
	}
}

func TestLiteralAbsoluteBypassesHistory(t *testing.T) {
	src := &memSource{entries: []storage.Entry{visited("/home/u/etc", 99, 0)}}
	r := newResolver(src, nil, fakeFS("/etc"))

	for _, cwd := range []string{"/", "/home/u", "/var/tmp"} {
		res, err := r.Resolve(context.Background(), "/etc", cwd)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if res.Kind != Hit || res.Stage != StageLiteral || res.Path != "/etc" {
			t.Errorf("cwd %s: result = %+v", cwd, res)
		}
	}
	if src.scans != 0 {
		t.Errorf("history scanned %d times, want 0", src.scans)
	}
}

func TestLiteralRelative(t *testing.T) {
	r := newResolver(&memSource{}, nil, fakeFS("/a/b", "/a/b/c"))

	tests := []struct {
		query string
		cwd   string
		want  string
	}{
		{"..", "/a/b/c", "/a/b"},
		{"../", "/a/b/c", "/a/b"},
		{"c", "/a/b", "/a/b/c"},
		{"./c/", "/a/b", "/a/b/c"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := r.Resolve(context.Background(), tt.query, tt.cwd)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if res.Path != tt.want || res.Stage != StageLiteral {
				t.Errorf("result = %+v, want %s via literal", res, tt.want)
			}
		})
	}
}

func TestLiteralHomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.Mkdir(filepath.Join(home, "src"), 0755); err != nil {
		t.Fatal(err)
	}
	r := newResolver(&memSource{}, nil)

	res, err := r.Resolve(context.Background(), "~/src", "/")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Path != filepath.Join(home, "src") {
		t.Errorf("path = %s", res.Path)
	}
}

// Stage names appear in query --json output and must stay stable.
func TestStageNames(t *testing.T) {
	tests := map[Stage]string{
		StageLiteral:  "literal",
		StageBookmark: "bookmark",
		StageAncestor: "ancestor",
		StageGlobal:   "global",
	}
	for stage, want := range tests {
		if string(stage) != want {
			t.Errorf("stage %q, want %q", stage, want)
		}
	}
}

func TestBookmarkStage(t *testing.T) {
	src := &memSource{bookmarks: map[string]string{"w": "/srv/work"}}
	r := newResolver(src, nil, fakeFS("/srv/work"))

	res, err := r.Resolve(context.Background(), "w", "/")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Stage != StageBookmark || res.Path != "/srv/work" {
		t.Errorf("result = %+v", res)
	}
}

func TestStaleBookmarkFails(t *testing.T) {
	src := &memSource{
		bookmarks: map[string]string{"old": "/gone/project"},
		entries:   []storage.Entry{visited("/home/u/old", 5, 0)},
	}
	r := newResolver(src, nil, fakeFS())

	_, err := r.Resolve(context.Background(), "old", "/")
	if !errors.HasCode(err, errors.PathNotFound) {
		t.Fatalf("error = %v, want PATH_NOT_FOUND", err)
	}
	if src.scans != 0 {
		t.Error("a stale bookmark must not fall through to the global stage")
	}
}

func TestAncestorStage(t *testing.T) {
	src := &memSource{entries: []storage.Entry{visited("/elsewhere/b", 100, 0)}}
	r := newResolver(src, nil, fakeFS())

	res, err := r.Resolve(context.Background(), "b", "/a/b/c/d")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Stage != StageAncestor || res.Path != "/a/b" {
		t.Errorf("result = %+v, want /a/b via ancestor", res)
	}
	if src.scans != 0 {
		t.Error("ancestor stage must not read the history")
	}
}

func TestAncestorNearestWins(t *testing.T) {
	tests := []struct {
		name  string
		query string
		cwd   string
		want  string
		ok    bool
	}{
		{"nearest of two", "x", "/x/y/x/z", "/x/y/x", true},
		{"cwd itself", "z", "/x/y/z", "/x/y/z", true},
		{"case sensitive", "B", "/a/b/c", "", false},
		{"root excluded", "/", "/a/b", "", false},
		{"relative cwd", "a", "a/b", "", false},
	}
	r := newResolver(&memSource{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.ResolveAncestor(tt.query, tt.cwd)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ResolveAncestor(%q, %q) = %q, %v", tt.query, tt.cwd, got, ok)
			}
		})
	}
}

func TestGlobalAmbiguousOrderedByScore(t *testing.T) {
	src := &memSource{entries: []storage.Entry{
		visited("/home/u/dev/project-a", 5, 0),
		visited("/home/u/work/project-b", 20, 30*24*time.Hour),
		visited("/home/u/music", 50, 0),
	}}
	cfg := config.DefaultConfig()
	cfg.UpdateThresholdHours = 168
	r := newResolver(src, cfg, fakeFS())

	res, err := r.Resolve(context.Background(), "project", "/")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Kind != Ambiguous || res.Stage != StageGlobal {
		t.Fatalf("result = %+v, want ambiguous global", res)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("candidates = %+v", res.Candidates)
	}

	scoreA := math.Log(6)*0.7 + 0.3
	scoreB := math.Log(21)*0.7 + math.Exp(-720.0/168.0)*0.3
	first, second := res.Candidates[0], res.Candidates[1]
	if first.Path != "/home/u/work/project-b" || second.Path != "/home/u/dev/project-a" {
		t.Errorf("order = %s, %s", first.Path, second.Path)
	}
	if math.Abs(first.Score-scoreB) > 1e-9 || math.Abs(second.Score-scoreA) > 1e-9 {
		t.Errorf("scores = %v, %v; want %v, %v", first.Score, second.Score, scoreB, scoreA)
	}
	if res.Path != first.Path {
		t.Errorf("Path = %s, want best candidate", res.Path)
	}
}

func TestGlobalSingleHit(t *testing.T) {
	src := &memSource{entries: []storage.Entry{
		visited("/srv/api", 3, time.Hour),
		visited("/srv/web", 3, time.Hour),
	}}
	r := newResolver(src, nil, fakeFS())

	res, err := r.Resolve(context.Background(), "API", "/")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Kind != Hit || res.Path != "/srv/api" {
		t.Errorf("result = %+v", res)
	}
}

func TestGlobalExactBasenameDoesNotShadowBetterMatches(t *testing.T) {
	src := &memSource{entries: []storage.Entry{
		visited("/home/u/old/proj", 1, 30*24*time.Hour),
		visited("/home/u/work/proj-main", 200, time.Hour),
	}}
	r := newResolver(src, nil, fakeFS())

	res, err := r.Resolve(context.Background(), "proj", "/")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Kind != Ambiguous || len(res.Candidates) != 2 {
		t.Fatalf("result = %+v, want both paths ranked", res)
	}
	if res.Candidates[0].Path != "/home/u/work/proj-main" || res.Candidates[1].Path != "/home/u/old/proj" {
		t.Errorf("order = %s, %s", res.Candidates[0].Path, res.Candidates[1].Path)
	}
	if res.Path != "/home/u/work/proj-main" {
		t.Errorf("Path = %s, want the best ranked candidate", res.Path)
	}
}

func TestGlobalMultiWordQuery(t *testing.T) {
	src := &memSource{entries: []storage.Entry{
		visited("/docs/my notes", 2, 0),
		visited("/docs/notes", 9, 0),
	}}
	r := newResolver(src, nil, fakeFS())

	res, err := r.ResolveWords(context.Background(), []string{"my", "notes"}, "/")
	if err != nil {
		t.Fatalf("ResolveWords failed: %v", err)
	}
	if res.Path != "/docs/my notes" {
		t.Errorf("path = %s", res.Path)
	}
}

func TestGlobalSkipsIgnored(t *testing.T) {
	src := &memSource{entries: []storage.Entry{
		visited("/code/app/node_modules/react", 50, 0),
		visited("/code/react-demo", 1, 0),
	}}
	r := newResolver(src, nil, fakeFS())

	res, err := r.Resolve(context.Background(), "react", "/")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Kind != Hit || res.Path != "/code/react-demo" {
		t.Errorf("result = %+v, ignored entry must not surface", res)
	}
}

func TestGlobalFuzzyFallback(t *testing.T) {
	src := &memSource{entries: []storage.Entry{
		visited("/code/xnavigator", 4, 0),
		visited("/code/other", 4, 0),
	}}

	cfg := config.DefaultConfig()
	cfg.EnableFuzzyMatching = false
	r := newResolver(src, cfg, fakeFS())
	if _, err := r.Resolve(context.Background(), "xnvg", "/"); !errors.HasCode(err, errors.PathNotFound) {
		t.Fatalf("fuzzy disabled: error = %v, want PATH_NOT_FOUND", err)
	}

	cfg = config.DefaultConfig()
	cfg.EnableFuzzyMatching = true
	r = newResolver(src, cfg, fakeFS())
	res, err := r.Resolve(context.Background(), "xnvg", "/")
	if err != nil {
		t.Fatalf("fuzzy enabled: %v", err)
	}
	if res.Path != "/code/xnavigator" {
		t.Errorf("path = %s", res.Path)
	}
}

func TestGlobalCapsResults(t *testing.T) {
	src := &memSource{}
	for i := 0; i < 30; i++ {
		src.entries = append(src.entries, visited(fmt.Sprintf("/p/dir/svc-%02d", i), int64(i+1), 0))
	}
	cfg := config.DefaultConfig()
	cfg.MaxResults = 5
	r := newResolver(src, cfg, fakeFS())

	res, err := r.Resolve(context.Background(), "svc", "/")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(res.Candidates) != 5 {
		t.Errorf("candidates = %d, want 5", len(res.Candidates))
	}
	if res.Candidates[0].Visits != 30 {
		t.Errorf("best candidate has %d visits, want 30", res.Candidates[0].Visits)
	}
}

func TestNotFound(t *testing.T) {
	src := &memSource{entries: []storage.Entry{visited("/code/projector", 1, 0)}}
	r := newResolver(src, nil, fakeFS())

	_, err := r.Resolve(context.Background(), "proxy", "/")
	if !errors.HasCode(err, errors.PathNotFound) {
		t.Fatalf("error = %v, want PATH_NOT_FOUND", err)
	}
	var xe *errors.XnavError
	if !stderrors.As(err, &xe) {
		t.Fatal("expected *XnavError")
	}
	details, ok := xe.Details.(map[string]any)
	if !ok {
		t.Fatalf("details = %#v, want similar paths", xe.Details)
	}
	similar := details["similar"].([]string)
	if len(similar) != 1 || similar[0] != "/code/projector" {
		t.Errorf("similar = %v", similar)
	}
}

func TestPersistenceErrorPropagates(t *testing.T) {
	r := newResolver(&failingSource{}, nil, fakeFS())
	_, err := r.Resolve(context.Background(), "anything", "/")
	if !errors.HasCode(err, errors.PersistenceFailure) {
		t.Errorf("error = %v, want PERSISTENCE_FAILURE", err)
	}
}

func TestSuggest(t *testing.T) {
	src := &memSource{entries: []storage.Entry{
		visited("/a/proj-1", 1, 0),
		visited("/a/proj-2", 2, 0),
		visited("/a/proj-3", 3, 0),
	}}
	r := newResolver(src, nil, fakeFS("/a/proj-1"))

	got, err := r.Suggest(context.Background(), "proj", 2)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(got) != 2 || got[0].Path != "/a/proj-3" || got[1].Path != "/a/proj-2" {
		t.Errorf("suggestions = %+v", got)
	}
}
