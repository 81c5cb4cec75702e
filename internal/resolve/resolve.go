// Package resolve turns a navigation query into a directory.
//
// Resolution is an ordered pipeline of stages. Each stage reports a miss, a
// hit, or an ambiguous ranked list; the first non-miss wins:
//
//	literal   the query names an existing directory (relative or absolute)
//	bookmark  the query is a bookmark name
//	ancestor  the query is the basename of a directory above cwd
//	global    substring or fuzzy match over the ranked history
package resolve

import (
	"context"
	stderrors "errors"
	"iter"
	"log/slog"
	"strings"
	"time"

	"xnav/internal/config"
	"xnav/internal/errors"
	"xnav/internal/paths"
	"xnav/internal/storage"
)

// ErrEmptyQuery is returned for a blank query. Callers treat it as "go home".
var ErrEmptyQuery = stderrors.New("empty query")

// Source is the read side of the history.
type Source interface {
	FindBookmark(ctx context.Context, name string) (*storage.Bookmark, error)
	AllEntries(ctx context.Context) iter.Seq2[storage.Entry, error]
}

// Kind tags a successful resolution.
type Kind int

const (
	// Hit is a single directory
	Hit Kind = iota
	// Ambiguous is a ranked list for the user to pick from
	Ambiguous
)

func (k Kind) String() string {
	if k == Ambiguous {
		return "ambiguous"
	}
	return "hit"
}

// Stage names the pipeline stage that produced a result.
type Stage string

const (
	// StageLiteral matched the query as an existing directory path.
	StageLiteral Stage = "literal"
	// StageBookmark matched the query as a bookmark name.
	StageBookmark Stage = "bookmark"
	// StageAncestor matched the working directory or one above it by basename.
	StageAncestor Stage = "ancestor"
	// StageGlobal ranked history entries whose paths contain the query.
	StageGlobal Stage = "global"
)

// Candidate is one ranked match.
type Candidate struct {
	Path         string    `json:"path"`
	Score        float64   `json:"score"`
	Visits       int64     `json:"visits"`
	LastAccessed time.Time `json:"last_accessed"`
}

// Result is a successful resolution. Path is set for Hit and is the best
// candidate for Ambiguous.
type Result struct {
	Kind       Kind        `json:"-"`
	Stage      Stage       `json:"stage"`
	Path       string      `json:"path"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Resolver runs the stage pipeline.
type Resolver struct {
	src    Source
	cfg    *config.Config
	policy *config.Policy
	logger *slog.Logger
	isDir  func(string) bool
	exists func(string) bool
	now    func() time.Time
}

// Option configures a Resolver
type Option func(*Resolver)

// WithClock replaces time.Now for ranking
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithFilesystem replaces the directory and existence checks
func WithFilesystem(isDir, exists func(string) bool) Option {
	return func(r *Resolver) {
		if isDir != nil {
			r.isDir = isDir
		}
		if exists != nil {
			r.exists = exists
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Resolver. A nil cfg means defaults.
func New(src Source, cfg *config.Config, policy *config.Policy, opts ...Option) *Resolver {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	r := &Resolver{
		src:    src,
		cfg:    cfg,
		policy: policy,
		logger: slog.New(slog.DiscardHandler),
		isDir:  paths.IsDir,
		exists: paths.Exists,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs every stage in order for query relative to cwd. When no stage
// matches the error carries PATH_NOT_FOUND.
func (r *Resolver) Resolve(ctx context.Context, query, cwd string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}
	for _, st := range r.stages() {
		out, err := st.run(ctx, query, cwd)
		if err != nil {
			return Result{}, err
		}
		if out.kind == miss {
			continue
		}
		r.logger.Debug("Query resolved",
			"query", query,
			"stage", string(st.name),
			"candidates", len(out.candidates),
		)
		return out.result(st.name), nil
	}
	return Result{}, r.notFound(ctx, query)
}

// ResolveWords joins words with single spaces and resolves the result.
func (r *Resolver) ResolveWords(ctx context.Context, words []string, cwd string) (Result, error) {
	return r.Resolve(ctx, strings.Join(words, " "), cwd)
}

// ResolveAncestor runs only the ancestor stage.
func (r *Resolver) ResolveAncestor(query, cwd string) (string, bool) {
	return ancestorMatch(strings.TrimSpace(query), cwd)
}

// Suggest returns up to limit ranked history matches for query, skipping the
// literal, bookmark and ancestor stages.
func (r *Resolver) Suggest(ctx context.Context, query string, limit int) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	out, err := r.global(ctx, query, "")
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out.candidates) > limit {
		out.candidates = out.candidates[:limit]
	}
	return out.candidates, nil
}

// suggestionPrefix is how many runes of a failed query are retried for
// "did you mean" suggestions.
const suggestionPrefix = 3

func (r *Resolver) notFound(ctx context.Context, query string) error {
	xe := errors.Newf(errors.PathNotFound, "no match for %q", query)

	prefix := []rune(query)
	if len(prefix) <= suggestionPrefix {
		return xe
	}
	similar, err := r.Suggest(ctx, string(prefix[:suggestionPrefix]), 3)
	if err != nil || len(similar) == 0 {
		return xe
	}
	suggestions := make([]string, 0, len(similar))
	for _, c := range similar {
		suggestions = append(suggestions, c.Path)
	}
	return xe.WithDetails(map[string]any{"similar": suggestions})
}
