package resolve

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"

	"xnav/internal/errors"
	"xnav/internal/paths"
	"xnav/internal/ranking"
	"xnav/internal/storage"
)

type outcomeKind int

const (
	miss outcomeKind = iota
	hit
	ambiguous
)

type outcome struct {
	kind       outcomeKind
	path       string
	candidates []Candidate
}

func (o outcome) result(stage Stage) Result {
	res := Result{Stage: stage, Path: o.path, Candidates: o.candidates}
	if o.kind == ambiguous {
		res.Kind = Ambiguous
	}
	return res
}

type stage struct {
	name Stage
	run  func(ctx context.Context, query, cwd string) (outcome, error)
}

func (r *Resolver) stages() []stage {
	return []stage{
		{StageLiteral, r.literal},
		{StageBookmark, r.bookmark},
		{StageAncestor, r.ancestor},
		{StageGlobal, r.global},
	}
}

// literal accepts any query naming an existing directory. The cleaned path is
// returned as typed, without resolving symlinks.
func (r *Resolver) literal(_ context.Context, query, cwd string) (outcome, error) {
	expanded, err := paths.ExpandHome(query)
	if err != nil {
		return outcome{}, nil
	}
	if !filepath.IsAbs(expanded) {
		if cwd == "" {
			return outcome{}, nil
		}
		expanded = filepath.Join(cwd, expanded)
	}
	candidate := filepath.Clean(expanded)
	if !r.isDir(candidate) {
		return outcome{}, nil
	}
	return outcome{kind: hit, path: candidate}, nil
}

// bookmark matches names exactly. A bookmark whose target is gone is an
// error, not a miss.
func (r *Resolver) bookmark(ctx context.Context, query, _ string) (outcome, error) {
	b, err := r.src.FindBookmark(ctx, query)
	if err != nil {
		return outcome{}, err
	}
	if b == nil {
		return outcome{}, nil
	}
	if !r.exists(b.Path) {
		return outcome{}, errors.Newf(errors.PathNotFound,
			"bookmark %q points to %s, which no longer exists", b.Name, b.Path).
			WithFix(errors.FixAction{
				Type:        errors.RunCommand,
				Command:     "xnav bookmark add " + b.Name + " <path>",
				Description: "Point the bookmark at an existing directory",
			})
	}
	return outcome{kind: hit, path: b.Path}, nil
}

func (r *Resolver) ancestor(_ context.Context, query, cwd string) (outcome, error) {
	if p, ok := ancestorMatch(query, cwd); ok {
		return outcome{kind: hit, path: p}, nil
	}
	return outcome{}, nil
}

// ancestorMatch returns the nearest directory above or at cwd whose basename
// equals name.
func ancestorMatch(name, cwd string) (string, bool) {
	if name == "" || cwd == "" || !filepath.IsAbs(cwd) {
		return "", false
	}
	for _, dir := range paths.Ancestors(cwd) {
		if filepath.Base(dir) == name {
			return dir, true
		}
	}
	return "", false
}

// global ranks every history entry whose path contains query, ignoring
// case. Fuzzy matching over basenames is the fallback when nothing contains
// it.
func (r *Resolver) global(ctx context.Context, query, _ string) (outcome, error) {
	var matched, all []storage.Entry
	lowered := strings.ToLower(query)

	for e, err := range r.src.AllEntries(ctx) {
		if err != nil {
			return outcome{}, err
		}
		if r.policy.IsIgnored(e.Path) {
			continue
		}
		if strings.Contains(strings.ToLower(e.Path), lowered) {
			matched = append(matched, e)
		}
		all = append(all, e)
	}

	if len(matched) == 0 && r.cfg.EnableFuzzyMatching {
		matched = fuzzyMatch(query, all)
	}
	if len(matched) == 0 {
		return outcome{}, nil
	}

	candidates := r.rank(matched)
	if limit := r.cfg.MaxResults; limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	kind := hit
	if len(candidates) > 1 {
		kind = ambiguous
	}
	return outcome{kind: kind, path: candidates[0].Path, candidates: candidates}, nil
}

// fuzzyMatch keeps entries whose basename contains query as a subsequence.
func fuzzyMatch(query string, entries []storage.Entry) []storage.Entry {
	if len(entries) == 0 {
		return nil
	}
	bases := make([]string, len(entries))
	for i, e := range entries {
		bases[i] = filepath.Base(e.Path)
	}
	matches := fuzzy.Find(query, bases)
	out := make([]storage.Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out
}

func (r *Resolver) rank(entries []storage.Entry) []Candidate {
	scorer := ranking.Scorer{Now: r.now(), ThresholdHours: r.cfg.UpdateThresholdHours}
	scored := make([]ranking.Scored, 0, len(entries))
	for _, e := range entries {
		scored = append(scored, scorer.Rank(e.Path, e.Visits, e.LastAccessed, e.FirstSeen))
	}
	ranking.SortByRank(scored)

	out := make([]Candidate, 0, len(scored))
	for _, s := range scored {
		out = append(out, Candidate{
			Path:         s.Path,
			Score:        s.Score,
			Visits:       s.Visits,
			LastAccessed: s.LastAccessed,
		})
	}
	return out
}
