// Package ranking implements the frecency score.
//
//	recency = exp(-elapsed_hours / threshold_hours)    in (0, 1]
//	rank    = ln(visits + 1) * 0.7 + recency * 0.3
//
// An entry untouched for exactly one threshold period has recency e^-1.
// Everything here is pure: identical inputs give identical output.
package ranking

import (
	"cmp"
	"math"
	"slices"
	"time"
)

const (
	frequencyWeight = 0.7
	recencyWeight   = 0.3

	// DefaultThresholdHours is used when a non-positive threshold is given.
	DefaultThresholdHours = 168.0
)

// Recency returns exp(-elapsed/threshold). Timestamps in the future count as
// "just visited".
func Recency(lastAccessed, now time.Time, thresholdHours float64) float64 {
	if thresholdHours <= 0 {
		thresholdHours = DefaultThresholdHours
	}
	elapsed := now.Sub(lastAccessed).Hours()
	if elapsed < 0 {
		elapsed = 0
	}
	return math.Exp(-elapsed / thresholdHours)
}

// Score returns the frecency rank of an entry.
func Score(visits int64, lastAccessed, now time.Time, thresholdHours float64) float64 {
	if visits < 0 {
		visits = 0
	}
	frequency := math.Log(float64(visits) + 1)
	return frequency*frequencyWeight + Recency(lastAccessed, now, thresholdHours)*recencyWeight
}

// Scored is an entry with its rank attached.
type Scored struct {
	Path         string    `json:"path"`
	Score        float64   `json:"score"`
	Visits       int64     `json:"visits"`
	LastAccessed time.Time `json:"last_accessed"`
	FirstSeen    time.Time `json:"first_seen"`
}

// Scorer binds a clock reading and threshold so a batch is ranked against
// one "now".
type Scorer struct {
	Now            time.Time
	ThresholdHours float64
}

// Rank attaches a score.
func (s Scorer) Rank(path string, visits int64, lastAccessed, firstSeen time.Time) Scored {
	return Scored{
		Path:         path,
		Score:        Score(visits, lastAccessed, s.Now, s.ThresholdHours),
		Visits:       visits,
		LastAccessed: lastAccessed,
		FirstSeen:    firstSeen,
	}
}

// CompareByRank orders best first: higher score, then more recent access,
// then path so the order is total.
func CompareByRank(a, b Scored) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := b.LastAccessed.Compare(a.LastAccessed); c != 0 {
		return c
	}
	return cmp.Compare(a.Path, b.Path)
}

// CompareForEviction orders the first to evict first: lower score, then
// older first_seen, then path.
func CompareForEviction(a, b Scored) int {
	if c := cmp.Compare(a.Score, b.Score); c != 0 {
		return c
	}
	if c := a.FirstSeen.Compare(b.FirstSeen); c != 0 {
		return c
	}
	return cmp.Compare(a.Path, b.Path)
}

// SortByRank sorts in place, best first.
func SortByRank(items []Scored) {
	slices.SortFunc(items, CompareByRank)
}

// SortForEviction sorts in place, first victim first.
func SortForEviction(items []Scored) {
	slices.SortFunc(items, CompareForEviction)
}
