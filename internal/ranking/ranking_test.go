package ranking

import (
	"math"
	"testing"
	"time"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRecency(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    float64
	}{
		{"just visited", 0, 1},
		{"one threshold", 168 * time.Hour, math.Exp(-1)},
		{"two thresholds", 336 * time.Hour, math.Exp(-2)},
		{"future clamps", -time.Hour, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recency(now.Add(-tt.elapsed), now, 168)
			if !almostEqual(got, tt.want) {
				t.Errorf("Recency = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecencyNonPositiveThreshold(t *testing.T) {
	got := Recency(now.Add(-168*time.Hour), now, 0)
	if !almostEqual(got, math.Exp(-1)) {
		t.Errorf("threshold 0 should fall back to 168h, got %v", got)
	}
}

func TestScoreFormula(t *testing.T) {
	got := Score(5, now, now, 168)
	want := math.Log(6)*0.7 + 0.3
	if !almostEqual(got, want) {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestScoreIsPure(t *testing.T) {
	last := now.Add(-37 * time.Hour)
	a := Score(9, last, now, 24)
	b := Score(9, last, now, 24)
	if a != b {
		t.Errorf("Score not deterministic: %v != %v", a, b)
	}
}

func TestScoreMonotonicInVisits(t *testing.T) {
	last := now.Add(-10 * time.Hour)
	prev := Score(1, last, now, 168)
	for v := int64(2); v <= 200; v++ {
		s := Score(v, last, now, 168)
		if s < prev {
			t.Fatalf("Score(%d) = %v < Score(%d) = %v", v, s, v-1, prev)
		}
		prev = s
	}
}

func TestScoreDecreasingInElapsed(t *testing.T) {
	prev := Score(4, now, now, 168)
	for h := 1; h <= 2000; h += 7 {
		s := Score(4, now.Add(-time.Duration(h)*time.Hour), now, 168)
		if s >= prev {
			t.Fatalf("Score at %dh = %v, not below %v", h, s, prev)
		}
		prev = s
	}
}

// Two project directories: one fresh with 5 visits, one with 20 visits
// untouched for 30 days at a one-week threshold.
func TestScoreWorkedExample(t *testing.T) {
	fresh := Score(5, now, now, 168)
	stale := Score(20, now.Add(-30*24*time.Hour), now, 168)

	wantFresh := math.Log(6)*0.7 + 1*0.3
	wantStale := math.Log(21)*0.7 + math.Exp(-720.0/168.0)*0.3
	if !almostEqual(fresh, wantFresh) || !almostEqual(stale, wantStale) {
		t.Fatalf("fresh=%v want %v, stale=%v want %v", fresh, wantFresh, stale, wantStale)
	}
	// ln(21)*0.7 ≈ 2.131 beats ln(6)*0.7 + 0.3 ≈ 1.554
	if stale <= fresh {
		t.Errorf("frequent stale entry should outrank: stale=%v fresh=%v", stale, fresh)
	}
}

func TestSortByRank(t *testing.T) {
	s := Scorer{Now: now, ThresholdHours: 168}
	items := []Scored{
		s.Rank("/low", 1, now.Add(-100*time.Hour), now),
		s.Rank("/tie-older", 3, now.Add(-2*time.Hour), now),
		s.Rank("/high", 50, now, now),
	}
	// force a score tie broken by recency
	tie := s.Rank("/tie-newer", 3, now.Add(-time.Hour), now)
	tie.Score = items[1].Score
	items = append(items, tie)

	SortByRank(items)

	want := []string{"/high", "/tie-newer", "/tie-older", "/low"}
	for i, p := range want {
		if items[i].Path != p {
			t.Errorf("position %d = %s, want %s", i, items[i].Path, p)
		}
	}
}

func TestSortForEviction(t *testing.T) {
	items := []Scored{
		{Path: "/b", Score: 1.0, FirstSeen: now.Add(-time.Hour)},
		{Path: "/a", Score: 1.0, FirstSeen: now.Add(-2 * time.Hour)},
		{Path: "/c", Score: 0.5, FirstSeen: now},
		{Path: "/d", Score: 3.0, FirstSeen: now.Add(-9 * time.Hour)},
	}

	SortForEviction(items)

	want := []string{"/c", "/a", "/b", "/d"}
	for i, p := range want {
		if items[i].Path != p {
			t.Errorf("position %d = %s, want %s", i, items[i].Path, p)
		}
	}
}
