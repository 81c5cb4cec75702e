package maintenance

import (
	"context"

	"xnav/internal/storage"
)

// CleanReason says why an entry is due for removal.
type CleanReason string

const (
	// ReasonMissing means the directory no longer exists
	ReasonMissing CleanReason = "missing"
	// ReasonIgnored means the path matches a current ignore pattern
	ReasonIgnored CleanReason = "ignored"
)

// CleanCandidate is one entry PlanClean would remove.
type CleanCandidate struct {
	Path    string      `json:"path"`
	Reason  CleanReason `json:"reason"`
	Pattern string      `json:"pattern,omitempty"`
}

// CleanPlan lists entries to remove. Nothing is deleted until it is applied.
type CleanPlan struct {
	Candidates []CleanCandidate `json:"candidates"`
}

// Len returns the number of candidates.
func (p *CleanPlan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Candidates)
}

// Paths returns the candidate paths in plan order.
func (p *CleanPlan) Paths() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.Candidates))
	for _, c := range p.Candidates {
		out = append(out, c.Path)
	}
	return out
}

// PlanClean finds entries whose directory is gone or that an ignore pattern
// now covers. Ignore patterns are checked first so no filesystem access is
// needed for them.
func (m *Maintainer) PlanClean(ctx context.Context) (*CleanPlan, error) {
	plan := &CleanPlan{}
	for e, err := range m.db.Entries(ctx) {
		if err != nil {
			return nil, persistenceErr("failed to read history", err)
		}
		if pattern, ok := m.policy.MatchingPattern(e.Path); ok {
			plan.Candidates = append(plan.Candidates, CleanCandidate{
				Path:    e.Path,
				Reason:  ReasonIgnored,
				Pattern: pattern,
			})
			continue
		}
		if !m.exists(e.Path) {
			plan.Candidates = append(plan.Candidates, CleanCandidate{
				Path:   e.Path,
				Reason: ReasonMissing,
			})
		}
	}
	return plan, nil
}

// Clean plans a cleanup and, when force is set, applies it. Without force
// the plan is returned and nothing is removed.
func (m *Maintainer) Clean(ctx context.Context, force bool) (*CleanPlan, int, error) {
	plan, err := m.PlanClean(ctx)
	if err != nil {
		return nil, 0, err
	}
	if !force {
		return plan, 0, nil
	}
	removed, err := m.Apply(ctx, plan)
	if err != nil {
		return plan, 0, err
	}
	return plan, removed, nil
}

// Apply removes every entry in plan in one transaction. Entries already
// gone are skipped.
func (m *Maintainer) Apply(ctx context.Context, plan *CleanPlan) (int, error) {
	if plan.Len() == 0 {
		return 0, nil
	}
	victims := plan.Paths()

	var removed int
	err := m.db.WithTx(ctx, func(tx *storage.Tx) error {
		n, err := tx.DeleteEntries(ctx, victims)
		removed = n
		return err
	})
	if err != nil {
		return 0, persistenceErr("failed to remove entries", err)
	}
	m.logger.Info("Cleaned history", "removed", removed, "planned", len(victims))
	return removed, nil
}

// StartupClean runs a forced clean when auto_clean_on_startup is enabled.
// It returns the number of removed entries.
func (m *Maintainer) StartupClean(ctx context.Context) (int, error) {
	if !m.cfg.AutoCleanOnStartup {
		return 0, nil
	}
	_, removed, err := m.Clean(ctx, true)
	return removed, err
}
