package report

import (
	"budget/internal/core"
	"budget/internal/goals"
	"budget/internal/ledger"
)

// Status classifies actual spending against a goal.
type Status string

const (
	OnTrack Status = "on_track"
	Over    Status = "over"
)

// GoalComparison is one goal checked against actual expense totals.
// Remaining is Goal minus Actual and is negative when over budget.
type GoalComparison struct {
	Category  string
	Goal      core.Amount
	Actual    core.Amount
	Remaining core.Amount
	Status    Status
}

// CompareToGoals walks the goals in iteration order and looks up actual
// spending for each. Categories with spending but no goal are not reported.
func CompareToGoals(actuals []ledger.CategoryTotal, g *goals.Store) []GoalComparison {
	if g == nil {
		return nil
	}
	entries := g.List()
	out := make([]GoalComparison, 0, len(entries))
	for _, e := range entries {
		actual := ledger.Lookup(actuals, e.Category)
		status := OnTrack
		if actual.GreaterThan(e.Amount) {
			status = Over
		}
		out = append(out, GoalComparison{
			Category:  e.Category,
			Goal:      e.Amount,
			Actual:    actual,
			Remaining: e.Amount.Sub(actual),
			Status:    status,
		})
	}
	return out
}
