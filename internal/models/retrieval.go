// ABOUTME: Retrieval result types shared by the ranker and budgeter
// ABOUTME: Defines candidates, scored items, budgets, and the fitted context returned to callers
package models

import "fmt"

// Candidate pairs a stored item with its cosine similarity to the query.
type Candidate struct {
	Item       ContextItem `json:"item"`
	Similarity float64     `json:"similarity"`
}

// ScoreBreakdown exposes the weighted components behind a final score,
// mostly for diagnostics and tests.
type ScoreBreakdown struct {
	Semantic   float64 `json:"semantic"`
	Preference float64 `json:"preference"`
	Temporal   float64 `json:"temporal"`
	Scope      float64 `json:"scope"`
}

// ScoredItem is one ranked retrieval result.
type ScoredItem struct {
	Item      ContextItem    `json:"item"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// BudgetUnit selects how FitToBudget measures item size.
type BudgetUnit string

const (
	UnitTokens BudgetUnit = "tokens"
	UnitChars  BudgetUnit = "chars"
	UnitItems  BudgetUnit = "items"
)

// ParseBudgetUnit validates and converts a string into a BudgetUnit.
func ParseBudgetUnit(s string) (BudgetUnit, error) {
	u := BudgetUnit(s)
	switch u {
	case UnitTokens, UnitChars, UnitItems:
		return u, nil
	}
	return "", fmt.Errorf("unknown budget unit %q", s)
}

// Budget is the caller-defined size constraint on retrieval output.
type Budget struct {
	MaxUnits int        `json:"max_units"`
	Unit     BudgetUnit `json:"unit"`
	Compress bool       `json:"compress"`
}

// FittedEntry is one item selected into the budget. IsSummary marks entries
// whose content was replaced by a lossy stand-in.
type FittedEntry struct {
	ItemID    string  `json:"item_id"`
	Kind      Kind    `json:"kind"`
	ProjectID string  `json:"project_id"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
	Units     int     `json:"units"`
	IsSummary bool    `json:"is_summary"`
}

// FittedContext is the final retrieval payload: the budget-fitted entries,
// any anti-pattern warnings raised against the query, and bookkeeping about
// how the result was produced. Degraded is set when semantic scoring was
// unavailable and ranking fell back to non-semantic factors.
type FittedContext struct {
	Entries   []FittedEntry        `json:"entries"`
	Warnings  []AntiPatternWarning `json:"warnings,omitempty"`
	UnitsUsed int                  `json:"units_used"`
	Unit      BudgetUnit           `json:"unit"`
	Degraded  bool                 `json:"degraded"`
}
