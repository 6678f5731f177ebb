// ABOUTME: Fits ranked context items into a token, character, or item budget
// ABOUTME: Greedy by rank with smaller-item fallback, optional compression via a summarizer

package core

import (
	"context"
	"log"

	"github.com/ctxforge/ctxbrain/internal/models"
)

// minSummaryUnits is the smallest leftover capacity worth compressing into.
const minSummaryUnits = 16

// Budgeter assembles the final context window. It never invents content:
// compression goes through the injected summarizer, and plain truncation is
// the fallback when none is configured.
type Budgeter struct {
	summarizer Summarizer
}

// NewBudgeter creates a budgeter. The summarizer may be nil.
func NewBudgeter(summarizer Summarizer) *Budgeter {
	return &Budgeter{summarizer: summarizer}
}

// Fit packs ranked items into the budget, highest score first. An item that
// would overflow is skipped in favor of smaller lower-ranked items; with
// Compress set, leftover capacity may instead be filled with a summary of
// the skipped item. Output never exceeds the budget; an empty result is
// valid.
func (b *Budgeter) Fit(ctx context.Context, scored []models.ScoredItem, budget models.Budget) *models.FittedContext {
	unit := budget.Unit
	if unit == "" {
		unit = models.UnitTokens
	}

	fitted := &models.FittedContext{Unit: unit}
	remaining := budget.MaxUnits

	for i := range scored {
		if remaining <= 0 {
			break
		}
		si := &scored[i]
		units := unitsFor(si.Item.Content, unit)

		if units <= remaining {
			fitted.Entries = append(fitted.Entries, entryFor(si, si.Item.Content, units, false))
			remaining -= units
			continue
		}

		if budget.Compress && unit != models.UnitItems && remaining >= minSummaryUnits {
			content, used := b.compress(ctx, si.Item.Content, unit, remaining)
			if used > 0 {
				fitted.Entries = append(fitted.Entries, entryFor(si, content, used, true))
				remaining -= used
			}
		}
	}

	fitted.UnitsUsed = budget.MaxUnits - remaining
	if fitted.UnitsUsed < 0 {
		fitted.UnitsUsed = 0
	}
	return fitted
}

// All packs every ranked item without a limit, counting usage in the given
// unit. Used when the caller requested no budget.
func (b *Budgeter) All(scored []models.ScoredItem, unit models.BudgetUnit) *models.FittedContext {
	if unit == "" {
		unit = models.UnitTokens
	}

	fitted := &models.FittedContext{Unit: unit}
	for i := range scored {
		si := &scored[i]
		units := unitsFor(si.Item.Content, unit)
		fitted.Entries = append(fitted.Entries, entryFor(si, si.Item.Content, units, false))
		fitted.UnitsUsed += units
	}
	return fitted
}

// compress produces a stand-in for content that fits in capacity units.
func (b *Budgeter) compress(ctx context.Context, content string, unit models.BudgetUnit, capacity int) (string, int) {
	maxChars := capacity
	if unit == models.UnitTokens {
		maxChars = capacity * charsPerToken
	}

	text := ""
	if b.summarizer != nil {
		summary, err := b.summarizer.Summarize(ctx, content, maxChars)
		if err != nil {
			log.Printf("[Budgeter] summarize failed, falling back to truncation: %v", err)
		} else {
			text = summary
		}
	}
	if text == "" {
		text = truncateRunes(content, maxChars)
	}
	// A summarizer may overshoot its limit; cut again.
	text = truncateRunes(text, maxChars)

	if text == "" {
		return "", 0
	}
	return text, unitsFor(text, unit)
}

func entryFor(si *models.ScoredItem, content string, units int, isSummary bool) models.FittedEntry {
	return models.FittedEntry{
		ItemID:    si.Item.ID,
		Kind:      si.Item.Kind,
		ProjectID: si.Item.ProjectID,
		Content:   content,
		Score:     si.Score,
		Units:     units,
		IsSummary: isSummary,
	}
}

// charsPerToken is the standard rough estimate for English-ish text.
const charsPerToken = 4

// unitsFor measures content in the budget's unit.
func unitsFor(content string, unit models.BudgetUnit) int {
	switch unit {
	case models.UnitItems:
		return 1
	case models.UnitChars:
		return len([]rune(content))
	default: // tokens
		runes := len([]rune(content))
		return (runes + charsPerToken - 1) / charsPerToken
	}
}

// truncateRunes cuts s to at most max runes.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
