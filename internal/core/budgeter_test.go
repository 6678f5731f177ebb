// ABOUTME: Tests for budget fitting: greedy packing, unit measurement, and compression
// ABOUTME: Uses the shared stub summarizer; token math assumes 4 chars per token

package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ctxforge/ctxbrain/internal/models"
)

func scoredFixture(id, content string, score float64) models.ScoredItem {
	return models.ScoredItem{
		Item: models.ContextItem{
			ID:        id,
			ProjectID: "proj-1",
			Kind:      models.KindConversation,
			Content:   content,
		},
		Score: score,
	}
}

func TestFitGreedyWithSmallerFallback(t *testing.T) {
	b := NewBudgeter(nil)
	scored := []models.ScoredItem{
		scoredFixture("item-a", strings.Repeat("a", 40), 0.9), // 10 tokens
		scoredFixture("item-b", strings.Repeat("b", 60), 0.8), // 15 tokens
		scoredFixture("item-c", strings.Repeat("c", 30), 0.7), // 8 tokens
	}

	fitted := b.Fit(context.Background(), scored, models.Budget{MaxUnits: 20, Unit: models.UnitTokens})

	if len(fitted.Entries) != 2 {
		t.Fatalf("entries = %+v, want item-a and item-c", fitted.Entries)
	}
	if fitted.Entries[0].ItemID != "item-a" || fitted.Entries[1].ItemID != "item-c" {
		t.Errorf("entries = [%s %s], want [item-a item-c]", fitted.Entries[0].ItemID, fitted.Entries[1].ItemID)
	}
	if fitted.UnitsUsed != 18 {
		t.Errorf("units used = %d, want 18", fitted.UnitsUsed)
	}
	for _, e := range fitted.Entries {
		if e.IsSummary {
			t.Errorf("entry %s marked summary without compression", e.ItemID)
		}
	}
	if fitted.Entries[0].Score != 0.9 || fitted.Entries[0].Kind != models.KindConversation {
		t.Errorf("entry metadata = %+v, want score and kind carried over", fitted.Entries[0])
	}
}

func TestFitItemsUnit(t *testing.T) {
	b := NewBudgeter(nil)
	scored := []models.ScoredItem{
		scoredFixture("item-a", "one", 0.9),
		scoredFixture("item-b", "two", 0.8),
		scoredFixture("item-c", "three", 0.7),
	}

	fitted := b.Fit(context.Background(), scored, models.Budget{MaxUnits: 2, Unit: models.UnitItems})

	if len(fitted.Entries) != 2 || fitted.UnitsUsed != 2 {
		t.Fatalf("fitted = %+v, want the top two items", fitted)
	}
	if fitted.Entries[0].Units != 1 {
		t.Errorf("units per item = %d, want 1", fitted.Entries[0].Units)
	}
}

func TestFitCompressWithSummarizer(t *testing.T) {
	summarizer := &stubSummarizer{summary: "short summary"}
	b := NewBudgeter(summarizer)
	scored := []models.ScoredItem{
		scoredFixture("item-a", strings.Repeat("a", 100), 0.9), // 25 tokens
	}

	fitted := b.Fit(context.Background(), scored, models.Budget{MaxUnits: 20, Unit: models.UnitTokens, Compress: true})

	if len(fitted.Entries) != 1 {
		t.Fatalf("entries = %+v, want the compressed item", fitted.Entries)
	}
	e := fitted.Entries[0]
	if !e.IsSummary || e.Content != "short summary" {
		t.Errorf("entry = %+v, want summarized content", e)
	}
	if e.Units != 4 || fitted.UnitsUsed != 4 {
		t.Errorf("units = %d/%d, want 4 (13 chars)", e.Units, fitted.UnitsUsed)
	}
	if summarizer.calls != 1 {
		t.Errorf("summarizer calls = %d, want 1", summarizer.calls)
	}
}

func TestFitCompressTruncatesWithoutSummarizer(t *testing.T) {
	b := NewBudgeter(nil)
	content := strings.Repeat("a", 100)
	scored := []models.ScoredItem{scoredFixture("item-a", content, 0.9)}

	fitted := b.Fit(context.Background(), scored, models.Budget{MaxUnits: 20, Unit: models.UnitTokens, Compress: true})

	if len(fitted.Entries) != 1 {
		t.Fatalf("entries = %+v, want the truncated item", fitted.Entries)
	}
	e := fitted.Entries[0]
	// 20 tokens of capacity is 80 chars.
	if !e.IsSummary || e.Content != content[:80] {
		t.Errorf("entry = %+v, want an 80-char truncation", e)
	}
	if fitted.UnitsUsed != 20 {
		t.Errorf("units used = %d, want 20", fitted.UnitsUsed)
	}
}

func TestFitCompressFallsBackOnSummarizerError(t *testing.T) {
	summarizer := &stubSummarizer{err: errors.New("model unavailable")}
	b := NewBudgeter(summarizer)
	content := strings.Repeat("a", 100)
	scored := []models.ScoredItem{scoredFixture("item-a", content, 0.9)}

	fitted := b.Fit(context.Background(), scored, models.Budget{MaxUnits: 20, Unit: models.UnitTokens, Compress: true})

	if len(fitted.Entries) != 1 || fitted.Entries[0].Content != content[:80] {
		t.Fatalf("fitted = %+v, want truncation fallback", fitted)
	}
	if summarizer.calls != 1 {
		t.Errorf("summarizer calls = %d, want 1", summarizer.calls)
	}
}

func TestFitCompressReclampsOvershoot(t *testing.T) {
	// A summarizer that ignores its limit must not break the budget.
	summarizer := &stubSummarizer{summary: strings.Repeat("s", 200)}
	b := NewBudgeter(summarizer)
	scored := []models.ScoredItem{scoredFixture("item-a", strings.Repeat("a", 100), 0.9)}

	fitted := b.Fit(context.Background(), scored, models.Budget{MaxUnits: 20, Unit: models.UnitTokens, Compress: true})

	if len(fitted.Entries) != 1 {
		t.Fatalf("entries = %+v, want one", fitted.Entries)
	}
	if got := len(fitted.Entries[0].Content); got != 80 {
		t.Errorf("summary length = %d, want clamped to 80 chars", got)
	}
	if fitted.UnitsUsed > 20 {
		t.Errorf("units used = %d, want within budget", fitted.UnitsUsed)
	}
}

func TestFitSkipsCompressBelowMinCapacity(t *testing.T) {
	summarizer := &stubSummarizer{summary: "s"}
	b := NewBudgeter(summarizer)
	scored := []models.ScoredItem{scoredFixture("item-a", strings.Repeat("a", 100), 0.9)}

	fitted := b.Fit(context.Background(), scored, models.Budget{MaxUnits: 10, Unit: models.UnitTokens, Compress: true})

	if len(fitted.Entries) != 0 || fitted.UnitsUsed != 0 {
		t.Errorf("fitted = %+v, want nothing below the minimum summary capacity", fitted)
	}
	if summarizer.calls != 0 {
		t.Errorf("summarizer calls = %d, want 0", summarizer.calls)
	}
}

func TestFitZeroBudget(t *testing.T) {
	b := NewBudgeter(nil)
	scored := []models.ScoredItem{scoredFixture("item-a", "anything", 0.9)}

	fitted := b.Fit(context.Background(), scored, models.Budget{MaxUnits: 0})

	if len(fitted.Entries) != 0 || fitted.UnitsUsed != 0 {
		t.Errorf("fitted = %+v, want empty", fitted)
	}
	if fitted.Unit != models.UnitTokens {
		t.Errorf("unit = %q, want tokens default", fitted.Unit)
	}
}

func TestFitCharsUnit(t *testing.T) {
	b := NewBudgeter(nil)
	scored := []models.ScoredItem{
		scoredFixture("item-a", strings.Repeat("a", 30), 0.9),
		scoredFixture("item-b", strings.Repeat("b", 40), 0.8),
	}

	fitted := b.Fit(context.Background(), scored, models.Budget{MaxUnits: 50, Unit: models.UnitChars, Compress: true})

	if len(fitted.Entries) != 2 {
		t.Fatalf("entries = %+v, want full item-a plus truncated item-b", fitted.Entries)
	}
	if fitted.Entries[0].Units != 30 || fitted.Entries[0].IsSummary {
		t.Errorf("entries[0] = %+v, want the full 30 chars", fitted.Entries[0])
	}
	// Char capacity maps 1:1, no token multiplier.
	if fitted.Entries[1].Units != 20 || !fitted.Entries[1].IsSummary {
		t.Errorf("entries[1] = %+v, want a 20-char truncation", fitted.Entries[1])
	}
	if fitted.UnitsUsed != 50 {
		t.Errorf("units used = %d, want 50", fitted.UnitsUsed)
	}
}

func TestAllUnlimited(t *testing.T) {
	b := NewBudgeter(nil)
	scored := []models.ScoredItem{
		scoredFixture("item-a", strings.Repeat("a", 40), 0.9),
		scoredFixture("item-b", strings.Repeat("b", 60), 0.8),
	}

	fitted := b.All(scored, models.UnitTokens)

	if len(fitted.Entries) != 2 {
		t.Fatalf("entries = %d, want all items", len(fitted.Entries))
	}
	if fitted.UnitsUsed != 25 {
		t.Errorf("units used = %d, want 10+15", fitted.UnitsUsed)
	}
	if fitted.Unit != models.UnitTokens {
		t.Errorf("unit = %q, want tokens", fitted.Unit)
	}
}

func TestFitEmptyInput(t *testing.T) {
	b := NewBudgeter(nil)

	fitted := b.Fit(context.Background(), nil, models.Budget{MaxUnits: 100, Unit: models.UnitTokens})

	if len(fitted.Entries) != 0 || fitted.UnitsUsed != 0 {
		t.Errorf("fitted = %+v, want empty result for empty input", fitted)
	}
}
