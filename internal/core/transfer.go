// ABOUTME: Cross-technology pattern transfer: candidate lookup and anti-pattern detection
// ABOUTME: Reads the precomputed link index and re-derives success probability per developer

package core

import (
	"fmt"
	"sort"

	"github.com/ctxforge/ctxbrain/internal/config"
	"github.com/ctxforge/ctxbrain/internal/models"
	"github.com/ctxforge/ctxbrain/internal/storage"
)

// TransferEngine answers transfer queries from the last-computed link set
// and screens retrieval against known anti-patterns.
type TransferEngine struct {
	items         *storage.ItemStore
	links         *storage.LinkStore
	antiThreshold float64
}

// NewTransferEngine builds a transfer engine from engine configuration.
func NewTransferEngine(store *storage.Storage, cfg *config.Config) *TransferEngine {
	return &TransferEngine{
		items:         store.Items(),
		links:         store.Links(),
		antiThreshold: cfg.AntiPatternThreshold,
	}
}

// CandidatesFor returns transfer candidates for a source pattern, strongest
// first. Stored links carry a global-prior success probability; when a
// developer profile is available the probability is re-derived as
// similarity x that developer's adoption rate for the technology pair.
func (t *TransferEngine) CandidatesFor(pattern *models.ContextItem, targetTech string, profile *models.DeveloperProfile) ([]models.PatternLink, error) {
	links, err := t.links.ForPattern(pattern.ID, targetTech)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern links: %w", err)
	}

	if profile != nil {
		sourceTech := primaryTechnology(pattern)
		for i := range links {
			rate := profile.AdoptionRate(sourceTech, links[i].TargetTechnology)
			links[i].SuccessProbability = links[i].Similarity * rate
		}
	}

	return links, nil
}

// DetectAntiPatterns compares a query vector against stored anti-patterns in
// the developer's scope: the anchor project, the developer's own items, and
// anything tagged with the queried technologies. A nil query vector yields
// no warnings. Suggested alternatives are never fabricated; absence is
// reported as an empty ID.
func (t *TransferEngine) DetectAntiPatterns(queryVector []float64, developerID, projectID string, technologies []string) ([]models.AntiPatternWarning, error) {
	if queryVector == nil {
		return nil, nil
	}

	antiPatterns, err := t.items.ListKind(models.KindAntiPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list anti-patterns: %w", err)
	}

	var warnings []models.AntiPatternWarning
	for i := range antiPatterns {
		anti := &antiPatterns[i]
		if !t.inScope(anti, developerID, projectID, technologies) {
			continue
		}
		if anti.Embedding == nil {
			continue
		}

		sim := storage.CosineSimilarity(queryVector, anti.Embedding)
		if sim < t.antiThreshold {
			continue
		}

		alternative, err := t.suggestAlternative(anti)
		if err != nil {
			return nil, err
		}

		warnings = append(warnings, models.AntiPatternWarning{
			MatchedPatternID:       anti.ID,
			Similarity:             sim,
			SuggestedAlternativeID: alternative,
		})
	}

	sort.Slice(warnings, func(i, j int) bool {
		if warnings[i].Similarity != warnings[j].Similarity {
			return warnings[i].Similarity > warnings[j].Similarity
		}
		return warnings[i].MatchedPatternID < warnings[j].MatchedPatternID
	})

	return warnings, nil
}

// inScope reports whether an anti-pattern is relevant to this query.
func (t *TransferEngine) inScope(anti *models.ContextItem, developerID, projectID string, technologies []string) bool {
	if anti.ProjectID == projectID {
		return true
	}
	if developerID != "" && anti.CreatedBy == developerID {
		return true
	}
	return anti.HasAnyTag(technologies)
}

// suggestAlternative finds the strongest code pattern that shares a
// technology with the anti-pattern and demonstrably outperforms it.
func (t *TransferEngine) suggestAlternative(anti *models.ContextItem) (string, error) {
	patterns, err := t.items.ListKind(models.KindCodePattern)
	if err != nil {
		return "", fmt.Errorf("failed to list code patterns: %w", err)
	}

	var best *models.ContextItem
	for i := range patterns {
		p := &patterns[i]
		if !p.HasAnyTag(anti.TechnologyTags) {
			continue
		}
		if p.OutcomeScore <= anti.OutcomeScore {
			continue
		}
		if best == nil || betterAlternative(p, best) {
			best = p
		}
	}

	if best == nil {
		return "", nil
	}
	return best.ID, nil
}

// betterAlternative orders alternatives by outcome score, then recency,
// then ID, so suggestions are deterministic.
func betterAlternative(a, b *models.ContextItem) bool {
	if a.OutcomeScore != b.OutcomeScore {
		return a.OutcomeScore > b.OutcomeScore
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// primaryTechnology is the item's first tag, used as the source side of a
// transfer pair.
func primaryTechnology(item *models.ContextItem) string {
	if len(item.TechnologyTags) == 0 {
		return ""
	}
	return item.TechnologyTags[0]
}
