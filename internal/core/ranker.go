// ABOUTME: Multi-factor relevance ranker combining semantic, preference, temporal, and scope signals
// ABOUTME: Produces a deterministic total order over candidates with per-factor score breakdowns

package core

import (
	"math"
	"sort"
	"time"

	"github.com/ctxforge/ctxbrain/internal/config"
	"github.com/ctxforge/ctxbrain/internal/models"
)

// Ranker scores retrieval candidates. Weights are fixed at construction and
// sum to 1.0 (validated by config), so scores stay in [0, 1].
type Ranker struct {
	weightSemantic   float64
	weightPreference float64
	weightTemporal   float64
	weightScope      float64

	crossProjectDiscount float64
	halfLife             time.Duration
}

// NewRanker builds a ranker from engine configuration.
func NewRanker(cfg *config.Config) *Ranker {
	return &Ranker{
		weightSemantic:       cfg.WeightSemantic,
		weightPreference:     cfg.WeightPreference,
		weightTemporal:       cfg.WeightTemporal,
		weightScope:          cfg.WeightScope,
		crossProjectDiscount: cfg.CrossProjectDiscount,
		halfLife:             cfg.TemporalHalfLife,
	}
}

// Rank scores all candidates and returns the top k in a deterministic total
// order: score descending, then created_at descending, then ID ascending.
// k <= 0 or k greater than the candidate count returns everything.
func (r *Ranker) Rank(candidates []models.Candidate, profile *models.DeveloperProfile, projectID string, k int, now time.Time) []models.ScoredItem {
	scored := make([]models.ScoredItem, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, r.Score(c, profile, projectID, now))
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].Item.CreatedAt.Equal(scored[j].Item.CreatedAt) {
			return scored[i].Item.CreatedAt.After(scored[j].Item.CreatedAt)
		}
		return scored[i].Item.ID < scored[j].Item.ID
	})

	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}

	return scored
}

// Score computes the weighted relevance of a single candidate.
func (r *Ranker) Score(c models.Candidate, profile *models.DeveloperProfile, projectID string, now time.Time) models.ScoredItem {
	breakdown := models.ScoreBreakdown{
		Semantic:   semanticFactor(c.Similarity),
		Preference: preferenceFactor(&c.Item, profile),
		Temporal:   r.temporalFactor(&c.Item, now),
		Scope:      r.scopeFactor(&c.Item, projectID),
	}

	score := r.weightSemantic*breakdown.Semantic +
		r.weightPreference*breakdown.Preference +
		r.weightTemporal*breakdown.Temporal +
		r.weightScope*breakdown.Scope

	return models.ScoredItem{Item: c.Item, Score: score, Breakdown: breakdown}
}

// semanticFactor maps cosine similarity into [0, 1]. Items without
// similarity information (no query vector or no embedding) contribute 0.
func semanticFactor(similarity float64) float64 {
	if similarity <= 0 {
		return 0
	}
	if similarity > 1 {
		return 1
	}
	return similarity
}

// preferenceFactor averages the developer's technology weights over the
// item's tags, blended with the learned confidence for this exact pattern
// when one exists. No profile data means neutral 0.5.
func preferenceFactor(item *models.ContextItem, profile *models.DeveloperProfile) float64 {
	pref := models.Neutral.Float()
	if profile == nil {
		return pref
	}

	if len(item.TechnologyTags) > 0 {
		sum := 0.0
		for _, tag := range item.TechnologyTags {
			sum += profile.TechnologyWeight(tag).Float()
		}
		pref = sum / float64(len(item.TechnologyTags))
	}

	if w, ok := profile.PatternWeight(item.ID); ok {
		pref = (pref + w.Float()) / 2
	}

	return pref
}

// temporalFactor applies half-life decay to time since last access. Frequent
// access stretches the effective half-life, so well-used items fade slower.
func (r *Ranker) temporalFactor(item *models.ContextItem, now time.Time) float64 {
	age := now.Sub(item.LastAccessedAt)
	if age <= 0 {
		return 1.0
	}

	stretch := 1 + math.Log(1+float64(item.AccessCount))
	effectiveHours := r.halfLife.Hours() * stretch
	if effectiveHours <= 0 {
		return 0
	}

	return math.Exp(-math.Ln2 * age.Hours() / effectiveHours)
}

// scopeFactor is 1.0 for items in the query's project and the configured
// discount for items pulled in from other projects.
func (r *Ranker) scopeFactor(item *models.ContextItem, projectID string) float64 {
	if item.ProjectID == projectID {
		return 1.0
	}
	return r.crossProjectDiscount
}
