// ABOUTME: PatternLink records a believed cross-technology transfer for a stored pattern
// ABOUTME: AntiPatternWarning flags retrieval candidates that resemble known anti-patterns
package models

import "time"

// PatternLink is a directed, weighted relation saying "the source pattern is
// believed to transfer to the target technology at this cost and probability".
// Links are derived by the transfer engine's batch job and never edited by
// callers; SuccessProbability stored here uses the global adoption prior and
// is re-derived per developer at read time.
type PatternLink struct {
	SourcePatternID    string    `json:"source_pattern_id"`
	TargetTechnology   string    `json:"target_technology"`
	TargetItemID       string    `json:"target_item_id"`
	AdaptedContent     string    `json:"adapted_content"`
	Similarity         float64   `json:"similarity"`
	AdaptationCost     float64   `json:"adaptation_cost"`
	SuccessProbability float64   `json:"success_probability"`
	ComputedAt         time.Time `json:"computed_at"`
}

// AntiPatternWarning is attached to retrieval results when the query content
// sits within the high-similarity band of a stored anti-pattern.
// SuggestedAlternativeID names the best-outcome sibling pattern, or is empty
// when no better sibling exists.
type AntiPatternWarning struct {
	MatchedPatternID       string  `json:"matched_pattern_id"`
	Similarity             float64 `json:"similarity"`
	SuggestedAlternativeID string  `json:"suggested_alternative_id,omitempty"`
}
