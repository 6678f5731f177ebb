// ABOUTME: ContextItem is the atomic unit of stored developer history
// ABOUTME: Immutable content plus embedding, with access and outcome counters as the only mutable fields
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Kind classifies a context item.
type Kind string

const (
	KindConversation Kind = "conversation"
	KindDecision     Kind = "decision"
	KindCodePattern  Kind = "code_pattern"
	KindAntiPattern  Kind = "anti_pattern"
)

// ParseKind validates and converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown context kind %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindConversation, KindDecision, KindCodePattern, KindAntiPattern:
		return true
	}
	return false
}

// ContextItem is one stored unit of developer history. Content and embedding
// are fixed at creation; changing content means creating a new item with a
// new ID. Only LastAccessedAt/AccessCount (via touch) and OutcomeScore
// (via outcome feedback) mutate afterward.
type ContextItem struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"project_id"`
	CreatedBy      string     `json:"created_by"`
	Kind           Kind       `json:"kind"`
	Content        string     `json:"content"`
	ContentHash    string     `json:"content_hash"`
	TechnologyTags []string   `json:"technology_tags"`
	Embedding      []float64  `json:"embedding,omitempty"`
	OutcomeScore   Confidence `json:"outcome_score"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	AccessCount    int        `json:"access_count"`
}

// HashContent returns the SHA-256 hex digest of content, used for
// duplicate detection within a project.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Validate checks the fields required before an item may be persisted.
func (i *ContextItem) Validate() error {
	if i.ProjectID == "" {
		return fmt.Errorf("context item requires a project_id")
	}
	if i.Content == "" {
		return fmt.Errorf("context item requires content")
	}
	if !i.Kind.Valid() {
		return fmt.Errorf("unknown context kind %q", i.Kind)
	}
	return nil
}

// HasTag reports whether the item carries the given technology tag.
func (i *ContextItem) HasTag(tag string) bool {
	for _, t := range i.TechnologyTags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the item carries at least one of the given tags.
func (i *ContextItem) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if i.HasTag(t) {
			return true
		}
	}
	return false
}

// SharesTag reports whether the item shares at least one technology tag
// with other.
func (i *ContextItem) SharesTag(other *ContextItem) bool {
	return i.HasAnyTag(other.TechnologyTags)
}
