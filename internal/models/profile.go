// ABOUTME: DeveloperProfile holds per-developer technology weights and pattern confidence
// ABOUTME: Includes transfer adoption stats and a bounded evolution log of snapshots
package models

import (
	"fmt"
	"time"
)

// TransferStat tracks how often a developer adopted cross-technology
// transfers for one ordered technology pair.
type TransferStat struct {
	Attempts  int `json:"attempts"`
	Successes int `json:"successes"`
}

// ProfileSnapshot is a compact point-in-time copy of the interesting parts of
// a profile, appended to the evolution log.
type ProfileSnapshot struct {
	TakenAt           time.Time             `json:"taken_at"`
	UpdateCount       int                   `json:"update_count"`
	TechnologyWeights map[string]Confidence `json:"technology_weights"`
	PatternCount      int                   `json:"pattern_count"`
	AntiPatternCount  int                   `json:"anti_pattern_count"`
}

// DeveloperProfile is the evolving per-developer record of what has worked.
// One exists per developer id; the profile store owns persistence and the
// learner owns all mutation.
type DeveloperProfile struct {
	DeveloperID       string                  `json:"developer_id"`
	TechnologyWeights map[string]Confidence   `json:"technology_weights"`
	PatternConfidence map[string]Confidence   `json:"pattern_confidence"`
	AntiPatterns      map[string]int          `json:"anti_patterns"`
	TransferStats     map[string]TransferStat `json:"transfer_stats"`
	EvolutionLog      []ProfileSnapshot       `json:"evolution_log"`
	UpdateCount       int                     `json:"update_count"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// NewDeveloperProfile returns a fresh profile with empty maps. Unseen
// technologies and patterns read as Neutral until the first observation.
func NewDeveloperProfile(developerID string) *DeveloperProfile {
	return &DeveloperProfile{
		DeveloperID:       developerID,
		TechnologyWeights: make(map[string]Confidence),
		PatternConfidence: make(map[string]Confidence),
		AntiPatterns:      make(map[string]int),
		TransferStats:     make(map[string]TransferStat),
		EvolutionLog:      []ProfileSnapshot{},
		UpdatedAt:         time.Now(),
	}
}

// TechnologyWeight returns the weight for a technology, Neutral if unseen.
func (p *DeveloperProfile) TechnologyWeight(tech string) Confidence {
	if w, ok := p.TechnologyWeights[tech]; ok {
		return w
	}
	return Neutral
}

// PatternWeight returns the confidence for a pattern id and whether the
// profile has ever observed it.
func (p *DeveloperProfile) PatternWeight(patternID string) (Confidence, bool) {
	w, ok := p.PatternConfidence[patternID]
	return w, ok
}

// TransferKey builds the map key for an ordered technology pair.
func TransferKey(sourceTech, targetTech string) string {
	return fmt.Sprintf("%s->%s", sourceTech, targetTech)
}

// AdoptionRate returns the developer's historical transfer adoption rate for
// the pair, or the global prior 0.5 with no history.
func (p *DeveloperProfile) AdoptionRate(sourceTech, targetTech string) float64 {
	stat, ok := p.TransferStats[TransferKey(sourceTech, targetTech)]
	if !ok || stat.Attempts == 0 {
		return 0.5
	}
	return float64(stat.Successes) / float64(stat.Attempts)
}

// TakeSnapshot appends a snapshot of the current state to the evolution log
// and trims the log to maxEntries by discarding the oldest.
func (p *DeveloperProfile) TakeSnapshot(now time.Time, maxEntries int) {
	weights := make(map[string]Confidence, len(p.TechnologyWeights))
	for tech, w := range p.TechnologyWeights {
		weights[tech] = w
	}

	p.EvolutionLog = append(p.EvolutionLog, ProfileSnapshot{
		TakenAt:           now,
		UpdateCount:       p.UpdateCount,
		TechnologyWeights: weights,
		PatternCount:      len(p.PatternConfidence),
		AntiPatternCount:  len(p.AntiPatterns),
	})

	if maxEntries > 0 && len(p.EvolutionLog) > maxEntries {
		p.EvolutionLog = p.EvolutionLog[len(p.EvolutionLog)-maxEntries:]
	}
}
