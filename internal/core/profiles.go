// ABOUTME: Developer profile learner applying bounded EMA updates under per-developer locks
// ABOUTME: Tracks technology affinity, pattern confidence, anti-pattern evidence, and transfer stats

package core

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/ctxforge/ctxbrain/internal/config"
	"github.com/ctxforge/ctxbrain/internal/models"
	"github.com/ctxforge/ctxbrain/internal/storage"
)

// profileShards sizes the lock table for per-developer write serialization.
const profileShards = 16

// ProfileLearner owns all profile mutation. Every update is an EMA nudge,
// so weights move by bounded steps and never jump.
type ProfileLearner struct {
	profiles      *storage.ProfileStore
	step          float64
	snapshotEvery int
	logMax        int
	flagBelow     float64

	locks [profileShards]sync.Mutex
}

// NewProfileLearner builds a learner from engine configuration.
func NewProfileLearner(profiles *storage.ProfileStore, cfg *config.Config) *ProfileLearner {
	return &ProfileLearner{
		profiles:      profiles,
		step:          cfg.ProfileStep,
		snapshotEvery: cfg.SnapshotEvery,
		logMax:        cfg.EvolutionLogMax,
		flagBelow:     cfg.AntiPatternFlagBelow,
	}
}

// lockFor returns the shard lock serializing writes for one developer.
func (l *ProfileLearner) lockFor(developerID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(developerID))
	return &l.locks[h.Sum32()%profileShards]
}

// Get returns the developer's profile, or a fresh neutral profile for a
// developer that has never been observed. Reading never creates a row.
func (l *ProfileLearner) Get(developerID string) (*models.DeveloperProfile, error) {
	profile, err := l.profiles.Get(developerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return models.NewDeveloperProfile(developerID), nil
	}
	return profile, nil
}

// ObserveUsage records that a developer worked with the given technologies,
// nudging each weight toward 1.0.
func (l *ProfileLearner) ObserveUsage(developerID string, technologies []string, now time.Time) error {
	if developerID == "" || len(technologies) == 0 {
		return nil
	}

	lock := l.lockFor(developerID)
	lock.Lock()
	defer lock.Unlock()

	profile, err := l.Get(developerID)
	if err != nil {
		return err
	}

	for _, tech := range technologies {
		profile.TechnologyWeights[tech] = profile.TechnologyWeight(tech).Nudge(1.0, l.step)
	}

	l.finishUpdate(profile, now)
	return l.profiles.Save(profile)
}

// ObserveOutcome folds an item's success or failure into the owning
// developer's profile: every technology tag moves toward the outcome, and
// pattern-kind items also move their per-pattern confidence. Patterns whose
// confidence falls below the flag threshold accumulate anti-pattern
// evidence; they leave the set once confidence recovers.
func (l *ProfileLearner) ObserveOutcome(developerID string, item *models.ContextItem, success bool, now time.Time) (*models.DeveloperProfile, error) {
	lock := l.lockFor(developerID)
	lock.Lock()
	defer lock.Unlock()

	profile, err := l.Get(developerID)
	if err != nil {
		return nil, err
	}

	target := 0.0
	if success {
		target = 1.0
	}

	for _, tech := range item.TechnologyTags {
		profile.TechnologyWeights[tech] = profile.TechnologyWeight(tech).Nudge(target, l.step)
	}

	if item.Kind == models.KindCodePattern || item.Kind == models.KindAntiPattern {
		current := models.Neutral
		if w, ok := profile.PatternWeight(item.ID); ok {
			current = w
		}
		next := current.Nudge(target, l.step)
		profile.PatternConfidence[item.ID] = next

		if next.Float() < l.flagBelow {
			if !success {
				profile.AntiPatterns[item.ID]++
			}
		} else {
			delete(profile.AntiPatterns, item.ID)
		}
	}

	l.finishUpdate(profile, now)
	if err := l.profiles.Save(profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	return profile, nil
}

// ObserveTransfer records a cross-technology adoption attempt and whether
// it succeeded, feeding future success probability estimates.
func (l *ProfileLearner) ObserveTransfer(developerID, sourceTech, targetTech string, success bool, now time.Time) error {
	lock := l.lockFor(developerID)
	lock.Lock()
	defer lock.Unlock()

	profile, err := l.Get(developerID)
	if err != nil {
		return err
	}

	key := models.TransferKey(sourceTech, targetTech)
	stat := profile.TransferStats[key]
	stat.Attempts++
	if success {
		stat.Successes++
	}
	profile.TransferStats[key] = stat

	l.finishUpdate(profile, now)
	return l.profiles.Save(profile)
}

// finishUpdate advances the update counter and takes a periodic snapshot.
func (l *ProfileLearner) finishUpdate(profile *models.DeveloperProfile, now time.Time) {
	profile.UpdateCount++
	profile.UpdatedAt = now
	if l.snapshotEvery > 0 && profile.UpdateCount%l.snapshotEvery == 0 {
		profile.TakeSnapshot(now, l.logMax)
	}
}
