// ABOUTME: Developer profile persistence with JSON-encoded preference maps
// ABOUTME: Handles profile load and upsert, one row per developer

package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ctxforge/ctxbrain/internal/models"
)

// ProfileStore manages developer preference profiles.
type ProfileStore struct {
	db *DB
}

// NewProfileStore creates a profile store backed by the given database.
func NewProfileStore(db *DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get retrieves a developer's profile. Returns nil if the developer has
// never been observed.
func (s *ProfileStore) Get(developerID string) (*models.DeveloperProfile, error) {
	row := s.db.conn.QueryRow(`
		SELECT developer_id, technology_weights, pattern_confidence, anti_patterns,
		       transfer_stats, evolution_log, update_count, updated_at
		FROM developer_profiles WHERE developer_id = ?
	`, developerID)

	var profile models.DeveloperProfile
	var weights, patterns, antiPatterns, transfers, evolution string

	err := row.Scan(&profile.DeveloperID, &weights, &patterns, &antiPatterns,
		&transfers, &evolution, &profile.UpdateCount, &profile.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get developer profile: %w", err)
	}

	fields := []struct {
		raw  string
		dest any
	}{
		{weights, &profile.TechnologyWeights},
		{patterns, &profile.PatternConfidence},
		{antiPatterns, &profile.AntiPatterns},
		{transfers, &profile.TransferStats},
		{evolution, &profile.EvolutionLog},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(f.raw), f.dest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile field: %w", err)
		}
	}

	ensureProfileMaps(&profile)
	return &profile, nil
}

// Save upserts a developer's profile.
func (s *ProfileStore) Save(profile *models.DeveloperProfile) error {
	weights, err := json.Marshal(profile.TechnologyWeights)
	if err != nil {
		return fmt.Errorf("failed to marshal technology weights: %w", err)
	}
	patterns, err := json.Marshal(profile.PatternConfidence)
	if err != nil {
		return fmt.Errorf("failed to marshal pattern confidence: %w", err)
	}
	antiPatterns, err := json.Marshal(profile.AntiPatterns)
	if err != nil {
		return fmt.Errorf("failed to marshal anti-patterns: %w", err)
	}
	transfers, err := json.Marshal(profile.TransferStats)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer stats: %w", err)
	}
	evolution, err := json.Marshal(profile.EvolutionLog)
	if err != nil {
		return fmt.Errorf("failed to marshal evolution log: %w", err)
	}

	_, err = s.db.conn.Exec(`
		INSERT INTO developer_profiles (developer_id, technology_weights, pattern_confidence,
			anti_patterns, transfer_stats, evolution_log, update_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(developer_id) DO UPDATE SET
			technology_weights = excluded.technology_weights,
			pattern_confidence = excluded.pattern_confidence,
			anti_patterns = excluded.anti_patterns,
			transfer_stats = excluded.transfer_stats,
			evolution_log = excluded.evolution_log,
			update_count = excluded.update_count,
			updated_at = excluded.updated_at
	`, profile.DeveloperID, string(weights), string(patterns), string(antiPatterns),
		string(transfers), string(evolution), profile.UpdateCount, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save developer profile: %w", err)
	}

	return nil
}

// Count returns the number of stored developer profiles.
func (s *ProfileStore) Count() (int, error) {
	var n int
	err := s.db.conn.QueryRow(`SELECT COUNT(*) FROM developer_profiles`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return n, nil
}

// ensureProfileMaps replaces nil collections so callers can write without checks.
func ensureProfileMaps(p *models.DeveloperProfile) {
	if p.TechnologyWeights == nil {
		p.TechnologyWeights = make(map[string]models.Confidence)
	}
	if p.PatternConfidence == nil {
		p.PatternConfidence = make(map[string]models.Confidence)
	}
	if p.AntiPatterns == nil {
		p.AntiPatterns = make(map[string]int)
	}
	if p.TransferStats == nil {
		p.TransferStats = make(map[string]models.TransferStat)
	}
}
