// ABOUTME: Pattern link persistence for the batch transfer index
// ABOUTME: Links are replaced wholesale on recompute and read per source pattern

package storage

import (
	"fmt"

	"github.com/ctxforge/ctxbrain/internal/models"
)

// LinkStore manages precomputed cross-technology pattern links.
type LinkStore struct {
	db *DB
}

// NewLinkStore creates a link store backed by the given database.
func NewLinkStore(db *DB) *LinkStore {
	return &LinkStore{db: db}
}

// ReplaceAll swaps the entire link index for a freshly computed one in a
// single transaction, so readers never observe a partial recompute.
func (s *LinkStore) ReplaceAll(links []models.PatternLink) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin link transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pattern_links`); err != nil {
		return fmt.Errorf("failed to clear pattern links: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO pattern_links (source_pattern_id, target_technology, target_item_id,
			adapted_content, similarity, adaptation_cost, success_probability, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer stmt.Close()

	for _, link := range links {
		_, err := stmt.Exec(link.SourcePatternID, link.TargetTechnology, link.TargetItemID,
			link.AdaptedContent, link.Similarity, link.AdaptationCost,
			link.SuccessProbability, link.ComputedAt)
		if err != nil {
			return fmt.Errorf("failed to insert pattern link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit link transaction: %w", err)
	}

	return nil
}

// ForPattern returns links from a source pattern, optionally narrowed to a
// target technology, strongest first.
func (s *LinkStore) ForPattern(sourcePatternID, targetTechnology string) ([]models.PatternLink, error) {
	query := `
		SELECT source_pattern_id, target_technology, target_item_id, adapted_content,
		       similarity, adaptation_cost, success_probability, computed_at
		FROM pattern_links
		WHERE source_pattern_id = ?`
	args := []any{sourcePatternID}
	if targetTechnology != "" {
		query += ` AND target_technology = ?`
		args = append(args, targetTechnology)
	}
	query += ` ORDER BY similarity DESC, target_item_id ASC`

	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pattern links: %w", err)
	}
	defer rows.Close()

	var links []models.PatternLink
	for rows.Next() {
		var link models.PatternLink
		err := rows.Scan(&link.SourcePatternID, &link.TargetTechnology, &link.TargetItemID,
			&link.AdaptedContent, &link.Similarity, &link.AdaptationCost,
			&link.SuccessProbability, &link.ComputedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern link: %w", err)
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// Count returns the number of stored pattern links.
func (s *LinkStore) Count() (int, error) {
	var n int
	err := s.db.conn.QueryRow(`SELECT COUNT(*) FROM pattern_links`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pattern links: %w", err)
	}
	return n, nil
}
