// ABOUTME: Search analytics persistence for retrieval observability
// ABOUTME: Records one row per rank call and aggregates usage statistics

package storage

import (
	"fmt"
	"time"
)

// SearchRecord captures one retrieval call for later analysis.
type SearchRecord struct {
	ID          int64     `json:"id"`
	Query       string    `json:"query"`
	DeveloperID string    `json:"developer_id"`
	ProjectID   string    `json:"project_id"`
	ResultCount int       `json:"result_count"`
	DurationMS  int64     `json:"duration_ms"`
	Degraded    bool      `json:"degraded"`
	CreatedAt   time.Time `json:"created_at"`
}

// AnalyticsSummary aggregates retrieval activity.
type AnalyticsSummary struct {
	TotalSearches int     `json:"total_searches"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
	DegradedCount int     `json:"degraded_count"`
}

// AnalyticsStore manages search analytics rows.
type AnalyticsStore struct {
	db *DB
}

// NewAnalyticsStore creates an analytics store backed by the given database.
func NewAnalyticsStore(db *DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// Log records a retrieval call.
func (s *AnalyticsStore) Log(rec SearchRecord) error {
	degraded := 0
	if rec.Degraded {
		degraded = 1
	}

	_, err := s.db.conn.Exec(`
		INSERT INTO search_analytics (query, developer_id, project_id, result_count,
			duration_ms, degraded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.Query, rec.DeveloperID, rec.ProjectID, rec.ResultCount,
		rec.DurationMS, degraded, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}

	return nil
}

// Recent returns the most recent retrieval records, newest first.
func (s *AnalyticsStore) Recent(limit int) ([]SearchRecord, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, query, developer_id, project_id, result_count, duration_ms, degraded, created_at
		FROM search_analytics
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent searches: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		var degraded int
		err := rows.Scan(&rec.ID, &rec.Query, &rec.DeveloperID, &rec.ProjectID,
			&rec.ResultCount, &rec.DurationMS, &degraded, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search record: %w", err)
		}
		rec.Degraded = degraded != 0
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Summary aggregates all recorded retrievals.
func (s *AnalyticsStore) Summary() (*AnalyticsSummary, error) {
	var summary AnalyticsSummary
	err := s.db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(AVG(duration_ms), 0), COALESCE(SUM(degraded), 0)
		FROM search_analytics
	`).Scan(&summary.TotalSearches, &summary.AvgDurationMS, &summary.DegradedCount)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize analytics: %w", err)
	}

	return &summary, nil
}
