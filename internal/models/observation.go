// ABOUTME: RawObservation is one record supplied by an external source extractor
// ABOUTME: The engine embeds and stores observations but never mines sources itself
package models

import "time"

// RawObservation is a discrete unit of extracted history (a commit diff, a
// doc paragraph, a conversation turn) handed to the engine for ingestion.
// Extraction itself belongs to the collaborator that produced the record.
type RawObservation struct {
	Source         string    `json:"source"`
	ProjectID      string    `json:"project_id"`
	DeveloperID    string    `json:"developer_id"`
	Kind           Kind      `json:"kind"`
	Content        string    `json:"content"`
	TechnologyTags []string  `json:"technology_tags"`
	ObservedAt     time.Time `json:"observed_at"`
}
