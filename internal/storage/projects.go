// ABOUTME: Project registry persistence
// ABOUTME: Handles project registration, lookup, and listing for scope validation

package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ctxforge/ctxbrain/internal/models"
)

// ProjectStore manages registered projects.
type ProjectStore struct {
	db *DB
}

// NewProjectStore creates a project store backed by the given database.
func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// Register inserts a project, or refreshes its name, path, and technologies
// if it is already registered.
func (s *ProjectStore) Register(project *models.Project) error {
	techs, err := json.Marshal(project.Technologies)
	if err != nil {
		return fmt.Errorf("failed to marshal technologies: %w", err)
	}

	_, err = s.db.conn.Exec(`
		INSERT INTO projects (id, name, root_path, technologies, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			root_path = excluded.root_path,
			technologies = excluded.technologies
	`, project.ID, project.Name, project.RootPath, string(techs), project.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to register project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID. Returns nil if not found.
func (s *ProjectStore) Get(id string) (*models.Project, error) {
	row := s.db.conn.QueryRow(`
		SELECT id, name, root_path, technologies, created_at FROM projects WHERE id = ?
	`, id)

	project, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// Exists reports whether a project with the given ID is registered.
func (s *ProjectStore) Exists(id string) (bool, error) {
	var n int
	err := s.db.conn.QueryRow(`SELECT COUNT(*) FROM projects WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check project existence: %w", err)
	}
	return n > 0, nil
}

// List returns all registered projects, oldest first.
func (s *ProjectStore) List() ([]models.Project, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, name, root_path, technologies, created_at
		FROM projects
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *project)
	}

	return projects, rows.Err()
}

// scanProject reads one projects row into a model.
func scanProject(row scanner) (*models.Project, error) {
	var project models.Project
	var techsJSON string

	err := row.Scan(&project.ID, &project.Name, &project.RootPath, &techsJSON, &project.CreatedAt)
	if err != nil {
		return nil, err
	}

	if techsJSON != "" {
		if err := json.Unmarshal([]byte(techsJSON), &project.Technologies); err != nil {
			return nil, fmt.Errorf("failed to unmarshal technologies: %w", err)
		}
	}

	return &project, nil
}
