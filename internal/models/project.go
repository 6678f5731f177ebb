// ABOUTME: Project is the registration record scoping context items
// ABOUTME: Storing into an unregistered project is rejected, so projects are first-class
package models

import (
	"fmt"
	"time"
)

// Project scopes context items. A project must be registered before items
// can be stored into it.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	RootPath     string    `json:"root_path,omitempty"`
	Technologies []string  `json:"technologies"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks the fields required before a project may be registered.
func (p *Project) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("project requires an id")
	}
	if p.Name == "" {
		return fmt.Errorf("project requires a name")
	}
	return nil
}
