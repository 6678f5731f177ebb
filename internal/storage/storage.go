// ABOUTME: Unified storage facade bundling all SQLite-backed stores
// ABOUTME: Single entry point the engine uses for persistence

package storage

import "fmt"

// Storage bundles the database connection and all stores.
type Storage struct {
	db        *DB
	items     *ItemStore
	projects  *ProjectStore
	profiles  *ProfileStore
	links     *LinkStore
	analytics *AnalyticsStore
}

// New opens storage at the given path, falling back to the default
// location when path is empty.
func New(path string) (*Storage, error) {
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return newStorage(db), nil
}

// NewInMemory opens in-memory storage for testing.
func NewInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory storage: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		db:        db,
		items:     NewItemStore(db),
		projects:  NewProjectStore(db),
		profiles:  NewProfileStore(db),
		links:     NewLinkStore(db),
		analytics: NewAnalyticsStore(db),
	}
}

// Items returns the context item store.
func (s *Storage) Items() *ItemStore { return s.items }

// Projects returns the project registry store.
func (s *Storage) Projects() *ProjectStore { return s.projects }

// Profiles returns the developer profile store.
func (s *Storage) Profiles() *ProfileStore { return s.profiles }

// Links returns the pattern link store.
func (s *Storage) Links() *LinkStore { return s.links }

// Analytics returns the search analytics store.
func (s *Storage) Analytics() *AnalyticsStore { return s.analytics }

// Path returns the filesystem path of the backing database.
func (s *Storage) Path() string { return s.db.Path() }

// Close closes the underlying database.
func (s *Storage) Close() error {
	return s.db.Close()
}
