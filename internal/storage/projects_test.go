// ABOUTME: Tests for the project registry store
// ABOUTME: Covers registration, idempotent refresh, lookup, and listing

package storage

import (
	"testing"
	"time"

	"github.com/ctxforge/ctxbrain/internal/models"
)

func TestProjectRegisterAndGet(t *testing.T) {
	s := newTestStorage(t)

	project := &models.Project{
		ID:           "proj-api",
		Name:         "payments-api",
		RootPath:     "/home/dev/payments-api",
		Technologies: []string{"go", "postgres"},
		CreatedAt:    testBase,
	}
	if err := s.Projects().Register(project); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := s.Projects().Get("proj-api")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil for registered project")
	}
	if got.Name != "payments-api" {
		t.Errorf("name = %q, want payments-api", got.Name)
	}
	if len(got.Technologies) != 2 || got.Technologies[1] != "postgres" {
		t.Errorf("technologies = %v, want [go postgres]", got.Technologies)
	}
}

func TestProjectGetNotFound(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.Projects().Get("missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil", got)
	}
}

func TestProjectReregisterRefreshes(t *testing.T) {
	s := newTestStorage(t)

	first := &models.Project{
		ID:           "proj-api",
		Name:         "payments-api",
		Technologies: []string{"go"},
		CreatedAt:    testBase,
	}
	if err := s.Projects().Register(first); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	second := &models.Project{
		ID:           "proj-api",
		Name:         "payments-api",
		Technologies: []string{"go", "redis"},
		CreatedAt:    testBase.Add(time.Hour),
	}
	if err := s.Projects().Register(second); err != nil {
		t.Fatalf("Register() refresh error = %v", err)
	}

	got, err := s.Projects().Get("proj-api")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Technologies) != 2 {
		t.Errorf("technologies after refresh = %v, want [go redis]", got.Technologies)
	}
	// Registration time is preserved across refreshes.
	if got.CreatedAt.Unix() != testBase.Unix() {
		t.Errorf("created_at = %v, want original %v", got.CreatedAt, testBase)
	}
}

func TestProjectExists(t *testing.T) {
	s := newTestStorage(t)
	registerTestProject(t, s, "proj-1")

	ok, err := s.Projects().Exists("proj-1")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !ok {
		t.Error("Exists(proj-1) = false, want true")
	}

	ok, err = s.Projects().Exists("proj-unknown")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if ok {
		t.Error("Exists(proj-unknown) = true, want false")
	}
}

func TestProjectList(t *testing.T) {
	s := newTestStorage(t)

	for i, id := range []string{"proj-c", "proj-a", "proj-b"} {
		project := &models.Project{
			ID:        id,
			Name:      id,
			CreatedAt: testBase.Add(time.Duration(i) * time.Hour),
		}
		if err := s.Projects().Register(project); err != nil {
			t.Fatalf("Register(%s) error = %v", id, err)
		}
	}

	got, err := s.Projects().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List() returned %d, want 3", len(got))
	}

	wantOrder := []string{"proj-c", "proj-a", "proj-b"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("position %d = %s, want %s (oldest first)", i, got[i].ID, want)
		}
	}
}
