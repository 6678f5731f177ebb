// ABOUTME: Typed error taxonomy for engine operations
// ABOUTME: Callers distinguish outcomes with errors.As; helpers cover the common checks

package core

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// DuplicateContentError indicates content already stored in the project.
// ExistingID carries the item the duplicate resolved to, so store stays
// idempotent: callers get the original item alongside this error.
type DuplicateContentError struct {
	ExistingID string
}

func (e *DuplicateContentError) Error() string {
	return fmt.Sprintf("content already stored as item %q", e.ExistingID)
}

// InvalidScopeError indicates a retrieval or store against an unregistered
// or malformed project scope.
type InvalidScopeError struct {
	ProjectID string
	Reason    string
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("invalid scope %q: %s", e.ProjectID, e.Reason)
}

// EmbeddingUnavailableError wraps an embedding provider failure. Retrieval
// degrades to non-semantic ranking instead of failing when it sees this.
type EmbeddingUnavailableError struct {
	Err error
}

func (e *EmbeddingUnavailableError) Error() string {
	return fmt.Sprintf("embedding unavailable: %v", e.Err)
}

func (e *EmbeddingUnavailableError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsDuplicateContent reports whether err is a DuplicateContentError.
func IsDuplicateContent(err error) bool {
	var target *DuplicateContentError
	return errors.As(err, &target)
}

// IsInvalidScope reports whether err is an InvalidScopeError.
func IsInvalidScope(err error) bool {
	var target *InvalidScopeError
	return errors.As(err, &target)
}
