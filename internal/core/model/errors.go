package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when an entity is required to exist and does not.
	ErrNotFound = errors.New("entity was not found")

	// ErrAccessDenied is returned when the role check of a gated operation fails.
	ErrAccessDenied = errors.New("access denied")

	// ErrMalformedToken is returned when a bearer credential cannot be
	// decoded or fails verification.
	ErrMalformedToken = errors.New("malformed token")

	// ErrConflict is returned when a version-conditional write lost against
	// a concurrent writer and the retry budget is exhausted.
	ErrConflict = errors.New("conflicting concurrent update")

	// ErrAlreadyExists is returned when creating an identity under an email
	// already present in the target partition.
	ErrAlreadyExists = errors.New("identity already exists")

	// ErrInvalidCredentials is returned on login with a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// PartialMigrationError reports a role migration or account deletion that
// failed after at least one side effect completed. It is distinguished from
// clean failures so that operators can reconcile; the journal row identified
// by MigrationID carries the state reached.
type PartialMigrationError struct {
	// MigrationID is the journal id of the partially completed migration.
	MigrationID uuid.UUID

	// Step is the step that failed.
	Step MigrationStep

	// Err is the underlying cause.
	Err error
}

func (e *PartialMigrationError) Error() string {
	return fmt.Sprintf("migration %s partially completed, step %s failed: %v", e.MigrationID, e.Step, e.Err)
}

func (e *PartialMigrationError) Unwrap() error {
	return e.Err
}
