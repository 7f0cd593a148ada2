package model

import (
	"time"

	"github.com/google/uuid"
)

// MigrationOp is the kind of two-store operation tracked by the journal.
type MigrationOp string

const (
	// OpRoleChange moves an identity between partitions on a role change.
	OpRoleChange MigrationOp = "role_change"

	// OpAccountDelete removes the identity and the profile on account
	// deletion. Same two-store exposure as a role change.
	OpAccountDelete MigrationOp = "account_delete"
)

// MigrationState is the journal state of a migration. Steps run
// create-before-delete so that the worst partial outcome is a duplicate
// identity, never a vanished one.
type MigrationState string

const (
	// MigrationStarted is recorded before any side effect.
	MigrationStarted MigrationState = "started"

	// MigrationIdentityCreated is recorded once the identity exists in the
	// target partition.
	MigrationIdentityCreated MigrationState = "identity_created"

	// MigrationIdentityDeleted is recorded once the identity is gone from
	// the source partition.
	MigrationIdentityDeleted MigrationState = "identity_deleted"

	// MigrationCommitted is the successful terminal state: the profile
	// references exactly the partition holding the identity.
	MigrationCommitted MigrationState = "committed"

	// MigrationFailed is the failed terminal state. FailedStep and
	// LastError carry enough to reconcile, manually or via the worker.
	MigrationFailed MigrationState = "failed"
)

// MigrationStep names the step at which a migration failed.
type MigrationStep string

const (
	// StepCreateIdentity is the create in the target partition.
	StepCreateIdentity MigrationStep = "create_identity"

	// StepDeleteIdentity is the delete from the source partition.
	StepDeleteIdentity MigrationStep = "delete_identity"

	// StepWriteProfile is the profile document write.
	StepWriteProfile MigrationStep = "write_profile"

	// StepDeleteProfile is the profile document delete (account deletion).
	StepDeleteProfile MigrationStep = "delete_profile"
)

// MigrationRecord is a journal row tracking one cross-partition migration.
type MigrationRecord struct {
	// ID is the journal id of the migration.
	ID uuid.UUID

	// Op is the operation kind.
	Op MigrationOp

	// UserID is the profile the migration belongs to.
	UserID string

	// OldRole and OldEmail locate the identity before the migration.
	OldRole  Role
	OldEmail string

	// NewRole and NewEmail locate the identity after the migration. Unused
	// for account deletions.
	NewRole  Role
	NewEmail string

	// NewAttributes is the profile attribute map after the migration, so a
	// re-driven migration commits the full target state. Unused for account
	// deletions.
	NewAttributes map[string]any

	// State is the current journal state.
	State MigrationState

	// FailedStep is set when State is MigrationFailed.
	FailedStep MigrationStep

	// LastError is the message of the last failure, if any.
	LastError string

	// Attempts counts how many times the migration has been driven.
	Attempts int

	// CreatedAt is the time at which the migration started.
	CreatedAt time.Time

	// UpdatedAt is the time of the last state transition.
	UpdatedAt time.Time
}

// Finished reports whether the record reached a terminal committed state.
func (r *MigrationRecord) Finished() bool {
	return r.State == MigrationCommitted
}
