package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"

	"github.com/eventala/eventala/internal/core/model"
	"github.com/eventala/eventala/internal/core/ports"
)

// deliveryMediumEmail is the channel over which temporary credentials are
// issued after a cross-partition move.
const deliveryMediumEmail = "EMAIL"

// RoleMigratorArgs contains the mandatory arguments for the RoleMigrator.
type RoleMigratorArgs struct {
	// Profiles is the profile document store.
	Profiles ports.ProfileStore

	// Identities is the partitioned credential store.
	Identities ports.IdentityStore

	// Journal persists migration progress for reconciliation.
	Journal ports.MigrationJournal
}

// NewRoleMigrator creates a new RoleMigrator.
func NewRoleMigrator(args RoleMigratorArgs) *RoleMigrator {
	return &RoleMigrator{
		profiles:   args.Profiles,
		identities: args.Identities,
		journal:    args.Journal,
	}
}

// RoleMigrator moves a user's identity record between partitions when the
// role changes, keeping the profile consistent with exactly one partition.
//
// The move is not atomic across the two stores. Steps therefore run
// create-before-delete, each step is idempotent (creating an already-present
// identity and deleting an already-absent one are no-op successes), and
// progress is journaled so an interrupted migration can be re-driven to
// completion. The worst partial outcome under this ordering is a duplicate
// identity with a stale profile role, never an identity held by no
// partition.
type RoleMigrator struct {
	profiles   ports.ProfileStore
	identities ports.IdentityStore
	journal    ports.MigrationJournal
}

// Migrate applies an update to the profile. When the role is unchanged it
// performs a single conditional profile write and touches no identity
// partition. When the role changes it runs the journaled cross-partition
// move and returns the updated profile once the invariant holds again.
//
// A failure after the first identity side effect is reported as a
// *model.PartialMigrationError carrying the journal id.
func (m *RoleMigrator) Migrate(ctx context.Context, current *model.Profile, args model.UpdateProfileArgs) (*model.Profile, error) {
	updated := &model.Profile{
		UserID:     current.UserID,
		Email:      args.Email,
		Role:       args.Role,
		Attributes: scrubAttributes(args.Attributes),
		Version:    current.Version,
		CreatedAt:  current.CreatedAt,
	}
	if updated.Email == "" {
		updated.Email = current.Email
	}
	if updated.Role == "" {
		updated.Role = current.Role
	}

	if updated.Role == current.Role {
		if err := m.profiles.PutProfile(ctx, updated); err != nil {
			return nil, fmt.Errorf("error writing profile: %w", err)
		}
		return updated, nil
	}

	record := &model.MigrationRecord{
		Op:            model.OpRoleChange,
		UserID:        current.UserID,
		OldRole:       current.Role,
		OldEmail:      current.Email,
		NewRole:       updated.Role,
		NewEmail:      updated.Email,
		NewAttributes: updated.Attributes,
	}
	if err := m.journal.Begin(ctx, record); err != nil {
		return nil, fmt.Errorf("error opening migration journal: %w", err)
	}

	if err := m.runRoleChange(ctx, record, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAccount removes the identity from whichever partition currently
// holds it and then deletes the profile document. Same two-store exposure
// and same journaled treatment as a role change.
func (m *RoleMigrator) DeleteAccount(ctx context.Context, current *model.Profile) error {
	record := &model.MigrationRecord{
		Op:       model.OpAccountDelete,
		UserID:   current.UserID,
		OldRole:  current.Role,
		OldEmail: current.Email,
	}
	if err := m.journal.Begin(ctx, record); err != nil {
		return fmt.Errorf("error opening migration journal: %w", err)
	}
	return m.runAccountDelete(ctx, record)
}

// Resume re-drives an unfinished migration from the step it stopped at.
// All steps are idempotent, so re-running an already-completed step is
// harmless. Used by the reconciliation job.
func (m *RoleMigrator) Resume(ctx context.Context, record model.MigrationRecord) error {
	if record.Finished() {
		return nil
	}
	if record.Op == model.OpAccountDelete {
		return m.runAccountDelete(ctx, &record)
	}

	profile, err := m.profiles.GetProfile(ctx, record.UserID)
	if err != nil {
		return fmt.Errorf("error loading profile for migration %s: %w", record.ID, err)
	}
	// the journal carries the full target state, so a re-drive commits the
	// same profile the interrupted request would have written
	profile.Email = record.NewEmail
	profile.Role = record.NewRole
	profile.Attributes = record.NewAttributes
	return m.runRoleChange(ctx, &record, profile)
}

func (m *RoleMigrator) runRoleChange(ctx context.Context, record *model.MigrationRecord, updated *model.Profile) error {
	step := resumeStep(record)

	if step == model.StepCreateIdentity {
		hash, err := temporaryCredentialHash()
		if err != nil {
			return m.failed(ctx, record, model.StepCreateIdentity, err, false)
		}
		_, err = m.identities.CreateInPartition(ctx, model.PartitionFor(record.NewRole), ports.CreateIdentityArgs{
			Email:          record.NewEmail,
			PasswordHash:   hash,
			DeliveryMedium: deliveryMediumEmail,
		})
		if err != nil && !errors.Is(err, model.ErrAlreadyExists) {
			return m.failed(ctx, record, model.StepCreateIdentity, err, false)
		}
		if err := m.journal.MarkState(ctx, record.ID, model.MigrationIdentityCreated); err != nil {
			return m.failed(ctx, record, model.StepCreateIdentity, err, true)
		}
		step = model.StepDeleteIdentity
	}

	if step == model.StepDeleteIdentity {
		err := m.identities.DeleteFromPartition(ctx, model.PartitionFor(record.OldRole), record.OldEmail)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return m.failed(ctx, record, model.StepDeleteIdentity, err, true)
		}
		if err := m.journal.MarkState(ctx, record.ID, model.MigrationIdentityDeleted); err != nil {
			return m.failed(ctx, record, model.StepDeleteIdentity, err, true)
		}
	}

	if err := m.profiles.PutProfile(ctx, updated); err != nil {
		return m.failed(ctx, record, model.StepWriteProfile, err, true)
	}
	if err := m.journal.MarkState(ctx, record.ID, model.MigrationCommitted); err != nil {
		return m.failed(ctx, record, model.StepWriteProfile, err, true)
	}
	return nil
}

func (m *RoleMigrator) runAccountDelete(ctx context.Context, record *model.MigrationRecord) error {
	step := resumeStep(record)

	if step != model.StepDeleteProfile {
		err := m.identities.DeleteFromPartition(ctx, model.PartitionFor(record.OldRole), record.OldEmail)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return m.failed(ctx, record, model.StepDeleteIdentity, err, false)
		}
		if err := m.journal.MarkState(ctx, record.ID, model.MigrationIdentityDeleted); err != nil {
			return m.failed(ctx, record, model.StepDeleteIdentity, err, true)
		}
	}

	err := m.profiles.DeleteProfile(ctx, record.UserID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return m.failed(ctx, record, model.StepDeleteProfile, err, true)
	}
	if err := m.journal.MarkState(ctx, record.ID, model.MigrationCommitted); err != nil {
		return m.failed(ctx, record, model.StepDeleteProfile, err, true)
	}
	return nil
}

// failed records the failing step in the journal and shapes the returned
// error. Failures occurring before any identity side effect surface as plain
// store errors; later ones as PartialMigrationError so operators can tell a
// half-completed migration from a clean failure.
func (m *RoleMigrator) failed(ctx context.Context, record *model.MigrationRecord, step model.MigrationStep, cause error, partial bool) error {
	if err := m.journal.MarkFailed(ctx, record.ID, step, cause); err != nil {
		cause = errors.Join(cause, fmt.Errorf("additionally failed to journal the failure: %w", err))
	}
	if !partial {
		return fmt.Errorf("migration %s failed before taking effect: %w", record.ID, cause)
	}
	return &model.PartialMigrationError{MigrationID: record.ID, Step: step, Err: cause}
}

// resumeStep maps the journaled state to the first step left to run.
func resumeStep(record *model.MigrationRecord) model.MigrationStep {
	switch record.State {
	case model.MigrationIdentityCreated:
		return model.StepDeleteIdentity
	case model.MigrationIdentityDeleted:
		if record.Op == model.OpAccountDelete {
			return model.StepDeleteProfile
		}
		return model.StepWriteProfile
	case model.MigrationFailed:
		if record.FailedStep != "" {
			return record.FailedStep
		}
	}
	if record.Op == model.OpAccountDelete {
		return model.StepDeleteIdentity
	}
	return model.StepCreateIdentity
}

// temporaryCredentialHash generates and hashes a fresh one-time credential
// for the identity created in the target partition.
func temporaryCredentialHash() (string, error) {
	hash, err := argon2id.CreateHash(uuid.NewString(), argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("error hashing temporary credential: %w", err)
	}
	return hash, nil
}
