package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventala/eventala/internal/core/model"
	"github.com/eventala/eventala/internal/core/ports"
)

// fakeProfileStore is an in-memory ProfileStore.
type fakeProfileStore struct {
	profiles    map[string]*model.Profile
	putCalls    int
	deleteCalls int
	failPut     error
	failDelete  error
}

func newFakeProfileStore(profiles ...*model.Profile) *fakeProfileStore {
	f := &fakeProfileStore{profiles: map[string]*model.Profile{}}
	for _, p := range profiles {
		cp := *p
		f.profiles[p.UserID] = &cp
	}
	return f
}

func (f *fakeProfileStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileStore) PutProfile(ctx context.Context, profile *model.Profile) error {
	f.putCalls++
	if f.failPut != nil {
		return f.failPut
	}
	profile.Version++
	cp := *profile
	f.profiles[profile.UserID] = &cp
	return nil
}

func (f *fakeProfileStore) DeleteProfile(ctx context.Context, userID string) error {
	f.deleteCalls++
	if f.failDelete != nil {
		return f.failDelete
	}
	if _, ok := f.profiles[userID]; !ok {
		return model.ErrNotFound
	}
	delete(f.profiles, userID)
	return nil
}

func (f *fakeProfileStore) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	var out []model.Profile
	for _, p := range f.profiles {
		out = append(out, *p)
	}
	return out, nil
}

// fakeIdentityStore is an in-memory partitioned IdentityStore.
type fakeIdentityStore struct {
	partitions  map[model.Partition]map[string]*model.Identity
	createCalls int
	deleteCalls int
	failCreate  error
	failDelete  error
}

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{partitions: map[model.Partition]map[string]*model.Identity{
		model.PartitionUsers:      {},
		model.PartitionOrganizers: {},
		model.PartitionAdmins:     {},
	}}
}

func (f *fakeIdentityStore) seed(partition model.Partition, email string) {
	f.partitions[partition][email] = &model.Identity{
		Subject:   uuid.NewString(),
		Partition: partition,
		Email:     email,
	}
}

func (f *fakeIdentityStore) holds(partition model.Partition, email string) bool {
	_, ok := f.partitions[partition][email]
	return ok
}

func (f *fakeIdentityStore) CreateInPartition(ctx context.Context, partition model.Partition, args ports.CreateIdentityArgs) (string, error) {
	f.createCalls++
	if f.failCreate != nil {
		return "", f.failCreate
	}
	if _, ok := f.partitions[partition][args.Email]; ok {
		return "", model.ErrAlreadyExists
	}
	identity := &model.Identity{
		Subject:      uuid.NewString(),
		Partition:    partition,
		Email:        args.Email,
		PasswordHash: args.PasswordHash,
	}
	f.partitions[partition][args.Email] = identity
	return identity.Subject, nil
}

func (f *fakeIdentityStore) DeleteFromPartition(ctx context.Context, partition model.Partition, email string) error {
	f.deleteCalls++
	if f.failDelete != nil {
		return f.failDelete
	}
	if _, ok := f.partitions[partition][email]; !ok {
		return model.ErrNotFound
	}
	delete(f.partitions[partition], email)
	return nil
}

func (f *fakeIdentityStore) FindByEmail(ctx context.Context, email string) (*model.Identity, error) {
	for _, records := range f.partitions {
		if identity, ok := records[email]; ok {
			return identity, nil
		}
	}
	return nil, model.ErrNotFound
}

// fakeJournal is an in-memory MigrationJournal.
type fakeJournal struct {
	records   map[uuid.UUID]*model.MigrationRecord
	failBegin error
	failMark  error
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{records: map[uuid.UUID]*model.MigrationRecord{}}
}

func (f *fakeJournal) single(t *testing.T) *model.MigrationRecord {
	t.Helper()
	require.Len(t, f.records, 1)
	for _, r := range f.records {
		return r
	}
	return nil
}

func (f *fakeJournal) Begin(ctx context.Context, record *model.MigrationRecord) error {
	if f.failBegin != nil {
		return f.failBegin
	}
	record.ID = uuid.New()
	record.State = model.MigrationStarted
	record.Attempts = 1
	cp := *record
	f.records[record.ID] = &cp
	return nil
}

func (f *fakeJournal) MarkState(ctx context.Context, id uuid.UUID, state model.MigrationState) error {
	if f.failMark != nil {
		return f.failMark
	}
	record, ok := f.records[id]
	if !ok {
		return model.ErrNotFound
	}
	record.State = state
	return nil
}

func (f *fakeJournal) MarkFailed(ctx context.Context, id uuid.UUID, step model.MigrationStep, cause error) error {
	record, ok := f.records[id]
	if !ok {
		return model.ErrNotFound
	}
	record.State = model.MigrationFailed
	record.FailedStep = step
	if cause != nil {
		record.LastError = cause.Error()
	}
	record.Attempts++
	return nil
}

func (f *fakeJournal) ListUnfinished(ctx context.Context, olderThan time.Time, limit int) ([]model.MigrationRecord, error) {
	var out []model.MigrationRecord
	for _, record := range f.records {
		if record.State != model.MigrationCommitted {
			out = append(out, *record)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func testMigrator(profiles *fakeProfileStore, identities *fakeIdentityStore, journal *fakeJournal) *RoleMigrator {
	return NewRoleMigrator(RoleMigratorArgs{
		Profiles:   profiles,
		Identities: identities,
		Journal:    journal,
	})
}

func TestRoleMigrator_SameRoleSkipsIdentityPartitions(t *testing.T) {
	profiles := newFakeProfileStore(&model.Profile{UserID: "u1", Email: "a@x.com", Role: model.RoleUser, Version: 1})
	identities := newFakeIdentityStore()
	journal := newFakeJournal()
	migrator := testMigrator(profiles, identities, journal)

	current, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)

	updated, err := migrator.Migrate(context.Background(), current, model.UpdateProfileArgs{
		UserID:     "u1",
		Email:      "a@x.com",
		Role:       model.RoleUser,
		Attributes: map[string]any{"nickname": "al"},
	})
	require.NoError(t, err)

	assert.Zero(t, identities.createCalls)
	assert.Zero(t, identities.deleteCalls)
	assert.Equal(t, 1, profiles.putCalls)
	assert.Equal(t, model.RoleUser, updated.Role)
	assert.Equal(t, "al", updated.Attributes["nickname"])
	assert.Empty(t, journal.records)
}

func TestRoleMigrator_EmptyRoleKeepsTheCurrentOne(t *testing.T) {
	profiles := newFakeProfileStore(&model.Profile{UserID: "u1", Email: "a@x.com", Role: model.RoleAdmin, Version: 1})
	identities := newFakeIdentityStore()
	identities.seed(model.PartitionAdmins, "a@x.com")
	journal := newFakeJournal()
	migrator := testMigrator(profiles, identities, journal)

	current, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)

	updated, err := migrator.Migrate(context.Background(), current, model.UpdateProfileArgs{
		UserID:     "u1",
		Attributes: map[string]any{"nickname": "al"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.RoleAdmin, updated.Role)
	assert.Zero(t, identities.createCalls)
	assert.Zero(t, identities.deleteCalls)
	assert.True(t, identities.holds(model.PartitionAdmins, "a@x.com"))
	assert.Empty(t, journal.records)
}

func TestRoleMigrator_MovesIdentityForAllRolePairs(t *testing.T) {
	roles := []model.Role{model.RoleUser, model.RoleOrganizer, model.RoleAdmin}
	for _, oldRole := range roles {
		for _, newRole := range roles {
			if oldRole == newRole {
				continue
			}
			t.Run(fmt.Sprintf("%s to %s", oldRole, newRole), func(t *testing.T) {
				profiles := newFakeProfileStore(&model.Profile{UserID: "u1", Email: "a@x.com", Role: oldRole, Version: 1})
				identities := newFakeIdentityStore()
				identities.seed(model.PartitionFor(oldRole), "a@x.com")
				journal := newFakeJournal()
				migrator := testMigrator(profiles, identities, journal)

				current, err := profiles.GetProfile(context.Background(), "u1")
				require.NoError(t, err)

				updated, err := migrator.Migrate(context.Background(), current, model.UpdateProfileArgs{
					UserID: "u1",
					Email:  "a@x.com",
					Role:   newRole,
				})
				require.NoError(t, err)

				assert.False(t, identities.holds(model.PartitionFor(oldRole), "a@x.com"), "identity must leave the old partition")
				assert.True(t, identities.holds(model.PartitionFor(newRole), "a@x.com"), "identity must arrive in the new partition")
				assert.Equal(t, newRole, updated.Role)

				stored, err := profiles.GetProfile(context.Background(), "u1")
				require.NoError(t, err)
				assert.Equal(t, newRole, stored.Role)
				assert.Equal(t, model.MigrationCommitted, journal.single(t).State)
			})
		}
	}
}

func TestRoleMigrator_UserToAdmin(t *testing.T) {
	profiles := newFakeProfileStore(&model.Profile{UserID: "u1", Email: "a@x.com", Role: model.RoleUser, Version: 1})
	identities := newFakeIdentityStore()
	identities.seed(model.PartitionUsers, "a@x.com")
	journal := newFakeJournal()
	migrator := testMigrator(profiles, identities, journal)

	current, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)

	updated, err := migrator.Migrate(context.Background(), current, model.UpdateProfileArgs{
		UserID: "u1",
		Email:  "a@x.com",
		Role:   model.RoleAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, identities.createCalls)
	assert.Equal(t, 1, identities.deleteCalls)
	assert.Equal(t, 1, profiles.putCalls)
	assert.False(t, identities.holds(model.PartitionUsers, "a@x.com"))
	assert.True(t, identities.holds(model.PartitionAdmins, "a@x.com"))
	assert.Equal(t, model.RoleAdmin, updated.Role)
}

func TestRoleMigrator_CreateFailureIsNotPartial(t *testing.T) {
	profiles := newFakeProfileStore(&model.Profile{UserID: "u1", Email: "a@x.com", Role: model.RoleUser, Version: 1})
	identities := newFakeIdentityStore()
	identities.seed(model.PartitionUsers, "a@x.com")
	identities.failCreate = errors.New("partition unavailable")
	journal := newFakeJournal()
	migrator := testMigrator(profiles, identities, journal)

	current, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)

	_, err = migrator.Migrate(context.Background(), current, model.UpdateProfileArgs{
		UserID: "u1", Email: "a@x.com", Role: model.RoleAdmin,
	})
	require.Error(t, err)

	var partial *model.PartialMigrationError
	assert.False(t, errors.As(err, &partial), "failure before any side effect must not be partial")

	record := journal.single(t)
	assert.Equal(t, model.MigrationFailed, record.State)
	assert.Equal(t, model.StepCreateIdentity, record.FailedStep)

	// nothing moved
	assert.True(t, identities.holds(model.PartitionUsers, "a@x.com"))
	assert.Zero(t, profiles.putCalls)
}

func TestRoleMigrator_DeleteFailureIsPartial(t *testing.T) {
	profiles := newFakeProfileStore(&model.Profile{UserID: "u1", Email: "a@x.com", Role: model.RoleUser, Version: 1})
	identities := newFakeIdentityStore()
	identities.seed(model.PartitionUsers, "a@x.com")
	journal := newFakeJournal()
	migrator := testMigrator(profiles, identities, journal)

	current, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)

	identities.failDelete = errors.New("partition unavailable")
	_, err = migrator.Migrate(context.Background(), current, model.UpdateProfileArgs{
		UserID: "u1", Email: "a@x.com", Role: model.RoleAdmin,
	})

	var partial *model.PartialMigrationError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, model.StepDeleteIdentity, partial.Step)

	record := journal.single(t)
	assert.Equal(t, model.MigrationFailed, record.State)
	assert.Equal(t, model.StepDeleteIdentity, record.FailedStep)
	assert.Equal(t, partial.MigrationID, record.ID)

	// create-before-delete: worst case is a duplicate, never a vanished identity
	assert.True(t, identities.holds(model.PartitionUsers, "a@x.com"))
	assert.True(t, identities.holds(model.PartitionAdmins, "a@x.com"))
}

func TestRoleMigrator_ProfileWriteFailureIsPartial(t *testing.T) {
	profiles := newFakeProfileStore(&model.Profile{UserID: "u1", Email: "a@x.com", Role: model.RoleUser, Version: 1})
	identities := newFakeIdentityStore()
	identities.seed(model.PartitionUsers, "a@x.com")
	journal := newFakeJournal()
	migrator := testMigrator(profiles, identities, journal)

	current, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)

	profiles.failPut = errors.New("document store unavailable")
	_, err = migrator.Migrate(context.Background(), current, model.UpdateProfileArgs{
		UserID: "u1", Email: "a@x.com", Role: model.RoleAdmin,
	})

	var partial *model.PartialMigrationError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, model.StepWriteProfile, partial.Step)

	// the identity already moved, the profile is stale
	assert.False(t, identities.holds(model.PartitionUsers, "a@x.com"))
	assert.True(t, identities.holds(model.PartitionAdmins, "a@x.com"))
}

func TestRoleMigrator_ResumeAppliesTheJournaledAttributes(t *testing.T) {
	profiles := newFakeProfileStore(&model.Profile{
		UserID:     "u1",
		Email:      "a@x.com",
		Role:       model.RoleUser,
		Attributes: map[string]any{"nickname": "old"},
		Version:    1,
	})
	identities := newFakeIdentityStore()
	identities.seed(model.PartitionUsers, "a@x.com")
	journal := newFakeJournal()
	migrator := testMigrator(profiles, identities, journal)

	current, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)

	profiles.failPut = errors.New("document store unavailable")
	_, err = migrator.Migrate(context.Background(), current, model.UpdateProfileArgs{
		UserID:     "u1",
		Email:      "a@x.com",
		Role:       model.RoleAdmin,
		Attributes: map[string]any{"nickname": "new"},
	})

	var partial *model.PartialMigrationError
	require.ErrorAs(t, err, &partial)
	require.Equal(t, model.StepWriteProfile, partial.Step)

	profiles.failPut = nil
	require.NoError(t, migrator.Resume(context.Background(), *journal.records[partial.MigrationID]))

	stored, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, stored.Role)
	assert.Equal(t, "new", stored.Attributes["nickname"], "the re-drive must commit the requested attributes, not the stale ones")
	assert.Equal(t, model.MigrationCommitted, journal.records[partial.MigrationID].State)
}

func TestRoleMigrator_StepsAreIdempotent(t *testing.T) {
	profiles := newFakeProfileStore(&model.Profile{UserID: "u1", Email: "a@x.com", Role: model.RoleUser, Version: 1})
	identities := newFakeIdentityStore()
	// identity already in the target partition and gone from the source,
	// as left behind by an interrupted earlier attempt
	identities.seed(model.PartitionAdmins, "a@x.com")
	journal := newFakeJournal()
	migrator := testMigrator(profiles, identities, journal)

	current, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)

	updated, err := migrator.Migrate(context.Background(), current, model.UpdateProfileArgs{
		UserID: "u1", Email: "a@x.com", Role: model.RoleAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, model.RoleAdmin, updated.Role)
	assert.True(t, identities.holds(model.PartitionAdmins, "a@x.com"))
	assert.Equal(t, model.MigrationCommitted, journal.single(t).State)
}

func TestRoleMigrator_ResumeFromFailedDelete(t *testing.T) {
	profiles := newFakeProfileStore(&model.Profile{UserID: "u1", Email: "a@x.com", Role: model.RoleUser, Version: 1})
	identities := newFakeIdentityStore()
	// duplicate left behind by a migration that failed between create and delete
	identities.seed(model.PartitionUsers, "a@x.com")
	identities.seed(model.PartitionAdmins, "a@x.com")
	journal := newFakeJournal()
	migrator := testMigrator(profiles, identities, journal)

	record := &model.MigrationRecord{
		Op:       model.OpRoleChange,
		UserID:   "u1",
		OldRole:  model.RoleUser,
		OldEmail: "a@x.com",
		NewRole:  model.RoleAdmin,
		NewEmail: "a@x.com",
	}
	require.NoError(t, journal.Begin(context.Background(), record))
	require.NoError(t, journal.MarkFailed(context.Background(), record.ID, model.StepDeleteIdentity, errors.New("partition unavailable")))

	require.NoError(t, migrator.Resume(context.Background(), *journal.records[record.ID]))

	assert.Zero(t, identities.createCalls, "resume must not re-run the completed create step")
	assert.False(t, identities.holds(model.PartitionUsers, "a@x.com"))
	assert.True(t, identities.holds(model.PartitionAdmins, "a@x.com"))

	stored, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, stored.Role)
	assert.Equal(t, model.MigrationCommitted, journal.records[record.ID].State)
}

func TestRoleMigrator_DeleteAccount(t *testing.T) {
	profiles := newFakeProfileStore(&model.Profile{UserID: "u1", Email: "a@x.com", Role: model.RoleOrganizer, Version: 1})
	identities := newFakeIdentityStore()
	identities.seed(model.PartitionOrganizers, "a@x.com")
	journal := newFakeJournal()
	migrator := testMigrator(profiles, identities, journal)

	current, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)

	require.NoError(t, migrator.DeleteAccount(context.Background(), current))

	assert.False(t, identities.holds(model.PartitionOrganizers, "a@x.com"))
	_, err = profiles.GetProfile(context.Background(), "u1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, model.MigrationCommitted, journal.single(t).State)
}

func TestRoleMigrator_DeleteAccountProfileFailureIsPartial(t *testing.T) {
	profiles := newFakeProfileStore(&model.Profile{UserID: "u1", Email: "a@x.com", Role: model.RoleUser, Version: 1})
	profiles.failDelete = errors.New("document store unavailable")
	identities := newFakeIdentityStore()
	identities.seed(model.PartitionUsers, "a@x.com")
	journal := newFakeJournal()
	migrator := testMigrator(profiles, identities, journal)

	current, err := profiles.GetProfile(context.Background(), "u1")
	require.NoError(t, err)

	err = migrator.DeleteAccount(context.Background(), current)

	var partial *model.PartialMigrationError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, model.StepDeleteProfile, partial.Step)
	assert.False(t, identities.holds(model.PartitionUsers, "a@x.com"))
}
