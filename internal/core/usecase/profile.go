package usecase

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"
	log "github.com/sirupsen/logrus"

	"github.com/eventala/eventala/internal/core/model"
	"github.com/eventala/eventala/internal/core/ports"
)

// ProfileServiceArgs contains the mandatory arguments for the ProfileService.
type ProfileServiceArgs struct {
	// Profiles is the profile document store.
	Profiles ports.ProfileStore

	// Identities is the partitioned credential store.
	Identities ports.IdentityStore

	// Migrator coordinates cross-partition moves on role changes.
	Migrator *RoleMigrator

	// Outbox stages profile events for publication.
	Outbox ports.Outbox
}

// NewProfileService creates a new ProfileService.
func NewProfileService(args ProfileServiceArgs) *ProfileService {
	return &ProfileService{
		profiles:   args.Profiles,
		identities: args.Identities,
		migrator:   args.Migrator,
		outbox:     args.Outbox,
	}
}

// ProfileService gathers the functionality around the profile lifecycle.
type ProfileService struct {
	profiles   ports.ProfileStore
	identities ports.IdentityStore
	migrator   *RoleMigrator
	outbox     ports.Outbox
}

// CreateProfile creates the identity record in the partition selected by the
// requested role, then writes the profile document under the
// identity-assigned user-id. The temporary password is hashed before it
// reaches the identity store and never lands on the profile.
func (s *ProfileService) CreateProfile(ctx context.Context, args model.CreateProfileArgs) (*model.CreateProfileResponse, error) {
	hash, err := argon2id.CreateHash(args.TemporaryPassword, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("error creating password hash: %w", err)
	}

	role, _ := model.ParseRole(string(args.Role))
	subject, err := s.identities.CreateInPartition(ctx, model.PartitionFor(role), ports.CreateIdentityArgs{
		Email:          args.Email,
		PasswordHash:   hash,
		DeliveryMedium: deliveryMediumEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating identity: %w", err)
	}

	profile := &model.Profile{
		UserID:     subject,
		Email:      args.Email,
		Role:       role,
		Attributes: scrubAttributes(args.Attributes),
	}
	if err := s.profiles.PutProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("error saving profile: %w", err)
	}

	s.stage(ctx, model.ProfileEvent{ID: profile.UserID, After: profile})
	return &model.CreateProfileResponse{Profile: *profile}, nil
}

// GetProfile fetches a profile by user-id.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}
	return profile, nil
}

// ListProfiles scans all profiles.
func (s *ProfileService) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing profiles: %w", err)
	}
	return profiles, nil
}

// UpdateProfile updates a profile. A role differing from the stored one
// triggers the journaled cross-partition migration; otherwise a single
// conditional write is performed. Returns model.ErrNotFound if the ID does
// not correspond to an existing profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, args model.UpdateProfileArgs) (*model.UpdateProfileResponse, error) {
	current, err := s.profiles.GetProfile(ctx, args.UserID)
	if err != nil {
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}

	// an empty role keeps the stored one; only an explicit value is
	// normalized, so that an attribute-only update never demotes
	if args.Role != "" {
		role, _ := model.ParseRole(string(args.Role))
		args.Role = role
	}

	updated, err := s.migrator.Migrate(ctx, current, args)
	if err != nil {
		return nil, err
	}

	s.stage(ctx, model.ProfileEvent{ID: updated.UserID, Before: current, After: updated})
	return &model.UpdateProfileResponse{Profile: *updated}, nil
}

// DeleteProfile deletes the profile and the identity record from whichever
// partition currently holds it.
func (s *ProfileService) DeleteProfile(ctx context.Context, args model.DeleteProfileArgs) error {
	current, err := s.profiles.GetProfile(ctx, args.UserID)
	if err != nil {
		return fmt.Errorf("error fetching profile: %w", err)
	}

	if err := s.migrator.DeleteAccount(ctx, current); err != nil {
		return err
	}

	s.stage(ctx, model.ProfileEvent{ID: current.UserID, Before: current})
	return nil
}

// stage appends the event to the outbox. Publication is eventually
// consistent: a failed append is logged and does not fail the completed
// store operation.
func (s *ProfileService) stage(ctx context.Context, event model.ProfileEvent) {
	if err := s.outbox.Append(ctx, event); err != nil {
		log.WithError(err).WithField("user-id", event.ID).Error("error staging profile event in the outbox")
	}
}

// scrubAttributes drops credential material callers tend to echo into the
// free-form attribute map. Credentials belong to the identity store only.
func scrubAttributes(attributes map[string]any) map[string]any {
	if attributes == nil {
		return nil
	}
	scrubbed := make(map[string]any, len(attributes))
	for k, v := range attributes {
		if k == "password" || k == "temporary_password" {
			continue
		}
		scrubbed[k] = v
	}
	return scrubbed
}
