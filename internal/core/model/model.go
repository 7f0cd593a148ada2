package model

import (
	"time"
)

// Role is the application-level role of a user. The wire value of the
// organizer role is "orga", matching the role claim issued at login.
type Role string

const (
	// RoleUser is the default role of a signed-up user.
	RoleUser Role = "user"

	// RoleOrganizer identifies event organizers.
	RoleOrganizer Role = "orga"

	// RoleAdmin identifies administrators.
	RoleAdmin Role = "admin"
)

// ParseRole parses a role string. Unknown values default to RoleUser and
// report false, mirroring the sign-up behavior where an unrecognized role
// lands in the user partition.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return Role(s), true
	default:
		return RoleUser, false
	}
}

// Partition names one of the three disjoint identity stores. Every identity
// record lives in exactly one partition at a time.
type Partition string

const (
	// PartitionUsers holds identities of plain users.
	PartitionUsers Partition = "users"

	// PartitionOrganizers holds identities of event organizers.
	PartitionOrganizers Partition = "organizers"

	// PartitionAdmins holds identities of administrators.
	PartitionAdmins Partition = "admins"
)

// PartitionFor resolves the identity partition owning identities of the
// given role. Unknown roles map to the users partition.
func PartitionFor(r Role) Partition {
	switch r {
	case RoleAdmin:
		return PartitionAdmins
	case RoleOrganizer:
		return PartitionOrganizers
	default:
		return PartitionUsers
	}
}

// RoleFor is the inverse of PartitionFor: the role whose identities the
// partition owns.
func RoleFor(p Partition) Role {
	switch p {
	case PartitionAdmins:
		return RoleAdmin
	case PartitionOrganizers:
		return RoleOrganizer
	default:
		return RoleUser
	}
}

// Profile is the document-store record of a user. Its Role must match the
// single identity partition holding the corresponding identity record after
// every successful operation.
type Profile struct {
	// UserID is the opaque identifier assigned by the identity store at
	// first creation. Stable for the profile's lifetime.
	UserID string `json:"user_id"`

	// Email is the user email. It is also the identity record key inside
	// its partition.
	Email string `json:"email"`

	// Role is the current role of the user.
	Role Role `json:"role"`

	// Attributes holds arbitrary caller-supplied profile fields.
	Attributes map[string]any `json:"attributes,omitempty"`

	// Version is the optimistic-concurrency stamp of the document.
	// Zero means the profile has not been persisted yet.
	Version int64 `json:"version"`

	// CreatedAt is the time at which the profile was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the time at which the profile was last updated.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Event is an event open for registrations.
type Event struct {
	// EventID is generated at creation and immutable.
	EventID string `json:"event_id"`

	// Title is the event title.
	Title string `json:"title"`

	// Description is the event description.
	Description string `json:"description,omitempty"`

	// Location is where the event takes place.
	Location string `json:"location,omitempty"`

	// StartsAt is the event start time.
	StartsAt time.Time `json:"starts_at,omitempty"`

	// Registrations holds the user-ids registered to the event. The store
	// enforces no uniqueness; duplicates are permitted on add.
	Registrations []string `json:"registrations"`

	// Version is the optimistic-concurrency stamp of the document.
	Version int64 `json:"version"`

	// CreatedAt is the time at which the event was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the time at which the event was last updated.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Stock is a stock item. Stock items carry no relationship to events.
type Stock struct {
	// StockID is generated at creation and immutable.
	StockID string `json:"stock_id"`

	// Label describes the stock item.
	Label string `json:"label"`

	// Quantity is the available quantity.
	Quantity int64 `json:"quantity"`

	// Version is the optimistic-concurrency stamp of the document.
	Version int64 `json:"version"`

	// CreatedAt is the time at which the stock item was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the time at which the stock item was last updated.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ClaimSet is the decoded payload of a verified bearer credential. The role
// claim is normalized into a set at the verification boundary so that
// callers never deal with the scalar-or-list ambiguity of the raw claim.
type ClaimSet struct {
	// Subject is the token subject, normally the user-id.
	Subject string

	// Email is the email claim, if present.
	Email string

	// Roles is the normalized set of role claims. May be empty.
	Roles []Role
}

// HasAny reports whether the claim set carries at least one of the given
// roles.
func (c *ClaimSet) HasAny(roles ...Role) bool {
	if c == nil {
		return false
	}
	for _, have := range c.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Identity is a credential record inside one identity partition, keyed by
// email within the partition's namespace.
type Identity struct {
	// Subject is the identifier assigned by the identity store at creation.
	// It becomes the UserID of the corresponding profile.
	Subject string

	// Partition is the partition currently owning the record.
	Partition Partition

	// Email is the record key inside the partition.
	Email string

	// PasswordHash is the argon2id hash of the current credential.
	PasswordHash string

	// CreatedAt is the time at which the identity was created.
	CreatedAt time.Time
}

// ProfileEvent collects a profile change. It can represent creation, update
// and deletion of a profile.
type ProfileEvent struct {
	// ID is the event id.
	ID string `json:"id"`

	// Before is the profile state before the change. Nil on creations.
	Before *Profile `json:"before,omitempty"`

	// After is the profile state after the change. Nil on deletions.
	After *Profile `json:"after,omitempty"`
}

// OutboxEntry is a profile event staged for publication.
type OutboxEntry struct {
	// ID is the outbox sequence number.
	ID int64

	// Event is the staged profile event.
	Event ProfileEvent

	// CreatedAt is the time at which the entry was appended.
	CreatedAt time.Time
}
