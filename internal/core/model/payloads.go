package model

import "time"

// CreateProfileArgs contain the arguments of the CreateProfile method.
type CreateProfileArgs struct {
	// Email is the user email, the identity key inside its partition.
	Email string

	// Role selects the identity partition. Unrecognized values land in the
	// users partition.
	Role Role

	// TemporaryPassword is the initial credential. It is hashed before it
	// reaches the identity store and never stored on the profile.
	TemporaryPassword string

	// Attributes are arbitrary profile fields supplied by the caller.
	Attributes map[string]any
}

// CreateProfileResponse contains the response of the CreateProfile method.
type CreateProfileResponse struct {
	// Profile is the created profile, with the identity-assigned UserID.
	Profile Profile
}

// UpdateProfileArgs contain the arguments of the UpdateProfile method.
type UpdateProfileArgs struct {
	// UserID is the id of the profile to update.
	UserID string

	// Email is the email after the update.
	Email string

	// Role is the requested role. A value differing from the stored role
	// triggers a cross-partition migration; empty keeps the stored role.
	Role Role

	// Attributes replace the stored profile attributes.
	Attributes map[string]any
}

// UpdateProfileResponse contains the response of the UpdateProfile method.
type UpdateProfileResponse struct {
	// Profile is the updated profile.
	Profile Profile
}

// DeleteProfileArgs contains the arguments for deleting a profile.
type DeleteProfileArgs struct {
	// UserID is the id of the profile to delete.
	UserID string
}

// LoginArgs contain the credentials presented at login.
type LoginArgs struct {
	// Email is the login email.
	Email string

	// Password is the plain-text password.
	Password string
}

// LoginResponse contains the bearer token issued at login.
type LoginResponse struct {
	// Token is a signed JWT carrying the custom:role claim.
	Token string
}

// CreateEventArgs contain the arguments of the CreateEvent method.
type CreateEventArgs struct {
	// Title is the event title.
	Title string

	// Description is the event description.
	Description string

	// Location is where the event takes place.
	Location string

	// StartsAt is the event start time.
	StartsAt time.Time
}

// CreateEventResponse contains the response of the CreateEvent method.
type CreateEventResponse struct {
	// Event is the created event.
	Event Event
}

// UpdateEventArgs contain the arguments of the UpdateEvent method.
type UpdateEventArgs struct {
	// EventID is the id of the event to update.
	EventID string

	// Title is the event title.
	Title string

	// Description is the event description.
	Description string

	// Location is where the event takes place.
	Location string

	// StartsAt is the event start time.
	StartsAt time.Time
}

// UpdateEventResponse contains the response of the UpdateEvent method.
type UpdateEventResponse struct {
	// Event is the updated event.
	Event Event
}

// RegistrationArgs identify one registration edit on an event.
type RegistrationArgs struct {
	// EventID is the event to edit.
	EventID string

	// UserID is the registration candidate.
	UserID string
}

// RegistrationResponse contains the event after a registration edit.
type RegistrationResponse struct {
	// Event is the event with the updated registration list.
	Event Event
}

// CreateStockArgs contain the arguments of the CreateStock method.
type CreateStockArgs struct {
	// Label describes the stock item.
	Label string

	// Quantity is the available quantity.
	Quantity int64
}

// CreateStockResponse contains the response of the CreateStock method.
type CreateStockResponse struct {
	// Stock is the created stock item.
	Stock Stock
}

// UpdateStockArgs contain the arguments of the UpdateStock method.
type UpdateStockArgs struct {
	// StockID is the id of the stock item to update.
	StockID string

	// Label describes the stock item.
	Label string

	// Quantity is the available quantity.
	Quantity int64
}

// UpdateStockResponse contains the response of the UpdateStock method.
type UpdateStockResponse struct {
	// Stock is the updated stock item.
	Stock Stock
}
