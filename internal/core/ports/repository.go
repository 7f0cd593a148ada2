package ports

import (
	"context"

	"github.com/eventala/eventala/internal/core/model"
)

// ProfileStore is the document-store gateway for profiles.
type ProfileStore interface {
	// GetProfile fetches a profile by user-id. Returns model.ErrNotFound
	// when absent.
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)

	// PutProfile durably writes the profile. A zero Version inserts; a
	// non-zero Version is a conditional write against the stored version
	// and returns model.ErrConflict when it lost against a concurrent
	// writer. On success the Version on the input is bumped.
	PutProfile(ctx context.Context, profile *model.Profile) error

	// DeleteProfile removes the profile. Deleting an absent profile
	// returns model.ErrNotFound.
	DeleteProfile(ctx context.Context, userID string) error

	// ListProfiles scans all profiles.
	ListProfiles(ctx context.Context) ([]model.Profile, error)
}

// EventStore is the document-store gateway for events.
type EventStore interface {
	// GetEvent fetches an event by id. Returns model.ErrNotFound when absent.
	GetEvent(ctx context.Context, eventID string) (*model.Event, error)

	// PutEvent durably writes the event, with the same version-conditional
	// semantics as ProfileStore.PutProfile.
	PutEvent(ctx context.Context, event *model.Event) error

	// DeleteEvent removes the event.
	DeleteEvent(ctx context.Context, eventID string) error

	// ListEvents scans all events.
	ListEvents(ctx context.Context) ([]model.Event, error)
}

// StockStore is the document-store gateway for stock items.
type StockStore interface {
	// GetStock fetches a stock item by id. Returns model.ErrNotFound when absent.
	GetStock(ctx context.Context, stockID string) (*model.Stock, error)

	// PutStock durably writes the stock item, with the same
	// version-conditional semantics as ProfileStore.PutProfile.
	PutStock(ctx context.Context, stock *model.Stock) error

	// DeleteStock removes the stock item.
	DeleteStock(ctx context.Context, stockID string) error

	// ListStocks scans all stock items.
	ListStocks(ctx context.Context) ([]model.Stock, error)
}
