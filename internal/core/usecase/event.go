package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/eventala/eventala/internal/core/model"
	"github.com/eventala/eventala/internal/core/ports"
)

// editRetries bounds the retry loop of read-modify-write sequences when a
// conditional write lost against a concurrent editor.
const editRetries = 3

// EventServiceArgs contains the mandatory arguments for the EventService.
type EventServiceArgs struct {
	// Events is the event document store.
	Events ports.EventStore
}

// NewEventService creates a new EventService.
func NewEventService(args EventServiceArgs) *EventService {
	return &EventService{events: args.Events}
}

// EventService gathers the functionality around events and their
// registration lists.
type EventService struct {
	events ports.EventStore
}

// CreateEvent creates an event with a generated immutable id.
func (s *EventService) CreateEvent(ctx context.Context, args model.CreateEventArgs) (*model.CreateEventResponse, error) {
	event := &model.Event{
		EventID:       uuid.NewString(),
		Title:         args.Title,
		Description:   args.Description,
		Location:      args.Location,
		StartsAt:      args.StartsAt,
		Registrations: []string{},
	}
	if err := s.events.PutEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("error saving event: %w", err)
	}
	return &model.CreateEventResponse{Event: *event}, nil
}

// GetEvent fetches an event by id.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("error fetching event: %w", err)
	}
	return event, nil
}

// ListEvents scans all events.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	return events, nil
}

// UpdateEvent replaces the descriptive fields of an event. The registration
// list is owned by the registration operations and survives the update.
func (s *EventService) UpdateEvent(ctx context.Context, args model.UpdateEventArgs) (*model.UpdateEventResponse, error) {
	var updated *model.Event
	err := s.edit(ctx, args.EventID, func(event *model.Event) {
		event.Title = args.Title
		event.Description = args.Description
		event.Location = args.Location
		event.StartsAt = args.StartsAt
		updated = event
	})
	if err != nil {
		return nil, err
	}
	return &model.UpdateEventResponse{Event: *updated}, nil
}

// DeleteEvent removes the event.
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	return nil
}

// Register appends the user to the event's registration list. Duplicates
// are permitted.
func (s *EventService) Register(ctx context.Context, args model.RegistrationArgs) (*model.RegistrationResponse, error) {
	var updated *model.Event
	err := s.edit(ctx, args.EventID, func(event *model.Event) {
		event.Registrations = AddRegistration(event.Registrations, args.UserID)
		updated = event
	})
	if err != nil {
		return nil, err
	}
	return &model.RegistrationResponse{Event: *updated}, nil
}

// Unregister removes the first matching registration of the user from the
// event. An absent registration is a no-op.
func (s *EventService) Unregister(ctx context.Context, args model.RegistrationArgs) (*model.RegistrationResponse, error) {
	var updated *model.Event
	err := s.edit(ctx, args.EventID, func(event *model.Event) {
		event.Registrations = RemoveRegistration(event.Registrations, args.UserID)
		updated = event
	})
	if err != nil {
		return nil, err
	}
	return &model.RegistrationResponse{Event: *updated}, nil
}

// edit runs a read-modify-write sequence under optimistic concurrency: the
// write is conditional on the version read, and a lost race re-reads and
// re-applies the edit up to editRetries times before surfacing the conflict.
func (s *EventService) edit(ctx context.Context, eventID string, apply func(*model.Event)) error {
	for attempt := 0; attempt < editRetries; attempt++ {
		event, err := s.events.GetEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("error fetching event: %w", err)
		}

		apply(event)

		err = s.events.PutEvent(ctx, event)
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrConflict) {
			return fmt.Errorf("error writing event: %w", err)
		}
	}
	return model.ErrConflict
}
