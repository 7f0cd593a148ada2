package ports

import (
	"context"

	"github.com/eventala/eventala/internal/core/model"
)

// Sender is the port for publishing outbound profile events.
type Sender interface {
	// Send sends profile-event data.
	Send(ctx context.Context, event model.ProfileEvent) error
}
