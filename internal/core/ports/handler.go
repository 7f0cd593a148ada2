package ports

import (
	"context"

	"github.com/eventala/eventala/internal/core/model"
)

// ProfileEventHandler handles staged ProfileEvents on their way out.
type ProfileEventHandler interface {
	// Handle will receive a staged profile event and handle it.
	Handle(ctx context.Context, event model.ProfileEvent) error
}
