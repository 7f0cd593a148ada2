package ports

import (
	"context"

	"github.com/eventala/eventala/internal/core/model"
)

// Outbox stages profile events for asynchronous publication by the worker.
type Outbox interface {
	// Append stages the event.
	Append(ctx context.Context, event model.ProfileEvent) error

	// ListPending returns up to limit unsent entries in append order.
	ListPending(ctx context.Context, limit int) ([]model.OutboxEntry, error)

	// MarkSent marks the entries as published.
	MarkSent(ctx context.Context, ids ...int64) error
}
