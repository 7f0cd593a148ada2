package usecase

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/eventala/eventala/internal/core/ports"
)

// relayBatchSize is the number of outbox entries drained per tick.
const relayBatchSize = 100

// OutboxRelayArgs contain the mandatory arguments to build an OutboxRelay.
type OutboxRelayArgs struct {
	// Outbox is the staged-event source.
	Outbox ports.Outbox

	// Handler receives each drained event.
	Handler ports.ProfileEventHandler
}

// NewOutboxRelay creates an OutboxRelay.
func NewOutboxRelay(args OutboxRelayArgs) *OutboxRelay {
	return &OutboxRelay{
		outbox:  args.Outbox,
		handler: args.Handler,
	}
}

// OutboxRelay drains staged profile events from the outbox and hands them to
// the event handler in append order. Entries are marked sent only after the
// handler accepted them, so delivery is at-least-once.
type OutboxRelay struct {
	outbox  ports.Outbox
	handler ports.ProfileEventHandler
}

// Run polls the outbox at the given interval until the context is canceled.
// This is a blocking method and should be started in its own go-routine.
func (r *OutboxRelay) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Tick(ctx); err != nil {
				log.WithError(err).Error("error draining outbox")
			}
		}
	}
}

// Tick drains one batch. A failing entry stops the batch so that order is
// preserved; the entry is retried on the next tick.
func (r *OutboxRelay) Tick(ctx context.Context) error {
	entries, err := r.outbox.ListPending(ctx, relayBatchSize)
	if err != nil {
		return fmt.Errorf("error listing pending outbox entries: %w", err)
	}

	for _, entry := range entries {
		if err := r.handler.Handle(ctx, entry.Event); err != nil {
			return fmt.Errorf("error handling outbox entry [%d]: %w", entry.ID, err)
		}
		if err := r.outbox.MarkSent(ctx, entry.ID); err != nil {
			return fmt.Errorf("error marking outbox entry [%d] sent: %w", entry.ID, err)
		}
	}
	return nil
}
