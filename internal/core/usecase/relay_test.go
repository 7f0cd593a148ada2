package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventala/eventala/internal/core/model"
)

type fakeOutbox struct {
	entries []model.OutboxEntry
	sent    map[int64]bool
	listErr error
}

func newFakeOutbox(events ...model.ProfileEvent) *fakeOutbox {
	f := &fakeOutbox{sent: map[int64]bool{}}
	for _, event := range events {
		f.entries = append(f.entries, model.OutboxEntry{
			ID:    int64(len(f.entries) + 1),
			Event: event,
		})
	}
	return f
}

func (f *fakeOutbox) Append(ctx context.Context, event model.ProfileEvent) error {
	f.entries = append(f.entries, model.OutboxEntry{
		ID:    int64(len(f.entries) + 1),
		Event: event,
	})
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]model.OutboxEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.OutboxEntry
	for _, entry := range f.entries {
		if f.sent[entry.ID] {
			continue
		}
		out = append(out, entry)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, ids ...int64) error {
	for _, id := range ids {
		f.sent[id] = true
	}
	return nil
}

type recordingHandler struct {
	handled []model.ProfileEvent
	failOn  string
}

func (h *recordingHandler) Handle(ctx context.Context, event model.ProfileEvent) error {
	if h.failOn != "" && event.ID == h.failOn {
		return errors.New("handler rejected event")
	}
	h.handled = append(h.handled, event)
	return nil
}

func TestOutboxRelay_Tick(t *testing.T) {
	t.Run("drains pending entries in append order", func(t *testing.T) {
		outbox := newFakeOutbox(
			model.ProfileEvent{ID: "evt-1"},
			model.ProfileEvent{ID: "evt-2"},
			model.ProfileEvent{ID: "evt-3"},
		)
		handler := &recordingHandler{}
		relay := NewOutboxRelay(OutboxRelayArgs{Outbox: outbox, Handler: handler})

		require.NoError(t, relay.Tick(context.Background()))

		require.Len(t, handler.handled, 3)
		assert.Equal(t, "evt-1", handler.handled[0].ID)
		assert.Equal(t, "evt-3", handler.handled[2].ID)

		pending, err := outbox.ListPending(context.Background(), relayBatchSize)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("a failing entry stops the batch and stays pending", func(t *testing.T) {
		outbox := newFakeOutbox(
			model.ProfileEvent{ID: "evt-1"},
			model.ProfileEvent{ID: "evt-2"},
			model.ProfileEvent{ID: "evt-3"},
		)
		handler := &recordingHandler{failOn: "evt-2"}
		relay := NewOutboxRelay(OutboxRelayArgs{Outbox: outbox, Handler: handler})

		require.Error(t, relay.Tick(context.Background()))

		// evt-1 went out, evt-2 and evt-3 wait for the next tick
		require.Len(t, handler.handled, 1)
		pending, err := outbox.ListPending(context.Background(), relayBatchSize)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, "evt-2", pending[0].Event.ID)
	})

	t.Run("list failures are reported", func(t *testing.T) {
		outbox := newFakeOutbox()
		outbox.listErr = errors.New("relation unavailable")
		relay := NewOutboxRelay(OutboxRelayArgs{Outbox: outbox, Handler: &recordingHandler{}})

		assert.Error(t, relay.Tick(context.Background()))
	})
}
