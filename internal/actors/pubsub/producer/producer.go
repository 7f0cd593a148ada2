package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/eventala/eventala/internal/core/model"
)

// NewProducer creates a new producer.
func NewProducer(topic *pubsub.Topic) (*Producer, error) {
	if topic == nil {
		return nil, errors.New("topic is nil")
	}
	return &Producer{topic: topic}, nil
}

// Producer is the pubsub producer of profile events.
type Producer struct {
	topic *pubsub.Topic
}

// Send publishes the profile event as JSON and blocks until the server
// acknowledged it.
func (p *Producer) Send(ctx context.Context, event model.ProfileEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling profile-event message: %w", err)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
	})
	// Block until the result is returned and a server-generated
	// ID is returned for the published message.
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("pubsub: result.Get: %w", err)
	}
	return nil
}
