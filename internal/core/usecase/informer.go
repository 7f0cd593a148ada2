package usecase

import (
	"context"
	"fmt"
	"reflect"

	"github.com/eventala/eventala/internal/core/model"
	"github.com/eventala/eventala/internal/core/ports"
)

// NewInformer builds a new informer.
func NewInformer(sender ports.Sender) *Informer {
	return &Informer{sender: sender}
}

// Informer adapts staged profile changes to a public-facing event. It
// publicly 'informs' about profile changes.
type Informer struct {
	sender ports.Sender
}

func (i *Informer) Handle(ctx context.Context, event model.ProfileEvent) error {

	// credential-ish attributes never leave the service
	event.Before = scrubbed(event.Before)
	event.After = scrubbed(event.After)

	// this happens if the change only touched attributes we scrub
	if profilesAreEqual(event.Before, event.After) {
		return nil
	}

	if err := i.sender.Send(ctx, event); err != nil {
		return fmt.Errorf("error sending profile event ID [%s]: %w", event.ID, err)
	}

	return nil
}

func scrubbed(p *model.Profile) *model.Profile {
	if p == nil {
		return nil
	}
	clean := *p
	clean.Attributes = scrubAttributes(p.Attributes)
	return &clean
}

func profilesAreEqual(before *model.Profile, after *model.Profile) bool {
	if before == nil && after == nil {
		return true
	}
	if before == nil || after == nil {
		return false
	}
	return reflect.DeepEqual(*before, *after)
}
