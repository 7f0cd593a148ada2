package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eventala/eventala/internal/core/model"
)

// MigrationJournal persists the state machine of cross-partition migrations.
// A journal row outliving its migration in a non-committed state is the
// signal picked up by the reconciliation job.
type MigrationJournal interface {
	// Begin persists the record in the started state and assigns its ID.
	Begin(ctx context.Context, record *model.MigrationRecord) error

	// MarkState transitions the record to the given state.
	MarkState(ctx context.Context, id uuid.UUID, state model.MigrationState) error

	// MarkFailed moves the record to the failed terminal state, recording
	// the failing step and cause.
	MarkFailed(ctx context.Context, id uuid.UUID, step model.MigrationStep, cause error) error

	// ListUnfinished returns records not yet committed whose last
	// transition is older than the given time.
	ListUnfinished(ctx context.Context, olderThan time.Time, limit int) ([]model.MigrationRecord, error)
}
