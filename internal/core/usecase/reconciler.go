package usecase

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/eventala/eventala/internal/core/ports"
)

// reconcileBatchSize bounds the journal rows re-driven per tick.
const reconcileBatchSize = 50

// MigrationReconcilerArgs contain the mandatory arguments to build a
// MigrationReconciler.
type MigrationReconcilerArgs struct {
	// Journal is the migration journal.
	Journal ports.MigrationJournal

	// Migrator re-drives unfinished migrations.
	Migrator *RoleMigrator

	// Grace is how long a migration may sit unfinished before the
	// reconciler picks it up. Keeps the job from racing in-flight requests.
	Grace time.Duration
}

// NewMigrationReconciler creates a MigrationReconciler.
func NewMigrationReconciler(args MigrationReconcilerArgs) *MigrationReconciler {
	return &MigrationReconciler{
		journal:  args.Journal,
		migrator: args.Migrator,
		grace:    args.Grace,
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// MigrationReconciler is the operator-facing repair job for migrations that
// failed after partially completing. It re-drives them through the
// coordinator's idempotent steps until the one-partition invariant holds.
type MigrationReconciler struct {
	journal  ports.MigrationJournal
	migrator *RoleMigrator
	grace    time.Duration
	nowFunc  func() time.Time
}

// Run reconciles at the given interval until the context is canceled.
// This is a blocking method and should be started in its own go-routine.
func (c *MigrationReconciler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Tick(ctx); err != nil {
				log.WithError(err).Error("error reconciling migrations")
			}
		}
	}
}

// Tick re-drives one batch of unfinished migrations.
func (c *MigrationReconciler) Tick(ctx context.Context) error {
	records, err := c.journal.ListUnfinished(ctx, c.nowFunc().Add(-c.grace), reconcileBatchSize)
	if err != nil {
		return fmt.Errorf("error listing unfinished migrations: %w", err)
	}

	for _, record := range records {
		if err := c.migrator.Resume(ctx, record); err != nil {
			// keep going: one stuck migration must not starve the rest
			log.WithError(err).
				WithField("migration-id", record.ID).
				WithField("user-id", record.UserID).
				Error("error resuming migration")
			continue
		}
		log.WithField("migration-id", record.ID).
			WithField("user-id", record.UserID).
			Info("migration reconciled")
	}
	return nil
}
