package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"

	"github.com/eventala/eventala/internal/core/model"
	"github.com/eventala/eventala/internal/core/ports"
)

// PostgresDB is a postgres adapter hosting the partitioned credential store,
// the migration journal and the profile-event outbox.
type PostgresDB struct {
	db      *pg.DB
	nowFunc func() time.Time
}

// PostgresDBArgs are the mandatory arguments for the creation of a PostgresDB.
type PostgresDBArgs struct {
	// DB is a postgres database handle
	DB *pg.DB
}

// PostgresDBOptArgs are the optional arguments for building a PostgresDB.
type PostgresDBOptArgs = func(*PostgresDB)

// WithNowFunc can be used to override the nowFunc. Useful for testing.
func WithNowFunc(nowFunc func() time.Time) PostgresDBOptArgs {
	return func(p *PostgresDB) {
		p.nowFunc = nowFunc
	}
}

// NewPostgresDB creates a new PostgresDB.
func NewPostgresDB(args PostgresDBArgs, optArgs ...PostgresDBOptArgs) (*PostgresDB, error) {
	if args.DB == nil {
		return nil, errors.New("nil db handle passed to postgres adapter")
	}
	p := &PostgresDB{db: args.DB, nowFunc: func() time.Time { return time.Now().UTC() }}
	for _, opt := range optArgs {
		opt(p)
	}
	return p, nil
}

type identityDB struct {
	tableName struct{} `pg:"eventala.identities"` //nolint:unused

	Subject        string    `pg:"subject,pk"`
	Partition      string    `pg:"partition,use_zero"`
	Email          string    `pg:"email,use_zero"`
	PasswordHash   string    `pg:"password_hash"`
	DeliveryMedium string    `pg:"delivery_medium"`
	CreatedAt      time.Time `pg:"created_at"`
}

type migrationDB struct {
	tableName struct{} `pg:"eventala.role_migrations"` //nolint:unused

	ID            uuid.UUID `pg:"id,pk,type:uuid"`
	Op            string    `pg:"op,use_zero"`
	UserID        string    `pg:"user_id,use_zero"`
	OldRole       string    `pg:"old_role"`
	OldEmail      string    `pg:"old_email"`
	NewRole       string    `pg:"new_role"`
	NewEmail      string    `pg:"new_email"`
	NewAttributes string    `pg:"new_attributes,type:jsonb"`
	State         string    `pg:"state,use_zero"`
	FailedStep    string    `pg:"failed_step"`
	LastError     string    `pg:"last_error"`
	Attempts      int       `pg:"attempts,use_zero"`
	CreatedAt     time.Time `pg:"created_at"`
	UpdatedAt     time.Time `pg:"updated_at"`
}

type outboxDB struct {
	tableName struct{} `pg:"eventala.profile_outbox"` //nolint:unused

	ID        int64      `pg:"id,pk"`
	Payload   string     `pg:"payload,use_zero"`
	CreatedAt time.Time  `pg:"created_at"`
	SentAt    *time.Time `pg:"sent_at"`
}

// CreateInPartition creates an identity record keyed by email inside the
// partition and returns the assigned subject identifier.
func (p *PostgresDB) CreateInPartition(ctx context.Context, partition model.Partition, args ports.CreateIdentityArgs) (string, error) {
	record := &identityDB{
		Subject:        uuid.NewString(),
		Partition:      string(partition),
		Email:          args.Email,
		PasswordHash:   args.PasswordHash,
		DeliveryMedium: args.DeliveryMedium,
		CreatedAt:      p.nowFunc(),
	}
	if _, err := p.db.ModelContext(ctx, record).Insert(); err != nil {
		var pgErr pg.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return "", model.ErrAlreadyExists
		}
		return "", err
	}
	return record.Subject, nil
}

// DeleteFromPartition removes the identity keyed by email from the partition.
func (p *PostgresDB) DeleteFromPartition(ctx context.Context, partition model.Partition, email string) error {
	res, err := p.db.ModelContext(ctx, (*identityDB)(nil)).
		Where("partition = ?", string(partition)).
		Where("email = ?", email).
		Delete()
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// FindByEmail locates the identity for the email across all partitions.
func (p *PostgresDB) FindByEmail(ctx context.Context, email string) (*model.Identity, error) {
	record := new(identityDB)
	err := p.db.ModelContext(ctx, record).Where("email = ?", email).Limit(1).Select()
	if err != nil {
		if errors.Is(err, pg.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &model.Identity{
		Subject:      record.Subject,
		Partition:    model.Partition(record.Partition),
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}, nil
}

// Begin persists the migration record in the started state and assigns its ID.
func (p *PostgresDB) Begin(ctx context.Context, record *model.MigrationRecord) error {
	now := p.nowFunc()
	newAttributes := ""
	if record.NewAttributes != nil {
		payload, err := json.Marshal(record.NewAttributes)
		if err != nil {
			return fmt.Errorf("error marshaling migration attributes: %w", err)
		}
		newAttributes = string(payload)
	}
	row := &migrationDB{
		ID:            uuid.New(),
		Op:            string(record.Op),
		UserID:        record.UserID,
		OldRole:       string(record.OldRole),
		OldEmail:      record.OldEmail,
		NewRole:       string(record.NewRole),
		NewEmail:      record.NewEmail,
		NewAttributes: newAttributes,
		State:         string(model.MigrationStarted),
		Attempts:      1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := p.db.ModelContext(ctx, row).Insert(); err != nil {
		return err
	}
	record.ID = row.ID
	record.State = model.MigrationStarted
	record.Attempts = row.Attempts
	record.CreatedAt = now
	record.UpdatedAt = now
	return nil
}

// MarkState transitions the migration record to the given state.
func (p *PostgresDB) MarkState(ctx context.Context, id uuid.UUID, state model.MigrationState) error {
	res, err := p.db.ModelContext(ctx, (*migrationDB)(nil)).
		Set("state = ?", string(state)).
		Set("updated_at = ?", p.nowFunc()).
		Where("id = ?", id).
		Update()
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// MarkFailed moves the migration record to the failed terminal state.
func (p *PostgresDB) MarkFailed(ctx context.Context, id uuid.UUID, step model.MigrationStep, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	res, err := p.db.ModelContext(ctx, (*migrationDB)(nil)).
		Set("state = ?", string(model.MigrationFailed)).
		Set("failed_step = ?", string(step)).
		Set("last_error = ?", message).
		Set("attempts = attempts + 1").
		Set("updated_at = ?", p.nowFunc()).
		Where("id = ?", id).
		Update()
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ListUnfinished returns non-committed records whose last transition is
// older than the given time, oldest first.
func (p *PostgresDB) ListUnfinished(ctx context.Context, olderThan time.Time, limit int) ([]model.MigrationRecord, error) {
	var rows []migrationDB
	err := p.db.ModelContext(ctx, &rows).
		Where("state != ?", string(model.MigrationCommitted)).
		Where("updated_at < ?", olderThan).
		Order("updated_at ASC").
		Limit(limit).
		Select()
	if err != nil {
		return nil, err
	}
	records := make([]model.MigrationRecord, 0, len(rows))
	for _, row := range rows {
		var newAttributes map[string]any
		if row.NewAttributes != "" {
			if err := json.Unmarshal([]byte(row.NewAttributes), &newAttributes); err != nil {
				return nil, fmt.Errorf("error unmarshaling migration [%s] attributes: %w", row.ID, err)
			}
		}
		records = append(records, model.MigrationRecord{
			ID:            row.ID,
			Op:            model.MigrationOp(row.Op),
			UserID:        row.UserID,
			OldRole:       model.Role(row.OldRole),
			OldEmail:      row.OldEmail,
			NewRole:       model.Role(row.NewRole),
			NewEmail:      row.NewEmail,
			NewAttributes: newAttributes,
			State:         model.MigrationState(row.State),
			FailedStep:    model.MigrationStep(row.FailedStep),
			LastError:     row.LastError,
			Attempts:      row.Attempts,
			CreatedAt:     row.CreatedAt,
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return records, nil
}

// Append stages a profile event in the outbox.
func (p *PostgresDB) Append(ctx context.Context, event model.ProfileEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling profile event: %w", err)
	}
	row := &outboxDB{
		Payload:   string(payload),
		CreatedAt: p.nowFunc(),
	}
	if _, err := p.db.ModelContext(ctx, row).Insert(); err != nil {
		return err
	}
	return nil
}

// ListPending returns up to limit unsent outbox entries in append order.
func (p *PostgresDB) ListPending(ctx context.Context, limit int) ([]model.OutboxEntry, error) {
	var rows []outboxDB
	err := p.db.ModelContext(ctx, &rows).
		Where("sent_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Select()
	if err != nil {
		return nil, err
	}
	entries := make([]model.OutboxEntry, 0, len(rows))
	for _, row := range rows {
		var event model.ProfileEvent
		if err := json.Unmarshal([]byte(row.Payload), &event); err != nil {
			return nil, fmt.Errorf("error unmarshaling outbox entry [%d]: %w", row.ID, err)
		}
		entries = append(entries, model.OutboxEntry{
			ID:        row.ID,
			Event:     event,
			CreatedAt: row.CreatedAt,
		})
	}
	return entries, nil
}

// MarkSent marks the outbox entries as published.
func (p *PostgresDB) MarkSent(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := p.db.ModelContext(ctx, (*outboxDB)(nil)).
		Set("sent_at = ?", p.nowFunc()).
		WhereIn("id IN (?)", ids).
		Update()
	return err
}
