package ports

import (
	"context"

	"github.com/eventala/eventala/internal/core/model"
)

// CreateIdentityArgs carry the attributes of a new identity record.
type CreateIdentityArgs struct {
	// Email is the record key inside the partition.
	Email string

	// PasswordHash is the argon2id hash of the temporary credential.
	PasswordHash string

	// DeliveryMedium is the channel over which the temporary credential is
	// issued to the user.
	DeliveryMedium string
}

// IdentityStore is the gateway to the partitioned credential store. Records
// are keyed by email inside each partition's namespace.
type IdentityStore interface {
	// CreateInPartition creates an identity record in the given partition
	// and returns the store-assigned subject identifier. Returns
	// model.ErrAlreadyExists when the email is already present in the
	// partition.
	CreateInPartition(ctx context.Context, partition model.Partition, args CreateIdentityArgs) (string, error)

	// DeleteFromPartition removes the identity keyed by email from the
	// given partition. Returns model.ErrNotFound when absent.
	DeleteFromPartition(ctx context.Context, partition model.Partition, email string) error

	// FindByEmail locates the identity record for the email, searching all
	// partitions. Returns model.ErrNotFound when no partition holds it.
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)
}
