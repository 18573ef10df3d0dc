package collections

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// AccountFilter defines filtering options for delinquent account queries
type AccountFilter struct {
	shared.Filter
	State      *CollectionState
	Bucket     *ledger.AgingBucket
	PersonID   *uuid.UUID
	PropertyID *uuid.UUID
	ContractID *uuid.UUID
	OnlyOpen   bool
}

// DelinquentAccountRepository defines the interface for delinquent account persistence
type DelinquentAccountRepository interface {
	// FindByIDForTenant finds a record by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*DelinquentAccount, error)

	// FindOpenByCharge finds the open record of a charge, or shared.ErrNotFound
	FindOpenByCharge(ctx context.Context, tenantID, chargeID uuid.UUID) (*DelinquentAccount, error)

	// FindLatestClosedByCharge finds the most recently closed record of a charge, or shared.ErrNotFound
	FindLatestClosedByCharge(ctx context.Context, tenantID, chargeID uuid.UUID) (*DelinquentAccount, error)

	// FindOpen finds every open record of a tenant
	FindOpen(ctx context.Context, tenantID uuid.UUID) ([]DelinquentAccount, error)

	// FindAllForTenant finds records with filtering and returns the total before pagination
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter AccountFilter) ([]DelinquentAccount, int64, error)

	// Save creates a record or updates it without a version check
	Save(ctx context.Context, account *DelinquentAccount) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, account *DelinquentAccount) error
}

// FollowUpRepository defines the interface for follow-up persistence. It has no update.
type FollowUpRepository interface {
	// Create appends a follow-up
	Create(ctx context.Context, followUp *FollowUp) error

	// FindByAccount lists the follow-ups of a record, newest first
	FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]FollowUp, error)

	// FindDueActions lists follow-ups of open records whose next action date is on or before day
	FindDueActions(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]FollowUp, error)
}
