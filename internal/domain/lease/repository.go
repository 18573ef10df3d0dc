package lease

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// ContractFilter defines filtering options for contract queries
type ContractFilter struct {
	shared.Filter
	DisplayStatus *ContractStatus // Filter by status as seen on Today
	Today         time.Time       // Reference day for DisplayStatus and EndingWithin
	PropertyID    *uuid.UUID
	PersonID      *uuid.UUID
	Active        *bool
	EndingWithin  *int // Only in-force contracts ending within N days of Today
}

// StatusWindow describes the stored statuses and end-date range that produce a display status
type StatusWindow struct {
	Stored        []ContractStatus
	EndAfter      *time.Time // exclusive
	EndOnOrBefore *time.Time
}

// WindowFor translates a display status into a storage query on the given day
func WindowFor(display ContractStatus, today time.Time) StatusWindow {
	inForce := []ContractStatus{ContractStatusActive, ContractStatusExpiringSoon, ContractStatusExpired}
	today = shared.DateOf(today)
	soon := today.AddDate(0, 0, ExpiringSoonDays)
	switch display {
	case ContractStatusActive:
		return StatusWindow{Stored: inForce, EndAfter: &soon}
	case ContractStatusExpiringSoon:
		return StatusWindow{Stored: inForce, EndAfter: &today, EndOnOrBefore: &soon}
	case ContractStatusExpired:
		return StatusWindow{Stored: inForce, EndOnOrBefore: &today}
	default:
		return StatusWindow{Stored: []ContractStatus{display}}
	}
}

// ContractRepository defines the interface for contract persistence
type ContractRepository interface {
	// FindByIDForTenant finds a contract by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Contract, error)

	// FindAllForTenant finds contracts with filtering and returns the total before pagination
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ContractFilter) ([]Contract, int64, error)

	// Count counts contracts matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter ContractFilter) (int64, error)

	// FindInForce finds every active contract whose stored status is in force
	FindInForce(ctx context.Context, tenantID uuid.UUID) ([]Contract, error)

	// FindInForceByProperty finds in-force contracts of a property
	FindInForceByProperty(ctx context.Context, tenantID, propertyID uuid.UUID) ([]Contract, error)

	// ExistsByNumber checks if a contract number is taken within the tenant
	ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)

	// LastNumberWithPrefix returns the highest contract number starting with prefix, or "" when none
	LastNumberWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error)

	// FindTenantIDs lists every tenant that owns at least one in-force contract
	FindTenantIDs(ctx context.Context) ([]uuid.UUID, error)

	// Save creates a contract or updates it without a version check
	Save(ctx context.Context, contract *Contract) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, contract *Contract) error

	// Delete permanently removes a contract
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PartyDirectory answers existence questions about entities owned by other
// modules (property and person registries).
type PartyDirectory interface {
	// PropertyExists reports whether an active property exists for the tenant
	PropertyExists(ctx context.Context, tenantID, propertyID uuid.UUID) (bool, error)
	// PersonExists reports whether an active person exists for the tenant
	PersonExists(ctx context.Context, tenantID, personID uuid.UUID) (bool, error)
}
