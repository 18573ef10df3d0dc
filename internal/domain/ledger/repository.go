package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ChargeFilter defines filtering options for charge queries
type ChargeFilter struct {
	shared.Filter
	ContractID *uuid.UUID
	Status     *ChargeStatus
	Type       *ChargeType
	DueFrom    *time.Time
	DueTo      *time.Time
}

// AgingScope narrows aging queries to one contract or one person. Both nil means the whole tenant.
type AgingScope struct {
	ContractID *uuid.UUID
	PersonID   *uuid.UUID
}

// ChargeStats aggregates charge totals for dashboards
type ChargeStats struct {
	TotalPending   decimal.Decimal `json:"total_pending"`
	PendingCount   int64           `json:"pending_count"`
	OverdueAmount  decimal.Decimal `json:"overdue_amount"`
	OverdueCount   int64           `json:"overdue_count"`
	CollectedMonth decimal.Decimal `json:"collected_month"`
}

// ChargeRepository defines the interface for charge persistence
type ChargeRepository interface {
	// FindByIDForTenant finds a charge by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Charge, error)

	// FindByIDs finds the given charges of a tenant; missing ids are simply absent
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Charge, error)

	// FindAllForTenant finds charges with filtering and returns the total before pagination
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ChargeFilter) ([]Charge, int64, error)

	// FindByContract finds every charge of a contract ordered by charge date
	FindByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]Charge, error)

	// FindOutstandingByContract finds the not paid, not cancelled charges of a
	// contract with a pending amount, ordered by due date then id
	FindOutstandingByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]Charge, error)

	// FindAgeable finds the charges that take part in aging within a scope
	FindAgeable(ctx context.Context, tenantID uuid.UUID, scope AgingScope) ([]Charge, error)

	// FindOverdueCandidates finds PENDING or PARTIAL charges due before asOf with a pending amount
	FindOverdueCandidates(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Charge, error)

	// FindRecurringDue finds the live fixed recurring charges due within [from, to]
	FindRecurringDue(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Charge, error)

	// ExistsRecurring checks if a fixed recurring charge exists for a contract period
	ExistsRecurring(ctx context.Context, tenantID, contractID uuid.UUID, chargeType ChargeType, year, month int) (bool, error)

	// CreateRecurring inserts a fixed recurring charge unless the period already has one.
	// Returns false when the insert was skipped by the uniqueness constraint.
	CreateRecurring(ctx context.Context, charge *Charge) (bool, error)

	// Save creates a charge or updates it without a version check
	Save(ctx context.Context, charge *Charge) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, charge *Charge) error

	// CountByContract counts every charge of a contract
	CountByContract(ctx context.Context, tenantID, contractID uuid.UUID) (int64, error)

	// Stats aggregates outstanding totals as of today
	Stats(ctx context.Context, tenantID uuid.UUID, today time.Time) (*ChargeStats, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	ContractID *uuid.UUID
	PersonID   *uuid.UUID
	Status     *PaymentStatus
	DateFrom   *time.Time
	DateTo     *time.Time
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByIDForTenant finds a payment by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindAllForTenant finds payments with filtering and returns the total before pagination
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]Payment, int64, error)

	// FindByContract finds every payment of a contract ordered by payment date
	FindByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]Payment, error)

	// LastReceiptNumber returns the highest receipt number of the tenant, or "" when none
	LastReceiptNumber(ctx context.Context, tenantID uuid.UUID) (string, error)

	// Create inserts a payment. A receipt number collision is reported as a concurrency conflict.
	Create(ctx context.Context, payment *Payment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, payment *Payment) error

	// CountByContract counts every payment of a contract
	CountByContract(ctx context.Context, tenantID, contractID uuid.UUID) (int64, error)

	// SumApplied sums the applied amount of live payments dated within [from, to]
	SumApplied(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
}

// PaymentApplicationRepository defines the interface for payment application persistence
type PaymentApplicationRepository interface {
	// Create inserts a live application
	Create(ctx context.Context, app *PaymentApplication) error

	// FindByPayment finds every application of a payment, live and reversed
	FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]PaymentApplication, error)

	// FindLiveByPayment finds the live applications of a payment
	FindLiveByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]PaymentApplication, error)

	// SumLiveByCharge sums the live applications of a charge
	SumLiveByCharge(ctx context.Context, tenantID, chargeID uuid.UUID) (decimal.Decimal, error)

	// MarkReversed stamps an application as reversed
	MarkReversed(ctx context.Context, app *PaymentApplication) error
}
