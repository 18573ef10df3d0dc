package collections

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Projection compares the rent a tenant expects to collect in a month with
// what the month's fixed charges have received so far (proyección de cobranza).
// It is a read model: Recompute rebuilds it from the ledger at any time.
type Projection struct {
	shared.TenantAggregateRoot
	Period           time.Time // first day of the month
	ProjectedAmount  decimal.Decimal
	CollectedAmount  decimal.Decimal
	ContractCount    int
	ExpectedPayments int
	ReceivedPayments int
	Notes            string
	RefreshedAt      *time.Time
}

// PeriodOf returns the first day of the month containing day
func PeriodOf(day time.Time) time.Time {
	return shared.Date(day.Year(), day.Month(), 1)
}

// PeriodEnd returns the last day of the month starting at period
func PeriodEnd(period time.Time) time.Time {
	return PeriodOf(period).AddDate(0, 1, -1)
}

// ChargePeriod returns the month a charge belongs to: its billing period when
// it has one, the month of its due date otherwise
func ChargePeriod(c *ledger.Charge) time.Time {
	if c.PeriodYear != nil && c.PeriodMonth != nil {
		return shared.Date(*c.PeriodYear, time.Month(*c.PeriodMonth), 1)
	}
	return PeriodOf(c.DueDate)
}

// NewProjection creates an empty projection for the month containing period
func NewProjection(tenantID uuid.UUID, period time.Time) *Projection {
	return &Projection{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Period:              PeriodOf(period),
		ProjectedAmount:     decimal.Zero,
		CollectedAmount:     decimal.Zero,
	}
}

// Recompute replaces the figures with the totals of the period's live fixed
// charges: their original amounts are projected and their paid amounts
// collected. Returns true when a figure changed.
func (p *Projection) Recompute(charges []ledger.Charge, now time.Time) bool {
	projected := valueobject.ZeroMXN()
	collected := valueobject.ZeroMXN()
	contracts := make(map[uuid.UUID]struct{})
	expected, received := 0, 0
	for i := range charges {
		c := &charges[i]
		if !c.FixedRecurring || c.IsCancelled() || !ChargePeriod(c).Equal(p.Period) {
			continue
		}
		projected = projected.Add(valueobject.NewMoneyMXN(c.AmountOriginal))
		collected = collected.Add(valueobject.NewMoneyMXN(c.AmountPaid))
		contracts[c.ContractID] = struct{}{}
		expected++
		if !c.Pending().IsPositive() {
			received++
		}
	}

	refreshed := now
	p.RefreshedAt = &refreshed
	if p.ProjectedAmount.Equal(projected.Amount()) && p.CollectedAmount.Equal(collected.Amount()) &&
		p.ContractCount == len(contracts) && p.ExpectedPayments == expected && p.ReceivedPayments == received {
		return false
	}
	p.ProjectedAmount = projected.Amount()
	p.CollectedAmount = collected.Amount()
	p.ContractCount = len(contracts)
	p.ExpectedPayments = expected
	p.ReceivedPayments = received
	p.touch()
	return true
}

// Pending returns what the period still expects to collect
func (p *Projection) Pending() decimal.Decimal {
	return p.ProjectedAmount.Sub(p.CollectedAmount)
}

// CompliancePercent returns collected over projected as a percentage with two decimals
func (p *Projection) CompliancePercent() decimal.Decimal {
	return CompliancePercent(p.CollectedAmount, p.ProjectedAmount)
}

// UpdateNotes replaces the free-text notes of the period
func (p *Projection) UpdateNotes(notes string) {
	p.Notes = strings.TrimSpace(notes)
	p.touch()
}

func (p *Projection) touch() {
	p.Touch(time.Now())
	p.IncrementVersion()
}

// CompliancePercent returns collected x 100 / projected rounded half-up to two
// decimals, or zero when nothing was projected
func CompliancePercent(collected, projected decimal.Decimal) decimal.Decimal {
	return valueobject.NewMoneyMXN(collected).PercentOf(valueobject.NewMoneyMXN(projected))
}

// ProjectionRepository defines the interface for projection persistence
type ProjectionRepository interface {
	// FindByPeriod finds the projection of a month, or shared.ErrNotFound
	FindByPeriod(ctx context.Context, tenantID uuid.UUID, period time.Time) (*Projection, error)

	// FindRange lists the projections whose period falls within [from, to], oldest first
	FindRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Projection, error)

	// Create inserts a projection. A second one for the same month is shared.ErrAlreadyExists.
	Create(ctx context.Context, projection *Projection) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, projection *Projection) error
}
