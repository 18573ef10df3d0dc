package ledger

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ChargeType represents what a charge bills for
type ChargeType string

const (
	ChargeTypeRent        ChargeType = "RENT"
	ChargeTypeDeposit     ChargeType = "DEPOSIT"
	ChargeTypePenalty     ChargeType = "PENALTY"
	ChargeTypeMaintenance ChargeType = "MAINTENANCE"
	ChargeTypeService     ChargeType = "SERVICE"
	ChargeTypeOther       ChargeType = "OTHER"
)

// IsValid checks if the charge type is valid
func (t ChargeType) IsValid() bool {
	switch t {
	case ChargeTypeRent, ChargeTypeDeposit, ChargeTypePenalty,
		ChargeTypeMaintenance, ChargeTypeService, ChargeTypeOther:
		return true
	}
	return false
}

// String returns the string representation of ChargeType
func (t ChargeType) String() string {
	return string(t)
}

// ChargeStatus represents the status of a charge
type ChargeStatus string

const (
	ChargeStatusPending   ChargeStatus = "PENDING"   // Nothing paid, not yet due
	ChargeStatusPartial   ChargeStatus = "PARTIAL"   // Partially paid, not yet due
	ChargeStatusPaid      ChargeStatus = "PAID"      // Fully paid
	ChargeStatusCancelled ChargeStatus = "CANCELLED" // Cancelled before any payment
	ChargeStatusOverdue   ChargeStatus = "OVERDUE"   // Pending amount past due date
)

// IsValid checks if the status is a valid ChargeStatus
func (s ChargeStatus) IsValid() bool {
	switch s {
	case ChargeStatusPending, ChargeStatusPartial, ChargeStatusPaid,
		ChargeStatusCancelled, ChargeStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of ChargeStatus
func (s ChargeStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the charge can no longer receive payments
func (s ChargeStatus) IsTerminal() bool {
	return s == ChargeStatusPaid || s == ChargeStatusCancelled
}

// IsOutstanding returns true for the statuses that take part in aging
func (s ChargeStatus) IsOutstanding() bool {
	return s == ChargeStatusPending || s == ChargeStatusPartial || s == ChargeStatusOverdue
}

// DeriveChargeStatus computes a charge status from its amounts and the day.
// It is the only rule for charge status; stored statuses are snapshots of it.
func DeriveChargeStatus(cancelled bool, paid, original decimal.Decimal, dueDate, today time.Time) ChargeStatus {
	if cancelled {
		return ChargeStatusCancelled
	}
	if paid.Equal(original) {
		return ChargeStatusPaid
	}
	pending := original.Sub(paid)
	late := shared.DateOf(today).After(shared.DateOf(dueDate))
	switch {
	case paid.IsPositive() && paid.LessThan(original) && !late:
		return ChargeStatusPartial
	case pending.IsPositive() && late:
		return ChargeStatusOverdue
	default:
		return ChargeStatusPending
	}
}

// Charge represents a billable line item owed under a contract
type Charge struct {
	shared.TenantAggregateRoot
	ContractID     uuid.UUID
	Type           ChargeType
	Concept        string
	AmountOriginal decimal.Decimal
	AmountPaid     decimal.Decimal
	ChargeDate     time.Time
	DueDate        time.Time
	Status         ChargeStatus
	FixedRecurring bool
	PeriodMonth    *int
	PeriodYear     *int
	Notes          string
	CancelledAt    *time.Time
}

// ChargeInput carries the fields of a new charge
type ChargeInput struct {
	ContractID uuid.UUID
	Type       ChargeType
	Concept    string
	Amount     decimal.Decimal
	ChargeDate time.Time
	DueDate    time.Time
	Notes      string
}

// NewCharge creates an ad-hoc charge
func NewCharge(tenantID uuid.UUID, in ChargeInput) (*Charge, error) {
	if in.ContractID == uuid.Nil {
		return nil, shared.NewValidationError("contract is required")
	}
	if !in.Type.IsValid() {
		return nil, shared.NewValidationError("invalid charge type %q", in.Type)
	}
	concept := strings.TrimSpace(in.Concept)
	if concept == "" {
		return nil, shared.NewValidationError("concept cannot be empty")
	}
	if utf8.RuneCountInString(concept) > maxConceptLen {
		return nil, shared.NewValidationError("concept cannot exceed %d characters", maxConceptLen)
	}
	amount := valueobject.RoundCents(in.Amount)
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("charge amount must be positive")
	}
	if in.ChargeDate.IsZero() || in.DueDate.IsZero() {
		return nil, shared.NewValidationError("charge date and due date are required")
	}
	chargeDate, dueDate := shared.DateOf(in.ChargeDate), shared.DateOf(in.DueDate)
	if dueDate.Before(chargeDate) {
		return nil, shared.NewValidationError("due date cannot be before charge date")
	}

	c := &Charge{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ContractID:          in.ContractID,
		Type:                in.Type,
		Concept:             concept,
		AmountOriginal:      amount,
		AmountPaid:          decimal.Zero,
		ChargeDate:          chargeDate,
		DueDate:             dueDate,
		Status:              ChargeStatusPending,
		Notes:               in.Notes,
	}
	c.AddDomainEvent(NewChargeCreatedEvent(c))
	return c, nil
}

// NewRecurringRentCharge creates the fixed RENT charge of a contract for one period
func NewRecurringRentCharge(tenantID uuid.UUID, in ChargeInput, year int, month time.Month) (*Charge, error) {
	in.Type = ChargeTypeRent
	c, err := NewCharge(tenantID, in)
	if err != nil {
		return nil, err
	}
	m, y := int(month), year
	c.FixedRecurring = true
	c.PeriodMonth = &m
	c.PeriodYear = &y
	// re-raise so the created event carries the period flags
	c.ClearDomainEvents()
	c.AddDomainEvent(NewChargeCreatedEvent(c))
	return c, nil
}

// NewPenaltyCharge bills an accrued late-payment penalty, due the day it is raised
func NewPenaltyCharge(tenantID, contractID uuid.UUID, baseConcept string, amount decimal.Decimal, today time.Time) (*Charge, error) {
	return NewCharge(tenantID, ChargeInput{
		ContractID: contractID,
		Type:       ChargeTypePenalty,
		Concept:    PenaltyConcept(baseConcept),
		Amount:     amount,
		ChargeDate: today,
		DueDate:    today,
	})
}

// Pending returns the unpaid amount
func (c *Charge) Pending() decimal.Decimal {
	return c.AmountOriginal.Sub(c.AmountPaid)
}

// IsCancelled returns true if the charge was cancelled
func (c *Charge) IsCancelled() bool {
	return c.Status == ChargeStatusCancelled
}

// DisplayStatus returns the status as seen on the given day
func (c *Charge) DisplayStatus(today time.Time) ChargeStatus {
	return DeriveChargeStatus(c.IsCancelled(), c.AmountPaid, c.AmountOriginal, c.DueDate, today)
}

// DaysOverdue returns the whole days the charge is past due as of asOf
func (c *Charge) DaysOverdue(asOf time.Time) int {
	return DaysOverdue(c.DueDate, asOf)
}

// CanReceivePayment returns true if a payment may be applied to the charge
func (c *Charge) CanReceivePayment() bool {
	return !c.Status.IsTerminal() && c.Pending().IsPositive()
}

// ApplyPayment records amount paid by paymentID
func (c *Charge) ApplyPayment(paymentID uuid.UUID, amount decimal.Decimal, today time.Time) error {
	if c.Status.IsTerminal() {
		return shared.NewInvalidStateError("cannot apply payment to charge in %s status", c.Status)
	}
	amount = valueobject.RoundCents(amount)
	if !amount.IsPositive() {
		return shared.NewValidationError("applied amount must be positive")
	}
	if amount.GreaterThan(c.Pending()) {
		return shared.NewValidationError("applied amount %s exceeds pending %s of charge %s",
			amount.StringFixed(2), c.Pending().StringFixed(2), c.ID)
	}

	c.AmountPaid = c.AmountPaid.Add(amount)
	c.Status = c.DisplayStatus(today)
	c.touch()
	c.AddDomainEvent(NewChargePaymentAppliedEvent(c, paymentID, amount))
	return nil
}

// ReversePayment rolls back amount previously applied by paymentID.
// Reversing more than was paid means the ledger is corrupt.
func (c *Charge) ReversePayment(paymentID uuid.UUID, amount decimal.Decimal, today time.Time) error {
	if amount.GreaterThan(c.AmountPaid) {
		return shared.NewInvariantViolation("reversal of %s exceeds amount paid %s on charge %s",
			amount.StringFixed(2), c.AmountPaid.StringFixed(2), c.ID)
	}
	if c.IsCancelled() {
		return shared.NewInvariantViolation("cancelled charge %s holds applied payments", c.ID)
	}

	c.AmountPaid = c.AmountPaid.Sub(amount)
	c.Status = c.DisplayStatus(today)
	c.touch()
	c.AddDomainEvent(NewChargePaymentReversedEvent(c, paymentID, amount))
	return nil
}

// Cancel voids a charge that has received no payment
func (c *Charge) Cancel(reason string) error {
	if c.IsCancelled() {
		return shared.NewInvalidStateError("charge is already cancelled")
	}
	if !c.AmountPaid.IsZero() {
		return shared.NewInvalidStateError("cannot cancel charge with applied payments")
	}
	now := time.Now()
	c.Status = ChargeStatusCancelled
	c.CancelledAt = &now
	if reason != "" {
		c.Notes = strings.TrimSpace(c.Notes + "\n" + reason)
	}
	c.touch()
	c.AddDomainEvent(NewChargeCancelledEvent(c))
	return nil
}

// MarkOverdue stores OVERDUE once the charge is past due with a pending amount.
// Returns true when the stored status changed.
func (c *Charge) MarkOverdue(today time.Time) bool {
	if c.Status == ChargeStatusOverdue || c.DisplayStatus(today) != ChargeStatusOverdue {
		return false
	}
	c.Status = ChargeStatusOverdue
	c.touch()
	c.AddDomainEvent(NewChargeOverdueEvent(c, today))
	return true
}

// UpdateNotes sets the charge notes
func (c *Charge) UpdateNotes(notes string) {
	c.Notes = notes
	c.touch()
}

func (c *Charge) touch() {
	c.Touch(time.Now())
	c.IncrementVersion()
}
