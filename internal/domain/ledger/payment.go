package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentType represents how the money was received
type PaymentType string

const (
	PaymentTypeCash        PaymentType = "CASH"
	PaymentTypeTransfer    PaymentType = "TRANSFER"
	PaymentTypeCheck       PaymentType = "CHECK"
	PaymentTypeDebitCard   PaymentType = "DEBIT_CARD"
	PaymentTypeCreditCard  PaymentType = "CREDIT_CARD"
	PaymentTypeBankDeposit PaymentType = "BANK_DEPOSIT"
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeCash, PaymentTypeTransfer, PaymentTypeCheck,
		PaymentTypeDebitCard, PaymentTypeCreditCard, PaymentTypeBankDeposit:
		return true
	}
	return false
}

// String returns the string representation of PaymentType
func (t PaymentType) String() string {
	return string(t)
}

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"   // Received, nothing applied
	PaymentStatusApplied   PaymentStatus = "APPLIED"   // Fully applied to charges
	PaymentStatusPartial   PaymentStatus = "PARTIAL"   // Some applied, some available
	PaymentStatusRejected  PaymentStatus = "REJECTED"  // Bounced or refused before application
	PaymentStatusCancelled PaymentStatus = "CANCELLED" // Voided, every application reversed
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusApplied, PaymentStatusPartial,
		PaymentStatusRejected, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the payment can no longer change
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusRejected || s == PaymentStatusCancelled
}

// CanApply returns true if the payment may be applied to charges
func (s PaymentStatus) CanApply() bool {
	return s == PaymentStatusPending || s == PaymentStatusPartial
}

// FormatReceiptNumber builds the REC-NNNNNN receipt number
func FormatReceiptNumber(seq int) string {
	return fmt.Sprintf("REC-%06d", seq)
}

// Payment represents money received under a contract
type Payment struct {
	shared.TenantAggregateRoot
	ContractID      uuid.UUID
	PersonID        uuid.UUID
	ReceiptNumber   string
	Amount          decimal.Decimal
	Type            PaymentType
	PaymentDate     time.Time
	Reference       string
	Bank            string
	CheckNumber     string
	Notes           string
	Status          PaymentStatus
	AmountApplied   decimal.Decimal
	AppliedAt       *time.Time
	CancelledAt     *time.Time
	RejectedAt      *time.Time
	RejectionReason string
}

// PaymentInput carries the fields of a new payment
type PaymentInput struct {
	ContractID  uuid.UUID
	PersonID    uuid.UUID
	Amount      decimal.Decimal
	Type        PaymentType
	PaymentDate time.Time
	Reference   string
	Bank        string
	CheckNumber string
	Notes       string
}

// NewPayment creates a PENDING payment
func NewPayment(tenantID uuid.UUID, receiptNumber string, in PaymentInput) (*Payment, error) {
	if in.ContractID == uuid.Nil {
		return nil, shared.NewValidationError("contract is required")
	}
	if in.PersonID == uuid.Nil {
		return nil, shared.NewValidationError("payer is required")
	}
	amount := valueobject.RoundCents(in.Amount)
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("payment amount must be positive")
	}
	if !in.Type.IsValid() {
		return nil, shared.NewValidationError("invalid payment type %q", in.Type)
	}
	if in.PaymentDate.IsZero() {
		return nil, shared.NewValidationError("payment date is required")
	}
	if in.Type == PaymentTypeCheck && strings.TrimSpace(in.CheckNumber) == "" {
		return nil, shared.NewValidationError("check number is required for check payments")
	}
	if receiptNumber == "" {
		return nil, shared.NewValidationError("receipt number cannot be empty")
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ContractID:          in.ContractID,
		PersonID:            in.PersonID,
		ReceiptNumber:       receiptNumber,
		Amount:              amount,
		Type:                in.Type,
		PaymentDate:         shared.DateOf(in.PaymentDate),
		Reference:           strings.TrimSpace(in.Reference),
		Bank:                strings.TrimSpace(in.Bank),
		CheckNumber:         strings.TrimSpace(in.CheckNumber),
		Notes:               in.Notes,
		Status:              PaymentStatusPending,
		AmountApplied:       decimal.Zero,
	}
	p.AddDomainEvent(NewPaymentCreatedEvent(p))
	return p, nil
}

// Available returns the amount not yet applied
func (p *Payment) Available() decimal.Decimal {
	return p.Amount.Sub(p.AmountApplied)
}

// RecordApplication adds amount to the applied total
func (p *Payment) RecordApplication(amount decimal.Decimal) error {
	if !p.Status.CanApply() {
		return shared.NewInvalidStateError("cannot apply payment in %s status", p.Status)
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("applied amount must be positive")
	}
	if amount.GreaterThan(p.Available()) {
		return shared.NewValidationError("applied amount %s exceeds available %s",
			amount.StringFixed(2), p.Available().StringFixed(2))
	}
	now := time.Now()
	p.AmountApplied = p.AmountApplied.Add(amount)
	p.AppliedAt = &now
	p.refreshStatus()
	p.touch()
	return nil
}

// FinishApplication emits PaymentApplied for the amount applied in one operation
func (p *Payment) FinishApplication(applied decimal.Decimal, charges int) {
	if applied.IsPositive() {
		p.AddDomainEvent(NewPaymentAppliedEvent(p, applied, charges))
	}
}

func (p *Payment) refreshStatus() {
	switch {
	case p.AmountApplied.IsZero():
		p.Status = PaymentStatusPending
	case p.Available().IsZero():
		p.Status = PaymentStatusApplied
	default:
		p.Status = PaymentStatusPartial
	}
}

// Cancel voids the payment. Callers reverse its applications first.
func (p *Payment) Cancel(reason string) error {
	if p.Status == PaymentStatusCancelled {
		return shared.NewInvalidStateError("payment is already cancelled")
	}
	now := time.Now()
	reversed := p.AmountApplied
	p.Status = PaymentStatusCancelled
	p.AmountApplied = decimal.Zero
	p.CancelledAt = &now
	if reason != "" {
		p.Notes = strings.TrimSpace(p.Notes + "\n" + reason)
	}
	p.touch()
	p.AddDomainEvent(NewPaymentCancelledEvent(p, reversed))
	return nil
}

// Reject marks an unapplied payment as bounced or refused
func (p *Payment) Reject(reason string) error {
	if p.Status != PaymentStatusPending || !p.AmountApplied.IsZero() {
		return shared.NewInvalidStateError("only pending payments with nothing applied can be rejected, status is %s", p.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewValidationError("rejection reason is required")
	}
	now := time.Now()
	p.Status = PaymentStatusRejected
	p.RejectedAt = &now
	p.RejectionReason = reason
	p.touch()
	p.AddDomainEvent(NewPaymentRejectedEvent(p))
	return nil
}

func (p *Payment) touch() {
	p.Touch(time.Now())
	p.IncrementVersion()
}

// PaymentApplication links part of a payment to a charge. Rows are never
// updated except to mark them reversed.
type PaymentApplication struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	PaymentID  uuid.UUID
	ChargeID   uuid.UUID
	Amount     decimal.Decimal
	AppliedAt  time.Time
	ReversedAt *time.Time
	CreatedAt  time.Time
}

// NewPaymentApplication creates a live application
func NewPaymentApplication(tenantID, paymentID, chargeID uuid.UUID, amount decimal.Decimal) *PaymentApplication {
	now := time.Now()
	return &PaymentApplication{
		ID:        shared.NewID(),
		TenantID:  tenantID,
		PaymentID: paymentID,
		ChargeID:  chargeID,
		Amount:    amount,
		AppliedAt: now,
		CreatedAt: now,
	}
}

// IsLive returns true while the application has not been reversed
func (a *PaymentApplication) IsLive() bool {
	return a.ReversedAt == nil
}

// MarkReversed voids the application
func (a *PaymentApplication) MarkReversed() error {
	if !a.IsLive() {
		return shared.NewInvalidStateError("payment application %s is already reversed", a.ID)
	}
	now := time.Now()
	a.ReversedAt = &now
	return nil
}
