package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names published by the ledger aggregates
const (
	EventTypeChargeCreated         = "ChargeCreated"
	EventTypeChargeCancelled       = "ChargeCancelled"
	EventTypeChargeOverdue         = "ChargeOverdue"
	EventTypeChargePaymentApplied  = "ChargePaymentApplied"
	EventTypeChargePaymentReversed = "ChargePaymentReversed"
	EventTypePaymentCreated        = "PaymentCreated"
	EventTypePaymentApplied        = "PaymentApplied"
	EventTypePaymentCancelled      = "PaymentCancelled"
	EventTypePaymentRejected       = "PaymentRejected"
)

// Aggregate type names
const (
	AggregateTypeCharge  = "Charge"
	AggregateTypePayment = "Payment"
)

// ChargeCreatedEvent is raised when a charge is created
type ChargeCreatedEvent struct {
	shared.BaseDomainEvent
	ChargeID       uuid.UUID       `json:"charge_id"`
	ContractID     uuid.UUID       `json:"contract_id"`
	Type           ChargeType      `json:"type"`
	Concept        string          `json:"concept"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        time.Time       `json:"due_date"`
	FixedRecurring bool            `json:"fixed_recurring"`
}

// NewChargeCreatedEvent creates a new ChargeCreatedEvent
func NewChargeCreatedEvent(c *Charge) *ChargeCreatedEvent {
	return &ChargeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChargeCreated, AggregateTypeCharge, c.ID, c.TenantID),
		ChargeID:        c.ID,
		ContractID:      c.ContractID,
		Type:            c.Type,
		Concept:         c.Concept,
		Amount:          c.AmountOriginal,
		DueDate:         c.DueDate,
		FixedRecurring:  c.FixedRecurring,
	}
}

// ChargeCancelledEvent is raised when a charge is cancelled
type ChargeCancelledEvent struct {
	shared.BaseDomainEvent
	ChargeID   uuid.UUID       `json:"charge_id"`
	ContractID uuid.UUID       `json:"contract_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewChargeCancelledEvent creates a new ChargeCancelledEvent
func NewChargeCancelledEvent(c *Charge) *ChargeCancelledEvent {
	return &ChargeCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChargeCancelled, AggregateTypeCharge, c.ID, c.TenantID),
		ChargeID:        c.ID,
		ContractID:      c.ContractID,
		Amount:          c.AmountOriginal,
	}
}

// ChargeOverdueEvent is raised when a charge is first stored as OVERDUE
type ChargeOverdueEvent struct {
	shared.BaseDomainEvent
	ChargeID    uuid.UUID       `json:"charge_id"`
	ContractID  uuid.UUID       `json:"contract_id"`
	Concept     string          `json:"concept"`
	Pending     decimal.Decimal `json:"pending"`
	DueDate     time.Time       `json:"due_date"`
	DaysOverdue int             `json:"days_overdue"`
}

// NewChargeOverdueEvent creates a new ChargeOverdueEvent
func NewChargeOverdueEvent(c *Charge, today time.Time) *ChargeOverdueEvent {
	return &ChargeOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChargeOverdue, AggregateTypeCharge, c.ID, c.TenantID),
		ChargeID:        c.ID,
		ContractID:      c.ContractID,
		Concept:         c.Concept,
		Pending:         c.Pending(),
		DueDate:         c.DueDate,
		DaysOverdue:     c.DaysOverdue(today),
	}
}

// ChargePaymentEvent records money applied to or reversed from a charge
type ChargePaymentEvent struct {
	shared.BaseDomainEvent
	ChargeID   uuid.UUID       `json:"charge_id"`
	ContractID uuid.UUID       `json:"contract_id"`
	PaymentID  uuid.UUID       `json:"payment_id"`
	Amount     decimal.Decimal `json:"amount"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Pending    decimal.Decimal `json:"pending"`
	Status     ChargeStatus    `json:"status"`
}

// NewChargePaymentAppliedEvent creates the event for an application on a charge
func NewChargePaymentAppliedEvent(c *Charge, paymentID uuid.UUID, amount decimal.Decimal) *ChargePaymentEvent {
	return newChargePaymentEvent(EventTypeChargePaymentApplied, c, paymentID, amount)
}

// NewChargePaymentReversedEvent creates the event for a reversal on a charge
func NewChargePaymentReversedEvent(c *Charge, paymentID uuid.UUID, amount decimal.Decimal) *ChargePaymentEvent {
	return newChargePaymentEvent(EventTypeChargePaymentReversed, c, paymentID, amount)
}

func newChargePaymentEvent(eventType string, c *Charge, paymentID uuid.UUID, amount decimal.Decimal) *ChargePaymentEvent {
	return &ChargePaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCharge, c.ID, c.TenantID),
		ChargeID:        c.ID,
		ContractID:      c.ContractID,
		PaymentID:       paymentID,
		Amount:          amount,
		AmountPaid:      c.AmountPaid,
		Pending:         c.Pending(),
		Status:          c.Status,
	}
}

// PaymentCreatedEvent is raised when a payment is registered
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	ContractID    uuid.UUID       `json:"contract_id"`
	ReceiptNumber string          `json:"receipt_number"`
	Amount        decimal.Decimal `json:"amount"`
	Type          PaymentType     `json:"type"`
}

// NewPaymentCreatedEvent creates a new PaymentCreatedEvent
func NewPaymentCreatedEvent(p *Payment) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCreated, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		ContractID:      p.ContractID,
		ReceiptNumber:   p.ReceiptNumber,
		Amount:          p.Amount,
		Type:            p.Type,
	}
}

// PaymentAppliedEvent is raised once per apply operation
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	ContractID    uuid.UUID       `json:"contract_id"`
	ReceiptNumber string          `json:"receipt_number"`
	Applied       decimal.Decimal `json:"applied"`
	Available     decimal.Decimal `json:"available"`
	ChargeCount   int             `json:"charge_count"`
	Status        PaymentStatus   `json:"status"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(p *Payment, applied decimal.Decimal, charges int) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		ContractID:      p.ContractID,
		ReceiptNumber:   p.ReceiptNumber,
		Applied:         applied,
		Available:       p.Available(),
		ChargeCount:     charges,
		Status:          p.Status,
	}
}

// PaymentCancelledEvent is raised when a payment is voided
type PaymentCancelledEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	ContractID    uuid.UUID       `json:"contract_id"`
	ReceiptNumber string          `json:"receipt_number"`
	Reversed      decimal.Decimal `json:"reversed"`
}

// NewPaymentCancelledEvent creates a new PaymentCancelledEvent
func NewPaymentCancelledEvent(p *Payment, reversed decimal.Decimal) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCancelled, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		ContractID:      p.ContractID,
		ReceiptNumber:   p.ReceiptNumber,
		Reversed:        reversed,
	}
}

// PaymentRejectedEvent is raised when a payment bounces
type PaymentRejectedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID `json:"payment_id"`
	ContractID    uuid.UUID `json:"contract_id"`
	ReceiptNumber string    `json:"receipt_number"`
	Reason        string    `json:"reason"`
}

// NewPaymentRejectedEvent creates a new PaymentRejectedEvent
func NewPaymentRejectedEvent(p *Payment) *PaymentRejectedEvent {
	return &PaymentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRejected, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		ContractID:      p.ContractID,
		ReceiptNumber:   p.ReceiptNumber,
		Reason:          p.RejectionReason,
	}
}
