package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// ChargeModel is the persistence model of a charge. Fixed recurring charges
// are unique per contract, type and period; other charges leave the period
// NULL and are never caught by that index.
type ChargeModel struct {
	AggregateModel
	TenantID       uuid.UUID           `gorm:"type:uuid;not null;index;uniqueIndex:idx_charges_recurring_period,priority:1"`
	CreatedBy      *uuid.UUID          `gorm:"type:uuid"`
	ContractID     uuid.UUID           `gorm:"type:uuid;not null;index;uniqueIndex:idx_charges_recurring_period,priority:2"`
	Type           ledger.ChargeType   `gorm:"column:charge_type;type:varchar(20);not null;uniqueIndex:idx_charges_recurring_period,priority:3"`
	Concept        string              `gorm:"type:varchar(200);not null"`
	AmountOriginal decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	AmountPaid     decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	ChargeDate     time.Time           `gorm:"type:date;not null"`
	DueDate        time.Time           `gorm:"type:date;not null;index"`
	Status         ledger.ChargeStatus `gorm:"type:varchar(20);not null;index"`
	FixedRecurring bool                `gorm:"not null;default:false"`
	PeriodYear     *int                `gorm:"uniqueIndex:idx_charges_recurring_period,priority:4"`
	PeriodMonth    *int                `gorm:"uniqueIndex:idx_charges_recurring_period,priority:5"`
	Notes          string              `gorm:"type:text"`
	CancelledAt    *time.Time
}

// TableName returns the table name for GORM
func (ChargeModel) TableName() string {
	return "charges"
}

// ToDomain converts the model to a domain Charge
func (m *ChargeModel) ToDomain() *ledger.Charge {
	return &ledger.Charge{
		TenantAggregateRoot: m.ToTenantAggregateRoot(m.TenantID, m.CreatedBy),
		ContractID:          m.ContractID,
		Type:                m.Type,
		Concept:             m.Concept,
		AmountOriginal:      m.AmountOriginal,
		AmountPaid:          m.AmountPaid,
		ChargeDate:          m.ChargeDate,
		DueDate:             m.DueDate,
		Status:              m.Status,
		FixedRecurring:      m.FixedRecurring,
		PeriodMonth:         m.PeriodMonth,
		PeriodYear:          m.PeriodYear,
		Notes:               m.Notes,
		CancelledAt:         m.CancelledAt,
	}
}

// FromDomain populates the model from a domain Charge
func (m *ChargeModel) FromDomain(c *ledger.Charge) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.TenantID = c.TenantID
	m.CreatedBy = c.CreatedBy
	m.ContractID = c.ContractID
	m.Type = c.Type
	m.Concept = c.Concept
	m.AmountOriginal = c.AmountOriginal
	m.AmountPaid = c.AmountPaid
	m.ChargeDate = c.ChargeDate
	m.DueDate = c.DueDate
	m.Status = c.Status
	m.FixedRecurring = c.FixedRecurring
	m.PeriodMonth = c.PeriodMonth
	m.PeriodYear = c.PeriodYear
	m.Notes = c.Notes
	m.CancelledAt = c.CancelledAt
}

// ChargeModelFromDomain creates a model from a domain Charge
func ChargeModelFromDomain(c *ledger.Charge) *ChargeModel {
	m := &ChargeModel{}
	m.FromDomain(c)
	return m
}

// PaymentModel is the persistence model of a received payment
type PaymentModel struct {
	AggregateModel
	TenantID        uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_payments_tenant_receipt,priority:1"`
	CreatedBy       *uuid.UUID           `gorm:"type:uuid"`
	ContractID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	PersonID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	ReceiptNumber   string               `gorm:"type:varchar(30);not null;uniqueIndex:idx_payments_tenant_receipt,priority:2"`
	Amount          decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Type            ledger.PaymentType   `gorm:"column:payment_type;type:varchar(20);not null"`
	PaymentDate     time.Time            `gorm:"type:date;not null;index"`
	Reference       string               `gorm:"type:varchar(100)"`
	Bank            string               `gorm:"type:varchar(100)"`
	CheckNumber     string               `gorm:"type:varchar(50)"`
	Notes           string               `gorm:"type:text"`
	Status          ledger.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	AmountApplied   decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	AppliedAt       *time.Time
	CancelledAt     *time.Time
	RejectedAt      *time.Time
	RejectionReason string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain Payment
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		TenantAggregateRoot: m.ToTenantAggregateRoot(m.TenantID, m.CreatedBy),
		ContractID:          m.ContractID,
		PersonID:            m.PersonID,
		ReceiptNumber:       m.ReceiptNumber,
		Amount:              m.Amount,
		Type:                m.Type,
		PaymentDate:         m.PaymentDate,
		Reference:           m.Reference,
		Bank:                m.Bank,
		CheckNumber:         m.CheckNumber,
		Notes:               m.Notes,
		Status:              m.Status,
		AmountApplied:       m.AmountApplied,
		AppliedAt:           m.AppliedAt,
		CancelledAt:         m.CancelledAt,
		RejectedAt:          m.RejectedAt,
		RejectionReason:     m.RejectionReason,
	}
}

// FromDomain populates the model from a domain Payment
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.TenantID = p.TenantID
	m.CreatedBy = p.CreatedBy
	m.ContractID = p.ContractID
	m.PersonID = p.PersonID
	m.ReceiptNumber = p.ReceiptNumber
	m.Amount = p.Amount
	m.Type = p.Type
	m.PaymentDate = p.PaymentDate
	m.Reference = p.Reference
	m.Bank = p.Bank
	m.CheckNumber = p.CheckNumber
	m.Notes = p.Notes
	m.Status = p.Status
	m.AmountApplied = p.AmountApplied
	m.AppliedAt = p.AppliedAt
	m.CancelledAt = p.CancelledAt
	m.RejectedAt = p.RejectedAt
	m.RejectionReason = p.RejectionReason
}

// PaymentModelFromDomain creates a model from a domain Payment
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// PaymentApplicationModel is the persistence model of the link between a
// payment and a charge. Rows are append only apart from reversed_at.
type PaymentApplicationModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChargeID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AppliedAt  time.Time       `gorm:"not null"`
	ReversedAt *time.Time
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentApplicationModel) TableName() string {
	return "payment_applications"
}

// ToDomain converts the model to a domain PaymentApplication
func (m *PaymentApplicationModel) ToDomain() ledger.PaymentApplication {
	return ledger.PaymentApplication{
		ID:         m.ID,
		TenantID:   m.TenantID,
		PaymentID:  m.PaymentID,
		ChargeID:   m.ChargeID,
		Amount:     m.Amount,
		AppliedAt:  m.AppliedAt,
		ReversedAt: m.ReversedAt,
		CreatedAt:  m.CreatedAt,
	}
}

// PaymentApplicationModelFromDomain creates a model from a domain PaymentApplication
func PaymentApplicationModelFromDomain(a *ledger.PaymentApplication) *PaymentApplicationModel {
	return &PaymentApplicationModel{
		ID:         a.ID,
		TenantID:   a.TenantID,
		PaymentID:  a.PaymentID,
		ChargeID:   a.ChargeID,
		Amount:     a.Amount,
		AppliedAt:  a.AppliedAt,
		ReversedAt: a.ReversedAt,
		CreatedAt:  a.CreatedAt,
	}
}
