package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model of a lease contract
type ContractModel struct {
	AggregateModel
	TenantID              uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_contracts_tenant_number,priority:1"`
	CreatedBy             *uuid.UUID           `gorm:"type:uuid"`
	ContractNumber        string               `gorm:"type:varchar(30);not null;uniqueIndex:idx_contracts_tenant_number,priority:2"`
	PropertyID            uuid.UUID            `gorm:"type:uuid;not null;index"`
	PersonID              uuid.UUID            `gorm:"type:uuid;not null;index"`
	GuarantorID           *uuid.UUID           `gorm:"type:uuid"`
	StartDate             time.Time            `gorm:"type:date;not null"`
	EndDate               time.Time            `gorm:"type:date;not null;index"`
	MonthlyRent           decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Deposit               decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	GuaranteeBond         decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	DailyPenalty          decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	PenaltyPercent        decimal.Decimal      `gorm:"type:decimal(5,2);not null;default:0"`
	GraceDays             int                  `gorm:"not null;default:0"`
	AnnualIncreasePercent decimal.Decimal      `gorm:"type:decimal(5,2);not null;default:0"`
	PaymentDay            int                  `gorm:"not null"`
	Conditions            string               `gorm:"type:text"`
	Status                lease.ContractStatus `gorm:"type:varchar(20);not null;index"`
	PredecessorID         *uuid.UUID           `gorm:"type:uuid;index"`
	Notes                 string               `gorm:"type:text"`
	TerminationReason     string               `gorm:"type:text"`
	CancelReason          string               `gorm:"type:text"`
	ActivatedAt           *time.Time
	TerminatedAt          *time.Time
	CancelledAt           *time.Time
	RenewedAt             *time.Time
	Active                bool                 `gorm:"not null;default:true"`
	ExpiryNotified        lease.ContractStatus `gorm:"type:varchar(20);not null;default:''"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the model to a domain Contract
func (m *ContractModel) ToDomain() *lease.Contract {
	return &lease.Contract{
		TenantAggregateRoot: m.ToTenantAggregateRoot(m.TenantID, m.CreatedBy),
		ContractNumber:      m.ContractNumber,
		Terms: lease.Terms{
			PropertyID:            m.PropertyID,
			PersonID:              m.PersonID,
			GuarantorID:           m.GuarantorID,
			StartDate:             m.StartDate,
			EndDate:               m.EndDate,
			MonthlyRent:           m.MonthlyRent,
			Deposit:               m.Deposit,
			GuaranteeBond:         m.GuaranteeBond,
			DailyPenalty:          m.DailyPenalty,
			PenaltyPercent:        m.PenaltyPercent,
			GraceDays:             m.GraceDays,
			AnnualIncreasePercent: m.AnnualIncreasePercent,
			PaymentDay:            m.PaymentDay,
			Conditions:            m.Conditions,
		},
		Status:            m.Status,
		PredecessorID:     m.PredecessorID,
		Notes:             m.Notes,
		TerminationReason: m.TerminationReason,
		CancelReason:      m.CancelReason,
		ActivatedAt:       m.ActivatedAt,
		TerminatedAt:      m.TerminatedAt,
		CancelledAt:       m.CancelledAt,
		RenewedAt:         m.RenewedAt,
		Active:            m.Active,
		ExpiryNotified:    m.ExpiryNotified,
	}
}

// FromDomain populates the model from a domain Contract
func (m *ContractModel) FromDomain(c *lease.Contract) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.TenantID = c.TenantID
	m.CreatedBy = c.CreatedBy
	m.ContractNumber = c.ContractNumber
	m.PropertyID = c.PropertyID
	m.PersonID = c.PersonID
	m.GuarantorID = c.GuarantorID
	m.StartDate = c.StartDate
	m.EndDate = c.EndDate
	m.MonthlyRent = c.MonthlyRent
	m.Deposit = c.Deposit
	m.GuaranteeBond = c.GuaranteeBond
	m.DailyPenalty = c.DailyPenalty
	m.PenaltyPercent = c.PenaltyPercent
	m.GraceDays = c.GraceDays
	m.AnnualIncreasePercent = c.AnnualIncreasePercent
	m.PaymentDay = c.PaymentDay
	m.Conditions = c.Conditions
	m.Status = c.Status
	m.PredecessorID = c.PredecessorID
	m.Notes = c.Notes
	m.TerminationReason = c.TerminationReason
	m.CancelReason = c.CancelReason
	m.ActivatedAt = c.ActivatedAt
	m.TerminatedAt = c.TerminatedAt
	m.CancelledAt = c.CancelledAt
	m.RenewedAt = c.RenewedAt
	m.Active = c.Active
	m.ExpiryNotified = c.ExpiryNotified
}

// ContractModelFromDomain creates a model from a domain Contract
func ContractModelFromDomain(c *lease.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}
