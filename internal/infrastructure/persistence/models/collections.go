package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// DelinquentAccountModel is the persistence model of a collections record.
// A charge has at most one open record.
type DelinquentAccountModel struct {
	AggregateModel
	TenantID       uuid.UUID                   `gorm:"type:uuid;not null;index;uniqueIndex:idx_delinquent_open_charge,priority:1,where:closed_at IS NULL"`
	CreatedBy      *uuid.UUID                  `gorm:"type:uuid"`
	ChargeID       uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_delinquent_open_charge,priority:2"`
	ContractID     uuid.UUID                   `gorm:"type:uuid;not null;index"`
	PersonID       uuid.UUID                   `gorm:"type:uuid;not null;index"`
	PropertyID     uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Concept        string                      `gorm:"type:varchar(200);not null"`
	OriginalAmount decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	PendingAmount  decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	PenaltyAmount  decimal.Decimal             `gorm:"type:decimal(18,2);not null;default:0"`
	PenaltyBilled  decimal.Decimal             `gorm:"type:decimal(18,2);not null;default:0"`
	DailyPenalty   decimal.Decimal             `gorm:"type:decimal(18,2);not null;default:0"`
	PenaltyPercent decimal.Decimal             `gorm:"type:decimal(5,2);not null;default:0"`
	DueDate        time.Time                   `gorm:"type:date;not null"`
	DaysOverdue    int                         `gorm:"not null;default:0"`
	Bucket         ledger.AgingBucket          `gorm:"type:varchar(20);not null;index"`
	State          collections.CollectionState `gorm:"type:varchar(30);not null;index"`
	PromisedDate   *time.Time                  `gorm:"type:date"`
	PromisedAmount *decimal.Decimal            `gorm:"type:decimal(18,2)"`
	LastContactAt  *time.Time
	NextActionDate *time.Time `gorm:"type:date"`
	Active         bool       `gorm:"not null;default:true"`
	ClosedAt       *time.Time
	CloseReason    collections.CloseReason `gorm:"type:varchar(30)"`
}

// TableName returns the table name for GORM
func (DelinquentAccountModel) TableName() string {
	return "delinquent_accounts"
}

// ToDomain converts the model to a domain DelinquentAccount
func (m *DelinquentAccountModel) ToDomain() *collections.DelinquentAccount {
	return &collections.DelinquentAccount{
		TenantAggregateRoot: m.ToTenantAggregateRoot(m.TenantID, m.CreatedBy),
		ChargeID:            m.ChargeID,
		ContractID:          m.ContractID,
		PersonID:            m.PersonID,
		PropertyID:          m.PropertyID,
		Concept:             m.Concept,
		OriginalAmount:      m.OriginalAmount,
		PendingAmount:       m.PendingAmount,
		PenaltyAmount:       m.PenaltyAmount,
		PenaltyBilled:       m.PenaltyBilled,
		DailyPenalty:        m.DailyPenalty,
		PenaltyPercent:      m.PenaltyPercent,
		DueDate:             m.DueDate,
		DaysOverdue:         m.DaysOverdue,
		Bucket:              m.Bucket,
		State:               m.State,
		PromisedDate:        m.PromisedDate,
		PromisedAmount:      m.PromisedAmount,
		LastContactAt:       m.LastContactAt,
		NextActionDate:      m.NextActionDate,
		Active:              m.Active,
		ClosedAt:            m.ClosedAt,
		CloseReason:         m.CloseReason,
	}
}

// FromDomain populates the model from a domain DelinquentAccount
func (m *DelinquentAccountModel) FromDomain(a *collections.DelinquentAccount) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.TenantID = a.TenantID
	m.CreatedBy = a.CreatedBy
	m.ChargeID = a.ChargeID
	m.ContractID = a.ContractID
	m.PersonID = a.PersonID
	m.PropertyID = a.PropertyID
	m.Concept = a.Concept
	m.OriginalAmount = a.OriginalAmount
	m.PendingAmount = a.PendingAmount
	m.PenaltyAmount = a.PenaltyAmount
	m.PenaltyBilled = a.PenaltyBilled
	m.DailyPenalty = a.DailyPenalty
	m.PenaltyPercent = a.PenaltyPercent
	m.DueDate = a.DueDate
	m.DaysOverdue = a.DaysOverdue
	m.Bucket = a.Bucket
	m.State = a.State
	m.PromisedDate = a.PromisedDate
	m.PromisedAmount = a.PromisedAmount
	m.LastContactAt = a.LastContactAt
	m.NextActionDate = a.NextActionDate
	m.Active = a.Active
	m.ClosedAt = a.ClosedAt
	m.CloseReason = a.CloseReason
}

// DelinquentAccountModelFromDomain creates a model from a domain DelinquentAccount
func DelinquentAccountModelFromDomain(a *collections.DelinquentAccount) *DelinquentAccountModel {
	m := &DelinquentAccountModel{}
	m.FromDomain(a)
	return m
}

// FollowUpModel is the persistence model of a collections contact. Rows are never updated.
type FollowUpModel struct {
	ID             uuid.UUID                  `gorm:"type:uuid;primaryKey"`
	TenantID       uuid.UUID                  `gorm:"type:uuid;not null;index"`
	AccountID      uuid.UUID                  `gorm:"type:uuid;not null;index"`
	ContactType    collections.ContactType    `gorm:"type:varchar(20);not null"`
	ContactedAt    time.Time                  `gorm:"not null"`
	Description    string                     `gorm:"type:text"`
	Outcome        collections.ContactOutcome `gorm:"type:varchar(30);not null"`
	PromisedDate   *time.Time                 `gorm:"type:date"`
	PromisedAmount *decimal.Decimal           `gorm:"type:decimal(18,2)"`
	NextAction     string                     `gorm:"type:varchar(200)"`
	NextActionDate *time.Time                 `gorm:"type:date;index"`
	UserID         *uuid.UUID                 `gorm:"type:uuid"`
	CreatedAt      time.Time                  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FollowUpModel) TableName() string {
	return "collection_follow_ups"
}

// ToDomain converts the model to a domain FollowUp
func (m *FollowUpModel) ToDomain() collections.FollowUp {
	return collections.FollowUp{
		ID:             m.ID,
		TenantID:       m.TenantID,
		AccountID:      m.AccountID,
		ContactType:    m.ContactType,
		ContactedAt:    m.ContactedAt,
		Description:    m.Description,
		Outcome:        m.Outcome,
		PromisedDate:   m.PromisedDate,
		PromisedAmount: m.PromisedAmount,
		NextAction:     m.NextAction,
		NextActionDate: m.NextActionDate,
		UserID:         m.UserID,
		CreatedAt:      m.CreatedAt,
	}
}

// FollowUpModelFromDomain creates a model from a domain FollowUp
func FollowUpModelFromDomain(f *collections.FollowUp) *FollowUpModel {
	return &FollowUpModel{
		ID:             f.ID,
		TenantID:       f.TenantID,
		AccountID:      f.AccountID,
		ContactType:    f.ContactType,
		ContactedAt:    f.ContactedAt,
		Description:    f.Description,
		Outcome:        f.Outcome,
		PromisedDate:   f.PromisedDate,
		PromisedAmount: f.PromisedAmount,
		NextAction:     f.NextAction,
		NextActionDate: f.NextActionDate,
		UserID:         f.UserID,
		CreatedAt:      f.CreatedAt,
	}
}

// ProjectionModel is the persistence model of a monthly collection projection
type ProjectionModel struct {
	AggregateModel
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_collection_projections_period,priority:1"`
	CreatedBy        *uuid.UUID      `gorm:"type:uuid"`
	Period           time.Time       `gorm:"type:date;not null;uniqueIndex:idx_collection_projections_period,priority:2"`
	ProjectedAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CollectedAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ContractCount    int             `gorm:"not null;default:0"`
	ExpectedPayments int             `gorm:"not null;default:0"`
	ReceivedPayments int             `gorm:"not null;default:0"`
	Notes            string          `gorm:"type:text"`
	RefreshedAt      *time.Time
}

// TableName returns the table name for GORM
func (ProjectionModel) TableName() string {
	return "collection_projections"
}

// ToDomain converts the model to a domain Projection
func (m *ProjectionModel) ToDomain() *collections.Projection {
	return &collections.Projection{
		TenantAggregateRoot: m.ToTenantAggregateRoot(m.TenantID, m.CreatedBy),
		Period:              m.Period,
		ProjectedAmount:     m.ProjectedAmount,
		CollectedAmount:     m.CollectedAmount,
		ContractCount:       m.ContractCount,
		ExpectedPayments:    m.ExpectedPayments,
		ReceivedPayments:    m.ReceivedPayments,
		Notes:               m.Notes,
		RefreshedAt:         m.RefreshedAt,
	}
}

// ProjectionModelFromDomain creates a model from a domain Projection
func ProjectionModelFromDomain(p *collections.Projection) *ProjectionModel {
	m := &ProjectionModel{
		TenantID:         p.TenantID,
		CreatedBy:        p.CreatedBy,
		Period:           p.Period,
		ProjectedAmount:  p.ProjectedAmount,
		CollectedAmount:  p.CollectedAmount,
		ContractCount:    p.ContractCount,
		ExpectedPayments: p.ExpectedPayments,
		ReceivedPayments: p.ReceivedPayments,
		Notes:            p.Notes,
		RefreshedAt:      p.RefreshedAt,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
