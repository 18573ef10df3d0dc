package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// BaseModel holds the identity and timestamp columns.
// Tenant columns are declared on each model so they can lead its composite indexes.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the optimistic lock version
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot copies identity, timestamps and version
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// ToTenantAggregateRoot rebuilds the common aggregate fields. The result is
// marked persisted at the loaded version.
func (m *AggregateModel) ToTenantAggregateRoot(tenantID uuid.UUID, createdBy *uuid.UUID) shared.TenantAggregateRoot {
	root := shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		TenantID:  tenantID,
		CreatedBy: createdBy,
	}
	root.MarkPersisted()
	return root
}

// All returns every model owned by this service, in dependency order.
// Used by AutoMigrate in tests.
func All() []any {
	return []any{
		&ContractModel{},
		&ChargeModel{},
		&PaymentModel{},
		&PaymentApplicationModel{},
		&DelinquentAccountModel{},
		&FollowUpModel{},
		&ProjectionModel{},
	}
}
