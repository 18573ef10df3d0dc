package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPartyDirectory answers existence checks against the property and
// person registries. Those tables belong to other modules; this code only reads them.
type GormPartyDirectory struct {
	db *gorm.DB
}

// NewGormPartyDirectory creates a new GormPartyDirectory
func NewGormPartyDirectory(db *gorm.DB) *GormPartyDirectory {
	return &GormPartyDirectory{db: db}
}

// PropertyExists reports whether an active property exists for the tenant
func (d *GormPartyDirectory) PropertyExists(ctx context.Context, tenantID, propertyID uuid.UUID) (bool, error) {
	return d.exists(ctx, &models.PropertyModel{}, tenantID, propertyID)
}

// PersonExists reports whether an active person exists for the tenant
func (d *GormPartyDirectory) PersonExists(ctx context.Context, tenantID, personID uuid.UUID) (bool, error) {
	return d.exists(ctx, &models.PersonModel{}, tenantID, personID)
}

func (d *GormPartyDirectory) exists(ctx context.Context, model any, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(model).
		Where("tenant_id = ? AND id = ? AND active = ?", tenantID, id, true).
		Count(&count).Error
	return count > 0, err
}

var _ lease.PartyDirectory = (*GormPartyDirectory)(nil)
