package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProjectionRepository implements ProjectionRepository using GORM
type GormProjectionRepository struct {
	db *gorm.DB
}

// NewGormProjectionRepository creates a new GormProjectionRepository
func NewGormProjectionRepository(db *gorm.DB) *GormProjectionRepository {
	return &GormProjectionRepository{db: db}
}

// FindByPeriod finds the projection of the month containing period
func (r *GormProjectionRepository) FindByPeriod(ctx context.Context, tenantID uuid.UUID, period time.Time) (*collections.Projection, error) {
	var m models.ProjectionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND period = ?", tenantID, collections.PeriodOf(period)).
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindRange lists the projections of the months within [from, to], oldest first
func (r *GormProjectionRepository) FindRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]collections.Projection, error) {
	var rows []models.ProjectionModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND period >= ? AND period <= ?", tenantID, collections.PeriodOf(from), collections.PeriodOf(to)).
		Order("period ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]collections.Projection, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a projection. idx_collection_projections_period allows one per month.
func (r *GormProjectionRepository) Create(ctx context.Context, projection *collections.Projection) error {
	if err := r.db.WithContext(ctx).Create(models.ProjectionModelFromDomain(projection)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "projection already exists for "+projection.Period.Format("2006-01"))
		}
		return err
	}
	projection.MarkPersisted()
	return nil
}

// SaveWithLock updates a projection only if storage still holds the version it was loaded at
func (r *GormProjectionRepository) SaveWithLock(ctx context.Context, projection *collections.Projection) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProjectionModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", projection.TenantID, projection.ID, projection.PersistedVersion()).
		Select("*").
		Omit("id", "tenant_id", "period", "created_at", "created_by").
		Updates(models.ProjectionModelFromDomain(projection))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError("projection " + projection.Period.Format("2006-01"))
	}
	projection.MarkPersisted()
	return nil
}

var _ collections.ProjectionRepository = (*GormProjectionRepository)(nil)
