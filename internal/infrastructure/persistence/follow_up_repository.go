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

// GormFollowUpRepository implements FollowUpRepository using GORM.
// Follow-ups are a contact log and are never updated.
type GormFollowUpRepository struct {
	db *gorm.DB
}

// NewGormFollowUpRepository creates a new GormFollowUpRepository
func NewGormFollowUpRepository(db *gorm.DB) *GormFollowUpRepository {
	return &GormFollowUpRepository{db: db}
}

// Create appends a follow-up
func (r *GormFollowUpRepository) Create(ctx context.Context, followUp *collections.FollowUp) error {
	return r.db.WithContext(ctx).Create(models.FollowUpModelFromDomain(followUp)).Error
}

// FindByAccount lists the follow-ups of a record, newest first
func (r *GormFollowUpRepository) FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]collections.FollowUp, error) {
	var rows []models.FollowUpModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND account_id = ?", tenantID, accountID).
		Order("contacted_at DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return followUpsToDomain(rows), nil
}

// FindDueActions lists follow-ups of open records whose next action is due by day
func (r *GormFollowUpRepository) FindDueActions(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]collections.FollowUp, error) {
	var rows []models.FollowUpModel
	if err := r.db.WithContext(ctx).
		Table("collection_follow_ups AS f").
		Select("f.*").
		Joins("JOIN delinquent_accounts AS a ON a.id = f.account_id AND a.tenant_id = f.tenant_id").
		Where("f.tenant_id = ? AND a.closed_at IS NULL AND a.active = ?", tenantID, true).
		Where("f.next_action_date IS NOT NULL AND f.next_action_date <= ?", shared.DateOf(day)).
		Order("f.next_action_date ASC, f.id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return followUpsToDomain(rows), nil
}

func followUpsToDomain(rows []models.FollowUpModel) []collections.FollowUp {
	out := make([]collections.FollowUp, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ collections.FollowUpRepository = (*GormFollowUpRepository)(nil)
