package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDelinquentAccountRepository implements DelinquentAccountRepository using GORM
type GormDelinquentAccountRepository struct {
	db *gorm.DB
}

// NewGormDelinquentAccountRepository creates a new GormDelinquentAccountRepository
func NewGormDelinquentAccountRepository(db *gorm.DB) *GormDelinquentAccountRepository {
	return &GormDelinquentAccountRepository{db: db}
}

// FindByIDForTenant finds a record by ID within a tenant
func (r *GormDelinquentAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*collections.DelinquentAccount, error) {
	var m models.DelinquentAccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindOpenByCharge finds the open record of a charge
func (r *GormDelinquentAccountRepository) FindOpenByCharge(ctx context.Context, tenantID, chargeID uuid.UUID) (*collections.DelinquentAccount, error) {
	var m models.DelinquentAccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND charge_id = ? AND closed_at IS NULL AND active = ?", tenantID, chargeID, true).
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindLatestClosedByCharge finds the most recently closed record of a charge
func (r *GormDelinquentAccountRepository) FindLatestClosedByCharge(ctx context.Context, tenantID, chargeID uuid.UUID) (*collections.DelinquentAccount, error) {
	var m models.DelinquentAccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND charge_id = ? AND closed_at IS NOT NULL", tenantID, chargeID).
		Order("closed_at DESC, id DESC").
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindOpen finds every open record of a tenant, oldest due date first
func (r *GormDelinquentAccountRepository) FindOpen(ctx context.Context, tenantID uuid.UUID) ([]collections.DelinquentAccount, error) {
	var rows []models.DelinquentAccountModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND closed_at IS NULL AND active = ?", tenantID, true).
		Order("due_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return accountsToDomain(rows), nil
}

// FindAllForTenant finds records matching filter and the total before pagination
func (r *GormDelinquentAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter collections.AccountFilter) ([]collections.DelinquentAccount, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DelinquentAccountModel{}).Where("tenant_id = ?", tenantID)
	if filter.OnlyOpen {
		query = query.Where("closed_at IS NULL AND active = ?", true)
	}
	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}
	if filter.Bucket != nil {
		query = query.Where("bucket = ?", *filter.Bucket)
	}
	if filter.PersonID != nil {
		query = query.Where("person_id = ?", *filter.PersonID)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(concept) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DelinquentAccountModel
	if err := paginate(query, filter.Filter, DelinquentAccountSortFields, "days_overdue").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return accountsToDomain(rows), total, nil
}

// Save creates a record or updates it without a version check. A second open
// record for the same charge violates idx_delinquent_open_charge.
func (r *GormDelinquentAccountRepository) Save(ctx context.Context, account *collections.DelinquentAccount) error {
	if err := r.db.WithContext(ctx).Save(models.DelinquentAccountModelFromDomain(account)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "charge already has an open delinquent account")
		}
		return err
	}
	account.MarkPersisted()
	return nil
}

// SaveWithLock updates a record only if storage still holds the version it was loaded at
func (r *GormDelinquentAccountRepository) SaveWithLock(ctx context.Context, account *collections.DelinquentAccount) error {
	result := r.db.WithContext(ctx).
		Model(&models.DelinquentAccountModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", account.TenantID, account.ID, account.PersistedVersion()).
		Select("*").
		Omit("id", "tenant_id", "charge_id", "contract_id", "person_id", "property_id", "created_at", "created_by").
		Updates(models.DelinquentAccountModelFromDomain(account))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError("delinquent account " + account.ID.String())
	}
	account.MarkPersisted()
	return nil
}

func accountsToDomain(rows []models.DelinquentAccountModel) []collections.DelinquentAccount {
	out := make([]collections.DelinquentAccount, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ collections.DelinquentAccountRepository = (*GormDelinquentAccountRepository)(nil)
