package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByIDForTenant finds a contract by ID within a tenant
func (r *GormContractRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*lease.Contract, error) {
	var m models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindAllForTenant finds contracts matching filter and the total before pagination
func (r *GormContractRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter lease.ContractFilter) ([]lease.Contract, int64, error) {
	query := r.filtered(ctx, tenantID, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ContractModel
	if err := paginate(query, filter.Filter, ContractSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return contractsToDomain(rows), total, nil
}

// Count counts contracts matching filter
func (r *GormContractRepository) Count(ctx context.Context, tenantID uuid.UUID, filter lease.ContractFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, tenantID, filter).Count(&total).Error
	return total, err
}

// FindInForce finds every active contract whose stored status is in force
func (r *GormContractRepository) FindInForce(ctx context.Context, tenantID uuid.UUID) ([]lease.Contract, error) {
	var rows []models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ? AND status IN ?", tenantID, true, inForceStatuses()).
		Order("contract_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return contractsToDomain(rows), nil
}

// FindInForceByProperty finds the in-force contracts of a property
func (r *GormContractRepository) FindInForceByProperty(ctx context.Context, tenantID, propertyID uuid.UUID) ([]lease.Contract, error) {
	var rows []models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND property_id = ? AND active = ? AND status IN ?", tenantID, propertyID, true, inForceStatuses()).
		Order("start_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return contractsToDomain(rows), nil
}

// ExistsByNumber checks whether a contract number is taken within the tenant
func (r *GormContractRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ContractModel{}).
		Where("tenant_id = ? AND contract_number = ?", tenantID, number).
		Count(&count).Error
	return count > 0, err
}

// LastNumberWithPrefix returns the highest contract number starting with prefix,
// comparing length first so sequences past the padding still win
func (r *GormContractRepository) LastNumberWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.ContractModel{}).
		Where("tenant_id = ? AND contract_number LIKE ?", tenantID, prefix+"%").
		Order("LENGTH(contract_number) DESC, contract_number DESC").
		Limit(1).
		Pluck("contract_number", &numbers).Error; err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// FindTenantIDs lists the tenants owning at least one in-force contract
func (r *GormContractRepository) FindTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.ContractModel{}).
		Where("active = ? AND status IN ?", true, inForceStatuses()).
		Distinct().
		Order("tenant_id").
		Pluck("tenant_id", &ids).Error
	return ids, err
}

// Save creates or fully overwrites a contract without a version check
func (r *GormContractRepository) Save(ctx context.Context, contract *lease.Contract) error {
	m := models.ContractModelFromDomain(contract)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError(shared.CodeAlreadyExists,
				fmt.Sprintf("contract number %s already exists", contract.ContractNumber))
		}
		return err
	}
	contract.MarkPersisted()
	return nil
}

// SaveWithLock updates a contract only if storage still holds the version it was loaded at
func (r *GormContractRepository) SaveWithLock(ctx context.Context, contract *lease.Contract) error {
	m := models.ContractModelFromDomain(contract)
	result := r.db.WithContext(ctx).
		Model(&models.ContractModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", contract.TenantID, contract.ID, contract.PersistedVersion()).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError("contract " + contract.ContractNumber)
	}
	contract.MarkPersisted()
	return nil
}

// Delete permanently removes a contract
func (r *GormContractRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.ContractModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormContractRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter lease.ContractFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.ContractModel{}).Where("tenant_id = ?", tenantID)

	if filter.DisplayStatus != nil {
		w := lease.WindowFor(*filter.DisplayStatus, filter.Today)
		query = query.Where("status IN ?", w.Stored)
		if w.EndAfter != nil {
			query = query.Where("end_date > ?", *w.EndAfter)
		}
		if w.EndOnOrBefore != nil {
			query = query.Where("end_date <= ?", *w.EndOnOrBefore)
		}
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.PersonID != nil {
		query = query.Where("person_id = ?", *filter.PersonID)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.EndingWithin != nil {
		today := shared.DateOf(filter.Today)
		query = query.Where("status IN ? AND end_date >= ? AND end_date <= ?",
			inForceStatuses(), today, today.AddDate(0, 0, *filter.EndingWithin))
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(contract_number) LIKE LOWER(?) OR LOWER(notes) LIKE LOWER(?)", like, like)
	}
	return query
}

func inForceStatuses() []lease.ContractStatus {
	return []lease.ContractStatus{
		lease.ContractStatusActive,
		lease.ContractStatusExpiringSoon,
		lease.ContractStatusExpired,
	}
}

func contractsToDomain(rows []models.ContractModel) []lease.Contract {
	out := make([]lease.Contract, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ lease.ContractRepository = (*GormContractRepository)(nil)
