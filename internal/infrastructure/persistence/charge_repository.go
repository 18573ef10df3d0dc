package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormChargeRepository implements ChargeRepository using GORM
type GormChargeRepository struct {
	db *gorm.DB
}

// NewGormChargeRepository creates a new GormChargeRepository
func NewGormChargeRepository(db *gorm.DB) *GormChargeRepository {
	return &GormChargeRepository{db: db}
}

// FindByIDForTenant finds a charge by ID within a tenant
func (r *GormChargeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Charge, error) {
	var m models.ChargeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindByIDs finds the given charges of a tenant
func (r *GormChargeRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]ledger.Charge, error) {
	if len(ids) == 0 {
		return []ledger.Charge{}, nil
	}
	var rows []models.ChargeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("due_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return chargesToDomain(rows), nil
}

// FindAllForTenant finds charges matching filter and the total before pagination
func (r *GormChargeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.ChargeFilter) ([]ledger.Charge, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ChargeModel{}).Where("tenant_id = ?", tenantID)
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("charge_type = ?", *filter.Type)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(concept) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ChargeModel
	if err := paginate(query, filter.Filter, ChargeSortFields, "due_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return chargesToDomain(rows), total, nil
}

// FindByContract finds every charge of a contract ordered by charge date
func (r *GormChargeRepository) FindByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]ledger.Charge, error) {
	var rows []models.ChargeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND contract_id = ?", tenantID, contractID).
		Order("charge_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return chargesToDomain(rows), nil
}

// FindOutstandingByContract finds the charges of a contract that can still take
// money, oldest due date first with the id as tiebreaker.
func (r *GormChargeRepository) FindOutstandingByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]ledger.Charge, error) {
	var rows []models.ChargeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND contract_id = ?", tenantID, contractID).
		Where("status IN ? AND amount_original > amount_paid", outstandingStatuses()).
		Order("due_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return chargesToDomain(rows), nil
}

// FindAgeable finds the charges taking part in aging within scope
func (r *GormChargeRepository) FindAgeable(ctx context.Context, tenantID uuid.UUID, scope ledger.AgingScope) ([]ledger.Charge, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ? AND amount_original > amount_paid", tenantID, outstandingStatuses())
	if scope.ContractID != nil {
		query = query.Where("contract_id = ?", *scope.ContractID)
	}
	if scope.PersonID != nil {
		query = query.Where("contract_id IN (?)",
			r.db.Model(&models.ContractModel{}).
				Select("id").
				Where("tenant_id = ? AND person_id = ?", tenantID, *scope.PersonID))
	}

	var rows []models.ChargeModel
	if err := query.Order("due_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return chargesToDomain(rows), nil
}

// FindOverdueCandidates finds PENDING or PARTIAL charges due before asOf that still owe money
func (r *GormChargeRepository) FindOverdueCandidates(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]ledger.Charge, error) {
	var rows []models.ChargeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ? AND due_date < ? AND amount_original > amount_paid",
			tenantID,
			[]ledger.ChargeStatus{ledger.ChargeStatusPending, ledger.ChargeStatusPartial},
			shared.DateOf(asOf)).
		Order("due_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return chargesToDomain(rows), nil
}

// FindRecurringDue finds the live fixed recurring charges due within [from, to]
func (r *GormChargeRepository) FindRecurringDue(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]ledger.Charge, error) {
	var rows []models.ChargeModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND fixed_recurring = ? AND status <> ? AND due_date >= ? AND due_date <= ?",
			tenantID, true, ledger.ChargeStatusCancelled, shared.DateOf(from), shared.DateOf(to)).
		Order("due_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return chargesToDomain(rows), nil
}

// ExistsRecurring checks whether the fixed charge of a contract period exists
func (r *GormChargeRepository) ExistsRecurring(ctx context.Context, tenantID, contractID uuid.UUID, chargeType ledger.ChargeType, year, month int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChargeModel{}).
		Where("tenant_id = ? AND contract_id = ? AND charge_type = ? AND period_year = ? AND period_month = ?",
			tenantID, contractID, chargeType, year, month).
		Count(&count).Error
	return count > 0, err
}

// CreateRecurring inserts a fixed charge, leaving an existing one for the same
// period untouched. It reports whether a row was written.
func (r *GormChargeRepository) CreateRecurring(ctx context.Context, charge *ledger.Charge) (bool, error) {
	if !charge.FixedRecurring || charge.PeriodYear == nil || charge.PeriodMonth == nil {
		return false, fmt.Errorf("charge %s is not a fixed recurring charge", charge.ID)
	}
	m := models.ChargeModelFromDomain(charge)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	charge.MarkPersisted()
	return true, nil
}

// Save creates or fully overwrites a charge without a version check
func (r *GormChargeRepository) Save(ctx context.Context, charge *ledger.Charge) error {
	if err := r.db.WithContext(ctx).Save(models.ChargeModelFromDomain(charge)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "a charge for this period already exists")
		}
		return err
	}
	charge.MarkPersisted()
	return nil
}

// SaveWithLock updates a charge only if storage still holds the version it was loaded at
func (r *GormChargeRepository) SaveWithLock(ctx context.Context, charge *ledger.Charge) error {
	result := r.db.WithContext(ctx).
		Model(&models.ChargeModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", charge.TenantID, charge.ID, charge.PersistedVersion()).
		Select("*").
		Omit("id", "tenant_id", "contract_id", "created_at", "created_by").
		Updates(models.ChargeModelFromDomain(charge))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError("charge " + charge.ID.String())
	}
	charge.MarkPersisted()
	return nil
}

// CountByContract counts the charges of a contract
func (r *GormChargeRepository) CountByContract(ctx context.Context, tenantID, contractID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ChargeModel{}).
		Where("tenant_id = ? AND contract_id = ?", tenantID, contractID).
		Count(&count).Error
	return count, err
}

// sumResult receives a single aggregated amount aliased "total"
type sumResult struct {
	Total decimal.Decimal
}

type chargeTotals struct {
	Pending      decimal.Decimal
	PendingCount int64
	Overdue      decimal.Decimal
	OverdueCount int64
}

// Stats aggregates the outstanding totals of a tenant as of today and the
// money applied during today's month.
func (r *GormChargeRepository) Stats(ctx context.Context, tenantID uuid.UUID, today time.Time) (*ledger.ChargeStats, error) {
	today = shared.DateOf(today)

	var totals chargeTotals
	if err := r.db.WithContext(ctx).Model(&models.ChargeModel{}).
		Select(`COALESCE(SUM(amount_original - amount_paid), 0) AS pending,
			COUNT(*) AS pending_count,
			COALESCE(SUM(CASE WHEN due_date < ? THEN amount_original - amount_paid ELSE 0 END), 0) AS overdue,
			COALESCE(SUM(CASE WHEN due_date < ? THEN 1 ELSE 0 END), 0) AS overdue_count`, today, today).
		Where("tenant_id = ? AND status IN ? AND amount_original > amount_paid", tenantID, outstandingStatuses()).
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate charges: %w", err)
	}

	monthStart := shared.Date(today.Year(), today.Month(), 1)
	var collected sumResult
	if err := r.db.WithContext(ctx).Model(&models.PaymentApplicationModel{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ? AND reversed_at IS NULL AND applied_at >= ? AND applied_at < ?",
			tenantID, monthStart, monthStart.AddDate(0, 1, 0)).
		Scan(&collected).Error; err != nil {
		return nil, fmt.Errorf("failed to sum collections: %w", err)
	}

	return &ledger.ChargeStats{
		TotalPending:   totals.Pending,
		PendingCount:   totals.PendingCount,
		OverdueAmount:  totals.Overdue,
		OverdueCount:   totals.OverdueCount,
		CollectedMonth: collected.Total,
	}, nil
}

func outstandingStatuses() []ledger.ChargeStatus {
	return []ledger.ChargeStatus{
		ledger.ChargeStatusPending,
		ledger.ChargeStatusPartial,
		ledger.ChargeStatusOverdue,
	}
}

func chargesToDomain(rows []models.ChargeModel) []ledger.Charge {
	out := make([]ledger.Charge, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ ledger.ChargeRepository = (*GormChargeRepository)(nil)
