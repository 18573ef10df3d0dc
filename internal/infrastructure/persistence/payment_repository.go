package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByIDForTenant finds a payment by ID within a tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Payment, error) {
	var m models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return m.ToDomain(), nil
}

// FindAllForTenant finds payments matching filter and the total before pagination
func (r *GormPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentFilter) ([]ledger.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).Where("tenant_id = ?", tenantID)
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.PersonID != nil {
		query = query.Where("person_id = ?", *filter.PersonID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("payment_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("payment_date <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("LOWER(receipt_number) LIKE LOWER(?) OR LOWER(reference) LIKE LOWER(?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PaymentModel
	if err := paginate(query, filter.Filter, PaymentSortFields, "payment_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return paymentsToDomain(rows), total, nil
}

// FindByContract finds every payment of a contract ordered by payment date
func (r *GormPaymentRepository) FindByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]ledger.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND contract_id = ?", tenantID, contractID).
		Order("payment_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(rows), nil
}

// LastReceiptNumber returns the highest receipt number of the tenant. Numbers
// outgrow their zero padding, so longer ones sort first.
func (r *GormPaymentRepository) LastReceiptNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("tenant_id = ?", tenantID).
		Order("LENGTH(receipt_number) DESC, receipt_number DESC").
		Limit(1).
		Pluck("receipt_number", &numbers).Error; err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// Create inserts a payment. Two writers racing for the same receipt number
// surface as a concurrency conflict so the caller retries with a fresh number.
func (r *GormPaymentRepository) Create(ctx context.Context, payment *ledger.Payment) error {
	if err := r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewConcurrencyError("receipt number " + payment.ReceiptNumber)
		}
		return err
	}
	payment.MarkPersisted()
	return nil
}

// SaveWithLock updates a payment only if storage still holds the version it was loaded at
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *ledger.Payment) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND id = ? AND version = ?", payment.TenantID, payment.ID, payment.PersistedVersion()).
		Select("*").
		Omit("id", "tenant_id", "contract_id", "person_id", "receipt_number", "created_at", "created_by").
		Updates(models.PaymentModelFromDomain(payment))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError("payment " + payment.ReceiptNumber)
	}
	payment.MarkPersisted()
	return nil
}

// CountByContract counts the payments of a contract
func (r *GormPaymentRepository) CountByContract(ctx context.Context, tenantID, contractID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND contract_id = ?", tenantID, contractID).
		Count(&count).Error
	return count, err
}

// SumApplied sums the applied amount of live payments dated within [from, to]
func (r *GormPaymentRepository) SumApplied(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var out sumResult
	err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount_applied), 0) AS total").
		Where("tenant_id = ? AND status IN ? AND payment_date >= ? AND payment_date <= ?",
			tenantID,
			[]ledger.PaymentStatus{ledger.PaymentStatusApplied, ledger.PaymentStatusPartial},
			shared.DateOf(from), shared.DateOf(to)).
		Scan(&out).Error
	return out.Total, err
}

func paymentsToDomain(rows []models.PaymentModel) []ledger.Payment {
	out := make([]ledger.Payment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
