package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentApplicationRepository implements PaymentApplicationRepository using GORM
type GormPaymentApplicationRepository struct {
	db *gorm.DB
}

// NewGormPaymentApplicationRepository creates a new GormPaymentApplicationRepository
func NewGormPaymentApplicationRepository(db *gorm.DB) *GormPaymentApplicationRepository {
	return &GormPaymentApplicationRepository{db: db}
}

// Create inserts a live application
func (r *GormPaymentApplicationRepository) Create(ctx context.Context, app *ledger.PaymentApplication) error {
	return r.db.WithContext(ctx).Create(models.PaymentApplicationModelFromDomain(app)).Error
}

// FindByPayment finds every application of a payment in the order they were made
func (r *GormPaymentApplicationRepository) FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]ledger.PaymentApplication, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID))
}

// FindLiveByPayment finds the applications of a payment that were not reversed
func (r *GormPaymentApplicationRepository) FindLiveByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]ledger.PaymentApplication, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("tenant_id = ? AND payment_id = ? AND reversed_at IS NULL", tenantID, paymentID))
}

func (r *GormPaymentApplicationRepository) find(_ context.Context, query *gorm.DB) ([]ledger.PaymentApplication, error) {
	var rows []models.PaymentApplicationModel
	if err := query.Order("applied_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.PaymentApplication, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// SumLiveByCharge sums the live applications of a charge
func (r *GormPaymentApplicationRepository) SumLiveByCharge(ctx context.Context, tenantID, chargeID uuid.UUID) (decimal.Decimal, error) {
	var out sumResult
	err := r.db.WithContext(ctx).Model(&models.PaymentApplicationModel{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ? AND charge_id = ? AND reversed_at IS NULL", tenantID, chargeID).
		Scan(&out).Error
	return out.Total, err
}

// MarkReversed stamps an application as reversed. Reversing twice is an invalid state.
func (r *GormPaymentApplicationRepository) MarkReversed(ctx context.Context, app *ledger.PaymentApplication) error {
	if app.ReversedAt == nil {
		return shared.NewInvalidStateError("payment application has no reversal time")
	}
	result := r.db.WithContext(ctx).Model(&models.PaymentApplicationModel{}).
		Where("tenant_id = ? AND id = ? AND reversed_at IS NULL", app.TenantID, app.ID).
		Update("reversed_at", *app.ReversedAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewInvalidStateError("payment application is already reversed")
	}
	return nil
}

var _ ledger.PaymentApplicationRepository = (*GormPaymentApplicationRepository)(nil)
