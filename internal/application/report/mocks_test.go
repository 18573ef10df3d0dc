package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockContractRepository is a mock implementation of lease.ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*lease.Contract, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lease.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter lease.ContractFilter) ([]lease.Contract, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]lease.Contract), args.Get(1).(int64), args.Error(2)
}

func (m *MockContractRepository) Count(ctx context.Context, tenantID uuid.UUID, filter lease.ContractFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContractRepository) FindInForce(ctx context.Context, tenantID uuid.UUID) ([]lease.Contract, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]lease.Contract), args.Error(1)
}

func (m *MockContractRepository) FindInForceByProperty(ctx context.Context, tenantID, propertyID uuid.UUID) ([]lease.Contract, error) {
	args := m.Called(ctx, tenantID, propertyID)
	return args.Get(0).([]lease.Contract), args.Error(1)
}

func (m *MockContractRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	args := m.Called(ctx, tenantID, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockContractRepository) LastNumberWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	args := m.Called(ctx, tenantID, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockContractRepository) FindTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, contract *lease.Contract) error {
	return m.Called(ctx, contract).Error(0)
}

func (m *MockContractRepository) SaveWithLock(ctx context.Context, contract *lease.Contract) error {
	return m.Called(ctx, contract).Error(0)
}

func (m *MockContractRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

// MockChargeRepository is a mock implementation of ledger.ChargeRepository
type MockChargeRepository struct {
	mock.Mock
}

func (m *MockChargeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Charge, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]ledger.Charge, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]ledger.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.ChargeFilter) ([]ledger.Charge, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ledger.Charge), args.Get(1).(int64), args.Error(2)
}

func (m *MockChargeRepository) FindByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]ledger.Charge, error) {
	args := m.Called(ctx, tenantID, contractID)
	return args.Get(0).([]ledger.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindOutstandingByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]ledger.Charge, error) {
	args := m.Called(ctx, tenantID, contractID)
	return args.Get(0).([]ledger.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindAgeable(ctx context.Context, tenantID uuid.UUID, scope ledger.AgingScope) ([]ledger.Charge, error) {
	args := m.Called(ctx, tenantID, scope)
	return args.Get(0).([]ledger.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindOverdueCandidates(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]ledger.Charge, error) {
	args := m.Called(ctx, tenantID, asOf)
	return args.Get(0).([]ledger.Charge), args.Error(1)
}

func (m *MockChargeRepository) ExistsRecurring(ctx context.Context, tenantID, contractID uuid.UUID, chargeType ledger.ChargeType, year, month int) (bool, error) {
	args := m.Called(ctx, tenantID, contractID, chargeType, year, month)
	return args.Bool(0), args.Error(1)
}

func (m *MockChargeRepository) CreateRecurring(ctx context.Context, charge *ledger.Charge) (bool, error) {
	args := m.Called(ctx, charge)
	return args.Bool(0), args.Error(1)
}

func (m *MockChargeRepository) Save(ctx context.Context, charge *ledger.Charge) error {
	return m.Called(ctx, charge).Error(0)
}

func (m *MockChargeRepository) SaveWithLock(ctx context.Context, charge *ledger.Charge) error {
	return m.Called(ctx, charge).Error(0)
}

func (m *MockChargeRepository) CountByContract(ctx context.Context, tenantID, contractID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, contractID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChargeRepository) FindRecurringDue(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]ledger.Charge, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]ledger.Charge), args.Error(1)
}

func (m *MockChargeRepository) Stats(ctx context.Context, tenantID uuid.UUID, today time.Time) (*ledger.ChargeStats, error) {
	args := m.Called(ctx, tenantID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ChargeStats), args.Error(1)
}

// MockPaymentRepository is a mock implementation of ledger.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentFilter) ([]ledger.Payment, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ledger.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) FindByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]ledger.Payment, error) {
	args := m.Called(ctx, tenantID, contractID)
	return args.Get(0).([]ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) LastReceiptNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *ledger.Payment) error {
	err := m.Called(ctx, payment).Error(0)
	if err == nil {
		payment.MarkPersisted()
	}
	return err
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, payment *ledger.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentRepository) CountByContract(ctx context.Context, tenantID, contractID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, contractID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) SumApplied(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
