package collections

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.events))
	for i, e := range m.events {
		types[i] = e.EventType()
	}
	return types
}

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

// MockAccountRepository is a mock implementation of collections.DelinquentAccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*collections.DelinquentAccount, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collections.DelinquentAccount), args.Error(1)
}

func (m *MockAccountRepository) FindOpenByCharge(ctx context.Context, tenantID, chargeID uuid.UUID) (*collections.DelinquentAccount, error) {
	args := m.Called(ctx, tenantID, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collections.DelinquentAccount), args.Error(1)
}

func (m *MockAccountRepository) FindLatestClosedByCharge(ctx context.Context, tenantID, chargeID uuid.UUID) (*collections.DelinquentAccount, error) {
	args := m.Called(ctx, tenantID, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collections.DelinquentAccount), args.Error(1)
}

func (m *MockAccountRepository) FindOpen(ctx context.Context, tenantID uuid.UUID) ([]collections.DelinquentAccount, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]collections.DelinquentAccount), args.Error(1)
}

func (m *MockAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter collections.AccountFilter) ([]collections.DelinquentAccount, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]collections.DelinquentAccount), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *collections.DelinquentAccount) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) SaveWithLock(ctx context.Context, account *collections.DelinquentAccount) error {
	return m.Called(ctx, account).Error(0)
}

// MockFollowUpRepository is a mock implementation of collections.FollowUpRepository
type MockFollowUpRepository struct {
	mock.Mock
}

func (m *MockFollowUpRepository) Create(ctx context.Context, followUp *collections.FollowUp) error {
	return m.Called(ctx, followUp).Error(0)
}

func (m *MockFollowUpRepository) FindByAccount(ctx context.Context, tenantID, accountID uuid.UUID) ([]collections.FollowUp, error) {
	args := m.Called(ctx, tenantID, accountID)
	return args.Get(0).([]collections.FollowUp), args.Error(1)
}

func (m *MockFollowUpRepository) FindDueActions(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]collections.FollowUp, error) {
	args := m.Called(ctx, tenantID, day)
	return args.Get(0).([]collections.FollowUp), args.Error(1)
}

type MockProjectionRepository struct {
	mock.Mock
}

func (m *MockProjectionRepository) FindByPeriod(ctx context.Context, tenantID uuid.UUID, period time.Time) (*collections.Projection, error) {
	args := m.Called(ctx, tenantID, period)
	if p := args.Get(0); p != nil {
		return p.(*collections.Projection), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProjectionRepository) FindRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]collections.Projection, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]collections.Projection), args.Error(1)
}

func (m *MockProjectionRepository) Create(ctx context.Context, projection *collections.Projection) error {
	return m.Called(ctx, projection).Error(0)
}

func (m *MockProjectionRepository) SaveWithLock(ctx context.Context, projection *collections.Projection) error {
	return m.Called(ctx, projection).Error(0)
}
