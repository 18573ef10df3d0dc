package lease

import (
	"context"

	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the repositories a
// contract operation touches. Everything done inside fn commits or rolls back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to the current transaction
type TransactionalRepositories interface {
	ContractRepo() lease.ContractRepository
	ChargeRepo() ledger.ChargeRepository
	PaymentRepo() ledger.PaymentRepository
}

// NoOpTransactionScope runs fn without a transaction. Used by tests.
type NoOpTransactionScope struct {
	contractRepo lease.ContractRepository
	chargeRepo   ledger.ChargeRepository
	paymentRepo  ledger.PaymentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	contractRepo lease.ContractRepository,
	chargeRepo ledger.ChargeRepository,
	paymentRepo ledger.PaymentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		contractRepo: contractRepo,
		chargeRepo:   chargeRepo,
		paymentRepo:  paymentRepo,
	}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) ContractRepo() lease.ContractRepository { return s.contractRepo }
func (s *NoOpTransactionScope) ChargeRepo() ledger.ChargeRepository     { return s.chargeRepo }
func (s *NoOpTransactionScope) PaymentRepo() ledger.PaymentRepository   { return s.paymentRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
