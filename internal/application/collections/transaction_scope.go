package collections

import (
	"context"

	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the collections repositories
type TransactionScope interface {
	// Execute runs fn within a database transaction. An error rolls everything back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to the current transaction.
// Charge and contract access is needed to bill penalties atomically.
type TransactionalRepositories interface {
	AccountRepo() collections.DelinquentAccountRepository
	FollowUpRepo() collections.FollowUpRepository
	ChargeRepo() ledger.ChargeRepository
	ContractRepo() lease.ContractRepository
}

// NoOpTransactionScope runs fn without a transaction. Used by tests.
type NoOpTransactionScope struct {
	accountRepo  collections.DelinquentAccountRepository
	followUpRepo collections.FollowUpRepository
	chargeRepo   ledger.ChargeRepository
	contractRepo lease.ContractRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	accountRepo collections.DelinquentAccountRepository,
	followUpRepo collections.FollowUpRepository,
	chargeRepo ledger.ChargeRepository,
	contractRepo lease.ContractRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		accountRepo:  accountRepo,
		followUpRepo: followUpRepo,
		chargeRepo:   chargeRepo,
		contractRepo: contractRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// AccountRepo returns the delinquent account repository
func (s *NoOpTransactionScope) AccountRepo() collections.DelinquentAccountRepository {
	return s.accountRepo
}

// FollowUpRepo returns the follow-up repository
func (s *NoOpTransactionScope) FollowUpRepo() collections.FollowUpRepository { return s.followUpRepo }

// ChargeRepo returns the charge repository
func (s *NoOpTransactionScope) ChargeRepo() ledger.ChargeRepository { return s.chargeRepo }

// ContractRepo returns the contract repository
func (s *NoOpTransactionScope) ContractRepo() lease.ContractRepository { return s.contractRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
