package ledger

import (
	"context"

	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the ledger repositories.
// Every charge and payment write of one operation runs inside a single Execute.
type TransactionScope interface {
	// Execute runs fn within a database transaction. An error rolls everything back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to the current transaction.
//
// Payment applications are append-only rows linking a payment to a charge;
// they are only ever stamped as reversed, never updated otherwise.
type TransactionalRepositories interface {
	ContractRepo() lease.ContractRepository
	ChargeRepo() ledger.ChargeRepository
	PaymentRepo() ledger.PaymentRepository
	ApplicationRepo() ledger.PaymentApplicationRepository
}

// NoOpTransactionScope runs fn without a transaction. Used by tests.
type NoOpTransactionScope struct {
	contractRepo    lease.ContractRepository
	chargeRepo      ledger.ChargeRepository
	paymentRepo     ledger.PaymentRepository
	applicationRepo ledger.PaymentApplicationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	contractRepo lease.ContractRepository,
	chargeRepo ledger.ChargeRepository,
	paymentRepo ledger.PaymentRepository,
	applicationRepo ledger.PaymentApplicationRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		contractRepo:    contractRepo,
		chargeRepo:      chargeRepo,
		paymentRepo:     paymentRepo,
		applicationRepo: applicationRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ContractRepo returns the contract repository
func (s *NoOpTransactionScope) ContractRepo() lease.ContractRepository { return s.contractRepo }

// ChargeRepo returns the charge repository
func (s *NoOpTransactionScope) ChargeRepo() ledger.ChargeRepository { return s.chargeRepo }

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() ledger.PaymentRepository { return s.paymentRepo }

// ApplicationRepo returns the payment application repository
func (s *NoOpTransactionScope) ApplicationRepo() ledger.PaymentApplicationRepository {
	return s.applicationRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
