package persistence

import (
	"context"

	appcollections "github.com/inmobiliaria/backend/internal/application/collections"
	applease "github.com/inmobiliaria/backend/internal/application/lease"
	appledger "github.com/inmobiliaria/backend/internal/application/ledger"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// gormTransactionalRepositories builds repositories bound to one transaction.
// It satisfies the TransactionalRepositories interface of every application service.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ContractRepo returns the contract repository scoped to the current transaction
func (r *gormTransactionalRepositories) ContractRepo() lease.ContractRepository {
	return NewGormContractRepository(r.tx)
}

// ChargeRepo returns the charge repository scoped to the current transaction
func (r *gormTransactionalRepositories) ChargeRepo() ledger.ChargeRepository {
	return NewGormChargeRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction
func (r *gormTransactionalRepositories) PaymentRepo() ledger.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// ApplicationRepo returns the payment application repository scoped to the current transaction
func (r *gormTransactionalRepositories) ApplicationRepo() ledger.PaymentApplicationRepository {
	return NewGormPaymentApplicationRepository(r.tx)
}

// AccountRepo returns the delinquent account repository scoped to the current transaction
func (r *gormTransactionalRepositories) AccountRepo() collections.DelinquentAccountRepository {
	return NewGormDelinquentAccountRepository(r.tx)
}

// FollowUpRepo returns the follow-up repository scoped to the current transaction
func (r *gormTransactionalRepositories) FollowUpRepo() collections.FollowUpRepository {
	return NewGormFollowUpRepository(r.tx)
}

func runInTransaction(ctx context.Context, db *gorm.DB, fn func(repos *gormTransactionalRepositories) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormLeaseTransactionScope runs contract operations in a GORM transaction
type GormLeaseTransactionScope struct {
	db *gorm.DB
}

// NewGormLeaseTransactionScope creates a new GormLeaseTransactionScope
func NewGormLeaseTransactionScope(db *gorm.DB) *GormLeaseTransactionScope {
	return &GormLeaseTransactionScope{db: db}
}

// Execute runs fn in a transaction; an error rolls it back
func (s *GormLeaseTransactionScope) Execute(ctx context.Context, fn func(repos applease.TransactionalRepositories) error) error {
	return runInTransaction(ctx, s.db, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

// GormLedgerTransactionScope runs charge and payment operations in a GORM transaction
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute runs fn in a transaction; an error rolls it back
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return runInTransaction(ctx, s.db, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

// GormCollectionsTransactionScope runs delinquency operations in a GORM transaction
type GormCollectionsTransactionScope struct {
	db *gorm.DB
}

// NewGormCollectionsTransactionScope creates a new GormCollectionsTransactionScope
func NewGormCollectionsTransactionScope(db *gorm.DB) *GormCollectionsTransactionScope {
	return &GormCollectionsTransactionScope{db: db}
}

// Execute runs fn in a transaction; an error rolls it back
func (s *GormCollectionsTransactionScope) Execute(ctx context.Context, fn func(repos appcollections.TransactionalRepositories) error) error {
	return runInTransaction(ctx, s.db, func(repos *gormTransactionalRepositories) error { return fn(repos) })
}

var (
	_ applease.TransactionScope       = (*GormLeaseTransactionScope)(nil)
	_ appledger.TransactionScope      = (*GormLedgerTransactionScope)(nil)
	_ appcollections.TransactionScope = (*GormCollectionsTransactionScope)(nil)

	_ applease.TransactionalRepositories       = (*gormTransactionalRepositories)(nil)
	_ appledger.TransactionalRepositories      = (*gormTransactionalRepositories)(nil)
	_ appcollections.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
