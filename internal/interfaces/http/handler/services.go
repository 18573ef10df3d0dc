package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	collectionsapp "github.com/inmobiliaria/backend/internal/application/collections"
	leaseapp "github.com/inmobiliaria/backend/internal/application/lease"
	ledgerapp "github.com/inmobiliaria/backend/internal/application/ledger"
	reportapp "github.com/inmobiliaria/backend/internal/application/report"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
)

// The handlers depend on the slice of each application service they call.

type ContractService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req leaseapp.CreateContractRequest) (*leaseapp.ContractResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*leaseapp.ContractResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter leaseapp.ContractListFilter) ([]leaseapp.ContractResponse, int64, error)
	ListExpiring(ctx context.Context, tenantID uuid.UUID, days int) ([]leaseapp.ContractResponse, error)
	Stats(ctx context.Context, tenantID uuid.UUID) (*leaseapp.ContractStats, error)
	UpdateDraft(ctx context.Context, tenantID, id uuid.UUID, req leaseapp.UpdateContractRequest) (*leaseapp.ContractResponse, error)
	UpdateNotes(ctx context.Context, tenantID, id uuid.UUID, req leaseapp.UpdateNotesRequest) (*leaseapp.ContractResponse, error)
	Activate(ctx context.Context, tenantID, id uuid.UUID) (*leaseapp.ContractResponse, error)
	Terminate(ctx context.Context, tenantID, id uuid.UUID, req leaseapp.TerminateContractRequest) (*leaseapp.ContractResponse, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID, req leaseapp.CancelContractRequest) (*leaseapp.ContractResponse, error)
	Renew(ctx context.Context, tenantID, id uuid.UUID, req leaseapp.RenewContractRequest) (*leaseapp.RenewalResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) (*leaseapp.DeleteResult, error)
	ScanExpirations(ctx context.Context, tenantID uuid.UUID) (*leaseapp.ExpiryScanResult, error)
}

type ChargeService interface {
	GenerateFixedCharges(ctx context.Context, tenantID uuid.UUID, req ledgerapp.GenerateChargesRequest) (*ledgerapp.GenerateChargesResult, error)
	CreateAdHocCharge(ctx context.Context, tenantID uuid.UUID, req ledgerapp.CreateChargeRequest) (*ledgerapp.ChargeResponse, error)
	CancelCharge(ctx context.Context, tenantID, id uuid.UUID, req ledgerapp.CancelChargeRequest) (*ledgerapp.ChargeResponse, error)
	MarkOverdue(ctx context.Context, tenantID uuid.UUID) (*ledgerapp.OverdueScanResult, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ledgerapp.ChargeResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ledgerapp.ChargeListFilter) ([]ledgerapp.ChargeResponse, int64, error)
	ListByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]ledgerapp.ChargeResponse, error)
	OutstandingBalance(ctx context.Context, tenantID, contractID uuid.UUID) (*ledgerapp.OutstandingBalance, error)
	Stats(ctx context.Context, tenantID uuid.UUID) (*ledger.ChargeStats, error)
}

type PaymentService interface {
	CreatePayment(ctx context.Context, tenantID uuid.UUID, req ledgerapp.CreatePaymentRequest) (*ledgerapp.ApplicationResult, error)
	ApplyAutomatic(ctx context.Context, tenantID, paymentID uuid.UUID) (*ledgerapp.ApplicationResult, error)
	ApplyManual(ctx context.Context, tenantID, paymentID uuid.UUID, req ledgerapp.ApplyManualRequest) (*ledgerapp.ApplicationResult, error)
	CancelPayment(ctx context.Context, tenantID, paymentID uuid.UUID, req ledgerapp.CancelPaymentRequest) (*ledgerapp.PaymentResponse, error)
	RejectPayment(ctx context.Context, tenantID, paymentID uuid.UUID, req ledgerapp.RejectPaymentRequest) (*ledgerapp.PaymentResponse, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ledgerapp.PaymentResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ledgerapp.PaymentListFilter) ([]ledgerapp.PaymentResponse, int64, error)
}

type AgingService interface {
	Summarize(ctx context.Context, tenantID uuid.UUID, req ledgerapp.AgingScopeRequest) (*ledger.AgingSummary, error)
	Report(ctx context.Context, tenantID uuid.UUID, requested *time.Time) (*ledgerapp.AgingReport, error)
}

type CollectionsService interface {
	SyncFromAging(ctx context.Context, tenantID uuid.UUID, asOf *time.Time) (*collectionsapp.SyncResult, error)
	AccruePenalty(ctx context.Context, tenantID, accountID uuid.UUID, asOf *time.Time) (*collectionsapp.AccountResponse, error)
	AccrueAll(ctx context.Context, tenantID uuid.UUID, asOf *time.Time) (*collectionsapp.AccrualResult, error)
	RegisterFollowUp(ctx context.Context, tenantID, accountID uuid.UUID, req collectionsapp.FollowUpRequest) (*collectionsapp.FollowUpResult, error)
	RecordPayment(ctx context.Context, tenantID, accountID uuid.UUID, req collectionsapp.RecordPaymentRequest) (*collectionsapp.AccountResponse, error)
	ChangeState(ctx context.Context, tenantID, accountID uuid.UUID, req collectionsapp.ChangeStateRequest) (*collectionsapp.AccountResponse, error)
	BillPenalty(ctx context.Context, tenantID, accountID uuid.UUID) (*collectionsapp.BillPenaltyResult, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*collectionsapp.AccountResponse, error)
	List(ctx context.Context, tenantID uuid.UUID, filter collectionsapp.AccountListFilter) ([]collectionsapp.AccountResponse, int64, error)
	FollowUps(ctx context.Context, tenantID, accountID uuid.UUID) ([]collectionsapp.FollowUpResponse, error)
	DueActions(ctx context.Context, tenantID uuid.UUID, day *time.Time) ([]collectionsapp.FollowUpResponse, error)
	Summary(ctx context.Context, tenantID uuid.UUID) (*collections.Summary, error)
	PortfolioReport(ctx context.Context, tenantID uuid.UUID) (*collectionsapp.PortfolioReport, error)
}

type ProjectionService interface {
	Refresh(ctx context.Context, tenantID uuid.UUID, period time.Time) (*collectionsapp.ProjectionResponse, error)
	Report(ctx context.Context, tenantID uuid.UUID, req collectionsapp.ProjectionRangeRequest) (*collectionsapp.ProjectionReport, error)
	UpdateNotes(ctx context.Context, tenantID uuid.UUID, period time.Time, req collectionsapp.UpdateProjectionNotesRequest) (*collectionsapp.ProjectionResponse, error)
}

type StatementService interface {
	AccountStatement(ctx context.Context, tenantID, contractID uuid.UUID, from, to *time.Time) (*reportapp.AccountStatement, error)
	Settlement(ctx context.Context, tenantID, contractID uuid.UUID, asOf *time.Time) (*reportapp.Settlement, error)
	MonthlyReport(ctx context.Context, tenantID uuid.UUID, year, month int) (*reportapp.MonthlyReport, error)
}

var (
	_ ContractService    = (*leaseapp.ContractService)(nil)
	_ ChargeService      = (*ledgerapp.ChargeService)(nil)
	_ PaymentService     = (*ledgerapp.PaymentService)(nil)
	_ AgingService       = (*ledgerapp.AgingService)(nil)
	_ CollectionsService = (*collectionsapp.CollectionsService)(nil)
	_ ProjectionService  = (*collectionsapp.ProjectionService)(nil)
	_ StatementService   = (*reportapp.StatementService)(nil)
)
