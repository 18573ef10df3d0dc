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
	"github.com/inmobiliaria/backend/internal/infrastructure/scheduler"
	"github.com/stretchr/testify/mock"
)

// ptrOrNil returns args.Get(i) as *T, tolerating a nil return value.
func ptrOrNil[T any](args mock.Arguments, i int) *T {
	if v := args.Get(i); v != nil {
		return v.(*T)
	}
	return nil
}

func sliceOrNil[T any](args mock.Arguments, i int) []T {
	if v := args.Get(i); v != nil {
		return v.([]T)
	}
	return nil
}

type mockContractService struct{ mock.Mock }

func (m *mockContractService) Create(ctx context.Context, tenantID uuid.UUID, req leaseapp.CreateContractRequest) (*leaseapp.ContractResponse, error) {
	args := m.Called(ctx, tenantID, req)
	return ptrOrNil[leaseapp.ContractResponse](args, 0), args.Error(1)
}

func (m *mockContractService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*leaseapp.ContractResponse, error) {
	args := m.Called(ctx, tenantID, id)
	return ptrOrNil[leaseapp.ContractResponse](args, 0), args.Error(1)
}

func (m *mockContractService) List(ctx context.Context, tenantID uuid.UUID, filter leaseapp.ContractListFilter) ([]leaseapp.ContractResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return sliceOrNil[leaseapp.ContractResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *mockContractService) ListExpiring(ctx context.Context, tenantID uuid.UUID, days int) ([]leaseapp.ContractResponse, error) {
	args := m.Called(ctx, tenantID, days)
	return sliceOrNil[leaseapp.ContractResponse](args, 0), args.Error(1)
}

func (m *mockContractService) Stats(ctx context.Context, tenantID uuid.UUID) (*leaseapp.ContractStats, error) {
	args := m.Called(ctx, tenantID)
	return ptrOrNil[leaseapp.ContractStats](args, 0), args.Error(1)
}

func (m *mockContractService) UpdateDraft(ctx context.Context, tenantID, id uuid.UUID, req leaseapp.UpdateContractRequest) (*leaseapp.ContractResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	return ptrOrNil[leaseapp.ContractResponse](args, 0), args.Error(1)
}

func (m *mockContractService) UpdateNotes(ctx context.Context, tenantID, id uuid.UUID, req leaseapp.UpdateNotesRequest) (*leaseapp.ContractResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	return ptrOrNil[leaseapp.ContractResponse](args, 0), args.Error(1)
}

func (m *mockContractService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*leaseapp.ContractResponse, error) {
	args := m.Called(ctx, tenantID, id)
	return ptrOrNil[leaseapp.ContractResponse](args, 0), args.Error(1)
}

func (m *mockContractService) Terminate(ctx context.Context, tenantID, id uuid.UUID, req leaseapp.TerminateContractRequest) (*leaseapp.ContractResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	return ptrOrNil[leaseapp.ContractResponse](args, 0), args.Error(1)
}

func (m *mockContractService) Cancel(ctx context.Context, tenantID, id uuid.UUID, req leaseapp.CancelContractRequest) (*leaseapp.ContractResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	return ptrOrNil[leaseapp.ContractResponse](args, 0), args.Error(1)
}

func (m *mockContractService) Renew(ctx context.Context, tenantID, id uuid.UUID, req leaseapp.RenewContractRequest) (*leaseapp.RenewalResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	return ptrOrNil[leaseapp.RenewalResponse](args, 0), args.Error(1)
}

func (m *mockContractService) Delete(ctx context.Context, tenantID, id uuid.UUID) (*leaseapp.DeleteResult, error) {
	args := m.Called(ctx, tenantID, id)
	return ptrOrNil[leaseapp.DeleteResult](args, 0), args.Error(1)
}

func (m *mockContractService) ScanExpirations(ctx context.Context, tenantID uuid.UUID) (*leaseapp.ExpiryScanResult, error) {
	args := m.Called(ctx, tenantID)
	return ptrOrNil[leaseapp.ExpiryScanResult](args, 0), args.Error(1)
}

type mockChargeService struct{ mock.Mock }

func (m *mockChargeService) GenerateFixedCharges(ctx context.Context, tenantID uuid.UUID, req ledgerapp.GenerateChargesRequest) (*ledgerapp.GenerateChargesResult, error) {
	args := m.Called(ctx, tenantID, req)
	return ptrOrNil[ledgerapp.GenerateChargesResult](args, 0), args.Error(1)
}

func (m *mockChargeService) CreateAdHocCharge(ctx context.Context, tenantID uuid.UUID, req ledgerapp.CreateChargeRequest) (*ledgerapp.ChargeResponse, error) {
	args := m.Called(ctx, tenantID, req)
	return ptrOrNil[ledgerapp.ChargeResponse](args, 0), args.Error(1)
}

func (m *mockChargeService) CancelCharge(ctx context.Context, tenantID, id uuid.UUID, req ledgerapp.CancelChargeRequest) (*ledgerapp.ChargeResponse, error) {
	args := m.Called(ctx, tenantID, id, req)
	return ptrOrNil[ledgerapp.ChargeResponse](args, 0), args.Error(1)
}

func (m *mockChargeService) MarkOverdue(ctx context.Context, tenantID uuid.UUID) (*ledgerapp.OverdueScanResult, error) {
	args := m.Called(ctx, tenantID)
	return ptrOrNil[ledgerapp.OverdueScanResult](args, 0), args.Error(1)
}

func (m *mockChargeService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ledgerapp.ChargeResponse, error) {
	args := m.Called(ctx, tenantID, id)
	return ptrOrNil[ledgerapp.ChargeResponse](args, 0), args.Error(1)
}

func (m *mockChargeService) List(ctx context.Context, tenantID uuid.UUID, filter ledgerapp.ChargeListFilter) ([]ledgerapp.ChargeResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return sliceOrNil[ledgerapp.ChargeResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *mockChargeService) ListByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]ledgerapp.ChargeResponse, error) {
	args := m.Called(ctx, tenantID, contractID)
	return sliceOrNil[ledgerapp.ChargeResponse](args, 0), args.Error(1)
}

func (m *mockChargeService) OutstandingBalance(ctx context.Context, tenantID, contractID uuid.UUID) (*ledgerapp.OutstandingBalance, error) {
	args := m.Called(ctx, tenantID, contractID)
	return ptrOrNil[ledgerapp.OutstandingBalance](args, 0), args.Error(1)
}

func (m *mockChargeService) Stats(ctx context.Context, tenantID uuid.UUID) (*ledger.ChargeStats, error) {
	args := m.Called(ctx, tenantID)
	return ptrOrNil[ledger.ChargeStats](args, 0), args.Error(1)
}

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) CreatePayment(ctx context.Context, tenantID uuid.UUID, req ledgerapp.CreatePaymentRequest) (*ledgerapp.ApplicationResult, error) {
	args := m.Called(ctx, tenantID, req)
	return ptrOrNil[ledgerapp.ApplicationResult](args, 0), args.Error(1)
}

func (m *mockPaymentService) ApplyAutomatic(ctx context.Context, tenantID, paymentID uuid.UUID) (*ledgerapp.ApplicationResult, error) {
	args := m.Called(ctx, tenantID, paymentID)
	return ptrOrNil[ledgerapp.ApplicationResult](args, 0), args.Error(1)
}

func (m *mockPaymentService) ApplyManual(ctx context.Context, tenantID, paymentID uuid.UUID, req ledgerapp.ApplyManualRequest) (*ledgerapp.ApplicationResult, error) {
	args := m.Called(ctx, tenantID, paymentID, req)
	return ptrOrNil[ledgerapp.ApplicationResult](args, 0), args.Error(1)
}

func (m *mockPaymentService) CancelPayment(ctx context.Context, tenantID, paymentID uuid.UUID, req ledgerapp.CancelPaymentRequest) (*ledgerapp.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, paymentID, req)
	return ptrOrNil[ledgerapp.PaymentResponse](args, 0), args.Error(1)
}

func (m *mockPaymentService) RejectPayment(ctx context.Context, tenantID, paymentID uuid.UUID, req ledgerapp.RejectPaymentRequest) (*ledgerapp.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, paymentID, req)
	return ptrOrNil[ledgerapp.PaymentResponse](args, 0), args.Error(1)
}

func (m *mockPaymentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ledgerapp.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, id)
	return ptrOrNil[ledgerapp.PaymentResponse](args, 0), args.Error(1)
}

func (m *mockPaymentService) List(ctx context.Context, tenantID uuid.UUID, filter ledgerapp.PaymentListFilter) ([]ledgerapp.PaymentResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return sliceOrNil[ledgerapp.PaymentResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

type mockAgingService struct{ mock.Mock }

func (m *mockAgingService) Summarize(ctx context.Context, tenantID uuid.UUID, req ledgerapp.AgingScopeRequest) (*ledger.AgingSummary, error) {
	args := m.Called(ctx, tenantID, req)
	return ptrOrNil[ledger.AgingSummary](args, 0), args.Error(1)
}

func (m *mockAgingService) Report(ctx context.Context, tenantID uuid.UUID, requested *time.Time) (*ledgerapp.AgingReport, error) {
	args := m.Called(ctx, tenantID, requested)
	return ptrOrNil[ledgerapp.AgingReport](args, 0), args.Error(1)
}

type mockCollectionsService struct{ mock.Mock }

func (m *mockCollectionsService) SyncFromAging(ctx context.Context, tenantID uuid.UUID, asOf *time.Time) (*collectionsapp.SyncResult, error) {
	args := m.Called(ctx, tenantID, asOf)
	return ptrOrNil[collectionsapp.SyncResult](args, 0), args.Error(1)
}

func (m *mockCollectionsService) AccruePenalty(ctx context.Context, tenantID, accountID uuid.UUID, asOf *time.Time) (*collectionsapp.AccountResponse, error) {
	args := m.Called(ctx, tenantID, accountID, asOf)
	return ptrOrNil[collectionsapp.AccountResponse](args, 0), args.Error(1)
}

func (m *mockCollectionsService) AccrueAll(ctx context.Context, tenantID uuid.UUID, asOf *time.Time) (*collectionsapp.AccrualResult, error) {
	args := m.Called(ctx, tenantID, asOf)
	return ptrOrNil[collectionsapp.AccrualResult](args, 0), args.Error(1)
}

func (m *mockCollectionsService) RegisterFollowUp(ctx context.Context, tenantID, accountID uuid.UUID, req collectionsapp.FollowUpRequest) (*collectionsapp.FollowUpResult, error) {
	args := m.Called(ctx, tenantID, accountID, req)
	return ptrOrNil[collectionsapp.FollowUpResult](args, 0), args.Error(1)
}

func (m *mockCollectionsService) RecordPayment(ctx context.Context, tenantID, accountID uuid.UUID, req collectionsapp.RecordPaymentRequest) (*collectionsapp.AccountResponse, error) {
	args := m.Called(ctx, tenantID, accountID, req)
	return ptrOrNil[collectionsapp.AccountResponse](args, 0), args.Error(1)
}

func (m *mockCollectionsService) ChangeState(ctx context.Context, tenantID, accountID uuid.UUID, req collectionsapp.ChangeStateRequest) (*collectionsapp.AccountResponse, error) {
	args := m.Called(ctx, tenantID, accountID, req)
	return ptrOrNil[collectionsapp.AccountResponse](args, 0), args.Error(1)
}

func (m *mockCollectionsService) BillPenalty(ctx context.Context, tenantID, accountID uuid.UUID) (*collectionsapp.BillPenaltyResult, error) {
	args := m.Called(ctx, tenantID, accountID)
	return ptrOrNil[collectionsapp.BillPenaltyResult](args, 0), args.Error(1)
}

func (m *mockCollectionsService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*collectionsapp.AccountResponse, error) {
	args := m.Called(ctx, tenantID, id)
	return ptrOrNil[collectionsapp.AccountResponse](args, 0), args.Error(1)
}

func (m *mockCollectionsService) List(ctx context.Context, tenantID uuid.UUID, filter collectionsapp.AccountListFilter) ([]collectionsapp.AccountResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return sliceOrNil[collectionsapp.AccountResponse](args, 0), args.Get(1).(int64), args.Error(2)
}

func (m *mockCollectionsService) FollowUps(ctx context.Context, tenantID, accountID uuid.UUID) ([]collectionsapp.FollowUpResponse, error) {
	args := m.Called(ctx, tenantID, accountID)
	return sliceOrNil[collectionsapp.FollowUpResponse](args, 0), args.Error(1)
}

func (m *mockCollectionsService) DueActions(ctx context.Context, tenantID uuid.UUID, day *time.Time) ([]collectionsapp.FollowUpResponse, error) {
	args := m.Called(ctx, tenantID, day)
	return sliceOrNil[collectionsapp.FollowUpResponse](args, 0), args.Error(1)
}

func (m *mockCollectionsService) Summary(ctx context.Context, tenantID uuid.UUID) (*collections.Summary, error) {
	args := m.Called(ctx, tenantID)
	return ptrOrNil[collections.Summary](args, 0), args.Error(1)
}

func (m *mockCollectionsService) PortfolioReport(ctx context.Context, tenantID uuid.UUID) (*collectionsapp.PortfolioReport, error) {
	args := m.Called(ctx, tenantID)
	return ptrOrNil[collectionsapp.PortfolioReport](args, 0), args.Error(1)
}

type mockProjectionService struct{ mock.Mock }

func (m *mockProjectionService) Refresh(ctx context.Context, tenantID uuid.UUID, period time.Time) (*collectionsapp.ProjectionResponse, error) {
	args := m.Called(ctx, tenantID, period)
	return ptrOrNil[collectionsapp.ProjectionResponse](args, 0), args.Error(1)
}

func (m *mockProjectionService) Report(ctx context.Context, tenantID uuid.UUID, req collectionsapp.ProjectionRangeRequest) (*collectionsapp.ProjectionReport, error) {
	args := m.Called(ctx, tenantID, req)
	return ptrOrNil[collectionsapp.ProjectionReport](args, 0), args.Error(1)
}

func (m *mockProjectionService) UpdateNotes(ctx context.Context, tenantID uuid.UUID, period time.Time, req collectionsapp.UpdateProjectionNotesRequest) (*collectionsapp.ProjectionResponse, error) {
	args := m.Called(ctx, tenantID, period, req)
	return ptrOrNil[collectionsapp.ProjectionResponse](args, 0), args.Error(1)
}

type mockStatementService struct{ mock.Mock }

func (m *mockStatementService) AccountStatement(ctx context.Context, tenantID, contractID uuid.UUID, from, to *time.Time) (*reportapp.AccountStatement, error) {
	args := m.Called(ctx, tenantID, contractID, from, to)
	return ptrOrNil[reportapp.AccountStatement](args, 0), args.Error(1)
}

func (m *mockStatementService) Settlement(ctx context.Context, tenantID, contractID uuid.UUID, asOf *time.Time) (*reportapp.Settlement, error) {
	args := m.Called(ctx, tenantID, contractID, asOf)
	return ptrOrNil[reportapp.Settlement](args, 0), args.Error(1)
}

func (m *mockStatementService) MonthlyReport(ctx context.Context, tenantID uuid.UUID, year, month int) (*reportapp.MonthlyReport, error) {
	args := m.Called(ctx, tenantID, year, month)
	return ptrOrNil[reportapp.MonthlyReport](args, 0), args.Error(1)
}

type mockJobQueue struct{ mock.Mock }

func (m *mockJobQueue) SubmitJob(job *scheduler.Job) error {
	return m.Called(job).Error(0)
}

func (m *mockJobQueue) IsRunning() bool {
	return m.Called().Bool(0)
}

type mockCycleTrigger struct{ mock.Mock }

func (m *mockCycleTrigger) TriggerManualRun(ctx context.Context, tenantID *uuid.UUID) (*scheduler.Job, error) {
	args := m.Called(ctx, tenantID)
	return ptrOrNil[scheduler.Job](args, 0), args.Error(1)
}

func (m *mockCycleTrigger) GetStatus() scheduler.CronStatus {
	return m.Called().Get(0).(scheduler.CronStatus)
}

type mockJobHistory struct{ mock.Mock }

func (m *mockJobHistory) FindRecent(ctx context.Context, limit int) ([]scheduler.JobRecord, error) {
	args := m.Called(ctx, limit)
	return sliceOrNil[scheduler.JobRecord](args, 0), args.Error(1)
}

var (
	_ ContractService    = (*mockContractService)(nil)
	_ ChargeService      = (*mockChargeService)(nil)
	_ PaymentService     = (*mockPaymentService)(nil)
	_ AgingService       = (*mockAgingService)(nil)
	_ CollectionsService = (*mockCollectionsService)(nil)
	_ StatementService   = (*mockStatementService)(nil)
	_ JobQueue           = (*mockJobQueue)(nil)
	_ CycleTrigger       = (*mockCycleTrigger)(nil)
	_ JobHistory         = (*mockJobHistory)(nil)
)
