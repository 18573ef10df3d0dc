package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	appCollections "github.com/inmobiliaria/backend/internal/application/collections"
	appLease "github.com/inmobiliaria/backend/internal/application/lease"
	appLedger "github.com/inmobiliaria/backend/internal/application/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ExpiryScanner raises expiring-soon and expired notices for contracts
type ExpiryScanner interface {
	ScanExpirations(ctx context.Context, tenantID uuid.UUID) (*appLease.ExpiryScanResult, error)
	ScanAllTenants(ctx context.Context) (*appLease.ExpiryScanResult, error)
}

// ChargeJobs is the batch surface of the charge service
type ChargeJobs interface {
	GenerateFixedCharges(ctx context.Context, tenantID uuid.UUID, req appLedger.GenerateChargesRequest) (*appLedger.GenerateChargesResult, error)
	GenerateAllTenants(ctx context.Context, year, month int) (*appLedger.GenerateChargesResult, error)
	MarkOverdue(ctx context.Context, tenantID uuid.UUID) (*appLedger.OverdueScanResult, error)
	MarkOverdueAllTenants(ctx context.Context) (*appLedger.OverdueScanResult, error)
}

// CollectionJobs is the batch surface of the collections service
type CollectionJobs interface {
	SyncFromAging(ctx context.Context, tenantID uuid.UUID, asOf *time.Time) (*appCollections.SyncResult, error)
	SyncAllTenants(ctx context.Context) (*appCollections.SyncResult, error)
	AccrueAll(ctx context.Context, tenantID uuid.UUID, asOf *time.Time) (*appCollections.AccrualResult, error)
	AccrueAllTenants(ctx context.Context) (*appCollections.AccrualResult, error)
}

// LedgerJobExecutor dispatches scheduler jobs to the application services
type LedgerJobExecutor struct {
	contracts   ExpiryScanner
	charges     ChargeJobs
	collections CollectionJobs
	clock       shared.Clock
	logger      *zap.Logger
}

// NewLedgerJobExecutor creates a new executor
func NewLedgerJobExecutor(
	contracts ExpiryScanner,
	charges ChargeJobs,
	collections CollectionJobs,
	clock shared.Clock,
	logger *zap.Logger,
) *LedgerJobExecutor {
	if clock == nil {
		clock = shared.NewSystemClock(time.UTC)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerJobExecutor{
		contracts:   contracts,
		charges:     charges,
		collections: collections,
		clock:       clock,
		logger:      logger.Named("ledger_jobs"),
	}
}

// Execute runs one job. A daily cycle keeps going after a failed step so
// one bad tenant or step does not hold back the rest; the first error is
// still returned so the run is recorded as failed and retried.
func (e *LedgerJobExecutor) Execute(ctx context.Context, job *Job) error {
	if job.Type != JobTypeDailyCycle {
		summary, err := e.runStep(ctx, job, job.Type)
		job.Summary = summary
		return err
	}

	var firstErr error
	summaries := make([]string, 0, len(DailyCycleSteps()))
	for _, step := range DailyCycleSteps() {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary, err := e.runStep(ctx, job, step)
		if err != nil {
			e.logger.Error("Daily cycle step failed",
				zap.String("job_id", job.ID.String()),
				zap.String("step", string(step)),
				zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", step, err)
			}
			continue
		}
		summaries = append(summaries, summary)
	}
	job.Summary = strings.Join(summaries, "; ")
	return firstErr
}

func (e *LedgerJobExecutor) runStep(ctx context.Context, job *Job, step JobType) (string, error) {
	switch step {
	case JobTypeScanExpirations:
		var res *appLease.ExpiryScanResult
		var err error
		if job.TenantID == nil {
			res, err = e.contracts.ScanAllTenants(ctx)
		} else {
			res, err = e.contracts.ScanExpirations(ctx, *job.TenantID)
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("expirations scanned=%d expiring_soon=%d expired=%d",
			res.Scanned, res.ExpiringSoon, res.Expired), nil

	case JobTypeGenerateRent:
		year, month, err := e.period(job)
		if err != nil {
			return "", err
		}
		var res *appLedger.GenerateChargesResult
		if job.TenantID == nil {
			res, err = e.charges.GenerateAllTenants(ctx, year, month)
		} else {
			res, err = e.charges.GenerateFixedCharges(ctx, *job.TenantID, appLedger.GenerateChargesRequest{Year: year, Month: month})
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rent %04d-%02d generated=%d skipped=%d failed_tenants=%d",
			year, month, res.Generated, res.Skipped, res.FailedTenants), nil

	case JobTypeMarkOverdue:
		var res *appLedger.OverdueScanResult
		var err error
		if job.TenantID == nil {
			res, err = e.charges.MarkOverdueAllTenants(ctx)
		} else {
			res, err = e.charges.MarkOverdue(ctx, *job.TenantID)
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("overdue scanned=%d marked=%d failed_tenants=%d", res.Scanned, res.Marked, res.FailedTenants), nil

	case JobTypeSyncDelinquency:
		var res *appCollections.SyncResult
		var err error
		if job.TenantID == nil {
			res, err = e.collections.SyncAllTenants(ctx)
		} else {
			res, err = e.collections.SyncFromAging(ctx, *job.TenantID, nil)
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("delinquency opened=%d updated=%d closed=%d voided=%d failed_tenants=%d",
			res.Opened, res.Updated, res.Closed, res.Voided, res.FailedTenants), nil

	case JobTypeAccruePenalties:
		var res *appCollections.AccrualResult
		var err error
		if job.TenantID == nil {
			res, err = e.collections.AccrueAllTenants(ctx)
		} else {
			res, err = e.collections.AccrueAll(ctx, *job.TenantID, nil)
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("penalties accrued=%d total=%s failed_tenants=%d",
			res.Accrued, res.Total.StringFixed(2), res.FailedTenants), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidJobType, step)
}

// period resolves the job's rent month, defaulting to the current one
func (e *LedgerJobExecutor) period(job *Job) (int, int, error) {
	if job.Year == 0 && job.Month == 0 {
		today := shared.Today(e.clock)
		return today.Year(), int(today.Month()), nil
	}
	if job.Year < 2000 || job.Month < 1 || job.Month > 12 {
		return 0, 0, fmt.Errorf("%w: %d-%d", ErrInvalidPeriod, job.Year, job.Month)
	}
	return job.Year, job.Month, nil
}

var _ JobExecutor = (*LedgerJobExecutor)(nil)
