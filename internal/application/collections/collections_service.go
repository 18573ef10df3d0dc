package collections

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/application/common"
	ledgerapp "github.com/inmobiliaria/backend/internal/application/ledger"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ServiceConfig tunes the collections service
type ServiceConfig struct {
	// MaxAttempts bounds how often a write is re-run after a version conflict
	MaxAttempts int
}

// DefaultServiceConfig returns the default collections configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{MaxAttempts: common.DefaultMaxAttempts}
}

// CollectionsService keeps the delinquency portfolio (cartera vencida) in
// step with the ledger and runs the collection workflow on top of it.
type CollectionsService struct {
	accountRepo    collections.DelinquentAccountRepository
	followUpRepo   collections.FollowUpRepository
	chargeRepo     ledger.ChargeRepository
	contractRepo   lease.ContractRepository
	txScope        TransactionScope
	clock          shared.Clock
	config         ServiceConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCollectionsService creates a new CollectionsService
func NewCollectionsService(
	accountRepo collections.DelinquentAccountRepository,
	followUpRepo collections.FollowUpRepository,
	chargeRepo ledger.ChargeRepository,
	contractRepo lease.ContractRepository,
	txScope TransactionScope,
	clock shared.Clock,
	config ServiceConfig,
	logger *zap.Logger,
) *CollectionsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = common.DefaultMaxAttempts
	}
	return &CollectionsService{
		accountRepo:  accountRepo,
		followUpRepo: followUpRepo,
		chargeRepo:   chargeRepo,
		contractRepo: contractRepo,
		txScope:      txScope,
		clock:        clock,
		config:       config,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CollectionsService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CollectionsService) publish(ctx context.Context, sources ...common.EventSource) {
	common.PublishEvents(ctx, s.eventPublisher, s.logger, common.CollectEvents(sources...))
}

func (s *CollectionsService) asOf(asOf *time.Time) time.Time {
	if asOf == nil || asOf.IsZero() {
		return shared.Today(s.clock)
	}
	return shared.DateOf(*asOf)
}

// SyncFromAging reconciles the open records of a tenant with the ledger as of a day.
// Overdue charges without a record get one, records of charges that are no
// longer outstanding are closed, and the rest re-mirror the charge balance.
// The run commits as one transaction: any failing record rolls it back.
func (s *CollectionsService) SyncFromAging(ctx context.Context, tenantID uuid.UUID, asOf *time.Time) (*SyncResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collections", "sync")
	defer span.End()
	day := s.asOf(asOf)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrAsOf, day.Format(time.DateOnly),
	)

	var result *SyncResult
	var touched []*collections.DelinquentAccount
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, "sync_collections", func(attempt int) error {
		telemetry.SetAttribute(span, telemetry.SpanAttrAttempt, attempt)
		result, touched = &SyncResult{}, nil
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			run := &syncRun{
				repos:    repos,
				tenantID: tenantID,
				day:      day,
				terms:    newTermsCache(repos.ContractRepo(), tenantID),
				result:   result,
			}
			if err := run.execute(ctx); err != nil {
				return err
			}
			touched = run.touched
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	for _, a := range touched {
		s.publish(ctx, a)
	}

	telemetry.AddEvent(span, "collections_synced",
		"opened", result.Opened,
		"updated", result.Updated,
		"closed", result.Closed,
		"voided", result.Voided,
	)
	s.logger.Info("Collections synced",
		zap.String("tenant_id", tenantID.String()),
		zap.String("as_of", day.Format(time.DateOnly)),
		zap.Int("opened", result.Opened),
		zap.Int("updated", result.Updated),
		zap.Int("closed", result.Closed),
		zap.Int("voided", result.Voided),
		zap.Int("unchanged", result.Unchanged))
	return result, nil
}

// syncRun is one attempt of SyncFromAging inside its transaction
type syncRun struct {
	repos    TransactionalRepositories
	tenantID uuid.UUID
	day      time.Time
	terms    *termsCache
	result   *SyncResult
	touched  []*collections.DelinquentAccount
}

func (r *syncRun) execute(ctx context.Context) error {
	charges, err := r.repos.ChargeRepo().FindAgeable(ctx, r.tenantID, ledger.AgingScope{})
	if err != nil {
		return err
	}
	open, err := r.repos.AccountRepo().FindOpen(ctx, r.tenantID)
	if err != nil {
		return err
	}
	byCharge := make(map[uuid.UUID]*collections.DelinquentAccount, len(open))
	for i := range open {
		byCharge[open[i].ChargeID] = &open[i]
	}

	for i := range charges {
		c := &charges[i]
		if a, ok := byCharge[c.ID]; ok {
			delete(byCharge, c.ID)
			if err := r.refresh(ctx, a, c.Pending()); err != nil {
				return err
			}
			continue
		}
		if !ledger.BucketFor(c.DaysOverdue(r.day)).IsOverdue() {
			continue
		}
		if err := r.open(ctx, c); err != nil {
			return err
		}
	}

	// Whatever is left no longer has an outstanding charge behind it
	for _, a := range byCharge {
		if err := r.close(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *syncRun) refresh(ctx context.Context, a *collections.DelinquentAccount, pending decimal.Decimal) error {
	if !a.Refresh(pending, r.day) {
		r.result.Unchanged++
		return nil
	}
	if err := r.repos.AccountRepo().SaveWithLock(ctx, a); err != nil {
		return err
	}
	r.result.Updated++
	r.touched = append(r.touched, a)
	return nil
}

// open starts a record for an overdue charge. A record closed earlier for the
// same charge hands over its penalty so the same days are never billed twice.
func (r *syncRun) open(ctx context.Context, c *ledger.Charge) error {
	contract, err := r.terms.get(ctx, c.ContractID)
	if err != nil {
		return fmt.Errorf("cannot open delinquent account for charge %s: %w", c.ID, err)
	}
	prior, err := r.repos.AccountRepo().FindLatestClosedByCharge(ctx, r.tenantID, c.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	a, err := collections.OpenDelinquentAccount(c, collections.OpenInput{
		PersonID:       contract.PersonID,
		PropertyID:     contract.PropertyID,
		DailyPenalty:   contract.DailyPenalty,
		PenaltyPercent: contract.PenaltyPercent,
		Prior:          prior,
	}, r.day)
	if err != nil {
		return err
	}
	if err := r.repos.AccountRepo().Save(ctx, a); err != nil {
		// Another sync opened it first; start over from its state
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.NewConcurrencyError("delinquent account")
		}
		return err
	}
	r.result.Opened++
	r.touched = append(r.touched, a)
	return nil
}

// close ends a record whose charge is no longer outstanding. A paid charge
// closes it as PAID; a cancelled one voids it.
func (r *syncRun) close(ctx context.Context, a *collections.DelinquentAccount) error {
	charge, err := r.repos.ChargeRepo().FindByIDForTenant(ctx, r.tenantID, a.ChargeID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if charge == nil || charge.IsCancelled() {
		if err := a.Void(r.day); err != nil {
			return err
		}
		r.result.Voided++
	} else {
		if err := a.Close(r.day); err != nil {
			return err
		}
		r.result.Closed++
	}
	if err := r.repos.AccountRepo().SaveWithLock(ctx, a); err != nil {
		return err
	}
	r.touched = append(r.touched, a)
	return nil
}

// termsCache loads each contract of a sync run once
type termsCache struct {
	repo      lease.ContractRepository
	tenantID  uuid.UUID
	contracts map[uuid.UUID]*lease.Contract
}

func newTermsCache(repo lease.ContractRepository, tenantID uuid.UUID) *termsCache {
	return &termsCache{repo: repo, tenantID: tenantID, contracts: make(map[uuid.UUID]*lease.Contract)}
}

func (c *termsCache) get(ctx context.Context, id uuid.UUID) (*lease.Contract, error) {
	if contract, ok := c.contracts[id]; ok {
		return contract, nil
	}
	contract, err := c.repo.FindByIDForTenant(ctx, c.tenantID, id)
	if err != nil {
		return nil, err
	}
	c.contracts[id] = contract
	return contract, nil
}

// SyncAllTenants runs SyncFromAging as of today for every tenant with in-force
// contracts. A tenant whose run rolls back is counted and the next one proceeds.
func (s *CollectionsService) SyncAllTenants(ctx context.Context) (*SyncResult, error) {
	tenants, err := s.contractRepo.FindTenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	total := &SyncResult{}
	for _, tenantID := range tenants {
		r, err := s.SyncFromAging(ctx, tenantID, nil)
		if err != nil {
			s.logger.Error("Collections sync failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
			total.FailedTenants++
			continue
		}
		total.Opened += r.Opened
		total.Updated += r.Updated
		total.Closed += r.Closed
		total.Voided += r.Voided
		total.Unchanged += r.Unchanged
	}
	return total, nil
}

// AccruePenalty raises the penalty of one record to dailyPenalty x daysOverdue(asOf).
// The stored penalty never decreases.
func (s *CollectionsService) AccruePenalty(ctx context.Context, tenantID, accountID uuid.UUID, asOf *time.Time) (*AccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collections", "accrue_penalty")
	defer span.End()
	day := s.asOf(asOf)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrAccountID, accountID.String(),
		telemetry.SpanAttrAsOf, day.Format(time.DateOnly),
	)

	return s.mutate(ctx, tenantID, accountID, "accrue_penalty", func(a *collections.DelinquentAccount) (bool, error) {
		return a.AccruePenalty(day)
	})
}

// AccrueAll accrues penalties on every open record of a tenant in one
// transaction. A record that cannot be saved rolls the run back.
func (s *CollectionsService) AccrueAll(ctx context.Context, tenantID uuid.UUID, asOf *time.Time) (*AccrualResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collections", "accrue_all")
	defer span.End()
	day := s.asOf(asOf)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrAsOf, day.Format(time.DateOnly),
	)

	var result *AccrualResult
	var accrued []*collections.DelinquentAccount
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, "accrue_penalties", func(attempt int) error {
		telemetry.SetAttribute(span, telemetry.SpanAttrAttempt, attempt)
		result, accrued = &AccrualResult{Total: decimal.Zero}, nil
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			open, err := repos.AccountRepo().FindOpen(ctx, tenantID)
			if err != nil {
				return err
			}
			result.Scanned = len(open)
			for i := range open {
				a := &open[i]
				grew, err := a.AccruePenalty(day)
				if err != nil {
					return fmt.Errorf("failed to accrue penalty on %s: %w", a.ID, err)
				}
				if grew {
					if err := repos.AccountRepo().SaveWithLock(ctx, a); err != nil {
						return err
					}
					accrued = append(accrued, a)
				}
				result.Total = result.Total.Add(a.PenaltyAmount)
			}
			result.Accrued = len(accrued)
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	for _, a := range accrued {
		s.publish(ctx, a)
	}
	s.logger.Info("Penalties accrued",
		zap.String("tenant_id", tenantID.String()),
		zap.String("as_of", day.Format(time.DateOnly)),
		zap.Int("scanned", result.Scanned),
		zap.Int("accrued", result.Accrued),
		zap.String("total", result.Total.StringFixed(2)))
	return result, nil
}

// AccrueAllTenants runs AccrueAll as of today for every tenant
func (s *CollectionsService) AccrueAllTenants(ctx context.Context) (*AccrualResult, error) {
	tenants, err := s.contractRepo.FindTenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	total := &AccrualResult{Total: decimal.Zero}
	for _, tenantID := range tenants {
		r, err := s.AccrueAll(ctx, tenantID, nil)
		if err != nil {
			s.logger.Error("Penalty accrual failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
			total.FailedTenants++
			continue
		}
		total.Scanned += r.Scanned
		total.Accrued += r.Accrued
		total.Total = total.Total.Add(r.Total)
	}
	return total, nil
}

// RegisterFollowUp appends a contact attempt to a record
func (s *CollectionsService) RegisterFollowUp(ctx context.Context, tenantID, accountID uuid.UUID, req FollowUpRequest) (*FollowUpResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collections", "register_follow_up")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrAccountID, accountID.String(),
	)

	var account *collections.DelinquentAccount
	var followUp *collections.FollowUp
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, "register_follow_up", func(int) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			a, err := repos.AccountRepo().FindByIDForTenant(ctx, tenantID, accountID)
			if err != nil {
				return err
			}
			f, err := a.RegisterFollowUp(req.toDomain())
			if err != nil {
				return err
			}
			if err := repos.AccountRepo().SaveWithLock(ctx, a); err != nil {
				return err
			}
			if err := repos.FollowUpRepo().Create(ctx, f); err != nil {
				return err
			}
			account, followUp = a, f
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, account)
	s.logger.Info("Follow-up registered",
		zap.String("account_id", account.ID.String()),
		zap.String("contact_type", string(followUp.ContactType)),
		zap.String("state", string(account.State)))
	return &FollowUpResult{
		Account:  ToAccountResponse(account),
		FollowUp: ToFollowUpResponse(followUp),
	}, nil
}

// RecordPayment lowers the mirrored pending amount of a record and closes it at zero
func (s *CollectionsService) RecordPayment(ctx context.Context, tenantID, accountID uuid.UUID, req RecordPaymentRequest) (*AccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collections", "record_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrAccountID, accountID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	today := shared.Today(s.clock)
	return s.mutate(ctx, tenantID, accountID, "record_payment", func(a *collections.DelinquentAccount) (bool, error) {
		return true, a.RecordPayment(req.Amount, today)
	})
}

// ChangeState moves the collection workflow of a record by hand
func (s *CollectionsService) ChangeState(ctx context.Context, tenantID, accountID uuid.UUID, req ChangeStateRequest) (*AccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collections", "change_state")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrAccountID, accountID.String(),
	)

	state := collections.CollectionState(strings.ToUpper(req.State))
	return s.mutate(ctx, tenantID, accountID, "change_state", func(a *collections.DelinquentAccount) (bool, error) {
		before := a.Version
		if err := a.ChangeState(state); err != nil {
			return false, err
		}
		return a.Version != before, nil
	})
}

// mutate loads a record, applies fn and saves it when fn reports a change,
// re-running everything on version conflicts
func (s *CollectionsService) mutate(
	ctx context.Context,
	tenantID, accountID uuid.UUID,
	op string,
	fn func(a *collections.DelinquentAccount) (bool, error),
) (*AccountResponse, error) {
	var account *collections.DelinquentAccount
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, op, func(int) error {
		a, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		changed, err := fn(a)
		if err != nil {
			return err
		}
		if changed {
			if err := s.accountRepo.SaveWithLock(ctx, a); err != nil {
				a.ClearDomainEvents()
				return err
			}
		}
		account = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, account)
	resp := ToAccountResponse(account)
	return &resp, nil
}

// BillPenalty turns the accrued but unbilled penalty of a record into a
// PENALTY charge on its contract. The charge and the billed mark commit together.
func (s *CollectionsService) BillPenalty(ctx context.Context, tenantID, accountID uuid.UUID) (*BillPenaltyResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collections", "bill_penalty")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrAccountID, accountID.String(),
	)

	today := shared.Today(s.clock)
	var account *collections.DelinquentAccount
	var charge *ledger.Charge
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, "bill_penalty", func(int) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			a, err := repos.AccountRepo().FindByIDForTenant(ctx, tenantID, accountID)
			if err != nil {
				return err
			}
			amount := a.UnbilledPenalty()
			if !amount.IsPositive() {
				return shared.NewValidationError("delinquent account has no unbilled penalty")
			}
			contract, err := repos.ContractRepo().FindByIDForTenant(ctx, tenantID, a.ContractID)
			if err != nil {
				return err
			}
			if contract.Status == lease.ContractStatusDraft || contract.Status == lease.ContractStatusCancelled {
				return shared.NewInvalidStateError("cannot bill a penalty on a %s contract", contract.Status)
			}
			c, err := ledger.NewPenaltyCharge(tenantID, a.ContractID, a.Concept, amount, today)
			if err != nil {
				return err
			}
			if err := repos.ChargeRepo().Save(ctx, c); err != nil {
				return err
			}
			if err := a.MarkPenaltyBilled(amount); err != nil {
				return err
			}
			if err := repos.AccountRepo().SaveWithLock(ctx, a); err != nil {
				return err
			}
			account, charge = a, c
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrChargeID, charge.ID.String(),
		telemetry.SpanAttrAmount, charge.AmountOriginal.String(),
	)
	s.publish(ctx, charge, account)
	s.logger.Info("Penalty billed",
		zap.String("account_id", account.ID.String()),
		zap.String("charge_id", charge.ID.String()),
		zap.String("amount", charge.AmountOriginal.StringFixed(2)))
	return &BillPenaltyResult{
		Account: ToAccountResponse(account),
		Charge:  ledgerapp.ToChargeResponse(charge, today),
	}, nil
}

// GetByID returns one delinquent account
func (s *CollectionsService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*AccountResponse, error) {
	a, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(a)
	return &resp, nil
}

// List lists delinquent accounts
func (s *CollectionsService) List(ctx context.Context, tenantID uuid.UUID, filter AccountListFilter) ([]AccountResponse, int64, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search

	domainFilter := collections.AccountFilter{
		Filter:     f,
		PersonID:   filter.PersonID,
		PropertyID: filter.PropertyID,
		ContractID: filter.ContractID,
		OnlyOpen:   filter.OnlyOpen == nil || *filter.OnlyOpen,
	}
	if filter.State != "" {
		state := collections.CollectionState(strings.ToUpper(filter.State))
		if !state.IsValid() {
			return nil, 0, shared.NewValidationError("invalid collection state %q", filter.State)
		}
		domainFilter.State = &state
	}
	if filter.Bucket != "" {
		bucket := ledger.AgingBucket(strings.ToUpper(filter.Bucket))
		if !bucket.IsValid() {
			return nil, 0, shared.NewValidationError("invalid aging bucket %q", filter.Bucket)
		}
		domainFilter.Bucket = &bucket
	}

	accounts, total, err := s.accountRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses, total, nil
}

// FollowUps lists the follow-ups of a record, newest first
func (s *CollectionsService) FollowUps(ctx context.Context, tenantID, accountID uuid.UUID) ([]FollowUpResponse, error) {
	if _, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, accountID); err != nil {
		return nil, err
	}
	followUps, err := s.followUpRepo.FindByAccount(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	return toFollowUpResponses(followUps), nil
}

// DueActions lists follow-ups of open records whose next action is due on or before day
func (s *CollectionsService) DueActions(ctx context.Context, tenantID uuid.UUID, day *time.Time) ([]FollowUpResponse, error) {
	followUps, err := s.followUpRepo.FindDueActions(ctx, tenantID, s.asOf(day))
	if err != nil {
		return nil, err
	}
	return toFollowUpResponses(followUps), nil
}

// Summary aggregates the open portfolio per bucket and per state
func (s *CollectionsService) Summary(ctx context.Context, tenantID uuid.UUID) (*collections.Summary, error) {
	open, err := s.accountRepo.FindOpen(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return collections.Summarize(open), nil
}

// PortfolioReport details every open record as of today with its total due
// and latest contact, ordered by days overdue, plus the portfolio summary
func (s *CollectionsService) PortfolioReport(ctx context.Context, tenantID uuid.UUID) (*PortfolioReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "collections", "portfolio_report")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String())

	open, err := s.accountRepo.FindOpen(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	report := &PortfolioReport{
		GeneratedOn: shared.Today(s.clock),
		Summary:     collections.Summarize(open),
		Items:       make([]PortfolioItem, 0, len(open)),
	}
	for i := range open {
		a := &open[i]
		item := PortfolioItem{Account: ToAccountResponse(a)}
		followUps, err := s.followUpRepo.FindByAccount(ctx, tenantID, a.ID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if len(followUps) > 0 {
			latest := ToFollowUpResponse(&followUps[0])
			item.LastFollowUp = &latest
		}
		report.Items = append(report.Items, item)
	}
	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].Account.DaysOverdue > report.Items[j].Account.DaysOverdue
	})
	return report, nil
}

func toFollowUpResponses(followUps []collections.FollowUp) []FollowUpResponse {
	responses := make([]FollowUpResponse, len(followUps))
	for i := range followUps {
		responses[i] = ToFollowUpResponse(&followUps[i])
	}
	return responses
}
