package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/application/common"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService records payments and applies them to charges.
// It is the only writer of Charge.AmountPaid.
type PaymentService struct {
	paymentRepo     ledger.PaymentRepository
	applicationRepo ledger.PaymentApplicationRepository
	txScope         TransactionScope
	clock           shared.Clock
	config          ServiceConfig
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo ledger.PaymentRepository,
	applicationRepo ledger.PaymentApplicationRepository,
	txScope TransactionScope,
	clock shared.Clock,
	config ServiceConfig,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = common.DefaultMaxAttempts
	}
	return &PaymentService{
		paymentRepo:     paymentRepo,
		applicationRepo: applicationRepo,
		txScope:         txScope,
		clock:           clock,
		config:          config,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PaymentService) today() time.Time {
	return shared.Today(s.clock)
}

// applyOutcome is what one application run changed inside its transaction
type applyOutcome struct {
	applications []*ledger.PaymentApplication
	charges      []*ledger.Charge
	applied      decimal.Decimal
}

func (o *applyOutcome) sources(p *ledger.Payment) []common.EventSource {
	sources := make([]common.EventSource, 0, len(o.charges)+1)
	sources = append(sources, p)
	for _, c := range o.charges {
		sources = append(sources, c)
	}
	return sources
}

// CreatePayment records a PENDING payment against a current contract and
// optionally applies it in the same transaction, automatically (FIFO) or
// along caller-given allocations.
func (s *PaymentService) CreatePayment(ctx context.Context, tenantID uuid.UUID, req CreatePaymentRequest) (*ApplicationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrContractID, req.ContractID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if req.AutoApply && len(req.Allocations) > 0 {
		return nil, shared.NewValidationError("auto_apply and allocations cannot be combined")
	}
	if !req.Amount.IsPositive() {
		return nil, shared.NewValidationError("payment amount must be positive")
	}

	today := s.today()
	var payment *ledger.Payment
	var outcome *applyOutcome
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, "create_payment", func(attempt int) error {
		telemetry.SetAttribute(span, telemetry.SpanAttrAttempt, attempt)
		payment, outcome = nil, nil
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			contract, err := repos.ContractRepo().FindByIDForTenant(ctx, tenantID, req.ContractID)
			if err != nil {
				return err
			}
			if !contract.Active || !contract.IsCurrent(today) {
				return shared.NewValidationError("contract %s is %s, payments require a current contract",
					contract.ContractNumber, contract.DisplayStatus(today))
			}

			receipt, err := nextReceiptNumber(ctx, repos.PaymentRepo(), tenantID)
			if err != nil {
				return err
			}
			p, err := ledger.NewPayment(tenantID, receipt, paymentInput(req, contract, today))
			if err != nil {
				return err
			}
			// A receipt number collision comes back as a conflict and retries with a fresh number
			if err := repos.PaymentRepo().Create(ctx, p); err != nil {
				return err
			}

			if strategy := strategyFor(req.AutoApply, req.Allocations); strategy != nil {
				o, err := s.applyInTx(ctx, repos, tenantID, p, strategy, today)
				if err != nil {
					return err
				}
				outcome = o
			}
			payment = p
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if outcome == nil {
		outcome = &applyOutcome{applied: decimal.Zero}
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, payment.ID.String(),
		telemetry.SpanAttrReceiptNumber, payment.ReceiptNumber,
	)
	s.logger.Info("Payment recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("receipt_number", payment.ReceiptNumber),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("applied", outcome.applied.StringFixed(2)))
	common.PublishEvents(ctx, s.eventPublisher, s.logger, common.CollectEvents(outcome.sources(payment)...))

	return toApplicationResult(payment, outcome), nil
}

func paymentInput(req CreatePaymentRequest, contract *lease.Contract, today time.Time) ledger.PaymentInput {
	personID := contract.PersonID
	if req.PersonID != nil {
		personID = *req.PersonID
	}
	date := today
	if req.PaymentDate != nil {
		date = *req.PaymentDate
	}
	return ledger.PaymentInput{
		ContractID:  contract.ID,
		PersonID:    personID,
		Amount:      req.Amount,
		Type:        ledger.PaymentType(strings.ToUpper(req.Type)),
		PaymentDate: date,
		Reference:   req.Reference,
		Bank:        req.Bank,
		CheckNumber: req.CheckNumber,
		Notes:       req.Notes,
	}
}

func strategyFor(auto bool, lines []AllocationLine) ledger.AllocationStrategy {
	switch {
	case auto:
		return ledger.NewFIFOAllocationStrategy()
	case len(lines) > 0:
		return ledger.NewManualAllocationStrategy(toManualRequests(lines))
	default:
		return nil
	}
}

func toManualRequests(lines []AllocationLine) []ledger.ManualAllocationRequest {
	requests := make([]ledger.ManualAllocationRequest, len(lines))
	for i, l := range lines {
		requests[i] = ledger.ManualAllocationRequest{ChargeID: l.ChargeID, Amount: l.Amount}
	}
	return requests
}

// nextReceiptNumber returns REC-NNNNNN following the highest receipt of the tenant
func nextReceiptNumber(ctx context.Context, repo ledger.PaymentRepository, tenantID uuid.UUID) (string, error) {
	last, err := repo.LastReceiptNumber(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("failed to read last receipt number: %w", err)
	}
	seq := 1
	if last != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, "REC-")); err == nil {
			seq = n + 1
		}
	}
	return ledger.FormatReceiptNumber(seq), nil
}

// ApplyAutomatic applies the available amount of a payment to the oldest due
// charges of its contract. Any leftover stays available on the payment.
func (s *PaymentService) ApplyAutomatic(ctx context.Context, tenantID, paymentID uuid.UUID) (*ApplicationResult, error) {
	return s.apply(ctx, tenantID, paymentID, "apply_automatic", func() ledger.AllocationStrategy {
		return ledger.NewFIFOAllocationStrategy()
	})
}

// ApplyManual applies a payment along caller-given allocations. Any invalid
// line rejects the whole request.
func (s *PaymentService) ApplyManual(ctx context.Context, tenantID, paymentID uuid.UUID, req ApplyManualRequest) (*ApplicationResult, error) {
	if len(req.Allocations) == 0 {
		return nil, shared.NewValidationError("at least one allocation is required")
	}
	requests := toManualRequests(req.Allocations)
	return s.apply(ctx, tenantID, paymentID, "apply_manual", func() ledger.AllocationStrategy {
		return ledger.NewManualAllocationStrategy(requests)
	})
}

func (s *PaymentService) apply(
	ctx context.Context,
	tenantID, paymentID uuid.UUID,
	op string,
	newStrategy func() ledger.AllocationStrategy,
) (*ApplicationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", op)
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	today := s.today()
	var payment *ledger.Payment
	var outcome *applyOutcome
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, op, func(attempt int) error {
		telemetry.SetAttribute(span, telemetry.SpanAttrAttempt, attempt)
		payment, outcome = nil, nil
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			p, err := repos.PaymentRepo().FindByIDForTenant(ctx, tenantID, paymentID)
			if err != nil {
				return err
			}
			strategy := newStrategy()
			telemetry.SetAttribute(span, telemetry.SpanAttrStrategy, string(strategy.StrategyType()))
			o, err := s.applyInTx(ctx, repos, tenantID, p, strategy, today)
			if err != nil {
				return err
			}
			payment, outcome = p, o
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "payment_applied",
		"applied", outcome.applied.String(),
		"charges", len(outcome.charges),
	)
	s.logger.Info("Payment applied",
		zap.String("payment_id", payment.ID.String()),
		zap.String("operation", op),
		zap.String("applied", outcome.applied.StringFixed(2)),
		zap.Int("charges", len(outcome.charges)),
		zap.String("status", string(payment.Status)))
	common.PublishEvents(ctx, s.eventPublisher, s.logger, common.CollectEvents(outcome.sources(payment)...))

	return toApplicationResult(payment, outcome), nil
}

// applyInTx allocates the available amount of p over the outstanding charges
// of its contract and writes every change through the transaction's repositories
func (s *PaymentService) applyInTx(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	p *ledger.Payment,
	strategy ledger.AllocationStrategy,
	today time.Time,
) (*applyOutcome, error) {
	if !p.Status.CanApply() {
		return nil, shared.NewInvalidStateError("cannot apply payment in %s status", p.Status)
	}
	available := p.Available()
	if !available.IsPositive() {
		return nil, shared.NewInvalidStateError("payment %s has no available amount", p.ReceiptNumber)
	}

	outstanding, err := repos.ChargeRepo().FindOutstandingByContract(ctx, tenantID, p.ContractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load outstanding charges: %w", err)
	}
	byID := make(map[uuid.UUID]*ledger.Charge, len(outstanding))
	targets := make([]ledger.AllocationTarget, 0, len(outstanding))
	for i := range outstanding {
		c := &outstanding[i]
		if !c.CanReceivePayment() {
			continue
		}
		byID[c.ID] = c
		targets = append(targets, ledger.TargetFromCharge(c))
	}

	plan, err := strategy.Allocate(available, targets)
	if err != nil {
		return nil, err
	}

	outcome := &applyOutcome{applied: decimal.Zero}
	if len(plan.Allocations) == 0 {
		return outcome, nil
	}

	seen := make(map[uuid.UUID]bool, len(plan.Allocations))
	for _, a := range plan.Allocations {
		c, ok := byID[a.ChargeID]
		if !ok {
			return nil, shared.NewValidationError("charge %s is not outstanding", a.ChargeID)
		}
		if err := c.ApplyPayment(p.ID, a.Amount, today); err != nil {
			return nil, err
		}
		if err := p.RecordApplication(a.Amount); err != nil {
			return nil, err
		}
		app := ledger.NewPaymentApplication(tenantID, p.ID, c.ID, a.Amount)
		if err := repos.ApplicationRepo().Create(ctx, app); err != nil {
			return nil, fmt.Errorf("failed to store payment application: %w", err)
		}
		outcome.applications = append(outcome.applications, app)
		outcome.applied = outcome.applied.Add(a.Amount)
		if !seen[c.ID] {
			seen[c.ID] = true
			outcome.charges = append(outcome.charges, c)
		}
	}

	for _, c := range outcome.charges {
		if err := repos.ChargeRepo().SaveWithLock(ctx, c); err != nil {
			return nil, err
		}
	}
	p.FinishApplication(outcome.applied, len(outcome.charges))
	if err := repos.PaymentRepo().SaveWithLock(ctx, p); err != nil {
		return nil, err
	}

	if err := verifyLedger(ctx, repos, tenantID, p, outcome.charges); err != nil {
		return nil, err
	}
	return outcome, nil
}

// verifyLedger checks, inside the transaction, that the live applications of
// every touched charge add up to its amount paid and that the payment is not
// over-applied
func verifyLedger(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, p *ledger.Payment, charges []*ledger.Charge) error {
	for _, c := range charges {
		live, err := repos.ApplicationRepo().SumLiveByCharge(ctx, tenantID, c.ID)
		if err != nil {
			return fmt.Errorf("failed to sum applications of charge %s: %w", c.ID, err)
		}
		if !live.Equal(c.AmountPaid) {
			return shared.NewInvariantViolation("charge %s: live applications %s differ from amount paid %s",
				c.ID, live.StringFixed(2), c.AmountPaid.StringFixed(2))
		}
		if c.AmountPaid.IsNegative() || c.AmountPaid.GreaterThan(c.AmountOriginal) {
			return shared.NewInvariantViolation("charge %s: amount paid %s outside [0, %s]",
				c.ID, c.AmountPaid.StringFixed(2), c.AmountOriginal.StringFixed(2))
		}
	}
	if p.AmountApplied.IsNegative() || p.AmountApplied.GreaterThan(p.Amount) {
		return shared.NewInvariantViolation("payment %s: applied %s outside [0, %s]",
			p.ID, p.AmountApplied.StringFixed(2), p.Amount.StringFixed(2))
	}
	return nil
}

// CancelPayment voids a payment and reverses every live application in one transaction
func (s *PaymentService) CancelPayment(ctx context.Context, tenantID, paymentID uuid.UUID, req CancelPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "cancel")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	today := s.today()
	var payment *ledger.Payment
	var charges []*ledger.Charge
	var reversed decimal.Decimal
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, "cancel_payment", func(attempt int) error {
		telemetry.SetAttribute(span, telemetry.SpanAttrAttempt, attempt)
		payment, charges, reversed = nil, nil, decimal.Zero
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			p, err := repos.PaymentRepo().FindByIDForTenant(ctx, tenantID, paymentID)
			if err != nil {
				return err
			}
			switch p.Status {
			case ledger.PaymentStatusCancelled:
				return shared.NewInvalidStateError("payment is already cancelled")
			case ledger.PaymentStatusRejected:
				return shared.NewInvalidStateError("rejected payments cannot be cancelled")
			}

			touched, total, err := reverseApplications(ctx, repos, tenantID, p, today)
			if err != nil {
				return err
			}
			if !total.Equal(p.AmountApplied) {
				return shared.NewInvariantViolation("payment %s: reversed %s differs from applied %s",
					p.ID, total.StringFixed(2), p.AmountApplied.StringFixed(2))
			}
			for _, c := range touched {
				if err := repos.ChargeRepo().SaveWithLock(ctx, c); err != nil {
					return err
				}
			}
			if err := p.Cancel(req.Reason); err != nil {
				return err
			}
			if err := repos.PaymentRepo().SaveWithLock(ctx, p); err != nil {
				return err
			}
			if err := verifyLedger(ctx, repos, tenantID, p, touched); err != nil {
				return err
			}
			payment, charges, reversed = p, touched, total
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Payment cancelled",
		zap.String("payment_id", payment.ID.String()),
		zap.String("receipt_number", payment.ReceiptNumber),
		zap.String("reversed", reversed.StringFixed(2)),
		zap.Int("charges", len(charges)))
	outcome := &applyOutcome{charges: charges}
	common.PublishEvents(ctx, s.eventPublisher, s.logger, common.CollectEvents(outcome.sources(payment)...))

	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// reverseApplications rolls back every live application of p on its charge
// and stamps the application reversed. Returns the touched charges and the
// reversed total.
func reverseApplications(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	p *ledger.Payment,
	today time.Time,
) ([]*ledger.Charge, decimal.Decimal, error) {
	apps, err := repos.ApplicationRepo().FindLiveByPayment(ctx, tenantID, p.ID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to load payment applications: %w", err)
	}
	if len(apps) == 0 {
		return nil, decimal.Zero, nil
	}

	ids := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ChargeID)
	}
	loaded, err := repos.ChargeRepo().FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to load applied charges: %w", err)
	}
	byID := make(map[uuid.UUID]*ledger.Charge, len(loaded))
	for i := range loaded {
		byID[loaded[i].ID] = &loaded[i]
	}

	total := decimal.Zero
	touched := make([]*ledger.Charge, 0, len(loaded))
	seen := make(map[uuid.UUID]bool, len(loaded))
	for i := range apps {
		app := &apps[i]
		c, ok := byID[app.ChargeID]
		if !ok {
			return nil, decimal.Zero, shared.NewInvariantViolation("payment %s is applied to missing charge %s", p.ID, app.ChargeID)
		}
		if err := c.ReversePayment(p.ID, app.Amount, today); err != nil {
			return nil, decimal.Zero, err
		}
		if err := app.MarkReversed(); err != nil {
			return nil, decimal.Zero, err
		}
		if err := repos.ApplicationRepo().MarkReversed(ctx, app); err != nil {
			return nil, decimal.Zero, fmt.Errorf("failed to reverse payment application: %w", err)
		}
		total = total.Add(app.Amount)
		if !seen[c.ID] {
			seen[c.ID] = true
			touched = append(touched, c)
		}
	}
	return touched, total, nil
}

// RejectPayment marks a pending, unapplied payment as bounced or refused
func (s *PaymentService) RejectPayment(ctx context.Context, tenantID, paymentID uuid.UUID, req RejectPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "reject")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	var payment *ledger.Payment
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, "reject_payment", func(int) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			p, err := repos.PaymentRepo().FindByIDForTenant(ctx, tenantID, paymentID)
			if err != nil {
				return err
			}
			if err := p.Reject(req.Reason); err != nil {
				return err
			}
			if err := repos.PaymentRepo().SaveWithLock(ctx, p); err != nil {
				return err
			}
			payment = p
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Payment rejected",
		zap.String("payment_id", payment.ID.String()),
		zap.String("reason", payment.RejectionReason))
	common.PublishEvents(ctx, s.eventPublisher, s.logger, common.CollectEvents(payment))
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// GetByID returns a payment with all of its applications, live and reversed
func (s *PaymentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	apps, err := s.applicationRepo.FindByPayment(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(p)
	resp.Applications = make([]ApplicationResponse, len(apps))
	for i := range apps {
		resp.Applications[i] = ToApplicationResponse(&apps[i])
	}
	return &resp, nil
}

// List lists payments
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := ledger.PaymentFilter{
		Filter:     toSharedFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		ContractID: filter.ContractID,
		PersonID:   filter.PersonID,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
	}
	if filter.Status != "" {
		status := ledger.PaymentStatus(strings.ToUpper(filter.Status))
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("invalid payment status %q", filter.Status)
		}
		domainFilter.Status = &status
	}

	payments, total, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses, total, nil
}

func toApplicationResult(p *ledger.Payment, o *applyOutcome) *ApplicationResult {
	apps := make([]ApplicationResponse, len(o.applications))
	for i, a := range o.applications {
		apps[i] = ToApplicationResponse(a)
	}
	return &ApplicationResult{
		Payment:      ToPaymentResponse(p),
		Applications: apps,
		Applied:      o.applied,
		Remaining:    p.Available(),
	}
}
