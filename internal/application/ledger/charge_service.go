package ledger

import (
	"context"
	"fmt"
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

// ServiceConfig tunes the ledger services
type ServiceConfig struct {
	// MaxAttempts bounds how often a write is re-run after a version conflict
	MaxAttempts int
}

// DefaultServiceConfig returns the default ledger service configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{MaxAttempts: common.DefaultMaxAttempts}
}

// ChargeService raises, cancels and ages charges
type ChargeService struct {
	contractRepo   lease.ContractRepository
	chargeRepo     ledger.ChargeRepository
	txScope        TransactionScope
	clock          shared.Clock
	config         ServiceConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewChargeService creates a new ChargeService
func NewChargeService(
	contractRepo lease.ContractRepository,
	chargeRepo ledger.ChargeRepository,
	txScope TransactionScope,
	clock shared.Clock,
	config ServiceConfig,
	logger *zap.Logger,
) *ChargeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = common.DefaultMaxAttempts
	}
	return &ChargeService{
		contractRepo: contractRepo,
		chargeRepo:   chargeRepo,
		txScope:      txScope,
		clock:        clock,
		config:       config,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ChargeService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ChargeService) publish(ctx context.Context, sources ...common.EventSource) {
	common.PublishEvents(ctx, s.eventPublisher, s.logger, common.CollectEvents(sources...))
}

func (s *ChargeService) today() time.Time {
	return shared.Today(s.clock)
}

// GenerateFixedCharges creates the monthly RENT charge of every current
// contract covering the period. Periods that already have one are skipped,
// so repeated or concurrent runs never duplicate a charge. The run commits as
// one transaction: a failing contract leaves no charge of the tenant behind.
func (s *ChargeService) GenerateFixedCharges(ctx context.Context, tenantID uuid.UUID, req GenerateChargesRequest) (*GenerateChargesResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "charge", "generate_fixed")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPeriod, fmt.Sprintf("%04d-%02d", req.Year, req.Month),
	)

	if req.Month < 1 || req.Month > 12 {
		return nil, shared.NewValidationError("month must be between 1 and 12")
	}
	if req.Year < 2000 || req.Year > 2100 {
		return nil, shared.NewValidationError("year %d is out of range", req.Year)
	}
	month := time.Month(req.Month)
	today := s.today()

	var generated []*ledger.Charge
	var skipped int
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, "generate_fixed_charges", func(attempt int) error {
		telemetry.SetAttribute(span, telemetry.SpanAttrAttempt, attempt)
		generated, skipped = nil, 0
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			contracts, err := billableContracts(ctx, repos.ContractRepo(), tenantID, req, today)
			if err != nil {
				return err
			}
			for i := range contracts {
				c := &contracts[i]
				charge, created, err := generateForContract(ctx, repos.ChargeRepo(), tenantID, c, req.Year, month)
				if err != nil {
					return fmt.Errorf("failed to generate rent for contract %s: %w", c.ContractNumber, err)
				}
				if !created {
					skipped++
					continue
				}
				generated = append(generated, charge)
			}
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &GenerateChargesResult{
		Year:      req.Year,
		Month:     req.Month,
		Generated: len(generated),
		Skipped:   skipped,
		Charges:   make([]ChargeResponse, 0, len(generated)),
	}
	for _, charge := range generated {
		result.Charges = append(result.Charges, ToChargeResponse(charge, today))
		s.publish(ctx, charge)
	}

	telemetry.AddEvent(span, "charges_generated",
		"generated", result.Generated,
		"skipped", result.Skipped,
	)
	s.logger.Info("Fixed charges generated",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.Int("generated", result.Generated),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func billableContracts(ctx context.Context, contractRepo lease.ContractRepository, tenantID uuid.UUID, req GenerateChargesRequest, today time.Time) ([]lease.Contract, error) {
	month := time.Month(req.Month)
	if req.ContractID != nil {
		c, err := contractRepo.FindByIDForTenant(ctx, tenantID, *req.ContractID)
		if err != nil {
			return nil, err
		}
		if !c.Active || !c.IsCurrent(today) {
			return nil, shared.NewInvalidStateError("contract %s is %s, rent is only generated for current contracts",
				c.ContractNumber, c.DisplayStatus(today))
		}
		if !c.CoversPeriod(req.Year, month) {
			return nil, shared.NewInvalidStateError("contract %s does not cover %04d-%02d",
				c.ContractNumber, req.Year, req.Month)
		}
		return []lease.Contract{*c}, nil
	}

	inForce, err := contractRepo.FindInForce(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	contracts := make([]lease.Contract, 0, len(inForce))
	for i := range inForce {
		c := &inForce[i]
		if c.Active && c.IsCurrent(today) && c.CoversPeriod(req.Year, month) {
			contracts = append(contracts, *c)
		}
	}
	return contracts, nil
}

func generateForContract(ctx context.Context, chargeRepo ledger.ChargeRepository, tenantID uuid.UUID, c *lease.Contract, year int, month time.Month) (*ledger.Charge, bool, error) {
	exists, err := chargeRepo.ExistsRecurring(ctx, tenantID, c.ID, ledger.ChargeTypeRent, year, int(month))
	if err != nil {
		return nil, false, err
	}
	if exists {
		return nil, false, nil
	}

	chargeDate, dueDate := ledger.RentSchedule(year, month, c.PaymentDay, c.GraceDays)
	charge, err := ledger.NewRecurringRentCharge(tenantID, ledger.ChargeInput{
		ContractID: c.ID,
		Concept:    ledger.RentConcept(year, month),
		Amount:     c.MonthlyRent,
		ChargeDate: chargeDate,
		DueDate:    dueDate,
	}, year, month)
	if err != nil {
		return nil, false, err
	}

	// A concurrent run may have inserted the period between the check and here
	created, err := chargeRepo.CreateRecurring(ctx, charge)
	if err != nil {
		return nil, false, err
	}
	if !created {
		charge.ClearDomainEvents()
		return nil, false, nil
	}
	return charge, true, nil
}

// GenerateAllTenants runs GenerateFixedCharges for every tenant with in-force contracts
func (s *ChargeService) GenerateAllTenants(ctx context.Context, year, month int) (*GenerateChargesResult, error) {
	tenants, err := s.contractRepo.FindTenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	total := &GenerateChargesResult{Year: year, Month: month, Charges: make([]ChargeResponse, 0)}
	for _, tenantID := range tenants {
		r, err := s.GenerateFixedCharges(ctx, tenantID, GenerateChargesRequest{Year: year, Month: month})
		if err != nil {
			s.logger.Error("Fixed charge generation failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
			total.FailedTenants++
			continue
		}
		total.Generated += r.Generated
		total.Skipped += r.Skipped
		total.Charges = append(total.Charges, r.Charges...)
	}
	return total, nil
}

// CreateAdHocCharge raises a one-off charge against a draft or current contract
func (s *ChargeService) CreateAdHocCharge(ctx context.Context, tenantID uuid.UUID, req CreateChargeRequest) (*ChargeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "charge", "create_ad_hoc")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrContractID, req.ContractID.String())

	today := s.today()
	contract, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, req.ContractID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !contract.Active || !contract.AcceptsCharges(today) {
		return nil, shared.NewValidationError("contract %s is %s and does not accept charges",
			contract.ContractNumber, contract.DisplayStatus(today))
	}

	charge, err := ledger.NewCharge(tenantID, ledger.ChargeInput{
		ContractID: contract.ID,
		Type:       ledger.ChargeType(strings.ToUpper(req.Type)),
		Concept:    req.Concept,
		Amount:     req.Amount,
		ChargeDate: req.ChargeDate,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, err
	}
	if err := s.chargeRepo.Save(ctx, charge); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrChargeID, charge.ID.String(),
		telemetry.SpanAttrAmount, charge.AmountOriginal.String(),
	)
	s.logger.Info("Charge created",
		zap.String("charge_id", charge.ID.String()),
		zap.String("contract_id", contract.ID.String()),
		zap.String("type", string(charge.Type)),
		zap.String("amount", charge.AmountOriginal.StringFixed(2)))
	s.publish(ctx, charge)

	resp := ToChargeResponse(charge, today)
	return &resp, nil
}

// CancelCharge voids a charge that has received no payment
func (s *ChargeService) CancelCharge(ctx context.Context, tenantID, id uuid.UUID, req CancelChargeRequest) (*ChargeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "charge", "cancel")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrChargeID, id.String())

	var charge *ledger.Charge
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, "cancel_charge", func(attempt int) error {
		telemetry.SetAttribute(span, telemetry.SpanAttrAttempt, attempt)
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			c, err := repos.ChargeRepo().FindByIDForTenant(ctx, tenantID, id)
			if err != nil {
				return err
			}
			if err := c.Cancel(req.Reason); err != nil {
				return err
			}
			if err := repos.ChargeRepo().SaveWithLock(ctx, c); err != nil {
				return err
			}
			charge = c
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Charge cancelled", zap.String("charge_id", id.String()))
	s.publish(ctx, charge)
	resp := ToChargeResponse(charge, s.today())
	return &resp, nil
}

// MarkOverdue stores OVERDUE on the charges of a tenant that fell past due
// with a pending amount. The sweep commits as one transaction.
func (s *ChargeService) MarkOverdue(ctx context.Context, tenantID uuid.UUID) (*OverdueScanResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "charge", "mark_overdue")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrTenantID, tenantID.String())

	today := s.today()
	var marked []*ledger.Charge
	var scanned int
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, "mark_overdue", func(attempt int) error {
		telemetry.SetAttribute(span, telemetry.SpanAttrAttempt, attempt)
		marked = nil
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			candidates, err := repos.ChargeRepo().FindOverdueCandidates(ctx, tenantID, today)
			if err != nil {
				return err
			}
			scanned = len(candidates)
			for i := range candidates {
				c := &candidates[i]
				if !c.MarkOverdue(today) {
					continue
				}
				if err := repos.ChargeRepo().SaveWithLock(ctx, c); err != nil {
					return err
				}
				marked = append(marked, c)
			}
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &OverdueScanResult{Scanned: scanned, Marked: len(marked)}
	for _, c := range marked {
		s.publish(ctx, c)
	}
	if result.Marked > 0 {
		s.logger.Info("Charges marked overdue",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("marked", result.Marked))
	}
	return result, nil
}

// MarkOverdueAllTenants runs MarkOverdue for every tenant with in-force contracts
func (s *ChargeService) MarkOverdueAllTenants(ctx context.Context) (*OverdueScanResult, error) {
	tenants, err := s.contractRepo.FindTenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	total := &OverdueScanResult{}
	for _, tenantID := range tenants {
		r, err := s.MarkOverdue(ctx, tenantID)
		if err != nil {
			s.logger.Error("Overdue sweep failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
			total.FailedTenants++
			continue
		}
		total.Scanned += r.Scanned
		total.Marked += r.Marked
	}
	return total, nil
}

// GetByID returns a charge with its display status
func (s *ChargeService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ChargeResponse, error) {
	c, err := s.chargeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToChargeResponse(c, s.today())
	return &resp, nil
}

// List lists charges
func (s *ChargeService) List(ctx context.Context, tenantID uuid.UUID, filter ChargeListFilter) ([]ChargeResponse, int64, error) {
	domainFilter := ledger.ChargeFilter{
		Filter:     toSharedFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		ContractID: filter.ContractID,
		DueFrom:    filter.DueFrom,
		DueTo:      filter.DueTo,
	}
	if filter.Status != "" {
		status := ledger.ChargeStatus(strings.ToUpper(filter.Status))
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("invalid charge status %q", filter.Status)
		}
		domainFilter.Status = &status
	}
	if filter.Type != "" {
		chargeType := ledger.ChargeType(strings.ToUpper(filter.Type))
		if !chargeType.IsValid() {
			return nil, 0, shared.NewValidationError("invalid charge type %q", filter.Type)
		}
		domainFilter.Type = &chargeType
	}

	charges, total, err := s.chargeRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	today := s.today()
	responses := make([]ChargeResponse, len(charges))
	for i := range charges {
		responses[i] = ToChargeResponse(&charges[i], today)
	}
	return responses, total, nil
}

// ListByContract lists every charge of a contract ordered by charge date
func (s *ChargeService) ListByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]ChargeResponse, error) {
	charges, err := s.chargeRepo.FindByContract(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	responses := make([]ChargeResponse, len(charges))
	for i := range charges {
		responses[i] = ToChargeResponse(&charges[i], today)
	}
	return responses, nil
}

// OutstandingBalance sums the open charges of a contract
func (s *ChargeService) OutstandingBalance(ctx context.Context, tenantID, contractID uuid.UUID) (*OutstandingBalance, error) {
	if _, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID); err != nil {
		return nil, err
	}
	charges, err := s.chargeRepo.FindOutstandingByContract(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	balance := &OutstandingBalance{
		ContractID:    contractID,
		TotalPending:  decimal.Zero,
		OverdueAmount: decimal.Zero,
	}
	for i := range charges {
		c := &charges[i]
		pending := c.Pending()
		balance.TotalPending = balance.TotalPending.Add(pending)
		balance.ChargeCount++
		if c.DaysOverdue(today) > 0 {
			balance.OverdueAmount = balance.OverdueAmount.Add(pending)
			balance.OverdueCount++
		}
	}
	return balance, nil
}

// Stats returns the charge dashboard figures of a tenant
func (s *ChargeService) Stats(ctx context.Context, tenantID uuid.UUID) (*ledger.ChargeStats, error) {
	return s.chargeRepo.Stats(ctx, tenantID, s.today())
}

func toSharedFilter(page, pageSize int, orderBy, orderDir, search string) shared.Filter {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	if orderBy != "" {
		f.OrderBy = orderBy
	}
	if orderDir != "" {
		f.OrderDir = orderDir
	}
	f.Search = search
	return f
}
