package lease

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/application/common"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// numberAttempts bounds retries when a generated contract number collides
const numberAttempts = 3

// ContractService handles the contract lifecycle
type ContractService struct {
	contractRepo   lease.ContractRepository
	parties        lease.PartyDirectory
	txScope        TransactionScope
	clock          shared.Clock
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo lease.ContractRepository,
	parties lease.PartyDirectory,
	txScope TransactionScope,
	clock shared.Clock,
	logger *zap.Logger,
) *ContractService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractService{
		contractRepo: contractRepo,
		parties:      parties,
		txScope:      txScope,
		clock:        clock,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ContractService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ContractService) publish(ctx context.Context, sources ...common.EventSource) {
	common.PublishEvents(ctx, s.eventPublisher, s.logger, common.CollectEvents(sources...))
}

// Create creates a DRAFT contract. A number is generated when none is given.
func (s *ContractService) Create(ctx context.Context, tenantID uuid.UUID, req CreateContractRequest) (*ContractResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "create")
	defer span.End()

	terms := req.toDomain()
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkParties(ctx, tenantID, terms); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	explicit := strings.TrimSpace(req.ContractNumber)
	if explicit != "" {
		exists, err := s.contractRepo.ExistsByNumber(ctx, tenantID, explicit)
		if err != nil {
			return nil, fmt.Errorf("failed to check contract number: %w", err)
		}
		if exists {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists,
				fmt.Sprintf("contract number %s already exists", explicit))
		}
	}

	var contract *lease.Contract
	for attempt := 1; attempt <= numberAttempts; attempt++ {
		number := explicit
		if number == "" {
			next, err := s.nextContractNumber(ctx, s.contractRepo, tenantID)
			if err != nil {
				return nil, err
			}
			number = next
		}
		c, err := lease.NewContract(tenantID, number, terms, req.Notes)
		if err != nil {
			return nil, err
		}
		c.CreatedBy = req.CreatedBy

		err = s.contractRepo.Save(ctx, c)
		if err == nil {
			contract = c
			break
		}
		if explicit != "" || !errors.Is(err, shared.ErrAlreadyExists) {
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.logger.Warn("Generated contract number collided, retrying",
			zap.String("contract_number", number),
			zap.Int("attempt", attempt))
	}
	if contract == nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "could not allocate a free contract number")
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrContractID, contract.ID.String(),
		telemetry.SpanAttrContractNumber, contract.ContractNumber,
	)
	s.logger.Info("Contract created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("contract_id", contract.ID.String()),
		zap.String("contract_number", contract.ContractNumber))
	s.publish(ctx, contract)

	resp := ToContractResponse(contract, s.today())
	return &resp, nil
}

func (s *ContractService) checkParties(ctx context.Context, tenantID uuid.UUID, terms lease.Terms) error {
	if s.parties == nil {
		return nil
	}
	ok, err := s.parties.PropertyExists(ctx, tenantID, terms.PropertyID)
	if err != nil {
		return fmt.Errorf("failed to look up property: %w", err)
	}
	if !ok {
		return shared.NewNotFoundError("property")
	}
	ok, err = s.parties.PersonExists(ctx, tenantID, terms.PersonID)
	if err != nil {
		return fmt.Errorf("failed to look up person: %w", err)
	}
	if !ok {
		return shared.NewNotFoundError("person")
	}
	if terms.GuarantorID != nil {
		ok, err = s.parties.PersonExists(ctx, tenantID, *terms.GuarantorID)
		if err != nil {
			return fmt.Errorf("failed to look up guarantor: %w", err)
		}
		if !ok {
			return shared.NewNotFoundError("guarantor")
		}
	}
	return nil
}

// nextContractNumber returns CTR-YYYYMM-NNNN following the highest number of the month
func (s *ContractService) nextContractNumber(ctx context.Context, repo lease.ContractRepository, tenantID uuid.UUID) (string, error) {
	now := s.clock.Now()
	prefix := lease.ContractNumberPrefix(now)
	last, err := repo.LastNumberWithPrefix(ctx, tenantID, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to read last contract number: %w", err)
	}
	seq := 1
	if last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err == nil {
			seq = n + 1
		}
	}
	return lease.FormatContractNumber(now, seq), nil
}

// GetByID returns a contract with its display status
func (s *ContractService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToContractResponse(c, s.today())
	return &resp, nil
}

// List lists contracts. The status filter matches the display status.
func (s *ContractService) List(ctx context.Context, tenantID uuid.UUID, filter ContractListFilter) ([]ContractResponse, int64, error) {
	today := s.today()
	domainFilter := lease.ContractFilter{
		Filter:     toSharedFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		Today:      today,
		PropertyID: filter.PropertyID,
		PersonID:   filter.PersonID,
		Active:     filter.Active,
	}
	if filter.Status != "" {
		status := lease.ContractStatus(strings.ToUpper(filter.Status))
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("invalid contract status %q", filter.Status)
		}
		domainFilter.DisplayStatus = &status
	}

	contracts, total, err := s.contractRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ContractResponse, len(contracts))
	for i := range contracts {
		responses[i] = ToContractResponse(&contracts[i], today)
	}
	return responses, total, nil
}

// ListExpiring lists in-force contracts ending within the given number of days
func (s *ContractService) ListExpiring(ctx context.Context, tenantID uuid.UUID, days int) ([]ContractResponse, error) {
	if days < 0 {
		return nil, shared.NewValidationError("days cannot be negative")
	}
	today := s.today()
	active := true
	filter := lease.ContractFilter{
		Filter:       shared.Filter{Page: 1, PageSize: 500, OrderBy: "end_date", OrderDir: "asc"},
		Today:        today,
		Active:       &active,
		EndingWithin: &days,
	}
	contracts, _, err := s.contractRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ContractResponse, len(contracts))
	for i := range contracts {
		responses[i] = ToContractResponse(&contracts[i], today)
	}
	return responses, nil
}

// Stats counts contracts per display status
func (s *ContractService) Stats(ctx context.Context, tenantID uuid.UUID) (*ContractStats, error) {
	today := s.today()
	stats := &ContractStats{ByStatus: make(map[string]int64)}
	active := true
	for _, status := range []lease.ContractStatus{
		lease.ContractStatusDraft,
		lease.ContractStatusActive,
		lease.ContractStatusExpiringSoon,
		lease.ContractStatusExpired,
		lease.ContractStatusRenewed,
		lease.ContractStatusTerminated,
		lease.ContractStatusCancelled,
	} {
		st := status
		n, err := s.contractRepo.Count(ctx, tenantID, lease.ContractFilter{
			DisplayStatus: &st,
			Today:         today,
			Active:        &active,
		})
		if err != nil {
			return nil, err
		}
		stats.ByStatus[string(status)] = n
		stats.Total += n
	}
	return stats, nil
}

// UpdateDraft replaces the terms of a DRAFT contract
func (s *ContractService) UpdateDraft(ctx context.Context, tenantID, id uuid.UUID, req UpdateContractRequest) (*ContractResponse, error) {
	terms := req.toDomain()
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkParties(ctx, tenantID, terms); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tenantID, id, "update_draft", func(_ TransactionalRepositories, c *lease.Contract) error {
		return c.UpdateTerms(terms)
	})
}

// UpdateNotes sets the notes of a contract in any status
func (s *ContractService) UpdateNotes(ctx context.Context, tenantID, id uuid.UUID, req UpdateNotesRequest) (*ContractResponse, error) {
	return s.mutate(ctx, tenantID, id, "update_notes", func(_ TransactionalRepositories, c *lease.Contract) error {
		c.UpdateNotes(req.Notes)
		return nil
	})
}

// Activate moves a DRAFT contract to ACTIVE. The property must not have another current contract.
func (s *ContractService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*ContractResponse, error) {
	return s.mutate(ctx, tenantID, id, "activate", func(repos TransactionalRepositories, c *lease.Contract) error {
		others, err := repos.ContractRepo().FindInForceByProperty(ctx, tenantID, c.PropertyID)
		if err != nil {
			return fmt.Errorf("failed to check property contracts: %w", err)
		}
		today := s.today()
		for i := range others {
			if others[i].ID != c.ID && others[i].Active && others[i].IsCurrent(today) {
				return shared.NewInvalidStateError("property already has current contract %s", others[i].ContractNumber)
			}
		}
		return c.Activate()
	})
}

// Terminate ends an in-force contract
func (s *ContractService) Terminate(ctx context.Context, tenantID, id uuid.UUID, req TerminateContractRequest) (*ContractResponse, error) {
	return s.mutate(ctx, tenantID, id, "terminate", func(_ TransactionalRepositories, c *lease.Contract) error {
		return c.Terminate(req.Reason)
	})
}

// Cancel voids a contract that is not already closed
func (s *ContractService) Cancel(ctx context.Context, tenantID, id uuid.UUID, req CancelContractRequest) (*ContractResponse, error) {
	return s.mutate(ctx, tenantID, id, "cancel", func(_ TransactionalRepositories, c *lease.Contract) error {
		return c.Cancel(req.Reason)
	})
}

// mutate loads a contract inside a transaction, applies fn and saves it with a version check
func (s *ContractService) mutate(
	ctx context.Context,
	tenantID, id uuid.UUID,
	op string,
	fn func(repos TransactionalRepositories, c *lease.Contract) error,
) (*ContractResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", op)
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrContractID, id.String())

	var contract *lease.Contract
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.ContractRepo().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := fn(repos, c); err != nil {
			return err
		}
		if err := repos.ContractRepo().SaveWithLock(ctx, c); err != nil {
			return err
		}
		contract = c
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrContractStatus, string(contract.Status))
	s.logger.Info("Contract updated",
		zap.String("operation", op),
		zap.String("contract_id", contract.ID.String()),
		zap.String("status", string(contract.Status)))
	s.publish(ctx, contract)

	resp := ToContractResponse(contract, s.today())
	return &resp, nil
}

// Renew closes an in-force contract as RENEWED and creates its ACTIVE successor in one transaction
func (s *ContractService) Renew(ctx context.Context, tenantID, id uuid.UUID, req RenewContractRequest) (*RenewalResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "renew")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrContractID, id.String())

	today := s.today()
	var source, successor *lease.Contract
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		repo := repos.ContractRepo()
		c, err := repo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		number, err := s.nextContractNumber(ctx, repo, tenantID)
		if err != nil {
			return err
		}
		next, err := c.Renew(lease.RenewalRequest{
			NewEndDate:          req.NewEndDate,
			NewRent:             req.NewRent,
			NewGuarantorID:      req.NewGuarantorID,
			NewConditions:       req.NewConditions,
			ApplyAnnualIncrease: req.ApplyAnnualIncrease,
			Notes:               req.Notes,
		}, number, today)
		if err != nil {
			return err
		}
		if err := repo.SaveWithLock(ctx, c); err != nil {
			return err
		}
		if err := repo.Save(ctx, next); err != nil {
			return err
		}
		source, successor = c, next
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Contract renewed",
		zap.String("contract_id", source.ID.String()),
		zap.String("successor_id", successor.ID.String()),
		zap.String("successor_number", successor.ContractNumber),
		zap.String("monthly_rent", successor.MonthlyRent.StringFixed(2)))
	s.publish(ctx, source, successor)

	return &RenewalResponse{
		Source:    ToContractResponse(source, today),
		Successor: ToContractResponse(successor, today),
	}, nil
}

// Delete removes a contract that never had charges or payments, and deactivates it otherwise
func (s *ContractService) Delete(ctx context.Context, tenantID, id uuid.UUID) (*DeleteResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "delete")
	defer span.End()

	result := &DeleteResult{ID: id}
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.ContractRepo().FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		charges, err := repos.ChargeRepo().CountByContract(ctx, tenantID, id)
		if err != nil {
			return fmt.Errorf("failed to count charges: %w", err)
		}
		payments, err := repos.PaymentRepo().CountByContract(ctx, tenantID, id)
		if err != nil {
			return fmt.Errorf("failed to count payments: %w", err)
		}
		if charges == 0 && payments == 0 {
			result.Deleted = true
			return repos.ContractRepo().Delete(ctx, tenantID, id)
		}
		c.Deactivate()
		result.Deactivated = true
		return repos.ContractRepo().SaveWithLock(ctx, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Contract deleted",
		zap.String("contract_id", id.String()),
		zap.Bool("hard_delete", result.Deleted))
	return result, nil
}

// ScanExpirations emits expiry events for the contracts of a tenant whose
// display status moved to EXPIRING_SOON or EXPIRED since the last scan.
// Stored statuses are not changed.
func (s *ContractService) ScanExpirations(ctx context.Context, tenantID uuid.UUID) (*ExpiryScanResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "scan_expirations")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrTenantID, tenantID.String())

	today := s.today()
	contracts, err := s.contractRepo.FindInForce(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &ExpiryScanResult{Scanned: len(contracts)}
	for i := range contracts {
		c := &contracts[i]
		if !c.ScanExpiry(today) {
			continue
		}
		if err := s.contractRepo.SaveWithLock(ctx, c); err != nil {
			// Picked up again by the next scan
			s.logger.Warn("Failed to store expiry watermark",
				zap.String("contract_id", c.ID.String()),
				zap.Error(err))
			c.ClearDomainEvents()
			continue
		}
		if c.ExpiryNotified == lease.ContractStatusExpired {
			result.Expired++
		} else {
			result.ExpiringSoon++
		}
		s.publish(ctx, c)
	}
	return result, nil
}

// ScanAllTenants runs ScanExpirations for every tenant with in-force contracts
func (s *ContractService) ScanAllTenants(ctx context.Context) (*ExpiryScanResult, error) {
	tenants, err := s.contractRepo.FindTenantIDs(ctx)
	if err != nil {
		return nil, err
	}
	total := &ExpiryScanResult{}
	for _, tenantID := range tenants {
		r, err := s.ScanExpirations(ctx, tenantID)
		if err != nil {
			s.logger.Error("Expiry scan failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
			continue
		}
		total.Scanned += r.Scanned
		total.ExpiringSoon += r.ExpiringSoon
		total.Expired += r.Expired
	}
	return total, nil
}

func (s *ContractService) today() time.Time {
	return shared.Today(s.clock)
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
