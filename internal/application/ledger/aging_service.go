package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AgingService builds the aged-balance views of the receivables
type AgingService struct {
	contractRepo lease.ContractRepository
	chargeRepo   ledger.ChargeRepository
	clock        shared.Clock
	logger       *zap.Logger
}

// NewAgingService creates a new AgingService
func NewAgingService(
	contractRepo lease.ContractRepository,
	chargeRepo ledger.ChargeRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *AgingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgingService{
		contractRepo: contractRepo,
		chargeRepo:   chargeRepo,
		clock:        clock,
		logger:       logger,
	}
}

func (s *AgingService) asOf(requested *time.Time) time.Time {
	if requested != nil && !requested.IsZero() {
		return shared.DateOf(*requested)
	}
	return shared.Today(s.clock)
}

// Summarize buckets the pending balance of the whole tenant, one contract or one person
func (s *AgingService) Summarize(ctx context.Context, tenantID uuid.UUID, req AgingScopeRequest) (*ledger.AgingSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "aging", "summarize")
	defer span.End()

	if req.ContractID != nil && req.PersonID != nil {
		return nil, shared.NewValidationError("scope by contract or by person, not both")
	}
	asOf := s.asOf(req.AsOf)
	telemetry.SetAttribute(span, telemetry.SpanAttrAsOf, asOf.Format(time.DateOnly))

	charges, err := s.chargeRepo.FindAgeable(ctx, tenantID, ledger.AgingScope{
		ContractID: req.ContractID,
		PersonID:   req.PersonID,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return ledger.Summarize(charges, asOf), nil
}

// Report returns one aging row per contract with an outstanding balance, plus tenant totals
func (s *AgingService) Report(ctx context.Context, tenantID uuid.UUID, requested *time.Time) (*AgingReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "aging", "report")
	defer span.End()

	asOf := s.asOf(requested)
	charges, err := s.chargeRepo.FindAgeable(ctx, tenantID, ledger.AgingScope{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	grouped := ledger.SummarizeByContract(charges, asOf)
	report := &AgingReport{
		AsOf:   asOf,
		Rows:   make([]AgingReportRow, 0, len(grouped)),
		Totals: ledger.Summarize(charges, asOf),
	}
	for _, g := range grouped {
		if g.Summary.TotalCount == 0 {
			continue
		}
		row := AgingReportRow{ContractID: g.ContractID, Summary: g.Summary}
		c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, g.ContractID)
		switch {
		case err == nil:
			row.ContractNumber = c.ContractNumber
			row.PersonID = c.PersonID
			row.PropertyID = c.PropertyID
		case errors.Is(err, shared.ErrNotFound):
			s.logger.Warn("Aging row without contract", zap.String("contract_id", g.ContractID.String()))
		default:
			return nil, err
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}
