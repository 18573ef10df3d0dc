package collections

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/application/common"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/domain/shared/valueobject"
	"github.com/inmobiliaria/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// defaultProjectionMonths is the window listed when no range is given
const defaultProjectionMonths = 12

// ProjectionService keeps the monthly collection projections in step with
// the fixed rent charges of each period
type ProjectionService struct {
	projectionRepo collections.ProjectionRepository
	chargeRepo     ledger.ChargeRepository
	clock          shared.Clock
	config         ServiceConfig
	logger         *zap.Logger
}

// NewProjectionService creates a new ProjectionService
func NewProjectionService(
	projectionRepo collections.ProjectionRepository,
	chargeRepo ledger.ChargeRepository,
	clock shared.Clock,
	config ServiceConfig,
	logger *zap.Logger,
) *ProjectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = common.DefaultMaxAttempts
	}
	return &ProjectionService{
		projectionRepo: projectionRepo,
		chargeRepo:     chargeRepo,
		clock:          clock,
		config:         config,
		logger:         logger,
	}
}

// Refresh recomputes the projection of the month containing period from its
// live fixed charges, creating it on first use
func (s *ProjectionService) Refresh(ctx context.Context, tenantID uuid.UUID, period time.Time) (*ProjectionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "projection", "refresh")
	defer span.End()
	period = collections.PeriodOf(period)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPeriod, period.Format("2006-01"),
	)

	var projection *collections.Projection
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, "refresh_projection", func(int) error {
		charges, err := s.chargeRepo.FindRecurringDue(ctx, tenantID, period, collections.PeriodEnd(period))
		if err != nil {
			return err
		}
		p, err := s.projectionRepo.FindByPeriod(ctx, tenantID, period)
		created := errors.Is(err, shared.ErrNotFound)
		if created {
			p = collections.NewProjection(tenantID, period)
		} else if err != nil {
			return err
		}

		changed := p.Recompute(charges, s.clock.Now())
		switch {
		case created:
			if err := s.projectionRepo.Create(ctx, p); err != nil {
				// Another refresh created the month first
				if errors.Is(err, shared.ErrAlreadyExists) {
					return shared.NewConcurrencyError("projection")
				}
				return err
			}
		case changed:
			if err := s.projectionRepo.SaveWithLock(ctx, p); err != nil {
				return err
			}
		}
		projection = p
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Debug("Collection projection refreshed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("period", period.Format("2006-01")),
		zap.String("projected", projection.ProjectedAmount.StringFixed(2)),
		zap.String("collected", projection.CollectedAmount.StringFixed(2)))
	resp := ToProjectionResponse(projection)
	return &resp, nil
}

// Report lists the stored projections of a range of months with their totals.
// Without a range it covers the twelve months ending with the current one.
func (s *ProjectionService) Report(ctx context.Context, tenantID uuid.UUID, req ProjectionRangeRequest) (*ProjectionReport, error) {
	to := collections.PeriodOf(shared.Today(s.clock))
	if req.To != nil && !req.To.IsZero() {
		to = collections.PeriodOf(*req.To)
	}
	from := to.AddDate(0, 1-defaultProjectionMonths, 0)
	if req.From != nil && !req.From.IsZero() {
		from = collections.PeriodOf(*req.From)
	}
	if from.After(to) {
		return nil, shared.NewValidationError("from must not be after to")
	}

	projections, err := s.projectionRepo.FindRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	report := &ProjectionReport{
		From:        from,
		To:          to,
		Projections: make([]ProjectionResponse, len(projections)),
	}
	projected, collected := valueobject.ZeroMXN(), valueobject.ZeroMXN()
	for i := range projections {
		p := &projections[i]
		report.Projections[i] = ToProjectionResponse(p)
		projected = projected.Add(valueobject.NewMoneyMXN(p.ProjectedAmount))
		collected = collected.Add(valueobject.NewMoneyMXN(p.CollectedAmount))
	}
	report.TotalProjected = projected.Amount()
	report.TotalCollected = collected.Amount()
	report.TotalPending = projected.Sub(collected).Amount()
	report.CompliancePercent = collected.PercentOf(projected)
	return report, nil
}

// UpdateNotes replaces the notes of a month's projection
func (s *ProjectionService) UpdateNotes(ctx context.Context, tenantID uuid.UUID, period time.Time, req UpdateProjectionNotesRequest) (*ProjectionResponse, error) {
	var projection *collections.Projection
	err := common.RetryOnConflict(ctx, s.logger, s.config.MaxAttempts, "update_projection_notes", func(int) error {
		p, err := s.projectionRepo.FindByPeriod(ctx, tenantID, period)
		if err != nil {
			return err
		}
		if p.Notes == strings.TrimSpace(req.Notes) {
			projection = p
			return nil
		}
		p.UpdateNotes(req.Notes)
		if err := s.projectionRepo.SaveWithLock(ctx, p); err != nil {
			return err
		}
		projection = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToProjectionResponse(projection)
	return &resp, nil
}
