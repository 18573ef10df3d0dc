package collections

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ChargeProjectionHandler refreshes the projection of a month whenever one of
// its fixed rent charges is created, paid, reversed or cancelled
type ChargeProjectionHandler struct {
	projections *ProjectionService
	chargeRepo  ledger.ChargeRepository
	logger      *zap.Logger
}

// NewChargeProjectionHandler creates a new ChargeProjectionHandler
func NewChargeProjectionHandler(projections *ProjectionService, chargeRepo ledger.ChargeRepository, logger *zap.Logger) *ChargeProjectionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChargeProjectionHandler{projections: projections, chargeRepo: chargeRepo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ChargeProjectionHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeChargeCreated,
		ledger.EventTypeChargeCancelled,
		ledger.EventTypeChargePaymentApplied,
		ledger.EventTypeChargePaymentReversed,
	}
}

// Handle processes a charge event
func (h *ChargeProjectionHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var chargeID uuid.UUID
	switch e := event.(type) {
	case *ledger.ChargeCreatedEvent:
		if !e.FixedRecurring {
			return nil
		}
		chargeID = e.ChargeID
	case *ledger.ChargeCancelledEvent:
		chargeID = e.ChargeID
	case *ledger.ChargePaymentEvent:
		chargeID = e.ChargeID
	default:
		return nil
	}

	charge, err := h.chargeRepo.FindByIDForTenant(ctx, event.TenantID(), chargeID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !charge.FixedRecurring {
		return nil
	}

	period := collections.ChargePeriod(charge)
	if _, err := h.projections.Refresh(ctx, event.TenantID(), period); err != nil {
		h.logger.Warn("Failed to refresh collection projection",
			zap.String("charge_id", chargeID.String()),
			zap.String("period", period.Format("2006-01")),
			zap.Error(err))
		return err
	}
	return nil
}

var _ shared.EventHandler = (*ChargeProjectionHandler)(nil)
