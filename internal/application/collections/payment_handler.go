package collections

import (
	"context"
	"errors"

	"github.com/inmobiliaria/backend/internal/application/common"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ChargePaymentHandler mirrors ledger payments onto the open delinquent
// account of the charge. The periodic sync remains the source of truth, so
// a missed event only delays the update.
type ChargePaymentHandler struct {
	accountRepo collections.DelinquentAccountRepository
	clock       shared.Clock
	maxAttempts int
	logger      *zap.Logger
}

// NewChargePaymentHandler creates a new ChargePaymentHandler
func NewChargePaymentHandler(accountRepo collections.DelinquentAccountRepository, clock shared.Clock, logger *zap.Logger) *ChargePaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChargePaymentHandler{
		accountRepo: accountRepo,
		clock:       clock,
		maxAttempts: common.DefaultMaxAttempts,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ChargePaymentHandler) EventTypes() []string {
	return []string{ledger.EventTypeChargePaymentApplied, ledger.EventTypeChargePaymentReversed}
}

// Handle processes a charge payment event
func (h *ChargePaymentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*ledger.ChargePaymentEvent)
	if !ok {
		return nil
	}
	today := shared.Today(h.clock)

	return common.RetryOnConflict(ctx, h.logger, h.maxAttempts, "mirror_charge_payment", func(int) error {
		a, err := h.accountRepo.FindOpenByCharge(ctx, e.TenantID(), e.ChargeID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		switch e.EventType() {
		case ledger.EventTypeChargePaymentApplied:
			if err := a.RecordPayment(e.Amount, today); err != nil {
				return err
			}
		case ledger.EventTypeChargePaymentReversed:
			if !a.Refresh(e.Pending, today) {
				return nil
			}
		default:
			return nil
		}

		if err := h.accountRepo.SaveWithLock(ctx, a); err != nil {
			a.ClearDomainEvents()
			return err
		}
		h.logger.Debug("Delinquent account mirrored charge payment",
			zap.String("account_id", a.ID.String()),
			zap.String("charge_id", e.ChargeID.String()),
			zap.String("event_type", e.EventType()),
			zap.String("pending", a.PendingAmount.StringFixed(2)))
		return nil
	})
}

var _ shared.EventHandler = (*ChargePaymentHandler)(nil)
