package notification

import (
	"context"
	"fmt"

	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Handler forwards notification-worthy domain events to a Notifier.
// Deduplication of redelivered events is left to the idempotent wrapper the
// bus registers it with.
type Handler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewHandler creates a new notification Handler
func NewHandler(notifier Notifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *Handler) EventTypes() []string {
	return []string{
		lease.EventTypeContractExpiringSoon,
		lease.EventTypeContractExpired,
		lease.EventTypeContractRenewed,
		lease.EventTypeContractTerminated,
		ledger.EventTypeChargeOverdue,
		ledger.EventTypePaymentCancelled,
		ledger.EventTypePaymentRejected,
		collections.EventTypeDelinquencyOpened,
		collections.EventTypeDelinquencyClosed,
	}
}

// Handle composes and delivers the notification of one event
func (h *Handler) Handle(ctx context.Context, event shared.DomainEvent) error {
	n, ok := compose(event)
	if !ok {
		return nil
	}
	if err := h.notifier.Notify(ctx, n); err != nil {
		return fmt.Errorf("failed to deliver %s notification: %w", n.Kind, err)
	}
	h.logger.Debug("Notification delivered",
		zap.String("kind", n.Kind),
		zap.String("tenant_id", n.TenantID.String()),
		zap.String("aggregate_id", n.AggregateID.String()))
	return nil
}

func compose(event shared.DomainEvent) (Notification, bool) {
	n := Notification{
		ID:            event.EventID(),
		TenantID:      event.TenantID(),
		Kind:          event.EventType(),
		Severity:      SeverityInfo,
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		OccurredAt:    event.OccurredAt(),
		Payload:       event,
	}

	switch e := event.(type) {
	case *lease.ContractExpiryEvent:
		if e.EventType() == lease.EventTypeContractExpired {
			n.Severity = SeverityWarning
			n.Subject = fmt.Sprintf("Contrato %s vencido", e.ContractNumber)
			n.Message = fmt.Sprintf("El contrato %s venció el %s.", e.ContractNumber, e.EndDate.Format(dateLayout))
		} else {
			n.Subject = fmt.Sprintf("Contrato %s por vencer", e.ContractNumber)
			n.Message = fmt.Sprintf("El contrato %s vence el %s, en %d días.",
				e.ContractNumber, e.EndDate.Format(dateLayout), e.DaysRemaining)
		}
	case *lease.ContractRenewedEvent:
		n.Subject = fmt.Sprintf("Contrato %s renovado", e.ContractNumber)
		n.Message = fmt.Sprintf("El contrato %s se renovó como %s del %s al %s con renta de %s.",
			e.ContractNumber, e.SuccessorNumber,
			e.NewStartDate.Format(dateLayout), e.NewEndDate.Format(dateLayout), e.NewRent.StringFixed(2))
	case *lease.ContractTerminatedEvent:
		n.Subject = fmt.Sprintf("Contrato %s terminado", e.ContractNumber)
		n.Message = fmt.Sprintf("El contrato %s se terminó anticipadamente: %s", e.ContractNumber, e.Reason)
	case *ledger.ChargeOverdueEvent:
		n.Severity = SeverityWarning
		n.Subject = fmt.Sprintf("Cargo vencido: %s", e.Concept)
		n.Message = fmt.Sprintf("%s venció el %s con saldo pendiente de %s.",
			e.Concept, e.DueDate.Format(dateLayout), e.Pending.StringFixed(2))
	case *ledger.PaymentCancelledEvent:
		n.Severity = SeverityWarning
		n.Subject = fmt.Sprintf("Pago %s cancelado", e.ReceiptNumber)
		n.Message = fmt.Sprintf("Se canceló el pago %s y se revirtieron %s aplicados.",
			e.ReceiptNumber, e.Reversed.StringFixed(2))
	case *ledger.PaymentRejectedEvent:
		n.Severity = SeverityWarning
		n.Subject = fmt.Sprintf("Pago %s rechazado", e.ReceiptNumber)
		n.Message = fmt.Sprintf("El pago %s fue rechazado: %s", e.ReceiptNumber, e.Reason)
	case *collections.DelinquencyOpenedEvent:
		n.Severity = SeverityWarning
		n.Subject = fmt.Sprintf("Nueva cuenta en cartera vencida: %s", e.Concept)
		n.Message = fmt.Sprintf("%s tiene %d días de atraso y %s pendientes.",
			e.Concept, e.DaysOverdue, e.PendingAmount.StringFixed(2))
	case *collections.DelinquencyClosedEvent:
		n.Subject = "Cuenta de cartera vencida liquidada"
		n.Message = fmt.Sprintf("La cuenta %s quedó pagada con penalidad acumulada de %s.",
			e.AccountID, e.PenaltyAmount.StringFixed(2))
	default:
		return Notification{}, false
	}
	return n, true
}

var _ shared.EventHandler = (*Handler)(nil)
