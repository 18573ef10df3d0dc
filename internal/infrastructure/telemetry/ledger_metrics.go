package telemetry

import (
	"context"
	"fmt"

	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics turns committed domain events into counters. It is
// registered on the event bus like any other handler.
type LedgerMetrics struct {
	contractEvents metric.Int64Counter
	chargesCreated metric.Int64Counter
	chargesOverdue metric.Int64Counter
	payments       metric.Int64Counter
	appliedAmount  metric.Float64Counter
	reversedAmount metric.Float64Counter
	delinquency    metric.Int64Counter
	penaltyAmount  metric.Float64Counter
}

// NewLedgerMetrics creates the instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	m := &LedgerMetrics{}
	var err error

	if m.contractEvents, err = meter.Int64Counter("ledger.contract.events",
		metric.WithDescription("Contract lifecycle transitions")); err != nil {
		return nil, fmt.Errorf("contract events counter: %w", err)
	}
	if m.chargesCreated, err = meter.Int64Counter("ledger.charges.created",
		metric.WithDescription("Charges raised, by type")); err != nil {
		return nil, fmt.Errorf("charges created counter: %w", err)
	}
	if m.chargesOverdue, err = meter.Int64Counter("ledger.charges.overdue",
		metric.WithDescription("Charges that went past due with a balance")); err != nil {
		return nil, fmt.Errorf("charges overdue counter: %w", err)
	}
	if m.payments, err = meter.Int64Counter("ledger.payments",
		metric.WithDescription("Payment lifecycle events, by outcome")); err != nil {
		return nil, fmt.Errorf("payments counter: %w", err)
	}
	if m.appliedAmount, err = meter.Float64Counter("ledger.payments.applied_amount",
		metric.WithDescription("Money allocated to charges"), metric.WithUnit("{currency}")); err != nil {
		return nil, fmt.Errorf("applied amount counter: %w", err)
	}
	if m.reversedAmount, err = meter.Float64Counter("ledger.payments.reversed_amount",
		metric.WithDescription("Money taken back from charges by cancellations"), metric.WithUnit("{currency}")); err != nil {
		return nil, fmt.Errorf("reversed amount counter: %w", err)
	}
	if m.delinquency, err = meter.Int64Counter("ledger.delinquency.transitions",
		metric.WithDescription("Delinquent accounts opened and closed")); err != nil {
		return nil, fmt.Errorf("delinquency counter: %w", err)
	}
	if m.penaltyAmount, err = meter.Float64Counter("ledger.penalties.accrued_amount",
		metric.WithDescription("Penalty growth on delinquent accounts"), metric.WithUnit("{currency}")); err != nil {
		return nil, fmt.Errorf("penalty counter: %w", err)
	}
	return m, nil
}

// EventTypes returns the event types this handler is interested in
func (m *LedgerMetrics) EventTypes() []string {
	return []string{
		lease.EventTypeContractActivated,
		lease.EventTypeContractTerminated,
		lease.EventTypeContractCancelled,
		lease.EventTypeContractRenewed,
		lease.EventTypeContractExpired,
		ledger.EventTypeChargeCreated,
		ledger.EventTypeChargeOverdue,
		ledger.EventTypePaymentCreated,
		ledger.EventTypePaymentApplied,
		ledger.EventTypePaymentCancelled,
		ledger.EventTypePaymentRejected,
		collections.EventTypeDelinquencyOpened,
		collections.EventTypeDelinquencyClosed,
		collections.EventTypePenaltyAccrued,
	}
}

// Handle records one event
func (m *LedgerMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := attribute.String(SpanAttrTenantID, event.TenantID().String())

	switch e := event.(type) {
	case *ledger.ChargeCreatedEvent:
		m.chargesCreated.Add(ctx, 1, metric.WithAttributes(tenant,
			attribute.String("charge_type", string(e.Type)),
			attribute.Bool("fixed_recurring", e.FixedRecurring)))
	case *ledger.ChargeOverdueEvent:
		m.chargesOverdue.Add(ctx, 1, metric.WithAttributes(tenant))
	case *ledger.PaymentCreatedEvent:
		m.payments.Add(ctx, 1, metric.WithAttributes(tenant,
			attribute.String("outcome", "registered"),
			attribute.String("payment_type", string(e.Type))))
	case *ledger.PaymentAppliedEvent:
		m.payments.Add(ctx, 1, metric.WithAttributes(tenant, attribute.String("outcome", "applied")))
		m.appliedAmount.Add(ctx, e.Applied.InexactFloat64(), metric.WithAttributes(tenant))
	case *ledger.PaymentCancelledEvent:
		m.payments.Add(ctx, 1, metric.WithAttributes(tenant, attribute.String("outcome", "cancelled")))
		m.reversedAmount.Add(ctx, e.Reversed.InexactFloat64(), metric.WithAttributes(tenant))
	case *ledger.PaymentRejectedEvent:
		m.payments.Add(ctx, 1, metric.WithAttributes(tenant, attribute.String("outcome", "rejected")))
	case *collections.DelinquencyOpenedEvent:
		m.delinquency.Add(ctx, 1, metric.WithAttributes(tenant,
			attribute.String("transition", "opened"),
			attribute.String("bucket", string(e.Bucket))))
	case *collections.DelinquencyClosedEvent:
		m.delinquency.Add(ctx, 1, metric.WithAttributes(tenant, attribute.String("transition", "closed")))
	case *collections.PenaltyAccruedEvent:
		if delta := e.PenaltyAmount.Sub(e.PreviousPenalty); delta.IsPositive() {
			m.penaltyAmount.Add(ctx, delta.InexactFloat64(), metric.WithAttributes(tenant))
		}
	default:
		switch event.EventType() {
		case lease.EventTypeContractActivated, lease.EventTypeContractTerminated,
			lease.EventTypeContractCancelled, lease.EventTypeContractRenewed, lease.EventTypeContractExpired:
			m.contractEvents.Add(ctx, 1, metric.WithAttributes(tenant,
				attribute.String("event", event.EventType())))
		}
	}
	return nil
}

var _ shared.EventHandler = (*LedgerMetrics)(nil)
