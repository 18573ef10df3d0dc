package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/collections"
	"github.com/inmobiliaria/backend/internal/domain/lease"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupLedgerMetrics(t *testing.T) (*LedgerMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewLedgerMetrics(provider.Meter(MeterName))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func intTotal(t *testing.T, agg metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func floatTotal(t *testing.T, agg metricdata.Aggregation) float64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[float64])
	require.True(t, ok)
	var total float64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestLedgerMetrics_RecordsEvents(t *testing.T) {
	m, reader := setupLedgerMetrics(t)
	ctx := context.Background()
	tenant := uuid.New()

	base := func(eventType, aggregate string) shared.BaseDomainEvent {
		return shared.NewBaseDomainEvent(eventType, aggregate, uuid.New(), tenant)
	}

	events := []shared.DomainEvent{
		&ledger.ChargeCreatedEvent{BaseDomainEvent: base(ledger.EventTypeChargeCreated, ledger.AggregateTypeCharge),
			Type: ledger.ChargeTypeRent, Amount: decimal.NewFromInt(8000), DueDate: shared.Date(2025, time.June, 5), FixedRecurring: true},
		&ledger.ChargeOverdueEvent{BaseDomainEvent: base(ledger.EventTypeChargeOverdue, ledger.AggregateTypeCharge)},
		&ledger.PaymentAppliedEvent{BaseDomainEvent: base(ledger.EventTypePaymentApplied, ledger.AggregateTypePayment),
			Applied: decimal.RequireFromString("1250.50")},
		&ledger.PaymentCancelledEvent{BaseDomainEvent: base(ledger.EventTypePaymentCancelled, ledger.AggregateTypePayment),
			Reversed: decimal.NewFromInt(250)},
		&collections.DelinquencyOpenedEvent{BaseDomainEvent: base(collections.EventTypeDelinquencyOpened, collections.AggregateTypeDelinquentAccount),
			Bucket: ledger.AgingBucketOverdue31to60},
		&collections.PenaltyAccruedEvent{BaseDomainEvent: base(collections.EventTypePenaltyAccrued, collections.AggregateTypeDelinquentAccount),
			PreviousPenalty: decimal.NewFromInt(100), PenaltyAmount: decimal.NewFromInt(160)},
	}
	activated := base(lease.EventTypeContractActivated, lease.AggregateTypeContract)
	events = append(events, &activated)

	for _, e := range events {
		require.NoError(t, m.Handle(ctx, e))
	}

	data := collect(t, reader)
	assert.Equal(t, int64(1), intTotal(t, data["ledger.charges.created"]))
	assert.Equal(t, int64(1), intTotal(t, data["ledger.charges.overdue"]))
	assert.Equal(t, int64(2), intTotal(t, data["ledger.payments"]))
	assert.InDelta(t, 1250.50, floatTotal(t, data["ledger.payments.applied_amount"]), 0.001)
	assert.InDelta(t, 250, floatTotal(t, data["ledger.payments.reversed_amount"]), 0.001)
	assert.Equal(t, int64(1), intTotal(t, data["ledger.delinquency.transitions"]))
	assert.InDelta(t, 60, floatTotal(t, data["ledger.penalties.accrued_amount"]), 0.001)
	assert.Equal(t, int64(1), intTotal(t, data["ledger.contract.events"]))
}

func TestLedgerMetrics_EventTypes(t *testing.T) {
	m, _ := setupLedgerMetrics(t)
	types := m.EventTypes()
	assert.Contains(t, types, ledger.EventTypePaymentApplied)
	assert.Contains(t, types, collections.EventTypePenaltyAccrued)
	assert.NotContains(t, types, collections.EventTypeFollowUpRegistered)
}
