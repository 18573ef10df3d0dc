package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[string(a.Key)] = a.Value.Emit()
	}
	return out
}

func TestStartServiceSpan(t *testing.T) {
	recorder := setupSpanRecorder(t)
	tenantID := uuid.New()

	ctx, span := StartServiceSpan(context.Background(), "payment", "register", SpanAttrTenantID, tenantID)
	assert.NotEmpty(t, TraceID(ctx))
	assert.NotEmpty(t, SpanID(ctx))

	SetAttributes(span,
		SpanAttrAmount, decimal.RequireFromString("1250.5"),
		SpanAttrAsOf, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		42, "ignored",
	)
	SetAttribute(span, SpanAttrAttempt, 2)
	AddEvent(span, "allocated", "charges", 3)
	RecordError(span, errors.New("version conflict"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "payment.register", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "version conflict", got.Status().Description)

	attrs := attrMap(got.Attributes())
	assert.Equal(t, tenantID.String(), attrs[SpanAttrTenantID])
	assert.Equal(t, "1250.50", attrs[SpanAttrAmount])
	assert.Equal(t, "2025-06-15", attrs[SpanAttrAsOf])
	assert.Equal(t, "2", attrs[SpanAttrAttempt])
	assert.NotContains(t, attrs, "42")

	var names []string
	for _, ev := range got.Events() {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, "allocated")
}

func TestHelpersTolerateNilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "a", 1)
		SetAttribute(nil, "a", 1)
		RecordError(nil, errors.New("x"))
		AddEvent(nil, "x")
	})
}

func TestTraceID_WithoutSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
	assert.Empty(t, SpanID(context.Background()))
}

func TestInitTracer_Disabled(t *testing.T) {
	tp, err := InitTracer(context.Background(), Config{Enabled: false}, nil)
	require.NoError(t, err)
	assert.False(t, tp.Enabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}
