package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/application/notification"
	"github.com/inmobiliaria/backend/internal/domain/ledger"
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/inmobiliaria/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleNotification(severity notification.Severity) notification.Notification {
	chargeID := uuid.New()
	tenantID := uuid.New()
	base := shared.NewBaseDomainEvent(ledger.EventTypeChargeOverdue, ledger.AggregateTypeCharge, chargeID, tenantID)
	return notification.Notification{
		ID:            base.EventID(),
		TenantID:      tenantID,
		Kind:          ledger.EventTypeChargeOverdue,
		Severity:      severity,
		Subject:       "Cargo vencido: Renta Mayo 2025",
		Message:       "Renta Mayo 2025 venció el 2025-05-10 con saldo pendiente de 600.00.",
		AggregateType: ledger.AggregateTypeCharge,
		AggregateID:   chargeID,
		OccurredAt:    time.Date(2025, time.June, 15, 6, 0, 0, 0, time.UTC),
		Payload: &ledger.ChargeOverdueEvent{
			BaseDomainEvent: base,
			ChargeID:        chargeID,
			Concept:         "Renta Mayo 2025",
			Pending:         decimal.NewFromInt(600),
			DueDate:         shared.Date(2025, time.May, 10),
			DaysOverdue:     36,
		},
	}
}

func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLogNotifier_Notify(t *testing.T) {
	t.Run("warnings are logged at warn level", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		n := NewLogNotifier(zap.New(core))
		msg := sampleNotification(notification.SeverityWarning)

		require.NoError(t, n.Notify(context.Background(), msg))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Equal(t, msg.Subject, entry.Message)
		fields := entry.ContextMap()
		assert.Equal(t, msg.TenantID.String(), fields["tenant_id"])
		assert.Equal(t, ledger.EventTypeChargeOverdue, fields["kind"])
		assert.Equal(t, msg.Message, fields["message"])
	})

	t.Run("informational notifications are logged at info level", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		n := NewLogNotifier(zap.New(core))

		require.NoError(t, n.Notify(context.Background(), sampleNotification(notification.SeverityInfo)))
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.InfoLevel).Len())
	})

	t.Run("respects the logger level", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		n := NewLogNotifier(zap.New(core))

		require.NoError(t, n.Notify(context.Background(), sampleNotification(notification.SeverityInfo)))
		assert.Zero(t, logs.Len())
	})

	t.Run("nil logger is allowed", func(t *testing.T) {
		assert.NoError(t, NewLogNotifier(nil).Notify(context.Background(), sampleNotification(notification.SeverityInfo)))
	})
}

func TestRedisNotifier_Options(t *testing.T) {
	n := NewRedisNotifier(unreachableClient(t))
	assert.Equal(t, DefaultChannel, n.Channel())

	n = NewRedisNotifier(unreachableClient(t), WithChannel("tenant:alerts"), WithChannel(""))
	assert.Equal(t, "tenant:alerts", n.Channel())
}

func TestRedisNotifier_NotifyFailsWithoutServer(t *testing.T) {
	n := NewRedisNotifier(unreachableClient(t))

	err := n.Notify(context.Background(), sampleNotification(notification.SeverityWarning))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish notification")
	assert.NoError(t, n.Close())
}

func TestRedisNotifier_SubscribeFailsWithoutServer(t *testing.T) {
	n := NewRedisNotifier(unreachableClient(t))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := n.Subscribe(ctx, func(Delivery) {})
	require.Error(t, err)
	assert.NoError(t, n.Close())
}

func TestDecodeDelivery(t *testing.T) {
	msg := sampleNotification(notification.SeverityWarning)
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	d, err := DecodeDelivery(data)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, d.ID)
	assert.Equal(t, msg.TenantID, d.TenantID)
	assert.Equal(t, msg.Subject, d.Subject)
	assert.Equal(t, notification.SeverityWarning, d.Severity)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(d.Payload, &payload))
	assert.Equal(t, "Renta Mayo 2025", payload["concept"])

	_, err = DecodeDelivery([]byte("{not json"))
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Run("log driver", func(t *testing.T) {
		n, err := New(config.NotificationConfig{Driver: DriverLog}, nil, nil)
		require.NoError(t, err)
		assert.IsType(t, &LogNotifier{}, n)
	})

	t.Run("redis driver", func(t *testing.T) {
		n, err := New(config.NotificationConfig{Driver: DriverRedis, Channel: "x"}, unreachableClient(t), nil)
		require.NoError(t, err)
		require.IsType(t, &RedisNotifier{}, n)
		assert.Equal(t, "x", n.(*RedisNotifier).Channel())
	})

	t.Run("redis driver without client", func(t *testing.T) {
		_, err := New(config.NotificationConfig{Driver: DriverRedis}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := New(config.NotificationConfig{Driver: "pager"}, nil, nil)
		assert.Error(t, err)
	})
}
