// Package notify delivers notifications composed by the application layer
// to concrete channels: the structured log or a Redis Pub/Sub channel.
package notify

import (
	"context"

	"github.com/inmobiliaria/backend/internal/application/notification"
	"github.com/inmobiliaria/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(l *zap.Logger) *LogNotifier {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogNotifier{logger: l.Named("notify")}
}

// Notify logs the notification at a level matching its severity
func (n *LogNotifier) Notify(ctx context.Context, msg notification.Notification) error {
	level := zapcore.InfoLevel
	if msg.Severity == notification.SeverityWarning {
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.String("notification_id", msg.ID.String()),
		zap.String("tenant_id", msg.TenantID.String()),
		zap.String("kind", msg.Kind),
		zap.String("severity", string(msg.Severity)),
		zap.String("aggregate_type", msg.AggregateType),
		zap.String("aggregate_id", msg.AggregateID.String()),
		zap.String("message", msg.Message),
		zap.Time("occurred_at", msg.OccurredAt),
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	if ce := n.logger.Check(level, msg.Subject); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

var _ notification.Notifier = (*LogNotifier)(nil)
