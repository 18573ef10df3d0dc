// Package notification turns domain events into notifications for people
// watching a portfolio: expiring leases, overdue rent, bounced payments.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inmobiliaria/backend/internal/domain/shared"
)

// Severity ranks how urgently a notification needs attention
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
)

// Notification is the channel-independent message delivered by a Notifier
type Notification struct {
	ID            uuid.UUID          `json:"id"`
	TenantID      uuid.UUID          `json:"tenant_id"`
	Kind          string             `json:"kind"`
	Severity      Severity           `json:"severity"`
	Subject       string             `json:"subject"`
	Message       string             `json:"message"`
	AggregateType string             `json:"aggregate_type"`
	AggregateID   uuid.UUID          `json:"aggregate_id"`
	OccurredAt    time.Time          `json:"occurred_at"`
	Payload       shared.DomainEvent `json:"payload"`
}

// Notifier delivers notifications. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
