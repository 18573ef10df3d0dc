// Package common holds helpers shared by the application services.
package common

import (
	"context"
	"errors"

	"github.com/inmobiliaria/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds how often an operation is re-run after an optimistic lock conflict
const DefaultMaxAttempts = 3

// EventSource is anything that buffers domain events until its transaction commits
type EventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// RetryOnConflict runs fn until it succeeds, fails with anything other than a
// concurrency conflict, or maxAttempts is reached. Each attempt must reload
// its data; fn receives the 1-based attempt number.
func RetryOnConflict(ctx context.Context, logger *zap.Logger, maxAttempts int, op string, fn func(attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn(attempt)
		if err == nil {
			return nil
		}
		if errors.Is(err, shared.ErrInvariantViolation) {
			logger.Error("Ledger invariant violated",
				zap.String("operation", op),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		logger.Warn("Optimistic lock conflict, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err))
	}
	return err
}

// CollectEvents drains the buffered events of every source, in order
func CollectEvents(sources ...EventSource) []shared.DomainEvent {
	var events []shared.DomainEvent
	for _, s := range sources {
		if s == nil {
			continue
		}
		events = append(events, s.GetDomainEvents()...)
		s.ClearDomainEvents()
	}
	return events
}

// PublishEvents publishes events after commit. Failures are logged and never
// undo the committed work.
func PublishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil && logger != nil {
		logger.Error("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err))
	}
}
