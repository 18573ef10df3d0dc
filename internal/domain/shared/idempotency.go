package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event ids a handler already processed, so
// a redelivered event does not send a second notice.
type IdempotencyStore interface {
	// MarkProcessed records eventID for ttl. It reports false when the id
	// was already recorded.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	Close() error
}

// IdempotencyConfig controls deduplication of event handlers
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig keeps processed ids for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
