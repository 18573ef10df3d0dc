package cache

import (
	"github.com/inmobiliaria/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore picks the Redis store when a client is available and
// falls back to process memory otherwise.
func NewIdempotencyStore(client *redis.Client, logger *zap.Logger) shared.IdempotencyStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client != nil {
		logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(client, DefaultProcessedKeyPrefix)
	}
	logger.Warn("Redis unavailable, using in-memory idempotency store; " +
		"notifications may repeat when several instances run")
	return NewMemoryIdempotencyStore()
}
