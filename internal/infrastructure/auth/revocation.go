package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList answers whether a still unexpired token was revoked, either
// on its own (logout) or with every token of its user issued before a cutoff.
type RevocationList interface {
	IsRevoked(ctx context.Context, claims *Claims) (bool, error)
}

const (
	revokedTokenPrefix = "auth:revoked:jti:"
	revokedUserPrefix  = "auth:revoked:user:"
)

// RedisRevocationList reads the revocation keys the identity service writes
// into the shared Redis.
type RedisRevocationList struct {
	client redis.UniversalClient
}

// NewRedisRevocationList wraps an existing client
func NewRedisRevocationList(client redis.UniversalClient) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

// Revoke marks one token id as revoked until ttl passes
func (r *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.client.Set(ctx, revokedTokenPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeUser revokes every token of userID issued up to at
func (r *RedisRevocationList) RevokeUser(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	if err := r.client.Set(ctx, revokedUserPrefix+userID, at.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

func (r *RedisRevocationList) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if claims.ID != "" {
		n, err := r.client.Exists(ctx, revokedTokenPrefix+claims.ID).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check token revocation: %w", err)
		}
		if n > 0 {
			return true, nil
		}
	}

	raw, err := r.client.Get(ctx, revokedUserPrefix+claims.UserID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}
	cutoff, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("bad revocation timestamp %q: %w", raw, err)
	}
	return !claims.IssuedAtTime().After(time.Unix(cutoff, 0)), nil
}

// MemoryRevocationList keeps revocations in process. Used when Redis is off.
type MemoryRevocationList struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
	users  map[string]time.Time
	now    func() time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		tokens: make(map[string]time.Time),
		users:  make(map[string]time.Time),
		now:    time.Now,
	}
}

// Revoke marks one token id as revoked until ttl passes
func (m *MemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[jti] = m.now().Add(ttl)
	return nil
}

// RevokeUser revokes every token of userID issued up to at
func (m *MemoryRevocationList) RevokeUser(_ context.Context, userID string, at time.Time, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = at
	return nil
}

func (m *MemoryRevocationList) IsRevoked(_ context.Context, claims *Claims) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if until, ok := m.tokens[claims.ID]; ok && m.now().Before(until) {
		return true, nil
	}
	if cutoff, ok := m.users[claims.UserID]; ok && !claims.IssuedAtTime().After(cutoff) {
		return true, nil
	}
	return false, nil
}

var (
	_ RevocationList = (*RedisRevocationList)(nil)
	_ RevocationList = (*MemoryRevocationList)(nil)
)
