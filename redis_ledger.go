package warden

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenKeyPrefix = "banned_token"

// RedisRevocationLedger is the expiring-cache [RevocationLedger] variant.
// Each entry carries a TTL equal to the session token lifetime: once the
// token would have expired on its own, the ledger entry is pruned, bounding
// memory without ever un-revoking a live token.
type RedisRevocationLedger struct {
	redis     *redis.Client
	retention time.Duration
}

// NewRedisRevocationLedger describes the newredisrevocationledger operation and its observable behavior.
//
// NewRedisRevocationLedger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisRevocationLedger(redisClient *redis.Client, retention time.Duration) *RedisRevocationLedger {
	return &RedisRevocationLedger{
		redis:     redisClient,
		retention: retention,
	}
}

func (l *RedisRevocationLedger) key(tokenID string) string {
	return revokedTokenKeyPrefix + ":" + tokenID
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (l *RedisRevocationLedger) Revoke(ctx context.Context, tokenID string) error {
	// SETNX makes the first-revoker-wins decision atomic on the backend.
	created, err := l.redis.SetNX(ctx, l.key(tokenID), 1, l.retention).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !created {
		return ErrTokenAlreadyRevoked
	}
	return nil
}

// IsRevoked describes the isrevoked operation and its observable behavior.
//
// IsRevoked may return an error when input validation, dependency calls, or security checks fail.
// IsRevoked does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (l *RedisRevocationLedger) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := l.redis.Exists(ctx, l.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}
