package warden

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const twoFACodeKeyPrefix = "two_fa_code"

// RedisChallengeStore is the expiring-cache [ChallengeStore] variant. Each
// pending challenge lives under two_fa_code:<email> as a JSON-encoded
// (challenge_id, code) pair with the configured TTL; overwrite, expiry, and
// deletion are all native Redis behavior, so no sweep is needed.
type RedisChallengeStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisChallengeStore describes the newredischallengestore operation and its observable behavior.
//
// NewRedisChallengeStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisChallengeStore(redisClient *redis.Client, ttl time.Duration) *RedisChallengeStore {
	return &RedisChallengeStore{
		redis: redisClient,
		ttl:   ttl,
	}
}

func (s *RedisChallengeStore) key(email Email) string {
	return twoFACodeKeyPrefix + ":" + email.String()
}

// Put describes the put operation and its observable behavior.
//
// Put may return an error when input validation, dependency calls, or security checks fail.
// Put does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisChallengeStore) Put(ctx context.Context, email Email, id ChallengeID, code OneTimeCode) error {
	pair := [2]string{id.String(), code.String()}
	encoded, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := s.redis.Set(ctx, s.key(email), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisChallengeStore) Get(ctx context.Context, email Email) (ChallengeID, OneTimeCode, error) {
	data, err := s.redis.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ChallengeID{}, OneTimeCode{}, ErrChallengeNotFound
		}
		return ChallengeID{}, OneTimeCode{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return ChallengeID{}, OneTimeCode{}, fmt.Errorf("%w: corrupt challenge record", ErrStoreUnavailable)
	}

	id, err := ParseChallengeID(pair[0])
	if err != nil {
		return ChallengeID{}, OneTimeCode{}, fmt.Errorf("%w: corrupt challenge id", ErrStoreUnavailable)
	}
	code, err := ParseOneTimeCode(pair[1])
	if err != nil {
		return ChallengeID{}, OneTimeCode{}, fmt.Errorf("%w: corrupt one-time code", ErrStoreUnavailable)
	}

	return id, code, nil
}

// Consume describes the consume operation and its observable behavior.
//
// Consume may return an error when input validation, dependency calls, or security checks fail.
// Consume does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisChallengeStore) Consume(ctx context.Context, email Email) error {
	n, err := s.redis.Del(ctx, s.key(email)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if n == 0 {
		return ErrChallengeNotFound
	}
	return nil
}
