package warden

import (
	"context"
	"sync"
	"time"
)

// ChallengeStore holds at most one pending second-factor challenge per
// email. The state machine per email is NoChallenge → Pending (Put) →
// NoChallenge (Consume or expiry); a fresh Put while Pending overwrites and
// invalidates the prior pair. A failed verification leaves the entry
// untouched — there is no failed state, only retry until expiry.
type ChallengeStore interface {
	// Put stores the pair for email, overwriting any pending challenge.
	// The backend applies the configured expiry window from this call.
	Put(ctx context.Context, email Email, id ChallengeID, code OneTimeCode) error
	// Get reads the pending pair without consuming it. Verification must
	// read, decide, then consume as separate steps. Absent or expired
	// entries are ErrChallengeNotFound.
	Get(ctx context.Context, email Email) (ChallengeID, OneTimeCode, error)
	// Consume removes the pending challenge. It is the single-use
	// atomicity point: of two concurrent successful verifications, only
	// the one whose Consume finds the entry wins; the loser gets
	// ErrChallengeNotFound.
	Consume(ctx context.Context, email Email) error
}

type pendingChallenge struct {
	id        ChallengeID
	code      OneTimeCode
	createdAt time.Time
}

// MemoryChallengeStore is the in-memory [ChallengeStore] variant. Expiry is
// enforced by stamping createdAt and treating stale entries as absent on
// read, with a sweep of stale entries on every write; there is no timer.
type MemoryChallengeStore struct {
	mu      sync.RWMutex
	pending map[Email]pendingChallenge
	ttl     time.Duration
}

// NewMemoryChallengeStore describes the newmemorychallengestore operation and its observable behavior.
//
// NewMemoryChallengeStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryChallengeStore(ttl time.Duration) *MemoryChallengeStore {
	return &MemoryChallengeStore{
		pending: make(map[Email]pendingChallenge),
		ttl:     ttl,
	}
}

// Put describes the put operation and its observable behavior.
//
// Put may return an error when input validation, dependency calls, or security checks fail.
// Put does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryChallengeStore) Put(_ context.Context, email Email, id ChallengeID, code OneTimeCode) error {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.pending {
		if now.Sub(entry.createdAt) > s.ttl {
			delete(s.pending, key)
		}
	}

	s.pending[email] = pendingChallenge{
		id:        id,
		code:      code,
		createdAt: now,
	}
	return nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryChallengeStore) Get(_ context.Context, email Email) (ChallengeID, OneTimeCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.pending[email]
	if !ok || time.Since(entry.createdAt) > s.ttl {
		return ChallengeID{}, OneTimeCode{}, ErrChallengeNotFound
	}
	return entry.id, entry.code, nil
}

// Consume describes the consume operation and its observable behavior.
//
// Consume may return an error when input validation, dependency calls, or security checks fail.
// Consume does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryChallengeStore) Consume(_ context.Context, email Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pending[email]
	if !ok {
		return ErrChallengeNotFound
	}

	delete(s.pending, email)
	if time.Since(entry.createdAt) > s.ttl {
		// The entry had already lapsed; removing it is not a consume.
		return ErrChallengeNotFound
	}
	return nil
}
