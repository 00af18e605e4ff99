package warden

import (
	"context"
	"sync"
)

// RevocationLedger is the set of session tokens invalidated before their
// natural expiry. It is consulted on every protected request: the token
// itself is stateless, so the ledger is the only server-side veto.
type RevocationLedger interface {
	// Revoke records the token as invalidated. Revoking a token twice is
	// a distinguishable ErrTokenAlreadyRevoked so the boundary can report
	// "already logged out".
	Revoke(ctx context.Context, tokenID string) error
	// IsRevoked reports whether the token has been revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevocationLedger is the in-memory [RevocationLedger] variant.
// Entries are kept until process exit; the Redis variant prunes entries at
// the token's natural expiry to bound memory.
type MemoryRevocationLedger struct {
	mu      sync.RWMutex
	revoked map[string]struct{}
}

// NewMemoryRevocationLedger describes the newmemoryrevocationledger operation and its observable behavior.
//
// NewMemoryRevocationLedger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryRevocationLedger() *MemoryRevocationLedger {
	return &MemoryRevocationLedger{
		revoked: make(map[string]struct{}),
	}
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (l *MemoryRevocationLedger) Revoke(_ context.Context, tokenID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.revoked[tokenID]; ok {
		return ErrTokenAlreadyRevoked
	}
	l.revoked[tokenID] = struct{}{}
	return nil
}

// IsRevoked describes the isrevoked operation and its observable behavior.
//
// IsRevoked may return an error when input validation, dependency calls, or security checks fail.
// IsRevoked does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (l *MemoryRevocationLedger) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.revoked[tokenID]
	return ok, nil
}
