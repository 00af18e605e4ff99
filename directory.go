package warden

import (
	"context"
	"sync"

	"github.com/tobysalz/warden/password"
)

// UserDirectory stores user records keyed by email. Implementations must be
// safe for concurrent use and behaviorally identical regardless of backend:
// Validate always fetches the record and recomputes the password digest with
// the stored salt and parameters, never delegating the comparison to the
// backend, so hashing parameters stay backend-independent.
type UserDirectory interface {
	// Add persists the user, failing with ErrUserAlreadyExists when the
	// email is present. The record carries a hash; the directory never
	// sees plaintext at rest.
	Add(ctx context.Context, user User) error
	// Get returns the record for email or ErrUserNotFound.
	Get(ctx context.Context, email Email) (User, error)
	// Validate checks the password against the stored digest in constant
	// time. A mismatch is ErrInvalidCredentials; an unknown email is
	// ErrUserNotFound. Callers collapse the two upstream.
	Validate(ctx context.Context, email Email, pw Password) error
}

// MemoryUserDirectory is the in-memory [UserDirectory] variant: a map behind
// a reader/writer lock. Reads proceed in parallel; a write excludes all
// concurrent access. Non-suspending — context is accepted for contract
// symmetry with the relational variant.
type MemoryUserDirectory struct {
	mu     sync.RWMutex
	users  map[Email]User
	hasher *password.Argon2
}

// NewMemoryUserDirectory describes the newmemoryuserdirectory operation and its observable behavior.
//
// NewMemoryUserDirectory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryUserDirectory(hasher *password.Argon2) *MemoryUserDirectory {
	return &MemoryUserDirectory{
		users:  make(map[Email]User),
		hasher: hasher,
	}
}

// Add describes the add operation and its observable behavior.
//
// Add may return an error when input validation, dependency calls, or security checks fail.
// Add does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *MemoryUserDirectory) Add(_ context.Context, user User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[user.Email]; ok {
		return ErrUserAlreadyExists
	}
	d.users[user.Email] = user
	return nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *MemoryUserDirectory) Get(_ context.Context, email Email) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.users[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *MemoryUserDirectory) Validate(ctx context.Context, email Email, pw Password) error {
	user, err := d.Get(ctx, email)
	if err != nil {
		return err
	}

	ok, err := d.hasher.Verify(pw.String(), user.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}
	return nil
}
