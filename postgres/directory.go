package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	warden "github.com/tobysalz/warden"
	"github.com/tobysalz/warden/password"
)

var _ warden.UserDirectory = (*Directory)(nil)

const uniqueViolationCode = "23505"

// Directory is the relational UserDirectory variant. Email is the primary
// key, so duplicate detection rides on the unique constraint rather than a
// read-then-write race.
type Directory struct {
	db     *Connection
	hasher *password.Argon2
}

// NewDirectory describes the newdirectory operation and its observable behavior.
//
// NewDirectory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewDirectory(db *Connection, hasher *password.Argon2) *Directory {
	return &Directory{
		db:     db,
		hasher: hasher,
	}
}

// Add describes the add operation and its observable behavior.
//
// Add may return an error when input validation, dependency calls, or security checks fail.
// Add does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *Directory) Add(ctx context.Context, user warden.User) error {
	query := `INSERT INTO users (email, password_hash, requires_2fa)
			  VALUES ($1, $2, $3)`

	_, err := d.db.Exec(ctx, query, user.Email.String(), user.PasswordHash, user.RequiresTwoFA)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return warden.ErrUserAlreadyExists
		}
		return fmt.Errorf("%w: failed to create user: %v", warden.ErrStoreUnavailable, err)
	}

	return nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *Directory) Get(ctx context.Context, email warden.Email) (warden.User, error) {
	query := `SELECT password_hash, requires_2fa FROM users WHERE email = $1`

	user := warden.User{Email: email}
	err := d.db.QueryRow(ctx, query, email.String()).Scan(
		&user.PasswordHash, &user.RequiresTwoFA,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return warden.User{}, warden.ErrUserNotFound
		}
		return warden.User{}, fmt.Errorf("%w: failed to get user by email: %v", warden.ErrStoreUnavailable, err)
	}

	return user, nil
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *Directory) Validate(ctx context.Context, email warden.Email, pw warden.Password) error {
	user, err := d.Get(ctx, email)
	if err != nil {
		return err
	}

	ok, err := d.hasher.Verify(pw.String(), user.PasswordHash)
	if err != nil || !ok {
		return warden.ErrInvalidCredentials
	}
	return nil
}
