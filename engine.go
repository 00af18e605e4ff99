package warden

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tobysalz/warden/password"
	"github.com/tobysalz/warden/token"
)

// Engine drives the full session lifecycle: signup, login, second-factor
// verification, per-request session checks, and logout. It owns the policy
// and the error taxonomy; all state lives behind the three store contracts,
// so backends can be swapped without touching a flow.
type Engine struct {
	config     Config
	directory  UserDirectory
	ledger     RevocationLedger
	challenges ChallengeStore
	codec      *token.Codec
	hasher     *password.Argon2
	metrics    *Metrics
	logger     *slog.Logger
}

// LoginResult defines a public type used by warden APIs.
//
// LoginResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginResult struct {
	// Token is the signed session credential. Empty when TwoFARequired.
	Token string
	// TwoFARequired reports that a second factor stands between this login
	// and a session. The one-time code is delivered out-of-band and is
	// never part of the result.
	TwoFARequired bool
	// ChallengeID identifies the pending challenge to echo back into
	// VerifyTwoFA. Set only when TwoFARequired.
	ChallengeID string
}

// SignUp registers a new account. Duplicate emails fail with
// ErrUserAlreadyExists; malformed credentials fail with ErrInvalidInput
// before any store is touched.
//
// SignUp may return an error when input validation, dependency calls, or security checks fail.
// SignUp does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SignUp(ctx context.Context, rawEmail, rawPassword string, requiresTwoFA bool) error {
	if e == nil || e.hasher == nil {
		return ErrEngineNotReady
	}

	email, err := ParseEmail(rawEmail)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	pw, err := ParsePassword(rawPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := e.hasher.Hash(pw.String())
	if err != nil {
		return e.unexpected("signup", err)
	}

	err = e.directory.Add(ctx, User{
		Email:         email,
		PasswordHash:  hash,
		RequiresTwoFA: requiresTwoFA,
	})
	switch {
	case err == nil:
		e.metrics.Inc(MetricSignupSuccess)
		return nil
	case errors.Is(err, ErrUserAlreadyExists):
		e.metrics.Inc(MetricSignupDuplicate)
		return ErrUserAlreadyExists
	default:
		return e.unexpected("signup", err)
	}
}

// Login authenticates an email/password pair. For accounts without a second
// factor it returns a session token; for 2FA accounts it stages a fresh
// challenge (overwriting any pending one) and returns its identifier
// instead. Unknown email and wrong password are deliberately the same
// ErrIncorrectCredentials — account existence is never leaked.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, rawEmail, rawPassword string) (*LoginResult, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	email, err := ParseEmail(rawEmail)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	pw, err := ParsePassword(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	err = e.directory.Validate(ctx, email, pw)
	switch {
	case err == nil:
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidCredentials):
		e.metrics.Inc(MetricLoginFailure)
		return nil, ErrIncorrectCredentials
	default:
		return nil, e.unexpected("login", err)
	}

	user, err := e.directory.Get(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, ErrUserNotFound):
		// Deleted between Validate and Get; same answer as a bad password.
		e.metrics.Inc(MetricLoginFailure)
		return nil, ErrIncorrectCredentials
	default:
		return nil, e.unexpected("login", err)
	}

	if !user.RequiresTwoFA {
		signed, err := e.codec.Issue(email.String())
		if err != nil {
			return nil, e.unexpected("login", err)
		}
		e.metrics.Inc(MetricLoginSuccess)
		return &LoginResult{Token: signed}, nil
	}

	id := NewChallengeID()
	code, err := NewOneTimeCode()
	if err != nil {
		return nil, e.unexpected("login", err)
	}
	if err := e.challenges.Put(ctx, email, id, code); err != nil {
		return nil, e.unexpected("login", err)
	}

	e.metrics.Inc(MetricTwoFARequired)
	return &LoginResult{
		TwoFARequired: true,
		ChallengeID:   id.String(),
	}, nil
}

// VerifyTwoFA completes a 2FA login by matching the submitted challenge id
// and one-time code against the pending pair for email, then consuming it.
// A mismatch leaves the challenge pending for retry; a match consumes it so
// replaying the same pair fails. Success returns the session token.
//
// VerifyTwoFA may return an error when input validation, dependency calls, or security checks fail.
// VerifyTwoFA does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifyTwoFA(ctx context.Context, rawEmail, rawChallengeID, rawCode string) (string, error) {
	if e == nil || e.codec == nil {
		return "", ErrEngineNotReady
	}

	email, err := ParseEmail(rawEmail)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	id, err := ParseChallengeID(rawChallengeID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	code, err := ParseOneTimeCode(rawCode)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, err := e.directory.Get(ctx, email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metrics.Inc(MetricTwoFAFailure)
			return "", ErrIncorrectCredentials
		}
		return "", e.unexpected("verify-2fa", err)
	}

	pendingID, pendingCode, err := e.challenges.Get(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, ErrChallengeNotFound):
		e.metrics.Inc(MetricTwoFAFailure)
		return "", ErrIncorrectCredentials
	default:
		return "", e.unexpected("verify-2fa", err)
	}

	if pendingID != id || pendingCode != code {
		e.metrics.Inc(MetricTwoFAFailure)
		return "", ErrIncorrectCredentials
	}

	err = e.challenges.Consume(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, ErrChallengeNotFound):
		// A concurrent verification got there first; this one loses.
		e.metrics.Inc(MetricTwoFAFailure)
		return "", ErrIncorrectCredentials
	default:
		return "", e.unexpected("verify-2fa", err)
	}

	signed, err := e.codec.Issue(email.String())
	if err != nil {
		return "", e.unexpected("verify-2fa", err)
	}

	e.metrics.Inc(MetricTwoFASuccess)
	e.metrics.Inc(MetricLoginSuccess)
	return signed, nil
}

// VerifySession checks a session token end to end: signature, expiry, and
// absence from the revocation ledger. Expired, forged, and revoked tokens
// all collapse into ErrTokenInvalid; an absent token is ErrMissingToken.
//
// VerifySession may return an error when input validation, dependency calls, or security checks fail.
// VerifySession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) VerifySession(ctx context.Context, tokenStr string) (Email, error) {
	if e == nil || e.codec == nil {
		return Email{}, ErrEngineNotReady
	}
	if tokenStr == "" {
		return Email{}, ErrMissingToken
	}

	subject, err := e.codec.Verify(tokenStr)
	if err != nil {
		e.metrics.Inc(MetricSessionRejected)
		return Email{}, ErrTokenInvalid
	}

	email, err := ParseEmail(subject)
	if err != nil {
		e.metrics.Inc(MetricSessionRejected)
		return Email{}, ErrTokenInvalid
	}

	revoked, err := e.ledger.IsRevoked(ctx, tokenStr)
	if err != nil {
		return Email{}, e.unexpected("verify-session", err)
	}
	if revoked {
		e.metrics.Inc(MetricSessionRejected)
		return Email{}, ErrTokenInvalid
	}

	e.metrics.Inc(MetricSessionVerified)
	return email, nil
}

// Logout revokes a well-formed session token. Validity here means signature
// and expiry only: revoking an already-revoked token is a distinguishable
// ErrAlreadyLoggedOut, not a silent success.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, tokenStr string) error {
	if e == nil || e.codec == nil {
		return ErrEngineNotReady
	}
	if tokenStr == "" {
		return ErrMissingToken
	}

	if _, err := e.codec.Verify(tokenStr); err != nil {
		return ErrTokenInvalid
	}

	err := e.ledger.Revoke(ctx, tokenStr)
	switch {
	case err == nil:
		e.metrics.Inc(MetricLogout)
		return nil
	case errors.Is(err, ErrTokenAlreadyRevoked):
		e.metrics.Inc(MetricLogoutConflict)
		return ErrAlreadyLoggedOut
	default:
		return e.unexpected("logout", err)
	}
}

// Metrics returns a point-in-time snapshot of the engine's counters.
func (e *Engine) Metrics() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{}
	}
	return e.metrics.Snapshot()
}

// TokenTTL reports the configured session token lifetime, for boundary
// layers that mirror it into cookie attributes.
func (e *Engine) TokenTTL() time.Duration {
	return e.codec.TTL()
}

// unexpected tags an internal failure, logging the detail and returning only
// the opaque sentinel upstream so backend error text never reaches clients.
func (e *Engine) unexpected(op string, err error) error {
	if e.logger != nil {
		e.logger.Error("internal failure",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}
	return fmt.Errorf("%w: %s", ErrUnexpected, op)
}
