package warden

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.PrivateKey = []byte("unit-test-secret-0123456789abcdef")
	cfg.Token.Leeway = 0
	// Minimum-cost hashing keeps the engine tests fast.
	cfg.Password = PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
	return cfg
}

func newTestEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine
}

// pendingFor digs the staged pair out of the in-memory challenge store, the
// way a delivery channel would receive it out-of-band.
func pendingFor(t *testing.T, engine *Engine, email Email) (ChallengeID, OneTimeCode) {
	t.Helper()

	id, code, err := engine.challenges.Get(context.Background(), email)
	if err != nil {
		t.Fatalf("no pending challenge for %s: %v", email.String(), err)
	}
	return id, code
}

func TestSignUpLoginVerifyLifecycle(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.SignUp(ctx, "alice@example.com", "correct-horse", false); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	result, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.TwoFARequired || result.Token == "" {
		t.Fatalf("expected a direct session, got %+v", result)
	}

	email, err := engine.VerifySession(ctx, result.Token)
	if err != nil {
		t.Fatalf("VerifySession failed: %v", err)
	}
	if email.String() != "alice@example.com" {
		t.Fatalf("expected token subject to be the login email, got %q", email.String())
	}
}

func TestSignUpValidation(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.SignUp(ctx, "not-an-email", "correct-horse", false); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad email, got %v", err)
	}
	if err := engine.SignUp(ctx, "alice@example.com", "short", false); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.SignUp(ctx, "alice@example.com", "correct-horse", false); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if err := engine.SignUp(ctx, "Alice@Example.com", "other-password", true); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists for normalized duplicate, got %v", err)
	}
}

func TestLoginDoesNotLeakAccountExistence(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.SignUp(ctx, "alice@example.com", "correct-horse", false); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	_, wrongPassword := engine.Login(ctx, "alice@example.com", "wrong-password")
	_, unknownUser := engine.Login(ctx, "ghost@example.com", "wrong-password")

	if !errors.Is(wrongPassword, ErrIncorrectCredentials) {
		t.Fatalf("expected ErrIncorrectCredentials for wrong password, got %v", wrongPassword)
	}
	if !errors.Is(unknownUser, ErrIncorrectCredentials) {
		t.Fatalf("expected ErrIncorrectCredentials for unknown user, got %v", unknownUser)
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatal("wrong-password and unknown-user failures must be indistinguishable")
	}
}

func TestLoginWithTwoFAStagesChallenge(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.SignUp(ctx, "alice@example.com", "correct-horse", true); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	result, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !result.TwoFARequired {
		t.Fatal("expected 2FA to gate the login")
	}
	if result.Token != "" {
		t.Fatal("a challenge must never come with a session token")
	}
	if _, err := ParseChallengeID(result.ChallengeID); err != nil {
		t.Fatalf("expected a well-formed challenge id, got %q", result.ChallengeID)
	}
}

func TestVerifyTwoFAHappyPathAndReplay(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.SignUp(ctx, "alice@example.com", "correct-horse", true); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	result, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	email := mustEmail(t, "alice@example.com")
	id, code := pendingFor(t, engine, email)
	if id.String() != result.ChallengeID {
		t.Fatal("staged challenge id must match the login result")
	}

	token, err := engine.VerifyTwoFA(ctx, "alice@example.com", id.String(), code.String())
	if err != nil {
		t.Fatalf("VerifyTwoFA failed: %v", err)
	}
	if _, err := engine.VerifySession(ctx, token); err != nil {
		t.Fatalf("VerifySession failed for 2FA-issued token: %v", err)
	}

	// The pair was consumed: replaying it must fail.
	if _, err := engine.VerifyTwoFA(ctx, "alice@example.com", id.String(), code.String()); !errors.Is(err, ErrIncorrectCredentials) {
		t.Fatalf("expected replay to fail with ErrIncorrectCredentials, got %v", err)
	}
}

func TestVerifyTwoFAWrongCodeKeepsChallenge(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.SignUp(ctx, "alice@example.com", "correct-horse", true); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if _, err := engine.Login(ctx, "alice@example.com", "correct-horse"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	email := mustEmail(t, "alice@example.com")
	id, code := pendingFor(t, engine, email)

	wrong := "000000"
	if wrong == code.String() {
		wrong = "000001"
	}
	if _, err := engine.VerifyTwoFA(ctx, "alice@example.com", id.String(), wrong); !errors.Is(err, ErrIncorrectCredentials) {
		t.Fatalf("expected ErrIncorrectCredentials for wrong code, got %v", err)
	}

	// A failed attempt must not consume the challenge.
	if _, err := engine.VerifyTwoFA(ctx, "alice@example.com", id.String(), code.String()); err != nil {
		t.Fatalf("expected retry with the right code to succeed, got %v", err)
	}
}

func TestVerifyTwoFAFreshLoginInvalidatesOldChallenge(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.SignUp(ctx, "alice@example.com", "correct-horse", true); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if _, err := engine.Login(ctx, "alice@example.com", "correct-horse"); err != nil {
		t.Fatalf("first Login failed: %v", err)
	}

	email := mustEmail(t, "alice@example.com")
	oldID, oldCode := pendingFor(t, engine, email)

	if _, err := engine.Login(ctx, "alice@example.com", "correct-horse"); err != nil {
		t.Fatalf("second Login failed: %v", err)
	}

	if _, err := engine.VerifyTwoFA(ctx, "alice@example.com", oldID.String(), oldCode.String()); !errors.Is(err, ErrIncorrectCredentials) {
		t.Fatalf("expected the overwritten pair to be rejected, got %v", err)
	}

	newID, newCode := pendingFor(t, engine, email)
	if _, err := engine.VerifyTwoFA(ctx, "alice@example.com", newID.String(), newCode.String()); err != nil {
		t.Fatalf("expected the fresh pair to verify, got %v", err)
	}
}

func TestVerifyTwoFAMalformedInputs(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := engine.VerifyTwoFA(ctx, "bad", NewChallengeID().String(), "123456"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad email, got %v", err)
	}
	if _, err := engine.VerifyTwoFA(ctx, "alice@example.com", "not-a-uuid", "123456"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad challenge id, got %v", err)
	}
	if _, err := engine.VerifyTwoFA(ctx, "alice@example.com", NewChallengeID().String(), "12345"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad code, got %v", err)
	}
}

func TestVerifySessionRejectsBadTokens(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := engine.VerifySession(ctx, ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken for empty token, got %v", err)
	}
	if _, err := engine.VerifySession(ctx, "not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for garbage, got %v", err)
	}

	// A token signed with a different key must be rejected.
	other := newTestEngine(t, func(cfg *Config) {
		cfg.Token.PrivateKey = []byte("a-completely-different-secret-key")
	})
	if err := other.SignUp(ctx, "alice@example.com", "correct-horse", false); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	result, err := other.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := engine.VerifySession(ctx, result.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected foreign-key token to be rejected, got %v", err)
	}
}

func TestVerifySessionRejectsExpiredToken(t *testing.T) {
	engine := newTestEngine(t, func(cfg *Config) {
		cfg.Token.TTL = 50 * time.Millisecond
	})
	ctx := context.Background()

	if err := engine.SignUp(ctx, "alice@example.com", "correct-horse", false); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	result, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if _, err := engine.VerifySession(ctx, result.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected expired token to be ErrTokenInvalid, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.SignUp(ctx, "alice@example.com", "correct-horse", false); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	result, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := engine.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := engine.VerifySession(ctx, result.Token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected revoked token to be ErrTokenInvalid, got %v", err)
	}
	if err := engine.Logout(ctx, result.Token); !errors.Is(err, ErrAlreadyLoggedOut) {
		t.Fatalf("expected ErrAlreadyLoggedOut on double logout, got %v", err)
	}
}

func TestLogoutRejectsBadTokens(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.Logout(ctx, ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if err := engine.Logout(ctx, "not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestLogoutDoesNotAffectOtherSessions(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	if err := engine.SignUp(ctx, "alice@example.com", "correct-horse", false); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	first, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("first Login failed: %v", err)
	}
	time.Sleep(1100 * time.Millisecond) // distinct iat so the tokens differ
	second, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}
	if first.Token == second.Token {
		t.Fatal("expected distinct session tokens")
	}

	if err := engine.Logout(ctx, first.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := engine.VerifySession(ctx, second.Token); err != nil {
		t.Fatalf("revoking one session must not touch another: %v", err)
	}
}

func TestEngineWithRedisBackends(t *testing.T) {
	_, rdb := newTestRedis(t)

	cfg := testConfig()
	engine, err := New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ctx := context.Background()

	if err := engine.SignUp(ctx, "alice@example.com", "correct-horse", true); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	result, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !result.TwoFARequired {
		t.Fatal("expected a 2FA challenge")
	}

	email := mustEmail(t, "alice@example.com")
	id, code := pendingFor(t, engine, email)

	token, err := engine.VerifyTwoFA(ctx, "alice@example.com", id.String(), code.String())
	if err != nil {
		t.Fatalf("VerifyTwoFA failed: %v", err)
	}
	if _, err := engine.VerifySession(ctx, token); err != nil {
		t.Fatalf("VerifySession failed: %v", err)
	}
	if err := engine.Logout(ctx, token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := engine.VerifySession(ctx, token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestEngineMetricsCount(t *testing.T) {
	engine := newTestEngine(t, nil)
	ctx := context.Background()

	_ = engine.SignUp(ctx, "alice@example.com", "correct-horse", false)
	_ = engine.SignUp(ctx, "alice@example.com", "correct-horse", false)
	_, _ = engine.Login(ctx, "alice@example.com", "wrong-password")
	result, err := engine.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	_ = engine.Logout(ctx, result.Token)

	snap := engine.Metrics()
	if snap.Counters[MetricSignupSuccess] != 1 {
		t.Fatalf("expected 1 signup success, got %d", snap.Counters[MetricSignupSuccess])
	}
	if snap.Counters[MetricSignupDuplicate] != 1 {
		t.Fatalf("expected 1 signup duplicate, got %d", snap.Counters[MetricSignupDuplicate])
	}
	if snap.Counters[MetricLoginFailure] != 1 {
		t.Fatalf("expected 1 login failure, got %d", snap.Counters[MetricLoginFailure])
	}
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("expected 1 login success, got %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLogout] != 1 {
		t.Fatalf("expected 1 logout, got %d", snap.Counters[MetricLogout])
	}
}
