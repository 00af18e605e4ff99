package warden

import (
	"errors"
	"time"

	"github.com/tobysalz/warden/token"
)

// TokenConfig defines a public type used by warden APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	// TTL is the session token lifetime.
	TTL time.Duration
	// SigningMethod is "hs256" or "ed25519".
	SigningMethod string
	// PrivateKey is the HMAC secret for hs256, or an ed25519 seed/PEM key.
	PrivateKey []byte
	// PublicKey is required for ed25519; unused for hs256.
	PublicKey []byte
	Issuer    string
	Leeway    time.Duration
}

// PasswordConfig defines a public type used by warden APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// ChallengeConfig defines a public type used by warden APIs.
//
// ChallengeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ChallengeConfig struct {
	// TTL is the pending-challenge window enforced by the store backend.
	TTL time.Duration
}

// LedgerConfig defines a public type used by warden APIs.
//
// LedgerConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LedgerConfig struct {
	// Retention bounds how long an expiring ledger backend keeps a
	// revoked entry. Zero means "token lifetime", which is the earliest
	// safe pruning point: the token is dead on its own by then.
	Retention time.Duration
}

// MetricsConfig defines a public type used by warden APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// Config defines a public type used by warden APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token     TokenConfig
	Password  PasswordConfig
	Challenge ChallengeConfig
	Ledger    LedgerConfig
	Metrics   MetricsConfig
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:           10 * time.Minute,
			SigningMethod: string(token.MethodHS256),
			Issuer:        "warden",
			Leeway:        30 * time.Second,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Challenge: ChallengeConfig{
			TTL: 10 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Token.TTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	switch token.SigningMethod(c.Token.SigningMethod) {
	case token.MethodHS256:
		if len(c.Token.PrivateKey) == 0 {
			return errors.New("hs256 requires a private key")
		}
	case token.MethodEd25519:
		if len(c.Token.PrivateKey) == 0 || len(c.Token.PublicKey) == 0 {
			return errors.New("ed25519 requires a private and public key")
		}
	default:
		return errors.New("unsupported token signing method")
	}
	if c.Challenge.TTL <= 0 {
		return errors.New("challenge TTL must be positive")
	}
	if c.Ledger.Retention < 0 {
		return errors.New("ledger retention must not be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
