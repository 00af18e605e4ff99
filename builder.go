package warden

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/tobysalz/warden/password"
	"github.com/tobysalz/warden/token"
)

// Builder assembles an [Engine] from a config and optional backend
// overrides. Every store left unset falls back to its in-memory variant, so
// a bare New().WithConfig(cfg).Build() yields a fully working single-process
// engine.
type Builder struct {
	config     Config
	configSet  bool
	directory  UserDirectory
	ledger     RevocationLedger
	challenges ChallengeStore
	redis      *redis.Client
	logger     *slog.Logger
	built      bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	b.configSet = true
	return b
}

// WithUserDirectory describes the withuserdirectory operation and its observable behavior.
//
// WithUserDirectory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserDirectory(d UserDirectory) *Builder {
	b.directory = d
	return b
}

// WithRevocationLedger describes the withrevocationledger operation and its observable behavior.
//
// WithRevocationLedger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRevocationLedger(l RevocationLedger) *Builder {
	b.ledger = l
	return b
}

// WithChallengeStore describes the withchallengestore operation and its observable behavior.
//
// WithChallengeStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithChallengeStore(s ChallengeStore) *Builder {
	b.challenges = s
	return b
}

// WithRedis installs Redis-backed variants of the revocation ledger and the
// challenge store on the given client. Explicit WithRevocationLedger or
// WithChallengeStore overrides still win.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
//
// WithLogger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, fmt.Errorf("builder already consumed")
	}
	if !b.configSet {
		return nil, fmt.Errorf("config is required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid password config: %w", err)
	}

	codec, err := token.NewCodec(token.Config{
		TTL:           b.config.Token.TTL,
		SigningMethod: token.SigningMethod(b.config.Token.SigningMethod),
		PrivateKey:    b.config.Token.PrivateKey,
		PublicKey:     b.config.Token.PublicKey,
		Issuer:        b.config.Token.Issuer,
		Leeway:        b.config.Token.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token config: %w", err)
	}

	retention := b.config.Ledger.Retention
	if retention == 0 {
		retention = b.config.Token.TTL
	}

	ledger := b.ledger
	if ledger == nil {
		if b.redis != nil {
			ledger = NewRedisRevocationLedger(b.redis, retention)
		} else {
			ledger = NewMemoryRevocationLedger()
		}
	}

	challenges := b.challenges
	if challenges == nil {
		if b.redis != nil {
			challenges = NewRedisChallengeStore(b.redis, b.config.Challenge.TTL)
		} else {
			challenges = NewMemoryChallengeStore(b.config.Challenge.TTL)
		}
	}

	directory := b.directory
	if directory == nil {
		directory = NewMemoryUserDirectory(hasher)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	b.built = true
	return &Engine{
		config:     b.config,
		directory:  directory,
		ledger:     ledger,
		challenges: challenges,
		codec:      codec,
		hasher:     hasher,
		metrics:    NewMetrics(b.config.Metrics),
		logger:     logger,
	}, nil
}
