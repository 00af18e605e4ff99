package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":3000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Token    Token  `envPrefix:"TOKEN_"`
	Database Database
	Redis    Redis `envPrefix:"REDIS_"`
}

// Token contains session token parameters.
type Token struct {
	Secret string        `env:"SECRET" envDefault:"devsecret"`
	TTL    time.Duration `env:"TTL" envDefault:"10m"`
}

// Database contains database connection parameters. An empty DSN selects the
// in-memory user directory.
type Database struct {
	DSN string `env:"DATABASE_DSN"`
}

// Redis contains Redis connection parameters. An empty address starts an
// in-process miniredis instead.
type Redis struct {
	Addr string `env:"ADDR"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
