// Package config holds the terminal client's configuration.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	APIURL      string        `env:"QA_API_URL,      default=http://localhost:8080"`
	TokenFile   string        `env:"QA_TOKEN_FILE,   default=$HOME/.qa_token"`
	HTTPTimeout time.Duration `env:"QA_HTTP_TIMEOUT, default=10s"`
	LogLevel    string        `env:"LOG_LEVEL,       default=warn"`

	Breaker BreakerConfig
}

// BreakerConfig tunes the circuit breaker in front of the domain service.
type BreakerConfig struct {
	Failures uint32        `env:"QA_BREAKER_FAILURES, default=5"`
	Timeout  time.Duration `env:"QA_BREAKER_TIMEOUT,  default=30s"`
}

// Load reads configuration from the environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l; tests pass envconfig.MapLookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
