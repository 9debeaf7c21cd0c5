package config

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

// Config is the domain service configuration.
type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	PurgeWorkers int `env:"PURGE_WORKERS, default=4"`

	Votes VoteConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type VoteConfig struct {
	RateLimit  int           `env:"VOTE_RATE_LIMIT,  default=30"`
	RateWindow time.Duration `env:"VOTE_RATE_WINDOW, default=1m"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,       default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,        default=qa"`
	MaxPoolSize uint64 `env:"MONGO_POOL_SIZE, default=50"`
}

type RedisConfig struct {
	// Comma separated; more than one address selects cluster mode.
	Addrs    []string `env:"REDIS_ADDRS,     default=localhost:6379"`
	Password string   `env:"REDIS_PASSWORD"`
	DB       int      `env:"REDIS_DB,        default=0"`
	PoolSize int      `env:"REDIS_POOL_SIZE, default=20"`
}

// IsProduction reports whether pretty logging and debug surfaces must be off.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context, log zerolog.Logger) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper(), log)
}

// LoadFrom is Load with an explicit source of variables.
func LoadFrom(ctx context.Context, l envconfig.Lookuper, log zerolog.Logger) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return nil, err
	}
	return &cfg, nil
}
