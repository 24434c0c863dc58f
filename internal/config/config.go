package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds every environment-driven setting for defectctl.
type Config struct {
	BaseURL    string        `env:"DEFECT_API_BASE_URL, default=http://localhost:8000"`
	APIVersion string        `env:"DEFECT_API_VERSION,  default=/v1"`
	Timeout    time.Duration `env:"HTTP_TIMEOUT,        default=30s"`
	LogLevel   string        `env:"LOG_LEVEL,           default=info"`
	LogPretty  bool          `env:"LOG_PRETTY,          default=true"`

	// TokenFile overrides the default on-disk token location. When Redis is
	// configured it takes precedence over the file store.
	TokenFile string `env:"TOKEN_FILE"`

	Redis RedisConfig
}

// RedisConfig enables the Redis-backed token store when Addr is non-empty.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
