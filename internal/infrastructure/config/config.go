package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	devAccessSecret  = "dev_access_secret_change_me"
	devRefreshSecret = "dev_refresh_secret_change_me"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	DataFile string `env:"DATA_FILE, default=data/database.json"`

	Auth        AuthConfig
	Store       StoreConfig
	Idempotency IdempotencyConfig
	RateLimit   RateLimitConfig
}

type AuthConfig struct {
	AccessSecret        string        `env:"JWT_ACCESS_SECRET,  default=dev_access_secret_change_me"`
	RefreshSecret       string        `env:"JWT_REFRESH_SECRET, default=dev_refresh_secret_change_me"`
	AccessTokenTTL      time.Duration `env:"ACCESS_TOKEN_TTL,   default=15m"`
	RefreshTokenTTL     time.Duration `env:"REFRESH_TOKEN_TTL,  default=168h"`
	BcryptCost          int           `env:"BCRYPT_COST,        default=12"`
	BootstrapAdminEmail string        `env:"ADMIN_BOOTSTRAP_EMAIL"`
	MaxFailedAttempts   int           `env:"AUTH_MAX_FAILED_ATTEMPTS, default=6"`
	LockoutWindow       time.Duration `env:"AUTH_LOCKOUT_WINDOW,      default=15m"`
	MaxRefreshHashes    int           `env:"AUTH_MAX_REFRESH_TOKEN_HASHES, default=15"`
}

type StoreConfig struct {
	MaxFlushRetries int           `env:"STORE_MAX_FLUSH_RETRIES, default=5"`
	FlushRetryDelay time.Duration `env:"STORE_FLUSH_RETRY_DELAY, default=25ms"`
}

type IdempotencyConfig struct {
	TTL        time.Duration `env:"IDEMPOTENCY_TTL,         default=24h"`
	MaxRecords int           `env:"IDEMPOTENCY_MAX_RECORDS, default=5000"`
}

type RateLimitConfig struct {
	LoginWindow time.Duration `env:"AUTH_LOGIN_RATE_LIMIT_WINDOW, default=10m"`
	LoginMax    int           `env:"AUTH_LOGIN_RATE_LIMIT_MAX,    default=12"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// A production deployment must never run on the development signing secrets.
func (c *Config) validate() error {
	if c.IsProduction() && (c.Auth.AccessSecret == devAccessSecret || c.Auth.RefreshSecret == devRefreshSecret) {
		return errors.New("config: JWT secrets must be configured in production")
	}
	return nil
}
