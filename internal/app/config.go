// Package app holds runtime configuration shared by the server and worker
// binaries.
package app

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration, loaded from environment variables.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	DBPath string `envconfig:"DB_PATH" default:"./data/bills.db"`

	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	BalanceCacheTTL time.Duration `envconfig:"BALANCE_CACHE_TTL" default:"5m"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// RateLimit is the per-member API request budget per minute.
	// Zero disables rate limiting.
	RateLimit int `envconfig:"RATE_LIMIT" default:"120"`

	OCRServiceURL  string        `envconfig:"OCR_SERVICE_URL" default:"http://127.0.0.1:9090"`
	OCRTimeout     time.Duration `envconfig:"OCR_TIMEOUT" default:"20s"`
	PushServiceURL string        `envconfig:"PUSH_SERVICE_URL" default:"http://127.0.0.1:9091"`
	PushAPIKey     string        `envconfig:"PUSH_API_KEY" default:""`
	PushTimeout    time.Duration `envconfig:"PUSH_TIMEOUT" default:"10s"`

	WorkerConcurrency int `envconfig:"WORKER_CONCURRENCY" default:"5"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// LoggerFormat resolves the log format, forcing JSON in production.
func (c *Config) LoggerFormat() string {
	if c.IsProduction() {
		return "json"
	}
	return c.LogFormat
}
