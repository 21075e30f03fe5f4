// Package config loads process configuration from ADDRWATCH_* environment
// variables and validates it before anything is wired.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/gabapcia/addrwatch/internal/pkg/validator"
)

// envPrefix is prepended to every variable name, e.g. ADDRWATCH_LOG_LEVEL.
const envPrefix = "addrwatch"

// Config is the full process configuration. CLI flags may override the
// per-invocation parameters (poll interval, notification channels).
type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"addrwatch"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"required,oneof=debug info warn error"`

	TelemetryEnabled bool `envconfig:"TELEMETRY_ENABLED" default:"false"`

	EsploraBaseURL string `envconfig:"ESPLORA_BASE_URL" default:"https://mempool.space/api" validate:"required,url"`
	PricesBaseURL  string `envconfig:"PRICES_BASE_URL" default:"https://mempool.space/api" validate:"required,url"`
	FiatCurrency   string `envconfig:"FIAT_CURRENCY" default:"USD" validate:"required,len=3,uppercase"`

	MinRequestInterval time.Duration `envconfig:"MIN_REQUEST_INTERVAL" default:"10s" validate:"min=0"`
	SafetyDelay        time.Duration `envconfig:"SAFETY_DELAY" default:"500ms" validate:"min=0"`
	PollInterval       time.Duration `envconfig:"POLL_INTERVAL" default:"1m" validate:"required"`
	HTTPTimeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"required"`

	RESTListenAddr string `envconfig:"REST_LISTEN_ADDR" default:":8080" validate:"required"`

	// Redis is optional; when unset the exchange-rate cache is disabled.
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisUsername string        `envconfig:"REDIS_USERNAME"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	RateCacheTTL  time.Duration `envconfig:"RATE_CACHE_TTL" default:"1m"`

	// SMTP settings back the email notification channel.
	SMTPHost     string   `envconfig:"SMTP_HOST"`
	SMTPPort     int      `envconfig:"SMTP_PORT" default:"465"`
	SMTPUsername string   `envconfig:"SMTP_USERNAME"`
	SMTPPassword string   `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string   `envconfig:"SMTP_FROM"`
	SMTPTo       []string `envconfig:"SMTP_TO"`
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, err
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
