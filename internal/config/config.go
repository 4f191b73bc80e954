package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию сервера
type Config struct {
	Port            int           `envconfig:"PORT" default:"8000"`
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	RateLimit       int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	MaxAmount       float64       `envconfig:"MAX_AMOUNT" default:"1e12"`
	MaxInstallments int           `envconfig:"MAX_INSTALLMENTS" default:"600"`
	UpstreamBaseURL string        `envconfig:"UPSTREAM_BASE_URL" default:"http://127.0.0.1:5000"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	AccessCacheTTL  time.Duration `envconfig:"ACCESS_CACHE_TTL" default:"12h"`
	OTELEndpoint    string        `envconfig:"OTEL_ENDPOINT"`
	OTELServiceName string        `envconfig:"OTEL_SERVICE_NAME" default:"erp-finance-summary"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"console"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.MaxAmount <= 0 {
		return nil, fmt.Errorf("config: MAX_AMOUNT must be positive")
	}
	if cfg.MaxInstallments < 1 {
		return nil, fmt.Errorf("config: MAX_INSTALLMENTS must be at least 1")
	}
	return &cfg, nil
}

// IsProduction сообщает, запущен ли сервис в продакшене
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Addr возвращает адрес, на котором слушает HTTP сервер
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
