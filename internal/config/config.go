package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	API           APIConfig           `envconfig:"API"`
	Store         StoreConfig         `envconfig:"STORE"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	Console       ConsoleConfig       `envconfig:"CONSOLE"`
	Observability ObservabilityConfig `envconfig:"OBSERVABILITY"`
	CORS          CORSConfig          `envconfig:"CORS"`
	Log           LogConfig           `envconfig:"LOG"`
}

// APIConfig describes the ThreatLens backend this client talks to.
type APIConfig struct {
	BaseURL string        `envconfig:"BASE_URL" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

// StoreConfig selects where the single session credential is persisted.
type StoreConfig struct {
	Backend string `envconfig:"BACKEND" default:"file"` // memory, file or redis
	Path    string `envconfig:"PATH" default:""`        // file backend; empty means the user config dir
}

type RedisConfig struct {
	Address     string        `envconfig:"ADDRESS" default:"localhost:6379"`
	Password    string        `envconfig:"PASSWORD" default:""`
	Database    int           `envconfig:"DATABASE" default:"0"`
	MaxRetries  int           `envconfig:"MAX_RETRIES" default:"3"`
	PoolSize    int           `envconfig:"POOL_SIZE" default:"10"`
	PoolTimeout time.Duration `envconfig:"POOL_TIMEOUT" default:"4s"`
	TLSEnabled  bool          `envconfig:"TLS_ENABLED" default:"false"`
}

type ConsoleConfig struct {
	Port         string        `envconfig:"PORT" default:"3000"`
	Environment  string        `envconfig:"ENVIRONMENT" default:"development"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}

type ObservabilityConfig struct {
	MetricsPath    string  `envconfig:"METRICS_PATH" default:"/metrics"`
	TracingEnabled bool    `envconfig:"TRACING_ENABLED" default:"false"`
	SampleRate     float64 `envconfig:"SAMPLE_RATE" default:"0.1"`
}

type CORSConfig struct {
	AllowOrigins string `envconfig:"ALLOW_ORIGINS" default:"*"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate required fields
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Store.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("invalid store backend: %s (want memory, file or redis)", cfg.Store.Backend)
	}

	if cfg.API.BaseURL == "" {
		return fmt.Errorf("API base URL must not be empty")
	}

	// Validate port
	if port, err := strconv.Atoi(cfg.Console.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid console port: %s", cfg.Console.Port)
	}

	// Validate sample rate
	if cfg.Observability.SampleRate < 0 || cfg.Observability.SampleRate > 1 {
		return fmt.Errorf("invalid tracing sample rate: %f", cfg.Observability.SampleRate)
	}

	return nil
}
