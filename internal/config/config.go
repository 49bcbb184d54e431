// Package config loads the dispatcher's configuration from an optional YAML
// file plus environment variable overrides, and is passed explicitly into
// each component at construction rather than read from a lazily-initialised
// global (see DESIGN.md's Open Question resolution).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the dispatcher.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	SES      SESConfig      `yaml:"ses"`
	Auth     AuthConfig     `yaml:"auth"`
	RateGate RateGateConfig `yaml:"rate_gate"`
	Sentry   SentryConfig   `yaml:"sentry"`
	Queues   QueueConfig    `yaml:"queues"`
	Tracking TrackingConfig `yaml:"tracking"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	URL  string `yaml:"url"` // base URL used to build the open-pixel link
}

// DatabaseConfig holds the Postgres connection string for RequestStore/ResultStore.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the optional Redis connection used by the rate gate's
// cross-process coordination hook (see internal/rategate).
type RedisConfig struct {
	URL string `yaml:"url"`
}

// SESConfig holds AWS SES sender configuration.
type SESConfig struct {
	Region    string `yaml:"region"`
	FromEmail string `yaml:"from_email"`
}

// AuthConfig holds Bearer JWT verification configuration.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// RateGateConfig bounds outbound send rate.
type RateGateConfig struct {
	MaxSendPerSecond int `yaml:"max_send_per_second"`
}

// Interval returns the minimum inter-send interval implied by MaxSendPerSecond.
func (c RateGateConfig) Interval() time.Duration {
	n := c.MaxSendPerSecond
	if n <= 0 {
		n = 24
	}
	return time.Duration(1000/n) * time.Millisecond
}

// SentryConfig holds the crash-aggregation DSN (out of scope for the core
// pipeline per spec.md §1 — carried only as config plumbing for cmd/server).
type SentryConfig struct {
	DSN string `yaml:"dsn"`
}

// QueueConfig sizes the in-process send-queue and outcome-queue.
type QueueConfig struct {
	SendQueueCapacity    int `yaml:"send_queue_capacity"`
	OutcomeQueueCapacity int `yaml:"outcome_queue_capacity"`
}

// TrackingConfig configures the optional SQS-backed alternative to the
// direct SNS webhook for provider callbacks. Empty SQSQueueURL disables it.
type TrackingConfig struct {
	SQSQueueURL string `yaml:"sqs_queue_url"`
}

// Load reads and parses an optional YAML configuration file, applying
// defaults for anything left unset. A missing file is not an error; callers
// typically rely on LoadFromEnv to supply everything via the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-east-1"
	}
	if cfg.RateGate.MaxSendPerSecond == 0 {
		cfg.RateGate.MaxSendPerSecond = 24
	}
	if cfg.Queues.SendQueueCapacity == 0 {
		cfg.Queues.SendQueueCapacity = 10000
	}
	if cfg.Queues.OutcomeQueueCapacity == 0 {
		cfg.Queues.OutcomeQueueCapacity = 1000
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from an optional YAML file and then
// overrides it from the environment, loading a .env file first if present —
// secrets live in .env locally and in real env vars in deployed environments.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("AWS_SES_FROM_EMAIL"); v != "" {
		cfg.SES.FromEmail = v
	}
	if v := os.Getenv("MAX_SEND_PER_SECOND"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.RateGate.MaxSendPerSecond = n
		}
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		cfg.Sentry.DSN = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("TRACKING_SQS_QUEUE_URL"); v != "" {
		cfg.Tracking.SQSQueueURL = v
	}

	return cfg, nil
}
