package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Poller   PollerConfig
	Webhook  WebhookConfig
	Chat     ChatConfig
	Log      LogConfig
}

type ServerConfig struct {
	Address string `env:"SERVER_ADDRESS" envDefault:":8080"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"file"`
	Path   string `env:"STORE_PATH"`
}

type DatabaseConfig struct {
	PostgresURL string `env:"POSTGRES_URL"`
}

type RedisConfig struct {
	Address    string `env:"REDIS_ADDR"`
	Password   string `env:"REDIS_PASSWORD"`
	DB         int    `env:"REDIS_DB" envDefault:"0"`
	TTLSeconds int    `env:"REDIS_TTL_SECONDS" envDefault:"0"`
}

func (r RedisConfig) Enabled() bool { return r.Address != "" }

func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

type PollerConfig struct {
	IntervalSeconds int `env:"POLL_INTERVAL_SECONDS" envDefault:"5"`
}

func (p PollerConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

type WebhookConfig struct {
	TimeoutSeconds int    `env:"WEBHOOK_TIMEOUT_SECONDS" envDefault:"30"`
	Sender         string `env:"CHAT_SENDER" envDefault:"user"`
	ChatID         string `env:"CHAT_ID" envDefault:"whatsapp_chat"`
}

// Timeout of zero means requests never time out.
func (w WebhookConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

type ChatConfig struct {
	Welcome string `env:"WELCOME_MESSAGE" envDefault:"Hi! I'm your workflow bot. Configure the webhook so we can start chatting!"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

func LoadAll() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath(cfg.Store.Driver)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Store.Driver {
	case DriverFile, DriverSQLite, DriverMemory:
	case DriverPostgres:
		if cfg.Database.PostgresURL == "" {
			errs = append(errs, errors.New("POSTGRES_URL is required when STORE_DRIVER=postgres"))
		}
	case DriverRedis:
		if !cfg.Redis.Enabled() {
			errs = append(errs, errors.New("REDIS_ADDR is required when STORE_DRIVER=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be one of file, sqlite, postgres, redis, memory (got %q)", cfg.Store.Driver))
	}

	if cfg.Poller.IntervalSeconds <= 0 {
		errs = append(errs, errors.New("POLL_INTERVAL_SECONDS must be > 0"))
	}
	if cfg.Webhook.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("WEBHOOK_TIMEOUT_SECONDS must be >= 0"))
	}
	if cfg.Redis.TTLSeconds < 0 {
		errs = append(errs, errors.New("REDIS_TTL_SECONDS must be >= 0"))
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json (got %q)", cfg.Log.Format))
	}

	return errors.Join(errs...)
}

func defaultStorePath(driver string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	dir = filepath.Join(dir, "webchat")

	switch driver {
	case DriverFile:
		return filepath.Join(dir, "settings.yaml")
	case DriverSQLite:
		return filepath.Join(dir, "settings.db")
	}
	return ""
}
