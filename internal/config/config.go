package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig
	Bot     BotConfig
	Lookup  LookupConfig
	Store   StoreConfig
	Logging LoggingConfig
}

// HTTPConfig governs webhook server behaviour.
type HTTPConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// BotConfig describes the chat transport and the command guard windows.
type BotConfig struct {
	APIBaseURL     string        `env:"BOT_API_BASE_URL" envDefault:"https://api.telegram.org"`
	Token          string        `env:"BOT_TOKEN"`
	Cooldown       time.Duration `env:"BOT_COOLDOWN" envDefault:"2s"`
	DedupRetention time.Duration `env:"BOT_DEDUP_RETENTION" envDefault:"60s"`
}

// LookupConfig describes the external enrichment providers.
type LookupConfig struct {
	PrimaryBinURL    string        `env:"BIN_PRIMARY_URL" envDefault:"https://lookup.binlist.net"`
	SecondaryBinURL  string        `env:"BIN_SECONDARY_URL"`
	SecondaryBinKey  string        `env:"BIN_SECONDARY_KEY"`
	RegistryURL      string        `env:"REGISTRY_URL"`
	RegistryTimeout  time.Duration `env:"REGISTRY_TIMEOUT" envDefault:"8s"`
	ThrottledBackoff time.Duration `env:"REGISTRY_THROTTLED_BACKOFF" envDefault:"1200ms"`
	UpstreamBackoff  time.Duration `env:"REGISTRY_UPSTREAM_BACKOFF" envDefault:"800ms"`
	NetworkBackoff   time.Duration `env:"REGISTRY_NETWORK_BACKOFF" envDefault:"700ms"`
}

// StoreConfig locates the record database file.
type StoreConfig struct {
	Path string `env:"STORE_PATH" envDefault:"data/records.db"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `env:"LOG_LEVEL" envDefault:"info"`
	Format        string `env:"LOG_FORMAT" envDefault:"text"` // text|json
	IncludeCaller bool   `env:"LOG_INCLUDE_CALLER" envDefault:"false"`
}

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return Config{}, fmt.Errorf("port %d is out of range", cfg.HTTP.Port)
	}
	return cfg, nil
}
