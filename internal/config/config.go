package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the dashboard.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	VaultAPI VaultAPIConfig `yaml:"vaultAPI"`
	Logging  LoggingConfig  `yaml:"logging"`
	Limiter  LimiterConfig  `yaml:"limiter"`
	View     ViewConfig     `yaml:"view"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port         string   `yaml:"port"`
	ReadTimeout  int      `yaml:"readTimeout"`
	WriteTimeout int      `yaml:"writeTimeout"`
	IdleTimeout  int      `yaml:"idleTimeout"`
	AllowOrigins []string `yaml:"allowOrigins"`
}

// VaultAPIConfig holds the upstream vault API configuration. The bearer token
// is never read from the YAML file: it comes exclusively from the environment
// so it cannot end up committed alongside the config.
type VaultAPIConfig struct {
	BaseURL string `yaml:"baseURL"`
	APIKey  string `yaml:"-"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// LimiterConfig holds the inbound API rate limiter configuration.
type LimiterConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// ViewConfig controls the lifecycle of in-memory dashboard views.
type ViewConfig struct {
	TTLMinutes             int `yaml:"ttlMinutes"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// envOverrides are the settings sourced from the process environment.
type envOverrides struct {
	APIKey  string `env:"VAULT_API_KEY"`
	BaseURL string `env:"VAULT_API_BASE_URL"`
	Port    string `env:"PORT"`
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides on top of it.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	cfg.VaultAPI.APIKey = overrides.APIKey
	if overrides.BaseURL != "" {
		cfg.VaultAPI.BaseURL = overrides.BaseURL
	}
	if overrides.Port != "" {
		cfg.Server.Port = overrides.Port
	}

	if cfg.VaultAPI.APIKey == "" {
		// Not fatal here: the client surfaces a configuration error on every
		// call attempt so the operator sees it in responses, not just logs.
		logrus.Warn("VAULT_API_KEY is not set; all vault API calls will fail with a configuration error")
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if len(cfg.Server.AllowOrigins) == 0 {
		cfg.Server.AllowOrigins = []string{"*"}
	}
	if cfg.VaultAPI.BaseURL == "" {
		cfg.VaultAPI.BaseURL = "https://api.defindex.io"
		logrus.Infof("VaultAPI.BaseURL not set, defaulting to %s", cfg.VaultAPI.BaseURL)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Limiter.RequestsPerSecond <= 0 {
		cfg.Limiter.RequestsPerSecond = 20
	}
	if cfg.Limiter.Burst <= 0 {
		cfg.Limiter.Burst = 40
	}
	if cfg.View.TTLMinutes <= 0 {
		cfg.View.TTLMinutes = 30
	}
	if cfg.View.CleanupIntervalMinutes <= 0 {
		cfg.View.CleanupIntervalMinutes = 10
	}
}
