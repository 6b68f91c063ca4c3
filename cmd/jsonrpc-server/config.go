package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	transportStdio = "stdio"
	transportHTTP  = "http"

	logBackendZap    = "zap"
	logBackendLogrus = "logrus"
)

// Config holds server configuration.
type Config struct {
	Transport      string `yaml:"transport"`
	Addr           string `yaml:"addr"`
	URI            string `yaml:"uri"`
	MaxConnections int    `yaml:"maxConnections"`

	SessionTTL  time.Duration `yaml:"sessionTTL"`
	MaxSessions int           `yaml:"maxSessions"`

	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RateLimitConfig configures call admission; a zero rate disables limiting.
type RateLimitConfig struct {
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	Spans bool `yaml:"spans"`
}

// LoggingConfig selects the diagnostic sink backend (zap or logrus).
type LoggingConfig struct {
	Backend string `yaml:"backend"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Transport:   transportStdio,
		Addr:        ":8080",
		URI:         "/rpc",
		SessionTTL:  10 * time.Minute,
		MaxSessions: 10000,
		Logging:     LoggingConfig{Backend: logBackendZap},
	}
}

// Load loads configuration from a YAML file and applies environment overrides.
// Defaults are used when path is empty or the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if value := os.Getenv("JSONRPC_TRANSPORT"); value != "" {
		c.Transport = value
	}
	if value := os.Getenv("JSONRPC_ADDR"); value != "" {
		c.Addr = value
	}
	if value := os.Getenv("JSONRPC_URI"); value != "" {
		c.URI = value
	}
	if value := os.Getenv("JSONRPC_LOG_BACKEND"); value != "" {
		c.Logging.Backend = value
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	switch c.Transport {
	case transportStdio, transportHTTP:
	default:
		return fmt.Errorf("unsupported transport: %q", c.Transport)
	}
	switch c.Logging.Backend {
	case logBackendZap, logBackendLogrus:
	default:
		return fmt.Errorf("unsupported log backend: %q", c.Logging.Backend)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("invalid maxConnections: %d", c.MaxConnections)
	}
	if c.SessionTTL < 0 || c.MaxSessions < 0 {
		return fmt.Errorf("invalid session limits: sessionTTL=%v maxSessions=%d", c.SessionTTL, c.MaxSessions)
	}
	if c.RateLimit.Rate < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("invalid rateLimit: rate=%v burst=%d", c.RateLimit.Rate, c.RateLimit.Burst)
	}
	if c.RateLimit.Rate > 0 && c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 1
	}
	return nil
}
