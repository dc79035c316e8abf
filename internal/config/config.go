// internal/config/config.go

// Package config loads the admin client settings from defaults, an optional
// YAML file, .env files and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL         = "http://localhost:3000/api"
	DefaultEntity         = "books"
	DefaultRequestTimeout = 15 * time.Second
	DefaultNotifyTTL      = 5 * time.Second
	DefaultServiceName    = "adminsync"
)

type Config struct {
	APIURL         string        `yaml:"api_url"`
	Entity         string        `yaml:"entity"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	NotifyTTL      time.Duration `yaml:"notify_ttl"`
	// RateLimit is the maximum requests per second; 0 means unlimited.
	RateLimit float64         `yaml:"rate_limit"`
	Prefs     PrefsConfig     `yaml:"prefs"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Faults    FaultsConfig    `yaml:"faults"`
	Log       LogConfig       `yaml:"log"`
}

type PrefsConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type TelemetryConfig struct {
	// OTLPEndpoint is host:port of an OTLP/HTTP collector; empty disables
	// exporting.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

// FaultsConfig enables fault injection on the API transport.
type FaultsConfig struct {
	FailureRate float64       `yaml:"failure_rate"`
	Latency     time.Duration `yaml:"latency"`
	// Status is the injected response status; 0 injects transport failures.
	Status int `yaml:"status"`
}

// Enabled reports whether any fault is configured.
func (f FaultsConfig) Enabled() bool {
	return f.FailureRate > 0 || f.Latency > 0
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File receives log output; empty discards it in the TUI.
	File string `yaml:"file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		Entity:         DefaultEntity,
		RequestTimeout: DefaultRequestTimeout,
		NotifyTTL:      DefaultNotifyTTL,
		Prefs:          PrefsConfig{Driver: "sqlite"},
		Telemetry:      TelemetryConfig{ServiceName: DefaultServiceName},
		Log:            LogConfig{Level: "info"},
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Variables already set in the environment win over .env files.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.APIURL = getEnv("ADMIN_API_URL", c.APIURL)
	c.Entity = getEnv("ADMIN_ENTITY", c.Entity)
	c.Prefs.Driver = getEnv("ADMIN_PREFS_DRIVER", c.Prefs.Driver)
	c.Prefs.DSN = getEnv("ADMIN_PREFS_DSN", c.Prefs.DSN)
	c.Telemetry.OTLPEndpoint = getEnv("ADMIN_OTLP_ENDPOINT", c.Telemetry.OTLPEndpoint)
	c.Telemetry.ServiceName = getEnv("ADMIN_SERVICE_NAME", c.Telemetry.ServiceName)
	c.Log.Level = getEnv("ADMIN_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("ADMIN_LOG_FILE", c.Log.File)

	var errs []error
	errs = append(errs,
		envDuration("ADMIN_REQUEST_TIMEOUT", &c.RequestTimeout),
		envDuration("ADMIN_NOTIFY_TTL", &c.NotifyTTL),
		envDuration("ADMIN_FAULT_LATENCY", &c.Faults.Latency),
		envFloat("ADMIN_RATE_LIMIT", &c.RateLimit),
		envFloat("ADMIN_FAULT_FAILURE_RATE", &c.Faults.FailureRate),
	)
	if v := os.Getenv("ADMIN_FAULT_STATUS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("ADMIN_FAULT_STATUS: %w", err))
		} else {
			c.Faults.Status = n
		}
	}
	return errors.Join(errs...)
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative, got %v", c.RateLimit)
	}
	if c.Faults.FailureRate < 0 || c.Faults.FailureRate > 1 {
		return fmt.Errorf("fault failure rate must be between 0 and 1, got %v", c.Faults.FailureRate)
	}
	if c.Faults.Status != 0 && (c.Faults.Status < 400 || c.Faults.Status > 599) {
		return fmt.Errorf("fault status must be a 4xx or 5xx code, got %d", c.Faults.Status)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}
