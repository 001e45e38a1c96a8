// Package config loads service configuration from the environment.
//
// Values are read once at startup by Load, except for the demo-mode switch,
// which is exposed as a function so callers observe its current value on
// every request.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DemoModeEnv is the environment variable that enables the demo identity.
const DemoModeEnv = "ENABLE_DEMO_MODE"

// Config is the root configuration of the account service.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Settings  SettingsConfig
}

type ServiceConfig struct {
	Name                string
	Version             string
	Env                 string
	Port                string
	ShutdownTimeout     string
	ReadinessDrainDelay string
}

type LoggingConfig struct {
	Level string
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

// DatabaseConfig holds PostgreSQL connection settings for the pgx pool.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
	// URL, when set, takes precedence over the individual fields.
	URL string
}

// AuthConfig holds session and demo-mode settings.
type AuthConfig struct {
	SessionCookie string
	SessionTTL    string
	SecureCookie  bool
	DemoModeEnv   string
}

// SettingsConfig holds the catalog of recognized external provider names.
// The catalog drives listing and form iteration only; storage accepts any name.
type SettingsConfig struct {
	ExternalProviderNames []string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:                getEnv("SERVICE_NAME", "ownai-account"),
			Version:             getEnv("VERSION", "dev"),
			Env:                 getEnv("ENV", "development"),
			Port:                getEnv("PORT", "8080"),
			ShutdownTimeout:     getEnv("SHUTDOWN_TIMEOUT", "10s"),
			ReadinessDrainDelay: getEnv("READINESS_DRAIN_DELAY", "0s"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("OTEL_COLLECTOR_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("OTEL_SAMPLE_RATE", 0.1),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PYROSCOPE_ENDPOINT", "http://localhost:4040"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "ownai"),
			User:     getEnv("DB_USER", "ownai"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_POOL_MAX_CONNECTIONS", 10)),
			URL:      getEnv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			SessionCookie: getEnv("SESSION_COOKIE_NAME", "ownai_session"),
			SessionTTL:    getEnv("SESSION_TTL", "24h"),
			SecureCookie:  getEnvBool("SESSION_COOKIE_SECURE", false),
			DemoModeEnv:   getEnv("DEMO_MODE_ENV", DemoModeEnv),
		},
		Settings: SettingsConfig{
			ExternalProviderNames: externalProviderNames(),
		},
	}
}

// Validate checks the values that cannot be defaulted safely.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	} else if _, err := strconv.Atoi(c.Service.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT must be numeric: %q", c.Service.Port))
	}
	if _, err := time.ParseDuration(c.Service.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}
	if _, err := time.ParseDuration(c.Service.ReadinessDrainDelay); err != nil {
		errs = append(errs, fmt.Errorf("READINESS_DRAIN_DELAY: %w", err))
	}
	if d, err := time.ParseDuration(c.Auth.SessionTTL); err != nil {
		errs = append(errs, fmt.Errorf("SESSION_TTL: %w", err))
	} else if d <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Auth.SessionCookie == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME is required"))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be within [0,1], got %v", c.Tracing.SampleRate))
	}
	if c.Database.URL == "" && c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST or DATABASE_URL is required"))
	}

	return errors.Join(errs...)
}

// GetShutdownTimeoutDuration returns the graceful shutdown timeout.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return parseDurationOr(c.Service.ShutdownTimeout, 10*time.Second)
}

// GetReadinessDrainDelayDuration returns how long /ready reports 503
// before the HTTP server stops accepting connections.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return parseDurationOr(c.Service.ReadinessDrainDelay, 0)
}

// GetSessionTTL returns the lifetime of a newly created session.
func (c *Config) GetSessionTTL() time.Duration {
	return parseDurationOr(c.Auth.SessionTTL, 24*time.Hour)
}

// DSN builds a libpq-style connection string for pgx. Values are quoted so
// they may contain spaces, quotes and backslashes.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		quoteDSNValue(d.Host), quoteDSNValue(d.Port), quoteDSNValue(d.Name),
		quoteDSNValue(d.User), quoteDSNValue(d.Password), quoteDSNValue(d.SSLMode), d.MaxConns)
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteDSNValue single-quotes v with backslash escapes, as libpq expects.
func quoteDSNValue(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}

// DemoModeFunc returns a function that reports whether demo mode is
// currently enabled. The environment is consulted on every call.
func (c *Config) DemoModeFunc() func() bool {
	name := c.Auth.DemoModeEnv
	if name == "" {
		name = DemoModeEnv
	}
	return func() bool {
		return IsTruthy(os.Getenv(name))
	}
}

// IsTruthy reports whether an environment value switches a flag on.
// Empty and explicit false values ("0", "false", "no", "off") are off;
// anything else is on.
func IsTruthy(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	switch strings.ToLower(v) {
	case "no", "off":
		return false
	}
	return true
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
