// Package config loads the service configuration from an optional TOML file
// and environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFile         = "TODO_LOG_FILE"
	EnvAddr            = "TODO_ADDR"
	EnvStorageDriver   = "TODO_STORAGE_DRIVER"
	EnvStorageDSN      = "TODO_STORAGE_DSN"
	EnvTracingExporter = "TODO_TRACING_EXPORTER"
	EnvOTLPEndpoint    = "TODO_OTLP_ENDPOINT"
	EnvRateLimitRPS    = "TODO_RATE_LIMIT_RPS"
)

type Config struct {
	Addr      string    `toml:"addr"`
	LogLevel  string    `toml:"log_level"`
	LogFile   string    `toml:"log_file"`
	Storage   Storage   `toml:"storage"`
	CORS      CORS      `toml:"cors"`
	RateLimit RateLimit `toml:"rate_limit"`
	Tracing   Tracing   `toml:"tracing"`
}

type Storage struct {
	// Driver is one of memory, file, sqlite, mysql.
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type CORS struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// RateLimit disables limiting when RPS <= 0.
type RateLimit struct {
	RPS   float64 `toml:"rps"`
	Burst int     `toml:"burst"`
}

type Tracing struct {
	// Exporter is one of none, stdout, otlp.
	Exporter    string `toml:"exporter"`
	Endpoint    string `toml:"endpoint"`
	Insecure    bool   `toml:"insecure"`
	ServiceName string `toml:"service_name"`
}

func Default() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
		Storage: Storage{
			Driver: "sqlite",
			DSN:    "data/todo.db",
		},
		CORS: CORS{AllowedOrigins: []string{"*"}},
		Tracing: Tracing{
			Exporter:    "none",
			ServiceName: "todo-api",
		},
	}
}

// Load reads path (skipped when empty) over the defaults, applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(env string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}
	setString(EnvLogLevel, &cfg.LogLevel)
	setString(EnvLogFile, &cfg.LogFile)
	setString(EnvAddr, &cfg.Addr)
	setString(EnvStorageDriver, &cfg.Storage.Driver)
	setString(EnvStorageDSN, &cfg.Storage.DSN)
	setString(EnvTracingExporter, &cfg.Tracing.Exporter)
	setString(EnvOTLPEndpoint, &cfg.Tracing.Endpoint)

	if v := strings.TrimSpace(os.Getenv(EnvRateLimitRPS)); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateLimitRPS, err)
		}
		cfg.RateLimit.RPS = rps
	}
	return nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("config missing addr")
	}
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}

	switch strings.ToLower(cfg.Storage.Driver) {
	case "memory":
	case "file", "sqlite", "mysql":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("storage driver %s requires dsn", cfg.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit burst must not be negative")
	}

	switch strings.ToLower(cfg.Tracing.Exporter) {
	case "", "none", "stdout":
	case "otlp":
		if strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
			return fmt.Errorf("otlp tracing requires endpoint")
		}
	default:
		return fmt.Errorf("unknown tracing exporter %q", cfg.Tracing.Exporter)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(raw string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
