package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todo.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Storage.Driver != "sqlite" || cfg.Tracing.Exporter != "none" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("expected info level")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
addr = ":9090"
log_level = "debug"

[storage]
driver = "file"
dsn = "/tmp/todo.json"

[rate_limit]
rps = 5
burst = 10

[tracing]
exporter = "stdout"
service_name = "todo-test"
`)
	t.Setenv(EnvAddr, ":7070")
	t.Setenv(EnvRateLimitRPS, "2.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("env should override addr, got %q", cfg.Addr)
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.DSN != "/tmp/todo.json" {
		t.Errorf("unexpected storage: %+v", cfg.Storage)
	}
	if cfg.RateLimit.RPS != 2.5 || cfg.RateLimit.Burst != 10 {
		t.Errorf("unexpected rate limit: %+v", cfg.RateLimit)
	}
	if cfg.Tracing.ServiceName != "todo-test" {
		t.Errorf("unexpected service name %q", cfg.Tracing.ServiceName)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("expected debug level")
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("default cors origins should survive, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, `addr = [`)); err == nil {
		t.Fatalf("expected parse error")
	}

	t.Setenv(EnvRateLimitRPS, "fast")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for bad rps")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty addr":       func(c *Config) { c.Addr = "" },
		"bad level":        func(c *Config) { c.LogLevel = "loud" },
		"unknown driver":   func(c *Config) { c.Storage.Driver = "redis" },
		"sqlite no dsn":    func(c *Config) { c.Storage.DSN = "" },
		"otlp no endpoint": func(c *Config) { c.Tracing.Exporter = "otlp" },
		"bad exporter":     func(c *Config) { c.Tracing.Exporter = "zipkin" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := Validate(cfg); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}

	cfg := Default()
	cfg.Storage = Storage{Driver: "memory"}
	if err := Validate(cfg); err != nil {
		t.Errorf("memory without dsn should be valid: %v", err)
	}
}
