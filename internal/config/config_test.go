package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleSecret = "0123456789abcdef0123456789abcdef"

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() unexpected error: %v", err)
	}

	if cfg.HTTPAddress() != "0.0.0.0:5006" {
		t.Fatalf("HTTPAddress() = %q", cfg.HTTPAddress())
	}
	if cfg.SSHAddress() != "0.0.0.0:2222" || !cfg.SSHEnabled {
		t.Fatalf("unexpected ssh defaults: %+v", cfg)
	}
	if cfg.ThemeCookieTTL != 30*24*time.Hour || cfg.SessionTTL != time.Hour {
		t.Fatalf("unexpected ttl defaults: theme=%s session=%s", cfg.ThemeCookieTTL, cfg.SessionTTL)
	}
	if !cfg.EphemeralSecret || len(cfg.SessionSecret) != minSessionSecretBytes {
		t.Fatalf("expected generated session secret, got ephemeral=%t len=%d", cfg.EphemeralSecret, len(cfg.SessionSecret))
	}
	if cfg.DatabasePath != filepath.Clean(defaultDatabasePath) {
		t.Fatalf("DatabasePath = %q", cfg.DatabasePath)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("HOTEL_HTTP_PORT", "8080")
	t.Setenv("HOTEL_SSH_ENABLED", "false")
	t.Setenv("HOTEL_SESSION_SECRET", sampleSecret)
	t.Setenv("HOTEL_THEME_COOKIE_TTL", "48h")
	t.Setenv("HOTEL_LOG_LEVEL", "DEBUG")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() unexpected error: %v", err)
	}
	if cfg.HTTPPort != 8080 || cfg.SSHEnabled {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if string(cfg.SessionSecret) != sampleSecret || cfg.EphemeralSecret {
		t.Fatalf("expected configured secret to be kept")
	}
	if cfg.ThemeCookieTTL != 48*time.Hour {
		t.Fatalf("ThemeCookieTTL = %s", cfg.ThemeCookieTTL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want lower-cased", cfg.LogLevel)
	}
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "invalid port", key: "HOTEL_HTTP_PORT", value: "not-a-number"},
		{name: "port out of range", key: "HOTEL_SSH_PORT", value: "70000"},
		{name: "whitespace host", key: "HOTEL_HTTP_HOST", value: "   "},
		{name: "empty host", key: "HOTEL_SSH_HOST", value: ""},
		{name: "host key path is cwd", key: "HOTEL_SSH_HOST_KEY_PATH", value: "."},
		{name: "db path is cwd", key: "HOTEL_DB_PATH", value: "./"},
		{name: "invalid idle timeout", key: "HOTEL_SSH_IDLE_TIMEOUT", value: "not-duration"},
		{name: "negative session ttl", key: "HOTEL_SESSION_TTL", value: "-1s"},
		{name: "zero max sessions", key: "HOTEL_SSH_MAX_SESSIONS", value: "0"},
		{name: "zero rate limit", key: "HOTEL_SSH_RATE_LIMIT_PER_MINUTE", value: "0"},
		{name: "huge login limit", key: "HOTEL_LOGIN_RATE_LIMIT_PER_MINUTE", value: "999999999999999999999999"},
		{name: "invalid bool", key: "HOTEL_SEED_DEMO", value: "definitely"},
		{name: "short secret", key: "HOTEL_SESSION_SECRET", value: "short"},
		{name: "unknown log level", key: "HOTEL_LOG_LEVEL", value: "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadFromEnv()
			if err == nil {
				t.Fatalf("LoadFromEnv() expected error for %s=%q", tt.key, tt.value)
			}
			if tt.key == "HOTEL_SESSION_SECRET" && strings.Contains(err.Error(), tt.value) {
				t.Fatalf("error should not echo the secret: %v", err)
			}
		})
	}
}

func TestLoadFromEnvProductionRequiresSecret(t *testing.T) {
	t.Setenv("HOTEL_ENV", "production")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() expected error for missing secret in production")
	}

	t.Setenv("HOTEL_SESSION_SECRET", sampleSecret)
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() unexpected error: %v", err)
	}
	if !cfg.Production() {
		t.Fatalf("Production() = false")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "estada.toml")
	body := `
log_level = "warn"

[http]
port = 9000

[ssh]
enabled = false
idle_timeout = "5m"
max_sessions = 4

[database]
path = "/var/lib/estada/estada.db"
seed_demo = false

[session]
secret = "` + sampleSecret + `"
theme_cookie_ttl = "24h"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(envConfigFile, path)
	t.Setenv("HOTEL_SSH_MAX_SESSIONS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.HTTPPort != 9000 || cfg.LogLevel != "warn" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.SSHEnabled || cfg.SeedDemo {
		t.Fatalf("explicit false booleans not applied")
	}
	if cfg.IdleTimeout != 5*time.Minute || cfg.ThemeCookieTTL != 24*time.Hour {
		t.Fatalf("durations not applied: idle=%s theme=%s", cfg.IdleTimeout, cfg.ThemeCookieTTL)
	}
	if cfg.MaxSessions != 8 {
		t.Fatalf("MaxSessions = %d, want env override 8", cfg.MaxSessions)
	}
	if cfg.DatabasePath != "/var/lib/estada/estada.db" {
		t.Fatalf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.EphemeralSecret {
		t.Fatalf("file secret should be kept")
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("LoadFile() expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[session]\nttl = \"soon\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFile(bad)
	if err == nil || !strings.Contains(err.Error(), "session.ttl") {
		t.Fatalf("LoadFile() error = %v, want session.ttl context", err)
	}
}
