package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultHTTPHost                = "0.0.0.0"
	defaultHTTPPort                = 5006
	defaultSSHHost                 = "0.0.0.0"
	defaultSSHPort                 = 2222
	defaultHostKeyPath             = ".data/host_ed25519"
	defaultIdleTimeout             = 120 * time.Second
	defaultMaxSessions             = 32
	defaultSSHRateLimitPerMinute   = 30
	defaultSSHRateLimitBurst       = 10
	defaultDatabasePath            = ".data/estada.db"
	defaultSessionTTL              = time.Hour
	defaultThemeCookieTTL          = 30 * 24 * time.Hour
	defaultLoginRateLimitPerMin    = 10
	defaultLoginRateLimitBurst     = 5
	defaultLogLevel                = "info"
	defaultEnvironment             = "development"
	minSessionSecretBytes          = 32
	maximumConfiguredSessions      = 1024
	maximumConfiguredRatePerMinute = 10000

	envConfigFile = "HOTEL_CONFIG_FILE"
)

// Config captures startup settings for the desk.
type Config struct {
	Environment string
	LogLevel    string

	HTTPHost string
	HTTPPort int

	SSHEnabled            bool
	SSHHost               string
	SSHPort               int
	HostKeyPath           string
	IdleTimeout           time.Duration
	MaxSessions           int
	SSHRateLimitPerMinute int
	SSHRateLimitBurst     int

	DatabasePath string
	SeedDemo     bool

	SessionSecret           []byte
	EphemeralSecret         bool
	SessionTTL              time.Duration
	ThemeCookieTTL          time.Duration
	LoginRateLimitPerMinute int
	LoginRateLimitBurst     int
}

// HTTPAddress is the listen address of the web desk.
func (c Config) HTTPAddress() string { return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort) }

// SSHAddress is the listen address of the housekeeping board.
func (c Config) SSHAddress() string { return fmt.Sprintf("%s:%d", c.SSHHost, c.SSHPort) }

// Production reports whether the desk runs with production guards.
func (c Config) Production() bool { return c.Environment == "production" }

// fileConfig mirrors the optional TOML file. Durations are strings so the
// same parser validates file and environment input.
type fileConfig struct {
	Environment string `toml:"environment"`
	LogLevel    string `toml:"log_level"`

	HTTP struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	} `toml:"http"`

	SSH struct {
		Enabled            *bool  `toml:"enabled"`
		Host               string `toml:"host"`
		Port               int    `toml:"port"`
		HostKeyPath        string `toml:"host_key_path"`
		IdleTimeout        string `toml:"idle_timeout"`
		MaxSessions        int    `toml:"max_sessions"`
		RateLimitPerMinute int    `toml:"rate_limit_per_minute"`
		RateLimitBurst     int    `toml:"rate_limit_burst"`
	} `toml:"ssh"`

	Database struct {
		Path     string `toml:"path"`
		SeedDemo *bool  `toml:"seed_demo"`
	} `toml:"database"`

	Session struct {
		Secret                  string `toml:"secret"`
		TTL                     string `toml:"ttl"`
		ThemeCookieTTL          string `toml:"theme_cookie_ttl"`
		LoginRateLimitPerMinute int    `toml:"login_rate_limit_per_minute"`
		LoginRateLimitBurst     int    `toml:"login_rate_limit_burst"`
	} `toml:"session"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Environment:             defaultEnvironment,
		LogLevel:                defaultLogLevel,
		HTTPHost:                defaultHTTPHost,
		HTTPPort:                defaultHTTPPort,
		SSHEnabled:              true,
		SSHHost:                 defaultSSHHost,
		SSHPort:                 defaultSSHPort,
		HostKeyPath:             defaultHostKeyPath,
		IdleTimeout:             defaultIdleTimeout,
		MaxSessions:             defaultMaxSessions,
		SSHRateLimitPerMinute:   defaultSSHRateLimitPerMinute,
		SSHRateLimitBurst:       defaultSSHRateLimitBurst,
		DatabasePath:            defaultDatabasePath,
		SeedDemo:                true,
		SessionTTL:              defaultSessionTTL,
		ThemeCookieTTL:          defaultThemeCookieTTL,
		LoginRateLimitPerMinute: defaultLoginRateLimitPerMin,
		LoginRateLimitBurst:     defaultLoginRateLimitBurst,
	}
}

// Load reads the optional TOML file named by HOTEL_CONFIG_FILE and then applies
// environment overrides on top of it.
func Load() (Config, error) {
	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv(envConfigFile)); path != "" {
		fromFile, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fromFile
	}
	return applyEnv(cfg)
}

// LoadFromEnv loads runtime configuration from environment variables only.
func LoadFromEnv() (Config, error) {
	return applyEnv(Defaults())
}

// LoadFile decodes a TOML file over the defaults. Keys absent from the file
// keep their default values.
func LoadFile(path string) (Config, error) {
	var raw fileConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}

	cfg := Defaults()
	setString(&cfg.Environment, raw.Environment)
	setString(&cfg.LogLevel, raw.LogLevel)
	setString(&cfg.HTTPHost, raw.HTTP.Host)
	setInt(&cfg.HTTPPort, raw.HTTP.Port)
	if raw.SSH.Enabled != nil {
		cfg.SSHEnabled = *raw.SSH.Enabled
	}
	setString(&cfg.SSHHost, raw.SSH.Host)
	setInt(&cfg.SSHPort, raw.SSH.Port)
	setString(&cfg.HostKeyPath, raw.SSH.HostKeyPath)
	setInt(&cfg.MaxSessions, raw.SSH.MaxSessions)
	setInt(&cfg.SSHRateLimitPerMinute, raw.SSH.RateLimitPerMinute)
	setInt(&cfg.SSHRateLimitBurst, raw.SSH.RateLimitBurst)
	setString(&cfg.DatabasePath, raw.Database.Path)
	if raw.Database.SeedDemo != nil {
		cfg.SeedDemo = *raw.Database.SeedDemo
	}
	if raw.Session.Secret != "" {
		cfg.SessionSecret = []byte(raw.Session.Secret)
	}
	setInt(&cfg.LoginRateLimitPerMinute, raw.Session.LoginRateLimitPerMinute)
	setInt(&cfg.LoginRateLimitBurst, raw.Session.LoginRateLimitBurst)

	durations := []struct {
		key    string
		raw    string
		target *time.Duration
	}{
		{key: "ssh.idle_timeout", raw: raw.SSH.IdleTimeout, target: &cfg.IdleTimeout},
		{key: "session.ttl", raw: raw.Session.TTL, target: &cfg.SessionTTL},
		{key: "session.theme_cookie_ttl", raw: raw.Session.ThemeCookieTTL, target: &cfg.ThemeCookieTTL},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := parseDuration(d.key, d.raw)
		if err != nil {
			return Config{}, err
		}
		*d.target = parsed
	}

	return cfg, nil
}

func applyEnv(cfg Config) (Config, error) {
	var err error

	if cfg.Environment, err = readRequiredOrDefault("HOTEL_ENV", cfg.Environment); err != nil {
		return Config{}, err
	}
	cfg.Environment = strings.ToLower(cfg.Environment)

	if cfg.LogLevel, err = readRequiredOrDefault("HOTEL_LOG_LEVEL", cfg.LogLevel); err != nil {
		return Config{}, err
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if cfg.HTTPHost, err = readRequiredOrDefault("HOTEL_HTTP_HOST", cfg.HTTPHost); err != nil {
		return Config{}, err
	}
	if cfg.HTTPPort, err = readInt("HOTEL_HTTP_PORT", cfg.HTTPPort, 1, 65535); err != nil {
		return Config{}, err
	}

	if cfg.SSHEnabled, err = readBool("HOTEL_SSH_ENABLED", cfg.SSHEnabled); err != nil {
		return Config{}, err
	}
	if cfg.SSHHost, err = readRequiredOrDefault("HOTEL_SSH_HOST", cfg.SSHHost); err != nil {
		return Config{}, err
	}
	if cfg.SSHPort, err = readInt("HOTEL_SSH_PORT", cfg.SSHPort, 1, 65535); err != nil {
		return Config{}, err
	}
	if cfg.HostKeyPath, err = readRequiredOrDefault("HOTEL_SSH_HOST_KEY_PATH", cfg.HostKeyPath); err != nil {
		return Config{}, err
	}
	if cfg.IdleTimeout, err = readDuration("HOTEL_SSH_IDLE_TIMEOUT", cfg.IdleTimeout); err != nil {
		return Config{}, err
	}
	if cfg.MaxSessions, err = readInt("HOTEL_SSH_MAX_SESSIONS", cfg.MaxSessions, 1, maximumConfiguredSessions); err != nil {
		return Config{}, err
	}
	if cfg.SSHRateLimitPerMinute, err = readInt("HOTEL_SSH_RATE_LIMIT_PER_MINUTE", cfg.SSHRateLimitPerMinute, 1, maximumConfiguredRatePerMinute); err != nil {
		return Config{}, err
	}

	if cfg.DatabasePath, err = readRequiredOrDefault("HOTEL_DB_PATH", cfg.DatabasePath); err != nil {
		return Config{}, err
	}
	if cfg.SeedDemo, err = readBool("HOTEL_SEED_DEMO", cfg.SeedDemo); err != nil {
		return Config{}, err
	}

	if raw, ok := os.LookupEnv("HOTEL_SESSION_SECRET"); ok {
		cfg.SessionSecret = []byte(raw)
	}
	if cfg.SessionTTL, err = readDuration("HOTEL_SESSION_TTL", cfg.SessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.ThemeCookieTTL, err = readDuration("HOTEL_THEME_COOKIE_TTL", cfg.ThemeCookieTTL); err != nil {
		return Config{}, err
	}
	if cfg.LoginRateLimitPerMinute, err = readInt("HOTEL_LOGIN_RATE_LIMIT_PER_MINUTE", cfg.LoginRateLimitPerMinute, 1, maximumConfiguredRatePerMinute); err != nil {
		return Config{}, err
	}

	return finalize(cfg)
}

func finalize(cfg Config) (Config, error) {
	if strings.TrimSpace(cfg.HTTPHost) == "" {
		return Config{}, fmt.Errorf("HOTEL_HTTP_HOST must not be blank")
	}
	if strings.TrimSpace(cfg.SSHHost) == "" {
		return Config{}, fmt.Errorf("HOTEL_SSH_HOST must not be blank")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("HOTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}

	cleanHostKeyPath := filepath.Clean(cfg.HostKeyPath)
	if cleanHostKeyPath == "." {
		return Config{}, fmt.Errorf("HOTEL_SSH_HOST_KEY_PATH must not resolve to current directory")
	}
	cfg.HostKeyPath = cleanHostKeyPath

	cleanDatabasePath := filepath.Clean(cfg.DatabasePath)
	if cleanDatabasePath == "." {
		return Config{}, fmt.Errorf("HOTEL_DB_PATH must not resolve to current directory")
	}
	cfg.DatabasePath = cleanDatabasePath

	checks := []struct {
		key      string
		value    int
		min, max int
	}{
		{key: "HOTEL_HTTP_PORT", value: cfg.HTTPPort, min: 1, max: 65535},
		{key: "HOTEL_SSH_PORT", value: cfg.SSHPort, min: 1, max: 65535},
		{key: "HOTEL_SSH_MAX_SESSIONS", value: cfg.MaxSessions, min: 1, max: maximumConfiguredSessions},
		{key: "HOTEL_SSH_RATE_LIMIT_PER_MINUTE", value: cfg.SSHRateLimitPerMinute, min: 1, max: maximumConfiguredRatePerMinute},
		{key: "ssh.rate_limit_burst", value: cfg.SSHRateLimitBurst, min: 1, max: maximumConfiguredRatePerMinute},
		{key: "HOTEL_LOGIN_RATE_LIMIT_PER_MINUTE", value: cfg.LoginRateLimitPerMinute, min: 1, max: maximumConfiguredRatePerMinute},
		{key: "session.login_rate_limit_burst", value: cfg.LoginRateLimitBurst, min: 1, max: maximumConfiguredRatePerMinute},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return Config{}, fmt.Errorf("%s must be between %d and %d", c.key, c.min, c.max)
		}
	}

	if cfg.SessionTTL <= 0 || cfg.ThemeCookieTTL <= 0 || cfg.IdleTimeout <= 0 {
		return Config{}, fmt.Errorf("durations must be greater than 0")
	}

	switch {
	case len(cfg.SessionSecret) >= minSessionSecretBytes:
	case len(cfg.SessionSecret) > 0:
		return Config{}, fmt.Errorf("HOTEL_SESSION_SECRET must be at least %d bytes", minSessionSecretBytes)
	case cfg.Production():
		return Config{}, fmt.Errorf("HOTEL_SESSION_SECRET must be set in production")
	default:
		secret := make([]byte, minSessionSecretBytes)
		if _, err := rand.Read(secret); err != nil {
			return Config{}, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.SessionSecret = secret
		cfg.EphemeralSecret = true
	}

	return cfg, nil
}

func readRequiredOrDefault(key, fallback string) (string, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	if raw == "" {
		return "", fmt.Errorf("%s must not be empty", key)
	}

	return raw, nil
}

func readInt(key string, fallback, min, max int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}

	return parsed, nil
}

func readBool(key string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return parsed, nil
}

func readDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	return parseDuration(key, raw)
}

func parseDuration(key, raw string) (time.Duration, error) {
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func setString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func setInt(target *int, value int) {
	if value != 0 {
		*target = value
	}
}
