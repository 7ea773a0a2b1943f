package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// EnvPrefix is the prefix for environment overrides. A double underscore
// separates nesting levels, e.g. GRANTDESK_DB__MAX_OPEN_CONNS.
const EnvPrefix = "GRANTDESK_"

// DBConfig holds database configuration
type DBConfig struct {
	Driver          string        `koanf:"driver"`
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"sslmode"`
	Path            string        `koanf:"path"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	LogLevel        string        `koanf:"log_level"`
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GormLogLevel maps the configured level onto gorm's logger levels.
func (c *DBConfig) GormLogLevel() logger.LogLevel {
	switch c.LogLevel {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string        `koanf:"port"`
	Env          string        `koanf:"env"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	// TrustedProxies is a comma-separated list of CIDRs whose
	// X-Forwarded-For header is believed. Empty means the peer address is
	// the client address.
	TrustedProxies string `koanf:"trusted_proxies"`
}

// TrustedProxyRanges parses TrustedProxies.
func (c *ServerConfig) TrustedProxyRanges() ([]*net.IPNet, error) {
	var ranges []*net.IPNet
	for _, raw := range strings.Split(c.TrustedProxies, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		_, ipnet, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("server.trusted_proxies: %w", err)
		}
		ranges = append(ranges, ipnet)
	}
	return ranges, nil
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `koanf:"level"`
}

// AuthConfig selects and configures the identity provider.
type AuthConfig struct {
	// Provider is "jwt" (verify the session token locally) or "remote"
	// (ask the identity provider who the token belongs to).
	Provider   string        `koanf:"provider"`
	CookieName string        `koanf:"cookie_name"`
	SigningKey string        `koanf:"signing_key"`
	Issuer     string        `koanf:"issuer"`
	RemoteURL  string        `koanf:"remote_url"`
	Timeout    time.Duration `koanf:"timeout"`
}

// RuleConfig is one named rate limit class.
type RuleConfig struct {
	Limit  int           `koanf:"limit"`
	Window time.Duration `koanf:"window"`
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Store         string        `koanf:"store"`
	NATSURL       string        `koanf:"nats_url"`
	Bucket        string        `koanf:"bucket"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	Strict        RuleConfig    `koanf:"strict"`
	Moderate      RuleConfig    `koanf:"moderate"`
	Public        RuleConfig    `koanf:"public"`
}

// GenieConfig holds the LLM endpoint configuration
type GenieConfig struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled bool `koanf:"enabled"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Config holds all configuration
type Config struct {
	ServiceName string          `koanf:"service_name"`
	Server      ServerConfig    `koanf:"server"`
	DB          DBConfig        `koanf:"db"`
	Log         LogConfig       `koanf:"log"`
	Auth        AuthConfig      `koanf:"auth"`
	RateLimit   RateLimitConfig `koanf:"ratelimit"`
	Genie       GenieConfig     `koanf:"genie"`
	Tracing     TracingConfig   `koanf:"tracing"`
	Metrics     MetricsConfig   `koanf:"metrics"`
}

var defaults = map[string]interface{}{
	"service_name":              "grantdesk",
	"server.port":               "8080",
	"server.env":                "development",
	"server.read_timeout":       "15s",
	"server.write_timeout":      "120s",
	"server.trusted_proxies":    "",
	"db.driver":                 "postgres",
	"db.host":                   "localhost",
	"db.port":                   "5432",
	"db.user":                   "postgres",
	"db.password":               "password",
	"db.name":                   "grantdesk",
	"db.sslmode":                "disable",
	"db.path":                   "grantdesk.db",
	"db.max_idle_conns":         10,
	"db.max_open_conns":         100,
	"db.conn_max_lifetime":      "1h",
	"db.log_level":              "warn",
	"log.level":                 "info",
	"auth.provider":             "jwt",
	"auth.cookie_name":          "gd_session",
	"auth.signing_key":          "",
	"auth.timeout":              "10s",
	"ratelimit.store":           "memory",
	"ratelimit.nats_url":        "nats://127.0.0.1:4222",
	"ratelimit.bucket":          "grantdesk_ratelimit",
	"ratelimit.sweep_interval":  "1m",
	"ratelimit.strict.limit":    5,
	"ratelimit.strict.window":   "60s",
	"ratelimit.moderate.limit":  10,
	"ratelimit.moderate.window": "10s",
	"ratelimit.public.limit":    60,
	"ratelimit.public.window":   "60s",
	"genie.base_url":            "https://api.openai.com/v1",
	"genie.model":               "gpt-4o-mini",
	"genie.timeout":             "120s",
	"tracing.enabled":           false,
	"metrics.enabled":           true,
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order of precedence (last wins).
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks the combinations Load cannot express as defaults.
func (c *Config) Validate() error {
	if _, err := c.Server.TrustedProxyRanges(); err != nil {
		return err
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	switch c.Auth.Provider {
	case "jwt":
		if c.Auth.SigningKey == "" {
			return fmt.Errorf("auth.signing_key is required for the jwt provider")
		}
	case "remote":
		if c.Auth.RemoteURL == "" {
			return fmt.Errorf("auth.remote_url is required for the remote provider")
		}
	default:
		return fmt.Errorf("unsupported auth provider %q", c.Auth.Provider)
	}
	switch c.RateLimit.Store {
	case "memory", "nats":
	default:
		return fmt.Errorf("unsupported rate limit store %q", c.RateLimit.Store)
	}
	for name, rule := range map[string]RuleConfig{
		"strict":   c.RateLimit.Strict,
		"moderate": c.RateLimit.Moderate,
		"public":   c.RateLimit.Public,
	} {
		if rule.Limit < 1 || rule.Window <= 0 {
			return fmt.Errorf("ratelimit.%s needs a positive limit and window", name)
		}
	}
	return nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_driver", c.DB.Driver),
		zap.String("db_host", c.DB.Host),
		zap.String("db_name", c.DB.Name),
		zap.String("server_port", c.Server.Port),
		zap.String("auth_provider", c.Auth.Provider),
		zap.String("ratelimit_store", c.RateLimit.Store),
	}
}
