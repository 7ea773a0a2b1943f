package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GRANTDESK_AUTH__SIGNING_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "grantdesk", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "jwt", cfg.Auth.Provider)
	assert.Equal(t, "gd_session", cfg.Auth.CookieName)
	assert.Equal(t, RuleConfig{Limit: 5, Window: 60 * time.Second}, cfg.RateLimit.Strict)
	assert.Equal(t, RuleConfig{Limit: 10, Window: 10 * time.Second}, cfg.RateLimit.Moderate)
	assert.Equal(t, RuleConfig{Limit: 60, Window: 60 * time.Second}, cfg.RateLimit.Public)
	assert.Equal(t, time.Minute, cfg.RateLimit.SweepInterval)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grantdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
db:
  driver: sqlite
  path: /tmp/grantdesk.db
auth:
  signing_key: from-file
ratelimit:
  strict:
    limit: 3
    window: 30s
`), 0o600))

	t.Setenv("GRANTDESK_SERVER__PORT", "7070")
	t.Setenv("GRANTDESK_RATELIMIT__MODERATE__LIMIT", "25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "/tmp/grantdesk.db", cfg.DB.Path)
	assert.Equal(t, "from-file", cfg.Auth.SigningKey)
	assert.Equal(t, RuleConfig{Limit: 3, Window: 30 * time.Second}, cfg.RateLimit.Strict)
	assert.Equal(t, 25, cfg.RateLimit.Moderate.Limit)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DB:   DBConfig{Driver: "postgres"},
			Auth: AuthConfig{Provider: "jwt", SigningKey: "k"},
			RateLimit: RateLimitConfig{
				Store:    "memory",
				Strict:   RuleConfig{Limit: 5, Window: time.Minute},
				Moderate: RuleConfig{Limit: 10, Window: time.Second},
				Public:   RuleConfig{Limit: 60, Window: time.Minute},
			},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	tests := map[string]func(*Config){
		"unknown driver":      func(c *Config) { c.DB.Driver = "mysql" },
		"jwt without key":     func(c *Config) { c.Auth.SigningKey = "" },
		"remote without url":  func(c *Config) { c.Auth.Provider = "remote" },
		"unknown provider":    func(c *Config) { c.Auth.Provider = "saml" },
		"unknown store":       func(c *Config) { c.RateLimit.Store = "redis" },
		"zero limit":          func(c *Config) { c.RateLimit.Strict.Limit = 0 },
		"non-positive window": func(c *Config) { c.RateLimit.Public.Window = 0 },
		"bad trusted proxy":   func(c *Config) { c.Server.TrustedProxies = "10.0.0.0/8,not-a-cidr" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTrustedProxyRanges(t *testing.T) {
	ranges, err := (&ServerConfig{}).TrustedProxyRanges()
	require.NoError(t, err)
	assert.Empty(t, ranges)

	ranges, err = (&ServerConfig{TrustedProxies: " 10.0.0.0/8, 192.0.2.0/24 ,"}).TrustedProxyRanges()
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, "10.0.0.0/8", ranges[0].String())
	assert.Equal(t, "192.0.2.0/24", ranges[1].String())
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, (&DBConfig{LogLevel: "silent"}).GormLogLevel())
	assert.Equal(t, logger.Warn, (&DBConfig{}).GormLogLevel())
}
