package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "ADDR", "SECRET_KEY",
		"JWT_ISS", "JWT_AUD", "JWT_EXPIRY",
		"AUTH_ENFORCED", "METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, DefaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultSecretKey, cfg.SecretKey)
	assert.Equal(t, "asset-tracker-api", cfg.JWTIssuer)
	assert.Equal(t, "asset-tracker-api", cfg.JWTAudience)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.False(t, cfg.AuthEnforced)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:app@db:5432/tracker")
	t.Setenv("ADDR", ":9090")
	t.Setenv("SECRET_KEY", "env-secret-key-long-enough")
	t.Setenv("JWT_ISS", "issuer")
	t.Setenv("JWT_AUD", "audience")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("AUTH_ENFORCED", "true")
	t.Setenv("METRICS_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "postgres://app:app@db:5432/tracker", cfg.DatabaseURL)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "env-secret-key-long-enough", cfg.SecretKey)
	assert.Equal(t, "issuer", cfg.JWTIssuer)
	assert.Equal(t, "audience", cfg.JWTAudience)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.AuthEnforced)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoadIgnoresBadExpiry(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "not-a-duration")

	cfg := Load()
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseURL: DefaultDatabaseURL,
			Addr:        DefaultAddr,
			SecretKey:   "a-secret-key-long-enough",
			JWTExpiry:   time.Hour,
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database url", func(c *Config) { c.DatabaseURL = "" }},
		{"empty secret key", func(c *Config) { c.SecretKey = "" }},
		{"zero expiry", func(c *Config) { c.JWTExpiry = 0 }},
		{"negative expiry", func(c *Config) { c.JWTExpiry = -time.Hour }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
