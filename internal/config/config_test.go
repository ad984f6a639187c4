package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	logger := zerolog.Nop()
	cfg := Load(&logger)

	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	require.Equal(t, "stockplan", cfg.MongoDatabase)
	require.Equal(t, "stockplan-api", cfg.JWTIssuer)
	require.Equal(t, "stockplan-api", cfg.JWTAudience)
	require.Equal(t, 168*time.Hour, cfg.AccessTokenTTL)
	require.Equal(t, 720*time.Hour, cfg.RefreshTokenTTL)
	require.False(t, cfg.ResetReturnCode)
	require.Equal(t, time.Hour, cfg.CleanupInterval)
	require.Equal(t, 10*time.Second, cfg.CleanupInitialDelay)
	require.Equal(t, MailerDriverLog, cfg.MailerDriver)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL", "15m")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL", "72h")
	t.Setenv("AUTH_RESET_RETURN_CODE", "true")

	logger := zerolog.Nop()
	cfg := Load(&logger)

	require.Equal(t, ":9999", cfg.HTTPAddr)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 72*time.Hour, cfg.RefreshTokenTTL)
	require.True(t, cfg.ResetReturnCode)
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWTSecret:       "secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		CleanupInterval: time.Hour,
		MailerDriver:    MailerDriverLog,
	}
	require.NoError(t, valid.validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }},
		{"zero access ttl", func(c *Config) { c.AccessTokenTTL = 0 }},
		{"negative refresh ttl", func(c *Config) { c.RefreshTokenTTL = -time.Hour }},
		{"zero cleanup interval", func(c *Config) { c.CleanupInterval = 0 }},
		{"unknown mailer driver", func(c *Config) { c.MailerDriver = "carrier-pigeon" }},
		{"smtp without host", func(c *Config) { c.MailerDriver = MailerDriverSMTP }},
		{"smtp without port", func(c *Config) {
			c.MailerDriver = MailerDriverSMTP
			c.SMTPHost = "localhost"
		}},
		{"smtp without from", func(c *Config) {
			c.MailerDriver = MailerDriverSMTP
			c.SMTPHost = "localhost"
			c.SMTPPort = 587
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			require.Error(t, cfg.validate())
		})
	}
}

func TestValidate_SMTPComplete(t *testing.T) {
	cfg := Config{
		JWTSecret:       "secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		CleanupInterval: time.Hour,
		MailerDriver:    MailerDriverSMTP,
		SMTPHost:        "localhost",
		SMTPPort:        587,
		SMTPFrom:        "noreply@stockplan.app",
	}
	require.NoError(t, cfg.validate())
}
