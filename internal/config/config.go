// Package config loads runtime settings from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

const (
	MailerDriverLog  = "log"
	MailerDriverSMTP = "smtp"
)

// Config holds every setting the API consumes. Access and refresh token
// lifetimes default to 7 and 30 days; both are long for bearer credentials
// and operators are expected to tighten them.
type Config struct {
	HTTPAddr      string `env:"HTTP_ADDR"      envDefault:":8080"`
	MongoURI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"stockplan"`

	JWTSecret   string `env:"JWT_SECRET"`
	JWTIssuer   string `env:"JWT_ISSUER"   envDefault:"stockplan-api"`
	JWTAudience string `env:"JWT_AUDIENCE" envDefault:"stockplan-api"`

	AccessTokenTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL"  envDefault:"168h"`
	RefreshTokenTTL time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"720h"`

	// ResetReturnCode echoes the plaintext reset code in forgot-password
	// responses. Debug only; must stay off in production.
	ResetReturnCode bool `env:"AUTH_RESET_RETURN_CODE" envDefault:"false"`

	CleanupInterval     time.Duration `env:"AUTH_TOKEN_CLEANUP_INTERVAL"      envDefault:"1h"`
	CleanupInitialDelay time.Duration `env:"AUTH_TOKEN_CLEANUP_INITIAL_DELAY" envDefault:"10s"`

	MailerDriver string `env:"MAILER_DRIVER" envDefault:"log"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`
}

// Load parses the environment and validates the result.
func Load(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("missing JWT_SECRET environment variable")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("AUTH_ACCESS_TOKEN_TTL must be positive")
	}
	if c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("AUTH_REFRESH_TOKEN_TTL must be positive")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("AUTH_TOKEN_CLEANUP_INTERVAL must be positive")
	}

	switch c.MailerDriver {
	case MailerDriverLog:
	case MailerDriverSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("missing SMTP_HOST environment variable")
		}
		if c.SMTPPort == 0 {
			return fmt.Errorf("missing SMTP_PORT environment variable")
		}
		if c.SMTPFrom == "" {
			return fmt.Errorf("missing SMTP_FROM environment variable")
		}
	default:
		return fmt.Errorf("unknown MAILER_DRIVER %q", c.MailerDriver)
	}

	return nil
}
