// Package config loads and validates environment configuration.
//
// Required secrets are enforced here, at startup: a production process with
// a missing encryption key or session secret refuses to start instead of
// silently running misconfigured. Development gets loud warnings and
// explicit degraded modes (see cmd/server).
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/SyncSphere7/fou-website/mailer"
)

// DevSessionSecret is the insecure fallback signing secret for local
// development. Using it is flagged loudly at startup and refused in
// production.
const DevSessionSecret = "insecure-dev-session-secret-change-me!!"

// ErrConfiguration marks fatal startup configuration problems.
var ErrConfiguration = errors.New("configuration error")

// Config is the full environment surface of the server.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   int    `env:"PORT" envDefault:"3000"`

	// DatabaseURL enables the Postgres row store. Empty means the explicit
	// Unconfigured store in development and a startup error in production.
	DatabaseURL string `env:"DATABASE_URL"`

	// EncryptionKey protects sensitive form fields at rest. It must be
	// stable across restarts: deriving a fresh key per boot would make
	// previously stored envelopes permanently undecryptable.
	EncryptionKey string `env:"ENCRYPTION_KEY"`

	SessionSecret        string        `env:"SESSION_SECRET"`
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionTouchInterval time.Duration `env:"SESSION_TOUCH_INTERVAL" envDefault:"5m"`
	SessionStore         string        `env:"SESSION_STORE" envDefault:"memory"` // memory or redis
	RedisURL             string        `env:"REDIS_URL"`

	// RecaptchaSecretKey enables bot verification on public writes.
	// The gate is optional: absent key disables it entirely.
	RecaptchaSecretKey string `env:"RECAPTCHA_SECRET_KEY"`
	RecaptchaSiteKey   string `env:"RECAPTCHA_SITE_KEY"`

	// MailProvider selects the contact-form mailer: smtp, postmark, or
	// empty to skip delivery entirely.
	MailProvider string `env:"MAIL_PROVIDER"`
	SMTP         mailer.SMTPConfig
	Postmark     mailer.PostmarkConfig
	ContactFrom  string `env:"CONTACT_EMAIL_FROM"`
	ContactTo    string `env:"CONTACT_EMAIL_TO"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	// Missing .env is fine; the environment may be fully external.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

// IsProduction reports whether the process runs with production strictness.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate enforces the configuration invariants.
//
// Production requires every security-relevant secret; development tolerates
// gaps so the site can run locally, with the degraded behavior made explicit
// by the caller.
func (c Config) Validate() error {
	var errs []error

	if c.SessionStore != "memory" && c.SessionStore != "redis" {
		errs = append(errs, fmt.Errorf("SESSION_STORE must be memory or redis, got %q", c.SessionStore))
	}
	if c.SessionStore == "redis" && c.RedisURL == "" {
		errs = append(errs, errors.New("SESSION_STORE=redis requires REDIS_URL"))
	}

	switch c.MailProvider {
	case "", "smtp", "postmark":
	default:
		errs = append(errs, fmt.Errorf("MAIL_PROVIDER must be smtp, postmark, or empty, got %q", c.MailProvider))
	}
	if c.MailProvider != "" && (c.ContactFrom == "" || c.ContactTo == "") {
		errs = append(errs, errors.New("MAIL_PROVIDER requires CONTACT_EMAIL_FROM and CONTACT_EMAIL_TO"))
	}

	// An encryption key that is set but too short is always fatal: it would
	// otherwise tempt a weaker derived key, and data written under one would
	// be lost on the next "fix".
	if c.EncryptionKey != "" && len(c.EncryptionKey) < 32 {
		errs = append(errs, errors.New("ENCRYPTION_KEY must be at least 32 bytes"))
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}

	if c.IsProduction() {
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required in production"))
		}
		if c.EncryptionKey == "" {
			errs = append(errs, errors.New("ENCRYPTION_KEY is required in production"))
		}
		if c.SessionSecret == "" || c.SessionSecret == DevSessionSecret {
			errs = append(errs, errors.New("SESSION_SECRET is required in production"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfiguration, errors.Join(errs...))
	}
	return nil
}
