// Command server runs the Friends of Uganda website backend.
//
// Startup is where configuration problems surface: production refuses to
// boot with missing secrets, development boots in explicitly degraded modes
// with loud warnings. A request must never silently succeed against a
// missing database or an absent encryption key.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SyncSphere7/fou-website/auth"
	"github.com/SyncSphere7/fou-website/core/config"
	"github.com/SyncSphere7/fou-website/core/logger"
	"github.com/SyncSphere7/fou-website/core/router"
	"github.com/SyncSphere7/fou-website/core/session"
	"github.com/SyncSphere7/fou-website/core/sessiontransport"
	"github.com/SyncSphere7/fou-website/handlers"
	"github.com/SyncSphere7/fou-website/mailer"
	"github.com/SyncSphere7/fou-website/middleware"
	"github.com/SyncSphere7/fou-website/pkg/ratelimiter"
	"github.com/SyncSphere7/fou-website/pkg/recaptcha"
	"github.com/SyncSphere7/fou-website/pkg/secrets"
	"github.com/SyncSphere7/fou-website/storage"
)

// Request budgets. The wide API budget covers everything; the form and login
// budgets are narrower and stack on top of it per route.
var (
	apiBudget   = ratelimiter.Config{Limit: 100, Window: 15 * time.Minute}
	formBudget  = ratelimiter.Config{Limit: 5, Window: time.Hour}
	loginBudget = ratelimiter.Config{Limit: 5, Window: 15 * time.Minute}
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second

	sessionSweepInterval = time.Hour
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.AppEnv)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := buildStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	cipher, err := buildCipher(cfg, log)
	if err != nil {
		return err
	}

	captcha, err := buildCaptcha(cfg, log)
	if err != nil {
		return err
	}

	mail, err := buildMailer(cfg, log)
	if err != nil {
		return err
	}

	manager, err := buildSessionManager(ctx, cfg, log)
	if err != nil {
		return err
	}

	transport, err := buildSessionTransport(cfg, manager, log)
	if err != nil {
		return err
	}

	formLimiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), formBudget)
	if err != nil {
		return err
	}
	loginLimiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), loginBudget)
	if err != nil {
		return err
	}
	apiLimiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), apiBudget)
	if err != nil {
		return err
	}

	rt := router.New(router.WithLogger(log))
	rt.Use(
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{EnableHSTS: cfg.IsProduction()}),
		middleware.RequestID(),
		middleware.ClientIP(),
		middleware.Logging(log),
		middleware.RateLimit(middleware.RateLimitConfig{Limiter: apiLimiter, SetHeaders: true}),
	)

	h := handlers.New(handlers.Config{
		Store:            store,
		Cipher:           cipher,
		Captcha:          captcha,
		Authenticator:    auth.New(store, auth.WithLogger(log)),
		Mail:             mail,
		ContactFrom:      cfg.ContactFrom,
		ContactTo:        cfg.ContactTo,
		FormLimiter:      formLimiter,
		LoginLimiter:     loginLimiter,
		SessionTransport: transport,
		Logger:           log,
	})
	h.Routes(rt)

	go sweepSessions(ctx, manager, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           rt,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			slog.Int("port", cfg.Port),
			slog.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildStore selects the row store backend.
//
// No DATABASE_URL in development means the explicit Unconfigured backend:
// every persistence attempt fails with a clear error instead of pretending
// to succeed against nothing. Production already refused to start.
func buildStore(ctx context.Context, cfg config.Config, log *slog.Logger) (storage.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, persistence is DISABLED; all storage operations will fail")
		return storage.Unconfigured{}, func() {}, nil
	}

	pg, err := storage.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info("connected to postgres")
	return pg, pg.Close, nil
}

// buildCipher creates the field cipher, or nil in development without a key.
func buildCipher(cfg config.Config, log *slog.Logger) (*secrets.Cipher, error) {
	if cfg.EncryptionKey == "" {
		log.Warn("ENCRYPTION_KEY not set, field encryption is DISABLED; sensitive fields will be dropped")
		return nil, nil
	}
	return secrets.New(cfg.EncryptionKey, secrets.WithLogger(log))
}

// buildCaptcha creates the bot verifier, or nil when no secret is set.
func buildCaptcha(cfg config.Config, log *slog.Logger) (*recaptcha.Client, error) {
	if cfg.RecaptchaSecretKey == "" {
		log.Warn("RECAPTCHA_SECRET_KEY not set, bot verification is DISABLED")
		return nil, nil
	}
	return recaptcha.New(cfg.RecaptchaSecretKey)
}

// buildMailer selects the contact-form mail provider, or nil to skip
// delivery.
func buildMailer(cfg config.Config, log *slog.Logger) (mailer.Mailer, error) {
	switch cfg.MailProvider {
	case "smtp":
		return mailer.NewSMTP(cfg.SMTP)
	case "postmark":
		return mailer.NewPostmark(cfg.Postmark)
	default:
		log.Warn("MAIL_PROVIDER not set, contact mail delivery is DISABLED")
		return nil, nil
	}
}

// buildSessionManager wires the session store selected by configuration.
func buildSessionManager(ctx context.Context, cfg config.Config, log *slog.Logger) (*session.Manager, error) {
	var store session.Store
	switch cfg.SessionStore {
	case "redis":
		rs, err := session.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.Info("sessions stored in redis")
		store = rs
	default:
		log.Info("sessions stored in memory; they will not survive a restart")
		store = session.NewMemoryStore()
	}

	return session.NewManager(store, cfg.SessionTTL, cfg.SessionTouchInterval), nil
}

// buildSessionTransport creates the signed cookie transport. Development
// without a SESSION_SECRET falls back to a published insecure default, which
// is safe only because the validator already rejected that state in
// production.
func buildSessionTransport(cfg config.Config, manager *session.Manager, log *slog.Logger) (*sessiontransport.Cookie, error) {
	secret := cfg.SessionSecret
	if secret == "" {
		log.Warn("SESSION_SECRET not set, using the INSECURE development default")
		secret = config.DevSessionSecret
	}

	return sessiontransport.New(manager, secret,
		sessiontransport.WithSecure(cfg.IsProduction()))
}

// sweepSessions periodically removes expired sessions from the store.
// Redis expires its own keys; the memory store relies on this sweep.
func sweepSessions(ctx context.Context, manager *session.Manager, log *slog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := manager.CleanupExpired(ctx)
			if err != nil {
				log.Warn("session cleanup failed", slog.Any("error", err))
				continue
			}
			if removed > 0 {
				log.Debug("expired sessions removed", slog.Int64("count", removed))
			}
		}
	}
}
