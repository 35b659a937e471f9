// Package handlers implements the HTTP endpoints and their route table.
//
// Every route declares its middleware stack explicitly, in execution order,
// and the first rejecting middleware wins: a rate-limited request is never
// validated, an invalid submission never reaches the bot gate, a bot-rejected
// one never touches storage.
package handlers

import (
	"errors"
	"io"
	"log/slog"

	"github.com/SyncSphere7/fou-website/auth"
	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/core/response"
	"github.com/SyncSphere7/fou-website/core/router"
	"github.com/SyncSphere7/fou-website/core/session"
	"github.com/SyncSphere7/fou-website/core/sessiontransport"
	"github.com/SyncSphere7/fou-website/mailer"
	"github.com/SyncSphere7/fou-website/middleware"
	"github.com/SyncSphere7/fou-website/pkg/ratelimiter"
	"github.com/SyncSphere7/fou-website/pkg/recaptcha"
	"github.com/SyncSphere7/fou-website/pkg/secrets"
	"github.com/SyncSphere7/fou-website/storage"
)

// Config carries the collaborators the endpoints depend on.
// Cipher, Captcha and Mail may be nil: the corresponding concern is then
// skipped, a degraded mode chosen explicitly at startup, never by accident.
type Config struct {
	Store         storage.Store
	Cipher        *secrets.Cipher
	Captcha       *recaptcha.Client
	Authenticator *auth.Authenticator
	Mail          mailer.Mailer
	ContactFrom   string
	ContactTo     string

	// FormLimiter protects the public write forms (registration, contact).
	FormLimiter *ratelimiter.Limiter
	// LoginLimiter protects the admin login and is refunded on success.
	LoginLimiter *ratelimiter.Limiter

	SessionTransport *sessiontransport.Cookie
	Logger           *slog.Logger
}

// Handlers holds the endpoint implementations.
type Handlers struct {
	cfg    Config
	logger *slog.Logger
}

// New creates the endpoint set from its collaborators.
func New(cfg Config) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handlers{cfg: cfg, logger: logger}
}

// Routes registers every endpoint with its ordered middleware stack.
// Global middleware (headers, request ID, client IP, logging, the wide API
// budget) are expected to be installed on the router by the caller.
func (h *Handlers) Routes(rt *router.Router) {
	formLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter:    h.cfg.FormLimiter,
		Message:    "Too many submissions from this address, please try again later.",
		SetHeaders: true,
	})
	loginLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter:    h.cfg.LoginLimiter,
		Message:    "Too many login attempts, please try again later.",
		SetHeaders: true,
	})
	sess := middleware.Session(h.cfg.SessionTransport)

	// Public write endpoints: budget check first, everything else after.
	rt.Post("/api/register", h.Register, formLimit)
	rt.Post("/api/contact", h.Contact, formLimit)

	// Admin surface. The login budget counts attempts, not sessions, so the
	// limiter runs before the session loads.
	rt.Post("/admin/login", h.Login, loginLimit, sess)
	rt.Post("/admin/logout", h.Logout, sess)
	// The dashboard is open to any authenticated admin; the user and project
	// listings additionally need the editor role.
	rt.Get("/admin/api/dashboard", h.Dashboard, sess, middleware.RequireAuth())
	rt.Get("/admin/api/users", h.Users, sess, middleware.RequireAuth(), middleware.RequireRole(session.RoleEditor))
	rt.Get("/admin/api/projects", h.Projects, sess, middleware.RequireAuth(), middleware.RequireRole(session.RoleEditor))

	rt.Get("/healthz", h.Health)
}

// verifyCaptcha runs the bot gate for a public form submission.
//
// No configured verifier means the gate is off. A configured verifier with a
// missing client token rejects without a network call. An unreachable
// verifier fails closed: the verdict is unknown, so the submission does not
// proceed.
func (h *Handlers) verifyCaptcha(ctx handler.Context, token string) error {
	if h.cfg.Captcha == nil {
		return nil
	}

	if token == "" {
		return response.ErrBadRequest.WithMessage("CAPTCHA verification failed. Please try again.")
	}

	result, err := h.cfg.Captcha.Verify(ctx, token, middleware.GetClientIP(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "captcha verification unavailable", slog.Any("error", err))
		return response.ErrBadGateway.WithMessage("Verification is temporarily unavailable. Please try again later.").WithError(err)
	}

	if !result.Success {
		return response.ErrBadRequest.WithMessage("CAPTCHA verification failed. Please try again.")
	}

	return nil
}

// storageError maps row-store failures to client-safe responses.
// A missing database is an operator problem reported generically; the
// client never learns which backend failed or why.
func storageError(err error) error {
	if errors.Is(err, storage.ErrUnconfigured) {
		return response.ErrServiceUnavailable.WithMessage("Service is temporarily unavailable. Please try again later.").WithError(err)
	}
	return response.ErrInternalServerError.WithError(err)
}

// optional returns nil for empty strings so absent form fields persist as
// NULL instead of empty text.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
