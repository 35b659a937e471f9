// Package auth verifies admin credentials against the row store.
package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/SyncSphere7/fou-website/storage"
)

// ErrInvalidCredentials is the single outward failure for login attempts.
// Unknown username and wrong password report identically so an attacker
// cannot enumerate which factor was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash is compared against when the username is unknown, so lookup
// misses and hash mismatches take comparable time.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Authenticator performs credential verification.
type Authenticator struct {
	store  storage.Store
	logger *slog.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLogger sets the logger for login bookkeeping failures.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an authenticator over the given store.
func New(store storage.Store, opts ...Option) *Authenticator {
	a := &Authenticator{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login verifies a username/password pair and returns the matching admin.
//
// Every mismatch fails closed with ErrInvalidCredentials; store failures
// propagate unchanged so callers can report an upstream error instead of
// blaming the credentials.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*storage.AdminUser, error) {
	user, err := a.store.FindAdminByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Login bookkeeping is best-effort; a failed timestamp update must not
	// block a valid login.
	if err := a.store.TouchAdminLogin(ctx, user.ID, time.Now()); err != nil {
		a.logger.WarnContext(ctx, "failed to record last login",
			slog.Int64("admin_id", user.ID),
			slog.Any("error", err))
	}

	return user, nil
}

// HashPassword produces a bcrypt hash for seeding admin credentials.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
