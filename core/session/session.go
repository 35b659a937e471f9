// Package session manages server-side admin sessions.
//
// A session is owned exclusively by the server-side store and referenced by
// an opaque random token handed to the client as a cookie value. The token
// rotates on privilege changes (login) so a pre-authentication token can
// never be replayed as an authenticated one.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session carries an identity and a role across requests.
//
// A session with a user but no role is identified-but-unprivileged: it
// passes authentication checks and fails every role check.
type Session struct {
	// ID is the stable session identifier, unchanged across token rotation.
	ID uuid.UUID `json:"id"`

	// Token is the opaque session token (32 bytes, base64url) stored in the
	// client cookie. It is the only client-visible session state.
	Token string `json:"token"`

	// UserID identifies the authenticated admin user (zero for anonymous).
	UserID int64 `json:"user_id"`

	// Username is the admin's login name, captured at login time.
	Username string `json:"username"`

	// Role is captured at login and immutable for the session's lifetime.
	// Privilege changes require a fresh login.
	Role Role `json:"role"`

	// IP is the client address the session was established from.
	IP string `json:"ip"`

	// ReturnTo preserves the originally requested path across a login redirect.
	ReturnTo string `json:"return_to,omitempty"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	deleted    bool
	isModified bool
}

// New creates a new anonymous session with a generated token and ID.
func New(ip string, ttl time.Duration) (Session, error) {
	token, err := generateToken()
	if err != nil {
		return Session{}, errors.Join(ErrTokenGeneration, err)
	}

	now := time.Now()
	return Session{
		ID:         uuid.New(),
		Token:      token,
		IP:         ip,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
		UpdatedAt:  now,
		isModified: true,
	}, nil
}

// Authenticate marks the session as belonging to the given admin user,
// rotating the token while preserving the session ID.
func (s *Session) Authenticate(userID int64, username string, role Role) error {
	token, err := generateToken()
	if err != nil {
		return errors.Join(ErrTokenGeneration, err)
	}

	s.Token = token
	s.UserID = userID
	s.Username = username
	s.Role = role
	s.UpdatedAt = time.Now()
	s.isModified = true
	return nil
}

// Logout marks the session for destruction.
// Destroying server-side state is what logs the user out; clearing the
// client cookie alone would leave a live session behind.
func (s *Session) Logout() {
	s.deleted = true
	s.isModified = true
}

// SetReturnTo records the path to redirect to after a successful login.
func (s *Session) SetReturnTo(path string) {
	s.ReturnTo = path
	s.UpdatedAt = time.Now()
	s.isModified = true
}

// IsAuthenticated reports whether a non-expired identity is attached.
func (s Session) IsAuthenticated() bool {
	return s.UserID != 0 && s.Token != "" && !s.IsExpired()
}

// HasRole reports whether the session's role satisfies the required tier.
// Unauthenticated sessions fail every role check.
func (s Session) HasRole(required Role) bool {
	return s.IsAuthenticated() && s.Role.Satisfies(required)
}

// IsExpired reports whether the session has expired.
func (s Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsDeleted reports whether the session is marked for destruction.
func (s Session) IsDeleted() bool {
	return s.deleted
}

// IsModified reports whether the session needs saving.
func (s Session) IsModified() bool {
	return s.isModified
}

// Touch extends the session expiration if the touch interval has elapsed,
// keeping store writes off the hot path for busy admins.
func (s *Session) Touch(ttl, touchInterval time.Duration) {
	if time.Since(s.UpdatedAt) >= touchInterval {
		s.ExpiresAt = time.Now().Add(ttl)
		s.UpdatedAt = time.Now()
		s.isModified = true
	}
}

// generateToken creates a cryptographically secure random token using
// 32 bytes (256 bits) encoded as base64 URL-safe string without padding.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
