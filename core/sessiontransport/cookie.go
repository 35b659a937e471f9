// Package sessiontransport moves session tokens between the server-side
// session store and the client.
//
// The only client-visible state is the opaque session token, carried in an
// HMAC-signed cookie. The signature stops a client from minting or altering
// token values; everything else about the session lives server-side.
package sessiontransport

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/core/session"
	"github.com/SyncSphere7/fou-website/pkg/clientip"
)

// minSecretLength is the minimum signing secret length.
const minSecretLength = 32

var (
	// ErrSecretTooShort is returned when the signing secret is too weak.
	ErrSecretTooShort = errors.New("session signing secret must be at least 32 bytes")
	// ErrInvalidSignature is returned when a cookie fails signature verification.
	ErrInvalidSignature = errors.New("invalid cookie signature")
	// ErrInvalidFormat is returned when a cookie value cannot be parsed.
	ErrInvalidFormat = errors.New("invalid cookie format")
	// ErrNoCookie is returned when the session cookie is absent.
	ErrNoCookie = errors.New("session cookie not present")
)

// Cookie is the HMAC-signed cookie transport for sessions.
type Cookie struct {
	manager *session.Manager
	secret  []byte
	name    string
	secure  bool
}

// Option configures the cookie transport.
type Option func(*Cookie)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(c *Cookie) {
		if name != "" {
			c.name = name
		}
	}
}

// WithSecure controls the cookie Secure flag. Disabled only for local
// development over plain HTTP.
func WithSecure(secure bool) Option {
	return func(c *Cookie) {
		c.secure = secure
	}
}

// New creates a cookie transport over the given session manager.
func New(manager *session.Manager, secret string, opts ...Option) (*Cookie, error) {
	if len(secret) < minSecretLength {
		return nil, ErrSecretTooShort
	}

	c := &Cookie{
		manager: manager,
		secret:  []byte(secret),
		name:    "fou_session",
		secure:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Load resolves the request's session, creating a fresh anonymous session
// when no valid cookie is present. It always returns a usable session.
func (c *Cookie) Load(ctx handler.Context) (session.Session, error) {
	token, err := c.readToken(ctx.Request())
	if err != nil {
		return c.manager.New(ctx, clientip.GetIP(ctx.Request()))
	}

	sess, err := c.manager.GetByToken(ctx, token)
	if err != nil {
		return c.manager.New(ctx, clientip.GetIP(ctx.Request()))
	}

	return sess, nil
}

// Store persists the session and synchronizes the client cookie.
// Deleted sessions clear the cookie; live sessions refresh it so the cookie
// MaxAge tracks the server-side expiry. The manager touches the session in
// place, so the cookie is written from the extended expiry, not the one the
// session carried coming in.
func (c *Cookie) Store(ctx handler.Context, sess session.Session) error {
	if err := c.manager.Store(ctx, &sess); err != nil {
		return err
	}

	if sess.IsDeleted() {
		c.clearCookie(ctx.ResponseWriter())
		return nil
	}

	return c.writeCookie(ctx.ResponseWriter(), sess)
}

// readToken extracts and verifies the signed token from the request cookie.
func (c *Cookie) readToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", ErrNoCookie
	}
	return c.verify(cookie.Value)
}

func (c *Cookie) writeCookie(w http.ResponseWriter, sess session.Session) error {
	until := time.Until(sess.ExpiresAt)
	if until <= 0 {
		c.clearCookie(w)
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    c.sign(sess.Token),
		Path:     "/",
		MaxAge:   int(until.Seconds()),
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *Cookie) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sign creates an HMAC-SHA256 signed cookie value for the token.
func (c *Cookie) sign(token string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(token))
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return base64.RawURLEncoding.EncodeToString([]byte(token)) + "|" + signature
}

// verify checks the HMAC signature and returns the embedded token.
func (c *Cookie) verify(signed string) (string, error) {
	encodedToken, signature, ok := strings.Cut(signed, "|")
	if !ok {
		return "", ErrInvalidFormat
	}

	token, err := base64.RawURLEncoding.DecodeString(encodedToken)
	if err != nil {
		return "", ErrInvalidFormat
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write(token)
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) != 1 {
		return "", ErrInvalidSignature
	}

	return string(token), nil
}
