package middleware

import (
	"net/http"

	"github.com/SyncSphere7/fou-website/core/handler"
)

// SecurityHeadersConfig configures the security response headers.
type SecurityHeadersConfig struct {
	// ContentSecurityPolicy overrides the default CSP. Empty uses the default.
	ContentSecurityPolicy string
	// EnableHSTS adds Strict-Transport-Security; only meaningful over TLS.
	EnableHSTS bool
}

// defaultCSP allows same-origin resources plus the external services the
// public pages load: reCAPTCHA scripts and frames, and inline styles used by
// the form templates.
const defaultCSP = "default-src 'self'; " +
	"script-src 'self' https://www.google.com https://www.gstatic.com 'unsafe-inline'; " +
	"frame-src https://www.google.com; " +
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; " +
	"font-src 'self' https://fonts.gstatic.com; " +
	"img-src 'self' data: https:; " +
	"connect-src 'self'"

// SecurityHeaders sets the standard browser hardening headers on every
// response.
func SecurityHeaders(cfg SecurityHeadersConfig) handler.Middleware {
	csp := cfg.ContentSecurityPolicy
	if csp == "" {
		csp = defaultCSP
	}

	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx handler.Context) handler.Response {
			resp := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				h := w.Header()
				h.Set("Content-Security-Policy", csp)
				h.Set("X-Content-Type-Options", "nosniff")
				h.Set("X-Frame-Options", "DENY")
				h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
				h.Set("X-XSS-Protection", "0")
				if cfg.EnableHSTS {
					h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
				}
				return resp(w, r)
			}
		}
	}
}
