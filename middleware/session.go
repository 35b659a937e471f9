package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/core/response"
	"github.com/SyncSphere7/fou-website/core/session"
	"github.com/SyncSphere7/fou-website/core/sessiontransport"
)

// sessionContextKey is used as a key for storing the session in request context.
type sessionContextKey struct{}

// Session loads the request session through the cookie transport and persists
// any changes after the handler runs. Every request downstream of this
// middleware has a usable session, anonymous or authenticated.
//
// The session is saved before the response body is written so Set-Cookie
// headers land ahead of WriteHeader.
func Session(transport *sessiontransport.Cookie) handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx handler.Context) handler.Response {
			sess, err := transport.Load(ctx)
			if err != nil {
				return response.Error(response.ErrInternalServerError.WithError(err))
			}

			ctx.SetValue(sessionContextKey{}, &sess)

			resp := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				if err := transport.Store(ctx, sess); err != nil {
					return response.ErrInternalServerError.WithError(err)
				}
				return resp(w, r)
			}
		}
	}
}

// GetSession retrieves the request session loaded by the Session middleware.
// Handlers mutate it in place; the middleware persists it after they return.
func GetSession(ctx handler.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return sess, ok
}

// RequireAuth rejects requests without an authenticated session.
//
// API paths get a 401 JSON failure; page paths redirect to the admin login
// form with the original destination recorded on the session, so the login
// handler can send the user back where they were headed.
func RequireAuth() handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx handler.Context) handler.Response {
			sess, ok := GetSession(ctx)
			if !ok || !sess.IsAuthenticated() {
				if isAPIPath(ctx.Request().URL.Path) {
					return response.Error(response.ErrUnauthorized.WithMessage("Authentication required"))
				}

				if sess != nil {
					sess.SetReturnTo(safeReturnPath(ctx.Request().URL))
				}
				return response.Redirect("/admin/login")
			}

			return next(ctx)
		}
	}
}

// RequireRole rejects authenticated sessions whose role does not satisfy the
// required one. Must run after RequireAuth; an unauthenticated session is
// treated as having no role and is rejected the same way.
func RequireRole(role session.Role) handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx handler.Context) handler.Response {
			sess, ok := GetSession(ctx)
			if !ok || !sess.IsAuthenticated() || !sess.HasRole(role) {
				return response.Error(response.ErrForbidden.WithMessage("Insufficient permissions"))
			}

			return next(ctx)
		}
	}
}

// isAPIPath reports whether a path belongs to the JSON API surface, which
// gets status codes instead of login redirects.
func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/admin/api/") || strings.HasPrefix(path, "/api/")
}

// safeReturnPath renders a same-site return destination from the request URL.
// Only path and query are kept, never scheme or host, so the stored value
// cannot redirect off-site after login.
func safeReturnPath(u *url.URL) string {
	path := u.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
