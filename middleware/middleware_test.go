package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/core/response"
	"github.com/SyncSphere7/fou-website/core/session"
	"github.com/SyncSphere7/fou-website/core/sessiontransport"
	"github.com/SyncSphere7/fou-website/middleware"
	"github.com/SyncSphere7/fou-website/pkg/ratelimiter"
)

const testSecret = "test-signing-secret-test-signing-secret"

// run executes a middleware chain against a request and renders the result.
func run(t *testing.T, req *http.Request, h handler.HandlerFunc, mws ...handler.Middleware) *httptest.ResponseRecorder {
	t.Helper()

	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}

	rec := httptest.NewRecorder()
	ctx := handler.NewContext(rec, req)
	resp := h(ctx)
	require.NotNil(t, resp)
	if err := resp(ctx.ResponseWriter(), ctx.Request()); err != nil {
		httpErr := response.ConvertToHTTPError(err)
		renderErr := response.JSONWithStatus(httpErr, httpErr.Status)(ctx.ResponseWriter(), ctx.Request())
		require.NoError(t, renderErr)
	}
	return rec
}

func okHandler(ctx handler.Context) handler.Response {
	return response.String("ok")
}

func newSessionTransport(t *testing.T) *sessiontransport.Cookie {
	t.Helper()

	manager := session.NewManager(session.NewMemoryStore(), time.Hour, time.Minute)
	transport, err := sessiontransport.New(manager, testSecret, sessiontransport.WithSecure(false))
	require.NoError(t, err)
	return transport
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	t.Run("prefers forwarded header", func(t *testing.T) {
		t.Parallel()

		var got string
		h := func(ctx handler.Context) handler.Response {
			got = middleware.GetClientIP(ctx)
			return response.String("ok")
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		run(t, req, h, middleware.ClientIP())

		assert.Equal(t, "203.0.113.9", got)
	})

	t.Run("falls back to remote addr", func(t *testing.T) {
		t.Parallel()

		var got string
		h := func(ctx handler.Context) handler.Response {
			got = middleware.GetClientIP(ctx)
			return response.String("ok")
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.7:4242"
		run(t, req, h, middleware.ClientIP())

		assert.Equal(t, "198.51.100.7", got)
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates and echoes an id", func(t *testing.T) {
		t.Parallel()

		var got string
		h := func(ctx handler.Context) handler.Response {
			id, ok := middleware.GetRequestID(ctx)
			require.True(t, ok)
			got = id
			return response.String("ok")
		}

		rec := run(t, httptest.NewRequest(http.MethodGet, "/", nil), h, middleware.RequestID())
		assert.NotEmpty(t, got)
		assert.Equal(t, got, rec.Header().Get("X-Request-ID"))
	})

	t.Run("preserves an incoming id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "upstream-id")

		rec := run(t, req, okHandler, middleware.RequestID())
		assert.Equal(t, "upstream-id", rec.Header().Get("X-Request-ID"))
	})
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	newLimiter := func(t *testing.T, limit int) *ratelimiter.Limiter {
		t.Helper()
		l, err := ratelimiter.New(ratelimiter.NewMemoryStore(),
			ratelimiter.Config{Limit: limit, Window: time.Minute})
		require.NoError(t, err)
		return l
	}

	t.Run("sets budget headers", func(t *testing.T) {
		t.Parallel()

		mw := middleware.RateLimit(middleware.RateLimitConfig{
			Limiter:    newLimiter(t, 5),
			SetHeaders: true,
		})

		rec := run(t, httptest.NewRequest(http.MethodGet, "/", nil), okHandler, middleware.ClientIP(), mw)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("rejects over budget with retry information", func(t *testing.T) {
		t.Parallel()

		mw := middleware.RateLimit(middleware.RateLimitConfig{
			Limiter:    newLimiter(t, 1),
			SetHeaders: true,
		})

		req := func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) }

		rec := run(t, req(), okHandler, middleware.ClientIP(), mw)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = run(t, req(), okHandler, middleware.ClientIP(), mw)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "Retry in")
	})

	t.Run("rejected request never reaches the handler", func(t *testing.T) {
		t.Parallel()

		mw := middleware.RateLimit(middleware.RateLimitConfig{Limiter: newLimiter(t, 1)})

		var handled int
		h := func(ctx handler.Context) handler.Response {
			handled++
			return response.String("ok")
		}

		req := func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) }
		run(t, req(), h, middleware.ClientIP(), mw)
		run(t, req(), h, middleware.ClientIP(), mw)

		assert.Equal(t, 1, handled)
	})

	t.Run("skip bypasses the budget", func(t *testing.T) {
		t.Parallel()

		mw := middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: newLimiter(t, 1),
			Skip:    func(handler.Context) bool { return true },
		})

		for range 3 {
			rec := run(t, httptest.NewRequest(http.MethodGet, "/", nil), okHandler, middleware.ClientIP(), mw)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("panics without a limiter", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			middleware.RateLimit(middleware.RateLimitConfig{})
		})
	})
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	t.Run("api path gets 401", func(t *testing.T) {
		t.Parallel()

		transport := newSessionTransport(t)
		req := httptest.NewRequest(http.MethodGet, "/admin/api/users", nil)

		rec := run(t, req, okHandler, middleware.Session(transport), middleware.RequireAuth())
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("page path redirects to login and preserves destination", func(t *testing.T) {
		t.Parallel()

		transport := newSessionTransport(t)
		req := httptest.NewRequest(http.MethodGet, "/admin/dashboard?tab=recent", nil)

		rec := run(t, req, okHandler, middleware.Session(transport), middleware.RequireAuth())
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

		// The original destination survives on the stored session.
		var replay *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == "fou_session" {
				replay = c
			}
		}
		require.NotNil(t, replay)

		var returnTo string
		inspect := func(ctx handler.Context) handler.Response {
			sess, ok := middleware.GetSession(ctx)
			require.True(t, ok)
			returnTo = sess.ReturnTo
			return response.String("ok")
		}

		next := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
		next.AddCookie(replay)
		run(t, next, inspect, middleware.Session(transport))

		assert.Equal(t, "/admin/dashboard?tab=recent", returnTo)
	})

	t.Run("authenticated session passes", func(t *testing.T) {
		t.Parallel()

		transport := newSessionTransport(t)

		login := func(ctx handler.Context) handler.Response {
			sess, ok := middleware.GetSession(ctx)
			require.True(t, ok)
			require.NoError(t, sess.Authenticate(1, "admin", session.RoleAdmin))
			return response.String("ok")
		}
		first := run(t, httptest.NewRequest(http.MethodGet, "/admin/login", nil), login,
			middleware.Session(transport))

		var cookie *http.Cookie
		for _, c := range first.Result().Cookies() {
			if c.Name == "fou_session" {
				cookie = c
			}
		}
		require.NotNil(t, cookie)

		req := httptest.NewRequest(http.MethodGet, "/admin/api/users", nil)
		req.AddCookie(cookie)
		rec := run(t, req, okHandler, middleware.Session(transport), middleware.RequireAuth())
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	loginAs := func(t *testing.T, transport *sessiontransport.Cookie, role session.Role) *http.Cookie {
		t.Helper()

		login := func(ctx handler.Context) handler.Response {
			sess, ok := middleware.GetSession(ctx)
			require.True(t, ok)
			require.NoError(t, sess.Authenticate(1, "admin", role))
			return response.String("ok")
		}
		rec := run(t, httptest.NewRequest(http.MethodGet, "/admin/login", nil), login,
			middleware.Session(transport))

		for _, c := range rec.Result().Cookies() {
			if c.Name == "fou_session" {
				return c
			}
		}
		t.Fatal("no session cookie")
		return nil
	}

	t.Run("admin satisfies editor requirement", func(t *testing.T) {
		t.Parallel()

		transport := newSessionTransport(t)
		cookie := loginAs(t, transport, session.RoleAdmin)

		req := httptest.NewRequest(http.MethodGet, "/admin/api/users", nil)
		req.AddCookie(cookie)
		rec := run(t, req, okHandler,
			middleware.Session(transport), middleware.RequireAuth(), middleware.RequireRole(session.RoleEditor))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("editor denied admin-only access", func(t *testing.T) {
		t.Parallel()

		transport := newSessionTransport(t)
		cookie := loginAs(t, transport, session.RoleEditor)

		req := httptest.NewRequest(http.MethodGet, "/admin/api/users", nil)
		req.AddCookie(cookie)
		rec := run(t, req, okHandler,
			middleware.Session(transport), middleware.RequireAuth(), middleware.RequireRole(session.RoleAdmin))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous session denied", func(t *testing.T) {
		t.Parallel()

		transport := newSessionTransport(t)
		req := httptest.NewRequest(http.MethodGet, "/admin/api/users", nil)
		rec := run(t, req, okHandler,
			middleware.Session(transport), middleware.RequireRole(session.RoleEditor))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
