package router_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/core/response"
	"github.com/SyncSphere7/fou-website/core/router"
)

func get(rt *router.Router, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouterDispatch(t *testing.T) {
	t.Parallel()

	rt := router.New()
	rt.Get("/ping", func(ctx handler.Context) handler.Response {
		return response.String("pong")
	})

	t.Run("routes by method and pattern", func(t *testing.T) {
		t.Parallel()

		rec := get(rt, "/ping")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pong", rec.Body.String())
	})

	t.Run("wrong method is rejected", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRouterMiddlewareOrder(t *testing.T) {
	t.Parallel()

	tag := func(name string, calls *[]string) handler.Middleware {
		return func(next handler.HandlerFunc) handler.HandlerFunc {
			return func(ctx handler.Context) handler.Response {
				*calls = append(*calls, name)
				return next(ctx)
			}
		}
	}

	t.Run("global before per-route, in registration order", func(t *testing.T) {
		t.Parallel()

		var calls []string
		rt := router.New()
		rt.Use(tag("global-1", &calls), tag("global-2", &calls))
		rt.Get("/x", func(ctx handler.Context) handler.Response {
			calls = append(calls, "handler")
			return response.String("ok")
		}, tag("route", &calls))

		get(rt, "/x")
		assert.Equal(t, []string{"global-1", "global-2", "route", "handler"}, calls)
	})

	t.Run("first rejection wins", func(t *testing.T) {
		t.Parallel()

		reject := func(next handler.HandlerFunc) handler.HandlerFunc {
			return func(ctx handler.Context) handler.Response {
				return response.Error(response.ErrTooManyRequests)
			}
		}

		var reached bool
		var calls []string
		rt := router.New()
		rt.Get("/x", func(ctx handler.Context) handler.Response {
			reached = true
			return response.String("ok")
		}, reject, tag("after-reject", &calls))

		rec := get(rt, "/x")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.False(t, reached, "handler must not run after a rejection")
		assert.Empty(t, calls, "middleware after a rejection must not run")
	})
}

func TestRouterErrorEnvelope(t *testing.T) {
	t.Parallel()

	rt := router.New()
	rt.Get("/bad", func(ctx handler.Context) handler.Response {
		return response.Error(response.ErrBadRequest.WithMessage("Validation failed"))
	})
	rt.Get("/boom", func(ctx handler.Context) handler.Response {
		return response.Error(errors.New("connection pool exhausted"))
	})

	t.Run("typed errors keep status and message", func(t *testing.T) {
		t.Parallel()

		rec := get(rt, "/bad")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Validation failed"}`, rec.Body.String())
	})

	t.Run("unknown errors become a generic 500", func(t *testing.T) {
		t.Parallel()

		rec := get(rt, "/boom")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection pool",
			"internal detail must not leak to the client")
	})
}
