package router

import (
	"log/slog"
	"net/http"

	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/core/response"
)

// Router dispatches requests to handlers through an ordered middleware chain.
// Route registration is declarative: the middleware listed for a route run in
// order and the first rejection wins, nothing after a rejecting middleware
// executes.
type Router struct {
	mux          *http.ServeMux
	middlewares  []handler.Middleware
	errorHandler handler.ErrorHandler
	logger       *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithErrorHandler overrides the default JSON error handler.
func WithErrorHandler(eh handler.ErrorHandler) Option {
	return func(r *Router) {
		if eh != nil {
			r.errorHandler = eh
		}
	}
}

// WithLogger sets the logger used for render failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a router backed by net/http's ServeMux method patterns.
func New(opts ...Option) *Router {
	r := &Router{
		mux:    http.NewServeMux(),
		logger: slog.Default(),
	}
	r.errorHandler = r.jsonErrorHandler

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use appends middleware applied to every route registered afterwards.
func (rt *Router) Use(middlewares ...handler.Middleware) {
	rt.middlewares = append(rt.middlewares, middlewares...)
}

// Get registers a GET route with optional per-route middleware.
func (rt *Router) Get(pattern string, h handler.HandlerFunc, mws ...handler.Middleware) {
	rt.Handle(http.MethodGet, pattern, h, mws...)
}

// Post registers a POST route with optional per-route middleware.
func (rt *Router) Post(pattern string, h handler.HandlerFunc, mws ...handler.Middleware) {
	rt.Handle(http.MethodPost, pattern, h, mws...)
}

// Handle registers a route for the given method and pattern.
// Global middleware run before per-route middleware.
func (rt *Router) Handle(method, pattern string, h handler.HandlerFunc, mws ...handler.Middleware) {
	stack := make([]handler.Middleware, 0, len(rt.middlewares)+len(mws))
	stack = append(stack, rt.middlewares...)
	stack = append(stack, mws...)
	endpoint := chain(stack, h)

	rt.mux.HandleFunc(method+" "+pattern, func(w http.ResponseWriter, r *http.Request) {
		ctx := handler.NewContext(w, r)
		resp := endpoint(ctx)
		if resp == nil {
			return
		}
		if err := resp(ctx.ResponseWriter(), ctx.Request()); err != nil {
			rt.errorHandler(ctx, err)
		}
	})
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// jsonErrorHandler converts any error to the JSON failure envelope.
// Server errors are logged with their cause; the client only sees the
// generic message.
func (rt *Router) jsonErrorHandler(ctx handler.Context, err error) {
	httpErr := response.ConvertToHTTPError(err)
	if httpErr.Status >= http.StatusInternalServerError {
		rt.logger.ErrorContext(ctx, "request failed",
			slog.String("path", ctx.Request().URL.Path),
			slog.Any("error", err))
	}

	resp := response.JSONWithStatus(httpErr, httpErr.Status)
	if renderErr := resp(ctx.ResponseWriter(), ctx.Request()); renderErr != nil {
		rt.logger.ErrorContext(ctx, "failed to render error response",
			slog.Any("error", renderErr))
	}
}

// chain builds a single handler from a middleware stack and endpoint.
func chain(middlewares []handler.Middleware, endpoint handler.HandlerFunc) handler.HandlerFunc {
	h := endpoint
	// Wrap in reverse order so the first middleware runs first.
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
