package middleware

import (
	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/pkg/clientip"
)

// clientIPContextKey is used as a key for storing client IP in request context.
type clientIPContextKey struct{}

// ClientIP extracts the real client IP once per request and stores it in the
// request context. Rate limiting and bot verification both key off it, so it
// must run before either.
func ClientIP() handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx handler.Context) handler.Response {
			ctx.SetValue(clientIPContextKey{}, clientip.GetIP(ctx.Request()))
			return next(ctx)
		}
	}
}

// GetClientIP retrieves the client IP address from the request context,
// falling back to direct extraction when the middleware did not run.
func GetClientIP(ctx handler.Context) string {
	if ip, ok := ctx.Value(clientIPContextKey{}).(string); ok {
		return ip
	}
	return clientip.GetIP(ctx.Request())
}
