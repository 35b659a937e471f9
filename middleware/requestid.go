package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/SyncSphere7/fou-website/core/handler"
)

// requestIDContextKey is used as a key for storing request ID in request context.
type requestIDContextKey struct{}

// requestIDHeader is the header carrying the request ID in responses.
const requestIDHeader = "X-Request-ID"

// RequestID assigns a unique identifier to each request for tracing and
// logging. The ID is stored in context and added to response headers.
func RequestID() handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx handler.Context) handler.Response {
			requestID := ctx.Request().Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx.SetValue(requestIDContextKey{}, requestID)

			resp := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Set(requestIDHeader, requestID)
				return resp(w, r)
			}
		}
	}
}

// GetRequestID retrieves the request ID from the request context.
func GetRequestID(ctx handler.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey{}).(string)
	return id, ok
}
