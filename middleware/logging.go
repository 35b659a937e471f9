package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/core/response"
)

// Logging emits one structured log line per request with method, path,
// status, duration and client IP. Runs after RequestID and ClientIP so both
// are available as attributes.
func Logging(log *slog.Logger) handler.Middleware {
	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx handler.Context) handler.Response {
			start := time.Now()

			resp := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
				err := resp(sw, r)

				status := sw.status
				if err != nil {
					status = response.ConvertToHTTPError(err).StatusCode()
				}

				attrs := []any{
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", status),
					slog.Duration("duration", time.Since(start)),
					slog.String("ip", GetClientIP(ctx)),
				}
				if id, ok := GetRequestID(ctx); ok {
					attrs = append(attrs, slog.String("request_id", id))
				}

				switch {
				case status >= http.StatusInternalServerError:
					log.ErrorContext(r.Context(), "request", attrs...)
				case status >= http.StatusBadRequest:
					log.WarnContext(r.Context(), "request", attrs...)
				default:
					log.InfoContext(r.Context(), "request", attrs...)
				}

				return err
			}
		}
	}
}

// statusWriter records the status code written by the handler.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
