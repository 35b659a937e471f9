package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/core/response"
	"github.com/SyncSphere7/fou-website/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// Limiter is the budget to enforce (required)
	Limiter *ratelimiter.Limiter
	// KeyExtractor defines how to extract the identity key (default: client IP)
	KeyExtractor func(ctx handler.Context) string
	// Message overrides the rejection message shown to the client
	Message string
	// SetHeaders includes X-RateLimit-* information in response headers
	SetHeaders bool
}

// RateLimit creates a rate limiting middleware enforcing one budget.
//
// It runs before any expensive work: a rejected request costs one map
// operation, no validation, no network. Panics if no limiter is provided
// since a route registered with a nil budget is a wiring bug.
func RateLimit(cfg RateLimitConfig) handler.Middleware {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}

	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = GetClientIP
	}

	if cfg.Message == "" {
		cfg.Message = "Too many requests, please try again later."
	}

	return func(next handler.HandlerFunc) handler.HandlerFunc {
		return func(ctx handler.Context) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			key := cfg.KeyExtractor(ctx)
			result, err := cfg.Limiter.Allow(ctx, key)
			if err != nil {
				return response.Error(response.ErrInternalServerError.WithError(err))
			}

			if !result.Allowed() {
				httpErr := response.ErrTooManyRequests.WithMessage(
					fmt.Sprintf("%s Retry in %d seconds.", cfg.Message,
						int(result.RetryAfter().Seconds())+1))
				resp := response.Error(httpErr)
				if cfg.SetHeaders {
					return wrapWithRateLimitHeaders(resp, result)
				}
				return resp
			}

			resp := next(ctx)

			if cfg.SetHeaders {
				return wrapWithRateLimitHeaders(resp, result)
			}
			return resp
		}
	}
}

// wrapWithRateLimitHeaders adds standard rate limiting headers to the
// response: current limit, remaining budget, reset time, and Retry-After
// when blocked.
func wrapWithRateLimitHeaders(resp handler.Response, result *ratelimiter.Result) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		// Clamp to zero to avoid confusing negative values in responses.
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed() && result.RetryAfter() > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter().Seconds())+1))
		}

		return resp(w, r)
	}
}
