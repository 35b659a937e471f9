package handler

import (
	"context"
	"net/http"
	"time"
)

// Context defines the contract for request contexts.
// It embeds context.Context so handlers can pass it directly to
// stores, mailers and other blocking collaborators.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	SetValue(key, val any)
}

// NewContext creates a request context wrapping the given writer and request.
func NewContext(w http.ResponseWriter, r *http.Request) Context {
	return &requestContext{w: w, r: r}
}

// requestContext is the default Context implementation.
// Values set via SetValue are stored on the request's context so they
// survive handler-to-middleware round trips.
type requestContext struct {
	w http.ResponseWriter
	r *http.Request
}

func (c *requestContext) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.r.Context().Done()
}

func (c *requestContext) Err() error {
	return c.r.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.r.Context().Value(key)
}

func (c *requestContext) Request() *http.Request {
	return c.r
}

func (c *requestContext) ResponseWriter() http.ResponseWriter {
	return c.w
}

func (c *requestContext) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
}
