package response

import (
	"errors"
	"net/http"
)

// HTTPError represents a structured error response that implements the error
// interface. Its JSON shape is the failure envelope every endpoint returns:
// {"success":false,"message":...,"errors":[...]}.
type HTTPError struct {
	Status  int    `json:"-"`                // HTTP status code (not in JSON)
	Success bool   `json:"success"`          // Always false for errors
	Message string `json:"message"`          // Human-readable message
	Errors  any    `json:"errors,omitempty"` // Optional field-level violations
	cause   error
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e HTTPError) Unwrap() error {
	return e.cause
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithErrors returns a copy of the error carrying field-level violations.
func (e HTTPError) WithErrors(violations any) HTTPError {
	e.Errors = violations
	return e
}

// WithError returns a copy of the error with an error cause attached.
// The cause is for server-side logs only and never serialized to the client.
func (e HTTPError) WithError(err error) HTTPError {
	e.cause = err
	return e
}

// Predefined HTTP errors using http.StatusText for default messages.
var (
	ErrBadRequest = HTTPError{
		Status:  http.StatusBadRequest,
		Message: http.StatusText(http.StatusBadRequest),
	}

	ErrUnauthorized = HTTPError{
		Status:  http.StatusUnauthorized,
		Message: http.StatusText(http.StatusUnauthorized),
	}

	ErrForbidden = HTTPError{
		Status:  http.StatusForbidden,
		Message: http.StatusText(http.StatusForbidden),
	}

	ErrNotFound = HTTPError{
		Status:  http.StatusNotFound,
		Message: http.StatusText(http.StatusNotFound),
	}

	ErrMethodNotAllowed = HTTPError{
		Status:  http.StatusMethodNotAllowed,
		Message: http.StatusText(http.StatusMethodNotAllowed),
	}

	ErrConflict = HTTPError{
		Status:  http.StatusConflict,
		Message: http.StatusText(http.StatusConflict),
	}

	ErrUnprocessableEntity = HTTPError{
		Status:  http.StatusUnprocessableEntity,
		Message: http.StatusText(http.StatusUnprocessableEntity),
	}

	ErrTooManyRequests = HTTPError{
		Status:  http.StatusTooManyRequests,
		Message: http.StatusText(http.StatusTooManyRequests),
	}

	ErrInternalServerError = HTTPError{
		Status:  http.StatusInternalServerError,
		Message: http.StatusText(http.StatusInternalServerError),
	}

	ErrBadGateway = HTTPError{
		Status:  http.StatusBadGateway,
		Message: http.StatusText(http.StatusBadGateway),
	}

	ErrServiceUnavailable = HTTPError{
		Status:  http.StatusServiceUnavailable,
		Message: http.StatusText(http.StatusServiceUnavailable),
	}
)

// statusCode is an interface that errors can implement
// to provide a custom HTTP status code.
type statusCode interface {
	StatusCode() int
}

// ConvertToHTTPError converts any error to an HTTPError.
// Unknown errors map to a generic 500 so internal detail never
// reaches the client.
func ConvertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	if sc, ok := err.(statusCode); ok {
		status = sc.StatusCode()
	}

	base := HTTPError{
		Status:  status,
		Message: http.StatusText(status),
	}
	return base.WithError(err)
}
