// Package recaptcha verifies Google reCAPTCHA challenge tokens.
//
// Verification is a single POST per submission, no retries: a client whose
// verification fails must resubmit the form. A transport or decode failure is
// surfaced as an error distinct from a rejected token, so callers can tell
// "bot rejected" apart from "verifier unreachable" and fail closed on both.
package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// VerifyURL is Google's siteverify endpoint.
const VerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// defaultTimeout bounds the verification round trip so a slow verifier
// cannot hold form submissions open indefinitely.
const defaultTimeout = 10 * time.Second

var (
	// ErrMissingSecret is returned when constructing a client without a secret.
	ErrMissingSecret = errors.New("recaptcha secret is required")
	// ErrUnreachable is returned when the verification service cannot be reached.
	ErrUnreachable = errors.New("recaptcha verification service unreachable")
	// ErrInvalidResponse is returned when the verifier's reply cannot be decoded.
	ErrInvalidResponse = errors.New("invalid recaptcha verification response")
)

// Result is the verifier's decision for a single token.
// It is consumed once per request and never cached.
type Result struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Client verifies challenge tokens against the siteverify endpoint.
type Client struct {
	secret     string
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the verification endpoint, used in tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New creates a verification client for the given secret.
func New(secret string, opts ...Option) (*Client, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	c := &Client{
		secret:     secret,
		endpoint:   VerifyURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Verify checks a client-supplied token with the verification service.
//
// A nil error with Result.Success false means the verifier rejected the
// token; a non-nil error means the verdict is unknown (unreachable or
// malformed reply) and the caller must treat the submission as rejected.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (*Result, error) {
	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Join(ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnreachable, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Join(ErrInvalidResponse, err)
	}

	return &result, nil
}
