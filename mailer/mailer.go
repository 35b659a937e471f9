// Package mailer delivers outbound mail for the contact pipeline.
//
// Delivery is single-shot: a failed send surfaces as ErrDeliveryFailed and
// the core never retries; the submitter is asked to try again instead.
package mailer

import (
	"context"
	"errors"
)

var (
	// ErrInvalidConfig is returned when a mailer is constructed with
	// incomplete configuration.
	ErrInvalidConfig = errors.New("invalid mailer configuration")
	// ErrDeliveryFailed is the single failure condition for sends.
	ErrDeliveryFailed = errors.New("mail delivery failed")
)

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends messages. Implementations must bound the send with the
// context so a slow provider cannot hold a request open.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
