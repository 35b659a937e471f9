package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// PostmarkConfig holds Postmark API configuration.
type PostmarkConfig struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
}

// Postmark implements Mailer over Postmark's transactional API.
type Postmark struct {
	client *postmark.Client
}

var _ Mailer = (*Postmark)(nil)

// NewPostmark creates a Postmark-backed mailer. Both tokens are required,
// enforcing explicit configuration rather than silent failures in production.
func NewPostmark(cfg PostmarkConfig) (*Postmark, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: Postmark server token is required", ErrInvalidConfig)
	}
	if cfg.AccountToken == "" {
		return nil, fmt.Errorf("%w: Postmark account token is required", ErrInvalidConfig)
	}

	return &Postmark{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
	}, nil
}

// Send delivers the message through Postmark.
func (c *Postmark) Send(ctx context.Context, msg Message) error {
	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:     msg.From,
		ReplyTo:  msg.ReplyTo,
		To:       msg.To,
		Subject:  msg.Subject,
		TextBody: msg.Text,
		HTMLBody: msg.HTML,
	})
	if err != nil {
		return errors.Join(ErrDeliveryFailed, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrDeliveryFailed,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
