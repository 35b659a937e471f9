package handlers

import (
	"fmt"
	"html"
	"log/slog"

	"github.com/SyncSphere7/fou-website/core/binder"
	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/core/response"
	"github.com/SyncSphere7/fou-website/core/validator"
	"github.com/SyncSphere7/fou-website/mailer"
)

// contactResponse is the success envelope for a delivered contact message.
type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Contact handles a public contact form submission and forwards it by mail.
//
// Without a configured mailer the submission is accepted and logged instead
// of delivered, so a local environment can exercise the form end to end.
func (h *Handlers) Contact(ctx handler.Context) handler.Response {
	var in validator.ContactInput
	if err := binder.Bind(ctx.Request(), &in); err != nil {
		return response.Error(response.ErrBadRequest.WithMessage("Invalid request body").WithError(err))
	}

	if violations := in.Validate(); len(violations) > 0 {
		return response.Error(response.ErrBadRequest.
			WithMessage("Validation failed").
			WithErrors(violations))
	}

	if err := h.verifyCaptcha(ctx, in.CaptchaToken); err != nil {
		return response.Error(err)
	}

	if h.cfg.Mail == nil {
		h.logger.InfoContext(ctx, "contact message accepted, mail delivery not configured",
			slog.String("subject", in.Subject))
		return response.JSON(contactResponse{
			Success: true,
			Message: "Your message has been sent successfully!",
		})
	}

	msg := buildContactMail(h.cfg.ContactFrom, h.cfg.ContactTo, in)
	if err := h.cfg.Mail.Send(ctx, msg); err != nil {
		h.logger.ErrorContext(ctx, "contact mail delivery failed", slog.Any("error", err))
		return response.Error(response.ErrServiceUnavailable.
			WithMessage("Unable to send your message right now. Please try again later.").
			WithError(err))
	}

	return response.JSON(contactResponse{
		Success: true,
		Message: "Your message has been sent successfully!",
	})
}

// buildContactMail renders the notification mail for a contact submission.
// Reply-To carries the submitter's address so staff can answer directly,
// while From stays on the site's own domain for deliverability.
func buildContactMail(from, to string, in validator.ContactInput) mailer.Message {
	text := fmt.Sprintf("Name: %s\nEmail: %s\nSubject: %s\n\n%s",
		in.Name, in.Email, in.Subject, in.Message)

	htmlBody := fmt.Sprintf(
		"<h2>New Contact Form Message</h2>"+
			"<p><strong>Name:</strong> %s</p>"+
			"<p><strong>Email:</strong> %s</p>"+
			"<p><strong>Subject:</strong> %s</p>"+
			"<p>%s</p>",
		html.EscapeString(in.Name),
		html.EscapeString(in.Email),
		html.EscapeString(in.Subject),
		html.EscapeString(in.Message))

	return mailer.Message{
		From:    from,
		To:      to,
		ReplyTo: in.Email,
		Subject: "Contact Form: " + in.Subject,
		Text:    text,
		HTML:    htmlBody,
	}
}
