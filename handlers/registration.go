package handlers

import (
	"errors"
	"log/slog"

	"github.com/SyncSphere7/fou-website/core/binder"
	"github.com/SyncSphere7/fou-website/core/handler"
	"github.com/SyncSphere7/fou-website/core/response"
	"github.com/SyncSphere7/fou-website/core/validator"
	"github.com/SyncSphere7/fou-website/storage"
)

// registrationResponse is the success envelope for a stored registration.
type registrationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// Register handles a public registration submission.
//
// Order matters: bind, validate (all violations reported at once), bot gate,
// duplicate check, then persist. The phone number is encrypted before it
// touches the store; no plaintext phone is ever written.
func (h *Handlers) Register(ctx handler.Context) handler.Response {
	var in validator.RegistrationInput
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

	existing, err := h.cfg.Store.FindRegistrationByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return response.Error(storageError(err))
	}
	if existing != nil {
		return response.Error(response.ErrBadRequest.WithMessage("This email is already registered."))
	}

	phone, err := h.encryptPhone(ctx, in.Phone)
	if err != nil {
		return response.Error(response.ErrInternalServerError.WithError(err))
	}

	reg := &storage.Registration{
		FullName: in.FullName,
		Email:    in.Email,
		Phone:    phone,
		Country:  optional(in.Country),
		City:     optional(in.City),
		Gender:   optional(in.Gender),
		AgeGroup: optional(in.AgeGroup),
		Interest: in.Interest,
		Message:  optional(in.Message),
	}

	id, err := h.cfg.Store.InsertRegistration(ctx, reg)
	if err != nil {
		// Lost the race against a concurrent submission of the same email.
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return response.Error(response.ErrBadRequest.WithMessage("This email is already registered."))
		}
		return response.Error(storageError(err))
	}

	h.logger.InfoContext(ctx, "registration stored",
		slog.Int64("id", id),
		slog.String("interest", in.Interest))

	return response.JSON(registrationResponse{
		Success: true,
		Message: "Registration successful! We will contact you soon.",
		UserID:  id,
	})
}

// encryptPhone seals an optional phone number for storage. Without a cipher
// the value is dropped rather than stored in plaintext; the startup log
// already warned that field encryption is off.
func (h *Handlers) encryptPhone(ctx handler.Context, phone string) (*string, error) {
	if phone == "" {
		return nil, nil
	}
	if h.cfg.Cipher == nil {
		h.logger.WarnContext(ctx, "phone number discarded, no encryption key configured")
		return nil, nil
	}
	return h.cfg.Cipher.EncryptPtr(&phone)
}
