// Package secrets provides field-level encryption for sensitive form data.
//
// Values are encrypted with AES-256-GCM under a process-wide key and stored
// as a plain-text envelope of hex(nonce) + ":" + hex(ciphertext), safe for a
// text column. A fresh nonce is drawn per call, so encrypting the same
// plaintext twice yields different envelopes and stored ciphertexts cannot
// be correlated.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	// KeyLength is the required encryption key length for AES-256.
	KeyLength = 32
	// envelopeSeparator splits the nonce and ciphertext halves of an envelope.
	envelopeSeparator = ":"
)

var (
	// ErrInvalidKey is returned when the encryption key is missing or too short.
	// A short key must never be padded or derived from arbitrary input: doing so
	// would silently change the key between deployments and make previously
	// encrypted data undecryptable.
	ErrInvalidKey = errors.New("encryption key must be at least 32 bytes")
	// ErrInvalidEnvelope is returned when an envelope cannot be parsed.
	ErrInvalidEnvelope = errors.New("malformed encrypted envelope")
	// ErrDecryptionFailed is returned when ciphertext authentication fails,
	// typically a wrong key or corrupted data.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Cipher encrypts and decrypts individual field values.
// It is safe for concurrent use.
type Cipher struct {
	aead   cipher.AEAD
	logger *slog.Logger
}

// Option configures a Cipher.
type Option func(*Cipher)

// WithLogger sets the logger used by best-effort decryption paths.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cipher) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Cipher from the given key material.
// Only the first 32 bytes of the key are used; shorter keys are rejected
// so a misconfigured deployment fails at startup instead of writing data
// under an improvised key.
func New(key string, opts ...Option) (*Cipher, error) {
	if len(key) < KeyLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(key))
	}

	block, err := aes.NewCipher([]byte(key[:KeyLength]))
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	c := &Cipher{
		aead:   aead,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encrypt encrypts plaintext into a storable envelope.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + envelopeSeparator + hex.EncodeToString(ciphertext), nil
}

// EncryptPtr encrypts an optional field. Nil or empty input stays nil:
// absent optional fields are stored as NULL, not as an encrypted empty string.
func (c *Cipher) EncryptPtr(plaintext *string) (*string, error) {
	if plaintext == nil || *plaintext == "" {
		return nil, nil
	}
	envelope, err := c.Encrypt(*plaintext)
	if err != nil {
		return nil, err
	}
	return &envelope, nil
}

// Decrypt parses an envelope and returns the original plaintext.
// It fails closed: malformed envelopes, a wrong key, or tampered ciphertext
// all produce a typed error and never a corrupted plaintext.
func (c *Cipher) Decrypt(envelope string) (string, error) {
	noncePart, ctPart, ok := strings.Cut(envelope, envelopeSeparator)
	if !ok {
		return "", ErrInvalidEnvelope
	}

	nonce, err := hex.DecodeString(noncePart)
	if err != nil || len(nonce) != c.aead.NonceSize() {
		return "", ErrInvalidEnvelope
	}

	ciphertext, err := hex.DecodeString(ctPart)
	if err != nil {
		return "", ErrInvalidEnvelope
	}

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// DecryptOrEmpty decrypts an optional envelope for display purposes.
// Failures are logged and reported as an empty string since admin views of
// sensitive fields are best-effort, not correctness-critical.
func (c *Cipher) DecryptOrEmpty(envelope *string) string {
	if envelope == nil || *envelope == "" {
		return ""
	}
	plaintext, err := c.Decrypt(*envelope)
	if err != nil {
		c.logger.Warn("failed to decrypt stored field", slog.Any("error", err))
		return ""
	}
	return plaintext
}
