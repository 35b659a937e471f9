package secrets_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyncSphere7/fou-website/pkg/secrets"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("accepts 32 byte key", func(t *testing.T) {
		t.Parallel()

		c, err := secrets.New(testKey)
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("accepts longer key using first 32 bytes", func(t *testing.T) {
		t.Parallel()

		c, err := secrets.New(testKey + "extra-material")
		require.NoError(t, err)

		// Envelopes sealed under the long key open under its 32-byte prefix.
		envelope, err := c.Encrypt("hello")
		require.NoError(t, err)

		prefix, err := secrets.New(testKey)
		require.NoError(t, err)

		plaintext, err := prefix.Decrypt(envelope)
		require.NoError(t, err)
		assert.Equal(t, "hello", plaintext)
	})

	t.Run("rejects short key", func(t *testing.T) {
		t.Parallel()

		_, err := secrets.New("too-short")
		require.ErrorIs(t, err, secrets.ErrInvalidKey)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		t.Parallel()

		_, err := secrets.New("")
		require.ErrorIs(t, err, secrets.ErrInvalidKey)
	})
}

func TestCipherRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := secrets.New(testKey)
	require.NoError(t, err)

	t.Run("decrypt returns original plaintext", func(t *testing.T) {
		t.Parallel()

		for _, plaintext := range []string{
			"+256 700 123456",
			"",
			"unicode ünïcödé ✓",
			strings.Repeat("x", 4096),
		} {
			envelope, err := c.Encrypt(plaintext)
			require.NoError(t, err)

			got, err := c.Decrypt(envelope)
			require.NoError(t, err)
			assert.Equal(t, plaintext, got)
		}
	})

	t.Run("same plaintext produces distinct envelopes", func(t *testing.T) {
		t.Parallel()

		first, err := c.Encrypt("+256 700 123456")
		require.NoError(t, err)
		second, err := c.Encrypt("+256 700 123456")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("envelope is hex nonce and hex ciphertext", func(t *testing.T) {
		t.Parallel()

		envelope, err := c.Encrypt("value")
		require.NoError(t, err)

		nonce, ct, found := strings.Cut(envelope, ":")
		require.True(t, found)
		assert.Len(t, nonce, 24) // 12-byte GCM nonce, hex encoded
		assert.NotEmpty(t, ct)
	})
}

func TestCipherDecryptFailsClosed(t *testing.T) {
	t.Parallel()

	c, err := secrets.New(testKey)
	require.NoError(t, err)

	t.Run("malformed envelope", func(t *testing.T) {
		t.Parallel()

		for _, envelope := range []string{
			"",
			"no-separator",
			"zzzz:abcd",       // non-hex nonce
			"abcd:zzzz",       // non-hex ciphertext
			"abcd:0011223344", // nonce too short
		} {
			_, err := c.Decrypt(envelope)
			assert.ErrorIs(t, err, secrets.ErrInvalidEnvelope, "envelope %q", envelope)
		}
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		t.Parallel()

		envelope, err := c.Encrypt("sensitive")
		require.NoError(t, err)

		// Flip one hex digit of the ciphertext half.
		tampered := []byte(envelope)
		last := len(tampered) - 1
		if tampered[last] == '0' {
			tampered[last] = '1'
		} else {
			tampered[last] = '0'
		}

		_, err = c.Decrypt(string(tampered))
		require.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()

		envelope, err := c.Encrypt("sensitive")
		require.NoError(t, err)

		other, err := secrets.New("another-key-another-key-another-key!")
		require.NoError(t, err)

		_, err = other.Decrypt(envelope)
		require.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})
}

func TestCipherEncryptPtr(t *testing.T) {
	t.Parallel()

	c, err := secrets.New(testKey)
	require.NoError(t, err)

	t.Run("nil stays nil", func(t *testing.T) {
		t.Parallel()

		got, err := c.EncryptPtr(nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("empty stays nil", func(t *testing.T) {
		t.Parallel()

		empty := ""
		got, err := c.EncryptPtr(&empty)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("value round-trips", func(t *testing.T) {
		t.Parallel()

		phone := "+256 700 123456"
		envelope, err := c.EncryptPtr(&phone)
		require.NoError(t, err)
		require.NotNil(t, envelope)
		assert.NotEqual(t, phone, *envelope)

		got, err := c.Decrypt(*envelope)
		require.NoError(t, err)
		assert.Equal(t, phone, got)
	})
}

func TestCipherDecryptOrEmpty(t *testing.T) {
	t.Parallel()

	c, err := secrets.New(testKey)
	require.NoError(t, err)

	t.Run("nil and empty yield empty", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, c.DecryptOrEmpty(nil))
		empty := ""
		assert.Empty(t, c.DecryptOrEmpty(&empty))
	})

	t.Run("garbage yields empty instead of error", func(t *testing.T) {
		t.Parallel()

		garbage := "not-an-envelope"
		assert.Empty(t, c.DecryptOrEmpty(&garbage))
	})

	t.Run("valid envelope yields plaintext", func(t *testing.T) {
		t.Parallel()

		envelope, err := c.Encrypt("+256 700 123456")
		require.NoError(t, err)
		assert.Equal(t, "+256 700 123456", c.DecryptOrEmpty(&envelope))
	})
}
