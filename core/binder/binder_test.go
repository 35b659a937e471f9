package binder_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyncSphere7/fou-website/core/binder"
)

type input struct {
	Name  string `form:"name" json:"name"`
	Email string `form:"email" json:"email"`
	Token string `form:"g-recaptcha-response" json:"g-recaptcha-response"`
}

func TestBindJSON(t *testing.T) {
	t.Parallel()

	t.Run("decodes a json body", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/",
			strings.NewReader(`{"name":"Jane","email":"jane@x.com"}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		var in input
		require.NoError(t, binder.Bind(req, &in))
		assert.Equal(t, "Jane", in.Name)
		assert.Equal(t, "jane@x.com", in.Email)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{broken`))
		req.Header.Set("Content-Type", "application/json")

		var in input
		require.ErrorIs(t, binder.Bind(req, &in), binder.ErrMalformedBody)
	})
}

func TestBindForm(t *testing.T) {
	t.Parallel()

	t.Run("decodes url-encoded form by tag", func(t *testing.T) {
		t.Parallel()

		form := url.Values{}
		form.Set("name", "Jane")
		form.Set("g-recaptcha-response", "token-123")

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var in input
		require.NoError(t, binder.Bind(req, &in))
		assert.Equal(t, "Jane", in.Name)
		assert.Equal(t, "token-123", in.Token)
		assert.Empty(t, in.Email)
	})
}

func TestBindUnsupportedContentType(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("<xml/>"))
	req.Header.Set("Content-Type", "application/xml")

	var in input
	require.ErrorIs(t, binder.Bind(req, &in), binder.ErrUnsupportedContentType)
}
