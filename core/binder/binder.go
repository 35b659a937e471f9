// Package binder decodes request bodies into input structs.
//
// Public forms submit either application/json (the marketing SPA) or
// classic url-encoded form posts; both bind through the same struct using
// `json` and `form` tags.
package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"
)

// maxBodySize bounds request bodies; every form in the system fits well
// under 1MB and anything larger is abuse.
const maxBodySize = 1 << 20

var (
	// ErrUnsupportedContentType is returned for bodies that are neither JSON
	// nor form-encoded.
	ErrUnsupportedContentType = errors.New("unsupported content type")
	// ErrMalformedBody is returned when the body cannot be parsed at all.
	ErrMalformedBody = errors.New("malformed request body")
)

// Bind decodes the request body into v, which must be a pointer to a struct
// with string fields tagged `form:"name"`.
func Bind(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)

	contentType := r.Header.Get("Content-Type")
	mediaType := contentType
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			mediaType = mt
		}
	}

	switch {
	case strings.HasSuffix(mediaType, "/json"):
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return errors.Join(ErrMalformedBody, err)
		}
		return nil
	case mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			return errors.Join(ErrMalformedBody, err)
		}
		return bindForm(r.PostForm, v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
}

// bindForm copies form values into string fields by `form` tag.
func bindForm(values map[string][]string, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("binder: must pass a pointer to struct, got %T", v)
	}

	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		if !field.CanSet() || field.Kind() != reflect.String {
			continue
		}

		tag := rt.Field(i).Tag.Get("form")
		if tag == "" || tag == "-" {
			continue
		}

		if vals, ok := values[tag]; ok && len(vals) > 0 {
			field.SetString(vals[0])
		}
	}

	return nil
}
