package validators

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
)

const maxQueryLen = 255

// QueryString returns a trimmed query parameter capped at a sane length.
func QueryString(r *http.Request, key string) string {
	return SanitizeString(r.URL.Query().Get(key), maxQueryLen)
}

// PathID parses a positive numeric route parameter.
func PathID(r *http.Request, key string) (uint, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]any{"field": key})
	}
	return uint(value), nil
}

// PathString returns a required, unescaped route parameter.
func PathString(r *http.Request, key string) (string, error) {
	value, err := url.PathUnescape(chi.URLParam(r, key))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid path parameter").WithDetails(map[string]any{"field": key})
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "missing path parameter").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}
