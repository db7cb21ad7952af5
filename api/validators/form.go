package validators

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
)

const multipartMemory = 8 << 20

// ParseForm parses urlencoded and multipart bodies. Multipart parts beyond
// multipartMemory spill to temp files.
func ParseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		if tooLarge := asMaxBytes(err); tooLarge != nil {
			return tooLarge
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	return nil
}

// FormErrors collects per-field problems while reading a form.
type FormErrors map[string]string

// Err returns a validation error carrying the collected details, or nil.
func (f FormErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string(f))
}

// FormString returns the trimmed form value truncated to maxLen.
func FormString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.FormValue(key), maxLen)
}

// Int reads a whole number. Missing values are reported as required.
func (f FormErrors) Int(r *http.Request, key string) int {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		f[key] = "is required"
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		f[key] = "must be a whole number"
		return 0
	}
	return value
}

// Decimal reads a decimal amount. Missing values are reported as required.
func (f FormErrors) Decimal(r *http.Request, key string) decimal.Decimal {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		f[key] = "is required"
		return decimal.Zero
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		f[key] = "must be a number"
		return decimal.Zero
	}
	return value
}

// Upload is a file part pulled from a multipart form.
type Upload struct {
	Filename string
	Content  io.ReadCloser
}

// FormFile returns the named file part, or nil when the field is absent or
// the browser sent an empty file input.
func FormFile(r *http.Request, field string) (*Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file upload").WithDetails(map[string]string{field: "could not be read"})
	}
	if header.Size == 0 && header.Filename == "" {
		_ = file.Close()
		return nil, nil
	}
	return &Upload{Filename: header.Filename, Content: file}, nil
}
