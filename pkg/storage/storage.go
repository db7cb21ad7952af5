// Package storage persists uploaded attachments (waste photos, purchase
// receipts) and serves them back by name.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
)

// Store is the file store consumed by the domain services.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (Object, error)
	Open(ctx context.Context, name string) (io.ReadCloser, Object, error)
	Delete(ctx context.Context, name string) error
}

// Object describes a stored file.
type Object struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Upload is a validated file ready to be written by a driver.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

var (
	unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

	allowedContentTypes = []string{
		"image/png",
		"image/jpeg",
		"image/webp",
		"image/gif",
		"image/heic",
		"application/pdf",
	}
)

// SanitizeFilename strips any directory part and replaces characters outside
// [A-Za-z0-9._-] with underscores.
func SanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		base = ""
	}
	clean := strings.Trim(unsafeNameRe.ReplaceAllString(base, "_"), "._")
	if clean == "" {
		return "upload"
	}
	return clean
}

// ObjectName returns a collision-free stored name for filename.
func ObjectName(filename string) string {
	prefix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return prefix + "_" + SanitizeFilename(filename)
}

// ValidName reports whether name could have been produced by ObjectName and
// is safe to join onto a directory.
func ValidName(name string) bool {
	return name != "" && name == SanitizeFilename(name)
}

// Prepare reads at most maxBytes from r, sniffs the content type and rejects
// anything that is not an image or a PDF.
func Prepare(filename string, r io.Reader, maxBytes int64) (Upload, error) {
	if r == nil {
		return Upload{}, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}

	var buf bytes.Buffer
	reader := r
	if maxBytes > 0 {
		reader = io.LimitReader(r, maxBytes+1)
	}
	if _, err := buf.ReadFrom(reader); err != nil {
		return Upload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if buf.Len() == 0 {
		return Upload{}, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if maxBytes > 0 && int64(buf.Len()) > maxBytes {
		return Upload{}, pkgerrors.New(pkgerrors.CodePayloadTooLarge, "upload exceeds size limit").
			WithDetails(map[string]any{"max_bytes": maxBytes})
	}

	detected := mimetype.Detect(buf.Bytes())
	if !mimetype.EqualsAny(detected.String(), allowedContentTypes...) {
		return Upload{}, pkgerrors.New(pkgerrors.CodeUnsupportedType, "only images or PDFs can be attached").
			WithDetails(map[string]any{"content_type": detected.String()})
	}

	return Upload{
		Name:        ObjectName(filename),
		ContentType: detected.String(),
		Data:        buf.Bytes(),
	}, nil
}

// PublicURL joins the public prefix with an object name.
func PublicURL(base, name string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return "/" + name
	}
	return fmt.Sprintf("%s/%s", base, name)
}

// NameFromURL recovers the object name from a URL produced by PublicURL.
func NameFromURL(url string) string {
	if url == "" {
		return ""
	}
	idx := strings.LastIndex(url, "/")
	return url[idx+1:]
}
