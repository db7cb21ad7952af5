package controllers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/angelmondragon/commissary-backend/api/responses"
	"github.com/angelmondragon/commissary-backend/api/validators"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/storage"
)

// UploadServe streams a stored attachment back to the browser.
func UploadServe(files storage.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := validators.PathString(r, "filename")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body, obj, err := files.Open(r.Context(), name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer body.Close()

		contentType := obj.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "private, max-age=3600")
		if obj.Size > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		}
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, body); err != nil {
			logg.Error(logg.WithField(r.Context(), "filename", name), "upload.stream_failed", err)
		}
	}
}
