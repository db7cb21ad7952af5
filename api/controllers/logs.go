package controllers

import (
	"net/http"

	"github.com/angelmondragon/commissary-backend/api/responses"
	"github.com/angelmondragon/commissary-backend/api/validators"
	"github.com/angelmondragon/commissary-backend/internal/eventlog"
	"github.com/angelmondragon/commissary-backend/pkg/enums"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
)

const logImageField = "image"

// LogListPath is the listing route a log form redirects to.
func LogListPath(kind enums.LogKind) string {
	if kind == enums.LogKindMaterial {
		return "/api/v1/material-logs"
	}
	return "/api/v1/waste-logs"
}

func LogList(svc eventlog.Service, kind enums.LogKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), kind, validators.QueryString(r, "search"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func LogByDate(svc eventlog.Service, kind enums.LogKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ListByDate(r.Context(), kind, validators.QueryString(r, "date"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func LogCreate(svc eventlog.Service, kind enums.LogKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, upload, err := readEntryInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeUpload(upload)

		out, err := svc.Create(r.Context(), kind, input, toAttachment(upload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, r, http.StatusCreated, LogListPath(kind), out)
	}
}

func LogGet(svc eventlog.Service, kind enums.LogKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Get(r.Context(), kind, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func LogUpdate(svc eventlog.Service, kind enums.LogKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, upload, err := readEntryInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeUpload(upload)

		out, err := svc.Update(r.Context(), kind, id, input, toAttachment(upload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, r, http.StatusOK, LogListPath(kind), out)
	}
}

func LogDelete(svc eventlog.Service, kind enums.LogKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), kind, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, r, http.StatusOK, LogListPath(kind), deleted(id))
	}
}

// readEntryInput accepts JSON (no attachment) or a form, optionally
// multipart with an image part.
func readEntryInput(r *http.Request) (eventlog.EntryInput, *validators.Upload, error) {
	var input eventlog.EntryInput
	if validators.IsJSON(r) {
		err := validators.DecodeJSONBody(r, &input)
		return input, nil, err
	}
	if err := validators.ParseForm(r); err != nil {
		return input, nil, err
	}

	input.Item = validators.FormString(r, "item", 0)
	input.UOI = validators.FormString(r, "uoi", 0)
	input.Quantity = validators.FormString(r, "quantity", 0)
	input.Description = validators.FormString(r, "description", 0)
	if err := validators.Validate(&input); err != nil {
		return input, nil, err
	}

	upload, err := validators.FormFile(r, logImageField)
	if err != nil {
		return input, nil, err
	}
	return input, upload, nil
}

func toAttachment(upload *validators.Upload) *eventlog.Attachment {
	if upload == nil {
		return nil
	}
	return &eventlog.Attachment{Filename: upload.Filename, Content: upload.Content}
}

func closeUpload(upload *validators.Upload) {
	if upload != nil {
		_ = upload.Content.Close()
	}
}
