package controllers

import (
	"net/http"

	"github.com/angelmondragon/commissary-backend/api/responses"
	"github.com/angelmondragon/commissary-backend/api/validators"
	"github.com/angelmondragon/commissary-backend/internal/orders"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
)

const ordersPath = "/api/v1/orders"

func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), validators.QueryString(r, "search"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// OrderCreate accepts the structured JSON document or the printable sheet's
// parallel form columns.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input orders.OrderInput
		if validators.IsJSON(r) {
			if err := validators.DecodeJSON(r, &input); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		} else {
			if err := validators.ParseForm(r); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			parsed, err := orders.ParseForm(r.PostForm)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input = parsed
		}

		out, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, r, http.StatusCreated, ordersPath, out)
	}
}

func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := validators.PathString(r, "orderNumber")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Get(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func OrderDelete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := validators.PathString(r, "orderNumber")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), number); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, r, http.StatusOK, ordersPath, map[string]any{"order_number": number, "deleted": true})
	}
}

// OrderExport downloads the requisition as an XLSX workbook.
func OrderExport(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := validators.PathString(r, "orderNumber")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		book, err := svc.Export(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAttachment(w, book.Filename, book.ContentType, book.Data)
	}
}
