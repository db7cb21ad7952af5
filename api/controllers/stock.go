package controllers

import (
	"net/http"

	"github.com/angelmondragon/commissary-backend/api/responses"
	"github.com/angelmondragon/commissary-backend/api/validators"
	"github.com/angelmondragon/commissary-backend/internal/ledger"
	"github.com/angelmondragon/commissary-backend/pkg/enums"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
)

// StockListPath is the listing route a stock form redirects to.
func StockListPath(kind enums.StockKind) string {
	if kind == enums.StockKindMaterial {
		return "/api/v1/materials"
	}
	return "/api/v1/inventory"
}

func StockList(svc ledger.Service, kind enums.StockKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context(), kind, validators.QueryString(r, "search"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func StockByDate(svc ledger.Service, kind enums.StockKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.ListByDate(r.Context(), kind, validators.QueryString(r, "date"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func StockCreate(svc ledger.Service, kind enums.StockKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := readRecordInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Create(r.Context(), kind, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, r, http.StatusCreated, StockListPath(kind), out)
	}
}

func StockGet(svc ledger.Service, kind enums.StockKind, logg *logger.Logger) http.HandlerFunc {
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

func StockUpdate(svc ledger.Service, kind enums.StockKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := readRecordInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Update(r.Context(), kind, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, r, http.StatusOK, StockListPath(kind), out)
	}
}

func StockDelete(svc ledger.Service, kind enums.StockKind, logg *logger.Logger) http.HandlerFunc {
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
		responses.WriteMutation(w, r, http.StatusOK, StockListPath(kind), deleted(id))
	}
}

// readRecordInput accepts either a JSON body or the stock form. Every
// movement field must be a whole number or nothing is saved.
func readRecordInput(r *http.Request) (ledger.RecordInput, error) {
	var input ledger.RecordInput
	if validators.IsJSON(r) {
		err := validators.DecodeJSONBody(r, &input)
		return input, err
	}
	if err := validators.ParseForm(r); err != nil {
		return input, err
	}

	errs := validators.FormErrors{}
	input.Item = validators.FormString(r, "item", 0)
	input.UOI = validators.FormString(r, "uoi", 0)
	input.Beginning = errs.Int(r, "beginning")
	input.Incoming = errs.Int(r, "incoming")
	input.Outgoing = errs.Int(r, "outgoing")
	input.Waste = errs.Int(r, "waste")
	if err := errs.Err(); err != nil {
		return input, err
	}
	return input, validators.Validate(&input)
}

func deleted(id any) map[string]any {
	return map[string]any{"id": id, "deleted": true}
}
