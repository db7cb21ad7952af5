package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/commissary-backend/api/responses"
	"github.com/angelmondragon/commissary-backend/api/validators"
	"github.com/angelmondragon/commissary-backend/internal/purchases"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/types"
)

const (
	purchasesPath        = "/api/v1/purchases"
	purchaseReceiptField = "receipt"
)

func PurchaseList(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func PurchaseCreate(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, upload, err := readPurchaseInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeUpload(upload)

		out, err := svc.Create(r.Context(), input, toReceipt(upload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, r, http.StatusCreated, purchasesPath, out)
	}
}

func PurchaseGet(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func PurchaseUpdate(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, upload, err := readPurchaseInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeUpload(upload)

		out, err := svc.Update(r.Context(), id, input, toReceipt(upload))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, r, http.StatusOK, purchasesPath, out)
	}
}

func PurchaseDelete(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, r, http.StatusOK, purchasesPath, deleted(id))
	}
}

// ExpensesDaily returns the derived total for ?date= (default today), or one
// total per day when ?from= or ?to= is given.
func ExpensesDaily(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from := validators.QueryString(r, "from")
		to := validators.QueryString(r, "to")
		if from != "" || to != "" {
			out, err := svc.DailyTotals(r.Context(), from, to)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, out)
			return
		}

		out, err := svc.DailyTotal(r.Context(), validators.QueryString(r, "date"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func readPurchaseInput(r *http.Request) (purchases.PurchaseInput, *validators.Upload, error) {
	var input purchases.PurchaseInput
	if validators.IsJSON(r) {
		err := validators.DecodeJSONBody(r, &input)
		return input, nil, err
	}
	if err := validators.ParseForm(r); err != nil {
		return input, nil, err
	}

	errs := validators.FormErrors{}
	input.Item = validators.FormString(r, "item", 0)
	input.Quantity = errs.Int(r, "quantity")
	input.UnitPrice = errs.Decimal(r, "unit_price")
	if raw := strings.TrimSpace(r.FormValue("date")); raw != "" {
		day, err := types.ParseDate(raw)
		if err != nil {
			errs["date"] = "must use " + types.DateLayout
		}
		input.Date = day
	}
	if err := errs.Err(); err != nil {
		return input, nil, err
	}
	if err := validators.Validate(&input); err != nil {
		return input, nil, err
	}

	upload, err := validators.FormFile(r, purchaseReceiptField)
	if err != nil {
		return input, nil, err
	}
	return input, upload, nil
}

func toReceipt(upload *validators.Upload) *purchases.Receipt {
	if upload == nil {
		return nil
	}
	return &purchases.Receipt{Filename: upload.Filename, Content: upload.Content}
}
