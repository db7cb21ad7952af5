package controllers

import (
	"net/http"

	"github.com/angelmondragon/commissary-backend/api/responses"
	"github.com/angelmondragon/commissary-backend/internal/dashboard"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
)

func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
