package controllers

import (
	"net/http"

	"github.com/angelmondragon/commissary-backend/api/responses"
)

// AuthLogout acknowledges a logout. No session state is kept server side.
func AuthLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "logged out"})
	}
}
