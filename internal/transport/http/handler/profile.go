package handler

import (
	"net/http"

	"github.com/sheetboard-api/internal/transport/http/middleware"
)

// Profile echoes the resolved caller. Must be mounted behind middleware.Auth.
func Profile(w http.ResponseWriter, r *http.Request) {
	greet(w, r, "Welcome to your profile")
}

// AdminArea is the sample admin-gated route.
func AdminArea(w http.ResponseWriter, r *http.Request) {
	greet(w, r, "Welcome Admin")
}

func greet(w http.ResponseWriter, r *http.Request, msg string) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{Message: msg, User: u})
}
