package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sheetboard-api/internal/application/admin"
	"go.uber.org/zap"
)

// AdminHandler serves the admin-only account and file listings.
type AdminHandler struct {
	svc admin.Service
	log *zap.Logger
}

func NewAdminHandler(svc admin.Service, log *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) Promote(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Promote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{Message: "User promoted to admin", User: u})
}

func (h *AdminHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.ListFiles(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}
