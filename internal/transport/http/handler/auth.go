package handler

import (
	"net/http"

	"github.com/sheetboard-api/internal/application/auth"
	"github.com/sheetboard-api/internal/domain"
	"go.uber.org/zap"
)

// AuthHandler serves registration, login and the OTP password-reset flow.
type AuthHandler struct {
	svc auth.Service
	log *zap.Logger
}

func NewAuthHandler(svc auth.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if _, err := h.svc.Register(r.Context(), req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "Registered successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{Token: token, User: u.Profile()})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := h.svc.RequestReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP sent to email"})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := h.svc.VerifyReset(r.Context(), req.Email, req.OTP); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "OTP verified"})
}

func (h *AuthHandler) NewPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.NewPasswordRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if err := h.svc.CompleteReset(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Password updated successfully"})
}
