package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sheetboard-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoginEnvelope wraps a successful login.
type LoginEnvelope struct {
	Token string         `json:"token"`
	User  domain.Profile `json:"user"`
}

// UserEnvelope wraps responses that echo one account.
type UserEnvelope struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
}

// FileEnvelope wraps a created file record.
type FileEnvelope struct {
	File *domain.UploadedFile `json:"file"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg, Error: code})
}
