package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sheetboard-api/internal/domain"
	"github.com/sheetboard-api/internal/pkg/validate"
	"go.uber.org/zap"
)

type errorMapping struct {
	sentinel error
	status   int
	code     string
	// fixed replaces the error text when set.
	fixed string
}

// Checked in order; the first match wins.
var errorMappings = []errorMapping{
	{domain.ErrBadRequest, http.StatusBadRequest, "bad_request", ""},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", ""},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden", ""},
	{domain.ErrNotFound, http.StatusNotFound, "not_found", ""},
	{domain.ErrConflict, http.StatusConflict, "conflict", ""},
	{domain.ErrInvalidCredentials, http.StatusBadRequest, "invalid_credentials", "Invalid credentials"},
	{domain.ErrInvalidOrExpired, http.StatusBadRequest, "invalid_or_expired", "Invalid or expired OTP"},
	{domain.ErrParse, http.StatusUnprocessableEntity, "parse_error", "Failed to read Excel file"},
	{domain.ErrTooLarge, http.StatusRequestEntityTooLarge, "too_large", ""},
}

// maxJSONBody caps the JSON request bodies of the auth endpoints.
const maxJSONBody = 64 << 10

// writeServiceError maps a service error to its status and body. Unknown errors
// are logged and reported as a generic server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			msg := m.fixed
			if msg == "" {
				msg = publicMessage(err, m.sentinel)
			}
			writeError(w, m.status, m.code, msg)
			return
		}
	}
	log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "server_error", "server error")
}

// publicMessage returns the outermost context of err, without the sentinel suffix.
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i > 0 {
		msg = msg[:i]
	}
	if msg == "" {
		msg = sentinel.Error()
	}
	return msg
}

// decodeAndValidate reads a size-capped JSON body into dst and runs its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("request body too large: %w", domain.ErrTooLarge)
		}
		return fmt.Errorf("invalid request body: %w", domain.ErrBadRequest)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	return nil
}
