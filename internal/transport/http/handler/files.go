package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	fileapp "github.com/sheetboard-api/internal/application/file"
	"github.com/sheetboard-api/internal/transport/http/middleware"
	"go.uber.org/zap"
)

const (
	uploadField = "excel"
	// Allowance for multipart boundaries and headers on top of the file cap.
	multipartOverhead = 1 << 20
	memoryThreshold   = 8 << 20
)

// FileHandler handles spreadsheet upload and viewing endpoints.
type FileHandler struct {
	svc      fileapp.Service
	log      *zap.Logger
	maxBytes int64
}

func NewFileHandler(svc fileapp.Service, log *zap.Logger, maxBytes int64) *FileHandler {
	return &FileHandler{svc: svc, log: log, maxBytes: maxBytes}
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "unauthorized")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(memoryThreshold); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	input := fileapp.UploadInput{OwnerID: u.UserID}
	f, header, err := r.FormFile(uploadField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// RecordUpload rejects the empty input.
	case err != nil:
		writeError(w, http.StatusBadRequest, "bad_request", "unreadable file field")
		return
	default:
		defer f.Close()
		if header.Size > h.maxBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "file too large")
			return
		}
		input.Reader = f
		input.Filename = header.Filename
		input.ContentType = header.Header.Get("Content-Type")
	}

	uploaded, err := h.svc.RecordUpload(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, FileEnvelope{File: uploaded})
}

func (h *FileHandler) MyFiles(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "unauthorized")
		return
	}
	files, err := h.svc.ListOwned(r.Context(), u.UserID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *FileHandler) Rows(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "unauthorized")
		return
	}
	rows, err := h.svc.ParseStored(r.Context(), u.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *FileHandler) Summary(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "unauthorized")
		return
	}
	q := r.URL.Query()
	sum, err := h.svc.Summarize(r.Context(), u.UserID, chi.URLParam(r, "id"), q.Get("label"), q.Get("value"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
