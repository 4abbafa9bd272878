package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lllllllleong/examsolver/internal/models"
	"github.com/Lllllllleong/examsolver/internal/services"
	"github.com/Lllllllleong/examsolver/internal/session"
)

var errBadUpload = errors.New("could not read the uploaded file")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func writeNotice(w http.ResponseWriter, status int, notice string) {
	writeJSON(w, status, models.ErrorResponse{Error: notice})
}

// writeError maps domain errors to a status and a user notice. Service
// failures all collapse into one generic message.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		writeNotice(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrNotPDF):
		writeNotice(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, services.ErrMissingCredential), errors.Is(err, services.ErrMissingDocument):
		writeNotice(w, http.StatusBadRequest, "Please provide both an API Key and a PDF file.")
	case errors.Is(err, errBadUpload):
		writeNotice(w, http.StatusBadRequest, errBadUpload.Error())
	case errors.Is(err, session.ErrBusy):
		writeNotice(w, http.StatusConflict, err.Error())
	default:
		writeNotice(w, http.StatusBadGateway, genericFailure)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start).String())
	})
}
