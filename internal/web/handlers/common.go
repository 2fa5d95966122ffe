package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/flow"
	"github.com/kozaktomas/facefinder/internal/imagefile"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

var (
	errInvalidBody = errors.New(errInvalidRequestBody)
	errInvalidForm = errors.New("failed to parse multipart form")
)

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusForError maps flow, image and backend errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, imagefile.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, imagefile.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, imagefile.ErrNoFile),
		errors.Is(err, imagefile.ErrMultipleFiles),
		errors.Is(err, imagefile.ErrEmptyFile),
		errors.Is(err, imagefile.ErrInvalidEncoding),
		errors.Is(err, errInvalidBody),
		errors.Is(err, errInvalidForm),
		errors.Is(err, flow.ErrNotReady):
		return http.StatusBadRequest
	case errors.Is(err, flow.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, flow.ErrClosed):
		return http.StatusGone
	case errors.Is(err, backend.ErrNetworkUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// respondView sends a flow view. Failed flows keep the view shape but carry an error status.
func respondView(w http.ResponseWriter, view flow.View, err error) {
	status := http.StatusOK
	if err != nil {
		status = statusForError(err)
	}
	respondJSON(w, status, view)
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
