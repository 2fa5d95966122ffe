package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/flow"
	"github.com/kozaktomas/facefinder/internal/imagefile"
)

func TestRespondJSON_SetsStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"OK", http.StatusOK},
		{"Accepted", http.StatusAccepted},
		{"BadRequest", http.StatusBadRequest},
		{"BadGateway", http.StatusBadGateway},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondJSON(recorder, tc.statusCode, nil)

			assertStatusCode(t, recorder, tc.statusCode)
			assertContentType(t, recorder, "application/json")
			if recorder.Body.Len() != 0 {
				t.Errorf("expected empty body for nil data, got '%s'", recorder.Body.String())
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondError(recorder, http.StatusNotFound, "flow not found")

	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "flow not found")
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"too large", imagefile.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"unsupported", fmt.Errorf("check: %w", imagefile.ErrUnsupportedType), http.StatusUnsupportedMediaType},
		{"no file", imagefile.ErrNoFile, http.StatusBadRequest},
		{"multiple files", imagefile.ErrMultipleFiles, http.StatusBadRequest},
		{"bad base64", imagefile.ErrInvalidEncoding, http.StatusBadRequest},
		{"bad form", errInvalidForm, http.StatusBadRequest},
		{"busy", flow.ErrBusy, http.StatusConflict},
		{"closed", flow.ErrClosed, http.StatusGone},
		{"no endpoints", fmt.Errorf("%w JAVA", backend.ErrNetworkUnavailable), http.StatusServiceUnavailable},
		{"upstream", errors.New("connection refused"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSanitizeForLog(t *testing.T) {
	if got := sanitizeForLog("Alice\r\nINFO forged"); got != "AliceINFO forged" {
		t.Errorf("unexpected sanitized value '%s'", got)
	}
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	recorder := httptest.NewRecorder()

	HealthCheck(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%s'", result["status"])
	}
}
