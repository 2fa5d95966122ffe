package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/facefinder/internal/backend"
)

func TestBackendHandler_Get(t *testing.T) {
	handler := NewBackendHandler(testSelector())

	req := httptest.NewRequest("GET", "/api/v1/backend", nil)
	recorder := httptest.NewRecorder()
	handler.Get(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result BackendResponse
	parseJSONResponse(t, recorder, &result)
	if result.Variant != backend.Java || !result.Active {
		t.Errorf("expected active JAVA, got %+v", result)
	}
	if result.Endpoints.UploadURLEndpoint != "http://java.test/upload-url" {
		t.Errorf("unexpected endpoints %+v", result.Endpoints)
	}
}

func TestBackendHandler_List(t *testing.T) {
	handler := NewBackendHandler(testSelector())

	req := httptest.NewRequest("GET", "/api/v1/backends", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	var result []BackendResponse
	parseJSONResponse(t, recorder, &result)
	if len(result) != 2 {
		t.Fatalf("expected 2 backends, got %d", len(result))
	}
	if result[0].Variant != backend.Java || !result[0].Active {
		t.Errorf("expected JAVA first and active, got %+v", result[0])
	}
	if result[1].Variant != backend.Python || result[1].Active {
		t.Errorf("expected PYTHON second and inactive, got %+v", result[1])
	}
}

func TestBackendHandler_Set(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantActive backend.Variant
	}{
		{"switch to python", `{"backend": "PYTHON"}`, http.StatusOK, backend.Python},
		{"lower case", `{"backend": "python"}`, http.StatusOK, backend.Python},
		{"unknown variant", `{"backend": "RUBY"}`, http.StatusBadRequest, backend.Java},
		{"empty variant", `{"backend": ""}`, http.StatusBadRequest, backend.Java},
		{"invalid json", `{`, http.StatusBadRequest, backend.Java},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selector := testSelector()
			handler := NewBackendHandler(selector)

			req := httptest.NewRequest("PUT", "/api/v1/backend", strings.NewReader(tt.body))
			recorder := httptest.NewRecorder()
			handler.Set(recorder, req)

			assertStatusCode(t, recorder, tt.wantStatus)
			if selector.Current() != tt.wantActive {
				t.Errorf("expected active %s, got %s", tt.wantActive, selector.Current())
			}
		})
	}
}
