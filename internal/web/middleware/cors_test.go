package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS_Origins(t *testing.T) {
	handler := CORS([]string{"https://faces.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"whitelisted", "https://faces.example.com", "https://faces.example.com"},
		{"localhost with port", "http://localhost:5173", "http://localhost:5173"},
		{"localhost", "http://localhost", "http://localhost"},
		{"localhost lookalike", "http://localhost.evil.com", ""},
		{"unknown", "https://evil.com", ""},
		{"no origin", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/health", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, req)

			if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("expected allow origin '%s', got '%s'", tt.want, got)
			}
			if recorder.Code != http.StatusNoContent {
				t.Errorf("expected status %d, got %d", http.StatusNoContent, recorder.Code)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	handler := CORS(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("OPTIONS", "/api/v1/backend", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, req)

	if called {
		t.Error("expected preflight to be answered by the middleware")
	}
	if recorder.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected allow methods header")
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/list", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected X-Frame-Options DENY")
	}
	if recorder.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected a Content-Security-Policy")
	}
}
