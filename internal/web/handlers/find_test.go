package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/facefinder/internal/faceapi"
	"github.com/kozaktomas/facefinder/internal/flow"
)

func TestFindHandler_JSON(t *testing.T) {
	data := pngBytes(t)
	encoded := base64.StdEncoding.EncodeToString(data)

	tests := []struct {
		name  string
		image string
	}{
		{"data url", "data:image/png;base64," + encoded},
		{"bare base64", encoded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			handler := NewFindHandler(api, testSelector(), 0)

			req := httptest.NewRequest("POST", "/api/v1/find", strings.NewReader(`{"image": "`+tt.image+`"}`))
			req.Header.Set("Content-Type", "application/json")
			recorder := httptest.NewRecorder()

			handler.Find(recorder, req)

			assertStatusCode(t, recorder, http.StatusOK)

			var view flow.View
			parseJSONResponse(t, recorder, &view)
			if view.Greeting != "Hi, Alice" || view.PersonName != "Alice" {
				t.Errorf("unexpected view %+v", view)
			}
			if len(api.payloads) != 1 || api.payloads[0] != encoded {
				t.Error("expected the bare base64 payload to be posted")
			}
		})
	}
}

func TestFindHandler_Multipart(t *testing.T) {
	api := &fakeAPI{
		recognise: func(context.Context, string) (*faceapi.RecognitionResult, error) {
			return &faceapi.RecognitionResult{Message: "No match"}, nil
		},
	}
	handler := NewFindHandler(api, testSelector(), 0)

	req := multipartRequest(t, "POST", "/api/v1/find", nil, map[string][]byte{"face.png": pngBytes(t)})
	recorder := httptest.NewRecorder()

	handler.Find(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var view flow.View
	parseJSONResponse(t, recorder, &view)
	if view.Message != "No match" || view.Greeting != "" {
		t.Errorf("unexpected view %+v", view)
	}
}

func TestFindHandler_TransportFailure(t *testing.T) {
	api := &fakeAPI{
		recognise: func(context.Context, string) (*faceapi.RecognitionResult, error) {
			return nil, errors.New("connection reset")
		},
	}
	handler := NewFindHandler(api, testSelector(), 0)

	req := multipartRequest(t, "POST", "/api/v1/find", nil, map[string][]byte{"face.png": pngBytes(t)})
	recorder := httptest.NewRecorder()

	handler.Find(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadGateway)

	var view flow.View
	parseJSONResponse(t, recorder, &view)
	if view.Message != "" || view.Greeting != "" {
		t.Errorf("expected no message, got %+v", view)
	}
	if view.Error == "" {
		t.Error("expected error to be recorded")
	}
}

func TestFindHandler_BadInput(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"empty image", `{"image": ""}`, http.StatusBadRequest},
		{"not base64", `{"image": "data:image/png;base64,%%%"}`, http.StatusBadRequest},
		{"not an image", `{"image": "` + base64.StdEncoding.EncodeToString([]byte("hello world")) + `"}`, http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			handler := NewFindHandler(api, testSelector(), 0)

			req := httptest.NewRequest("POST", "/api/v1/find", strings.NewReader(tt.body))
			recorder := httptest.NewRecorder()

			handler.Find(recorder, req)

			assertStatusCode(t, recorder, tt.wantStatus)
			if len(api.payloads) != 0 {
				t.Error("expected no recognition request")
			}
		})
	}
}
