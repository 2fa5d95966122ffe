package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/faceapi"
)

// fakeAPI is a scripted face API. Nil functions answer with a successful default.
type fakeAPI struct {
	mu sync.Mutex

	uploadRequests []faceapi.UploadRequest
	endpoints      []backend.EndpointSet
	puts           int
	payloads       []string

	putErr      error
	recognise   func(ctx context.Context, payload string) (*faceapi.RecognitionResult, error)
	faces       []faceapi.FaceListItem
	listErr     error
	blockUpload chan struct{}
}

func (f *fakeAPI) RequestUploadURL(ctx context.Context, eps backend.EndpointSet, req faceapi.UploadRequest) (*faceapi.PresignedUpload, error) {
	f.mu.Lock()
	f.uploadRequests = append(f.uploadRequests, req)
	f.endpoints = append(f.endpoints, eps)
	block := f.blockUpload
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &faceapi.PresignedUpload{UploadURL: "https://bucket.example.com/f", FileName: "f.png"}, nil
}

func (f *fakeAPI) PutObject(ctx context.Context, uploadURL, contentType string, body io.Reader, size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	return f.putErr
}

func (f *fakeAPI) Recognise(ctx context.Context, eps backend.EndpointSet, payload string) (*faceapi.RecognitionResult, error) {
	f.mu.Lock()
	f.endpoints = append(f.endpoints, eps)
	f.payloads = append(f.payloads, payload)
	fn := f.recognise
	f.mu.Unlock()

	if fn == nil {
		return &faceapi.RecognitionResult{PersonName: "Alice"}, nil
	}
	return fn(ctx, payload)
}

func (f *fakeAPI) ListFaces(ctx context.Context, eps backend.EndpointSet) ([]faceapi.FaceListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endpoints = append(f.endpoints, eps)
	return f.faces, f.listErr
}

func (f *fakeAPI) lastEndpoints() backend.EndpointSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.endpoints) == 0 {
		return backend.EndpointSet{}
	}
	return f.endpoints[len(f.endpoints)-1]
}

// testSelector creates a selector over JAVA and PYTHON test endpoints, starting at JAVA.
func testSelector() *backend.Selector {
	registry := backend.NewRegistry(map[backend.Variant]backend.EndpointSet{
		backend.Java: {
			FindImageURL:      "http://java.test/recognise",
			UploadURLEndpoint: "http://java.test/upload-url",
			ListFacesURL:      "http://java.test/list-faces",
		},
		backend.Python: {
			FindImageURL:      "http://python.test/recognise",
			UploadURLEndpoint: "http://python.test/upload-url",
			ListFacesURL:      "http://python.test/list-faces",
		},
	})
	return backend.NewSelector(registry, backend.Java)
}

// pngBytes returns a small valid PNG image
func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// multipartRequest builds a multipart request with the given fields and files under "file"
func multipartRequest(t *testing.T, method, path string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	for name, data := range files {
		part, err := writer.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write(data)
	}
	writer.Close()

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
