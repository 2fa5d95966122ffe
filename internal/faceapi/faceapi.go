// Package faceapi is the HTTP client for the managed face-recognition backend.
package faceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/config"
)

// Client talks to one or more backend variants; endpoints are passed per call.
type Client struct {
	httpClient   *http.Client
	retries      int
	retryBackoff time.Duration
	captureDir   string
}

// NewClient creates a client from the HTTP configuration.
func NewClient(cfg config.HTTPConfig) (*Client, error) {
	c := &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		retries:      cfg.Retries,
		retryBackoff: cfg.RetryBackoff,
	}
	if err := c.SetCaptureDir(cfg.CaptureDir); err != nil {
		return nil, err
	}
	return c, nil
}

// NewClientWithHTTP creates a client around an existing http.Client, without retries.
func NewClientWithHTTP(hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{httpClient: hc}
}

// SetCaptureDir enables API response capturing to the specified directory.
// Pass an empty string to disable capturing.
func (c *Client) SetCaptureDir(dir string) error {
	if dir == "" {
		c.captureDir = ""
		return nil
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("could not create capture directory: %w", err)
	}
	c.captureDir = dir
	return nil
}

// captureResponse saves the API response body to a file if capturing is enabled.
func (c *Client) captureResponse(name string, body []byte) {
	if c.captureDir == "" {
		return
	}

	timestamp := time.Now().Format("20060102_150405.000000")
	filename := fmt.Sprintf("%s_%s.json", name, strings.ReplaceAll(timestamp, ".", "_"))
	path := filepath.Join(c.captureDir, filename)

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, body, "", "  "); err == nil {
		body = prettyJSON.Bytes()
	}

	if err := os.WriteFile(path, body, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to capture response to %s: %v\n", path, err)
	}
}

// RequestUploadURL asks the backend for a pre-signed upload location.
func (c *Client) RequestUploadURL(ctx context.Context, eps backend.EndpointSet, req UploadRequest) (*PresignedUpload, error) {
	endpoint, err := url.Parse(eps.UploadURLEndpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid upload-url endpoint: %w", err)
	}

	query := endpoint.Query()
	query.Set("content-type", req.MimeType)
	query.Set("file-extension", "."+strings.TrimPrefix(req.FileExtension, "."))
	query.Set("person-name", req.PersonName)
	endpoint.RawQuery = query.Encode()

	return doGetJSON[PresignedUpload](ctx, c, endpoint.String(), "upload-url")
}

// PutObject uploads raw bytes to a pre-signed URL. The upload only counts as
// successful when the storage answers exactly "200 OK".
func (c *Client) PutObject(ctx context.Context, uploadURL, contentType string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	if size > 0 {
		req.ContentLength = size
	}
	// The signature covers the content type, so it must match what was requested.
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL issued by the backend
	if err != nil {
		return fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if !isStatusOK(resp) {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorBody(resp.Body)}
	}
	return nil
}

// isStatusOK checks both the status code and the reason phrase.
func isStatusOK(resp *http.Response) bool {
	if resp.StatusCode != http.StatusOK {
		return false
	}
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, "200"))
	return reason == "OK"
}

// Recognise posts a raw base64 image (no data-URL prefix) to the recognition endpoint.
func (c *Client) Recognise(ctx context.Context, eps backend.EndpointSet, payload string) (*RecognitionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, eps.FindImageURL, strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL from the endpoint registry
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	c.captureResponse("recognise", body)

	// Backends answer "no image" and "no match" with a message, sometimes on a 4xx.
	var result RecognitionResult
	if err := json.Unmarshal(body, &result); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
		}
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest && result.PersonName == "" && result.Message == "" {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	return &result, nil
}

// ListFaces fetches every registered face.
func (c *Client) ListFaces(ctx context.Context, eps backend.EndpointSet) ([]FaceListItem, error) {
	result, err := doGetJSON[faceList](ctx, c, eps.ListFacesURL, "list-faces")
	if err != nil {
		return nil, err
	}
	return *result, nil
}
