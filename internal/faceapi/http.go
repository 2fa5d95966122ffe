package faceapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// doGetJSON performs a GET request, retrying on transport errors and 5xx responses,
// and unmarshals the JSON response into the result type.
func doGetJSON[T any](ctx context.Context, c *Client, rawURL, captureName string) (*T, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, time.Duration(attempt)*c.retryBackoff); err != nil {
				return nil, err
			}
		}

		body, err := doGet(ctx, c, rawURL)
		if err == nil {
			c.captureResponse(captureName, body)

			var result T
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("could not unmarshal response: %w", err)
			}
			return &result, nil
		}

		lastErr = err
		if !isRetryable(ctx, err) {
			break
		}
	}
	return nil, lastErr
}

// doGet performs a single GET and returns the body of a 200 response.
func doGet(ctx context.Context, c *Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL from the endpoint registry
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	return body, nil
}

// isRetryable reports whether a failed GET may be attempted again.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// errorMessage extracts the backend's {"message": ...} if present, otherwise the raw body.
func errorMessage(r io.Reader) string {
	body := readErrorBody(r)
	var msg struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &msg); err == nil && msg.Message != "" {
		return msg.Message
	}
	return body
}

// readErrorBody reads the response body for error messages.
// Only the first 4 KiB are kept; a read failure yields a placeholder (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}
