package faceapi

import (
	"encoding/json"
	"fmt"
)

// UploadRequest describes the object the backend should pre-sign an upload for.
type UploadRequest struct {
	PersonName    string `json:"person_name"`
	MimeType      string `json:"mime_type"`
	FileExtension string `json:"file_extension"` // without the leading dot, e.g. "jpeg"
}

// PresignedUpload is the backend's answer to an upload-url request.
type PresignedUpload struct {
	UploadURL string `json:"uploadURL"`
	FileName  string `json:"fileName"`
}

// RecognitionResult carries either the matched person or a backend message.
type RecognitionResult struct {
	PersonName string `json:"person_name,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Found reports whether the backend matched a person.
func (r *RecognitionResult) Found() bool {
	return r.PersonName != ""
}

// FaceListItem is one registered face.
type FaceListItem struct {
	ImageURL string `json:"imageUrl"`
	FullName string `json:"fullName"`
}

// faceList decodes both {"body": [...]} and a bare JSON array.
type faceList []FaceListItem

func (l *faceList) UnmarshalJSON(data []byte) error {
	var items []FaceListItem
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}

	var wrapped struct {
		Body json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("unmarshal face list: %w", err)
	}
	if len(wrapped.Body) == 0 || string(wrapped.Body) == "null" {
		*l = nil
		return nil
	}
	if err := json.Unmarshal(wrapped.Body, &items); err != nil {
		// Lambda proxies sometimes double-encode the body as a JSON string.
		var encoded string
		if strErr := json.Unmarshal(wrapped.Body, &encoded); strErr != nil {
			return fmt.Errorf("unmarshal face list body: %w", err)
		}
		if err := json.Unmarshal([]byte(encoded), &items); err != nil {
			return fmt.Errorf("unmarshal encoded face list body: %w", err)
		}
	}
	*l = items
	return nil
}

// APIError is returned for non-successful backend responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}
