// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Image constraints enforced before any network call
const (
	// MaxImageFileSize is the maximum accepted image size in bytes (5 MiB)
	MaxImageFileSize = 5 << 20

	// MaxImageFileSizeLabel is shown next to file pickers
	MaxImageFileSizeLabel = "Max file size: 5mb, accepted: jpg | gif | png | jpeg"
)

// AllowedImageExtensions is the client-side extension allow-list.
var AllowedImageExtensions = []string{".jpg", ".gif", ".png", ".jpeg"}

// AllowedImageTypes maps accepted MIME types to the extension derived from them.
var AllowedImageTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/png":  "png",
}

// User-visible flow messages
const (
	MessageUploadSuccessful = "Upload Successful"
	MessageUploadFailed     = "Upload Failed"
	MessageListFailed       = "List faces failed"
	GreetingPrefix          = "Hi, "
)

// HTTP client defaults
const (
	// DefaultHTTPTimeout bounds a single backend request. Zero disables the timeout.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRetryBackoff is the base delay between retried GET requests
	DefaultRetryBackoff = 500 * time.Millisecond
)
