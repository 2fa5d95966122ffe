// Package constants provides shared constants used across the codebase.
package constants

import "time"

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100
)

// File upload constants
const (
	// MaxUploadSize is the maximum multipart form size accepted by the web server.
	// Larger than MaxImageFileSize so oversized files reach validation and get a proper message.
	MaxUploadSize = 10 << 20
)

// Flow retention constants
const (
	// FlowRetention is how long a finished async flow stays queryable
	FlowRetention = 10 * time.Minute
)
