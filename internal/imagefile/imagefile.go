// Package imagefile validates and encodes the single image a flow works with.
package imagefile

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kozaktomas/facefinder/internal/constants"
)

// Validation errors. Files rejected with one of these never reach the network.
var (
	ErrNoFile          = errors.New("no image selected")
	ErrMultipleFiles   = errors.New("only a single image is accepted")
	ErrFileTooLarge    = fmt.Errorf("image exceeds %d bytes", constants.MaxImageFileSize)
	ErrUnsupportedType = errors.New("unsupported image type, accepted: jpg | gif | png | jpeg")
	ErrEmptyFile       = errors.New("image is empty")
	ErrInvalidEncoding = errors.New("invalid base64 image")
)

// Image is a validated image held in memory.
type Image struct {
	Name     string
	MimeType string
	Data     []byte
}

// Size returns the image size in bytes.
func (img *Image) Size() int64 {
	return int64(len(img.Data))
}

// Extension returns the extension derived from the MIME type, without a dot.
func (img *Image) Extension() string {
	return FileExtension(img.MimeType)
}

// Base64 returns the standard base64 encoding of the image bytes.
func (img *Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns the image as a data URL, the form browsers hand to scripts.
func (img *Image) DataURL() string {
	return "data:" + img.MimeType + ";base64," + img.Base64()
}

// FileExtension derives the extension from a MIME type ("image/jpeg" -> "jpeg").
func FileExtension(mimeType string) string {
	if ext, ok := constants.AllowedImageTypes[mimeType]; ok {
		return ext
	}
	_, sub, _ := strings.Cut(mimeType, "/")
	return sub
}

// hasAllowedExtension checks the file name against the extension allow-list.
func hasAllowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(constants.AllowedImageExtensions, ext)
}

// CheckSize rejects files larger than the client-side limit.
func CheckSize(size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > constants.MaxImageFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// DetectType sniffs the MIME type and checks it against the allow-list.
func DetectType(name string, data []byte) (string, error) {
	if name != "" && !hasAllowedExtension(name) {
		return "", ErrUnsupportedType
	}
	mimeType, _, _ := strings.Cut(http.DetectContentType(data), ";")
	if _, ok := constants.AllowedImageTypes[mimeType]; !ok {
		return "", ErrUnsupportedType
	}
	return mimeType, nil
}

// New validates raw bytes and wraps them in an Image.
func New(name string, data []byte) (*Image, error) {
	if err := CheckSize(int64(len(data))); err != nil {
		return nil, err
	}
	mimeType, err := DetectType(name, data)
	if err != nil {
		return nil, err
	}
	return &Image{Name: name, MimeType: mimeType, Data: data}, nil
}

// readLimited reads at most the size limit plus one byte so oversized input is detected
// without buffering all of it.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, constants.MaxImageFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read image: %w", err)
	}
	return data, nil
}

// Load reads and validates an image from disk. The size is checked before reading.
func Load(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access image %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if err := CheckSize(info.Size()); err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // user-provided file path
	if err != nil {
		return nil, fmt.Errorf("could not open image: %w", err)
	}
	defer f.Close()

	data, err := readLimited(f)
	if err != nil {
		return nil, err
	}
	return New(filepath.Base(path), data)
}

// FromMultipart validates exactly one uploaded file.
func FromMultipart(files []*multipart.FileHeader) (*Image, error) {
	switch {
	case len(files) == 0:
		return nil, ErrNoFile
	case len(files) > 1:
		return nil, ErrMultipleFiles
	}

	fh := files[0]
	if err := CheckSize(fh.Size); err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := readLimited(f)
	if err != nil {
		return nil, err
	}
	return New(filepath.Base(fh.Filename), data)
}

// StripDataURL returns the payload after the "base64," marker.
// Input without the marker is returned unchanged.
func StripDataURL(s string) string {
	if _, payload, ok := strings.Cut(s, "base64,"); ok {
		return payload
	}
	return s
}

// FromDataURL decodes a data URL (or a bare base64 string) and validates the image.
func FromDataURL(s string) (*Image, error) {
	payload := strings.TrimSpace(StripDataURL(s))
	if payload == "" {
		return nil, ErrNoFile
	}
	// Base64 is 4/3 of the decoded size; reject early before decoding.
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > constants.MaxImageFileSize+2 {
		return nil, ErrFileTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	return New("", data)
}
