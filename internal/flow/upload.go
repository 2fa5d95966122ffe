package flow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/constants"
	"github.com/kozaktomas/facefinder/internal/faceapi"
	"github.com/kozaktomas/facefinder/internal/imagefile"
)

// ProgressFunc wraps the upload body, e.g. to drive a progress bar.
type ProgressFunc func(r io.Reader, size int64) io.Reader

// Upload registers a face: it asks the backend for a pre-signed URL and then
// PUTs the image bytes there.
type Upload struct {
	base

	api      API
	selector *backend.Selector
	progress ProgressFunc

	name  string
	image *imagefile.Image
}

// NewUpload creates an idle upload flow.
func NewUpload(api API, selector *backend.Selector) *Upload {
	u := &Upload{api: api, selector: selector}
	u.init(KindRegister, func() bool { return u.image != nil })
	return u
}

// SetProgress installs a wrapper around the upload body.
func (u *Upload) SetProgress(fn ProgressFunc) {
	u.mu.Lock()
	u.progress = fn
	u.mu.Unlock()
}

// SetName stores the person's name.
func (u *Upload) SetName(name string) {
	u.mu.Lock()
	u.name = name
	u.mu.Unlock()
}

// Select sets an already validated image and clears the previous result.
func (u *Upload) Select(img *imagefile.Image) {
	u.update(func(v *View) {
		u.image = img
		if v.Pending {
			return
		}
		v.Message = ""
		v.Error = ""
		v.FileName = ""
		if img != nil {
			v.State = StateReady
		} else {
			v.State = StateIdle
		}
	})
}

// SelectData validates raw file bytes. A rejected file leaves the flow without
// an image, so the submit control stays disabled.
func (u *Upload) SelectData(name string, data []byte) error {
	img, err := imagefile.New(name, data)
	if err != nil {
		u.Select(nil)
		return err
	}
	u.Select(img)
	return nil
}

// SelectFile loads and validates an image from disk.
func (u *Upload) SelectFile(path string) error {
	img, err := imagefile.Load(path)
	if err != nil {
		u.Select(nil)
		return err
	}
	u.Select(img)
	return nil
}

// Submit runs the two causally ordered requests: upload URL, then the PUT.
// The result message is "Upload Successful" or "Upload Failed".
func (u *Upload) Submit(ctx context.Context) error {
	ctx, err := u.begin(ctx, StateRequestingURL, func(v *View) {
		v.FileName = ""
	})
	if err != nil {
		return err
	}

	u.mu.Lock()
	name, img, progress := u.name, u.image, u.progress
	u.mu.Unlock()

	variant, eps, err := u.selector.Endpoints()
	if err != nil {
		return u.fail(err)
	}
	u.update(func(v *View) { v.Backend = variant })

	req := faceapi.UploadRequest{
		PersonName:    imagefile.NormalizeName(name),
		MimeType:      img.MimeType,
		FileExtension: img.Extension(),
	}
	presigned, err := u.api.RequestUploadURL(ctx, eps, req)
	if err != nil {
		return u.fail(fmt.Errorf("requesting upload URL: %w", err))
	}
	if presigned.UploadURL == "" {
		return u.fail(ErrNoUploadURL)
	}

	if !u.update(func(v *View) { v.State = StateUploading }) {
		return ErrClosed
	}

	var body io.Reader = bytes.NewReader(img.Data)
	if progress != nil {
		body = progress(body, img.Size())
	}
	if err := u.api.PutObject(ctx, presigned.UploadURL, img.MimeType, body, img.Size()); err != nil {
		return u.fail(fmt.Errorf("uploading image: %w", err))
	}

	if !u.end(func(v *View) {
		v.State = StateDone
		v.Message = constants.MessageUploadSuccessful
		v.FileName = presigned.FileName
	}) {
		return ErrClosed
	}
	log.Printf("upload flow %s: registered %s as %s on %s", u.ID(), sanitizeForLog(req.PersonName), presigned.FileName, variant)
	return nil
}

func (u *Upload) fail(err error) error {
	if !u.end(func(v *View) {
		v.State = StateFailed
		v.Message = constants.MessageUploadFailed
		v.Error = err.Error()
	}) {
		return ErrClosed
	}
	log.Printf("upload flow %s: %v", u.ID(), err)
	return err
}
