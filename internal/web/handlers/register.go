package handlers

import (
	"fmt"
	"net/http"

	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/constants"
	"github.com/kozaktomas/facefinder/internal/flow"
	"github.com/kozaktomas/facefinder/internal/imagefile"
)

// RegisterHandler handles face registration.
type RegisterHandler struct {
	api      flow.API
	selector *backend.Selector
}

// NewRegisterHandler creates a new register handler.
func NewRegisterHandler(api flow.API, selector *backend.Selector) *RegisterHandler {
	return &RegisterHandler{
		api:      api,
		selector: selector,
	}
}

// parseImageForm reads the single image in the "file" field of a multipart form.
func parseImageForm(w http.ResponseWriter, r *http.Request) (*imagefile.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidForm, err)
	}
	return imagefile.FromMultipart(r.MultipartForm.File["file"])
}

// newUpload prepares an upload flow from a multipart form with "name" and "file".
func (h *RegisterHandler) newUpload(w http.ResponseWriter, r *http.Request) (*flow.Upload, error) {
	img, err := parseImageForm(w, r)
	if err != nil {
		return nil, err
	}
	u := flow.NewUpload(h.api, h.selector)
	u.SetName(r.FormValue("name"))
	u.Select(img)
	return u, nil
}

// Register uploads a face and answers with the final view.
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	u, err := h.newUpload(w, r)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	defer u.Close()

	err = u.Submit(r.Context())
	respondView(w, u.View(), err)
}
