package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/constants"
	"github.com/kozaktomas/facefinder/internal/flow"
	"github.com/kozaktomas/facefinder/internal/imagefile"
)

// FindHandler handles face recognition.
type FindHandler struct {
	api          flow.API
	selector     *backend.Selector
	maxDimension int
}

// NewFindHandler creates a new find handler.
func NewFindHandler(api flow.API, selector *backend.Selector, maxDimension int) *FindHandler {
	return &FindHandler{
		api:          api,
		selector:     selector,
		maxDimension: maxDimension,
	}
}

// FindRequest is the JSON body of POST /find. Image is a data URL or bare base64.
type FindRequest struct {
	Image string `json:"image"`
}

// readImage accepts either a multipart "file" or a JSON FindRequest.
func readImage(w http.ResponseWriter, r *http.Request) (*imagefile.Image, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return parseImageForm(w, r)
	}

	var req FindRequest
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errInvalidBody
	}
	return imagefile.FromDataURL(req.Image)
}

// newFind prepares a find flow from the request image.
func (h *FindHandler) newFind(w http.ResponseWriter, r *http.Request) (*flow.Find, error) {
	img, err := readImage(w, r)
	if err != nil {
		return nil, err
	}
	f := flow.NewFind(h.api, h.selector)
	f.SetMaxDimension(h.maxDimension)
	f.Select(img)
	return f, nil
}

// Find recognises the face on the posted image.
func (h *FindHandler) Find(w http.ResponseWriter, r *http.Request) {
	f, err := h.newFind(w, r)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	defer f.Close()

	err = f.Submit(r.Context())
	respondView(w, f.View(), err)
}
