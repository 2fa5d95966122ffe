package handlers

import (
	"net/http"

	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/flow"
)

// FacesHandler lists registered faces.
type FacesHandler struct {
	api      flow.API
	selector *backend.Selector
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(api flow.API, selector *backend.Selector) *FacesHandler {
	return &FacesHandler{
		api:      api,
		selector: selector,
	}
}

// List fetches the faces from the active backend on every call.
func (h *FacesHandler) List(w http.ResponseWriter, r *http.Request) {
	l := flow.NewList(h.api, h.selector)
	defer l.Close()

	err := l.Load(r.Context())
	respondView(w, l.View(), err)
}
