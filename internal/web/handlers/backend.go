package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kozaktomas/facefinder/internal/backend"
)

// BackendHandler exposes the backend selector.
type BackendHandler struct {
	selector *backend.Selector
}

// NewBackendHandler creates a new backend handler.
func NewBackendHandler(selector *backend.Selector) *BackendHandler {
	return &BackendHandler{selector: selector}
}

// BackendResponse describes one backend variant.
type BackendResponse struct {
	Variant   backend.Variant     `json:"variant"`
	Active    bool                `json:"active"`
	Endpoints backend.EndpointSet `json:"endpoints"`
}

// SetBackendRequest is the body of PUT /backend.
type SetBackendRequest struct {
	Backend string `json:"backend"`
}

func (h *BackendHandler) describe(v backend.Variant) BackendResponse {
	eps, _ := h.selector.Registry().Resolve(v)
	return BackendResponse{
		Variant:   v,
		Active:    v == h.selector.Current(),
		Endpoints: eps,
	}
}

// Get returns the active backend and its endpoints.
func (h *BackendHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.describe(h.selector.Current()))
}

// List returns every registered backend.
func (h *BackendHandler) List(w http.ResponseWriter, r *http.Request) {
	variants := h.selector.Registry().Variants()
	result := make([]BackendResponse, 0, len(variants))
	for _, v := range variants {
		result = append(result, h.describe(v))
	}
	respondJSON(w, http.StatusOK, result)
}

// Set switches the active backend.
func (h *BackendHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req SetBackendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	variant, err := h.switchTo(req.Backend)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.describe(variant))
}

// switchTo parses and dispatches a backend change.
func (h *BackendHandler) switchTo(name string) (backend.Variant, error) {
	variant, err := backend.ParseVariant(name)
	if err != nil {
		return "", err
	}
	previous := h.selector.Current()
	variant, err = h.selector.Dispatch(backend.SetBackend(variant))
	if err != nil {
		return "", err
	}
	if variant != previous {
		log.Printf("backend switched from %s to %s", previous, variant)
	}
	return variant, nil
}
