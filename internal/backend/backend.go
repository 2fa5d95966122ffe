// Package backend holds the registry of backend variants and the selector
// that decides which variant every flow talks to.
package backend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kozaktomas/facefinder/internal/config"
)

// Variant names a deployment of the face API.
type Variant string

// Built-in variants.
const (
	Java   Variant = "JAVA"
	Python Variant = "PYTHON"
)

// DefaultVariant is selected when nothing else is configured.
const DefaultVariant = Java

// ActionSetBackend is the only action type the selector reacts to.
const ActionSetBackend = "SET_BACKEND"

// ErrNetworkUnavailable is returned when the selected variant has no endpoint set.
var ErrNetworkUnavailable = errors.New("network unavailable: no endpoints registered for backend")

// ParseVariant normalizes a variant name. It does not check the registry.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToUpper(strings.TrimSpace(s)))
	if v == "" {
		return "", errors.New("backend variant is empty")
	}
	return v, nil
}

// EndpointSet is the immutable URL bundle of one variant.
type EndpointSet struct {
	FindImageURL      string `json:"find_image_url"`
	UploadURLEndpoint string `json:"upload_url"`
	ListFacesURL      string `json:"list_faces_url"`
}

// Registry maps variants to their endpoint sets. It is built once and never mutated.
type Registry struct {
	sets map[Variant]EndpointSet
}

// NewRegistry copies the given sets into a new registry.
func NewRegistry(sets map[Variant]EndpointSet) *Registry {
	r := &Registry{sets: make(map[Variant]EndpointSet, len(sets))}
	for v, eps := range sets {
		r.sets[v] = eps
	}
	return r
}

// NewRegistryFromConfig builds the registry from the loaded configuration.
func NewRegistryFromConfig(cfg *config.Config) *Registry {
	sets := make(map[Variant]EndpointSet, len(cfg.Backend.Variants))
	for name, eps := range cfg.Backend.Variants {
		sets[Variant(strings.ToUpper(name))] = EndpointSet{
			FindImageURL:      eps.FindImageURL,
			UploadURLEndpoint: eps.UploadURL,
			ListFacesURL:      eps.ListFacesURL,
		}
	}
	return NewRegistry(sets)
}

// Resolve returns the endpoint set for a variant, or false if it is not registered.
func (r *Registry) Resolve(v Variant) (EndpointSet, bool) {
	eps, ok := r.sets[v]
	return eps, ok
}

// Variants returns the registered variants in a stable order.
func (r *Registry) Variants() []Variant {
	out := make([]Variant, 0, len(r.sets))
	for v := range r.sets {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether the variant is registered.
func (r *Registry) Has(v Variant) bool {
	_, ok := r.sets[v]
	return ok
}

// Action is a request to change the selector state.
type Action struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// SetBackend builds the action that switches to the given variant.
func SetBackend(v Variant) Action {
	return Action{Type: ActionSetBackend, Payload: string(v)}
}

// Reduce computes the next selector state. Unknown action types and
// empty payloads leave the state unchanged.
func Reduce(state Variant, action Action) Variant {
	switch action.Type {
	case ActionSetBackend:
		v, err := ParseVariant(action.Payload)
		if err != nil {
			return state
		}
		return v
	default:
		return state
	}
}

// Selector holds the active variant. Dispatch is the only way to change it.
type Selector struct {
	registry *Registry
	current  Variant
	mu       sync.RWMutex
}

// NewSelector creates a selector starting at the given variant (DefaultVariant when empty).
func NewSelector(registry *Registry, initial Variant) *Selector {
	if initial == "" {
		initial = DefaultVariant
	}
	return &Selector{registry: registry, current: initial}
}

// Dispatch applies an action and returns the resulting variant.
// Switching to a variant that is not registered is rejected.
func (s *Selector) Dispatch(action Action) (Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Reduce(s.current, action)
	if next != s.current && !s.registry.Has(next) {
		return s.current, fmt.Errorf("unknown backend %q", next)
	}
	s.current = next
	return next, nil
}

// Current returns the active variant.
func (s *Selector) Current() Variant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Registry returns the registry the selector resolves against.
func (s *Selector) Registry() *Registry {
	return s.registry
}

// Endpoints resolves the active variant at call time.
func (s *Selector) Endpoints() (Variant, EndpointSet, error) {
	v := s.Current()
	eps, ok := s.registry.Resolve(v)
	if !ok {
		return v, EndpointSet{}, fmt.Errorf("%w %s", ErrNetworkUnavailable, v)
	}
	return v, eps, nil
}
