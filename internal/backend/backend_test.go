package backend

import (
	"errors"
	"sync"
	"testing"

	"github.com/kozaktomas/facefinder/internal/config"
)

func testRegistry() *Registry {
	return NewRegistry(map[Variant]EndpointSet{
		Java: {
			FindImageURL:      "http://java/recognise",
			UploadURLEndpoint: "http://java/upload-url",
			ListFacesURL:      "http://java/list-faces",
		},
		Python: {
			FindImageURL:      "http://python/recognise",
			UploadURLEndpoint: "http://python/upload-url",
			ListFacesURL:      "http://python/list-faces",
		},
	})
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		input    string
		expected Variant
		wantErr  bool
	}{
		{"JAVA", Java, false},
		{"python", Python, false},
		{"  Java ", Java, false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVariant(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVariant(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseVariant(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name     string
		state    Variant
		action   Action
		expected Variant
	}{
		{"set python", Java, SetBackend(Python), Python},
		{"set java", Python, Action{Type: ActionSetBackend, Payload: "java"}, Java},
		{"unknown action", Java, Action{Type: "RESET", Payload: "PYTHON"}, Java},
		{"empty payload", Python, Action{Type: ActionSetBackend}, Python},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reduce(tt.state, tt.action); got != tt.expected {
				t.Errorf("Reduce(%q, %+v) = %q, want %q", tt.state, tt.action, got, tt.expected)
			}
		})
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := testRegistry()

	eps, ok := r.Resolve(Python)
	if !ok {
		t.Fatal("expected PYTHON to resolve")
	}
	if eps.FindImageURL != "http://python/recognise" {
		t.Errorf("unexpected find URL '%s'", eps.FindImageURL)
	}

	if _, ok := r.Resolve("RUST"); ok {
		t.Error("expected unregistered variant to fail resolving")
	}
}

func TestRegistry_Variants(t *testing.T) {
	got := testRegistry().Variants()
	if len(got) != 2 || got[0] != Java || got[1] != Python {
		t.Errorf("expected [JAVA PYTHON], got %v", got)
	}
}

func TestNewRegistryFromConfig(t *testing.T) {
	cfg := &config.Config{
		Backend: config.BackendConfig{
			Variants: map[string]config.EndpointsConfig{
				"python": {FindImageURL: "f", UploadURL: "u", ListFacesURL: "l"},
			},
		},
	}

	r := NewRegistryFromConfig(cfg)
	eps, ok := r.Resolve(Python)
	if !ok {
		t.Fatal("expected lower-case config key to register as PYTHON")
	}
	if eps.UploadURLEndpoint != "u" || eps.ListFacesURL != "l" || eps.FindImageURL != "f" {
		t.Errorf("unexpected endpoint set %+v", eps)
	}
}

func TestSelector_DefaultsToJava(t *testing.T) {
	s := NewSelector(testRegistry(), "")
	if s.Current() != Java {
		t.Errorf("expected JAVA, got %s", s.Current())
	}
}

func TestSelector_SwitchTargetsNewEndpoints(t *testing.T) {
	s := NewSelector(testRegistry(), Java)

	_, eps, err := s.Endpoints()
	if err != nil {
		t.Fatalf("Endpoints failed: %v", err)
	}
	if eps.UploadURLEndpoint != "http://java/upload-url" {
		t.Errorf("expected java endpoints, got %+v", eps)
	}

	if _, err := s.Dispatch(SetBackend(Python)); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	v, eps, err := s.Endpoints()
	if err != nil {
		t.Fatalf("Endpoints failed: %v", err)
	}
	if v != Python || eps.UploadURLEndpoint != "http://python/upload-url" {
		t.Errorf("expected python endpoints after switch, got %s %+v", v, eps)
	}
}

func TestSelector_RejectsUnknownVariant(t *testing.T) {
	s := NewSelector(testRegistry(), Python)

	v, err := s.Dispatch(SetBackend("RUST"))
	if err == nil {
		t.Fatal("expected error for unregistered variant")
	}
	if v != Python || s.Current() != Python {
		t.Errorf("expected state to stay PYTHON, got %s", s.Current())
	}
}

func TestSelector_UnregisteredInitialIsNetworkUnavailable(t *testing.T) {
	s := NewSelector(testRegistry(), "RUST")

	_, _, err := s.Endpoints()
	if !errors.Is(err, ErrNetworkUnavailable) {
		t.Errorf("expected ErrNetworkUnavailable, got %v", err)
	}
}

func TestSelector_ConcurrentAccess(t *testing.T) {
	s := NewSelector(testRegistry(), Java)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.Dispatch(SetBackend(Python))
			} else {
				s.Dispatch(SetBackend(Java))
			}
		}(i)
		go func() {
			defer wg.Done()
			if _, _, err := s.Endpoints(); err != nil {
				t.Errorf("Endpoints failed: %v", err)
			}
		}()
	}
	wg.Wait()
}
