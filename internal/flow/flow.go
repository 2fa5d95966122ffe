// Package flow implements the register, find and list workflows as small
// state machines. Each flow allows one in-flight request at a time and can be
// closed, which cancels that request and discards whatever it returns.
package flow

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/kozaktomas/facefinder/internal/backend"
	"github.com/kozaktomas/facefinder/internal/faceapi"
)

// API is the subset of the face API client the flows need.
type API interface {
	RequestUploadURL(ctx context.Context, eps backend.EndpointSet, req faceapi.UploadRequest) (*faceapi.PresignedUpload, error)
	PutObject(ctx context.Context, uploadURL, contentType string, body io.Reader, size int64) error
	Recognise(ctx context.Context, eps backend.EndpointSet, payload string) (*faceapi.RecognitionResult, error)
	ListFaces(ctx context.Context, eps backend.EndpointSet) ([]faceapi.FaceListItem, error)
}

var (
	ErrBusy        = errors.New("a request is already in flight")
	ErrClosed      = errors.New("flow is closed")
	ErrNotReady    = errors.New("flow is missing required input")
	ErrNoUploadURL = errors.New("backend response has no uploadURL")
)

// Kind identifies which workflow a view belongs to.
type Kind string

const (
	KindRegister Kind = "register"
	KindFind     Kind = "find"
	KindList     Kind = "list"
)

// State is a step of a workflow.
type State string

const (
	StateIdle          State = "idle"
	StateReady         State = "ready"
	StateRequestingURL State = "requesting_url"
	StateUploading     State = "uploading"
	StateRecognizing   State = "recognizing"
	StateLoading       State = "loading"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// IsTerminal reports whether the state ends a request.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// View is a snapshot of what a screen renders for a flow.
type View struct {
	ID         string                 `json:"id"`
	Kind       Kind                   `json:"kind"`
	State      State                  `json:"state"`
	Pending    bool                   `json:"pending"`
	CanSubmit  bool                   `json:"can_submit"`
	Backend    backend.Variant        `json:"backend,omitempty"`
	Message    string                 `json:"message,omitempty"`
	Greeting   string                 `json:"greeting,omitempty"`
	PersonName string                 `json:"person_name,omitempty"`
	FileName   string                 `json:"file_name,omitempty"`
	Faces      []faceapi.FaceListItem `json:"faces,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// Observer receives a copy of the view after every transition.
type Observer func(View)

// base carries the state shared by all flows.
type base struct {
	mu       sync.Mutex
	view     View
	observer Observer
	cancel   context.CancelFunc
	closed   bool
	ready    func() bool // called with mu held
}

func (b *base) init(kind Kind, ready func() bool) {
	b.view = View{ID: uuid.New().String(), Kind: kind, State: StateIdle}
	b.ready = ready
}

// ID returns the flow identifier used in logs and the API.
func (b *base) ID() string {
	return b.view.ID
}

// View returns a snapshot of the current view.
func (b *base) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// snapshot must be called with mu held.
func (b *base) snapshot() View {
	v := b.view
	v.Faces = slices.Clone(b.view.Faces)
	v.CanSubmit = !b.closed && !b.view.Pending && (b.ready == nil || b.ready())
	return v
}

// SetObserver registers the function notified on every transition.
func (b *base) SetObserver(o Observer) {
	b.mu.Lock()
	b.observer = o
	b.mu.Unlock()
}

// CanSubmit mirrors the enabled state of the submit control.
func (b *base) CanSubmit() bool {
	return b.View().CanSubmit
}

// Pending reports whether a request is in flight.
func (b *base) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view.Pending
}

// Closed reports whether the flow was torn down.
func (b *base) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// update applies fn to the view unless the flow is closed, then notifies the observer.
func (b *base) update(fn func(*View)) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	fn(&b.view)
	v := b.snapshot()
	observer := b.observer
	b.mu.Unlock()

	if observer != nil {
		observer(v)
	}
	return true
}

// begin starts a request. It fails with ErrClosed or ErrBusy without touching state.
func (b *base) begin(parent context.Context, state State, reset func(*View)) (context.Context, error) {
	b.mu.Lock()
	switch {
	case b.closed:
		b.mu.Unlock()
		return nil, ErrClosed
	case b.view.Pending:
		b.mu.Unlock()
		return nil, ErrBusy
	case b.ready != nil && !b.ready():
		b.mu.Unlock()
		return nil, ErrNotReady
	}

	ctx, cancel := context.WithCancel(parent)
	b.cancel = cancel
	b.view.State = state
	b.view.Pending = true
	b.view.Message = ""
	b.view.Error = ""
	if reset != nil {
		reset(&b.view)
	}
	v := b.snapshot()
	observer := b.observer
	b.mu.Unlock()

	if observer != nil {
		observer(v)
	}
	return ctx, nil
}

// end finishes a request on every exit path: pending is cleared and the
// request context released. Results of a closed flow are dropped.
func (b *base) end(fn func(*View)) bool {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.mu.Unlock()

	return b.update(func(v *View) {
		v.Pending = false
		fn(v)
	})
}

// Close cancels the in-flight request, if any, and stops all further updates.
func (b *base) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}
