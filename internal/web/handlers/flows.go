package handlers

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/facefinder/internal/constants"
	"github.com/kozaktomas/facefinder/internal/flow"
)

// FlowEvent is one state transition streamed to listeners.
type FlowEvent struct {
	Type string    `json:"type"`
	View flow.View `json:"view"`
}

// Event types sent over SSE.
const (
	EventState     = "state"
	EventCompleted = "completed"
	EventFailed    = "failed"
	EventCancelled = "cancelled"
)

// eventType names the transition a view represents.
func eventType(v flow.View) string {
	switch {
	case v.Pending:
		return EventState
	case v.State == flow.StateDone:
		return EventCompleted
	case v.State == flow.StateFailed:
		return EventFailed
	default:
		return EventState
	}
}

// EventBroadcaster provides listener management and event broadcasting for flows.
// Embed this in job structs to get AddListener, RemoveListener, and SendEvent methods.
type EventBroadcaster struct {
	listeners []chan FlowEvent
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *EventBroadcaster) AddListener() chan FlowEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan FlowEvent, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan FlowEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event FlowEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// runnableFlow is what the manager needs from flow.Upload, flow.Find and flow.List.
type runnableFlow interface {
	ID() string
	View() flow.View
	SetObserver(o flow.Observer)
	Closed() bool
	Close()
}

// FlowJob is a flow running in the background, owned by the FlowManager.
type FlowJob struct {
	EventBroadcaster

	flow      runnableFlow
	createdAt time.Time
}

func newFlowJob(f runnableFlow) *FlowJob {
	job := &FlowJob{flow: f, createdAt: time.Now()}
	f.SetObserver(func(v flow.View) {
		job.SendEvent(FlowEvent{Type: eventType(v), View: v})
	})
	return job
}

// ID returns the flow ID.
func (j *FlowJob) ID() string {
	return j.flow.ID()
}

// View returns the current flow view.
func (j *FlowJob) View() flow.View {
	return j.flow.View()
}

// Done reports whether no more events will be sent.
func (j *FlowJob) Done() bool {
	if j.flow.Closed() {
		return true
	}
	v := j.flow.View()
	return !v.Pending && v.State.IsTerminal()
}

// Cancel closes the flow, which cancels its request and drops late results.
func (j *FlowJob) Cancel() {
	j.flow.Close()
	j.SendEvent(FlowEvent{Type: EventCancelled, View: j.flow.View()})
}

// FlowManager keeps background flows addressable by ID.
type FlowManager struct {
	jobs      map[string]*FlowJob
	retention time.Duration
	mu        sync.RWMutex
}

// NewFlowManager creates a new flow manager. Finished flows are dropped after retention.
func NewFlowManager(retention time.Duration) *FlowManager {
	if retention <= 0 {
		retention = constants.FlowRetention
	}
	return &FlowManager{
		jobs:      make(map[string]*FlowJob),
		retention: retention,
	}
}

// Start registers the flow and runs it in the background.
func (m *FlowManager) Start(f runnableFlow, run func(ctx context.Context) error) *FlowJob {
	job := newFlowJob(f)

	m.mu.Lock()
	m.pruneLocked(time.Now())
	m.jobs[job.ID()] = job
	m.mu.Unlock()

	go func() {
		if err := run(context.Background()); err != nil {
			log.Printf("flow %s finished with error: %s", job.ID(), sanitizeForLog(err.Error()))
		}
	}()
	return job
}

// pruneLocked removes finished flows older than the retention. mu must be held.
func (m *FlowManager) pruneLocked(now time.Time) {
	for id, job := range m.jobs {
		if job.Done() && now.Sub(job.createdAt) > m.retention {
			delete(m.jobs, id)
		}
	}
}

// GetJob retrieves a flow by ID.
func (m *FlowManager) GetJob(id string) *FlowJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// DeleteJob cancels and removes a flow.
func (m *FlowManager) DeleteJob(id string) bool {
	m.mu.Lock()
	job, ok := m.jobs[id]
	delete(m.jobs, id)
	m.mu.Unlock()

	if ok {
		job.Cancel()
	}
	return ok
}

// CloseAll cancels every flow, used on shutdown.
func (m *FlowManager) CloseAll() {
	m.mu.Lock()
	jobs := m.jobs
	m.jobs = make(map[string]*FlowJob)
	m.mu.Unlock()

	for _, job := range jobs {
		job.Cancel()
	}
}

// FlowsHandler exposes register and find as asynchronous flows.
type FlowsHandler struct {
	register *RegisterHandler
	find     *FindHandler
	manager  *FlowManager
}

// NewFlowsHandler creates a new flows handler.
func NewFlowsHandler(register *RegisterHandler, find *FindHandler, manager *FlowManager) *FlowsHandler {
	return &FlowsHandler{
		register: register,
		find:     find,
		manager:  manager,
	}
}

func respondStarted(w http.ResponseWriter, job *FlowJob) {
	view := job.View()
	respondJSON(w, http.StatusAccepted, map[string]string{
		"flow_id": view.ID,
		"kind":    string(view.Kind),
		"state":   string(view.State),
	})
}

// StartRegister starts an upload flow in the background.
func (h *FlowsHandler) StartRegister(w http.ResponseWriter, r *http.Request) {
	u, err := h.register.newUpload(w, r)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondStarted(w, h.manager.Start(u, u.Submit))
}

// StartFind starts a find flow in the background.
func (h *FlowsHandler) StartFind(w http.ResponseWriter, r *http.Request) {
	f, err := h.find.newFind(w, r)
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondStarted(w, h.manager.Start(f, f.Submit))
}

// lookup finds the flow from the "flowId" URL parameter, writing the error response if absent.
func (h *FlowsHandler) lookup(w http.ResponseWriter, r *http.Request) *FlowJob {
	flowID := chi.URLParam(r, "flowId")
	if flowID == "" {
		respondError(w, http.StatusBadRequest, "missing flow ID")
		return nil
	}

	job := h.manager.GetJob(flowID)
	if job == nil {
		respondError(w, http.StatusNotFound, "flow not found")
		return nil
	}
	return job
}

// Status returns the current view of a flow.
func (h *FlowsHandler) Status(w http.ResponseWriter, r *http.Request) {
	job := h.lookup(w, r)
	if job == nil {
		return
	}
	respondJSON(w, http.StatusOK, job.View())
}

// Events streams flow transitions via SSE.
func (h *FlowsHandler) Events(w http.ResponseWriter, r *http.Request) {
	streamSSEEvents(w, r, func(id string) SSEJob {
		job := h.manager.GetJob(id)
		if job == nil {
			return nil
		}
		return job
	})
}

// Cancel tears a flow down.
func (h *FlowsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowId")
	if !h.manager.DeleteJob(flowID) {
		respondError(w, http.StatusNotFound, "flow not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}
