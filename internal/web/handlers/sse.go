package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/facefinder/internal/flow"
)

// SSEJob is the interface required by streamSSEEvents to stream flow events via SSE.
type SSEJob interface {
	AddListener() chan FlowEvent
	RemoveListener(ch chan FlowEvent)
	Done() bool
	View() flow.View
}

// setupSSEConnection validates the request, finds the flow, and sets up SSE headers.
// Returns the flow, flusher, and true on success. On failure, writes an error response and returns zero values with false.
func setupSSEConnection(w http.ResponseWriter, r *http.Request, lookupJob func(string) SSEJob) (SSEJob, http.Flusher, bool) {
	flowID := chi.URLParam(r, "flowId")
	if flowID == "" {
		respondError(w, http.StatusBadRequest, "missing flow ID")
		return nil, nil, false
	}

	job := lookupJob(flowID)
	if job == nil {
		respondError(w, http.StatusNotFound, "flow not found")
		return nil, nil, false
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return nil, nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return job, flusher, true
}

// streamSSEEvents streams events from an SSEJob until the flow finishes,
// the client disconnects, or the event channel closes.
func streamSSEEvents(w http.ResponseWriter, r *http.Request, lookupJob func(string) SSEJob) {
	job, flusher, ok := setupSSEConnection(w, r, lookupJob)
	if !ok {
		return
	}

	eventCh := job.AddListener()
	defer job.RemoveListener(eventCh)

	done := job.Done()
	sendSSEEvent(w, flusher, "status", FlowEvent{Type: "status", View: job.View()})
	if done {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, event.Type, event)
			if event.Type != EventState && job.Done() {
				return
			}
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: ")
	_, _ = io.Copy(w, bytes.NewReader(jsonData))
	_, _ = io.WriteString(w, "\n\n")
	flusher.Flush()
}
