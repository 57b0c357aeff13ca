package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/kozaktomas/smart-attendance/internal/status"
)

// setupSSEConnection sets the SSE headers. On failure it writes an error response and returns false.
func setupSSEConnection(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return flusher, true
}

// streamBoard sends the current snapshot, then every board event until the client disconnects.
func streamBoard(w http.ResponseWriter, r *http.Request, board *status.Board) {
	flusher, ok := setupSSEConnection(w)
	if !ok {
		return
	}

	eventCh := board.AddListener()
	defer board.RemoveListener(eventCh)

	snap := board.Snapshot()
	sendSSEEvent(w, flusher, status.EventStatus, status.Event{
		Type:      status.EventStatus,
		Status:    snap.Status,
		Countdown: snap.Countdown,
	})

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, event.Type, event)
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
