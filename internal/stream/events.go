package stream

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// EventsHandler streams broadcast values as server-sent events, one JSON
// document per event. The web UI follows the playhead through this.
type EventsHandler[T any] struct {
	events *Broadcaster[T]
}

// NewEventsHandler creates an SSE handler over a broadcaster.
func NewEventsHandler[T any](events *Broadcaster[T]) *EventsHandler[T] {
	return &EventsHandler[T]{events: events}
}

func (h *EventsHandler[T]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	listener := h.events.Subscribe()
	defer h.events.Unsubscribe(listener)

	log.Printf("SSE listener connected (total: %d)", h.events.ListenerCount())
	defer log.Printf("SSE listener disconnected")

	// Comments keep idle connections alive through proxies while the
	// transport is stopped and no events flow.
	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-listener.done:
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case v, ok := <-listener.C:
			if !ok {
				return
			}
			data, err := json.Marshal(v)
			if err != nil {
				log.Printf("SSE: marshal error: %v", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
