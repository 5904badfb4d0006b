package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/tubescript/logger"
)

// DefaultKeepAlive is the interval between keep-alive comments.
const DefaultKeepAlive = 30 * time.Second

type connectedEvent struct {
	ClientID string `json:"client_id"`
	Topic    string `json:"topic"`
}

// Serve streams events for topic until the request ends or the hub closes
// the subscription. initial events are written right after the connected
// event, before anything published later.
func Serve(hub *Hub, w http.ResponseWriter, r *http.Request, topic string, keepAlive time.Duration, initial ...Event) {
	log := logger.Get("sse")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not disable write deadline", map[string]interface{}{"error": err.Error()})
	}

	client := hub.Subscribe(topic)
	if client == nil {
		http.Error(w, "event hub stopped", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unsubscribe(client)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	hello, _ := json.Marshal(connectedEvent{ClientID: client.ID(), Topic: topic})
	_, _ = w.Write(Event{Type: EventConnected, Data: hello}.Encode())
	for _, ev := range initial {
		_, _ = w.Write(ev.Encode())
	}
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-client.Events():
			if !ok {
				return
			}
			_, _ = w.Write(ev.Encode())
			flusher.Flush()
		case <-ticker.C:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}
