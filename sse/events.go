package sse

import "fmt"

// Event types delivered to subscribers.
const (
	EventConnected = "connected"
	EventJob       = "job"
	EventBatch     = "batch"
)

// Event is one server-sent event.
type Event struct {
	Type string
	Data []byte
}

// Encode renders the event in text/event-stream framing.
func (e Event) Encode() []byte {
	if e.Type == "" {
		return fmt.Appendf(nil, "data: %s\n\n", e.Data)
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", e.Type, e.Data)
}
