package sse

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/tubescript/logger"
)

const clientBuffer = 64

// Client is one open event stream subscribed to a topic.
type Client struct {
	id     string
	topic  string
	events chan Event
}

// ID returns the client id.
func (c *Client) ID() string { return c.id }

// Topic returns the subscribed topic.
func (c *Client) Topic() string { return c.topic }

// Events returns the delivery channel. It is closed on unsubscribe.
func (c *Client) Events() <-chan Event { return c.events }

// Hub fans published events out to subscribers of a topic. Topics are job
// or batch ids. Slow subscribers drop events rather than block publishers.
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]map[string]*Client
	stopped bool
	log     *logger.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[string]*Client), log: logger.Get("sse")}
}

// Subscribe registers a new client for topic. It returns nil once the hub
// is stopped.
func (h *Hub) Subscribe(topic string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return nil
	}
	c := &Client{id: uuid.NewString(), topic: topic, events: make(chan Event, clientBuffer)}
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[string]*Client)
	}
	h.topics[topic][c.id] = c
	return c
}

// Unsubscribe removes c and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(c *Client) {
	if c == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.topics[c.topic]
	if _, ok := subs[c.id]; !ok {
		return
	}
	delete(subs, c.id)
	if len(subs) == 0 {
		delete(h.topics, c.topic)
	}
	close(c.events)
}

// Publish marshals payload and delivers it to every subscriber of topic.
func (h *Hub) Publish(topic, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to encode event", map[string]interface{}{
			"topic": topic,
			"type":  eventType,
			"error": err.Error(),
		})
		return
	}
	h.Broadcast(topic, Event{Type: eventType, Data: data})
}

// Broadcast delivers a pre-encoded event to subscribers of topic.
func (h *Hub) Broadcast(topic string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.topics[topic] {
		select {
		case c.events <- ev:
		default:
			h.log.Warn("subscriber too slow, dropping event", map[string]interface{}{
				"topic":     topic,
				"client_id": c.id,
			})
		}
	}
}

// ClientCount returns the number of open subscriptions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, subs := range h.topics {
		n += len(subs)
	}
	return n
}

// Stop closes every subscription and rejects new ones.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	for topic, subs := range h.topics {
		for _, c := range subs {
			close(c.events)
		}
		delete(h.topics, topic)
	}
}
