package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestHub_PublishToTopic(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe("job-1")
	b := hub.Subscribe("job-2")
	defer hub.Unsubscribe(a)
	defer hub.Unsubscribe(b)

	hub.Publish("job-1", EventJob, map[string]any{"progress": 0.3})

	select {
	case ev := <-a.Events():
		if ev.Type != EventJob || string(ev.Data) != `{"progress":0.3}` {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}
	select {
	case ev := <-b.Events():
		t.Errorf("other topic received %+v", ev)
	default:
	}
}

func TestHub_SlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub()
	c := hub.Subscribe("t")
	for range clientBuffer + 10 {
		hub.Broadcast("t", Event{Data: []byte("x")})
	}
	if len(c.events) != clientBuffer {
		t.Errorf("expected buffer to cap at %d, got %d", clientBuffer, len(c.events))
	}
}

func TestHub_UnsubscribeAndStop(t *testing.T) {
	hub := NewHub()
	c := hub.Subscribe("t")
	hub.Unsubscribe(c)
	hub.Unsubscribe(c)
	if _, ok := <-c.Events(); ok {
		t.Error("expected closed channel after unsubscribe")
	}

	d := hub.Subscribe("t")
	hub.Stop()
	hub.Stop()
	if _, ok := <-d.Events(); ok {
		t.Error("expected closed channel after stop")
	}
	if hub.Subscribe("t") != nil {
		t.Error("stopped hub must reject subscriptions")
	}
	hub.Publish("t", EventJob, "ignored")
	if hub.ClientCount() != 0 {
		t.Errorf("expected no clients, got %d", hub.ClientCount())
	}
}

func TestHub_ConcurrentPublish(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c := hub.Subscribe("t")
			hub.Unsubscribe(c)
		}()
		go func() {
			defer wg.Done()
			hub.Publish("t", EventBatch, i)
		}()
	}
	wg.Wait()
}

func TestEventEncode(t *testing.T) {
	if got := string(Event{Type: "job", Data: []byte(`{}`)}.Encode()); got != "event: job\ndata: {}\n\n" {
		t.Errorf("unexpected framing %q", got)
	}
	if got := string(Event{Data: []byte("x")}.Encode()); got != "data: x\n\n" {
		t.Errorf("unexpected framing %q", got)
	}
}

func TestServe(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Serve(hub, w, r, "job-1", time.Hour, Event{Type: EventJob, Data: []byte(`{"status":"queued"}`)})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		var b strings.Builder
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if line == "\n" {
				return b.String()
			}
			b.WriteString(line)
		}
	}

	if ev := readEvent(); !strings.HasPrefix(ev, "event: connected\n") {
		t.Fatalf("expected connected event, got %q", ev)
	}
	if ev := readEvent(); !strings.Contains(ev, `"status":"queued"`) {
		t.Fatalf("expected initial snapshot, got %q", ev)
	}

	hub.Publish("job-1", EventJob, map[string]string{"status": "processing"})
	if ev := readEvent(); !strings.Contains(ev, `"status":"processing"`) {
		t.Fatalf("expected published event, got %q", ev)
	}
}

func TestComponent(t *testing.T) {
	c := NewComponent("/api/events")
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	sub := c.Hub().Subscribe("t")
	if h := c.Health(ctx); h.Message != "1 clients connected" {
		t.Errorf("unexpected health %+v", h)
	}
	_ = c.Stop(ctx)
	if _, ok := <-sub.Events(); ok {
		t.Error("expected stream closed on stop")
	}
	if d := c.Describe(); d.Details != "Path: /api/events" {
		t.Errorf("unexpected description %+v", d)
	}
}
