package component

import (
	"context"
	"fmt"
	"testing"
)

type fakeComponent struct {
	name     string
	startErr error
	stopErr  error
	status   HealthStatus
	events   *[]string
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	*f.events = append(*f.events, "start:"+f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(context.Context) error {
	*f.events = append(*f.events, "stop:"+f.name)
	return f.stopErr
}

func (f *fakeComponent) Health(context.Context) Health {
	return Health{Name: f.name, Status: f.status}
}

type describedComponent struct {
	fakeComponent
}

func (d *describedComponent) Describe() Description {
	return Description{Type: "server", Port: 8080}
}

func TestRegistry_Lifecycle(t *testing.T) {
	var events []string
	r := NewRegistry()
	for _, name := range []string{"redis", "sse", "http"} {
		if err := r.Register(&fakeComponent{name: name, status: StatusHealthy, events: &events}); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Register(&fakeComponent{name: "sse", events: &events}); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatal(err)
	}

	want := []string{"start:redis", "start:sse", "start:http", "stop:http", "stop:sse", "stop:redis"}
	if fmt.Sprint(events) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if r.Get("sse") == nil || r.Get("kafka") != nil {
		t.Error("unexpected Get result")
	}
}

func TestRegistry_StartFailureStopsOnlyStarted(t *testing.T) {
	var events []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "a", events: &events})
	_ = r.Register(&fakeComponent{name: "b", startErr: fmt.Errorf("port in use"), events: &events})
	_ = r.Register(&fakeComponent{name: "c", events: &events})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
	events = nil
	_ = r.StopAll(context.Background())
	if fmt.Sprint(events) != "[stop:a]" {
		t.Errorf("expected only a to be stopped, got %v", events)
	}
}

func TestRegistry_StopCollectsErrors(t *testing.T) {
	var events []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "a", stopErr: fmt.Errorf("a"), events: &events})
	_ = r.Register(&fakeComponent{name: "b", stopErr: fmt.Errorf("b"), events: &events})
	_ = r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Fatal("expected aggregated stop error")
	}
	if len(events) != 4 {
		t.Errorf("expected both components stopped, got %v", events)
	}
}

func TestRegistry_HealthAndDescribe(t *testing.T) {
	var events []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "redis", status: StatusDegraded, events: &events})
	_ = r.Register(&describedComponent{fakeComponent{name: "http", status: StatusHealthy, events: &events}})

	reports := r.HealthAll(context.Background())
	if len(reports) != 2 || reports[0].Name != "redis" {
		t.Fatalf("unexpected reports %+v", reports)
	}
	if got := Overall(reports); got != StatusDegraded {
		t.Errorf("Overall = %s, want degraded", got)
	}

	descs := r.Describe()
	if len(descs) != 1 || descs[0].Name != "http" || descs[0].Port != 8080 {
		t.Errorf("unexpected descriptions %+v", descs)
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		reports []Health
		want    HealthStatus
	}{
		{nil, StatusHealthy},
		{[]Health{{Status: StatusHealthy}, {Status: StatusDegraded}}, StatusDegraded},
		{[]Health{{Status: StatusDegraded}, {Status: StatusUnhealthy}}, StatusUnhealthy},
	}
	for _, tt := range tests {
		if got := Overall(tt.reports); got != tt.want {
			t.Errorf("Overall(%v) = %s, want %s", tt.reports, got, tt.want)
		}
	}
}

func TestRegistry_StartAllSkipsStarted(t *testing.T) {
	var events []string
	r := NewRegistry()
	ctx := context.Background()
	_ = r.Register(&fakeComponent{name: "redis", events: &events})
	if err := r.StartAll(ctx); err != nil {
		t.Fatal(err)
	}
	_ = r.Register(&fakeComponent{name: "http", events: &events})
	if err := r.StartAll(ctx); err != nil {
		t.Fatal(err)
	}

	want := []string{"start:redis", "start:http"}
	if fmt.Sprint(events) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}
