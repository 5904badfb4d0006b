package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/tubescript/component"
	"github.com/kbukum/tubescript/config"
	"github.com/kbukum/tubescript/logger"
)

type testConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Workers              int
}

func (c *testConfig) GetServiceConfig() *config.ServiceConfig { return &c.ServiceConfig }

func (c *testConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Workers == 0 {
		c.Workers = 2
	}
}

func (c *testConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}
	return c.ServiceConfig.Validate()
}

type recorder struct {
	name     string
	startErr error
	events   *[]string
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Start(context.Context) error {
	*r.events = append(*r.events, "start:"+r.name)
	return r.startErr
}

func (r *recorder) Stop(context.Context) error {
	*r.events = append(*r.events, "stop:"+r.name)
	return nil
}

func (r *recorder) Health(context.Context) component.Health {
	return component.Health{Name: r.name, Status: component.StatusHealthy}
}

func newTestApp(t *testing.T, workers int) (*App[*testConfig], error) {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "tubescript"}, Workers: workers}
	return NewApp(cfg, WithLogger(logger.NewDefault("test")), WithGracefulTimeout(time.Second))
}

func TestNewApp_ValidatesConfig(t *testing.T) {
	app, err := newTestApp(t, 0)
	if err != nil {
		t.Fatal(err)
	}
	if app.Cfg.Workers != 2 || app.Name != "tubescript" {
		t.Fatalf("defaults not applied: %+v", app.Cfg)
	}
	if _, err := newTestApp(t, -1); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestApp_RunLifecycle(t *testing.T) {
	app, err := newTestApp(t, 1)
	if err != nil {
		t.Fatal(err)
	}
	var events []string
	_ = app.RegisterComponent(&recorder{name: "redis", events: &events})
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		events = append(events, "configure")
		return a.RegisterComponent(&recorder{name: "http", events: &events})
	})
	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		events = append(events, "ready")
		cancel()
		return nil
	})
	app.OnStop(func(context.Context) error {
		events = append(events, "onstop")
		return nil
	})

	if err := app.Run(ctx); err != nil {
		t.Fatal(err)
	}

	want := "start:redis configure start:http ready onstop stop:http stop:redis"
	if got := strings.Join(events, " "); got != want {
		t.Fatalf("events = %q, want %q", got, want)
	}
}

func TestApp_StartFailureStopsStarted(t *testing.T) {
	app, err := newTestApp(t, 1)
	if err != nil {
		t.Fatal(err)
	}
	var events []string
	_ = app.RegisterComponent(&recorder{name: "redis", events: &events})
	_ = app.RegisterComponent(&recorder{name: "http", startErr: errors.New("port in use"), events: &events})

	err = app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "port in use") {
		t.Fatalf("expected start error, got %v", err)
	}
	want := "start:redis start:http stop:redis"
	if got := strings.Join(events, " "); got != want {
		t.Fatalf("events = %q, want %q", got, want)
	}
}

func TestApp_ConfigureFailure(t *testing.T) {
	app, err := newTestApp(t, 1)
	if err != nil {
		t.Fatal(err)
	}
	app.OnConfigure(func(context.Context, *App[*testConfig]) error { return errors.New("no providers") })
	if err := app.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "configuration failed") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
