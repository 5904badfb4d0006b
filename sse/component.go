package sse

import (
	"context"
	"fmt"

	"github.com/kbukum/tubescript/component"
)

// Component ties the hub lifecycle to the component registry.
type Component struct {
	hub  *Hub
	path string
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a component with a fresh hub served under path.
func NewComponent(path string) *Component {
	return &Component{hub: NewHub(), path: path}
}

// Hub returns the hub.
func (c *Component) Hub() *Hub { return c.hub }

// Name returns the component name.
func (c *Component) Name() string { return "sse" }

// Start is a no-op; the hub is ready on construction.
func (c *Component) Start(context.Context) error { return nil }

// Stop closes all open streams.
func (c *Component) Stop(context.Context) error {
	c.hub.Stop()
	return nil
}

// Health reports the number of open streams.
func (c *Component) Health(context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clients connected", c.hub.ClientCount()),
	}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	return component.Description{Name: "SSE Hub", Type: "sse", Details: "Path: " + c.path}
}
