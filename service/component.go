package service

import (
	"context"
	"fmt"

	"github.com/kbukum/tubescript/component"
)

var (
	_ component.Component   = (*Service)(nil)
	_ component.Describable = (*Service)(nil)
)

// Name returns the component name.
func (s *Service) Name() string { return "pipeline" }

// Start is a no-op; the service accepts work once constructed.
func (s *Service) Start(context.Context) error { return nil }

// Stop shuts the service down.
func (s *Service) Stop(ctx context.Context) error { return s.Shutdown(ctx) }

// Health reports pipeline slot usage. A service that is shutting down is
// unhealthy.
func (s *Service) Health(context.Context) component.Health {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	h := component.Health{
		Name:    s.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d/%d pipeline slots in use", s.slots.InUse(), s.slots.MaxConcurrent()),
	}
	if closed {
		h.Status = component.StatusUnhealthy
		h.Message = "shutting down"
	}
	return h
}

// Describe returns the startup summary.
func (s *Service) Describe() component.Description {
	return component.Description{
		Name:    "Pipeline",
		Type:    "worker",
		Details: fmt.Sprintf("jobs=%d batch_items=%d", s.cfg.MaxConcurrentJobs, s.cfg.BatchConcurrency),
	}
}
