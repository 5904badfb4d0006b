package bootstrap

import (
	"context"
	"time"

	"github.com/kbukum/tubescript/component"
	"github.com/kbukum/tubescript/logger"
)

// LogSummary logs one line per describable component with its health,
// followed by the startup totals.
func LogSummary(log *logger.Logger, name, version string, registry *component.Registry, startup time.Duration) {
	health := registry.HealthAll(context.Background())

	for _, d := range registry.Describe() {
		fields := map[string]interface{}{
			"type":    d.Type,
			"details": d.Details,
		}
		if d.Port != 0 {
			fields["port"] = d.Port
		}
		log.Info(d.Name, fields)
	}
	for _, h := range health {
		if h.Status != component.StatusHealthy {
			log.Warn("Component not healthy", logger.Fields(logger.FieldComponent, h.Name, logger.FieldStatus, string(h.Status), "message", h.Message))
		}
	}

	log.Info("Startup complete", map[string]interface{}{
		"name":         name,
		"version":      version,
		"components":   len(health),
		"startup_time": startup.Round(time.Millisecond).String(),
	})
}
