package observability

import (
	"context"
	"errors"
)

// Setup initializes tracing and metrics when cfg.Enabled and returns a
// shutdown function that flushes both. When disabled it returns a no-op.
func Setup(ctx context.Context, svc ServiceInfo, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	tp, err := InitTracer(ctx, svc, cfg)
	if err != nil {
		return nil, err
	}
	mp, err := InitMeter(ctx, svc, cfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
