package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/tubescript/logger"
)

// InitMeter installs a periodic OTLP/HTTP meter provider as the global one.
func InitMeter(ctx context.Context, svc ServiceInfo, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(svc)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricInterval.String(),
	))
	return mp, nil
}

// Meter returns the module meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// PipelineMetrics holds the instruments recorded by the job and batch
// controllers.
type PipelineMetrics struct {
	jobsTotal     metric.Int64Counter
	jobsActive    metric.Int64UpDownCounter
	jobDuration   metric.Float64Histogram
	stageDuration metric.Float64Histogram
	batchItems    metric.Int64Counter
}

// NewPipelineMetrics creates the instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	jobsTotal, err := meter.Int64Counter("tubescript.jobs.total",
		metric.WithDescription("Finished jobs by final status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobs.total counter: %w", err)
	}
	jobsActive, err := meter.Int64UpDownCounter("tubescript.jobs.active",
		metric.WithDescription("Jobs currently holding a pipeline slot"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating jobs.active counter: %w", err)
	}
	jobDuration, err := meter.Float64Histogram("tubescript.job.duration",
		metric.WithDescription("Wall time of a job run"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating job.duration histogram: %w", err)
	}
	stageDuration, err := meter.Float64Histogram("tubescript.stage.duration",
		metric.WithDescription("Wall time of a pipeline stage"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stage.duration histogram: %w", err)
	}
	batchItems, err := meter.Int64Counter("tubescript.batch.items",
		metric.WithDescription("Batch items by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch.items counter: %w", err)
	}
	return &PipelineMetrics{
		jobsTotal:     jobsTotal,
		jobsActive:    jobsActive,
		jobDuration:   jobDuration,
		stageDuration: stageDuration,
		batchItems:    batchItems,
	}, nil
}

// MustPipelineMetrics creates instruments on the global meter, falling back
// to nil (no recording) if they cannot be created.
func MustPipelineMetrics() *PipelineMetrics {
	m, err := NewPipelineMetrics(Meter())
	if err != nil {
		logger.Warn("pipeline metrics disabled", logger.Fields(logger.FieldError, err.Error()))
		return nil
	}
	return m
}

// JobStarted marks a job as holding a pipeline slot. Nil-safe.
func (m *PipelineMetrics) JobStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.jobsActive.Add(ctx, 1)
}

// JobFinished records the outcome of a job run. Nil-safe.
func (m *PipelineMetrics) JobFinished(ctx context.Context, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobsActive.Add(ctx, -1)
	m.jobsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStatus, status)))
	m.jobDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String(AttrStatus, status)))
}

// StageFinished records one stage duration. Nil-safe.
func (m *PipelineMetrics) StageFinished(ctx context.Context, stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrStage, stage),
		attribute.String(AttrStatus, outcome),
	))
}

// BatchItem counts one finished batch item. Nil-safe.
func (m *PipelineMetrics) BatchItem(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.batchItems.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStatus, outcome)))
}
