// Package observability wires OpenTelemetry tracing and metrics for the
// pipeline. Setup installs OTLP/HTTP exporters when enabled; otherwise the
// global no-op providers remain and StartSpan and PipelineMetrics record
// nothing.
//
//	shutdown, err := observability.Setup(ctx, svc, cfg.Observability)
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanJob,
//	    attribute.String(observability.AttrJobID, id))
//	defer observability.EndSpan(span, "completed", nil)
package observability
