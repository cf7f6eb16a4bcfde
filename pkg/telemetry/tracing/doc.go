// Package tracing provides OpenTelemetry tracing for the rules service.
//
// Spans are exported over OTLP gRPC. Sampling is "always", "never" or
// "ratio", each wrapped in a parent-based sampler. When tracing is disabled
// New returns a noop tracer and no connection is attempted.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(version))
//	defer tracer.Shutdown(ctx)
//
//	ctx, span := tracer.Start(ctx, "rules.evaluate")
//	tracing.SetEvaluationAttributes(span, revision, result)
//	span.End()
//
// HTTPMiddleware extracts W3C trace context from incoming requests.
package tracing
