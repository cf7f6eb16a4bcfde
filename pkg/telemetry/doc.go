// Package telemetry bundles the service's observability: structured
// logging with PII redaction, Prometheus metrics, OpenTelemetry tracing and
// health probes.
//
//	tel, err := telemetry.New(&cfg.Telemetry, telemetry.BuildInfo{Version: version})
//	if err != nil {
//		return err
//	}
//	defer tel.Shutdown(ctx)
//
//	evaluator, err := engine.NewEvaluator(lib, guardrails,
//		engine.WithLogger(tel.Logger().Slog()),
//		engine.WithObserver(tel.Metrics()))
//
// Logs redact buyer emails, phone numbers, card numbers and repository
// credentials by default.
package telemetry
