// Package server exposes the rules engine over HTTP.
//
// The server evaluates records against the manager's active configuration
// (or an inline one), explains passes rule by rule, and lets operators
// inspect, reload and roll back rules. Probes and the Prometheus endpoint
// share the same router.
//
// # Routes
//
//	POST /v1/evaluate                       evaluate a record
//	POST /v1/explain                        evaluate with per-rule traces
//	GET  /v1/rules                          active snapshot metadata
//	POST /v1/rules/reload                   reload from the source
//	GET  /v1/rules/versions                 stored versions, newest first
//	POST /v1/rules/versions/{id}/activate   roll back to a stored version
//	GET  /v1/patterns                       preset patterns
//	GET  /health, /ready, /version, /metrics
//
// # Middleware
//
// Requests pass through request ID assignment, panic recovery, tracing,
// access logging with metrics, a body size limit and a per-request
// timeout, in that order.
//
// # Basic Usage
//
//	srv, err := server.New(cfg, server.Deps{
//	    Evaluator: evaluator,
//	    Manager:   mgr,
//	    Validator: v,
//	    Telemetry: tel,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Start blocks until ctx is cancelled, a SIGINT or SIGTERM arrives, or the
// listener fails, and then shuts down gracefully within
// ServerConfig.ShutdownTimeout.
package server
