// Package metrics provides Prometheus metrics for the rules service.
//
// # Metrics Categories
//
//   - Evaluation metrics: passes, duration, rules evaluated, rule matches,
//     regex quota skips and truncations
//   - Rules metrics: reloads, active rule counts, last reload time
//   - Request metrics: HTTP request count, duration and in-flight gauge
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	// The collector is an engine.Observer.
//	evaluator, err := engine.NewEvaluator(lib, guardrails,
//		engine.WithObserver(collector))
//
//	router.Handle("/metrics", collector.Handler())
//
// The collector uses its own registry rather than the global default one.
// Per-rule labels are capped by a CardinalityLimiter; ids past the cap are
// reported as "other".
package metrics
