// Package health provides liveness and readiness probes.
//
// Liveness (/health) answers 200 while the process runs. Readiness (/ready)
// runs every registered check concurrently, each bounded by the checker's
// timeout, and answers 503 if any check fails:
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("rules", manager.HealthCheck)
//	checker.RegisterCheck("store", store.Ping)
//
//	router.Get("/health", checker.LivenessHandler())
//	router.Get("/ready", checker.ReadinessHandler())
package health
