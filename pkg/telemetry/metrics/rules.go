package metrics

import (
	"time"

	"mercator-hq/gatekeep/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RulesMetrics tracks the rule set lifecycle.
//
// Metrics:
//   - gatekeep_engine_rules_reloads_total: reload attempts by source and result
//   - gatekeep_engine_rules_reload_duration_seconds: reload duration
//   - gatekeep_engine_rules_active: rules in the active set by state
//   - gatekeep_engine_rules_last_reload_timestamp_seconds: last successful reload
type RulesMetrics struct {
	reloadsTotal   *prometheus.CounterVec
	reloadDuration prometheus.Histogram
	active         *prometheus.GaugeVec
	lastReload     prometheus.Gauge
}

// NewRulesMetrics creates and registers rule set metrics.
func NewRulesMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RulesMetrics {
	rm := &RulesMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_reloads_total",
				Help:      "Total number of rules reload attempts",
			},
			[]string{"source", "result"},
		),

		reloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_reload_duration_seconds",
				Help:      "Duration of rules reloads in seconds",
				// Git fetches dominate (1ms to ~16s)
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
		),

		active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_active",
				Help:      "Number of rules in the active set",
			},
			[]string{"state"},
		),

		lastReload: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_last_reload_timestamp_seconds",
				Help:      "Unix time of the last successful rules reload",
			},
		),
	}

	registry.MustRegister(
		rm.reloadsTotal,
		rm.reloadDuration,
		rm.active,
		rm.lastReload,
	)

	return rm
}

// RecordReload records a reload attempt.
func (rm *RulesMetrics) RecordReload(source string, err error, duration time.Duration) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	rm.reloadsTotal.WithLabelValues(source, result).Inc()
	rm.reloadDuration.Observe(duration.Seconds())
	if err == nil {
		rm.lastReload.SetToCurrentTime()
	}
}

// UpdateActive sets the active rule gauges.
func (rm *RulesMetrics) UpdateActive(total, enabled, regex int) {
	rm.active.WithLabelValues("total").Set(float64(total))
	rm.active.WithLabelValues("enabled").Set(float64(enabled))
	rm.active.WithLabelValues("regex").Set(float64(regex))
}
