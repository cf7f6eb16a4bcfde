package metrics

import (
	"time"

	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/rules/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// Pass results used as the "result" label.
const (
	resultPass    = "pass"
	resultBlocked = "blocked"
)

// EvaluationMetrics tracks evaluation passes and individual rules.
//
// Metrics:
//   - gatekeep_engine_evaluations_total: passes by result ("pass", "blocked")
//   - gatekeep_engine_evaluation_duration_seconds: pass duration
//   - gatekeep_engine_rules_evaluated: rules evaluated per pass
//   - gatekeep_engine_rule_evaluations_total: rule evaluations by rule and outcome
//   - gatekeep_engine_rule_matches_total: rule matches by rule
//   - gatekeep_engine_regex_skips_total: regex rules skipped by the quota
//   - gatekeep_engine_truncations_total: passes stopped early by reason
type EvaluationMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	rulesEvaluated     prometheus.Histogram
	ruleEvaluations    *prometheus.CounterVec
	ruleMatches        *prometheus.CounterVec
	regexSkips         *prometheus.CounterVec
	truncations        *prometheus.CounterVec
}

// NewEvaluationMetrics creates and registers evaluation metrics.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of evaluation passes",
			},
			[]string{"result"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of evaluation passes in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		rulesEvaluated: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_evaluated",
				Help:      "Number of rules evaluated per pass",
				Buckets:   []float64{1, 5, 10, 25, 50, 75, 100},
			},
		),

		ruleEvaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_evaluations_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"rule_id", "matched"},
		),

		ruleMatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_matches_total",
				Help:      "Total number of rule matches",
			},
			[]string{"rule_id"},
		),

		regexSkips: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "regex_skips_total",
				Help:      "Total number of regex rules skipped by the regex rule limit",
			},
			[]string{"rule_id"},
		),

		truncations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "truncations_total",
				Help:      "Total number of passes stopped before the last rule",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.rulesEvaluated,
		em.ruleEvaluations,
		em.ruleMatches,
		em.regexSkips,
		em.truncations,
	)

	return em
}

// RecordRule records one evaluated rule.
func (em *EvaluationMetrics) RecordRule(ruleID string, matched bool, _ time.Duration) {
	if matched {
		em.ruleEvaluations.WithLabelValues(ruleID, "true").Inc()
		em.ruleMatches.WithLabelValues(ruleID).Inc()
		return
	}
	em.ruleEvaluations.WithLabelValues(ruleID, "false").Inc()
}

// RecordRegexSkip records a rule skipped by the regex rule limit.
func (em *EvaluationMetrics) RecordRegexSkip(ruleID string) {
	em.regexSkips.WithLabelValues(ruleID).Inc()
}

// RecordPass records a completed pass.
func (em *EvaluationMetrics) RecordPass(result engine.EvaluationResult, truncation engine.Truncation) {
	label := resultPass
	if len(result.Errors) > 0 {
		label = resultBlocked
	}
	em.evaluationsTotal.WithLabelValues(label).Inc()
	em.evaluationDuration.Observe(result.Elapsed.Seconds())
	em.rulesEvaluated.Observe(float64(result.RulesEvaluated))
	if truncation != engine.TruncationNone {
		em.truncations.WithLabelValues(string(truncation)).Inc()
	}
}
