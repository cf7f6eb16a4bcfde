package metrics

import (
	"fmt"
	"sync"
	"time"

	"mercator-hq/gatekeep/pkg/config"
	"mercator-hq/gatekeep/pkg/rules/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// maxRuleLabels caps distinct rule_id label values. Rule sets are bounded
// by the evaluator's rule limit, but ids change across reloads.
const maxRuleLabels = 1000

// otherRule is the rule_id label used once the cap is reached.
const otherRule = "other"

// Collector owns the Prometheus registry and every metric the service
// exports. It implements engine.Observer so an Evaluator can report to it
// directly.
//
// All recording methods are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	evaluationMetrics *EvaluationMetrics
	rulesMetrics      *RulesMetrics
	requestMetrics    *RequestMetrics

	cardinalityLimiter *CardinalityLimiter
}

var _ engine.Observer = (*Collector)(nil)

// NewCollector creates a collector with the given configuration. If
// registry is nil a fresh registry is created; the global default registry
// is never used so tests and multiple collectors do not collide.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		evaluationMetrics:  NewEvaluationMetrics(cfg, registry),
		rulesMetrics:       NewRulesMetrics(cfg, registry),
		requestMetrics:     NewRequestMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(maxRuleLabels),
	}
}

// Enabled reports whether metrics are recorded.
func (c *Collector) Enabled() bool {
	return c != nil && c.config.Enabled
}

// RuleEvaluated implements engine.Observer.
func (c *Collector) RuleEvaluated(ruleID string, matched bool, duration time.Duration) {
	if !c.Enabled() {
		return
	}
	c.evaluationMetrics.RecordRule(c.ruleLabel(ruleID), matched, duration)
}

// RegexRuleSkipped implements engine.Observer.
func (c *Collector) RegexRuleSkipped(ruleID string) {
	if !c.Enabled() {
		return
	}
	c.evaluationMetrics.RecordRegexSkip(c.ruleLabel(ruleID))
}

// PassCompleted implements engine.Observer.
func (c *Collector) PassCompleted(result engine.EvaluationResult, truncation engine.Truncation) {
	if !c.Enabled() {
		return
	}
	c.evaluationMetrics.RecordPass(result, truncation)
}

// RecordReload records a rules reload attempt.
//
// Parameters:
//   - source: where rules came from ("file", "git")
//   - err: nil on success
//   - duration: time spent loading, linting and swapping
func (c *Collector) RecordReload(source string, err error, duration time.Duration) {
	if !c.Enabled() {
		return
	}
	c.rulesMetrics.RecordReload(source, err, duration)
}

// UpdateActiveRules sets the gauges describing the active rule set.
func (c *Collector) UpdateActiveRules(total, enabled, regex int) {
	if !c.Enabled() {
		return
	}
	c.rulesMetrics.UpdateActive(total, enabled, regex)
}

// RecordHTTPRequest records a served HTTP request.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.Enabled() {
		return
	}
	c.requestMetrics.RecordRequest(route, method, status, duration)
}

// HTTPInFlight adjusts the in-flight request gauge by delta.
func (c *Collector) HTTPInFlight(delta int) {
	if !c.Enabled() {
		return
	}
	c.requestMetrics.AddInFlight(delta)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ruleLabel(ruleID string) string {
	if c.cardinalityLimiter.Allow(fmt.Sprintf("rule:%s", ruleID)) {
		return ruleID
	}
	return otherRule
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if we haven't reached the cardinality limit yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	_, exists := cl.current[labelSet]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
