package bench

import (
	"context"
	"errors"
	"slices"
	"time"

	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/engine"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/record"
)

// Progress receives iteration counts while a run is in progress.
// cli.ProgressReporter satisfies it.
type Progress interface {
	Start(total int64)
	Update(current int64)
	Finish()
}

// Options configures a run.
type Options struct {
	// Iterations is the number of passes. Default: 1000.
	Iterations int

	// Guardrails for every pass. Nil selects engine.DefaultGuardrails.
	Guardrails *engine.Guardrails

	// Observer additionally receives every pass, e.g. a metrics collector.
	Observer engine.Observer

	// Progress is updated every progressStep iterations when set.
	Progress Progress
}

// DefaultIterations is used when Options.Iterations is zero.
const DefaultIterations = 1000

const progressStep = 100

// Report summarizes a run.
type Report struct {
	Rules      int           `json:"rules"`
	RegexRules int           `json:"regex_rules"`
	Iterations int           `json:"iterations"`
	Total      time.Duration `json:"total_ns"`
	Min        time.Duration `json:"min_ns"`
	Mean       time.Duration `json:"mean_ns"`
	P50        time.Duration `json:"p50_ns"`
	P95        time.Duration `json:"p95_ns"`
	P99        time.Duration `json:"p99_ns"`
	Max        time.Duration `json:"max_ns"`

	// RulesEvaluated is the count from the last pass.
	RulesEvaluated int `json:"rules_evaluated"`

	// RegexSkipped counts regex rules skipped per pass by the quota.
	RegexSkipped int `json:"regex_skipped"`

	// Truncations counts passes stopped early, by reason.
	Truncations map[engine.Truncation]int `json:"truncations"`

	// OverBudget counts passes whose elapsed time exceeded the time budget.
	OverBudget int `json:"over_budget"`
}

// recorder is the run's own observer.
type recorder struct {
	truncations  map[engine.Truncation]int
	regexSkipped int
}

func (r *recorder) RuleEvaluated(string, bool, time.Duration) {}

func (r *recorder) RegexRuleSkipped(string) { r.regexSkipped++ }

func (r *recorder) PassCompleted(_ engine.EvaluationResult, t engine.Truncation) {
	if t != engine.TruncationNone {
		r.truncations[t]++
	}
}

// Run evaluates cfg against rec Iterations times and reports latency. It
// stops early with ctx's error when ctx is cancelled.
func Run(ctx context.Context, lib *patterns.Library, cfg *ast.RulesConfig, rec *record.Record, opts Options) (*Report, error) {
	if cfg == nil {
		return nil, errors.New("rules config cannot be nil")
	}
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultIterations
	}
	guardrails := opts.Guardrails
	if guardrails == nil {
		guardrails = engine.DefaultGuardrails()
	}

	rc := &recorder{truncations: make(map[engine.Truncation]int)}
	var obs engine.Observer = rc
	if opts.Observer != nil {
		obs = engine.Observers{rc, opts.Observer}
	}

	ev, err := engine.NewEvaluator(lib, guardrails, engine.WithObserver(obs))
	if err != nil {
		return nil, err
	}

	report := &Report{
		Rules:       len(cfg.Rules),
		Iterations:  opts.Iterations,
		Truncations: rc.truncations,
	}
	for i := range cfg.Rules {
		if cfg.Rules[i].UsesRegex() {
			report.RegexRules++
		}
	}

	if opts.Progress != nil {
		opts.Progress.Start(int64(opts.Iterations))
	}

	latencies := make([]time.Duration, 0, opts.Iterations)
	for i := 0; i < opts.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := ev.EvaluateRules(cfg, rec)
		latencies = append(latencies, result.Elapsed)
		report.RulesEvaluated = result.RulesEvaluated
		if result.Elapsed > guardrails.TimeBudget {
			report.OverBudget++
		}

		if opts.Progress != nil && (i+1)%progressStep == 0 {
			opts.Progress.Update(int64(i + 1))
		}
	}
	if opts.Progress != nil {
		opts.Progress.Finish()
	}

	report.RegexSkipped = rc.regexSkipped / opts.Iterations
	summarize(report, latencies)
	return report, nil
}

// summarize fills the latency fields from unsorted samples.
func summarize(r *Report, latencies []time.Duration) {
	if len(latencies) == 0 {
		return
	}
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	for _, l := range sorted {
		r.Total += l
	}
	r.Min = sorted[0]
	r.Max = sorted[len(sorted)-1]
	r.Mean = r.Total / time.Duration(len(sorted))
	r.P50 = percentile(sorted, 0.50)
	r.P95 = percentile(sorted, 0.95)
	r.P99 = percentile(sorted, 0.99)
}

// percentile uses the nearest-rank method on sorted samples.
func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := int(float64(len(sorted))*p+0.5) - 1
	idx = min(max(idx, 0), len(sorted)-1)
	return sorted[idx]
}
