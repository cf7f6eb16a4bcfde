package engine

import (
	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/record"
)

// Outcome is what happened to one rule during a pass.
type Outcome string

const (
	OutcomeMatched    Outcome = "matched"
	OutcomeNotMatched Outcome = "not_matched"
	OutcomeDisabled   Outcome = "disabled"
	OutcomeRegexQuota Outcome = "skipped_regex_quota"
	OutcomeMaxRules   Outcome = "truncated_max_rules"
	OutcomeTimeBudget Outcome = "truncated_time_budget"
)

// RuleTrace explains the outcome of one rule.
type RuleTrace struct {
	RuleID  string  `json:"rule_id"`
	Name    string  `json:"name,omitempty"`
	Outcome Outcome `json:"outcome"`

	// Degraded is the first condition that could not be compared (unknown
	// field, type mismatch, unusable pattern, nesting too deep). A rule can
	// still match with a degraded condition under OR.
	Degraded string `json:"degraded,omitempty"`

	// Cause is the typed error behind Degraded.
	Cause error `json:"-"`
}

// Explanation is the result of Explain.
type Explanation struct {
	Result EvaluationResult `json:"result"`
	Rules  []RuleTrace      `json:"rules"`
}

// Explain runs the same pass as EvaluateRules and additionally reports the
// outcome of every rule in the configuration. It is slower than
// EvaluateRules and meant for tooling.
func (e *Evaluator) Explain(cfg *ast.RulesConfig, rec *record.Record) Explanation {
	var traces []RuleTrace
	if cfg != nil {
		traces = make([]RuleTrace, 0, len(cfg.Rules))
	}
	result := e.run(cfg, rec, &traces)
	return Explanation{Result: result, Rules: traces}
}

func appendTrace(trace *[]RuleTrace, rule *ast.Rule, outcome Outcome, cause error) {
	if trace == nil {
		return
	}
	t := RuleTrace{
		RuleID:  rule.ID,
		Name:    rule.Name,
		Outcome: outcome,
		Cause:   cause,
	}
	if cause != nil {
		t.Degraded = cause.Error()
	}
	*trace = append(*trace, t)
}

// traceRemaining records the rules a truncated pass never reached.
func traceRemaining(trace *[]RuleTrace, rules []ast.Rule, outcome Outcome) {
	if trace == nil {
		return
	}
	for i := range rules {
		if !rules[i].Enabled {
			appendTrace(trace, &rules[i], OutcomeDisabled, nil)
			continue
		}
		appendTrace(trace, &rules[i], outcome, nil)
	}
}
