package engine

import (
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/record"
)

// RuleError is one fired rule.
type RuleError struct {
	RuleID  string `json:"rule_id"`
	Message string `json:"message"`
}

// EvaluationResult is the outcome of one pass.
type EvaluationResult struct {
	// Errors lists fired rules in declaration order.
	Errors []RuleError `json:"errors"`

	// RulesEvaluated counts rules whose condition tree was evaluated.
	RulesEvaluated int `json:"rules_evaluated"`

	// Elapsed is the wall-clock duration of the pass.
	Elapsed time.Duration `json:"-"`
}

// Evaluator runs the guardrail-enforcing driver. It is safe for concurrent
// use; configurations and records are only read.
type Evaluator struct {
	guardrails Guardrails
	matcher    *matcher
	observer   Observer
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithObserver registers an observer for rule-level notifications.
func WithObserver(o Observer) Option {
	return func(e *Evaluator) {
		e.observer = o
	}
}

// WithLogger sets the logger used for guardrail diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces time.Now. Tests use it to drive the time budget.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRegexCacheSize bounds the ad hoc pattern cache. Zero disables caching.
func WithRegexCacheSize(n int) Option {
	return func(e *Evaluator) {
		if n <= 0 {
			e.matcher.cache = nil
			return
		}
		e.matcher.cache = newRegexCache(n)
	}
}

// NewEvaluator creates an Evaluator. A nil guardrails pointer selects
// DefaultGuardrails.
func NewEvaluator(lib *patterns.Library, guardrails *Guardrails, opts ...Option) (*Evaluator, error) {
	if lib == nil {
		return nil, fmt.Errorf("%w: pattern library is required", ErrInvalidConfig)
	}
	if guardrails == nil {
		guardrails = DefaultGuardrails()
	}
	if err := guardrails.Validate(); err != nil {
		return nil, err
	}

	e := &Evaluator{
		guardrails: *guardrails,
		matcher: &matcher{
			patterns: lib,
			cache:    newRegexCache(DefaultRegexCacheSize),
			maxDepth: guardrails.MaxDepth,
		},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// EvaluateRules evaluates cfg against rec with the given guardrails and
// library, without caching ad hoc patterns across calls. A MaxDepth of zero
// selects DefaultMaxDepth.
func EvaluateRules(cfg *ast.RulesConfig, rec *record.Record, guardrails Guardrails, lib *patterns.Library) EvaluationResult {
	if guardrails.MaxDepth <= 0 {
		guardrails.MaxDepth = DefaultMaxDepth
	}
	e := &Evaluator{
		guardrails: guardrails,
		matcher:    &matcher{patterns: lib, maxDepth: guardrails.MaxDepth},
		logger:     slog.Default(),
		now:        time.Now,
	}
	return e.EvaluateRules(cfg, rec)
}

// Guardrails returns the evaluator's guardrails.
func (e *Evaluator) Guardrails() Guardrails {
	return e.guardrails
}

// Patterns returns the pattern library.
func (e *Evaluator) Patterns() *patterns.Library {
	return e.matcher.patterns
}

// MatchGroup evaluates a condition group as the root of a rule.
func (e *Evaluator) MatchGroup(g *ast.ConditionGroup, rec *record.Record) bool {
	return e.matcher.matchGroup(g, rec, 1, nil)
}

// MatchRule evaluates a rule's condition tree, ignoring Enabled and the
// guardrails.
func (e *Evaluator) MatchRule(rule *ast.Rule, rec *record.Record) bool {
	return e.MatchGroup(&rule.Conditions, rec)
}

// EvaluateRules runs one guarded pass over cfg.Rules in declaration order.
//
// For each rule:
//  1. a disabled rule is skipped without touching any counter;
//  2. once MaxRules rules were evaluated the pass stops;
//  3. a rule containing REGEX_MATCH increments the regex counter, and once
//     the counter exceeds MaxRegexRules that rule alone is skipped;
//  4. once TimeBudget has elapsed the pass stops;
//  5. the rule is evaluated; a match appends its error, and RulesEvaluated
//     increments either way.
//
// EvaluateRules never fails. A nil configuration yields an empty result.
func (e *Evaluator) EvaluateRules(cfg *ast.RulesConfig, rec *record.Record) EvaluationResult {
	return e.run(cfg, rec, nil)
}

func (e *Evaluator) run(cfg *ast.RulesConfig, rec *record.Record, trace *[]RuleTrace) EvaluationResult {
	start := e.now()
	result := EvaluationResult{Errors: []RuleError{}}
	truncation := TruncationNone

	if cfg == nil {
		result.Elapsed = e.now().Sub(start)
		return result
	}

	regexCount := 0
	for i := range cfg.Rules {
		rule := &cfg.Rules[i]

		if !rule.Enabled {
			appendTrace(trace, rule, OutcomeDisabled, nil)
			continue
		}

		if result.RulesEvaluated >= e.guardrails.MaxRules {
			truncation = TruncationMaxRules
			e.logger.Debug("rule limit reached",
				"rules_evaluated", result.RulesEvaluated,
				"max_rules", e.guardrails.MaxRules,
			)
			traceRemaining(trace, cfg.Rules[i:], OutcomeMaxRules)
			break
		}

		if rule.UsesRegex() {
			regexCount++
			if regexCount > e.guardrails.MaxRegexRules {
				e.logger.Debug("regex rule limit reached, skipping rule",
					"rule_id", rule.ID,
					"max_regex_rules", e.guardrails.MaxRegexRules,
				)
				if e.observer != nil {
					e.observer.RegexRuleSkipped(rule.ID)
				}
				appendTrace(trace, rule, OutcomeRegexQuota, nil)
				continue
			}
		}

		if elapsed := e.now().Sub(start); elapsed > e.guardrails.TimeBudget {
			truncation = TruncationTimeBudget
			e.logger.Debug("time budget exceeded",
				"rules_evaluated", result.RulesEvaluated,
				"elapsed", elapsed,
				"time_budget", e.guardrails.TimeBudget,
			)
			traceRemaining(trace, cfg.Rules[i:], OutcomeTimeBudget)
			break
		}

		var ruleStart time.Time
		if e.observer != nil {
			ruleStart = e.now()
		}

		var diag error
		var diagp *error
		if trace != nil {
			diagp = &diag
		}

		matched := e.matcher.matchGroup(&rule.Conditions, rec, 1, diagp)
		if matched {
			result.Errors = append(result.Errors, RuleError{
				RuleID:  rule.ID,
				Message: rule.ErrorMessage,
			})
		}
		result.RulesEvaluated++

		if e.observer != nil {
			e.observer.RuleEvaluated(rule.ID, matched, e.now().Sub(ruleStart))
		}
		if matched {
			appendTrace(trace, rule, OutcomeMatched, diag)
		} else {
			appendTrace(trace, rule, OutcomeNotMatched, diag)
		}
	}

	result.Elapsed = e.now().Sub(start)
	if e.observer != nil {
		e.observer.PassCompleted(result, truncation)
	}
	return result
}
