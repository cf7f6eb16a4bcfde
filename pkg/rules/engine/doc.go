// Package engine evaluates rules configurations against checkout records
// under fixed cost guardrails.
//
// The engine is pure: it reads an already-decoded ast.RulesConfig and an
// already-assembled record.Record and returns an EvaluationResult. It does
// no I/O and never returns an error for data-shape problems.
//
// # Architecture
//
// The engine uses a three-layer design:
//
//  1. Comparator - applies one of the 13 comparison operators to a resolved
//     field value and a literal (compare.go)
//  2. Matcher - walks AND/OR condition groups with short-circuiting and a
//     depth bound (matcher.go)
//  3. Driver - iterates rules in declaration order and applies the
//     guardrails (engine.go)
//
// # Evaluation Flow
//
//	RulesConfig + Record
//	       ↓
//	For each rule in declaration order:
//	  disabled?           → skip, no accounting
//	  MaxRules reached?   → stop
//	  uses REGEX_MATCH?   → count; over MaxRegexRules → skip this rule
//	  TimeBudget spent?   → stop
//	  evaluate tree       → append error on match, RulesEvaluated++
//	       ↓
//	EvaluationResult{Errors, RulesEvaluated, Elapsed}
//
// # Basic Usage
//
//	lib, err := patterns.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	eval, err := engine.NewEvaluator(lib, engine.DefaultGuardrails())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := eval.EvaluateRules(cfg, rec)
//	for _, e := range result.Errors {
//	    fmt.Println(e.RuleID, e.Message)
//	}
//
// # Degradation
//
// Every anomaly inside a condition folds into "does not match": an unknown
// field path, a field/literal type mismatch, an unknown preset, an ad hoc
// pattern that fails to compile, a group nested deeper than MaxDepth.
// Negated operators (NOT_EQUALS, NOT_CONTAINS, NOT_IN) follow the same rule:
// they are true only when the operands are comparable and the positive
// operator is false. Explain reports the first degradation per rule.
//
// # Guardrails
//
// MaxRules and TimeBudget stop the whole pass; MaxRegexRules skips only the
// over-quota rule. The time budget is polled between rules, so the worst
// case overrun is one rule. Truncation is not an error; it is visible in
// RulesEvaluated and through an Observer.
//
// # Thread Safety
//
// An Evaluator is safe for concurrent use. The pattern library is
// immutable; the ad hoc pattern cache is guarded by a RWMutex.
package engine
