package engine

import "time"

// Truncation describes why a pass stopped before the last rule.
type Truncation string

const (
	TruncationNone       Truncation = ""
	TruncationMaxRules   Truncation = "max_rules"
	TruncationTimeBudget Truncation = "time_budget"
)

// Observer receives notifications from the driver. Implementations must be
// cheap and must not block; they run between rules inside the time budget.
type Observer interface {
	// RuleEvaluated is called after each evaluated rule.
	RuleEvaluated(ruleID string, matched bool, duration time.Duration)

	// RegexRuleSkipped is called when a rule is skipped because the regex
	// rule quota is exhausted.
	RegexRuleSkipped(ruleID string)

	// PassCompleted is called once per pass with the final result.
	PassCompleted(result EvaluationResult, truncation Truncation)
}

// Observers fans notifications out to several observers.
type Observers []Observer

// RuleEvaluated implements Observer.
func (o Observers) RuleEvaluated(ruleID string, matched bool, duration time.Duration) {
	for _, obs := range o {
		obs.RuleEvaluated(ruleID, matched, duration)
	}
}

// RegexRuleSkipped implements Observer.
func (o Observers) RegexRuleSkipped(ruleID string) {
	for _, obs := range o {
		obs.RegexRuleSkipped(ruleID)
	}
}

// PassCompleted implements Observer.
func (o Observers) PassCompleted(result EvaluationResult, truncation Truncation) {
	for _, obs := range o {
		obs.PassCompleted(result, truncation)
	}
}
