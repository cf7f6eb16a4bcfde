package engine

import (
	"fmt"
	"time"
)

// Default guardrail values.
const (
	DefaultMaxRules      = 100
	DefaultMaxRegexRules = 30
	DefaultTimeBudget    = 4 * time.Millisecond
	DefaultMaxDepth      = 32

	// DefaultRegexCacheSize bounds the number of distinct ad hoc patterns
	// an Evaluator keeps compiled.
	DefaultRegexCacheSize = 256
)

// Guardrails bound the cost of one evaluation pass regardless of what the
// rule author wrote.
type Guardrails struct {
	// MaxRules is the number of rules evaluated before the pass stops.
	// Disabled and quota-skipped rules do not count.
	// Default: 100.
	MaxRules int `json:"max_rules" yaml:"max_rules"`

	// MaxRegexRules is the number of rules containing a REGEX_MATCH leaf
	// that may be evaluated. Further regex rules are skipped individually;
	// the pass continues with the remaining rules.
	// Default: 30.
	MaxRegexRules int `json:"max_regex_rules" yaml:"max_regex_rules"`

	// TimeBudget is checked between rules. Once exceeded the pass stops.
	// A single rule is never interrupted.
	// Default: 4ms.
	TimeBudget time.Duration `json:"time_budget" yaml:"time_budget"`

	// MaxDepth is the deepest condition group evaluated. The root group of a
	// rule has depth 1; deeper groups evaluate to false.
	// Default: 32.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`
}

// DefaultGuardrails returns the production guardrails.
func DefaultGuardrails() *Guardrails {
	return &Guardrails{
		MaxRules:      DefaultMaxRules,
		MaxRegexRules: DefaultMaxRegexRules,
		TimeBudget:    DefaultTimeBudget,
		MaxDepth:      DefaultMaxDepth,
	}
}

// Validate checks the guardrail values.
func (g *Guardrails) Validate() error {
	if g.MaxRules <= 0 {
		return fmt.Errorf("%w: max rules must be positive", ErrInvalidConfig)
	}
	if g.MaxRegexRules < 0 {
		return fmt.Errorf("%w: max regex rules cannot be negative", ErrInvalidConfig)
	}
	if g.TimeBudget <= 0 {
		return fmt.Errorf("%w: time budget must be positive", ErrInvalidConfig)
	}
	if g.MaxDepth <= 0 {
		return fmt.Errorf("%w: max depth must be positive", ErrInvalidConfig)
	}
	return nil
}

// WithMaxRules sets the rule count limit.
func (g *Guardrails) WithMaxRules(n int) *Guardrails {
	g.MaxRules = n
	return g
}

// WithMaxRegexRules sets the regex rule quota.
func (g *Guardrails) WithMaxRegexRules(n int) *Guardrails {
	g.MaxRegexRules = n
	return g
}

// WithTimeBudget sets the time budget.
func (g *Guardrails) WithTimeBudget(d time.Duration) *Guardrails {
	g.TimeBudget = d
	return g
}

// WithMaxDepth sets the maximum group nesting depth.
func (g *Guardrails) WithMaxDepth(n int) *Guardrails {
	g.MaxDepth = n
	return g
}
