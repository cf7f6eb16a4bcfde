package validator

import (
	"fmt"
	"regexp"

	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/engine"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/record"
)

// Validator lints configurations against a pattern library and the
// guardrails they will run under.
type Validator struct {
	patterns   *patterns.Library
	guardrails engine.Guardrails
}

// New creates a Validator. A nil guardrails pointer selects the defaults.
func New(lib *patterns.Library, guardrails *engine.Guardrails) *Validator {
	if guardrails == nil {
		guardrails = engine.DefaultGuardrails()
	}
	return &Validator{patterns: lib, guardrails: *guardrails}
}

// Validate runs every check and returns the findings. A nil configuration
// yields a single error issue.
func (v *Validator) Validate(cfg *ast.RulesConfig) *Report {
	report := &Report{}
	if cfg == nil {
		report.add(SeverityError, "", "", "configuration is empty")
		return report
	}

	v.validateConfig(cfg, report)
	for i := range cfg.Rules {
		v.validateRule(&cfg.Rules[i], fmt.Sprintf("rules[%d]", i), report)
	}
	v.validateLimits(cfg, report)

	return report
}

// validateConfig checks top-level fields and rule identity.
func (v *Validator) validateConfig(cfg *ast.RulesConfig, report *Report) {
	if cfg.Version == "" {
		report.add(SeverityError, "", "version", "missing required field 'version'")
	}

	seen := make(map[string]int, len(cfg.Rules))
	for i := range cfg.Rules {
		id := cfg.Rules[i].ID
		path := fmt.Sprintf("rules[%d].id", i)
		if id == "" {
			report.add(SeverityError, "", path, "missing required field 'id'")
			continue
		}
		if first, dup := seen[id]; dup {
			report.add(SeverityError, id, path, "duplicate rule id, first defined at rules[%d]", first)
			continue
		}
		seen[id] = i
	}
}

// validateRule checks one rule and its condition tree.
func (v *Validator) validateRule(rule *ast.Rule, prefix string, report *Report) {
	if rule.ErrorMessage == "" {
		report.add(SeverityWarning, rule.ID, prefix+".error_message", "rule has no error message")
	}
	if rule.Complexity < 0 {
		report.add(SeverityWarning, rule.ID, prefix+".complexity", "complexity is negative")
	}

	ast.Walk(rule, func(path string, depth int, cond *ast.Condition, group *ast.ConditionGroup) bool {
		path = prefix + "." + path
		if group != nil {
			return v.validateGroup(rule.ID, path, depth, group, report)
		}
		v.validateCondition(rule.ID, path, cond, report)
		return true
	})
}

func (v *Validator) validateGroup(ruleID, path string, depth int, g *ast.ConditionGroup, report *Report) bool {
	if depth > v.guardrails.MaxDepth {
		report.add(SeverityError, ruleID, path,
			"group nesting depth %d exceeds maximum %d; the group never matches", depth, v.guardrails.MaxDepth)
		return false
	}

	if !g.Operator.Valid() {
		report.add(SeverityError, ruleID, path+".operator",
			"unknown logical operator %q", string(g.Operator))
		return true
	}

	if len(g.Criteria) == 0 {
		if g.Operator == ast.LogicalAnd {
			report.add(SeverityWarning, ruleID, path, "empty AND group always matches")
		} else {
			report.add(SeverityWarning, ruleID, path, "empty OR group never matches")
		}
	}

	for i, c := range g.Criteria {
		if c.Condition == nil && c.Group == nil {
			report.add(SeverityError, ruleID, fmt.Sprintf("%s.criteria[%d]", path, i), "criterion is empty")
		}
	}
	return true
}

func (v *Validator) validateCondition(ruleID, path string, cond *ast.Condition, report *Report) {
	kind, known := record.KindOf(cond.Field)
	if !known {
		issue := report.add(SeverityError, ruleID, path+".field", "unknown field path %q", cond.Field)
		issue.Suggestion = suggest(cond.Field, record.Paths())
	}

	op := cond.Operator
	if !op.Valid() {
		report.add(SeverityError, ruleID, path+".operator", "unknown comparison operator %q", string(op))
		return
	}

	if !v.validateLiteral(ruleID, path, cond, report) {
		return
	}

	if cond.IsPreset && op != ast.OpRegexMatch {
		report.add(SeverityWarning, ruleID, path+".is_preset", "is_preset has no effect on %s", op)
	}

	if op == ast.OpRegexMatch {
		v.validatePattern(ruleID, path, cond, report)
	}

	if known {
		if reason := operatorMismatch(op, kind, cond.Value); reason != "" {
			report.add(SeverityWarning, ruleID, path,
				"%s on %s field %q never matches: %s", op, kind, cond.Field, reason)
		}
	}
}

// validateLiteral checks the literal shape the operator requires. It
// returns false when further checks on the condition are pointless.
func (v *Validator) validateLiteral(ruleID, path string, cond *ast.Condition, report *Report) bool {
	lit := cond.Value
	op := cond.Operator
	valuePath := path + ".value"

	if lit.Kind == ast.LiteralInvalid {
		report.add(SeverityError, ruleID, valuePath,
			"value must be a string, number, boolean or array of scalars")
		return false
	}

	switch {
	case op.IsNumeric():
		if lit.Kind != ast.LiteralNumber {
			report.add(SeverityError, ruleID, valuePath, "%s requires a number, got %s", op, lit.Kind)
			return false
		}
	case op.IsMembership():
		if lit.Kind != ast.LiteralArray {
			report.add(SeverityError, ruleID, valuePath, "%s requires an array, got %s", op, lit.Kind)
			return false
		}
		for i, item := range lit.Items {
			if item.Kind == ast.LiteralInvalid {
				report.add(SeverityError, ruleID, fmt.Sprintf("%s[%d]", valuePath, i),
					"array items must be strings, numbers or booleans")
			}
		}
	case op == ast.OpRegexMatch, op == ast.OpContains, op == ast.OpNotContains,
		op == ast.OpStartsWith, op == ast.OpEndsWith:
		if lit.Kind != ast.LiteralString {
			report.add(SeverityError, ruleID, valuePath, "%s requires a string, got %s", op, lit.Kind)
			return false
		}
	case lit.Kind == ast.LiteralArray:
		report.add(SeverityError, ruleID, valuePath, "%s does not accept an array", op)
		return false
	}
	return true
}

func (v *Validator) validatePattern(ruleID, path string, cond *ast.Condition, report *Report) {
	src := cond.Value.Str
	if cond.IsPreset {
		if !v.patterns.Has(src) {
			issue := report.add(SeverityError, ruleID, path+".value", "unknown preset pattern %q", src)
			issue.Suggestion = suggest(src, v.patterns.SortedNames())
		}
		return
	}

	if _, err := regexp.Compile(src); err != nil {
		report.add(SeverityError, ruleID, path+".value", "pattern does not compile: %v", err)
		return
	}
	if v.patterns.Has(src) {
		issue := report.add(SeverityWarning, ruleID, path+".value",
			"value %q names a preset but is_preset is not set; it is matched as a literal pattern", src)
		issue.Suggestion = "set is_preset: true"
	}
}

// operatorMismatch explains why op can never match a field of kind k, or
// returns an empty string.
func operatorMismatch(op ast.ComparisonOperator, k record.Kind, lit ast.Literal) string {
	switch {
	case op.IsNumeric():
		if k != record.KindNumber {
			return "ordering applies to numbers only"
		}
	case op == ast.OpEquals || op == ast.OpNotEquals:
		if !sameShape(k, lit.Kind) {
			return fmt.Sprintf("a %s value is never equal to a %s", k, lit.Kind)
		}
	case op == ast.OpContains || op == ast.OpNotContains:
		if k != record.KindString && k != record.KindStringArray {
			return "containment applies to strings and string lists only"
		}
	case op == ast.OpStartsWith || op == ast.OpEndsWith || op == ast.OpRegexMatch:
		if k != record.KindString {
			return "applies to strings only"
		}
	case op.IsMembership():
		if k != record.KindString && k != record.KindNumber {
			return "membership applies to strings and numbers only"
		}
	}
	return ""
}

func sameShape(k record.Kind, l ast.LiteralKind) bool {
	switch k {
	case record.KindString:
		return l == ast.LiteralString
	case record.KindNumber:
		return l == ast.LiteralNumber
	case record.KindBool:
		return l == ast.LiteralBool
	}
	return false
}

// validateLimits compares the configuration's size with the guardrails.
func (v *Validator) validateLimits(cfg *ast.RulesConfig, report *Report) {
	enabled, regex := 0, 0
	for i := range cfg.Rules {
		if !cfg.Rules[i].Enabled {
			continue
		}
		enabled++
		if cfg.Rules[i].UsesRegex() {
			regex++
		}
	}

	if sum := cfg.EnabledComplexity(); cfg.TotalComplexity != sum {
		report.add(SeverityWarning, "", "total_complexity",
			"total_complexity is %d but enabled rules sum to %d", cfg.TotalComplexity, sum)
	}
	if enabled > v.guardrails.MaxRules {
		report.add(SeverityWarning, "", "rules",
			"%d enabled rules exceed max_rules %d; rules past the limit are never evaluated",
			enabled, v.guardrails.MaxRules)
	}
	if regex > v.guardrails.MaxRegexRules {
		report.add(SeverityWarning, "", "rules",
			"%d enabled rules use REGEX_MATCH, more than max_regex_rules %d; the excess are skipped",
			regex, v.guardrails.MaxRegexRules)
	}
}
