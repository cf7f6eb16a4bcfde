package engine

import (
	"math"
	"strings"

	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/record"
)

// Epsilon is the tolerance for numeric equality. Two numbers are equal when
// they differ by at most Epsilon, or by at most Epsilon relative to the
// larger magnitude.
const Epsilon = 1e-9

// Compare applies op to a resolved field value and a literal. It never
// panics and never returns an error: a shape mismatch, an unknown preset
// or an uncompilable pattern all yield false.
//
// Ad hoc patterns are compiled on every call. Evaluator caches them.
func Compare(v record.FieldValue, op ast.ComparisonOperator, lit ast.Literal, isPreset bool, lib *patterns.Library) bool {
	cond := ast.Condition{Operator: op, Value: lit, IsPreset: isPreset}
	matched, err := evaluateOperator(v, &cond, lib, nil)
	return err == nil && matched
}

// evaluateOperator compares v with the condition's literal. A non-nil error
// means the operands are not comparable; callers treat that as a non-match
// for the positive and the negated operator alike.
func evaluateOperator(v record.FieldValue, cond *ast.Condition, lib *patterns.Library, cache *regexCache) (bool, error) {
	switch cond.Operator {
	case ast.OpEquals:
		return evaluateEqual(v, cond)

	case ast.OpNotEquals:
		equal, err := evaluateEqual(v, cond)
		return !equal, err

	case ast.OpGreaterThan:
		return evaluateNumeric(v, cond, func(a, b float64) bool { return a > b })

	case ast.OpGreaterThanOrEqual:
		return evaluateNumeric(v, cond, func(a, b float64) bool { return a >= b })

	case ast.OpLessThan:
		return evaluateNumeric(v, cond, func(a, b float64) bool { return a < b })

	case ast.OpLessThanOrEqual:
		return evaluateNumeric(v, cond, func(a, b float64) bool { return a <= b })

	case ast.OpContains:
		return evaluateContains(v, cond)

	case ast.OpNotContains:
		contains, err := evaluateContains(v, cond)
		return !contains, err

	case ast.OpStartsWith:
		s, sub, err := stringOperands(v, cond)
		if err != nil {
			return false, err
		}
		return strings.HasPrefix(strings.ToLower(s), strings.ToLower(sub)), nil

	case ast.OpEndsWith:
		s, sub, err := stringOperands(v, cond)
		if err != nil {
			return false, err
		}
		return strings.HasSuffix(strings.ToLower(s), strings.ToLower(sub)), nil

	case ast.OpRegexMatch:
		return evaluateRegex(v, cond, lib, cache)

	case ast.OpIn:
		return evaluateIn(v, cond)

	case ast.OpNotIn:
		in, err := evaluateIn(v, cond)
		return !in, err

	default:
		return false, ErrInvalidOperator
	}
}

// evaluateEqual compares strings case-insensitively, numbers within
// Epsilon and booleans exactly.
func evaluateEqual(v record.FieldValue, cond *ast.Condition) (bool, error) {
	lit := cond.Value
	switch {
	case v.Kind == record.KindString && lit.Kind == ast.LiteralString:
		return strings.EqualFold(v.Str, lit.Str), nil
	case v.Kind == record.KindNumber && lit.Kind == ast.LiteralNumber:
		return numbersEqual(v.Num, lit.Num), nil
	case v.Kind == record.KindBool && lit.Kind == ast.LiteralBool:
		return v.Bool == lit.Bool, nil
	}
	return false, mismatch(v, cond)
}

func evaluateNumeric(v record.FieldValue, cond *ast.Condition, cmp func(a, b float64) bool) (bool, error) {
	if v.Kind != record.KindNumber || cond.Value.Kind != ast.LiteralNumber {
		return false, mismatch(v, cond)
	}
	return cmp(v.Num, cond.Value.Num), nil
}

// evaluateContains is a substring test on string fields and an element
// membership test on string list fields, case-insensitive in both forms.
func evaluateContains(v record.FieldValue, cond *ast.Condition) (bool, error) {
	needle, ok := cond.Value.AsString()
	if !ok {
		return false, mismatch(v, cond)
	}

	switch v.Kind {
	case record.KindString:
		return strings.Contains(strings.ToLower(v.Str), strings.ToLower(needle)), nil
	case record.KindStringArray:
		for _, s := range v.Strings {
			if strings.EqualFold(s, needle) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, mismatch(v, cond)
}

func evaluateIn(v record.FieldValue, cond *ast.Condition) (bool, error) {
	lit := cond.Value
	if lit.Kind != ast.LiteralArray {
		return false, mismatch(v, cond)
	}

	switch v.Kind {
	case record.KindString:
		for _, item := range lit.Items {
			if item.Kind == ast.LiteralString && strings.EqualFold(item.Str, v.Str) {
				return true, nil
			}
		}
		return false, nil
	case record.KindNumber:
		for _, item := range lit.Items {
			if item.Kind == ast.LiteralNumber && numbersEqual(item.Num, v.Num) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, mismatch(v, cond)
}

func evaluateRegex(v record.FieldValue, cond *ast.Condition, lib *patterns.Library, cache *regexCache) (bool, error) {
	s, src, err := stringOperands(v, cond)
	if err != nil {
		return false, err
	}

	if cond.IsPreset {
		re, ok := lib.Get(src)
		if !ok {
			return false, &PatternError{Pattern: src, Preset: true, Cause: ErrPatternNotFound}
		}
		return re.MatchString(s), nil
	}

	re, err := cache.compile(src)
	if err != nil {
		return false, &PatternError{Pattern: src, Cause: err}
	}
	return re.MatchString(s), nil
}

func stringOperands(v record.FieldValue, cond *ast.Condition) (string, string, error) {
	lit, ok := cond.Value.AsString()
	if v.Kind != record.KindString || !ok {
		return "", "", mismatch(v, cond)
	}
	return v.Str, lit, nil
}

func numbersEqual(a, b float64) bool {
	diff := math.Abs(a - b)
	if diff <= Epsilon {
		return true
	}
	return diff <= Epsilon*math.Max(math.Abs(a), math.Abs(b))
}

func mismatch(v record.FieldValue, cond *ast.Condition) error {
	return &TypeMismatchError{
		Field:    cond.Field,
		Operator: cond.Operator,
		Actual:   v.Kind,
		Literal:  cond.Value.Kind,
	}
}
