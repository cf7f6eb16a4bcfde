package engine

import (
	"errors"
	"fmt"

	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/record"
)

// Sentinel errors.
var (
	// ErrInvalidConfig indicates invalid guardrail or evaluator configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrDepthExceeded indicates a condition group nested deeper than the
	// configured maximum. The group evaluates to false.
	ErrDepthExceeded = errors.New("condition nesting exceeds maximum depth")

	// ErrPatternNotFound indicates a preset name missing from the library.
	ErrPatternNotFound = errors.New("preset pattern not found")

	// ErrInvalidOperator indicates a group or condition operator outside the
	// known set. Only hand-built configurations can carry one.
	ErrInvalidOperator = errors.New("invalid operator")
)

// The errors below never escape EvaluateRules; every one of them folds
// into "condition does not match". Explain reports them so rule authors can
// see why a condition never fires.

// FieldNotFoundError indicates a condition references an unknown field path.
type FieldNotFoundError struct {
	Field string
}

// Error returns the error message.
func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field not found: %q", e.Field)
}

// TypeMismatchError indicates the field variant and literal shape cannot be
// compared with the operator.
type TypeMismatchError struct {
	Field    string
	Operator ast.ComparisonOperator
	Actual   record.Kind
	Literal  ast.LiteralKind
}

// Error returns the error message.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch on field %q: %s cannot compare %s field with %s literal",
		e.Field, e.Operator, e.Actual, e.Literal)
}

// PatternError indicates a REGEX_MATCH pattern could not be used, either
// because a preset name is unknown or an ad hoc pattern failed to compile.
type PatternError struct {
	Pattern string
	Preset  bool
	Cause   error
}

// Error returns the error message.
func (e *PatternError) Error() string {
	if e.Preset {
		return fmt.Sprintf("preset pattern %q: %v", e.Pattern, e.Cause)
	}
	return fmt.Sprintf("pattern %q: %v", e.Pattern, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *PatternError) Unwrap() error {
	return e.Cause
}
