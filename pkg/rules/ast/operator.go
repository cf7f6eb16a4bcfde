package ast

import "fmt"

// LogicalOperator combines the criteria of a ConditionGroup.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// Valid reports whether op is AND or OR.
func (op LogicalOperator) Valid() bool {
	return op == LogicalAnd || op == LogicalOr
}

// UnmarshalText implements encoding.TextUnmarshaler. It is used by the JSON
// and YAML decoders alike.
func (op *LogicalOperator) UnmarshalText(text []byte) error {
	v := LogicalOperator(text)
	if !v.Valid() {
		return fmt.Errorf("unknown logical operator %q", string(text))
	}
	*op = v
	return nil
}

// ComparisonOperator is the operator of a Condition leaf.
type ComparisonOperator string

const (
	OpEquals             ComparisonOperator = "EQUALS"
	OpNotEquals          ComparisonOperator = "NOT_EQUALS"
	OpGreaterThan        ComparisonOperator = "GREATER_THAN"
	OpGreaterThanOrEqual ComparisonOperator = "GREATER_THAN_OR_EQUAL"
	OpLessThan           ComparisonOperator = "LESS_THAN"
	OpLessThanOrEqual    ComparisonOperator = "LESS_THAN_OR_EQUAL"
	OpContains           ComparisonOperator = "CONTAINS"
	OpNotContains        ComparisonOperator = "NOT_CONTAINS"
	OpStartsWith         ComparisonOperator = "STARTS_WITH"
	OpEndsWith           ComparisonOperator = "ENDS_WITH"
	OpRegexMatch         ComparisonOperator = "REGEX_MATCH"
	OpIn                 ComparisonOperator = "IN"
	OpNotIn              ComparisonOperator = "NOT_IN"
)

// ComparisonOperators lists every operator in declaration order.
var ComparisonOperators = []ComparisonOperator{
	OpEquals,
	OpNotEquals,
	OpGreaterThan,
	OpGreaterThanOrEqual,
	OpLessThan,
	OpLessThanOrEqual,
	OpContains,
	OpNotContains,
	OpStartsWith,
	OpEndsWith,
	OpRegexMatch,
	OpIn,
	OpNotIn,
}

// Valid reports whether op is one of the 13 known operators.
func (op ComparisonOperator) Valid() bool {
	switch op {
	case OpEquals, OpNotEquals,
		OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual,
		OpContains, OpNotContains, OpStartsWith, OpEndsWith,
		OpRegexMatch, OpIn, OpNotIn:
		return true
	}
	return false
}

// IsNumeric reports whether op is an ordering operator that only applies to
// numbers.
func (op ComparisonOperator) IsNumeric() bool {
	switch op {
	case OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		return true
	}
	return false
}

// IsMembership reports whether op is IN or NOT_IN.
func (op ComparisonOperator) IsMembership() bool {
	return op == OpIn || op == OpNotIn
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *ComparisonOperator) UnmarshalText(text []byte) error {
	v := ComparisonOperator(text)
	if !v.Valid() {
		return fmt.Errorf("unknown comparison operator %q", string(text))
	}
	*op = v
	return nil
}
