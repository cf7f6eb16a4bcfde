package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RulesConfig is the root of a rules configuration.
type RulesConfig struct {
	Version         string `json:"version" yaml:"version"`
	TotalComplexity int    `json:"total_complexity" yaml:"total_complexity"`
	Rules           []Rule `json:"rules" yaml:"rules"`
}

// Rule maps a condition tree to one error message.
type Rule struct {
	ID           string         `json:"id" yaml:"id"`
	Name         string         `json:"name" yaml:"name"`
	Complexity   int            `json:"complexity" yaml:"complexity"`
	Enabled      bool           `json:"enabled" yaml:"enabled"`
	ErrorMessage string         `json:"error_message" yaml:"error_message"`
	Conditions   ConditionGroup `json:"conditions" yaml:"conditions"`
}

// ConditionGroup is an AND/OR combinator over its criteria.
type ConditionGroup struct {
	Operator LogicalOperator `json:"operator" yaml:"operator"`
	Criteria []Criterion     `json:"criteria" yaml:"criteria"`
}

// Criterion is either a Condition leaf or a nested ConditionGroup. Exactly
// one of the two pointers is non-nil for a decoded configuration.
type Criterion struct {
	Condition *Condition
	Group     *ConditionGroup
}

// Condition compares one field of the record with a literal.
//
// When IsPreset is set, Value names a preset pattern instead of carrying an
// ad hoc regular expression.
type Condition struct {
	Field    string             `json:"field" yaml:"field"`
	Operator ComparisonOperator `json:"operator" yaml:"operator"`
	Value    Literal            `json:"value" yaml:"value"`
	IsPreset bool               `json:"is_preset,omitempty" yaml:"is_preset,omitempty"`
}

// ErrAmbiguousCriterion is returned when a criterion object carries both or
// neither of the "field" and "criteria" keys.
var ErrAmbiguousCriterion = errors.New("criterion must have exactly one of \"field\" or \"criteria\"")

// Cond builds a condition criterion.
func Cond(field string, op ComparisonOperator, value Literal) Criterion {
	return Criterion{Condition: &Condition{Field: field, Operator: op, Value: value}}
}

// Preset builds a REGEX_MATCH criterion against a named preset pattern.
func Preset(field, name string) Criterion {
	return Criterion{Condition: &Condition{
		Field:    field,
		Operator: OpRegexMatch,
		Value:    StringLiteral(name),
		IsPreset: true,
	}}
}

// All builds a nested AND group criterion.
func All(criteria ...Criterion) Criterion {
	return Criterion{Group: &ConditionGroup{Operator: LogicalAnd, Criteria: criteria}}
}

// Any builds a nested OR group criterion.
func Any(criteria ...Criterion) Criterion {
	return Criterion{Group: &ConditionGroup{Operator: LogicalOr, Criteria: criteria}}
}

// IsCondition reports whether the criterion is a leaf.
func (c Criterion) IsCondition() bool { return c.Condition != nil }

// IsGroup reports whether the criterion is a nested group.
func (c Criterion) IsGroup() bool { return c.Group != nil }

type ruleAlias Rule

type ruleWire struct {
	ruleAlias
	Enabled *bool `json:"enabled"`
}

// UnmarshalJSON implements json.Unmarshaler. A missing "enabled" key means
// the rule is enabled.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var w ruleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Rule(w.ruleAlias)
	r.Enabled = w.Enabled == nil || *w.Enabled
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler with the same enabled default
// as UnmarshalJSON.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	var alias ruleAlias
	if err := node.Decode(&alias); err != nil {
		return err
	}
	*r = Rule(alias)
	if !hasKey(node, "enabled") {
		r.Enabled = true
	}
	return nil
}

// hasKey reports whether a YAML mapping node defines key.
func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

// UnmarshalJSON implements json.Unmarshaler by discriminating on shape.
func (c *Criterion) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("criterion must be an object: %w", err)
	}
	_, hasField := keys["field"]
	_, hasCriteria := keys["criteria"]

	switch {
	case hasField && !hasCriteria:
		var cond Condition
		if err := json.Unmarshal(data, &cond); err != nil {
			return err
		}
		*c = Criterion{Condition: &cond}
	case hasCriteria && !hasField:
		var group ConditionGroup
		if err := json.Unmarshal(data, &group); err != nil {
			return err
		}
		*c = Criterion{Group: &group}
	default:
		return ErrAmbiguousCriterion
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Criterion) MarshalJSON() ([]byte, error) {
	switch {
	case c.Condition != nil:
		return json.Marshal(c.Condition)
	case c.Group != nil:
		return json.Marshal(c.Group)
	default:
		return nil, ErrAmbiguousCriterion
	}
}

// UnmarshalYAML implements yaml.Unmarshaler by discriminating on shape.
func (c *Criterion) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: criterion must be a mapping", node.Line)
	}
	hasField := hasKey(node, "field")
	hasCriteria := hasKey(node, "criteria")

	switch {
	case hasField && !hasCriteria:
		var cond Condition
		if err := node.Decode(&cond); err != nil {
			return err
		}
		*c = Criterion{Condition: &cond}
	case hasCriteria && !hasField:
		var group ConditionGroup
		if err := node.Decode(&group); err != nil {
			return err
		}
		*c = Criterion{Group: &group}
	default:
		return fmt.Errorf("line %d: %w", node.Line, ErrAmbiguousCriterion)
	}
	return nil
}

// ParseJSON decodes a rules configuration from JSON.
func ParseJSON(data []byte) (*RulesConfig, error) {
	var cfg RulesConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rules config: %w", err)
	}
	return &cfg, nil
}

// ParseYAML decodes a rules configuration from YAML.
func ParseYAML(data []byte) (*RulesConfig, error) {
	var cfg RulesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rules config: %w", err)
	}
	return &cfg, nil
}
