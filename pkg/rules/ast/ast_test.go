package ast

import (
	"encoding/json"
	"errors"
	"testing"
)

const sampleJSON = `{
  "version": "1.0",
  "total_complexity": 3,
  "rules": [
    {
      "id": "high-total",
      "name": "High total",
      "complexity": 1,
      "error_message": "Order total too high",
      "conditions": {
        "operator": "AND",
        "criteria": [
          {"field": "cart.total", "operator": "GREATER_THAN", "value": 100}
        ]
      }
    },
    {
      "id": "po-box-us",
      "name": "PO box in US",
      "complexity": 2,
      "enabled": false,
      "error_message": "No PO boxes",
      "conditions": {
        "operator": "OR",
        "criteria": [
          {"field": "cart.total", "operator": "GREATER_THAN", "value": 1000},
          {
            "operator": "AND",
            "criteria": [
              {"field": "shipping_address.country_code", "operator": "EQUALS", "value": "US"},
              {"field": "shipping_address.address1", "operator": "REGEX_MATCH", "value": "po_box", "is_preset": true}
            ]
          }
        ]
      }
    }
  ]
}`

const sampleYAML = `
version: "1.0"
total_complexity: 3
rules:
  - id: high-total
    name: High total
    complexity: 1
    error_message: Order total too high
    conditions:
      operator: AND
      criteria:
        - field: cart.total
          operator: GREATER_THAN
          value: 100
  - id: po-box-us
    name: PO box in US
    complexity: 2
    enabled: false
    error_message: No PO boxes
    conditions:
      operator: OR
      criteria:
        - field: cart.total
          operator: GREATER_THAN
          value: 1000
        - operator: AND
          criteria:
            - field: shipping_address.country_code
              operator: EQUALS
              value: US
            - field: shipping_address.address1
              operator: REGEX_MATCH
              value: po_box
              is_preset: true
`

func checkSample(t *testing.T, cfg *RulesConfig) {
	t.Helper()

	if cfg.Version != "1.0" || cfg.TotalComplexity != 3 {
		t.Fatalf("header = %q/%d, want 1.0/3", cfg.Version, cfg.TotalComplexity)
	}
	if len(cfg.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(cfg.Rules))
	}

	first := cfg.Rules[0]
	if !first.Enabled {
		t.Error("rule without enabled key should default to enabled")
	}
	if first.UsesRegex() {
		t.Error("high-total should not use regex")
	}
	leaf := first.Conditions.Criteria[0].Condition
	if leaf == nil {
		t.Fatal("expected condition leaf")
	}
	if n, ok := leaf.Value.AsNumber(); !ok || n != 100 {
		t.Errorf("value = %v, want number 100", leaf.Value)
	}

	second := cfg.Rules[1]
	if second.Enabled {
		t.Error("enabled: false should be honoured")
	}
	if !second.UsesRegex() {
		t.Error("po-box-us uses a nested REGEX_MATCH")
	}
	nested := second.Conditions.Criteria[1]
	if !nested.IsGroup() || nested.Group.Operator != LogicalAnd {
		t.Fatalf("criteria[1] = %+v, want AND group", nested)
	}
	preset := nested.Group.Criteria[1].Condition
	if !preset.IsPreset || preset.Operator != OpRegexMatch {
		t.Errorf("preset leaf = %+v", preset)
	}
	if got := second.Conditions.Depth(); got != 2 {
		t.Errorf("Depth() = %d, want 2", got)
	}
}

func TestParseJSON(t *testing.T) {
	cfg, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	checkSample(t, cfg)
}

func TestParseYAML(t *testing.T) {
	cfg, err := ParseYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	checkSample(t, cfg)
}

func TestParseRejectsUnknownOperator(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "comparison",
			data: `{"version":"1","rules":[{"id":"a","conditions":{"operator":"AND","criteria":[{"field":"cart.total","operator":"BIGGER","value":1}]}}]}`,
		},
		{
			name: "logical",
			data: `{"version":"1","rules":[{"id":"a","conditions":{"operator":"XOR","criteria":[]}}]}`,
		},
		{
			name: "lowercase token",
			data: `{"version":"1","rules":[{"id":"a","conditions":{"operator":"and","criteria":[]}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseJSON([]byte(tt.data)); err == nil {
				t.Error("expected error for unknown operator")
			}
		})
	}
}

func TestCriterionAmbiguous(t *testing.T) {
	for _, data := range []string{
		`{"operator":"AND"}`,
		`{"field":"cart.total","criteria":[]}`,
	} {
		var c Criterion
		err := json.Unmarshal([]byte(data), &c)
		if !errors.Is(err, ErrAmbiguousCriterion) {
			t.Errorf("Unmarshal(%s) error = %v, want ErrAmbiguousCriterion", data, err)
		}
	}
}

func TestLiteralDecoding(t *testing.T) {
	tests := []struct {
		data string
		want LiteralKind
	}{
		{`"US"`, LiteralString},
		{`12.5`, LiteralNumber},
		{`true`, LiteralBool},
		{`["US", 3, false]`, LiteralArray},
		{`null`, LiteralInvalid},
		{`{"a": 1}`, LiteralInvalid},
	}

	for _, tt := range tests {
		var l Literal
		if err := json.Unmarshal([]byte(tt.data), &l); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.data, err)
		}
		if l.Kind != tt.want {
			t.Errorf("Unmarshal(%s).Kind = %v, want %v", tt.data, l.Kind, tt.want)
		}
	}
}

func TestLiteralNestedArrayItemsAreInvalid(t *testing.T) {
	var l Literal
	if err := json.Unmarshal([]byte(`["a", ["b"]]`), &l); err != nil {
		t.Fatal(err)
	}
	if l.Kind != LiteralArray || len(l.Items) != 2 {
		t.Fatalf("got %+v", l)
	}
	if l.Items[0].Kind != LiteralString {
		t.Errorf("item 0 kind = %v, want string", l.Items[0].Kind)
	}
	if l.Items[1].Kind != LiteralInvalid {
		t.Errorf("nested array item kind = %v, want invalid", l.Items[1].Kind)
	}
}

func TestMarshalRoundTripPreservesShape(t *testing.T) {
	cfg, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	again, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("re-parse error = %v", err)
	}
	checkSample(t, again)
}

func TestWalkPaths(t *testing.T) {
	rule := Rule{Conditions: ConditionGroup{
		Operator: LogicalOr,
		Criteria: []Criterion{
			Cond("cart.total", OpGreaterThan, NumberLiteral(100)),
			All(
				Cond("shipping_address.country_code", OpEquals, StringLiteral("US")),
				Preset("shipping_address.address1", "po_box"),
			),
		},
	}}

	var paths []string
	maxDepth := 0
	Walk(&rule, func(path string, depth int, cond *Condition, group *ConditionGroup) bool {
		if cond != nil {
			paths = append(paths, path)
		}
		if depth > maxDepth {
			maxDepth = depth
		}
		return true
	})

	want := []string{
		"conditions.criteria[0]",
		"conditions.criteria[1].criteria[0]",
		"conditions.criteria[1].criteria[1]",
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
	if maxDepth != 2 {
		t.Errorf("max depth = %d, want 2", maxDepth)
	}
}

func TestEnabledComplexity(t *testing.T) {
	cfg, err := ParseJSON([]byte(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.EnabledComplexity(); got != 1 {
		t.Errorf("EnabledComplexity() = %d, want 1", got)
	}
}
