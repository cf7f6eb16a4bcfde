package bench

import (
	"fmt"

	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/record"
)

// unreachableTotal is above any realistic cart total, so threshold rules
// are evaluated but never fire.
const unreachableTotal = 999999

// regexTargets are the preset and field pairs regex rules cycle through.
var regexTargets = []struct {
	preset string
	field  string
}{
	{patterns.POBox, record.PathAddress1},
	{patterns.USZip, record.PathZip},
}

// GenerateConfig builds ruleCount rules of which regexCount use a preset
// regex. Threshold rules come first. A regexCount above ruleCount is
// clamped.
func GenerateConfig(ruleCount, regexCount int) *ast.RulesConfig {
	ruleCount = max(ruleCount, 0)
	regexCount = min(max(regexCount, 0), ruleCount)

	cfg := &ast.RulesConfig{
		Version: fmt.Sprintf("synthetic-%d-%d", ruleCount, regexCount),
		Rules:   make([]ast.Rule, 0, ruleCount),
	}

	for i := 0; i < ruleCount-regexCount; i++ {
		cfg.Rules = append(cfg.Rules, ast.Rule{
			ID:           fmt.Sprintf("rule_%d", i),
			Name:         fmt.Sprintf("Numeric Rule %d", i),
			Complexity:   1,
			Enabled:      true,
			ErrorMessage: fmt.Sprintf("Blocked by rule %d", i),
			Conditions: ast.ConditionGroup{
				Operator: ast.LogicalAnd,
				Criteria: []ast.Criterion{
					ast.Cond(record.PathCartTotal, ast.OpGreaterThan, ast.NumberLiteral(unreachableTotal)),
				},
			},
		})
	}

	for i := 0; i < regexCount; i++ {
		target := regexTargets[i%len(regexTargets)]
		cfg.Rules = append(cfg.Rules, ast.Rule{
			ID:           fmt.Sprintf("regex_%d", i),
			Name:         fmt.Sprintf("Regex Rule %d", i),
			Complexity:   3,
			Enabled:      true,
			ErrorMessage: fmt.Sprintf("Blocked by regex %d", i),
			Conditions: ast.ConditionGroup{
				Operator: ast.LogicalAnd,
				Criteria: []ast.Criterion{ast.Preset(target.field, target.preset)},
			},
		})
	}

	for i := range cfg.Rules {
		cfg.TotalComplexity += cfg.Rules[i].Complexity
	}
	return cfg
}

// SampleRecord returns a cart that matches no generated rule.
func SampleRecord() *record.Record {
	return &record.Record{
		Total:        150,
		Subtotal:     140,
		Quantity:     3,
		TotalWeight:  2.5,
		CustomerTags: []string{"returning", "newsletter"},
		ShippingAddress: record.Address{
			Address1:     "123 Main Street",
			Address2:     "Apt 4B",
			City:         "Los Angeles",
			Province:     "California",
			ProvinceCode: "CA",
			Country:      "United States",
			CountryCode:  "US",
			Zip:          "9021",
		},
	}
}
