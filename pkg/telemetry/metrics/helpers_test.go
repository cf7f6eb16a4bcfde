package metrics

import (
	"testing"

	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/record"
)

func patternsForTest(t *testing.T) *patterns.Library {
	t.Helper()
	return patterns.MustNew()
}

func blockingConfig() *ast.RulesConfig {
	return &ast.RulesConfig{
		Version: "1",
		Rules: []ast.Rule{{
			ID:           "high-total",
			Enabled:      true,
			ErrorMessage: "Order total too high",
			Conditions: ast.ConditionGroup{
				Operator: ast.LogicalAnd,
				Criteria: []ast.Criterion{
					ast.Cond(record.PathCartTotal, ast.OpGreaterThan, ast.NumberLiteral(100)),
				},
			},
		}},
	}
}

func blockingRecord() *record.Record {
	return &record.Record{Total: 150}
}
