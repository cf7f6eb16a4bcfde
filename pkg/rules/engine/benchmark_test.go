package engine

import (
	"fmt"
	"testing"

	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/record"
)

// benchConfig builds n rules of which regexCount use the po_box preset.
func benchConfig(n, regexCount int) *ast.RulesConfig {
	cfg := &ast.RulesConfig{Version: "bench"}
	for i := 0; i < n; i++ {
		if i < regexCount {
			cfg.Rules = append(cfg.Rules, regexRule(fmt.Sprintf("regex-%d", i)))
			continue
		}
		cfg.Rules = append(cfg.Rules, totalRule(fmt.Sprintf("total-%d", i), float64(i)))
	}
	return cfg
}

// BenchmarkCompare benchmarks a single numeric comparison.
func BenchmarkCompare(b *testing.B) {
	v := record.Number(150)
	lit := ast.NumberLiteral(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Compare(v, ast.OpGreaterThan, lit, false, nil)
	}
}

// BenchmarkPresetMatch benchmarks a preset regex comparison.
func BenchmarkPresetMatch(b *testing.B) {
	lib := patterns.MustNew()
	v := record.String("Post Office Box 101")
	lit := ast.StringLiteral(patterns.POBox)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Compare(v, ast.OpRegexMatch, lit, true, lib)
	}
}

// BenchmarkEvaluateRules benchmarks full passes at the default guardrails.
func BenchmarkEvaluateRules(b *testing.B) {
	sizes := []struct{ rules, regex int }{
		{10, 2},
		{100, 30},
		{200, 60},
	}

	rec := sampleRecord()
	for _, size := range sizes {
		b.Run(fmt.Sprintf("rules_%d_regex_%d", size.rules, size.regex), func(b *testing.B) {
			e, err := NewEvaluator(patterns.MustNew(), nil)
			if err != nil {
				b.Fatal(err)
			}
			cfg := benchConfig(size.rules, size.regex)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				e.EvaluateRules(cfg, rec)
			}
		})
	}
}
