package engine

import (
	"errors"
	"testing"

	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/record"
)

func newTestMatcher(maxDepth int) *matcher {
	return &matcher{
		patterns: patterns.MustNew(),
		cache:    newRegexCache(DefaultRegexCacheSize),
		maxDepth: maxDepth,
	}
}

func sampleRecord() *record.Record {
	return &record.Record{
		Total:        150,
		Subtotal:     140,
		Quantity:     3,
		CustomerTags: []string{"VIP", "Wholesale"},
		ShippingAddress: record.Address{
			Address1:    "PO Box 123",
			City:        "Austin",
			Country:     "United States",
			CountryCode: "US",
			Zip:         "78701",
		},
	}
}

// TestMatchGroup_Logical tests AND/OR semantics including empty groups.
func TestMatchGroup_Logical(t *testing.T) {
	m := newTestMatcher(DefaultMaxDepth)
	rec := sampleRecord()

	truthy := ast.Cond(record.PathCartTotal, ast.OpGreaterThan, ast.NumberLiteral(100))
	falsy := ast.Cond(record.PathCartTotal, ast.OpLessThan, ast.NumberLiteral(100))

	tests := []struct {
		name  string
		group ast.ConditionGroup
		want  bool
	}{
		{"empty AND", ast.ConditionGroup{Operator: ast.LogicalAnd}, true},
		{"empty OR", ast.ConditionGroup{Operator: ast.LogicalOr}, false},
		{"AND all true", ast.ConditionGroup{Operator: ast.LogicalAnd, Criteria: []ast.Criterion{truthy, truthy}}, true},
		{"AND one false", ast.ConditionGroup{Operator: ast.LogicalAnd, Criteria: []ast.Criterion{truthy, falsy}}, false},
		{"OR one true", ast.ConditionGroup{Operator: ast.LogicalOr, Criteria: []ast.Criterion{falsy, truthy}}, true},
		{"OR all false", ast.ConditionGroup{Operator: ast.LogicalOr, Criteria: []ast.Criterion{falsy, falsy}}, false},
		{"nested OR in AND", ast.ConditionGroup{Operator: ast.LogicalAnd, Criteria: []ast.Criterion{
			truthy,
			ast.Any(falsy, truthy),
		}}, true},
		{"nested empty OR in AND", ast.ConditionGroup{Operator: ast.LogicalAnd, Criteria: []ast.Criterion{
			truthy,
			ast.Any(),
		}}, false},
		{"unknown group operator", ast.ConditionGroup{Operator: "XOR", Criteria: []ast.Criterion{truthy}}, false},
		{"empty criterion", ast.ConditionGroup{Operator: ast.LogicalOr, Criteria: []ast.Criterion{{}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.matchGroup(&tt.group, rec, 1, nil); got != tt.want {
				t.Errorf("matchGroup() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestMatchCondition_UnknownField tests that every operator, including the
// negated ones, is false for a path the record cannot resolve.
func TestMatchCondition_UnknownField(t *testing.T) {
	m := newTestMatcher(DefaultMaxDepth)
	rec := sampleRecord()

	for _, op := range ast.ComparisonOperators {
		t.Run(string(op), func(t *testing.T) {
			lit := ast.StringLiteral("x")
			if op.IsNumeric() {
				lit = ast.NumberLiteral(1)
			}
			if op.IsMembership() {
				lit = ast.ArrayLiteral(ast.StringLiteral("x"))
			}
			cond := &ast.Condition{Field: "cart.unknown", Operator: op, Value: lit}

			var diag error
			if m.matchCondition(cond, rec, &diag) {
				t.Error("unknown field must not match")
			}
			var fnf *FieldNotFoundError
			if !errors.As(diag, &fnf) || fnf.Field != "cart.unknown" {
				t.Errorf("diag = %v, want FieldNotFoundError", diag)
			}
		})
	}
}

// TestMatchCondition_NilRecord tests that nothing resolves on a nil record.
func TestMatchCondition_NilRecord(t *testing.T) {
	m := newTestMatcher(DefaultMaxDepth)
	cond := &ast.Condition{Field: record.PathCartTotal, Operator: ast.OpNotEquals, Value: ast.NumberLiteral(1)}
	if m.matchCondition(cond, nil, nil) {
		t.Error("nil record must not match")
	}
}

// nest wraps inner in n-1 additional AND groups, producing a tree of depth n.
func nest(n int, inner ast.Criterion) ast.ConditionGroup {
	g := ast.ConditionGroup{Operator: ast.LogicalAnd, Criteria: []ast.Criterion{inner}}
	for i := 1; i < n; i++ {
		child := g
		g = ast.ConditionGroup{Operator: ast.LogicalAnd, Criteria: []ast.Criterion{{Group: &child}}}
	}
	return g
}

// TestMatchGroup_Depth tests the nesting limit.
func TestMatchGroup_Depth(t *testing.T) {
	rec := sampleRecord()
	leaf := ast.Cond(record.PathCartTotal, ast.OpGreaterThan, ast.NumberLiteral(100))

	tests := []struct {
		name     string
		maxDepth int
		depth    int
		want     bool
	}{
		{"at limit", 4, 4, true},
		{"below limit", 4, 2, true},
		{"one over limit", 4, 5, false},
		{"default limit", DefaultMaxDepth, DefaultMaxDepth, true},
		{"default limit exceeded", DefaultMaxDepth, DefaultMaxDepth + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMatcher(tt.maxDepth)
			g := nest(tt.depth, leaf)
			if g.Depth() != tt.depth {
				t.Fatalf("tree depth = %d, want %d", g.Depth(), tt.depth)
			}

			var diag error
			got := m.matchGroup(&g, rec, 1, &diag)
			if got != tt.want {
				t.Errorf("matchGroup() = %v, want %v", got, tt.want)
			}
			if !tt.want && !errors.Is(diag, ErrDepthExceeded) {
				t.Errorf("diag = %v, want ErrDepthExceeded", diag)
			}
		})
	}
}

// TestMatchGroup_ShortCircuit tests that evaluation stops at the first
// deciding criterion, so later degraded leaves are never reported.
func TestMatchGroup_ShortCircuit(t *testing.T) {
	m := newTestMatcher(DefaultMaxDepth)
	rec := sampleRecord()

	g := ast.ConditionGroup{Operator: ast.LogicalOr, Criteria: []ast.Criterion{
		ast.Cond(record.PathCountryCode, ast.OpEquals, ast.StringLiteral("us")),
		ast.Cond("no.such.field", ast.OpEquals, ast.StringLiteral("x")),
	}}

	var diag error
	if !m.matchGroup(&g, rec, 1, &diag) {
		t.Fatal("expected match")
	}
	if diag != nil {
		t.Errorf("diag = %v, want nil after short-circuit", diag)
	}
}
