package engine

import (
	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/patterns"
	"mercator-hq/gatekeep/pkg/rules/record"
)

// matcher walks condition trees. It holds no per-evaluation state and is
// safe for concurrent use.
type matcher struct {
	patterns *patterns.Library
	cache    *regexCache
	maxDepth int
}

// matchGroup evaluates g at the given depth (1 for a rule's root group).
// AND and OR short-circuit in declaration order. An empty AND is true and
// an empty OR is false.
//
// diag, when non-nil, receives the first reason a leaf degraded to a
// non-match. It is nil on the hot path.
func (m *matcher) matchGroup(g *ast.ConditionGroup, rec *record.Record, depth int, diag *error) bool {
	if depth > m.maxDepth {
		note(diag, ErrDepthExceeded)
		return false
	}

	switch g.Operator {
	case ast.LogicalAnd:
		for i := range g.Criteria {
			if !m.matchCriterion(&g.Criteria[i], rec, depth, diag) {
				return false
			}
		}
		return true

	case ast.LogicalOr:
		for i := range g.Criteria {
			if m.matchCriterion(&g.Criteria[i], rec, depth, diag) {
				return true
			}
		}
		return false

	default:
		note(diag, ErrInvalidOperator)
		return false
	}
}

func (m *matcher) matchCriterion(c *ast.Criterion, rec *record.Record, depth int, diag *error) bool {
	switch {
	case c.Condition != nil:
		return m.matchCondition(c.Condition, rec, diag)
	case c.Group != nil:
		return m.matchGroup(c.Group, rec, depth+1, diag)
	default:
		return false
	}
}

// matchCondition resolves the field and compares it. An unknown field is a
// non-match and the comparator is not consulted.
func (m *matcher) matchCondition(cond *ast.Condition, rec *record.Record, diag *error) bool {
	v, ok := record.Resolve(cond.Field, rec)
	if !ok {
		if diag != nil {
			note(diag, &FieldNotFoundError{Field: cond.Field})
		}
		return false
	}

	matched, err := evaluateOperator(v, cond, m.patterns, m.cache)
	if err != nil {
		note(diag, err)
		return false
	}
	return matched
}

func note(diag *error, err error) {
	if diag != nil && *diag == nil {
		*diag = err
	}
}
