package ast

import "strconv"

// UsesRegex reports whether the group contains a REGEX_MATCH leaf at any
// depth.
func (g *ConditionGroup) UsesRegex() bool {
	for _, c := range g.Criteria {
		switch {
		case c.Condition != nil:
			if c.Condition.Operator == OpRegexMatch {
				return true
			}
		case c.Group != nil:
			if c.Group.UsesRegex() {
				return true
			}
		}
	}
	return false
}

// UsesRegex reports whether the rule's condition tree contains a
// REGEX_MATCH leaf.
func (r *Rule) UsesRegex() bool {
	return r.Conditions.UsesRegex()
}

// Depth returns the nesting depth of the group. A group with only leaves
// (or no criteria) has depth 1.
func (g *ConditionGroup) Depth() int {
	deepest := 0
	for _, c := range g.Criteria {
		if c.Group != nil {
			if d := c.Group.Depth(); d > deepest {
				deepest = d
			}
		}
	}
	return deepest + 1
}

// Visitor is called for every node reached by Walk. path locates the node
// inside the rule, e.g. "conditions.criteria[1].criteria[0]". depth is 1 for
// the rule's root group. Exactly one of cond and group is non-nil.
// Returning false stops descent into a group's children.
type Visitor func(path string, depth int, cond *Condition, group *ConditionGroup) bool

// Walk visits the rule's condition tree in declaration order.
func Walk(rule *Rule, visit Visitor) {
	walkGroup(&rule.Conditions, "conditions", 1, visit)
}

func walkGroup(g *ConditionGroup, path string, depth int, visit Visitor) {
	if !visit(path, depth, nil, g) {
		return
	}
	for i, c := range g.Criteria {
		childPath := path + ".criteria[" + strconv.Itoa(i) + "]"
		switch {
		case c.Condition != nil:
			visit(childPath, depth, c.Condition, nil)
		case c.Group != nil:
			walkGroup(c.Group, childPath, depth+1, visit)
		}
	}
}

// EnabledComplexity sums the complexity of enabled rules.
func (cfg *RulesConfig) EnabledComplexity() int {
	total := 0
	for i := range cfg.Rules {
		if cfg.Rules[i].Enabled {
			total += cfg.Rules[i].Complexity
		}
	}
	return total
}
