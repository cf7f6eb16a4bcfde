// Package ast defines the rules configuration model evaluated by the engine.
//
// A RulesConfig is an ordered list of rules. Each rule owns a tree of
// condition groups whose leaves are field comparisons:
//
//	RulesConfig
//	└── Rule (id, error_message, enabled)
//	    └── ConditionGroup (AND | OR)
//	        ├── Criterion{Condition: field OPERATOR value}
//	        └── Criterion{Group: ConditionGroup ...}
//
// # Criterion
//
// Criterion is a tagged union: exactly one of Condition or Group is set.
// On the wire the variant is discriminated by shape. An object carrying a
// "field" key is a Condition, an object carrying a "criteria" key is a
// nested group.
//
// # Literals
//
// Condition values use a closed literal algebra (string, number, boolean,
// or an array of those scalars). Shapes outside the algebra (null, objects,
// nested arrays) decode to an invalid literal that never matches, so one
// malformed condition does not reject the whole configuration. The
// validator package reports them.
//
// # Decoding
//
// Configurations decode from JSON (ParseJSON) or YAML (ParseYAML). Both
// formats share the same key names:
//
//	version: "1"
//	rules:
//	  - id: block-po-box
//	    name: Block PO boxes
//	    error_message: We cannot ship to PO boxes
//	    conditions:
//	      operator: AND
//	      criteria:
//	        - field: shipping_address.address1
//	          operator: REGEX_MATCH
//	          value: po_box
//	          is_preset: true
//
// Nodes are never mutated after decoding; the engine reads them
// concurrently without locking.
package ast
