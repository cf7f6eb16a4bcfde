package ast

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LiteralKind identifies the variant held by a Literal.
type LiteralKind uint8

const (
	// LiteralInvalid is a value outside the literal algebra (null, object,
	// nested array). It never matches.
	LiteralInvalid LiteralKind = iota
	LiteralString
	LiteralNumber
	LiteralBool
	LiteralArray
)

// String returns the kind name used in lint messages.
func (k LiteralKind) String() string {
	switch k {
	case LiteralString:
		return "string"
	case LiteralNumber:
		return "number"
	case LiteralBool:
		return "boolean"
	case LiteralArray:
		return "array"
	default:
		return "invalid"
	}
}

// Literal is the comparison value of a Condition.
//
// Only the field matching Kind is meaningful. Items holds scalar literals
// only; a nested array or object item decodes as LiteralInvalid.
type Literal struct {
	Kind  LiteralKind
	Str   string
	Num   float64
	Bool  bool
	Items []Literal
}

// StringLiteral returns a string literal.
func StringLiteral(s string) Literal { return Literal{Kind: LiteralString, Str: s} }

// NumberLiteral returns a number literal.
func NumberLiteral(n float64) Literal { return Literal{Kind: LiteralNumber, Num: n} }

// BoolLiteral returns a boolean literal.
func BoolLiteral(b bool) Literal { return Literal{Kind: LiteralBool, Bool: b} }

// ArrayLiteral returns an array literal. Non-scalar items are stored as
// invalid literals.
func ArrayLiteral(items ...Literal) Literal {
	out := make([]Literal, len(items))
	for i, item := range items {
		if item.Kind == LiteralArray {
			item = Literal{}
		}
		out[i] = item
	}
	return Literal{Kind: LiteralArray, Items: out}
}

// AsString returns the string value if the literal is a string.
func (l Literal) AsString() (string, bool) {
	return l.Str, l.Kind == LiteralString
}

// AsNumber returns the numeric value if the literal is a number.
func (l Literal) AsNumber() (float64, bool) {
	return l.Num, l.Kind == LiteralNumber
}

// String renders the literal for logs and lint output.
func (l Literal) String() string {
	switch l.Kind {
	case LiteralString:
		return strconv.Quote(l.Str)
	case LiteralNumber:
		return strconv.FormatFloat(l.Num, 'g', -1, 64)
	case LiteralBool:
		return strconv.FormatBool(l.Bool)
	case LiteralArray:
		s := "["
		for i, item := range l.Items {
			if i > 0 {
				s += ", "
			}
			s += item.String()
		}
		return s + "]"
	default:
		return "<invalid>"
	}
}

// literalFromAny converts a decoded JSON or YAML value into the algebra.
// depth 0 is the condition value itself; items of an array are depth 1.
func literalFromAny(v any, depth int) Literal {
	switch x := v.(type) {
	case string:
		return StringLiteral(x)
	case float64:
		return NumberLiteral(x)
	case float32:
		return NumberLiteral(float64(x))
	case int:
		return NumberLiteral(float64(x))
	case int64:
		return NumberLiteral(float64(x))
	case uint64:
		return NumberLiteral(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Literal{}
		}
		return NumberLiteral(f)
	case bool:
		return BoolLiteral(x)
	case []any:
		if depth > 0 {
			return Literal{}
		}
		items := make([]Literal, len(x))
		for i, item := range x {
			items[i] = literalFromAny(item, depth+1)
		}
		return Literal{Kind: LiteralArray, Items: items}
	default:
		return Literal{}
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Literal) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid literal: %w", err)
	}
	*l = literalFromAny(v, 0)
	return nil
}

// MarshalJSON implements json.Marshaler. Invalid literals encode as null.
func (l Literal) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case LiteralString:
		return json.Marshal(l.Str)
	case LiteralNumber:
		return json.Marshal(l.Num)
	case LiteralBool:
		return json.Marshal(l.Bool)
	case LiteralArray:
		return json.Marshal(l.Items)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Literal) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("invalid literal at line %d: %w", node.Line, err)
	}
	*l = literalFromAny(v, 0)
	return nil
}
