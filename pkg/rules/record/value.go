package record

import (
	"strconv"
	"strings"
)

// Kind identifies the variant of a FieldValue.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindNumber
	KindBool
	KindStringArray
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindStringArray:
		return "string_array"
	default:
		return "unknown"
	}
}

// FieldValue is the typed result of resolving a field path. Only the field
// matching Kind is meaningful.
type FieldValue struct {
	Kind    Kind
	Str     string
	Num     float64
	Bool    bool
	Strings []string
}

// String returns a string field value.
func String(s string) FieldValue { return FieldValue{Kind: KindString, Str: s} }

// Number returns a numeric field value.
func Number(n float64) FieldValue { return FieldValue{Kind: KindNumber, Num: n} }

// Bool returns a boolean field value.
func Bool(b bool) FieldValue { return FieldValue{Kind: KindBool, Bool: b} }

// StringArray returns a string list field value.
func StringArray(s []string) FieldValue { return FieldValue{Kind: KindStringArray, Strings: s} }

// Format renders the value for traces and logs.
func (v FieldValue) Format() string {
	switch v.Kind {
	case KindString:
		return strconv.Quote(v.Str)
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindStringArray:
		return "[" + strings.Join(v.Strings, ", ") + "]"
	default:
		return "<unknown>"
	}
}
