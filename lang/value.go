package lang

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type of a Value.
type Kind int

const (
	KindUnit Kind = iota
	KindNumber
	KindBoolean
	KindString
	KindList
	KindObject
	KindFunction
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"

	case KindNumber:
		return "Number"

	case KindBoolean:
		return "Boolean"

	case KindString:
		return "String"

	case KindList:
		return "List"

	case KindObject:
		return "Object"

	case KindFunction:
		return "Function"

	default:
		return "Unknown"
	}
}

// Value is a runtime value. Exactly one payload field is meaningful,
// selected by Kind. The zero Value is Unit.
type Value struct {
	Object map[string]*Value
	Func   *Function
	Str    string
	List   []Value
	Number float64
	Kind   Kind
	Bool   bool
}

// Function is a closure value: an ordered parameter list and a body.
// The body is shared between copies and never mutated.
type Function struct {
	Body   Expression
	Params []string
}

// Unit returns the unit value.
func Unit() Value { return Value{} }

// Number returns a number value.
func Number(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// String returns a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// List returns a list value holding items.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}

	return Value{Kind: KindList, List: items}
}

// Object returns an object value holding copies of fields.
func Object(fields map[string]Value) Value {
	obj := make(map[string]*Value, len(fields))
	for k, v := range fields {
		obj[k] = pointer(v.Clone())
	}

	return Value{Kind: KindObject, Object: obj}
}

// Func returns a function value.
func Func(params []string, body Expression) Value {
	return Value{Kind: KindFunction, Func: &Function{Params: params, Body: body}}
}

// Clone returns a deep copy of the value. Lists and objects are copied
// recursively; function bodies are shared.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindList:
		items := make([]Value, len(v.List))
		for i, item := range v.List {
			items[i] = item.Clone()
		}

		return Value{Kind: KindList, List: items}

	case KindObject:
		obj := make(map[string]*Value, len(v.Object))
		for k, f := range v.Object {
			obj[k] = pointer(f.Clone())
		}

		return Value{Kind: KindObject, Object: obj}

	case KindFunction:
		params := slices.Clone(v.Func.Params)

		return Value{Kind: KindFunction, Func: &Function{Params: params, Body: v.Func.Body}}

	default:
		return v
	}
}

// Display returns the form written by print. Strings are written raw at the
// top level and quoted inside containers.
func (v Value) Display() string {
	if v.Kind == KindString {
		return v.Str
	}

	return v.Source()
}

// Source returns the canonical source form of the value.
func (v Value) Source() string {
	var sb strings.Builder

	v.writeSource(&sb)

	return sb.String()
}

func (v Value) writeSource(sb *strings.Builder) {
	switch v.Kind {
	case KindUnit:
		sb.WriteString("()")

	case KindNumber:
		sb.WriteString(formatNumber(v.Number))

	case KindBoolean:
		sb.WriteString(strconv.FormatBool(v.Bool))

	case KindString:
		sb.WriteString(strconv.Quote(v.Str))

	case KindList:
		sb.WriteByte('[')

		for i, item := range v.List {
			if i > 0 {
				sb.WriteString(", ")
			}

			item.writeSource(sb)
		}

		sb.WriteByte(']')

	case KindObject:
		sb.WriteByte('{')

		for i, k := range slices.Sorted(maps.Keys(v.Object)) {
			if i > 0 {
				sb.WriteString(",")
			}

			sb.WriteString(" " + k + ": ")
			v.Object[k].writeSource(sb)
		}

		if len(v.Object) > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteByte('}')

	case KindFunction:
		sb.WriteString("<function |" + strings.Join(v.Func.Params, ", ") + "|>")
	}
}

// Native converts the value to plain Go data: float64, bool, string,
// []any, map[string]any, or nil for Unit. Functions convert to their
// display form.
func (v Value) Native() any {
	switch v.Kind {
	case KindNumber:
		return v.Number

	case KindBoolean:
		return v.Bool

	case KindString:
		return v.Str

	case KindList:
		items := make([]any, len(v.List))
		for i, item := range v.List {
			items[i] = item.Native()
		}

		return items

	case KindObject:
		obj := make(map[string]any, len(v.Object))
		for k, f := range v.Object {
			obj[k] = f.Native()
		}

		return obj

	case KindFunction:
		return v.Source()

	default:
		return nil
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func pointer(v Value) *Value { return &v }
