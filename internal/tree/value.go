package tree

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies which scalar a Value carries.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "null"
	}
}

// Value is a single cell: a string, number, boolean or null.
// The zero Value is null.
type Value struct {
	kind ValueKind
	s    string
	n    float64
	b    bool
}

func Null() Value                 { return Value{} }
func StringValue(s string) Value  { return Value{kind: KindString, s: s} }
func NumberValue(n float64) Value { return Value{kind: KindNumber, n: n} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }

// ValueOf converts an interchange scalar into a Value.
// It reports false for mappings and unsupported types.
func ValueOf(v any) (Value, bool) {
	switch t := v.(type) {
	case nil:
		return Null(), true
	case Value:
		return t, true
	case string:
		return StringValue(t), true
	case bool:
		return BoolValue(t), true
	case float64:
		return NumberValue(t), true
	case float32:
		return NumberValue(float64(t)), true
	case int:
		return NumberValue(float64(t)), true
	case int64:
		return NumberValue(float64(t)), true
	case int32:
		return NumberValue(float64(t)), true
	case uint64:
		return NumberValue(float64(t)), true
	case uint:
		return NumberValue(float64(t)), true
	default:
		return Value{}, false
	}
}

// ParseValue interprets user-entered text: "" and "null" become null,
// "true"/"false" become booleans, finite numeric literals become numbers and
// anything else stays a string.
func ParseValue(text string) Value {
	s := strings.TrimSpace(text)
	switch s {
	case "", "null":
		return Null()
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return NumberValue(n)
	}
	return StringValue(text)
}

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

// Any returns the interchange form of v: nil, string, float64 or bool.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return v.n
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// String returns display text. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// GoString makes test failures readable.
func (v Value) GoString() string {
	if v.kind == KindString {
		return fmt.Sprintf("%q", v.s)
	}
	if v.kind == KindNull {
		return "null"
	}
	return v.String()
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindNumber:
		return v.n == o.n
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}
