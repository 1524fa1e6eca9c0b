package tsp

import (
	"fmt"
	"strconv"
)

// ValueKind identifies the decoded type of an instrument reply.
type ValueKind int

const (
	// KindFloat is a numeric reply.
	KindFloat ValueKind = iota
	// KindBool is a literal true/false reply.
	KindBool
	// KindNil is a literal nil reply.
	KindNil
	// KindString is any reply that did not decode as one of the above.
	KindString
)

// String returns the string representation of the value kind.
func (k ValueKind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindNil:
		return "nil"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a decoded instrument reply. It is a tagged union over the fixed
// reply vocabulary of the TSP print protocol: a number, the literals true,
// false and nil, or an opaque string.
type Value struct {
	kind ValueKind
	f    float64
	b    bool
	s    string
}

// FloatValue returns a Value holding the given number.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// BoolValue returns a Value holding the given boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NilValue returns the absent Value.
func NilValue() Value { return Value{kind: KindNil} }

// StringValue returns a Value holding the given raw text.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// Decode parses a single reply line into a Value. The rules are applied in
// order: numeric parse, the literal "nil", the literals "true" and "false",
// and finally raw-text passthrough. Matching is exact on the literal tokens;
// the remote vocabulary is fixed and case-sensitive. Decode never fails, raw
// text is always a safe fallback.
func Decode(raw string) Value {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return FloatValue(f)
	}
	switch raw {
	case "nil":
		return NilValue()
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}

	return StringValue(raw)
}

// Kind returns the decoded kind of the value.
func (v Value) Kind() ValueKind { return v.kind }

// Float64 returns the numeric value, or 0 if the value is not numeric.
func (v Value) Float64() float64 { return v.f }

// Bool returns the boolean value, or false if the value is not a boolean.
func (v Value) Bool() bool { return v.b }

// IsNil reports whether the reply was the literal nil.
func (v Value) IsNil() bool { return v.kind == KindNil }

// String returns the textual form of the value as it would appear on the
// wire.
func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNil:
		return "nil"
	default:
		return v.s
	}
}

// encodeArg lowers a Go value to its wire form. Booleans become the literal
// tokens true/false, numbers use their natural textual representation, and
// strings pass through unquoted so that remote identifiers (buffer names,
// event IDs) can be given as plain strings.
func encodeArg(arg any) string {
	switch v := arg.(type) {
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case Value:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
