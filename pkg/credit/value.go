package credit

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind is the type of an attribute value.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	// KindMalformed holds a value that did not match its declared type.
	// Any comparison involving it is an evaluation fault.
	KindMalformed
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Value is an immutable, typed attribute value.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
}

// NumberValue returns a numeric value.
func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// BoolValue returns a boolean value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NullValue returns the null value.
func NullValue() Value { return Value{kind: KindNull} }

// MalformedValue returns a value that failed type checking. The description
// is kept for match details and diagnostics.
func MalformedValue(description string) Value {
	return Value{kind: KindMalformed, str: description}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Number returns the numeric payload and whether v is a number.
func (v Value) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Bool returns the boolean payload and whether v is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// String renders the value for match details.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.str)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindMalformed:
		return "<malformed: " + v.str + ">"
	default:
		return "<unknown>"
	}
}

// Interface returns the value as a plain Go value, suitable for encoding.
// Malformed values are returned as nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// ValueOf converts a decoded JSON or YAML scalar into a Value.
// Unsupported types and non-finite numbers become malformed values.
func ValueOf(x any) Value {
	switch val := x.(type) {
	case nil:
		return NullValue()
	case bool:
		return BoolValue(val)
	case string:
		return StringValue(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return MalformedValue(fmt.Sprintf("invalid number %q", val.String()))
		}
		return finiteNumber(f)
	case float64:
		return finiteNumber(val)
	case float32:
		return finiteNumber(float64(val))
	case int:
		return NumberValue(float64(val))
	case int8:
		return NumberValue(float64(val))
	case int16:
		return NumberValue(float64(val))
	case int32:
		return NumberValue(float64(val))
	case int64:
		return NumberValue(float64(val))
	case uint:
		return NumberValue(float64(val))
	case uint8:
		return NumberValue(float64(val))
	case uint16:
		return NumberValue(float64(val))
	case uint32:
		return NumberValue(float64(val))
	case uint64:
		return NumberValue(float64(val))
	default:
		return MalformedValue(fmt.Sprintf("unsupported type %T", x))
	}
}

func finiteNumber(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return MalformedValue(fmt.Sprintf("non-finite number %v", f))
	}
	return NumberValue(f)
}
