package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind tags the dynamic type of a parameter value.
type ValueKind int

const (
	KindNumber ValueKind = iota
	KindString
	KindBool
)

// Value is a loosely-typed component parameter. Generator output mixes
// numbers, strings and booleans freely, so the value keeps its original kind
// and renders back out byte-identically.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	b    bool
}

// Num creates a numeric Value.
func Num(f float64) Value { return Value{kind: KindNumber, num: f} }

// Str creates a string Value.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Bool creates a boolean Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Kind returns the value's dynamic kind.
func (v Value) Kind() ValueKind { return v.kind }

// Float returns the numeric value and whether the kind is numeric.
func (v Value) Float() (float64, bool) { return v.num, v.kind == KindNumber }

// String renders the value for diagnostics and canonical text.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.str
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.num == o.num && v.str == o.str && v.b == o.b
}

// MarshalJSON renders the value in its original JSON shape.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.str)
	}
}

// UnmarshalJSON accepts a JSON number, string or boolean.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch tv := raw.(type) {
	case float64:
		*v = Num(tv)
	case string:
		*v = Str(tv)
	case bool:
		*v = Bool(tv)
	default:
		return fmt.Errorf("schema: parameter value must be number, string or bool, got %T", raw)
	}
	return nil
}
