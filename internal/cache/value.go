package cache

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the runtime shape of a decoded Value.
type Kind int

// Value shapes, covering the JSON value domain.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged union over the JSON value domain: null, boolean, number,
// string, sequence, or string-keyed mapping. Extraction code matches on the
// kind and never performs unchecked dynamic casts.
//
// The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	seq  []Value
	m    map[string]Value
}

// NullValue returns the null Value.
func NullValue() Value {
	return Value{kind: KindNull}
}

// BoolValue wraps a boolean.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// NumberValue wraps a number. All numbers are carried as float64, matching
// the wire format.
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// IntValue wraps an integer as a number.
func IntValue(n int64) Value {
	return NumberValue(float64(n))
}

// StringValue wraps a string.
func StringValue(s string) Value {
	return Value{kind: KindString, s: s}
}

// SequenceValue wraps an ordered sequence of values.
func SequenceValue(elems ...Value) Value {
	return Value{kind: KindSequence, seq: elems}
}

// MappingValue wraps a string-keyed mapping.
func MappingValue(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMapping, m: m}
}

// Kind returns the shape tag of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean payload. The second return is false when the
// value is not a boolean.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsNumber returns the numeric payload. The second return is false when the
// value is not a number.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

// AsInt returns the numeric payload as an integer. The second return is
// false when the value is not a number or has a fractional part.
func (v Value) AsInt() (int64, bool) {
	n, ok := v.AsNumber()
	if !ok || n != float64(int64(n)) {
		return 0, false
	}
	return int64(n), true
}

// AsString returns the string payload. The second return is false when the
// value is not a string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsSequence returns the sequence payload. The second return is false when
// the value is not a sequence.
func (v Value) AsSequence() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	return v.seq, true
}

// AsMapping returns the mapping payload. The second return is false when
// the value is not a mapping.
func (v Value) AsMapping() (map[string]Value, bool) {
	if v.kind != KindMapping {
		return nil, false
	}
	return v.m, true
}

// FromAny converts an arbitrary Go value into a Value by round-tripping it
// through the wire format. This is also the encodability check: values the
// wire format cannot represent (channels, functions, cycles, NaN) return an
// error and no Value.
func FromAny(v any) (Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("value not representable: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return Value{}, fmt.Errorf("value not representable: %w", err)
	}
	return fromDecoded(decoded), nil
}

// fromDecoded builds a Value from the generic shapes produced by
// encoding/json (nil, bool, float64, string, []any, map[string]any).
func fromDecoded(v any) Value {
	switch t := v.(type) {
	case nil:
		return NullValue()
	case bool:
		return BoolValue(t)
	case float64:
		return NumberValue(t)
	case string:
		return StringValue(t)
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			elems[i] = fromDecoded(e)
		}
		return SequenceValue(elems...)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = fromDecoded(e)
		}
		return MappingValue(m)
	default:
		// encoding/json never produces other shapes.
		return NullValue()
	}
}

// Interface converts the Value back into the generic Go shapes produced by
// encoding/json. Mapping keys are not ordered.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports structural equality between two values.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindString:
		return v.s == other.s
	case KindSequence:
		if len(v.seq) != len(other.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(other.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.m) != len(other.m) {
			return false
		}
		for k, e := range v.m {
			o, ok := other.m[k]
			if !ok || !e.Equal(o) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.n)
	case KindString:
		return json.Marshal(v.s)
	case KindSequence:
		if v.seq == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.seq)
	case KindMapping:
		// encoding/json sorts map keys, so output is deterministic.
		return json.Marshal(v.m)
	default:
		return nil, fmt.Errorf("cannot marshal %s value", v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*v = fromDecoded(decoded)
	return nil
}
