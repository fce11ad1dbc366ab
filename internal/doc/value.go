package doc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"
	"unicode/utf16"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// Value is a sealed interface representing document values.
// Only the types in this file implement it.
type Value interface {
	docValue() // Sealed - only these types implement it
}

// Null represents a JSON null value.
// Using an explicit type keeps every Value non-nil.
type Null struct{}

func (Null) docValue() {}

// String represents a string value.
type String string

func (String) docValue() {}

// Int represents an integer value. Always int64.
type Int int64

func (Int) docValue() {}

// Float represents a double precision value.
type Float float64

func (Float) docValue() {}

// Decimal represents an exact decimal value (BSON decimal128 on the wire).
type Decimal struct {
	apd.Decimal
}

func (Decimal) docValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) docValue() {}

// Time represents a point in time. Stored in UTC.
type Time time.Time

func (Time) docValue() {}

// UUID represents a GUID value.
type UUID uuid.UUID

func (UUID) docValue() {}

// Regex represents a regular expression match value.
// Options follow MongoDB conventions ("i" = case-insensitive).
type Regex struct {
	Pattern string
	Options string
}

func (Regex) docValue() {}

// Array represents an ordered list of values.
type Array []Value

func (Array) docValue() {}

// Object represents a map of string keys to values.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) docValue() {}

// NewDecimal parses s as an exact decimal.
func NewDecimal(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{Decimal: *d}, nil
}

// NewTime creates a Time value normalized to UTC.
func NewTime(t time.Time) Time {
	return Time(t.UTC())
}

// CaseInsensitive creates a Regex with the "i" option.
func CaseInsensitive(pattern string) Regex {
	return Regex{Pattern: pattern, Options: "i"}
}

// Len returns the number of keys; a nil Object has length zero.
func (obj Object) Len() int {
	return len(obj)
}

// Merge copies every key of other into obj, overwriting existing keys.
func (obj Object) Merge(other Object) {
	for k, v := range other {
		obj[k] = v
	}
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// CRITICAL: Go's sort.Strings uses UTF-8 which produces DIFFERENT order.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// Text returns the textual form of the value, used when a literal has to
// become part of a regular expression pattern.
func Text(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return ""
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Decimal:
		return val.Decimal.String()
	case Bool:
		return strconv.FormatBool(bool(val))
	case Time:
		return time.Time(val).Format(time.RFC3339Nano)
	case UUID:
		return uuid.UUID(val).String()
	case Regex:
		return val.Pattern
	default:
		data, err := MarshalValue(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// extended rewrites values that have no native JSON form into their
// Extended JSON v2 wrapper objects. Native values are returned unchanged.
func extended(v Value) Value {
	switch val := v.(type) {
	case Float:
		f := float64(val)
		switch {
		case math.IsNaN(f):
			return Object{"$numberDouble": String("NaN")}
		case math.IsInf(f, 1):
			return Object{"$numberDouble": String("Infinity")}
		case math.IsInf(f, -1):
			return Object{"$numberDouble": String("-Infinity")}
		}
		return val
	case Decimal:
		return Object{"$numberDecimal": String(val.Decimal.String())}
	case Time:
		return Object{"$date": String(time.Time(val).UTC().Format(time.RFC3339Nano))}
	case UUID:
		return Object{"$uuid": String(uuid.UUID(val).String())}
	case Regex:
		return Object{"$regularExpression": Object{
			"pattern": String(val.Pattern),
			"options": String(val.Options),
		}}
	default:
		return v
	}
}

// MarshalJSON implements json.Marshaler for Object with sorted keys (RFC 8785 ordering).
// NOTE: This is NOT canonical marshaling. Use MarshalCanonical for hashing.
func (obj Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Array.
func (arr Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := MarshalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Regex.
func (r Regex) MarshalJSON() ([]byte, error) { return MarshalValue(r) }

// MarshalJSON implements json.Marshaler for Time.
func (t Time) MarshalJSON() ([]byte, error) { return MarshalValue(t) }

// MarshalJSON implements json.Marshaler for UUID.
func (u UUID) MarshalJSON() ([]byte, error) { return MarshalValue(u) }

// MarshalJSON implements json.Marshaler for Decimal.
func (d Decimal) MarshalJSON() ([]byte, error) { return MarshalValue(d) }

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalValue marshals a Value to Extended JSON (relaxed) bytes.
// Uses type-switch dispatch to handle all Value types.
func MarshalValue(v Value) ([]byte, error) {
	switch val := extended(v).(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Float:
		return json.Marshal(float64(val))
	case Bool:
		return json.Marshal(bool(val))
	case Array:
		return val.MarshalJSON()
	case Object:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// FromAny converts a decoded JSON or YAML value into a Value.
// Whole numbers become Int, other numbers Float. Maps with non-string keys
// (as produced by some YAML decoders) are rejected.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("number out of int64 range: %d", val)
		}
		return Int(val), nil
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return Int(int64(val)), nil
		}
		return Float(val), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return Float(f), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			e, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			e, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = e
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}
