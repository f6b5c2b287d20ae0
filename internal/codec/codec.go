// Package codec implements the order-preserving key encoding of §4.1: a
// binary format for arbitrary scalar and composite keys whose
// lexicographic byte order matches the values' semantic order, across
// types. It is consumed by any secondary index that needs ordered
// lookups over composite keys.
//
// Values are modeled as a discriminated Value struct rather than an
// untyped buffer, per the "dynamic-typed keys -> tagged sum" design note:
// every encodable shape gets its own Kind and its own fields, so callers
// pattern-match on Kind instead of re-parsing bytes.
package codec

import (
	"time"

	"github.com/parquedb/parquedb/pkg/errors"
)

// Kind discriminates the scalar and composite shapes the codec encodes.
// Kind values are declared in the cross-type order §4.1 requires:
//
//	null < bool < number < string < date < bytes < array < object
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindDate
	KindBytes
	KindArray
	KindObject
)

// Tag bytes prefix every encoded value. They sit above the reserved
// framing range (separator 0x01, container terminator 0x02) so that no
// valid tag can be confused with composite-key framing bytes.
const (
	tagNull   byte = 0x10
	tagBool   byte = 0x20
	tagNumber byte = 0x30
	tagString byte = 0x40
	tagDate   byte = 0x50
	tagBytes  byte = 0x60
	tagArray  byte = 0x70
	tagObject byte = 0x80
)

// compositeSeparator joins components of a composite key and joins
// consecutive elements/fields inside an array or object. containerEnd
// closes an array or object. Both sit below every tag byte so they can
// never be mistaken for the start of a new value.
const (
	compositeSeparator byte = 0x01
	containerEnd       byte = 0x02
)

// Field is a single (key, value) pair of an object-shaped Value. Fields
// are kept as an ordered slice, not a map, so encoding is deterministic.
type Field struct {
	Key   string
	Value Value
}

// Value is the tagged union the codec encodes and decodes. Only the
// field matching Kind is meaningful; the rest are zero.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	String string
	Date   time.Time
	Bytes  []byte
	Array  []Value
	Object []Field
}

// Null is the shared encoding of the null value.
var Null = Value{Kind: KindNull}

// NewBool constructs a KindBool value.
func NewBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Num constructs a KindNumber value.
func Num(n float64) Value { return Value{Kind: KindNumber, Number: n} }

// Str constructs a KindString value.
func Str(s string) Value { return Value{Kind: KindString, String: s} }

// DateVal constructs a KindDate value.
func DateVal(t time.Time) Value { return Value{Kind: KindDate, Date: t} }

// Blob constructs a KindBytes value.
func Blob(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

// Arr constructs a KindArray value.
func Arr(items ...Value) Value { return Value{Kind: KindArray, Array: items} }

// Obj constructs a KindObject value.
func Obj(fields ...Field) Value { return Value{Kind: KindObject, Object: fields} }

// FromAny coerces a native Go value into a codec Value, following the
// JSON-ish coercion table §4.1 implies: nil/undefined -> null, bool ->
// bool, every numeric kind -> number (widened to float64), string ->
// string, time.Time -> date, []byte -> bytes, []any -> array, and
// map[string]any -> object (object key order is the map's, which Go does
// not define; callers that need deterministic output should build an
// Obj directly with Field entries in the order they want).
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return x, nil
	case bool:
		return NewBool(x), nil
	case int:
		return Num(float64(x)), nil
	case int8:
		return Num(float64(x)), nil
	case int16:
		return Num(float64(x)), nil
	case int32:
		return Num(float64(x)), nil
	case int64:
		return Num(float64(x)), nil
	case uint:
		return Num(float64(x)), nil
	case uint8:
		return Num(float64(x)), nil
	case uint16:
		return Num(float64(x)), nil
	case uint32:
		return Num(float64(x)), nil
	case uint64:
		return Num(float64(x)), nil
	case float32:
		return Num(float64(x)), nil
	case float64:
		return Num(x), nil
	case string:
		return Str(x), nil
	case time.Time:
		return DateVal(x), nil
	case []byte:
		return Blob(x), nil
	case []any:
		items := make([]Value, 0, len(x))
		for _, item := range x {
			val, err := FromAny(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, val)
		}
		return Arr(items...), nil
	case map[string]any:
		fields := make([]Field, 0, len(x))
		for k, fv := range x {
			val, err := FromAny(fv)
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Key: k, Value: val})
		}
		return Obj(fields...), nil
	default:
		return Value{}, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "unsupported value type for key codec",
		).WithField("value").WithRule("supported_type").WithProvided(v)
	}
}
