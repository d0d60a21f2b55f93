package sqltype

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindDecimal
	KindString
	KindBytes
	KindDate
	KindTime
	KindTimestamp
	KindRaw
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindTimestamp:
		return "timestamp"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Value is the canonical tagged value produced by the Type Mapper,
// independent of the source SQL dialect. Ownership is transient: values are
// consumed immediately by record assembly.
type Value struct {
	kind Kind
	val  interface{}
}

// NullValue returns the null value. Null raw column values map here
// unconditionally, regardless of type code.
func NullValue() Value { return Value{kind: KindNull} }

// IntValue wraps a 32-bit integer.
func IntValue(v int32) Value { return Value{kind: KindInt, val: v} }

// LongValue wraps a 64-bit integer.
func LongValue(v int64) Value { return Value{kind: KindLong, val: v} }

// FloatValue wraps a 32-bit float.
func FloatValue(v float32) Value { return Value{kind: KindFloat, val: v} }

// DoubleValue wraps a 64-bit float.
func DoubleValue(v float64) Value { return Value{kind: KindDouble, val: v} }

// DecimalValue wraps an arbitrary-precision decimal with its driver-reported
// scale intact.
func DecimalValue(v decimal.Decimal) Value { return Value{kind: KindDecimal, val: v} }

// StringValue wraps a string.
func StringValue(v string) Value { return Value{kind: KindString, val: v} }

// BytesValue wraps a byte slice.
func BytesValue(v []byte) Value { return Value{kind: KindBytes, val: v} }

// DateValue wraps a calendar date.
func DateValue(v time.Time) Value { return Value{kind: KindDate, val: v} }

// TimeValue wraps a time of day.
func TimeValue(v time.Time) Value { return Value{kind: KindTime, val: v} }

// TimestampValue wraps a point in time.
func TimestampValue(v time.Time) Value { return Value{kind: KindTimestamp, val: v} }

// RawValue wraps a driver value passed through unchanged (identity mapping
// fallback for unrecognized type codes).
func RawValue(v interface{}) Value { return Value{kind: KindRaw, val: v} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Go returns the value as a plain Go value for record assembly. Null yields
// nil; temporal kinds yield time.Time; decimal yields decimal.Decimal.
func (v Value) Go() interface{} { return v.val }

// Int returns the int32 payload of a KindInt value.
func (v Value) Int() (int32, bool) {
	n, ok := v.val.(int32)
	return n, ok && v.kind == KindInt
}

// Long returns the int64 payload of a KindLong value.
func (v Value) Long() (int64, bool) {
	n, ok := v.val.(int64)
	return n, ok && v.kind == KindLong
}

// Decimal returns the decimal payload of a KindDecimal value.
func (v Value) Decimal() (decimal.Decimal, bool) {
	d, ok := v.val.(decimal.Decimal)
	return d, ok && v.kind == KindDecimal
}

// String returns the string payload of a KindString value.
func (v Value) String() (string, bool) {
	s, ok := v.val.(string)
	return s, ok && v.kind == KindString
}

// Bytes returns the byte payload of a KindBytes value.
func (v Value) Bytes() ([]byte, bool) {
	b, ok := v.val.([]byte)
	return b, ok && v.kind == KindBytes
}

// Temporal returns the time payload of a date, time or timestamp value.
func (v Value) Temporal() (time.Time, bool) {
	t, ok := v.val.(time.Time)
	if !ok {
		return time.Time{}, false
	}
	switch v.kind {
	case KindDate, KindTime, KindTimestamp:
		return t, true
	}
	return time.Time{}, false
}
