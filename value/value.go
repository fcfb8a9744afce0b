// Package value defines the tagged value variant shared by every column in
// the segment format, along with the physical field types a ColumnSchema can
// declare.
package value

import "fmt"

// FieldType enumerates the physical types a column can hold.
type FieldType uint8

const (
	TypeUnknown FieldType = iota
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeBool
	TypeDecimal
	TypeDate
	TypeDatetime
	TypeBytes
)

func (t FieldType) String() string {
	switch t {
	case TypeInt8:
		return "Int8"
	case TypeInt16:
		return "Int16"
	case TypeInt32:
		return "Int32"
	case TypeInt64:
		return "Int64"
	case TypeUint8:
		return "Uint8"
	case TypeUint16:
		return "Uint16"
	case TypeUint32:
		return "Uint32"
	case TypeUint64:
		return "Uint64"
	case TypeFloat32:
		return "Float32"
	case TypeFloat64:
		return "Float64"
	case TypeBool:
		return "Bool"
	case TypeDecimal:
		return "Decimal"
	case TypeDate:
		return "Date"
	case TypeDatetime:
		return "Datetime"
	case TypeBytes:
		return "Bytes"
	default:
		return "Unknown"
	}
}

// IsFixedWidth reports whether values of this type have a constant
// in-memory/on-wire width (as opposed to Bytes, which is variable-length).
func (t FieldType) IsFixedWidth() bool {
	return t != TypeBytes && t != TypeUnknown
}

// IsInteger reports whether the type is one of the signed/unsigned integer
// kinds (decimal and date/datetime are backed by an integer but are
// semantically distinct, so they are excluded).
func (t FieldType) IsInteger() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return true
	default:
		return false
	}
}

// Width returns the fixed byte width of the type, or 0 for Bytes.
func (t FieldType) Width() int {
	switch t {
	case TypeInt8, TypeUint8, TypeBool:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32, TypeFloat32, TypeDate:
		return 4
	case TypeInt64, TypeUint64, TypeFloat64, TypeDecimal, TypeDatetime:
		return 8
	default:
		return 0
	}
}

// Value is a tagged variant over every physical type a column may hold.
// The zero Value has TypeUnknown and is not Null; Null() returns the null
// variant.
type Value struct {
	typ   FieldType
	null  bool
	i     int64
	u     uint64
	f     float64
	bytes []byte
}

// Null returns the null variant.
func Null() Value { return Value{null: true} }

func Int8(v int8) Value     { return Value{typ: TypeInt8, i: int64(v)} }
func Int16(v int16) Value   { return Value{typ: TypeInt16, i: int64(v)} }
func Int32(v int32) Value   { return Value{typ: TypeInt32, i: int64(v)} }
func Int64(v int64) Value   { return Value{typ: TypeInt64, i: v} }
func Uint8(v uint8) Value   { return Value{typ: TypeUint8, u: uint64(v)} }
func Uint16(v uint16) Value { return Value{typ: TypeUint16, u: uint64(v)} }
func Uint32(v uint32) Value { return Value{typ: TypeUint32, u: uint64(v)} }
func Uint64(v uint64) Value { return Value{typ: TypeUint64, u: v} }
func Float32(v float32) Value {
	return Value{typ: TypeFloat32, f: float64(v)}
}
func Float64(v float64) Value { return Value{typ: TypeFloat64, f: v} }
func Bool(v bool) Value {
	if v {
		return Value{typ: TypeBool, u: 1}
	}
	return Value{typ: TypeBool, u: 0}
}

// Decimal stores a fixed-point decimal as its raw scaled integer
// representation; scale is carried by the column schema, not the value.
func Decimal(raw int64) Value { return Value{typ: TypeDecimal, i: raw} }

// Date is the number of days since the Unix epoch.
func Date(days int32) Value { return Value{typ: TypeDate, i: int64(days)} }

// Datetime is the number of microseconds since the Unix epoch.
func Datetime(micros int64) Value { return Value{typ: TypeDatetime, i: micros} }

// Bytes holds variable-length bytes, interpretable as a UTF-8 string.
func Bytes(b []byte) Value { return Value{typ: TypeBytes, bytes: b} }

// String is a convenience constructor over Bytes.
func String(s string) Value { return Value{typ: TypeBytes, bytes: []byte(s)} }

func (v Value) Type() FieldType { return v.typ }
func (v Value) IsNull() bool    { return v.null }

func (v Value) AsInt64() int64    { return v.i }
func (v Value) AsUint64() uint64  { return v.u }
func (v Value) AsFloat64() float64 {
	if v.typ == TypeFloat32 {
		return v.f
	}
	return v.f
}
func (v Value) AsBool() bool     { return v.u != 0 }
func (v Value) AsBytes() []byte  { return v.bytes }
func (v Value) AsString() string { return string(v.bytes) }

// Compare orders two Values of the same type, returning -1, 0 or 1: floats
// by value, Bytes lexicographically, unsigned kinds and Bool (false < true)
// by their uint64 and every other kind by its int64 representation. Values
// of different types panic. Null values must never reach Compare; callers in
// the key/zone-map path are responsible for excluding nulls, per spec.
func (v Value) Compare(other Value) int {
	if v.typ != other.typ {
		panic(fmt.Sprintf("value: cannot compare %s with %s", v.typ, other.typ))
	}

	switch v.typ {
	case TypeFloat32, TypeFloat64:
		switch {
		case v.f < other.f:
			return -1
		case v.f > other.f:
			return 1
		default:
			return 0
		}
	case TypeBytes:
		return compareBytes(v.bytes, other.bytes)
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64, TypeBool:
		switch {
		case v.u < other.u:
			return -1
		case v.u > other.u:
			return 1
		default:
			return 0
		}
	default:
		switch {
		case v.i < other.i:
			return -1
		case v.i > other.i:
			return 1
		default:
			return 0
		}
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
