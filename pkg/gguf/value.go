package gguf

import (
	"fmt"
	"iter"
	"math"
	"strings"
)

// ValueKind is the type tag of a metadata value.
type ValueKind uint32

const (
	KindUint8   ValueKind = 0
	KindInt8    ValueKind = 1
	KindUint16  ValueKind = 2
	KindInt16   ValueKind = 3
	KindUint32  ValueKind = 4
	KindInt32   ValueKind = 5
	KindFloat32 ValueKind = 6
	KindBool    ValueKind = 7
	KindString  ValueKind = 8
	KindArray   ValueKind = 9
	KindUint64  ValueKind = 10
	KindInt64   ValueKind = 11
	KindFloat64 ValueKind = 12
)

func (k ValueKind) String() string {
	switch k {
	case KindUint8:
		return "u8"
	case KindInt8:
		return "i8"
	case KindUint16:
		return "u16"
	case KindInt16:
		return "i16"
	case KindUint32:
		return "u32"
	case KindInt32:
		return "i32"
	case KindUint64:
		return "u64"
	case KindInt64:
		return "i64"
	case KindFloat32:
		return "f32"
	case KindFloat64:
		return "f64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

func (k ValueKind) Valid() bool {
	return k <= KindFloat64
}

// FixedWidth is the encoded size of a scalar kind, or 0 for strings, arrays
// and unknown kinds.
func (k ValueKind) FixedWidth() int {
	switch k {
	case KindUint8, KindInt8, KindBool:
		return 1
	case KindUint16, KindInt16:
		return 2
	case KindUint32, KindInt32, KindFloat32:
		return 4
	case KindUint64, KindInt64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// Value is one decoded metadata value. Scalars keep their raw little-endian
// bits; the accessor matching Kind reinterprets them.
//
// Arrays of fixed-width elements keep their little-endian encoding in str and
// decode an element on each access, so they cost one byte per encoded byte.
// String arrays hold a []string and nested arrays a []Value in list.
type Value struct {
	kind ValueKind
	elem ValueKind
	bits uint64
	str  string
	list any
}

func Uint8Value(v uint8) Value     { return Value{kind: KindUint8, bits: uint64(v)} }
func Int8Value(v int8) Value       { return Value{kind: KindInt8, bits: uint64(uint8(v))} }
func Uint16Value(v uint16) Value   { return Value{kind: KindUint16, bits: uint64(v)} }
func Int16Value(v int16) Value     { return Value{kind: KindInt16, bits: uint64(uint16(v))} }
func Uint32Value(v uint32) Value   { return Value{kind: KindUint32, bits: uint64(v)} }
func Int32Value(v int32) Value     { return Value{kind: KindInt32, bits: uint64(uint32(v))} }
func Uint64Value(v uint64) Value   { return Value{kind: KindUint64, bits: v} }
func Int64Value(v int64) Value     { return Value{kind: KindInt64, bits: uint64(v)} }
func Float32Value(v float32) Value { return Value{kind: KindFloat32, bits: uint64(math.Float32bits(v))} }
func Float64Value(v float64) Value { return Value{kind: KindFloat64, bits: math.Float64bits(v)} }
func StringValue(s string) Value   { return Value{kind: KindString, str: s} }

func BoolValue(b bool) Value {
	if b {
		return Value{kind: KindBool, bits: 1}
	}
	return Value{kind: KindBool}
}

// ArrayValue builds an array of elem-kind values. Elements are stored as
// elem without checking their own kind.
func ArrayValue(elem ValueKind, values ...Value) Value {
	out := Value{kind: KindArray, elem: elem}
	switch w := elem.FixedWidth(); {
	case w > 0:
		raw := make([]byte, 0, w*len(values))
		for _, e := range values {
			for i := range w {
				raw = append(raw, byte(e.bits>>(8*i)))
			}
		}
		out.str = string(raw)
	case elem == KindString:
		strs := make([]string, len(values))
		for i, e := range values {
			strs[i] = e.str
		}
		out.list = strs
	default:
		out.list = values
	}
	return out
}

// fixedArray wraps raw little-endian elements read straight from the input.
func fixedArray(elem ValueKind, raw []byte) Value {
	return Value{kind: KindArray, elem: elem, str: string(raw)}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) Uint8() (uint8, bool)   { return uint8(v.bits), v.kind == KindUint8 }
func (v Value) Int8() (int8, bool)     { return int8(v.bits), v.kind == KindInt8 }
func (v Value) Uint16() (uint16, bool) { return uint16(v.bits), v.kind == KindUint16 }
func (v Value) Int16() (int16, bool)   { return int16(v.bits), v.kind == KindInt16 }
func (v Value) Uint32() (uint32, bool) { return uint32(v.bits), v.kind == KindUint32 }
func (v Value) Int32() (int32, bool)   { return int32(v.bits), v.kind == KindInt32 }
func (v Value) Uint64() (uint64, bool) { return v.bits, v.kind == KindUint64 }
func (v Value) Int64() (int64, bool)   { return int64(v.bits), v.kind == KindInt64 }
func (v Value) Bool() (bool, bool)     { return v.bits != 0, v.kind == KindBool }
func (v Value) Str() (string, bool)    { return v.str, v.kind == KindString }

func (v Value) Float32() (float32, bool) {
	return math.Float32frombits(uint32(v.bits)), v.kind == KindFloat32
}

func (v Value) Float64() (float64, bool) {
	return math.Float64frombits(v.bits), v.kind == KindFloat64
}

// Array returns the element kind and elements of an array value. Elements
// of fixed-width arrays are materialized on every call; use Len and Index
// to walk large arrays.
func (v Value) Array() (ValueKind, []Value, bool) {
	if v.kind != KindArray {
		return 0, nil, false
	}
	if l, ok := v.list.([]Value); ok {
		return v.elem, l, true
	}
	out := make([]Value, v.Len())
	for i := range out {
		out[i], _ = v.Index(i)
	}
	return v.elem, out, true
}

// Elem is the element kind of an array value.
func (v Value) Elem() (ValueKind, bool) {
	return v.elem, v.kind == KindArray
}

// Index returns element i of an array value.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= v.Len() {
		return Value{}, false
	}
	if w := v.elem.FixedWidth(); w > 0 {
		var bits uint64
		for j := w - 1; j >= 0; j-- {
			bits = bits<<8 | uint64(v.str[i*w+j])
		}
		return Value{kind: v.elem, bits: bits}, true
	}
	switch l := v.list.(type) {
	case []string:
		return StringValue(l[i]), true
	case []Value:
		return l[i], true
	}
	return Value{}, false
}

// All iterates over the elements of an array value.
func (v Value) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		n := v.Len()
		if v.kind != KindArray {
			n = 0
		}
		for i := range n {
			e, _ := v.Index(i)
			if !yield(i, e) {
				return
			}
		}
	}
}

// Len is the element count of an array, the byte length of a string and 0
// otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		if w := v.elem.FixedWidth(); w > 0 {
			return len(v.str) / w
		}
		switch l := v.list.(type) {
		case []string:
			return len(l)
		case []Value:
			return len(l)
		}
		return 0
	case KindString:
		return len(v.str)
	default:
		return 0
	}
}

// AsUint64 widens any unsigned kind, or a non-negative signed kind.
func (v Value) AsUint64() (uint64, bool) {
	switch v.kind {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return v.bits, true
	case KindInt8, KindInt16, KindInt32, KindInt64:
		n, _ := v.AsInt64()
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}

// AsInt64 widens any signed kind, or an unsigned kind that fits in int64.
func (v Value) AsInt64() (int64, bool) {
	switch v.kind {
	case KindInt8:
		return int64(int8(v.bits)), true
	case KindInt16:
		return int64(int16(v.bits)), true
	case KindInt32:
		return int64(int32(v.bits)), true
	case KindInt64:
		return int64(v.bits), true
	case KindUint8, KindUint16, KindUint32, KindUint64:
		if v.bits > math.MaxInt64 {
			return 0, false
		}
		return int64(v.bits), true
	default:
		return 0, false
	}
}

func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindFloat32:
		f, _ := v.Float32()
		return float64(f), true
	case KindFloat64:
		return v.Float64()
	default:
		return 0, false
	}
}

// Interface returns the payload as a native Go value: the sized integer or
// float type, bool, string, or []any for arrays.
func (v Value) Interface() any {
	switch v.kind {
	case KindUint8:
		return uint8(v.bits)
	case KindInt8:
		return int8(v.bits)
	case KindUint16:
		return uint16(v.bits)
	case KindInt16:
		return int16(v.bits)
	case KindUint32:
		return uint32(v.bits)
	case KindInt32:
		return int32(v.bits)
	case KindUint64:
		return v.bits
	case KindInt64:
		return int64(v.bits)
	case KindFloat32:
		return math.Float32frombits(uint32(v.bits))
	case KindFloat64:
		return math.Float64frombits(v.bits)
	case KindBool:
		return v.bits != 0
	case KindString:
		return v.str
	case KindArray:
		out := make([]any, v.Len())
		for i, e := range v.All() {
			out[i] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindArray:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range v.All() {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(e.String())
		}
		b.WriteByte(']')
		return b.String()
	default:
		return fmt.Sprint(v.Interface())
	}
}
