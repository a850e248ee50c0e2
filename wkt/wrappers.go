// Package wkt implements the well-known google.protobuf message types that
// wrap a single value: the nine wrapper types, Any, Timestamp, Duration and
// Empty.
package wkt

import "github.com/anirudhraja/protocodec/wire"

const googlePackage = "google.protobuf"

// NamedMessage is a message that knows its fully qualified type name.
type NamedMessage interface {
	wire.Message
	FullName() string
}

// Every wrapper stores its value as field 1 and omits it when it holds the
// default, so a wrapper around a zero value encodes to nothing.

func encodeValue[T any](c wire.FieldCodec[T], v T, e *wire.Encoder) {
	if !c.IsDefault(v) {
		c.Encode(1, v, e)
	}
}

func encodedLenValue[T any](c wire.FieldCodec[T], v T) int {
	if c.IsDefault(v) {
		return 0
	}
	return c.EncodedLen(1, v)
}

func mergeValue[T any](name string, c wire.FieldCodec[T], dst *T, num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	if num == 1 {
		return wire.WrapField(c.Merge(wt, dst, d, ctx), name, "value")
	}
	return wire.SkipField(num, wt, d, ctx)
}

// DoubleValue wraps a double.
type DoubleValue struct{ Value float64 }

func (*DoubleValue) FullName() string            { return googlePackage + ".DoubleValue" }
func (m *DoubleValue) EncodeRaw(e *wire.Encoder) { encodeValue(wire.Double, m.Value, e) }
func (m *DoubleValue) EncodedLen() int           { return encodedLenValue(wire.Double, m.Value) }
func (m *DoubleValue) Reset()                    { *m = DoubleValue{} }
func (m *DoubleValue) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	return mergeValue(m.FullName(), wire.Double, &m.Value, num, wt, d, ctx)
}

// FloatValue wraps a float.
type FloatValue struct{ Value float32 }

func (*FloatValue) FullName() string            { return googlePackage + ".FloatValue" }
func (m *FloatValue) EncodeRaw(e *wire.Encoder) { encodeValue(wire.Float, m.Value, e) }
func (m *FloatValue) EncodedLen() int           { return encodedLenValue(wire.Float, m.Value) }
func (m *FloatValue) Reset()                    { *m = FloatValue{} }
func (m *FloatValue) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	return mergeValue(m.FullName(), wire.Float, &m.Value, num, wt, d, ctx)
}

// Int64Value wraps an int64.
type Int64Value struct{ Value int64 }

func (*Int64Value) FullName() string            { return googlePackage + ".Int64Value" }
func (m *Int64Value) EncodeRaw(e *wire.Encoder) { encodeValue(wire.Int64, m.Value, e) }
func (m *Int64Value) EncodedLen() int           { return encodedLenValue(wire.Int64, m.Value) }
func (m *Int64Value) Reset()                    { *m = Int64Value{} }
func (m *Int64Value) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	return mergeValue(m.FullName(), wire.Int64, &m.Value, num, wt, d, ctx)
}

// UInt64Value wraps a uint64.
type UInt64Value struct{ Value uint64 }

func (*UInt64Value) FullName() string            { return googlePackage + ".UInt64Value" }
func (m *UInt64Value) EncodeRaw(e *wire.Encoder) { encodeValue(wire.Uint64, m.Value, e) }
func (m *UInt64Value) EncodedLen() int           { return encodedLenValue(wire.Uint64, m.Value) }
func (m *UInt64Value) Reset()                    { *m = UInt64Value{} }
func (m *UInt64Value) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	return mergeValue(m.FullName(), wire.Uint64, &m.Value, num, wt, d, ctx)
}

// Int32Value wraps an int32.
type Int32Value struct{ Value int32 }

func (*Int32Value) FullName() string            { return googlePackage + ".Int32Value" }
func (m *Int32Value) EncodeRaw(e *wire.Encoder) { encodeValue(wire.Int32, m.Value, e) }
func (m *Int32Value) EncodedLen() int           { return encodedLenValue(wire.Int32, m.Value) }
func (m *Int32Value) Reset()                    { *m = Int32Value{} }
func (m *Int32Value) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	return mergeValue(m.FullName(), wire.Int32, &m.Value, num, wt, d, ctx)
}

// UInt32Value wraps a uint32.
type UInt32Value struct{ Value uint32 }

func (*UInt32Value) FullName() string            { return googlePackage + ".UInt32Value" }
func (m *UInt32Value) EncodeRaw(e *wire.Encoder) { encodeValue(wire.Uint32, m.Value, e) }
func (m *UInt32Value) EncodedLen() int           { return encodedLenValue(wire.Uint32, m.Value) }
func (m *UInt32Value) Reset()                    { *m = UInt32Value{} }
func (m *UInt32Value) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	return mergeValue(m.FullName(), wire.Uint32, &m.Value, num, wt, d, ctx)
}

// BoolValue wraps a bool.
type BoolValue struct{ Value bool }

func (*BoolValue) FullName() string            { return googlePackage + ".BoolValue" }
func (m *BoolValue) EncodeRaw(e *wire.Encoder) { encodeValue(wire.Bool, m.Value, e) }
func (m *BoolValue) EncodedLen() int           { return encodedLenValue(wire.Bool, m.Value) }
func (m *BoolValue) Reset()                    { *m = BoolValue{} }
func (m *BoolValue) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	return mergeValue(m.FullName(), wire.Bool, &m.Value, num, wt, d, ctx)
}

// StringValue wraps a string.
type StringValue struct{ Value string }

func (*StringValue) FullName() string            { return googlePackage + ".StringValue" }
func (m *StringValue) EncodeRaw(e *wire.Encoder) { encodeValue[string](wire.String, m.Value, e) }
func (m *StringValue) EncodedLen() int           { return encodedLenValue[string](wire.String, m.Value) }
func (m *StringValue) Reset()                    { *m = StringValue{} }
func (m *StringValue) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	return mergeValue[string](m.FullName(), wire.String, &m.Value, num, wt, d, ctx)
}

// BytesValue wraps a byte string.
type BytesValue struct{ Value []byte }

func (*BytesValue) FullName() string            { return googlePackage + ".BytesValue" }
func (m *BytesValue) EncodeRaw(e *wire.Encoder) { encodeValue[[]byte](wire.Bytes, m.Value, e) }
func (m *BytesValue) EncodedLen() int           { return encodedLenValue[[]byte](wire.Bytes, m.Value) }
func (m *BytesValue) Reset()                    { *m = BytesValue{} }
func (m *BytesValue) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	return mergeValue[[]byte](m.FullName(), wire.Bytes, &m.Value, num, wt, d, ctx)
}
