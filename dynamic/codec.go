package dynamic

import (
	"bytes"
	"fmt"

	"github.com/anirudhraja/protocodec/schema"
	"github.com/anirudhraja/protocodec/wire"
)

// valueCodec encodes one dynamically typed value. It satisfies
// wire.KeyCodec so the same codecs drive map keys and map values through
// wire.Map, and adds the repeated forms a field needs.
type valueCodec interface {
	wire.KeyCodec[any]
	Default() any
	mergeRepeated(wt wire.WireType, dst *[]any, d *wire.Decoder, ctx wire.DecodeContext) error
	encodeRepeated(num wire.FieldNumber, vs []any, packed bool, e *wire.Encoder)
	encodedLenRepeated(num wire.FieldNumber, vs []any, packed bool) int
}

var primitiveCodecs = map[schema.PrimitiveType]valueCodec{
	schema.TypeDouble:   scalarValue[float64]{wire.Double},
	schema.TypeFloat:    scalarValue[float32]{wire.Float},
	schema.TypeInt64:    scalarValue[int64]{wire.Int64},
	schema.TypeUint64:   scalarValue[uint64]{wire.Uint64},
	schema.TypeInt32:    scalarValue[int32]{wire.Int32},
	schema.TypeFixed64:  scalarValue[uint64]{wire.Fixed64},
	schema.TypeFixed32:  scalarValue[uint32]{wire.Fixed32},
	schema.TypeBool:     scalarValue[bool]{wire.Bool},
	schema.TypeString:   stringValue{},
	schema.TypeBytes:    bytesValue{},
	schema.TypeUint32:   scalarValue[uint32]{wire.Uint32},
	schema.TypeSfixed32: scalarValue[int32]{wire.Sfixed32},
	schema.TypeSfixed64: scalarValue[int64]{wire.Sfixed64},
	schema.TypeSint32:   scalarValue[int32]{wire.Sint32},
	schema.TypeSint64:   scalarValue[int64]{wire.Sint64},
}

var enumCodec valueCodec = scalarValue[int32]{wire.Enum}

func primitiveCodec(p schema.PrimitiveType) (valueCodec, error) {
	c, ok := primitiveCodecs[p]
	if !ok {
		return nil, fmt.Errorf("unknown primitive type %q", p)
	}
	return c, nil
}

type scalarValue[T comparable] struct {
	c *wire.Scalar[T]
}

func (s scalarValue[T]) Default() any {
	var zero T
	return zero
}

func (s scalarValue[T]) IsDefault(v any) bool { return s.c.IsDefault(v.(T)) }
func (s scalarValue[T]) Less(a, b any) bool   { return s.c.Less(a.(T), b.(T)) }

func (s scalarValue[T]) Encode(num wire.FieldNumber, v any, e *wire.Encoder) {
	s.c.Encode(num, v.(T), e)
}

func (s scalarValue[T]) EncodedLen(num wire.FieldNumber, v any) int {
	return s.c.EncodedLen(num, v.(T))
}

func (s scalarValue[T]) Merge(wt wire.WireType, dst *any, d *wire.Decoder, ctx wire.DecodeContext) error {
	t, _ := (*dst).(T)
	if err := s.c.Merge(wt, &t, d, ctx); err != nil {
		return err
	}
	*dst = t
	return nil
}

func (s scalarValue[T]) mergeRepeated(wt wire.WireType, dst *[]any, d *wire.Decoder, ctx wire.DecodeContext) error {
	var ts []T
	err := s.c.MergeRepeated(wt, &ts, d, ctx)
	for _, t := range ts {
		*dst = append(*dst, t)
	}
	return err
}

func (s scalarValue[T]) encodeRepeated(num wire.FieldNumber, vs []any, packed bool, e *wire.Encoder) {
	if packed {
		s.c.EncodePacked(num, typed[T](vs), e)
		return
	}
	s.c.EncodeRepeated(num, typed[T](vs), e)
}

func (s scalarValue[T]) encodedLenRepeated(num wire.FieldNumber, vs []any, packed bool) int {
	if packed {
		return s.c.EncodedLenPacked(num, typed[T](vs))
	}
	return s.c.EncodedLenRepeated(num, typed[T](vs))
}

func typed[T any](vs []any) []T {
	ts := make([]T, len(vs))
	for i, v := range vs {
		ts[i] = v.(T)
	}
	return ts
}

type stringValue struct{}

func (stringValue) Default() any         { return "" }
func (stringValue) IsDefault(v any) bool { return wire.String.IsDefault(v.(string)) }
func (stringValue) Less(a, b any) bool   { return a.(string) < b.(string) }

func (stringValue) Encode(num wire.FieldNumber, v any, e *wire.Encoder) {
	wire.String.Encode(num, v.(string), e)
}

func (stringValue) EncodedLen(num wire.FieldNumber, v any) int {
	return wire.String.EncodedLen(num, v.(string))
}

// Merge mirrors wire.String: a value that fails validation leaves "".
func (stringValue) Merge(wt wire.WireType, dst *any, d *wire.Decoder, ctx wire.DecodeContext) error {
	var s string
	err := wire.String.Merge(wt, &s, d, ctx)
	*dst = s
	return err
}

func (c stringValue) mergeRepeated(wt wire.WireType, dst *[]any, d *wire.Decoder, ctx wire.DecodeContext) error {
	var s string
	if err := wire.String.Merge(wt, &s, d, ctx); err != nil {
		return err
	}
	*dst = append(*dst, s)
	return nil
}

func (stringValue) encodeRepeated(num wire.FieldNumber, vs []any, _ bool, e *wire.Encoder) {
	wire.String.EncodeRepeated(num, typed[string](vs), e)
}

func (stringValue) encodedLenRepeated(num wire.FieldNumber, vs []any, _ bool) int {
	return wire.String.EncodedLenRepeated(num, typed[string](vs))
}

type bytesValue struct{}

func (bytesValue) Default() any         { return []byte(nil) }
func (bytesValue) IsDefault(v any) bool { return wire.Bytes.IsDefault(v.([]byte)) }
func (bytesValue) Less(a, b any) bool   { return bytes.Compare(a.([]byte), b.([]byte)) < 0 }

func (bytesValue) Encode(num wire.FieldNumber, v any, e *wire.Encoder) {
	wire.Bytes.Encode(num, v.([]byte), e)
}

func (bytesValue) EncodedLen(num wire.FieldNumber, v any) int {
	return wire.Bytes.EncodedLen(num, v.([]byte))
}

func (bytesValue) Merge(wt wire.WireType, dst *any, d *wire.Decoder, ctx wire.DecodeContext) error {
	var b []byte
	if err := wire.Bytes.Merge(wt, &b, d, ctx); err != nil {
		return err
	}
	*dst = b
	return nil
}

func (bytesValue) mergeRepeated(wt wire.WireType, dst *[]any, d *wire.Decoder, ctx wire.DecodeContext) error {
	var b []byte
	if err := wire.Bytes.Merge(wt, &b, d, ctx); err != nil {
		return err
	}
	*dst = append(*dst, b)
	return nil
}

func (bytesValue) encodeRepeated(num wire.FieldNumber, vs []any, _ bool, e *wire.Encoder) {
	wire.Bytes.EncodeRepeated(num, typed[[]byte](vs), e)
}

func (bytesValue) encodedLenRepeated(num wire.FieldNumber, vs []any, _ bool) int {
	return wire.Bytes.EncodedLenRepeated(num, typed[[]byte](vs))
}

// messageValue holds embedded messages. Values are wire.Message so that
// registered Go types and dynamic messages can be mixed freely.
type messageValue struct {
	newFn func() wire.Message
}

func (c messageValue) Default() any     { return c.newFn() }
func (messageValue) Less(a, b any) bool { return false }

func (messageValue) IsDefault(v any) bool {
	m, _ := v.(wire.Message)
	return m == nil || m.EncodedLen() == 0
}

func (c messageValue) message(v any) wire.Message {
	if m, ok := v.(wire.Message); ok && m != nil {
		return m
	}
	return c.newFn()
}

func (c messageValue) Encode(num wire.FieldNumber, v any, e *wire.Encoder) {
	wire.EncodeMessage(num, c.message(v), e)
}

func (c messageValue) EncodedLen(num wire.FieldNumber, v any) int {
	return wire.EncodedLenMessage(num, c.message(v))
}

func (c messageValue) Merge(wt wire.WireType, dst *any, d *wire.Decoder, ctx wire.DecodeContext) error {
	m := c.message(*dst)
	*dst = m
	return wire.MergeMessage(wt, m, d, ctx)
}

func (c messageValue) mergeRepeated(wt wire.WireType, dst *[]any, d *wire.Decoder, ctx wire.DecodeContext) error {
	m := c.newFn()
	if err := wire.MergeMessage(wt, m, d, ctx); err != nil {
		return err
	}
	*dst = append(*dst, m)
	return nil
}

func (c messageValue) encodeRepeated(num wire.FieldNumber, vs []any, _ bool, e *wire.Encoder) {
	for _, v := range vs {
		c.Encode(num, v, e)
	}
}

func (c messageValue) encodedLenRepeated(num wire.FieldNumber, vs []any, _ bool) int {
	n := 0
	for _, v := range vs {
		n += c.EncodedLen(num, v)
	}
	return n
}

// groupValue is messageValue with group framing. The field number is
// fixed because the closing key must repeat it.
type groupValue struct {
	messageValue
	num wire.FieldNumber
}

func (c groupValue) Encode(num wire.FieldNumber, v any, e *wire.Encoder) {
	wire.EncodeGroup(num, c.message(v), e)
}

func (c groupValue) EncodedLen(num wire.FieldNumber, v any) int {
	return wire.EncodedLenGroup(num, c.message(v))
}

func (c groupValue) Merge(wt wire.WireType, dst *any, d *wire.Decoder, ctx wire.DecodeContext) error {
	m := c.message(*dst)
	*dst = m
	return wire.MergeGroup(c.num, wt, m, d, ctx)
}

func (c groupValue) mergeRepeated(wt wire.WireType, dst *[]any, d *wire.Decoder, ctx wire.DecodeContext) error {
	m := c.newFn()
	if err := wire.MergeGroup(c.num, wt, m, d, ctx); err != nil {
		return err
	}
	*dst = append(*dst, m)
	return nil
}

func (c groupValue) encodeRepeated(num wire.FieldNumber, vs []any, _ bool, e *wire.Encoder) {
	for _, v := range vs {
		c.Encode(num, v, e)
	}
}

func (c groupValue) encodedLenRepeated(num wire.FieldNumber, vs []any, _ bool) int {
	n := 0
	for _, v := range vs {
		n += c.EncodedLen(num, v)
	}
	return n
}

// wrapperValue stores a google.protobuf wrapper as the bare value it
// carries. On the wire it is a message whose field 1 holds the value,
// omitted when default.
type wrapperValue struct {
	inner valueCodec
}

func (c wrapperValue) Default() any         { return c.inner.Default() }
func (c wrapperValue) IsDefault(v any) bool { return c.inner.IsDefault(v) }
func (wrapperValue) Less(a, b any) bool     { return false }

func (c wrapperValue) bodyLen(v any) int {
	if c.inner.IsDefault(v) {
		return 0
	}
	return c.inner.EncodedLen(1, v)
}

func (c wrapperValue) Encode(num wire.FieldNumber, v any, e *wire.Encoder) {
	e.EncodeKey(num, wire.WireBytes)
	e.EncodeVarint(uint64(c.bodyLen(v)))
	if !c.inner.IsDefault(v) {
		c.inner.Encode(1, v, e)
	}
}

func (c wrapperValue) EncodedLen(num wire.FieldNumber, v any) int {
	return wire.KeySize(num) + wire.BytesSize(c.bodyLen(v))
}

func (c wrapperValue) Merge(wt wire.WireType, dst *any, d *wire.Decoder, ctx wire.DecodeContext) error {
	if err := wire.CheckWireType(wire.WireBytes, wt); err != nil {
		return err
	}
	if err := ctx.LimitReached(); err != nil {
		return err
	}
	v := *dst
	if v == nil {
		v = c.inner.Default()
	}
	err := wire.MergeLoop(d, ctx.EnterRecursion(), func(d *wire.Decoder, ctx wire.DecodeContext) error {
		num, wt, err := d.DecodeKey()
		if err != nil {
			return err
		}
		if num == 1 {
			return c.inner.Merge(wt, &v, d, ctx)
		}
		return wire.SkipField(num, wt, d, ctx)
	})
	*dst = v
	return err
}

func (c wrapperValue) mergeRepeated(wt wire.WireType, dst *[]any, d *wire.Decoder, ctx wire.DecodeContext) error {
	var v any
	if err := c.Merge(wt, &v, d, ctx); err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

func (c wrapperValue) encodeRepeated(num wire.FieldNumber, vs []any, _ bool, e *wire.Encoder) {
	for _, v := range vs {
		c.Encode(num, v, e)
	}
}

func (c wrapperValue) encodedLenRepeated(num wire.FieldNumber, vs []any, _ bool) int {
	n := 0
	for _, v := range vs {
		n += c.EncodedLen(num, v)
	}
	return n
}
