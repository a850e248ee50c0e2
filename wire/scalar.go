package wire

import (
	"math"
	"unicode/utf8"
)

// FieldCodec encodes and merges one field value of type T. Every scalar
// codec, the string and bytes codecs, and MessageCodec implement it, which
// lets Map combine any key codec with any value codec.
type FieldCodec[T any] interface {
	Encode(num FieldNumber, v T, e *Encoder)
	EncodedLen(num FieldNumber, v T) int
	Merge(wt WireType, dst *T, d *Decoder, ctx DecodeContext) error
	IsDefault(v T) bool
}

// KeyCodec is a FieldCodec usable as a map key. Less orders keys so that
// map encoding is deterministic.
type KeyCodec[K comparable] interface {
	FieldCodec[K]
	Less(a, b K) bool
}

// Scalar encodes numeric and boolean types. All scalars share one wire
// representation: a 64-bit pattern written as a varint or as 4 or 8
// little-endian bytes. toWire/fromWire convert between T and that pattern.
type Scalar[T any] struct {
	name     string
	wireType WireType
	toWire   func(T) uint64
	fromWire func(uint64) T
	less     func(a, b T) bool
}

var (
	Bool = &Scalar[bool]{
		name:     "bool",
		wireType: WireVarint,
		toWire: func(v bool) uint64 {
			if v {
				return 1
			}
			return 0
		},
		fromWire: func(w uint64) bool { return w != 0 },
		less:     func(a, b bool) bool { return !a && b },
	}
	Int32 = &Scalar[int32]{
		name:     "int32",
		wireType: WireVarint,
		toWire:   func(v int32) uint64 { return uint64(int64(v)) },
		fromWire: func(w uint64) int32 { return int32(w) },
		less:     func(a, b int32) bool { return a < b },
	}
	Int64 = &Scalar[int64]{
		name:     "int64",
		wireType: WireVarint,
		toWire:   func(v int64) uint64 { return uint64(v) },
		fromWire: func(w uint64) int64 { return int64(w) },
		less:     func(a, b int64) bool { return a < b },
	}
	Uint32 = &Scalar[uint32]{
		name:     "uint32",
		wireType: WireVarint,
		toWire:   func(v uint32) uint64 { return uint64(v) },
		fromWire: func(w uint64) uint32 { return uint32(w) },
		less:     func(a, b uint32) bool { return a < b },
	}
	Uint64 = &Scalar[uint64]{
		name:     "uint64",
		wireType: WireVarint,
		toWire:   func(v uint64) uint64 { return v },
		fromWire: func(w uint64) uint64 { return w },
		less:     func(a, b uint64) bool { return a < b },
	}
	Sint32 = &Scalar[int32]{
		name:     "sint32",
		wireType: WireVarint,
		toWire:   EncodeZigZag32,
		fromWire: DecodeZigZag32,
		less:     func(a, b int32) bool { return a < b },
	}
	Sint64 = &Scalar[int64]{
		name:     "sint64",
		wireType: WireVarint,
		toWire:   EncodeZigZag64,
		fromWire: DecodeZigZag64,
		less:     func(a, b int64) bool { return a < b },
	}
	// Enum values are open: numbers without a declared name decode as-is.
	Enum = &Scalar[int32]{
		name:     "enum",
		wireType: WireVarint,
		toWire:   func(v int32) uint64 { return uint64(int64(v)) },
		fromWire: func(w uint64) int32 { return int32(w) },
		less:     func(a, b int32) bool { return a < b },
	}
	Fixed32 = &Scalar[uint32]{
		name:     "fixed32",
		wireType: WireFixed32,
		toWire:   func(v uint32) uint64 { return uint64(v) },
		fromWire: func(w uint64) uint32 { return uint32(w) },
		less:     func(a, b uint32) bool { return a < b },
	}
	Fixed64 = &Scalar[uint64]{
		name:     "fixed64",
		wireType: WireFixed64,
		toWire:   func(v uint64) uint64 { return v },
		fromWire: func(w uint64) uint64 { return w },
		less:     func(a, b uint64) bool { return a < b },
	}
	Sfixed32 = &Scalar[int32]{
		name:     "sfixed32",
		wireType: WireFixed32,
		toWire:   func(v int32) uint64 { return uint64(uint32(v)) },
		fromWire: func(w uint64) int32 { return int32(uint32(w)) },
		less:     func(a, b int32) bool { return a < b },
	}
	Sfixed64 = &Scalar[int64]{
		name:     "sfixed64",
		wireType: WireFixed64,
		toWire:   func(v int64) uint64 { return uint64(v) },
		fromWire: func(w uint64) int64 { return int64(w) },
		less:     func(a, b int64) bool { return a < b },
	}
	// Float and Double compare bit patterns for default detection, so
	// -0.0 is not a default and is always written.
	Float = &Scalar[float32]{
		name:     "float",
		wireType: WireFixed32,
		toWire:   func(v float32) uint64 { return uint64(math.Float32bits(v)) },
		fromWire: func(w uint64) float32 { return math.Float32frombits(uint32(w)) },
		less:     func(a, b float32) bool { return a < b },
	}
	Double = &Scalar[float64]{
		name:     "double",
		wireType: WireFixed64,
		toWire:   math.Float64bits,
		fromWire: math.Float64frombits,
		less:     func(a, b float64) bool { return a < b },
	}
)

// NewEnum returns the codec for a named enum type. It encodes exactly like
// Enum.
func NewEnum[E ~int32](name string) *Scalar[E] {
	return &Scalar[E]{
		name:     name,
		wireType: WireVarint,
		toWire:   func(v E) uint64 { return uint64(int64(v)) },
		fromWire: func(w uint64) E { return E(int32(w)) },
		less:     func(a, b E) bool { return a < b },
	}
}

// Name returns the .proto type name.
func (s *Scalar[T]) Name() string { return s.name }

// WireType returns the wire type of a single unpacked value.
func (s *Scalar[T]) WireType() WireType { return s.wireType }

// IsDefault reports whether v is the proto3 default (all-zero wire pattern).
func (s *Scalar[T]) IsDefault(v T) bool { return s.toWire(v) == 0 }

// Less orders two values.
func (s *Scalar[T]) Less(a, b T) bool { return s.less(a, b) }

// Encode writes key and value.
func (s *Scalar[T]) Encode(num FieldNumber, v T, e *Encoder) {
	e.EncodeKey(num, s.wireType)
	s.encodeValue(v, e)
}

// EncodedLen returns the size of Encode's output.
func (s *Scalar[T]) EncodedLen(num FieldNumber, v T) int {
	return KeySize(num) + s.valueLen(v)
}

// Merge decodes one value into dst, replacing its previous contents.
func (s *Scalar[T]) Merge(wt WireType, dst *T, d *Decoder, _ DecodeContext) error {
	if err := CheckWireType(s.wireType, wt); err != nil {
		return err
	}
	v, err := s.decodeValue(d)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// EncodeRepeated writes one key/value pair per element.
func (s *Scalar[T]) EncodeRepeated(num FieldNumber, vs []T, e *Encoder) {
	for _, v := range vs {
		s.Encode(num, v, e)
	}
}

// EncodedLenRepeated returns the size of EncodeRepeated's output.
func (s *Scalar[T]) EncodedLenRepeated(num FieldNumber, vs []T) int {
	n := KeySize(num) * len(vs)
	for _, v := range vs {
		n += s.valueLen(v)
	}
	return n
}

// EncodePacked writes all elements as one length-delimited field. Nothing
// is written for an empty slice.
func (s *Scalar[T]) EncodePacked(num FieldNumber, vs []T, e *Encoder) {
	if len(vs) == 0 {
		return
	}
	e.EncodeKey(num, WireBytes)
	e.EncodeVarint(uint64(s.packedLen(vs)))
	for _, v := range vs {
		s.encodeValue(v, e)
	}
}

// EncodedLenPacked returns the size of EncodePacked's output.
func (s *Scalar[T]) EncodedLenPacked(num FieldNumber, vs []T) int {
	if len(vs) == 0 {
		return 0
	}
	return KeySize(num) + BytesSize(s.packedLen(vs))
}

// MergeRepeated appends to dst. Both the packed and the unpacked form are
// accepted regardless of how the field is declared.
func (s *Scalar[T]) MergeRepeated(wt WireType, dst *[]T, d *Decoder, ctx DecodeContext) error {
	if wt == WireBytes {
		return MergeLoop(d, ctx, func(d *Decoder, _ DecodeContext) error {
			v, err := s.decodeValue(d)
			if err != nil {
				return err
			}
			*dst = append(*dst, v)
			return nil
		})
	}
	if err := CheckWireType(s.wireType, wt); err != nil {
		return err
	}
	v, err := s.decodeValue(d)
	if err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

func (s *Scalar[T]) packedLen(vs []T) int {
	switch s.wireType {
	case WireFixed32:
		return 4 * len(vs)
	case WireFixed64:
		return 8 * len(vs)
	}
	n := 0
	for _, v := range vs {
		n += VarintSize(s.toWire(v))
	}
	return n
}

func (s *Scalar[T]) valueLen(v T) int {
	switch s.wireType {
	case WireFixed32:
		return 4
	case WireFixed64:
		return 8
	default:
		return VarintSize(s.toWire(v))
	}
}

func (s *Scalar[T]) encodeValue(v T, e *Encoder) {
	w := s.toWire(v)
	switch s.wireType {
	case WireFixed32:
		e.EncodeFixed32(uint32(w))
	case WireFixed64:
		e.EncodeFixed64(w)
	default:
		e.EncodeVarint(w)
	}
}

func (s *Scalar[T]) decodeValue(d *Decoder) (T, error) {
	var (
		w   uint64
		err error
	)
	switch s.wireType {
	case WireFixed32:
		var v32 uint32
		v32, err = d.DecodeFixed32()
		w = uint64(v32)
	case WireFixed64:
		w, err = d.DecodeFixed64()
	default:
		w, err = d.DecodeVarint()
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return s.fromWire(w), nil
}

// StringCodec encodes UTF-8 strings.
type StringCodec struct{}

// String is the codec for string fields.
var String = StringCodec{}

func (StringCodec) IsDefault(v string) bool { return v == "" }
func (StringCodec) Less(a, b string) bool   { return a < b }

func (StringCodec) Encode(num FieldNumber, v string, e *Encoder) {
	e.EncodeKey(num, WireBytes)
	e.EncodeString(v)
}

func (StringCodec) EncodedLen(num FieldNumber, v string) int {
	return KeySize(num) + BytesSize(len(v))
}

// Merge replaces dst with the decoded string. On any failure dst is left
// empty, so invalid UTF-8 is never observable.
func (StringCodec) Merge(wt WireType, dst *string, d *Decoder, _ DecodeContext) error {
	*dst = ""
	if err := CheckWireType(WireBytes, wt); err != nil {
		return err
	}
	raw, err := d.DecodeRawBytes()
	if err != nil {
		return err
	}
	if !utf8.Valid(raw) {
		return ErrInvalidString
	}
	*dst = string(raw)
	return nil
}

func (c StringCodec) EncodeRepeated(num FieldNumber, vs []string, e *Encoder) {
	for _, v := range vs {
		c.Encode(num, v, e)
	}
}

func (c StringCodec) EncodedLenRepeated(num FieldNumber, vs []string) int {
	n := KeySize(num) * len(vs)
	for _, v := range vs {
		n += BytesSize(len(v))
	}
	return n
}

// MergeRepeated decodes one element and appends it.
func (c StringCodec) MergeRepeated(wt WireType, dst *[]string, d *Decoder, ctx DecodeContext) error {
	var v string
	if err := c.Merge(wt, &v, d, ctx); err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// BytesCodec encodes opaque byte strings. Decoded values never alias the
// input buffer.
type BytesCodec struct{}

// Bytes is the codec for bytes fields.
var Bytes = BytesCodec{}

func (BytesCodec) IsDefault(v []byte) bool { return len(v) == 0 }

func (BytesCodec) Encode(num FieldNumber, v []byte, e *Encoder) {
	e.EncodeKey(num, WireBytes)
	e.EncodeBytes(v)
}

func (BytesCodec) EncodedLen(num FieldNumber, v []byte) int {
	return KeySize(num) + BytesSize(len(v))
}

// Merge replaces dst with a copy of the payload.
func (BytesCodec) Merge(wt WireType, dst *[]byte, d *Decoder, _ DecodeContext) error {
	if err := CheckWireType(WireBytes, wt); err != nil {
		return err
	}
	v, err := d.DecodeBytes()
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func (c BytesCodec) EncodeRepeated(num FieldNumber, vs [][]byte, e *Encoder) {
	for _, v := range vs {
		c.Encode(num, v, e)
	}
}

func (c BytesCodec) EncodedLenRepeated(num FieldNumber, vs [][]byte) int {
	n := KeySize(num) * len(vs)
	for _, v := range vs {
		n += BytesSize(len(v))
	}
	return n
}

// MergeRepeated decodes one element and appends it.
func (c BytesCodec) MergeRepeated(wt WireType, dst *[][]byte, d *Decoder, ctx DecodeContext) error {
	var v []byte
	if err := c.Merge(wt, &v, d, ctx); err != nil {
		return err
	}
	*dst = append(*dst, v)
	return nil
}

// MergeOptional merges into an explicitly present field, allocating it on
// first use.
func MergeOptional[T any](c FieldCodec[T], wt WireType, dst **T, d *Decoder, ctx DecodeContext) error {
	if *dst == nil {
		*dst = new(T)
	}
	return c.Merge(wt, *dst, d, ctx)
}
