package testpb

import "github.com/anirudhraja/protocodec/wire"

const scalarsName = "protocodec.test.Scalars"

// Scalars has one proto3 field of every scalar type.
type Scalars struct {
	Double   float64
	Float    float32
	Int32    int32
	Int64    int64
	Uint32   uint32
	Uint64   uint64
	Sint32   int32
	Sint64   int64
	Fixed32  uint32
	Fixed64  uint64
	Sfixed32 int32
	Sfixed64 int64
	Bool     bool
	Name     string
	Payload  []byte
	Color    Color

	Unknown wire.UnknownFields
}

func (m *Scalars) EncodeRaw(e *wire.Encoder) {
	if !wire.Double.IsDefault(m.Double) {
		wire.Double.Encode(1, m.Double, e)
	}
	if !wire.Float.IsDefault(m.Float) {
		wire.Float.Encode(2, m.Float, e)
	}
	if m.Int32 != 0 {
		wire.Int32.Encode(3, m.Int32, e)
	}
	if m.Int64 != 0 {
		wire.Int64.Encode(4, m.Int64, e)
	}
	if m.Uint32 != 0 {
		wire.Uint32.Encode(5, m.Uint32, e)
	}
	if m.Uint64 != 0 {
		wire.Uint64.Encode(6, m.Uint64, e)
	}
	if m.Sint32 != 0 {
		wire.Sint32.Encode(7, m.Sint32, e)
	}
	if m.Sint64 != 0 {
		wire.Sint64.Encode(8, m.Sint64, e)
	}
	if m.Fixed32 != 0 {
		wire.Fixed32.Encode(9, m.Fixed32, e)
	}
	if m.Fixed64 != 0 {
		wire.Fixed64.Encode(10, m.Fixed64, e)
	}
	if m.Sfixed32 != 0 {
		wire.Sfixed32.Encode(11, m.Sfixed32, e)
	}
	if m.Sfixed64 != 0 {
		wire.Sfixed64.Encode(12, m.Sfixed64, e)
	}
	if m.Bool {
		wire.Bool.Encode(13, m.Bool, e)
	}
	if m.Name != "" {
		wire.String.Encode(14, m.Name, e)
	}
	if len(m.Payload) != 0 {
		wire.Bytes.Encode(15, m.Payload, e)
	}
	if m.Color != ColorUnspecified {
		colorCodec.Encode(16, m.Color, e)
	}
	m.Unknown.EncodeRaw(e)
}

func (m *Scalars) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	var (
		field string
		err   error
	)
	switch num {
	case 1:
		field, err = "double", wire.Double.Merge(wt, &m.Double, d, ctx)
	case 2:
		field, err = "float", wire.Float.Merge(wt, &m.Float, d, ctx)
	case 3:
		field, err = "int32", wire.Int32.Merge(wt, &m.Int32, d, ctx)
	case 4:
		field, err = "int64", wire.Int64.Merge(wt, &m.Int64, d, ctx)
	case 5:
		field, err = "uint32", wire.Uint32.Merge(wt, &m.Uint32, d, ctx)
	case 6:
		field, err = "uint64", wire.Uint64.Merge(wt, &m.Uint64, d, ctx)
	case 7:
		field, err = "sint32", wire.Sint32.Merge(wt, &m.Sint32, d, ctx)
	case 8:
		field, err = "sint64", wire.Sint64.Merge(wt, &m.Sint64, d, ctx)
	case 9:
		field, err = "fixed32", wire.Fixed32.Merge(wt, &m.Fixed32, d, ctx)
	case 10:
		field, err = "fixed64", wire.Fixed64.Merge(wt, &m.Fixed64, d, ctx)
	case 11:
		field, err = "sfixed32", wire.Sfixed32.Merge(wt, &m.Sfixed32, d, ctx)
	case 12:
		field, err = "sfixed64", wire.Sfixed64.Merge(wt, &m.Sfixed64, d, ctx)
	case 13:
		field, err = "bool", wire.Bool.Merge(wt, &m.Bool, d, ctx)
	case 14:
		field, err = "name", wire.String.Merge(wt, &m.Name, d, ctx)
	case 15:
		field, err = "payload", wire.Bytes.Merge(wt, &m.Payload, d, ctx)
	case 16:
		field, err = "color", colorCodec.Merge(wt, &m.Color, d, ctx)
	default:
		return m.Unknown.MergeField(num, wt, d, ctx)
	}
	return wire.WrapField(err, scalarsName, field)
}

func (m *Scalars) EncodedLen() int {
	n := 0
	if !wire.Double.IsDefault(m.Double) {
		n += wire.Double.EncodedLen(1, m.Double)
	}
	if !wire.Float.IsDefault(m.Float) {
		n += wire.Float.EncodedLen(2, m.Float)
	}
	if m.Int32 != 0 {
		n += wire.Int32.EncodedLen(3, m.Int32)
	}
	if m.Int64 != 0 {
		n += wire.Int64.EncodedLen(4, m.Int64)
	}
	if m.Uint32 != 0 {
		n += wire.Uint32.EncodedLen(5, m.Uint32)
	}
	if m.Uint64 != 0 {
		n += wire.Uint64.EncodedLen(6, m.Uint64)
	}
	if m.Sint32 != 0 {
		n += wire.Sint32.EncodedLen(7, m.Sint32)
	}
	if m.Sint64 != 0 {
		n += wire.Sint64.EncodedLen(8, m.Sint64)
	}
	if m.Fixed32 != 0 {
		n += wire.Fixed32.EncodedLen(9, m.Fixed32)
	}
	if m.Fixed64 != 0 {
		n += wire.Fixed64.EncodedLen(10, m.Fixed64)
	}
	if m.Sfixed32 != 0 {
		n += wire.Sfixed32.EncodedLen(11, m.Sfixed32)
	}
	if m.Sfixed64 != 0 {
		n += wire.Sfixed64.EncodedLen(12, m.Sfixed64)
	}
	if m.Bool {
		n += wire.Bool.EncodedLen(13, m.Bool)
	}
	if m.Name != "" {
		n += wire.String.EncodedLen(14, m.Name)
	}
	if len(m.Payload) != 0 {
		n += wire.Bytes.EncodedLen(15, m.Payload)
	}
	if m.Color != ColorUnspecified {
		n += colorCodec.EncodedLen(16, m.Color)
	}
	return n + m.Unknown.EncodedLen()
}

func (m *Scalars) Reset() {
	*m = Scalars{}
}
