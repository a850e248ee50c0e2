package testpb

import "github.com/anirudhraja/protocodec/wire"

const repeatedName = "protocodec.test.Repeated"

// Repeated covers packed and unpacked repeated fields.
//
//	repeated int32 ints = 1;                     // packed
//	repeated sint64 sints = 2 [packed = false];
//	repeated double doubles = 3;                 // packed
//	repeated fixed32 fixeds = 4 [packed = false];
//	repeated string strings = 5;
//	repeated bytes blobs = 6;
//	repeated Scalars children = 7;
//	repeated Color colors = 8;                   // packed
//	repeated bool flags = 9;                     // packed
type Repeated struct {
	Ints     []int32
	Sints    []int64
	Doubles  []float64
	Fixeds   []uint32
	Strings  []string
	Blobs    [][]byte
	Children []*Scalars
	Colors   []Color
	Flags    []bool

	Unknown wire.UnknownFields
}

func newScalars() *Scalars { return new(Scalars) }

func (m *Repeated) EncodeRaw(e *wire.Encoder) {
	wire.Int32.EncodePacked(1, m.Ints, e)
	wire.Sint64.EncodeRepeated(2, m.Sints, e)
	wire.Double.EncodePacked(3, m.Doubles, e)
	wire.Fixed32.EncodeRepeated(4, m.Fixeds, e)
	wire.String.EncodeRepeated(5, m.Strings, e)
	wire.Bytes.EncodeRepeated(6, m.Blobs, e)
	wire.EncodeRepeatedMessage(7, m.Children, e)
	colorCodec.EncodePacked(8, m.Colors, e)
	wire.Bool.EncodePacked(9, m.Flags, e)
	m.Unknown.EncodeRaw(e)
}

func (m *Repeated) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	var (
		field string
		err   error
	)
	switch num {
	case 1:
		field, err = "ints", wire.Int32.MergeRepeated(wt, &m.Ints, d, ctx)
	case 2:
		field, err = "sints", wire.Sint64.MergeRepeated(wt, &m.Sints, d, ctx)
	case 3:
		field, err = "doubles", wire.Double.MergeRepeated(wt, &m.Doubles, d, ctx)
	case 4:
		field, err = "fixeds", wire.Fixed32.MergeRepeated(wt, &m.Fixeds, d, ctx)
	case 5:
		field, err = "strings", wire.String.MergeRepeated(wt, &m.Strings, d, ctx)
	case 6:
		field, err = "blobs", wire.Bytes.MergeRepeated(wt, &m.Blobs, d, ctx)
	case 7:
		field, err = "children", wire.MergeRepeatedMessage(wt, &m.Children, newScalars, d, ctx)
	case 8:
		field, err = "colors", colorCodec.MergeRepeated(wt, &m.Colors, d, ctx)
	case 9:
		field, err = "flags", wire.Bool.MergeRepeated(wt, &m.Flags, d, ctx)
	default:
		return m.Unknown.MergeField(num, wt, d, ctx)
	}
	return wire.WrapField(err, repeatedName, field)
}

func (m *Repeated) EncodedLen() int {
	return wire.Int32.EncodedLenPacked(1, m.Ints) +
		wire.Sint64.EncodedLenRepeated(2, m.Sints) +
		wire.Double.EncodedLenPacked(3, m.Doubles) +
		wire.Fixed32.EncodedLenRepeated(4, m.Fixeds) +
		wire.String.EncodedLenRepeated(5, m.Strings) +
		wire.Bytes.EncodedLenRepeated(6, m.Blobs) +
		wire.EncodedLenRepeatedMessage(7, m.Children) +
		colorCodec.EncodedLenPacked(8, m.Colors) +
		wire.Bool.EncodedLenPacked(9, m.Flags) +
		m.Unknown.EncodedLen()
}

func (m *Repeated) Reset() {
	*m = Repeated{}
}
