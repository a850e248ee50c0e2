package testpb

import "github.com/anirudhraja/protocodec/wire"

const mapsName = "protocodec.test.Maps"

// Maps covers map fields with scalar, string, message and enum values.
//
//	map<string, int32> counts = 1;
//	map<int32, string> names = 2;
//	map<string, Scalars> items = 3;
//	map<bool, bytes> flags = 4;
//	map<string, Color> colors = 5;
//	map<uint64, Priority> priorities = 6;
//	map<sint64, double> weights = 7;
type Maps struct {
	Counts     map[string]int32
	Names      map[int32]string
	Items      map[string]*Scalars
	Flags      map[bool][]byte
	Colors     map[string]Color
	Priorities map[uint64]Priority
	Weights    map[int64]float64

	Unknown wire.UnknownFields
}

var (
	countsMap     = wire.NewMap[string, int32](wire.String, wire.Int32)
	namesMap      = wire.NewMap[int32, string](wire.Int32, wire.String)
	itemsMap      = wire.NewMap[string, *Scalars](wire.String, wire.NewMessageCodec(newScalars))
	flagsMap      = wire.NewMap[bool, []byte](wire.Bool, wire.Bytes)
	colorsMap     = wire.NewMap[string, Color](wire.String, colorCodec)
	prioritiesMap = wire.NewMapWithDefault[uint64, Priority](wire.Uint64, priorityCodec, PriorityDefault)
	weightsMap    = wire.NewMap[int64, float64](wire.Sint64, wire.Double)
)

func (m *Maps) EncodeRaw(e *wire.Encoder) {
	countsMap.Encode(1, m.Counts, e)
	namesMap.Encode(2, m.Names, e)
	itemsMap.Encode(3, m.Items, e)
	flagsMap.Encode(4, m.Flags, e)
	colorsMap.Encode(5, m.Colors, e)
	prioritiesMap.Encode(6, m.Priorities, e)
	weightsMap.Encode(7, m.Weights, e)
	m.Unknown.EncodeRaw(e)
}

func (m *Maps) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	var (
		field string
		err   error
	)
	switch num {
	case 1:
		field, err = "counts", countsMap.Merge(wt, &m.Counts, d, ctx)
	case 2:
		field, err = "names", namesMap.Merge(wt, &m.Names, d, ctx)
	case 3:
		field, err = "items", itemsMap.Merge(wt, &m.Items, d, ctx)
	case 4:
		field, err = "flags", flagsMap.Merge(wt, &m.Flags, d, ctx)
	case 5:
		field, err = "colors", colorsMap.Merge(wt, &m.Colors, d, ctx)
	case 6:
		field, err = "priorities", prioritiesMap.Merge(wt, &m.Priorities, d, ctx)
	case 7:
		field, err = "weights", weightsMap.Merge(wt, &m.Weights, d, ctx)
	default:
		return m.Unknown.MergeField(num, wt, d, ctx)
	}
	return wire.WrapField(err, mapsName, field)
}

func (m *Maps) EncodedLen() int {
	return countsMap.EncodedLen(1, m.Counts) +
		namesMap.EncodedLen(2, m.Names) +
		itemsMap.EncodedLen(3, m.Items) +
		flagsMap.EncodedLen(4, m.Flags) +
		colorsMap.EncodedLen(5, m.Colors) +
		prioritiesMap.EncodedLen(6, m.Priorities) +
		weightsMap.EncodedLen(7, m.Weights) +
		m.Unknown.EncodedLen()
}

func (m *Maps) Reset() {
	*m = Maps{}
}
