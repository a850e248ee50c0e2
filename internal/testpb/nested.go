package testpb

import "github.com/anirudhraja/protocodec/wire"

const (
	nestedName      = "protocodec.test.Nested"
	nestedInnerName = "protocodec.test.Nested.Inner"
)

// Nested is a recursive proto2 message with groups and a oneof.
//
//	syntax = "proto2";
//	message Nested {
//	  optional Nested child = 1;
//	  optional int32 value = 2;
//	  optional group Inner = 3 { optional int32 a = 1; optional string b = 2; }
//	  repeated Inner entries = 4;                 // encoded as groups
//	  oneof payload { string label = 6; int64 id = 7; Scalars detail = 8; }
//	  repeated Nested branches = 9;
//	  optional Priority priority = 10;
//	}
type Nested struct {
	Child    *Nested
	Value    *int32
	Inner    *NestedInner
	Entries  []*NestedInner
	Payload  isNestedPayload
	Branches []*Nested
	Priority *Priority

	Unknown wire.UnknownFields
}

type isNestedPayload interface {
	isNestedPayload()
}

type NestedLabel struct{ Label string }
type NestedID struct{ ID int64 }
type NestedDetail struct{ Detail *Scalars }

func (*NestedLabel) isNestedPayload()  {}
func (*NestedID) isNestedPayload()     {}
func (*NestedDetail) isNestedPayload() {}

func newNested() *Nested           { return new(Nested) }
func newNestedInner() *NestedInner { return new(NestedInner) }

// GetPriority returns the declared default when the field is unset.
func (m *Nested) GetPriority() Priority {
	if m == nil || m.Priority == nil {
		return PriorityDefault
	}
	return *m.Priority
}

func (m *Nested) EncodeRaw(e *wire.Encoder) {
	if m.Child != nil {
		wire.EncodeMessage(1, m.Child, e)
	}
	if m.Value != nil {
		wire.Int32.Encode(2, *m.Value, e)
	}
	if m.Inner != nil {
		wire.EncodeGroup(3, m.Inner, e)
	}
	wire.EncodeRepeatedGroup(4, m.Entries, e)
	switch p := m.Payload.(type) {
	case *NestedLabel:
		wire.String.Encode(6, p.Label, e)
	case *NestedID:
		wire.Int64.Encode(7, p.ID, e)
	case *NestedDetail:
		if p.Detail != nil {
			wire.EncodeMessage(8, p.Detail, e)
		}
	}
	wire.EncodeRepeatedMessage(9, m.Branches, e)
	if m.Priority != nil {
		priorityCodec.Encode(10, *m.Priority, e)
	}
	m.Unknown.EncodeRaw(e)
}

func (m *Nested) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	var (
		field string
		err   error
	)
	switch num {
	case 1:
		field = "child"
		if m.Child == nil {
			m.Child = newNested()
		}
		err = wire.MergeMessage(wt, m.Child, d, ctx)
	case 2:
		field, err = "value", wire.MergeOptional[int32](wire.Int32, wt, &m.Value, d, ctx)
	case 3:
		field = "inner"
		if m.Inner == nil {
			m.Inner = newNestedInner()
		}
		err = wire.MergeGroup(num, wt, m.Inner, d, ctx)
	case 4:
		field, err = "entries", wire.MergeRepeatedGroup(num, wt, &m.Entries, newNestedInner, d, ctx)
	case 6:
		field = "label"
		var v string
		if err = wire.String.Merge(wt, &v, d, ctx); err == nil {
			m.Payload = &NestedLabel{Label: v}
		}
	case 7:
		field = "id"
		var v int64
		if err = wire.Int64.Merge(wt, &v, d, ctx); err == nil {
			m.Payload = &NestedID{ID: v}
		}
	case 8:
		field = "detail"
		p, ok := m.Payload.(*NestedDetail)
		if !ok || p.Detail == nil {
			p = &NestedDetail{Detail: newScalars()}
		}
		if err = wire.MergeMessage(wt, p.Detail, d, ctx); err == nil {
			m.Payload = p
		}
	case 9:
		field, err = "branches", wire.MergeRepeatedMessage(wt, &m.Branches, newNested, d, ctx)
	case 10:
		field, err = "priority", wire.MergeOptional[Priority](priorityCodec, wt, &m.Priority, d, ctx)
	default:
		return m.Unknown.MergeField(num, wt, d, ctx)
	}
	return wire.WrapField(err, nestedName, field)
}

func (m *Nested) EncodedLen() int {
	n := 0
	if m.Child != nil {
		n += wire.EncodedLenMessage(1, m.Child)
	}
	if m.Value != nil {
		n += wire.Int32.EncodedLen(2, *m.Value)
	}
	if m.Inner != nil {
		n += wire.EncodedLenGroup(3, m.Inner)
	}
	n += wire.EncodedLenRepeatedGroup(4, m.Entries)
	switch p := m.Payload.(type) {
	case *NestedLabel:
		n += wire.String.EncodedLen(6, p.Label)
	case *NestedID:
		n += wire.Int64.EncodedLen(7, p.ID)
	case *NestedDetail:
		if p.Detail != nil {
			n += wire.EncodedLenMessage(8, p.Detail)
		}
	}
	n += wire.EncodedLenRepeatedMessage(9, m.Branches)
	if m.Priority != nil {
		n += priorityCodec.EncodedLen(10, *m.Priority)
	}
	return n + m.Unknown.EncodedLen()
}

func (m *Nested) Reset() {
	*m = Nested{}
}

// NestedInner is the body of the Inner group.
type NestedInner struct {
	A *int32
	B *string

	Unknown wire.UnknownFields
}

func (m *NestedInner) EncodeRaw(e *wire.Encoder) {
	if m.A != nil {
		wire.Int32.Encode(1, *m.A, e)
	}
	if m.B != nil {
		wire.String.Encode(2, *m.B, e)
	}
	m.Unknown.EncodeRaw(e)
}

func (m *NestedInner) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	switch num {
	case 1:
		return wire.WrapField(wire.MergeOptional[int32](wire.Int32, wt, &m.A, d, ctx), nestedInnerName, "a")
	case 2:
		return wire.WrapField(wire.MergeOptional[string](wire.String, wt, &m.B, d, ctx), nestedInnerName, "b")
	default:
		return m.Unknown.MergeField(num, wt, d, ctx)
	}
}

func (m *NestedInner) EncodedLen() int {
	n := 0
	if m.A != nil {
		n += wire.Int32.EncodedLen(1, *m.A)
	}
	if m.B != nil {
		n += wire.String.EncodedLen(2, *m.B)
	}
	return n + m.Unknown.EncodedLen()
}

func (m *NestedInner) Reset() {
	*m = NestedInner{}
}
