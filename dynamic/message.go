// Package dynamic implements messages whose layout comes from a schema
// description at runtime rather than from generated Go types.
package dynamic

import (
	"fmt"
	"maps"
	"slices"

	"github.com/anirudhraja/protocodec/schema"
	"github.com/anirudhraja/protocodec/wire"
)

// Message is a schema-driven wire.Message. Singular values hold Go scalars
// (int32, int64, uint32, uint64, float32, float64, bool, string, []byte),
// enums hold int32 and embedded messages hold wire.Message. Repeated fields
// hold []any and maps hold map[any]any.
type Message struct {
	typ     *messageType
	values  map[wire.FieldNumber]any
	unknown wire.UnknownFields
}

// FullName returns the fully qualified type name.
func (m *Message) FullName() string { return m.typ.name }

// Descriptor returns the schema the message was built from.
func (m *Message) Descriptor() *schema.Message { return m.typ.desc }

// Unknown returns the fields that were decoded but not declared.
func (m *Message) Unknown() *wire.UnknownFields { return &m.unknown }

func (m *Message) lookup(name string) (*fieldInfo, error) {
	fi, ok := m.typ.byName[name]
	if !ok {
		return nil, fmt.Errorf("%s has no field %q", m.typ.name, name)
	}
	return fi, nil
}

// Has reports whether the named field is set. Implicit-presence fields
// count as set only when they differ from their default.
func (m *Message) Has(name string) bool {
	fi, err := m.lookup(name)
	if err != nil {
		return false
	}
	return m.has(fi)
}

func (m *Message) has(fi *fieldInfo) bool {
	v, ok := m.values[fi.num]
	if !ok {
		return false
	}
	switch {
	case fi.mapCodec != nil:
		return len(v.(map[any]any)) > 0
	case fi.repeated:
		return len(v.([]any)) > 0
	case fi.presence:
		return true
	}
	return !fi.codec.IsDefault(v)
}

// Get returns the named field's value, or its default when unset.
func (m *Message) Get(name string) (any, error) {
	fi, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	if v, ok := m.values[fi.num]; ok {
		return v, nil
	}
	return m.typ.defaultValue(fi), nil
}

// Set stores v in the named field after converting it to the field's
// representation. Setting a oneof member clears the others.
func (m *Message) Set(name string, v any) error {
	fi, err := m.lookup(name)
	if err != nil {
		return err
	}
	return m.set(fi, v)
}

func (m *Message) set(fi *fieldInfo, v any) error {
	cv, err := m.typ.factory.convertField(fi, v)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", m.typ.name, fi.name, err)
	}
	if fi.oneof >= 0 {
		m.clearOneof(fi.oneof)
	}
	if m.values == nil {
		m.values = make(map[wire.FieldNumber]any)
	}
	m.values[fi.num] = cv
	return nil
}

// Clear unsets the named field.
func (m *Message) Clear(name string) {
	if fi, err := m.lookup(name); err == nil {
		delete(m.values, fi.num)
	}
}

// WhichOneof returns the name of the set member of the named oneof, or ""
// when none is set.
func (m *Message) WhichOneof(oneof string) string {
	idx := slices.Index(m.typ.oneofs, oneof)
	if idx < 0 {
		return ""
	}
	for _, fi := range m.typ.fields {
		if fi.oneof == idx {
			if _, ok := m.values[fi.num]; ok {
				return fi.name
			}
		}
	}
	return ""
}

func (m *Message) clearOneof(idx int) {
	for _, fi := range m.typ.fields {
		if fi.oneof == idx {
			delete(m.values, fi.num)
		}
	}
}

// GetExtension returns the value of the extension numbered num.
func (m *Message) GetExtension(num int32) (any, bool) {
	fi := m.typ.field(wire.FieldNumber(num))
	if fi == nil {
		return nil, false
	}
	v, ok := m.values[fi.num]
	return v, ok
}

// SetExtension stores v in the extension numbered num.
func (m *Message) SetExtension(num int32, v any) error {
	fi := m.typ.field(wire.FieldNumber(num))
	if fi == nil || m.typ.byNum[fi.num] == fi {
		return fmt.Errorf("%s has no extension %d", m.typ.name, num)
	}
	return m.set(fi, v)
}

// Range calls fn for every set field in field number order until fn
// returns false.
func (m *Message) Range(fn func(name string, v any) bool) {
	for _, num := range m.numbers() {
		fi := m.typ.field(num)
		if fi == nil || !m.has(fi) {
			continue
		}
		if !fn(fi.name, m.values[num]) {
			return
		}
	}
}

func (m *Message) numbers() []wire.FieldNumber {
	return slices.Sorted(maps.Keys(m.values))
}

// EncodeRaw writes the set fields in ascending field number order followed
// by the unknown fields.
func (m *Message) EncodeRaw(e *wire.Encoder) {
	for _, num := range m.numbers() {
		fi := m.typ.field(num)
		v := m.values[num]
		switch {
		case fi.mapCodec != nil:
			fi.mapCodec.Encode(num, v.(map[any]any), e)
		case fi.repeated:
			fi.codec.encodeRepeated(num, v.([]any), fi.packed, e)
		case fi.presence || !fi.codec.IsDefault(v):
			fi.codec.Encode(num, v, e)
		}
	}
	m.unknown.EncodeRaw(e)
}

// EncodedLen returns the size of EncodeRaw's output.
func (m *Message) EncodedLen() int {
	n := 0
	for num, v := range m.values {
		fi := m.typ.field(num)
		switch {
		case fi.mapCodec != nil:
			n += fi.mapCodec.EncodedLen(num, v.(map[any]any))
		case fi.repeated:
			n += fi.codec.encodedLenRepeated(num, v.([]any), fi.packed)
		case fi.presence || !fi.codec.IsDefault(v):
			n += fi.codec.EncodedLen(num, v)
		}
	}
	return n + m.unknown.EncodedLen()
}

// MergeField decodes one field. Numbers that are neither declared nor
// registered extensions are kept as unknown fields.
func (m *Message) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	fi := m.typ.field(num)
	if fi == nil {
		return m.unknown.MergeField(num, wt, d, ctx)
	}
	if m.values == nil {
		m.values = make(map[wire.FieldNumber]any)
	}
	return wire.WrapField(m.mergeField(fi, wt, d, ctx), m.typ.name, fi.name)
}

func (m *Message) mergeField(fi *fieldInfo, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	switch {
	case fi.mapCodec != nil:
		mp, _ := m.values[fi.num].(map[any]any)
		err := fi.mapCodec.Merge(wt, &mp, d, ctx)
		if mp != nil {
			m.values[fi.num] = mp
		}
		return err
	case fi.repeated:
		vs, _ := m.values[fi.num].([]any)
		err := fi.codec.mergeRepeated(wt, &vs, d, ctx)
		if vs != nil {
			m.values[fi.num] = vs
		}
		return err
	}

	v, ok := m.values[fi.num]
	if fi.oneof >= 0 && !ok {
		m.clearOneof(fi.oneof)
	}
	if err := fi.codec.Merge(wt, &v, d, ctx); err != nil {
		delete(m.values, fi.num)
		return err
	}
	m.values[fi.num] = v
	return nil
}

// Reset clears every field, unknown fields included.
func (m *Message) Reset() {
	m.values = nil
	m.unknown.Reset()
}

func (mt *messageType) defaultValue(fi *fieldInfo) any {
	switch {
	case fi.mapCodec != nil:
		return map[any]any(nil)
	case fi.repeated:
		return []any(nil)
	}
	switch fi.elem.kind {
	case schema.KindMessage, schema.KindGroup:
		return nil
	case schema.KindEnum:
		if fi.desc.DefaultValue != "" {
			if n, ok := fi.elem.enum.ValueByName(fi.desc.DefaultValue); ok {
				return n
			}
		}
		if mt.syntax == schema.SyntaxProto2 {
			return fi.elem.enum.Default()
		}
		return int32(0)
	}
	if fi.desc.DefaultValue != "" {
		if v, err := convertPrimitive(fi.elem.prim, fi.desc.DefaultValue); err == nil {
			return v
		}
	}
	return fi.codec.Default()
}
