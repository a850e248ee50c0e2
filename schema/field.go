package schema

const (
	SyntaxProto2 = "proto2"
	SyntaxProto3 = "proto3"
)

// IsRepeated reports whether the field carries the repeated label.
func (f *Field) IsRepeated() bool {
	return f.Label == LabelRepeated
}

// IsPacked reports whether a repeated field is written in packed form.
// An explicit packed option wins; otherwise proto3 packs every eligible
// scalar and proto2 packs nothing.
func (f *Field) IsPacked(syntax string) bool {
	if !f.IsRepeated() || !f.packable() {
		return false
	}
	if f.Packed != nil {
		return *f.Packed
	}
	return syntax == SyntaxProto3
}

func (f *Field) packable() bool {
	switch f.Type.Kind {
	case KindEnum:
		return true
	case KindPrimitive:
		return IsPackedType(f.Type.PrimitiveType)
	}
	return false
}

// HasPresence reports whether an unset singular field can be told apart
// from one holding its default value.
func (f *Field) HasPresence(syntax string, inOneof bool) bool {
	if f.IsRepeated() || f.Type.Kind == KindMap {
		return false
	}
	if inOneof || f.Proto3Optional || syntax != SyntaxProto3 {
		return true
	}
	switch f.Type.Kind {
	case KindMessage, KindGroup, KindWrapper:
		return true
	}
	return false
}

// AllFields returns the regular fields followed by the members of every
// oneof, along with the index of the oneof each belongs to or -1.
func (m *Message) AllFields() ([]*Field, []int) {
	fields := make([]*Field, 0, len(m.Fields))
	oneofs := make([]int, 0, len(m.Fields))
	for _, f := range m.Fields {
		fields = append(fields, f)
		oneofs = append(oneofs, -1)
	}
	for i, o := range m.OneofGroups {
		for _, f := range o.Fields {
			fields = append(fields, f)
			oneofs = append(oneofs, i)
		}
	}
	return fields, oneofs
}
