package wire

import (
	"bytes"
	"maps"
	"slices"
)

// UnknownField is a field that the decoding message does not declare. Raw
// holds the field exactly as it was read, key included, so it can be
// written back unchanged.
type UnknownField struct {
	Number   FieldNumber
	WireType WireType
	Raw      []byte
}

// Payload returns Raw without the leading key.
func (f UnknownField) Payload() []byte {
	_, n, err := ConsumeVarint(f.Raw)
	if err != nil {
		return nil
	}
	return f.Raw[n:]
}

// Varint decodes the payload of a varint field.
func (f UnknownField) Varint() (uint64, error) {
	if err := CheckWireType(WireVarint, f.WireType); err != nil {
		return 0, err
	}
	v, _, err := ConsumeVarint(f.Payload())
	return v, err
}

// Fixed32 decodes the payload of a 32-bit field.
func (f UnknownField) Fixed32() (uint32, error) {
	if err := CheckWireType(WireFixed32, f.WireType); err != nil {
		return 0, err
	}
	return NewDecoder(f.Payload()).DecodeFixed32()
}

// Fixed64 decodes the payload of a 64-bit field.
func (f UnknownField) Fixed64() (uint64, error) {
	if err := CheckWireType(WireFixed64, f.WireType); err != nil {
		return 0, err
	}
	return NewDecoder(f.Payload()).DecodeFixed64()
}

// Bytes returns the contents of a length-delimited field. The result
// aliases Raw.
func (f UnknownField) Bytes() ([]byte, error) {
	if err := CheckWireType(WireBytes, f.WireType); err != nil {
		return nil, err
	}
	return NewDecoder(f.Payload()).DecodeRawBytes()
}

// Group decodes the fields of a group.
func (f UnknownField) Group() (UnknownFields, error) {
	var g UnknownFields
	if err := CheckWireType(WireStartGroup, f.WireType); err != nil {
		return g, err
	}
	d := NewDecoder(f.Raw)
	if _, _, err := d.DecodeKey(); err != nil {
		return g, err
	}
	err := MergeGroup(f.Number, f.WireType, &g, d, DefaultDecodeContext())
	return g, err
}

// UnknownFields is an ordered multimap of unknown fields keyed by field
// number. Fields with the same number keep their arrival order; encoding
// visits numbers in ascending order. The zero value is empty and ready to
// use.
type UnknownFields struct {
	fields map[FieldNumber][]UnknownField
}

// Len returns the total number of fields.
func (u *UnknownFields) Len() int {
	n := 0
	for _, fs := range u.fields {
		n += len(fs)
	}
	return n
}

// Numbers returns the distinct field numbers in ascending order.
func (u *UnknownFields) Numbers() []FieldNumber {
	return slices.Sorted(maps.Keys(u.fields))
}

// Get returns the fields recorded under num in arrival order.
func (u *UnknownFields) Get(num FieldNumber) []UnknownField {
	return u.fields[num]
}

// Range calls fn for every field in encoding order until fn returns false.
func (u *UnknownFields) Range(fn func(UnknownField) bool) {
	for _, num := range u.Numbers() {
		for _, f := range u.fields[num] {
			if !fn(f) {
				return
			}
		}
	}
}

// Equal reports whether both sets hold the same fields with the same bytes.
func (u UnknownFields) Equal(o UnknownFields) bool {
	if len(u.fields) != len(o.fields) {
		return false
	}
	for num, fs := range u.fields {
		other := o.fields[num]
		if len(fs) != len(other) {
			return false
		}
		for i := range fs {
			if fs[i].WireType != other[i].WireType || !bytes.Equal(fs[i].Raw, other[i].Raw) {
				return false
			}
		}
	}
	return true
}

// Add appends an already encoded field.
func (u *UnknownFields) Add(f UnknownField) {
	if u.fields == nil {
		u.fields = make(map[FieldNumber][]UnknownField)
	}
	u.fields[f.Number] = append(u.fields[f.Number], f)
}

// AddVarint appends a varint field.
func (u *UnknownFields) AddVarint(num FieldNumber, v uint64) {
	e := NewEncoder()
	e.EncodeKey(num, WireVarint)
	e.EncodeVarint(v)
	u.Add(UnknownField{Number: num, WireType: WireVarint, Raw: e.Bytes()})
}

// AddFixed32 appends a 32-bit field.
func (u *UnknownFields) AddFixed32(num FieldNumber, v uint32) {
	e := NewEncoder()
	e.EncodeKey(num, WireFixed32)
	e.EncodeFixed32(v)
	u.Add(UnknownField{Number: num, WireType: WireFixed32, Raw: e.Bytes()})
}

// AddFixed64 appends a 64-bit field.
func (u *UnknownFields) AddFixed64(num FieldNumber, v uint64) {
	e := NewEncoder()
	e.EncodeKey(num, WireFixed64)
	e.EncodeFixed64(v)
	u.Add(UnknownField{Number: num, WireType: WireFixed64, Raw: e.Bytes()})
}

// AddBytes appends a length-delimited field.
func (u *UnknownFields) AddBytes(num FieldNumber, b []byte) {
	e := NewEncoder()
	Bytes.Encode(num, b, e)
	u.Add(UnknownField{Number: num, WireType: WireBytes, Raw: e.Bytes()})
}

// AddGroup appends a group holding g's fields.
func (u *UnknownFields) AddGroup(num FieldNumber, g *UnknownFields) {
	e := NewEncoder()
	EncodeGroup(num, g, e)
	u.Add(UnknownField{Number: num, WireType: WireStartGroup, Raw: e.Bytes()})
}

// EncodeRaw writes every field back exactly as it was read.
func (u *UnknownFields) EncodeRaw(e *Encoder) {
	u.Range(func(f UnknownField) bool {
		e.EncodeRaw(f.Raw)
		return true
	})
}

// EncodedLen returns the size of EncodeRaw's output.
func (u *UnknownFields) EncodedLen() int {
	n := 0
	for _, fs := range u.fields {
		for _, f := range fs {
			n += len(f.Raw)
		}
	}
	return n
}

// MergeField captures the field whose key was just read from d.
func (u *UnknownFields) MergeField(num FieldNumber, wt WireType, d *Decoder, ctx DecodeContext) error {
	start := d.keyStart
	if err := SkipField(num, wt, d, ctx); err != nil {
		return err
	}
	raw := slices.Clone(d.buf[start:d.pos])
	u.Add(UnknownField{Number: num, WireType: wt, Raw: raw})
	return nil
}

// Reset removes all fields.
func (u *UnknownFields) Reset() {
	u.fields = nil
}
