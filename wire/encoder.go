package wire

import "fmt"

// Encoder handles low-level protobuf wire format encoding. It appends to an
// internal buffer and never fails; capacity checks happen in MarshalTo.
type Encoder struct {
	buf []byte
}

// NewEncoder creates a new wire format encoder
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0),
	}
}

// NewEncoderBuffer creates an encoder that appends to b.
func NewEncoderBuffer(b []byte) *Encoder {
	return &Encoder{buf: b}
}

// Bytes returns the encoded bytes
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of encoded bytes.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Reset clears the encoder buffer
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// EncodeKey writes the key for a field. Field numbers come from message
// definitions, so an out-of-range number is a programming error.
func (e *Encoder) EncodeKey(num FieldNumber, wt WireType) {
	if !num.IsValid() {
		panic(fmt.Sprintf("wire: field number %d out of range", num))
	}
	e.EncodeVarint(uint64(MakeTag(num, wt)))
}

// EncodeRaw appends already encoded bytes.
func (e *Encoder) EncodeRaw(b []byte) {
	e.buf = append(e.buf, b...)
}
