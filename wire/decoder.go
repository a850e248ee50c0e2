package wire

// Decoder is a read cursor over an encoded buffer. Decoders never read past
// the end of buf; all failures leave pos at or before the failing item.
type Decoder struct {
	buf      []byte
	pos      int
	keyStart int // offset of the most recent key, for raw field capture
}

// NewDecoder creates a new wire format decoder
func NewDecoder(data []byte) *Decoder {
	return &Decoder{
		buf: data,
	}
}

// Len returns the number of unread bytes.
func (d *Decoder) Len() int {
	return len(d.buf) - d.pos
}

// Done reports whether the whole buffer has been consumed.
func (d *Decoder) Done() bool {
	return d.pos >= len(d.buf)
}

// Offset returns the cursor position.
func (d *Decoder) Offset() int {
	return d.pos
}

// DecodeKey reads and validates a field key.
func (d *Decoder) DecodeKey() (FieldNumber, WireType, error) {
	start := d.pos
	key, err := d.DecodeVarint()
	if err != nil {
		return 0, 0, err
	}
	num, wt, err := ValidateTag(key)
	if err != nil {
		return 0, 0, err
	}
	d.keyStart = start
	return num, wt, nil
}

// DecodeLength reads a length delimiter and checks it against the unread
// input.
func (d *Decoder) DecodeLength() (int, error) {
	v, err := d.DecodeVarint()
	if err != nil {
		return 0, err
	}
	if v > uint64(maxInt) {
		return 0, ErrLengthDelimiterTooLarge
	}
	n := int(v)
	if n > d.Len() {
		return 0, ErrBufferUnderflow
	}
	return n, nil
}

// Skip advances the cursor by n bytes.
func (d *Decoder) Skip(n int) error {
	if n < 0 || n > d.Len() {
		return ErrBufferUnderflow
	}
	d.pos += n
	return nil
}

const maxInt = int(^uint(0) >> 1)
