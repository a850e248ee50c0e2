package wire

// Marshal returns the encoding of m.
func Marshal(m Message) []byte {
	return MarshalAppend(make([]byte, 0, m.EncodedLen()), m)
}

// MarshalAppend appends the encoding of m to b.
func MarshalAppend(b []byte, m Message) []byte {
	e := NewEncoderBuffer(b)
	m.EncodeRaw(e)
	return e.Bytes()
}

// MarshalTo encodes m into the front of dst and returns the number of
// bytes written. Nothing is written when dst is too small.
func MarshalTo(m Message, dst []byte) (int, error) {
	required := m.EncodedLen()
	if required > len(dst) {
		return 0, &EncodeError{Required: required, Remaining: len(dst)}
	}
	e := NewEncoderBuffer(dst[:0])
	m.EncodeRaw(e)
	return e.Len(), nil
}

// MarshalLengthDelimited returns the encoding of m prefixed with its
// length, the framing used for streams of messages.
func MarshalLengthDelimited(m Message) []byte {
	n := m.EncodedLen()
	b := make([]byte, 0, LengthDelimiterLen(n)+n)
	b = AppendLengthDelimiter(b, n)
	return MarshalAppend(b, m)
}

// MarshalLengthDelimitedTo is the length-prefixed form of MarshalTo.
func MarshalLengthDelimitedTo(m Message, dst []byte) (int, error) {
	n := m.EncodedLen()
	required := LengthDelimiterLen(n) + n
	if required > len(dst) {
		return 0, &EncodeError{Required: required, Remaining: len(dst)}
	}
	e := NewEncoderBuffer(dst[:0])
	e.EncodeVarint(uint64(n))
	m.EncodeRaw(e)
	return e.Len(), nil
}

// Unmarshal replaces the contents of m with the message encoded in b.
func Unmarshal(b []byte, m Message) error {
	return UnmarshalOptions{}.Unmarshal(b, m)
}

// Merge merges the message encoded in b into m. Scalars present in b
// overwrite, repeated fields append and embedded messages merge. If
// decoding fails m is reset, discarding what it held before the call too.
func Merge(b []byte, m Message) error {
	return UnmarshalOptions{Merge: true}.Unmarshal(b, m)
}

// UnmarshalLengthDelimited decodes one length-prefixed message from the
// front of b and returns the number of bytes consumed.
func UnmarshalLengthDelimited(b []byte, m Message) (int, error) {
	return UnmarshalOptions{}.UnmarshalLengthDelimited(b, m)
}

// Unmarshal decodes b into m. On failure m is reset, so a failed decode
// never leaves partial data behind. With Merge set this also clears the
// contents m had before the call.
func (o UnmarshalOptions) Unmarshal(b []byte, m Message) error {
	if !o.Merge {
		m.Reset()
	}
	d := NewDecoder(b)
	if err := NewMessageDecoder(d).MergeFields(m, o.decodeContext()); err != nil {
		m.Reset()
		return asDecodeError(err)
	}
	return nil
}

// UnmarshalLengthDelimited decodes one length-prefixed message.
func (o UnmarshalOptions) UnmarshalLengthDelimited(b []byte, m Message) (int, error) {
	length, n, err := DecodeLengthDelimiter(b)
	if err != nil {
		if !o.Merge {
			m.Reset()
		}
		return 0, asDecodeError(err)
	}
	if length > len(b)-n {
		if !o.Merge {
			m.Reset()
		}
		return 0, asDecodeError(ErrBufferUnderflow)
	}
	if err := o.Unmarshal(b[n:n+length], m); err != nil {
		return 0, err
	}
	return n + length, nil
}

// EncodeLengthDelimiter writes length as a varint into dst.
func EncodeLengthDelimiter(length int, dst []byte) (int, error) {
	required := LengthDelimiterLen(length)
	if required > len(dst) {
		return 0, &EncodeError{Required: required, Remaining: len(dst)}
	}
	AppendLengthDelimiter(dst[:0], length)
	return required, nil
}

// AppendLengthDelimiter appends length as a varint.
func AppendLengthDelimiter(b []byte, length int) []byte {
	return AppendVarint(b, uint64(length))
}

// LengthDelimiterLen returns the encoded width of a length delimiter.
func LengthDelimiterLen(length int) int {
	return VarintSize(uint64(length))
}

// DecodeLengthDelimiter reads a length delimiter from the front of b,
// returning the length and the delimiter width. The length is not checked
// against len(b).
func DecodeLengthDelimiter(b []byte) (int, int, error) {
	v, n, err := ConsumeVarint(b)
	if err != nil {
		return 0, 0, err
	}
	if v > uint64(maxInt) {
		return 0, 0, ErrLengthDelimiterTooLarge
	}
	return int(v), n, nil
}
