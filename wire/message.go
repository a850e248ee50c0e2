package wire

import "reflect"

// Message is implemented by every type that can be encoded as a protobuf
// message. Generated-style types implement it by hand: EncodeRaw writes the
// fields in ascending number order, MergeField dispatches one decoded key
// to the owning field.
type Message interface {
	// EncodeRaw writes the message fields without any length prefix.
	EncodeRaw(e *Encoder)
	// MergeField decodes the payload of one field whose key was just read.
	MergeField(num FieldNumber, wt WireType, d *Decoder, ctx DecodeContext) error
	// EncodedLen returns exactly the number of bytes EncodeRaw writes.
	EncodedLen() int
	// Reset clears every field, unknown fields included.
	Reset()
}

// MessageDecoder handles embedded message and group decoding
type MessageDecoder struct {
	decoder *Decoder
}

// MessageEncoder handles embedded message and group encoding
type MessageEncoder struct {
	encoder *Encoder
}

// NewMessageDecoder creates a new message decoder
func NewMessageDecoder(d *Decoder) *MessageDecoder {
	return &MessageDecoder{decoder: d}
}

// NewMessageEncoder creates a new message encoder
func NewMessageEncoder(e *Encoder) *MessageEncoder {
	return &MessageEncoder{encoder: e}
}

// DECODER METHODS

// MergeMessage merges a length-delimited embedded message into m.
func (md *MessageDecoder) MergeMessage(wt WireType, m Message, ctx DecodeContext) error {
	if err := CheckWireType(WireBytes, wt); err != nil {
		return err
	}
	if err := ctx.LimitReached(); err != nil {
		return err
	}
	return MergeLoop(md.decoder, ctx.EnterRecursion(), mergeNextField(m))
}

// MergeGroup merges a group into m. num is the group's field number; the
// group ends at the EndGroup key carrying the same number.
func (md *MessageDecoder) MergeGroup(num FieldNumber, wt WireType, m Message, ctx DecodeContext) error {
	if err := CheckWireType(WireStartGroup, wt); err != nil {
		return err
	}
	if err := ctx.LimitReached(); err != nil {
		return err
	}
	d := md.decoder
	for {
		inner, innerWT, err := d.DecodeKey()
		if err != nil {
			return err
		}
		if innerWT == WireEndGroup {
			if inner != num {
				return ErrUnexpectedEndGroupTag
			}
			return nil
		}
		if err := m.MergeField(inner, innerWT, d, ctx.EnterRecursion()); err != nil {
			return err
		}
	}
}

// MergeFields decodes keys until the buffer is exhausted. It is the body of
// a top-level decode.
func (md *MessageDecoder) MergeFields(m Message, ctx DecodeContext) error {
	merge := mergeNextField(m)
	for !md.decoder.Done() {
		if err := merge(md.decoder, ctx); err != nil {
			return err
		}
	}
	return nil
}

func mergeNextField(m Message) func(*Decoder, DecodeContext) error {
	return func(d *Decoder, ctx DecodeContext) error {
		num, wt, err := d.DecodeKey()
		if err != nil {
			return err
		}
		return m.MergeField(num, wt, d, ctx)
	}
}

// ENCODER METHODS

// EncodeMessage writes m as a length-delimited field.
func (me *MessageEncoder) EncodeMessage(num FieldNumber, m Message) {
	e := me.encoder
	e.EncodeKey(num, WireBytes)
	e.EncodeVarint(uint64(m.EncodedLen()))
	m.EncodeRaw(e)
}

// EncodeGroup writes m between StartGroup and EndGroup keys.
func (me *MessageEncoder) EncodeGroup(num FieldNumber, m Message) {
	e := me.encoder
	e.EncodeKey(num, WireStartGroup)
	m.EncodeRaw(e)
	e.EncodeKey(num, WireEndGroup)
}

// Package-level helpers used by message implementations.

// EncodeMessage writes m as field num.
func EncodeMessage(num FieldNumber, m Message, e *Encoder) {
	NewMessageEncoder(e).EncodeMessage(num, m)
}

// MergeMessage merges an embedded message field into m.
func MergeMessage(wt WireType, m Message, d *Decoder, ctx DecodeContext) error {
	return NewMessageDecoder(d).MergeMessage(wt, m, ctx)
}

// EncodedLenMessage returns the size of EncodeMessage's output.
func EncodedLenMessage(num FieldNumber, m Message) int {
	return KeySize(num) + BytesSize(m.EncodedLen())
}

// EncodeRepeatedMessage writes each element as its own field.
func EncodeRepeatedMessage[M Message](num FieldNumber, ms []M, e *Encoder) {
	me := NewMessageEncoder(e)
	for _, m := range ms {
		me.EncodeMessage(num, m)
	}
}

// MergeRepeatedMessage decodes one element into a new value from newFn
// and appends it.
func MergeRepeatedMessage[M Message](wt WireType, dst *[]M, newFn func() M, d *Decoder, ctx DecodeContext) error {
	if err := CheckWireType(WireBytes, wt); err != nil {
		return err
	}
	m := newFn()
	if err := MergeMessage(wt, m, d, ctx); err != nil {
		return err
	}
	*dst = append(*dst, m)
	return nil
}

// EncodedLenRepeatedMessage returns the size of EncodeRepeatedMessage's output.
func EncodedLenRepeatedMessage[M Message](num FieldNumber, ms []M) int {
	n := KeySize(num) * len(ms)
	for _, m := range ms {
		n += BytesSize(m.EncodedLen())
	}
	return n
}

// EncodeGroup writes m as group field num.
func EncodeGroup(num FieldNumber, m Message, e *Encoder) {
	NewMessageEncoder(e).EncodeGroup(num, m)
}

// MergeGroup merges group field num into m.
func MergeGroup(num FieldNumber, wt WireType, m Message, d *Decoder, ctx DecodeContext) error {
	return NewMessageDecoder(d).MergeGroup(num, wt, m, ctx)
}

// EncodedLenGroup returns the size of EncodeGroup's output.
func EncodedLenGroup(num FieldNumber, m Message) int {
	return 2*KeySize(num) + m.EncodedLen()
}

// EncodeRepeatedGroup writes each element as its own group.
func EncodeRepeatedGroup[M Message](num FieldNumber, ms []M, e *Encoder) {
	me := NewMessageEncoder(e)
	for _, m := range ms {
		me.EncodeGroup(num, m)
	}
}

// MergeRepeatedGroup decodes one group into a new value and appends it.
func MergeRepeatedGroup[M Message](num FieldNumber, wt WireType, dst *[]M, newFn func() M, d *Decoder, ctx DecodeContext) error {
	if err := CheckWireType(WireStartGroup, wt); err != nil {
		return err
	}
	m := newFn()
	if err := MergeGroup(num, wt, m, d, ctx); err != nil {
		return err
	}
	*dst = append(*dst, m)
	return nil
}

// EncodedLenRepeatedGroup returns the size of EncodeRepeatedGroup's output.
func EncodedLenRepeatedGroup[M Message](num FieldNumber, ms []M) int {
	n := 2 * KeySize(num) * len(ms)
	for _, m := range ms {
		n += m.EncodedLen()
	}
	return n
}

// MessageCodec adapts a message type to FieldCodec so it can be used as a
// map value.
type MessageCodec[M Message] struct {
	New func() M
}

// NewMessageCodec returns a codec that allocates values with newFn.
func NewMessageCodec[M Message](newFn func() M) *MessageCodec[M] {
	return &MessageCodec[M]{New: newFn}
}

// Default returns a fresh empty message.
func (c *MessageCodec[M]) Default() M { return c.New() }

// IsDefault reports whether m is nil or encodes to nothing.
func (c *MessageCodec[M]) IsDefault(m M) bool {
	return isNilMessage(m) || m.EncodedLen() == 0
}

func (c *MessageCodec[M]) Encode(num FieldNumber, m M, e *Encoder) {
	if isNilMessage(m) {
		m = c.New()
	}
	EncodeMessage(num, m, e)
}

func (c *MessageCodec[M]) EncodedLen(num FieldNumber, m M) int {
	if isNilMessage(m) {
		return KeySize(num) + BytesSize(0)
	}
	return EncodedLenMessage(num, m)
}

// Merge merges into *dst, allocating it when nil.
func (c *MessageCodec[M]) Merge(wt WireType, dst *M, d *Decoder, ctx DecodeContext) error {
	if isNilMessage(*dst) {
		*dst = c.New()
	}
	return MergeMessage(wt, *dst, d, ctx)
}

func isNilMessage(m Message) bool {
	if m == nil {
		return true
	}
	v := reflect.ValueOf(m)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
