package wire

import "slices"

// Map encodes map<K, V> fields. Each entry is written as an embedded
// message with the key as field 1 and the value as field 2.
type Map[K comparable, V any] struct {
	Key   KeyCodec[K]
	Value FieldCodec[V]

	// NewKey and NewValue return what an entry starts from before
	// decoding. Nil means the zero value.
	NewKey   func() K
	NewValue func() V
	// IsDefaultValue reports whether a value can be omitted from its entry.
	// Nil means Value.IsDefault.
	IsDefaultValue func(V) bool
}

// NewMap returns a map codec using the value codec's own default. Message
// value codecs supply fresh messages through their Default method.
func NewMap[K comparable, V any](key KeyCodec[K], value FieldCodec[V]) *Map[K, V] {
	m := &Map[K, V]{Key: key, Value: value, NewKey: keyDefault(key)}
	if dv, ok := value.(interface{ Default() V }); ok {
		m.NewValue = dv.Default
	}
	return m
}

func keyDefault[K comparable](key KeyCodec[K]) func() K {
	if dk, ok := key.(interface{ Default() K }); ok {
		return dk.Default
	}
	return nil
}

// NewMapWithDefault returns a map codec whose value default is def instead
// of the zero value, as for proto2 enums whose first value is not zero.
func NewMapWithDefault[K comparable, V comparable](key KeyCodec[K], value FieldCodec[V], def V) *Map[K, V] {
	return &Map[K, V]{
		Key:            key,
		Value:          value,
		NewKey:         keyDefault(key),
		NewValue:       func() V { return def },
		IsDefaultValue: func(v V) bool { return v == def },
	}
}

// MapEncoder handles map field encoding
type MapEncoder[K comparable, V any] struct {
	codec   *Map[K, V]
	encoder *Encoder
}

// MapDecoder handles map field decoding
type MapDecoder[K comparable, V any] struct {
	codec   *Map[K, V]
	decoder *Decoder
}

// NewMapEncoder creates a new map encoder
func NewMapEncoder[K comparable, V any](c *Map[K, V], e *Encoder) *MapEncoder[K, V] {
	return &MapEncoder[K, V]{codec: c, encoder: e}
}

// NewMapDecoder creates a new map decoder
func NewMapDecoder[K comparable, V any](c *Map[K, V], d *Decoder) *MapDecoder[K, V] {
	return &MapDecoder[K, V]{codec: c, decoder: d}
}

// ENCODER METHODS

// EncodeEntry writes one entry as field num.
func (me *MapEncoder[K, V]) EncodeEntry(num FieldNumber, k K, v V) {
	c, e := me.codec, me.encoder
	e.EncodeKey(num, WireBytes)
	e.EncodeVarint(uint64(c.entryLen(k, v)))
	if !c.Key.IsDefault(k) {
		c.Key.Encode(1, k, e)
	}
	if !c.isDefaultValue(v) {
		c.Value.Encode(2, v, e)
	}
}

// DECODER METHODS

// MergeEntry decodes one entry and stores it in *dst. A later entry for
// the same key replaces an earlier one.
func (md *MapDecoder[K, V]) MergeEntry(wt WireType, dst *map[K]V, ctx DecodeContext) error {
	c := md.codec
	if err := CheckWireType(WireBytes, wt); err != nil {
		return err
	}
	if err := ctx.LimitReached(); err != nil {
		return err
	}
	k, v := c.newKey(), c.newValue()
	err := MergeLoop(md.decoder, ctx.EnterRecursion(), func(d *Decoder, ctx DecodeContext) error {
		num, wt, err := d.DecodeKey()
		if err != nil {
			return err
		}
		switch num {
		case 1:
			return c.Key.Merge(wt, &k, d, ctx)
		case 2:
			return c.Value.Merge(wt, &v, d, ctx)
		default:
			return SkipField(num, wt, d, ctx)
		}
	})
	if err != nil {
		return err
	}
	if *dst == nil {
		*dst = make(map[K]V)
	}
	(*dst)[k] = v
	return nil
}

// Encode writes every entry of m as field num, in ascending key order.
func (c *Map[K, V]) Encode(num FieldNumber, m map[K]V, e *Encoder) {
	if len(m) == 0 {
		return
	}
	me := NewMapEncoder(c, e)
	for _, k := range c.sortedKeys(m) {
		me.EncodeEntry(num, k, m[k])
	}
}

// EncodedLen returns the size of Encode's output.
func (c *Map[K, V]) EncodedLen(num FieldNumber, m map[K]V) int {
	n := KeySize(num) * len(m)
	for k, v := range m {
		n += BytesSize(c.entryLen(k, v))
	}
	return n
}

// Merge decodes one entry into *dst.
func (c *Map[K, V]) Merge(wt WireType, dst *map[K]V, d *Decoder, ctx DecodeContext) error {
	return NewMapDecoder(c, d).MergeEntry(wt, dst, ctx)
}

func (c *Map[K, V]) entryLen(k K, v V) int {
	n := 0
	if !c.Key.IsDefault(k) {
		n += c.Key.EncodedLen(1, k)
	}
	if !c.isDefaultValue(v) {
		n += c.Value.EncodedLen(2, v)
	}
	return n
}

func (c *Map[K, V]) isDefaultValue(v V) bool {
	if c.IsDefaultValue != nil {
		return c.IsDefaultValue(v)
	}
	return c.Value.IsDefault(v)
}

func (c *Map[K, V]) newKey() K {
	if c.NewKey != nil {
		return c.NewKey()
	}
	var zero K
	return zero
}

func (c *Map[K, V]) newValue() V {
	if c.NewValue != nil {
		return c.NewValue()
	}
	var zero V
	return zero
}

func (c *Map[K, V]) sortedKeys(m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b K) int {
		switch {
		case c.Key.Less(a, b):
			return -1
		case c.Key.Less(b, a):
			return 1
		default:
			return 0
		}
	})
	return keys
}
