package wire

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/encoding/protowire"
)

func entry(num protowire.Number, body []byte) []byte {
	b := protowire.AppendTag(nil, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

func mergeMap[K comparable, V any](t *testing.T, c *Map[K, V], b []byte, ctx DecodeContext) (map[K]V, error) {
	t.Helper()
	var m map[K]V
	d := NewDecoder(b)
	for !d.Done() {
		_, wt, err := d.DecodeKey()
		if err != nil {
			return m, err
		}
		if err := c.Merge(wt, &m, d, ctx); err != nil {
			return m, err
		}
	}
	return m, nil
}

func TestMapEncodeSortedAndOmitsDefaults(t *testing.T) {
	c := NewMap[string, int32](String, Int32)
	e := NewEncoder()
	c.Encode(1, map[string]int32{"b": 2, "a": 0, "": 7}, e)

	var want []byte
	// "" sorts first and has no key field.
	want = append(want, entry(1, protowire.AppendVarint(protowire.AppendTag(nil, 2, protowire.VarintType), 7))...)
	// "a" maps to the default value, so only the key is written.
	want = append(want, entry(1, protowire.AppendString(protowire.AppendTag(nil, 1, protowire.BytesType), "a"))...)
	b := protowire.AppendString(protowire.AppendTag(nil, 1, protowire.BytesType), "b")
	b = protowire.AppendVarint(protowire.AppendTag(b, 2, protowire.VarintType), 2)
	want = append(want, entry(1, b)...)

	if diff := cmp.Diff(want, e.Bytes()); diff != "" {
		t.Errorf("Encode mismatch (-want +got):\n%s", diff)
	}
	if got := c.EncodedLen(1, map[string]int32{"b": 2, "a": 0, "": 7}); got != len(want) {
		t.Errorf("EncodedLen = %d, want %d", got, len(want))
	}
}

func TestMapMerge(t *testing.T) {
	c := NewMap[int32, string](Int32, String)

	kv := func(k int32, v string) []byte {
		b := protowire.AppendVarint(protowire.AppendTag(nil, 1, protowire.VarintType), uint64(k))
		return protowire.AppendString(protowire.AppendTag(b, 2, protowire.BytesType), v)
	}

	tests := []struct {
		name  string
		input []byte
		want  map[int32]string
	}{
		{
			name:  "last duplicate wins",
			input: append(entry(1, kv(1, "first")), entry(1, kv(1, "second"))...),
			want:  map[int32]string{1: "second"},
		},
		{
			name:  "missing key and value use defaults",
			input: entry(1, nil),
			want:  map[int32]string{0: ""},
		},
		{
			name: "value before key",
			input: entry(1, append(
				protowire.AppendString(protowire.AppendTag(nil, 2, protowire.BytesType), "v"),
				protowire.AppendVarint(protowire.AppendTag(nil, 1, protowire.VarintType), 9)...)),
			want: map[int32]string{9: "v"},
		},
		{
			name:  "unknown entry field skipped",
			input: entry(1, protowire.AppendFixed32(protowire.AppendTag(kv(3, "x"), 5, protowire.Fixed32Type), 1)),
			want:  map[int32]string{3: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mergeMap(t, c, tt.input, DefaultDecodeContext())
			if err != nil {
				t.Fatalf("Merge: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("map mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMapWithDefault(t *testing.T) {
	const def int32 = 2
	c := NewMapWithDefault[string, int32](String, Enum, def)

	e := NewEncoder()
	c.Encode(1, map[string]int32{"k": def}, e)
	want := entry(1, protowire.AppendString(protowire.AppendTag(nil, 1, protowire.BytesType), "k"))
	if diff := cmp.Diff(want, e.Bytes()); diff != "" {
		t.Errorf("Encode mismatch (-want +got):\n%s", diff)
	}

	// Zero is not the default here, so it must be written.
	e.Reset()
	c.Encode(1, map[string]int32{"k": 0}, e)
	if e.Len() == len(want) {
		t.Errorf("zero value was omitted: %x", e.Bytes())
	}

	got, err := mergeMap(t, c, want, DefaultDecodeContext())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if diff := cmp.Diff(map[string]int32{"k": def}, got); diff != "" {
		t.Errorf("decoded map mismatch (-want +got):\n%s", diff)
	}
}

func TestMapMessageValues(t *testing.T) {
	c := NewMap[string, *UnknownFields](String, NewMessageCodec(func() *UnknownFields { return new(UnknownFields) }))

	v := new(UnknownFields)
	v.AddVarint(4, 1)
	m := map[string]*UnknownFields{"x": v, "nil": nil}

	e := NewEncoder()
	c.Encode(1, m, e)
	if e.Len() != c.EncodedLen(1, m) {
		t.Fatalf("EncodedLen = %d, encoded %d", c.EncodedLen(1, m), e.Len())
	}

	got, err := mergeMap(t, c, e.Bytes(), DefaultDecodeContext())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got["nil"] == nil || got["nil"].Len() != 0 {
		t.Errorf("value for absent entry = %v, want empty message", got["nil"])
	}
	if !got["x"].Equal(*v) {
		t.Errorf("value for x did not round trip")
	}
}

func TestMapEntryCountsAgainstRecursionLimit(t *testing.T) {
	c := NewMap[int32, int32](Int32, Int32)
	_, err := mergeMap(t, c, entry(1, nil), NewDecodeContext(0))
	if !errors.Is(err, ErrRecursionLimitReached) {
		t.Errorf("Merge error = %v, want %v", err, ErrRecursionLimitReached)
	}
}

func TestMapWrongWireType(t *testing.T) {
	c := NewMap[int32, int32](Int32, Int32)
	_, err := mergeMap(t, c, []byte{0x08, 0x01}, DefaultDecodeContext())
	var wtErr *UnexpectedWireTypeError
	if !errors.As(err, &wtErr) {
		t.Errorf("Merge error = %v, want *UnexpectedWireTypeError", err)
	}
}
