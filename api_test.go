package protocodec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/anirudhraja/protocodec/internal/testpb"
	"github.com/anirudhraja/protocodec/registry"
	"github.com/anirudhraja/protocodec/wire"
	"github.com/anirudhraja/protocodec/wkt"
)

func ptr[T any](v T) *T { return &v }

func newCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()
	repo, err := testpb.Repo()
	if err != nil {
		t.Fatalf("testpb.Repo: %v", err)
	}
	reg, err := registry.New(repo)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	c, err := New(reg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func chain(depth int) []byte {
	root := &testpb.Nested{}
	cur := root
	for i := 0; i < depth; i++ {
		cur.Child = &testpb.Nested{Value: ptr(int32(i))}
		cur = cur.Child
	}
	return wire.Marshal(root)
}

func TestCodec_Decode(t *testing.T) {
	c := newCodec(t)
	data := wire.Marshal(&testpb.Nested{
		Value:    ptr(int32(3)),
		Payload:  &testpb.NestedLabel{Label: "hello"},
		Priority: ptr(testpb.PriorityHigh),
	})

	for _, name := range []string{"Nested", "test.Nested", "protocodec.test.Nested", ".protocodec.test.Nested"} {
		t.Run(name, func(t *testing.T) {
			m, err := c.Decode(data, name)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if m.FullName() != "protocodec.test.Nested" {
				t.Errorf("FullName = %q", m.FullName())
			}
			if got := m.WhichOneof("payload"); got != "label" {
				t.Errorf("WhichOneof = %q", got)
			}
			if diff := cmp.Diff(data, wire.Marshal(m)); diff != "" {
				t.Errorf("re-encoding mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := c.Decode(data, "Missing"); err == nil || !strings.Contains(err.Error(), "message not found") {
		t.Errorf("Decode(Missing) error = %v", err)
	}
}

func TestCodec_Parse(t *testing.T) {
	c := newCodec(t)

	t.Run("empty data", func(t *testing.T) {
		got, err := c.Parse(nil, "Scalars")
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Parse(nil) = %v, want empty", got)
		}
	})

	t.Run("message", func(t *testing.T) {
		data := wire.Marshal(&testpb.Repeated{
			Ints:     []int32{1, 2},
			Children: []*testpb.Scalars{{Name: "a", Color: testpb.ColorRed}},
			Colors:   []testpb.Color{testpb.ColorBlue, 9},
		})
		got, err := c.Parse(data, "Repeated")
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		want := map[string]any{
			"ints":     []any{int32(1), int32(2)},
			"children": []any{map[string]any{"name": "a", "color": "RED"}},
			"colors":   []any{"BLUE", int32(9)},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Parse mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("decode error", func(t *testing.T) {
		_, err := c.Parse([]byte{0x72, 0x01, 0xFF}, "Scalars")
		var de *wire.DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("Parse error = %v, want *wire.DecodeError", err)
		}
		if !errors.Is(err, wire.ErrInvalidString) {
			t.Errorf("Parse error = %v, want %v", err, wire.ErrInvalidString)
		}
	})
}

func TestCodec_Marshal(t *testing.T) {
	c := newCodec(t)

	got, err := c.Marshal(map[string]any{
		"child":    map[string]any{"value": 1},
		"detail":   map[string]any{"int32": 150, "payload": []byte("p")},
		"priority": "LOW",
	}, "Nested")
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := wire.Marshal(&testpb.Nested{
		Child:    &testpb.Nested{Value: ptr(int32(1))},
		Payload:  &testpb.NestedDetail{Detail: &testpb.Scalars{Int32: 150, Payload: []byte("p")}},
		Priority: ptr(testpb.PriorityLow),
	})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Marshal mismatch (-want +got):\n%s", diff)
	}

	var back testpb.Nested
	if err := c.Unmarshal(got, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.GetPriority() != testpb.PriorityLow {
		t.Errorf("priority = %v", back.GetPriority())
	}

	tests := []struct {
		name    string
		data    map[string]any
		typ     string
		wantErr string
	}{
		{"unknown type", map[string]any{}, "Missing", "message not found: Missing"},
		{"unknown field", map[string]any{"nope": 1}, "Scalars", "failed to build protocodec.test.Scalars"},
		{"bad value", map[string]any{"int32": "x"}, "Scalars", "protocodec.test.Scalars.int32"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Marshal(tt.data, tt.typ)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Marshal error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCodec_Inspect(t *testing.T) {
	c := newCodec(t)
	data := wire.Marshal(&testpb.Scalars{Int32: 150, Name: "hi", Fixed32: 7})
	u, err := c.Inspect(data)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if diff := cmp.Diff([]wire.FieldNumber{3, 9, 14}, u.Numbers()); diff != "" {
		t.Errorf("Numbers mismatch (-want +got):\n%s", diff)
	}
	if v, err := u.Get(3)[0].Varint(); err != nil || v != 150 {
		t.Errorf("field 3 = (%d, %v)", v, err)
	}
	if v, err := u.Get(9)[0].Fixed32(); err != nil || v != 7 {
		t.Errorf("field 9 = (%d, %v)", v, err)
	}
	if diff := cmp.Diff(data, wire.Marshal(u)); diff != "" {
		t.Errorf("re-encoding mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.Inspect([]byte{0x0F}); err == nil {
		t.Error("Inspect of an invalid wire type succeeded")
	}
}

func TestCodec_RecursionLimit(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		depth   int
		wantErr bool
	}{
		{"default at limit", nil, wire.DefaultRecursionLimit, false},
		{"default past limit", nil, wire.DefaultRecursionLimit + 1, true},
		{"custom at limit", []Option{WithRecursionLimit(3)}, 3, false},
		{"custom past limit", []Option{WithRecursionLimit(3)}, 4, true},
		{"disabled", []Option{WithRecursionLimit(0)}, 500, false},
		{"options", []Option{WithUnmarshalOptions(wire.UnmarshalOptions{RecursionLimit: 2})}, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCodec(t, tt.opts...)
			_, err := c.Decode(chain(tt.depth), "Nested")
			if tt.wantErr {
				if !errors.Is(err, wire.ErrRecursionLimitReached) {
					t.Errorf("Decode error = %v, want %v", err, wire.ErrRecursionLimitReached)
				}
				return
			}
			if err != nil {
				t.Errorf("Decode: %v", err)
			}
		})
	}
}

func TestCodec_UnmarshalGoTypes(t *testing.T) {
	c := newCodec(t)

	ts := &wkt.Timestamp{Seconds: 1700000000, Nanos: 1}
	var got wkt.Timestamp
	if err := c.Unmarshal(wire.Marshal(ts), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != *ts {
		t.Errorf("Unmarshal = %+v, want %+v", got, *ts)
	}

	stream := append(wire.MarshalLengthDelimited(&wkt.StringValue{Value: "one"}), wire.MarshalLengthDelimited(&wkt.StringValue{Value: "two"})...)
	var first, second wkt.StringValue
	n, err := c.UnmarshalLengthDelimited(stream, &first)
	if err != nil {
		t.Fatalf("UnmarshalLengthDelimited: %v", err)
	}
	if _, err := c.UnmarshalLengthDelimited(stream[n:], &second); err != nil {
		t.Fatalf("UnmarshalLengthDelimited: %v", err)
	}
	if first.Value != "one" || second.Value != "two" {
		t.Errorf("frames = %q, %q", first.Value, second.Value)
	}
}

func TestCodec_NilRegistry(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil): %v", err)
	}
	if len(c.ListMessages()) != 13 {
		t.Errorf("ListMessages = %v, want the 13 well-known types", c.ListMessages())
	}
	if len(c.ListEnums()) != 0 {
		t.Errorf("ListEnums = %v", c.ListEnums())
	}
	if c.Registry() == nil {
		t.Error("Registry() = nil")
	}
	if _, err := c.Decode(nil, "Anything"); err == nil {
		t.Error("Decode without a schema succeeded")
	}
}

func TestCodec_Logger(t *testing.T) {
	var buf bytes.Buffer
	c := newCodec(t, WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	if _, err := c.Decode([]byte{0x18}, "Scalars"); err == nil {
		t.Fatal("Decode of truncated input succeeded")
	}

	out := buf.String()
	for _, want := range []string{
		`"level":"debug"`,
		`"message":"decode failed"`,
		`"type":"protocodec.test.Scalars"`,
		`"bytes":1`,
		`"error":"failed to decode Protobuf message: protocodec.test.Scalars.int32: buffer underflow"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
