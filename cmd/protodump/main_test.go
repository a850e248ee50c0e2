package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/anirudhraja/protocodec/internal/testpb"
	"github.com/anirudhraja/protocodec/wire"
	"github.com/anirudhraja/protocodec/wkt"
)

func ptr[T any](v T) *T { return &v }

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(testpb.SchemaYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runDump(t *testing.T, args []string, input []byte) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, bytes.NewReader(input), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func decodeDocs(t *testing.T, out string) []any {
	t.Helper()
	var docs []any
	dec := yaml.NewDecoder(strings.NewReader(out))
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs
		}
		if err != nil {
			t.Fatalf("output is not YAML: %v\n%s", err, out)
		}
		docs = append(docs, doc)
	}
}

func TestRunTyped(t *testing.T) {
	schemaPath := writeSchema(t)
	data := wire.Marshal(&testpb.Scalars{
		Int32:   150,
		Name:    "hi",
		Payload: []byte{1, 2},
		Color:   testpb.ColorGreen,
		Sint64:  -3,
	})

	out, _, err := runDump(t, []string{"--schema", schemaPath, "-t", "Scalars", "--verify"}, data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []any{map[string]any{
		"int32":   150,
		"sint64":  -3,
		"name":    "hi",
		"payload": "AQI=",
		"color":   "GREEN",
	}}
	if diff := cmp.Diff(want, decodeDocs(t, out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunNestedAndMaps(t *testing.T) {
	schemaPath := writeSchema(t)
	data := wire.Marshal(&testpb.Maps{
		Counts: map[string]int32{"a": 1},
		Names:  map[int32]string{7: "seven"},
		Items:  map[string]*testpb.Scalars{"k": {Bool: true}},
	})
	out, _, err := runDump(t, []string{"--schema", schemaPath, "--type", "protocodec.test.Maps"}, data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []any{map[string]any{
		"counts": map[string]any{"a": 1},
		"names":  map[string]any{"7": "seven"},
		"items":  map[string]any{"k": map[string]any{"bool": true}},
	}}
	if diff := cmp.Diff(want, decodeDocs(t, out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunUntyped(t *testing.T) {
	data := wire.Marshal(&testpb.Scalars{Int32: 150, Name: "hi", Fixed64: 9, Payload: []byte{0xFF}})
	out, _, err := runDump(t, nil, data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []any{map[string]any{
		"3":  []any{map[string]any{"varint": 150}},
		"10": []any{map[string]any{"fixed64": 9}},
		"14": []any{map[string]any{"bytes": "hi"}},
		"15": []any{map[string]any{"bytes": "ff"}},
	}}
	if diff := cmp.Diff(want, decodeDocs(t, out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunUntypedGroup(t *testing.T) {
	// Field 5 is a group holding field 1 = 2.
	out, _, err := runDump(t, []string{"--hex"}, []byte("2b 08 02 2c\n"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []any{map[string]any{
		"5": []any{map[string]any{"group": map[string]any{"1": []any{map[string]any{"varint": 2}}}}},
	}}
	if diff := cmp.Diff(want, decodeDocs(t, out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunDelimited(t *testing.T) {
	schemaPath := writeSchema(t)
	var data []byte
	data = append(data, wire.MarshalLengthDelimited(&testpb.Scalars{Int32: 1})...)
	data = append(data, wire.MarshalLengthDelimited(&testpb.Scalars{Name: "two"})...)

	out, _, err := runDump(t, []string{"--schema", schemaPath, "-t", "Scalars", "--delimited"}, data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []any{
		map[string]any{"int32": 1},
		map[string]any{"name": "two"},
	}
	if diff := cmp.Diff(want, decodeDocs(t, out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	truncated := append(wire.MarshalLengthDelimited(&testpb.Scalars{Int32: 1}), 0x05, 0x08)
	_, _, err = runDump(t, []string{"--delimited"}, truncated)
	if !errors.Is(err, wire.ErrBufferUnderflow) || !strings.HasPrefix(err.Error(), "message 1: ") {
		t.Errorf("truncated stream error = %v", err)
	}
}

func TestRunText(t *testing.T) {
	schemaPath := writeSchema(t)
	data := wire.Marshal(&testpb.Nested{
		Child:   &testpb.Nested{Value: ptr(int32(4))},
		Value:   ptr(int32(3)),
		Payload: &testpb.NestedLabel{Label: "x"},
	})
	out, _, err := runDump(t, []string{"--schema", schemaPath, "-t", "Nested", "-o", "text"}, data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "child:\n  value: 4\nlabel: x\nvalue: 3\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestRunWellKnownType(t *testing.T) {
	data := wire.Marshal(&wkt.Timestamp{Seconds: 1700000000})
	out, _, err := runDump(t, []string{"-t", "google.protobuf.Timestamp"}, data)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "2023-11-14T22:13:20Z") {
		t.Errorf("output = %q", out)
	}
}

func TestRunInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.bin")
	if err := os.WriteFile(path, []byte{0x08, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := runDump(t, []string{path}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]any{map[string]any{"1": []any{map[string]any{"varint": 1}}}}, decodeDocs(t, out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunVerifyMismatch(t *testing.T) {
	schemaPath := writeSchema(t)
	// Field 14 before field 3 decodes fine but re-encodes in field order.
	data := []byte{0x72, 0x02, 'h', 'i', 0x18, 0x96, 0x01}
	if _, _, err := runDump(t, []string{"--schema", schemaPath, "-t", "Scalars"}, data); err != nil {
		t.Fatalf("run without --verify: %v", err)
	}
	_, _, err := runDump(t, []string{"--schema", schemaPath, "-t", "Scalars", "--verify"}, data)
	if err == nil || !strings.Contains(err.Error(), "re-encoded message differs from input") {
		t.Errorf("run --verify error = %v", err)
	}
}

func TestRunRecursionLimit(t *testing.T) {
	schemaPath := writeSchema(t)
	data := wire.Marshal(&testpb.Nested{Child: &testpb.Nested{Child: &testpb.Nested{Value: ptr(int32(1))}}})
	_, _, err := runDump(t, []string{"--schema", schemaPath, "-t", "Nested", "--recursion-limit", "1"}, data)
	if !errors.Is(err, wire.ErrRecursionLimitReached) {
		t.Errorf("error = %v, want %v", err, wire.ErrRecursionLimitReached)
	}
	if _, _, err := runDump(t, []string{"--schema", schemaPath, "-t", "Nested", "--recursion-limit", "0"}, data); err != nil {
		t.Errorf("run without a limit: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	schemaPath := writeSchema(t)
	tests := []struct {
		name    string
		args    []string
		input   []byte
		wantErr string
	}{
		{"unknown format", []string{"-o", "json"}, nil, `unknown format "json"`},
		{"unknown flag", []string{"--nope"}, nil, "unknown flag: --nope"},
		{"bad log level", []string{"--log-level", "loud"}, nil, `invalid log level "loud"`},
		{"extra argument", []string{"a", "b"}, nil, "unexpected argument: b"},
		{"missing file", []string{filepath.Join(t.TempDir(), "missing.bin")}, nil, "no such file"},
		{"invalid hex", []string{"--hex"}, []byte("zz"), "invalid hex input"},
		{"too large", []string{"--max-size", "2"}, []byte{0x08, 0x01, 0x00}, "input exceeds 2 bytes"},
		{"missing schema", []string{"--schema", filepath.Join(t.TempDir(), "none.yaml")}, nil, "path does not exist"},
		{"unknown type", []string{"-t", "Missing"}, nil, "unknown type: message Missing"},
		{"invalid UTF-8", []string{"--schema", schemaPath, "-t", "Scalars"}, []byte{0x72, 0x01, 0xFF},
			"protocodec.test.Scalars.name: invalid string value: data is not UTF-8 encoded"},
		{"invalid wire type", nil, []byte{0x0F}, "invalid wire type value: 7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runDump(t, tt.args, tt.input)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("run error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	_, stderr, err := runDump(t, []string{"--help"}, nil)
	if err != nil {
		t.Fatalf("run --help: %v", err)
	}
	for _, want := range []string{"Usage: protodump", "--schema", "--recursion-limit"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("usage missing %q:\n%s", want, stderr)
		}
	}
}

func TestRunLogging(t *testing.T) {
	t.Setenv("PROTOCODEC_LOG_LEVEL", "")
	_, stderr, err := runDump(t, []string{"--log-level", "debug"}, []byte{0x08, 0x01})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr, "read input") || !strings.Contains(stderr, "registry built") {
		t.Errorf("debug log missing expected events:\n%s", stderr)
	}

	_, stderr, err = runDump(t, nil, []byte{0x08, 0x01})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stderr != "" {
		t.Errorf("default log level wrote %q", stderr)
	}

	t.Setenv("PROTOCODEC_LOG_LEVEL", "debug")
	_, stderr, err = runDump(t, nil, []byte{0x08, 0x01})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr, "read input") {
		t.Errorf("PROTOCODEC_LOG_LEVEL=debug did not log:\n%s", stderr)
	}
}
