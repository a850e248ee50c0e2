// protodump decodes Protocol Buffers binary data and prints it.
//
// With --schema and --type the input is decoded as the named message and
// printed by field name. Without a type every field is printed by number
// and wire type, which works on any well-formed input.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/anirudhraja/protocodec"
	"github.com/anirudhraja/protocodec/dynamic"
	"github.com/anirudhraja/protocodec/registry"
	"github.com/anirudhraja/protocodec/schema"
	"github.com/anirudhraja/protocodec/wire"
	"github.com/anirudhraja/protocodec/wkt"
)

const defaultMaxSize = 64 << 20

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	schemaPath     string
	typeName       string
	delimited      bool
	hexInput       bool
	format         string
	verify         bool
	recursionLimit int
	maxSize        int64
	logLevel       string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("protodump", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.schemaPath, "schema", "", "YAML schema file or directory")
	flagSet.StringVarP(&opts.typeName, "type", "t", "", "message type to decode as (requires --schema for non well-known types)")
	flagSet.BoolVar(&opts.delimited, "delimited", false, "input is a stream of length-delimited messages")
	flagSet.BoolVar(&opts.hexInput, "hex", false, "input is hex text instead of raw bytes")
	flagSet.StringVarP(&opts.format, "format", "o", "yaml", "output format: yaml or text")
	flagSet.BoolVar(&opts.verify, "verify", false, "re-encode each message and fail unless it matches the input")
	flagSet.IntVar(&opts.recursionLimit, "recursion-limit", wire.DefaultRecursionLimit, "maximum message nesting depth, 0 for no limit")
	flagSet.Int64Var(&opts.maxSize, "max-size", defaultMaxSize, "maximum input size in bytes")
	flagSet.StringVar(&opts.logLevel, "log-level", defaultLogLevel(), "log level: trace, debug, info, warn, error")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: protodump [flags] [file]\n\nReads from stdin when no file or - is given.\n\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if opts.format != "yaml" && opts.format != "text" {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	logger, err := initLogger(stderr, opts.logLevel)
	if err != nil {
		return err
	}

	input := "-"
	switch rest := flagSet.Args(); len(rest) {
	case 0:
	case 1:
		input = rest[0]
	default:
		return fmt.Errorf("unexpected argument: %s", rest[1])
	}
	data, err := readInput(input, stdin, opts)
	if err != nil {
		return err
	}
	logger.Debug().Str("input", input).Int("bytes", len(data)).Msg("read input")

	var repo *schema.ProtoRepo
	if opts.schemaPath != "" {
		if repo, err = schema.LoadRepo(opts.schemaPath); err != nil {
			return err
		}
	}
	reg, err := registry.New(repo, registry.WithLogger(logger))
	if err != nil {
		return err
	}
	codec, err := protocodec.New(reg,
		protocodec.WithLogger(logger),
		protocodec.WithRecursionLimit(opts.recursionLimit),
	)
	if err != nil {
		return err
	}

	d := &dumper{codec: codec, opts: opts, out: stdout, logger: logger}
	return d.dump(data)
}

// defaultLogLevel reads PROTOCODEC_LOG_LEVEL, falling back to warn.
func defaultLogLevel() string {
	if v := os.Getenv("PROTOCODEC_LOG_LEVEL"); v != "" {
		return v
	}
	return "warn"
}

// initLogger writes human-readable logs to w, which keeps stdout free for
// decoded output.
func initLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", "protodump").Logger(), nil
}

func readInput(path string, stdin io.Reader, opts options) ([]byte, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, opts.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > opts.maxSize {
		return nil, fmt.Errorf("input exceeds %d bytes", opts.maxSize)
	}
	if opts.hexInput {
		data, err = hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
		if err != nil {
			return nil, fmt.Errorf("invalid hex input: %w", err)
		}
	}
	return data, nil
}

type dumper struct {
	codec  *protocodec.Codec
	opts   options
	out    io.Writer
	logger zerolog.Logger
}

func (d *dumper) dump(data []byte) error {
	if !d.opts.delimited {
		return d.dumpOne(data, -1)
	}
	for i := 0; len(data) > 0; i++ {
		length, n, err := wire.DecodeLengthDelimiter(data)
		if err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		if length > len(data)-n {
			return fmt.Errorf("message %d: %w", i, wire.ErrBufferUnderflow)
		}
		if err := d.dumpOne(data[n:n+length], i); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		data = data[n+length:]
	}
	return nil
}

func (d *dumper) dumpOne(data []byte, index int) error {
	var (
		m   wire.Message
		doc any
	)
	if d.opts.typeName == "" {
		u, err := d.codec.Inspect(data)
		if err != nil {
			return err
		}
		m, doc = u, renderUnknown(u)
	} else {
		msg, err := d.newMessage()
		if err != nil {
			return err
		}
		if err := d.codec.Unmarshal(data, msg); err != nil {
			return err
		}
		m, doc = msg, renderMessage(msg)
	}

	if d.opts.verify {
		if out := wire.Marshal(m); !bytes.Equal(out, data) {
			return fmt.Errorf("re-encoded message differs from input: %d bytes in, %d bytes out", len(data), len(out))
		}
		d.logger.Debug().Int("message", index).Msg("verified round trip")
	}
	return d.write(doc, index)
}

func (d *dumper) newMessage() (wire.Message, error) {
	reg := d.codec.Registry()
	if fullName, _, err := reg.GetMessage(d.opts.typeName); err == nil {
		return reg.NewDynamic(fullName)
	}
	return reg.New(d.opts.typeName)
}

func (d *dumper) write(doc any, index int) error {
	if d.opts.format == "yaml" {
		if index > 0 {
			if _, err := io.WriteString(d.out, "---\n"); err != nil {
				return err
			}
		}
		enc := yaml.NewEncoder(d.out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	if index >= 0 {
		fmt.Fprintf(d.out, "# message %d\n", index)
	}
	writeText(d.out, doc, "")
	return nil
}

func writeText(w io.Writer, doc any, indent string) {
	switch t := doc.(type) {
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(t)) {
			writeTextEntry(w, k, t[k], indent)
		}
	case []any:
		for _, e := range t {
			writeTextEntry(w, "-", e, indent)
		}
	default:
		fmt.Fprintf(w, "%s%v\n", indent, t)
	}
}

func writeTextEntry(w io.Writer, key string, v any, indent string) {
	switch v.(type) {
	case map[string]any, []any:
		fmt.Fprintf(w, "%s%s:\n", indent, key)
		writeText(w, v, indent+"  ")
	default:
		fmt.Fprintf(w, "%s%s: %v\n", indent, key, v)
	}
}

// renderMessage converts a decoded message into plain maps, lists and
// scalars that both output formats can print.
func renderMessage(m wire.Message) any {
	switch t := m.(type) {
	case *dynamic.Message:
		return renderValue(t.ToMap())
	case *wkt.Timestamp:
		return t.AsTime().Format(time.RFC3339Nano)
	case *wkt.Duration:
		return t.AsDuration().String()
	case *wire.UnknownFields:
		return renderUnknown(t)
	}
	return fmt.Sprintf("%+v", m)
}

func renderValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = renderValue(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = renderValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = renderValue(e)
		}
		return out
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	case wire.Message:
		return renderMessage(t)
	}
	return v
}

func renderUnknown(u *wire.UnknownFields) any {
	out := make(map[string]any)
	u.Range(func(f wire.UnknownField) bool {
		key := fmt.Sprintf("%d", f.Number)
		list, _ := out[key].([]any)
		out[key] = append(list, renderUnknownField(f))
		return true
	})
	return out
}

func renderUnknownField(f wire.UnknownField) any {
	switch f.WireType {
	case wire.WireVarint:
		v, _ := f.Varint()
		return map[string]any{"varint": v}
	case wire.WireFixed32:
		v, _ := f.Fixed32()
		return map[string]any{"fixed32": v}
	case wire.WireFixed64:
		v, _ := f.Fixed64()
		return map[string]any{"fixed64": v}
	case wire.WireStartGroup:
		g, err := f.Group()
		if err != nil {
			return map[string]any{"group": hex.EncodeToString(f.Payload())}
		}
		return map[string]any{"group": renderUnknown(&g)}
	}
	b, _ := f.Bytes()
	if utf8.Valid(b) {
		return map[string]any{"bytes": string(b)}
	}
	return map[string]any{"bytes": hex.EncodeToString(b)}
}
