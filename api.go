// Package protocodec encodes and decodes the Protocol Buffers binary wire
// format. Messages are either Go types implementing wire.Message or
// dynamic messages described by a schema registry.
package protocodec

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/anirudhraja/protocodec/dynamic"
	"github.com/anirudhraja/protocodec/registry"
	"github.com/anirudhraja/protocodec/wire"
)

// ===== SCHEMA-AWARE API =====

// Codec provides schema-aware protobuf operations without generated code
type Codec struct {
	registry *registry.Registry
	opts     wire.UnmarshalOptions
	logger   zerolog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger for decode and encode events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Codec) { c.logger = l }
}

// WithUnmarshalOptions replaces the decode options.
func WithUnmarshalOptions(o wire.UnmarshalOptions) Option {
	return func(c *Codec) { c.opts = o }
}

// WithRecursionLimit bounds message nesting while decoding. Zero or less
// removes the bound.
func WithRecursionLimit(limit int) Option {
	return func(c *Codec) {
		c.opts.RecursionLimit = limit
		c.opts.DisableRecursionLimit = limit <= 0
	}
}

// New creates a Codec backed by reg. A nil registry knows only the
// well-known types.
func New(reg *registry.Registry, opts ...Option) (*Codec, error) {
	if reg == nil {
		var err error
		if reg, err = registry.New(nil); err != nil {
			return nil, err
		}
	}
	c := &Codec{
		registry: reg,
		opts:     wire.DefaultUnmarshalOptions(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Decode decodes protobuf bytes into a dynamic message of messageType.
func (c *Codec) Decode(data []byte, messageType string) (*dynamic.Message, error) {
	fullName, _, err := c.registry.GetMessage(messageType)
	if err != nil {
		return nil, err
	}
	m, err := c.registry.NewDynamic(fullName)
	if err != nil {
		return nil, err
	}
	if err := c.opts.Unmarshal(data, m); err != nil {
		c.logger.Debug().Err(err).Str("type", fullName).Int("bytes", len(data)).Msg("decode failed")
		return nil, err
	}
	c.logger.Trace().Str("type", fullName).Int("bytes", len(data)).Msg("decoded message")
	return m, nil
}

// Parse decodes protobuf bytes and renders the message as a map keyed by
// field name.
func (c *Codec) Parse(data []byte, messageType string) (map[string]any, error) {
	m, err := c.Decode(data, messageType)
	if err != nil {
		return nil, err
	}
	return m.ToMap(), nil
}

// Marshal encodes a map to protobuf bytes using schema information
func (c *Codec) Marshal(data map[string]any, messageType string) ([]byte, error) {
	fullName, _, err := c.registry.GetMessage(messageType)
	if err != nil {
		return nil, err
	}
	m, err := c.registry.NewDynamic(fullName)
	if err != nil {
		return nil, err
	}
	if err := m.FromMap(data); err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", fullName, err)
	}
	out := wire.Marshal(m)
	c.logger.Trace().Str("type", fullName).Int("bytes", len(out)).Msg("encoded message")
	return out, nil
}

// Unmarshal decodes protobuf bytes into m with the codec's options. On
// failure m is left empty.
func (c *Codec) Unmarshal(data []byte, m wire.Message) error {
	return c.opts.Unmarshal(data, m)
}

// UnmarshalLengthDelimited decodes one length-prefixed message from data
// and returns the number of bytes consumed.
func (c *Codec) UnmarshalLengthDelimited(data []byte, m wire.Message) (int, error) {
	return c.opts.UnmarshalLengthDelimited(data, m)
}

// Inspect decodes data without a schema. Every field is returned as an
// unknown field, in the order of field numbers.
func (c *Codec) Inspect(data []byte) (*wire.UnknownFields, error) {
	u := &wire.UnknownFields{}
	if err := c.opts.Unmarshal(data, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ===== REGISTRY ACCESS =====

func (c *Codec) Registry() *registry.Registry { return c.registry }
func (c *Codec) ListMessages() []string       { return c.registry.ListMessages() }
func (c *Codec) ListEnums() []string          { return c.registry.ListEnums() }
