package wkt

import (
	"fmt"
	"strings"

	"github.com/anirudhraja/protocodec/wire"
)

const typeURLPrefix = "type.googleapis.com/"

// TypeURL returns the type URL for a fully qualified message name.
func TypeURL(fullName string) string {
	return typeURLPrefix + fullName
}

// typeURLName extracts the fully qualified name from a type URL: the text
// after the last slash, which must not start with a dot.
func typeURLName(url string) (string, bool) {
	i := strings.LastIndexByte(url, '/')
	if i < 0 {
		return "", false
	}
	name := url[i+1:]
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	return name, true
}

// Resolver creates empty messages by fully qualified name.
type Resolver interface {
	New(fullName string) (wire.Message, error)
}

// Any carries an encoded message together with a URL naming its type.
type Any struct {
	TypeURL string
	Value   []byte
}

// NewAny packs m.
func NewAny(m NamedMessage) *Any {
	return &Any{
		TypeURL: TypeURL(m.FullName()),
		Value:   wire.Marshal(m),
	}
}

func (*Any) FullName() string { return googlePackage + ".Any" }

// MessageName returns the fully qualified name of the packed type.
func (a *Any) MessageName() string {
	name, _ := typeURLName(a.TypeURL)
	return name
}

// UnmarshalTo decodes the packed message into m after checking that the
// type URL names m's type.
func (a *Any) UnmarshalTo(m NamedMessage) error {
	expected := TypeURL(m.FullName())
	actual, ok := typeURLName(a.TypeURL)
	if !ok || actual != m.FullName() {
		m.Reset()
		return wire.WrapField(&wire.UnexpectedTypeURLError{Actual: a.TypeURL, Expected: expected}, a.FullName(), "type_url")
	}
	return wire.Unmarshal(a.Value, m)
}

// UnmarshalNew decodes the packed message into a new message obtained from r.
func (a *Any) UnmarshalNew(r Resolver) (wire.Message, error) {
	name, ok := typeURLName(a.TypeURL)
	if !ok {
		return nil, fmt.Errorf("invalid type URL %q", a.TypeURL)
	}
	m, err := r.New(name)
	if err != nil {
		return nil, err
	}
	if err := wire.Unmarshal(a.Value, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (a *Any) EncodeRaw(e *wire.Encoder) {
	if a.TypeURL != "" {
		wire.String.Encode(1, a.TypeURL, e)
	}
	if len(a.Value) != 0 {
		wire.Bytes.Encode(2, a.Value, e)
	}
}

func (a *Any) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	switch num {
	case 1:
		return wire.WrapField(wire.String.Merge(wt, &a.TypeURL, d, ctx), a.FullName(), "type_url")
	case 2:
		return wire.WrapField(wire.Bytes.Merge(wt, &a.Value, d, ctx), a.FullName(), "value")
	default:
		return wire.SkipField(num, wt, d, ctx)
	}
}

func (a *Any) EncodedLen() int {
	n := 0
	if a.TypeURL != "" {
		n += wire.String.EncodedLen(1, a.TypeURL)
	}
	if len(a.Value) != 0 {
		n += wire.Bytes.EncodedLen(2, a.Value)
	}
	return n
}

func (a *Any) Reset() {
	*a = Any{}
}
