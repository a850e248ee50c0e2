package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Decode failure causes.
var (
	ErrLengthDelimiterTooLarge = errors.New("length delimiter exceeds maximum usize value")
	ErrInvalidVarint           = errors.New("invalid varint")
	ErrRecursionLimitReached   = errors.New("recursion limit reached")
	ErrInvalidTag              = errors.New("invalid tag value: 0")
	ErrBufferUnderflow         = errors.New("buffer underflow")
	ErrDelimitedLengthExceeded = errors.New("delimited length exceeded")
	ErrUnexpectedEndGroupTag   = errors.New("unexpected end group tag")
	ErrInvalidString           = errors.New("invalid string value: data is not UTF-8 encoded")
)

// InvalidWireTypeError reports a key whose low three bits are 6 or 7.
type InvalidWireTypeError struct {
	Value uint64
}

func (e *InvalidWireTypeError) Error() string {
	return fmt.Sprintf("invalid wire type value: %d", e.Value)
}

// InvalidKeyError reports a key that does not fit in 32 bits.
type InvalidKeyError struct {
	Key uint64
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key value: %d", e.Key)
}

// UnexpectedWireTypeError reports a field encoded with the wrong wire type
// for its declared type.
type UnexpectedWireTypeError struct {
	Actual   WireType
	Expected WireType
}

func (e *UnexpectedWireTypeError) Error() string {
	return fmt.Sprintf("invalid wire type: %v (expected %v)", e.Actual, e.Expected)
}

// UnexpectedTypeURLError is returned when unpacking an Any into the wrong type.
type UnexpectedTypeURLError struct {
	Actual   string
	Expected string
}

func (e *UnexpectedTypeURLError) Error() string {
	return fmt.Sprintf("expected type URL: %q (got: %q)", e.Expected, e.Actual)
}

// PathSegment names one field on the way from the root message to the
// field that failed to decode.
type PathSegment struct {
	Message string
	Field   string
}

func (s PathSegment) String() string {
	return s.Message + "." + s.Field
}

// DecodeError is the error returned from every top-level decode. Path is
// ordered root first.
type DecodeError struct {
	Err  error
	Path []PathSegment
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("failed to decode Protobuf message: ")
	for _, seg := range e.Path {
		b.WriteString(seg.String())
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// WrapField records that err happened while decoding field of message.
// Calls made as the error unwinds add outer segments in front, so the final
// path reads from the root message down.
func WrapField(err error, message, field string) error {
	if err == nil {
		return nil
	}
	seg := PathSegment{Message: message, Field: field}

	var de *DecodeError
	if errors.As(err, &de) {
		return &DecodeError{
			Err:  de.Err,
			Path: append([]PathSegment{seg}, de.Path...),
		}
	}

	return &DecodeError{
		Err:  err,
		Path: []PathSegment{seg},
	}
}

// asDecodeError makes sure a top-level failure is a *DecodeError.
func asDecodeError(err error) error {
	if err == nil {
		return nil
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de
	}
	return &DecodeError{Err: err}
}

// EncodeError reports a destination buffer too small for the message.
type EncodeError struct {
	Required  int
	Remaining int
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode Protobuf message; insufficient buffer capacity (required: %d, remaining: %d)",
		e.Required, e.Remaining)
}
