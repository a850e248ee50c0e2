package wire

import (
	"fmt"
	"math"
)

// ===== PROTOBUF WIRE FORMAT TYPES =====

// WireType represents protobuf wire format types
type WireType int32

const (
	WireVarint     WireType = 0 // int32, int64, uint32, uint64, sint32, sint64, bool, enum
	WireFixed64    WireType = 1 // fixed64, sfixed64, double
	WireBytes      WireType = 2 // string, bytes, embedded messages, packed repeated fields
	WireStartGroup WireType = 3 // legacy group start
	WireEndGroup   WireType = 4 // legacy group end
	WireFixed32    WireType = 5 // fixed32, sfixed32, float
)

// String returns the wire type name as used in .proto documentation.
func (wt WireType) String() string {
	switch wt {
	case WireVarint:
		return "Varint"
	case WireFixed64:
		return "SixtyFourBit"
	case WireBytes:
		return "LengthDelimited"
	case WireStartGroup:
		return "StartGroup"
	case WireEndGroup:
		return "EndGroup"
	case WireFixed32:
		return "ThirtyTwoBit"
	default:
		return fmt.Sprintf("WireType(%d)", int32(wt))
	}
}

// FieldNumber represents a protobuf field number
type FieldNumber int32

const (
	MinFieldNumber FieldNumber = 1
	MaxFieldNumber FieldNumber = 1<<29 - 1
)

// IsValid reports whether num may appear in an encoded key.
func (num FieldNumber) IsValid() bool {
	return num >= MinFieldNumber && num <= MaxFieldNumber
}

// Tag represents a protobuf field key (field number + wire type)
type Tag uint64

// MakeTag creates a tag from field number and wire type
func MakeTag(fieldNumber FieldNumber, wireType WireType) Tag {
	return Tag(uint64(fieldNumber)<<3 | uint64(wireType))
}

// ParseTag parses a tag into field number and wire type
func ParseTag(tag Tag) (FieldNumber, WireType) {
	return FieldNumber(tag >> 3), WireType(tag & 0x7)
}

// ValidateTag checks a raw key read from the wire and splits it.
func ValidateTag(key uint64) (FieldNumber, WireType, error) {
	if key > math.MaxUint32 {
		return 0, 0, &InvalidKeyError{Key: key}
	}
	wt := key & 0x7
	if wt > uint64(WireFixed32) {
		return 0, 0, &InvalidWireTypeError{Value: wt}
	}
	num, wireType := ParseTag(Tag(key))
	if num < MinFieldNumber {
		return 0, 0, ErrInvalidTag
	}
	return num, wireType, nil
}

// KeySize returns the encoded width of a key for the given field number.
func KeySize(num FieldNumber) int {
	return VarintSize(uint64(MakeTag(num, WireVarint)))
}

// CheckWireType fails with an UnexpectedWireTypeError when actual != expected.
func CheckWireType(expected, actual WireType) error {
	if expected != actual {
		return &UnexpectedWireTypeError{Actual: actual, Expected: expected}
	}
	return nil
}
