package wkt

import (
	"errors"
	"time"

	"github.com/anirudhraja/protocodec/wire"
)

// Valid ranges from google/protobuf/timestamp.proto and duration.proto.
const (
	minTimestampSeconds = -62135596800 // 0001-01-01T00:00:00Z
	maxTimestampSeconds = 253402300799 // 9999-12-31T23:59:59Z
	maxDurationSeconds  = 315576000000 // 10000 years
)

var (
	ErrTimestampRange = errors.New("timestamp out of range")
	ErrDurationRange  = errors.New("duration out of range")
)

// Timestamp is a point in time with nanosecond precision.
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// NewTimestamp converts t.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

// AsTime converts to a UTC time.Time.
func (m *Timestamp) AsTime() time.Time {
	return time.Unix(m.Seconds, int64(m.Nanos)).UTC()
}

// CheckValid reports whether the timestamp is inside the supported range
// and normalized.
func (m *Timestamp) CheckValid() error {
	if m.Seconds < minTimestampSeconds || m.Seconds > maxTimestampSeconds {
		return ErrTimestampRange
	}
	if m.Nanos < 0 || m.Nanos >= 1e9 {
		return ErrTimestampRange
	}
	return nil
}

func (*Timestamp) FullName() string { return googlePackage + ".Timestamp" }

func (m *Timestamp) EncodeRaw(e *wire.Encoder) {
	encodeSecondsNanos(m.Seconds, m.Nanos, e)
}

func (m *Timestamp) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	return mergeSecondsNanos(m.FullName(), &m.Seconds, &m.Nanos, num, wt, d, ctx)
}

func (m *Timestamp) EncodedLen() int { return encodedLenSecondsNanos(m.Seconds, m.Nanos) }
func (m *Timestamp) Reset()          { *m = Timestamp{} }

// Duration is a signed span of time with nanosecond precision.
type Duration struct {
	Seconds int64
	Nanos   int32
}

// NewDuration converts d.
func NewDuration(d time.Duration) *Duration {
	nanos := d.Nanoseconds()
	return &Duration{Seconds: nanos / 1e9, Nanos: int32(nanos % 1e9)}
}

// AsDuration converts to a time.Duration, saturating at its limits.
func (m *Duration) AsDuration() time.Duration {
	secs := time.Duration(m.Seconds)
	d := secs*time.Second + time.Duration(m.Nanos)
	switch {
	case m.Seconds > 0 && (d < 0 || d/time.Second != secs):
		return time.Duration(1<<63 - 1)
	case m.Seconds < 0 && (d > 0 || d/time.Second != secs):
		return time.Duration(-1 << 63)
	}
	return d
}

// CheckValid reports whether the duration is inside the supported range
// and seconds and nanos agree in sign.
func (m *Duration) CheckValid() error {
	if m.Seconds < -maxDurationSeconds || m.Seconds > maxDurationSeconds {
		return ErrDurationRange
	}
	if m.Nanos <= -1e9 || m.Nanos >= 1e9 {
		return ErrDurationRange
	}
	if (m.Seconds > 0 && m.Nanos < 0) || (m.Seconds < 0 && m.Nanos > 0) {
		return ErrDurationRange
	}
	return nil
}

func (*Duration) FullName() string { return googlePackage + ".Duration" }

func (m *Duration) EncodeRaw(e *wire.Encoder) {
	encodeSecondsNanos(m.Seconds, m.Nanos, e)
}

func (m *Duration) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	return mergeSecondsNanos(m.FullName(), &m.Seconds, &m.Nanos, num, wt, d, ctx)
}

func (m *Duration) EncodedLen() int { return encodedLenSecondsNanos(m.Seconds, m.Nanos) }
func (m *Duration) Reset()          { *m = Duration{} }

func encodeSecondsNanos(seconds int64, nanos int32, e *wire.Encoder) {
	if seconds != 0 {
		wire.Int64.Encode(1, seconds, e)
	}
	if nanos != 0 {
		wire.Int32.Encode(2, nanos, e)
	}
}

func encodedLenSecondsNanos(seconds int64, nanos int32) int {
	n := 0
	if seconds != 0 {
		n += wire.Int64.EncodedLen(1, seconds)
	}
	if nanos != 0 {
		n += wire.Int32.EncodedLen(2, nanos)
	}
	return n
}

func mergeSecondsNanos(name string, seconds *int64, nanos *int32, num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	switch num {
	case 1:
		return wire.WrapField(wire.Int64.Merge(wt, seconds, d, ctx), name, "seconds")
	case 2:
		return wire.WrapField(wire.Int32.Merge(wt, nanos, d, ctx), name, "nanos")
	default:
		return wire.SkipField(num, wt, d, ctx)
	}
}

// Empty has no fields.
type Empty struct{}

func (*Empty) FullName() string        { return googlePackage + ".Empty" }
func (*Empty) EncodeRaw(*wire.Encoder) {}
func (*Empty) EncodedLen() int         { return 0 }
func (*Empty) Reset()                  {}
func (*Empty) MergeField(num wire.FieldNumber, wt wire.WireType, d *wire.Decoder, ctx wire.DecodeContext) error {
	return wire.SkipField(num, wt, d, ctx)
}
