package wkt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimestamp parses the RFC 3339 form used by the JSON mapping, such
// as "1972-01-01T10:00:20.021Z".
func ParseTimestamp(s string) (*Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	ts := NewTimestamp(t)
	if err := ts.CheckValid(); err != nil {
		return nil, err
	}
	return ts, nil
}

// String formats the timestamp in RFC 3339 with as many fractional digits
// as needed.
func (m *Timestamp) String() string {
	return m.AsTime().Format(time.RFC3339Nano)
}

// ParseDuration parses the JSON mapping form: decimal seconds with an "s"
// suffix and at most nine fractional digits, such as "-1.5s".
func ParseDuration(s string) (*Duration, error) {
	core, ok := strings.CutSuffix(s, "s")
	if !ok {
		return nil, fmt.Errorf("invalid duration %q: missing 's' suffix", s)
	}
	neg := strings.HasPrefix(core, "-")
	core = strings.TrimLeft(core, "+-")

	secPart, fracPart, _ := strings.Cut(core, ".")
	if secPart == "" && fracPart == "" {
		return nil, fmt.Errorf("invalid duration %q", s)
	}
	if secPart == "" {
		secPart = "0"
	}
	secs, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid duration seconds: %w", err)
	}
	if len(fracPart) > 9 {
		return nil, fmt.Errorf("invalid duration %q: more than nine fractional digits", s)
	}
	var nanos int64
	if fracPart != "" {
		if nanos, err = strconv.ParseInt(fracPart+strings.Repeat("0", 9-len(fracPart)), 10, 32); err != nil {
			return nil, fmt.Errorf("invalid duration nanos: %w", err)
		}
	}
	// seconds and nanos share the sign of the duration
	if neg {
		secs, nanos = -secs, -nanos
	}
	d := &Duration{Seconds: secs, Nanos: int32(nanos)}
	if err := d.CheckValid(); err != nil {
		return nil, err
	}
	return d, nil
}

// String formats the duration in the JSON mapping form.
func (m *Duration) String() string {
	secs, nanos := m.Seconds, m.Nanos
	sign := ""
	if secs < 0 || nanos < 0 {
		sign, secs, nanos = "-", -secs, -nanos
	}
	s := sign + strconv.FormatInt(secs, 10)
	if nanos != 0 {
		frac := fmt.Sprintf("%09d", nanos)
		s += "." + strings.TrimRight(frac, "0")
	}
	return s + "s"
}
