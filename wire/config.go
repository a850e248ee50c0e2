package wire

import (
	"os"
	"strconv"
)

// UnmarshalOptions configures a decode. The zero value decodes with the
// process defaults.
type UnmarshalOptions struct {
	// Merge keeps the existing contents of the destination message and
	// merges the input into it. When false the message is reset first.
	// A failed decode resets the message either way.
	Merge bool

	// RecursionLimit bounds the nesting depth of messages, groups and map
	// entries. Zero means the process default.
	RecursionLimit int

	// DisableRecursionLimit turns the nesting guard off entirely. Only use
	// this with trusted input.
	DisableRecursionLimit bool
}

var defaultOptions = UnmarshalOptions{
	RecursionLimit: DefaultRecursionLimit,
}

// DefaultUnmarshalOptions returns the process-wide decode defaults.
func DefaultUnmarshalOptions() UnmarshalOptions { return defaultOptions }

// SetDefaultUnmarshalOptions replaces the process-wide decode defaults. It
// is not safe to call concurrently with decoding.
func SetDefaultUnmarshalOptions(o UnmarshalOptions) { defaultOptions = o }

func (o UnmarshalOptions) decodeContext() DecodeContext {
	if o.DisableRecursionLimit {
		return UnlimitedDecodeContext()
	}
	if o.RecursionLimit > 0 {
		return NewDecodeContext(o.RecursionLimit)
	}
	if defaultOptions.DisableRecursionLimit {
		return UnlimitedDecodeContext()
	}
	if defaultOptions.RecursionLimit > 0 {
		return NewDecodeContext(defaultOptions.RecursionLimit)
	}
	return NewDecodeContext(DefaultRecursionLimit)
}

func init() {
	// Optional env toggles for test harnesses and tools.
	if v := os.Getenv("PROTOCODEC_RECURSION_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			defaultOptions.RecursionLimit = n
		}
	}
	if v := os.Getenv("PROTOCODEC_NO_RECURSION_LIMIT"); v == "1" || v == "true" {
		defaultOptions.DisableRecursionLimit = true
	}
}
