package wire

// DefaultRecursionLimit is the number of nested messages, groups and map
// entries a decode may descend into.
const DefaultRecursionLimit = 100

// DecodeContext carries per-decode state down the merge calls. It is a
// small value type: descending into a child returns a new context and the
// parent's copy is never modified.
type DecodeContext struct {
	depth     int
	limit     int
	limitSet  bool
	unlimited bool
}

// DefaultDecodeContext returns a context using the process-wide default
// options (see DefaultUnmarshalOptions).
func DefaultDecodeContext() DecodeContext {
	return defaultOptions.decodeContext()
}

// NewDecodeContext returns a context that allows limit levels of nesting.
// A negative limit is treated as zero.
func NewDecodeContext(limit int) DecodeContext {
	if limit < 0 {
		limit = 0
	}
	return DecodeContext{limit: limit, limitSet: true}
}

// UnlimitedDecodeContext returns a context without a recursion guard.
func UnlimitedDecodeContext() DecodeContext {
	return DecodeContext{unlimited: true}
}

// EnterRecursion returns the context to use one nesting level deeper.
func (c DecodeContext) EnterRecursion() DecodeContext {
	c.depth++
	return c
}

// LimitReached returns ErrRecursionLimitReached when no further nesting is
// allowed. Callers check it before descending.
func (c DecodeContext) LimitReached() error {
	if c.unlimited {
		return nil
	}
	if c.depth >= c.maxDepth() {
		return ErrRecursionLimitReached
	}
	return nil
}

// Depth returns how many levels the context has descended.
func (c DecodeContext) Depth() int {
	return c.depth
}

func (c DecodeContext) maxDepth() int {
	if !c.limitSet {
		return DefaultRecursionLimit
	}
	return c.limit
}
