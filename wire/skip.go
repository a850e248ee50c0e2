package wire

// MergeLoop reads a length delimiter and calls merge until exactly that
// many bytes have been consumed. A merge that reads past the boundary
// fails with ErrDelimitedLengthExceeded.
func MergeLoop(d *Decoder, ctx DecodeContext, merge func(*Decoder, DecodeContext) error) error {
	n, err := d.DecodeLength()
	if err != nil {
		return err
	}
	limit := d.Len() - n
	for d.Len() > limit {
		if err := merge(d, ctx); err != nil {
			return err
		}
	}
	if d.Len() != limit {
		return ErrDelimitedLengthExceeded
	}
	return nil
}

// SkipField consumes the payload of a field whose key has already been
// read. Groups are skipped recursively up to the matching end key and count
// against the recursion limit.
func SkipField(num FieldNumber, wt WireType, d *Decoder, ctx DecodeContext) error {
	switch wt {
	case WireVarint:
		return NewVarintDecoder(d).SkipVarint()
	case WireFixed64:
		return d.Skip(8)
	case WireFixed32:
		return d.Skip(4)
	case WireBytes:
		return NewBytesDecoder(d).SkipBytes()
	case WireStartGroup:
		if err := ctx.LimitReached(); err != nil {
			return err
		}
		for {
			inner, innerWT, err := d.DecodeKey()
			if err != nil {
				return err
			}
			if innerWT == WireEndGroup {
				if inner != num {
					return ErrUnexpectedEndGroupTag
				}
				return nil
			}
			if err := SkipField(inner, innerWT, d, ctx.EnterRecursion()); err != nil {
				return err
			}
		}
	case WireEndGroup:
		return ErrUnexpectedEndGroupTag
	default:
		return &InvalidWireTypeError{Value: uint64(wt)}
	}
}
