package format

// Header is the decoded form of a block header.
type Header struct {
	Size  uint // payload bytes, header excluded
	Free  bool
	First bool
	Last  bool
}

// Flags packs the boolean fields into the on-arena flags byte.
func (h Header) Flags() uint8 {
	var f uint8
	if h.Free {
		f |= FlagFree
	}
	if h.First {
		f |= FlagFirst
	}
	if h.Last {
		f |= FlagLast
	}
	return f
}

// DecodeHeader reads a header from b, which must hold at least HeaderSize bytes.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrTruncated
	}
	flags := b[HeaderFlagsOffset]
	if flags&^(FlagFree|FlagFirst|FlagLast) != 0 {
		return Header{}, ErrBadFlags
	}
	return Header{
		Size:  uint(ReadU64(b, HeaderSizeOffset)),
		Free:  flags&FlagFree != 0,
		First: flags&FlagFirst != 0,
		Last:  flags&FlagLast != 0,
	}, nil
}

// EncodeHeader writes h into b, which must hold at least HeaderSize bytes.
// The reserved bytes are zeroed.
func EncodeHeader(b []byte, h Header) error {
	if len(b) < HeaderSize {
		return ErrTruncated
	}
	PutU64(b, HeaderSizeOffset, uint64(h.Size))
	b[HeaderFlagsOffset] = h.Flags()
	clear(b[HeaderFlagsOffset+1 : HeaderSize])
	return nil
}
