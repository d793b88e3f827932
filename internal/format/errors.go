package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadFlags indicates a header flags byte carried unknown bits.
	ErrBadFlags = errors.New("format: unknown header flag bits")
)
