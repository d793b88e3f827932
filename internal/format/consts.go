// Package format describes the in-memory layout shared by every arena: the
// block header embedded at the start of each block and the alignment rules
// applied to payload sizes. Keeping the layout here lets the allocator, the
// printer, and the tests agree on offsets without reaching into each other.
package format

const (
	// HeaderSize is the fixed size of a block header in bytes.
	// Layout (little-endian):
	//   0x00  uint64  payload size (header excluded)
	//   0x08  uint8   flags (FlagFree | FlagFirst | FlagLast)
	//   0x09  7 bytes reserved, always zero
	HeaderSize = 16

	// HeaderSizeOffset is the offset of the payload size field within a header.
	HeaderSizeOffset = 0x00

	// HeaderFlagsOffset is the offset of the flags byte within a header.
	HeaderFlagsOffset = 0x08

	// Alignment is the granularity payload sizes are rounded up to.
	Alignment = 4

	// AlignmentMask is Alignment-1, used by the round-up helpers.
	AlignmentMask = Alignment - 1

	// MinSplitPayload is the smallest payload a split may leave behind in the tail block.
	MinSplitPayload = 4
)

// Header flag bits stored at HeaderFlagsOffset.
const (
	FlagFree  uint8 = 1 << 0
	FlagFirst uint8 = 1 << 1
	FlagLast  uint8 = 1 << 2
)
