package heap

import "errors"

var (
	// ErrOutOfMemory indicates no arena could satisfy the request and the OS refused a new one.
	ErrOutOfMemory = errors.New("heap: out of memory")

	// ErrInvalidPointer indicates a pointer that does not start a live managed block.
	// Free and Realloc return it without touching any state.
	ErrInvalidPointer = errors.New("heap: invalid pointer")

	// ErrOversizedRequest indicates the aligned size (or the arena sized for it)
	// would overflow address arithmetic.
	ErrOversizedRequest = errors.New("heap: request size overflows address arithmetic")

	// ErrZeroSize indicates a zero-byte allocation. No state is mutated.
	ErrZeroSize = errors.New("heap: zero-size allocation")

	// ErrDoubleFree indicates a second Free of the same block while Config.StrictFree is set.
	ErrDoubleFree = errors.New("heap: block already free")

	// ErrAlreadyConfigured indicates Configure was called after the first arena was created.
	ErrAlreadyConfigured = errors.New("heap: already configured")

	// ErrInvalidConfig indicates a default arena size too small to hold a block.
	ErrInvalidConfig = errors.New("heap: invalid configuration")

	// ErrCorruptArena indicates a header read fell outside its arena or decoded to garbage.
	ErrCorruptArena = errors.New("heap: corrupt arena")

	// ErrInvariant indicates Check found the block table out of step with arena memory.
	ErrInvariant = errors.New("heap: invariant violated")
)
