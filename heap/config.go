package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/osmem"
)

const (
	// DefaultArenaSize is the arena size used when Config leaves it unset.
	DefaultArenaSize = 4096

	// minArenaSize is the smallest arena that can hold one header and a minimal payload.
	minArenaSize = format.HeaderSize + format.MinSplitPayload
)

// Provider hands out raw memory for new arenas. Implementations must return
// at least size bytes of read/write memory that never moves.
type Provider interface {
	Reserve(size uint) ([]byte, error)
}

// Config controls arena sizing and free semantics.
type Config struct {
	// DefaultArenaSize is the minimum size of every arena. Requests larger
	// than this get an arena sized to fit them exactly.
	// Default: 4096
	DefaultArenaSize uint

	// Provider supplies arena memory.
	// Default: osmem.Provider (mmap / VirtualAlloc)
	Provider Provider

	// StrictFree makes a second Free of an already free block return
	// ErrDoubleFree instead of being accepted as a no-op.
	// Default: false
	StrictFree bool
}

// DefaultConfig is used when New is passed nil.
var DefaultConfig = Config{
	DefaultArenaSize: DefaultArenaSize,
	Provider:         osmem.Provider{},
}

func (c Config) withDefaults() Config {
	if c.DefaultArenaSize == 0 {
		c.DefaultArenaSize = DefaultArenaSize
	}
	if c.Provider == nil {
		c.Provider = osmem.Provider{}
	}
	return c
}

func validateArenaSize(size uint) error {
	if size < minArenaSize {
		return fmt.Errorf("%w: default arena size %d below minimum %d", ErrInvalidConfig, size, minArenaSize)
	}
	return nil
}
