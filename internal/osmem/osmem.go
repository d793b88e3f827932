// Package osmem obtains raw read/write memory regions from the operating
// system. Regions are reserved and committed in one step, are zero filled,
// never move, and are never handed back: the heap that owns them lives for
// the rest of the process.
package osmem

import (
	"errors"
	"fmt"
	"math"

	"github.com/joshuapare/heapkit/internal/format"
)

var (
	// ErrZeroSize indicates a reservation of zero bytes was requested.
	ErrZeroSize = errors.New("osmem: zero-size reservation")

	// ErrTooLarge indicates the request cannot be expressed as a mapping length.
	ErrTooLarge = errors.New("osmem: reservation too large")
)

// Provider reserves memory directly from the OS. The zero value is ready to use.
type Provider struct{}

// Reserve returns exactly size bytes of page-granular, read/write memory.
func (Provider) Reserve(size uint) ([]byte, error) {
	return Reserve(size)
}

// Reserve returns exactly size bytes of page-granular, read/write memory.
// The mapping is rounded up to whole pages; the returned slice covers only
// the requested length.
func Reserve(size uint) ([]byte, error) {
	if size == 0 {
		return nil, ErrZeroSize
	}
	mapped, ok := format.AlignPage(size, PageSize())
	if !ok || mapped > math.MaxInt {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, size)
	}
	data, err := reserve(int(mapped))
	if err != nil {
		return nil, fmt.Errorf("osmem: reserve %d bytes: %w", size, err)
	}
	return data[:size:size], nil
}

// PageSize returns the granularity the OS maps memory with.
func PageSize() uint {
	return uint(pageSize())
}
