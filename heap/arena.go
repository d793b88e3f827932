package heap

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Arena is one contiguous region obtained from the Provider. Arenas form a
// singly linked list, most recently created first, and are never released.
type Arena struct {
	mem  []byte  // exactly size bytes
	base uintptr // address of mem[0]
	size uint
	seq  int // creation order, 0 for the first arena
	next *Arena
}

// header reads the block header at off. Every header access goes through
// here so a bad offset or a size running past the arena end is reported
// instead of read.
func (a *Arena) header(off int) (format.Header, error) {
	b, ok := buf.Slice(a.mem, off, format.HeaderSize)
	if !ok {
		return format.Header{}, fmt.Errorf("%w: header at offset %d outside %d-byte arena", ErrCorruptArena, off, a.size)
	}
	h, err := format.DecodeHeader(b)
	if err != nil {
		return format.Header{}, fmt.Errorf("%w: header at offset %d: %w", ErrCorruptArena, off, err)
	}
	if h.Size > a.size-uint(off)-format.HeaderSize {
		return format.Header{}, fmt.Errorf("%w: block at offset %d claims %d bytes, arena has %d left",
			ErrCorruptArena, off, h.Size, a.size-uint(off)-format.HeaderSize)
	}
	return h, nil
}

// putHeader writes h at off. Only blockTable calls this.
func (a *Arena) putHeader(off int, h format.Header) error {
	b, ok := buf.Slice(a.mem, off, format.HeaderSize)
	if !ok {
		return fmt.Errorf("%w: header write at offset %d outside %d-byte arena", ErrCorruptArena, off, a.size)
	}
	if h.Size > a.size-uint(off)-format.HeaderSize {
		return fmt.Errorf("%w: block at offset %d would run past arena end", ErrCorruptArena, off)
	}
	return format.EncodeHeader(b, h)
}

// payload returns n bytes starting right after the header at off.
func (a *Arena) payload(off int, n uint) []byte {
	p, ok := buf.Slice(a.mem, off+format.HeaderSize, int(n))
	if !ok {
		return nil
	}
	return p
}

// addr returns the address of the byte at off.
func (a *Arena) addr(off int) uintptr {
	return a.base + uintptr(off)
}

// createArena reserves a new arena of at least minSize bytes (never below the
// configured default), prepends it to the arena list and registers the single
// free block spanning it. On failure nothing is mutated.
func (h *Heap) createArena(minSize uint) (*Arena, error) {
	size, ok := format.Align4(max(minSize, h.cfg.DefaultArenaSize))
	if !ok {
		return nil, fmt.Errorf("%w: arena for %d bytes", ErrOversizedRequest, minSize)
	}

	mem, err := h.cfg.Provider.Reserve(size)
	if err != nil {
		if logAlloc {
			fmt.Fprintf(os.Stderr, "[ARENA] reserve %d bytes refused: %v\n", size, err)
		}
		return nil, fmt.Errorf("%w: reserve %d-byte arena: %w", ErrOutOfMemory, size, err)
	}
	if uint(len(mem)) < size {
		return nil, fmt.Errorf("%w: provider returned %d bytes, asked for %d", ErrOutOfMemory, len(mem), size)
	}
	mem = mem[:size:size]

	a := &Arena{
		mem:  mem,
		base: uintptr(unsafe.Pointer(unsafe.SliceData(mem))),
		size: size,
		seq:  h.arenaCount,
	}
	first := format.Header{
		Size:  size - format.HeaderSize,
		Free:  true,
		First: true,
		Last:  true,
	}
	if _, err := h.table.register(a, 0, first); err != nil {
		return nil, err
	}

	a.next = h.arenas
	h.arenas = a
	h.arenaCount++

	h.stats.ArenasCreated++
	h.stats.ArenaBytes += uint64(size)

	if logAlloc {
		fmt.Fprintf(os.Stderr, "[ARENA] #%d created: base=0x%X, size=%d, usable=%d\n",
			a.seq, a.base, size, first.Size)
	}
	return a, nil
}
