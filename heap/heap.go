package heap

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is the address of a block payload. Nil is the absent pointer.
type Ptr uintptr

// Nil is returned by failed allocations and accepted as a no-op by Free.
const Nil Ptr = 0

// Heap is an independent allocator instance: its arena list, block table and
// headers are owned exclusively by it. A Heap is not safe for concurrent use.
type Heap struct {
	cfg Config

	arenas     *Arena // most recent first
	arenaCount int

	table blockTable
	stats Stats
}

// New creates a heap. Pass nil for DefaultConfig. Arenas are created lazily
// on the first allocation that needs one.
func New(cfg *Config) (*Heap, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	c := cfg.withDefaults()
	if err := validateArenaSize(c.DefaultArenaSize); err != nil {
		return nil, err
	}
	return &Heap{
		cfg:   c,
		table: newBlockTable(),
	}, nil
}

// Configure sets the default arena size. It must run before the first
// allocation; once an arena exists it returns ErrAlreadyConfigured.
func (h *Heap) Configure(defaultArenaSize uint) error {
	if h.arenas != nil {
		return ErrAlreadyConfigured
	}
	if err := validateArenaSize(defaultArenaSize); err != nil {
		return err
	}
	h.cfg.DefaultArenaSize = defaultArenaSize
	return nil
}

// Alloc returns a pointer to at least size bytes and a slice over exactly
// size bytes of that payload.
//
// Arenas are scanned most recent first and blocks in address order; the
// first free block large enough wins and is split if the remainder can hold
// another block. When nothing fits, exactly one new arena sized for this
// request is created and only that arena is retried.
//
// Errors: ErrZeroSize (size == 0), ErrOversizedRequest, ErrOutOfMemory.
// A failed Alloc leaves the heap unchanged.
func (h *Heap) Alloc(size uint) (Ptr, []byte, error) {
	h.stats.AllocCalls++
	if size == 0 {
		return Nil, nil, ErrZeroSize
	}
	need, ok := format.Align4(size)
	if !ok {
		return Nil, nil, fmt.Errorf("%w: %d bytes", ErrOversizedRequest, size)
	}

	b, err := h.alloc(need)
	if err != nil {
		return Nil, nil, err
	}
	return b.ptr(), b.arena.payload(b.off, size), nil
}

func (h *Heap) alloc(need uint) (block, error) {
	for a := h.arenas; a != nil; a = a.next {
		b, ok, err := h.allocFromArena(a, need)
		if err != nil {
			return block{}, err
		}
		if ok {
			h.stats.AllocFastPath++
			return b, nil
		}
	}

	minSize, ok := buf.AddUint(need, format.HeaderSize)
	if !ok {
		return block{}, fmt.Errorf("%w: %d bytes plus header", ErrOversizedRequest, need)
	}
	if logAlloc {
		fmt.Fprintf(os.Stderr, "[ALLOC] no fit for %d bytes in %d arenas, growing\n", need, h.arenaCount)
	}
	a, err := h.createArena(minSize)
	if err != nil {
		return block{}, err
	}

	b, ok, err := h.allocFromArena(a, need)
	if err != nil {
		return block{}, err
	}
	if !ok {
		debugLogf("alloc(%d): no fit in fresh %d-byte arena", need, a.size)
		return block{}, fmt.Errorf("%w: fresh arena cannot hold %d bytes", ErrOutOfMemory, need)
	}
	h.stats.AllocSlowPath++
	return b, nil
}

// resolve maps a payload pointer to its registered block.
func (h *Heap) resolve(p Ptr) (block, bool) {
	if uintptr(p) < format.HeaderSize {
		return block{}, false
	}
	return h.table.lookup(uintptr(p) - format.HeaderSize)
}

// Free releases the block behind p and coalesces free neighbours.
//
// Free(Nil) is a no-op. A pointer that does not start a registered block
// returns ErrInvalidPointer and changes nothing; callers that only need the
// no-op behaviour may ignore it. Freeing an already free block is accepted
// and changes nothing, unless Config.StrictFree is set, in which case it
// returns ErrDoubleFree.
func (h *Heap) Free(p Ptr) error {
	if p == Nil {
		return nil
	}
	h.stats.FreeCalls++

	b, ok := h.resolve(p)
	if !ok {
		h.stats.InvalidFrees++
		return fmt.Errorf("%w: free 0x%X", ErrInvalidPointer, uintptr(p))
	}
	hdr, err := h.table.header(b)
	if err != nil {
		return err
	}
	if hdr.Free && h.cfg.StrictFree {
		return fmt.Errorf("%w: 0x%X", ErrDoubleFree, uintptr(p))
	}
	return h.free(b, hdr)
}

func (h *Heap) free(b block, hdr format.Header) error {
	if !hdr.Free {
		h.stats.BytesFreed += uint64(hdr.Size)
	}
	hdr.Free = true
	if err := h.table.update(b, hdr); err != nil {
		return err
	}
	return h.coalesce()
}

// Realloc resizes the block behind p to hold size bytes.
//
// Realloc(Nil, n) is Alloc(n). If the current block already covers the
// aligned size it is shrunk in place (split) and p is returned unchanged.
// Otherwise a new block is allocated, the old payload copied, and the old
// block freed. If that allocation fails the original block is untouched
// and still valid.
//
// A pointer that does not start a live block (unknown, or already freed)
// returns ErrInvalidPointer and changes nothing.
func (h *Heap) Realloc(p Ptr, size uint) (Ptr, []byte, error) {
	if p == Nil {
		return h.Alloc(size)
	}
	h.stats.ReallocCalls++

	b, ok := h.resolve(p)
	if !ok {
		return Nil, nil, fmt.Errorf("%w: realloc 0x%X", ErrInvalidPointer, uintptr(p))
	}
	hdr, err := h.table.header(b)
	if err != nil {
		return Nil, nil, err
	}
	if hdr.Free {
		return Nil, nil, fmt.Errorf("%w: realloc of freed block 0x%X", ErrInvalidPointer, uintptr(p))
	}

	need, ok := format.Align4(size)
	if !ok {
		return Nil, nil, fmt.Errorf("%w: %d bytes", ErrOversizedRequest, size)
	}

	if hdr.Size >= need {
		shrunk, err := h.split(b, hdr, need)
		if err != nil {
			return Nil, nil, err
		}
		if shrunk.Size != hdr.Size {
			h.stats.BytesFreed += uint64(hdr.Size - shrunk.Size)
			// The new tail may sit right before a free block.
			if err := h.coalesce(); err != nil {
				return Nil, nil, err
			}
		}
		h.stats.ReallocInPlace++
		return p, b.arena.payload(b.off, size), nil
	}

	nb, err := h.alloc(need)
	if err != nil {
		return Nil, nil, err
	}
	copy(nb.arena.payload(nb.off, hdr.Size), b.arena.payload(b.off, hdr.Size))
	if err := h.free(b, hdr); err != nil {
		return Nil, nil, err
	}
	h.stats.ReallocMoved++
	return nb.ptr(), nb.arena.payload(nb.off, size), nil
}

// Bytes returns the whole payload of the live block behind p, which may be
// up to HeaderSize+3 bytes longer than was requested.
func (h *Heap) Bytes(p Ptr) ([]byte, error) {
	b, ok := h.resolve(p)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%X", ErrInvalidPointer, uintptr(p))
	}
	hdr, err := h.table.header(b)
	if err != nil {
		return nil, err
	}
	if hdr.Free {
		return nil, fmt.Errorf("%w: 0x%X is free", ErrInvalidPointer, uintptr(p))
	}
	return b.arena.payload(b.off, hdr.Size), nil
}

// DefaultArenaSize reports the configured minimum arena size.
func (h *Heap) DefaultArenaSize() uint {
	return h.cfg.DefaultArenaSize
}
