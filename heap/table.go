package heap

import (
	"github.com/joshuapare/heapkit/internal/format"
)

// block identifies one block by its arena and the offset of its header.
type block struct {
	arena *Arena
	off   int
}

// addr returns the block start (header) address.
func (b block) addr() uintptr {
	return b.arena.addr(b.off)
}

// ptr returns the payload address handed to callers.
func (b block) ptr() Ptr {
	return Ptr(b.addr() + format.HeaderSize)
}

// blockTable owns both the headers embedded in arena memory and the
// address index over every block start. Headers are the source of truth;
// the index answers "is there a block starting at X" in O(1) so coalescing
// can test adjacency without walking arenas. Both change only through these
// methods, together.
type blockTable struct {
	index map[uintptr]block
}

func newBlockTable() blockTable {
	return blockTable{index: make(map[uintptr]block, 64)}
}

// register writes h at off in a and indexes the new block start.
func (t *blockTable) register(a *Arena, off int, h format.Header) (block, error) {
	if err := a.putHeader(off, h); err != nil {
		return block{}, err
	}
	b := block{arena: a, off: off}
	t.index[b.addr()] = b
	return b, nil
}

// lookup returns the block starting at addr, if one is registered.
func (t *blockTable) lookup(addr uintptr) (block, bool) {
	b, ok := t.index[addr]
	return b, ok
}

// header reads the authoritative header of b.
func (t *blockTable) header(b block) (format.Header, error) {
	return b.arena.header(b.off)
}

// update rewrites the header of an already registered block.
func (t *blockTable) update(b block, h format.Header) error {
	return b.arena.putHeader(b.off, h)
}

// unregister drops the block starting at addr from the index. Its bytes
// become part of whichever block absorbed it.
func (t *blockTable) unregister(addr uintptr) {
	delete(t.index, addr)
}

func (t *blockTable) len() int {
	return len(t.index)
}
