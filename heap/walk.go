package heap

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// ArenaInfo describes one arena for read-only traversal.
type ArenaInfo struct {
	Seq  int     // creation order, 0 for the first arena
	Base uintptr // address of the first header
	Size uint    // total bytes, headers included
}

// BlockInfo describes one block for read-only traversal.
type BlockInfo struct {
	Addr   uintptr // header address
	Ptr    Ptr     // payload address
	Offset int     // header offset from the arena base
	Size   uint    // payload bytes
	Free   bool
	First  bool
	Last   bool
}

// ArenaLayout is an arena together with its blocks in address order.
type ArenaLayout struct {
	ArenaInfo
	Blocks []BlockInfo
}

// Walk calls fn for every block, arenas most recent first and blocks in
// address order within each arena, reading headers straight from arena
// memory. Walk stops at the first error fn returns.
func (h *Heap) Walk(fn func(ArenaInfo, BlockInfo) error) error {
	for a := h.arenas; a != nil; a = a.next {
		info := ArenaInfo{Seq: a.seq, Base: a.base, Size: a.size}
		for off := 0; off < int(a.size); {
			hdr, err := a.header(off)
			if err != nil {
				return err
			}
			bi := BlockInfo{
				Addr:   a.addr(off),
				Ptr:    Ptr(a.addr(off) + format.HeaderSize),
				Offset: off,
				Size:   hdr.Size,
				Free:   hdr.Free,
				First:  hdr.First,
				Last:   hdr.Last,
			}
			if err := fn(info, bi); err != nil {
				return err
			}
			off += format.HeaderSize + int(hdr.Size)
		}
	}
	return nil
}

// Layout collects the whole walk into a snapshot.
func (h *Heap) Layout() ([]ArenaLayout, error) {
	out := make([]ArenaLayout, 0, h.arenaCount)
	err := h.Walk(func(a ArenaInfo, b BlockInfo) error {
		if len(out) == 0 || out[len(out)-1].Seq != a.Seq {
			out = append(out, ArenaLayout{ArenaInfo: a})
		}
		last := &out[len(out)-1]
		last.Blocks = append(last.Blocks, b)
		return nil
	})
	return out, err
}

// Check verifies the structural invariants of every arena:
//   - blocks walked from the base exactly tile the arena
//   - exactly one first block (at the base) and one last block (at the end)
//   - every walked block is indexed and the index holds nothing else
//   - no two adjacent blocks are both free
func (h *Heap) Check() error {
	walked := 0
	for a := h.arenas; a != nil; a = a.next {
		var prevFree bool
		firsts, lasts := 0, 0
		off := 0
		for off < int(a.size) {
			hdr, err := a.header(off)
			if err != nil {
				return err
			}
			if _, ok := h.table.lookup(a.addr(off)); !ok {
				return fmt.Errorf("%w: arena #%d block at offset %d not indexed", ErrInvariant, a.seq, off)
			}
			if hdr.First {
				firsts++
				if off != 0 {
					return fmt.Errorf("%w: arena #%d first flag at offset %d", ErrInvariant, a.seq, off)
				}
			}
			end := off + format.HeaderSize + int(hdr.Size)
			if hdr.Last {
				lasts++
				if end != int(a.size) {
					return fmt.Errorf("%w: arena #%d last block ends at %d, arena size %d", ErrInvariant, a.seq, end, a.size)
				}
			}
			if prevFree && hdr.Free {
				return fmt.Errorf("%w: arena #%d adjacent free blocks at offset %d", ErrInvariant, a.seq, off)
			}
			prevFree = hdr.Free
			walked++
			off = end
		}
		if off != int(a.size) {
			return fmt.Errorf("%w: arena #%d blocks cover %d of %d bytes", ErrInvariant, a.seq, off, a.size)
		}
		if firsts != 1 || lasts != 1 {
			return fmt.Errorf("%w: arena #%d has %d first and %d last blocks", ErrInvariant, a.seq, firsts, lasts)
		}
	}
	if walked != h.table.len() {
		return fmt.Errorf("%w: %d blocks in arenas, %d indexed", ErrInvariant, walked, h.table.len())
	}
	return nil
}

// ArenaCount returns the number of arenas created so far.
func (h *Heap) ArenaCount() int {
	return h.arenaCount
}

// Arenas lists every arena, most recent first.
func (h *Heap) Arenas() []ArenaInfo {
	out := make([]ArenaInfo, 0, h.arenaCount)
	for a := h.arenas; a != nil; a = a.next {
		out = append(out, ArenaInfo{Seq: a.seq, Base: a.base, Size: a.size})
	}
	return out
}
