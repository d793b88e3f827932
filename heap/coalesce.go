package heap

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
)

// coalesce merges every free block with its free successors until no two
// address-adjacent blocks in an arena are both free. Iteration order over
// the index does not matter: each free block keeps absorbing its successor
// until the successor is busy or it is the last block of its arena, so the
// fixed point is the same whichever block is visited first. Running it on
// an already coalesced table changes nothing.
//
// Absorbed blocks are deleted from the index mid-iteration; Go map iteration
// never yields an entry deleted before it is reached.
func (h *Heap) coalesce() error {
	h.stats.CoalescePasses++
	for addr, b := range h.table.index {
		hdr, err := h.table.header(b)
		if err != nil {
			return err
		}
		for hdr.Free && !hdr.Last {
			next := addr + format.HeaderSize + uintptr(hdr.Size)
			nb, ok := h.table.lookup(next)
			if !ok {
				break
			}
			if nb.arena != b.arena {
				// A non-last block's successor always lives in the same arena;
				// anything else means the index and memory disagree.
				return fmt.Errorf("%w: successor of 0x%X resolves into arena #%d", ErrCorruptArena, addr, nb.arena.seq)
			}
			nh, err := h.table.header(nb)
			if err != nil {
				return err
			}
			if !nh.Free {
				break
			}

			hdr.Size += format.HeaderSize + nh.Size
			hdr.Last = nh.Last
			if err := h.table.update(b, hdr); err != nil {
				return err
			}
			h.table.unregister(next)
			h.stats.CoalesceMerges++

			if logAlloc {
				fmt.Fprintf(os.Stderr, "[COALESCE] arena #%d: 0x%X absorbed 0x%X, size now %d\n",
					b.arena.seq, addr, next, hdr.Size)
			}
		}
	}
	return nil
}
