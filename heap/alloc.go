package heap

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
)

// allocFromArena walks a from its base in address order and takes the first
// free block whose payload covers need. ok is false when nothing fits.
func (h *Heap) allocFromArena(a *Arena, need uint) (block, bool, error) {
	for off := 0; off < int(a.size); {
		hdr, err := a.header(off)
		if err != nil {
			return block{}, false, err
		}
		if hdr.Free && hdr.Size >= need {
			b := block{arena: a, off: off}
			if _, ok := h.table.lookup(b.addr()); !ok {
				return block{}, false, fmt.Errorf("%w: block at offset %d of arena #%d not indexed",
					ErrCorruptArena, off, a.seq)
			}
			hdr, err = h.split(b, hdr, need)
			if err != nil {
				return block{}, false, err
			}
			hdr.Free = false
			if err := h.table.update(b, hdr); err != nil {
				return block{}, false, err
			}
			h.stats.BytesAllocated += uint64(hdr.Size)
			return b, true, nil
		}
		off += format.HeaderSize + int(hdr.Size)
	}
	return block{}, false, nil
}

// split carves a free tail off b when the leftover can hold a header plus
// format.MinSplitPayload bytes. b keeps exactly need payload bytes; the tail
// takes over b's last flag. Otherwise b is handed out whole and up to
// HeaderSize+3 bytes of slack stay inside it. The returned header is what b
// now holds (free flag untouched).
func (h *Heap) split(b block, hdr format.Header, need uint) (format.Header, error) {
	if hdr.Size < need || hdr.Size-need < format.HeaderSize+format.MinSplitPayload {
		return hdr, nil
	}

	tail := format.Header{
		Size:  hdr.Size - need - format.HeaderSize,
		Free:  true,
		First: false,
		Last:  hdr.Last,
	}
	tailOff := b.off + format.HeaderSize + int(need)
	if _, err := h.table.register(b.arena, tailOff, tail); err != nil {
		return hdr, err
	}

	hdr.Size = need
	hdr.Last = false
	if err := h.table.update(b, hdr); err != nil {
		return hdr, err
	}

	h.stats.SplitCount++
	if logAlloc && tail.Size > 1000 {
		fmt.Fprintf(os.Stderr, "[SPLIT] arena #%d offset %d: kept=%d, tail=%d\n",
			b.arena.seq, b.off, need, tail.Size)
	}
	return hdr, nil
}
