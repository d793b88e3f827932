package heap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

func TestHeaderAccessIsBoundsChecked(t *testing.T) {
	h := newTestHeap(t, 4096)
	mustAlloc(t, h, 100)
	a := h.arenas

	_, err := a.header(int(a.size))
	require.ErrorIs(t, err, ErrCorruptArena)

	_, err = a.header(int(a.size) - format.HeaderSize + 1)
	require.ErrorIs(t, err, ErrCorruptArena)

	_, err = a.header(-1)
	require.ErrorIs(t, err, ErrCorruptArena)

	err = a.putHeader(int(a.size)-format.HeaderSize, format.Header{Size: 1})
	require.ErrorIs(t, err, ErrCorruptArena, "block running past the arena end")
}

func TestCorruptSizeIsDetected(t *testing.T) {
	h := newTestHeap(t, 4096)
	p, _ := mustAlloc(t, h, 100)

	// Scribble over the first header's size field.
	format.PutU64(h.arenas.mem, format.HeaderSizeOffset, 1<<40)

	require.ErrorIs(t, h.Check(), ErrCorruptArena)
	_, _, err := h.Alloc(10)
	require.ErrorIs(t, err, ErrCorruptArena)
	require.ErrorIs(t, h.Free(p), ErrCorruptArena)
}

func TestCorruptFlagsAreDetected(t *testing.T) {
	h := newTestHeap(t, 4096)
	mustAlloc(t, h, 100)

	h.arenas.mem[format.HeaderFlagsOffset] = 0xF0
	require.ErrorIs(t, h.Check(), ErrCorruptArena)
}

func TestCheckDetectsIndexDrift(t *testing.T) {
	h := newTestHeap(t, 4096)
	p, _ := mustAlloc(t, h, 100)
	assertInvariants(t, h)

	b, ok := h.resolve(p)
	require.True(t, ok)
	h.table.unregister(b.addr())
	require.ErrorIs(t, h.Check(), ErrInvariant)
}
