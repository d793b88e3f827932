package heap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
)

func TestAllocZeroReturnsNilWithoutMutation(t *testing.T) {
	h := newTestHeap(t, 4096)

	p, b, err := h.Alloc(0)
	require.ErrorIs(t, err, ErrZeroSize)
	assert.Equal(t, Nil, p)
	assert.Nil(t, b)
	assert.Equal(t, 0, h.ArenaCount(), "zero-size alloc must not create an arena")

	mustAlloc(t, h, 64)
	before, err := h.Layout()
	require.NoError(t, err)

	_, _, err = h.Alloc(0)
	require.ErrorIs(t, err, ErrZeroSize)
	after, err := h.Layout()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFirstArenaSingleBlockSplit(t *testing.T) {
	h := newTestHeap(t, 4096)

	p, _ := mustAlloc(t, h, 2000)
	layout, err := h.Layout()
	require.NoError(t, err)
	require.Len(t, layout, 1)
	require.Equal(t, uint(4096), layout[0].Size)

	blocks := layout[0].Blocks
	require.Len(t, blocks, 2)
	assert.Equal(t, p, blocks[0].Ptr)
	assert.Equal(t, BlockInfo{
		Addr: layout[0].Base, Ptr: p, Offset: 0, Size: 2000, Free: false, First: true, Last: false,
	}, blocks[0])
	assert.Equal(t, 2016, blocks[1].Offset)
	assert.Equal(t, uint(4096-2016-format.HeaderSize), blocks[1].Size)
	assert.True(t, blocks[1].Free)
	assert.False(t, blocks[1].First)
	assert.True(t, blocks[1].Last)

	assertInvariants(t, h)
}

func TestLargeRequestCreatesSizedArena(t *testing.T) {
	h, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, h.Configure(4096))

	p0, _ := mustAlloc(t, h, 2000)
	require.Equal(t, 1, h.ArenaCount())

	p1, _ := mustAlloc(t, h, 8501)
	require.Equal(t, 2, h.ArenaCount(), "first arena cannot hold 8501 bytes")
	assert.NotEqual(t, p0, p1)

	layout, err := h.Layout()
	require.NoError(t, err)
	newest := layout[0]
	assert.Equal(t, 1, newest.Seq, "newest arena is listed first")
	assert.GreaterOrEqual(t, newest.Size, uint(8501+format.HeaderSize))
	assert.Equal(t, uint(8520), newest.Size, "align(8501) + header")
	require.Len(t, newest.Blocks, 1, "request consumes the whole new arena")
	assert.Equal(t, p1, newest.Blocks[0].Ptr)
	assert.True(t, newest.Blocks[0].First)
	assert.True(t, newest.Blocks[0].Last)

	stats := h.Stats()
	assert.Equal(t, 2, stats.ArenasCreated)
	assert.Equal(t, 2, stats.AllocSlowPath)

	assertInvariants(t, h)
}

func TestOversizedRequestFailsCleanly(t *testing.T) {
	h := newTestHeap(t, 4096)
	mustAlloc(t, h, 100)
	before, err := h.Layout()
	require.NoError(t, err)

	for _, size := range []uint{math.MaxUint, math.MaxUint - 1, math.MaxUint - 2, math.MaxUint - 3, math.MaxUint - format.HeaderSize} {
		p, b, err := h.Alloc(size)
		require.ErrorIs(t, err, ErrOversizedRequest, "size %d", size)
		assert.Equal(t, Nil, p)
		assert.Nil(t, b)
	}

	after, err := h.Layout()
	require.NoError(t, err)
	assert.Equal(t, before, after, "oversized requests must not mutate the heap")
	assert.Equal(t, 1, h.ArenaCount())
}

func TestHugeRepresentableRequestIsOutOfMemory(t *testing.T) {
	h := newTestHeap(t, 4096)

	// Aligns and fits a header, but no provider can map it.
	p, _, err := h.Alloc(math.MaxUint - 64)
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, Nil, p)
	assert.Equal(t, 0, h.ArenaCount())

	// The heap is still usable afterwards.
	mustAlloc(t, h, 16)
	assertInvariants(t, h)
}

func TestProviderRefusalIsOutOfMemory(t *testing.T) {
	h, err := New(&Config{DefaultArenaSize: 4096, Provider: failingProvider{}})
	require.NoError(t, err)

	p, _, err := h.Alloc(10)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.ErrorIs(t, err, errProviderRefused)
	assert.Equal(t, Nil, p)
	assert.Equal(t, 0, h.ArenaCount())
	assertInvariants(t, h)
}

func TestFirstFitReusesFreedSlot(t *testing.T) {
	tests := []struct {
		name  string
		size  uint
		split bool
	}{
		{"exact size", 200, false},
		{"smaller with split", 120, true},
		{"smaller absorbing slack", 190, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHeap(t, 4096)
			p1, _ := mustAlloc(t, h, 200)
			p2, _ := mustAlloc(t, h, 200)
			p3, _ := mustAlloc(t, h, 200)

			require.NoError(t, h.Free(p2))
			assertInvariants(t, h)

			p4, _ := mustAlloc(t, h, tc.size)
			assert.Equal(t, p2, p4, "freed middle slot is the first fit")

			got := blockAt(t, h, p4)
			if tc.split {
				assert.Equal(t, uint(tc.size), got.Size)
			} else {
				assert.Equal(t, uint(200), got.Size)
			}
			assert.NotEqual(t, p1, p4)
			assert.NotEqual(t, p3, p4)
			assertInvariants(t, h)
		})
	}
}

func TestSplitThreshold(t *testing.T) {
	// A 120-byte free block: 100 leaves exactly header+4, 104 leaves header.
	tests := []struct {
		name      string
		need      uint
		wantSplit bool
	}{
		{"remainder is header plus minimum payload", 100, true},
		{"remainder below minimum payload", 104, false},
		{"exact fit", 120, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHeap(t, format.HeaderSize+120)
			p, _ := mustAlloc(t, h, tc.need)

			layout, err := h.Layout()
			require.NoError(t, err)
			require.Len(t, layout, 1)
			if tc.wantSplit {
				require.Len(t, layout[0].Blocks, 2)
				assert.Equal(t, tc.need, layout[0].Blocks[0].Size)
				assert.Equal(t, uint(format.MinSplitPayload), layout[0].Blocks[1].Size)
			} else {
				require.Len(t, layout[0].Blocks, 1)
				assert.Equal(t, uint(120), layout[0].Blocks[0].Size)
			}
			assert.Equal(t, p, layout[0].Blocks[0].Ptr)
			assertInvariants(t, h)
		})
	}
}

func TestSplitAndCoalesceAreInverse(t *testing.T) {
	const n = 100
	h := newTestHeap(t, format.HeaderSize+n+format.HeaderSize+format.MinSplitPayload)

	p, _ := mustAlloc(t, h, n)
	layout, err := h.Layout()
	require.NoError(t, err)
	require.Len(t, layout[0].Blocks, 2, "block of n+header+4 must split")
	require.True(t, layout[0].Blocks[1].Free)

	require.NoError(t, h.Free(p))

	layout, err = h.Layout()
	require.NoError(t, err)
	require.Len(t, layout, 1)
	require.Len(t, layout[0].Blocks, 1)
	assert.Equal(t, BlockInfo{
		Addr:  layout[0].Base,
		Ptr:   p,
		Size:  n + format.HeaderSize + format.MinSplitPayload,
		Free:  true,
		First: true,
		Last:  true,
	}, layout[0].Blocks[0])
	assertInvariants(t, h)
}

func TestWrittenBytesSurvive(t *testing.T) {
	h := newTestHeap(t, 4096)

	sizes := []uint{1, 3, 4, 17, 200, 999, 2048, 5000}
	ptrs := make([]Ptr, len(sizes))
	for i, sz := range sizes {
		p, b := mustAlloc(t, h, sz)
		fill(b, byte(i+1))
		ptrs[i] = p
	}

	// Churn around the survivors.
	for i := 0; i < len(ptrs); i += 2 {
		require.NoError(t, h.Free(ptrs[i]))
		ptrs[i] = Nil
	}
	for range 10 {
		_, b := mustAlloc(t, h, 64)
		fill(b, 0xAA)
	}

	for i, p := range ptrs {
		if p == Nil {
			continue
		}
		got, err := h.Bytes(p)
		require.NoError(t, err)
		want := make([]byte, sizes[i])
		fill(want, byte(i+1))
		assert.Equal(t, want, got[:sizes[i]], "block %d", i)
	}
	assertInvariants(t, h)
}

func TestFreeNilAndForeignPointers(t *testing.T) {
	h := newTestHeap(t, 4096)
	require.NoError(t, h.Free(Nil))

	p, _ := mustAlloc(t, h, 128)
	before, err := h.Layout()
	require.NoError(t, err)

	foreign := make([]byte, 64)
	for _, bad := range []Ptr{Ptr(1), p + 4, p - 4, Ptr(uintptr(0xdead0000)), Ptr(sliceAddr(foreign) + format.HeaderSize)} {
		err := h.Free(bad)
		require.ErrorIs(t, err, ErrInvalidPointer, "pointer 0x%X", uintptr(bad))
	}

	after, err := h.Layout()
	require.NoError(t, err)
	assert.Equal(t, before, after, "invalid frees must not mutate the heap")
	assert.Equal(t, 5, h.Stats().InvalidFrees)
	assertInvariants(t, h)
}

func TestDoubleFreeIsIdempotent(t *testing.T) {
	h := newTestHeap(t, 4096)
	p1, _ := mustAlloc(t, h, 100)
	mustAlloc(t, h, 100) // keeps p1 from merging into the tail

	require.NoError(t, h.Free(p1))
	once, err := h.Layout()
	require.NoError(t, err)

	require.NoError(t, h.Free(p1))
	twice, err := h.Layout()
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, uint64(100), h.Stats().BytesFreed, "second free releases nothing")
	assertInvariants(t, h)
}

func TestStrictFreeRejectsDoubleFree(t *testing.T) {
	h, err := New(&Config{DefaultArenaSize: 4096, StrictFree: true})
	require.NoError(t, err)
	p1, _ := mustAlloc(t, h, 100)
	mustAlloc(t, h, 100)

	require.NoError(t, h.Free(p1))
	require.ErrorIs(t, h.Free(p1), ErrDoubleFree)
	assertInvariants(t, h)
}

func TestConfigure(t *testing.T) {
	h, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, uint(DefaultArenaSize), h.DefaultArenaSize())

	require.ErrorIs(t, h.Configure(8), ErrInvalidConfig)
	require.NoError(t, h.Configure(8192))
	assert.Equal(t, uint(8192), h.DefaultArenaSize())

	mustAlloc(t, h, 10)
	layout, err := h.Layout()
	require.NoError(t, err)
	assert.Equal(t, uint(8192), layout[0].Size)

	require.ErrorIs(t, h.Configure(4096), ErrAlreadyConfigured)
	assert.Equal(t, uint(8192), h.DefaultArenaSize())
}

func TestNewRejectsTinyArena(t *testing.T) {
	_, err := New(&Config{DefaultArenaSize: format.HeaderSize})
	require.ErrorIs(t, err, ErrInvalidConfig)

	h, err := New(&Config{DefaultArenaSize: minArenaSize})
	require.NoError(t, err)
	mustAlloc(t, h, format.MinSplitPayload)
	assertInvariants(t, h)
}

func TestArenaSizeIsAligned(t *testing.T) {
	h := newTestHeap(t, 4097)
	mustAlloc(t, h, 1)
	layout, err := h.Layout()
	require.NoError(t, err)
	assert.Equal(t, uint(4100), layout[0].Size)
	assertInvariants(t, h)
}

func TestHeapsAreIndependent(t *testing.T) {
	h1 := newTestHeap(t, 4096)
	h2 := newTestHeap(t, 4096)

	p1, _ := mustAlloc(t, h1, 64)
	mustAlloc(t, h2, 64)

	require.ErrorIs(t, h2.Free(p1), ErrInvalidPointer)
	_, err := h2.Bytes(p1)
	require.ErrorIs(t, err, ErrInvalidPointer)

	require.NoError(t, h1.Free(p1))
	assertInvariants(t, h1)
	assertInvariants(t, h2)
}

func TestArenasScannedMostRecentFirst(t *testing.T) {
	h := newTestHeap(t, 4096)
	mustAlloc(t, h, 3000) // arena 0, leaves ~1064 free
	mustAlloc(t, h, 4000) // arena 1, leaves 64 free
	mustAlloc(t, h, 3000) // arena 2, leaves ~1064 free

	p, _ := mustAlloc(t, h, 500)
	layout, err := h.Layout()
	require.NoError(t, err)
	require.Len(t, layout, 3)

	inNewest := false
	for _, b := range layout[0].Blocks {
		if b.Ptr == p {
			inNewest = true
		}
	}
	assert.True(t, inNewest, "newest arena with room is scanned first")

	arenas := h.Arenas()
	require.Len(t, arenas, 3)
	for i, a := range arenas {
		assert.Equal(t, 2-i, a.Seq)
		assert.Equal(t, layout[i].Base, a.Base)
	}
	assertInvariants(t, h)
}
