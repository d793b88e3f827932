package heap

import (
	"bytes"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

type liveAlloc struct {
	ptr  Ptr
	size uint
	seed byte
}

// checkLiveRanges verifies that every live [ptr, ptr+size) range lies inside
// exactly one arena, that no two ranges overlap, and that contents are intact.
func checkLiveRanges(t *testing.T, h *Heap, live []liveAlloc) {
	t.Helper()

	layout, err := h.Layout()
	require.NoError(t, err)

	sorted := slices.Clone(live)
	slices.SortFunc(sorted, func(a, b liveAlloc) int {
		switch {
		case a.ptr < b.ptr:
			return -1
		case a.ptr > b.ptr:
			return 1
		}
		return 0
	})

	for i, la := range sorted {
		start, end := uintptr(la.ptr), uintptr(la.ptr)+uintptr(la.size)
		inside := 0
		for _, a := range layout {
			if start >= a.Base && end <= a.Base+uintptr(a.Size) {
				inside++
			}
		}
		require.Equal(t, 1, inside, "allocation 0x%X+%d not inside exactly one arena", start, la.size)

		if i > 0 {
			prev := sorted[i-1]
			require.LessOrEqual(t, uintptr(prev.ptr)+uintptr(prev.size), start,
				"allocations 0x%X and 0x%X overlap", uintptr(prev.ptr), start)
		}

		got, err := h.Bytes(la.ptr)
		require.NoError(t, err)
		want := make([]byte, la.size)
		fill(want, la.seed)
		require.True(t, bytes.Equal(want, got[:la.size]), "content of 0x%X changed", start)
	}
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	iterations := 3000
	if testing.Short() {
		iterations = 300
	}

	for _, seed := range []int64{1, 7, 42} {
		h := newTestHeap(t, 4096)
		rng := rand.New(rand.NewSource(seed))
		var live []liveAlloc

		for step := range iterations {
			switch rng.Intn(3) {
			case 0:
				size := uint(rng.Intn(1024) + 1)
				p, b, err := h.Alloc(size)
				require.NoError(t, err, "seed %d step %d", seed, step)
				s := byte(rng.Intn(256))
				fill(b, s)
				live = append(live, liveAlloc{ptr: p, size: size, seed: s})

			case 1:
				if len(live) == 0 {
					continue
				}
				i := rng.Intn(len(live))
				require.NoError(t, h.Free(live[i].ptr), "seed %d step %d", seed, step)
				live = slices.Delete(live, i, i+1)

			case 2:
				if len(live) == 0 {
					continue
				}
				i := rng.Intn(len(live))
				size := uint(rng.Intn(1024) + 1)
				p, b, err := h.Realloc(live[i].ptr, size)
				require.NoError(t, err, "seed %d step %d", seed, step)
				keep := min(size, live[i].size)
				want := make([]byte, live[i].size)
				fill(want, live[i].seed)
				require.Equal(t, want[:keep], b[:keep], "seed %d step %d: realloc lost data", seed, step)
				s := byte(rng.Intn(256))
				fill(b, s)
				live[i] = liveAlloc{ptr: p, size: size, seed: s}
			}

			assertInvariants(t, h)
			if step%50 == 0 {
				checkLiveRanges(t, h, live)
			}
		}
		checkLiveRanges(t, h, live)

		for _, la := range live {
			require.NoError(t, h.Free(la.ptr))
		}
		assertInvariants(t, h)

		// Everything freed: each arena collapses back to one free block.
		layout, err := h.Layout()
		require.NoError(t, err)
		for _, a := range layout {
			require.Len(t, a.Blocks, 1, "seed %d arena #%d", seed, a.Seq)
			require.True(t, a.Blocks[0].Free)
		}
	}
}
