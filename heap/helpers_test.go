package heap

import (
	"errors"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/osmem"
)

var errProviderRefused = errors.New("provider refused")

// failingProvider refuses every reservation.
type failingProvider struct{}

func (failingProvider) Reserve(uint) ([]byte, error) {
	return nil, errProviderRefused
}

// budgetProvider grants a fixed number of reservations, then refuses.
type budgetProvider struct {
	remaining int
	calls     int
}

func (p *budgetProvider) Reserve(size uint) ([]byte, error) {
	p.calls++
	if p.remaining == 0 {
		return nil, errProviderRefused
	}
	p.remaining--
	return osmem.Reserve(size)
}

// contiguousProvider carves consecutive regions out of one backing buffer so
// consecutive arenas are address-adjacent.
type contiguousProvider struct {
	backing []byte
	used    int
}

func newContiguousProvider(n int) *contiguousProvider {
	return &contiguousProvider{backing: make([]byte, n)}
}

func (p *contiguousProvider) Reserve(size uint) ([]byte, error) {
	end := p.used + int(size)
	if end > len(p.backing) {
		return nil, errProviderRefused
	}
	b := p.backing[p.used:end:end]
	p.used = end
	return b, nil
}

// newTestHeap creates a heap over real OS memory with the given default arena size.
func newTestHeap(t testing.TB, arenaSize uint) *Heap {
	t.Helper()
	h, err := New(&Config{DefaultArenaSize: arenaSize})
	require.NoError(t, err)
	return h
}

// mustAlloc allocates and fails the test on error.
func mustAlloc(t testing.TB, h *Heap, size uint) (Ptr, []byte) {
	t.Helper()
	p, b, err := h.Alloc(size)
	require.NoError(t, err, "Alloc(%d)", size)
	require.NotEqual(t, Nil, p)
	require.Len(t, b, int(size))
	return p, b
}

// assertInvariants runs Check and fails the test with the heap dump on violation.
func assertInvariants(t testing.TB, h *Heap) {
	t.Helper()
	if err := h.Check(); err != nil {
		var sb strings.Builder
		_ = h.Dump(&sb)
		t.Fatalf("invariant check failed: %v\n%s", err, sb.String())
	}
}

// blockAt returns the layout entry whose payload pointer is p.
func blockAt(t testing.TB, h *Heap, p Ptr) BlockInfo {
	t.Helper()
	var found *BlockInfo
	require.NoError(t, h.Walk(func(_ ArenaInfo, b BlockInfo) error {
		if b.Ptr == p {
			bb := b
			found = &bb
		}
		return nil
	}))
	require.NotNil(t, found, "no block with payload 0x%X", uintptr(p))
	return *found
}

// fill writes a deterministic pattern derived from seed.
func fill(b []byte, seed byte) {
	for i := range b {
		b[i] = seed + byte(i*7)
	}
}

// sliceAddr returns the address of b's first byte.
func sliceAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}
