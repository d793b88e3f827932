package heap

import (
	"fmt"
	"io"
)

// Stats holds allocator counters for tests and instrumentation.
type Stats struct {
	AllocCalls     int // Total Alloc() calls, including rejected ones
	AllocFastPath  int // Allocations served from an existing arena
	AllocSlowPath  int // Allocations that required a new arena
	FreeCalls      int // Free() calls with a non-nil pointer
	InvalidFrees   int // Free() calls with an unmanaged pointer
	ReallocCalls   int // Realloc() calls with a non-nil pointer
	ReallocInPlace int // Reallocs satisfied by the current block
	ReallocMoved   int // Reallocs that copied into a new block

	SplitCount     int // Number of block splits
	CoalescePasses int // Full coalescing passes run
	CoalesceMerges int // Blocks absorbed into a predecessor

	ArenasCreated  int    // Arenas obtained from the provider
	ArenaBytes     uint64 // Total bytes obtained from the provider
	BytesAllocated uint64 // Payload bytes handed out (aligned, slack included)
	BytesFreed     uint64 // Payload bytes returned
}

// Stats returns a snapshot of the allocator counters.
func (h *Heap) Stats() Stats {
	return h.stats
}

// WriteStats prints the counters in the same layout the debug dump uses.
func (h *Heap) WriteStats(w io.Writer) {
	s := h.stats
	fmt.Fprintf(w, "\n=== ALLOCATOR STATISTICS ===\n")
	fmt.Fprintf(w, "Arenas created:     %d (%d bytes)\n", s.ArenasCreated, s.ArenaBytes)
	fmt.Fprintf(w, "Alloc calls:        %d (fast: %d, slow: %d)\n", s.AllocCalls, s.AllocFastPath, s.AllocSlowPath)
	fmt.Fprintf(w, "Free calls:         %d (invalid: %d)\n", s.FreeCalls, s.InvalidFrees)
	fmt.Fprintf(w, "Realloc calls:      %d (in place: %d, moved: %d)\n", s.ReallocCalls, s.ReallocInPlace, s.ReallocMoved)
	fmt.Fprintf(w, "Bytes allocated:    %d\n", s.BytesAllocated)
	fmt.Fprintf(w, "Bytes freed:        %d\n", s.BytesFreed)
	fmt.Fprintf(w, "Block splits:       %d\n", s.SplitCount)
	fmt.Fprintf(w, "Coalesce passes:    %d (merges: %d)\n", s.CoalescePasses, s.CoalesceMerges)
	if s.ArenaBytes > 0 {
		live := int64(s.BytesAllocated) - int64(s.BytesFreed)
		fmt.Fprintf(w, "Live ratio:         %.1f%% of arena bytes\n", 100.0*float64(live)/float64(s.ArenaBytes))
	}
	fmt.Fprintf(w, "============================\n\n")
}
