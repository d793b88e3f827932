package heap

import (
	"fmt"
	"io"
	"os"
)

// Debug flag - set to true to enable verbose logging (compile-time toggle).
const debugHeap = false

// Runtime debug flag for allocation logging - controlled by HEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAP_LOG_ALLOC") != ""

// debugLogf prints debug messages if debugHeap is enabled.
func debugLogf(format string, args ...any) {
	if debugHeap {
		fmt.Fprintf(os.Stderr, "[HEAP] "+format+"\n", args...)
	}
}

// Dump writes every arena and block to w, one line per block. It is meant
// for debugging sessions; heap/printer renders the same walk for people.
func (h *Heap) Dump(w io.Writer) error {
	fmt.Fprintf(w, "=== HEAP STATE: %d arenas, %d blocks indexed ===\n", h.arenaCount, h.table.len())
	err := h.Walk(func(a ArenaInfo, b BlockInfo) error {
		if b.First {
			fmt.Fprintf(w, "arena #%d base=0x%X size=%d\n", a.Seq, a.Base, a.Size)
		}
		fmt.Fprintf(w, "  +%-8d size=%-8d free=%-5v first=%-5v last=%v\n",
			b.Offset, b.Size, b.Free, b.First, b.Last)
		return nil
	})
	fmt.Fprintf(w, "===================================\n")
	return err
}
