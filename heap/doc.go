// Package heap implements a process-local heap allocator over raw memory
// arenas obtained from the operating system.
//
// # Overview
//
// A Heap owns a list of arenas. Each arena is tiled by blocks; every block
// starts with a 16-byte header (payload size plus free/first/last flags)
// written directly into arena memory, followed by its payload. An address
// index over all block starts sits beside the headers so adjacency can be
// tested in O(1). Headers and index change together, never separately.
//
// # Operations
//
//   - Alloc(size): first-fit over arenas (newest first) and blocks (address
//     order), splitting oversized blocks
//   - Free(ptr): mark the block free and coalesce adjacent free blocks
//   - Realloc(ptr, size): shrink in place or move to a larger block
//   - Configure(size): set the default arena size before the first Alloc
//
// # Usage Example
//
//	h, err := heap.New(&heap.Config{DefaultArenaSize: 4096})
//	if err != nil {
//	    return err
//	}
//
//	p, buf, err := h.Alloc(200)
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	p, buf, err = h.Realloc(p, 1000)
//	if err != nil {
//	    return err // p is still valid here
//	}
//
//	_ = h.Free(p)
//
// # Arena Growth
//
// When no existing block fits, exactly one new arena is created, sized
// max(aligned request + header, DefaultArenaSize). Arenas are never returned
// to the OS.
//
// # Alignment
//
// Payload sizes are rounded up to a multiple of 4. A size whose rounding (or
// whose arena size) would overflow uint fails with ErrOversizedRequest
// instead of wrapping.
//
// # Freeing
//
// Free of a pointer the heap does not manage returns ErrInvalidPointer and
// changes nothing. A repeated Free of the same block is accepted as a no-op
// unless Config.StrictFree is set.
//
// # Thread Safety
//
// Heap instances are not thread-safe. Callers must synchronize access
// externally.
//
// # Related Packages
//
//   - github.com/joshuapare/heapkit/heap/printer: human-readable layout rendering
//   - github.com/joshuapare/heapkit/heap/stress: randomized workload driver
//   - github.com/joshuapare/heapkit/internal/osmem: OS memory provider
package heap
