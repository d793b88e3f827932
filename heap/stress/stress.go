// Package stress drives an allocator with a randomized mix of allocate,
// free and reallocate calls, filling every payload with random bytes and
// verifying checksums of all live allocations as it goes.
package stress

import (
	"errors"
	"fmt"
	"hash/crc32"
	"math/rand"

	"github.com/joshuapare/heapkit/heap"
)

// ErrCorrupted indicates a live allocation's bytes changed behind its owner's back.
var ErrCorrupted = errors.New("stress: live allocation corrupted")

// Allocator is the surface the driver exercises. *heap.Heap implements it.
type Allocator interface {
	Alloc(size uint) (heap.Ptr, []byte, error)
	Free(p heap.Ptr) error
	Realloc(p heap.Ptr, size uint) (heap.Ptr, []byte, error)
}

// checker is implemented by allocators that can verify their own structure.
type checker interface {
	Check() error
}

// Op is one driver operation.
type Op int

const (
	OpAlloc Op = iota
	OpFree
	OpRealloc
)

func (o Op) String() string {
	switch o {
	case OpAlloc:
		return "alloc"
	case OpFree:
		return "free"
	case OpRealloc:
		return "realloc"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Step describes one executed operation.
type Step struct {
	Index  int
	Op     Op
	Ptr    heap.Ptr // input pointer (free, realloc)
	Size   uint     // requested size (alloc, realloc)
	Result heap.Ptr // returned pointer (alloc, realloc)
	Err    error    // out-of-memory failures land here; they do not stop the run
}

// Options controls a run.
type Options struct {
	// Iterations is the number of operations to issue.
	// Default: 1000
	Iterations int

	// MaxBlockSize bounds request sizes, which are drawn from [1, MaxBlockSize].
	// Default: 1024
	MaxBlockSize uint

	// Seed makes a run reproducible.
	Seed int64

	// CheckEvery verifies checksums (and structure, when the allocator
	// supports Check) every N steps. A negative value disables periodic
	// checks; the final verification always runs.
	// Default: 1
	CheckEvery int

	// OnStep, when set, is called after every operation. Returning an error
	// stops the run.
	OnStep func(Step) error
}

// Report summarizes a run.
type Report struct {
	Allocs   int
	Frees    int
	Reallocs int
	Failed   int // operations refused with heap.ErrOutOfMemory
	Skipped  int // free/realloc drawn while nothing was live
	MaxLive  int
	Checks   int
}

type liveAlloc struct {
	ptr  heap.Ptr
	data []byte
	sum  uint32
}

// Run executes the workload against a and frees every remaining allocation
// at the end.
func Run(a Allocator, opts Options) (Report, error) {
	if opts.Iterations <= 0 {
		opts.Iterations = 1000
	}
	if opts.MaxBlockSize == 0 {
		opts.MaxBlockSize = 1024
	}
	if opts.CheckEvery == 0 {
		opts.CheckEvery = 1
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	var (
		rep  Report
		live []liveAlloc
	)
	size := func() uint {
		return uint(rng.Int63n(int64(opts.MaxBlockSize))) + 1
	}

	for i := range opts.Iterations {
		st := Step{Index: i, Op: Op(rng.Intn(3))}

		switch st.Op {
		case OpAlloc:
			st.Size = size()
			p, data, err := a.Alloc(st.Size)
			st.Result, st.Err = p, err
			if err != nil {
				if !errors.Is(err, heap.ErrOutOfMemory) {
					return rep, fmt.Errorf("step %d: alloc(%d): %w", i, st.Size, err)
				}
				rep.Failed++
				break
			}
			rep.Allocs++
			live = append(live, randomFill(rng, p, data))

		case OpFree:
			if len(live) == 0 {
				rep.Skipped++
				break
			}
			idx := rng.Intn(len(live))
			st.Ptr = live[idx].ptr
			if err := a.Free(st.Ptr); err != nil {
				return rep, fmt.Errorf("step %d: free(0x%X): %w", i, uintptr(st.Ptr), err)
			}
			rep.Frees++
			live = append(live[:idx], live[idx+1:]...)

		case OpRealloc:
			if len(live) == 0 {
				rep.Skipped++
				break
			}
			idx := rng.Intn(len(live))
			old := live[idx]
			st.Ptr, st.Size = old.ptr, size()
			prefix := min(uint(len(old.data)), st.Size)
			wantPrefix := crc32.ChecksumIEEE(old.data[:prefix])

			p, data, err := a.Realloc(old.ptr, st.Size)
			st.Result, st.Err = p, err
			if err != nil {
				if !errors.Is(err, heap.ErrOutOfMemory) {
					return rep, fmt.Errorf("step %d: realloc(0x%X, %d): %w", i, uintptr(old.ptr), st.Size, err)
				}
				rep.Failed++
				break
			}
			if crc32.ChecksumIEEE(data[:prefix]) != wantPrefix {
				return rep, fmt.Errorf("%w: step %d: realloc lost the first %d bytes", ErrCorrupted, i, prefix)
			}
			rep.Reallocs++
			live[idx] = randomFill(rng, p, data)
		}

		rep.MaxLive = max(rep.MaxLive, len(live))
		if opts.OnStep != nil {
			if err := opts.OnStep(st); err != nil {
				return rep, err
			}
		}
		if opts.CheckEvery > 0 && (i+1)%opts.CheckEvery == 0 {
			if err := verify(a, live); err != nil {
				return rep, fmt.Errorf("step %d: %w", i, err)
			}
			rep.Checks++
		}
	}

	if err := verify(a, live); err != nil {
		return rep, fmt.Errorf("final: %w", err)
	}
	rep.Checks++
	for _, la := range live {
		if err := a.Free(la.ptr); err != nil {
			return rep, fmt.Errorf("final free(0x%X): %w", uintptr(la.ptr), err)
		}
	}
	if c, ok := a.(checker); ok {
		if err := c.Check(); err != nil {
			return rep, fmt.Errorf("after free-all: %w", err)
		}
	}
	return rep, nil
}

func randomFill(rng *rand.Rand, p heap.Ptr, data []byte) liveAlloc {
	rng.Read(data)
	return liveAlloc{ptr: p, data: data, sum: crc32.ChecksumIEEE(data)}
}

func verify(a Allocator, live []liveAlloc) error {
	for _, la := range live {
		if crc32.ChecksumIEEE(la.data) != la.sum {
			return fmt.Errorf("%w: 0x%X (%d bytes)", ErrCorrupted, uintptr(la.ptr), len(la.data))
		}
	}
	if c, ok := a.(checker); ok {
		return c.Check()
	}
	return nil
}
