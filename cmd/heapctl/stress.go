package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/stress"
)

var (
	stressIterations int
	stressMaxBlock   uint
	stressSeed       int64
	stressCheckEvery int
	stressShowSteps  bool
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressIterations, "iterations", "n", 1000, "Number of operations")
	cmd.Flags().UintVar(&stressMaxBlock, "max-block", 1024, "Largest request size in bytes")
	cmd.Flags().Int64Var(&stressSeed, "seed", 0, "Random seed (0 picks one from the clock)")
	cmd.Flags().
		IntVar(&stressCheckEvery, "check-every", 1, "Verify checksums and invariants every N steps (negative disables)")
	cmd.Flags().
		BoolVar(&stressShowSteps, "show-steps", false, "Print every operation and the layout after it")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run a randomized alloc/free/realloc workload",
		Long: `The stress command issues a random mix of allocate, free and reallocate
calls with sizes in [1, --max-block]. Every payload is filled with random
bytes and every live allocation is checksummed after each step, along with
the allocator's structural invariants. Remaining allocations are freed at
the end.

Example:
  heapctl stress
  heapctl stress -n 10000 --max-block 4096 --seed 42
  heapctl stress -n 10 --show-steps --offsets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
	return cmd
}

type stressReport struct {
	Seed       int64         `json:"seed"`
	Iterations int           `json:"iterations"`
	MaxBlock   uint          `json:"max_block"`
	Report     stress.Report `json:"report"`
	Arenas     int           `json:"arenas"`
	Stats      *heap.Stats   `json:"stats,omitempty"`
}

func runStress() error {
	h, err := newHeap()
	if err != nil {
		return err
	}
	p, err := newPrinter()
	if err != nil {
		return err
	}

	seed := stressSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	printVerbose("Seed: %d\n", seed)

	opts := stress.Options{
		Iterations:   stressIterations,
		MaxBlockSize: stressMaxBlock,
		Seed:         seed,
		CheckEvery:   stressCheckEvery,
	}
	if stressShowSteps && !jsonOut {
		opts.OnStep = func(s stress.Step) error {
			printInfo("%d/%d: %s\n", s.Index+1, stressIterations, describeStep(s))
			return p.Print(h)
		}
	}

	rep, err := stress.Run(h, opts)
	if err != nil {
		return fmt.Errorf("stress run failed (seed %d): %w", seed, err)
	}

	if jsonOut {
		return printJSON(stressReport{
			Seed:       seed,
			Iterations: stressIterations,
			MaxBlock:   stressMaxBlock,
			Report:     rep,
			Arenas:     h.ArenaCount(),
			Stats:      statsFor(h),
		})
	}

	printInfo("Stress run complete (seed %d)\n", seed)
	printInfo("  Iterations: %d\n", stressIterations)
	printInfo("  Allocs: %d, Frees: %d, Reallocs: %d\n", rep.Allocs, rep.Frees, rep.Reallocs)
	printInfo("  Out of memory: %d, Skipped: %d\n", rep.Failed, rep.Skipped)
	printInfo("  Peak live allocations: %d\n", rep.MaxLive)
	printInfo("  Verifications: %d\n", rep.Checks)
	printInfo("  Arenas: %d\n", h.ArenaCount())
	printStats(h)
	return nil
}

func describeStep(s stress.Step) string {
	var desc string
	switch s.Op {
	case stress.OpAlloc:
		desc = fmt.Sprintf("alloc(size=%d)", s.Size)
	case stress.OpFree:
		if s.Ptr == heap.Nil {
			return "free skipped, nothing live"
		}
		desc = fmt.Sprintf("free(ptr=0x%X)", uintptr(s.Ptr))
	case stress.OpRealloc:
		if s.Ptr == heap.Nil {
			return "realloc skipped, nothing live"
		}
		desc = fmt.Sprintf("realloc(ptr=0x%X, size=%d)", uintptr(s.Ptr), s.Size)
	}
	if s.Err != nil {
		return desc + " failed: " + s.Err.Error()
	}
	if s.Result != heap.Nil {
		desc += fmt.Sprintf(" -> 0x%X", uintptr(s.Result))
	}
	return desc
}
