package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
)

// demoHugeRequest is larger than any arena the OS will hand out, so the
// demo always shows a refused allocation.
const demoHugeRequest = uint(math.MaxInt) + 1

func init() {
	rootCmd.AddCommand(newDemoCmd())
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the reference allocation sequence",
		Long: `The demo command configures a 4096-byte default arena and runs a fixed
sequence, printing the layout after each phase:

  alloc(2000)
  alloc(8501)                    needs a dedicated arena
  alloc(<huge>)                  refused with out of memory
  alloc(200) x3
  realloc(first 200, 300), free the other two

Example:
  heapctl demo
  heapctl demo --offsets --summary
  heapctl demo --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	return cmd
}

type demoPhase struct {
	Step   string             `json:"step"`
	Error  string             `json:"error,omitempty"`
	Arenas []heap.ArenaLayout `json:"arenas"`
}

type demoReport struct {
	Phases []demoPhase `json:"phases"`
	Stats  *heap.Stats `json:"stats,omitempty"`
}

func runDemo() error {
	h, err := newHeap()
	if err != nil {
		return err
	}
	// The sequence is defined for 4096-byte arenas regardless of --arena-size.
	if err := h.Configure(heap.DefaultArenaSize); err != nil {
		return fmt.Errorf("failed to configure heap: %w", err)
	}
	p, err := newPrinter()
	if err != nil {
		return err
	}

	var report demoReport
	show := func(step string, stepErr error) error {
		if jsonOut {
			layout, err := h.Layout()
			if err != nil {
				return fmt.Errorf("failed to read layout: %w", err)
			}
			phase := demoPhase{Step: step, Arenas: layout}
			if stepErr != nil {
				phase.Error = stepErr.Error()
			}
			report.Phases = append(report.Phases, phase)
			return nil
		}
		printInfo("== %s ==\n", step)
		if stepErr != nil {
			printInfo("   failed: %v\n", stepErr)
		}
		return p.Print(h)
	}

	if _, _, err := h.Alloc(2000); err != nil {
		return fmt.Errorf("alloc(2000): %w", err)
	}
	if err := show("alloc(2000)", nil); err != nil {
		return err
	}

	if _, _, err := h.Alloc(8501); err != nil {
		return fmt.Errorf("alloc(8501): %w", err)
	}
	if err := show("alloc(8501)", nil); err != nil {
		return err
	}

	_, _, hugeErr := h.Alloc(demoHugeRequest)
	if !errors.Is(hugeErr, heap.ErrOutOfMemory) {
		return fmt.Errorf("alloc(%d): expected out of memory, got %v", demoHugeRequest, hugeErr)
	}
	if err := show(fmt.Sprintf("alloc(%d)", demoHugeRequest), hugeErr); err != nil {
		return err
	}

	var ptrs [3]heap.Ptr
	for i := range ptrs {
		ptr, _, err := h.Alloc(200)
		if err != nil {
			return fmt.Errorf("alloc(200): %w", err)
		}
		ptrs[i] = ptr
	}
	if err := show("alloc(200) x3", nil); err != nil {
		return err
	}

	if _, _, err := h.Realloc(ptrs[0], 300); err != nil {
		return fmt.Errorf("realloc(300): %w", err)
	}
	for _, ptr := range ptrs[1:] {
		if err := h.Free(ptr); err != nil {
			return fmt.Errorf("free: %w", err)
		}
	}
	if err := show("realloc(300), free x2", nil); err != nil {
		return err
	}

	if err := h.Check(); err != nil {
		return err
	}
	if jsonOut {
		report.Stats = statsFor(h)
		return printJSON(report)
	}
	printStats(h)
	return nil
}
