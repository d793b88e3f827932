package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
)

func init() {
	rootCmd.AddCommand(newLayoutCmd())
}

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout <op>...",
		Short: "Apply a sequence of operations and print the resulting layout",
		Long: `The layout command applies a scripted sequence of operations to a fresh
heap and prints the arena/block layout once at the end.

Operations:
  alloc:<size>           allocate size bytes; the result gets the next slot number
  free:<slot>            free the allocation in slot
  realloc:<slot>:<size>  resize the allocation in slot, which keeps its slot

Slots count successful allocs from 0.

Example:
  heapctl layout alloc:2000 alloc:8501
  heapctl layout alloc:100 alloc:100 alloc:100 free:1 --offsets --summary
  heapctl layout alloc:200 realloc:0:300 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(args)
		},
	}
	return cmd
}

type layoutOp struct {
	kind string
	slot int
	size uint
}

func parseLayoutOp(s string) (layoutOp, error) {
	parts := strings.Split(s, ":")
	num := func(i int) (uint64, error) {
		v, err := strconv.ParseUint(parts[i], 10, strconv.IntSize)
		if err != nil {
			return 0, fmt.Errorf("invalid operation %q: %w", s, err)
		}
		return v, nil
	}

	switch {
	case parts[0] == "alloc" && len(parts) == 2:
		size, err := num(1)
		return layoutOp{kind: "alloc", size: uint(size)}, err
	case parts[0] == "free" && len(parts) == 2:
		slot, err := num(1)
		return layoutOp{kind: "free", slot: int(slot)}, err
	case parts[0] == "realloc" && len(parts) == 3:
		slot, err := num(1)
		if err != nil {
			return layoutOp{}, err
		}
		size, err := num(2)
		return layoutOp{kind: "realloc", slot: int(slot), size: uint(size)}, err
	default:
		return layoutOp{}, fmt.Errorf("invalid operation %q (want alloc:N, free:SLOT or realloc:SLOT:N)", s)
	}
}

func runLayout(args []string) error {
	ops := make([]layoutOp, 0, len(args))
	for _, a := range args {
		op, err := parseLayoutOp(a)
		if err != nil {
			return err
		}
		ops = append(ops, op)
	}

	h, err := newHeap()
	if err != nil {
		return err
	}
	p, err := newPrinter()
	if err != nil {
		return err
	}

	var slots []heap.Ptr
	slot := func(i int) (heap.Ptr, error) {
		if i >= len(slots) {
			return heap.Nil, fmt.Errorf("slot %d does not exist (%d allocations so far)", i, len(slots))
		}
		return slots[i], nil
	}

	for i, op := range ops {
		printVerbose("%s\n", args[i])
		switch op.kind {
		case "alloc":
			ptr, _, err := h.Alloc(op.size)
			if err != nil {
				return fmt.Errorf("%s: %w", args[i], err)
			}
			slots = append(slots, ptr)
		case "free":
			ptr, err := slot(op.slot)
			if err != nil {
				return err
			}
			if err := h.Free(ptr); err != nil {
				return fmt.Errorf("%s: %w", args[i], err)
			}
		case "realloc":
			ptr, err := slot(op.slot)
			if err != nil {
				return err
			}
			moved, _, err := h.Realloc(ptr, op.size)
			if err != nil {
				return fmt.Errorf("%s: %w", args[i], err)
			}
			slots[op.slot] = moved
		}
	}

	if err := h.Check(); err != nil {
		return err
	}
	if err := p.Print(h); err != nil {
		return err
	}
	printStats(h)
	return nil
}
