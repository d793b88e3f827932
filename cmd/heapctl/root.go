package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/printer"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	arenaSize  uint
	strictFree bool
	offsets    bool
	summary    bool
	showStats  bool
	lang       string
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Exercise and inspect the heapkit allocator",
	Long: `heapctl drives the heapkit arena allocator from the command line. It can
replay the reference demo sequence, run randomized stress workloads with
checksum verification, and print the arena/block layout after a scripted
sequence of allocations.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		UintVar(&arenaSize, "arena-size", heap.DefaultArenaSize, "Default arena size in bytes")
	rootCmd.PersistentFlags().
		BoolVar(&strictFree, "strict-free", false, "Reject freeing an already free block")
	rootCmd.PersistentFlags().
		BoolVar(&offsets, "offsets", false, "Show block offsets instead of addresses")
	rootCmd.PersistentFlags().
		BoolVar(&summary, "summary", false, "Append used/free totals to every arena")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", false, "Print allocator counters at the end")
	rootCmd.PersistentFlags().
		StringVar(&lang, "lang", "en", "Language tag used for digit grouping (e.g. en, de, fr)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// newHeap creates a heap from the global flags.
func newHeap() (*heap.Heap, error) {
	h, err := heap.New(&heap.Config{
		DefaultArenaSize: arenaSize,
		StrictFree:       strictFree,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create heap: %w", err)
	}
	printVerbose("Heap created (default arena size %d bytes)\n", h.DefaultArenaSize())
	return h, nil
}

// newPrinter creates a layout printer from the global flags.
func newPrinter() (*printer.Printer, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("invalid --lang %q: %w", lang, err)
	}
	opts := printer.DefaultOptions()
	opts.ShowAddresses = !offsets
	opts.Summary = summary
	opts.Language = tag
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	return printer.New(stdout(), opts), nil
}

// stdout returns the writer for regular output, honoring --quiet.
func stdout() io.Writer {
	if quiet {
		return io.Discard
	}
	return os.Stdout
}

// printStats writes the allocator counters when --stats is set. JSON
// reports embed the counters themselves, so this only prints text.
func printStats(h *heap.Heap) {
	if showStats && !jsonOut {
		h.WriteStats(stdout())
	}
}

// statsFor returns the counters for JSON reports when --stats is set.
func statsFor(h *heap.Heap) *heap.Stats {
	if !showStats {
		return nil
	}
	s := h.Stats()
	return &s
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(stdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
