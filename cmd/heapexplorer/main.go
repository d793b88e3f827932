package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/cmd/heapexplorer/logger"
	"github.com/joshuapare/heapkit/heap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type cliArgs struct {
	debug   bool
	help    bool
	version bool
	opts    Options
}

// parseArgs reads --flag=value style options. Unknown flags are errors.
func parseArgs(args []string) (cliArgs, error) {
	out := cliArgs{opts: Options{MaxBlock: 1024, ArenaSize: heap.DefaultArenaSize}}
	seedSet := false

	for _, arg := range args {
		name, value, hasValue := strings.Cut(arg, "=")
		var err error
		switch name {
		case "--debug", "-d":
			out.debug = true
		case "--help", "-h":
			out.help = true
		case "--version", "-v":
			out.version = true
		case "--seed":
			out.opts.Seed, err = strconv.ParseInt(value, 10, 64)
			seedSet = true
		case "--max-block":
			out.opts.MaxBlock, err = parseUint(value)
		case "--arena-size":
			out.opts.ArenaSize, err = parseUint(value)
		default:
			return out, fmt.Errorf("unknown option %q", arg)
		}
		if err != nil || (!hasValue && isValued(name)) {
			return out, fmt.Errorf("invalid value for %s: %q", name, value)
		}
	}

	if !seedSet {
		out.opts.Seed = time.Now().UnixNano()
	}
	if out.opts.MaxBlock == 0 {
		return out, fmt.Errorf("--max-block must be positive")
	}
	return out, nil
}

func isValued(name string) bool {
	return name == "--seed" || name == "--max-block" || name == "--arena-size"
}

func parseUint(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, strconv.IntSize)
	return uint(v), err
}

func main() {
	args, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsage()
		os.Exit(1)
	}

	if args.help {
		printHelp()
		os.Exit(0)
	}

	if args.version {
		fmt.Printf("heapexplorer %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		os.Exit(0)
	}

	// Initialize logger (must be before any logging calls)
	if err := logger.Init(logger.Options{
		Enabled: args.debug,
		Level:   slog.LevelDebug,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logging: %v\n", err)
	}
	logger.Info("starting heapexplorer",
		"seed", args.opts.Seed, "max_block", args.opts.MaxBlock, "arena_size", args.opts.ArenaSize)

	m := NewModel(args.opts)
	if m.err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", m.err)
		os.Exit(1)
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	logger.Info("heapexplorer exited normally")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: heapexplorer [options]\n")
	fmt.Fprintf(os.Stderr, "Try 'heapexplorer --help' for more information.\n")
}

func printHelp() {
	fmt.Println("heapexplorer - Interactive TUI for the heapkit allocator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  heapexplorer [options]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Drives a fresh heap with random allocate, free and reallocate calls and")
	fmt.Println("  shows the arena/block layout after every operation. Free blocks are")
	fmt.Println("  highlighted and the heap invariants are checked after each step.")
	fmt.Println()
	fmt.Println("  Keys:")
	fmt.Println("    n/space     Random operation")
	fmt.Println("    N           100 random operations")
	fmt.Println("    a / f / r   Allocate / free / reallocate")
	fmt.Println("    x           Start over")
	fmt.Println("    o           Toggle addresses and offsets")
	fmt.Println("    y           Copy layout to clipboard")
	fmt.Println("    ?           Show help")
	fmt.Println("    q           Quit")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  --seed=N         Random seed (default: clock)")
	fmt.Println("  --max-block=N    Largest request size (default: 1024)")
	fmt.Println("  --arena-size=N   Default arena size (default: 4096)")
	fmt.Println("  -d, --debug      Enable debug logging to ~/.heapexplorer/logs/")
	fmt.Println("  -h, --help       Show this help message")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println()
	fmt.Println("For non-interactive runs, use the 'heapctl' command instead.")
}
