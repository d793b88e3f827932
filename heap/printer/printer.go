// Package printer renders a heap's arena and block layout for people and
// for tools. It only reads the layout snapshot; it never touches the heap.
package printer

import (
	"fmt"
	"io"

	"golang.org/x/text/language"

	"github.com/joshuapare/heapkit/heap"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs the human-readable layout.
	FormatText Format = "text"

	// FormatJSON outputs one JSON document per Print call.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// ShowAddresses includes block addresses. Addresses differ run to run,
	// so golden output usually turns this off and relies on offsets.
	// Default: true
	ShowAddresses bool

	// GroupDigits formats byte counts with locale digit grouping (text only).
	// Default: true
	GroupDigits bool

	// Language selects the grouping convention when GroupDigits is set.
	// Default: language.English
	Language language.Tag

	// Summary appends per-arena used/free totals (text) or adds them to
	// each arena object (json).
	// Default: false
	Summary bool

	// Separator is printed after every text layout.
	// Default: "----------"
	Separator string
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:        FormatText,
		ShowAddresses: true,
		GroupDigits:   true,
		Language:      language.English,
		Separator:     "----------",
	}
}

// Source is anything that can produce a layout snapshot; *heap.Heap does.
type Source interface {
	Layout() ([]heap.ArenaLayout, error)
}

// Printer handles formatted output of heap layouts.
type Printer struct {
	opts   Options
	writer io.Writer
}

// New creates a new Printer writing to w.
//
// Example:
//
//	p := printer.New(os.Stdout, printer.DefaultOptions())
//	p.Print(h)
func New(w io.Writer, opts Options) *Printer {
	return &Printer{
		writer: w,
		opts:   opts,
	}
}

// Print renders the current layout of src.
func (p *Printer) Print(src Source) error {
	layout, err := src.Layout()
	if err != nil {
		return fmt.Errorf("read layout: %w", err)
	}
	return p.PrintLayout(layout)
}

// PrintLayout renders an already captured layout.
func (p *Printer) PrintLayout(layout []heap.ArenaLayout) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(layout)
	case FormatText:
		return p.printText(layout)
	default:
		return p.printText(layout)
	}
}

// arenaTotals sums the payload bytes of used and free blocks.
func arenaTotals(a heap.ArenaLayout) (used, free uint, freeBlocks int) {
	for _, b := range a.Blocks {
		if b.Free {
			free += b.Size
			freeBlocks++
		} else {
			used += b.Size
		}
	}
	return used, free, freeBlocks
}
