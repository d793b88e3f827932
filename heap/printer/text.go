package printer

import (
	"fmt"
	"io"

	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/heap"
)

// printText prints one "Arena" line per arena followed by one line per
// block; free blocks are marked with '*'.
func (p *Printer) printText(layout []heap.ArenaLayout) error {
	out := p.out()
	for _, a := range layout {
		if _, err := out.Fprintf(p.writer, "Arena #%d (%db)\n", a.Seq, a.Size); err != nil {
			return err
		}
		for _, b := range a.Blocks {
			if err := p.printBlockText(out, b); err != nil {
				return err
			}
		}
		if p.opts.Summary {
			used, free, freeBlocks := arenaTotals(a)
			if _, err := out.Fprintf(p.writer, "  Used: %db, Free: %db in %d of %d blocks\n",
				used, free, freeBlocks, len(a.Blocks)); err != nil {
				return err
			}
		}
	}
	if p.opts.Separator != "" {
		if _, err := fmt.Fprintln(p.writer, p.opts.Separator); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printBlockText(out printf, b heap.BlockInfo) error {
	marker := " "
	if b.Free {
		marker = "*"
	}
	where := fmt.Sprintf("+%d", b.Offset)
	if p.opts.ShowAddresses {
		where = fmt.Sprintf("0x%X", b.Addr)
	}
	_, err := out.Fprintf(p.writer, "%s Block at %s -> Size: %d, Busy: %s, First: %s, Last: %s\n",
		marker, where, b.Size, yesNo(!b.Free), yesNo(b.First), yesNo(b.Last))
	return err
}

// printf is the subset of *message.Printer the text renderer needs, so the
// ungrouped path can use fmt directly.
type printf interface {
	Fprintf(w io.Writer, format string, args ...any) (int, error)
}

type plainPrinter struct{}

func (plainPrinter) Fprintf(w io.Writer, format string, args ...any) (int, error) {
	return fmt.Fprintf(w, format, args...)
}

type groupedPrinter struct{ p *message.Printer }

func (g groupedPrinter) Fprintf(w io.Writer, format string, args ...any) (int, error) {
	return g.p.Fprintf(w, format, args...)
}

func (p *Printer) out() printf {
	if !p.opts.GroupDigits {
		return plainPrinter{}
	}
	return groupedPrinter{p: message.NewPrinter(p.opts.Language)}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
