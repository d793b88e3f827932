package main

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/cmd/heapexplorer/logger"
	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/printer"
)

const (
	historyLimit = 200
	runBatch     = 100
)

// Options configures a session.
type Options struct {
	Seed      int64
	MaxBlock  uint
	ArenaSize uint
}

// Model is the explorer state: a live heap, the allocations the session owns
// and the rendered layout.
type Model struct {
	opts Options
	keys KeyMap

	heap *heap.Heap
	rng  *rand.Rand
	live []heap.Ptr
	ops  int

	history       []string
	layoutText    string
	showAddresses bool
	showHelp      bool
	statusMessage string
	err           error

	viewport viewport.Model
	width    int
	height   int
}

// NewModel creates a model with a fresh heap.
func NewModel(opts Options) Model {
	if opts.MaxBlock == 0 {
		opts.MaxBlock = 1024
	}
	if opts.ArenaSize == 0 {
		opts.ArenaSize = heap.DefaultArenaSize
	}
	m := Model{
		opts:          opts,
		keys:          DefaultKeyMap(),
		viewport:      viewport.New(0, 0),
	}
	m.reset()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// reset starts over with a fresh heap and restarts the random sequence.
func (m *Model) reset() {
	h, err := heap.New(&heap.Config{DefaultArenaSize: m.opts.ArenaSize})
	if err != nil {
		m.err = err
		return
	}
	m.heap = h
	m.rng = rand.New(rand.NewSource(m.opts.Seed))
	m.live = nil
	m.ops = 0
	m.history = nil
	m.err = nil
	m.statusMessage = "Fresh heap"
	logger.Info("heap reset", "seed", m.opts.Seed, "arena_size", m.opts.ArenaSize)
	m.refreshLayout()
}

func (m *Model) randomSize() uint {
	return uint(m.rng.Int63n(int64(m.opts.MaxBlock))) + 1
}

// doAlloc allocates a random size and records the outcome.
func (m *Model) doAlloc() {
	size := m.randomSize()
	p, _, err := m.heap.Alloc(size)
	if err != nil {
		m.record(fmt.Sprintf("alloc(%d) failed: %v", size, err))
		return
	}
	m.live = append(m.live, p)
	m.record(fmt.Sprintf("alloc(%d) -> 0x%X", size, uintptr(p)))
}

// doFree frees a randomly chosen live allocation.
func (m *Model) doFree() {
	if len(m.live) == 0 {
		m.record("free skipped, nothing live")
		return
	}
	i := m.rng.Intn(len(m.live))
	p := m.live[i]
	if err := m.heap.Free(p); err != nil {
		m.record(fmt.Sprintf("free(0x%X) failed: %v", uintptr(p), err))
		return
	}
	m.live = append(m.live[:i], m.live[i+1:]...)
	m.record(fmt.Sprintf("free(0x%X)", uintptr(p)))
}

// doRealloc resizes a randomly chosen live allocation.
func (m *Model) doRealloc() {
	if len(m.live) == 0 {
		m.record("realloc skipped, nothing live")
		return
	}
	i := m.rng.Intn(len(m.live))
	p, size := m.live[i], m.randomSize()
	moved, _, err := m.heap.Realloc(p, size)
	if err != nil {
		m.record(fmt.Sprintf("realloc(0x%X, %d) failed: %v", uintptr(p), size, err))
		return
	}
	m.live[i] = moved
	m.record(fmt.Sprintf("realloc(0x%X, %d) -> 0x%X", uintptr(p), size, uintptr(moved)))
}

// doRandom performs one operation chosen uniformly.
func (m *Model) doRandom() {
	switch m.rng.Intn(3) {
	case 0:
		m.doAlloc()
	case 1:
		m.doFree()
	default:
		m.doRealloc()
	}
}

// record appends an operation to the history and verifies the heap.
func (m *Model) record(desc string) {
	m.ops++
	m.history = append(m.history, fmt.Sprintf("%4d  %s", m.ops, desc))
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}
	m.statusMessage = desc
	logger.Debug("heap operation", "n", m.ops, "op", desc, "live", len(m.live))

	if err := m.heap.Check(); err != nil {
		logger.Error("heap check failed", "error", err)
		m.err = err
	}
}

// refreshLayout re-renders the layout into the viewport.
func (m *Model) refreshLayout() {
	if m.heap == nil {
		return
	}
	var b strings.Builder
	opts := printer.DefaultOptions()
	opts.ShowAddresses = m.showAddresses
	opts.Summary = true
	opts.Separator = ""
	if err := printer.New(&b, opts).Print(m.heap); err != nil {
		m.err = err
		return
	}
	m.layoutText = b.String()

	if m.layoutText == "" {
		m.viewport.SetContent(summaryLineStyle.Render("No arenas yet. Press a to allocate."))
		return
	}
	lines := strings.Split(strings.TrimRight(m.layoutText, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "Arena"):
			lines[i] = arenaLineStyle.Render(line)
		case strings.HasPrefix(line, "*"):
			lines[i] = freeBlockStyle.Render(line)
		case strings.HasPrefix(line, "  Used"):
			lines[i] = summaryLineStyle.Render(line)
		default:
			lines[i] = busyBlockStyle.Render(line)
		}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}
