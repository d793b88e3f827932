package main

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/cmd/heapexplorer/logger"
)

// Fixed rows taken by the header, pane borders and status bar.
const chromeHeight = 6

// Update handles all messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// If help is showing, only closing keys apply
		if m.showHelp {
			if key.Matches(msg, m.keys.Esc) || key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
				m.showHelp = false
			}
			return m, nil
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.layoutWidth() - 4
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		logger.Info("quit", "ops", m.ops)
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.reset()
		return m, nil

	case key.Matches(msg, m.keys.Addresses):
		m.showAddresses = !m.showAddresses
		m.refreshLayout()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if err := clipboard.WriteAll(m.layoutText); err != nil {
			logger.Warn("clipboard write failed", "error", err)
			m.statusMessage = "Copy failed: " + err.Error()
		} else {
			m.statusMessage = "Layout copied to clipboard"
		}
		return m, nil
	}

	// Heap operations are refused once a check has failed
	if m.err != nil {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Step):
		m.doRandom()
	case key.Matches(msg, m.keys.Run):
		for range runBatch {
			m.doRandom()
			if m.err != nil {
				break
			}
		}
	case key.Matches(msg, m.keys.Alloc):
		m.doAlloc()
	case key.Matches(msg, m.keys.Free):
		m.doFree()
	case key.Matches(msg, m.keys.Realloc):
		m.doRealloc()
	default:
		// Up/Down/PageUp/PageDown scroll the layout
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	m.refreshLayout()
	return m, nil
}

// layoutWidth is the width of the layout pane; history takes the rest.
func (m Model) layoutWidth() int {
	if m.width == 0 {
		return 80
	}
	return m.width * 2 / 3
}
