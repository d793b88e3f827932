package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

// View renders the entire UI
func (m Model) View() string {
	if m.showHelp {
		// Recreated each render; bubbletea's Update returns new models, so a
		// stored pointer would go stale.
		help := overlay.New(
			helpModel{keys: m.keys},
			mainViewModel{model: m},
			overlay.Center,
			overlay.Center,
			0,
			0,
		)
		return help.View()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderContent(),
		m.renderStatus(),
	)
}

// renderHeader renders the title with the session parameters
func (m Model) renderHeader() string {
	params := fmt.Sprintf("seed %d, max block %d, arena %d", m.opts.Seed, m.opts.MaxBlock, m.opts.ArenaSize)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		headerStyle.Render("Heap Explorer"),
		"  ",
		seedStyle.Render(params),
	)
}

// renderContent renders the layout pane and the history pane side by side
func (m Model) renderContent() string {
	layoutWidth := m.layoutWidth()
	historyWidth := max(m.width-layoutWidth, 30)

	layoutPane := paneStyle.
		Width(layoutWidth - 2).
		Render(paneTitleStyle.Render("Layout") + "\n" + m.viewport.View())

	visible := max(m.viewport.Height, 3)
	start := max(len(m.history)-visible, 0)
	historyPane := paneStyle.
		Width(historyWidth - 2).
		Render(paneTitleStyle.Render("Operations") + "\n" + strings.Join(m.history[start:], "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, layoutPane, historyPane)
}

// renderStatus renders the status bar
func (m Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v  (x to start over, q to quit)", m.err))
	}
	stats := m.heap.Stats()
	line := fmt.Sprintf("%d ops | %d live | %d arenas | %d splits | %d merges | %s | ? help",
		m.ops, len(m.live), m.heap.ArenaCount(), stats.SplitCount, stats.CoalesceMerges, m.statusMessage)
	return statusStyle.Render(line)
}

// mainViewModel wraps the main UI for use as the overlay background
type mainViewModel struct {
	model Model
}

func (v mainViewModel) Init() tea.Cmd                       { return nil }
func (v mainViewModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return v, nil }
func (v mainViewModel) View() string                        { return v.model.renderMain() }

// helpModel renders the keyboard shortcut box shown over the main UI
type helpModel struct {
	keys KeyMap
}

func (h helpModel) Init() tea.Cmd                       { return nil }
func (h helpModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return h, nil }

func (h helpModel) View() string {
	const keyWidth = 10

	var b strings.Builder
	b.WriteString(helpTitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, section := range h.keys.helpSections() {
		b.WriteString(helpSectionStyle.Render(section.title))
		b.WriteString("\n")
		for _, binding := range section.bindings {
			help := binding.Help()
			b.WriteString(helpKeyStyle.Width(keyWidth).Render(help.Key))
			b.WriteString("  ")
			b.WriteString(helpDescStyle.Render(help.Desc))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(helpDescStyle.Render("Press ? or esc to close"))
	return helpBoxStyle.Render(b.String())
}
