package main

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	// Scrolling
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Heap operations
	Step    key.Binding
	Run     key.Binding
	Alloc   key.Binding
	Free    key.Binding
	Realloc key.Binding
	Reset   key.Binding

	// Commands
	Addresses key.Binding
	Copy      key.Binding
	Help      key.Binding
	Esc       key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Step: key.NewBinding(
			key.WithKeys("n", " "),
			key.WithHelp("n/space", "random operation"),
		),
		Run: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "100 random operations"),
		),
		Alloc: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "allocate random size"),
		),
		Free: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "free random allocation"),
		),
		Realloc: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reallocate random allocation"),
		),
		Reset: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "start over with a fresh heap"),
		),
		Addresses: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "toggle addresses/offsets"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy layout to clipboard"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Esc: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpSections groups bindings for the help overlay.
func (k KeyMap) helpSections() []helpSection {
	return []helpSection{
		{title: "Heap", bindings: []key.Binding{k.Step, k.Run, k.Alloc, k.Free, k.Realloc, k.Reset}},
		{title: "Layout", bindings: []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Addresses, k.Copy}},
		{title: "General", bindings: []key.Binding{k.Help, k.Quit}},
	}
}

type helpSection struct {
	title    string
	bindings []key.Binding
}
