package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds all TUI key bindings.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	PgUp   key.Binding
	PgDown key.Binding
	Edit   key.Binding
	Inc    key.Binding
	Dec    key.Binding
	Tab    key.Binding
	Search key.Binding
	Save   key.Binding
	Cancel key.Binding
	Quit   key.Binding
	Help   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	PgUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("PgUp", "page up"),
	),
	PgDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("PgDn", "page down"),
	),
	Edit: key.NewBinding(
		key.WithKeys("enter", "e"),
		key.WithHelp("enter", "edit"),
	),
	Inc: key.NewBinding(
		key.WithKeys("+", "right", "l"),
		key.WithHelp("+", "next value"),
	),
	Dec: key.NewBinding(
		key.WithKeys("-", "left", "h"),
		key.WithHelp("-", "previous value"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "save/ini"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Save: key.NewBinding(
		key.WithKeys("s", "ctrl+s"),
		key.WithHelp("s", "write files"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}

// keyBarText renders the context-sensitive key hint string.
func keyBarText(editing, searching, help bool) string {
	switch {
	case editing:
		return keyStyle.Render("Enter") + keyDescStyle.Render(":apply") + "  " +
			keyStyle.Render("Esc") + keyDescStyle.Render(":cancel")
	case searching:
		return keyStyle.Render("Enter") + keyDescStyle.Render(":keep filter") + "  " +
			keyStyle.Render("Esc") + keyDescStyle.Render(":clear")
	case help:
		return keyStyle.Render("Esc") + keyDescStyle.Render(":close") + "  " +
			keyStyle.Render("q") + keyDescStyle.Render(":quit")
	}
	return keyStyle.Render("↑↓") + keyDescStyle.Render(":browse") + "  " +
		keyStyle.Render("enter") + keyDescStyle.Render(":edit") + "  " +
		keyStyle.Render("+/-") + keyDescStyle.Render(":step") + "  " +
		keyStyle.Render("tab") + keyDescStyle.Render(":save/ini") + "  " +
		keyStyle.Render("/") + keyDescStyle.Render(":filter") + "  " +
		keyStyle.Render("s") + keyDescStyle.Render(":write") + "  " +
		keyStyle.Render("q") + keyDescStyle.Render(":quit") + "  " +
		keyStyle.Render("?") + keyDescStyle.Render(":help")
}
