package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// editBar is the inline input used to change one value.
type editBar struct {
	active bool
	key    string
	input  textinput.Model
}

func newEditBar() editBar {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	return editBar{input: ti}
}

// Open starts editing r with its current value.
func (e *editBar) Open(r row) tea.Cmd {
	e.active = true
	e.key = r.key
	e.input.Prompt = r.label + ": "
	value := r.value
	if r.key == "fun" && value == "-" {
		value = ""
	}
	e.input.SetValue(value)
	e.input.CursorEnd()
	return e.input.Focus()
}

// Close ends editing without applying anything.
func (e *editBar) Close() {
	e.active = false
	e.input.Blur()
}

// Value returns the text typed so far.
func (e *editBar) Value() string { return e.input.Value() }

// Update forwards a key to the text input.
func (e *editBar) Update(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd
}

// View renders the input.
func (e *editBar) View() string {
	if !e.active {
		return ""
	}
	return e.input.View()
}
