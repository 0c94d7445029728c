package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// searchBar filters the field list by key or label.
type searchBar struct {
	active  bool
	input   textinput.Model
	query   string // committed or live filter
	matches int
}

func newSearchBar() searchBar {
	ti := textinput.New()
	ti.Placeholder = "Filter fields..."
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = "/ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	return searchBar{input: ti}
}

// Open activates the search bar and focuses the text input.
func (s *searchBar) Open() {
	s.active = true
	s.input.Reset()
	s.input.Focus()
	s.query = ""
}

// Close deactivates the search bar and drops the filter.
func (s *searchBar) Close() {
	s.active = false
	s.input.Blur()
	s.query = ""
	s.matches = 0
}

// Update handles key events when the search bar is active.
// closed: Esc dropped the filter. committed: Enter kept it.
func (s *searchBar) Update(msg tea.KeyMsg) (closed bool, committed bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.Close()
		return true, false, nil
	case "enter":
		s.query = s.input.Value()
		s.active = false
		s.input.Blur()
		return false, true, nil
	}

	var c tea.Cmd
	s.input, c = s.input.Update(msg)
	s.query = s.input.Value()
	return false, false, c
}

// Matches reports whether key or label contains the filter, ignoring case.
func (s *searchBar) Matches(key, label string) bool {
	if s.query == "" {
		return true
	}
	q := strings.ToLower(s.query)
	return strings.Contains(strings.ToLower(key), q) || strings.Contains(strings.ToLower(label), q)
}

// View renders the search bar.
func (s *searchBar) View() string {
	if !s.active && s.query == "" {
		return ""
	}
	result := keyDescStyle.Render("/" + s.query)
	if s.active {
		result = s.input.View()
	}
	switch {
	case s.matches == 1:
		result += "  " + lipgloss.NewStyle().Foreground(colorGreen).Render("1 field")
	case s.matches > 1:
		result += "  " + lipgloss.NewStyle().Foreground(colorGreen).Render(fmt.Sprintf("%d fields", s.matches))
	default:
		result += "  " + lipgloss.NewStyle().Foreground(colorRed).Render("no matches")
	}
	return result
}
