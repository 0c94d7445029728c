// Package tui implements the terminal field editor: a Bubble Tea app that
// browses and edits the save record and the persistent ini values of one
// session, then writes them back through the safe writer.
package tui

import "github.com/charmbracelet/lipgloss"

// Row glyphs convey meaning without relying on color alone.
const (
	GlyphCursor  = "▸"
	GlyphDirty   = "●"
	GlyphUnknown = "?"
	GlyphSaved   = "✓"
	GlyphFailed  = "✗"
	GlyphWarning = "⚠"
)

// Palette adapts to terminal capabilities via lipgloss.
var (
	colorGreen   = lipgloss.Color("42")
	colorRed     = lipgloss.Color("196")
	colorYellow  = lipgloss.Color("214")
	colorBlue    = lipgloss.Color("39")
	colorCyan    = lipgloss.Color("51")
	colorDim     = lipgloss.Color("240")
	colorWhite   = lipgloss.Color("255")
	colorMagenta = lipgloss.Color("201")
)

// --- Header styles ---

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorCyan).
	Padding(0, 1)

var (
	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(colorCyan).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Padding(0, 1)

	dirtyBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(colorYellow).
			Padding(0, 1)
)

// --- Field list styles ---

var (
	rowNormal = lipgloss.NewStyle().
			Foreground(colorWhite)

	rowCurrent = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)

	rowUnknown = lipgloss.NewStyle().
			Foreground(colorMagenta)

	rowHint = lipgloss.NewStyle().
		Foreground(colorDim)

	rowLabel = lipgloss.NewStyle().
			Foreground(colorBlue)
)

// --- Panel styles ---

var (
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim)

	panelTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Padding(0, 1)
)

// --- Detail bar styles ---

var (
	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorWhite)

	statusOKStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)

// --- Key bar styles ---

var (
	keyStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	keyBarStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

var errorStyle = lipgloss.NewStyle().
	Foreground(colorRed).
	Bold(true)
