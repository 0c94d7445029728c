package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	if m.help {
		w := m.width - 4
		if w <= 0 {
			w = 76
		}
		b.WriteString(panelBorder.Render(renderMarkdownWidth(helpMarkdown, w)))
	} else {
		b.WriteString(panelBorder.Render(m.listView()))
	}
	b.WriteString("\n")
	b.WriteString(m.detailView())
	b.WriteString("\n")

	switch {
	case m.editor.active:
		b.WriteString(" " + m.editor.View())
	case m.search.active || m.search.query != "":
		b.WriteString(" " + m.search.View())
	}
	b.WriteString("\n")

	if m.status != "" {
		style := keyDescStyle
		switch m.statusKind {
		case statusOK:
			style = statusOKStyle
		case statusWarn:
			style = statusWarnStyle
		case statusError:
			style = errorStyle
		}
		b.WriteString(" " + style.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(keyBarStyle.Render(keyBarText(m.editor.active, m.search.active, m.help)))
	return b.String()
}

func (m Model) headerView() string {
	name, _ := m.sess.Save.Get("name")
	love, _ := m.sess.Save.Get("love")
	title := headerStyle.Render(fmt.Sprintf("ftm  %s LV%s", name, love))
	if _, room, err := m.sess.Location(); err == nil && room != "" {
		title += "  " + keyDescStyle.Render("@ "+room)
	}

	tabs := make([]string, 0, 2)
	for _, p := range []pane{paneSave, paneIni} {
		label := p.String()
		if m.dirty[label] {
			label += " " + GlyphDirty
		}
		if p == m.pane {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(label))
		}
	}
	header := title + "  " + strings.Join(tabs, " ")
	if m.isDirty() {
		header += "  " + dirtyBadgeStyle.Render("UNSAVED")
	}
	if n := len(m.sess.Warnings); n > 0 {
		header += "  " + statusWarnStyle.Render(fmt.Sprintf("%s %d", GlyphWarning, n))
	}
	return header
}

func (m Model) listView() string {
	if len(m.rows) == 0 {
		return rowHint.Render("no fields match")
	}
	labelW := 0
	for _, r := range m.rows {
		labelW = max(labelW, runewidth.StringWidth(r.label))
	}

	end := min(m.offset+m.listHeight(), len(m.rows))
	lines := make([]string, 0, end-m.offset+1)
	lines = append(lines, panelTitle.Render(m.pane.String()))
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		cursor, style := "  ", rowNormal
		if i == m.cursor {
			cursor, style = GlyphCursor+" ", rowCurrent
		}
		value := style.Render(r.value)
		if r.unknown {
			value = rowUnknown.Render(r.value + " " + GlyphUnknown)
		}
		line := cursor + rowLabel.Render(runewidth.FillRight(r.label, labelW)) + "  " + value
		if r.hint != "" {
			line += "  " + rowHint.Render(r.hint)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) detailView() string {
	r, ok := m.current()
	if !ok {
		return ""
	}
	var parts []string
	if r.line > 0 {
		parts = append(parts, detailLabelStyle.Render("line")+" "+detailValueStyle.Render(fmt.Sprint(r.line)))
	}
	parts = append(parts, detailLabelStyle.Render("key")+" "+detailValueStyle.Render(r.key))
	parts = append(parts, detailLabelStyle.Render("kind")+" "+detailValueStyle.Render(r.kind.String()))
	if r.unknown {
		parts = append(parts, rowUnknown.Render("not a known option"))
	}
	return " " + strings.Join(parts, "  ")
}
