package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Flowey's Time Machine

Edit the save file on the **save** tab and the values that survive a
reset on the **ini** tab. Nothing touches the disk until you press ` + "`s`" + `.

| Key | Action |
| --- | --- |
| ↑/k ↓/j | move |
| enter | edit the selected value |
| + / - | step to the next or previous value |
| tab | switch between save and ini |
| / | filter by name |
| s | write changed files |
| q | quit (twice with unsaved changes) |

Every write backs the file up first. If the write fails the backup is put
back; if that also fails the backup is kept and its path is shown.

Select fields only accept values from their option table. Values marked
` + "`?`" + ` were found in the file but are not known options.
`

// renderMarkdownWidth renders markdown constrained to a specific column width.
// Falls back to the raw input if glamour is unavailable or rendering fails.
func renderMarkdownWidth(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	// Glamour adds trailing newlines; trim for inline use
	return strings.TrimRight(out, "\n")
}
