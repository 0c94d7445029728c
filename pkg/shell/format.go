package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/timemachine/pkg/savefile"
	"github.com/ormasoftchile/timemachine/pkg/session"
)

// FormatFields writes fields as an aligned table: line, name, kind, value.
// Select values show their option label; unknown ones are marked with "?".
func FormatFields(w io.Writer, fields []session.FieldValue) {
	nameWidth := 0
	for _, fv := range fields {
		if n := runewidth.StringWidth(fv.Field.Name); n > nameWidth {
			nameWidth = n
		}
	}
	for _, fv := range fields {
		value := fv.Display
		if fv.Unknown {
			value = fv.Raw + " ?"
		} else if value != fv.Raw && fv.Field.Kind == savefile.KindSelect {
			value = fmt.Sprintf("%s (%s)", fv.Raw, fv.Display)
		}
		fmt.Fprintf(w, "%4d  %s  %-6s  %s\n",
			fv.Field.Line(), pad(fv.Field.Name, nameWidth), fv.Field.Kind, value)
	}
}

// FormatRows writes key/value rows with the keys padded to equal width.
func FormatRows(w io.Writer, rows [][2]string) {
	width := 0
	for _, r := range rows {
		if n := runewidth.StringWidth(r[0]); n > width {
			width = n
		}
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %s  %s\n", pad(r[0], width), r[1])
	}
}

func pad(s string, width int) string {
	if n := runewidth.StringWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
