// Package savefile reads and writes the game's positional save file: one
// text field per line, with meaning fixed by line index.
package savefile

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// StandardLength is the number of lines in a save file written by the game.
const StandardLength = 548

// ErrFieldOutOfRange is returned when an index lies beyond the record.
var ErrFieldOutOfRange = errors.New("save field out of range")

// Record is the ordered list of raw save lines. Lines the editor never
// touches are written back exactly as read, minus trailing whitespace.
type Record struct {
	lines []string
}

// Parse splits save text on line feeds. A terminator after the last line
// does not produce an extra empty field, so Parse(Serialize(r)) keeps the
// field count of r.
func Parse(text string) *Record {
	if text == "" {
		return &Record{}
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return &Record{lines: lines}
}

// FromLines builds a record from a copy of lines.
func FromLines(lines []string) *Record {
	return &Record{lines: append([]string(nil), lines...)}
}

// Serialize renders the record with CRLF after each trimmed field. A field
// whose trimmed text still holds a line feed gets no terminator of its own;
// the game's files depend on this byte layout.
func Serialize(r *Record) string {
	var b strings.Builder
	for _, line := range r.lines {
		item := trimRight(line)
		b.WriteString(item)
		if !strings.Contains(item, "\n") {
			b.WriteString("\r\n")
		}
	}
	return b.String()
}

// Len returns the number of fields.
func (r *Record) Len() int { return len(r.lines) }

// Lines returns a copy of the raw fields.
func (r *Record) Lines() []string {
	return append([]string(nil), r.lines...)
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record { return FromLines(r.lines) }

// Line returns the field at index with trailing whitespace removed.
func (r *Record) Line(index int) (string, error) {
	if index < 0 || index >= len(r.lines) {
		return "", fmt.Errorf("%w: line %d of %d", ErrFieldOutOfRange, index+1, len(r.lines))
	}
	return trimRight(r.lines[index]), nil
}

// SetLine replaces the field at index. The record never grows.
func (r *Record) SetLine(index int, value string) error {
	if index < 0 || index >= len(r.lines) {
		return fmt.Errorf("%w: line %d of %d", ErrFieldOutOfRange, index+1, len(r.lines))
	}
	r.lines[index] = value
	return nil
}

func trimRight(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
