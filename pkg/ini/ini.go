// Package ini reads and writes the game's ini configuration file: bracketed
// section headers followed by key="value" assignment lines.
package ini

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which rule a malformed line broke.
type Kind string

const (
	MissingSection    Kind = "missing_section"
	MissingEquals     Kind = "missing_equals"
	MissingQuote      Kind = "missing_quote"
	UnterminatedQuote Kind = "unterminated_quote"
)

func (k Kind) describe() string {
	switch k {
	case MissingSection:
		return "assignment outside of any section"
	case MissingEquals:
		return "expected '='"
	case MissingQuote:
		return "expected '\"'"
	case UnterminatedQuote:
		return "unterminated quoted value"
	default:
		return string(k)
	}
}

// FormatError reports the first malformed line found while parsing.
type FormatError struct {
	Kind Kind
	Line int // 1-based physical line number
	Text string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("ini line %d: %s: %q", e.Line, e.Kind.describe(), e.Text)
}

var (
	// ErrQuoteInValue is returned by Set for values containing a double quote.
	ErrQuoteInValue = errors.New("ini value must not contain '\"'")
	// ErrNotRepresentable is returned by Set for names that would not survive
	// a serialize/parse round trip.
	ErrNotRepresentable = errors.New("ini text not representable")
)

// Parse builds a Document from ini text. Lines may be separated by any mix of
// CR and LF; empty lines are skipped. Parsing stops at the first malformed line.
func Parse(text string) (*Document, error) {
	doc := NewDocument()
	current := ""
	inSection := false

	for i, line := range splitLines(text) {
		if line == "" {
			continue
		}

		if lb := strings.Index(line, "["); lb != -1 {
			rb := strings.Index(line[lb:], "]")
			if rb == -1 {
				// header without a closing bracket is ignored
				continue
			}
			current = line[lb+1 : lb+rb]
			inSection = true
			doc.reset(current)
			continue
		}

		if !inSection {
			return nil, &FormatError{Kind: MissingSection, Line: i + 1, Text: line}
		}
		eq := strings.Index(line, "=")
		if eq == -1 {
			return nil, &FormatError{Kind: MissingEquals, Line: i + 1, Text: line}
		}
		rest := line[eq+1:]
		lq := strings.Index(rest, `"`)
		if lq == -1 {
			return nil, &FormatError{Kind: MissingQuote, Line: i + 1, Text: line}
		}
		rq := strings.Index(rest[lq+1:], `"`)
		if rq == -1 {
			return nil, &FormatError{Kind: UnterminatedQuote, Line: i + 1, Text: line}
		}
		doc.set(current, line[:eq], rest[lq+1:lq+1+rq])
	}
	return doc, nil
}

// Serialize renders doc in file order with CRLF line endings.
func Serialize(doc *Document) string {
	var b strings.Builder
	for _, name := range doc.order {
		sec := doc.sections[name]
		b.WriteString("[" + name + "]\r\n")
		for _, key := range sec.keys {
			b.WriteString(key + `="` + sec.values[key] + "\"\r\n")
		}
	}
	return b.String()
}

// splitLines splits on CRLF, lone CR or lone LF, keeping empty lines so
// that indices match physical line numbers.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
