package savefile

import "fmt"

// OptionSet is an enumerated option list for a select field.
type OptionSet interface {
	Has(value int) bool
}

// OptionLookup resolves a field's Table name to its option list.
type OptionLookup func(table string) (OptionSet, bool)

// UnknownEnumValue reports a select field whose stored value is not in its
// option list. It is informational: the raw value stays in the record.
type UnknownEnumValue struct {
	Value string
	Line  int // 1-based
	Field string
}

func (e *UnknownEnumValue) Error() string {
	return fmt.Sprintf("unknown value %s at line %d (%s)", e.Value, e.Line, e.Field)
}

// Select parses a select field and checks it against options. On a mismatch
// the parsed value is still returned together with *UnknownEnumValue.
func (r *Record) Select(f Field, options OptionSet) (int, error) {
	raw, err := r.Line(f.Index)
	if err != nil {
		return 0, err
	}
	n, perr := parseInt(raw)
	if perr != nil || options == nil || !options.Has(n) {
		return n, &UnknownEnumValue{Value: raw, Line: f.Line(), Field: f.Name}
	}
	return n, nil
}

// CheckSelections runs Select over every select field the record is long
// enough to hold and collects the mismatches.
func (r *Record) CheckSelections(lookup OptionLookup) []*UnknownEnumValue {
	var out []*UnknownEnumValue
	for _, f := range Fields {
		if f.Kind != KindSelect || f.Index >= r.Len() {
			continue
		}
		opts, ok := lookup(f.Table)
		if !ok {
			continue
		}
		if _, err := r.Select(f, opts); err != nil {
			if u, ok := err.(*UnknownEnumValue); ok {
				out = append(out, u)
			}
		}
	}
	return out
}
