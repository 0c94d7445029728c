package ini

import (
	"fmt"
	"strings"
)

// Document is an ordered section → key → value mapping.
// The zero value is not usable; call NewDocument.
type Document struct {
	order    []string
	sections map[string]*section
}

type section struct {
	keys   []string
	values map[string]string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{sections: make(map[string]*section)}
}

// reset (re)declares a section. A repeated header empties the section but
// keeps its first position.
func (d *Document) reset(name string) {
	if _, ok := d.sections[name]; !ok {
		d.order = append(d.order, name)
	}
	d.sections[name] = &section{values: make(map[string]string)}
}

func (d *Document) ensure(name string) *section {
	sec, ok := d.sections[name]
	if !ok {
		d.reset(name)
		sec = d.sections[name]
	}
	return sec
}

func (d *Document) set(name, key, value string) {
	sec := d.ensure(name)
	if _, ok := sec.values[key]; !ok {
		sec.keys = append(sec.keys, key)
	}
	sec.values[key] = value
}

// Sections returns section names in file order.
func (d *Document) Sections() []string {
	return append([]string(nil), d.order...)
}

// HasSection reports whether the section exists (possibly empty).
func (d *Document) HasSection(name string) bool {
	_, ok := d.sections[name]
	return ok
}

// AddSection appends an empty section if it does not exist yet.
func (d *Document) AddSection(name string) error {
	if strings.ContainsAny(name, "]\r\n") {
		return fmt.Errorf("%w: section %q", ErrNotRepresentable, name)
	}
	d.ensure(name)
	return nil
}

// Entry is one key/value pair of a section.
type Entry struct {
	Key   string
	Value string
}

// Section returns the entries of a section in file order.
func (d *Document) Section(name string) ([]Entry, bool) {
	sec, ok := d.sections[name]
	if !ok {
		return nil, false
	}
	out := make([]Entry, 0, len(sec.keys))
	for _, k := range sec.keys {
		out = append(out, Entry{Key: k, Value: sec.values[k]})
	}
	return out, true
}

// Keys returns the keys of a section in file order, or nil.
func (d *Document) Keys(name string) []string {
	sec, ok := d.sections[name]
	if !ok {
		return nil
	}
	return append([]string(nil), sec.keys...)
}

// Get returns the value stored under section/key.
func (d *Document) Get(name, key string) (string, bool) {
	sec, ok := d.sections[name]
	if !ok {
		return "", false
	}
	v, ok := sec.values[key]
	return v, ok
}

// Set stores a value, creating the section and key at the end if needed.
// Text that Parse would read back differently is rejected.
func (d *Document) Set(name, key, value string) error {
	if strings.Contains(value, `"`) {
		return ErrQuoteInValue
	}
	if key == "" || strings.ContainsAny(key, "=[\"\r\n") ||
		strings.ContainsAny(value, "[\r\n") || strings.ContainsAny(name, "]\r\n") {
		return fmt.Errorf("%w: section %q key %q", ErrNotRepresentable, name, key)
	}
	d.set(name, key, value)
	return nil
}

// Delete removes a key. It reports whether the key existed.
func (d *Document) Delete(name, key string) bool {
	sec, ok := d.sections[name]
	if !ok {
		return false
	}
	if _, ok := sec.values[key]; !ok {
		return false
	}
	delete(sec.values, key)
	for i, k := range sec.keys {
		if k == key {
			sec.keys = append(sec.keys[:i], sec.keys[i+1:]...)
			break
		}
	}
	return true
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	c := NewDocument()
	for _, name := range d.order {
		c.reset(name)
		for _, key := range d.sections[name].keys {
			c.set(name, key, d.sections[name].values[key])
		}
	}
	return c
}

// Equal reports whether both documents hold the same sections, keys and
// values in the same order.
func (d *Document) Equal(o *Document) bool {
	if len(d.order) != len(o.order) {
		return false
	}
	for i, name := range d.order {
		if o.order[i] != name {
			return false
		}
		a, b := d.sections[name], o.sections[name]
		if len(a.keys) != len(b.keys) {
			return false
		}
		for j, key := range a.keys {
			if b.keys[j] != key || a.values[key] != b.values[key] {
				return false
			}
		}
	}
	return true
}
