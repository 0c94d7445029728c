// Package preset stores named snapshots of an edit session (ini document
// plus save lines) in a YAML file, seeded with built-in defaults.
package preset

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/timemachine/pkg/ini"
	"github.com/ormasoftchile/timemachine/pkg/savefile"
)

// APIVersion identifies the preset file format.
const APIVersion = "presets/v1"

// File is the on-disk preset document.
type File struct {
	APIVersion string   `yaml:"apiVersion" json:"apiVersion" jsonschema:"enum=presets/v1"`
	Presets    []Preset `yaml:"presets" json:"presets"`
}

// Preset is a named snapshot of an ini document and a save record.
type Preset struct {
	Name  string    `yaml:"name" json:"name" jsonschema:"minLength=1"`
	Ini   []Section `yaml:"ini,omitempty" json:"ini,omitempty"`
	Lines []string  `yaml:"lines,omitempty" json:"lines,omitempty"`
}

// Section is one ini section with its entries in order.
type Section struct {
	Name   string  `yaml:"name" json:"name"`
	Values []Entry `yaml:"values,omitempty" json:"values,omitempty"`
}

// Entry is one ini key/value pair.
type Entry struct {
	Key   string `yaml:"key" json:"key" jsonschema:"minLength=1"`
	Value string `yaml:"value" json:"value"`
}

// FromSession captures doc and rec under name. Either may be nil.
func FromSession(name string, doc *ini.Document, rec *savefile.Record) Preset {
	p := Preset{Name: name}
	if doc != nil {
		for _, sec := range doc.Sections() {
			entries, _ := doc.Section(sec)
			s := Section{Name: sec}
			for _, e := range entries {
				s.Values = append(s.Values, Entry{Key: e.Key, Value: e.Value})
			}
			p.Ini = append(p.Ini, s)
		}
	}
	if rec != nil {
		p.Lines = rec.Lines()
	}
	return p
}

// Document rebuilds the preset's ini document.
func (p Preset) Document() (*ini.Document, error) {
	doc := ini.NewDocument()
	for _, s := range p.Ini {
		if err := doc.AddSection(s.Name); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		for _, e := range s.Values {
			if err := doc.Set(s.Name, e.Key, e.Value); err != nil {
				return nil, fmt.Errorf("preset %q: %s.%s: %w", p.Name, s.Name, e.Key, err)
			}
		}
	}
	return doc, nil
}

// Record rebuilds the preset's save record.
func (p Preset) Record() *savefile.Record {
	return savefile.FromLines(p.Lines)
}

// Decode parses a preset file with strict unknown-field rejection.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &File{APIVersion: APIVersion}, nil
		}
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	return &f, nil
}

// Encode writes f as YAML.
func Encode(w io.Writer, f *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	return enc.Close()
}

// Find returns the index of the named preset, or -1.
func (f *File) Find(name string) int {
	for i, p := range f.Presets {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the preset names in file order.
func (f *File) Names() []string {
	out := make([]string, len(f.Presets))
	for i, p := range f.Presets {
		out[i] = p.Name
	}
	return out
}
