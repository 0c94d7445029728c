// Package gamedata holds the enumerated option tables the editor validates
// save fields against: items, phone cells, equipment stats, boss states,
// rooms, plot values and fun values.
package gamedata

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/timemachine/pkg/savefile"
)

//go:embed data.yaml
var builtin []byte

// Options maps a stored numeric value to its display label.
type Options map[int]string

// Has reports whether v is a known option.
func (o Options) Has(v int) bool {
	_, ok := o[v]
	return ok
}

// Label returns the label for v, or the number itself when unknown.
func (o Options) Label(v int) string {
	if l, ok := o[v]; ok {
		return l
	}
	return fmt.Sprintf("%d", v)
}

// Values returns the option values in ascending order.
func (o Options) Values() []int {
	out := make([]int, 0, len(o))
	for v := range o {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// PlotEntry describes a plot value.
type PlotEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// FunEvent is the event unlocked by a fun value.
type FunEvent struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Chance      string `yaml:"chance"`
	Condition   string `yaml:"condition"`
}

// Tables is the full set of option tables.
type Tables struct {
	Items   Options            `yaml:"items"`
	Cell    Options            `yaml:"cell"`
	Weapons map[int]int        `yaml:"weapons"`
	Armors  map[int]int        `yaml:"armors"`
	States  map[string]Options `yaml:"states"`
	Rooms   Options            `yaml:"rooms"`
	Plot    map[int]PlotEntry  `yaml:"plot"`
	Fun     FunTable           `yaml:"-"`
}

type rawTables struct {
	Tables `yaml:",inline"`
	Fun    map[string]FunEvent `yaml:"fun"`
}

// Load parses the embedded tables.
func Load() (*Tables, error) {
	return Parse(builtin)
}

// Parse decodes tables from YAML.
func Parse(data []byte) (*Tables, error) {
	var raw rawTables
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing game data: %w", err)
	}
	fun, err := expandFun(raw.Fun)
	if err != nil {
		return nil, err
	}
	t := raw.Tables
	t.Fun = fun
	return &t, nil
}

// Lookup resolves a savefile table name, including "states.<field>".
func (t *Tables) Lookup(table string) (Options, bool) {
	switch table {
	case savefile.TableItems:
		return t.Items, t.Items != nil
	case savefile.TableCell:
		return t.Cell, t.Cell != nil
	case savefile.TableRooms:
		return t.Rooms, t.Rooms != nil
	}
	if name, ok := strings.CutPrefix(table, "states."); ok {
		o, ok := t.States[name]
		return o, ok
	}
	return nil, false
}

// OptionLookup adapts Lookup to savefile.OptionLookup.
func (t *Tables) OptionLookup() savefile.OptionLookup {
	return func(table string) (savefile.OptionSet, bool) {
		o, ok := t.Lookup(table)
		if !ok {
			return nil, false
		}
		return o, true
	}
}

// WeaponAttack returns the attack granted by a weapon item.
func (t *Tables) WeaponAttack(item int) (int, bool) {
	at, ok := t.Weapons[item]
	return at, ok
}

// ArmorDefense returns the defense granted by an armor item.
func (t *Tables) ArmorDefense(item int) (int, bool) {
	df, ok := t.Armors[item]
	return df, ok
}

// PlotInfo returns the entry for the highest plot value not above v.
func (t *Tables) PlotInfo(v int) (PlotEntry, bool) {
	best, found := -1, false
	for k := range t.Plot {
		if k <= v && k > best {
			best, found = k, true
		}
	}
	if !found {
		return PlotEntry{}, false
	}
	return t.Plot[best], true
}
