package savefile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind describes how a field's text is interpreted.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindSelect
	KindFlag
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindSelect:
		return "select"
	case KindFlag:
		return "flag"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field maps a semantic name to a fixed line index.
type Field struct {
	Name  string
	Index int
	Kind  Kind
	Label string
	// Table names the option list a select field is checked against.
	Table string
	// On and Off are the literal values a flag field stores.
	On, Off string
}

// Line returns the 1-based line number of the field.
func (f Field) Line() int { return f.Index + 1 }

// InventorySlot returns the line index of inventory slot k (1..8).
func InventorySlot(k int) int { return 12 + 2*(k-1) }

// CellSlot returns the line index of phone cell slot k (1..8).
func CellSlot(k int) int { return 13 + 2*(k-1) }

// Option table names used by select fields.
const (
	TableItems = "items"
	TableCell  = "cell"
	TableRooms = "rooms"
)

// StateTable returns the option table name for a boss-state field.
func StateTable(name string) string { return "states." + name }

// Fields is the static field table, ordered by line index.
var Fields = buildFields()

var byName map[string]Field

func init() {
	byName = make(map[string]Field, len(Fields))
	for _, f := range Fields {
		byName[f.Name] = f
	}
}

func buildFields() []Field {
	fs := []Field{
		{Name: "name", Index: 0, Kind: KindText, Label: "Name"},
		{Name: "love", Index: 1, Kind: KindNumber, Label: "LOVE"},
		{Name: "hp", Index: 2, Kind: KindNumber, Label: "HP"},
		{Name: "attack", Index: 4, Kind: KindNumber, Label: "AT"},
		{Name: "weapon_at", Index: 5, Kind: KindNumber, Label: "Weapon AT"},
		{Name: "defense", Index: 6, Kind: KindNumber, Label: "DF"},
		{Name: "armor_df", Index: 7, Kind: KindNumber, Label: "Armor DF"},
		{Name: "exp", Index: 9, Kind: KindNumber, Label: "EXP"},
		{Name: "gold", Index: 10, Kind: KindNumber, Label: "Gold"},
		{Name: "kills", Index: 11, Kind: KindNumber, Label: "Kills"},
		{Name: "weapon", Index: 28, Kind: KindSelect, Label: "Weapon", Table: TableItems},
		{Name: "armor", Index: 29, Kind: KindSelect, Label: "Armor", Table: TableItems},
		{Name: "fun", Index: 35, Kind: KindNumber, Label: "Fun"},
		{Name: "unk_kills", Index: 231, Kind: KindNumber, Label: "Unknown kills"},
		{Name: "kills_dungeon", Index: 232, Kind: KindNumber, Label: "Kills (Ruins)"},
		{Name: "kills_snowdin", Index: 233, Kind: KindNumber, Label: "Kills (Snowdin)"},
		{Name: "kills_waterfall", Index: 234, Kind: KindNumber, Label: "Kills (Waterfall)"},
		{Name: "kills_hotland", Index: 235, Kind: KindNumber, Label: "Kills (Hotland)"},
		{Name: "exited_true_lab", Index: 523, Kind: KindFlag, Label: "Exited True Lab", On: "12", Off: "0"},
		{Name: "plot", Index: 542, Kind: KindNumber, Label: "Plot"},
		{Name: "have_cell", Index: 545, Kind: KindFlag, Label: "Have cell phone", On: "1", Off: "0"},
		{Name: "location", Index: 547, Kind: KindSelect, Label: "Location", Table: TableRooms},
	}
	for k := 1; k <= 8; k++ {
		fs = append(fs,
			Field{Name: fmt.Sprintf("inv%d", k), Index: InventorySlot(k), Kind: KindSelect,
				Label: fmt.Sprintf("Inventory %d", k), Table: TableItems},
			Field{Name: fmt.Sprintf("cell%d", k), Index: CellSlot(k), Kind: KindSelect,
				Label: fmt.Sprintf("Cell %d", k), Table: TableCell},
		)
	}
	states := []struct {
		name  string
		index int
		label string
	}{
		{"training_dummy", 44, "Training Dummy"},
		{"toriel", 75, "Toriel"},
		{"doggo", 82, "Doggo"},
		{"dogamy_dogaressa", 83, "Dogamy & Dogaressa"},
		{"greater_dog", 84, "Greater Dog"},
		{"comedian", 87, "Snowdrake / Comedian"},
		{"papyrus", 97, "Papyrus"},
		{"shyren", 111, "Shyren"},
		{"undyne1", 281, "Undyne (first)"},
		{"mad_dummy", 282, "Mad Dummy"},
		{"undyne2", 380, "Undyne (second)"},
		{"muffet", 427, "Muffet"},
		{"bro_guards", 432, "Royal Guards"},
		{"mettaton", 455, "Mettaton"},
	}
	for _, s := range states {
		fs = append(fs, Field{Name: s.name, Index: s.index, Kind: KindSelect, Label: s.label, Table: StateTable(s.name)})
	}
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].Index < fs[j].Index })
	return fs
}

// Lookup returns the field with the given name.
func Lookup(name string) (Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// Get returns a named field's trimmed text.
func (r *Record) Get(name string) (string, error) {
	f, ok := Lookup(name)
	if !ok {
		return "", fmt.Errorf("unknown field %q", name)
	}
	return r.Line(f.Index)
}

// Int parses a named field as an integer.
func (r *Record) Int(name string) (int, error) {
	v, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	n, err := parseInt(v)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", name, err)
	}
	return n, nil
}

// Flag reports whether a flag field holds its On value.
func (r *Record) Flag(name string) (bool, error) {
	f, ok := Lookup(name)
	if !ok || f.Kind != KindFlag {
		return false, fmt.Errorf("%q is not a flag field", name)
	}
	v, err := r.Line(f.Index)
	if err != nil {
		return false, err
	}
	on, _ := strconv.Atoi(f.On)
	n, err := parseInt(v)
	return err == nil && n == on, nil
}

// Set stores value in a named field after checking it fits the field kind.
// Flag fields take a boolean and store the field's On/Off literal. Select
// fields are not checked against their option table here.
func (r *Record) Set(name, value string) error {
	f, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	switch f.Kind {
	case KindNumber, KindSelect:
		if _, err := parseInt(value); err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		value = strings.TrimSpace(value)
	case KindFlag:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("field %s: expected true or false, got %q", name, value)
		}
		value = f.Off
		if b {
			value = f.On
		}
	}
	return r.SetLine(f.Index, value)
}

// parseInt accepts the game's integer fields, which may be written as
// floats such as "12.000000".
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return int(fl), nil
}

// ParseInt exposes the save-file integer rules to callers reading raw lines.
func ParseInt(s string) (int, error) { return parseInt(s) }
