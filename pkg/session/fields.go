package session

import (
	"fmt"
	"strconv"

	"github.com/ormasoftchile/timemachine/pkg/gamedata"
	"github.com/ormasoftchile/timemachine/pkg/savefile"
)

// FieldValue is one save field as shown to the user.
type FieldValue struct {
	Field savefile.Field
	Raw   string
	// Display is the option label for select fields, "on"/"off" for flags
	// and the raw text otherwise.
	Display string
	// Unknown is set for select values missing from the option table.
	Unknown bool
}

// Fields returns every field the record is long enough to hold.
func (s *Session) Fields() []FieldValue {
	var out []FieldValue
	for _, f := range savefile.Fields {
		if fv, err := s.Field(f.Name); err == nil {
			out = append(out, fv)
		}
	}
	return out
}

// Field returns a single named field.
func (s *Session) Field(name string) (FieldValue, error) {
	f, ok := savefile.Lookup(name)
	if !ok {
		return FieldValue{}, fmt.Errorf("unknown field %q", name)
	}
	raw, err := s.Save.Line(f.Index)
	if err != nil {
		return FieldValue{}, err
	}
	fv := FieldValue{Field: f, Raw: raw, Display: raw}
	switch f.Kind {
	case savefile.KindSelect:
		opts, ok := s.opts.Tables.Lookup(f.Table)
		n, err := s.Save.Select(f, opts)
		if err != nil || !ok {
			fv.Unknown = true
			break
		}
		fv.Display = opts.Label(n)
	case savefile.KindFlag:
		on, _ := s.Save.Flag(f.Name)
		fv.Display = "off"
		if on {
			fv.Display = "on"
		}
	}
	return fv, nil
}

// Options returns the option table for a select field.
func (s *Session) Options(name string) (gamedata.Options, bool) {
	f, ok := savefile.Lookup(name)
	if !ok || f.Kind != savefile.KindSelect {
		return nil, false
	}
	return s.opts.Tables.Lookup(f.Table)
}

// SetField stores value in a named save field. Select fields only accept
// known options. Choosing a weapon or armor also updates weapon AT or
// armor DF from the equipment tables.
func (s *Session) SetField(name, value string) error {
	f, ok := savefile.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	if f.Kind == savefile.KindSelect {
		n, err := savefile.ParseInt(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		opts, ok := s.opts.Tables.Lookup(f.Table)
		if !ok || !opts.Has(n) {
			return &savefile.UnknownEnumValue{Value: value, Line: f.Line(), Field: f.Name}
		}
	}
	if err := s.Save.Set(name, value); err != nil {
		return err
	}

	item, _ := savefile.ParseInt(value)
	switch name {
	case "weapon":
		if at, ok := s.opts.Tables.WeaponAttack(item); ok {
			if err := s.Save.Set("weapon_at", strconv.Itoa(at)); err != nil {
				return err
			}
		}
	case "armor":
		if df, ok := s.opts.Tables.ArmorDefense(item); ok {
			if err := s.Save.Set("armor_df", strconv.Itoa(df)); err != nil {
				return err
			}
		}
	}
	s.check()
	return nil
}

// Plot describes the save's plot value.
func (s *Session) Plot() (int, gamedata.PlotEntry, bool) {
	n, err := s.Save.Int("plot")
	if err != nil {
		return 0, gamedata.PlotEntry{}, false
	}
	p, ok := s.opts.Tables.PlotInfo(n)
	return n, p, ok
}

// Location returns the save's room with its label.
func (s *Session) Location() (int, string, error) {
	n, err := s.Save.Int("location")
	if err != nil {
		return 0, "", err
	}
	return n, s.opts.Tables.Rooms.Label(n), nil
}
