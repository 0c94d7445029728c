package gamedata

import (
	"testing"

	"github.com/ormasoftchile/timemachine/pkg/savefile"
)

func TestLoadBuiltin(t *testing.T) {
	tables, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !tables.Items.Has(0) || tables.Items.Label(3) != "Stick" {
		t.Errorf("items table incomplete: %v", tables.Items[3])
	}
	if at, ok := tables.WeaponAttack(13); !ok || at != 3 {
		t.Errorf("WeaponAttack(13) = %d, %v", at, ok)
	}
	if df, ok := tables.ArmorDefense(12); !ok || df != 3 {
		t.Errorf("ArmorDefense(12) = %d, %v", df, ok)
	}
}

func TestEveryStateFieldHasTable(t *testing.T) {
	tables, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range savefile.Fields {
		if f.Kind != savefile.KindSelect {
			continue
		}
		if _, ok := tables.Lookup(f.Table); !ok {
			t.Errorf("field %s: no table %q", f.Name, f.Table)
		}
	}
}

func TestFunExpansion(t *testing.T) {
	data := []byte(`
fun:
  "0-2": {name: low}
  "5": {name: five}
  ">10": {name: high}
`)
	tables, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tests := []struct {
		value int
		want  string
		ok    bool
	}{
		{0, "low", true},
		{2, "low", true},
		{3, "", false},
		{5, "five", true},
		{10, "high", true},
		{250, "high", true},
	}
	for _, tt := range tests {
		ev, ok := tables.Fun.Event(tt.value)
		if ok != tt.ok || ev.Name != tt.want {
			t.Errorf("Event(%d) = %q, %v; want %q, %v", tt.value, ev.Name, ok, tt.want, tt.ok)
		}
	}
	if tables.Fun.Max != 10 {
		t.Errorf("Max = %d, want 10", tables.Fun.Max)
	}
}

func TestFunBadKey(t *testing.T) {
	for _, key := range []string{`"x"`, `"5-2"`, `">z"`} {
		if _, err := Parse([]byte("fun:\n  " + key + ": {name: a}\n")); err == nil {
			t.Errorf("key %s: expected error", key)
		}
	}
}

func TestPlotInfo(t *testing.T) {
	tables, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	p, ok := tables.PlotInfo(40)
	if !ok || p.Name != "Papyrus fought" {
		t.Errorf("PlotInfo(40) = %+v, %v", p, ok)
	}
	if _, ok := tables.PlotInfo(-1); ok {
		t.Error("PlotInfo(-1) should miss")
	}
}

func TestOptionLookupFeedsCheckSelections(t *testing.T) {
	tables, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	lines := make([]string, savefile.StandardLength)
	for i := range lines {
		lines[i] = "0"
	}
	r := savefile.FromLines(lines)
	if got := r.CheckSelections(tables.OptionLookup()); len(got) != 0 {
		t.Errorf("new-game record has mismatches: %v", got)
	}
	_ = r.SetLine(savefile.InventorySlot(1), "9999")
	if got := r.CheckSelections(tables.OptionLookup()); len(got) != 1 {
		t.Errorf("mismatches = %d, want 1", len(got))
	}
}
