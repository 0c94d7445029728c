package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/ormasoftchile/timemachine/pkg/ini"
	"github.com/ormasoftchile/timemachine/pkg/preset"
	"github.com/ormasoftchile/timemachine/pkg/safewrite"
	"github.com/ormasoftchile/timemachine/pkg/savefile"
)

const (
	iniPath  = "/game/undertale.ini"
	savePath = "/game/file0"
	iniText  = "[General]\r\nName=\"Frisk\"\r\nRoom=\"12.000000\"\r\nKills=\"0\"\r\nLove=\"1\"\r\nfun=\"40\"\r\n"
)

func newGameLines() []string {
	return preset.Defaults().Presets[0].Lines
}

func setup(t *testing.T, lines []string) (afero.Fs, Options) {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, iniPath, []byte(iniText), 0o644); err != nil {
		t.Fatal(err)
	}
	save := savefile.Serialize(savefile.FromLines(lines))
	if err := afero.WriteFile(fs, savePath, []byte(save), 0o644); err != nil {
		t.Fatal(err)
	}
	return fs, Options{
		Fs:       fs,
		IniPath:  iniPath,
		SavePath: savePath,
		Writer:   safewrite.New(fs, "/cache"),
	}
}

func TestLoad(t *testing.T) {
	_, opts := setup(t, newGameLines())
	s, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Save.Len() != savefile.StandardLength {
		t.Errorf("Len = %d", s.Save.Len())
	}
	if len(s.Warnings) != 0 {
		t.Errorf("Warnings = %v", s.Warnings)
	}
	if name, _ := s.Ini.Get("General", "Name"); name != "Frisk" {
		t.Errorf("Name = %q", name)
	}
}

func TestLoadReportsUnknownValues(t *testing.T) {
	lines := newGameLines()
	lines[savefile.InventorySlot(3)] = "777"
	_, opts := setup(t, lines)
	s, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Warnings) != 1 || s.Warnings[0].Line != 17 || s.Warnings[0].Field != "inv3" {
		t.Fatalf("Warnings = %v", s.Warnings)
	}
	if raw, _ := s.Save.Get("inv3"); raw != "777" {
		t.Errorf("raw value should be kept, got %q", raw)
	}
}

func TestLoadAbortsOnBadIni(t *testing.T) {
	fs, opts := setup(t, newGameLines())
	afero.WriteFile(fs, iniPath, []byte("Name=\"x\"\r\n"), 0o644)
	_, err := Load(context.Background(), opts)
	var fe *ini.FormatError
	if !errors.As(err, &fe) || fe.Kind != ini.MissingSection {
		t.Fatalf("err = %v, want missing_section", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs, opts := setup(t, newGameLines())
	fs.Remove(savePath)
	if _, err := Load(context.Background(), opts); err == nil || !strings.Contains(err.Error(), "save file") {
		t.Fatalf("err = %v", err)
	}
}

func TestSetFieldEquipmentStats(t *testing.T) {
	_, opts := setup(t, newGameLines())
	s, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetField("weapon", "13"); err != nil {
		t.Fatalf("SetField weapon: %v", err)
	}
	if at, _ := s.Save.Int("weapon_at"); at != 3 {
		t.Errorf("weapon_at = %d, want 3", at)
	}
	if err := s.SetField("armor", "15"); err != nil {
		t.Fatal(err)
	}
	if df, _ := s.Save.Int("armor_df"); df != 7 {
		t.Errorf("armor_df = %d, want 7", df)
	}

	err = s.SetField("inv1", "4040")
	var u *savefile.UnknownEnumValue
	if !errors.As(err, &u) || u.Line != 13 {
		t.Errorf("err = %v, want UnknownEnumValue at line 13", err)
	}
	if err := s.SetField("gold", "abc"); err == nil {
		t.Error("non-numeric gold accepted")
	}
}

func TestFieldDisplay(t *testing.T) {
	lines := newGameLines()
	lines[savefile.CellSlot(1)] = "999"
	_, opts := setup(t, lines)
	s, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	weapon, _ := s.Field("weapon")
	if weapon.Display != "Stick" {
		t.Errorf("weapon display = %q", weapon.Display)
	}
	cell, _ := s.Field("cell1")
	if !cell.Unknown || cell.Display != "999" {
		t.Errorf("cell1 = %+v", cell)
	}
	cellPhone, _ := s.Field("have_cell")
	if cellPhone.Display != "off" {
		t.Errorf("have_cell = %q", cellPhone.Display)
	}
	if n := len(s.Fields()); n != len(savefile.Fields) {
		t.Errorf("Fields = %d, want %d", n, len(savefile.Fields))
	}
	if _, label, _ := s.Location(); label != "Ruins - Entrance" {
		t.Errorf("location label = %q", label)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	fs, opts := setup(t, newGameLines())
	ctx := context.Background()
	s, err := Load(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetField("gold", "500"); err != nil {
		t.Fatal(err)
	}
	ops, err := s.SaveAll(ctx)
	if err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	for _, op := range ops {
		if op.Outcome != safewrite.OutcomeCommitted {
			t.Errorf("%s: %s", op.Path, op.Outcome)
		}
	}
	for _, b := range []string{"/cache/file0", "/cache/undertale.ini"} {
		if ok, _ := afero.Exists(fs, b); ok {
			t.Errorf("backup %s left behind", b)
		}
	}

	again, err := Load(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if gold, _ := again.Save.Int("gold"); gold != 500 {
		t.Errorf("gold = %d", gold)
	}
	if again.Save.Len() != savefile.StandardLength {
		t.Errorf("Len = %d after save", again.Save.Len())
	}
	if !again.Ini.Equal(s.Ini) {
		t.Error("ini changed across save/load")
	}
}

func TestApplyPresetAndSnapshot(t *testing.T) {
	_, opts := setup(t, newGameLines())
	s, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	p := preset.Defaults().Presets[1]
	if err := s.ApplyPreset(p); err != nil {
		t.Fatal(err)
	}
	if loc, _ := s.Save.Int("location"); loc != 44 {
		t.Errorf("location = %d", loc)
	}
	snap := s.Snapshot("copy")
	if snap.Name != "copy" || len(snap.Lines) != len(p.Lines) {
		t.Errorf("snapshot = %s with %d lines", snap.Name, len(snap.Lines))
	}
}
