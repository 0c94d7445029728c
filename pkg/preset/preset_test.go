package preset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/ormasoftchile/timemachine/pkg/gamedata"
	"github.com/ormasoftchile/timemachine/pkg/ini"
	"github.com/ormasoftchile/timemachine/pkg/savefile"
)

const storePath = "/cache/presets.yaml"

func TestDefaultsAreValid(t *testing.T) {
	f := Defaults()
	if errs := Validate(f); len(errs) > 0 {
		t.Fatalf("defaults invalid: %v", errs)
	}
	tables, err := gamedata.Load()
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range f.Presets {
		rec := p.Record()
		if rec.Len() != savefile.StandardLength {
			t.Errorf("%s: %d lines", p.Name, rec.Len())
		}
		if bad := rec.CheckSelections(tables.OptionLookup()); len(bad) > 0 {
			t.Errorf("%s: unknown values %v", p.Name, bad)
		}
	}
}

func TestFromSessionRoundTrip(t *testing.T) {
	doc, err := ini.Parse("[General]\r\nName=\"Chara\"\r\n[FFFFF]\r\nD=\"3\"\r\n")
	if err != nil {
		t.Fatal(err)
	}
	rec := savefile.FromLines([]string{"Chara", "20", "99"})

	p := FromSession("mine", doc, rec)
	var buf bytes.Buffer
	if err := Encode(&buf, &File{APIVersion: APIVersion, Presets: []Preset{p}}); err != nil {
		t.Fatal(err)
	}
	f, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	back, err := f.Presets[0].Document()
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(doc) {
		t.Errorf("ini mismatch: %q", ini.Serialize(back))
	}
	if got := strings.Join(f.Presets[0].Record().Lines(), ","); got != "Chara,20,99" {
		t.Errorf("lines = %s", got)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("apiVersion: presets/v1\nbogus: 1\n"))
	if err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		phase string
	}{
		{"wrong version", "apiVersion: presets/v0\npresets: []\n", "semantic"},
		{"empty name", "apiVersion: presets/v1\npresets:\n  - name: \"\"\n", "semantic"},
		{"duplicate", "apiVersion: presets/v1\npresets:\n  - name: a\n  - name: a\n", "domain"},
		{"quote in value", "apiVersion: presets/v1\npresets:\n  - name: a\n    ini:\n      - name: General\n        values:\n          - key: Name\n            value: 'say \"hi\"'\n", "domain"},
		{"not yaml", "apiVersion: [", "structural"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := ValidateBytes([]byte(tt.yaml))
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			if errs[0].Phase != tt.phase {
				t.Errorf("phase = %q, want %q (%v)", errs[0].Phase, tt.phase, errs[0])
			}
		})
	}
}

func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if !strings.Contains(string(data), "presets/v1") {
		t.Error("schema should pin the apiVersion")
	}
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	s := NewStore(fs, storePath, nil)

	names, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != len(Defaults().Presets) {
		t.Errorf("missing store should list defaults, got %v", names)
	}

	p := FromSession("speedrun", nil, savefile.FromLines([]string{"Frisk"}))
	if err := s.Put(ctx, p); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get("speedrun")
	if err != nil || got.Lines[0] != "Frisk" {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	p.Lines = []string{"Chara"}
	if err := s.Put(ctx, p); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	names, _ = s.List()
	if names[len(names)-1] != "speedrun" || len(names) != len(Defaults().Presets)+1 {
		t.Errorf("names = %v", names)
	}
	if ok, _ := afero.Exists(fs, storePath+".bak"); ok {
		t.Error("backup left behind after save")
	}

	if err := s.Delete(ctx, "speedrun"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("speedrun"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	if err := s.Delete(ctx, "speedrun"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v", err)
	}

	if err := s.Delete(ctx, "New game"); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("New game"); err != nil {
		t.Errorf("Reset should restore defaults: %v", err)
	}
}

func TestStoreExportImport(t *testing.T) {
	ctx := context.Background()
	src := NewStore(afero.NewMemMapFs(), storePath, nil)
	var buf bytes.Buffer
	if err := src.Export(&buf, "New game"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if err := src.Export(&bytes.Buffer{}, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Export unknown err = %v", err)
	}

	dst := NewStore(afero.NewMemMapFs(), storePath, nil)
	exported := buf.String()
	if _, err := dst.Import(ctx, strings.NewReader(exported), false); !errors.Is(err, ErrExists) {
		t.Fatalf("Import clash err = %v", err)
	}
	names, err := dst.Import(ctx, strings.NewReader(exported), true)
	if err != nil {
		t.Fatalf("Import overwrite: %v", err)
	}
	if len(names) != 1 || names[0] != "New game" {
		t.Errorf("imported = %v", names)
	}
	if _, err := dst.Import(ctx, strings.NewReader("apiVersion: nope\n"), true); err == nil {
		t.Error("invalid import should fail")
	}
}

func TestStoreRejectsBadPreset(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), storePath, nil)
	if err := s.Put(context.Background(), Preset{Name: " "}); err == nil {
		t.Error("blank name accepted")
	}
	bad := Preset{Name: "x", Ini: []Section{{Name: "General", Values: []Entry{{Key: "a=b", Value: "1"}}}}}
	if err := s.Put(context.Background(), bad); !errors.Is(err, ini.ErrNotRepresentable) {
		t.Errorf("err = %v, want ErrNotRepresentable", err)
	}
}
