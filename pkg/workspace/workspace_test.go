package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/ormasoftchile/timemachine/pkg/config"
	"github.com/ormasoftchile/timemachine/pkg/ini"
	"github.com/ormasoftchile/timemachine/pkg/logging"
	"github.com/ormasoftchile/timemachine/pkg/preset"
	"github.com/ormasoftchile/timemachine/pkg/safewrite"
	"github.com/ormasoftchile/timemachine/pkg/savefile"
)

func testConfig(trace bool) *config.Config {
	return &config.Config{
		Game:    config.GameConfig{Dir: "/game", IniFile: "undertale.ini", SaveFile: "file0"},
		Cache:   config.CacheConfig{Dir: "/cache"},
		Trace:   config.TraceConfig{Enabled: trace},
		Logging: logging.Config{Level: "warn", Format: "console", Output: "stderr"},
	}
}

func writeGame(t *testing.T, fs afero.Fs) {
	t.Helper()
	p := preset.Defaults().Presets[0]
	doc, err := p.Document()
	if err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/game/undertale.ini", []byte(ini.Serialize(doc)), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/game/file0", []byte(savefile.Serialize(p.Record())), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewWiresTrace(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeGame(t, fs)
	ws, err := New(testConfig(true), fs, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ws.Trace == nil || ws.Writer.Trace != ws.Trace {
		t.Fatal("trace not wired into the writer")
	}

	s, err := ws.LoadSession(context.Background())
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if err := s.SetField("gold", "10"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveRecord(context.Background()); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := afero.ReadFile(fs, "/cache/trace.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"session_load"`, `"save_complete"`, `"committed"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("trace missing %s:\n%s", want, data)
		}
	}
}

func TestNewWithoutTrace(t *testing.T) {
	fs := afero.NewMemMapFs()
	ws, err := New(testConfig(false), fs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ws.Trace != nil {
		t.Error("trace should be off")
	}
	if ok, _ := afero.DirExists(fs, "/cache"); !ok {
		t.Error("cache directory not created")
	}
	if ws.Presets.Path() != "/cache/presets.yaml" {
		t.Errorf("preset path = %q", ws.Presets.Path())
	}
}

func TestLoadSessionMissingFiles(t *testing.T) {
	ws, err := New(testConfig(false), afero.NewMemMapFs(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ws.LoadSession(context.Background()); err == nil {
		t.Error("expected error without game files")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("boom"), 1},
		{fmt.Errorf("save: %w", safewrite.ErrRestoredAfterFailure), 1},
		{fmt.Errorf("save: %w", safewrite.ErrFatal), 2},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
