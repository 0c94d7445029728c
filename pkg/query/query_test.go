package query

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/ormasoftchile/timemachine/pkg/ini"
	"github.com/ormasoftchile/timemachine/pkg/preset"
	"github.com/ormasoftchile/timemachine/pkg/session"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	p := preset.Defaults().Presets[0]
	doc, err := ini.Parse("[General]\r\nName=\"Frisk\"\r\n[FFFFF]\r\nD=\"2\"\r\n")
	if err != nil {
		t.Fatal(err)
	}
	s, err := session.New(session.Options{Fs: afero.NewMemMapFs()}, doc, p.Record())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetField("gold", "150"); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMatch(t *testing.T) {
	s := newSession(t)
	tests := []struct {
		expr string
		want bool
	}{
		{"gold > 100", true},
		{"gold > 100 && weapon == 3", true},
		{"have_cell", false},
		{"name == 'Frisk'", true},
		{"ini.FFFFF.D == '2'", true},
		{"line(1) == 'Frisk'", true},
		{"label('weapon') == 'Stick'", true},
		{"love >= 2", false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Match(s, tt.expr)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestMatchErrors(t *testing.T) {
	s := newSession(t)
	for _, src := range []string{"gold +", "gold", "no_such_field > 1"} {
		if _, err := Match(s, src); err == nil {
			t.Errorf("Match(%q) should fail", src)
		}
	}
}

func TestEval(t *testing.T) {
	s := newSession(t)
	out, err := Eval(s, "gold * 2")
	if err != nil {
		t.Fatal(err)
	}
	if out != 300 {
		t.Errorf("Eval = %v (%T), want 300", out, out)
	}
	out, err = Eval(s, "ini.General.Name + '!'")
	if err != nil {
		t.Fatal(err)
	}
	if out != "Frisk!" {
		t.Errorf("Eval = %v", out)
	}
}
