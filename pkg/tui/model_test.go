package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/ormasoftchile/timemachine/pkg/ini"
	"github.com/ormasoftchile/timemachine/pkg/preset"
	"github.com/ormasoftchile/timemachine/pkg/safewrite"
	"github.com/ormasoftchile/timemachine/pkg/savefile"
	"github.com/ormasoftchile/timemachine/pkg/session"
)

const (
	iniPath  = "/game/undertale.ini"
	savePath = "/game/file0"
)

func newTestModel(t *testing.T) (Model, afero.Fs) {
	t.Helper()
	p := preset.Defaults().Presets[0]
	doc, err := p.Document()
	if err != nil {
		t.Fatal(err)
	}
	rec := p.Record()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, iniPath, []byte(ini.Serialize(doc)), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, savePath, []byte(savefile.Serialize(rec)), 0o644); err != nil {
		t.Fatal(err)
	}
	sess, err := session.New(session.Options{
		Fs:       fs,
		IniPath:  iniPath,
		SavePath: savePath,
		Writer:   safewrite.New(fs, "/cache"),
	}, doc, rec)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(context.Background(), sess), fs
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func selectKey(t *testing.T, m Model, key string) Model {
	t.Helper()
	for i, r := range m.rows {
		if r.key == key {
			m.cursor = i
			return m
		}
	}
	t.Fatalf("no row %q", key)
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_InitFromSession(t *testing.T) {
	m, _ := newTestModel(t)
	if len(m.rows) != len(m.sess.Fields()) {
		t.Fatalf("rows = %d, want %d", len(m.rows), len(m.sess.Fields()))
	}
	if m.rows[0].key != "name" || m.rows[0].value != "Frisk" {
		t.Errorf("first row = %+v", m.rows[0])
	}
	if m.pane != paneSave {
		t.Errorf("pane = %v", m.pane)
	}
	_, room, err := m.sess.Location()
	if err != nil {
		t.Fatal(err)
	}
	view := m.View()
	for _, want := range []string{"Frisk", "@ " + room, "Name", "LOVE"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_Navigation(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up at top", m.cursor)
	}
	m, _ = press(t, m, "down", "j", "j", "k")
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	for i := 0; i < len(m.rows)+5; i++ {
		m, _ = press(t, m, "down")
	}
	if m.cursor != len(m.rows)-1 {
		t.Errorf("cursor = %d, want last row %d", m.cursor, len(m.rows)-1)
	}
}

func TestModel_EditField(t *testing.T) {
	m, _ := newTestModel(t)
	m = selectKey(t, m, "gold")
	m, _ = press(t, m, "enter")
	if !m.editor.active || m.editor.key != "gold" {
		t.Fatalf("editor not open on gold: %+v", m.editor)
	}
	m.editor.input.SetValue("500")
	m, _ = press(t, m, "enter")

	if v, _ := m.sess.Save.Get("gold"); v != "500" {
		t.Errorf("gold = %q, want 500", v)
	}
	if !m.dirty["save"] || m.dirty["ini"] {
		t.Errorf("dirty = %v", m.dirty)
	}
	if r, _ := m.current(); r.value != "500" {
		t.Errorf("row value = %q", r.value)
	}
}

func TestModel_EditCancel(t *testing.T) {
	m, _ := newTestModel(t)
	m = selectKey(t, m, "gold")
	m, _ = press(t, m, "enter")
	m.editor.input.SetValue("999")
	m, _ = press(t, m, "esc")
	if v, _ := m.sess.Save.Get("gold"); v != "0" {
		t.Errorf("gold = %q after cancel", v)
	}
	if m.isDirty() {
		t.Error("cancel marked the session dirty")
	}
}

func TestModel_RejectsUnknownOption(t *testing.T) {
	m, _ := newTestModel(t)
	m = selectKey(t, m, "weapon")
	m, _ = press(t, m, "enter")
	m.editor.input.SetValue("999")
	m, _ = press(t, m, "enter")

	if v, _ := m.sess.Save.Get("weapon"); v != "3" {
		t.Errorf("weapon = %q, want 3 kept", v)
	}
	if m.statusKind != statusError || !strings.Contains(m.status, "unknown value") {
		t.Errorf("status = %q (%v)", m.status, m.statusKind)
	}
	if m.isDirty() {
		t.Error("rejected edit marked the session dirty")
	}
}

func TestModel_StepSelectUpdatesAttack(t *testing.T) {
	m, _ := newTestModel(t)
	m = selectKey(t, m, "weapon")
	m, _ = press(t, m, "+")

	w, _ := m.sess.Save.Int("weapon")
	if w <= 3 {
		t.Fatalf("weapon = %d, want next option after 3", w)
	}
	if !m.sess.Tables().Items.Has(w) {
		t.Errorf("weapon %d is not a known item", w)
	}
	if at, ok := m.sess.Tables().WeaponAttack(w); ok {
		if got, _ := m.sess.Save.Int("weapon_at"); got != at {
			t.Errorf("weapon_at = %d, want %d", got, at)
		}
	}
}

func TestModel_StepFlag(t *testing.T) {
	m, _ := newTestModel(t)
	m = selectKey(t, m, "have_cell")
	m, _ = press(t, m, "+")
	if on, _ := m.sess.Save.Flag("have_cell"); !on {
		t.Error("have_cell should toggle on")
	}
	m, _ = press(t, m, "-")
	if on, _ := m.sess.Save.Flag("have_cell"); on {
		t.Error("have_cell should toggle off")
	}
}

func TestModel_IniPane(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "tab")
	if m.pane != paneIni || len(m.rows) != len(session.PersistentKeys) {
		t.Fatalf("pane = %v, rows = %d", m.pane, len(m.rows))
	}
	m = selectKey(t, m, "deaths")
	m, _ = press(t, m, "enter")
	m.editor.input.SetValue("4")
	m, _ = press(t, m, "enter")

	if v, ok := m.sess.Ini.Get(session.SectionFlowey, "D"); !ok || v != "4" {
		t.Errorf("FFFFF.D = %q, %v", v, ok)
	}
	if !m.dirty["ini"] || m.dirty["save"] {
		t.Errorf("dirty = %v", m.dirty)
	}
}

func TestModel_Filter(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "/", "i", "n", "v")
	if !m.search.active {
		t.Fatal("search not active")
	}
	if len(m.rows) != 8 {
		t.Fatalf("rows = %d, want 8 inventory slots", len(m.rows))
	}
	for _, r := range m.rows {
		if !strings.HasPrefix(r.key, "inv") {
			t.Errorf("unexpected row %q", r.key)
		}
	}
	m, _ = press(t, m, "enter")
	if m.search.active || len(m.rows) != 8 {
		t.Errorf("committed filter lost: active=%v rows=%d", m.search.active, len(m.rows))
	}
	m, _ = press(t, m, "esc")
	if len(m.rows) != len(m.sess.Fields()) {
		t.Errorf("rows = %d after clearing filter", len(m.rows))
	}
}

func TestModel_SaveWritesDirtyFiles(t *testing.T) {
	m, fs := newTestModel(t)
	m = selectKey(t, m, "gold")
	m, _ = press(t, m, "enter")
	m.editor.input.SetValue("1234")
	m, _ = press(t, m, "enter")

	m, cmd := press(t, m, "s")
	if cmd == nil || !m.saving {
		t.Fatal("save did not start")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)

	if m.isDirty() || m.statusKind != statusOK {
		t.Fatalf("after save: dirty=%v status=%q", m.dirty, m.status)
	}
	data, err := afero.ReadFile(fs, savePath)
	if err != nil {
		t.Fatal(err)
	}
	rec := savefile.Parse(string(data))
	if v, _ := rec.Get("gold"); v != "1234" {
		t.Errorf("gold on disk = %q", v)
	}
	if exists, _ := afero.Exists(fs, "/cache/file0"); exists {
		t.Error("backup should be removed after a committed write")
	}
}

func TestModel_EditsBlockedWhileSaving(t *testing.T) {
	m, fs := newTestModel(t)
	m = selectKey(t, m, "gold")
	m, _ = press(t, m, "enter")
	m.editor.input.SetValue("1234")
	m, _ = press(t, m, "enter")

	m, cmd := press(t, m, "s")
	if cmd == nil {
		t.Fatal("save did not start")
	}
	msg := cmd()

	m, _ = press(t, m, "+")
	m, _ = press(t, m, "enter")
	if m.editor.active {
		t.Error("editor opened during a write")
	}
	if v, _ := m.sess.Save.Get("gold"); v != "1234" {
		t.Errorf("gold = %q changed during a write", v)
	}
	if m.statusKind != statusWarn {
		t.Errorf("status = %q (%v)", m.status, m.statusKind)
	}

	next, _ := m.Update(msg)
	m = next.(Model)
	data, err := afero.ReadFile(fs, savePath)
	if err != nil {
		t.Fatal(err)
	}
	disk, _ := savefile.Parse(string(data)).Get("gold")
	mem, _ := m.sess.Save.Get("gold")
	if disk != mem || m.isDirty() {
		t.Errorf("disk gold=%s memory gold=%s dirty=%v", disk, mem, m.isDirty())
	}

	m, _ = press(t, m, "+")
	if v, _ := m.sess.Save.Get("gold"); v == "1234" || !m.dirty["save"] {
		t.Errorf("edit after the write: gold=%s dirty=%v", v, m.dirty)
	}
}

func TestModel_FatalWriteIsKept(t *testing.T) {
	m, _ := newTestModel(t)
	m = selectKey(t, m, "gold")
	m, _ = press(t, m, "+")
	m, _ = press(t, m, "s")

	fatal := fmt.Errorf("save %s: %w", savePath, safewrite.ErrFatal)
	next, _ := m.Update(savedMsg{err: fatal})
	m = next.(Model)
	if !errors.Is(m.Err(), safewrite.ErrFatal) {
		t.Errorf("Err = %v, want ErrFatal", m.Err())
	}
	if m.statusKind != statusError || !m.isDirty() {
		t.Errorf("status = %q dirty = %v", m.status, m.dirty)
	}
}

func TestModel_SaveNothing(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := press(t, m, "s")
	if cmd != nil {
		t.Error("save with no changes should not run")
	}
	if m.status != "nothing to write" {
		t.Errorf("status = %q", m.status)
	}
}

func TestModel_QuitConfirmsUnsaved(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := press(t, m, "q")
	if !isQuit(cmd) {
		t.Fatal("q on a clean session should quit")
	}

	m = selectKey(t, m, "gold")
	m, _ = press(t, m, "+")
	m, cmd = press(t, m, "q")
	if isQuit(cmd) {
		t.Fatal("first q with unsaved changes should only warn")
	}
	if m.statusKind != statusWarn {
		t.Errorf("status = %q", m.status)
	}
	_, cmd = press(t, m, "q")
	if !isQuit(cmd) {
		t.Error("second q should quit")
	}
}

func TestModel_HelpOverlay(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "?")
	if !m.help {
		t.Fatal("help not shown")
	}
	if !strings.Contains(m.View(), "Machine") {
		t.Error("help text not rendered")
	}
	m, _ = press(t, m, "j")
	if m.cursor != 0 {
		t.Error("keys should not move the list behind the help overlay")
	}
	m, _ = press(t, m, "esc")
	if m.help {
		t.Error("esc should close help")
	}
}

func TestNextOption(t *testing.T) {
	values := []int{0, 3, 7, 12}
	tests := []struct{ cur, delta, want int }{
		{0, 1, 3}, {3, 1, 7}, {12, 1, 0}, {5, 1, 7},
		{7, -1, 3}, {0, -1, 12}, {5, -1, 3},
	}
	for _, tt := range tests {
		if got := nextOption(values, tt.cur, tt.delta); got != tt.want {
			t.Errorf("nextOption(%d, %d) = %d, want %d", tt.cur, tt.delta, got, tt.want)
		}
	}
}
