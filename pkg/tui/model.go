package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ormasoftchile/timemachine/pkg/logging"
	"github.com/ormasoftchile/timemachine/pkg/safewrite"
	"github.com/ormasoftchile/timemachine/pkg/session"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

// Model is the Bubble Tea model for ftm-tui.
type Model struct {
	ctx  context.Context
	sess *session.Session
	log  *logging.Logger

	pane   pane
	rows   []row
	cursor int
	offset int

	search searchBar
	editor editBar
	help   bool

	// dirty tracks unwritten changes per file: "ini" and "save".
	dirty     map[string]bool
	saving    bool
	quitArmed bool
	// fatal holds a write whose backup could not be put back.
	fatal error

	status     string
	statusKind statusKind

	width  int
	height int
}

// Config holds the parameters needed to launch the TUI.
type Config struct {
	Session *session.Session
	Log     *logging.Logger
}

// NewModel creates a model over a loaded session.
func NewModel(ctx context.Context, sess *session.Session) Model {
	m := Model{
		ctx:    ctx,
		sess:   sess,
		log:    logging.Nop(),
		search: newSearchBar(),
		editor: newEditBar(),
		dirty:  map[string]bool{},
	}
	if n := len(sess.Warnings); n > 0 {
		m.setStatus(fmt.Sprintf("%s %d unknown values in %s", GlyphWarning, n, filepath.Base(sess.SavePath())), statusWarn)
	}
	m.refresh()
	return m
}

// Run starts the TUI and blocks until the user quits or ctx is done. A
// write that ended in safewrite.ErrFatal during the session is returned
// once the program exits.
func Run(ctx context.Context, cfg Config) error {
	m := NewModel(ctx, cfg.Session)
	m.log = logging.OrNop(cfg.Log).WithComponent("tui")
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}

// Err returns the fatal write error seen by the model, if any.
func (m Model) Err() error { return m.fatal }

// savedMsg reports the result of writing the changed files.
type savedMsg struct {
	ops []*safewrite.Operation
	err error
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scroll()
	case savedMsg:
		m.onSaved(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.editor.active {
		switch msg.String() {
		case "esc":
			m.editor.Close()
			m.setStatus("edit canceled", statusInfo)
			return m, nil
		case "enter":
			k, v := m.editor.key, m.editor.Value()
			m.editor.Close()
			if err := m.apply(k, v); err != nil {
				m.setStatus(err.Error(), statusError)
			} else {
				m.setStatus(fmt.Sprintf("%s = %s", k, v), statusInfo)
			}
			return m, nil
		}
		return m, m.editor.Update(msg)
	}

	if m.search.active {
		_, _, cmd := m.search.Update(msg)
		m.cursor, m.offset = 0, 0
		m.refresh()
		return m, cmd
	}

	if m.help {
		switch {
		case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Help):
			m.help = false
			return m, nil
		case !key.Matches(msg, keys.Quit):
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, keys.Quit):
		if m.isDirty() && !m.quitArmed {
			m.quitArmed = true
			m.setStatus("unsaved changes: press q again to discard them, s to write", statusWarn)
			return m, nil
		}
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.PgUp):
		m.cursor = max(m.cursor-m.listHeight(), 0)
	case key.Matches(msg, keys.PgDown):
		m.cursor = max(min(m.cursor+m.listHeight(), len(m.rows)-1), 0)
	case key.Matches(msg, keys.Edit):
		if m.saving {
			m.setStatus(errSaving.Error(), statusWarn)
			return m, nil
		}
		if r, ok := m.current(); ok {
			return m, m.editor.Open(r)
		}
	case key.Matches(msg, keys.Inc), key.Matches(msg, keys.Dec):
		delta := 1
		if key.Matches(msg, keys.Dec) {
			delta = -1
		}
		if r, ok := m.current(); ok {
			if v, ok := stepValue(m.sess, r, delta); ok {
				if err := m.apply(r.key, v); errors.Is(err, errSaving) {
					m.setStatus(err.Error(), statusWarn)
				} else if err != nil {
					m.setStatus(err.Error(), statusError)
				}
			}
		}
	case key.Matches(msg, keys.Tab):
		m.pane = 1 - m.pane
		m.cursor, m.offset = 0, 0
		m.refresh()
	case key.Matches(msg, keys.Search):
		m.search.Open()
		m.refresh()
		return m, textinput.Blink
	case key.Matches(msg, keys.Cancel):
		if m.search.query != "" {
			m.search.Close()
			m.refresh()
		}
	case key.Matches(msg, keys.Save):
		if m.saving {
			return m, nil
		}
		if !m.isDirty() {
			m.setStatus("nothing to write", statusInfo)
			return m, nil
		}
		m.saving = true
		m.setStatus("writing...", statusInfo)
		return m, m.saveCmd()
	case key.Matches(msg, keys.Help):
		m.help = true
	}
	m.scroll()
	return m, nil
}

// errSaving rejects edits while a write is in flight. The write serializes
// the session on another goroutine and clears the dirty marks when it
// lands, so the session must not change until then.
var errSaving = errors.New("write in progress, try again when it finishes")

// apply stores value under key in the current pane.
func (m *Model) apply(k, value string) error {
	if m.saving {
		return errSaving
	}
	switch m.pane {
	case paneSave:
		if err := m.sess.SetField(k, value); err != nil {
			return err
		}
		m.dirty["save"] = true
	case paneIni:
		form := m.sess.Persistent()
		if err := form.Set(k, value); err != nil {
			return err
		}
		if err := m.sess.ApplyPersistent(form); err != nil {
			return err
		}
		m.dirty["ini"] = true
		if form.FunSet && form.Fun != 0 {
			m.dirty["save"] = true
		}
	}
	m.quitArmed = false
	m.refresh()
	return nil
}

// saveCmd writes the ini file and then the save file, whichever changed.
func (m Model) saveCmd() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	writeIni, writeSave := m.dirty["ini"], m.dirty["save"]
	return func() tea.Msg {
		var msg savedMsg
		if writeIni {
			op, err := sess.SaveIni(ctx)
			msg.ops = append(msg.ops, op)
			if err != nil {
				msg.err = err
				return msg
			}
		}
		if writeSave {
			op, err := sess.SaveRecord(ctx)
			msg.ops = append(msg.ops, op)
			msg.err = err
		}
		return msg
	}
}

func (m *Model) onSaved(msg savedMsg) {
	m.saving = false
	var written []string
	for _, op := range msg.ops {
		if op == nil || op.Outcome != safewrite.OutcomeCommitted {
			continue
		}
		switch op.Path {
		case m.sess.IniPath():
			m.dirty["ini"] = false
		case m.sess.SavePath():
			m.dirty["save"] = false
		}
		written = append(written, filepath.Base(op.Path))
		m.log.Infow("file written", "path", op.Path)
	}
	if !m.isDirty() {
		m.quitArmed = false
	}

	if msg.err != nil {
		m.log.Errorw("write failed", "error", msg.err)
		text := msg.err.Error()
		switch {
		case errors.Is(msg.err, safewrite.ErrFatal):
			m.fatal = msg.err
		case errors.Is(msg.err, safewrite.ErrRestoredAfterFailure):
			text = "write failed, original restored: " + text
		case errors.Is(msg.err, safewrite.ErrBackupFailed):
			text = "nothing written, backup failed: " + text
		}
		m.setStatus(GlyphFailed+" "+text, statusError)
		return
	}
	m.setStatus(GlyphSaved+" wrote "+strings.Join(written, ", "), statusOK)
}

func (m *Model) refresh() {
	var all []row
	switch m.pane {
	case paneIni:
		all = iniRows(m.sess)
	default:
		all = saveRows(m.sess)
	}
	rows := make([]row, 0, len(all))
	for _, r := range all {
		if m.search.Matches(r.key, r.label) {
			rows = append(rows, r)
		}
	}
	m.rows = rows
	m.search.matches = len(rows)
	if m.cursor >= len(rows) {
		m.cursor = max(len(rows)-1, 0)
	}
	m.scroll()
}

func (m *Model) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) isDirty() bool { return m.dirty["ini"] || m.dirty["save"] }

func (m *Model) setStatus(text string, kind statusKind) {
	m.status = text
	m.statusKind = kind
}

// listHeight is the number of rows the field panel can show.
func (m Model) listHeight() int {
	if m.height == 0 {
		return 20
	}
	return max(m.height-9, 3)
}

func (m *Model) scroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}
