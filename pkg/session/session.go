// Package session holds one edit session: the ini document and save record
// loaded from the game directory, the option tables used to check them, and
// the writer that puts them back.
package session

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/ormasoftchile/timemachine/pkg/gamedata"
	"github.com/ormasoftchile/timemachine/pkg/ini"
	"github.com/ormasoftchile/timemachine/pkg/logging"
	"github.com/ormasoftchile/timemachine/pkg/preset"
	"github.com/ormasoftchile/timemachine/pkg/safewrite"
	"github.com/ormasoftchile/timemachine/pkg/savefile"
	"github.com/ormasoftchile/timemachine/pkg/trace"
)

// Options wires a session to its files and collaborators.
type Options struct {
	Fs       afero.Fs
	IniPath  string
	SavePath string
	Tables   *gamedata.Tables
	Writer   *safewrite.Writer
	Log      *logging.Logger
	Trace    *trace.Writer
}

// Session is the state of one edit session.
type Session struct {
	opts Options
	log  *logging.Logger

	Ini  *ini.Document
	Save *savefile.Record
	// Warnings lists select fields whose stored value is not a known
	// option. They are reported, never fixed silently.
	Warnings []*savefile.UnknownEnumValue
}

func (o *Options) fill() error {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Tables == nil {
		t, err := gamedata.Load()
		if err != nil {
			return err
		}
		o.Tables = t
	}
	if o.Writer == nil {
		o.Writer = safewrite.New(o.Fs, "")
	}
	if o.Writer.Trace == nil {
		o.Writer.Trace = o.Trace
	}
	return nil
}

// Load reads the ini and save files concurrently. A malformed ini file
// aborts the load; unknown select values only add warnings.
func Load(ctx context.Context, opts Options) (*Session, error) {
	if err := opts.fill(); err != nil {
		return nil, err
	}

	var iniText, saveText []byte
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := afero.ReadFile(opts.Fs, opts.IniPath)
		if err != nil {
			return fmt.Errorf("loading ini file: %w", err)
		}
		iniText = data
		return nil
	})
	g.Go(func() error {
		data, err := afero.ReadFile(opts.Fs, opts.SavePath)
		if err != nil {
			return fmt.Errorf("loading save file: %w", err)
		}
		saveText = data
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	doc, err := ini.Parse(string(iniText))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.IniPath, err)
	}
	s, err := New(opts, doc, savefile.Parse(string(saveText)))
	if err != nil {
		return nil, err
	}

	_ = opts.Trace.Emit(trace.EventSessionLoad, map[string]any{
		"ini":      opts.IniPath,
		"save":     opts.SavePath,
		"lines":    s.Save.Len(),
		"warnings": len(s.Warnings),
	})
	for _, w := range s.Warnings {
		s.log.Warnw("unknown value", "field", w.Field, "line", w.Line, "value", w.Value)
	}
	return s, nil
}

// New builds a session around an existing document and record.
func New(opts Options, doc *ini.Document, rec *savefile.Record) (*Session, error) {
	if err := opts.fill(); err != nil {
		return nil, err
	}
	s := &Session{
		opts: opts,
		log:  logging.OrNop(opts.Log).WithComponent("session"),
		Ini:  doc,
		Save: rec,
	}
	s.check()
	return s, nil
}

func (s *Session) check() {
	s.Warnings = s.Save.CheckSelections(s.opts.Tables.OptionLookup())
}

// Tables returns the option tables the session validates against.
func (s *Session) Tables() *gamedata.Tables { return s.opts.Tables }

// IniPath returns the ini file path.
func (s *Session) IniPath() string { return s.opts.IniPath }

// SavePath returns the save file path.
func (s *Session) SavePath() string { return s.opts.SavePath }

// SaveIni writes the ini document back through the safe writer.
func (s *Session) SaveIni(ctx context.Context) (*safewrite.Operation, error) {
	return s.opts.Writer.SecureSave(ctx, s.opts.IniPath, []byte(ini.Serialize(s.Ini)))
}

// SaveRecord writes the save record back through the safe writer.
func (s *Session) SaveRecord(ctx context.Context) (*safewrite.Operation, error) {
	return s.opts.Writer.SecureSave(ctx, s.opts.SavePath, []byte(savefile.Serialize(s.Save)))
}

// SaveAll writes the ini document and then the save record. It stops at the
// first failure.
func (s *Session) SaveAll(ctx context.Context) ([]*safewrite.Operation, error) {
	var ops []*safewrite.Operation
	op, err := s.SaveIni(ctx)
	ops = append(ops, op)
	if err != nil {
		return ops, err
	}
	op, err = s.SaveRecord(ctx)
	ops = append(ops, op)
	return ops, err
}

// Snapshot captures the session as a preset.
func (s *Session) Snapshot(name string) preset.Preset {
	return preset.FromSession(name, s.Ini, s.Save)
}

// ApplyPreset replaces the session's document and record with a preset's.
func (s *Session) ApplyPreset(p preset.Preset) error {
	doc, err := p.Document()
	if err != nil {
		return err
	}
	s.Ini = doc
	s.Save = p.Record()
	s.check()
	_ = s.opts.Trace.EmitPreset(p.Name, "load")
	return nil
}
