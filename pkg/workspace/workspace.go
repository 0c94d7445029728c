// Package workspace wires configuration, logging, the audit trail and the
// stores that every front end shares.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/ormasoftchile/timemachine/pkg/config"
	"github.com/ormasoftchile/timemachine/pkg/gamedata"
	"github.com/ormasoftchile/timemachine/pkg/logging"
	"github.com/ormasoftchile/timemachine/pkg/markers"
	"github.com/ormasoftchile/timemachine/pkg/preset"
	"github.com/ormasoftchile/timemachine/pkg/safewrite"
	"github.com/ormasoftchile/timemachine/pkg/session"
	"github.com/ormasoftchile/timemachine/pkg/trace"
)

// Workspace holds the collaborators of one editor process.
type Workspace struct {
	Config  *config.Config
	Log     *logging.Logger
	Fs      afero.Fs
	Trace   *trace.Writer
	Writer  *safewrite.Writer
	Tables  *gamedata.Tables
	Presets *preset.Store
	Markers *markers.Store
}

// Open loads configuration and builds a workspace on the OS file system.
func Open(opts config.LoadOptions) (*Workspace, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return New(cfg, afero.NewOsFs(), log)
}

// New builds a workspace from a loaded configuration. The cache directory
// is created if needed. A trace file that cannot be opened disables
// tracing with a warning.
func New(cfg *config.Config, fs afero.Fs, log *logging.Logger) (*Workspace, error) {
	log = logging.OrNop(log)
	tables, err := gamedata.Load()
	if err != nil {
		return nil, err
	}
	if err := fs.MkdirAll(cfg.Cache.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	var tw *trace.Writer
	if path := cfg.TracePath(); path != "" {
		f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Warnw("trace disabled", "path", path, "error", err)
		} else {
			tw = trace.NewWriter(f, trace.NewRunID())
		}
	}

	w := safewrite.New(fs, cfg.BackupDir())
	w.Trace = tw
	w.Log = log

	presets := preset.NewStore(fs, cfg.PresetPath(), w)
	presets.Trace = tw
	marks := markers.New(fs, cfg.Game.Dir)
	marks.Trace = tw

	log.Debugw("workspace ready", "game", cfg.Game.Dir, "cache", cfg.Cache.Dir, "run_id", tw.RunID())
	return &Workspace{
		Config:  cfg,
		Log:     log,
		Fs:      fs,
		Trace:   tw,
		Writer:  w,
		Tables:  tables,
		Presets: presets,
		Markers: marks,
	}, nil
}

// LoadSession opens the game files.
func (w *Workspace) LoadSession(ctx context.Context) (*session.Session, error) {
	return session.Load(ctx, session.Options{
		Fs:       w.Fs,
		IniPath:  w.Config.IniPath(),
		SavePath: w.Config.SavePath(),
		Tables:   w.Tables,
		Writer:   w.Writer,
		Log:      w.Log,
		Trace:    w.Trace,
	})
}

// ExitCode maps an error to the process exit status. A fatal save, where
// the original file could not be restored, gets its own code so scripts can
// tell the user to recover the backup by hand.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, safewrite.ErrFatal):
		return 2
	default:
		return 1
	}
}

// Close flushes the trace and the logger.
func (w *Workspace) Close() error {
	err := w.Trace.Close()
	// Syncing a terminal returns EINVAL on some systems.
	_ = w.Log.Close()
	return err
}
