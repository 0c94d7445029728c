// Package safewrite persists game files behind a backup copy. A save first
// copies the current file aside, then writes the new content, and puts the
// copy back when the write fails.
package safewrite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/ormasoftchile/timemachine/pkg/logging"
	"github.com/ormasoftchile/timemachine/pkg/trace"
)

// State is a step of a guarded write.
type State string

const (
	StateStart            State = "start"
	StateBackedUp         State = "backed_up"
	StateWritten          State = "written"
	StateCommitted        State = "committed"
	StateBackupFailed     State = "backup_failed"
	StateRestoreAttempted State = "restore_attempted"
	StateRestored         State = "restored"
	StateFatal            State = "fatal"
	StateCanceled         State = "canceled"
)

// Outcome is the terminal result of a guarded write.
type Outcome string

const (
	OutcomeCommitted            Outcome = "committed"
	OutcomeBackupFailed         Outcome = "backup_failed"
	OutcomeRestoredAfterFailure Outcome = "restored_after_failure"
	OutcomeFatal                Outcome = "fatal"
	OutcomeCanceled             Outcome = "canceled"
)

var (
	// ErrBackupFailed means the backup copy could not be made. The target
	// was not touched.
	ErrBackupFailed = errors.New("backup failed")
	// ErrRestoredAfterFailure means the write failed and the previous
	// content was put back. The edit is lost.
	ErrRestoredAfterFailure = errors.New("write failed, previous file restored")
	// ErrFatal means the write failed and the backup could not be put back.
	// The backup file is kept for manual recovery.
	ErrFatal = errors.New("write failed and restore failed")
	// ErrBackupExists means a backup from an earlier save that could not be
	// restored is still in place. It is reported together with
	// ErrBackupFailed and the backup is left alone.
	ErrBackupExists = errors.New("backup from an earlier failed save is still present")
)

// Operation describes one guarded write.
type Operation struct {
	Path       string
	BackupPath string
	State      State
	Outcome    Outcome
	Err        error
	// History lists every state the operation passed through.
	History []State
}

func (op *Operation) enter(s State) {
	op.State = s
	op.History = append(op.History, s)
}

// Writer performs guarded writes on a filesystem.
type Writer struct {
	Fs afero.Fs
	// BackupDir receives backup copies named after the target's base name.
	// When empty the backup is a sibling "<path>.bak".
	BackupDir string
	Trace     *trace.Writer
	Log       *logging.Logger
}

// New returns a Writer on fs.
func New(fs afero.Fs, backupDir string) *Writer {
	return &Writer{Fs: fs, BackupDir: backupDir}
}

// BackupPath returns where the backup of path is written. A file that
// already lives in BackupDir is backed up as a sibling.
func (w *Writer) BackupPath(path string) string {
	if w.BackupDir == "" {
		return path + ".bak"
	}
	b := filepath.Join(w.BackupDir, filepath.Base(path))
	if b == filepath.Clean(path) {
		return path + ".bak"
	}
	return b
}

// SecureSave replaces the content of an existing file at path. The returned
// Operation is always non-nil. The error wraps ErrBackupFailed,
// ErrRestoredAfterFailure or ErrFatal for the failure outcomes. ctx is
// checked before the backup and before the write; once writing starts the
// operation runs to completion.
func (w *Writer) SecureSave(ctx context.Context, path string, content []byte) (*Operation, error) {
	start := time.Now()
	op := &Operation{Path: path, BackupPath: w.BackupPath(path)}
	op.enter(StateStart)
	log := logging.OrNop(w.Log).WithComponent("safewrite").WithFile(path)

	_ = w.Trace.EmitSaveStart(path, op.BackupPath, len(content))
	finish := func(outcome Outcome, err error) (*Operation, error) {
		op.Outcome = outcome
		op.Err = err
		kept := ""
		if outcome == OutcomeFatal {
			kept = op.BackupPath
		}
		_ = w.Trace.EmitSaveComplete(path, string(outcome), kept, time.Since(start))
		return op, err
	}

	if err := ctx.Err(); err != nil {
		op.enter(StateCanceled)
		return finish(OutcomeCanceled, fmt.Errorf("save %s: %w", path, err))
	}

	if err := w.backup(path, op.BackupPath); err != nil {
		_ = w.Trace.EmitStep(trace.EventBackup, op.BackupPath, err)
		log.Warnw("backup failed", "backup", op.BackupPath, "error", err)
		op.enter(StateBackupFailed)
		return finish(OutcomeBackupFailed, fmt.Errorf("%w: %s: %w", ErrBackupFailed, path, err))
	}
	_ = w.Trace.EmitStep(trace.EventBackup, op.BackupPath, nil)
	op.enter(StateBackedUp)

	if err := ctx.Err(); err != nil {
		w.removeBackup(op, log)
		op.enter(StateCanceled)
		return finish(OutcomeCanceled, fmt.Errorf("save %s: %w", path, err))
	}

	werr := w.write(path, content)
	_ = w.Trace.EmitStep(trace.EventWrite, path, werr)
	if werr == nil {
		op.enter(StateWritten)
		w.removeBackup(op, log)
		op.enter(StateCommitted)
		log.Debugw("save committed", "bytes", len(content))
		return finish(OutcomeCommitted, nil)
	}

	log.Warnw("write failed, restoring backup", "backup", op.BackupPath, "error", werr)
	op.enter(StateRestoreAttempted)
	rerr := w.restore(path, op.BackupPath)
	_ = w.Trace.EmitStep(trace.EventRestore, path, rerr)
	if rerr != nil {
		op.enter(StateFatal)
		log.Errorw("restore failed, backup kept", "backup", op.BackupPath, "error", rerr)
		return finish(OutcomeFatal, fmt.Errorf("%w: %s (backup kept at %s): write: %w; restore: %w",
			ErrFatal, path, op.BackupPath, werr, rerr))
	}
	op.enter(StateRestored)
	w.removeBackup(op, log)
	return finish(OutcomeRestoredAfterFailure, fmt.Errorf("%w: %s: %w", ErrRestoredAfterFailure, path, werr))
}

// WriteFile writes content to path without a backup. It is meant for new
// files such as marker files.
func (w *Writer) WriteFile(path string, content []byte) error {
	if err := w.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	return w.write(path, content)
}

func (w *Writer) backup(path, backupPath string) error {
	stale, err := afero.Exists(w.Fs, backupPath)
	if err != nil {
		return fmt.Errorf("check backup %s: %w", backupPath, err)
	}
	if stale {
		return fmt.Errorf("%w: %s", ErrBackupExists, backupPath)
	}
	if err := w.Fs.MkdirAll(filepath.Dir(backupPath), 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	return w.copy(path, backupPath)
}

// restore removes whatever the failed write left at path and copies the
// backup over it.
func (w *Writer) restore(path, backupPath string) error {
	if err := w.Fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove partial file: %w", err)
	}
	return w.copy(backupPath, path)
}

func (w *Writer) removeBackup(op *Operation, log *logging.Logger) {
	if err := w.Fs.Remove(op.BackupPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		// the save itself is settled; a stale backup is only clutter
		log.Warnw("could not remove backup", "backup", op.BackupPath, "error", err)
	}
}

func (w *Writer) copy(src, dst string) error {
	in, err := w.Fs.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	perm := os.FileMode(0o644)
	if info, err := in.Stat(); err == nil {
		perm = info.Mode().Perm()
	}
	out, err := w.Fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}

func (w *Writer) write(path string, content []byte) error {
	f, err := w.Fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s for writing: %w", path, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
