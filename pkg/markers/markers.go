// Package markers manages the empty system_information_96X files the game
// checks for. Their presence alone carries meaning; content is never read.
package markers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ormasoftchile/timemachine/pkg/safewrite"
	"github.com/ormasoftchile/timemachine/pkg/trace"
)

// Prefix is the marker file name without its number.
const Prefix = "system_information_"

// Known lists the marker numbers the game looks for.
var Known = []int{962, 963}

// ErrUnknownMarker is returned for a number not in Known.
var ErrUnknownMarker = errors.New("unknown marker")

// Marker is the state of one marker file.
type Marker struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// Store reads and changes marker files in the game directory.
type Store struct {
	fs    afero.Fs
	dir   string
	Trace *trace.Writer
}

// New returns a Store for markers in dir.
func New(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Name returns the file name of marker n.
func Name(n int) string { return fmt.Sprintf("%s%d", Prefix, n) }

func (s *Store) path(n int) (string, error) {
	for _, k := range Known {
		if k == n {
			return filepath.Join(s.dir, Name(n)), nil
		}
	}
	return "", fmt.Errorf("%w: %d", ErrUnknownMarker, n)
}

// Exists reports whether marker n is present as a regular file. A
// directory of the same name does not count.
func (s *Store) Exists(n int) (bool, error) {
	p, err := s.path(n)
	if err != nil {
		return false, err
	}
	info, err := s.fs.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", Name(n), err)
	}
	return info.Mode().IsRegular(), nil
}

// Create writes marker n as an empty file. Creating an existing marker
// truncates it.
func (s *Store) Create(n int) error {
	p, err := s.path(n)
	if err != nil {
		return err
	}
	if err := safewrite.New(s.fs, "").WriteFile(p, nil); err != nil {
		return fmt.Errorf("create %s: %w", Name(n), err)
	}
	_ = s.Trace.EmitMarker(Name(n), "create")
	return nil
}

// Delete removes marker n. Deleting a missing marker is an error so the
// caller can tell the user nothing changed.
func (s *Store) Delete(n int) error {
	p, err := s.path(n)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete %s: not present", Name(n))
		}
		return fmt.Errorf("delete %s: %w", Name(n), err)
	}
	_ = s.Trace.EmitMarker(Name(n), "delete")
	return nil
}

// Status returns every known marker with its presence.
func (s *Store) Status() ([]Marker, error) {
	out := make([]Marker, 0, len(Known))
	for _, n := range Known {
		ok, err := s.Exists(n)
		if err != nil {
			return nil, err
		}
		p, _ := s.path(n)
		out = append(out, Marker{Number: n, Name: Name(n), Path: p, Exists: ok})
	}
	return out, nil
}
