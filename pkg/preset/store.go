package preset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/ormasoftchile/timemachine/pkg/safewrite"
	"github.com/ormasoftchile/timemachine/pkg/trace"
)

var (
	ErrNotFound = errors.New("preset not found")
	ErrExists   = errors.New("preset already exists")
)

// Store reads and writes the preset file. A missing file reads as the
// built-in defaults.
type Store struct {
	fs     afero.Fs
	path   string
	writer *safewrite.Writer
	Trace  *trace.Writer
}

// NewStore returns a store for the preset file at path. Writes to an
// existing file go through w; a nil w writes with sibling backups.
func NewStore(fs afero.Fs, path string, w *safewrite.Writer) *Store {
	if w == nil {
		w = safewrite.New(fs, "")
	}
	return &Store{fs: fs, path: path, writer: w}
}

// Path returns the preset file path.
func (s *Store) Path() string { return s.path }

// Load reads and validates the preset file.
func (s *Store) Load() (*File, error) {
	ok, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("stat presets: %w", err)
	}
	if !ok {
		return Defaults(), nil
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	f, verrs := ValidateBytes(data)
	if len(verrs) > 0 {
		return nil, fmt.Errorf("%s: %w", s.path, joinValidation(verrs))
	}
	return f, nil
}

func (s *Store) save(ctx context.Context, f *File) error {
	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		return err
	}
	ok, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("stat presets: %w", err)
	}
	if !ok {
		return s.writer.WriteFile(s.path, buf.Bytes())
	}
	_, err = s.writer.SecureSave(ctx, s.path, buf.Bytes())
	return err
}

// List returns the preset names in order.
func (s *Store) List() ([]string, error) {
	f, err := s.Load()
	if err != nil {
		return nil, err
	}
	return f.Names(), nil
}

// Get returns the named preset.
func (s *Store) Get(name string) (Preset, error) {
	f, err := s.Load()
	if err != nil {
		return Preset{}, err
	}
	i := f.Find(name)
	if i < 0 {
		return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return f.Presets[i], nil
}

// Put stores p, replacing a preset with the same name.
func (s *Store) Put(ctx context.Context, p Preset) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("preset name must not be empty")
	}
	if _, err := p.Document(); err != nil {
		return err
	}
	f, err := s.Load()
	if err != nil {
		return err
	}
	if i := f.Find(p.Name); i >= 0 {
		f.Presets[i] = p
	} else {
		f.Presets = append(f.Presets, p)
	}
	if err := s.save(ctx, f); err != nil {
		return err
	}
	_ = s.Trace.EmitPreset(p.Name, "save")
	return nil
}

// Delete removes the named preset.
func (s *Store) Delete(ctx context.Context, name string) error {
	f, err := s.Load()
	if err != nil {
		return err
	}
	i := f.Find(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	f.Presets = append(f.Presets[:i], f.Presets[i+1:]...)
	if err := s.save(ctx, f); err != nil {
		return err
	}
	_ = s.Trace.EmitPreset(name, "delete")
	return nil
}

// Reset replaces the store with the built-in defaults.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.save(ctx, Defaults()); err != nil {
		return err
	}
	_ = s.Trace.EmitPreset("*", "reset")
	return nil
}

// Export writes the named presets, or all of them, as a preset file.
func (s *Store) Export(w io.Writer, names ...string) error {
	f, err := s.Load()
	if err != nil {
		return err
	}
	out := &File{APIVersion: APIVersion}
	if len(names) == 0 {
		out.Presets = f.Presets
	}
	for _, name := range names {
		i := f.Find(name)
		if i < 0 {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		out.Presets = append(out.Presets, f.Presets[i])
	}
	return Encode(w, out)
}

// Import merges the presets of a preset file into the store and returns the
// imported names. Without overwrite, a name clash fails the whole import.
func (s *Store) Import(ctx context.Context, r io.Reader, overwrite bool) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	in, verrs := ValidateBytes(data)
	if len(verrs) > 0 {
		return nil, fmt.Errorf("import: %w", joinValidation(verrs))
	}
	f, err := s.Load()
	if err != nil {
		return nil, err
	}
	for _, p := range in.Presets {
		if i := f.Find(p.Name); i >= 0 {
			if !overwrite {
				return nil, fmt.Errorf("%w: %q", ErrExists, p.Name)
			}
			f.Presets[i] = p
			continue
		}
		f.Presets = append(f.Presets, p)
	}
	if err := s.save(ctx, f); err != nil {
		return nil, err
	}
	for _, p := range in.Presets {
		_ = s.Trace.EmitPreset(p.Name, "import")
	}
	return in.Names(), nil
}

func joinValidation(verrs []*ValidationError) error {
	errs := make([]error, len(verrs))
	for i, e := range verrs {
		errs[i] = e
	}
	return errors.Join(errs...)
}
