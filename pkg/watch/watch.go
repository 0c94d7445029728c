// Package watch notices when the game rewrites its files while an edit
// session is open. Bursts of notifications are debounced and then filtered
// by content hash, so touching a file without changing it is not reported.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ormasoftchile/timemachine/pkg/logging"
)

// Op is the kind of change observed.
type Op string

const (
	OpCreated Op = "created"
	OpChanged Op = "changed"
	OpRemoved Op = "removed"
)

// Event reports a content change of a watched file.
type Event struct {
	Path string
	Op   Op
	Hash string
	Time time.Time
}

func (e Event) String() string {
	short := e.Hash
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s %s %s", e.Op, e.Path, short)
}

// DefaultDebounce is how long a file must stay quiet before it is checked.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches a fixed set of files.
type Watcher struct {
	fsw *fsnotify.Watcher
	Log *logging.Logger
	// Debounce delays the content check until no notification has arrived
	// for this long. Zero means DefaultDebounce.
	Debounce time.Duration

	mu     sync.Mutex
	hashes map[string]string // "" means absent
}

// New starts watching the directories holding paths and records the current
// content hash of each file.
func New(paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{fsw: fsw, hashes: make(map[string]string)}
	dirs := map[string]bool{}
	for _, p := range paths {
		p = filepath.Clean(p)
		h, err := hashFile(p)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			fsw.Close()
			return nil, err
		}
		w.hashes[p] = h
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Acknowledge records content the caller is about to write to path, so the
// resulting change is not reported back.
func (w *Watcher) Acknowledge(path string, content []byte) {
	sum := sha256.Sum256(content)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hashes[filepath.Clean(path)] = hex.EncodeToString(sum[:])
}

// Run delivers events until ctx is done, then closes the channel and the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) <-chan Event {
	out := make(chan Event)
	log := logging.OrNop(w.Log).WithComponent("watch")
	quiet := w.Debounce
	if quiet <= 0 {
		quiet = DefaultDebounce
	}
	go func() {
		defer close(out)
		defer w.fsw.Close()

		pending := map[string]bool{}
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				p := filepath.Clean(ev.Name)
				if !w.tracked(p) {
					continue
				}
				pending[p] = true
				fire = time.After(quiet)
			case <-fire:
				fire = nil
				paths := make([]string, 0, len(pending))
				for p := range pending {
					paths = append(paths, p)
				}
				clear(pending)
				sort.Strings(paths)
				for _, p := range paths {
					e, changed := w.check(p)
					if !changed {
						continue
					}
					select {
					case out <- e:
					case <-ctx.Done():
						return
					}
				}
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				log.Warnw("watch error", "error", err)
			}
		}
	}()
	return out
}

func (w *Watcher) tracked(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.hashes[path]
	return ok
}

func (w *Watcher) check(path string) (Event, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev, tracked := w.hashes[path]
	if !tracked {
		return Event{}, false
	}
	h, err := hashFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Event{}, false
	}
	if h == prev {
		return Event{}, false
	}
	w.hashes[path] = h
	op := OpChanged
	switch {
	case h == "":
		op = OpRemoved
	case prev == "":
		op = OpCreated
	}
	return Event{Path: path, Op: op, Hash: h, Time: time.Now()}, true
}

// hashFile returns the SHA-256 of a file, or "" with an os.ErrNotExist error
// when it is absent.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
