package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// waitFor reads events until one matches. A single write can surface as
// several events (truncate, then write), so intermediate ones are skipped.
func waitFor(t *testing.T, ch <-chan Event, path string, op Op) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-ch:
			if e.Path == path && e.Op == op {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s %s", op, path)
		}
	}
}

func TestWatcherReportsContentChanges(t *testing.T) {
	dir := t.TempDir()
	save := filepath.Join(dir, "file0")
	if err := os.WriteFile(save, []byte("Frisk\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(save, filepath.Join(dir, "undertale.ini"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := w.Run(ctx)

	// untracked files in the same directory are ignored
	os.WriteFile(filepath.Join(dir, "other"), []byte("x"), 0o644)

	if err := os.WriteFile(save, []byte("Chara\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, events, save, OpChanged)

	ini := filepath.Join(dir, "undertale.ini")
	os.WriteFile(ini, []byte("[General]\r\n"), 0o644)
	waitFor(t, events, ini, OpCreated)

	os.Remove(save)
	waitFor(t, events, save, OpRemoved)

	cancel()
	for range events {
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	save := filepath.Join(dir, "file0")
	if err := os.WriteFile(save, []byte("0"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New(save)
	if err != nil {
		t.Fatal(err)
	}
	w.Debounce = 300 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := w.Run(ctx)

	for _, content := range []string{"1", "2", "3"} {
		if err := os.WriteFile(save, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	sum := sha256.Sum256([]byte("3"))
	want := hex.EncodeToString(sum[:])
	select {
	case e := <-events:
		if e.Op != OpChanged || e.Hash != want {
			t.Errorf("event = %v, want one change to the final content", e)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the debounced event")
	}
	select {
	case e := <-events:
		t.Errorf("burst produced a second event: %v", e)
	case <-time.After(2 * w.Debounce):
	}

	cancel()
	for range events {
	}
}

func TestAcknowledgeSuppressesOwnWrite(t *testing.T) {
	dir := t.TempDir()
	save := filepath.Join(dir, "file0")
	os.WriteFile(save, []byte("a"), 0o644)
	w, err := New(save)
	if err != nil {
		t.Fatal(err)
	}
	e, changed := w.check(save)
	if changed {
		t.Fatalf("unchanged file reported: %v", e)
	}

	w.Acknowledge(save, []byte("b"))
	os.WriteFile(save, []byte("b"), 0o644)
	if e, changed := w.check(save); changed {
		t.Errorf("acknowledged write reported: %v", e)
	}
	os.WriteFile(save, []byte("c"), 0o644)
	if _, changed := w.check(save); !changed {
		t.Error("foreign write not reported")
	}
	w.fsw.Close()
}
