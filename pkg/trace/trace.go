// Package trace implements the editor's append-only JSONL audit trail.
// Every guarded write, marker change and preset change is recorded so a
// user can find out which backup to restore after a failed save.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all trace event types.
type EventType string

const (
	EventSessionLoad  EventType = "session_load"
	EventSaveStart    EventType = "save_start"
	EventBackup       EventType = "backup"
	EventWrite        EventType = "write"
	EventRestore      EventType = "restore"
	EventSaveComplete EventType = "save_complete"
	EventMarker       EventType = "marker"
	EventPreset       EventType = "preset"
)

// Event is a single trace event written to the JSONL stream.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// Writer writes trace events to an append-only JSONL stream. A nil *Writer
// discards everything.
type Writer struct {
	mu    sync.Mutex
	w     io.Writer
	runID string
	enc   *json.Encoder
}

// NewRunID returns a fresh identifier for one editor session.
func NewRunID() string { return uuid.NewString() }

// NewWriter creates a trace writer that writes to the given io.Writer.
func NewWriter(w io.Writer, runID string) *Writer {
	return &Writer{
		w:     w,
		runID: runID,
		enc:   json.NewEncoder(w),
	}
}

// NewFileWriter creates a trace writer that appends to a JSONL file.
func NewFileWriter(path, runID string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return NewWriter(f, runID), nil
}

// RunID returns the session identifier stamped on every event.
func (tw *Writer) RunID() string {
	if tw == nil {
		return ""
	}
	return tw.runID
}

// Close closes the underlying stream when it is closable.
func (tw *Writer) Close() error {
	if tw == nil {
		return nil
	}
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if c, ok := tw.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Emit writes a single trace event.
func (tw *Writer) Emit(eventType EventType, data map[string]any) error {
	if tw == nil {
		return nil
	}
	tw.mu.Lock()
	defer tw.mu.Unlock()

	evt := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		RunID:     tw.runID,
		Data:      data,
	}
	return tw.enc.Encode(evt)
}

// EmitSaveStart emits a save_start event.
func (tw *Writer) EmitSaveStart(path, backup string, size int) error {
	return tw.Emit(EventSaveStart, map[string]any{
		"path":   path,
		"backup": backup,
		"bytes":  size,
	})
}

// EmitStep emits a backup, write or restore event. err may be nil.
func (tw *Writer) EmitStep(eventType EventType, path string, err error) error {
	data := map[string]any{
		"path": path,
		"ok":   err == nil,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	return tw.Emit(eventType, data)
}

// EmitSaveComplete emits a save_complete event with the final outcome.
func (tw *Writer) EmitSaveComplete(path, outcome, backup string, duration time.Duration) error {
	data := map[string]any{
		"path":     path,
		"outcome":  outcome,
		"duration": duration.String(),
	}
	if backup != "" {
		data["backup_kept"] = backup
	}
	return tw.Emit(EventSaveComplete, data)
}

// EmitMarker emits a marker event for a create or delete of a marker file.
func (tw *Writer) EmitMarker(name, action string) error {
	return tw.Emit(EventMarker, map[string]any{
		"marker": name,
		"action": action,
	})
}

// EmitPreset emits a preset event.
func (tw *Writer) EmitPreset(name, action string) error {
	return tw.Emit(EventPreset, map[string]any{
		"preset": name,
		"action": action,
	})
}

// ReadEvents decodes a JSONL trace stream. Blank lines are skipped.
func ReadEvents(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var evt Event
		if err := json.Unmarshal(line, &evt); err != nil {
			return events, fmt.Errorf("trace line %d: %w", n, err)
		}
		events = append(events, evt)
	}
	return events, sc.Err()
}

// ReadFile reads all events from a JSONL trace file.
func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()
	return ReadEvents(f)
}
