package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriter_Emit(t *testing.T) {
	var buf bytes.Buffer
	tw := NewWriter(&buf, "test-run-1")

	err := tw.Emit(EventSaveStart, map[string]any{
		"path": "file0",
	})
	if err != nil {
		t.Fatalf("Emit error: %v", err)
	}

	var evt Event
	if err := json.Unmarshal(buf.Bytes(), &evt); err != nil {
		t.Fatalf("JSON unmarshal: %v (raw: %s)", err, buf.String())
	}
	if evt.Type != EventSaveStart {
		t.Errorf("type = %q, want save_start", evt.Type)
	}
	if evt.RunID != "test-run-1" {
		t.Errorf("run_id = %q", evt.RunID)
	}
	if evt.Data["path"] != "file0" {
		t.Errorf("path = %v", evt.Data["path"])
	}
}

func TestWriter_EmitStepWithError(t *testing.T) {
	var buf bytes.Buffer
	tw := NewWriter(&buf, "run-1")

	if err := tw.EmitStep(EventWrite, "file0", errors.New("disk full")); err != nil {
		t.Fatal(err)
	}
	var evt Event
	json.Unmarshal(buf.Bytes(), &evt)
	if evt.Data["ok"] != false {
		t.Errorf("ok = %v", evt.Data["ok"])
	}
	if evt.Data["error"] != "disk full" {
		t.Errorf("error = %v", evt.Data["error"])
	}
}

func TestWriter_NilDiscards(t *testing.T) {
	var tw *Writer
	if err := tw.EmitMarker("system_information_962", "create"); err != nil {
		t.Errorf("nil writer Emit = %v", err)
	}
	if tw.RunID() != "" {
		t.Error("nil writer has a run id")
	}
}

func TestWriter_MultipleEvents_JSONL(t *testing.T) {
	var buf bytes.Buffer
	tw := NewWriter(&buf, NewRunID())

	tw.EmitSaveStart("file0", "cache/file0", 10)
	tw.EmitStep(EventBackup, "cache/file0", nil)
	tw.EmitStep(EventWrite, "file0", nil)
	tw.EmitSaveComplete("file0", "committed", "", 5*time.Millisecond)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 JSONL lines, got %d", len(lines))
	}

	events, err := ReadEvents(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadEvents: %v", err)
	}
	want := []EventType{EventSaveStart, EventBackup, EventWrite, EventSaveComplete}
	for i, evt := range events {
		if evt.Type != want[i] {
			t.Errorf("event %d type = %q, want %q", i, evt.Type, want[i])
		}
		if evt.RunID != events[0].RunID {
			t.Errorf("event %d run id differs", i)
		}
	}
	if _, ok := events[3].Data["backup_kept"]; ok {
		t.Error("committed save should not report a kept backup")
	}
}

func TestReadEvents_BadLine(t *testing.T) {
	_, err := ReadEvents(strings.NewReader("{\"type\":\"write\"}\n\nnot json\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("err = %v, want line 3", err)
	}
}

func TestFileWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	for i := 0; i < 2; i++ {
		tw, err := NewFileWriter(path, "run")
		if err != nil {
			t.Fatal(err)
		}
		tw.EmitPreset("Default", "load")
		if err := tw.Close(); err != nil {
			t.Fatal(err)
		}
	}
	events, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Errorf("events = %d, want 2", len(events))
	}
}
