package markers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/ormasoftchile/timemachine/pkg/trace"
)

func TestCreateExistsDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	var buf bytes.Buffer
	s := New(fs, "/game")
	s.Trace = trace.NewWriter(&buf, "run")

	for _, n := range Known {
		if ok, _ := s.Exists(n); ok {
			t.Fatalf("%d exists before create", n)
		}
		if err := s.Create(n); err != nil {
			t.Fatalf("Create(%d): %v", n, err)
		}
		if ok, _ := s.Exists(n); !ok {
			t.Errorf("%d missing after create", n)
		}
		info, err := fs.Stat("/game/" + Name(n))
		if err != nil || info.Size() != 0 {
			t.Errorf("marker %d should be empty: %v", n, err)
		}
	}

	if err := s.Delete(962); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	status, err := s.Status()
	if err != nil {
		t.Fatal(err)
	}
	if status[0].Exists || !status[1].Exists {
		t.Errorf("Status = %+v", status)
	}
	if err := s.Delete(962); err == nil {
		t.Error("deleting a missing marker should fail")
	}

	events, _ := trace.ReadEvents(&buf)
	if len(events) != 3 {
		t.Errorf("trace events = %d, want 3", len(events))
	}
}

func TestUnknownMarker(t *testing.T) {
	s := New(afero.NewMemMapFs(), "/game")
	if err := s.Create(961); !errors.Is(err, ErrUnknownMarker) {
		t.Errorf("err = %v, want ErrUnknownMarker", err)
	}
	if _, err := s.Exists(1); !errors.Is(err, ErrUnknownMarker) {
		t.Errorf("err = %v, want ErrUnknownMarker", err)
	}
}

func TestDirectoryIsNotAMarker(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/game/"+Name(963), 0o755); err != nil {
		t.Fatal(err)
	}
	s := New(fs, "/game")
	ok, err := s.Exists(963)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("a directory named like the marker was reported as present")
	}
}
