package refresh

import (
	"context"
	"errors"
	"testing"

	"github.com/example/room-finder/internal/rooms"
)

type stubSource struct {
	directory []rooms.Room
	err       error
}

func (s *stubSource) LoadDirectory(ctx context.Context) ([]rooms.Room, error) {
	return s.directory, s.err
}

func TestDirectoryNilBeforeFirstLoad(t *testing.T) {
	r := &Refresher{Source: &stubSource{}}
	if got := r.Directory(); got != nil {
		t.Fatalf("expected nil snapshot before first load, got %v", got)
	}
}

func TestLoadInstallsSnapshot(t *testing.T) {
	src := &stubSource{directory: []rooms.Room{{ID: 1, Name: "Olin 107"}}}
	r := &Refresher{Source: src}

	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := r.Directory()
	if len(got) != 1 || got[0].Name != "Olin 107" {
		t.Fatalf("unexpected snapshot %v", got)
	}
}

func TestFailedLoadKeepsPreviousSnapshot(t *testing.T) {
	src := &stubSource{directory: []rooms.Room{{ID: 1, Name: "Olin 107"}}}
	r := &Refresher{Source: src}
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	src.err = errors.New("db down")
	if err := r.Load(context.Background()); err == nil {
		t.Fatal("expected error from failed load")
	}
	if got := r.Directory(); len(got) != 1 || got[0].Name != "Olin 107" {
		t.Fatalf("snapshot lost after failed load: %v", got)
	}
}
