package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/d/house.json", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/d/house.JSON", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/d/house.json", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "/d/house.json", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/d/.house.json.swp", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/d/.house.json", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/d/notes.txt", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := relevant(tt.event); got != tt.want {
			t.Fatalf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestRunReportsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, 50*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batches := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(paths []string) { batches <- paths })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	target := filepath.Join(dir, "house.json")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(target, []byte(`{"data":[]}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-batches:
		if len(paths) != 1 || paths[0] != target {
			t.Fatalf("paths = %v", paths)
		}
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), 0, zerolog.Nop())
	if err := w.Run(context.Background(), func([]string) {}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
