package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitChange(t *testing.T, w *Watcher, want string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case name := <-w.Changes():
			if name == want {
				return
			}
			t.Errorf("change to %s, want %s", name, want)
		case err := <-w.Errors():
			t.Fatalf("watch error: %v", err)
		case <-timeout:
			t.Fatalf("no change reported for %s", want)
		}
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(name, []byte("one"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(0)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(name); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(name); err != nil {
		t.Errorf("second Add: %v", err)
	}

	// files next to the watched one are ignored
	if err := os.WriteFile(filepath.Join(dir, "other"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, []byte("two"), 0644); err != nil {
		t.Fatal(err)
	}
	waitChange(t, w, name)

	if err := w.Remove(name); err != nil {
		t.Fatal(err)
	}
	if err := w.Remove(name); !errors.Is(err, ErrNotWatching) {
		t.Errorf("second Remove: got %v, want ErrNotWatching", err)
	}
}

func TestWatchRename(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "doc.txt")
	tmp := filepath.Join(dir, ".doc.txt.tmp")

	w, err := New(0)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(name); err != nil {
		t.Fatalf("watching a file yet to be created: %v", err)
	}
	if err := os.WriteFile(tmp, []byte("new"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, name); err != nil {
		t.Fatal(err)
	}
	waitChange(t, w, name)
}

func TestClosed(t *testing.T) {
	w, err := New(1)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := w.Add(filepath.Join(t.TempDir(), "x")); !errors.Is(err, ErrClosed) {
		t.Errorf("Add after Close: got %v, want ErrClosed", err)
	}
	if _, ok := <-w.Changes(); ok {
		t.Errorf("changes channel open after Close")
	}
}
