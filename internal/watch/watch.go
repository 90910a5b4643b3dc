// Package watch reports changes to files on disk. It watches the
// directory holding each file so that files replaced by rename are
// still followed.
package watch

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

var (
	ErrClosed      = errors.New("watcher closed")
	ErrNotWatching = errors.New("file not watched")
)

// Watcher sends the names of watched files that changed.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	files   map[string]bool
	dirs    map[string]int // watched files per directory

	changes chan string
	errors  chan error

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// New returns a watcher with room for n pending changes.
func New(n int) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 100
	}
	w := &Watcher{
		watcher: fsw,
		files:   make(map[string]bool),
		dirs:    make(map[string]int),
		changes: make(chan string, n),
		errors:  make(chan error, n),
		closeCh: make(chan struct{}),
	}
	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Add starts watching the named file. The file need not exist but its
// directory must.
func (w *Watcher) Add(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Remove stops watching the named file.
func (w *Watcher) Remove(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	if !w.files[abs] {
		return ErrNotWatching
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.watcher.Remove(dir)
	}
	return nil
}

// Changes returns the channel on which the absolute names of changed
// files are sent. A burst of writes may be reported more than once.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Errors returns the channel on which watch errors are sent.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher and closes its channels.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()
	close(w.changes)
	close(w.errors)
	return w.watcher.Close()
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	name := filepath.Clean(ev.Name)
	w.mu.Lock()
	watched := w.files[name]
	w.mu.Unlock()
	if !watched {
		return
	}
	select {
	case w.changes <- name:
	default:
		// the receiver rechecks the file anyway
	}
}
