package fsys

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rjkroege/textcore/file"
	"github.com/rjkroege/textcore/text"
)

var (
	ErrBadAddr = errors.New("bad address")
	ErrBadCtl  = errors.New("ill-formed control message")
	ErrNoMark  = errors.New("mark is not set or no longer in the text")
	ErrNoName  = errors.New("document has no file name")
)

// A Doc is a document served by the file server. All access to Text and
// Disk must hold the lock.
type Doc struct {
	sync.Mutex
	ID   int
	Text *text.Text
	Disk *file.DiskDetails

	q0, q1  int // address used by data
	mark    text.Mark
	changed bool // the file was modified by someone else
}

// Name returns the name of the file backing the document.
func (d *Doc) Name() string {
	if d.Disk == nil {
		return ""
	}
	return d.Disk.Name
}

// SetChanged records whether the file on disk no longer matches what
// was loaded or saved.
func (d *Doc) SetChanged(changed bool) {
	d.changed = changed
}

// setAddr sets the address, clamping it to the text.
func (d *Doc) setAddr(q0, q1 int) {
	size := d.Text.Size()
	if q0 < 0 {
		q0 = 0
	}
	if q1 > size {
		q1 = size
	}
	if q0 > size {
		q0 = size
	}
	if q1 < q0 {
		q1 = q0
	}
	d.q0, d.q1 = q0, q1
}

// parseAddr parses "q0" or "q0,q1".
func (d *Doc) parseAddr(s string) error {
	s = strings.TrimSpace(s)
	a, b, found := strings.Cut(s, ",")
	q0, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBadAddr, s)
	}
	q1 := q0
	if found {
		if q1, err = strconv.Atoi(strings.TrimSpace(b)); err != nil {
			return fmt.Errorf("%w: %q", ErrBadAddr, s)
		}
	}
	if q0 < 0 || q0 > q1 || q1 > d.Text.Size() {
		return fmt.Errorf("%w: %q", ErrBadAddr, s)
	}
	d.q0, d.q1 = q0, q1
	return nil
}

// status is the content of the ctl file.
func (d *Doc) status() string {
	t := d.Text
	return fmt.Sprintf("%d %d %d %d %v %v\n", d.ID, t.Size(), t.LineOf(t.Size()), t.Seq(), t.Modified(), d.changed)
}

// replace substitutes data for the addressed range and leaves the
// address after it. The text is unchanged if data cannot be stored.
func (d *Doc) replace(data []byte) error {
	// Insert first: only it allocates from the store.
	if err := d.Text.Insert(d.q1, data); err != nil {
		return err
	}
	if err := d.Text.DeleteRange(d.q0, d.q1); err != nil {
		return err
	}
	d.q0 += len(data)
	d.q1 = d.q0
	return nil
}

// moved sets the address to pos after a history jump.
func (d *Doc) moved(pos int) {
	if pos != text.NoPos {
		d.setAddr(pos, pos)
	} else {
		d.setAddr(d.q0, d.q1)
	}
}

// ctl executes one control message.
func (d *Doc) ctl(cmd string, save file.SaveMethod) error {
	t := d.Text
	verb, arg, _ := strings.Cut(strings.TrimSpace(cmd), " ")
	arg = strings.TrimSpace(arg)
	switch verb {
	case "":
	case "undo":
		d.moved(t.Undo())
	case "redo":
		d.moved(t.Redo())
	case "earlier":
		d.moved(t.Earlier())
	case "later":
		d.moved(t.Later())
	case "restore":
		sec, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrBadCtl, cmd)
		}
		d.moved(t.Restore(time.Unix(sec, 0)))
	case "snapshot":
		t.Snapshot()
	case "line":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrBadCtl, cmd)
		}
		q0 := t.LinePos(n)
		if q0 == text.NoPos {
			return fmt.Errorf("%w: no line %d", ErrBadAddr, n)
		}
		q1 := t.LinePos(n + 1)
		if q1 == text.NoPos {
			q1 = t.Size()
		}
		d.setAddr(q0, q1)
	case "mark":
		d.mark = t.MarkSet(d.q0)
	case "gomark":
		pos := t.MarkGet(d.mark)
		if pos == text.NoPos {
			return ErrNoMark
		}
		d.setAddr(pos, pos)
	case "save":
		if d.Name() == "" {
			return ErrNoName
		}
		if err := file.Save(t, d.Name(), save); err != nil {
			return err
		}
		if d.Disk != nil {
			d.Disk.Saved(t)
		}
		d.changed = false
		log.Printf("saved document %d to %q", d.ID, d.Name())
	case "clean":
		t.MarkSaved(nil)
	default:
		return fmt.Errorf("%w: %q", ErrBadCtl, cmd)
	}
	return nil
}

// Docs is the set of documents served.
type Docs struct {
	mu     sync.Mutex
	docs   map[int]*Doc
	nextID int
}

// Add registers a document and assigns its id.
func (ds *Docs) Add(t *text.Text, disk *file.DiskDetails) *Doc {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.docs == nil {
		ds.docs = make(map[int]*Doc)
	}
	ds.nextID++
	d := &Doc{ID: ds.nextID, Text: t, Disk: disk}
	ds.docs[d.ID] = d
	return d
}

// Remove unregisters d and closes its text.
func (ds *Docs) Remove(d *Doc) error {
	ds.mu.Lock()
	delete(ds.docs, d.ID)
	ds.mu.Unlock()
	d.Lock()
	defer d.Unlock()
	return d.Text.Close()
}

// Lookup returns the document with the given id or nil.
func (ds *Docs) Lookup(id int) *Doc {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.docs[id]
}

// LookupName returns the document backed by the named file or nil.
func (ds *Docs) LookupName(name string) *Doc {
	for _, d := range ds.All() {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// All returns the documents ordered by id.
func (ds *Docs) All() []*Doc {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	all := make([]*Doc, 0, len(ds.docs))
	for _, d := range ds.docs {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Close closes every document.
func (ds *Docs) Close() error {
	var err error
	for _, d := range ds.All() {
		d.Lock()
		if e := d.Text.Close(); e != nil && err == nil {
			err = e
		}
		d.Unlock()
	}
	return err
}

// index is the content of the index file.
func (ds *Docs) index() string {
	var sb strings.Builder
	for _, d := range ds.All() {
		d.Lock()
		fmt.Fprintf(&sb, "%d %d %v %s\n", d.ID, d.Text.Size(), d.Text.Modified(), d.Name())
		d.Unlock()
	}
	return sb.String()
}

// Refresh rechecks the file behind the document backed by name and
// records whether it changed on disk. It reports whether a document was
// found.
func (ds *Docs) Refresh(name string) (bool, error) {
	d := ds.LookupName(name)
	if d == nil {
		return false, nil
	}
	d.Lock()
	defer d.Unlock()
	changed, err := d.Disk.Changed()
	if err != nil {
		return true, err
	}
	if changed && !d.changed {
		log.Printf("document %d: %s changed on disk", d.ID, name)
	}
	d.changed = changed
	return true, nil
}
