package file

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/rjkroege/textcore/text"
)

type SaveMethod int

const (
	SaveAuto    SaveMethod = iota // atomic, falling back to in place
	SaveAtomic                    // write a temporary file and rename it
	SaveInPlace                   // truncate and overwrite the file
)

var (
	ErrSymlink  = errors.New("file is a symbolic link")
	ErrHardLink = errors.New("file has more than one link")
)

// tempPattern names the temporary file of an atomic save of base.
func tempPattern(base string) string {
	return "." + base + ".textcore-*"
}

// Save writes t to the named file. On success t is marked as saved. An
// empty name only marks t as saved.
func Save(t *text.Text, name string, method SaveMethod) error {
	if name == "" {
		t.MarkSaved(nil)
		return nil
	}

	var info os.FileInfo
	var err error
	switch method {
	case SaveAtomic:
		info, err = saveAtomic(t, name)
	case SaveInPlace:
		info, err = saveInPlace(t, name)
	default:
		info, err = saveAtomic(t, name)
		if err != nil && !isNoSpace(err) {
			log.Printf("atomic save of %s failed, writing in place: %v", name, err)
			info, err = saveInPlace(t, name)
		}
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	t.MarkSaved(info)
	return nil
}

// saveAtomic writes t to a new file next to name and renames it into
// place, preserving the mode and owner of an existing file.
func saveAtomic(t *text.Text, name string) (os.FileInfo, error) {
	old, err := os.Lstat(name)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if exists {
		if old.Mode()&os.ModeSymlink != 0 {
			return nil, ErrSymlink
		}
		if linkCount(old) > 1 {
			return nil, ErrHardLink
		}
	}

	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, tempPattern(base))
	if err != nil {
		return nil, err
	}
	tmp := f.Name()
	fail := func(err error) (os.FileInfo, error) {
		f.Close()
		os.Remove(tmp)
		return nil, err
	}

	if exists {
		if err := f.Chmod(old.Mode().Perm()); err != nil {
			return fail(err)
		}
		if err := preserveOwner(f, old); err != nil {
			return fail(err)
		}
	} else if err := f.Chmod(defaultPerm()); err != nil {
		return fail(err)
	}

	if _, err := t.WriteTo(f); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	info, err := f.Stat()
	if err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, name); err != nil {
		os.Remove(tmp)
		return nil, err
	}
	if err := syncDir(dir); err != nil {
		return nil, err
	}
	return info, nil
}

// saveInPlace truncates name and writes t into it. Mapped content of the
// same file is copied out first so that it survives the truncation.
func saveInPlace(t *text.Text, name string) (os.FileInfo, error) {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	now, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if loaded := t.Stat(); loaded != nil && os.SameFile(loaded, now) {
		s := t.Store()
		for _, i := range s.Mapped() {
			if err := s.Block(i).Detach(); err != nil {
				return nil, err
			}
		}
	}

	if err := f.Truncate(0); err != nil {
		return nil, err
	}
	if _, err := t.WriteTo(f); err != nil {
		return nil, err
	}
	if err := f.Sync(); err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return info, f.Close()
}
