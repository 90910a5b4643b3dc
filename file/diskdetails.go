package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rjkroege/textcore/text"
)

// DiskDetails records what is known about the file backing a document.
type DiskDetails struct {
	Name string
	Info os.FileInfo
	Hash Hash // Used to check if the file has changed on disk since loaded.
}

// UpdateInfo updates the recorded info to d if the file hash hasn't changed.
func (f *DiskDetails) UpdateInfo(filename string, d os.FileInfo) error {
	h, err := HashFor(filename)
	if err != nil {
		return fmt.Errorf("failed to compute hash for %v: %v", filename, err)
	}
	if h.Eq(f.Hash) {
		f.Info = d
	}
	return nil
}

// Saved records the state of the file after t was written to it.
func (f *DiskDetails) Saved(t *text.Text) {
	f.Info = t.Stat()
	f.Hash = HashText(t)
}

// Changed reports whether the file on disk no longer holds the content
// that was loaded or saved. A file that is merely touched is not
// considered changed and its new info is recorded.
func (f *DiskDetails) Changed() (bool, error) {
	if f.Name == "" {
		return false, nil
	}
	d, err := os.Stat(f.Name)
	if errors.Is(err, fs.ErrNotExist) {
		return f.Info != nil, nil
	}
	if err != nil {
		return false, err
	}
	if f.Info != nil && d.Size() == f.Info.Size() && d.ModTime().Equal(f.Info.ModTime()) {
		return false, nil
	}
	h, err := HashFor(f.Name)
	if err != nil {
		return false, fmt.Errorf("failed to compute hash for %v: %v", f.Name, err)
	}
	if h.Eq(f.Hash) {
		f.Info = d
		return false, nil
	}
	return true, nil
}
