// Package file connects documents to the file system: it loads a file
// into a text.Text and writes a text.Text back, either atomically or in
// place.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rjkroege/textcore/block"
	"github.com/rjkroege/textcore/text"
)

// MmapThreshold is the file size from which LoadAuto maps a file instead
// of reading it.
const MmapThreshold = 1 << 26

type LoadMethod int

const (
	LoadAuto LoadMethod = iota // read small files, map large ones
	LoadRead                   // always copy the file into memory
	LoadMmap                   // always map the file
)

var (
	ErrIsDir      = errors.New("is a directory")
	ErrNotRegular = errors.New("not a regular file")
)

// Load opens the named file and returns a document holding its content.
// An empty name or a file that does not exist yet yields an empty
// document.
func Load(name string, method LoadMethod, opts ...text.Option) (*text.Text, *DiskDetails, error) {
	d := &DiskDetails{Name: name}
	if name == "" {
		t := text.New(nil, opts...)
		d.Hash = HashText(t)
		return t, d, nil
	}

	f, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		t := text.New(nil, opts...)
		d.Hash = HashText(t)
		return t, d, nil
	}
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		if info.IsDir() {
			return nil, nil, fmt.Errorf("load %s: %w", name, ErrIsDir)
		}
		return nil, nil, fmt.Errorf("load %s: %w", name, ErrNotRegular)
	}
	d.Info = info

	size := int(info.Size())
	var b *block.Block
	switch {
	case size == 0:
	case method == LoadRead, method == LoadAuto && size < MmapThreshold:
		b, err = block.Read(f, size, size)
	default:
		b, err = block.Map(f, size)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", name, err)
	}
	if b != nil {
		d.Hash = CalcHash(b.Bytes())
	} else {
		d.Hash = CalcHash(nil)
	}
	return text.FromBlock(b, info, opts...), d, nil
}
