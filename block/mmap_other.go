//go:build !unix

package block

import "os"

// Map falls back to reading f into memory where mmap(2) is unavailable.
// The result is immutable like a real mapping.
func Map(f *os.File, size int) (*Block, error) {
	b, err := Read(f, size, size)
	if err != nil {
		return nil, err
	}
	b.kind = Mapped
	return b, nil
}
