//go:build unix

package block

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps size bytes of f read-only. The mapping stays valid after f is
// closed.
func Map(f *os.File, size int) (*Block, error) {
	b := &Block{kind: Mapped}
	if size == 0 {
		return b, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", f.Name(), err)
	}
	b.data = data
	b.unmap = unix.Munmap
	return b, nil
}
