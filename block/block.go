// Package block manages the raw byte buffers backing a document.
//
// A Block is either heap allocated (and then only ever grown at its tail,
// never reallocated) or a read-only memory mapping of an external file.
// Pieces of a document refer to a byte range of a block by (block index,
// offset), so a block must keep its content addressable at a stable offset
// for as long as the owning Store lives.
package block

import (
	"errors"
	"fmt"
	"io"
)

// DefaultSize is the minimal capacity of a heap block.
const DefaultSize = 1 << 20

// Kind records how the memory of a block was obtained.
type Kind int

const (
	Heap     Kind = iota // heap allocated, appendable
	Mapped               // mmap(2)-ed read-only from an external file
	Detached             // former mapping replaced by a private heap copy
)

func (k Kind) String() string {
	switch k {
	case Heap:
		return "heap"
	case Mapped:
		return "mapped"
	case Detached:
		return "detached"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var (
	ErrNoSpace  = errors.New("block: storage exhausted")
	ErrReadOnly = errors.New("block: block is read-only")
)

// A Block holds document content. len(data) is the used length and
// cap(data) the capacity.
type Block struct {
	kind Kind
	data []byte
	// unmap releases a mapping. nil for heap blocks.
	unmap func([]byte) error
}

// New allocates a heap block able to hold at least size bytes. The
// capacity is never smaller than unit.
func New(size, unit int) *Block {
	if unit <= 0 {
		unit = DefaultSize
	}
	if size < unit {
		size = unit
	}
	return &Block{
		kind: Heap,
		data: make([]byte, 0, size),
	}
}

// Read allocates a heap block and fills it with up to size bytes from r.
// Reading stops early at io.EOF; the block then holds what was read.
func Read(r io.Reader, size, unit int) (*Block, error) {
	b := New(size, unit)
	n, err := io.ReadFull(r, b.data[:size])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	b.data = b.data[:n]
	return b, nil
}

// Kind returns how the block's memory was obtained.
func (b *Block) Kind() Kind { return b.kind }

// Len returns the number of bytes in use.
func (b *Block) Len() int { return len(b.data) }

// Cap returns the capacity of the block.
func (b *Block) Cap() int { return cap(b.data) }

// Bytes returns the used portion of the block. The caller must not
// modify it.
func (b *Block) Bytes() []byte { return b.data }

// Slice returns the n bytes at off.
func (b *Block) Slice(off, n int) []byte {
	return b.data[off : off+n : off+n]
}

// Fits reports whether n more bytes can be appended.
func (b *Block) Fits(n int) bool {
	return b.kind == Heap && cap(b.data)-len(b.data) >= n
}

// Append copies data to the tail of the block and returns the offset at
// which it was stored. It fails when the block lacks capacity.
func (b *Block) Append(data []byte) (int, bool) {
	if !b.Fits(len(data)) {
		return 0, false
	}
	off := len(b.data)
	b.data = append(b.data, data...)
	return off, true
}

// Insert places data at pos, shifting the bytes after pos. This must only
// be used on the content of the most recently created piece of the most
// recently created block.
func (b *Block) Insert(pos int, data []byte) bool {
	if pos < 0 || pos > len(b.data) || !b.Fits(len(data)) {
		return false
	}
	if pos == len(b.data) {
		_, ok := b.Append(data)
		return ok
	}
	n := len(b.data)
	b.data = b.data[:n+len(data)]
	copy(b.data[pos+len(data):], b.data[pos:n])
	copy(b.data[pos:], data)
	return true
}

// Delete removes n bytes at pos, shifting the bytes after the range. The
// same restrictions as for Insert apply.
func (b *Block) Delete(pos, n int) bool {
	if b.kind != Heap || pos < 0 || n < 0 {
		return false
	}
	end := pos + n
	if end < pos || end > len(b.data) {
		return false
	}
	copy(b.data[pos:], b.data[end:])
	b.data = b.data[:len(b.data)-n]
	return true
}

// Detach replaces a mapped block's content by a private heap copy and
// releases the mapping. Offsets into the block remain valid.
func (b *Block) Detach() error {
	if b.kind != Mapped {
		return nil
	}
	c := make([]byte, len(b.data))
	copy(c, b.data)
	if err := b.release(); err != nil {
		return err
	}
	b.data = c
	b.kind = Detached
	return nil
}

// Close releases the memory held by the block.
func (b *Block) Close() error {
	err := b.release()
	b.data = nil
	return err
}

func (b *Block) release() error {
	if b.unmap == nil || b.data == nil {
		return nil
	}
	f := b.unmap
	b.unmap = nil
	return f(b.data[:cap(b.data)])
}
