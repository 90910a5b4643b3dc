package text

import (
	"io"
	"strings"

	"github.com/rjkroege/textcore/block"
)

var (
	_ io.ReaderAt = (*Text)(nil)
	_ io.WriterTo = (*Text)(nil)
)

// read copies the bytes starting at pos into buf and returns how many
// were copied.
func (t *Text) read(buf []byte, pos int) int {
	n := 0
	for it := t.IterAt(pos); it.Valid() && n < len(buf); it.Next() {
		n += copy(buf[n:], it.Bytes())
	}
	return n
}

// ReadAt implements io.ReaderAt.
func (t *Text) ReadAt(p []byte, off int64) (int, error) {
	if t.isClosed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrRange
	}
	if off >= int64(t.size) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := t.read(p, int(off))
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Bytes returns a copy of at most n bytes starting at pos.
func (t *Text) Bytes(pos, n int) []byte {
	if pos < 0 || pos > t.size || n <= 0 {
		return nil
	}
	if n > t.size-pos {
		n = t.size - pos
	}
	buf := make([]byte, n)
	return buf[:t.read(buf, pos)]
}

// ByteAt returns the byte at pos.
func (t *Text) ByteAt(pos int) (byte, bool) {
	if pos < 0 || pos >= t.size {
		return 0, false
	}
	var b [1]byte
	if t.read(b[:], pos) != 1 {
		return 0, false
	}
	return b[0], true
}

// String returns the whole content.
func (t *Text) String() string {
	var sb strings.Builder
	sb.Grow(t.size)
	t.WriteTo(&sb)
	return sb.String()
}

// WriteRange writes the bytes in [start, end) to w.
func (t *Text) WriteRange(w io.Writer, start, end int) (int64, error) {
	if t.isClosed {
		return 0, ErrClosed
	}
	if start < 0 || end > t.size || start > end {
		return 0, ErrRange
	}
	var written int64
	rem := end - start
	for it := t.IterAt(start); it.Valid() && rem > 0; it.Next() {
		b := it.Bytes()
		if len(b) > rem {
			b = b[:rem]
		}
		if len(b) == 0 {
			continue
		}
		n, err := w.Write(b)
		written += int64(n)
		rem -= n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// WriteTo implements io.WriterTo by writing the whole content to w.
func (t *Text) WriteTo(w io.Writer) (int64, error) {
	return t.WriteRange(w, 0, t.size)
}

// IsMapped reports whether the byte at pos is backed by a memory mapped
// file.
func (t *Text) IsMapped(pos int) bool {
	if t.isClosed {
		return false
	}
	p, _ := t.locateExternal(pos)
	if p == none || t.pieces[p].blk == none {
		return false
	}
	return t.store.Block(t.pieces[p].blk).Kind() == block.Mapped
}
