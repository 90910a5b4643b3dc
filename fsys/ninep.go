package fsys

import (
	"io"

	"9fans.net/go/plan9"
)

// readAt answers the read x with at most x.Count bytes read from r at
// offset off. Strings are served through strings.Reader, so replies may
// end in the middle of a rune and the client reads again for the rest.
func readAt(t, x *plan9.Fcall, r io.ReaderAt, off int64) error {
	data := make([]byte, x.Count)
	n, err := r.ReadAt(data, off)
	if err != nil && err != io.EOF {
		return err
	}
	t.Count = uint32(n)
	t.Data = data[:n]
	return nil
}

// readDir answers the read x with the encoded entries of dirs found at
// byte offset x.Offset. Entries are never split: the reply stops before
// the first one that does not fit in x.Count bytes.
func readDir(t, x *plan9.Fcall, dirs []*plan9.Dir) {
	end := x.Offset + uint64(x.Count)
	data := make([]byte, 0, x.Count)
	var pos uint64
	for _, d := range dirs {
		b, err := d.Bytes()
		if err != nil {
			break
		}
		next := pos + uint64(len(b))
		if next > end {
			break
		}
		if pos >= x.Offset {
			data = append(data, b...)
		}
		pos = next
	}
	t.Data = data
	t.Count = uint32(len(data))
}
