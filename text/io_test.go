package text

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestWriteRange(t *testing.T) {
	txt := New([]byte("hello world"))
	txt.insertString(t, 5, ",")

	for _, tc := range []struct {
		start, end int
		want       string
		err        error
	}{
		{0, 12, "hello, world", nil},
		{3, 9, "lo, wo", nil},
		{5, 6, ",", nil},
		{4, 4, "", nil},
		{5, 100, "", ErrRange},
		{-1, 3, "", ErrRange},
		{6, 5, "", ErrRange},
	} {
		var buf bytes.Buffer
		n, err := txt.WriteRange(&buf, tc.start, tc.end)
		if !errors.Is(err, tc.err) {
			t.Errorf("WriteRange(%d, %d) error %v, want %v", tc.start, tc.end, err, tc.err)
		}
		if buf.String() != tc.want || n != int64(len(tc.want)) {
			t.Errorf("WriteRange(%d, %d) = %q (%d), want %q", tc.start, tc.end, buf.String(), n, tc.want)
		}
	}
}

type failingWriter struct{ n int }

var errWrite = errors.New("write failed")

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		n := w.n
		w.n = 0
		return n, errWrite
	}
	w.n -= len(p)
	return len(p), nil
}

func TestWriteRangeError(t *testing.T) {
	txt := New([]byte("hello world"))
	txt.insertString(t, 5, ",")
	n, err := txt.WriteRange(&failingWriter{n: 7}, 0, txt.Size())
	if !errors.Is(err, errWrite) {
		t.Errorf("got %v, want errWrite", err)
	}
	if n != 7 {
		t.Errorf("wrote %d bytes, want 7", n)
	}
}

func TestReadAt(t *testing.T) {
	txt := New([]byte("hello world"))
	txt.insertString(t, 5, ",")

	p := make([]byte, 5)
	n, err := txt.ReadAt(p, 7)
	if err != nil || string(p[:n]) != "world" {
		t.Errorf("ReadAt(7) = %q, %v", p[:n], err)
	}
	n, err = txt.ReadAt(p, 9)
	if err != io.EOF || string(p[:n]) != "rld" {
		t.Errorf("ReadAt(9) = %q, %v", p[:n], err)
	}
	if _, err := txt.ReadAt(p, 12); err != io.EOF {
		t.Errorf("ReadAt(12) error %v, want EOF", err)
	}

	r := io.NewSectionReader(txt, 0, int64(txt.Size()))
	all, err := io.ReadAll(r)
	if err != nil || string(all) != "hello, world" {
		t.Errorf("ReadAll = %q, %v", all, err)
	}
}

func TestBytes(t *testing.T) {
	txt := New([]byte("hello world"))
	txt.insertString(t, 5, ",")

	if got := string(txt.Bytes(3, 4)); got != "lo, " {
		t.Errorf("Bytes(3, 4) = %q", got)
	}
	if got := string(txt.Bytes(10, 40)); got != "ld" {
		t.Errorf("Bytes(10, 40) = %q", got)
	}
	if got := txt.Bytes(13, 1); got != nil {
		t.Errorf("Bytes(13, 1) = %q", got)
	}
	if b, ok := txt.ByteAt(5); !ok || b != ',' {
		t.Errorf("ByteAt(5) = %q, %v", b, ok)
	}
	if _, ok := txt.ByteAt(12); ok {
		t.Errorf("ByteAt(12) succeeded")
	}
	if txt.IsMapped(0) {
		t.Errorf("heap content reported as mapped")
	}
}

func TestDump(t *testing.T) {
	txt := New([]byte("hello world"))
	txt.insertString(t, 5, ",")
	d := txt.Dump()
	for _, want := range []string{`"hello"`, `","`, `" world"`, "Size: 12"} {
		if !strings.Contains(d, want) {
			t.Errorf("dump lacks %s:\n%s", want, d)
		}
	}
	if ps := txt.Pieces(); len(ps) != 3 || ps[1].Len != 1 {
		t.Errorf("Pieces() = %v", ps)
	}
}
