package block

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRoundsUp(t *testing.T) {
	for _, tc := range []struct {
		size, unit, want int
	}{
		{0, 16, 16},
		{10, 16, 16},
		{17, 16, 17},
		{3, 0, DefaultSize},
	} {
		b := New(tc.size, tc.unit)
		if got := b.Cap(); got != tc.want {
			t.Errorf("New(%d, %d) capacity %d, want %d", tc.size, tc.unit, got, tc.want)
		}
		if b.Len() != 0 || b.Kind() != Heap {
			t.Errorf("New(%d, %d) = len %d kind %v", tc.size, tc.unit, b.Len(), b.Kind())
		}
	}
}

func TestAppendKeepsOffsets(t *testing.T) {
	b := New(8, 8)
	off, ok := b.Append([]byte("abc"))
	if !ok || off != 0 {
		t.Fatalf("first append = %d, %v", off, ok)
	}
	first := b.Slice(0, 3)
	off, ok = b.Append([]byte("defgh"))
	if !ok || off != 3 {
		t.Fatalf("second append = %d, %v", off, ok)
	}
	if _, ok := b.Append([]byte("i")); ok {
		t.Fatalf("append beyond capacity succeeded")
	}
	if got := string(first); got != "abc" {
		t.Errorf("earlier slice changed to %q", got)
	}
	if got := string(b.Bytes()); got != "abcdefgh" {
		t.Errorf("got %q", got)
	}
}

func TestInsertDelete(t *testing.T) {
	b := New(16, 16)
	b.Append([]byte("hello world"))

	tests := []struct {
		op   func() bool
		ok   bool
		want string
	}{
		0: {func() bool { return b.Insert(5, []byte(",")) }, true, "hello, world"},
		1: {func() bool { return b.Insert(12, []byte("!")) }, true, "hello, world!"},
		2: {func() bool { return b.Insert(14, []byte("x")) }, false, "hello, world!"},
		3: {func() bool { return b.Insert(0, []byte("1234")) }, false, "hello, world!"},
		4: {func() bool { return b.Delete(0, 7) }, true, "world!"},
		5: {func() bool { return b.Delete(5, 1) }, true, "world"},
		6: {func() bool { return b.Delete(3, 3) }, false, "world"},
		7: {func() bool { return b.Delete(1, int(^uint(0)>>1)) }, false, "world"},
	}
	for i, tt := range tests {
		if got := tt.op(); got != tt.ok {
			t.Errorf("%d: got %v, want %v", i, got, tt.ok)
		}
		if got := string(b.Bytes()); got != tt.want {
			t.Errorf("%d: got %q, want %q", i, got, tt.want)
		}
	}
}

func TestRead(t *testing.T) {
	b, err := Read(strings.NewReader("short"), 10, 4)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got := string(b.Bytes()); got != "short" {
		t.Errorf("got %q", got)
	}
	if b.Cap() != 10 {
		t.Errorf("capacity %d, want 10", b.Cap())
	}
}

func TestMap(t *testing.T) {
	name := filepath.Join(t.TempDir(), "mapped")
	if err := os.WriteFile(name, []byte("mapped content"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Map(f, 14)
	f.Close()
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	if b.Kind() != Mapped {
		t.Errorf("kind %v, want mapped", b.Kind())
	}
	if got := string(b.Bytes()); got != "mapped content" {
		t.Errorf("got %q", got)
	}
	if _, ok := b.Append([]byte("x")); ok {
		t.Errorf("append to a mapped block succeeded")
	}
	if b.Delete(0, 1) {
		t.Errorf("delete from a mapped block succeeded")
	}

	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	if b.Kind() != Detached {
		t.Errorf("kind %v, want detached", b.Kind())
	}
	if got := string(b.Slice(7, 7)); got != "content" {
		t.Errorf("after detach got %q", got)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestStorePut(t *testing.T) {
	s := NewStore(8, 0)
	for i, tc := range []struct {
		data     string
		blk, off int
	}{
		{"abc", 0, 0},
		{"defg", 0, 3},
		{"hi", 1, 0}, // does not fit: a new block is started
		{"0123456789", 2, 0},
		{"j", 3, 0},
	} {
		blk, off, err := s.Put([]byte(tc.data))
		if err != nil {
			t.Fatalf("%d: Put failed: %v", i, err)
		}
		if blk != tc.blk || off != tc.off {
			t.Errorf("%d: Put(%q) = (%d, %d), want (%d, %d)", i, tc.data, blk, off, tc.blk, tc.off)
		}
		if got := string(s.Block(blk).Slice(off, len(tc.data))); got != tc.data {
			t.Errorf("%d: stored %q, want %q", i, got, tc.data)
		}
	}
	if got := string(s.Block(0).Bytes()); got != "abcdefg" {
		t.Errorf("first block changed to %q", got)
	}
}

func TestStoreLimit(t *testing.T) {
	s := NewStore(8, 12)
	if _, _, err := s.Put([]byte("12345678")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, _, err := s.Put([]byte("abcd")); err != nil {
		t.Fatalf("Put of a request-sized block failed: %v", err)
	}
	if _, _, err := s.Put([]byte("x")); !errors.Is(err, ErrNoSpace) {
		t.Fatalf("got %v, want ErrNoSpace", err)
	}
	if s.Len() != 2 {
		t.Errorf("failed Put added a block: %d blocks", s.Len())
	}
}

func TestStoreTail(t *testing.T) {
	s := NewStore(8, 0)
	if i, b := s.Tail(); i != -1 || b != nil {
		t.Errorf("empty store tail = %d, %v", i, b)
	}
	s.Add(&Block{kind: Mapped, data: []byte("file")})
	if i, _ := s.Tail(); i != -1 {
		t.Errorf("mapped tail reported modifiable")
	}
	if got := s.Mapped(); len(got) != 1 || got[0] != 0 {
		t.Errorf("Mapped() = %v", got)
	}
	blk, _, _ := s.Put([]byte("x"))
	if i, b := s.Tail(); i != blk || b == nil {
		t.Errorf("tail = %d, want %d", i, blk)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
