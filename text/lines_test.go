package text

import (
	"bytes"
	"testing"
)

func TestLinePos(t *testing.T) {
	txt := New([]byte("one\ntwo\nthree\n"))
	for i, tc := range []struct {
		lineno, want int
	}{
		{1, 0},
		{0, 0},
		{3, 8},
		{4, 14},
		{5, NoPos},
		{2, 4},
		{3, 8},
		{-7, 0},
		{100, NoPos},
		{4, 14},
	} {
		if got := txt.LinePos(tc.lineno); got != tc.want {
			t.Errorf("#%d: LinePos(%d) = %d, want %d", i, tc.lineno, got, tc.want)
		}
	}
}

func TestLineOf(t *testing.T) {
	txt := New([]byte("one\ntwo\nthree\n"))
	for i, tc := range []struct {
		pos, want int
	}{
		{0, 1},
		{3, 1},
		{4, 2},
		{13, 3},
		{14, 4},
		{100, 4},
		{9, 3},
		{2, 1},
		{-1, 1},
		{8, 3},
	} {
		if got := txt.LineOf(tc.pos); got != tc.want {
			t.Errorf("#%d: LineOf(%d) = %d, want %d", i, tc.pos, got, tc.want)
		}
	}
}

func TestLineBegin(t *testing.T) {
	txt := New([]byte("one\ntwo\nthree\n"))
	for _, tc := range []struct {
		pos, want int
	}{
		{0, 0}, {3, 0}, {4, 4}, {6, 4}, {8, 8}, {14, 14},
	} {
		if got := txt.LineBegin(tc.pos); got != tc.want {
			t.Errorf("LineBegin(%d) = %d, want %d", tc.pos, got, tc.want)
		}
	}
}

// checkLines compares LineOf at every position with a count from scratch.
func (txt *Text) checkLines(name string, t *testing.T) {
	t.Helper()
	content := []byte(txt.String())
	for _, pos := range []int{txt.Size(), 0, txt.Size() / 2, txt.Size() - 1, 1} {
		if pos < 0 {
			continue
		}
		want := 1 + bytes.Count(content[:pos], []byte{'\n'})
		if got := txt.LineOf(pos); got != want {
			t.Errorf("%s: LineOf(%d) = %d, want %d", name, pos, got, want)
		}
	}
}

func TestLineCacheInvalidation(t *testing.T) {
	txt := New([]byte("one\ntwo\nthree\n"))
	if got := txt.LinePos(1); got != 0 {
		t.Errorf("LinePos(1) = %d", got)
	}
	if got := txt.LineOf(14); got != 4 {
		t.Fatalf("LineOf(14) = %d", got)
	}

	txt.insertString(t, 0, "zero\n")
	if got := txt.LineOf(19); got != 5 {
		t.Errorf("after insert LineOf(19) = %d, want 5", got)
	}
	txt.checkLines("#0", t)

	txt.LinePos(4)
	txt.delete(t, 0, 5)
	txt.checkLines("#1", t)
	if got := txt.LinePos(4); got != 14 {
		t.Errorf("after delete LinePos(4) = %d, want 14", got)
	}

	txt.Snapshot()
	txt.insertString(t, 14, "four\n")
	txt.checkLines("#2", t)
	txt.Undo()
	txt.checkLines("#3", t)
	if got := txt.LinePos(5); got != NoPos {
		t.Errorf("after undo LinePos(5) = %d, want NoPos", got)
	}
}
