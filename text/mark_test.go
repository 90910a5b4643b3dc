package text

import "testing"

func TestMarks(t *testing.T) {
	txt := New([]byte("hello world"))
	m := txt.MarkSet(6)
	e := txt.MarkSet(txt.Size())

	for i, tc := range []struct {
		edit func()
		want int
		end  int
	}{
		{func() { txt.insertString(t, 0, ">> ") }, 9, 14},
		{func() { txt.delete(t, 0, 3) }, 6, 11},
		{func() { txt.insertString(t, 11, "!") }, 6, 12},
		// the marked byte is removed
		{func() { txt.delete(t, 5, 3) }, NoPos, 9},
		{func() { txt.Undo() }, 6, 12},
	} {
		if i < 4 {
			txt.Snapshot()
		}
		tc.edit()
		if got := txt.MarkGet(m); got != tc.want {
			t.Errorf("#%d: mark at %d, want %d", i, got, tc.want)
		}
		if got := txt.MarkGet(e); got != tc.end {
			t.Errorf("#%d: end mark at %d, want %d", i, got, tc.end)
		}
	}

	if got := txt.MarkGet(NoMark); got != NoPos {
		t.Errorf("NoMark resolved to %d", got)
	}
	if m := txt.MarkSet(txt.Size() + 1); m != NoMark {
		t.Errorf("mark beyond the end is %v", m)
	}
}
