package text

import (
	"testing"
	"time"
)

func (txt *Text) piecesCnt() int {
	n := 0
	for p := txt.pieces[begin].next; p != end; p = txt.pieces[p].next {
		n++
	}
	return n
}

func (txt *Text) checkPiecesCnt(t *testing.T, expected int) {
	t.Helper()
	if got := txt.piecesCnt(); got != expected {
		t.Errorf("got %d pieces, want %d", got, expected)
	}
}

func (txt *Text) checkContent(name string, t *testing.T, expected string) {
	t.Helper()
	if c := txt.String(); c != expected {
		t.Errorf("%s: got '%s', want '%s'", name, c, expected)
	}
	if txt.Size() != len(expected) {
		t.Errorf("%s: got size %d, want %d", name, txt.Size(), len(expected))
	}
}

func (txt *Text) insertString(t *testing.T, pos int, s string) {
	t.Helper()
	if err := txt.Insert(pos, []byte(s)); err != nil {
		t.Fatalf("Insert(%d, %q) failed: %v", pos, s, err)
	}
}

func (txt *Text) delete(t *testing.T, pos, n int) {
	t.Helper()
	if err := txt.Delete(pos, n); err != nil {
		t.Fatalf("Delete(%d, %d) failed: %v", pos, n, err)
	}
}

func (txt *Text) checkModified(t *testing.T, id int, expected bool) {
	t.Helper()
	if txt.Modified() != expected {
		if expected {
			t.Errorf("#%d should be modified", id)
		} else {
			t.Errorf("#%d should not be modified", id)
		}
	}
}

// fakeClock hands out times that only move when told to.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }
