package text

import (
	"fmt"
	"math"
)

// Insert inserts data at byte offset pos.
//
// When inserting new data there are 2 cases to consider:
//
// 1. the insertion point falls into the middle of an existing piece which
// is replaced by three new pieces:
//
//	/-+ --> +---------------+ --> +-\
//	| |     | existing text |     | |
//	\-+ <-- +---------------+ <-- +-/
//	                   ^
//	                   insertion point for "demo "
//
//	/-+ --> +---------+ --> +-----+ --> +-----+ --> +-\
//	| |     | existing|     |demo |     |text |     | |
//	\-+ <-- +---------+ <-- +-----+ <-- +-----+ <-- +-/
//
// 2. it falls at a piece boundary:
//
//	/-+ --> +---------------+ --> +-\
//	| |     | existing text |     | |
//	\-+ <-- +---------------+ <-- +-/
//	      ^
//	      insertion point for "short"
//
//	/-+ --> +-----+ --> +---------------+ --> +-\
//	| |     |short|     | existing text |     | |
//	\-+ <-- +-----+ <-- +---------------+ <-- +-/
//
// An error is returned and the text is left unmodified when pos is
// beyond the end of the text or the data cannot be stored.
func (t *Text) Insert(pos int, data []byte) error {
	if t.isClosed {
		return ErrClosed
	}
	if len(data) == 0 {
		return nil
	}
	if pos < 0 || pos > t.size {
		return ErrRange
	}
	if pos < t.lines.pos {
		t.lines.invalidate()
	}

	p, off := t.locate(pos)
	if p == none {
		return ErrRange
	}
	if t.cacheInsert(p, off, data) {
		return nil
	}

	blk, boff, err := t.store.Put(data)
	if err != nil {
		return fmt.Errorf("insert at %d: %w", pos, err)
	}

	var pnew int
	var old, new span
	if pc := t.pieces[p]; off == pc.len {
		// Insert between two existing pieces, hence there is nothing to
		// remove, just add a new piece holding the extra text.
		pnew = t.newPiece(p, pc.next, blk, boff, len(data))
		new = t.newSpan(pnew, pnew)
		old = emptySpan
	} else {
		// Insert into the middle of an existing piece, therefore split the
		// old piece. That is we have 3 new pieces one containing the
		// content before the insertion point then one holding the newly
		// inserted text and one holding the content after the insertion
		// point.
		before := t.newPiece(pc.prev, none, pc.blk, pc.off, off)
		pnew = t.newPiece(before, none, blk, boff, len(data))
		after := t.newPiece(pnew, pc.next, pc.blk, pc.off+off, pc.len-off)
		t.pieces[before].next = pnew
		t.pieces[pnew].next = after
		new = t.newSpan(before, after)
		old = t.newSpan(p, p)
	}

	c := t.newChange(pos)
	t.changes[c].new = new
	t.changes[c].old = old
	t.cachePiece(pnew)
	t.swapSpans(old, new)
	t.validateInvariant()
	return nil
}

// Printf inserts formatted text at pos.
func (t *Text) Printf(pos int, format string, args ...interface{}) error {
	return t.Insert(pos, []byte(fmt.Sprintf(format, args...)))
}

// Appendf inserts formatted text at the end of the text.
func (t *Text) Appendf(format string, args ...interface{}) error {
	return t.Printf(t.size, format, args...)
}

// Delete removes length bytes starting at pos.
//
// The delete operation can either start/stop midway through a piece or at
// a boundary. In the former case a new piece is created to represent the
// remaining text before/after the modification point.
//
//	/-+ --> +---------+ --> +-----+ --> +-----+ --> +-\
//	| |     | existing|     |demo |     |text |     | |
//	\-+ <-- +---------+ <-- +-----+ <-- +-----+ <-- +-/
//	             ^                         ^
//	             |------ delete range -----|
//
//	/-+ --> +----+ --> +--+ --> +-\
//	| |     | exi|     |t |     | |
//	\-+ <-- +----+ <-- +--+ <-- +-/
//
// An error is returned and the text is left unmodified when the range
// does not lie within the text.
func (t *Text) Delete(pos, length int) error {
	if t.isClosed {
		return ErrClosed
	}
	if length == 0 {
		return nil
	}
	if pos < 0 || length < 0 {
		return ErrRange
	}
	if pos > math.MaxInt-length {
		return ErrOverflow
	}
	if pos+length > t.size {
		return ErrRange
	}
	if pos < t.lines.pos {
		t.lines.invalidate()
	}

	p, off := t.locate(pos)
	if p == none {
		return ErrRange
	}
	if t.cacheDelete(p, off, length) {
		return nil
	}

	midwayStart, midwayEnd := false, false
	var before, after int // unmodified pieces before/after deletion point
	var start, end int    // span which is removed
	var cur int           // how much has already been deleted

	if off == t.pieces[p].len {
		// deletion starts at a piece boundary
		before = p
		start = t.pieces[p].next
	} else {
		// deletion starts midway through a piece
		midwayStart = true
		cur = t.pieces[p].len - off
		start = p
		before = t.newPiece(none, none, none, 0, 0)
	}

	// skip all pieces which fall into deletion range
	for cur < length {
		p = t.pieces[p].next
		cur += t.pieces[p].len
	}

	if cur == length {
		// deletion stops at a piece boundary
		end = p
		after = t.pieces[p].next
	} else {
		// cur > length: deletion stops midway through a piece
		midwayEnd = true
		end = p
		pc := t.pieces[p]
		rest := cur - length
		after = t.newPiece(before, pc.next, pc.blk, pc.off+pc.len-rest, rest)
	}

	if midwayStart {
		// we finally know which piece follows our newly allocated before piece
		sp := t.pieces[start]
		t.pieces[before] = piece{prev: sp.prev, next: after, blk: sp.blk, off: sp.off, len: off}
	}

	newStart, newEnd := none, none
	if midwayStart {
		newStart = before
		if !midwayEnd {
			newEnd = before
		}
	}
	if midwayEnd {
		if !midwayStart {
			newStart = after
		}
		newEnd = after
	}

	new := t.newSpan(newStart, newEnd)
	old := t.newSpan(start, end)
	c := t.newChange(pos)
	t.changes[c].new = new
	t.changes[c].old = old
	t.swapSpans(old, new)
	t.validateInvariant()
	return nil
}

// DeleteRange removes the bytes in [start, end).
func (t *Text) DeleteRange(start, end int) error {
	if start > end {
		return ErrRange
	}
	return t.Delete(start, end-start)
}
