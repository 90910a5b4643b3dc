package text

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// An Iterator is a cursor over the live piece chain. It holds no
// reference into the history: any modification of the text invalidates
// it.
//
// At the end of the document the iterator rests on the last piece with i
// equal to the piece length. Stepping backwards from position 0 moves it
// onto the begin sentinel where it is no longer valid; stepping forward
// again brings it back to position 0.
type Iterator struct {
	t    *Text
	p    int    // current piece or none
	data []byte // bytes of the current piece
	i    int    // offset of the cursor within data
	pos  int    // absolute position of the cursor
}

// IterAt returns an iterator positioned at byte offset pos. The iterator
// is not valid if pos is beyond the end of the text.
func (t *Text) IterAt(pos int) *Iterator {
	it := &Iterator{t: t, p: none}
	if t.isClosed {
		return it
	}
	p, off := t.locateExternal(pos)
	it.init(pos, p, off)
	return it
}

func (it *Iterator) init(pos, p, off int) bool {
	it.pos = pos
	it.p = p
	it.data = nil
	it.i = 0
	if p != none {
		it.data = it.t.data(p)
		it.i = off
	}
	return it.Valid()
}

// Valid reports whether the iterator points into a piece holding text.
func (it *Iterator) Valid() bool {
	return it.p != none && it.p != begin && it.p != end
}

// Pos returns the absolute position of the cursor.
func (it *Iterator) Pos() int {
	return it.pos
}

// Bytes returns the bytes of the current piece from the cursor on.
func (it *Iterator) Bytes() []byte {
	if !it.Valid() {
		return nil
	}
	return it.data[it.i:]
}

func (it *Iterator) hasNext() bool {
	return it.p != none && it.t.pieces[it.p].next != none
}

func (it *Iterator) hasPrev() bool {
	return it.p != none && it.t.pieces[it.p].prev != none
}

// Next moves to the start of the following piece.
func (it *Iterator) Next() bool {
	pos := it.pos + len(it.data) - it.i
	if it.p == none {
		return it.init(pos, none, 0)
	}
	return it.init(pos, it.t.pieces[it.p].next, 0)
}

// Prev moves to the end of the preceding piece.
func (it *Iterator) Prev() bool {
	pos := it.pos - it.i
	if it.p == none || it.t.pieces[it.p].prev == none {
		return it.init(pos, none, 0)
	}
	prev := it.t.pieces[it.p].prev
	return it.init(pos, prev, it.t.pieces[prev].len)
}

// Byte returns the byte at the cursor. At the end of the document it
// returns 0 and true.
func (it *Iterator) Byte() (byte, bool) {
	if !it.Valid() {
		return 0, false
	}
	if it.i < len(it.data) {
		return it.data[it.i], true
	}
	if it.pos == it.t.size {
		return 0, true
	}
	return 0, false
}

// cur is the byte at the cursor, 0 at the end of a piece.
func (it *Iterator) cur() byte {
	if it.i < len(it.data) {
		return it.data[it.i]
	}
	return 0
}

// ByteNext advances by one byte and returns the byte reached. Reaching
// the end of the document yields 0; trying to advance beyond it fails.
func (it *Iterator) ByteNext() (byte, bool) {
	if !it.hasNext() {
		return 0, false
	}
	eof := true
	if it.i < len(it.data) {
		it.i++
		it.pos++
		eof = false
	} else if !it.hasPrev() {
		eof = false
	}

	for it.i == len(it.data) {
		if !it.Next() {
			if eof {
				return 0, false
			}
			return 0, it.Prev()
		}
	}
	return it.data[it.i], true
}

// BytePrev moves back by one byte and returns the byte reached.
func (it *Iterator) BytePrev() (byte, bool) {
	if !it.hasPrev() {
		return 0, false
	}
	eof := !it.hasNext()
	for it.i == 0 {
		if !it.Prev() {
			if !eof {
				return 0, false
			}
			return 0, it.Next()
		}
	}
	it.i--
	it.pos--
	return it.data[it.i], true
}

// FindNext moves forward to the next occurrence of b at or after the
// cursor. If there is none it stops at the end of the document.
func (it *Iterator) FindNext(b byte) bool {
	for it.Valid() {
		if j := bytes.IndexByte(it.data[it.i:], b); j >= 0 {
			it.pos += j
			it.i += j
			return true
		}
		it.Next()
	}
	it.Prev()
	return false
}

// FindPrev moves backward to the previous occurrence of b before the
// cursor. If there is none it stops at the start of the document.
func (it *Iterator) FindPrev(b byte) bool {
	for it.Valid() {
		if j := bytes.LastIndexByte(it.data[:it.i], b); j >= 0 {
			it.pos -= it.i - j
			it.i = j
			return true
		}
		it.Prev()
	}
	it.Next()
	return false
}

// isCodepointStart reports whether b is not a UTF-8 continuation byte.
func isCodepointStart(b byte) bool {
	return b&0xC0 != 0x80
}

// CodepointNext advances to the start of the next codepoint.
func (it *Iterator) CodepointNext() (byte, bool) {
	for {
		if _, ok := it.ByteNext(); !ok {
			return 0, false
		}
		if b := it.cur(); isCodepointStart(b) {
			return b, true
		}
	}
}

// CodepointPrev moves back to the start of the previous codepoint.
func (it *Iterator) CodepointPrev() (byte, bool) {
	for {
		if _, ok := it.BytePrev(); !ok {
			return 0, false
		}
		if b := it.cur(); isCodepointStart(b) {
			return b, true
		}
	}
}

// zeroWidth reports whether r occupies no cell of its own, e.g. a
// combining mark. Control characters have no width at all and are not
// considered zero width.
func zeroWidth(r rune) bool {
	return !unicode.IsControl(r) && uniseg.StringWidth(string(r)) == 0
}

// charStep reports whether the codepoint at the cursor ends a character
// step. more is set when it is zero width and stepping has to continue.
func (it *Iterator) charStep() (done, more bool) {
	var buf [utf8.UTFMax]byte
	n := it.t.read(buf[:], it.pos)
	if !utf8.FullRune(buf[:n]) {
		return false, false
	}
	r, size := utf8.DecodeRune(buf[:n])
	switch {
	case r == utf8.RuneError && size == 1:
		return true, false
	case r == 0:
		return true, false
	case !zeroWidth(r):
		return true, false
	}
	return false, true
}

// CharNext advances to the next user-perceived character, skipping
// zero-width codepoints that combine with the preceding one.
func (it *Iterator) CharNext() (byte, bool) {
	b, ok := it.CodepointNext()
	for ok {
		done, more := it.charStep()
		if done {
			return b, true
		}
		if !more {
			return b, false
		}
		b, ok = it.CodepointNext()
	}
	return b, false
}

// CharPrev moves back to the previous user-perceived character.
func (it *Iterator) CharPrev() (byte, bool) {
	b, ok := it.CodepointPrev()
	for ok {
		done, more := it.charStep()
		if done {
			return b, true
		}
		if !more {
			return b, false
		}
		b, ok = it.CodepointPrev()
	}
	return b, false
}
