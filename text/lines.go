package text

import "bytes"

// lineCache remembers the start of one line so that nearby line lookups
// only scan the text in between.
type lineCache struct {
	pos    int // absolute position of the start of the line
	lineno int // line number, the first line is 1
}

func (lc *lineCache) invalidate() {
	lc.pos = 0
	lc.lineno = 1
}

// linesCount returns the number of newlines in [pos, pos+n).
func (t *Text) linesCount(pos, n int) int {
	lines := 0
	it := t.IterAt(pos)
	for ; it.Valid() && n > 0; it.Next() {
		b := it.Bytes()
		if len(b) > n {
			b = b[:n]
		}
		lines += bytes.Count(b, []byte{'\n'})
		n -= len(b)
	}
	return lines
}

// linesSkipForward moves past up to lines newlines starting at pos and
// returns the position after the last one found together with their
// number.
func (t *Text) linesSkipForward(pos, lines int) (int, int) {
	skipped := 0
	it := t.IterAt(pos)
	for ; it.Valid() && skipped < lines; it.Next() {
		b := it.Bytes()
		consumed := 0
		for skipped < lines {
			j := bytes.IndexByte(b[consumed:], '\n')
			if j < 0 {
				break
			}
			consumed += j + 1
			skipped++
		}
		if skipped == lines {
			pos += consumed
		} else {
			pos += len(b)
		}
	}
	return pos, skipped
}

// LinePos returns the position of the first byte of line lineno, lines
// being numbered from 1. Line numbers below 1 map to position 0. NoPos is
// returned if the text has fewer lines.
func (t *Text) LinePos(lineno int) int {
	if t.isClosed {
		return NoPos
	}
	if lineno <= 1 {
		return 0
	}
	lc := &t.lines
	switch {
	case lineno == lc.lineno:
		return lc.pos
	case lineno > lc.lineno:
		pos, skipped := t.linesSkipForward(lc.pos, lineno-lc.lineno)
		if skipped != lineno-lc.lineno {
			return NoPos
		}
		lc.pos, lc.lineno = pos, lineno
	default:
		pos, skipped := t.linesSkipForward(0, lineno-1)
		if skipped != lineno-1 {
			return NoPos
		}
		lc.pos, lc.lineno = pos, lineno
	}
	return lc.pos
}

// LineOf returns the number of the line holding the byte at pos. pos is
// clamped to the size of the text.
func (t *Text) LineOf(pos int) int {
	if t.isClosed {
		return 0
	}
	if pos < 0 {
		pos = 0
	}
	if pos > t.size {
		pos = t.size
	}
	lc := &t.lines
	var lineno int
	if pos < lc.pos {
		diff := lc.pos - pos
		if diff < pos {
			lineno = lc.lineno - t.linesCount(pos, diff)
		} else {
			lineno = 1 + t.linesCount(0, pos)
		}
	} else {
		lineno = lc.lineno + t.linesCount(lc.pos, pos-lc.pos)
	}
	lc.pos = t.LineBegin(pos)
	lc.lineno = lineno
	return lineno
}

// LineBegin returns the start of the line holding pos.
func (t *Text) LineBegin(pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos > t.size {
		pos = t.size
	}
	it := t.IterAt(pos)
	if !it.Valid() {
		return 0
	}
	if it.FindPrev('\n') {
		return it.Pos() + 1
	}
	return 0
}
