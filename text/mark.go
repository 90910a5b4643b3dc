package text

// A Mark identifies a byte of the text rather than an offset. It keeps
// pointing at that byte while text before it is inserted or deleted and
// becomes unresolvable once the byte is no longer part of the text.
type Mark struct {
	blk int // block index plus one, 0 for NoMark
	off int // offset within the block
}

// NoMark is the zero Mark. It never resolves.
var NoMark = Mark{}

// endMark refers to the end of the text, whatever its size.
var endMark = Mark{blk: -1}

// MarkSet returns a mark for the byte at pos. A mark set at the end of
// the text always resolves to the end of the text.
func (t *Text) MarkSet(pos int) Mark {
	if t.isClosed {
		return NoMark
	}
	if pos == t.size {
		return endMark
	}
	p, off := t.locateExternal(pos)
	if p == none || t.pieces[p].blk == none {
		return NoMark
	}
	pc := &t.pieces[p]
	return Mark{blk: pc.blk + 1, off: pc.off + off}
}

// MarkGet returns the current position of the byte identified by m or
// NoPos if it is not part of the text.
func (t *Text) MarkGet(m Mark) int {
	if t.isClosed {
		return NoPos
	}
	switch m {
	case NoMark:
		return NoPos
	case endMark:
		return t.size
	}
	cur := 0
	for p := t.pieces[begin].next; p != end; p = t.pieces[p].next {
		pc := &t.pieces[p]
		if pc.blk == m.blk-1 && pc.off <= m.off && m.off < pc.off+pc.len {
			return cur + m.off - pc.off
		}
		cur += pc.len
	}
	return NoPos
}
