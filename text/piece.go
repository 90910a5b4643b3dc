package text

// piece represents a piece of the text. All active pieces chained together
// form the whole content of the text. Pieces are addressed by their index
// in Text.pieces; blk is none for the sentinels and for an empty initial
// piece.
type piece struct {
	prev, next int
	blk        int // index of the block holding the data
	off        int // offset of the data within the block
	len        int
}

// span holds a certain range of pieces. Changes to the document are
// always performed by swapping out an existing span with a new one. An
// empty span has start and end set to none.
type span struct {
	start, end int
	len        int // the sum of the lengths of the pieces which form this span
}

var emptySpan = span{start: none, end: none}

// newPiece allocates a piece in the arena and returns its index.
func (t *Text) newPiece(prev, next, blk, off, n int) int {
	t.pieces = append(t.pieces, piece{
		prev: prev,
		next: next,
		blk:  blk,
		off:  off,
		len:  n,
	})
	return len(t.pieces) - 1
}

// data returns the bytes of piece p.
func (t *Text) data(p int) []byte {
	pc := &t.pieces[p]
	if pc.blk == none || pc.len == 0 {
		return nil
	}
	return t.store.Block(pc.blk).Slice(pc.off, pc.len)
}

// newSpan initializes a span and calculates its length.
func (t *Text) newSpan(start, end int) span {
	s := span{start: start, end: end}
	if start == none {
		return emptySpan
	}
	for p := start; p != none; p = t.pieces[p].next {
		s.len += t.pieces[p].len
		if p == end {
			break
		}
	}
	return s
}

// contains reports whether piece p is part of span s.
func (t *Text) spanContains(s span, p int) bool {
	if s.start == none {
		return false
	}
	for cur := s.start; cur != none; cur = t.pieces[cur].next {
		if cur == p {
			return true
		}
		if cur == s.end {
			break
		}
	}
	return false
}

// swapSpans swaps out an old span and replaces it with a new one.
//   - If old is an empty span do not remove anything, just insert the new one.
//   - If new is an empty span do not insert anything, just remove the old one.
//
// The size of the text is adjusted accordingly.
func (t *Text) swapSpans(old, new span) {
	ps := t.pieces
	switch {
	case old.len == 0 && new.len == 0:
		return
	case old.len == 0:
		// insert new span
		ps[ps[new.start].prev].next = new.start
		ps[ps[new.end].next].prev = new.end
	case new.len == 0:
		// delete old span
		ps[ps[old.start].prev].next = ps[old.end].next
		ps[ps[old.end].next].prev = ps[old.start].prev
	default:
		// replace old with new
		ps[ps[old.start].prev].next = new.start
		ps[ps[old.end].next].prev = new.end
	}
	t.size -= old.len
	t.size += new.len
}

// locate returns the piece holding the text at byte offset pos and the
// offset into that piece. If pos happens to be at a piece boundary (i.e.
// the first byte of a piece) then the previous piece to the left is
// returned with an offset of the piece's length. Modifications need both
// the returned piece and the one following it.
//
// If pos is zero, the begin sentinel is returned. If pos is out of range,
// locate returns none.
func (t *Text) locate(pos int) (int, int) {
	cur := 0
	for p := begin; t.pieces[p].next != none; p = t.pieces[p].next {
		n := t.pieces[p].len
		if cur <= pos && pos <= cur+n {
			return p, pos - cur
		}
		cur += n
	}
	return none, 0
}

// locateExternal is like locate but never returns a sentinel. If pos is
// the end of the text, the last piece is returned with an offset of its
// length.
func (t *Text) locateExternal(pos int) (int, int) {
	if pos < 0 {
		return none, 0
	}
	cur := 0
	p := t.pieces[begin].next
	for ; t.pieces[p].next != none; p = t.pieces[p].next {
		n := t.pieces[p].len
		if cur <= pos && pos < cur+n {
			return p, pos - cur
		}
		cur += n
	}
	if cur == pos {
		last := t.pieces[p].prev
		if last == begin {
			return none, 0
		}
		return last, t.pieces[last].len
	}
	return none, 0
}
