package text

// The cache is the piece most recently created by Insert. As long as it is
// part of the change just recorded, and its bytes are the tail of the last
// heap block, further insertions and deletions within it are applied to
// the block in place instead of allocating new pieces and changes.

// cachePiece remembers p if it may be modified in place later on.
func (t *Text) cachePiece(p int) {
	blk, b := t.store.Tail()
	if b == nil {
		return
	}
	pc := &t.pieces[p]
	if pc.blk != blk || pc.off+pc.len != b.Len() {
		return
	}
	t.cache = p
}

// cacheContains reports whether p is the cached piece and is still safe
// to modify: it belongs to the most recent change of the open revision and
// ends at the tail of the last block.
func (t *Text) cacheContains(p int) bool {
	if t.cache == none || t.cache != p || t.current == none {
		return false
	}
	c := t.revs[t.current].change
	if c == none || !t.spanContains(t.changes[c].new, p) {
		return false
	}
	blk, b := t.store.Tail()
	pc := &t.pieces[p]
	return b != nil && pc.blk == blk && pc.off+pc.len == b.Len()
}

// cacheInsert tries to insert data at offset off of piece p in place.
func (t *Text) cacheInsert(p, off int, data []byte) bool {
	if !t.cacheContains(p) {
		return false
	}
	pc := &t.pieces[p]
	if off > pc.len {
		return false
	}
	if !t.store.Block(pc.blk).Insert(pc.off+off, data) {
		return false
	}
	pc.len += len(data)
	t.changes[t.revs[t.current].change].new.len += len(data)
	t.size += len(data)
	return true
}

// cacheDelete tries to remove n bytes at offset off of piece p in place.
func (t *Text) cacheDelete(p, off, n int) bool {
	if !t.cacheContains(p) {
		return false
	}
	pc := &t.pieces[p]
	if off+n > pc.len {
		return false
	}
	if !t.store.Block(pc.blk).Delete(pc.off+off, n) {
		return false
	}
	pc.len -= n
	t.changes[t.revs[t.current].change].new.len -= n
	t.size -= n
	return true
}
