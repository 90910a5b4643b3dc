package text

import (
	"os"
	"time"
)

// change keeps all needed information to redo/undo an insertion/deletion.
type change struct {
	old  span // all pieces which are being modified/swapped out by the change
	new  span // all pieces which are introduced/swapped in by the change
	pos  int  // absolute position at which the change occurred
	next int  // next (older) change which is part of the same revision
	prev int  // previous (more recent) change which is part of the same revision
}

// revision is a list of changes which are used to undo/redo all
// modifications since the last snapshot operation. Revisions are kept
// both in a tree and in chronological order.
type revision struct {
	change  int // the most recent change
	next    int // the selected child revision in the undo tree
	prev    int // the parent revision in the undo tree
	earlier int // the previous revision, chronologically
	later   int // the next revision, chronologically
	time    time.Time
	seq     int // a unique, strictly increasing identifier
}

// newRevision allocates a revision and places it in the undo tree as the
// child of the current history node. All further changes are associated
// with it until the next snapshot.
func (t *Text) newRevision() int {
	r := len(t.revs)
	t.revs = append(t.revs, revision{
		change:  none,
		next:    none,
		prev:    none,
		earlier: t.last,
		later:   none,
		time:    t.now(),
	})
	t.current = r

	if t.last != none {
		t.revs[r].seq = t.revs[t.last].seq + 1
		t.revs[t.last].later = r
	}

	if t.history == none {
		t.history = r
		return r
	}
	t.revs[r].prev = t.history
	t.revs[t.history].next = r
	t.history = r
	return r
}

// newChange allocates a change and associates it with the current
// revision or a newly allocated one if none exists.
func (t *Text) newChange(pos int) int {
	r := t.current
	if r == none {
		r = t.newRevision()
	}
	c := len(t.changes)
	t.changes = append(t.changes, change{
		old:  emptySpan,
		new:  emptySpan,
		pos:  pos,
		next: t.revs[r].change,
		prev: none,
	})
	if old := t.revs[r].change; old != none {
		t.changes[old].prev = c
	}
	t.revs[r].change = c
	return c
}

// Snapshot preserves the current content such that it can be restored by
// means of undo/redo operations. Changes made afterwards belong to a new
// revision.
func (t *Text) Snapshot() {
	if t.current != none {
		t.last = t.current
	}
	t.current = none
	t.cache = none
}

// revert undoes the changes of revision r, most recent first, and returns
// the position of the oldest change.
func (t *Text) revert(r int) int {
	pos := NoPos
	for c := t.revs[r].change; c != none; c = t.changes[c].next {
		ch := &t.changes[c]
		t.swapSpans(ch.new, ch.old)
		pos = ch.pos
	}
	return pos
}

// apply redoes the changes of revision r, oldest first. The returned
// position is past the text inserted by the most recent change.
func (t *Text) apply(r int) int {
	pos := NoPos
	c := t.revs[r].change
	if c == none {
		return pos
	}
	for t.changes[c].next != none {
		c = t.changes[c].next
	}
	for ; c != none; c = t.changes[c].prev {
		ch := &t.changes[c]
		t.swapSpans(ch.old, ch.new)
		pos = ch.pos
		if ch.new.len > ch.old.len {
			pos += ch.new.len - ch.old.len
		}
	}
	return pos
}

// Undo reverts the current revision and returns the position of the
// oldest change in it. If there is nothing to undo, Undo returns NoPos.
func (t *Text) Undo() int {
	if t.isClosed {
		return NoPos
	}
	// taking a snapshot makes sure that t.current is reset
	t.Snapshot()
	parent := t.revs[t.history].prev
	if parent == none {
		return NoPos
	}
	pos := t.revert(t.history)
	t.history = parent
	t.lines.invalidate()
	t.validateInvariant()
	return pos
}

// Redo reapplies the selected child of the current revision. If there is
// nothing to redo, Redo returns NoPos.
func (t *Text) Redo() int {
	if t.isClosed {
		return NoPos
	}
	t.Snapshot()
	child := t.revs[t.history].next
	if child == none {
		return NoPos
	}
	pos := t.apply(child)
	t.history = child
	t.lines.invalidate()
	t.validateInvariant()
	return pos
}

// step is one move through the undo tree: undo rev (moving to its
// parent) or redo rev (moving from its parent to rev).
type step struct {
	rev  int
	redo bool
}

// historyPath returns the steps leading from revision from to revision
// to: undo steps up to their lowest common ancestor followed by redo
// steps down to to. It does not modify the tree.
func historyPath(revs []revision, from, to int) []step {
	depth := make(map[int]int)
	for r, d := from, 0; r != none; r, d = revs[r].prev, d+1 {
		depth[r] = d
	}
	var down []int
	lca := to
	for ; lca != none; lca = revs[lca].prev {
		if _, ok := depth[lca]; ok {
			break
		}
		down = append(down, lca)
	}
	if lca == none {
		return nil
	}

	steps := make([]step, 0, depth[lca]+len(down))
	for r := from; r != lca; r = revs[r].prev {
		steps = append(steps, step{rev: r})
	}
	for i := len(down) - 1; i >= 0; i-- {
		steps = append(steps, step{rev: down[i], redo: true})
	}
	return steps
}

// traverse moves the history to revision r by undoing and redoing
// revisions along the path between them. Redo steps select the branch
// they descend into.
func (t *Text) traverse(r int) int {
	if r == none {
		return NoPos
	}
	t.Snapshot()
	pos := NoPos
	for _, s := range historyPath(t.revs, t.history, r) {
		if s.redo {
			t.revs[t.revs[s.rev].prev].next = s.rev
			pos = t.Redo()
		} else {
			pos = t.Undo()
		}
	}
	return pos
}

// Earlier moves to the chronologically previous revision, regardless of
// the branch it is on.
func (t *Text) Earlier() int {
	if t.isClosed {
		return NoPos
	}
	return t.traverse(t.revs[t.history].earlier)
}

// Later moves to the chronologically next revision.
func (t *Text) Later() int {
	if t.isClosed {
		return NoPos
	}
	return t.traverse(t.revs[t.history].later)
}

// Restore moves to the revision whose creation time is closest to when.
func (t *Text) Restore(when time.Time) int {
	if t.isClosed {
		return NoPos
	}
	r := t.history
	for when.Before(t.revs[r].time) && t.revs[r].earlier != none {
		r = t.revs[r].earlier
	}
	for when.After(t.revs[r].time) && t.revs[r].later != none {
		r = t.revs[r].later
	}
	diff := absDuration(t.revs[r].time.Sub(when))
	if e := t.revs[r].earlier; e != none && e != t.history && absDuration(t.revs[e].time.Sub(when)) < diff {
		r = e
	}
	if l := t.revs[r].later; l != none && l != t.history && absDuration(t.revs[l].time.Sub(when)) < diff {
		r = l
	}
	return t.traverse(r)
}

// State returns the time at which the current revision was created.
func (t *Text) State() time.Time {
	if t.isClosed {
		return time.Time{}
	}
	return t.revs[t.history].time
}

// Seq returns the sequence number of the current revision. Sequence
// numbers strictly increase in the order revisions are created.
func (t *Text) Seq() int {
	if t.isClosed {
		return NoPos
	}
	return t.revs[t.history].seq
}

// Modified reports whether the text differs from its state at the last
// save (or load).
func (t *Text) Modified() bool {
	if t.isClosed {
		return false
	}
	return t.saved != t.history
}

// MarkSaved records the current revision as saved and forces a revision
// boundary so that later changes are not merged into the saved state.
// info, if not nil, replaces the recorded file information.
func (t *Text) MarkSaved(info os.FileInfo) {
	if info != nil {
		t.info = info
	}
	t.saved = t.history
	t.Snapshot()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
