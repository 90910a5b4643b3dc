// Based on the text management in the vis editor by Marc André Tanner,
// licensed under ISC license which can be found bellow. For further information
// please visit http://repo.or.cz/w/vis.git or https://github.com/martanne/vis.
//
// Copyright (c) 2014 Marc André Tanner <mat at brain-dump.org>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted, provided that the above
// copyright notice and this permission notice appear in all copies.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
// WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
// ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
// WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
// ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
// OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.

// Package text holds the content of an open document as a chain of
// pieces and keeps a branching undo/redo history of every modification.
//
// # Pieces
//
// A piece is a read-only view (block, offset, length) into the block
// store. The document is the concatenation of all pieces reachable from
// the begin sentinel:
//
//	/-+ --> +---------------+ --> +-\
//	| |     | existing text |     | |
//	\-+ <-- +---------------+ <-- +-/
//
// Pieces are never modified once they are part of the history (with the
// exception of the cached piece, see below) and never freed before the
// document is closed, so that undo and redo can relink them.
//
// # Changes and revisions
//
// Every modification swaps an old span of pieces for a new one and is
// recorded as a change. The changes performed between two snapshots form
// a revision. Revisions are kept in a tree (an undo followed by a new
// edit starts a branch) and in a flat chronological list.
//
// # Caching
//
// Typing one character at a time would allocate a piece and a change
// per keystroke. Instead the piece created by the most recent change is
// modified in place as long as its bytes are the tail of the last heap
// block.
//
// A Text is not safe for concurrent use. Readers and writers must be
// serialized by the caller.
package text

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/rjkroege/textcore/block"
)

// expensiveCheckedExecution turns on validation of the piece chain after
// every modification.
const expensiveCheckedExecution = false

// NoPos is returned where a position is expected but none exists: undo or
// redo with nothing to do, unresolvable marks, lines beyond the end.
const NoPos = -1

var (
	ErrRange    = errors.New("position is outside of the text")
	ErrOverflow = errors.New("position plus length overflows")
	ErrClosed   = errors.New("text is closed")
)

// none marks the absence of a piece, change or revision.
const none = -1

// Indices of the sentinel pieces in the piece arena.
const (
	begin = 0
	end   = 1
)

// Text is a document.
type Text struct {
	store *block.Store

	pieces []piece // every piece ever allocated, in allocation order
	cache  int     // most recently modified piece, see cache.go

	revs     []revision
	changes  []change
	history  int // current node of the undo tree
	current  int // revision open for new changes, or none
	last     int // chronologically last revision
	saved    int // history at the time of the last save
	size     int
	info     os.FileInfo
	lines    lineCache
	now      func() time.Time
	unit     int
	limit    int
	isClosed bool
}

// An Option configures a Text.
type Option func(*Text)

// WithClock sets the clock used to timestamp revisions.
func WithClock(now func() time.Time) Option {
	return func(t *Text) {
		if now != nil {
			t.now = now
		}
	}
}

// WithBlockSize sets the minimal capacity of newly allocated blocks.
func WithBlockSize(n int) Option {
	return func(t *Text) {
		if n > 0 {
			t.unit = n
		}
	}
}

// WithLimit caps the number of bytes the text may allocate to store
// inserted content. Insertions beyond it fail with block.ErrNoSpace.
func WithLimit(n int) Option {
	return func(t *Text) {
		if n > 0 {
			t.limit = n
		}
	}
}

// New creates a text holding a copy of content. To start with an empty
// text pass nil.
func New(content []byte, opts ...Option) *Text {
	t := newText(opts)
	if len(content) == 0 {
		return t.init(none, 0)
	}
	b := block.New(len(content), len(content))
	b.Append(content)
	return t.init(t.store.Add(b), b.Len())
}

// FromBlock creates a text whose initial content is the block b, as
// produced by loading a file. info describes the file and may be nil.
func FromBlock(b *block.Block, info os.FileInfo, opts ...Option) *Text {
	t := newText(opts)
	t.info = info
	if b == nil || b.Len() == 0 {
		if b != nil {
			b.Close()
		}
		return t.init(none, 0)
	}
	return t.init(t.store.Add(b), b.Len())
}

func newText(opts []Option) *Text {
	t := &Text{
		cache:   none,
		history: none,
		current: none,
		last:    none,
		saved:   none,
		now:     time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	t.store = block.NewStore(t.unit, t.limit)
	t.pieces = make([]piece, 2, 16)
	t.revs = make([]revision, 0, 16)
	return t
}

// init links the single initial piece (possibly empty) between the
// sentinels and writes the root revision.
func (t *Text) init(blk, n int) *Text {
	p := t.newPiece(begin, end, blk, 0, n)
	t.pieces[begin] = piece{prev: none, next: p, blk: none}
	t.pieces[end] = piece{prev: p, next: none, blk: none}
	t.size = n
	t.lines.invalidate()

	t.newChange(NoPos)
	t.Snapshot()
	t.saved = t.history
	return t
}

// Size returns the size of the text in bytes.
func (t *Text) Size() int {
	return t.size
}

// Stat returns the file information recorded at load or the last save.
func (t *Text) Stat() os.FileInfo {
	return t.info
}

// Store returns the blocks backing the text.
func (t *Text) Store() *block.Store {
	return t.store
}

// Close releases all pieces, the history and the blocks. The text must
// not be used afterwards.
func (t *Text) Close() error {
	if t.isClosed {
		return nil
	}
	t.isClosed = true
	t.pieces = nil
	t.revs = nil
	t.changes = nil
	t.cache = none
	t.size = 0
	return t.store.Close()
}

// validateInvariant checks that the live chain is doubly linked and
// that its length matches the recorded size.
func (t *Text) validateInvariant() {
	if !expensiveCheckedExecution {
		return
	}
	n := 0
	for p := t.pieces[begin].next; p != end; p = t.pieces[p].next {
		if t.pieces[t.pieces[p].next].prev != p {
			log.Printf("broken link after piece %d: %#v", p, t.pieces[p])
			panic("text.Text chain invariant violated")
		}
		n += t.pieces[p].len
	}
	if n != t.size {
		log.Printf("chain holds %d bytes, size is %d", n, t.size)
		panic("text.Text size invariant violated")
	}
}
