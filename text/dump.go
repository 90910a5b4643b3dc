package text

import (
	"github.com/sanity-io/litter"
)

// PieceInfo describes one piece of the live chain.
type PieceInfo struct {
	Block  int
	Offset int
	Len    int
	Data   string
}

// HistoryInfo describes the position in the undo tree.
type HistoryInfo struct {
	Seq       int
	Revisions int
	Changes   int
	Modified  bool
}

// Pieces returns the pieces of the live chain in order.
func (t *Text) Pieces() []PieceInfo {
	var ps []PieceInfo
	if t.isClosed {
		return ps
	}
	for p := t.pieces[begin].next; p != end; p = t.pieces[p].next {
		pc := &t.pieces[p]
		ps = append(ps, PieceInfo{
			Block:  pc.blk,
			Offset: pc.off,
			Len:    pc.len,
			Data:   string(t.data(p)),
		})
	}
	return ps
}

// Dump renders the live chain and the state of the history for
// debugging.
func (t *Text) Dump() string {
	if t.isClosed {
		return "closed\n"
	}
	d := struct {
		Size    int
		History HistoryInfo
		Pieces  []PieceInfo
	}{
		Size: t.size,
		History: HistoryInfo{
			Seq:       t.Seq(),
			Revisions: len(t.revs),
			Changes:   len(t.changes),
			Modified:  t.Modified(),
		},
		Pieces: t.Pieces(),
	}
	return litter.Options{HidePrivateFields: true, Compact: false}.Sdump(d) + "\n"
}
