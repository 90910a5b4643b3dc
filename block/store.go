package block

// A Store is the ordered sequence of blocks owned by one document. Only
// the last block may be appended to or modified in place; full blocks are
// left untouched and a new block is started instead of growing an old
// one.
type Store struct {
	blocks []*Block
	unit   int
	limit  int // maximal number of heap bytes; 0 means unlimited
	heap   int // heap bytes allocated so far
}

// NewStore returns an empty store allocating heap blocks of at least unit
// bytes. A positive limit caps the total capacity of heap blocks.
func NewStore(unit, limit int) *Store {
	if unit <= 0 {
		unit = DefaultSize
	}
	return &Store{unit: unit, limit: limit}
}

// Add appends an externally created block (e.g. the initial file content)
// and returns its index.
func (s *Store) Add(b *Block) int {
	if b.kind == Heap {
		s.heap += b.Cap()
	}
	s.blocks = append(s.blocks, b)
	return len(s.blocks) - 1
}

// Put stores data and returns the index of the block holding it and the
// offset within that block. Nothing is modified when it fails.
func (s *Store) Put(data []byte) (int, int, error) {
	if i := s.Last(); i >= 0 {
		if off, ok := s.blocks[i].Append(data); ok {
			return i, off, nil
		}
	}
	size := len(data)
	if size < s.unit {
		size = s.unit
	}
	if s.limit > 0 && s.heap+size > s.limit {
		// Retry with a block sized for the request alone.
		size = len(data)
		if s.heap+size > s.limit {
			return -1, 0, ErrNoSpace
		}
	}
	b := &Block{kind: Heap, data: make([]byte, 0, size)}
	off, _ := b.Append(data)
	return s.Add(b), off, nil
}

// Len returns the number of blocks.
func (s *Store) Len() int { return len(s.blocks) }

// Block returns the block at index i.
func (s *Store) Block(i int) *Block { return s.blocks[i] }

// Last returns the index of the most recently added block or -1.
func (s *Store) Last() int { return len(s.blocks) - 1 }

// Tail returns the last block if it may be modified in place.
func (s *Store) Tail() (int, *Block) {
	i := s.Last()
	if i < 0 || s.blocks[i].kind != Heap {
		return -1, nil
	}
	return i, s.blocks[i]
}

// Mapped returns the indices of all blocks backed by a memory mapping.
func (s *Store) Mapped() []int {
	var m []int
	for i, b := range s.blocks {
		if b.kind == Mapped {
			m = append(m, i)
		}
	}
	return m
}

// Close releases every block. The first error encountered is returned.
func (s *Store) Close() error {
	var err error
	for _, b := range s.blocks {
		if e := b.Close(); e != nil && err == nil {
			err = e
		}
	}
	s.blocks = nil
	s.heap = 0
	return err
}
