package hits

// HitIndex is a stable reference to a hit in an Arena.
type HitIndex int

// Arena holds the hits of one event and hands out stable indexes to them.
type Arena struct {
	hits []Hit1D
}

// NewArena copies hits into a new arena. Index i refers to hits[i].
func NewArena(h []Hit1D) *Arena {
	a := &Arena{hits: make([]Hit1D, len(h))}
	copy(a.hits, h)
	return a
}

// Len returns the number of hits in the arena.
func (a *Arena) Len() int { return len(a.hits) }

// Hit returns the hit at idx. The returned pointer must not be modified.
func (a *Arena) Hit(idx HitIndex) *Hit1D { return &a.hits[idx] }

// Indexes returns all indexes in arena order.
func (a *Arena) Indexes() []HitIndex {
	out := make([]HitIndex, len(a.hits))
	for i := range out {
		out[i] = HitIndex(i)
	}
	return out
}

// IndexSet is an insertion-ordered set of hit indexes, used for the
// used/unused bookkeeping selections.
type IndexSet struct {
	Name  string
	order []HitIndex
	pos   map[HitIndex]int
}

// NewIndexSet creates an empty named set.
func NewIndexSet(name string) *IndexSet {
	return &IndexSet{Name: name, pos: make(map[HitIndex]int)}
}

// Add inserts idx if it is not already present.
func (s *IndexSet) Add(idx HitIndex) {
	if _, ok := s.pos[idx]; ok {
		return
	}
	s.pos[idx] = len(s.order)
	s.order = append(s.order, idx)
}

// Contains reports whether idx is in the set.
func (s *IndexSet) Contains(idx HitIndex) bool {
	_, ok := s.pos[idx]
	return ok
}

// Len returns the number of entries.
func (s *IndexSet) Len() int { return len(s.order) }

// Indexes returns the entries in insertion order.
func (s *IndexSet) Indexes() []HitIndex {
	out := make([]HitIndex, len(s.order))
	copy(out, s.order)
	return out
}
