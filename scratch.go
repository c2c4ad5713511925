package astar

import "math"

// node is the search-scoped state of one cell. Parents are arena indices.
type node struct {
	cell      int32
	parent    int32
	g, h      int
	heapIndex int
	gen       uint32
	open      bool
	closed    bool
}

func (n *node) HeapIndex() int     { return n.heapIndex }
func (n *node) SetHeapIndex(i int) { n.heapIndex = i }
func (n *node) f() int             { return n.g + n.h }

// lessNode orders by f, then h, then cell index so equal-cost routes are
// always resolved the same way.
func lessNode(a, b *node) bool {
	if af, bf := a.f(), b.f(); af != bf {
		return af < bf
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.cell < b.cell
}

// Scratch holds the per-search state for every cell of a grid. Each search
// starts a new generation, so nodes written by an earlier search read as
// pristine without a full reset.
//
// A Scratch serves one search at a time. Concurrent searches over the same
// Grid each need their own.
type Scratch struct {
	nodes []node
	gen   uint32
	open  *PriorityQueue[*node]
}

// NewScratch allocates scratch space for a grid of the given cell count.
// It grows on demand if later used with a larger grid.
func NewScratch(cells int) *Scratch {
	return &Scratch{
		nodes: make([]node, cells),
		open:  NewPriorityQueue(lessNode),
	}
}

// begin starts a new search generation over cells nodes.
func (s *Scratch) begin(cells int) {
	if len(s.nodes) != cells {
		s.nodes = make([]node, cells)
		s.gen = 0
	}
	s.open.Clear()
	s.gen++
	if s.gen == 0 {
		clear(s.nodes)
		s.gen = 1
	}
}

// node returns the state for cell i, resetting it if it is stale.
func (s *Scratch) node(i int) *node {
	n := &s.nodes[i]
	if n.gen != s.gen {
		*n = node{
			cell:      int32(i),
			parent:    -1,
			g:         math.MaxInt,
			heapIndex: -1,
			gen:       s.gen,
		}
	}
	return n
}

// parent returns the parent of cell i written during the current search.
func (s *Scratch) parent(i int32) (int32, bool) {
	n := &s.nodes[i]
	if n.gen != s.gen || n.parent < 0 {
		return 0, false
	}
	return n.parent, true
}
