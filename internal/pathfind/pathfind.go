// Package pathfind implements a generic best-first search driven by pluggable
// origin, destination, follower and cost strategies. The same engine serves the
// coarse region graph and the fine tile grid.
package pathfind

import "container/heap"

// DefaultMaxNodes caps node expansion when no limit is given.
const DefaultMaxNodes = 10000

// Node is a search node. Key identifies the searched position; Cost is the
// accumulated cost from the origin and Estimate is Cost plus the remaining
// heuristic.
type Node[K comparable] struct {
	Key      K
	Parent   *Node[K]
	Cost     int
	Estimate int

	index  int // heap index, -1 when not in the open list
	closed bool
}

// Origin places the start keys.
type Origin[K comparable] interface {
	Origins() []K
}

// Destination detects the goal and fills Node.Estimate.
type Destination[K comparable] interface {
	IsDestination(n *Node[K]) bool
	CalcEstimate(n *Node[K])
}

// Follower lists the keys reachable from a node.
type Follower[K comparable] interface {
	Follow(n *Node[K]) []K
}

// Coster fills Node.Cost from n.Parent. Returning false drops the node.
type Coster[K comparable] interface {
	CalcCost(n *Node[K]) bool
}

// Strategy bundles the four plug-in points of a search.
type Strategy[K comparable] struct {
	Origin      Origin[K]
	Destination Destination[K]
	Follower    Follower[K]
	Cost        Coster[K]
}

// Finder runs one search. It is not reusable.
type Finder[K comparable] struct {
	s        Strategy[K]
	maxNodes int

	open  nodeHeap[K]
	nodes map[K]*Node[K]

	best             *Node[K]
	bestIntermediate *Node[K]
	expanded         int
}

// New returns a Finder for s that expands at most maxNodes nodes.
// maxNodes <= 0 means DefaultMaxNodes.
func New[K comparable](s Strategy[K], maxNodes int) *Finder[K] {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	return &Finder[K]{
		s:        s,
		maxNodes: maxNodes,
		nodes:    make(map[K]*Node[K], 64),
	}
}

// FindPath runs the search. It returns true when a destination node was
// reached; otherwise BestNode reports the node closest to the goal by heuristic.
func (f *Finder[K]) FindPath() bool {
	for _, k := range f.s.Origin.Origins() {
		n := &Node[K]{Key: k, index: -1}
		f.nodes[k] = n
		heap.Push(&f.open, n)
	}

	for f.open.Len() > 0 {
		n := heap.Pop(&f.open).(*Node[K])
		if f.s.Destination.IsDestination(n) {
			f.best = n
			return true
		}
		if f.expanded >= f.maxNodes {
			break
		}
		n.closed = true
		f.expanded++

		for _, k := range f.s.Follower.Follow(n) {
			f.addNode(n, k)
		}
	}

	f.best = f.bestIntermediate
	return false
}

// BestNode returns the destination node after a successful search, or the
// best intermediate node after a failed one. It may be nil.
func (f *Finder[K]) BestNode() *Node[K] {
	return f.best
}

// Expanded returns how many nodes were expanded.
func (f *Finder[K]) Expanded() int {
	return f.expanded
}

func (f *Finder[K]) addNode(parent *Node[K], k K) {
	existing := f.nodes[k]
	if existing != nil && existing.closed {
		return
	}

	n := &Node[K]{Key: k, Parent: parent, index: -1}
	if !f.s.Cost.CalcCost(n) {
		return
	}
	f.s.Destination.CalcEstimate(n)

	if f.bestIntermediate == nil || n.Estimate-n.Cost < f.bestIntermediate.Estimate-f.bestIntermediate.Cost {
		f.bestIntermediate = n
	}

	if existing != nil {
		if existing.Estimate <= n.Estimate {
			return
		}
		existing.Parent = n.Parent
		existing.Cost = n.Cost
		existing.Estimate = n.Estimate
		heap.Fix(&f.open, existing.index)
		if f.bestIntermediate == n {
			f.bestIntermediate = existing
		}
		return
	}

	f.nodes[k] = n
	heap.Push(&f.open, n)
}

// Path returns keys from the origin to n inclusive.
func Path[K comparable](n *Node[K]) []K {
	var out []K
	for ; n != nil; n = n.Parent {
		out = append(out, n.Key)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// nodeHeap implements container/heap for the open list (min-heap by Estimate).
type nodeHeap[K comparable] []*Node[K]

func (h nodeHeap[K]) Len() int           { return len(h) }
func (h nodeHeap[K]) Less(i, j int) bool { return h[i].Estimate < h[j].Estimate }
func (h nodeHeap[K]) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap[K]) Push(x any)        { n := x.(*Node[K]); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap[K]) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil // GC
	node.index = -1
	*h = old[:n-1]
	return node
}
