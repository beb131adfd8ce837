package region

import (
	"fmt"
	"slices"
)

// Neighbours is the symmetric adjacency set of one region. Entries are
// generation-checked handles resolved through the owning manager's arena.
type Neighbours struct {
	owner *Region
	set   map[ID]uint32 // neighbour id -> generation
}

func newNeighbours(owner *Region) Neighbours {
	return Neighbours{owner: owner, set: make(map[ID]uint32, 4)}
}

// Add links the owner and r in both directions. Adding an existing edge is a no-op.
func (n *Neighbours) Add(r *Region) {
	n.set[r.id] = r.gen
	r.neighbours.set[n.owner.id] = n.owner.gen
}

// Remove unlinks the owner and r in both directions.
func (n *Neighbours) Remove(r *Region) {
	delete(n.set, r.id)
	delete(r.neighbours.set, n.owner.id)
}

// Has reports whether r is adjacent to the owner.
func (n *Neighbours) Has(r *Region) bool {
	gen, ok := n.set[r.id]
	return ok && gen == r.gen
}

// Empty reports whether the owner has no neighbours.
func (n *Neighbours) Empty() bool {
	return len(n.set) == 0
}

// Len returns the number of neighbours.
func (n *Neighbours) Len() int {
	return len(n.set)
}

// Clear drops the owner's side of every edge. Only valid on a region that
// nothing links to yet.
func (n *Neighbours) Clear() {
	clear(n.set)
}

// DestroyConnections removes every edge incident to the owner, on both sides.
func (n *Neighbours) DestroyConnections() {
	for _, r := range n.Regions() {
		n.Remove(r)
	}
	clear(n.set)
}

// Regions returns the neighbours in ascending id order.
func (n *Neighbours) Regions() []*Region {
	ids := make([]ID, 0, len(n.set))
	for id := range n.set {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]*Region, 0, len(ids))
	for _, id := range ids {
		r := n.owner.m.arena.get(Handle{ID: id, Gen: n.set[id]})
		if r == nil {
			panic(fmt.Sprintf("region: region %d holds stale neighbour %d", n.owner.id, id))
		}
		out = append(out, r)
	}
	return out
}

// Handles returns the neighbour handles in ascending id order.
func (n *Neighbours) Handles() []Handle {
	out := make([]Handle, 0, len(n.set))
	for id, gen := range n.set {
		out = append(out, Handle{ID: id, Gen: gen})
	}
	slices.SortFunc(out, func(a, b Handle) int { return int(a.ID) - int(b.ID) })
	return out
}
