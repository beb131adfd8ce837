package region

import (
	"container/heap"
	"errors"
	"fmt"
)

// ErrTooManyRegions is raised (as a panic value wrapping it) when the
// identifier space is exhausted.
var ErrTooManyRegions = errors.New("region: too many regions")

// ID is a region identifier as stored in terrain. NoRegion means unclaimed.
type ID uint16

// NoRegion is the reserved "no region" identifier.
const NoRegion ID = 0

// Handle is a generation-checked reference to a region slot.
type Handle struct {
	ID  ID
	Gen uint32
}

// arena owns live regions by identifier. Released ids go to a min-heap so the
// lowest free id is always reused first; the generation of a slot is bumped
// on release so stale handles stop resolving.
type arena struct {
	slots []*Region // slot 0 is never used
	gens  []uint32
	free  idHeap
	limit int
	live  int
}

func newArena(limit int) arena {
	if limit <= 0 || limit > int(^ID(0)) {
		limit = int(^ID(0))
	}
	return arena{
		slots: make([]*Region, 1, 64),
		gens:  make([]uint32, 1, 64),
		limit: limit,
	}
}

// alloc reserves the lowest unused non-zero id for r.
func (a *arena) alloc(r *Region) Handle {
	var id ID
	if a.free.Len() > 0 {
		id = heap.Pop(&a.free).(ID)
	} else {
		if len(a.slots) > a.limit {
			panic(fmt.Errorf("%w: limit %d", ErrTooManyRegions, a.limit))
		}
		id = ID(len(a.slots))
		a.slots = append(a.slots, nil)
		a.gens = append(a.gens, 0)
	}
	a.slots[id] = r
	a.live++
	return Handle{ID: id, Gen: a.gens[id]}
}

// reserve claims a specific id for r. The id must be free.
func (a *arena) reserve(id ID, r *Region) Handle {
	if id == NoRegion {
		panic("region: cannot reserve the null id")
	}
	if int(id) > a.limit {
		panic(fmt.Errorf("%w: id %d over limit %d", ErrTooManyRegions, id, a.limit))
	}
	for ID(len(a.slots)) <= id {
		heap.Push(&a.free, ID(len(a.slots)))
		a.slots = append(a.slots, nil)
		a.gens = append(a.gens, 0)
	}
	if a.slots[id] != nil {
		panic(fmt.Sprintf("region: id %d already in use", id))
	}
	for i, f := range a.free {
		if f == id {
			heap.Remove(&a.free, i)
			break
		}
	}
	a.slots[id] = r
	a.live++
	return Handle{ID: id, Gen: a.gens[id]}
}

func (a *arena) release(id ID) {
	if int(id) >= len(a.slots) || a.slots[id] == nil {
		panic(fmt.Sprintf("region: release of unused id %d", id))
	}
	a.slots[id] = nil
	a.gens[id]++
	a.live--
	heap.Push(&a.free, id)
}

// get resolves h, returning nil for empty slots and stale generations.
func (a *arena) get(h Handle) *Region {
	if int(h.ID) >= len(a.slots) || a.gens[h.ID] != h.Gen {
		return nil
	}
	return a.slots[h.ID]
}

func (a *arena) byID(id ID) *Region {
	if int(id) >= len(a.slots) {
		return nil
	}
	return a.slots[id]
}

// regions returns live regions in ascending id order.
func (a *arena) regions() []*Region {
	out := make([]*Region, 0, a.live)
	for _, r := range a.slots {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

type idHeap []ID

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(ID)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	id := old[n-1]
	*h = old[:n-1]
	return id
}
