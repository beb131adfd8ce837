package region

import (
	"fmt"
	"math"

	"github.com/udisondev/shipregions/internal/mathx"
	"github.com/udisondev/shipregions/internal/tile"
)

// InvalidDistance is returned by DistanceTo when the square root fails.
const InvalidDistance = math.MaxInt32

// initialStoreSize is the first guess for a region's tile window.
const initialStoreSize = 32

// Region is one contiguous cluster of routable tiles. Regions are owned by a
// Manager; other regions reference them only through Neighbours.
type Region struct {
	m          *Manager
	id         ID
	gen        uint32
	tiles      *tile.Store
	order      []tile.Index // tiles in the order they were claimed
	center     tile.Index
	centerBad  bool
	neighbours Neighbours
}

func (m *Manager) newRegion() *Region {
	r := &Region{m: m, tiles: tile.NewStore(m.tm)}
	r.neighbours = newNeighbours(r)
	return r
}

// ID returns the region identifier.
func (r *Region) ID() ID { return r.id }

// Handle returns a generation-checked reference to r.
func (r *Region) Handle() Handle { return Handle{ID: r.id, Gen: r.gen} }

// NumTiles returns the number of tiles the region owns.
func (r *Region) NumTiles() int { return len(r.order) }

// Tiles returns owned tiles in row-major order.
func (r *Region) Tiles() []tile.Index { return r.tiles.Tiles() }

// Has reports whether r owns t.
func (r *Region) Has(t tile.Index) bool { return r.tiles.Has(t) }

// Center returns the representative tile.
func (r *Region) Center() tile.Index { return r.center }

// BadCenter reports whether the average tile lies outside the region, which
// marks a concave or otherwise irregular shape.
func (r *Region) BadCenter() bool { return r.centerBad }

// WidthX returns the X span of the region's bounding box.
func (r *Region) WidthX() uint32 { return r.tiles.WidthX() }

// HeightY returns the Y span of the region's bounding box.
func (r *Region) HeightY() uint32 { return r.tiles.HeightY() }

// Neighbours returns the adjacency set.
func (r *Region) Neighbours() *Neighbours { return &r.neighbours }

func (r *Region) String() string {
	return fmt.Sprintf("region#%d(%d tiles)", r.id, len(r.order))
}

// FindTiles flood fills from seed, claiming at most maxTiles unclaimed tiles.
// Passable neighbours already owned by another region become adjacencies.
func (r *Region) FindTiles(seed tile.Index, maxTiles int) {
	t := r.m.terrain
	tm := r.m.tm
	if !tm.Contains(seed) || t.RegionID(seed) != NoRegion || !t.IsRoutable(seed) {
		panic(fmt.Sprintf("region: bad flood fill seed %d", seed))
	}

	r.order = r.order[:0]
	r.neighbours.Clear()

	queue := []tile.Index{seed}
	scheduled := map[tile.Index]struct{}{seed: {}}
	queued := 1

	var sumX, sumY uint64
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		delete(scheduled, cur)

		r.claim(cur)
		sumX += uint64(tm.X(cur))
		sumY += uint64(tm.Y(cur))

		for _, nb := range tm.Neighbours(cur) {
			if nb == tile.Invalid || !t.IsRoutable(nb) {
				continue
			}
			if _, ok := scheduled[nb]; ok {
				continue
			}
			if !r.passable(cur, nb) {
				continue
			}
			switch owner := t.RegionID(nb); owner {
			case NoRegion:
				if queued < maxTiles {
					queue = append(queue, nb)
					scheduled[nb] = struct{}{}
					queued++
				}
			case r.id:
			default:
				if other := r.m.arena.byID(owner); other != nil {
					r.neighbours.Add(other)
				}
			}
		}
	}

	n := uint64(len(r.order))
	r.setCenter(tm.XY(uint32(sumX/n), uint32(sumY/n)))
}

// AddTile claims one more tile and recomputes the centre.
func (r *Region) AddTile(t tile.Index) {
	r.claim(t)
	r.RefindCentre()
}

// AddTiles claims every tile in ts.
func (r *Region) AddTiles(ts []tile.Index) {
	for _, t := range ts {
		r.AddTile(t)
	}
}

// RecheckConnections rebuilds the adjacency set from current tile ownership.
func (r *Region) RecheckConnections() {
	r.neighbours.DestroyConnections()

	t := r.m.terrain
	for _, cur := range r.Tiles() {
		for _, nb := range r.m.tm.Neighbours(cur) {
			if nb == tile.Invalid || !t.IsRoutable(nb) || !r.passable(cur, nb) {
				continue
			}
			id := t.RegionID(nb)
			if id == NoRegion || id == r.id {
				continue
			}
			if other := r.m.arena.byID(id); other != nil {
				r.neighbours.Add(other)
			}
		}
	}
}

// RefindCentre recomputes the centre tile and the degenerate flag.
func (r *Region) RefindCentre() {
	if len(r.order) == 0 {
		return
	}
	tm := r.m.tm
	var sumX, sumY uint64
	for _, t := range r.order {
		sumX += uint64(tm.X(t))
		sumY += uint64(tm.Y(t))
	}
	n := uint64(len(r.order))
	r.setCenter(tm.XY(uint32(sumX/n), uint32(sumY/n)))
}

// DistanceTo returns the distance between centres in tenths of a tile.
func (r *Region) DistanceTo(other *Region) int {
	d2 := r.m.tm.DistanceSquare(r.center, other.center)
	d, err := mathx.Sqrt(100 * int64(d2))
	if err != nil {
		return InvalidDistance
	}
	return int(d)
}

func (r *Region) setCenter(avg tile.Index) {
	if r.m.terrain.RegionID(avg) == r.id && r.tiles.Has(avg) {
		r.center = avg
		r.centerBad = false
		return
	}
	r.center = r.order[len(r.order)/2]
	r.centerBad = true
}

func (r *Region) claim(t tile.Index) {
	if r.tiles.Has(t) {
		return
	}
	r.tiles.Add(t)
	r.order = append(r.order, t)
	r.m.terrain.SetRegionID(t, r.id)
}

// takeTiles empties the region without touching back-links and returns the
// tiles in claim order.
func (r *Region) takeTiles() []tile.Index {
	ts := r.order
	r.order = nil
	r.tiles.Clear()
	return ts
}

func (r *Region) passable(from, to tile.Index) bool {
	if !r.m.tm.IsAdjacent(from, to) {
		panic(fmt.Sprintf("region: passability asked for non-adjacent tiles %d and %d", from, to))
	}
	return r.m.terrain.IsPassable(from, to)
}
