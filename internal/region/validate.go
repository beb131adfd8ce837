package region

import (
	"fmt"

	"github.com/udisondev/shipregions/internal/tile"
)

// Stats summarises a decomposition.
type Stats struct {
	Regions    int
	Tiles      int
	MinTiles   int
	MaxTiles   int
	Degenerate int
	Isolated   int
	Edges      int
}

// AvgTiles returns the mean region size.
func (s Stats) AvgTiles() float64 {
	if s.Regions == 0 {
		return 0
	}
	return float64(s.Tiles) / float64(s.Regions)
}

// Stats computes summary figures over live regions.
func (m *Manager) Stats() Stats {
	var s Stats
	for _, r := range m.Regions() {
		n := r.NumTiles()
		if s.Regions == 0 || n < s.MinTiles {
			s.MinTiles = n
		}
		s.MaxTiles = max(s.MaxTiles, n)
		s.Regions++
		s.Tiles += n
		s.Edges += r.neighbours.Len()
		if r.centerBad {
			s.Degenerate++
		}
		if r.neighbours.Empty() {
			s.Isolated++
		}
	}
	s.Edges /= 2
	return s
}

// Validate checks the structural invariants of the decomposition: every owned
// tile links back to its region, every stored id belongs to a live region that
// owns the tile, adjacency is symmetric and free of self-loops, and no region
// exceeds the size bound.
func (m *Manager) Validate() error {
	limit := m.limits.maxSize()
	for _, r := range m.Regions() {
		n := r.NumTiles()
		if n == 0 || n > limit {
			return fmt.Errorf("%s: tile count %d outside [1, %d]", r, n, limit)
		}
		if r.tiles.Len() != n {
			return fmt.Errorf("%s: store holds %d tiles, expected %d", r, r.tiles.Len(), n)
		}
		for _, t := range r.Tiles() {
			if id := m.terrain.RegionID(t); id != r.id {
				return fmt.Errorf("%s: tile %d links to region %d", r, t, id)
			}
		}
		if !r.tiles.Has(r.center) {
			return fmt.Errorf("%s: centre %d not owned", r, r.center)
		}
		for id, gen := range r.neighbours.set {
			if id == r.id {
				return fmt.Errorf("%s: self-loop", r)
			}
			nb := m.arena.get(Handle{ID: id, Gen: gen})
			if nb == nil {
				return fmt.Errorf("%s: stale neighbour %d", r, id)
			}
			if !nb.neighbours.Has(r) {
				return fmt.Errorf("%s: neighbour %s does not link back", r, nb)
			}
		}
	}

	for t := range m.tm.Size() {
		ti := tile.Index(t)
		id := m.terrain.RegionID(ti)
		if id == NoRegion {
			continue
		}
		r := m.arena.byID(id)
		if r == nil {
			return fmt.Errorf("tile %d carries id %d of no live region", ti, id)
		}
		if !r.tiles.Has(ti) {
			return fmt.Errorf("tile %d carries id %d but %s does not own it", ti, id, r)
		}
	}
	return nil
}

// UnclaimedRoutable returns routable tiles that belong to no region.
func (m *Manager) UnclaimedRoutable() []tile.Index {
	var out []tile.Index
	for t := range m.tm.Size() {
		ti := tile.Index(t)
		if m.terrain.IsRoutable(ti) && m.terrain.RegionID(ti) == NoRegion {
			out = append(out, ti)
		}
	}
	return out
}
