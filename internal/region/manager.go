package region

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/shipregions/internal/tile"
)

// Manager owns every live region of one terrain domain and runs the
// decomposition: seeding, splitting, merging and incremental repair.
//
// A Manager is single-threaded. Incremental repair only runs once updates are
// active, which happens on the first full build, the first incremental update
// or an explicit Activate.
type Manager struct {
	name    string
	terrain Terrain
	tm      tile.Map
	limits  Limits
	arena   arena
	active  bool

	busy    int // depth of running decomposition operations
	edits   int // open tile modification brackets
	pending []pendingEdit
}

// NewManager returns an inactive manager for terrain t.
func NewManager(name string, t Terrain, limits Limits) *Manager {
	def := DefaultLimits()
	if limits.MaxTilesPerRegion <= 0 {
		limits.MaxTilesPerRegion = def.MaxTilesPerRegion
	}
	if limits.MinRegionSize <= 0 {
		limits.MinRegionSize = def.MinRegionSize
	}
	return &Manager{
		name:    name,
		terrain: t,
		tm:      t.Map(),
		limits:  limits,
		arena:   newArena(limits.MaxRegions),
	}
}

// Name returns the domain name.
func (m *Manager) Name() string { return m.name }

// Terrain returns the terrain the manager partitions.
func (m *Manager) Terrain() Terrain { return m.terrain }

// Limits returns the size limits in use.
func (m *Manager) Limits() Limits { return m.limits }

// Active reports whether incremental updates are enabled.
func (m *Manager) Active() bool { return m.active }

// Activate enables incremental updates.
func (m *Manager) Activate() { m.active = true }

// Deactivate disables incremental updates. Existing regions are kept.
func (m *Manager) Deactivate() { m.active = false }

// Count returns the number of live regions.
func (m *Manager) Count() int { return m.arena.live }

// Regions returns live regions in ascending id order.
func (m *Manager) Regions() []*Region { return m.arena.regions() }

// Region returns the live region with the given id, or nil.
func (m *Manager) Region(id ID) *Region { return m.arena.byID(id) }

// Resolve returns the region behind h, or nil if it has been deleted.
func (m *Manager) Resolve(h Handle) *Region { return m.arena.get(h) }

// RegionAt returns the region owning t, or nil.
func (m *Manager) RegionAt(t tile.Index) *Region {
	if !m.tm.Contains(t) {
		return nil
	}
	return m.arena.byID(m.terrain.RegionID(t))
}

// Alive reports whether r is still owned by the manager.
func (m *Manager) Alive(r *Region) bool {
	return r != nil && m.arena.byID(r.id) == r
}

func (m *Manager) enter() func() {
	m.busy++
	return func() { m.busy-- }
}

// CreateRegionFromSeed creates a region by flood fill from seed.
func (m *Manager) CreateRegionFromSeed(seed tile.Index, maxTiles int) *Region {
	if maxTiles <= 0 {
		panic("region: flood fill needs a positive tile budget")
	}
	r := m.newRegion()
	h := m.arena.alloc(r)
	r.id, r.gen = h.ID, h.Gen
	r.tiles.Init(initialStoreSize, initialStoreSize, seed)
	r.FindTiles(seed, maxTiles)
	return r
}

// CreateRegionFromTiles creates a region that claims exactly tiles.
func (m *Manager) CreateRegionFromTiles(tiles []tile.Index) *Region {
	if len(tiles) == 0 {
		panic("region: region needs at least one tile")
	}
	r := m.newRegion()
	h := m.arena.alloc(r)
	r.id, r.gen = h.ID, h.Gen
	r.tiles.Init(initialStoreSize, initialStoreSize, tiles[len(tiles)/2])
	for _, t := range tiles {
		r.claim(t)
	}
	r.RefindCentre()
	r.RecheckConnections()
	return r
}

// restoreRegion recreates a region at a known id from tiles already carrying
// that id. Connections are left for the caller since neighbours may not exist yet.
func (m *Manager) restoreRegion(id ID, tiles []tile.Index) *Region {
	r := m.newRegion()
	h := m.arena.reserve(id, r)
	r.id, r.gen = h.ID, h.Gen
	r.tiles.Init(initialStoreSize, initialStoreSize, tiles[len(tiles)/2])
	for _, t := range tiles {
		r.tiles.Add(t)
		r.order = append(r.order, t)
	}
	r.RefindCentre()
	return r
}

// deleteRegion clears r's back-links, edges and identifier.
func (m *Manager) deleteRegion(r *Region) {
	for _, t := range r.tiles.Tiles() {
		if m.tm.Contains(t) && m.terrain.RegionID(t) == r.id {
			m.terrain.SetRegionID(t, NoRegion)
		}
	}
	r.tiles.Clear()
	r.order = nil
	r.neighbours.DestroyConnections()
	m.arena.release(r.id)
}

func (m *Manager) deleteAll() {
	for _, r := range m.arena.regions() {
		m.deleteRegion(r)
	}
}

// FindRegionsFromScratch discards every region and id, then seeds new regions
// in row-major order from every unclaimed routable tile.
func (m *Manager) FindRegionsFromScratch() {
	defer m.enter()()
	start := time.Now()

	m.deleteAll()
	m.active = true

	size := m.tm.Size()
	for t := range size {
		m.terrain.SetRegionID(tile.Index(t), NoRegion)
	}

	for y := range m.tm.SizeY {
		for x := range m.tm.SizeX {
			t := m.tm.XY(x, y)
			if m.terrain.RegionID(t) == NoRegion && m.terrain.IsRoutable(t) {
				m.CreateRegionFromSeed(t, m.limits.MaxTilesPerRegion)
			}
		}
	}

	m.SplitConcaveRegions(m.Regions())
	m.RemoveSmallRegions(m.Regions())

	slog.Debug("regions found",
		"domain", m.name,
		"regions", m.Count(),
		"elapsed", time.Since(start))
}

// Build runs FindRegionsFromScratch and reports identifier exhaustion as an error.
func (m *Manager) Build() (err error) {
	defer recoverExhaustion(&err)
	m.FindRegionsFromScratch()
	return nil
}

// RebuildRegionsFromTiles recreates regions from the ids already stored in
// terrain, keeping every id. Tiles with NoRegion stay unclaimed.
func (m *Manager) RebuildRegionsFromTiles() {
	defer m.enter()()
	start := time.Now()

	for _, r := range m.arena.regions() {
		r.takeTiles()
		m.deleteRegion(r)
	}
	m.active = true

	groups := make(map[ID][]tile.Index)
	var ids []ID
	for y := range m.tm.SizeY {
		for x := range m.tm.SizeX {
			t := m.tm.XY(x, y)
			id := m.terrain.RegionID(t)
			if id == NoRegion {
				continue
			}
			if _, ok := groups[id]; !ok {
				ids = append(ids, id)
			}
			groups[id] = append(groups[id], t)
		}
	}

	for _, id := range ids {
		m.restoreRegion(id, groups[id])
	}
	for _, r := range m.Regions() {
		r.RecheckConnections()
	}

	slog.Debug("regions rebuilt",
		"domain", m.name,
		"regions", m.Count(),
		"elapsed", time.Since(start))
}

// Restore runs RebuildRegionsFromTiles and reports identifier problems as an error.
func (m *Manager) Restore() (err error) {
	defer recoverExhaustion(&err)
	m.RebuildRegionsFromTiles()
	return nil
}

// AddNewTile absorbs a newly routable tile. A tile with no claimed passable
// neighbour seeds a new region; otherwise it joins the neighbouring region
// with the nearest centre and that region links to all the others.
func (m *Manager) AddNewTile(t tile.Index) {
	defer m.enter()()
	m.active = true

	if !m.tm.Contains(t) || !m.terrain.IsRoutable(t) || m.terrain.RegionID(t) != NoRegion {
		return
	}

	var candidates []*Region
	for _, nb := range m.tm.Neighbours(t) {
		if nb == tile.Invalid || !m.terrain.IsRoutable(nb) || !m.terrain.IsPassable(t, nb) {
			continue
		}
		r := m.RegionAt(nb)
		if r == nil || containsRegion(candidates, r) {
			continue
		}
		candidates = append(candidates, r)
	}

	if len(candidates) == 0 {
		r := m.CreateRegionFromSeed(t, m.limits.MaxTilesPerRegion)
		m.RemoveSmallRegions([]*Region{r})
		return
	}

	nearest := candidates[0]
	best := m.tm.DistanceSquare(t, nearest.center)
	for _, r := range candidates[1:] {
		d := m.tm.DistanceSquare(t, r.center)
		if d < best || (d == best && r.id < nearest.id) {
			nearest, best = r, d
		}
	}

	nearest.AddTile(t)
	for _, r := range candidates {
		if r != nearest {
			nearest.neighbours.Add(r)
		}
	}

	if nearest.NumTiles() > m.limits.maxSize() {
		m.SplitRegion(nearest, true)
		return
	}
	regions := m.RefindElongatedRegions([]*Region{nearest})
	regions = m.SplitConcaveRegions(regions)
	m.RemoveSmallRegions(regions)
}

// SplitRegion deletes r and refills its tiles with regions of half its size.
// Concave children are split once more when checkConcave is set; small
// children are merged. The surviving children are returned.
func (m *Manager) SplitRegion(r *Region, checkConcave bool) []*Region {
	defer m.enter()()

	old := r.Tiles()
	budget := max(len(old)/2, 1)
	m.deleteRegion(r)

	var fresh []*Region
	for _, t := range old {
		if m.terrain.RegionID(t) == NoRegion && m.terrain.IsRoutable(t) {
			fresh = append(fresh, m.CreateRegionFromSeed(t, budget))
		}
	}

	if checkConcave {
		fresh = m.SplitConcaveRegions(fresh)
	}
	return m.RemoveSmallRegions(fresh)
}

// SplitConcaveRegions splits every region with a degenerate centre whose
// halves would still reach the minimum size. Smaller concave regions are kept.
// Children are not checked again.
func (m *Manager) SplitConcaveRegions(regions []*Region) []*Region {
	defer m.enter()()

	out := make([]*Region, 0, len(regions))
	for _, r := range regions {
		if !m.Alive(r) {
			continue
		}
		if r.centerBad && r.NumTiles() > m.limits.MinRegionSize && r.NumTiles()/2 >= m.limits.MinRegionSize {
			out = append(out, m.SplitRegion(r, false)...)
			continue
		}
		out = append(out, r)
	}
	return out
}

// RemoveSmallRegions dissolves regions below the minimum size into a
// neighbour chosen by pickReceiver. Regions no neighbour can take without
// growing past the size bound are kept. Survivors are returned.
func (m *Manager) RemoveSmallRegions(regions []*Region) []*Region {
	defer m.enter()()

	out := make([]*Region, 0, len(regions))
	for _, loser := range regions {
		if !m.Alive(loser) {
			continue
		}
		if loser.NumTiles() >= m.limits.MinRegionSize || loser.neighbours.Empty() {
			out = append(out, loser)
			continue
		}
		receiver := m.pickReceiver(loser)
		if receiver == nil {
			out = append(out, loser)
			continue
		}

		receiver.AddTiles(loser.takeTiles())
		for _, nb := range loser.neighbours.Regions() {
			if nb != receiver {
				receiver.neighbours.Add(nb)
			}
		}
		m.deleteRegion(loser)
	}
	return out
}

// pickReceiver returns the lowest-id neighbour that can take loser's tiles
// without a degenerate merged centre, or failing that the lowest-id neighbour
// that fits at all.
func (m *Manager) pickReceiver(loser *Region) *Region {
	var fallback *Region
	for _, nb := range loser.neighbours.Regions() {
		if nb.NumTiles()+loser.NumTiles() > m.limits.maxSize() {
			continue
		}
		if m.mergedCentreOwned(nb, loser) {
			return nb
		}
		if fallback == nil {
			fallback = nb
		}
	}
	return fallback
}

// mergedCentreOwned reports whether the average tile of a and b together
// belongs to one of them.
func (m *Manager) mergedCentreOwned(a, b *Region) bool {
	var sumX, sumY uint64
	for _, r := range [2]*Region{a, b} {
		for _, t := range r.order {
			sumX += uint64(m.tm.X(t))
			sumY += uint64(m.tm.Y(t))
		}
	}
	n := uint64(len(a.order) + len(b.order))
	avg := m.tm.XY(uint32(sumX/n), uint32(sumY/n))
	return a.tiles.Has(avg) || b.tiles.Has(avg)
}

// RefindRegion deletes r (and its neighbours when includeNeighbours is set)
// and refills the freed tiles from scratch. The new regions are returned.
func (m *Manager) RefindRegion(r *Region, includeNeighbours bool) []*Region {
	defer m.enter()()

	targets := []*Region{r}
	if includeNeighbours {
		targets = append(targets, r.neighbours.Regions()...)
	}

	var tiles []tile.Index
	for _, rr := range targets {
		tiles = append(tiles, rr.Tiles()...)
		m.deleteRegion(rr)
	}

	var fresh []*Region
	for _, t := range tiles {
		if m.terrain.RegionID(t) == NoRegion && m.terrain.IsRoutable(t) {
			fresh = append(fresh, m.CreateRegionFromSeed(t, m.limits.MaxTilesPerRegion))
		}
	}
	return m.RemoveSmallRegions(m.SplitConcaveRegions(fresh))
}

// maxElongationDepth bounds repeated splitting of a thin region.
const maxElongationDepth = 8

// RefindElongatedRegions rebuilds, together with their neighbours, regions
// whose bounding box aspect ratio exceeds 2. Rebuilt regions that are still
// elongated are split until they are not, or until splitting would produce
// regions below the minimum size. Regions that needed no repair are returned
// along with the rebuilt ones.
func (m *Manager) RefindElongatedRegions(regions []*Region) []*Region {
	defer m.enter()()

	var out []*Region
	for _, r := range regions {
		if !m.Alive(r) {
			continue
		}
		if !m.elongated(r) {
			out = append(out, r)
			continue
		}
		for _, nr := range m.RefindRegion(r, true) {
			out = append(out, m.splitElongated(nr, 0)...)
		}
	}
	return liveRegions(m, out)
}

func (m *Manager) splitElongated(r *Region, depth int) []*Region {
	if !m.Alive(r) {
		return nil
	}
	if depth >= maxElongationDepth || !m.elongated(r) || r.NumTiles() < 2*m.limits.MinRegionSize {
		return []*Region{r}
	}
	var out []*Region
	for _, c := range m.SplitRegion(r, false) {
		out = append(out, m.splitElongated(c, depth+1)...)
	}
	return out
}

func (m *Manager) elongated(r *Region) bool {
	w, h := r.WidthX(), r.HeightY()
	if w == 0 || h == 0 {
		return false
	}
	return max(w, h)/min(w, h) > 2
}

func containsRegion(rs []*Region, r *Region) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// liveRegions filters out deleted regions and duplicates.
func liveRegions(m *Manager, rs []*Region) []*Region {
	out := rs[:0]
	for _, r := range rs {
		if m.Alive(r) && !containsRegion(out, r) {
			out = append(out, r)
		}
	}
	return out
}

func recoverExhaustion(err *error) {
	rec := recover()
	if rec == nil {
		return
	}
	if e, ok := rec.(error); ok && errors.Is(e, ErrTooManyRegions) {
		*err = e
		return
	}
	panic(rec)
}

// String implements fmt.Stringer.
func (m *Manager) String() string {
	return fmt.Sprintf("manager %q (%d regions)", m.name, m.Count())
}
