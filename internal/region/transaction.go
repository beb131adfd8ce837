package region

import "github.com/udisondev/shipregions/internal/tile"

// pendingEdit records what a tile edit may have invalidated: the region that
// owned the tile, or the bare tile if it was unclaimed.
type pendingEdit struct {
	region    Handle
	tile      tile.Index
	hasRegion bool
}

// StartTileModification must be called before changing a tile in a way that
// may affect routability or passability. Brackets nest; repair runs when the
// outermost EndTileModification returns. Calling it while a decomposition
// operation is running panics.
func (m *Manager) StartTileModification(t tile.Index) {
	if m.busy > 0 {
		panic("region: tile modification started during region repair")
	}
	m.edits++
	if !m.active {
		return
	}

	if r := m.RegionAt(t); r != nil {
		h := r.Handle()
		for _, p := range m.pending {
			if p.hasRegion && p.region == h {
				return
			}
		}
		m.pending = append(m.pending, pendingEdit{region: h, hasRegion: true})
		return
	}
	m.pending = append(m.pending, pendingEdit{tile: t})
}

// EndTileModification closes the innermost bracket. When the outermost bracket
// closes, recorded regions are rebuilt together with their neighbours, then
// recorded bare tiles are offered to AddNewTile.
func (m *Manager) EndTileModification() {
	if m.edits == 0 {
		panic("region: EndTileModification without StartTileModification")
	}
	if m.busy > 0 {
		panic("region: tile modification ended during region repair")
	}
	m.edits--
	if m.edits > 0 {
		return
	}

	pending := m.pending
	m.pending = nil
	if !m.active {
		return
	}

	for i := len(pending) - 1; i >= 0; i-- {
		p := pending[i]
		if !p.hasRegion {
			continue
		}
		if r := m.arena.get(p.region); r != nil {
			m.RefindRegion(r, true)
		}
	}
	for i := len(pending) - 1; i >= 0; i-- {
		p := pending[i]
		if !p.hasRegion {
			m.AddNewTile(p.tile)
		}
	}
}

// PendingEdits returns the number of open modification brackets.
func (m *Manager) PendingEdits() int {
	return m.edits
}

// ModifyTile brackets fn with StartTileModification and EndTileModification.
func (m *Manager) ModifyTile(t tile.Index, fn func()) {
	m.StartTileModification(t)
	defer m.EndTileModification()
	fn()
}
