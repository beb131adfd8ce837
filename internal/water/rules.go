package water

import (
	"fmt"

	"github.com/udisondev/shipregions/internal/tile"
)

// IsRoutable reports whether a ship can occupy t: water that is flat or has a
// single raised corner, locks, depots, docks, buoys and oil rigs.
func (g *Grid) IsRoutable(t tile.Index) bool {
	if !g.tm.Contains(t) {
		return false
	}
	c := g.cells[t].Tile
	switch c.Kind {
	case KindLock, KindDock, KindBuoy, KindOilRig:
		return true
	case KindWater, KindDepot:
		return c.Slope != SlopeSteep
	}
	return false
}

// IsSea reports whether t is open sea water.
func (g *Grid) IsSea(t tile.Index) bool {
	if !g.tm.Contains(t) {
		return false
	}
	c := g.cells[t].Tile
	return c.Kind == KindWater && c.Class == ClassSea
}

// IsPassable reports whether a ship may move directly from t to its
// 4-connected neighbour nb. Both tiles must be routable.
func (g *Grid) IsPassable(t, nb tile.Index) bool {
	a, b := g.cells[t].Tile, g.cells[nb].Tile

	if a.Kind == KindWater && b.Kind == KindWater && a.Slope == SlopeFlat && b.Slope == SlopeFlat {
		return true
	}

	dx := int(g.tm.X(nb)) - int(g.tm.X(t))
	dy := int(g.tm.Y(nb)) - int(g.tm.Y(t))
	if absInt(dx)+absInt(dy) != 1 {
		panic(fmt.Sprintf("water: passability asked for non-adjacent tiles %d and %d", t, nb))
	}

	if a.Kind.IsStation() && b.Kind.IsStation() {
		return a.Kind == KindBuoy || b.Kind == KindBuoy
	}
	if a.Kind.IsStation() {
		if b.Kind == KindDepot {
			return alongAxis(dx, dy, b.Axis)
		}
		return true
	}
	if b.Kind.IsStation() {
		if a.Kind == KindDepot {
			return alongAxis(dx, dy, a.Axis)
		}
		return true
	}

	if a.Kind == KindDepot && b.Kind == KindDepot {
		return alongAxis(dx, dy, a.Axis) && alongAxis(dx, dy, b.Axis)
	}
	if a.Kind == KindDepot {
		return alongAxis(dx, dy, a.Axis)
	}
	if b.Kind == KindDepot {
		return alongAxis(dx, dy, b.Axis)
	}

	if a.Slope == SlopeFlat || a.Kind == KindLock {
		return true
	}
	if b.Slope == SlopeFlat || b.Kind == KindLock {
		return true
	}

	// Two sloped banks. Moving towards +X or +Y is the reverse of the
	// -X/-Y table below.
	from, to := a.Slope, b.Slope
	if dx+dy > 0 {
		from, to = to, from
	}
	if dy == 0 {
		return (from == SlopeS && to == SlopeE) ||
			(from == SlopeW && to == SlopeN) ||
			(from == SlopeW && to == SlopeE) ||
			(from == SlopeS && to == SlopeN)
	}
	return (from == SlopeS && to == SlopeW) ||
		(from == SlopeE && to == SlopeN) ||
		(from == SlopeE && to == SlopeW) ||
		(from == SlopeS && to == SlopeN)
}

func alongAxis(dx, dy int, axis Axis) bool {
	return (dx != 0 && axis == AxisX) || (dy != 0 && axis == AxisY)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
