// Package water is the terrain description for ships: which tiles ships can
// occupy, which moves between neighbouring tiles are allowed, and where each
// tile keeps its region id.
package water

import (
	"github.com/udisondev/shipregions/internal/region"
	"github.com/udisondev/shipregions/internal/tile"
)

// Kind is the tile type.
type Kind uint8

const (
	KindLand Kind = iota
	KindWater
	KindLock
	KindDepot
	KindDock
	KindBuoy
	KindOilRig
)

// IsWater reports whether k is stored as a water tile.
func (k Kind) IsWater() bool {
	return k == KindWater || k == KindLock || k == KindDepot
}

// IsStation reports whether k is a station tile with a side record.
func (k Kind) IsStation() bool {
	return k == KindDock || k == KindBuoy || k == KindOilRig
}

// Slope is the raised corner of a tile. Only single-corner slopes are
// navigable; Steep covers every other shape.
type Slope uint8

const (
	SlopeFlat Slope = iota
	SlopeN
	SlopeE
	SlopeS
	SlopeW
	SlopeSteep
)

// Axis is the orientation of a ship depot.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

// Class distinguishes open sea from canals.
type Class uint8

const (
	ClassSea Class = iota
	ClassCanal
)

// Tile describes the landscape content of one tile.
type Tile struct {
	Kind  Kind
	Slope Slope
	Axis  Axis
	Class Class
}

// cell is the packed per-tile storage. Plain water and locks keep the region
// id in m2; depots use m2 for depot data, so the id is split across m3 (low
// byte) and m4 (high byte). Stations keep it in their station record.
type cell struct {
	Tile
	m2      uint16
	m3      uint8
	m4      uint8
	station int32 // index into Grid.stations, -1 if none
}

// station is the side record shared by station tiles.
type station struct {
	regionIndex uint16
	free        bool
}

// EditHook is told about tile edits so region data can be repaired.
type EditHook interface {
	StartTileModification(t tile.Index)
	EndTileModification()
}

// Grid is a ship terrain map.
type Grid struct {
	tm       tile.Map
	cells    []cell
	stations []station
	hook     EditHook
}

var _ region.Terrain = (*Grid)(nil)

// NewGrid returns a sizeX by sizeY grid of land.
func NewGrid(sizeX, sizeY uint32) *Grid {
	g := &Grid{
		tm:    tile.NewMap(sizeX, sizeY),
		cells: make([]cell, sizeX*sizeY),
	}
	for i := range g.cells {
		g.cells[i].station = -1
	}
	return g
}

// Map returns the grid dimensions.
func (g *Grid) Map() tile.Map { return g.tm }

// SetHook installs h to receive edit brackets; nil removes it.
func (g *Grid) SetHook(h EditHook) { g.hook = h }

// Tile returns the landscape content of t.
func (g *Grid) Tile(t tile.Index) Tile {
	return g.cells[t].Tile
}

// Set replaces the content of t, bracketed as a tile edit. The tile's stored
// region id is reset.
func (g *Grid) Set(t tile.Index, content Tile) {
	g.Modify(t, func() { g.set(t, content) })
}

// Modify runs fn as one edit of t. Edits made by fn to other tiles nest inside it.
func (g *Grid) Modify(t tile.Index, fn func()) {
	if g.hook != nil {
		g.hook.StartTileModification(t)
		defer g.hook.EndTileModification()
	}
	fn()
}

// Load sets t without notifying the hook. Used while building a map.
func (g *Grid) Load(t tile.Index, content Tile) {
	g.set(t, content)
}

func (g *Grid) set(t tile.Index, content Tile) {
	c := &g.cells[t]
	if c.station >= 0 {
		g.stations[c.station] = station{free: true}
	}
	*c = cell{Tile: content, station: -1}
	if content.Kind.IsStation() {
		c.station = g.allocStation()
	}
}

func (g *Grid) allocStation() int32 {
	for i := range g.stations {
		if g.stations[i].free {
			g.stations[i] = station{}
			return int32(i)
		}
	}
	g.stations = append(g.stations, station{})
	return int32(len(g.stations) - 1)
}

// RegionID returns the region id stored for t.
func (g *Grid) RegionID(t tile.Index) region.ID {
	if !g.tm.Contains(t) {
		return region.NoRegion
	}
	c := &g.cells[t]
	switch {
	case c.Kind == KindDepot:
		return region.ID(uint16(c.m3) | uint16(c.m4)<<8)
	case c.Kind.IsWater():
		return region.ID(c.m2)
	case c.Kind.IsStation():
		return region.ID(g.stations[c.station].regionIndex)
	}
	return region.NoRegion
}

// SetRegionID stores id for t. Tiles that cannot hold an id ignore it.
func (g *Grid) SetRegionID(t tile.Index, id region.ID) {
	if !g.tm.Contains(t) {
		return
	}
	c := &g.cells[t]
	switch {
	case c.Kind == KindDepot:
		c.m3 = uint8(id)
		c.m4 = uint8(id >> 8)
	case c.Kind.IsWater():
		c.m2 = uint16(id)
	case c.Kind.IsStation():
		g.stations[c.station].regionIndex = uint16(id)
	}
}
