// Package region partitions routable tiles into bounded, contiguous regions,
// keeps the partition consistent while terrain changes, and searches the
// region adjacency graph for coarse waypoints.
package region

import "github.com/udisondev/shipregions/internal/tile"

// Terrain is the capability set the decomposition needs from a map.
//
// IsPassable is only asked about 4-connected neighbours and must agree with
// itself when the arguments are swapped. RegionID returns NoRegion for tiles
// that are not claimed or cannot store an id.
type Terrain interface {
	Map() tile.Map
	IsRoutable(t tile.Index) bool
	IsPassable(from, to tile.Index) bool
	RegionID(t tile.Index) ID
	SetRegionID(t tile.Index, id ID)
}

// Limits bounds region sizes and the identifier space.
type Limits struct {
	MaxTilesPerRegion int
	MinRegionSize     int
	MaxRegions        int
}

// DefaultLimits returns the limits tuned for water regions.
func DefaultLimits() Limits {
	return Limits{
		MaxTilesPerRegion: 114,
		MinRegionSize:     12,
		MaxRegions:        65535,
	}
}

// maxSize is the hard upper bound on a region's tile count.
func (l Limits) maxSize() int {
	return l.MaxTilesPerRegion + l.MinRegionSize
}
