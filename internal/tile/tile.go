// Package tile provides tile coordinate arithmetic and a sparse tile set.
package tile

// Index identifies a single map tile: Y*SizeX + X.
type Index uint32

// Invalid is returned for coordinates outside the map.
const Invalid Index = ^Index(0)

// Map describes the dimensions of a rectangular tile grid.
type Map struct {
	SizeX uint32
	SizeY uint32
}

// NewMap returns a Map of the given dimensions.
func NewMap(sizeX, sizeY uint32) Map {
	return Map{SizeX: sizeX, SizeY: sizeY}
}

// Size returns the number of tiles on the map.
func (m Map) Size() uint32 {
	return m.SizeX * m.SizeY
}

// XY returns the tile at (x, y). No bounds check is performed.
func (m Map) XY(x, y uint32) Index {
	return Index(y*m.SizeX + x)
}

// X returns the column of t.
func (m Map) X(t Index) uint32 {
	return uint32(t) % m.SizeX
}

// Y returns the row of t.
func (m Map) Y(t Index) uint32 {
	return uint32(t) / m.SizeX
}

// Contains reports whether t lies on the map.
func (m Map) Contains(t Index) bool {
	return uint32(t) < m.Size()
}

// Offset returns the tile at (x+dx, y+dy), or Invalid if that leaves the map.
func (m Map) Offset(t Index, dx, dy int) Index {
	x := int64(m.X(t)) + int64(dx)
	y := int64(m.Y(t)) + int64(dy)
	if x < 0 || y < 0 || x >= int64(m.SizeX) || y >= int64(m.SizeY) {
		return Invalid
	}
	return m.XY(uint32(x), uint32(y))
}

// Direction offsets in canonical enumeration order: +X, +Y, -X, -Y.
var neighbourOffsets = [4][2]int{
	{1, 0},
	{0, 1},
	{-1, 0},
	{0, -1},
}

// Neighbours returns the 4-connected neighbours of t in the order +X, +Y, -X, -Y.
// Entries that would leave the map are Invalid.
func (m Map) Neighbours(t Index) [4]Index {
	var out [4]Index
	for i, d := range neighbourOffsets {
		out[i] = m.Offset(t, d[0], d[1])
	}
	return out
}

// IsAdjacent reports whether a and b are 4-connected neighbours.
func (m Map) IsAdjacent(a, b Index) bool {
	dx := int64(m.X(b)) - int64(m.X(a))
	dy := int64(m.Y(b)) - int64(m.Y(a))
	return abs(dx)+abs(dy) == 1
}

// DistanceSquare returns the squared Euclidean distance between a and b.
func (m Map) DistanceSquare(a, b Index) uint64 {
	dx := int64(m.X(a)) - int64(m.X(b))
	dy := int64(m.Y(a)) - int64(m.Y(b))
	return uint64(dx*dx + dy*dy)
}

// DistanceManhattan returns |dx| + |dy| between a and b.
func (m Map) DistanceManhattan(a, b Index) uint32 {
	dx := int64(m.X(a)) - int64(m.X(b))
	dy := int64(m.Y(a)) - int64(m.Y(b))
	return uint32(abs(dx) + abs(dy))
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
