package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapCoordinates(t *testing.T) {
	m := NewMap(64, 32)

	tl := m.XY(10, 20)
	assert.Equal(t, Index(20*64+10), tl)
	assert.Equal(t, uint32(10), m.X(tl))
	assert.Equal(t, uint32(20), m.Y(tl))
	assert.True(t, m.Contains(tl))
	assert.False(t, m.Contains(Index(64*32)))
	assert.Equal(t, uint32(2048), m.Size())
}

func TestMapNeighbours(t *testing.T) {
	m := NewMap(8, 8)

	tests := []struct {
		name string
		x, y uint32
		want [4]Index
	}{
		{"interior", 3, 3, [4]Index{m.XY(4, 3), m.XY(3, 4), m.XY(2, 3), m.XY(3, 2)}},
		{"origin corner", 0, 0, [4]Index{m.XY(1, 0), m.XY(0, 1), Invalid, Invalid}},
		{"far corner", 7, 7, [4]Index{Invalid, Invalid, m.XY(6, 7), m.XY(7, 6)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Neighbours(m.XY(tt.x, tt.y)))
		})
	}
}

func TestMapDistances(t *testing.T) {
	m := NewMap(16, 16)

	assert.Equal(t, uint64(25), m.DistanceSquare(m.XY(0, 0), m.XY(3, 4)))
	assert.Equal(t, uint32(7), m.DistanceManhattan(m.XY(0, 0), m.XY(3, 4)))
	assert.True(t, m.IsAdjacent(m.XY(5, 5), m.XY(5, 6)))
	assert.False(t, m.IsAdjacent(m.XY(5, 5), m.XY(6, 6)))
	assert.False(t, m.IsAdjacent(m.XY(5, 5), m.XY(5, 5)))
}
