package region

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/shipregions/internal/tile"
)

// gridTerrain is a minimal Terrain: '~' is routable, anything else is not,
// and every pair of routable neighbours is passable unless blocked.
type gridTerrain struct {
	tm       tile.Map
	routable []bool
	ids      []ID
	blocked  map[[2]tile.Index]bool
}

func newTerrain(t testing.TB, rows ...string) *gridTerrain {
	t.Helper()
	require.NotEmpty(t, rows)
	w := len(rows[0])
	tm := tile.NewMap(uint32(w), uint32(len(rows)))
	g := &gridTerrain{
		tm:       tm,
		routable: make([]bool, tm.Size()),
		ids:      make([]ID, tm.Size()),
		blocked:  make(map[[2]tile.Index]bool),
	}
	for y, row := range rows {
		require.Len(t, row, w, "row %d", y)
		for x, ch := range row {
			g.routable[tm.XY(uint32(x), uint32(y))] = ch == '~'
		}
	}
	return g
}

// filledTerrain returns a w by h map of land with routable rectangles.
func filledTerrain(t testing.TB, w, h int, rects ...[4]int) *gridTerrain {
	t.Helper()
	rows := make([]string, h)
	for y := range h {
		row := []byte(strings.Repeat(".", w))
		for _, r := range rects {
			x0, y0, x1, y1 := r[0], r[1], r[2], r[3]
			if y < y0 || y > y1 {
				continue
			}
			for x := x0; x <= x1; x++ {
				row[x] = '~'
			}
		}
		rows[y] = string(row)
	}
	return newTerrain(t, rows...)
}

func (g *gridTerrain) Map() tile.Map { return g.tm }

func (g *gridTerrain) IsRoutable(t tile.Index) bool {
	return g.tm.Contains(t) && g.routable[t]
}

func (g *gridTerrain) IsPassable(from, to tile.Index) bool {
	return !g.blocked[[2]tile.Index{from, to}] && !g.blocked[[2]tile.Index{to, from}]
}

func (g *gridTerrain) RegionID(t tile.Index) ID {
	if !g.tm.Contains(t) || !g.routable[t] {
		return NoRegion
	}
	return g.ids[t]
}

func (g *gridTerrain) SetRegionID(t tile.Index, id ID) {
	if g.tm.Contains(t) {
		g.ids[t] = id
	}
}

func (g *gridTerrain) at(x, y int) tile.Index {
	return g.tm.XY(uint32(x), uint32(y))
}

// requireConsistent checks the structural invariants and full coverage.
func requireConsistent(t testing.TB, m *Manager) {
	t.Helper()
	require.NoError(t, m.Validate())
	require.Empty(t, m.UnclaimedRoutable(), "every routable tile is claimed")
}

func totalTiles(m *Manager) int {
	n := 0
	for _, r := range m.Regions() {
		n += r.NumTiles()
	}
	return n
}

type snapshot map[ID][]tile.Index

func takeSnapshot(m *Manager) snapshot {
	s := make(snapshot)
	for _, r := range m.Regions() {
		s[r.ID()] = r.Tiles()
	}
	return s
}

// setRoutable flips a tile, dropping any stale id the way real terrain does.
func (g *gridTerrain) setRoutable(t tile.Index, on bool) {
	g.routable[t] = on
	g.ids[t] = NoRegion
}
