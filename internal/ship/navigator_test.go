package ship

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/shipregions/internal/pathfind"
	"github.com/udisondev/shipregions/internal/region"
	"github.com/udisondev/shipregions/internal/testutil"
	"github.com/udisondev/shipregions/internal/tile"
	"github.com/udisondev/shipregions/internal/water"
)

// wallMap is open sea split by a wall at x=20 with a gap along the bottom.
func wallMap(t *testing.T) *water.Grid {
	t.Helper()
	var b strings.Builder
	for y := range 12 {
		for x := range 40 {
			switch {
			case x == 20 && y < 10:
				b.WriteByte('.')
			case x == 30 && y == 5:
				b.WriteByte('D')
			case x == 10 && y == 3:
				b.WriteByte('B')
			default:
				b.WriteByte('~')
			}
		}
		b.WriteByte('\n')
	}
	g, err := water.ParseString(b.String())
	require.NoError(t, err)
	return g
}

func newNavigator(t *testing.T, g *water.Grid) (*Navigator, *region.Manager) {
	t.Helper()
	m := region.NewManager("water", g, region.DefaultLimits())
	require.NoError(t, m.Build())
	g.SetHook(m)
	return NewNavigator(g, region.NewRouter(m, 0), 2, 0), m
}

func requireSailable(t *testing.T, g *water.Grid, path []tile.Index) {
	t.Helper()
	tm := g.Map()
	for i := 1; i < len(path); i++ {
		require.True(t, tm.IsAdjacent(path[i-1], path[i]), "step %d is not a single move", i)
		require.True(t, g.IsRoutable(path[i]), "step %d leaves the water", i)
		require.True(t, g.IsPassable(path[i-1], path[i]), "step %d is impassable", i)
	}
}

func TestRouteAroundWall(t *testing.T) {
	g := wallMap(t)
	nav, m := newNavigator(t, g)
	require.Greater(t, m.Count(), 2)
	tm := g.Map()
	from, dest := tm.XY(2, 2), tm.XY(37, 2)

	path, ok := nav.Route(&Ship{ID: 1}, from, dest, 400)

	require.True(t, ok)
	assert.Equal(t, dest, path[len(path)-1])
	requireSailable(t, g, path)

	throughGap := false
	for _, p := range path {
		if tm.X(p) == 20 {
			throughGap = true
			assert.GreaterOrEqual(t, tm.Y(p), uint32(10))
		}
	}
	assert.True(t, throughGap)
}

func TestChooseNextTileAtDestination(t *testing.T) {
	g := wallMap(t)
	nav, _ := newNavigator(t, g)
	at := g.Map().XY(5, 5)

	next, ok := nav.ChooseNextTile(nil, at, at)

	assert.True(t, ok)
	assert.Equal(t, at, next)
}

func TestChooseNextTileUnreachable(t *testing.T) {
	g, err := water.ParseString(strings.Join([]string{
		"~~~~..~~~~",
		"~~~~..~~~~",
		"~~~~..~~~~",
	}, "\n"))
	require.NoError(t, err)
	nav, _ := newNavigator(t, g)
	tm := g.Map()

	next, ok := nav.ChooseNextTile(&Ship{ID: 1}, tm.XY(0, 0), tm.XY(9, 2))

	assert.False(t, ok)
	assert.Equal(t, tile.Invalid, next)

	path, reached := nav.Route(&Ship{ID: 1}, tm.XY(0, 0), tm.XY(9, 2), 50)
	assert.False(t, reached)
	assert.Equal(t, []tile.Index{tm.XY(0, 0)}, path)
}

func TestRouteAfterTerrainEdit(t *testing.T) {
	g := wallMap(t)
	nav, m := newNavigator(t, g)
	tm := g.Map()

	// Close the gap at the bottom and open one at the top.
	for y := uint32(10); y < 12; y++ {
		g.Set(tm.XY(20, y), water.Tile{Kind: water.KindLand})
	}
	for y := uint32(0); y < 2; y++ {
		g.Set(tm.XY(20, y), water.Tile{Kind: water.KindWater, Class: water.ClassSea})
	}
	require.NoError(t, m.Validate())
	require.Empty(t, m.UnclaimedRoutable())

	path, ok := nav.Route(&Ship{ID: 2, MaxNodes: 5000}, tm.XY(2, 10), tm.XY(37, 10), 400)

	require.True(t, ok)
	requireSailable(t, g, path)
	for _, p := range path {
		if tm.X(p) == 20 {
			assert.Less(t, tm.Y(p), uint32(2))
		}
	}
}

func TestShorePenalty(t *testing.T) {
	rows := make([]string, 15)
	for y := range rows {
		row := []byte(strings.Repeat("~", 15))
		if y == 3 {
			row[7] = '.'
		}
		if y == 5 {
			row[2] = '='
		}
		rows[y] = string(row)
	}
	g, err := water.ParseString(strings.Join(rows, "\n"))
	require.NoError(t, err)
	tm := g.Map()
	s := &tileSearch{grid: g}
	parent := &pathfind.Node[tile.Index]{Cost: 1000}

	cost := func(x, y uint32) int {
		n := &pathfind.Node[tile.Index]{Key: tm.XY(x, y), Parent: parent}
		require.True(t, s.CalcCost(n))
		return n.Cost - parent.Cost
	}

	assert.Equal(t, TileLength, cost(7, 7), "open sea")
	assert.Equal(t, TileLength+ShorePenalty, cost(7, 5), "one land tile among the probes")
	assert.Equal(t, TileLength+ShorePenalty, cost(7, 6), "probe reaches three tiles")
	assert.Equal(t, TileLength, cost(7, 2), "land plus the map edge makes two")
	assert.Equal(t, TileLength, cost(2, 5), "canals are never penalised")
}

func TestShipSearchBudget(t *testing.T) {
	var s *Ship
	assert.Zero(t, s.MaxSearchNodes())
	assert.Equal(t, 7, (&Ship{MaxNodes: 7}).MaxSearchNodes())
}

func TestRouteThroughLock(t *testing.T) {
	g := testutil.WaterGrid(t, testutil.Harbour)
	m := testutil.BuiltManager(t, g)
	nav := NewNavigator(g, region.NewRouter(m, 0), 2, 0)
	tm := g.Map()
	from, dest := tm.XY(25, 2), tm.XY(3, 13)

	path, ok := nav.Route(&Ship{ID: 3}, from, dest, 300)

	require.True(t, ok)
	requireSailable(t, g, path)
	assert.Contains(t, path, tm.XY(4, 13), "the only way in is the lock")
}

func TestLeaveDepotAlongAxis(t *testing.T) {
	g := testutil.WaterGrid(t, testutil.Harbour)
	m := testutil.BuiltManager(t, g)
	nav := NewNavigator(g, region.NewRouter(m, 0), 2, 0)
	tm := g.Map()
	depot := tm.XY(20, 11)

	next, ok := nav.ChooseNextTile(&Ship{ID: 4}, depot, tm.XY(25, 12))

	require.True(t, ok)
	assert.Equal(t, tm.XY(20, 12), next)
}
