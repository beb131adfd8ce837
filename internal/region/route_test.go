package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/shipregions/internal/pathfind"
	"github.com/udisondev/shipregions/internal/tile"
)

type testVehicle int

func (v testVehicle) MaxSearchNodes() int { return int(v) }

func TestRouteWithinOneRegion(t *testing.T) {
	g := filledTerrain(t, 10, 10, [4]int{0, 0, 7, 7})
	m := NewManager("water", g, DefaultLimits())
	rt := NewRouter(m, 0)

	route, notFound := rt.ChooseIntermediateDestinations(nil, g.at(0, 0), g.at(7, 7), 2)

	assert.True(t, m.Active(), "the first query builds regions")
	assert.False(t, notFound)
	assert.Equal(t, []tile.Index{g.at(7, 7)}, route)
	assert.Equal(t, route, rt.LastRoute())
}

func TestRouteUnreachable(t *testing.T) {
	g := filledTerrain(t, 20, 5, [4]int{0, 0, 4, 4}, [4]int{10, 0, 14, 4})
	m := NewManager("water", g, DefaultLimits())
	rt := NewRouter(m, 0)

	start := g.at(1, 1)
	route, notFound := rt.ChooseIntermediateDestinations(nil, start, g.at(12, 2), 2)

	assert.True(t, notFound)
	assert.Equal(t, []tile.Index{start}, route)
}

func TestRouteFromUnclaimedTile(t *testing.T) {
	g := filledTerrain(t, 10, 10, [4]int{0, 0, 4, 4})
	m := NewManager("water", g, DefaultLimits())
	require.NoError(t, m.Build())
	rt := NewRouter(m, 0)

	land := g.at(8, 8)
	route, notFound := rt.ChooseIntermediateDestinations(nil, land, g.at(1, 1), 2)

	assert.True(t, notFound)
	assert.Equal(t, []tile.Index{land}, route)
}

func TestRouteAlongCanal(t *testing.T) {
	g := filledTerrain(t, 300, 3, [4]int{0, 0, 299, 2})
	m := NewManager("water", g, DefaultLimits())
	require.NoError(t, m.Build())
	require.Greater(t, m.Count(), 4)
	rt := NewRouter(m, 0)

	start, end := g.at(0, 1), g.at(299, 1)
	full, notFound := rt.ChooseIntermediateDestinations(testVehicle(1000), start, end, 0)
	require.False(t, notFound)
	require.GreaterOrEqual(t, len(full), 3)

	assert.Same(t, m.RegionAt(end), m.RegionAt(full[0]), "the list starts at the goal")
	last := m.RegionAt(full[len(full)-1])
	assert.True(t, last.Neighbours().Has(m.RegionAt(start)), "and ends next to the origin")

	ahead, notFound := rt.ChooseIntermediateDestinations(nil, start, end, 2)
	require.False(t, notFound)
	require.Len(t, ahead, 2)
	assert.Equal(t, full[len(full)-2:], ahead)
	assert.Greater(t, g.tm.X(ahead[0]), g.tm.X(ahead[1]), "furthest ahead first")
	assert.Equal(t, ahead, rt.LastRoute())
}

func TestRouteNodeBudget(t *testing.T) {
	g := filledTerrain(t, 300, 3, [4]int{0, 0, 299, 2})
	m := NewManager("water", g, DefaultLimits())
	require.NoError(t, m.Build())
	rt := NewRouter(m, 0)

	start := g.at(0, 1)
	route, notFound := rt.ChooseIntermediateDestinations(testVehicle(1), start, g.at(299, 1), 2)

	assert.True(t, notFound)
	assert.Equal(t, []tile.Index{start}, route)
}

func TestLastRouteIsACopy(t *testing.T) {
	g := filledTerrain(t, 10, 10, [4]int{0, 0, 7, 7})
	m := NewManager("water", g, DefaultLimits())
	rt := NewRouter(m, 0)
	rt.ChooseIntermediateDestinations(nil, g.at(0, 0), g.at(7, 7), 2)

	got := rt.LastRoute()
	got[0] = tile.Invalid

	assert.Equal(t, g.at(7, 7), rt.LastRoute()[0])
}

func TestRegionEstimateNeverDropsBelowParent(t *testing.T) {
	g := filledTerrain(t, 40, 5, [4]int{0, 0, 4, 4}, [4]int{30, 0, 34, 4})
	m := NewManager("water", g, DefaultLimits())
	require.NoError(t, m.Build())
	a, b := m.Regions()[0], m.Regions()[1]
	s := &regionSearch{m: m, origin: a, dest: b}

	parent := &pathfind.Node[Handle]{Key: a.Handle(), Estimate: 10_000}
	n := &pathfind.Node[Handle]{Key: a.Handle(), Parent: parent}
	s.CalcEstimate(n)
	assert.Equal(t, 10_000, n.Estimate)

	n = &pathfind.Node[Handle]{Key: a.Handle()}
	s.CalcEstimate(n)
	assert.Equal(t, a.DistanceTo(b), n.Estimate)

	n = &pathfind.Node[Handle]{Key: b.Handle(), Cost: 42, Parent: parent}
	s.CalcEstimate(n)
	assert.Equal(t, 42, n.Estimate, "the destination estimates its own cost")
}

func TestRegionCostAddsOnePerHop(t *testing.T) {
	g := filledTerrain(t, 40, 5, [4]int{0, 0, 4, 4}, [4]int{30, 0, 34, 4})
	m := NewManager("water", g, DefaultLimits())
	require.NoError(t, m.Build())
	a, b := m.Regions()[0], m.Regions()[1]
	s := &regionSearch{m: m, origin: a, dest: b}

	parent := &pathfind.Node[Handle]{Key: a.Handle(), Cost: 7}
	n := &pathfind.Node[Handle]{Key: b.Handle(), Parent: parent}

	require.True(t, s.CalcCost(n))
	assert.Equal(t, 7+300+1, n.Cost)
}
