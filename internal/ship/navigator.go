// Package ship steers ships tile by tile, using region waypoints to keep each
// tile search short.
package ship

import (
	"log/slog"

	"github.com/udisondev/shipregions/internal/pathfind"
	"github.com/udisondev/shipregions/internal/region"
	"github.com/udisondev/shipregions/internal/tile"
	"github.com/udisondev/shipregions/internal/water"
)

// Tile search costs.
const (
	TileLength   = 100
	ShorePenalty = TileLength
	shoreProbe   = 3
)

// Ship is a vehicle with its own search budget.
type Ship struct {
	ID       int
	MaxNodes int
}

// MaxSearchNodes implements region.Vehicle.
func (s *Ship) MaxSearchNodes() int {
	if s == nil {
		return 0
	}
	return s.MaxNodes
}

// Navigator chooses ship moves.
type Navigator struct {
	grid         *water.Grid
	router       *region.Router
	regionsAhead int
	maxNodes     int
}

// NewNavigator returns a Navigator over g. regionsAhead is how many region
// waypoints to request per move.
func NewNavigator(g *water.Grid, rt *region.Router, regionsAhead, maxNodes int) *Navigator {
	if regionsAhead <= 0 {
		regionsAhead = 2
	}
	return &Navigator{grid: g, router: rt, regionsAhead: regionsAhead, maxNodes: maxNodes}
}

// ChooseNextTile returns the tile a ship at from should move to next on its way
// to dest. pathFound is false when no route exists or when the move is only a
// best guess towards the nearest reachable point.
func (n *Navigator) ChooseNextTile(s *Ship, from, dest tile.Index) (next tile.Index, pathFound bool) {
	if from == dest {
		return dest, true
	}

	waypoints, notFound := n.router.ChooseIntermediateDestinations(s, from, dest, n.regionsAhead)
	if notFound {
		return tile.Invalid, false
	}

	maxNodes := n.maxNodes
	if s.MaxSearchNodes() > 0 {
		maxNodes = s.MaxSearchNodes()
	}

	// Waypoints come furthest first; fall back to nearer ones when the tile
	// search cannot reach the further ones within its budget.
	var best *pathfind.Node[tile.Index]
	found := false
	for _, wp := range waypoints {
		search := &tileSearch{grid: n.grid, from: from, to: wp}
		pf := pathfind.New(search.strategy(), maxNodes)
		found = pf.FindPath()
		best = pf.BestNode()
		if found {
			break
		}
	}
	if !found {
		slog.Debug("ship path only guessed", "from", from, "dest", dest)
	}

	if best == nil || best.Parent == nil {
		return tile.Invalid, false
	}
	for best.Parent.Parent != nil {
		best = best.Parent
	}
	return best.Key, found
}

// Route steps a ship from from to dest, at most maxSteps moves. It returns the
// visited tiles including from and whether dest was reached.
func (n *Navigator) Route(s *Ship, from, dest tile.Index, maxSteps int) ([]tile.Index, bool) {
	path := []tile.Index{from}
	cur := from
	for range maxSteps {
		if cur == dest {
			return path, true
		}
		next, _ := n.ChooseNextTile(s, cur, dest)
		if next == tile.Invalid {
			return path, false
		}
		path = append(path, next)
		cur = next
	}
	return path, cur == dest
}

// tileSearch is the fine tile-level strategy.
type tileSearch struct {
	grid *water.Grid
	from tile.Index
	to   tile.Index
}

func (s *tileSearch) strategy() pathfind.Strategy[tile.Index] {
	return pathfind.Strategy[tile.Index]{Origin: s, Destination: s, Follower: s, Cost: s}
}

func (s *tileSearch) Origins() []tile.Index { return []tile.Index{s.from} }

func (s *tileSearch) IsDestination(n *pathfind.Node[tile.Index]) bool { return n.Key == s.to }

func (s *tileSearch) CalcEstimate(n *pathfind.Node[tile.Index]) {
	n.Estimate = n.Cost + int(s.grid.Map().DistanceManhattan(n.Key, s.to))*TileLength
}

func (s *tileSearch) Follow(n *pathfind.Node[tile.Index]) []tile.Index {
	tm := s.grid.Map()
	out := make([]tile.Index, 0, 4)
	for _, nb := range tm.Neighbours(n.Key) {
		if nb == tile.Invalid || !s.grid.IsRoutable(nb) || !s.grid.IsPassable(n.Key, nb) {
			continue
		}
		out = append(out, nb)
	}
	return out
}

// CalcCost charges one tile length per step, plus a penalty for sea tiles with
// exactly one non-routable tile among the probes along the axes.
func (s *tileSearch) CalcCost(n *pathfind.Node[tile.Index]) bool {
	c := TileLength
	if s.grid.IsSea(n.Key) && s.shoreCount(n.Key) == 1 {
		c += ShorePenalty
	}
	n.Cost = n.Parent.Cost + c
	return true
}

func (s *tileSearch) shoreCount(t tile.Index) int {
	tm := s.grid.Map()
	count := 0
	for i := 1; i <= shoreProbe; i++ {
		for _, d := range [4][2]int{{i, 0}, {-i, 0}, {0, i}, {0, -i}} {
			if !s.grid.IsRoutable(tm.Offset(t, d[0], d[1])) {
				count++
			}
		}
	}
	return count
}
