package region

import (
	"log/slog"
	"slices"

	"github.com/udisondev/shipregions/internal/pathfind"
	"github.com/udisondev/shipregions/internal/tile"
)

// Vehicle supplies per-vehicle search limits. A nil Vehicle uses the router default.
type Vehicle interface {
	MaxSearchNodes() int
}

// regionSearch plugs the region graph into the generic best-first search.
// Nodes are keyed by region handle; the handle id doubles as the hash.
type regionSearch struct {
	m      *Manager
	origin *Region
	dest   *Region
}

func (s *regionSearch) strategy() pathfind.Strategy[Handle] {
	return pathfind.Strategy[Handle]{Origin: s, Destination: s, Follower: s, Cost: s}
}

func (s *regionSearch) Origins() []Handle {
	return []Handle{s.origin.Handle()}
}

func (s *regionSearch) IsDestination(n *pathfind.Node[Handle]) bool {
	return n.Key == s.dest.Handle()
}

// CalcEstimate adds the centre distance to the destination. The estimate is
// kept from dropping below the parent's.
func (s *regionSearch) CalcEstimate(n *pathfind.Node[Handle]) {
	if s.IsDestination(n) {
		n.Estimate = n.Cost
		return
	}
	r := s.m.arena.get(n.Key)
	n.Estimate = n.Cost + r.DistanceTo(s.dest)
	if n.Parent == nil {
		return
	}
	if n.Estimate < n.Parent.Estimate {
		n.Estimate++
	}
	if n.Estimate < n.Parent.Estimate {
		slog.Warn("region estimate below parent",
			"region", n.Key.ID,
			"estimate", n.Estimate,
			"parent_estimate", n.Parent.Estimate)
		n.Estimate = n.Parent.Estimate
	}
}

func (s *regionSearch) Follow(n *pathfind.Node[Handle]) []Handle {
	r := s.m.arena.get(n.Key)
	if r == nil {
		return nil
	}
	return r.neighbours.Handles()
}

// CalcCost charges the centre distance plus one per hop.
func (s *regionSearch) CalcCost(n *pathfind.Node[Handle]) bool {
	r := s.m.arena.get(n.Key)
	parent := s.m.arena.get(n.Parent.Key)
	if r == nil || parent == nil {
		return false
	}
	n.Cost = n.Parent.Cost + r.DistanceTo(parent) + 1
	return true
}

// Router answers coarse route queries over a manager's regions.
type Router struct {
	m        *Manager
	maxNodes int
	last     []tile.Index
}

// NewRouter returns a Router expanding at most maxNodes regions per query.
func NewRouter(m *Manager, maxNodes int) *Router {
	if maxNodes <= 0 {
		maxNodes = pathfind.DefaultMaxNodes
	}
	return &Router{m: m, maxNodes: maxNodes}
}

// Manager returns the manager the router searches.
func (rt *Router) Manager() *Manager { return rt.m }

// ChooseIntermediateDestinations returns up to regionsAhead waypoint tiles
// from start towards end, furthest ahead first. If both tiles share a region
// the result is just end. If no route exists pathNotFound is set and the
// result is just start.
func (rt *Router) ChooseIntermediateDestinations(v Vehicle, start, end tile.Index, regionsAhead int) (route []tile.Index, pathNotFound bool) {
	if !rt.m.active {
		rt.m.FindRegionsFromScratch()
	}

	origin := rt.m.RegionAt(start)
	dest := rt.m.RegionAt(end)
	if origin == nil || dest == nil {
		return rt.remember([]tile.Index{start}), true
	}
	if origin == dest {
		return rt.remember([]tile.Index{end}), false
	}

	maxNodes := rt.maxNodes
	if v != nil && v.MaxSearchNodes() > 0 {
		maxNodes = v.MaxSearchNodes()
	}

	s := &regionSearch{m: rt.m, origin: origin, dest: dest}
	pf := pathfind.New(s.strategy(), maxNodes)
	if !pf.FindPath() {
		slog.Debug("region route not found",
			"domain", rt.m.name,
			"from", origin.id,
			"to", dest.id,
			"expanded", pf.Expanded())
		return rt.remember([]tile.Index{start}), true
	}

	// Walk back from the destination; the list runs from the goal towards the origin.
	for n := pf.BestNode(); n != nil && n.Parent != nil; n = n.Parent {
		route = append(route, rt.m.arena.get(n.Key).center)
	}
	if regionsAhead > 0 && len(route) > regionsAhead {
		route = route[len(route)-regionsAhead:]
	}
	return rt.remember(route), false
}

func (rt *Router) remember(route []tile.Index) []tile.Index {
	rt.last = slices.Clone(route)
	return route
}

// LastRoute returns a copy of the waypoints from the most recent query, for
// debug overlays.
func (rt *Router) LastRoute() []tile.Index {
	return slices.Clone(rt.last)
}
