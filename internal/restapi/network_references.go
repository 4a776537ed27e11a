package restapi

import (
	"sort"

	"commuter.routing.org/internal/graph"
	"commuter.routing.org/internal/models"
)

// networkIndex maps stops to the routes calling at them for one graph.
type networkIndex struct {
	graph      *graph.Graph
	stopRoutes map[string][]string
	routes     map[string]graph.Edge
}

func newNetworkIndex(g *graph.Graph) networkIndex {
	index := networkIndex{
		graph:      g,
		stopRoutes: make(map[string][]string),
		routes:     make(map[string]graph.Edge),
	}
	seen := make(map[[2]string]bool)
	add := func(stopID, routeID string) {
		key := [2]string{stopID, routeID}
		if seen[key] {
			return
		}
		seen[key] = true
		index.stopRoutes[stopID] = append(index.stopRoutes[stopID], routeID)
	}

	for _, stop := range g.Stops() {
		for _, e := range g.EdgesFrom(stop.ID) {
			if _, ok := index.routes[e.RouteID]; !ok {
				index.routes[e.RouteID] = e
			}
			add(e.From, e.RouteID)
			add(e.To, e.RouteID)
		}
	}
	for _, ids := range index.stopRoutes {
		sort.Strings(ids)
	}
	return index
}

func (n networkIndex) stop(s graph.Stop) models.Stop {
	return models.NewStop(s, n.stopRoutes[s.ID])
}

// addStop records the stop and every route calling at it. Unknown ids are ignored.
func (n networkIndex) addStop(c *models.ReferenceCollector, stopID string) {
	s, ok := n.graph.Stop(stopID)
	if !ok {
		return
	}
	c.AddStop(n.stop(s))
	for _, routeID := range n.stopRoutes[stopID] {
		c.AddRoute(models.NewRouteReference(n.routes[routeID]))
	}
}

func (n networkIndex) addSegments(c *models.ReferenceCollector, segments []graph.Segment) {
	for _, seg := range segments {
		n.addStop(c, seg.FromID)
		n.addStop(c, seg.ToID)
	}
}
