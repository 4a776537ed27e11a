package graph

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"commuter.routing.org/internal/utils"
)

// Graph is an immutable adjacency structure over stops and route edges.
// A rebuild produces a new Graph; existing handles stay valid and unchanged,
// so concurrent searches on one Graph need no locking.
type Graph struct {
	stops     map[string]Stop
	order     []string
	adjacency map[string][]Edge
	edgeCount int
	builtAt   time.Time
}

// BuildReport summarizes the records accepted and rejected during a build.
type BuildReport struct {
	StopsLoaded   int            `json:"stopsLoaded"`
	StopsDropped  int            `json:"stopsDropped"`
	RoutesLoaded  int            `json:"routesLoaded"`
	RoutesDropped int            `json:"routesDropped"`
	EdgesBuilt    int            `json:"edgesBuilt"`
	EdgesDropped  int            `json:"edgesDropped"`
	Issues        []*RecordError `json:"issues,omitempty"`
	Duration      time.Duration  `json:"-"`
}

// CountIssues returns the number of issues of the given kind.
func (r BuildReport) CountIssues(kind IssueKind) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			n++
		}
	}
	return n
}

type buildOptions struct {
	logger *slog.Logger
	now    func() time.Time
}

type BuildOption func(*buildOptions)

// WithLogger reports the build summary and every data quality issue to logger.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		o.logger = logger
	}
}

// Build parses raw records and assembles a new Graph. Malformed records never fail the
// build; they are excluded and listed in the report.
func Build(rawStops []RawStop, rawRoutes []RawRoute, opts ...BuildOption) (*Graph, BuildReport) {
	var report BuildReport

	stops := make([]Stop, 0, len(rawStops))
	for _, raw := range rawStops {
		stop, err := ParseStop(raw)
		if err != nil {
			report.StopsDropped++
			report.Issues = append(report.Issues, asRecordError(err))
			continue
		}
		stops = append(stops, stop)
	}

	routes := make([]Route, 0, len(rawRoutes))
	for _, raw := range rawRoutes {
		route, issues, err := ParseRoute(raw)
		report.Issues = append(report.Issues, issues...)
		if err != nil {
			report.RoutesDropped++
			report.Issues = append(report.Issues, asRecordError(err))
			continue
		}
		routes = append(routes, route)
	}

	return assemble(stops, routes, report, opts...)
}

// New assembles a Graph from already typed stops and routes.
func New(stops []Stop, routes []Route, opts ...BuildOption) (*Graph, BuildReport) {
	return assemble(stops, routes, BuildReport{}, opts...)
}

func assemble(stops []Stop, routes []Route, report BuildReport, opts ...BuildOption) (*Graph, BuildReport) {
	o := buildOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	start := o.now()

	g := &Graph{
		stops:     make(map[string]Stop, len(stops)),
		order:     make([]string, 0, len(stops)),
		adjacency: make(map[string][]Edge, len(stops)),
	}

	for _, stop := range stops {
		if _, exists := g.stops[stop.ID]; exists {
			report.Issues = append(report.Issues, &RecordError{Kind: IssueDuplicateStop, Record: "stop", ID: stop.ID, Reason: "later record replaces earlier one"})
		} else {
			g.order = append(g.order, stop.ID)
		}
		g.stops[stop.ID] = stop
	}
	report.StopsLoaded = len(g.order)

	for _, route := range routes {
		report.RoutesLoaded++
		if len(route.Waypoints) < 2 {
			report.Issues = append(report.Issues, &RecordError{Kind: IssueShortRoute, Record: "route", ID: route.ID, Reason: "fewer than two waypoints"})
			continue
		}

		for i := 0; i < len(route.Waypoints)-1; i++ {
			fromID, toID := route.Waypoints[i], route.Waypoints[i+1]
			from, okFrom := g.stops[fromID]
			to, okTo := g.stops[toID]
			if !okFrom || !okTo {
				report.EdgesDropped++
				report.Issues = append(report.Issues, &RecordError{Kind: IssueUnknownWaypoint, Record: "route", ID: route.ID, Reason: "edge " + fromID + " -> " + toID + " references an unknown stop"})
				continue
			}

			g.adjacency[fromID] = append(g.adjacency[fromID], Edge{
				From:      fromID,
				To:        toID,
				Distance:  utils.Haversine(from.Lat, from.Lng, to.Lat, to.Lng),
				Mode:      route.Mode,
				Fare:      route.Fare,
				RouteID:   route.ID,
				RouteName: route.Name,
			})
			g.edgeCount++
		}
	}
	report.EdgesBuilt = g.edgeCount

	g.builtAt = o.now()
	report.Duration = g.builtAt.Sub(start)

	if o.logger != nil {
		for _, issue := range report.Issues {
			o.logger.Warn("transit record excluded",
				slog.String("kind", string(issue.Kind)),
				slog.String("record", issue.Record),
				slog.String("id", issue.ID),
				slog.String("reason", issue.Reason))
		}
		o.logger.Info("transit graph built",
			slog.Int("stops", report.StopsLoaded),
			slog.Int("stops_dropped", report.StopsDropped),
			slog.Int("routes", report.RoutesLoaded),
			slog.Int("routes_dropped", report.RoutesDropped),
			slog.Int("edges", report.EdgesBuilt),
			slog.Int("edges_dropped", report.EdgesDropped),
			slog.Duration("duration", report.Duration))
	}

	return g, report
}

func asRecordError(err error) *RecordError {
	var recErr *RecordError
	if errors.As(err, &recErr) {
		return recErr
	}
	return &RecordError{Reason: err.Error()}
}

// StopCount returns the number of stops in the graph.
func (g *Graph) StopCount() int {
	return len(g.order)
}

// EdgeCount returns the number of directed edges in the graph.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// BuiltAt returns when the graph finished building.
func (g *Graph) BuiltAt() time.Time {
	return g.builtAt
}

// Stop looks up a stop by id.
func (g *Graph) Stop(id string) (Stop, bool) {
	stop, ok := g.stops[id]
	return stop, ok
}

// Stops returns all stops in input order.
func (g *Graph) Stops() []Stop {
	stops := make([]Stop, 0, len(g.order))
	for _, id := range g.order {
		stops = append(stops, g.stops[id])
	}
	return stops
}

// EdgesFrom returns the outgoing edges of a stop in route order.
func (g *Graph) EdgesFrom(id string) []Edge {
	edges := g.adjacency[id]
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// TotalWeight sums EdgeWeight over every edge for the given preference and instant.
func (g *Graph) TotalWeight(p Preference, asOf time.Time) float64 {
	total := 0.0
	for _, id := range g.order {
		for _, e := range g.adjacency[id] {
			total += EdgeWeight(e, p, asOf)
		}
	}
	return total
}

// NearestStop returns the stop closest to the coordinate and its distance in kilometers.
// The first stop in input order wins ties. ok is false only when the graph has no stops.
func (g *Graph) NearestStop(lat, lng float64) (stop Stop, distanceKm float64, ok bool) {
	distanceKm = math.Inf(1)
	for _, id := range g.order {
		candidate := g.stops[id]
		d := utils.Haversine(lat, lng, candidate.Lat, candidate.Lng)
		if d < distanceKm {
			distanceKm = d
			stop = candidate
			ok = true
		}
	}
	if !ok {
		return Stop{}, 0, false
	}
	return stop, distanceKm, true
}
