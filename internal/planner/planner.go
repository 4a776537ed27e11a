package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"commuter.routing.org/internal/graph"
	"commuter.routing.org/internal/logging"
	"commuter.routing.org/internal/utils"
)

const (
	DefaultMaxWalkKm = 3.0
	// DirectSpeedKmh is the assumed speed of the straight line fallback.
	DirectSpeedKmh = 20.0
)

// GraphSource supplies the current graph.
type GraphSource interface {
	Graph() (*graph.Graph, error)
}

// Planner turns trip requests into itineraries over the current graph.
type Planner struct {
	source    GraphSource
	now       func() time.Time
	location  *time.Location
	maxWalkKm float64
	logger    *slog.Logger
}

type Option func(*Planner)

// WithClock sets the time source used to snapshot each search.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// WithLocation sets the zone in which rush hours are evaluated.
func WithLocation(loc *time.Location) Option {
	return func(p *Planner) { p.location = loc }
}

// WithMaxWalkKm sets the default walking limit. Zero or less disables it.
func WithMaxWalkKm(km float64) Option {
	return func(p *Planner) { p.maxWalkKm = km }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

func New(source GraphSource, opts ...Option) *Planner {
	p := &Planner{
		source:    source,
		now:       time.Now,
		location:  time.Local,
		maxWalkKm: DefaultMaxWalkKm,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.OrDiscard(p.logger)
	return p
}

// Now returns the planner clock in its service location.
func (p *Planner) Now() time.Time {
	return p.now().In(p.location)
}

// Graph returns the graph the planner would search.
func (p *Planner) Graph() (*graph.Graph, error) {
	return p.source.Graph()
}

// tripEnd is a resolved origin or destination.
type tripEnd struct {
	point  Point
	stop   graph.Stop
	walkKm float64
	pinned bool
}

// Plan searches once per requested preference and assembles door to door itineraries.
// When no preference reaches the destination the plan holds a single direct fallback.
func (p *Planner) Plan(ctx context.Context, req Request) (Plan, error) {
	g, err := p.source.Graph()
	if err != nil {
		return Plan{}, err
	}

	prefs, err := normalizePreferences(req.Preferences)
	if err != nil {
		return Plan{}, err
	}

	origin, err := p.resolveEnd(g, "origin", req.Origin, req.OriginStopID)
	if err != nil {
		return Plan{}, err
	}
	destination, err := p.resolveEnd(g, "destination", req.Destination, req.DestinationStopID)
	if err != nil {
		return Plan{}, err
	}

	limit := p.maxWalkKm
	if req.MaxWalkKm != nil {
		limit = *req.MaxWalkKm
	}
	for _, end := range []struct {
		name string
		end  tripEnd
	}{{"origin", origin}, {"destination", destination}} {
		if !end.end.pinned && limit > 0 && end.end.walkKm > limit {
			return Plan{}, &WalkDistanceError{End: end.name, Stop: end.end.stop, DistanceKm: end.end.walkKm, LimitKm: limit}
		}
	}

	plan := Plan{AsOf: p.Now(), Graph: g}
	paths := make([]*graph.Path, len(prefs))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, pref := range prefs {
		eg.Go(func() error {
			asOf := p.Now()
			path, err := g.ShortestPath(egCtx, origin.stop.ID, destination.stop.ID, pref, asOf)
			if errors.Is(err, graph.ErrNoPath) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s search: %w", pref, err)
			}
			paths[i] = &path
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Plan{}, err
	}

	for i, pref := range prefs {
		if paths[i] == nil {
			plan.Unreachable = append(plan.Unreachable, pref)
			continue
		}
		plan.Itineraries = append(plan.Itineraries, buildItinerary(*paths[i], origin, destination))
	}

	if len(plan.Itineraries) == 0 {
		plan.Itineraries = []Itinerary{directFallback(origin.point, destination.point, plan.AsOf)}
	}

	p.logger.Debug("trip planned",
		slog.String("origin_stop", origin.stop.ID),
		slog.String("destination_stop", destination.stop.ID),
		slog.Int("itineraries", len(plan.Itineraries)),
		slog.Bool("fallback", plan.IsFallback()))

	return plan, nil
}

func normalizePreferences(prefs []graph.Preference) ([]graph.Preference, error) {
	if len(prefs) == 0 {
		return append([]graph.Preference(nil), graph.AllPreferences...), nil
	}

	seen := make(map[graph.Preference]bool, len(prefs))
	out := make([]graph.Preference, 0, len(prefs))
	for _, pref := range prefs {
		parsed, err := graph.ParsePreference(string(pref))
		if err != nil {
			return nil, err
		}
		if !seen[parsed] {
			seen[parsed] = true
			out = append(out, parsed)
		}
	}
	return out, nil
}

func (p *Planner) resolveEnd(g *graph.Graph, name string, point Point, stopID string) (tripEnd, error) {
	if stopID != "" {
		stop, ok := g.Stop(stopID)
		if !ok {
			return tripEnd{}, fmt.Errorf("%s: %w: %s", name, graph.ErrUnknownStop, stopID)
		}
		return tripEnd{point: stopPoint(stop), stop: stop, pinned: true}, nil
	}

	if !utils.IsFiniteCoordinate(point.Lat, point.Lng) ||
		utils.ValidateLatitude(point.Lat) != nil || utils.ValidateLongitude(point.Lng) != nil {
		return tripEnd{}, fmt.Errorf("%w: %s (%v, %v)", ErrInvalidLocation, name, point.Lat, point.Lng)
	}

	stop, km, ok := g.NearestStop(point.Lat, point.Lng)
	if !ok {
		return tripEnd{}, ErrNoTerminal
	}
	return tripEnd{point: point, stop: stop, walkKm: km}, nil
}

func buildItinerary(path graph.Path, origin, destination tripEnd) Itinerary {
	originStop := origin.stop
	destinationStop := destination.stop

	it := Itinerary{
		ID:              uuid.NewString(),
		Preference:      path.Preference,
		OriginStop:      &originStop,
		DestinationStop: &destinationStop,
		AsOf:            path.AsOf,
	}

	if walk, ok := walkSegment(origin.point, stopPoint(originStop), origin.walkKm, "", "Origin", originStop.ID, originStop.Name); ok {
		it.Segments = append(it.Segments, walk)
		it.Geometry.Lines = append(it.Geometry.Lines, newLine(GeometryWalk, []Point{origin.point, stopPoint(originStop)}))
	}

	it.Segments = append(it.Segments, path.Segments...)
	if len(path.Stops) > 1 {
		points := make([]Point, 0, len(path.Stops))
		for _, s := range path.Stops {
			points = append(points, stopPoint(s))
		}
		it.Geometry.Lines = append(it.Geometry.Lines, newLine(GeometryTransit, points))
	}

	if walk, ok := walkSegment(stopPoint(destinationStop), destination.point, destination.walkKm, destinationStop.ID, destinationStop.Name, "", "Destination"); ok {
		it.Segments = append(it.Segments, walk)
		it.Geometry.Lines = append(it.Geometry.Lines, newLine(GeometryWalk, []Point{stopPoint(destinationStop), destination.point}))
	}

	for _, seg := range it.Segments {
		it.TotalFare += seg.Fare
		it.TotalETA += seg.ETA
		it.TotalDistance += seg.Distance
	}
	return it
}

// walkSegment returns false for zero length walks. The route label carries the heading.
func walkSegment(from, to Point, km float64, fromID, fromName, toID, toName string) (graph.Segment, bool) {
	if km <= 0 {
		return graph.Segment{}, false
	}
	return graph.Segment{
		FromID:   fromID,
		ToID:     toID,
		From:     fromName,
		To:       toName,
		Mode:     graph.ModeWalking,
		Route:    "Walk " + utils.CompassDirection(from.Lat, from.Lng, to.Lat, to.Lng),
		ETA:      minutesAt(km, graph.WalkingSpeedKmh),
		Distance: km,
	}, true
}

func directFallback(origin, destination Point, asOf time.Time) Itinerary {
	km := utils.Haversine(origin.Lat, origin.Lng, destination.Lat, destination.Lng)
	seg := graph.Segment{
		From:     "Origin",
		To:       "Destination",
		Mode:     graph.ModeDirect,
		Route:    "Direct " + utils.CompassDirection(origin.Lat, origin.Lng, destination.Lat, destination.Lng),
		ETA:      minutesAt(km, DirectSpeedKmh),
		Distance: km,
	}
	return Itinerary{
		ID:               uuid.NewString(),
		Segments:         []graph.Segment{seg},
		TotalETA:         seg.ETA,
		TotalDistance:    km,
		Geometry:         Geometry{Lines: []GeometryLine{newLine(GeometryDirect, []Point{origin, destination})}},
		IsDirectFallback: true,
		AsOf:             asOf,
	}
}

// minutesAt rounds travel time up to whole minutes.
func minutesAt(km, speedKmh float64) int {
	return int(math.Ceil(km/speedKmh*60 - 1e-9))
}
