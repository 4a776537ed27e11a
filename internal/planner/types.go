package planner

import (
	"time"

	"commuter.routing.org/internal/graph"
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Request describes a trip between two points. Setting a stop id pins that end to the
// stop: no walking leg is added and the walking limit does not apply.
type Request struct {
	Origin      Point
	Destination Point
	// Preferences defaults to cheapest, fastest and recommended.
	Preferences []graph.Preference
	// MaxWalkKm overrides the planner limit. Zero or less disables it.
	MaxWalkKm         *float64
	OriginStopID      string
	DestinationStopID string
}

type GeometryKind string

const (
	GeometryWalk    GeometryKind = "walk"
	GeometryTransit GeometryKind = "transit"
	GeometryDirect  GeometryKind = "direct"
)

// GeometryLine is one drawable leg of an itinerary.
type GeometryLine struct {
	Kind     GeometryKind `json:"kind"`
	Points   []Point      `json:"points"`
	Polyline string       `json:"polyline"`
}

type Geometry struct {
	Lines []GeometryLine `json:"lines"`
}

// Itinerary is one complete door to door option.
type Itinerary struct {
	ID               string           `json:"id"`
	Preference       graph.Preference `json:"preference,omitempty"`
	Segments         []graph.Segment  `json:"segments"`
	TotalFare        float64          `json:"totalFare"`
	TotalETA         int              `json:"totalEta"`
	TotalDistance    float64          `json:"totalDistance"`
	Geometry         Geometry         `json:"geometry"`
	IsDirectFallback bool             `json:"isDirectFallback"`
	OriginStop       *graph.Stop      `json:"originStop,omitempty"`
	DestinationStop  *graph.Stop      `json:"destinationStop,omitempty"`
	AsOf             time.Time        `json:"asOf"`
}

// Plan holds one itinerary per reachable preference, or a single direct fallback. Graph is
// the network every itinerary was searched on.
type Plan struct {
	Itineraries []Itinerary        `json:"itineraries"`
	Unreachable []graph.Preference `json:"unreachable,omitempty"`
	AsOf        time.Time          `json:"asOf"`
	Graph       *graph.Graph       `json:"-"`
}

// Best returns the itinerary for p. A fallback plan answers every preference.
func (p Plan) Best(pref graph.Preference) (Itinerary, bool) {
	if pref == "" {
		pref = graph.Recommended
	}
	for _, it := range p.Itineraries {
		if it.IsDirectFallback || it.Preference == pref {
			return it, true
		}
	}
	return Itinerary{}, false
}

// IsFallback reports whether no preference found a transit path.
func (p Plan) IsFallback() bool {
	return len(p.Itineraries) == 1 && p.Itineraries[0].IsDirectFallback
}
