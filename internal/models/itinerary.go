package models

import (
	"commuter.routing.org/internal/graph"
	"commuter.routing.org/internal/planner"
)

type Segment struct {
	From       string     `json:"from"`
	To         string     `json:"to"`
	FromStopID string     `json:"fromStopId,omitempty"`
	ToStopID   string     `json:"toStopId,omitempty"`
	Mode       graph.Mode `json:"mode"`
	Route      string     `json:"route"`
	Fare       float64    `json:"fare"`
	Eta        int        `json:"eta"`
	DistanceKm float64    `json:"distanceKm"`
}

func NewSegments(segments []graph.Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		out = append(out, Segment{
			From:       s.From,
			To:         s.To,
			FromStopID: s.FromID,
			ToStopID:   s.ToID,
			Mode:       s.Mode,
			Route:      s.Route,
			Fare:       s.Fare,
			Eta:        s.ETA,
			DistanceKm: roundKm(s.Distance),
		})
	}
	return out
}

type GeometryLine struct {
	Kind     planner.GeometryKind `json:"kind"`
	Points   []CoordinatePoint    `json:"points"`
	Polyline string               `json:"polyline"`
}

type Itinerary struct {
	ID                string           `json:"id"`
	Preference        graph.Preference `json:"preference,omitempty"`
	Segments          []Segment        `json:"segments"`
	TotalFare         float64          `json:"totalFare"`
	TotalEta          int              `json:"totalEta"`
	TotalDistanceKm   float64          `json:"totalDistanceKm"`
	Geometry          []GeometryLine   `json:"geometry"`
	IsDirectFallback  bool             `json:"isDirectFallback"`
	OriginStopID      string           `json:"originStopId,omitempty"`
	DestinationStopID string           `json:"destinationStopId,omitempty"`
	AsOf              int64            `json:"asOf"`
}

func NewItinerary(it planner.Itinerary) Itinerary {
	model := Itinerary{
		ID:               it.ID,
		Preference:       it.Preference,
		Segments:         NewSegments(it.Segments),
		TotalFare:        it.TotalFare,
		TotalEta:         it.TotalETA,
		TotalDistanceKm:  roundKm(it.TotalDistance),
		Geometry:         make([]GeometryLine, 0, len(it.Geometry.Lines)),
		IsDirectFallback: it.IsDirectFallback,
		AsOf:             it.AsOf.UnixMilli(),
	}
	if it.OriginStop != nil {
		model.OriginStopID = it.OriginStop.ID
	}
	if it.DestinationStop != nil {
		model.DestinationStopID = it.DestinationStop.ID
	}
	for _, line := range it.Geometry.Lines {
		model.Geometry = append(model.Geometry, GeometryLine{
			Kind:     line.Kind,
			Points:   newCoordinatePoints(line.Points),
			Polyline: line.Polyline,
		})
	}
	return model
}

// TripPlanEntry is the entry of a plan-trip response.
type TripPlanEntry struct {
	Itineraries      []Itinerary        `json:"itineraries"`
	Unreachable      []graph.Preference `json:"unreachable"`
	IsDirectFallback bool               `json:"isDirectFallback"`
	AsOf             int64              `json:"asOf"`
}

func NewTripPlanEntry(plan planner.Plan) TripPlanEntry {
	entry := TripPlanEntry{
		Itineraries:      make([]Itinerary, 0, len(plan.Itineraries)),
		Unreachable:      []graph.Preference{},
		IsDirectFallback: plan.IsFallback(),
		AsOf:             plan.AsOf.UnixMilli(),
	}
	for _, it := range plan.Itineraries {
		entry.Itineraries = append(entry.Itineraries, NewItinerary(it))
	}
	entry.Unreachable = append(entry.Unreachable, plan.Unreachable...)
	return entry
}

// PathEntry is a stop to stop result without walking legs.
type PathEntry struct {
	FromStopID      string           `json:"fromStopId"`
	ToStopID        string           `json:"toStopId"`
	Preference      graph.Preference `json:"preference"`
	StopIDs         []string         `json:"stopIds"`
	Segments        []Segment        `json:"segments"`
	TotalFare       float64          `json:"totalFare"`
	TotalEta        int              `json:"totalEta"`
	TotalDistanceKm float64          `json:"totalDistanceKm"`
	AsOf            int64            `json:"asOf"`
}

func NewPathEntry(path graph.Path, fromID, toID string) PathEntry {
	entry := PathEntry{
		FromStopID:      fromID,
		ToStopID:        toID,
		Preference:      path.Preference,
		StopIDs:         make([]string, 0, len(path.Stops)),
		Segments:        NewSegments(path.Segments),
		TotalFare:       path.TotalFare,
		TotalEta:        path.TotalETA,
		TotalDistanceKm: roundKm(path.TotalDistance),
		AsOf:            path.AsOf.UnixMilli(),
	}
	for _, s := range path.Stops {
		entry.StopIDs = append(entry.StopIDs, s.ID)
	}
	return entry
}
