package models

import (
	"math"

	"commuter.routing.org/internal/graph"
)

type Stop struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Type     string   `json:"type"`
	RouteIDs []string `json:"routeIds"`
}

func NewStop(s graph.Stop, routeIDs []string) Stop {
	if routeIDs == nil {
		routeIDs = []string{}
	}
	return Stop{
		ID:       s.ID,
		Name:     s.Name,
		Lat:      s.Lat,
		Lon:      s.Lng,
		Type:     s.Type,
		RouteIDs: routeIDs,
	}
}

// NearestStopEntry is a stop with the walk needed to reach it.
type NearestStopEntry struct {
	Stop
	DistanceKm  float64 `json:"distanceKm"`
	WalkMinutes int     `json:"walkMinutes"`
	Direction   string  `json:"direction"`
}

func NewNearestStopEntry(stop Stop, distanceKm float64, direction string) NearestStopEntry {
	return NearestStopEntry{
		Stop:        stop,
		DistanceKm:  roundKm(distanceKm),
		WalkMinutes: int(math.Ceil(distanceKm/graph.WalkingSpeedKmh*60 - 1e-9)),
		Direction:   direction,
	}
}

func roundKm(km float64) float64 {
	return math.Round(km*1000) / 1000
}

// WalkLimitEntry describes a trip end that is too far from its nearest stop.
type WalkLimitEntry struct {
	End        string  `json:"end"`
	StopID     string  `json:"stopId"`
	StopName   string  `json:"stopName"`
	DistanceKm float64 `json:"distanceKm"`
	LimitKm    float64 `json:"limitKm"`
}
