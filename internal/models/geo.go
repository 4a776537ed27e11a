package models

import "commuter.routing.org/internal/planner"

type CoordinatePoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func newCoordinatePoints(points []planner.Point) []CoordinatePoint {
	out := make([]CoordinatePoint, 0, len(points))
	for _, p := range points {
		out = append(out, CoordinatePoint{Lat: p.Lat, Lon: p.Lng})
	}
	return out
}
