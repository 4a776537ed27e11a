package models

import "commuter.routing.org/internal/graph"

type RouteReference struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Mode graph.Mode `json:"mode"`
	Fare float64    `json:"fare"`
}

func NewRouteReference(e graph.Edge) RouteReference {
	return RouteReference{
		ID:   e.RouteID,
		Name: e.RouteName,
		Mode: e.Mode,
		Fare: e.Fare,
	}
}
