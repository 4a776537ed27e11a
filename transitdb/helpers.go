package transitdb

import "commuter.routing.org/internal/graph"

func rawStop(id, name string, lat, lng float64, stopType string) graph.RawStop {
	return graph.RawStop{ID: id, Name: name, Lat: lat, Lng: lng, Type: stopType}
}

func rawRoute(id, name, mode string, fare float64, waypoints []any) graph.RawRoute {
	return graph.RawRoute{ID: id, RouteName: name, Mode: mode, Fare: fare, Waypoints: waypoints}
}
