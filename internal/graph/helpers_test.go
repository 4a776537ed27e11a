package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var manila = time.FixedZone("PHT", 8*60*60)

// at returns a fixed instant at the given local hour.
func at(hour int) time.Time {
	return time.Date(2026, time.October, 19, hour, 0, 0, 0, manila)
}

var offPeak = at(14)

// corridorGraph has a direct tricycle S->T and a cheaper two-leg jeep S->M->T.
func corridorGraph(t *testing.T) *Graph {
	t.Helper()

	stops := []RawStop{
		{ID: "S", Name: "Santolan", Lat: 14.60, Lng: 121.00, Type: "terminal"},
		{ID: "M", Name: "Marikina Bridge", Lat: 14.60, Lng: 121.025, Type: "stop_point"},
		{ID: "T", Name: "Tumana", Lat: 14.60, Lng: 121.05, Type: "terminal"},
	}
	routes := []RawRoute{
		{ID: "r-tri", RouteName: "Santolan Tricycle", Mode: "tricycle", Fare: 30, Waypoints: []any{"S", "T"}},
		{ID: "r-jeep", RouteName: "Santolan-Tumana Jeep", Mode: "jeep", Fare: 8, Waypoints: []any{"S", "M", "T"}},
	}

	g, report := Build(stops, routes)
	require.Empty(t, report.Issues)
	require.Equal(t, 3, g.StopCount())
	require.Equal(t, 3, g.EdgeCount())
	return g
}
