package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commuter.routing.org/internal/graph"
	"commuter.routing.org/internal/planner"
)

var manila = time.FixedZone("PHT", 8*60*60)

func TestReferenceCollector(t *testing.T) {
	c := NewReferenceCollector()
	c.AddStop(Stop{ID: "santolan", Name: "Santolan LRT"})
	c.AddStop(Stop{ID: "cubao", Name: "Cubao Terminal"})
	c.AddStop(Stop{ID: "cubao", Name: "Cubao Terminal"})
	c.AddStop(Stop{})
	c.AddRoute(RouteReference{ID: "jeep-cubao-parang", Mode: graph.ModeJeep})

	refs := c.References()
	require.Len(t, refs.Stops, 2)
	assert.Equal(t, "cubao", refs.Stops[0].ID)
	assert.Len(t, refs.Routes, 1)

	empty, err := json.Marshal(NewEmptyReferences())
	require.NoError(t, err)
	assert.JSONEq(t, `{"routes": [], "stops": []}`, string(empty))
}

func TestNewStop(t *testing.T) {
	stop := NewStop(graph.Stop{ID: "cubao", Name: "Cubao Terminal", Lat: 14.619, Lng: 121.0537, Type: "terminal"}, nil)
	assert.Equal(t, 121.0537, stop.Lon)
	assert.Equal(t, []string{}, stop.RouteIDs)

	entry := NewNearestStopEntry(stop, 0.41234, "NE")
	assert.Equal(t, 0.412, entry.DistanceKm)
	assert.Equal(t, 5, entry.WalkMinutes)
	assert.Equal(t, "cubao", entry.ID)

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"cubao"`)
	assert.Contains(t, string(data), `"walkMinutes":5`)
}

func TestNewTripPlanEntry(t *testing.T) {
	asOf := time.Date(2026, time.October, 19, 8, 0, 0, 0, manila)
	origin := graph.Stop{ID: "cubao", Name: "Cubao Terminal"}

	plan := planner.Plan{
		AsOf: asOf,
		Itineraries: []planner.Itinerary{{
			ID:         "it-1",
			Preference: graph.Fastest,
			Segments: []graph.Segment{
				{From: "Origin", To: "Cubao Terminal", ToID: "cubao", Mode: graph.ModeWalking, Route: "Walk N", ETA: 3, Distance: 0.2001},
				{From: "Cubao Terminal", To: "Santolan LRT", FromID: "cubao", ToID: "santolan", Mode: graph.ModeBus, Route: "Cubao - Santolan Bus", Fare: 15, ETA: 12, Distance: 3.4567},
			},
			TotalFare:     15,
			TotalETA:      15,
			TotalDistance: 3.6568,
			Geometry: planner.Geometry{Lines: []planner.GeometryLine{
				{Kind: planner.GeometryWalk, Points: []planner.Point{{Lat: 14.62, Lng: 121.05}, {Lat: 14.619, Lng: 121.0537}}, Polyline: "abc"},
			}},
			OriginStop: &origin,
			AsOf:       asOf,
		}},
		Unreachable: []graph.Preference{graph.Cheapest},
	}

	entry := NewTripPlanEntry(plan)
	assert.False(t, entry.IsDirectFallback)
	assert.Equal(t, asOf.UnixMilli(), entry.AsOf)
	assert.Equal(t, []graph.Preference{graph.Cheapest}, entry.Unreachable)
	require.Len(t, entry.Itineraries, 1)

	it := entry.Itineraries[0]
	assert.Equal(t, "cubao", it.OriginStopID)
	assert.Empty(t, it.DestinationStopID)
	assert.Equal(t, 3.657, it.TotalDistanceKm)
	assert.Equal(t, 3.457, it.Segments[1].DistanceKm)
	assert.Equal(t, "santolan", it.Segments[1].ToStopID)
	require.Len(t, it.Geometry, 1)
	assert.Equal(t, CoordinatePoint{Lat: 14.62, Lon: 121.05}, it.Geometry[0].Points[0])

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"totalEta":15`)
	assert.Contains(t, string(data), `"kind":"walk"`)
}

func TestNewTripPlanEntryFallback(t *testing.T) {
	plan := planner.Plan{
		Itineraries: []planner.Itinerary{{ID: "direct", IsDirectFallback: true}},
		Unreachable: graph.AllPreferences,
	}

	entry := NewTripPlanEntry(plan)
	assert.True(t, entry.IsDirectFallback)
	assert.Len(t, entry.Unreachable, 3)
	assert.Empty(t, entry.Itineraries[0].Preference)
}

func TestNewPathEntry(t *testing.T) {
	path := graph.Path{
		Stops:      []graph.Stop{{ID: "cubao"}, {ID: "santolan"}},
		Segments:   []graph.Segment{{FromID: "cubao", ToID: "santolan", Mode: graph.ModeBus, Fare: 15, ETA: 12, Distance: 3.5}},
		TotalFare:  15,
		TotalETA:   12,
		Preference: graph.Cheapest,
	}

	entry := NewPathEntry(path, "cubao", "santolan")
	assert.Equal(t, []string{"cubao", "santolan"}, entry.StopIDs)
	assert.Equal(t, graph.Cheapest, entry.Preference)
	assert.Len(t, entry.Segments, 1)
}

func TestNewCurrentTimeData(t *testing.T) {
	now := time.Date(2026, time.October, 19, 17, 30, 0, 0, manila)

	data := NewCurrentTimeData(now, true)
	assert.Equal(t, now.UnixMilli(), data.Entry.Time)
	assert.Equal(t, "2026-10-19T17:30:00+08:00", data.Entry.ReadableTime)
	assert.Equal(t, "PHT", data.Entry.Timezone)
	assert.True(t, data.Entry.RushHour)
	assert.Empty(t, data.References.Stops)
}

func TestNewHealthEntry(t *testing.T) {
	ready := NewHealthEntry(true, 7, 14, 0, time.UnixMilli(1000), 1500*time.Microsecond)
	assert.Equal(t, "ok", ready.Status)
	assert.Equal(t, int64(1000), ready.LastUpdated)
	assert.Equal(t, int64(1), ready.ImportMs)

	notReady := NewHealthEntry(false, 0, 0, 0, time.Time{}, 0)
	assert.Equal(t, "unavailable", notReady.Status)
	assert.Zero(t, notReady.LastUpdated)
}
