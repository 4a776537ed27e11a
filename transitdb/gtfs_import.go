package transitdb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jamespfennell/gtfs"
)

// GTFSOptions controls how a static feed is flattened into stops and routes.
type GTFSOptions struct {
	// DefaultFare is assigned to every route; static feeds used here carry no fare rules.
	DefaultFare float64
}

const gtfsRouteTypeTram = 0

// decodeGTFS flattens a static feed. Each route contributes one record per direction, with
// waypoints taken from the trip in that direction that visits the most stops.
func decodeGTFS(data []byte, opts GTFSOptions) (Dataset, error) {
	staticData, err := gtfs.ParseStatic(data, gtfs.ParseStaticOptions{})
	if err != nil {
		return Dataset{}, fmt.Errorf("error parsing GTFS data: %w", err)
	}
	return datasetFromStatic(staticData, opts), nil
}

func datasetFromStatic(staticData *gtfs.Static, opts GTFSOptions) Dataset {
	var dataset Dataset

	for _, s := range staticData.Stops {
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		dataset.Stops = append(dataset.Stops, rawStop(s.Id, s.Name, *s.Latitude, *s.Longitude, stopTypeName(int64(s.Type))))
	}

	type routeDirection struct {
		routeID   string
		direction int64
	}
	longest := make(map[routeDirection]*gtfs.ScheduledTrip)
	for i := range staticData.Trips {
		trip := &staticData.Trips[i]
		if trip.Route == nil {
			continue
		}
		key := routeDirection{routeID: trip.Route.Id, direction: int64(trip.DirectionId)}
		if current, ok := longest[key]; !ok || len(trip.StopTimes) > len(current.StopTimes) {
			longest[key] = trip
		}
	}

	for _, r := range staticData.Routes {
		for _, direction := range []int64{0, 1} {
			trip, ok := longest[routeDirection{routeID: r.Id, direction: direction}]
			if !ok {
				continue
			}

			id := r.Id
			if direction == 1 {
				id = r.Id + ":1"
			}
			dataset.Routes = append(dataset.Routes, rawRoute(id, routeName(r.ShortName, r.LongName), routeMode(int64(r.Type), r.ShortName, r.LongName), opts.DefaultFare, tripWaypoints(trip)))
		}
	}

	return dataset
}

func tripWaypoints(trip *gtfs.ScheduledTrip) []any {
	stopTimes := make([]gtfs.ScheduledStopTime, len(trip.StopTimes))
	copy(stopTimes, trip.StopTimes)
	sort.SliceStable(stopTimes, func(i, j int) bool {
		return stopTimes[i].StopSequence < stopTimes[j].StopSequence
	})

	waypoints := make([]any, 0, len(stopTimes))
	for _, st := range stopTimes {
		if st.Stop == nil {
			continue
		}
		waypoints = append(waypoints, st.Stop.Id)
	}
	return waypoints
}

func routeName(shortName, longName string) string {
	switch {
	case shortName != "" && longName != "":
		return shortName + " " + longName
	case longName != "":
		return longName
	default:
		return shortName
	}
}

// routeMode maps a GTFS route to a travel mode. Feeds publish jeepneys as buses or light
// rail and tricycles as buses, so names take precedence over the route type.
func routeMode(routeType int64, names ...string) string {
	joined := strings.ToLower(strings.Join(names, " "))
	switch {
	case strings.Contains(joined, "jeep"):
		return "jeep"
	case strings.Contains(joined, "tricycle"), strings.Contains(joined, "trike"):
		return "tricycle"
	case routeType == gtfsRouteTypeTram:
		return "jeep"
	default:
		return "bus"
	}
}

func stopTypeName(locationType int64) string {
	if locationType == 1 {
		return "terminal"
	}
	return "stop_point"
}
