package graph

import (
	"math"
	"time"
)

const (
	// BoardingBufferMinutes is added once per traversed edge regardless of mode.
	BoardingBufferMinutes = 5
	// RushHourMultiplier scales travel time inside a rush window.
	RushHourMultiplier = 1.5
	// WalkingSpeedKmh is used for walking legs and for modes without a known speed.
	WalkingSpeedKmh = 5.0

	recommendedFareWeight = 0.6
	recommendedETAWeight  = 0.4
)

var modeSpeedsKmh = map[Mode]float64{
	ModeTricycle: 20,
	ModeJeep:     25,
	ModeBus:      30,
	ModeWalking:  WalkingSpeedKmh,
}

// rush windows are [start, end) in local wall-clock hours
var rushWindows = [][2]int{
	{7, 9},
	{17, 19},
}

// ModeSpeed returns the assumed average speed of a mode in km/h.
func ModeSpeed(m Mode) float64 {
	if speed, ok := modeSpeedsKmh[m]; ok {
		return speed
	}
	return WalkingSpeedKmh
}

// IsRushHour reports whether asOf falls in a rush window. The hour is read in asOf's own location.
func IsRushHour(asOf time.Time) bool {
	hour := asOf.Hour()
	for _, w := range rushWindows {
		if hour >= w[0] && hour < w[1] {
			return true
		}
	}
	return false
}

// TrafficMultiplier returns the travel time factor in effect at asOf.
func TrafficMultiplier(asOf time.Time) float64 {
	if IsRushHour(asOf) {
		return RushHourMultiplier
	}
	return 1.0
}

// TravelMinutes is the in-vehicle time for a distance, rounded up to whole minutes.
func TravelMinutes(distanceKm float64, mode Mode, asOf time.Time) int {
	minutes := distanceKm * 60 * TrafficMultiplier(asOf) / ModeSpeed(mode)
	// absorb floating point noise so exact values do not round up a whole minute
	return int(math.Ceil(minutes - 1e-9))
}

// EdgeETA is the travel time of an edge plus the boarding buffer.
func EdgeETA(e Edge, asOf time.Time) int {
	return TravelMinutes(e.Distance, e.Mode, asOf) + BoardingBufferMinutes
}

// EdgeWeight returns the search weight of an edge. Cheapest weighs by fare, Fastest by ETA in
// minutes and Recommended blends both, treating one currency unit and one minute as comparable.
// The weight depends on asOf; a search must use one asOf for all of its evaluations.
func EdgeWeight(e Edge, p Preference, asOf time.Time) float64 {
	switch p {
	case Cheapest:
		return e.Fare
	case Fastest:
		return float64(EdgeETA(e, asOf))
	default:
		return recommendedFareWeight*e.Fare + recommendedETAWeight*float64(EdgeETA(e, asOf))
	}
}
