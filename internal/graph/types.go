package graph

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode is the kind of vehicle serving an edge.
type Mode string

const (
	ModeBus      Mode = "bus"
	ModeJeep     Mode = "jeep"
	ModeTricycle Mode = "tricycle"
	ModeWalking  Mode = "walking"
	// ModeDirect marks a straight-line estimate that did not use the network.
	ModeDirect Mode = "direct"
)

// Preference selects how edge weights are computed during a search.
type Preference string

const (
	Cheapest    Preference = "cheapest"
	Fastest     Preference = "fastest"
	Recommended Preference = "recommended"
)

// AllPreferences lists every preference in presentation order.
var AllPreferences = []Preference{Cheapest, Fastest, Recommended}

var ErrInvalidPreference = errors.New("invalid preference")

// ErrGraphNotReady means no graph has been built yet. Callers should retry later.
var ErrGraphNotReady = errors.New("transit graph is not ready")

// ParsePreference maps user input to a Preference. An empty string selects Recommended.
func ParsePreference(s string) (Preference, error) {
	p := Preference(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return Recommended, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPreference, s)
	}
	return p, nil
}

func (p Preference) Valid() bool {
	switch p {
	case Cheapest, Fastest, Recommended:
		return true
	default:
		return false
	}
}

// Stop is a transit node. Stops are immutable once a graph is built.
type Stop struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Type string  `json:"type"`
}

// Route is a transit service running through an ordered list of stop ids.
type Route struct {
	ID        string
	Name      string
	Mode      Mode
	Fare      float64
	Waypoints []string
}

// Edge is a directed arc between two consecutive waypoints of a route.
type Edge struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Distance  float64 `json:"distance"`
	Mode      Mode    `json:"mode"`
	Fare      float64 `json:"fare"`
	RouteID   string  `json:"routeId"`
	RouteName string  `json:"routeName"`
}

// Segment is one traversed edge of a path, as presented to a rider.
type Segment struct {
	FromID   string  `json:"fromId"`
	ToID     string  `json:"toId"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Mode     Mode    `json:"mode"`
	Route    string  `json:"route"`
	Fare     float64 `json:"fare"`
	ETA      int     `json:"eta"`
	Distance float64 `json:"distance"`
}

// Path is the result of a shortest path search.
type Path struct {
	Stops         []Stop
	Segments      []Segment
	TotalFare     float64
	TotalETA      int
	TotalDistance float64
	Cost          float64
	Preference    Preference
	AsOf          time.Time
}
