package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"commuter.routing.org/internal/utils"
)

// RawStop is a stop record as delivered by a data store. Numeric fields may be strings.
type RawStop struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
	Lat  any    `json:"lat"`
	Lng  any    `json:"lng"`
	Type string `json:"type"`
}

// RawRoute is a route record as delivered by a data store.
type RawRoute struct {
	ID        any    `json:"id"`
	RouteName string `json:"route_name"`
	Mode      string `json:"mode"`
	Fare      any    `json:"fare"`
	Waypoints []any  `json:"waypoints"`
}

type IssueKind string

const (
	IssueInvalidID          IssueKind = "invalid_id"
	IssueInvalidCoordinates IssueKind = "invalid_coordinates"
	IssueDuplicateStop      IssueKind = "duplicate_stop"
	IssueInvalidFare        IssueKind = "invalid_fare"
	IssueShortRoute         IssueKind = "short_route"
	IssueInvalidWaypoint    IssueKind = "invalid_waypoint"
	IssueUnknownWaypoint    IssueKind = "unknown_waypoint"
)

// RecordError describes a data quality problem with a single record.
type RecordError struct {
	Kind   IssueKind `json:"kind"`
	Record string    `json:"record"`
	ID     string    `json:"id"`
	Reason string    `json:"reason"`
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %q: %s: %s", e.Record, e.ID, e.Kind, e.Reason)
}

// ParseStop converts a raw record into a Stop. Coordinates must be finite and in range.
func ParseStop(raw RawStop) (Stop, error) {
	id, err := coerceID(raw.ID)
	if err != nil {
		return Stop{}, &RecordError{Kind: IssueInvalidID, Record: "stop", ID: fmt.Sprint(raw.ID), Reason: err.Error()}
	}

	lat, latErr := coerceFloat(raw.Lat)
	lng, lngErr := coerceFloat(raw.Lng)
	if latErr != nil || lngErr != nil {
		reason := "unparseable coordinates"
		if latErr != nil {
			reason = "lat: " + latErr.Error()
		} else if lngErr != nil {
			reason = "lng: " + lngErr.Error()
		}
		return Stop{}, &RecordError{Kind: IssueInvalidCoordinates, Record: "stop", ID: id, Reason: reason}
	}
	if !utils.IsFiniteCoordinate(lat, lng) {
		return Stop{}, &RecordError{Kind: IssueInvalidCoordinates, Record: "stop", ID: id, Reason: "coordinates are not finite"}
	}
	if utils.ValidateLatitude(lat) != nil || utils.ValidateLongitude(lng) != nil {
		return Stop{}, &RecordError{Kind: IssueInvalidCoordinates, Record: "stop", ID: id, Reason: "coordinates out of range"}
	}

	return Stop{
		ID:   id,
		Name: strings.TrimSpace(raw.Name),
		Lat:  lat,
		Lng:  lng,
		Type: raw.Type,
	}, nil
}

// ParseRoute converts a raw record into a Route. Waypoints that cannot be read as ids are kept
// as empty placeholders so the pairs around them are dropped at build time; they are returned
// as additional issues.
func ParseRoute(raw RawRoute) (Route, []*RecordError, error) {
	id, err := coerceID(raw.ID)
	if err != nil {
		return Route{}, nil, &RecordError{Kind: IssueInvalidID, Record: "route", ID: fmt.Sprint(raw.ID), Reason: err.Error()}
	}

	fare := 0.0
	if raw.Fare != nil {
		if s, ok := raw.Fare.(string); !ok || strings.TrimSpace(s) != "" {
			fare, err = coerceFloat(raw.Fare)
			if err != nil || math.IsNaN(fare) || math.IsInf(fare, 0) || fare < 0 {
				return Route{}, nil, &RecordError{Kind: IssueInvalidFare, Record: "route", ID: id, Reason: fmt.Sprintf("fare %v is not a non-negative number", raw.Fare)}
			}
		}
	}

	var issues []*RecordError
	waypoints := make([]string, 0, len(raw.Waypoints))
	for i, w := range raw.Waypoints {
		wid, err := coerceID(w)
		if err != nil {
			issues = append(issues, &RecordError{Kind: IssueInvalidWaypoint, Record: "route", ID: id, Reason: fmt.Sprintf("waypoint %d: %v", i, err)})
			wid = ""
		}
		waypoints = append(waypoints, wid)
	}

	return Route{
		ID:        id,
		Name:      strings.TrimSpace(raw.RouteName),
		Mode:      Mode(strings.ToLower(strings.TrimSpace(raw.Mode))),
		Fare:      fare,
		Waypoints: waypoints,
	}, issues, nil
}

func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, fmt.Errorf("missing value")
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case []byte:
		return coerceFloat(string(n))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func coerceID(v any) (string, error) {
	switch n := v.(type) {
	case nil:
		return "", fmt.Errorf("missing id")
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return "", fmt.Errorf("empty id")
		}
		return s, nil
	case []byte:
		return coerceID(string(n))
	case int:
		return strconv.Itoa(n), nil
	case int32:
		return strconv.FormatInt(int64(n), 10), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case json.Number:
		return coerceID(n.String())
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return "", fmt.Errorf("non-integral numeric id %v", n)
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported id type %T", v)
	}
}
