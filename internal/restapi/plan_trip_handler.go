package restapi

import (
	"net/http"
	"net/url"
	"strings"

	"commuter.routing.org/internal/graph"
	"commuter.routing.org/internal/models"
	"commuter.routing.org/internal/planner"
	"commuter.routing.org/internal/utils"
)

// parsePreferences reads a comma separated preference list. Empty and "all" select every
// preference.
func parsePreferences(raw string) ([]graph.Preference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil, nil
	}
	var prefs []graph.Preference
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := graph.ParsePreference(part)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, nil
}

// readTripEnd reads either a stop id or a coordinate pair for one end of a trip.
func readTripEnd(query url.Values, stopField, latField, lonField string, fieldErrors map[string][]string) (string, planner.Point, map[string][]string) {
	stopID := utils.SanitizeInput(query.Get(stopField))
	if stopID != "" {
		if err := utils.ValidateID(stopID); err != nil {
			fieldErrors[stopField] = append(fieldErrors[stopField], err.Error())
		}
		return stopID, planner.Point{}, fieldErrors
	}

	lat, fieldErrors := utils.RequireFloatParam(query, latField, fieldErrors)
	lon, fieldErrors := utils.RequireFloatParam(query, lonField, fieldErrors)
	if len(fieldErrors[latField]) == 0 && len(fieldErrors[lonField]) == 0 {
		fieldErrors = utils.ValidateLocationParams(latField, lat, lonField, lon, fieldErrors)
	}
	return "", planner.Point{Lat: lat, Lng: lon}, fieldErrors
}

func (api *RestAPI) planTripHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	fieldErrors := make(map[string][]string)

	var req planner.Request
	req.OriginStopID, req.Origin, fieldErrors = readTripEnd(query, "fromStopId", "fromLat", "fromLon", fieldErrors)
	req.DestinationStopID, req.Destination, fieldErrors = readTripEnd(query, "toStopId", "toLat", "toLon", fieldErrors)

	prefs, err := parsePreferences(query.Get("preference"))
	if err != nil {
		fieldErrors["preference"] = append(fieldErrors["preference"], err.Error())
	}
	req.Preferences = prefs

	maxWalk, present, fieldErrors := utils.ParseFloatParam(query, "maxWalkKm", fieldErrors)
	if present && len(fieldErrors["maxWalkKm"]) == 0 {
		if err := utils.ValidateWalkDistance(maxWalk); err != nil {
			fieldErrors["maxWalkKm"] = append(fieldErrors["maxWalkKm"], err.Error())
		}
		req.MaxWalkKm = &maxWalk
	}

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	plan, err := api.Planner.Plan(r.Context(), req)
	if err != nil {
		api.routingErrorResponse(w, r, err)
		return
	}

	index := newNetworkIndex(plan.Graph)
	collector := models.NewReferenceCollector()
	for _, it := range plan.Itineraries {
		index.addSegments(collector, it.Segments)
		if it.OriginStop != nil {
			index.addStop(collector, it.OriginStop.ID)
		}
		if it.DestinationStop != nil {
			index.addStop(collector, it.DestinationStop.ID)
		}
	}
	references := collector.References()

	api.sendResponse(w, r, models.NewEntryResponse(models.NewTripPlanEntry(plan), references))
}
