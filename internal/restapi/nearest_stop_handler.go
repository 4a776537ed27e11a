package restapi

import (
	"net/http"

	"commuter.routing.org/internal/models"
	"commuter.routing.org/internal/planner"
	"commuter.routing.org/internal/utils"
)

func (api *RestAPI) nearestStopHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lat, fieldErrors := utils.RequireFloatParam(query, "lat", nil)
	lon, fieldErrors := utils.RequireFloatParam(query, "lon", fieldErrors)
	if len(fieldErrors) == 0 {
		fieldErrors = utils.ValidateLocationParams("lat", lat, "lon", lon, fieldErrors)
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	g, err := api.Planner.Graph()
	if err != nil {
		api.routingErrorResponse(w, r, err)
		return
	}

	stop, distanceKm, ok := g.NearestStop(lat, lon)
	if !ok {
		api.routingErrorResponse(w, r, planner.ErrNoTerminal)
		return
	}

	index := newNetworkIndex(g)
	collector := models.NewReferenceCollector()
	index.addStop(collector, stop.ID)

	entry := models.NewNearestStopEntry(index.stop(stop), distanceKm,
		utils.CompassDirection(lat, lon, stop.Lat, stop.Lng))
	api.sendResponse(w, r, models.NewEntryResponse(entry, collector.References()))
}
