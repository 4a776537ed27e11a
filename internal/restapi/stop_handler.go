package restapi

import (
	"net/http"

	"commuter.routing.org/internal/models"
	"commuter.routing.org/internal/utils"
)

func (api *RestAPI) stopHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.ExtractIDFromParams(r, "id")

	if err := utils.ValidateID(id); err != nil {
		fieldErrors := map[string][]string{
			"id": {err.Error()},
		}
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	g, err := api.Planner.Graph()
	if err != nil {
		api.routingErrorResponse(w, r, err)
		return
	}

	stop, ok := g.Stop(id)
	if !ok {
		api.sendNotFound(w, r)
		return
	}

	index := newNetworkIndex(g)
	collector := models.NewReferenceCollector()
	index.addStop(collector, id)
	references := collector.References()
	// The entry itself is not repeated in the references.
	references.Stops = []models.Stop{}

	api.sendResponse(w, r, models.NewEntryResponse(index.stop(stop), references))
}
