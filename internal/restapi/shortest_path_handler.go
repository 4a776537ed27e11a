package restapi

import (
	"net/http"

	"commuter.routing.org/internal/graph"
	"commuter.routing.org/internal/models"
	"commuter.routing.org/internal/utils"
)

// shortestPathHandler answers a stop to stop search without walking legs.
func (api *RestAPI) shortestPathHandler(w http.ResponseWriter, r *http.Request) {
	fromID := utils.ExtractIDFromParams(r, "from")
	toID := utils.ExtractIDFromParams(r, "to")

	fieldErrors := make(map[string][]string)
	if err := utils.ValidateID(fromID); err != nil {
		fieldErrors["from"] = []string{err.Error()}
	}
	if err := utils.ValidateID(toID); err != nil {
		fieldErrors["to"] = []string{err.Error()}
	}
	pref, err := graph.ParsePreference(r.URL.Query().Get("preference"))
	if err != nil {
		fieldErrors["preference"] = []string{err.Error()}
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

	path, err := g.ShortestPath(r.Context(), fromID, toID, pref, api.Now())
	if err != nil {
		api.routingErrorResponse(w, r, err)
		return
	}

	index := newNetworkIndex(g)
	collector := models.NewReferenceCollector()
	for _, s := range path.Stops {
		index.addStop(collector, s.ID)
	}

	api.sendResponse(w, r, models.NewEntryResponse(models.NewPathEntry(path, fromID, toID), collector.References()))
}
