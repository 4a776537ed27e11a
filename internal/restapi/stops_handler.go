package restapi

import (
	"net/http"

	"commuter.routing.org/internal/models"
)

// stopsHandler lists every stop in load order, with the routes serving them as references.
func (api *RestAPI) stopsHandler(w http.ResponseWriter, r *http.Request) {
	g, err := api.Planner.Graph()
	if err != nil {
		api.routingErrorResponse(w, r, err)
		return
	}

	index := newNetworkIndex(g)
	collector := models.NewReferenceCollector()
	stops := g.Stops()
	list := make([]models.Stop, 0, len(stops))
	for _, s := range stops {
		list = append(list, index.stop(s))
		for _, routeID := range index.stopRoutes[s.ID] {
			collector.AddRoute(models.NewRouteReference(index.routes[routeID]))
		}
	}

	references := collector.References()
	api.sendResponse(w, r, models.NewListResponse(list, references))
}
