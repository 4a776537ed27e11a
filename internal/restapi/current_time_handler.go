package restapi

import (
	"net/http"

	"commuter.routing.org/internal/graph"
	"commuter.routing.org/internal/models"
)

// currentTimeHandler reports the service clock and whether rush hour pricing of travel
// times is in effect.
func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	now := api.Now()
	api.sendResponse(w, r, models.NewOKResponse(models.NewCurrentTimeData(now, graph.IsRushHour(now))))
}
