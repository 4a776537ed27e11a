package restapi

import (
	"net/http"
	"strconv"
	"time"

	"commuter.routing.org/internal/models"
)

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	var entry models.HealthEntry
	if api.TransitManager != nil {
		stats := api.TransitManager.Stats()
		entry = models.NewHealthEntry(stats.Ready, stats.Stops, stats.Edges, len(stats.Report.Issues), stats.BuiltAt, stats.ImportRuntime)
	} else {
		entry = models.NewHealthEntry(false, 0, 0, 0, time.Time{}, 0)
	}

	if !entry.Ready {
		w.Header().Set("Retry-After", strconv.Itoa(notReadyRetryAfter))
		api.sendResponse(w, r, models.NewResponse(http.StatusServiceUnavailable, entry, entry.Status))
		return
	}
	api.sendResponse(w, r, models.NewResponse(http.StatusOK, entry, entry.Status))
}
