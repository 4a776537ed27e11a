package restapi

import (
	"net/http"

	"commuter.routing.org/internal/appconf"
	"commuter.routing.org/internal/webui"
	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

// keyed checks the API key first so that unknown keys never consume a rate limiter slot.
func (api *RestAPI) keyed(finalHandler handlerFunc) http.Handler {
	var handler http.Handler = http.HandlerFunc(finalHandler)
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler(handler)
	}
	return validateAPIKey(api, handler.ServeHTTP)
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/where/plan-trip.json", api.keyed(api.planTripHandler))
	router.Handler(http.MethodGet, "/api/where/shortest-path/:from/:to", api.keyed(api.shortestPathHandler))
	router.Handler(http.MethodGet, "/api/where/nearest-stop.json", api.keyed(api.nearestStopHandler))
	router.Handler(http.MethodGet, "/api/where/stop/:id", api.keyed(api.stopHandler))
	router.Handler(http.MethodGet, "/api/where/stops.json", api.keyed(api.stopsHandler))
	router.Handler(http.MethodGet, "/api/where/current-time.json", api.keyed(api.currentTimeHandler))
	router.HandlerFunc(http.MethodGet, "/healthz", api.healthHandler)

	if api.TransitManager != nil && api.Config.Environment() != appconf.Production {
		debug := &webui.WebUI{Manager: api.TransitManager}
		router.Handler(http.MethodGet, "/debug/", api.keyed(debug.DebugIndexHandler))
	}

	router.NotFound = http.HandlerFunc(api.sendNotFound)
}
