package restapi

import (
	"encoding/json"
	"net/http"

	"commuter.routing.org/internal/logging"
	"commuter.routing.org/internal/models"
)

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	code := response.Code
	if code == 0 {
		code = http.StatusOK
	}
	writeJSON(w, r, code, response)
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request) {
	api.sendErrorText(w, r, http.StatusNotFound, "resource not found", nil)
}

// sendErrorText writes a version 2 envelope for a non-200 outcome.
func (api *RestAPI) sendErrorText(w http.ResponseWriter, r *http.Request, code int, text string, data interface{}) {
	api.sendResponse(w, r, models.NewResponse(code, data, text))
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, body interface{}) {
	setJSONResponseType(&w)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to encode response", err)
	}
}

func setJSONResponseType(w *http.ResponseWriter) {
	(*w).Header().Set("Content-Type", "application/json")
}
