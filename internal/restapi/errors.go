package restapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"commuter.routing.org/internal/graph"
	"commuter.routing.org/internal/logging"
	"commuter.routing.org/internal/models"
	"commuter.routing.org/internal/planner"
)

// notReadyRetryAfter is the Retry-After value, in seconds, sent while the graph is loading.
const notReadyRetryAfter = 30

type errorResponse struct {
	Code        int         `json:"code"`
	CurrentTime int64       `json:"currentTime"`
	Data        interface{} `json:"data,omitempty"`
	Text        string      `json:"text"`
	Version     int         `json:"version"`
}

func (api *RestAPI) writeError(w http.ResponseWriter, r *http.Request, response errorResponse) {
	writeJSON(w, r, response.Code, response)
}

// invalidAPIKeyResponse sends a 401 Unauthorized response with the required format
// for invalid API key errors
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.writeError(w, r, errorResponse{
		Code:        http.StatusUnauthorized,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        "permission denied",
		Version:     1, // Version 1, not 2 as in a successful response. Kept for client back-compat.
	})
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "request failed", err,
		slog.String("path", r.URL.Path))

	api.writeError(w, r, errorResponse{
		Code:        http.StatusInternalServerError,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        "internal server error",
		Version:     1,
	})
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		FieldErrors: fieldErrors,
	}
	writeJSON(w, r, http.StatusBadRequest, response)
}

func (api *RestAPI) notReadyResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", strconv.Itoa(notReadyRetryAfter))
	api.writeError(w, r, errorResponse{
		Code:        http.StatusServiceUnavailable,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        "transit data is not available yet",
		Version:     2,
	})
}

func (api *RestAPI) walkTooFarResponse(w http.ResponseWriter, r *http.Request, walkErr *planner.WalkDistanceError) {
	api.writeError(w, r, errorResponse{
		Code:        http.StatusUnprocessableEntity,
		CurrentTime: models.ResponseCurrentTime(),
		Data: models.WalkLimitEntry{
			End:        walkErr.End,
			StopID:     walkErr.Stop.ID,
			StopName:   walkErr.Stop.Name,
			DistanceKm: walkErr.DistanceKm,
			LimitKm:    walkErr.LimitKm,
		},
		Text:    walkErr.Error(),
		Version: 2,
	})
}

// routingErrorResponse maps planner and graph failures onto HTTP outcomes.
func (api *RestAPI) routingErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var walkErr *planner.WalkDistanceError

	switch {
	case errors.Is(err, graph.ErrGraphNotReady):
		api.notReadyResponse(w, r)
	case errors.As(err, &walkErr):
		api.walkTooFarResponse(w, r, walkErr)
	case errors.Is(err, planner.ErrNoTerminal):
		api.sendErrorText(w, r, http.StatusNotFound, planner.ErrNoTerminal.Error(), nil)
	case errors.Is(err, graph.ErrUnknownStop):
		api.sendNotFound(w, r)
	case errors.Is(err, graph.ErrNoPath):
		api.sendErrorText(w, r, http.StatusNotFound, graph.ErrNoPath.Error(), nil)
	case errors.Is(err, graph.ErrInvalidPreference):
		api.validationErrorResponse(w, r, map[string][]string{"preference": {err.Error()}})
	case errors.Is(err, planner.ErrInvalidLocation):
		api.validationErrorResponse(w, r, map[string][]string{"location": {err.Error()}})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		api.writeError(w, r, errorResponse{
			Code:        http.StatusGatewayTimeout,
			CurrentTime: models.ResponseCurrentTime(),
			Text:        "request timed out",
			Version:     2,
		})
	default:
		api.serverErrorResponse(w, r, err)
	}
}
