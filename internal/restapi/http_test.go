package restapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"commuter.routing.org/internal/app"
	"commuter.routing.org/internal/appconf"
	"commuter.routing.org/internal/graph"
	"commuter.routing.org/internal/logging"
	"commuter.routing.org/internal/models"
	"commuter.routing.org/internal/planner"
	"commuter.routing.org/internal/transit"
)

var manila = time.FixedZone("PHT", 8*60*60)

// afternoon is outside both rush hour windows.
func afternoon() time.Time {
	return time.Date(2026, time.October, 19, 14, 0, 0, 0, manila)
}

type envelope[T any] struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Text        string `json:"text"`
	Version     int    `json:"version"`
	Data        struct {
		Entry      T                      `json:"entry"`
		List       T                      `json:"list"`
		References models.ReferencesModel `json:"references"`
	} `json:"data"`
}

func newTestManager(t *testing.T, seedFile string) *transit.Manager {
	t.Helper()

	config := transit.Config{
		DataPath: ":memory:",
		SeedFile: seedFile,
		Env:      appconf.Test,
	}
	manager, err := transit.InitManager(context.Background(), config, nil)
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)
	return manager
}

func newTestApiWithSource(t *testing.T, manager *transit.Manager, source planner.GraphSource, rateLimit int) *RestAPI {
	t.Helper()

	application := &app.Application{
		Config: appconf.Config{
			Env:       "test",
			ApiKeys:   []string{"TEST", "test-rate-limit"},
			RateLimit: rateLimit,
			DataPath:  ":memory:",
			MaxWalkKm: appconf.DefaultMaxWalkKm,
			Timezone:  appconf.DefaultTimezone,
		},
		Logger:         logging.Discard(),
		TransitManager: manager,
		Planner: planner.New(source,
			planner.WithClock(afternoon),
			planner.WithLocation(manila),
			planner.WithMaxWalkKm(appconf.DefaultMaxWalkKm)),
	}

	api := NewRestAPI(application)
	t.Cleanup(api.Shutdown)
	return api
}

// createTestApi serves the seed network with rate limiting disabled.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()

	seed, err := filepath.Abs(filepath.Join("..", "..", "testdata", "seed.json"))
	require.NoError(t, err)

	manager := newTestManager(t, seed)
	return newTestApiWithSource(t, manager, manager, 0)
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) *http.Response {
	t.Helper()

	server := httptest.NewServer(api.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	return resp
}

// decodeEndpoint requests endpoint and decodes the JSON body into out.
func decodeEndpoint(t *testing.T, api *RestAPI, endpoint string, out interface{}) *http.Response {
	t.Helper()

	resp := serveApiAndRetrieveEndpoint(t, api, endpoint)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

// isolatedGraph has two stops with no route between them.
func isolatedGraph(t *testing.T) *graph.Graph {
	t.Helper()

	g, _ := graph.New(
		[]graph.Stop{
			{ID: "A", Name: "Angono", Lat: 14.52, Lng: 121.15},
			{ID: "B", Name: "Binangonan", Lat: 14.46, Lng: 121.19},
		},
		nil,
	)
	return g
}

type staticSource struct {
	g *graph.Graph
}

func (s staticSource) Graph() (*graph.Graph, error) {
	return s.g, nil
}

// rebuildingSource hands out first on the initial read and next afterwards, as if the
// manager swapped graphs while a request was in flight.
type rebuildingSource struct {
	first *graph.Graph
	next  *graph.Graph
	reads atomic.Int32
}

func (s *rebuildingSource) Graph() (*graph.Graph, error) {
	if s.reads.Add(1) == 1 {
		return s.first, nil
	}
	return s.next, nil
}
