package transit

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commuter.routing.org/internal/appconf"
	"commuter.routing.org/internal/graph"
	"commuter.routing.org/transitdb"
)

func seedPath(t *testing.T) string {
	t.Helper()

	path, err := filepath.Abs(filepath.Join("..", "..", "testdata", "seed.json"))
	require.NoError(t, err)
	return path
}

func testConfig(t *testing.T) Config {
	return Config{
		DataPath: ":memory:",
		SeedFile: seedPath(t),
		Env:      appconf.Test,
	}
}

func TestInitManagerLoadsSeed(t *testing.T) {
	manager, err := InitManager(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	defer manager.Shutdown()

	require.True(t, manager.Ready())

	g, err := manager.Graph()
	require.NoError(t, err)
	assert.Equal(t, 7, g.StopCount())
	assert.Equal(t, 14, g.EdgeCount())

	stats := manager.Stats()
	assert.True(t, stats.Ready)
	assert.Equal(t, 7, stats.Stops)
	assert.Equal(t, 7, stats.Report.RoutesLoaded)
	assert.Equal(t, g.BuiltAt(), stats.BuiltAt)
	assert.Positive(t, stats.ImportRuntime)

	manager.LogStatistics()
}

func TestManagerNotReadyWithoutData(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedFile = ""

	manager, err := InitManager(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer manager.Shutdown()

	assert.False(t, manager.Ready())
	_, err = manager.Graph()
	assert.ErrorIs(t, err, graph.ErrGraphNotReady)
	assert.Equal(t, Stats{}, manager.Stats())
}

func TestManagerNotReadyWhenSeedMissing(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.json")

	manager, err := InitManager(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer manager.Shutdown()

	_, err = manager.Graph()
	assert.ErrorIs(t, err, graph.ErrGraphNotReady)
}

func TestInitManagerRejectsFileDatabaseInTests(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataPath = filepath.Join(t.TempDir(), "commuter.db")

	_, err := InitManager(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestRebuildSwapsGraph(t *testing.T) {
	manager, err := InitManager(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	defer manager.Shutdown()

	before, err := manager.Graph()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, manager.Store().InsertStops(ctx, []graph.RawStop{
		{ID: "nangka", Name: "Nangka", Lat: 14.6700, Lng: 121.1090},
	}))
	require.NoError(t, manager.Store().InsertRoutes(ctx, []graph.RawRoute{
		{ID: "jeep-parang-nangka", RouteName: "Parang - Nangka Jeep", Mode: "jeep", Fare: 13.0, Waypoints: []any{"parang", "nangka"}},
	}))

	report, err := manager.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, report.EdgesBuilt)

	after, err := manager.Graph()
	require.NoError(t, err)
	assert.NotSame(t, before, after)
	assert.Equal(t, 8, after.StopCount())

	// handles taken before the swap are unchanged
	assert.Equal(t, 7, before.StopCount())
	_, ok := before.Stop("nangka")
	assert.False(t, ok)
}

func TestRebuildWithdrawsGraphWhenStoreEmpties(t *testing.T) {
	manager, err := InitManager(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	defer manager.Shutdown()
	require.True(t, manager.Ready())

	ctx := context.Background()
	require.NoError(t, manager.Store().ReplaceAll(ctx, transitdb.Dataset{
		Stops: []graph.RawStop{{ID: "adrift", Name: "Adrift", Lat: "north", Lng: 121.1}},
	}))

	report, err := manager.Rebuild(ctx)
	require.ErrorIs(t, err, graph.ErrGraphNotReady)
	assert.NotEmpty(t, report.Issues)

	assert.False(t, manager.Ready())
	_, err = manager.Graph()
	assert.ErrorIs(t, err, graph.ErrGraphNotReady)
	assert.False(t, manager.Stats().Ready)
}

func TestRefreshPicksUpChangedSeed(t *testing.T) {
	original, err := os.ReadFile(seedPath(t))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, original, 0o600))

	cfg := testConfig(t)
	cfg.SeedFile = path
	manager, err := InitManager(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer manager.Shutdown()

	smaller := `{"stops": [
		{"id": "a", "name": "A", "lat": 14.60, "lng": 121.00},
		{"id": "b", "name": "B", "lat": 14.61, "lng": 121.00}
	], "routes": [
		{"id": "r", "route_name": "A - B", "mode": "bus", "fare": 15, "waypoints": ["a", "b"]}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(smaller), 0o600))

	require.NoError(t, manager.Refresh(context.Background()))
	g, err := manager.Graph()
	require.NoError(t, err)
	assert.Equal(t, 2, g.StopCount())
	assert.Equal(t, 1, g.EdgeCount())
}

func TestConcurrentReadsDuringRebuild(t *testing.T) {
	manager, err := InitManager(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	defer manager.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				g, err := manager.Graph()
				if !assert.NoError(t, err) {
					return
				}
				_, err = g.ShortestPath(context.Background(), "cubao", "parang", graph.Fastest, time.Now())
				assert.NoError(t, err)
			}
		}()
	}

	for i := 0; i < 5; i++ {
		_, err := manager.Rebuild(context.Background())
		require.NoError(t, err)
	}
	wg.Wait()
}

func TestManagerShutdown(t *testing.T) {
	cfg := testConfig(t)
	cfg.RefreshInterval = 10 * time.Millisecond

	manager, err := InitManager(context.Background(), cfg, nil)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		manager.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown took too long")
	}

	// a second call is a no-op
	manager.Shutdown()
}
