package transit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"commuter.routing.org/internal/graph"
	"commuter.routing.org/internal/logging"
	"commuter.routing.org/transitdb"
)

// Manager owns the transit store and the current routing graph. Rebuilds construct a new
// graph and swap the handle, so searches already running keep the graph they started with.
type Manager struct {
	config Config
	store  *transitdb.Client
	logger *slog.Logger

	current atomic.Pointer[snapshot]
	// rebuildMu serializes rebuilds; readers never take it.
	rebuildMu sync.Mutex

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

type snapshot struct {
	graph  *graph.Graph
	report graph.BuildReport
}

// Stats summarizes the loaded network. ImportRuntime is how long the latest store import
// took, skipped imports included.
type Stats struct {
	Ready         bool              `json:"ready"`
	Stops         int               `json:"stops"`
	Edges         int               `json:"edges"`
	BuiltAt       time.Time         `json:"builtAt"`
	ImportRuntime time.Duration     `json:"importRuntime"`
	Report        graph.BuildReport `json:"report"`
}

// InitManager opens the store, imports the configured sources and builds the first graph.
// A failed import or build leaves the manager running but not ready; the error is logged
// and later refreshes retry.
func InitManager(ctx context.Context, config Config, logger *slog.Logger) (*Manager, error) {
	logger = logging.OrDiscard(logger).With(slog.String("component", "transit_manager"))

	store, err := transitdb.NewClient(transitdb.NewConfig(config.DataPath, config.Env, config.Verbose))
	if err != nil {
		return nil, fmt.Errorf("error opening transit store: %w", err)
	}
	store.WithLogger(logger)

	manager := &Manager{
		config:       config,
		store:        store,
		logger:       logger,
		shutdownChan: make(chan struct{}),
	}

	if err := manager.Refresh(ctx); err != nil {
		logging.LogError(logger, "initial transit data load failed", err)
	}

	if config.refreshEnabled() {
		manager.wg.Add(1)
		go manager.refreshPeriodically()
	}

	return manager, nil
}

// Store exposes the underlying data store.
func (manager *Manager) Store() *transitdb.Client {
	return manager.store
}

// Graph returns the current graph, or ErrGraphNotReady before the first successful build.
func (manager *Manager) Graph() (*graph.Graph, error) {
	s := manager.current.Load()
	if s == nil {
		return nil, graph.ErrGraphNotReady
	}
	return s.graph, nil
}

func (manager *Manager) Ready() bool {
	return manager.current.Load() != nil
}

func (manager *Manager) Stats() Stats {
	stats := Stats{ImportRuntime: manager.store.ImportRuntime()}
	s := manager.current.Load()
	if s == nil {
		return stats
	}
	stats.Ready = true
	stats.Stops = s.graph.StopCount()
	stats.Edges = s.graph.EdgeCount()
	stats.BuiltAt = s.graph.BuiltAt()
	stats.Report = s.report
	return stats
}

// Refresh imports the configured sources into the store and rebuilds the graph. Sources
// whose content has not changed are skipped. The graph is rebuilt from whatever the store
// holds even when an import fails.
func (manager *Manager) Refresh(ctx context.Context) error {
	importErr := manager.importSources(ctx)
	_, buildErr := manager.Rebuild(ctx)
	return errors.Join(importErr, buildErr)
}

// Rebuild reads the store and swaps in a freshly built graph. If the store cannot be read
// the previous graph stays in place. If the store holds no usable stops the graph is
// withdrawn and the manager reports not ready until a later rebuild succeeds.
func (manager *Manager) Rebuild(ctx context.Context) (graph.BuildReport, error) {
	manager.rebuildMu.Lock()
	defer manager.rebuildMu.Unlock()

	dataset, err := manager.store.Load(ctx)
	if err != nil {
		return graph.BuildReport{}, fmt.Errorf("error loading transit data: %w", err)
	}

	g, report := graph.Build(dataset.Stops, dataset.Routes, graph.WithLogger(manager.logger))
	if g.StopCount() == 0 {
		if manager.current.Swap(nil) != nil {
			logging.LogOperation(manager.logger, "transit graph withdrawn, store holds no usable stops",
				slog.Int("issues", len(report.Issues)))
		}
		return report, fmt.Errorf("%w: store holds no usable stops", graph.ErrGraphNotReady)
	}

	manager.current.Store(&snapshot{graph: g, report: report})
	return report, nil
}

// Shutdown gracefully shuts down the manager and its background goroutines
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
		logging.SafeCloseWithLogging(manager.store, manager.logger, "transit_store")
	})
}

// LogStatistics writes a summary of the loaded network.
func (manager *Manager) LogStatistics() {
	stats := manager.Stats()
	logging.LogOperation(manager.logger, "transit statistics",
		slog.Bool("ready", stats.Ready),
		slog.Int("stops", stats.Stops),
		slog.Int("edges", stats.Edges),
		slog.Int("routes", stats.Report.RoutesLoaded),
		slog.Int("issues", len(stats.Report.Issues)),
		slog.Time("built_at", stats.BuiltAt),
		slog.Duration("import_runtime", stats.ImportRuntime))
}
