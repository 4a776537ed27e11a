package transit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"commuter.routing.org/internal/logging"
)

func (manager *Manager) importSources(ctx context.Context) error {
	if manager.config.SeedFile != "" {
		if _, err := manager.store.ImportFromFile(ctx, manager.config.SeedFile); err != nil {
			return fmt.Errorf("error importing seed file: %w", err)
		}
	}

	if manager.config.GtfsURL != "" {
		var err error
		if manager.config.gtfsIsRemote() {
			_, err = manager.store.DownloadAndStore(ctx, manager.config.GtfsURL)
		} else {
			_, err = manager.store.ImportGTFS(ctx, manager.config.GtfsURL)
		}
		if err != nil {
			return fmt.Errorf("error importing GTFS feed: %w", err)
		}
	}

	return nil
}

// refreshPeriodically re-imports the sources on a fixed interval until shutdown.
func (manager *Manager) refreshPeriodically() {
	defer manager.wg.Done()

	ticker := time.NewTicker(manager.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			err := manager.Refresh(ctx)
			cancel()

			if err != nil {
				logging.LogError(manager.logger, "error refreshing transit data", err)
				continue
			}
			if manager.config.Verbose {
				manager.LogStatistics()
			}
		case <-manager.shutdownChan:
			logging.LogOperation(manager.logger, "stopping transit data refresh",
				slog.Duration("interval", manager.config.RefreshInterval))
			return
		}
	}
}
