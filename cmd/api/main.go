package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commuter.routing.org/internal/app"
	"commuter.routing.org/internal/appconf"
	"commuter.routing.org/internal/logging"
	"commuter.routing.org/internal/planner"
	"commuter.routing.org/internal/restapi"
	"commuter.routing.org/internal/transit"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the configuration from defaults, an optional YAML file, COMMUTER_*
// variables (after .env loading) and finally any flags given on the command line.
func loadConfig(args []string, lookup func(string) (string, bool)) (appconf.Config, error) {
	flags := appconf.Defaults()
	var apiKeysFlag, configPath string

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.IntVar(&flags.Port, "port", flags.Port, "API server port")
	fs.StringVar(&flags.Env, "env", flags.Env, "Environment (development|test|production)")
	fs.StringVar(&apiKeysFlag, "api-keys", "test", "Comma Separated API Keys (test, etc)")
	fs.IntVar(&flags.RateLimit, "rate-limit", flags.RateLimit, "Requests per second per API key, 0 disables")
	fs.StringVar(&flags.DataPath, "data-path", flags.DataPath, "SQLite database path, or :memory:")
	fs.StringVar(&flags.SeedFile, "seed-file", flags.SeedFile, "Seed JSON with stops and routes")
	fs.StringVar(&flags.GtfsURL, "gtfs-url", flags.GtfsURL, "Static GTFS zip, local path or URL")
	fs.Float64Var(&flags.MaxWalkKm, "max-walk-km", flags.MaxWalkKm, "Longest walk to or from a stop, 0 disables")
	fs.StringVar(&flags.Timezone, "timezone", flags.Timezone, "Service time zone used for rush hour")
	fs.DurationVar(&flags.RefreshInterval, "refresh-interval", flags.RefreshInterval, "Reload the network this often, 0 disables")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Debug logging")
	fs.StringVar(&configPath, "config", "", "Optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}
	flags.ApiKeys = appconf.SplitList(apiKeysFlag)

	cfg := appconf.Defaults()
	if configPath != "" {
		if err := appconf.LoadFile(configPath, &cfg); err != nil {
			return appconf.Config{}, err
		}
	}
	if err := appconf.ApplyEnv(&cfg, lookup); err != nil {
		return appconf.Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = flags.Port
		case "env":
			cfg.Env = flags.Env
		case "api-keys":
			cfg.ApiKeys = flags.ApiKeys
		case "rate-limit":
			cfg.RateLimit = flags.RateLimit
		case "data-path":
			cfg.DataPath = flags.DataPath
		case "seed-file":
			cfg.SeedFile = flags.SeedFile
		case "gtfs-url":
			cfg.GtfsURL = flags.GtfsURL
		case "max-walk-km":
			cfg.MaxWalkKm = flags.MaxWalkKm
		case "timezone":
			cfg.Timezone = flags.Timezone
		case "refresh-interval":
			cfg.RefreshInterval = flags.RefreshInterval
		case "verbose":
			cfg.Verbose = flags.Verbose
		}
	})

	if err := cfg.Validate(); err != nil {
		return appconf.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if err := appconf.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg, err := loadConfig(args, os.LookupEnv)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(stdout, cfg.Environment().String(), cfg.Verbose)
	slog.SetDefault(logger)

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	transitConfig := transit.Config{
		DataPath:        cfg.DataPath,
		SeedFile:        cfg.SeedFile,
		GtfsURL:         cfg.GtfsURL,
		RefreshInterval: cfg.RefreshInterval,
		Env:             cfg.Environment(),
		Verbose:         cfg.Verbose,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager, err := transit.InitManager(ctx, transitConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize transit manager: %w", err)
	}
	defer manager.Shutdown()
	manager.LogStatistics()

	application := &app.Application{
		Config:         cfg,
		TransitConfig:  transitConfig,
		Logger:         logger,
		TransitManager: manager,
		Planner: planner.New(manager,
			planner.WithLocation(location),
			planner.WithMaxWalkKm(cfg.MaxWalkKm),
			planner.WithLogger(logger)),
	}

	api := restapi.NewRestAPI(application)
	defer api.Shutdown()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Environment().String())
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
