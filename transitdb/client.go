package transitdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"commuter.routing.org/internal/appconf"
	"commuter.routing.org/internal/logging"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schema.sql
var ddl string

// ErrInMemoryRequired is returned when a test environment points at a database file.
var ErrInMemoryRequired = errors.New("test database must use in-memory storage")

// Client is the main entry point for the library
type Client struct {
	config        Config
	DB            *sql.DB
	logger        *slog.Logger
	importRuntime atomic.Int64
}

// NewClient opens the database and applies the schema.
func NewClient(config Config) (*Client, error) {
	db, err := createDB(config)
	if err != nil {
		return nil, err
	}

	client := &Client{
		config: config,
		DB:     db,
		logger: slog.New(slog.DiscardHandler),
	}
	return client, nil
}

// WithLogger attaches a logger for import progress and failures.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// ImportRuntime reports how long the most recent import took.
func (c *Client) ImportRuntime() time.Duration {
	return time.Duration(c.importRuntime.Load())
}

func createDB(config Config) (*sql.DB, error) {
	if config.Env == appconf.Test && config.DBPath != ":memory:" {
		return nil, fmt.Errorf("%w: got %q", ErrInMemoryRequired, config.DBPath)
	}

	db, err := sql.Open("sqlite", config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// every connection to :memory: is a separate database
	if config.DBPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := performDatabaseMigration(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}

	return db, nil
}

func performDatabaseMigration(ctx context.Context, db *sql.DB) error {
	statements := strings.Split(ddl, "-- migrate")
	for _, stmt := range statements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, trimmedStmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmedStmt, err)
		}
	}
	return nil
}

// ImportFromFile imports a seed JSON document ({"stops": [...], "routes": [...]}) from path.
func (c *Client) ImportFromFile(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("error reading seed file: %w", err)
	}
	return c.importWithSource(ctx, data, path, importKindSeed)
}

// ImportGTFS imports a static GTFS zip file from path.
func (c *Client) ImportGTFS(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("error reading GTFS file: %w", err)
	}
	return c.importWithSource(ctx, data, path, importKindGTFS)
}

// DownloadAndStore downloads a static GTFS zip from url and imports it.
func (c *Client) DownloadAndStore(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("error downloading GTFS data: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "gtfs_download_body")

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("error downloading GTFS data: unexpected status %s", resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("error reading GTFS data: %w", err)
	}

	return c.importWithSource(ctx, b, url, importKindGTFS)
}

// importWithSource replaces the stored network with the one decoded from data. The import is
// skipped, returning false, when data hashes the same as the previous import.
func (c *Client) importWithSource(ctx context.Context, data []byte, source string, kind importKind) (bool, error) {
	startTime := time.Now()
	defer func() {
		c.importRuntime.Store(int64(time.Since(startTime)))
	}()

	if len(data) == 0 {
		return false, fmt.Errorf("empty %s data from %s", kind, source)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	previous, err := c.GetImportMetadata(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	if err == nil && previous.FileHash == hash {
		logging.LogOperation(c.logger, "transit data unchanged, skipping import",
			slog.String("source", source),
			slog.String("kind", string(kind)))
		return false, nil
	}

	var dataset Dataset
	switch kind {
	case importKindSeed:
		dataset, err = decodeSeed(data)
	case importKindGTFS:
		dataset, err = decodeGTFS(data, GTFSOptions{})
	default:
		err = fmt.Errorf("unknown import kind %q", kind)
	}
	if err != nil {
		return false, err
	}

	if err := c.ReplaceAll(ctx, dataset); err != nil {
		return false, err
	}

	if err := c.setImportMetadata(ctx, ImportMetadata{
		FileHash:   hash,
		FileSource: source,
		Kind:       string(kind),
		ImportTime: time.Now().Unix(),
	}); err != nil {
		return false, err
	}

	logging.LogOperation(c.logger, "transit data imported",
		slog.String("source", source),
		slog.String("kind", string(kind)),
		slog.Int("stops", len(dataset.Stops)),
		slog.Int("routes", len(dataset.Routes)),
		slog.Duration("duration", time.Since(startTime)))

	if c.config.verbose {
		counts, err := c.TableCounts()
		if err == nil {
			for table, n := range counts {
				c.logger.Debug("table count", slog.String("table", table), slog.Int("rows", n))
			}
		}
	}

	return true, nil
}
