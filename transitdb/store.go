package transitdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"commuter.routing.org/internal/graph"
	"commuter.routing.org/internal/logging"
)

// Dataset is a full transit network in raw form.
type Dataset struct {
	Stops  []graph.RawStop  `json:"stops"`
	Routes []graph.RawRoute `json:"routes"`
}

// ReplaceAll swaps the stored network for dataset in one transaction.
func (c *Client) ReplaceAll(ctx context.Context, dataset Dataset) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "replace_transit_data")

	if _, err := tx.ExecContext(ctx, `DELETE FROM stops`); err != nil {
		return fmt.Errorf("error clearing stops: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM routes`); err != nil {
		return fmt.Errorf("error clearing routes: %w", err)
	}
	if err := c.insertStops(ctx, tx, dataset.Stops, 0); err != nil {
		return err
	}
	if err := c.insertRoutes(ctx, tx, dataset.Routes, 0); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// InsertStops appends stops after the ones already stored.
func (c *Client) InsertStops(ctx context.Context, stops []graph.RawStop) error {
	return c.appendInTx(ctx, "insert_stops", func(tx *sql.Tx) error {
		start, err := nextPosition(ctx, tx, "stops")
		if err != nil {
			return err
		}
		return c.insertStops(ctx, tx, stops, start)
	})
}

// InsertRoutes appends routes after the ones already stored.
func (c *Client) InsertRoutes(ctx context.Context, routes []graph.RawRoute) error {
	return c.appendInTx(ctx, "insert_routes", func(tx *sql.Tx) error {
		start, err := nextPosition(ctx, tx, "routes")
		if err != nil {
			return err
		}
		return c.insertRoutes(ctx, tx, routes, start)
	})
}

func (c *Client) appendInTx(ctx context.Context, operation string, fn func(*sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, operation)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func nextPosition(ctx context.Context, tx *sql.Tx, table string) (int, error) {
	var next int
	query := fmt.Sprintf("SELECT COALESCE(MAX(position) + 1, 0) FROM %s", table)
	if err := tx.QueryRowContext(ctx, query).Scan(&next); err != nil {
		return 0, fmt.Errorf("error reading %s position: %w", table, err)
	}
	return next, nil
}

func (c *Client) insertStops(ctx context.Context, tx *sql.Tx, stops []graph.RawStop, start int) (err error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stops (position, stop_id, stop_name, lat, lng, stop_type)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer logging.HandleDeferredError(&err, stmt.Close, c.logger, "close_stop_statement")

	for i, s := range stops {
		_, err := stmt.ExecContext(ctx, start+i, storeValue(s.ID), s.Name, storeValue(s.Lat), storeValue(s.Lng), s.Type)
		if err != nil {
			return fmt.Errorf("error inserting stop %v: %w", s.ID, err)
		}
	}
	return nil
}

func (c *Client) insertRoutes(ctx context.Context, tx *sql.Tx, routes []graph.RawRoute, start int) (err error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO routes (position, route_id, route_name, mode, fare, waypoints)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer logging.HandleDeferredError(&err, stmt.Close, c.logger, "close_route_statement")

	for i, r := range routes {
		waypoints := r.Waypoints
		if waypoints == nil {
			waypoints = []any{}
		}
		encoded, err := json.Marshal(waypoints)
		if err != nil {
			return fmt.Errorf("error encoding waypoints of route %v: %w", r.ID, err)
		}
		_, err = stmt.ExecContext(ctx, start+i, storeValue(r.ID), r.RouteName, r.Mode, storeValue(r.Fare), string(encoded))
		if err != nil {
			return fmt.Errorf("error inserting route %v: %w", r.ID, err)
		}
	}
	return nil
}

// ListStops returns every stored stop in insertion order.
func (c *Client) ListStops(ctx context.Context) ([]graph.RawStop, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT stop_id, stop_name, lat, lng, stop_type FROM stops ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("error querying stops: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows, c.logger, "list_stops")

	var stops []graph.RawStop
	for rows.Next() {
		var s graph.RawStop
		if err := rows.Scan(&s.ID, &s.Name, &s.Lat, &s.Lng, &s.Type); err != nil {
			return nil, fmt.Errorf("error scanning stop: %w", err)
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

// ListRoutes returns every stored route in insertion order. Waypoints that are not a JSON
// array are returned empty so the build reports the route as short.
func (c *Client) ListRoutes(ctx context.Context) ([]graph.RawRoute, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT route_id, route_name, mode, fare, waypoints FROM routes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("error querying routes: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows, c.logger, "list_routes")

	var routes []graph.RawRoute
	for rows.Next() {
		var r graph.RawRoute
		var waypoints string
		if err := rows.Scan(&r.ID, &r.RouteName, &r.Mode, &r.Fare, &waypoints); err != nil {
			return nil, fmt.Errorf("error scanning route: %w", err)
		}
		if err := json.Unmarshal([]byte(waypoints), &r.Waypoints); err != nil {
			r.Waypoints = nil
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

// Load returns the whole stored network.
func (c *Client) Load(ctx context.Context) (Dataset, error) {
	stops, err := c.ListStops(ctx)
	if err != nil {
		return Dataset{}, err
	}
	routes, err := c.ListRoutes(ctx)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Stops: stops, Routes: routes}, nil
}

// storeValue converts decoded JSON values into types the driver binds.
func storeValue(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case nil, string, int64, float64, bool, []byte:
		return n
	case int:
		return int64(n)
	default:
		return fmt.Sprint(n)
	}
}
