package app

import (
	"log/slog"
	"time"

	"commuter.routing.org/internal/appconf"
	"commuter.routing.org/internal/planner"
	"commuter.routing.org/internal/transit"
)

// Application holds the dependencies for our HTTP handlers, helpers, and middleware.
type Application struct {
	Config         appconf.Config
	TransitConfig  transit.Config
	Logger         *slog.Logger
	TransitManager *transit.Manager
	Planner        *planner.Planner
}

// Now returns the planner clock in the service location.
func (app *Application) Now() time.Time {
	if app.Planner != nil {
		return app.Planner.Now()
	}
	return time.Now()
}
