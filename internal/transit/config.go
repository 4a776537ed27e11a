package transit

import (
	"strings"
	"time"

	"commuter.routing.org/internal/appconf"
)

type Config struct {
	// DataPath is the SQLite database holding the network, or ":memory:".
	DataPath string
	// SeedFile is an optional seed JSON document imported at startup and on refresh.
	SeedFile string
	// GtfsURL is an optional static GTFS feed, either a local zip path or an http(s) URL.
	GtfsURL         string
	RefreshInterval time.Duration
	Env             appconf.Environment
	Verbose         bool
}

func (config Config) gtfsIsRemote() bool {
	return strings.HasPrefix(config.GtfsURL, "http://") || strings.HasPrefix(config.GtfsURL, "https://")
}

func (config Config) refreshEnabled() bool {
	return config.RefreshInterval > 0
}
