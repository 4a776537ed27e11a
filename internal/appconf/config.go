package appconf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort            = 4000
	DefaultMaxWalkKm       = 3.0
	DefaultTimezone        = "Asia/Manila"
	DefaultRateLimit       = 100
	DefaultRefreshInterval = 0
)

// Config holds all the configuration settings for the server. Values start from the
// command-line flags and may be overlaid by a YAML file and then by environment variables.
type Config struct {
	Port      int      `yaml:"port" validate:"min=1,max=65535"`
	Env       string   `yaml:"env" validate:"omitempty,oneof=development test production prod"`
	ApiKeys   []string `yaml:"apiKeys" validate:"dive,required"`
	RateLimit int      `yaml:"rateLimit" validate:"gte=0"`

	DataPath string `yaml:"dataPath" validate:"required"`
	SeedFile string `yaml:"seedFile"`
	GtfsURL  string `yaml:"gtfsUrl"`

	MaxWalkKm       float64       `yaml:"maxWalkKm" validate:"gte=0,lte=25"`
	Timezone        string        `yaml:"timezone" validate:"required,timezone"`
	RefreshInterval time.Duration `yaml:"refreshInterval" validate:"gte=0"`
	Verbose         bool          `yaml:"verbose"`
}

// Defaults returns the configuration used when no flag, file or variable overrides it.
func Defaults() Config {
	return Config{
		Port:            DefaultPort,
		Env:             "development",
		ApiKeys:         []string{"test"},
		RateLimit:       DefaultRateLimit,
		DataPath:        "commuter.db",
		MaxWalkKm:       DefaultMaxWalkKm,
		Timezone:        DefaultTimezone,
		RefreshInterval: DefaultRefreshInterval,
	}
}

// Environment returns the parsed Env value.
func (c Config) Environment() Environment {
	return EnvFlagToEnvironment(c.Env)
}

// Location loads the service time zone. Rush hour windows are evaluated in this zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Environment() == Test && c.DataPath != ":memory:" {
		return errors.New("invalid configuration: test environment requires an in-memory data path")
	}
	return nil
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the file keep
// their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files into the process environment.
// Missing files are ignored; existing variables are not overwritten.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays COMMUTER_* environment variables onto cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup("COMMUTER_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("COMMUTER_PORT: %w", err)
		}
		cfg.Port = port
	}
	if v, ok := lookup("COMMUTER_ENV"); ok {
		cfg.Env = v
	}
	if v, ok := lookup("COMMUTER_API_KEYS"); ok {
		cfg.ApiKeys = SplitList(v)
	}
	if v, ok := lookup("COMMUTER_DATA_PATH"); ok {
		cfg.DataPath = v
	}
	if v, ok := lookup("COMMUTER_SEED_FILE"); ok {
		cfg.SeedFile = v
	}
	if v, ok := lookup("COMMUTER_GTFS_URL"); ok {
		cfg.GtfsURL = v
	}
	if v, ok := lookup("COMMUTER_TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := lookup("COMMUTER_MAX_WALK_KM"); ok {
		km, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("COMMUTER_MAX_WALK_KM: %w", err)
		}
		cfg.MaxWalkKm = km
	}
	if v, ok := lookup("COMMUTER_REFRESH_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("COMMUTER_REFRESH_INTERVAL: %w", err)
		}
		cfg.RefreshInterval = d
	}
	return nil
}

// SplitList splits a comma separated flag value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
