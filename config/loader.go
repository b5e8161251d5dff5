package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default upstream feeds (Durham Region Transit)
const (
	DefaultVehiclePositionsURL = "https://drtonline.durhamregiontransit.com/gtfsrealtime/VehiclePositions"
	DefaultTripUpdatesURL      = "https://drtonline.durhamregiontransit.com/gtfsrealtime/TripUpdates"
)

// DefaultArrivalsLimit caps /arrivals/{stopID} when arrivalsLimit is not set.
// An explicit 0 returns every upcoming arrival.
const DefaultArrivalsLimit = 2

// Config is the global application configuration
var Config AppConfig

// SearchPaths are tried in order by LoadAppConfig
var SearchPaths = []string{"config.yml", "./config/config.yml"}

// LoadAppConfig loads the first config file found in SearchPaths into Config.
// When none exists the defaults (plus environment overrides) are used.
func LoadAppConfig() error {
	_ = godotenv.Load()

	var data []byte
	var err error
	for _, p := range SearchPaths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	cfg, err := Parse(data)
	if err != nil {
		return err
	}
	Config = *cfg
	return nil
}

// Load reads, defaults and validates the config file at path
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and defaults, then validates.
// Empty input yields the default configuration.
func Parse(data []byte) (*AppConfig, error) {
	// zero is meaningful for arrivalsLimit, so its default is seeded before decoding
	cfg := AppConfig{Server: ServerConfig{ArrivalsLimit: DefaultArrivalsLimit}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = "static"
	}
	if cfg.Server.AllowedOrigin == "" {
		cfg.Server.AllowedOrigin = "*"
	}
	if cfg.Server.VehicleFields == "" {
		cfg.Server.VehicleFields = "detailed"
	}
	if cfg.Server.UpstreamErrorPolicy == "" {
		cfg.Server.UpstreamErrorPolicy = "empty"
	}
	if cfg.GTFSRT.VehiclePositionsURL == "" {
		cfg.GTFSRT.VehiclePositionsURL = DefaultVehiclePositionsURL
	}
	if cfg.GTFSRT.TripUpdatesURL == "" {
		cfg.GTFSRT.TripUpdatesURL = DefaultTripUpdatesURL
	}
	if cfg.Updater.IntervalMS == 0 {
		cfg.Updater.IntervalMS = 300000
	}
	if cfg.Updater.Store == "" {
		cfg.Updater.Store = "file"
	}
	if cfg.Updater.OutputPath == "" && cfg.Updater.Store == "file" {
		cfg.Updater.OutputPath = "static/trip_updates_by_stop.json"
	}
	if cfg.Updater.RedisKey == "" {
		cfg.Updater.RedisKey = "trip_updates_by_stop"
	}
	if cfg.GTFS.InputPath == "" {
		cfg.GTFS.InputPath = "static/gtfs"
	}
	if cfg.GTFS.OutputDir == "" {
		cfg.GTFS.OutputDir = "static"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "transit-live"
	}
	if cfg.Telemetry.TracingProtocol == "" {
		cfg.Telemetry.TracingProtocol = "http/protobuf"
	}
	if cfg.Telemetry.TracingEndpoint == "" {
		if cfg.Telemetry.TracingProtocol == "grpc" {
			cfg.Telemetry.TracingEndpoint = "localhost:4317"
		} else {
			cfg.Telemetry.TracingEndpoint = "localhost:4318"
		}
	}
	if cfg.Telemetry.ProfilingEndpoint == "" {
		cfg.Telemetry.ProfilingEndpoint = "http://localhost:4040"
	}
}

// applyEnv overlays the few settings deployments commonly change without a file
func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("VEHICLE_POSITIONS_URL"); v != "" {
		cfg.GTFSRT.VehiclePositionsURL = v
	}
	if v := os.Getenv("TRIP_UPDATES_URL"); v != "" {
		cfg.GTFSRT.TripUpdatesURL = v
	}
	if v := os.Getenv("UPDATE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid UPDATE_INTERVAL: %q", v)
		}
		cfg.Updater.IntervalMS = int(d / time.Millisecond)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Updater.RedisAddr = v
	}
	if v := os.Getenv("OTEL_TRACING_ENABLED"); v != "" {
		cfg.Telemetry.Tracing = isTrue(v)
	}
	if v := os.Getenv("PYROSCOPE_PROFILING_ENABLED"); v != "" {
		cfg.Telemetry.Profiling = isTrue(v)
	}
	return nil
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}

// UpdateInterval returns the refresh period of the arrivals updater
func (c AppConfig) UpdateInterval() time.Duration {
	return time.Duration(c.Updater.IntervalMS) * time.Millisecond
}

// FetchTimeout returns the upstream HTTP timeout; zero means no timeout
func (c AppConfig) FetchTimeout() time.Duration {
	return time.Duration(c.GTFSRT.TimeoutMS) * time.Millisecond
}

// CacheTTL returns the feed cache lifetime; zero disables the cache
func (c AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.GTFSRT.CacheTTLMS) * time.Millisecond
}
