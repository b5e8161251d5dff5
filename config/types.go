package config

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port                int    `yaml:"port" validate:"gt=0,lte=65535"`
	StaticDir           string `yaml:"staticDir"`
	AllowedOrigin       string `yaml:"allowedOrigin"`
	VehicleFields       string `yaml:"vehicleFields" validate:"omitempty,oneof=basic detailed"`
	UpstreamErrorPolicy string `yaml:"upstreamErrorPolicy" validate:"omitempty,oneof=empty error"`
	ArrivalsLimit       int    `yaml:"arrivalsLimit" validate:"gte=0"`
}

// GTFSRTConfig contains GTFS-Realtime feed configuration
type GTFSRTConfig struct {
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"required,url"`
	TripUpdatesURL      string `yaml:"tripUpdatesURL" validate:"required,url"`
	TimeoutMS           int    `yaml:"timeoutMS" validate:"gte=0"`
	CacheTTLMS          int    `yaml:"cacheTTLMS" validate:"gte=0"`
}

// UpdaterConfig contains the arrivals-by-stop refresh loop configuration
type UpdaterConfig struct {
	IntervalMS int    `yaml:"intervalMS" validate:"gt=0"`
	Store      string `yaml:"store" validate:"oneof=file redis"`
	OutputPath string `yaml:"outputPath" validate:"required_if=Store file"`
	RedisAddr  string `yaml:"redisAddr" validate:"required_if=Store redis"`
	RedisKey   string `yaml:"redisKey"`
}

// GTFSConfig contains static schedule preprocessing configuration
type GTFSConfig struct {
	InputPath string `yaml:"inputPath"`
	OutputDir string `yaml:"outputDir"`
}

// TelemetryConfig toggles tracing and profiling
type TelemetryConfig struct {
	Tracing           bool   `yaml:"tracing"`
	TracingEndpoint   string `yaml:"tracingEndpoint"`
	TracingProtocol   string `yaml:"tracingProtocol" validate:"omitempty,oneof=grpc http/protobuf"`
	Profiling         bool   `yaml:"profiling"`
	ProfilingEndpoint string `yaml:"profilingEndpoint" validate:"omitempty,url"`
	ServiceName       string `yaml:"serviceName"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	GTFSRT    GTFSRTConfig    `yaml:"gtfsrt"`
	Updater   UpdaterConfig   `yaml:"updater"`
	GTFS      GTFSConfig      `yaml:"gtfs"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}
