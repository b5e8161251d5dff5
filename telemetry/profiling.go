package telemetry

import (
	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-live/config"
)

// InitProfiling starts continuous profiling when enabled in cfg
func InitProfiling(cfg config.TelemetryConfig, log *zap.SugaredLogger) (func(), error) {
	if !cfg.Profiling {
		log.Debugw("profiling disabled")
		return func() {}, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.ProfilingEndpoint,
		Logger:          pyroscope.StandardLogger,
		Tags: map[string]string{
			"service": cfg.ServiceName,
			"version": Version,
		},
	})
	if err != nil {
		log.Warnw("failed to start pyroscope profiler", "error", err)
		return func() {}, nil
	}

	log.Infow("profiling enabled", "server", cfg.ProfilingEndpoint)

	return func() {
		if err := profiler.Stop(); err != nil {
			log.Errorw("error stopping pyroscope profiler", "error", err)
		}
	}, nil
}
