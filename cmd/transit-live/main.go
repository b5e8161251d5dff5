package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theoremus-urban-solutions/transit-live/config"
	"github.com/theoremus-urban-solutions/transit-live/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-live/internal"
	"github.com/theoremus-urban-solutions/transit-live/metrics"
	"github.com/theoremus-urban-solutions/transit-live/server"
	"github.com/theoremus-urban-solutions/transit-live/telemetry"
	"github.com/theoremus-urban-solutions/transit-live/updater"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (default: search config.yml, ./config/config.yml)")
	flag.Parse()

	internal.InitLogging()
	defer internal.SyncLogging()
	log := internal.Logger()

	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalw("Failed to load config", "path", *configPath, "error", err)
		}
		config.Config = *cfg
	} else if err := config.LoadAppConfig(); err != nil {
		log.Fatalw("Failed to load config", "error", err)
	}
	cfg := config.Config

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Telemetry, internal.Named("tracing"))
	if err != nil {
		log.Fatalw("Failed to initialize tracing", "error", err)
	}
	defer shutdownTracing()

	shutdownProfiling, err := telemetry.InitProfiling(cfg.Telemetry, internal.Named("profiling"))
	if err != nil {
		log.Fatalw("Failed to initialize profiling", "error", err)
	}
	defer shutdownProfiling()

	collector := metrics.NewCollector(cfg.UpdateInterval())
	client := gtfsrt.NewClient(cfg.FetchTimeout())

	vehicles := gtfsrt.NewSource("vehicle_positions", cfg.GTFSRT.VehiclePositionsURL, client,
		gtfsrt.WithCache(cfg.CacheTTL()), gtfsrt.WithObserver(collector))
	tripUpdates := gtfsrt.NewSource("trip_updates", cfg.GTFSRT.TripUpdatesURL, client,
		gtfsrt.WithObserver(collector))
	for _, src := range []*gtfsrt.Source{vehicles, tripUpdates} {
		log.Infow("Feed configured", "feed", src.Name(), "url", src.URL())
	}

	store, err := newStore(ctx, cfg.Updater)
	if err != nil {
		log.Fatalw("Failed to open arrivals store", "store", cfg.Updater.Store, "error", err)
	}

	upd := updater.New(tripUpdates, store, cfg.UpdateInterval(), internal.Named("updater"),
		updater.WithObserver(collector))

	srv, err := server.New(cfg.Server, server.Deps{
		Vehicles: vehicles,
		Arrivals: store,
		Refresh:  upd,
		Metrics:  collector.Handler(),
		Requests: collector,
		Log:      internal.Named("server"),
	})
	if err != nil {
		log.Fatalw("Failed to create server", "error", err)
	}

	updaterDone := make(chan struct{})
	go func() {
		defer close(updaterDone)
		if err := upd.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("Updater stopped", "error", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.ListenAndServe() }()

	failed := false
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Errorw("Server error", "error", err)
			failed = true
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown error", "error", err)
	} else {
		log.Info("Server shut down successfully")
	}

	select {
	case <-updaterDone:
	case <-shutdownCtx.Done():
		log.Warn("Updater did not stop before the shutdown deadline")
	}

	if failed {
		// deferred calls do not run past os.Exit
		shutdownProfiling()
		shutdownTracing()
		internal.SyncLogging()
		os.Exit(1)
	}
}

func newStore(ctx context.Context, cfg config.UpdaterConfig) (updater.Store, error) {
	if cfg.Store != "redis" {
		return updater.NewFileStore(cfg.OutputPath), nil
	}
	rs := updater.NewRedisStore(updater.NewRedisClient(cfg.RedisAddr), cfg.RedisKey)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		return nil, err
	}
	return rs, nil
}
