// Package server exposes the live transit views over HTTP.
//
// Live handlers fetch and decode the vehicle positions feed per request.
// The arrivals handlers read whatever artifact the updater stored last.
// When the upstream feed fails, the configured policy decides between an
// empty 200 response and a 502; the failure class is always reported in
// the X-Feed-Status header.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-live/config"
	"github.com/theoremus-urban-solutions/transit-live/converter"
	"github.com/theoremus-urban-solutions/transit-live/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-live/updater"
)

// FeedStatusHeader carries the gtfsrt.Status of the request's feed load
const FeedStatusHeader = "X-Feed-Status"

// Upstream error policies
const (
	PolicyEmpty = "empty"
	PolicyError = "error"
)

// FeedLoader yields one decoded feed per call
type FeedLoader interface {
	Load(ctx context.Context) gtfsrt.Result
}

// RefreshStatus reports the updater's progress for the health endpoint
type RefreshStatus interface {
	LastSuccess() time.Time
	FeedEpoch() int64
}

// RequestObserver counts responses per route template
type RequestObserver interface {
	ObserveRequest(route string, code int)
}

// Deps are the collaborators a Server needs. Refresh, Metrics and Requests
// are optional.
type Deps struct {
	Vehicles FeedLoader
	Arrivals updater.Store
	Refresh  RefreshStatus
	Metrics  http.Handler
	Requests RequestObserver
	Log      *zap.SugaredLogger
	Now      func() time.Time
}

type Server struct {
	cfg    config.ServerConfig
	deps   Deps
	fields converter.FieldSet
	router *mux.Router
	http   *http.Server
}

func New(cfg config.ServerConfig, deps Deps) (*Server, error) {
	if deps.Vehicles == nil || deps.Arrivals == nil {
		return nil, errors.New("server: vehicles feed and arrivals store are required")
	}
	fields, err := converter.ParseFieldSet(cfg.VehicleFields)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop().Sugar()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &Server{cfg: cfg, deps: deps, fields: fields}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.cors, s.observe)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/routes", s.handleRoutes).Methods(http.MethodGet)
	r.HandleFunc("/vehicles", s.handleVehicles).Methods(http.MethodGet)
	r.HandleFunc("/arrivals", s.handleArrivals).Methods(http.MethodGet)
	r.HandleFunc("/arrivals/{stopID}", s.handleStopArrivals).Methods(http.MethodGet)
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics).Methods(http.MethodGet)
	}
	r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.StaticDir))),
	).Methods(http.MethodGet)

	return r
}

// Handler is the instrumented router
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "transit-live")
}

// ListenAndServe blocks until the server stops. A graceful Shutdown
// returns nil.
func (s *Server) ListenAndServe() error {
	s.deps.Log.Infow("Server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
