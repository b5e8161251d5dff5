package gtfsrt

import (
	"context"
	"errors"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/bluele/gcache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/theoremus-urban-solutions/transit-live/telemetry"
)

// Status is the outcome class of one Load
type Status int

const (
	StatusOK Status = iota
	StatusTransportError
	StatusDecodeError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTransportError:
		return "transport_error"
	case StatusDecodeError:
		return "decode_error"
	}
	return "unknown"
}

// Result of a Load. Feed is nil unless Status is StatusOK.
type Result struct {
	Feed   *gtfsrtpb.FeedMessage
	Status Status
	Err    error
}

// OK reports whether the feed was fetched and decoded
func (r Result) OK() bool { return r.Status == StatusOK && r.Feed != nil }

// Observer receives one call per fetch attempt
type Observer interface {
	ObserveFetch(feed string, status Status, d time.Duration)
}

// Fetcher is the retrieval half of a Source
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Source binds a fetcher and the decoder to one feed URL
type Source struct {
	name     string
	url      string
	fetcher  Fetcher
	cache    gcache.Cache
	observer Observer
	tracer   trace.Tracer
}

// SourceOption configures a Source
type SourceOption func(*Source)

// WithCache shares decoded feeds across calls for ttl. Zero disables it.
func WithCache(ttl time.Duration) SourceOption {
	return func(s *Source) {
		if ttl > 0 {
			s.cache = gcache.New(1).LRU().Expiration(ttl).Build()
		}
	}
}

// WithObserver reports each fetch to o
func WithObserver(o Observer) SourceOption {
	return func(s *Source) { s.observer = o }
}

// NewSource creates a source named name (used in logs and metrics) for url
func NewSource(name, url string, fetcher Fetcher, opts ...SourceOption) *Source {
	s := &Source{
		name:    name,
		url:     url,
		fetcher: fetcher,
		tracer:  otel.Tracer("transit-live/gtfsrt"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name of the feed
func (s *Source) Name() string { return s.name }

// URL of the feed
func (s *Source) URL() string { return s.url }

// Load fetches and decodes the feed once. It never panics on upstream
// failures; the failure class is carried in the Result.
func (s *Source) Load(ctx context.Context) Result {
	if s.cache != nil {
		if v, err := s.cache.Get(s.url); err == nil {
			if fm, ok := v.(*gtfsrtpb.FeedMessage); ok {
				return Result{Feed: fm, Status: StatusOK}
			}
		}
	}

	ctx, span := s.tracer.Start(ctx, "gtfsrt.load",
		trace.WithAttributes(
			attribute.String("feed.name", s.name),
			attribute.String("feed.url", s.url),
		))
	defer span.End()

	start := time.Now()
	res := s.load(ctx)
	if s.observer != nil {
		s.observer.ObserveFetch(s.name, res.Status, time.Since(start))
	}

	switch res.Status {
	case StatusOK:
		span.SetAttributes(attribute.Int("feed.entities", len(res.Feed.GetEntity())))
		telemetry.SetSpanOk(span)
		if s.cache != nil {
			_ = s.cache.Set(s.url, res.Feed)
		}
	case StatusTransportError:
		errType := telemetry.ErrorTypeNetwork
		var fe *FeedError
		if errors.As(res.Err, &fe) && fe.StatusCode != 0 {
			errType = telemetry.ErrorTypeHTTP
			span.SetAttributes(attribute.Int("http.status_code", fe.StatusCode))
		}
		telemetry.RecordError(span, res.Err, errType, true)
	case StatusDecodeError:
		telemetry.RecordError(span, res.Err, telemetry.ErrorTypeParse, false)
	}
	return res
}

func (s *Source) load(ctx context.Context) Result {
	b, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return Result{Status: StatusTransportError, Err: asKind(err, KindTransport, s.url)}
	}
	fm, err := Decode(b)
	if err != nil {
		return Result{Status: StatusDecodeError, Err: asKind(err, KindDecode, s.url)}
	}
	return Result{Feed: fm, Status: StatusOK}
}

// asKind makes sure err is a *FeedError carrying the feed URL
func asKind(err error, kind Kind, url string) error {
	var fe *FeedError
	if errors.As(err, &fe) {
		if fe.URL == "" {
			fe.URL = url
		}
		return fe
	}
	return &FeedError{Kind: kind, URL: url, Err: err}
}
