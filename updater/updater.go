// Package updater keeps the arrivals-by-stop artifact fresh.
//
// An Updater runs one loop: refresh immediately, then wait the full interval
// after every cycle, whether it succeeded or not. Failures are logged and
// counted but never stop the loop; the previous artifact stays in place.
package updater

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-live/converter"
	"github.com/theoremus-urban-solutions/transit-live/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-live/telemetry"
)

// Loader yields one decoded trip-updates feed per call
type Loader interface {
	Load(ctx context.Context) gtfsrt.Result
}

// Observer receives the outcome of every cycle
type Observer interface {
	ObserveRefresh(err error, stops int, at time.Time, d time.Duration)
}

type Updater struct {
	source   Loader
	store    Store
	interval time.Duration
	log      *zap.SugaredLogger
	observer Observer
	tracer   trace.Tracer
	now      func() time.Time

	mu          sync.RWMutex
	lastSuccess time.Time
	feedEpoch   int64
}

// Option configures an Updater
type Option func(*Updater)

// WithObserver reports each cycle to o
func WithObserver(o Observer) Option {
	return func(u *Updater) { u.observer = o }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(u *Updater) { u.now = now }
}

func New(source Loader, store Store, interval time.Duration, log *zap.SugaredLogger, opts ...Option) *Updater {
	u := &Updater{
		source:   source,
		store:    store,
		interval: interval,
		log:      log,
		tracer:   otel.Tracer("transit-live/updater"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Run blocks until ctx is cancelled
func (u *Updater) Run(ctx context.Context) error {
	u.log.Infow("Arrivals updater started", "interval", u.interval)

	if err := u.RefreshOnce(ctx); err != nil {
		u.log.Errorw("Error updating trip data", "error", err)
	}

	timer := time.NewTimer(u.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			u.log.Info("Arrivals updater stopped")
			return ctx.Err()
		case <-timer.C:
			if err := u.RefreshOnce(ctx); err != nil {
				u.log.Errorw("Error updating trip data", "error", err)
			}
			timer.Reset(u.interval)
		}
	}
}

// RefreshOnce runs a single fetch, aggregate and store cycle
func (u *Updater) RefreshOnce(ctx context.Context) error {
	ctx, span := u.tracer.Start(ctx, "updater.refresh")
	defer span.End()

	start := u.now()
	stops, err := u.refresh(ctx)
	if u.observer != nil {
		at := start
		if err == nil {
			at = u.LastSuccess()
		}
		u.observer.ObserveRefresh(err, stops, at, u.now().Sub(start))
	}
	if err != nil {
		return err
	}

	span.SetAttributes(attribute.Int("stops", stops))
	telemetry.SetSpanOk(span)
	u.log.Infow("Trip updates saved", "stops", stops, "duration", u.now().Sub(start))
	return nil
}

func (u *Updater) refresh(ctx context.Context) (int, error) {
	span := trace.SpanFromContext(ctx)

	res := u.source.Load(ctx)
	if !res.OK() {
		errType, transient := telemetry.ErrorTypeNetwork, true
		if res.Status == gtfsrt.StatusDecodeError {
			errType, transient = telemetry.ErrorTypeParse, false
		}
		telemetry.RecordError(span, res.Err, errType, transient)
		return 0, fmt.Errorf("load trip updates: %w", res.Err)
	}

	byStop := converter.ArrivalsByStop(res.Feed)
	b, err := converter.MarshalArrivals(byStop)
	if err != nil {
		telemetry.RecordError(span, err, telemetry.ErrorTypeParse, false)
		return 0, err
	}
	if err := u.store.Save(ctx, b); err != nil {
		telemetry.RecordError(span, err, telemetry.ErrorTypeStorage, true)
		return 0, fmt.Errorf("store arrivals: %w", err)
	}

	u.mu.Lock()
	u.lastSuccess = u.now()
	u.feedEpoch = gtfsrt.HeaderTimestamp(res.Feed)
	u.mu.Unlock()
	return len(byStop), nil
}

// LastSuccess is the time of the last stored artifact, zero if none
func (u *Updater) LastSuccess() time.Time {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.lastSuccess
}

// FeedEpoch is the header timestamp of the last stored feed
func (u *Updater) FeedEpoch() int64 {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.feedEpoch
}
