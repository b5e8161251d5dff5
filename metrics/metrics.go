// Package metrics exposes Prometheus instruments for feed fetches, the
// arrivals updater and the HTTP API, on a dedicated registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theoremus-urban-solutions/transit-live/gtfsrt"
)

type Collector struct {
	reg *prometheus.Registry

	FeedFetches       *prometheus.CounterVec // labels: feed, result
	FeedFetchDuration *prometheus.HistogramVec

	UpdaterCycles      *prometheus.CounterVec // result label: ok|error
	UpdaterLastSuccess prometheus.Gauge       // unix seconds
	UpdaterStops       prometheus.Gauge
	UpdaterDuration    prometheus.Histogram
	UpdateInterval     prometheus.Gauge // seconds

	HTTPRequests *prometheus.CounterVec // labels: route, code
}

func NewCollector(updateInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_live_feed_fetches_total",
			Help: "GTFS-Realtime fetch attempts by feed and result.",
		}, []string{"feed", "result"}),
		FeedFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transit_live_feed_fetch_duration_seconds",
			Help:    "Duration of fetching and decoding one feed.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"feed"}),
		UpdaterCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_live_updater_cycles_total",
			Help: "Arrivals refresh cycles by result.",
		}, []string{"result"}),
		UpdaterLastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_live_updater_last_success_timestamp_seconds",
			Help: "Unix time of the last successful arrivals refresh.",
		}),
		UpdaterStops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_live_updater_stops",
			Help: "Stops present in the last written arrivals artifact.",
		}),
		UpdaterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "transit_live_updater_cycle_duration_seconds",
			Help:    "Duration of one arrivals refresh cycle.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		UpdateInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_live_update_interval_seconds",
			Help: "Configured arrivals refresh interval.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_live_http_requests_total",
			Help: "HTTP requests by route template and status code.",
		}, []string{"route", "code"}),
	}

	reg.MustRegister(
		c.FeedFetches, c.FeedFetchDuration,
		c.UpdaterCycles, c.UpdaterLastSuccess, c.UpdaterStops, c.UpdaterDuration, c.UpdateInterval,
		c.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c.UpdateInterval.Set(updateInterval.Seconds())
	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// ObserveFetch records one gtfsrt.Source load
func (c *Collector) ObserveFetch(feed string, status gtfsrt.Status, d time.Duration) {
	c.FeedFetches.WithLabelValues(feed, status.String()).Inc()
	c.FeedFetchDuration.WithLabelValues(feed).Observe(d.Seconds())
}

// ObserveRefresh records one updater cycle
func (c *Collector) ObserveRefresh(err error, stops int, at time.Time, d time.Duration) {
	c.UpdaterDuration.Observe(d.Seconds())
	if err != nil {
		c.UpdaterCycles.WithLabelValues("error").Inc()
		return
	}
	c.UpdaterCycles.WithLabelValues("ok").Inc()
	c.UpdaterLastSuccess.Set(float64(at.Unix()))
	c.UpdaterStops.Set(float64(stops))
}

// ObserveRequest counts one HTTP response
func (c *Collector) ObserveRequest(route string, code int) {
	c.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
