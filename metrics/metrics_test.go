package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-live/gtfsrt"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestObserveFetch(t *testing.T) {
	c := NewCollector(5 * time.Minute)
	c.ObserveFetch("vehicle_positions", gtfsrt.StatusOK, 20*time.Millisecond)
	c.ObserveFetch("vehicle_positions", gtfsrt.StatusTransportError, time.Second)
	c.ObserveFetch("vehicle_positions", gtfsrt.StatusTransportError, time.Second)

	body := scrape(t, c)
	assert.Contains(t, body, `transit_live_feed_fetches_total{feed="vehicle_positions",result="ok"} 1`)
	assert.Contains(t, body, `transit_live_feed_fetches_total{feed="vehicle_positions",result="transport_error"} 2`)
	assert.Contains(t, body, `transit_live_feed_fetch_duration_seconds_count{feed="vehicle_positions"} 3`)
	assert.Contains(t, body, `transit_live_update_interval_seconds 300`)
}

func TestObserveRefresh(t *testing.T) {
	c := NewCollector(time.Minute)
	at := time.Unix(1700000000, 0)

	c.ObserveRefresh(nil, 42, at, time.Second)
	c.ObserveRefresh(errors.New("boom"), 0, at.Add(time.Minute), time.Second)

	body := scrape(t, c)
	assert.Contains(t, body, `transit_live_updater_cycles_total{result="ok"} 1`)
	assert.Contains(t, body, `transit_live_updater_cycles_total{result="error"} 1`)
	assert.Contains(t, body, `transit_live_updater_last_success_timestamp_seconds 1.7e+09`)
	assert.Contains(t, body, `transit_live_updater_stops 42`)
}

func TestObserveRequest(t *testing.T) {
	c := NewCollector(time.Minute)
	c.ObserveRequest("/routes", http.StatusOK)

	assert.Contains(t, scrape(t, c), `transit_live_http_requests_total{code="200",route="/routes"} 1`)
}
