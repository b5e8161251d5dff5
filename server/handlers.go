package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/theoremus-urban-solutions/transit-live/converter"
	"github.com/theoremus-urban-solutions/transit-live/formatter"
	"github.com/theoremus-urban-solutions/transit-live/gtfsrt"
	"github.com/theoremus-urban-solutions/transit-live/updater"
	"github.com/theoremus-urban-solutions/transit-live/utils"
)

type healthResponse struct {
	Status                  string `json:"status"`
	LatestGTFSRealtimeEpoch int64  `json:"latest_gtfsrt_epoch"`
	LastRefreshEpoch        int64  `json:"last_refresh_epoch"`
	LatestGTFSRealtime      string `json:"latest_gtfsrt,omitempty"`
	LastRefresh             string `json:"last_refresh,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(s.cfg.StaticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}

// loadFeed fetches the vehicle feed. On failure it applies the upstream
// policy, writes the response and returns false; empty is what the
// empty policy serves.
func (s *Server) loadFeed(w http.ResponseWriter, r *http.Request, empty any) (gtfsrt.Result, bool) {
	res := s.deps.Vehicles.Load(r.Context())
	w.Header().Set(FeedStatusHeader, res.Status.String())
	if res.OK() {
		return res, true
	}

	s.deps.Log.Errorw("Error fetching or parsing feed",
		"path", r.URL.Path,
		"status", res.Status.String(),
		"error", res.Err,
	)
	if s.cfg.UpstreamErrorPolicy == PolicyError {
		_ = formatter.WriteJSON(w, http.StatusBadGateway, formatter.ErrorBody{
			Error:  "upstream feed unavailable",
			Status: res.Status.String(),
		})
		return res, false
	}
	_ = formatter.WriteJSON(w, http.StatusOK, empty)
	return res, false
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	res, ok := s.loadFeed(w, r, []string{})
	if !ok {
		return
	}
	ids := converter.RouteIDs(res.Feed)
	s.deps.Log.Debugw("Detected route IDs", "count", len(ids))
	_ = formatter.WriteJSON(w, http.StatusOK, ids)
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	fields := s.fields
	if q := r.URL.Query().Get("fields"); q != "" {
		fs, err := converter.ParseFieldSet(q)
		if err != nil {
			_ = formatter.WriteJSON(w, http.StatusBadRequest, formatter.ErrorBody{Error: err.Error()})
			return
		}
		fields = fs
	}

	res, ok := s.loadFeed(w, r, []converter.Vehicle{})
	if !ok {
		return
	}
	vehicles := converter.Vehicles(res.Feed, fields)
	s.deps.Log.Debugw("Returned vehicles", "count", len(vehicles), "fields", fields.String())
	_ = formatter.WriteJSON(w, http.StatusOK, vehicles)
}

// loadArrivals returns the stored artifact, or {} before the first write
func (s *Server) loadArrivals(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	b, err := s.deps.Arrivals.Load(r.Context())
	if errors.Is(err, updater.ErrNotFound) {
		return []byte("{}"), true
	}
	if err != nil {
		s.deps.Log.Errorw("Error reading arrivals artifact", "error", err)
		_ = formatter.WriteJSON(w, http.StatusInternalServerError, formatter.ErrorBody{Error: "arrivals unavailable"})
		return nil, false
	}
	return b, true
}

func (s *Server) handleArrivals(w http.ResponseWriter, r *http.Request) {
	b, ok := s.loadArrivals(w, r)
	if !ok {
		return
	}
	formatter.WriteRaw(w, http.StatusOK, b)
}

func (s *Server) handleStopArrivals(w http.ResponseWriter, r *http.Request) {
	stopID := mux.Vars(r)["stopID"]

	limit := s.cfg.ArrivalsLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			_ = formatter.WriteJSON(w, http.StatusBadRequest, formatter.ErrorBody{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	b, ok := s.loadArrivals(w, r)
	if !ok {
		return
	}
	var byStop map[string][]converter.Arrival
	if err := json.Unmarshal(b, &byStop); err != nil {
		s.deps.Log.Errorw("Error decoding arrivals artifact", "error", err)
		_ = formatter.WriteJSON(w, http.StatusInternalServerError, formatter.ErrorBody{Error: "arrivals unavailable"})
		return
	}
	_ = formatter.WriteJSON(w, http.StatusOK, converter.UpcomingArrivals(byStop[stopID], s.deps.Now(), limit))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.deps.Refresh != nil {
		resp.LatestGTFSRealtimeEpoch = s.deps.Refresh.FeedEpoch()
		if last := s.deps.Refresh.LastSuccess(); !last.IsZero() {
			resp.LastRefreshEpoch = last.Unix()
		}
	}
	resp.LatestGTFSRealtime = utils.FormatEpoch(resp.LatestGTFSRealtimeEpoch)
	resp.LastRefresh = utils.FormatEpoch(resp.LastRefreshEpoch)
	_ = formatter.WriteJSON(w, http.StatusOK, resp)
}
