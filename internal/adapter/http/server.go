// Package http exposes the station selection query surface plus health and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/airshedlabs/upperair/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve queries.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// StationQuerier runs a single-mode selection query.
type StationQuerier interface {
	Query(q domain.Query) (domain.Outcome, error)
}

// Server exposes /stations, health, readiness, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	querier    StationQuerier
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /stations routes.
func NewServer(addr string, querier StationQuerier, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		querier: querier,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.HandleFunc("GET /stations", s.handleStations)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// stationsResponse is the JSON shape of a selection outcome. "No stations
// identified" is a 200 with result "no_match", never an error status.
type stationsResponse struct {
	Result       string                 `json:"result"`
	Count        int                    `json:"count,omitempty"`
	Confirmation *domain.Confirmation   `json:"confirmation,omitempty"`
	Stations     []domain.StationRecord `json:"stations,omitempty"`
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromParams(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	outcome, err := s.querier.Query(q)
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, domain.ErrNoCatalog):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	case err != nil:
		s.logger.Error("station query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	resp := stationsResponse{
		Result: outcome.Kind.String(),
		Count:  outcome.Count,
	}
	switch outcome.Kind {
	case domain.Selected:
		conf := outcome.Confirmation()
		resp.Confirmation = &conf
	case domain.Candidates:
		resp.Stations = outcome.Stations
	}
	writeJSON(w, http.StatusOK, resp)
}

// queryFromParams maps URL query parameters onto exactly one selection mode.
// Recognized modes: id (combined WBAN-WMO), name, init, wban, wmo,
// region/country, the four bounding-box bounds, and the elevation bounds.
// Zero or multiple modes in one request is an input error.
func queryFromParams(v map[string][]string) (domain.Query, error) {
	get := func(key string) string {
		if vals := v[key]; len(vals) > 0 {
			return vals[0]
		}
		return ""
	}
	has := func(keys ...string) bool {
		for _, k := range keys {
			if get(k) != "" {
				return true
			}
		}
		return false
	}

	var (
		queries []domain.Query
		errs    []error
	)
	addMode := func(q domain.Query, err error) {
		queries = append(queries, q)
		errs = append(errs, err)
	}

	if has("id") {
		addMode(domain.ByCombinedID(get("id")), nil)
	}
	if has("name") {
		addMode(domain.ByName(get("name")), nil)
	}
	if has("init") {
		addMode(domain.ByField(domain.FieldInit, get("init")), nil)
	}
	if has("wban") {
		addMode(domain.ByField(domain.FieldWBAN, get("wban")), nil)
	}
	if has("wmo") {
		addMode(domain.ByField(domain.FieldWMO, get("wmo")), nil)
	}
	if has("region", "country") {
		addMode(domain.ByRegionCountry(get("region"), get("country")), nil)
	}
	if has("latmin", "latmax", "lonmin", "lonmax") {
		q, err := boundingBoxQuery(get)
		addMode(q, err)
	}
	if has("elevmin", "elevmax") {
		q, err := elevationQuery(get)
		addMode(q, err)
	}

	if len(queries) == 0 {
		return domain.Query{}, errors.New("no search parameters given")
	}
	if len(queries) > 1 {
		return domain.Query{}, errors.New("conflicting search parameters: supply exactly one search mode")
	}
	if errs[0] != nil {
		return domain.Query{}, errs[0]
	}
	return queries[0], nil
}

func boundingBoxQuery(get func(string) string) (domain.Query, error) {
	bounds := make([]float64, 4)
	for i, key := range []string{"latmin", "latmax", "lonmin", "lonmax"} {
		raw := get(key)
		if raw == "" {
			return domain.Query{}, errors.New("bounding box search needs latmin, latmax, lonmin, and lonmax")
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Query{}, errors.New("invalid " + key)
		}
		bounds[i] = f
	}
	return domain.ByBoundingBox(bounds[0], bounds[1], bounds[2], bounds[3]), nil
}

func elevationQuery(get func(string) string) (domain.Query, error) {
	var lower, upper *float64
	for _, b := range []struct {
		key string
		dst **float64
	}{{"elevmin", &lower}, {"elevmax", &upper}} {
		raw := get(b.key)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Query{}, errors.New("invalid " + b.key)
		}
		*b.dst = &f
	}
	return domain.ByElevation(lower, upper), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
