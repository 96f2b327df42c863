// Package dashboard serves the listing analytics over HTTP.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"listings-analytics/estimator"
	"listings-analytics/models"
	"listings-analytics/services"
	"listings-analytics/utils"
)

// Server exposes the dataset, its views, the price estimator and the
// listing assessment.
type Server struct {
	state    *state
	models   *estimator.Cache
	insights *services.InsightService
	logger   *utils.Logger
}

func NewServer(source DatasetSource, cache *estimator.Cache, logger *utils.Logger) *Server {
	return &Server{
		state:    &state{source: source, logger: logger},
		models:   cache,
		insights: services.NewInsightService(logger),
		logger:   logger,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dataset", s.handleDataset).Methods(http.MethodGet)
	api.HandleFunc("/views/price-distribution", s.handlePriceDistribution).Methods(http.MethodGet)
	api.HandleFunc("/views/region-prices", s.handleRegionPrices).Methods(http.MethodGet)
	api.HandleFunc("/views/price-area", s.handlePriceArea).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/regions", s.handleRegions).Methods(http.MethodGet)
	api.HandleFunc("/estimate", s.handleEstimate).Methods(http.MethodPost)
	api.HandleFunc("/assessment", s.handleAssessment).Methods(http.MethodGet)
	api.HandleFunc("/reload", s.handleReload).Methods(http.MethodPost)
	return r
}

// Warm loads the dataset and prints its summary to w.
func (s *Server) Warm(ctx context.Context, w io.Writer) error {
	ds, err := s.state.current(ctx)
	if err != nil {
		return err
	}
	if ds.PrimaryErr != nil {
		s.logger.Warn("[dashboard] Serving listings from %s: %v", ds.Source, ds.PrimaryErr)
	}
	s.insights.Print(w, s.insights.Generate(ds.Listings))
	return nil
}

// EstimateRequest is the body of POST /api/estimate.
type EstimateRequest struct {
	Rooms     int     `json:"rooms"`
	AreaM2    float64 `json:"area_m2"`
	Floor     int     `json:"floor"`
	YearBuilt int     `json:"year_built"`
	Region    string  `json:"region"`
}

// Validate checks the ranges accepted by the estimate form.
func (e EstimateRequest) Validate() error {
	switch {
	case e.Rooms < 1 || e.Rooms > 10:
		return fmt.Errorf("rooms must be between 1 and 10, got %d", e.Rooms)
	case e.AreaM2 < 10 || e.AreaM2 > 1000:
		return fmt.Errorf("area_m2 must be between 10 and 1000, got %g", e.AreaM2)
	case e.Floor < 1 || e.Floor > 100:
		return fmt.Errorf("floor must be between 1 and 100, got %d", e.Floor)
	case e.YearBuilt < 1900 || e.YearBuilt > 2030:
		return fmt.Errorf("year_built must be between 1900 and 2030, got %d", e.YearBuilt)
	}
	return nil
}

func (e EstimateRequest) features() estimator.Features {
	rooms, floor, year := float64(e.Rooms), float64(e.Floor), float64(e.YearBuilt)
	area := e.AreaM2
	return estimator.Features{Rooms: &rooms, AreaM2: &area, Floor: &floor, YearBuilt: &year, Region: e.Region}
}

// EstimateResponse is the answer of POST /api/estimate.
type EstimateResponse struct {
	PriceKZT float64           `json:"price_kzt"`
	Metrics  estimator.Metrics `json:"metrics"`
}

// DatasetResponse describes the loaded dataset.
type DatasetResponse struct {
	Source       string                 `json:"source"`
	PrimaryError string                 `json:"primary_error,omitempty"`
	Fingerprint  string                 `json:"fingerprint"`
	LoadedAt     time.Time              `json:"loaded_at"`
	Rows         int                    `json:"rows"`
	Listings     []models.JoinedListing `json:"listings"`
}

func newDatasetResponse(ds *services.Dataset) DatasetResponse {
	resp := DatasetResponse{
		Source:      ds.Source,
		Fingerprint: ds.Fingerprint,
		LoadedAt:    ds.LoadedAt,
		Rows:        len(ds.Listings),
		Listings:    ds.Listings,
	}
	if ds.PrimaryErr != nil {
		resp.PrimaryError = ds.PrimaryErr.Error()
	}
	return resp
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, newDatasetResponse(ds))
}

func (s *Server) handlePriceDistribution(w http.ResponseWriter, r *http.Request) {
	if ds, ok := s.dataset(w, r); ok {
		s.writeJSON(w, http.StatusOK, s.state.viewsOf(ds).Distribution)
	}
}

func (s *Server) handleRegionPrices(w http.ResponseWriter, r *http.Request) {
	if ds, ok := s.dataset(w, r); ok {
		s.writeJSON(w, http.StatusOK, s.state.viewsOf(ds).RegionPrices)
	}
}

func (s *Server) handlePriceArea(w http.ResponseWriter, r *http.Request) {
	if ds, ok := s.dataset(w, r); ok {
		s.writeJSON(w, http.StatusOK, s.state.viewsOf(ds).PriceArea)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if ds, ok := s.dataset(w, r); ok {
		s.writeJSON(w, http.StatusOK, s.insights.Generate(ds.Listings))
	}
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	if ds, ok := s.dataset(w, r); ok {
		s.writeJSON(w, http.StatusOK, regions(ds.Listings))
	}
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	model, err := s.models.Model(ds.Fingerprint, ds.Listings)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, estimator.ErrNoTrainingData) {
			status = http.StatusServiceUnavailable
		}
		s.writeError(w, status, err)
		return
	}
	s.writeJSON(w, http.StatusOK, EstimateResponse{PriceKZT: model.Predict(req.features()), Metrics: model.Metrics})
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	link := r.URL.Query().Get("link")
	if link == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("missing link parameter"))
		return
	}
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	a, err := services.Assess(ds.Listings, link)
	if errors.Is(err, services.ErrListingNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.state.reload(r.Context())
	if err != nil {
		s.logger.Error("[dashboard] Reload failed: %v", err)
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.models.Reset()
	s.logger.Info("[dashboard] Reloaded %d listings from %s", len(ds.Listings), ds.Source)
	s.writeJSON(w, http.StatusOK, newDatasetResponse(ds))
}

// dataset loads the current dataset or writes a 503.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*services.Dataset, bool) {
	ds, err := s.state.current(r.Context())
	if err != nil {
		s.logger.Error("[dashboard] No dataset: %v", err)
		s.writeError(w, http.StatusServiceUnavailable, err)
		return nil, false
	}
	return ds, true
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("[dashboard] %s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

// regions lists the distinct known regions, sorted.
func regions(listings []models.JoinedListing) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, l := range listings {
		if l.Region != nil && !seen[*l.Region] {
			seen[*l.Region] = true
			out = append(out, *l.Region)
		}
	}
	sort.Strings(out)
	return out
}

// writeJSON encodes v completely before sending status. An unencodable
// value is answered with a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error("[dashboard] Encode response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"response could not be encoded"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Debug("[dashboard] Write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
