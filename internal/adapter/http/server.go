package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/impact-sim-service/internal/domain"
	"github.com/couchcryptid/impact-sim-service/internal/observability"
	"github.com/couchcryptid/impact-sim-service/internal/simulator"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Simulator is the application service behind the API.
type Simulator interface {
	Simulate(ctx context.Context, req simulator.Request) (simulator.Report, error)
	SimulateAsteroid(ctx context.Context, id string, req simulator.Request) (simulator.Report, error)
	Environment(ctx context.Context, req simulator.EnvironmentRequest) (domain.EnvironmentalImpact, error)
	Zones(ctx context.Context, req simulator.Request) (geom.GeoJSONFeatureCollection, error)
	AffectedPlaces(ctx context.Context, req simulator.Request) (simulator.PlacesReport, error)
	Locate(ctx context.Context, lat, lon float64) (domain.LocationInfo, error)
	Geocode(ctx context.Context, address string) (domain.GeocodingResult, error)
	NearEarth(ctx context.Context, startDate, endDate string) ([]domain.CatalogRecord, error)
	Asteroid(ctx context.Context, id string) (domain.CatalogRecord, error)
	Approach(ctx context.Context, id string) (domain.ApproachReport, error)
}

// Server exposes the impact API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        Simulator
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API routes mounted under /api and
// /healthz, /readyz, and /metrics for operations.
func NewServer(addr string, svc Simulator, ready sharedobs.ReadinessChecker, corsOrigins []string, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			// Place searches may take tens of seconds upstream.
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:     svc,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.handle(mux, "POST /api/impact/simulate", s.handleSimulate)
	s.handle(mux, "POST /api/impact/simulate-asteroid/{id}", s.handleSimulateAsteroid)
	s.handle(mux, "POST /api/impact/environment", s.handleEnvironment)
	s.handle(mux, "POST /api/impact/zones", s.handleZones)
	s.handle(mux, "POST /api/impact/affected-places", s.handleAffectedPlaces)
	s.handle(mux, "GET /api/asteroids/near-earth", s.handleNearEarth)
	s.handle(mux, "GET /api/asteroids/{id}", s.handleAsteroid)
	s.handle(mux, "GET /api/asteroids/{id}/approach", s.handleApproach)
	s.handle(mux, "GET /api/geocode", s.handleGeocode)
	s.handle(mux, "GET /api/geocode/reverse", s.handleReverseGeocode)

	s.httpServer.Handler = withRecovery(logger, withLogging(logger, withCORS(corsOrigins, mux)))
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
