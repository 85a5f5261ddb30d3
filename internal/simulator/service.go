// Package simulator composes the impact physics with the catalog, geocoding,
// place search and publishing collaborators behind one service.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/impact-sim-service/internal/adapter/geojson"
	"github.com/couchcryptid/impact-sim-service/internal/domain"
	"github.com/couchcryptid/impact-sim-service/internal/observability"
	"github.com/peterstace/simplefeatures/geom"
)

const dateLayout = "2006-01-02"

// Publisher accepts completed simulations for asynchronous delivery.
type Publisher interface {
	Enqueue(ev domain.SimulationEvent) bool
}

// Deps are the collaborators of a Service. Geocoder, Places and Publisher
// are optional.
type Deps struct {
	Catalog           domain.Catalog
	Geocoder          domain.Geocoder
	Places            domain.PlaceFinder
	Publisher         Publisher
	Metrics           *observability.Metrics
	Logger            *slog.Logger
	MaxPlacesRadiusKm float64
}

// Service runs simulations and the lookups around them.
type Service struct {
	catalog           domain.Catalog
	geocoder          domain.Geocoder
	places            domain.PlaceFinder
	publisher         Publisher
	metrics           *observability.Metrics
	logger            *slog.Logger
	maxPlacesRadiusKm float64
	draining          atomic.Bool
}

// New creates a Service.
func New(d Deps) *Service {
	return &Service{
		catalog:           d.Catalog,
		geocoder:          d.Geocoder,
		places:            d.Places,
		publisher:         d.Publisher,
		metrics:           d.Metrics,
		logger:            d.Logger,
		maxPlacesRadiusKm: d.MaxPlacesRadiusKm,
	}
}

// CheckReadiness fails once the service has started draining.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.draining.Load() {
		return errors.New("service is shutting down")
	}
	return nil
}

// Drain marks the service as not ready so load balancers stop routing to it.
func (s *Service) Drain() {
	s.draining.Store(true)
	s.metrics.ServiceReady.Set(0)
}

// Simulate runs a simulation from explicit parameters or inline NASA data.
func (s *Service) Simulate(ctx context.Context, req Request) (Report, error) {
	source := domain.SourceParams
	if req.NASAData != nil {
		source = domain.SourceCatalog
	}
	report, err := s.simulate(ctx, req, source, "")
	return report, s.countError(err)
}

// SimulateAsteroid looks up a catalogued object and simulates its impact.
// Any impactor fields in req are ignored.
func (s *Service) SimulateAsteroid(ctx context.Context, id string, req Request) (Report, error) {
	rec, err := s.lookup(ctx, id)
	if err != nil {
		return Report{}, s.countError(err)
	}
	req.NASAData = &rec
	report, err := s.simulate(ctx, req, domain.SourceCatalog, rec.ID)
	if err != nil {
		return Report{}, s.countError(err)
	}
	report.AsteroidInfo = &AsteroidInfo{
		ID:                     rec.ID,
		Name:                   rec.Name,
		IsPotentiallyHazardous: rec.IsPotentiallyHazardous,
	}
	return report, nil
}

func (s *Service) simulate(ctx context.Context, req Request, source, asteroidID string) (Report, error) {
	site, err := s.resolveSite(ctx, req)
	if err != nil {
		return Report{}, err
	}
	params, result, err := s.run(req, site)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		SimulationID:     domain.SimulationID(params, site),
		SimulationResult: result,
	}
	if req.IncludeEnvironment {
		// Bands are chosen on the unrounded yield so a 0.996 Mt impact stays below 1 Mt.
		megatons := domain.EnergyToMegatons(result.Energy.Joules)
		crater := domain.CraterDiameter(megatons, params.TargetType)
		env, err := domain.AssessEnvironment(site, megatons, crater, params.TargetType)
		if err != nil {
			return Report{}, err
		}
		report.EnvironmentalImpact = &env
	}
	if req.IncludeLocation {
		info, err := domain.ResolveLocation(ctx, s.geocoder, s.places, site.Lat, site.Lon, s.logger)
		if err != nil {
			s.logger.Warn("location lookup failed, omitting location info", "lat", site.Lat, "lon", site.Lon, "error", err)
		} else {
			report.LocationInfo = &info
		}
	}

	s.metrics.SimulationsTotal.WithLabelValues(source).Inc()
	s.metrics.ImpactEnergy.Observe(result.Energy.MegatonsTNT)
	s.logger.Debug("simulation completed",
		"id", report.SimulationID,
		"source", source,
		"megatons", result.Energy.MegatonsTNT,
	)

	if s.publisher != nil {
		ev := domain.NewSimulationEvent(source, params, site, result)
		ev.AsteroidID = asteroidID
		ev.Location = report.LocationInfo
		s.publisher.Enqueue(ev)
	}
	return report, nil
}

// run validates the impactor and executes the physics chain.
func (s *Service) run(req Request, site domain.ImpactSite) (domain.AsteroidParameters, domain.SimulationResult, error) {
	target, err := domain.ParseTargetType(req.TargetType)
	if err != nil {
		return domain.AsteroidParameters{}, domain.SimulationResult{}, err
	}

	var params domain.AsteroidParameters
	switch {
	case req.NASAData != nil:
		params, err = domain.CatalogParameters(*req.NASAData, target)
		if err != nil {
			return params, domain.SimulationResult{}, err
		}
	case req.DiameterM != nil && req.VelocityKmS != nil:
		params = domain.NewAsteroidParameters(*req.DiameterM, *req.VelocityKmS)
		params.TargetType = target
		if req.ImpactAngle != nil {
			params.AngleDegrees = *req.ImpactAngle
		}
	default:
		return params, domain.SimulationResult{}, &domain.ParameterError{
			Field:  "diameter_m",
			Reason: "missing required fields: diameter_m and velocity_km_s, or nasa_data",
		}
	}

	result, err := domain.Simulate(params, site)
	return params, result, err
}

func (s *Service) resolveSite(ctx context.Context, req Request) (domain.ImpactSite, error) {
	if req.Location != nil {
		return req.Location.Site()
	}
	if strings.TrimSpace(req.Address) == "" {
		return domain.ImpactSite{}, &domain.ParameterError{Field: "impact_location", Reason: "missing impact_location or address"}
	}
	res, err := s.Geocode(ctx, req.Address)
	if err != nil {
		return domain.ImpactSite{}, err
	}
	return domain.ImpactSite{Lat: res.Lat, Lon: res.Lon}, nil
}

// Environment assesses environmental consequences from an energy and crater
// size supplied by the caller.
func (s *Service) Environment(_ context.Context, req EnvironmentRequest) (domain.EnvironmentalImpact, error) {
	if req.Location == nil {
		return domain.EnvironmentalImpact{}, s.countError(&domain.ParameterError{Field: "impact_location", Reason: "missing impact_location"})
	}
	if req.Megatons == nil || req.CraterDiameterM == nil {
		return domain.EnvironmentalImpact{}, s.countError(&domain.ParameterError{Field: "megatons", Reason: "missing required fields: megatons and crater_diameter_m"})
	}
	site, err := req.Location.Site()
	if err != nil {
		return domain.EnvironmentalImpact{}, s.countError(err)
	}
	target, err := domain.ParseTargetType(req.TargetType)
	if err != nil {
		return domain.EnvironmentalImpact{}, s.countError(err)
	}
	env, err := domain.AssessEnvironment(site, *req.Megatons, *req.CraterDiameterM, target)
	return env, s.countError(err)
}

// Zones simulates an impact and renders its damage zones as GeoJSON.
func (s *Service) Zones(ctx context.Context, req Request) (geom.GeoJSONFeatureCollection, error) {
	site, err := s.resolveSite(ctx, req)
	if err != nil {
		return nil, s.countError(err)
	}
	_, result, err := s.run(req, site)
	if err != nil {
		return nil, s.countError(err)
	}
	fc, err := geojson.ZoneFeatures(site, result.DamageZones)
	return fc, s.countError(err)
}

// AffectedPlaces simulates an impact and classifies the settlements within
// its widest damage radius.
func (s *Service) AffectedPlaces(ctx context.Context, req Request) (PlacesReport, error) {
	if s.places == nil {
		return PlacesReport{}, s.countError(fmt.Errorf("place search is not configured: %w", domain.ErrUpstream))
	}
	site, err := s.resolveSite(ctx, req)
	if err != nil {
		return PlacesReport{}, s.countError(err)
	}
	params, result, err := s.run(req, site)
	if err != nil {
		return PlacesReport{}, s.countError(err)
	}

	radius := domain.SearchRadiusKm(result.DamageZones, s.maxPlacesRadiusKm)
	kinds := []domain.PlaceKind{domain.PlaceCity, domain.PlaceTown, domain.PlaceVillage}
	found, err := s.places.NearbyPlaces(ctx, site.Lat, site.Lon, radius, kinds, domain.MaxAffectedPlaces)
	if err != nil {
		return PlacesReport{}, s.countError(upstream(err))
	}

	return PlacesReport{
		SimulationID:   domain.SimulationID(params, site),
		Location:       site,
		DamageZones:    result.DamageZones,
		SearchRadiusKm: radius,
		Places:         domain.AffectedPlaces(found, result.DamageZones),
	}, nil
}

// Locate names the place at a coordinate.
func (s *Service) Locate(ctx context.Context, lat, lon float64) (domain.LocationInfo, error) {
	info, err := domain.ResolveLocation(ctx, s.geocoder, s.places, lat, lon, s.logger)
	return info, upstream(err)
}

// Geocode resolves a free-form address.
func (s *Service) Geocode(ctx context.Context, address string) (domain.GeocodingResult, error) {
	if s.geocoder == nil {
		return domain.GeocodingResult{}, &domain.ParameterError{Field: "address", Reason: "geocoding is not configured"}
	}
	if strings.TrimSpace(address) == "" {
		return domain.GeocodingResult{}, &domain.ParameterError{Field: "address", Reason: "must not be empty"}
	}
	res, err := s.geocoder.ForwardGeocode(ctx, address)
	if err != nil {
		return res, upstream(err)
	}
	if !res.Found() {
		return res, fmt.Errorf("address %q: %w", address, domain.ErrNotFound)
	}
	return res, nil
}

// NearEarth lists catalogued objects approaching in a date window. Empty
// dates default to today and a week from start.
func (s *Service) NearEarth(ctx context.Context, startDate, endDate string) ([]domain.CatalogRecord, error) {
	start, err := parseDate("start_date", startDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", endDate)
	if err != nil {
		return nil, err
	}
	recs, err := s.catalog.Feed(ctx, start, end)
	if err != nil {
		return nil, upstream(err)
	}
	if recs == nil {
		recs = []domain.CatalogRecord{}
	}
	return recs, nil
}

// Asteroid returns a single catalog record.
func (s *Service) Asteroid(ctx context.Context, id string) (domain.CatalogRecord, error) {
	return s.lookup(ctx, id)
}

// Approach reports the countdown to an object's next close approach.
func (s *Service) Approach(ctx context.Context, id string) (domain.ApproachReport, error) {
	rec, err := s.lookup(ctx, id)
	if err != nil {
		return domain.ApproachReport{}, err
	}
	return domain.TimeToApproach(rec), nil
}

func (s *Service) lookup(ctx context.Context, id string) (domain.CatalogRecord, error) {
	if strings.TrimSpace(id) == "" {
		return domain.CatalogRecord{}, &domain.ParameterError{Field: "id", Reason: "must not be empty"}
	}
	rec, err := s.catalog.Lookup(ctx, id)
	if err != nil {
		return rec, upstream(err)
	}
	return rec, nil
}

// countError records a failed request by error kind and returns err.
func (s *Service) countError(err error) error {
	if err != nil {
		s.metrics.SimulationErrors.WithLabelValues(ErrorKind(err)).Inc()
	}
	return err
}

// ErrorKind classifies err for metrics and transport status mapping.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return "invalid"
	case errors.Is(err, domain.ErrMissingData):
		return "missing_data"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream"
	default:
		return "internal"
	}
}

// upstream tags collaborator failures that are not already classified.
func upstream(err error) error {
	if err == nil || ErrorKind(err) != "internal" {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrUpstream, err)
}

func parseDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, &domain.ParameterError{Field: field, Reason: fmt.Sprintf("must be YYYY-MM-DD, got %q", v)}
	}
	return t, nil
}
